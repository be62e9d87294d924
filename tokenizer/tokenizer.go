// Copyright 2025 Brook ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tokenizer provides the public API for text tokenization in Brook.
package tokenizer

import (
	"github.com/brook-ml/brook/internal/tokenizer"
)

// Tokenizer is the interface for text tokenization.
type Tokenizer = tokenizer.Tokenizer

// TikToken wraps OpenAI's tiktoken encodings.
type TikToken = tokenizer.TikToken

// NewTikToken creates a tokenizer for a tiktoken encoding name, e.g.
// "cl100k_base".
func NewTikToken(encodingName string) (*TikToken, error) {
	return tokenizer.NewTikToken(encodingName)
}
