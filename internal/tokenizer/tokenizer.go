// Package tokenizer converts text to and from token ID sequences for the
// streaming session engine.
package tokenizer

// Tokenizer is the interface for text tokenization.
type Tokenizer interface {
	// Encode converts text to token IDs.
	Encode(text string) ([]int32, error)

	// Decode converts token IDs back to text.
	Decode(tokens []int32) (string, error)

	// VocabSize returns the total vocabulary size.
	VocabSize() int

	// EosToken returns the end-of-sequence token ID.
	// Returns -1 if not applicable.
	EosToken() int32

	// Name returns the tokenizer name.
	Name() string
}
