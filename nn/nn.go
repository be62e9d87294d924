// Copyright 2025 Brook ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the public API for Brook's streaming transformer
// components: the streaming shell, the projected wrapper, layer units, and
// checkpoint persistence.
//
// Example:
//
//	cfg := nn.ProjectedConfig{
//		DIn:   64,
//		DOuts: []int{32},
//		Transformer: nn.Config{
//			DModel:              32,
//			NumHeads:            4,
//			NumLayers:           2,
//			DimFeedForward:      128,
//			Causal:              true,
//			PositionalEmbedding: nn.PositionalSin,
//		},
//	}
//	model, _ := nn.NewProjectedTransformer(cfg, nn.BuildLayers[float32](cfg.Transformer))
//	state, _ := model.NewState(1)
//	outputs, _ := model.Forward(chunk, state)
package nn

import (
	"github.com/brook-ml/brook/internal/nn"
	"github.com/brook-ml/brook/internal/tensor"
)

// Sentinel errors.
var (
	ErrInvalidConfiguration = nn.ErrInvalidConfiguration
	ErrUninitialized        = nn.ErrUninitialized
)

// LayerUnit is the interface every layer in the streaming shell implements.
type LayerUnit[T tensor.Float] = nn.LayerUnit[T]

// IdentityUnit passes its input through unchanged.
type IdentityUnit[T tensor.Float] = nn.IdentityUnit[T]

// PositionalEmbedding selects how position information enters the model.
type PositionalEmbedding = nn.PositionalEmbedding

// Positional embedding kinds.
const (
	PositionalSin     PositionalEmbedding = nn.PositionalSin
	PositionalRope    PositionalEmbedding = nn.PositionalRope
	PositionalSinRope PositionalEmbedding = nn.PositionalSinRope
	PositionalNone    PositionalEmbedding = nn.PositionalNone
)

// ParsePositionalEmbedding parses a positional embedding kind by name.
func ParsePositionalEmbedding(name string) (PositionalEmbedding, error) {
	return nn.ParsePositionalEmbedding(name)
}

// Layout is the axis-ordering convention at the projected wrapper boundary.
type Layout = nn.Layout

// Layout constants.
const (
	LayoutSequenceFirst Layout = nn.LayoutSequenceFirst
	LayoutChannelFirst  Layout = nn.LayoutChannelFirst
)

// Config defines the streaming transformer shell.
type Config = nn.Config

// ProjectedConfig defines a projected transformer.
type ProjectedConfig = nn.ProjectedConfig

// StreamingState carries per-batch-row position offsets across chunks.
type StreamingState = nn.StreamingState

// NewStreamingState creates a state with all offsets at zero.
func NewStreamingState(batchSize int) (*StreamingState, error) {
	return nn.NewStreamingState(batchSize)
}

// StreamingTransformer orchestrates chunked forward passes over a layer
// stack with positional injection and offset bookkeeping.
type StreamingTransformer[T tensor.Float] = nn.StreamingTransformer[T]

// NewStreamingTransformer creates a shell over an ordered layer-unit stack.
func NewStreamingTransformer[T tensor.Float](cfg Config, layers []LayerUnit[T]) (*StreamingTransformer[T], error) {
	return nn.NewStreamingTransformer(cfg, layers)
}

// ProjectedTransformer wraps a shell with width projections and layout
// conversion.
type ProjectedTransformer[T tensor.Float] = nn.ProjectedTransformer[T]

// NewProjectedTransformer creates a projected transformer.
func NewProjectedTransformer[T tensor.Float](cfg ProjectedConfig, layers []LayerUnit[T]) (*ProjectedTransformer[T], error) {
	return nn.NewProjectedTransformer(cfg, layers)
}

// BuildLayers constructs cfg.NumLayers residual blocks for a configuration.
func BuildLayers[T tensor.Float](cfg Config) []LayerUnit[T] {
	return nn.BuildLayers[T](cfg)
}

// Sinusoidal computes fixed sinusoidal position codes for a [batch, time]
// position tensor.
func Sinusoidal[T tensor.Float](positions *tensor.Tensor[T], dim int, maxPeriod float64) (*tensor.Tensor[T], error) {
	return nn.Sinusoidal(positions, dim, maxPeriod)
}

// SaveCheckpoint writes a projected transformer's parameters to path.
func SaveCheckpoint[T tensor.Float](path string, p *ProjectedTransformer[T]) error {
	return nn.SaveCheckpoint(path, p)
}

// LoadCheckpoint restores a projected transformer's parameters from path.
func LoadCheckpoint[T tensor.Float](path string, p *ProjectedTransformer[T]) error {
	return nn.LoadCheckpoint(path, p)
}
