package nn

import (
	"fmt"

	"github.com/brook-ml/brook/internal/tensor"
)

// BlockUnit is a pre-norm residual transformer block usable as a layer unit:
//
//	x → RMSNorm → Attention → + → RMSNorm → FFN → + → output
//	        ↑________________|         ↑_________|
//	            (residual)               (residual)
//
// The block preserves the [B, T, C] shape, as the shell's layer contract
// requires.
type BlockUnit[T tensor.Float] struct {
	attnNorm *RMSNorm[T]
	attn     *AttentionUnit[T]
	ffnNorm  *RMSNorm[T]
	ffn      *FeedForwardUnit[T]
}

// normEpsilon matches the value commonly used with RMSNorm.
const normEpsilon = 1e-5

// NewBlockUnit creates a residual block from the shell configuration.
// Rotary embeddings are installed when the configuration's positional kind
// includes a rotary component.
func NewBlockUnit[T tensor.Float](cfg Config) *BlockUnit[T] {
	cfg = cfg.withDefaults()

	var rotary *Rotary[T]
	if cfg.PositionalEmbedding.hasRotary() {
		rotary = NewRotary[T](cfg.DModel/cfg.NumHeads, cfg.MaxPeriod)
	}

	return &BlockUnit[T]{
		attnNorm: NewRMSNorm[T](cfg.DModel, normEpsilon),
		attn:     NewAttentionUnit[T](cfg.DModel, cfg.NumHeads, cfg.Causal, cfg.Context, rotary),
		ffnNorm:  NewRMSNorm[T](cfg.DModel, normEpsilon),
		ffn:      NewFeedForwardUnit[T](cfg.DModel, cfg.DimFeedForward),
	}
}

// BuildLayers constructs the ordered layer stack for a configuration:
// cfg.NumLayers residual blocks.
func BuildLayers[T tensor.Float](cfg Config) []LayerUnit[T] {
	layers := make([]LayerUnit[T], cfg.NumLayers)
	for i := range layers {
		layers[i] = NewBlockUnit[T](cfg)
	}
	return layers
}

// Forward applies the block with pre-norm residual connections.
func (u *BlockUnit[T]) Forward(x *tensor.Tensor[T]) (*tensor.Tensor[T], error) {
	normed, err := u.attnNorm.Forward(x)
	if err != nil {
		return nil, err
	}
	attnOut, err := u.attn.Forward(normed)
	if err != nil {
		return nil, err
	}
	x, err = tensor.Add(x, attnOut)
	if err != nil {
		return nil, err
	}

	normed, err = u.ffnNorm.Forward(x)
	if err != nil {
		return nil, err
	}
	ffnOut, err := u.ffn.Forward(normed)
	if err != nil {
		return nil, err
	}
	return tensor.Add(x, ffnOut)
}

// State returns a map of parameter names to raw tensors.
func (u *BlockUnit[T]) State() map[string]*tensor.RawTensor {
	state := make(map[string]*tensor.RawTensor)
	mergeState(state, "attn_norm.", u.attnNorm.State())
	mergeState(state, "attn.", u.attn.State())
	mergeState(state, "ffn_norm.", u.ffnNorm.State())
	mergeState(state, "ffn.", u.ffn.State())
	return state
}

// LoadState loads parameters from a state map.
func (u *BlockUnit[T]) LoadState(state map[string]*tensor.RawTensor) error {
	if err := u.attnNorm.LoadState(splitState(state, "attn_norm.")); err != nil {
		return fmt.Errorf("attn_norm: %w", err)
	}
	if err := u.attn.LoadState(splitState(state, "attn.")); err != nil {
		return fmt.Errorf("attn: %w", err)
	}
	if err := u.ffnNorm.LoadState(splitState(state, "ffn_norm.")); err != nil {
		return fmt.Errorf("ffn_norm: %w", err)
	}
	if err := u.ffn.LoadState(splitState(state, "ffn.")); err != nil {
		return fmt.Errorf("ffn: %w", err)
	}
	return nil
}
