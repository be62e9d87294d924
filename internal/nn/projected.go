package nn

import (
	"fmt"

	"github.com/brook-ml/brook/internal/tensor"
)

// Layout is the axis-ordering convention of tensors crossing the projected
// transformer's boundary.
type Layout int

// Supported layouts.
const (
	// LayoutSequenceFirst is (batch, time, channel), the shell's native order.
	LayoutSequenceFirst Layout = iota
	// LayoutChannelFirst is (batch, channel, time); inputs are transposed in
	// and outputs transposed back.
	LayoutChannelFirst
)

// String returns the configuration name of the layout.
func (l Layout) String() string {
	switch l {
	case LayoutSequenceFirst:
		return "sequence-first"
	case LayoutChannelFirst:
		return "channel-first"
	default:
		return "unknown"
	}
}

// ProjectedConfig defines a projected transformer: a streaming shell wrapped
// with width-adapting projections and a layout convention.
type ProjectedConfig struct {
	DIn         int    // input feature width
	DOuts       []int  // one output per requested width, order preserved
	Layout      Layout // axis ordering at the wrapper boundary
	Transformer Config // shell configuration
}

func (c ProjectedConfig) validate() error {
	if c.DIn <= 0 {
		return fmt.Errorf("%w: dIn %d (must be > 0)", ErrInvalidConfiguration, c.DIn)
	}
	if len(c.DOuts) == 0 {
		return fmt.Errorf("%w: at least one output width required", ErrInvalidConfiguration)
	}
	for i, d := range c.DOuts {
		if d <= 0 {
			return fmt.Errorf("%w: dOuts[%d] = %d (must be > 0)", ErrInvalidConfiguration, i, d)
		}
	}
	switch c.Layout {
	case LayoutSequenceFirst, LayoutChannelFirst:
	default:
		return fmt.Errorf("%w: layout %d", ErrInvalidConfiguration, int(c.Layout))
	}
	return nil
}

// ProjectedTransformer wraps a streaming shell with an optional input
// projection, one output projection per requested width, and layout
// conversion between sequence-first and channel-first representations.
//
// The input projection exists only when DIn differs from the shell's model
// width; an output projection is the identity (nil) when its width equals
// the model width.
type ProjectedTransformer[T tensor.Float] struct {
	cfg      ProjectedConfig
	inProj   *Linear[T]   // nil when DIn == DModel
	outProjs []*Linear[T] // nil entries are identity
	shell    *StreamingTransformer[T]
}

// NewProjectedTransformer creates a projected transformer over the given
// layer-unit stack. Invalid configuration fails here, not at first use.
func NewProjectedTransformer[T tensor.Float](cfg ProjectedConfig, layers []LayerUnit[T]) (*ProjectedTransformer[T], error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	shell, err := NewStreamingTransformer(cfg.Transformer, layers)
	if err != nil {
		return nil, err
	}

	p := &ProjectedTransformer[T]{
		cfg:      cfg,
		shell:    shell,
		outProjs: make([]*Linear[T], len(cfg.DOuts)),
	}

	dModel := shell.Config().DModel
	if cfg.DIn != dModel {
		p.inProj = NewLinear[T](cfg.DIn, dModel, true)
	}
	for i, dOut := range cfg.DOuts {
		if dOut != dModel {
			p.outProjs[i] = NewLinear[T](dModel, dOut, true)
		}
	}

	return p, nil
}

// Config returns the wrapper configuration.
func (p *ProjectedTransformer[T]) Config() ProjectedConfig {
	return p.cfg
}

// Shell returns the wrapped streaming transformer.
func (p *ProjectedTransformer[T]) Shell() *StreamingTransformer[T] {
	return p.shell
}

// NewState creates a streaming state for batchSize sequences.
func (p *ProjectedTransformer[T]) NewState(batchSize int) (*StreamingState, error) {
	return NewStreamingState(batchSize)
}

// Forward runs one chunk through the wrapper and returns one tensor per
// configured output width, order preserved.
//
// With a channel-first layout, x has shape (B, C, T) and is transposed to
// the shell's (B, T, C) order before processing; every output is transposed
// back. The streaming state follows the same contract as the shell's
// Forward.
func (p *ProjectedTransformer[T]) Forward(x *tensor.Tensor[T], state *StreamingState) ([]*tensor.Tensor[T], error) {
	var err error
	if p.cfg.Layout == LayoutChannelFirst {
		x, err = tensor.Transpose(x, 1, 2)
		if err != nil {
			return nil, err
		}
	}

	if p.inProj != nil {
		x, err = p.inProj.Forward(x)
		if err != nil {
			return nil, fmt.Errorf("input projection: %w", err)
		}
	}

	hidden, err := p.shell.Forward(x, state)
	if err != nil {
		return nil, err
	}

	outputs := make([]*tensor.Tensor[T], len(p.outProjs))
	for i, proj := range p.outProjs {
		out := hidden
		if proj != nil {
			out, err = proj.Forward(hidden)
			if err != nil {
				return nil, fmt.Errorf("output projection %d: %w", i, err)
			}
		}
		if p.cfg.Layout == LayoutChannelFirst {
			out, err = tensor.Transpose(out, 1, 2)
			if err != nil {
				return nil, err
			}
		}
		outputs[i] = out
	}

	return outputs, nil
}
