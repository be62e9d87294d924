package nn

import (
	"fmt"

	"github.com/brook-ml/brook/internal/tensor"
)

// PositionalEmbedding selects how position information enters the model.
type PositionalEmbedding int

// Supported positional embedding kinds.
const (
	// PositionalSin injects fixed sinusoidal codes before the layer stack.
	PositionalSin PositionalEmbedding = iota
	// PositionalRope relies on rotary application inside the layer units.
	PositionalRope
	// PositionalSinRope combines sinusoidal injection with rotary units.
	PositionalSinRope
	// PositionalNone disables positional information.
	PositionalNone
)

// String returns the configuration name of the kind.
func (p PositionalEmbedding) String() string {
	switch p {
	case PositionalSin:
		return "sin"
	case PositionalRope:
		return "rope"
	case PositionalSinRope:
		return "sin_rope"
	case PositionalNone:
		return "none"
	default:
		return "unknown"
	}
}

// ParsePositionalEmbedding parses a configuration name.
// Fails with ErrInvalidConfiguration for unrecognized names.
func ParsePositionalEmbedding(name string) (PositionalEmbedding, error) {
	switch name {
	case "sin":
		return PositionalSin, nil
	case "rope":
		return PositionalRope, nil
	case "sin_rope":
		return PositionalSinRope, nil
	case "none":
		return PositionalNone, nil
	default:
		return 0, fmt.Errorf("%w: unknown positional embedding %q", ErrInvalidConfiguration, name)
	}
}

func (p PositionalEmbedding) valid() bool {
	switch p {
	case PositionalSin, PositionalRope, PositionalSinRope, PositionalNone:
		return true
	default:
		return false
	}
}

// hasSinusoidal reports whether the shell injects sinusoidal codes.
func (p PositionalEmbedding) hasSinusoidal() bool {
	return p == PositionalSin || p == PositionalSinRope
}

// hasRotary reports whether layer units should apply rotary embeddings.
func (p PositionalEmbedding) hasRotary() bool {
	return p == PositionalRope || p == PositionalSinRope
}

// defaultMaxPeriod is the classic sinusoidal base period.
const defaultMaxPeriod = 10000

// Config defines the streaming transformer shell. It is immutable after
// construction.
type Config struct {
	DModel         int  // model width C
	NumHeads       int  // attention heads per layer
	NumLayers      int  // number of layer units in the stack
	DimFeedForward int  // feed-forward hidden width
	Causal         bool // restrict attention to past positions
	Context        int  // attention context window; 0 = unbounded

	PositionalEmbedding PositionalEmbedding
	MaxPeriod           float64 // sinusoidal base period; 0 = 10000
	PositionalScale     float64 // multiplier on the injected codes; 0 = 1
}

// withDefaults resolves zero-valued knobs to their documented defaults.
func (c Config) withDefaults() Config {
	if c.MaxPeriod == 0 {
		c.MaxPeriod = defaultMaxPeriod
	}
	if c.PositionalScale == 0 {
		c.PositionalScale = 1
	}
	return c
}

func (c Config) validate() error {
	if !c.PositionalEmbedding.valid() {
		return fmt.Errorf("%w: positional embedding kind %d", ErrInvalidConfiguration, int(c.PositionalEmbedding))
	}
	if c.DModel <= 0 {
		return fmt.Errorf("%w: dModel %d (must be > 0)", ErrInvalidConfiguration, c.DModel)
	}
	if c.NumLayers < 0 {
		return fmt.Errorf("%w: numLayers %d (must be >= 0)", ErrInvalidConfiguration, c.NumLayers)
	}
	if c.Context < 0 {
		return fmt.Errorf("%w: context %d (must be >= 0)", ErrInvalidConfiguration, c.Context)
	}
	if c.MaxPeriod < 0 {
		return fmt.Errorf("%w: maxPeriod %v (must be >= 0)", ErrInvalidConfiguration, c.MaxPeriod)
	}
	return nil
}

// StreamingTransformer orchestrates one forward step of the engine:
// position computation from streaming offsets, positional-embedding
// injection, sequential application of the layer-unit stack, and offset
// advancement.
//
// The shell never stores a StreamingState: the state is an explicit,
// caller-owned handle passed to Forward, keeping one shell reusable across
// independent sequences.
type StreamingTransformer[T tensor.Float] struct {
	cfg    Config
	layers []LayerUnit[T]
}

// NewStreamingTransformer creates a shell over an ordered layer-unit stack.
//
// The positional-embedding kind is validated here against the fixed
// enumerated set; rope variants are accepted but the rotary application
// itself is the responsibility of the installed units. The number of units
// must equal cfg.NumLayers.
func NewStreamingTransformer[T tensor.Float](cfg Config, layers []LayerUnit[T]) (*StreamingTransformer[T], error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if len(layers) != cfg.NumLayers {
		return nil, fmt.Errorf("%w: %d layer units for %d configured layers",
			ErrInvalidConfiguration, len(layers), cfg.NumLayers)
	}

	return &StreamingTransformer[T]{
		cfg:    cfg,
		layers: layers,
	}, nil
}

// Config returns the shell configuration.
func (m *StreamingTransformer[T]) Config() Config {
	return m.cfg
}

// NewState creates a streaming state for batchSize sequences, all starting
// at offset zero. The state belongs to the caller; discard it when the
// conversation ends.
func (m *StreamingTransformer[T]) NewState(batchSize int) (*StreamingState, error) {
	return NewStreamingState(batchSize)
}

// Forward runs one chunk through the shell.
//
// x has shape [B, T, C]. With a state attached, row b starts at absolute
// position state.Offsets()[b]; without one every row starts at zero. After
// the layer stack runs, every offset not excluded by the state's ExecMask
// advances by T.
//
// If the batch size of x exceeds the state's, out-of-range rows reuse the
// last tracked offset. This clamp is a defined degraded-compatibility
// behavior for callers that grow their batch mid-sequence.
func (m *StreamingTransformer[T]) Forward(x *tensor.Tensor[T], state *StreamingState) (*tensor.Tensor[T], error) {
	shape := x.Shape()
	if len(shape) != 3 {
		return nil, fmt.Errorf("%w: input must be [batch, time, channel], got %v", tensor.ErrShapeMismatch, shape)
	}
	batch, seqLen, channels := shape[0], shape[1], shape[2]

	offsets := make([]int32, batch)
	if state != nil {
		tracked := state.Offsets().Data()
		for b := 0; b < batch; b++ {
			idx := b
			if idx >= state.BatchSize() {
				idx = state.BatchSize() - 1
			}
			offsets[b] = tracked[idx]
		}
	}

	if m.cfg.PositionalEmbedding.hasSinusoidal() {
		positions, err := tensor.Zeros[T](tensor.Shape{batch, seqLen}, x.Device())
		if err != nil {
			return nil, err
		}
		pd := positions.Data()
		for b := 0; b < batch; b++ {
			for t := 0; t < seqLen; t++ {
				pd[b*seqLen+t] = T(int32(t) + offsets[b])
			}
		}

		emb, err := Sinusoidal(positions, channels, m.cfg.MaxPeriod)
		if err != nil {
			return nil, err
		}
		if m.cfg.PositionalScale != 1 {
			emb = tensor.Scale(emb, T(m.cfg.PositionalScale))
		}
		x, err = tensor.Add(x, emb)
		if err != nil {
			return nil, err
		}
	}

	want := tensor.Shape{batch, seqLen, channels}
	for i, unit := range m.layers {
		out, err := unit.Forward(x)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		if !out.Shape().Equal(want) {
			return nil, fmt.Errorf("%w: layer %d produced %v, want %v",
				tensor.ErrShapeMismatch, i, out.Shape(), want)
		}
		x = out
	}

	if state != nil {
		tracked := state.Offsets().Data()
		for row := 0; row < state.BatchSize(); row++ {
			if row < len(state.ExecMask) && !state.ExecMask[row] {
				continue
			}
			tracked[row] += int32(seqLen)
		}
	}

	return x, nil
}
