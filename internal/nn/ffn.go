package nn

import (
	"fmt"
	"math"

	"github.com/brook-ml/brook/internal/tensor"
)

// FeedForwardUnit implements the position-wise feed-forward network as a
// layer unit: Linear(dModel -> hidden) -> GELU -> Linear(hidden -> dModel).
type FeedForwardUnit[T tensor.Float] struct {
	lin1 *Linear[T]
	lin2 *Linear[T]
}

// NewFeedForwardUnit creates a feed-forward unit with the given hidden width.
func NewFeedForwardUnit[T tensor.Float](dModel, hidden int) *FeedForwardUnit[T] {
	if dModel <= 0 || hidden <= 0 {
		panic(fmt.Sprintf("FeedForwardUnit: dimensions must be positive, got dModel=%d hidden=%d", dModel, hidden))
	}
	return &FeedForwardUnit[T]{
		lin1: NewLinear[T](dModel, hidden, true),
		lin2: NewLinear[T](hidden, dModel, true),
	}
}

// Forward applies the feed-forward network position-wise.
func (f *FeedForwardUnit[T]) Forward(x *tensor.Tensor[T]) (*tensor.Tensor[T], error) {
	h, err := f.lin1.Forward(x)
	if err != nil {
		return nil, err
	}

	hd := h.Data()
	for i, v := range hd {
		hd[i] = gelu(v)
	}

	return f.lin2.Forward(h)
}

// gelu is the tanh approximation of the Gaussian Error Linear Unit.
func gelu[T tensor.Float](x T) T {
	const c = 0.044715
	sqrt2pi := math.Sqrt(2.0 / math.Pi)
	xf := float64(x)
	inner := sqrt2pi * (xf + c*xf*xf*xf)
	return T(0.5 * xf * (1.0 + math.Tanh(inner)))
}

// State returns a map of parameter names to raw tensors.
func (f *FeedForwardUnit[T]) State() map[string]*tensor.RawTensor {
	state := make(map[string]*tensor.RawTensor)
	mergeState(state, "lin1.", f.lin1.State())
	mergeState(state, "lin2.", f.lin2.State())
	return state
}

// LoadState loads parameters from a state map.
func (f *FeedForwardUnit[T]) LoadState(state map[string]*tensor.RawTensor) error {
	if err := f.lin1.LoadState(splitState(state, "lin1.")); err != nil {
		return fmt.Errorf("lin1: %w", err)
	}
	if err := f.lin2.LoadState(splitState(state, "lin2.")); err != nil {
		return fmt.Errorf("lin2: %w", err)
	}
	return nil
}
