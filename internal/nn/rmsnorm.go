package nn

import (
	"fmt"
	"math"

	"github.com/brook-ml/brook/internal/tensor"
)

// RMSNorm applies Root Mean Square Normalization along the last dimension.
//
// Formula: Y = X / sqrt(mean(X^2) + eps) * gamma
//
// RMSNorm is simpler and faster than LayerNorm (no mean subtraction), and is
// the normalization used inside BlockUnit.
type RMSNorm[T tensor.Float] struct {
	gamma   *tensor.Tensor[T] // learnable scale [d_model]
	epsilon float64
}

// NewRMSNorm creates a new RMSNorm layer with gamma initialized to ones.
func NewRMSNorm[T tensor.Float](dModel int, epsilon float64) *RMSNorm[T] {
	if dModel <= 0 {
		panic(fmt.Sprintf("RMSNorm: dModel must be positive, got %d", dModel))
	}
	gamma, err := tensor.Full[T](tensor.Shape{dModel}, 1, tensor.CPU)
	if err != nil {
		panic(err)
	}
	return &RMSNorm[T]{gamma: gamma, epsilon: epsilon}
}

// Forward normalizes x along its last dimension.
// Fails with tensor.ErrShapeMismatch if the last dimension does not match.
func (r *RMSNorm[T]) Forward(x *tensor.Tensor[T]) (*tensor.Tensor[T], error) {
	shape := x.Shape()
	dModel := r.gamma.NumElements()
	if len(shape) == 0 || shape[len(shape)-1] != dModel {
		return nil, fmt.Errorf("%w: RMSNorm expects last dimension %d, got shape %v",
			tensor.ErrShapeMismatch, dModel, shape)
	}

	out, err := tensor.Zeros[T](shape, x.Device())
	if err != nil {
		return nil, err
	}

	xd, od, gd := x.Data(), out.Data(), r.gamma.Data()
	rows := x.NumElements() / dModel
	for row := 0; row < rows; row++ {
		in := xd[row*dModel : (row+1)*dModel]

		var meanSq float64
		for _, v := range in {
			meanSq += float64(v) * float64(v)
		}
		meanSq /= float64(dModel)

		inv := T(1.0 / math.Sqrt(meanSq+r.epsilon))
		for i, v := range in {
			od[row*dModel+i] = v * inv * gd[i]
		}
	}
	return out, nil
}

// Gamma returns the scale tensor.
func (r *RMSNorm[T]) Gamma() *tensor.Tensor[T] {
	return r.gamma
}

// State returns a map of parameter names to raw tensors.
func (r *RMSNorm[T]) State() map[string]*tensor.RawTensor {
	return map[string]*tensor.RawTensor{"gamma": r.gamma.Raw()}
}

// LoadState loads parameters from a state map.
func (r *RMSNorm[T]) LoadState(state map[string]*tensor.RawTensor) error {
	gammaRaw, ok := state["gamma"]
	if !ok {
		return fmt.Errorf("missing gamma in state")
	}
	return copyParam(r.gamma, gammaRaw, "gamma")
}
