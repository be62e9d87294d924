package nn

import (
	"fmt"

	"github.com/brook-ml/brook/internal/tensor"
)

// Linear implements a dense linear map over the last axis.
//
// Performs the transformation: y = x @ W.T (+ b)
// where:
//   - x is the input tensor with shape [..., in_features]
//   - W is the weight matrix with shape [out_features, in_features]
//   - b is the optional bias vector with shape [out_features]
//   - y is the output tensor with shape [..., out_features]
//
// Leading dimensions are flattened: the map is applied independently to every
// in_features-sized row. Accumulation happens in the tensor's element type.
//
// Weights are initialized using Xavier/Glorot initialization; biases start at
// zero.
type Linear[T tensor.Float] struct {
	inFeatures  int
	outFeatures int
	weight      *tensor.Tensor[T] // [out_features, in_features]
	bias        *tensor.Tensor[T] // [out_features], nil when disabled
}

// NewLinear creates a new Linear layer.
func NewLinear[T tensor.Float](inFeatures, outFeatures int, bias bool) *Linear[T] {
	if inFeatures <= 0 || outFeatures <= 0 {
		panic(fmt.Sprintf("Linear: features must be positive, got in=%d out=%d", inFeatures, outFeatures))
	}

	l := &Linear[T]{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      Xavier[T](inFeatures, outFeatures, tensor.Shape{outFeatures, inFeatures}),
	}
	if bias {
		b, err := tensor.Zeros[T](tensor.Shape{outFeatures}, tensor.CPU)
		if err != nil {
			panic(err)
		}
		l.bias = b
	}
	return l
}

// Forward applies the linear map over the last axis of x.
//
// Fails with tensor.ErrShapeMismatch if the last dimension of x does not
// equal the layer's input width.
func (l *Linear[T]) Forward(x *tensor.Tensor[T]) (*tensor.Tensor[T], error) {
	shape := x.Shape()
	if len(shape) == 0 || shape[len(shape)-1] != l.inFeatures {
		return nil, fmt.Errorf("%w: Linear expects last dimension %d, got shape %v",
			tensor.ErrShapeMismatch, l.inFeatures, shape)
	}

	outShape := shape.Clone()
	outShape[len(outShape)-1] = l.outFeatures
	out, err := tensor.Zeros[T](outShape, x.Device())
	if err != nil {
		return nil, err
	}

	rows := x.NumElements() / l.inFeatures
	xd := x.Data()
	od := out.Data()
	wd := l.weight.Data()

	var bd []T
	if l.bias != nil {
		bd = l.bias.Data()
	}

	for r := 0; r < rows; r++ {
		in := xd[r*l.inFeatures : (r+1)*l.inFeatures]
		for o := 0; o < l.outFeatures; o++ {
			w := wd[o*l.inFeatures : (o+1)*l.inFeatures]
			var acc T
			for i, v := range in {
				acc += v * w[i]
			}
			if bd != nil {
				acc += bd[o]
			}
			od[r*l.outFeatures+o] = acc
		}
	}

	return out, nil
}

// InFeatures returns the number of input features.
func (l *Linear[T]) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the number of output features.
func (l *Linear[T]) OutFeatures() int {
	return l.outFeatures
}

// Weight returns the weight tensor.
func (l *Linear[T]) Weight() *tensor.Tensor[T] {
	return l.weight
}

// Bias returns the bias tensor, or nil when the layer has no bias.
func (l *Linear[T]) Bias() *tensor.Tensor[T] {
	return l.bias
}

// State returns a map of parameter names to raw tensors.
func (l *Linear[T]) State() map[string]*tensor.RawTensor {
	state := map[string]*tensor.RawTensor{
		"weight": l.weight.Raw(),
	}
	if l.bias != nil {
		state["bias"] = l.bias.Raw()
	}
	return state
}

// LoadState loads parameters from a state map.
func (l *Linear[T]) LoadState(state map[string]*tensor.RawTensor) error {
	weightRaw, ok := state["weight"]
	if !ok {
		return fmt.Errorf("missing weight in state")
	}
	if err := copyParam(l.weight, weightRaw, "weight"); err != nil {
		return err
	}

	if l.bias != nil {
		biasRaw, ok := state["bias"]
		if !ok {
			return fmt.Errorf("missing bias in state")
		}
		if err := copyParam(l.bias, biasRaw, "bias"); err != nil {
			return err
		}
	}
	return nil
}

// copyParam copies a raw tensor into an existing parameter after validating
// shape and dtype.
func copyParam[T tensor.Float](dst *tensor.Tensor[T], src *tensor.RawTensor, name string) error {
	if !src.Shape().Equal(dst.Shape()) {
		return fmt.Errorf("%s shape mismatch: expected %v, got %v", name, dst.Shape(), src.Shape())
	}
	if src.DType() != dst.DType() {
		return fmt.Errorf("%s dtype mismatch: expected %v, got %v", name, dst.DType(), src.DType())
	}
	copy(dst.Raw().Data()[:dst.Raw().ByteSize()], src.Data()[:src.ByteSize()])
	return nil
}
