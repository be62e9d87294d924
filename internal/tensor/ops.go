package tensor

import "fmt"

// Reshape returns a tensor with the same data but a different shape.
//
// At most one dimension of newShape may be the Infer sentinel; it is resolved
// as numElements / product(otherDims). Fails with ErrShapeMismatch if the
// resulting element count differs from the tensor's, or if more than one
// dimension requests inference.
//
// The result is a view: it shares the underlying buffer with the input.
// Callers must treat the original and the reshaped tensor as aliases of the
// same storage.
//
// Example:
//
//	t, _ := tensor.Arange[int32](0, 12, 1, CPU)   // Shape: [12]
//	m, _ := tensor.Reshape(t, 3, tensor.Infer)    // Shape: [3, 4], same buffer
func Reshape[T DType](t *Tensor[T], newShape ...int) (*Tensor[T], error) {
	resolved, err := resolveShape(Shape(newShape), t.NumElements())
	if err != nil {
		return nil, err
	}
	return &Tensor[T]{raw: t.raw.view(resolved)}, nil
}

// Transpose swaps two axes of a rank-3 tensor.
//
// Supported only for the axis pair (1, 2), converting between a
// (batch, time, channel) and a (batch, channel, time) layout. The result is a
// fresh allocation with physically permuted storage, never a view: the stride
// pattern of the permutation is not representable by a view in this design.
// Fails with ErrUnsupportedTranspose for any other rank or axis pair.
func Transpose[T DType](t *Tensor[T], axisA, axisB int) (*Tensor[T], error) {
	shape := t.Shape()
	if len(shape) != 3 {
		return nil, fmt.Errorf("%w: rank %d (only rank 3 is supported)", ErrUnsupportedTranspose, len(shape))
	}
	if !(axisA == 1 && axisB == 2) && !(axisA == 2 && axisB == 1) {
		return nil, fmt.Errorf("%w: axes (%d, %d) (only (1, 2) is supported)", ErrUnsupportedTranspose, axisA, axisB)
	}

	batch, rows, cols := shape[0], shape[1], shape[2]
	out, err := Zeros[T](Shape{batch, cols, rows}, t.Device())
	if err != nil {
		return nil, err
	}

	src := t.Data()
	dst := out.Data()
	for b := 0; b < batch; b++ {
		base := b * rows * cols
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				dst[base+j*rows+i] = src[base+i*cols+j]
			}
		}
	}
	return out, nil
}

// Add performs elementwise addition.
// Fails with ErrShapeMismatch unless both tensors have identical shapes;
// there is no broadcasting.
func Add[T DType](a, b *Tensor[T]) (*Tensor[T], error) {
	if !a.Shape().Equal(b.Shape()) {
		return nil, fmt.Errorf("%w: %v vs %v", ErrShapeMismatch, a.Shape(), b.Shape())
	}

	out, err := Zeros[T](a.Shape(), a.Device())
	if err != nil {
		return nil, err
	}

	av, bv, ov := a.Data(), b.Data(), out.Data()
	for i := range ov {
		ov[i] = av[i] + bv[i]
	}
	return out, nil
}

// Scale performs elementwise multiplication by a scalar.
// Always succeeds for any shape.
func Scale[T DType](t *Tensor[T], scalar T) *Tensor[T] {
	out, err := Zeros[T](t.Shape(), t.Device())
	if err != nil {
		panic(err) // t carries an already-validated shape
	}

	tv, ov := t.Data(), out.Data()
	for i := range ov {
		ov[i] = tv[i] * scalar
	}
	return out
}
