package tensor

import (
	"fmt"
	"math"
)

// Zeros creates a tensor filled with zeros.
// Fails with ErrInvalidShape if any dimension is non-positive.
//
// Example:
//
//	t, err := tensor.Zeros[float32](Shape{3, 4}, CPU)
func Zeros[T DType](shape Shape, device Device) (*Tensor[T], error) {
	var dummy T
	dtype := inferDataType(dummy)

	raw, err := NewRaw(shape, dtype, device)
	if err != nil {
		return nil, err
	}

	// Data is already zero-initialized by make()
	return &Tensor[T]{raw: raw}, nil
}

// Full creates a tensor filled with a specific value.
func Full[T DType](shape Shape, value T, device Device) (*Tensor[T], error) {
	t, err := Zeros[T](shape, device)
	if err != nil {
		return nil, err
	}
	data := t.Data()
	for i := range data {
		data[i] = value
	}
	return t, nil
}

// Arange creates a 1-D tensor of ceil((stop-start)/step) elements with
// element[i] = start + i*step.
//
// Fails with ErrInvalidRange if step is zero or the range is empty (tensor
// shapes are positive, so a zero-length result is not representable).
//
// Example:
//
//	t, err := tensor.Arange[int32](0, 10, 1, CPU) // [0, 1, ..., 9]
func Arange[T DType](start, stop, step T, device Device) (*Tensor[T], error) {
	if step == 0 {
		return nil, fmt.Errorf("%w: step must be non-zero", ErrInvalidRange)
	}

	n := int(math.Ceil(float64(stop-start) / float64(step)))
	if n <= 0 {
		return nil, fmt.Errorf("%w: empty range [%v, %v) with step %v", ErrInvalidRange, start, stop, step)
	}

	t, err := Zeros[T](Shape{n}, device)
	if err != nil {
		return nil, err
	}

	data := t.Data()
	for i := range data {
		data[i] = start + T(i)*step
	}
	return t, nil
}
