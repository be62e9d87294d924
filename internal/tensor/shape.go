package tensor

import "fmt"

// Shape represents the dimensions of a tensor.
type Shape []int

// Infer is the sentinel dimension value for Reshape: at most one dimension of
// the target shape may be Infer, and it is resolved from the element count.
const Infer = -1

// NumElements returns the total number of elements in the tensor.
func (s Shape) NumElements() int {
	if len(s) == 0 {
		return 1 // Scalar has 1 element
	}
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks if the shape is valid (all dimensions > 0).
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim <= 0 {
			return fmt.Errorf("%w: dimension at index %d is %d (must be > 0)", ErrInvalidShape, i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// ComputeStrides calculates row-major strides for the shape.
// Strides define memory layout: stride[i] = product of all dimensions after i.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}

	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// resolveShape expands at most one Infer dimension in target so that the
// resulting shape covers exactly numElements elements.
func resolveShape(target Shape, numElements int) (Shape, error) {
	resolved := target.Clone()

	inferAt := -1
	known := 1
	for i, dim := range resolved {
		switch {
		case dim == Infer:
			if inferAt >= 0 {
				return nil, fmt.Errorf("%w: more than one inferred dimension in %v", ErrShapeMismatch, target)
			}
			inferAt = i
		case dim <= 0:
			return nil, fmt.Errorf("%w: dimension at index %d is %d (must be > 0)", ErrShapeMismatch, i, dim)
		default:
			known *= dim
		}
	}

	if inferAt >= 0 {
		if known == 0 || numElements%known != 0 {
			return nil, fmt.Errorf("%w: cannot infer dimension in %v for %d elements", ErrShapeMismatch, target, numElements)
		}
		resolved[inferAt] = numElements / known
	}

	if resolved.NumElements() != numElements {
		return nil, fmt.Errorf("%w: shape %v requires %d elements, but tensor has %d",
			ErrShapeMismatch, target, resolved.NumElements(), numElements)
	}
	return resolved, nil
}
