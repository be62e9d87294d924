package tensor

import "errors"

// Error kinds for tensor operations. All are synchronous and non-retryable:
// they indicate a caller programming error, not a transient condition.
var (
	// ErrInvalidShape reports a non-positive dimension in a construction request.
	ErrInvalidShape = errors.New("invalid shape")

	// ErrInvalidRange reports a zero step or empty result in a range construction.
	ErrInvalidRange = errors.New("invalid range")

	// ErrShapeMismatch reports incompatible sizes or shapes in an elementwise
	// operation or reshape.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrUnsupportedTranspose reports a rank or axis pair outside the supported
	// 3-D (1, 2) case.
	ErrUnsupportedTranspose = errors.New("unsupported transpose")
)
