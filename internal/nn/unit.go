// Package nn implements the streaming transformer shell, its pluggable layer
// units, and the projected wrapper that adapts input/output feature widths.
package nn

import "github.com/brook-ml/brook/internal/tensor"

// LayerUnit is the pluggable per-layer compute capability applied by the
// streaming shell. A unit consumes and produces a [batch, time, channel]
// tensor; the shell enforces the shape-preservation contract but treats the
// unit's internal algorithm as opaque.
type LayerUnit[T tensor.Float] interface {
	Forward(x *tensor.Tensor[T]) (*tensor.Tensor[T], error)
}

// IdentityUnit is a pass-through layer unit. Useful as a placeholder in
// shape-flow and state-bookkeeping tests.
type IdentityUnit[T tensor.Float] struct{}

// Forward returns the input unchanged.
func (IdentityUnit[T]) Forward(x *tensor.Tensor[T]) (*tensor.Tensor[T], error) {
	return x, nil
}
