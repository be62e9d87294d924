package nn

import (
	"math"

	"github.com/brook-ml/brook/internal/tensor"
)

// Rotary applies rotary position embeddings (RoPE) to per-head query and key
// vectors. Adjacent channel pairs (2i, 2i+1) are rotated by an angle
// pos / maxPeriod^(2i/headDim), so relative positions become inner-product
// phase differences.
//
// The rotation is the responsibility of the layer unit that owns it, not the
// streaming shell; units see local time indices within the current chunk.
type Rotary[T tensor.Float] struct {
	headDim   int
	maxPeriod float64
}

// NewRotary creates a rotary embedding for the given per-head dimension.
func NewRotary[T tensor.Float](headDim int, maxPeriod float64) *Rotary[T] {
	if maxPeriod <= 0 {
		maxPeriod = defaultMaxPeriod
	}
	return &Rotary[T]{headDim: headDim, maxPeriod: maxPeriod}
}

// Apply rotates a single head vector in place for the given position.
// The vector length must equal the configured head dimension; a trailing odd
// channel is left unrotated.
func (r *Rotary[T]) Apply(vec []T, pos int) {
	p := float64(pos)
	for d := 0; d+1 < r.headDim; d += 2 {
		angle := p / math.Pow(r.maxPeriod, float64(d)/float64(r.headDim))
		cos := T(math.Cos(angle))
		sin := T(math.Sin(angle))

		x0, x1 := vec[d], vec[d+1]
		vec[d] = x0*cos - x1*sin
		vec[d+1] = x0*sin + x1*cos
	}
}
