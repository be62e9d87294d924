package nn

import (
	"fmt"
	"math"

	"github.com/brook-ml/brook/internal/tensor"
)

// Sinusoidal computes fixed sinusoidal position codes from an
// offset-adjusted position tensor.
//
// This is the encoding from "Attention is All You Need" (Vaswani et al.,
// 2017), generalized to arbitrary absolute positions so that streaming
// callers can feed offset-augmented indices:
//
//	embedding[b, t, d]   = sin(p / maxPeriod^(d/dim))   for even d
//	embedding[b, t, d+1] = cos(p / maxPeriod^(d/dim))
//
// where p = positions[b, t]. When dim is odd the final slot is left at zero.
//
// positions must have shape [batch, time]; the result has shape
// [batch, time, dim] on the same device.
func Sinusoidal[T tensor.Float](positions *tensor.Tensor[T], dim int, maxPeriod float64) (*tensor.Tensor[T], error) {
	shape := positions.Shape()
	if len(shape) != 2 {
		return nil, fmt.Errorf("%w: positions must be [batch, time], got %v", tensor.ErrShapeMismatch, shape)
	}
	if dim <= 0 {
		return nil, fmt.Errorf("%w: embedding dimension %d (must be > 0)", tensor.ErrInvalidShape, dim)
	}
	if maxPeriod <= 0 {
		maxPeriod = defaultMaxPeriod
	}

	batch, seqLen := shape[0], shape[1]
	out, err := tensor.Zeros[T](tensor.Shape{batch, seqLen, dim}, positions.Device())
	if err != nil {
		return nil, err
	}

	pd := positions.Data()
	od := out.Data()
	for b := 0; b < batch; b++ {
		for t := 0; t < seqLen; t++ {
			p := float64(pd[b*seqLen+t])
			base := (b*seqLen + t) * dim
			// Complete sin/cos pairs only; for odd dim the final slot
			// stays zero.
			for d := 0; d+1 < dim; d += 2 {
				angle := p / math.Pow(maxPeriod, float64(d)/float64(dim))
				od[base+d] = T(math.Sin(angle))
				od[base+d+1] = T(math.Cos(angle))
			}
		}
	}
	return out, nil
}
