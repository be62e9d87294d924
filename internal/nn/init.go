package nn

import (
	"math"
	"math/rand"

	"github.com/brook-ml/brook/internal/tensor"
)

// Xavier (Glorot) initialization for weights.
//
// Initializes weights with values drawn from a uniform distribution:
// U(-sqrt(6/(fan_in + fan_out)), sqrt(6/(fan_in + fan_out)))
func Xavier[T tensor.Float](fanIn, fanOut int, shape tensor.Shape) *tensor.Tensor[T] {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))

	t, err := tensor.Zeros[T](shape, tensor.CPU)
	if err != nil {
		panic(err)
	}

	data := t.Data()
	for i := range data {
		//nolint:gosec // Using math/rand for weight initialization (not security-critical)
		data[i] = T((rand.Float64()*2.0 - 1.0) * bound)
	}

	return t
}
