package nn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRotaryPositionZeroIsIdentity(t *testing.T) {
	r := NewRotary[float32](4, 10000)

	vec := []float32{1, 2, 3, 4}
	r.Apply(vec, 0)
	assert.Equal(t, []float32{1, 2, 3, 4}, vec)
}

func TestRotaryPreservesNorm(t *testing.T) {
	r := NewRotary[float32](4, 10000)

	vec := []float32{1, 2, 3, 4}
	before := norm(vec)
	r.Apply(vec, 17)
	assert.InDelta(t, before, norm(vec), 1e-4)
}

func TestRotaryKnownRotation(t *testing.T) {
	r := NewRotary[float64](2, 10000)

	// headDim 2: the single pair rotates by exactly pos radians.
	vec := []float64{1, 0}
	r.Apply(vec, 1)
	assert.InDelta(t, math.Cos(1), vec[0], 1e-9)
	assert.InDelta(t, math.Sin(1), vec[1], 1e-9)
}

func TestRotaryOddTrailingChannel(t *testing.T) {
	r := NewRotary[float32](3, 10000)

	vec := []float32{1, 0, 7}
	r.Apply(vec, 2)
	assert.Equal(t, float32(7), vec[2])
}

func norm(vec []float32) float64 {
	var s float64
	for _, v := range vec {
		s += float64(v) * float64(v)
	}
	return math.Sqrt(s)
}
