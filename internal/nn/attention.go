package nn

import (
	"fmt"
	"math"

	"github.com/brook-ml/brook/internal/tensor"
)

// AttentionUnit implements multi-head self-attention as a layer unit.
//
// Architecture:
//   - Q, K, V projections: [B, T, C] -> [B, T, C], split into numHeads heads
//   - scaled dot-product attention per head, optionally causal
//   - output projection back to [B, T, C]
//
// With causal masking enabled, position i attends to positions j <= i; a
// positive context window further restricts j to the most recent context
// steps. When rotary embeddings are configured, Q and K are rotated by their
// local time index before the score computation.
type AttentionUnit[T tensor.Float] struct {
	dModel   int
	numHeads int
	causal   bool
	context  int // 0 = unbounded
	rotary   *Rotary[T]

	wq, wk, wv, wo *Linear[T]
}

// NewAttentionUnit creates a multi-head self-attention unit.
//
// context limits how far back causal attention reaches (0 means unbounded);
// rotary is nil for non-rotary positional schemes.
func NewAttentionUnit[T tensor.Float](dModel, numHeads int, causal bool, context int, rotary *Rotary[T]) *AttentionUnit[T] {
	if dModel <= 0 || numHeads <= 0 {
		panic(fmt.Sprintf("AttentionUnit: dimensions must be positive, got dModel=%d numHeads=%d", dModel, numHeads))
	}
	if dModel%numHeads != 0 {
		panic(fmt.Sprintf("AttentionUnit: dModel (%d) must be divisible by numHeads (%d)", dModel, numHeads))
	}

	return &AttentionUnit[T]{
		dModel:   dModel,
		numHeads: numHeads,
		causal:   causal,
		context:  context,
		rotary:   rotary,
		wq:       NewLinear[T](dModel, dModel, false),
		wk:       NewLinear[T](dModel, dModel, false),
		wv:       NewLinear[T](dModel, dModel, false),
		wo:       NewLinear[T](dModel, dModel, false),
	}
}

// Forward computes self-attention over x with shape [B, T, C].
func (a *AttentionUnit[T]) Forward(x *tensor.Tensor[T]) (*tensor.Tensor[T], error) {
	shape := x.Shape()
	if len(shape) != 3 || shape[2] != a.dModel {
		return nil, fmt.Errorf("%w: AttentionUnit expects [B, T, %d], got %v",
			tensor.ErrShapeMismatch, a.dModel, shape)
	}
	batch, seqLen := shape[0], shape[1]

	q, err := a.wq.Forward(x)
	if err != nil {
		return nil, err
	}
	k, err := a.wk.Forward(x)
	if err != nil {
		return nil, err
	}
	v, err := a.wv.Forward(x)
	if err != nil {
		return nil, err
	}

	headDim := a.dModel / a.numHeads
	qd, kd, vd := q.Data(), k.Data(), v.Data()

	if a.rotary != nil {
		for b := 0; b < batch; b++ {
			for t := 0; t < seqLen; t++ {
				base := (b*seqLen + t) * a.dModel
				for h := 0; h < a.numHeads; h++ {
					off := base + h*headDim
					a.rotary.Apply(qd[off:off+headDim], t)
					a.rotary.Apply(kd[off:off+headDim], t)
				}
			}
		}
	}

	ctx, err := tensor.Zeros[T](shape, x.Device())
	if err != nil {
		return nil, err
	}
	cd := ctx.Data()

	invSqrt := T(1.0 / math.Sqrt(float64(headDim)))
	scores := make([]float64, seqLen)

	for b := 0; b < batch; b++ {
		for h := 0; h < a.numHeads; h++ {
			for i := 0; i < seqLen; i++ {
				lo, hi := a.window(i, seqLen)
				qRow := qd[(b*seqLen+i)*a.dModel+h*headDim:]

				// Scaled dot products with a running max for stable softmax.
				maxScore := math.Inf(-1)
				for j := lo; j < hi; j++ {
					kRow := kd[(b*seqLen+j)*a.dModel+h*headDim:]
					var dot T
					for d := 0; d < headDim; d++ {
						dot += qRow[d] * kRow[d]
					}
					s := float64(dot * invSqrt)
					scores[j] = s
					if s > maxScore {
						maxScore = s
					}
				}

				var sum float64
				for j := lo; j < hi; j++ {
					scores[j] = math.Exp(scores[j] - maxScore)
					sum += scores[j]
				}

				out := cd[(b*seqLen+i)*a.dModel+h*headDim:]
				for j := lo; j < hi; j++ {
					w := T(scores[j] / sum)
					vRow := vd[(b*seqLen+j)*a.dModel+h*headDim:]
					for d := 0; d < headDim; d++ {
						out[d] += w * vRow[d]
					}
				}
			}
		}
	}

	return a.wo.Forward(ctx)
}

// window returns the half-open attention span [lo, hi) for query position i.
func (a *AttentionUnit[T]) window(i, seqLen int) (lo, hi int) {
	lo, hi = 0, seqLen
	if a.causal {
		hi = i + 1
	}
	if a.context > 0 && hi-a.context > lo {
		lo = hi - a.context
	}
	return lo, hi
}

// State returns a map of parameter names to raw tensors.
func (a *AttentionUnit[T]) State() map[string]*tensor.RawTensor {
	state := make(map[string]*tensor.RawTensor)
	mergeState(state, "wq.", a.wq.State())
	mergeState(state, "wk.", a.wk.State())
	mergeState(state, "wv.", a.wv.State())
	mergeState(state, "wo.", a.wo.State())
	return state
}

// LoadState loads parameters from a state map.
func (a *AttentionUnit[T]) LoadState(state map[string]*tensor.RawTensor) error {
	for prefix, l := range map[string]*Linear[T]{"wq.": a.wq, "wk.": a.wk, "wv.": a.wv, "wo.": a.wo} {
		if err := l.LoadState(splitState(state, prefix)); err != nil {
			return fmt.Errorf("%s: %w", prefix, err)
		}
	}
	return nil
}
