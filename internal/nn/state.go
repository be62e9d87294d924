package nn

import (
	"fmt"

	"github.com/brook-ml/brook/internal/tensor"
)

// StreamingState carries the per-batch-row position offsets threaded across
// successive chunked forward calls.
//
// Each offset is the next absolute time index expected for that batch row; it
// advances by the chunk length after every forward call that carries the
// state. The state is exclusively owned by the caller that created it: the
// shell only reads and advances it, and it must never be shared for
// concurrent mutation across logical sequences.
//
// Example:
//
//	state, _ := model.NewState(2)
//	out, _ := model.Forward(chunk1, state) // offsets now [T1, T1]
//	out, _ = model.Forward(chunk2, state)  // offsets now [T1+T2, ...]
//	state.Reset(nil)                       // sequence restart
type StreamingState struct {
	batchSize int
	offsets   *tensor.Tensor[int32] // [batchSize]

	// ExecMask marks which batch rows are active in the current forward
	// call. Inactive rows are held at their previous offset, modeling
	// padded rows. A nil mask means every row is active; rows beyond the
	// mask's length are treated as active.
	ExecMask []bool
}

// NewStreamingState creates a state with all offsets at zero.
func NewStreamingState(batchSize int) (*StreamingState, error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("%w: batch size %d (must be > 0)", ErrInvalidConfiguration, batchSize)
	}
	offsets, err := tensor.Zeros[int32](tensor.Shape{batchSize}, tensor.CPU)
	if err != nil {
		return nil, err
	}
	return &StreamingState{batchSize: batchSize, offsets: offsets}, nil
}

// BatchSize returns the number of batch rows the state tracks.
func (s *StreamingState) BatchSize() int {
	return s.batchSize
}

// Offsets returns the offsets tensor of shape [batchSize].
// The shell mutates it in place when advancing.
func (s *StreamingState) Offsets() *tensor.Tensor[int32] {
	return s.offsets
}

// Reset zeroes offsets at a sequence boundary.
//
// With a nil mask every offset is reset. Otherwise only indices
// i < min(len(mask), batchSize) with mask[i] set are zeroed; indices beyond
// the mask's length are never reset by a provided mask. Callers wanting a
// full reset must pass nil.
func (s *StreamingState) Reset(mask []bool) {
	data := s.offsets.Data()
	if mask == nil {
		for i := range data {
			data[i] = 0
		}
		return
	}
	n := len(mask)
	if n > s.batchSize {
		n = s.batchSize
	}
	for i := 0; i < n; i++ {
		if mask[i] {
			data[i] = 0
		}
	}
}
