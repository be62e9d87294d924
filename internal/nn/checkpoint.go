package nn

import (
	"fmt"
	"strings"

	"github.com/brook-ml/brook/internal/serialization"
	"github.com/brook-ml/brook/internal/tensor"
)

// Stateful is implemented by layers and units whose parameters can be
// exported to and restored from a flat name → tensor map.
type Stateful interface {
	State() map[string]*tensor.RawTensor
	LoadState(state map[string]*tensor.RawTensor) error
}

// mergeState copies src entries into dst under the given name prefix.
func mergeState(dst map[string]*tensor.RawTensor, prefix string, src map[string]*tensor.RawTensor) {
	for name, raw := range src {
		dst[prefix+name] = raw
	}
}

// splitState extracts the entries under prefix, with the prefix stripped.
func splitState(state map[string]*tensor.RawTensor, prefix string) map[string]*tensor.RawTensor {
	out := make(map[string]*tensor.RawTensor)
	for name, raw := range state {
		if strings.HasPrefix(name, prefix) {
			out[strings.TrimPrefix(name, prefix)] = raw
		}
	}
	return out
}

// State returns every parameter of the wrapper: projections plus the
// parameters of each Stateful layer unit. Units without state (for example
// IdentityUnit) contribute nothing.
func (p *ProjectedTransformer[T]) State() map[string]*tensor.RawTensor {
	state := make(map[string]*tensor.RawTensor)
	if p.inProj != nil {
		mergeState(state, "input_proj.", p.inProj.State())
	}
	for i, proj := range p.outProjs {
		if proj != nil {
			mergeState(state, fmt.Sprintf("output_proj.%d.", i), proj.State())
		}
	}
	for i, unit := range p.shell.layers {
		if s, ok := unit.(Stateful); ok {
			mergeState(state, fmt.Sprintf("layers.%d.", i), s.State())
		}
	}
	return state
}

// LoadState restores parameters previously exported by State.
// Shapes and dtypes must match the constructed model.
func (p *ProjectedTransformer[T]) LoadState(state map[string]*tensor.RawTensor) error {
	if p.inProj != nil {
		if err := p.inProj.LoadState(splitState(state, "input_proj.")); err != nil {
			return fmt.Errorf("input_proj: %w", err)
		}
	}
	for i, proj := range p.outProjs {
		if proj == nil {
			continue
		}
		if err := proj.LoadState(splitState(state, fmt.Sprintf("output_proj.%d.", i))); err != nil {
			return fmt.Errorf("output_proj.%d: %w", i, err)
		}
	}
	for i, unit := range p.shell.layers {
		s, ok := unit.(Stateful)
		if !ok {
			continue
		}
		if err := s.LoadState(splitState(state, fmt.Sprintf("layers.%d.", i))); err != nil {
			return fmt.Errorf("layers.%d: %w", i, err)
		}
	}
	return nil
}

// SaveCheckpoint writes the wrapper's parameters to path.
func SaveCheckpoint[T tensor.Float](path string, p *ProjectedTransformer[T]) error {
	return serialization.SaveFile(path, p.State(), map[string]string{
		"model_type": "ProjectedTransformer",
	})
}

// LoadCheckpoint restores the wrapper's parameters from path.
// The model must be constructed with the same configuration it was saved
// with.
func LoadCheckpoint[T tensor.Float](path string, p *ProjectedTransformer[T]) error {
	tensors, _, err := serialization.LoadFile(path)
	if err != nil {
		return err
	}
	return p.LoadState(tensors)
}
