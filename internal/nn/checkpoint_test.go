package nn

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brook-ml/brook/internal/tensor"
)

func projectedFixture(t *testing.T) *ProjectedTransformer[float32] {
	t.Helper()
	cfg := ProjectedConfig{
		DIn:   6,
		DOuts: []int{4, 8},
		Transformer: Config{
			DModel:              4,
			NumHeads:            2,
			NumLayers:           2,
			DimFeedForward:      8,
			Causal:              true,
			PositionalEmbedding: PositionalSin,
		},
	}
	model, err := NewProjectedTransformer(cfg, BuildLayers[float32](cfg.Transformer))
	require.NoError(t, err)
	return model
}

func TestProjectedStateKeys(t *testing.T) {
	model := projectedFixture(t)
	state := model.State()

	assert.Contains(t, state, "input_proj.weight")
	assert.Contains(t, state, "output_proj.1.weight")
	assert.Contains(t, state, "layers.0.attn.wq.weight")
	assert.Contains(t, state, "layers.1.ffn.lin2.bias")
	// DOuts[0] equals the model width, so output 0 has no projection.
	assert.NotContains(t, state, "output_proj.0.weight")
}

func TestCheckpointRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.brook")

	src := projectedFixture(t)
	require.NoError(t, SaveCheckpoint(path, src))

	dst := projectedFixture(t)
	require.NoError(t, LoadCheckpoint(path, dst))

	x, err := tensor.Full[float32](tensor.Shape{2, 3, 6}, 0.25, tensor.CPU)
	require.NoError(t, err)

	outSrc, err := src.Forward(x, nil)
	require.NoError(t, err)
	outDst, err := dst.Forward(x, nil)
	require.NoError(t, err)

	require.Len(t, outDst, 2)
	for i := range outSrc {
		assert.Equal(t, outSrc[i].Data(), outDst[i].Data(), "output %d", i)
	}
}

func TestLoadCheckpointMissingFile(t *testing.T) {
	model := projectedFixture(t)
	err := LoadCheckpoint(filepath.Join(t.TempDir(), "absent.brook"), model)
	assert.Error(t, err)
}
