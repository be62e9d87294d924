package generate

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brook-ml/brook/internal/nn"
	"github.com/brook-ml/brook/internal/tensor"
)

// byteTokenizer maps each byte to its own token, avoiding the tiktoken
// vocabulary download in tests.
type byteTokenizer struct{}

func (byteTokenizer) Encode(text string) ([]int32, error) {
	tokens := make([]int32, len(text))
	for i := 0; i < len(text); i++ {
		tokens[i] = int32(text[i])
	}
	return tokens, nil
}

func (byteTokenizer) Decode(tokens []int32) (string, error) {
	out := make([]byte, len(tokens))
	for i, tok := range tokens {
		out[i] = byte(tok)
	}
	return string(out), nil
}

func (byteTokenizer) VocabSize() int  { return 256 }
func (byteTokenizer) EosToken() int32 { return -1 }
func (byteTokenizer) Name() string    { return "byte" }

func sessionConfig() SessionConfig {
	return SessionConfig{
		Encoding: "cl100k_base",
		Model: nn.ProjectedConfig{
			DIn:   8,
			DOuts: []int{4},
			Transformer: nn.Config{
				DModel:              4,
				NumHeads:            2,
				NumLayers:           1,
				DimFeedForward:      8,
				Causal:              true,
				PositionalEmbedding: nn.PositionalSin,
			},
		},
		ChunkSize: 4,
	}
}

func newTestSession(t *testing.T, cfg SessionConfig) *Session {
	t.Helper()
	s, err := NewSession(cfg, WithTokenizer(byteTokenizer{}))
	require.NoError(t, err)
	return s
}

func TestSessionRequiresInit(t *testing.T) {
	s := newTestSession(t, sessionConfig())

	_, err := s.Stream("hello")
	assert.ErrorIs(t, err, nn.ErrUninitialized)
	assert.ErrorIs(t, s.Reset(), nn.ErrUninitialized)
}

func TestSessionInvalidConfig(t *testing.T) {
	cfg := sessionConfig()
	cfg.ChunkSize = -1
	_, err := NewSession(cfg)
	assert.ErrorIs(t, err, nn.ErrInvalidConfiguration)

	cfg = sessionConfig()
	cfg.Model.DIn = 0
	_, err = NewSession(cfg)
	assert.ErrorIs(t, err, nn.ErrInvalidConfiguration)
}

func TestSessionStreamChunks(t *testing.T) {
	s := newTestSession(t, sessionConfig())
	require.NoError(t, s.Init())

	results, err := s.Stream("abcdefghij") // 10 tokens, chunk size 4
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, int32(0), results[0].Offset)
	assert.Equal(t, int32(4), results[1].Offset)
	assert.Equal(t, int32(8), results[2].Offset)

	assert.Len(t, results[0].Tokens, 4)
	assert.Len(t, results[2].Tokens, 2)

	require.Len(t, results[0].Outputs, 1)
	assert.True(t, results[0].Outputs[0].Shape().Equal(tensor.Shape{1, 4, 4}))
	assert.True(t, results[2].Outputs[0].Shape().Equal(tensor.Shape{1, 2, 4}))

	// The state persists across Stream calls.
	more, err := s.Stream("kl")
	require.NoError(t, err)
	require.Len(t, more, 1)
	assert.Equal(t, int32(10), more[0].Offset)

	require.NoError(t, s.Reset())
	fresh, err := s.Stream("mn")
	require.NoError(t, err)
	assert.Equal(t, int32(0), fresh[0].Offset)
}

func TestSessionStreamMatchesSingleShot(t *testing.T) {
	// With a position-wise model (no attention layers) chunked streaming
	// must produce the same features as one large chunk, because offsets
	// give the later chunks their absolute positions.
	cfg := sessionConfig()
	cfg.Model.Transformer.NumLayers = 0
	small := newTestSession(t, cfg)
	require.NoError(t, small.Init())

	big := cfg
	big.ChunkSize = 64
	wide := newTestSession(t, big)
	require.NoError(t, wide.Init())
	require.NoError(t, wide.Model().LoadState(small.Model().State()))

	text := "streaming equivalence"
	chunked, err := small.Stream(text)
	require.NoError(t, err)
	single, err := wide.Stream(text)
	require.NoError(t, err)
	require.Len(t, single, 1)

	var streamed []float32
	for _, step := range chunked {
		streamed = append(streamed, step.Outputs[0].Data()...)
	}
	want := single[0].Outputs[0].Data()
	require.Len(t, streamed, len(want))
	for i := range want {
		assert.InDelta(t, float64(want[i]), float64(streamed[i]), 1e-4, "element %d", i)
	}
}

func TestSessionCheckpointRestore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.brook")

	src := newTestSession(t, sessionConfig())
	require.NoError(t, src.Init())
	require.NoError(t, nn.SaveCheckpoint(path, src.Model()))

	cfg := sessionConfig()
	cfg.Checkpoint = path
	restored := newTestSession(t, cfg)
	require.NoError(t, restored.Init())

	text := "checkpointed"
	a, err := src.Stream(text)
	require.NoError(t, err)
	b, err := restored.Stream(text)
	require.NoError(t, err)

	require.Len(t, b, len(a))
	for i := range a {
		assert.Equal(t, a[i].Outputs[0].Data(), b[i].Outputs[0].Data())
	}
}
