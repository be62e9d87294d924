// Package generate runs streaming feature-extraction sessions: text is
// tokenized, embedded, and fed chunk by chunk through a projected
// transformer whose streaming state carries position offsets across chunks.
package generate

import (
	"fmt"

	"github.com/brook-ml/brook/internal/nn"
	"github.com/brook-ml/brook/internal/tensor"
	"github.com/brook-ml/brook/internal/tokenizer"
)

// defaultChunkSize is the number of tokens per forward call when the session
// configuration leaves ChunkSize at zero.
const defaultChunkSize = 32

// SessionConfig configures a streaming session.
type SessionConfig struct {
	// Encoding is the tiktoken encoding name, e.g. "cl100k_base".
	Encoding string

	// Checkpoint optionally restores model parameters before the first
	// forward call. Empty means freshly initialized parameters.
	Checkpoint string

	// Model is the projected transformer configuration.
	Model nn.ProjectedConfig

	// ChunkSize is the number of tokens fed per forward call; 0 = 32.
	ChunkSize int
}

// StepResult carries the model outputs for one chunk of a streamed text.
type StepResult struct {
	// Tokens are the token IDs of this chunk.
	Tokens []int32

	// Outputs holds one feature tensor per configured output width, each
	// of shape [1, chunkLen, dOut] (transposed when the model is
	// channel-first).
	Outputs []*tensor.Tensor[float32]

	// Offset is the absolute position of the chunk's first token.
	Offset int32
}

// Session owns a model, a tokenizer, and one streaming state, and feeds
// texts through them chunk by chunk.
//
// Construction is cheap; Init performs the expensive setup (tokenizer
// vocabulary load, optional checkpoint restore). Using a session before
// Init fails with nn.ErrUninitialized.
type Session struct {
	cfg SessionConfig

	model  *nn.ProjectedTransformer[float32]
	preset tokenizer.Tokenizer // from WithTokenizer, used instead of tiktoken
	tok    tokenizer.Tokenizer
	state  *nn.StreamingState
}

// SessionOption configures a Session beyond its SessionConfig.
type SessionOption func(*Session)

// WithTokenizer installs a pre-built tokenizer, bypassing the tiktoken
// encoding load in Init.
func WithTokenizer(tok tokenizer.Tokenizer) SessionOption {
	return func(s *Session) {
		s.preset = tok
	}
}

// NewSession creates a session. The model configuration is validated here;
// tokenizer setup is deferred to Init.
func NewSession(cfg SessionConfig, opts ...SessionOption) (*Session, error) {
	if cfg.ChunkSize < 0 {
		return nil, fmt.Errorf("%w: chunk size %d (must be >= 0)", nn.ErrInvalidConfiguration, cfg.ChunkSize)
	}
	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = defaultChunkSize
	}

	model, err := nn.NewProjectedTransformer(cfg.Model, nn.BuildLayers[float32](cfg.Model.Transformer))
	if err != nil {
		return nil, err
	}

	s := &Session{cfg: cfg, model: model}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Init loads the tokenizer, restores the checkpoint when configured, and
// creates the streaming state. It must be called once before Stream.
func (s *Session) Init() error {
	tok := s.preset
	if tok == nil {
		var err error
		tok, err = tokenizer.NewTikToken(s.cfg.Encoding)
		if err != nil {
			return err
		}
	}

	if s.cfg.Checkpoint != "" {
		if err := nn.LoadCheckpoint(s.cfg.Checkpoint, s.model); err != nil {
			return fmt.Errorf("restore checkpoint %q: %w", s.cfg.Checkpoint, err)
		}
	}

	state, err := s.model.NewState(1)
	if err != nil {
		return err
	}

	s.tok = tok
	s.state = state
	return nil
}

// Model returns the session's projected transformer.
func (s *Session) Model() *nn.ProjectedTransformer[float32] {
	return s.model
}

// Stream tokenizes text and feeds it through the model in chunks, carrying
// the session's streaming state across calls so that a text split over
// several Stream calls sees the same positions as one long text.
func (s *Session) Stream(text string) ([]StepResult, error) {
	if s.tok == nil || s.state == nil {
		return nil, fmt.Errorf("%w: call Init before Stream", nn.ErrUninitialized)
	}

	tokens, err := s.tok.Encode(text)
	if err != nil {
		return nil, err
	}

	var results []StepResult
	for start := 0; start < len(tokens); start += s.cfg.ChunkSize {
		end := start + s.cfg.ChunkSize
		if end > len(tokens) {
			end = len(tokens)
		}
		chunk := tokens[start:end]
		offset := s.state.Offsets().Data()[0]

		x, err := embed(chunk, s.cfg.Model.DIn, s.cfg.Model.Layout)
		if err != nil {
			return nil, err
		}
		outputs, err := s.model.Forward(x, s.state)
		if err != nil {
			return nil, err
		}

		results = append(results, StepResult{
			Tokens:  chunk,
			Outputs: outputs,
			Offset:  offset,
		})
	}
	return results, nil
}

// Reset restarts the session's sequence: offsets return to zero so the next
// Stream call begins a fresh text.
func (s *Session) Reset() error {
	if s.state == nil {
		return fmt.Errorf("%w: call Init before Reset", nn.ErrUninitialized)
	}
	s.state.Reset(nil)
	return nil
}

// embed maps token IDs to dIn-wide feature vectors using fixed sinusoidal
// codes over the ID value. The mapping carries no learned parameters and is
// stable across runs, which keeps streamed features reproducible.
func embed(tokens []int32, dIn int, layout nn.Layout) (*tensor.Tensor[float32], error) {
	ids, err := tensor.Zeros[float32](tensor.Shape{1, len(tokens)}, tensor.CPU)
	if err != nil {
		return nil, err
	}
	idData := ids.Data()
	for i, tok := range tokens {
		idData[i] = float32(tok)
	}

	x, err := nn.Sinusoidal(ids, dIn, 10000)
	if err != nil {
		return nil, err
	}
	if layout == nn.LayoutChannelFirst {
		return tensor.Transpose(x, 1, 2)
	}
	return x, nil
}
