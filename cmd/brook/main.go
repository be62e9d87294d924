// Package main provides the Brook CLI.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"k8s.io/klog/v2"

	"github.com/brook-ml/brook/internal/generate"
	"github.com/brook-ml/brook/internal/nn"
)

const version = "v0.1.0-dev"

func main() {
	ctx := context.Background()
	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version":
			fmt.Printf("Brook %s\n", version)
			return nil
		case "stream":
			return runStream(ctx, os.Args[2:])
		}
	}

	fmt.Printf("Brook - Streaming Transformer Engine %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version    Show version")
	fmt.Println("  stream     Stream text through a projected transformer")
	return nil
}

func runStream(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("stream", flag.ExitOnError)
	var (
		text       = fs.String("text", "Hello from Brook.", "text to stream through the model")
		encoding   = fs.String("encoding", "cl100k_base", "tiktoken encoding name")
		checkpoint = fs.String("checkpoint", "", "optional .brook checkpoint to restore")
		chunkSize  = fs.Int("chunk-size", 8, "tokens per forward call")
		dIn        = fs.Int("d-in", 32, "input feature width")
		dModel     = fs.Int("d-model", 16, "model width")
		numHeads   = fs.Int("num-heads", 4, "attention heads")
		numLayers  = fs.Int("num-layers", 2, "residual blocks")
		positional = fs.String("positional", "sin", "positional embedding: sin, rope, sin_rope, none")
	)
	klog.InitFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	log := klog.FromContext(ctx)

	kind, err := nn.ParsePositionalEmbedding(*positional)
	if err != nil {
		return err
	}

	cfg := generate.SessionConfig{
		Encoding:   *encoding,
		Checkpoint: *checkpoint,
		ChunkSize:  *chunkSize,
		Model: nn.ProjectedConfig{
			DIn:   *dIn,
			DOuts: []int{*dModel},
			Transformer: nn.Config{
				DModel:              *dModel,
				NumHeads:            *numHeads,
				NumLayers:           *numLayers,
				DimFeedForward:      4 * *dModel,
				Causal:              true,
				PositionalEmbedding: kind,
			},
		},
	}

	session, err := generate.NewSession(cfg)
	if err != nil {
		return err
	}
	log.Info("Initializing session", "encoding", *encoding, "checkpoint", *checkpoint)
	if err := session.Init(); err != nil {
		return err
	}

	results, err := session.Stream(*text)
	if err != nil {
		return err
	}
	for _, step := range results {
		log.Info("Processed chunk", "offset", step.Offset, "tokens", len(step.Tokens),
			"outputShape", step.Outputs[0].Shape())
	}
	fmt.Printf("Streamed %d chunks\n", len(results))
	return nil
}
