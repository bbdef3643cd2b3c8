// Package workersai implements pkg/embedding's Embedder on Cloudflare Workers AI.
package workersai

import (
	"context"
	"errors"
	"fmt"

	"github.com/Teeticode/LLM-EMB/pkg/cloudflare"
	"github.com/Teeticode/LLM-EMB/pkg/embeddings"
	"github.com/Teeticode/LLM-EMB/pkg/vector"
)

// DefaultEmbeddingModel is the default model used for embeddings.
const DefaultEmbeddingModel = "@cf/baai/bge-small-en-v1.5"

// EmbedderConfig holds configuration for the Workers AI embedder.
type EmbedderConfig struct {
	// Client is the shared Cloudflare API client. Required.
	Client *cloudflare.Client

	// Model is the embedding model. Defaults to DefaultEmbeddingModel if empty.
	Model string
}

// Embedder runs Workers AI text embedding models.
type Embedder struct {
	client *cloudflare.Client
	model  string
}

// embedRequest is the body of a text embedding run. Text is a string or a
// list of strings.
type embedRequest struct {
	Text any `json:"text"`
}

// embedResult is the result of a text embedding run.
type embedResult struct {
	Shape []int       `json:"shape"`
	Data  [][]float32 `json:"data"`
}

// NewEmbedder creates a new Workers AI embedder.
func NewEmbedder(cfg EmbedderConfig) (*Embedder, error) {
	if cfg.Client == nil {
		return nil, errors.New("workersai: cloudflare client is required")
	}

	model := cfg.Model
	if model == "" {
		model = DefaultEmbeddingModel
	}

	return &Embedder{client: cfg.Client, model: model}, nil
}

// Embed runs the model on a single text and returns its vector.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.run(ctx, text, 1)
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch runs the model once on every text.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	return e.run(ctx, texts, len(texts))
}

func (e *Embedder) run(ctx context.Context, text any, want int) ([][]float32, error) {
	var result embedResult
	err := e.client.PostJSON(ctx, e.client.AccountPath("ai", "run", e.model), embedRequest{Text: text}, &result)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", vector.ErrEmbedding, err)
	}

	if len(result.Data) != want {
		return nil, fmt.Errorf("%w: expected %d embeddings, got %d", vector.ErrEmbedding, want, len(result.Data))
	}
	return result.Data, nil
}

// Model returns the configured embedding model.
func (e *Embedder) Model() string {
	return e.model
}

// Close is a no-op; the shared client is closed by its owner.
func (e *Embedder) Close() error {
	return nil
}

var _ embeddings.Embedder = (*Embedder)(nil)
