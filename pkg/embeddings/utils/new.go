// Package embeddingutils is the embeddings utility package
package embeddingutils

import (
	"fmt"

	"github.com/Teeticode/LLM-EMB/pkg/cloudflare"
	"github.com/Teeticode/LLM-EMB/pkg/embeddings"
	"github.com/Teeticode/LLM-EMB/pkg/embeddings/ollama"
	"github.com/Teeticode/LLM-EMB/pkg/embeddings/workersai"
)

type NewEmbedderOpts struct {
	ProviderType string
	TargetURL    string
	Model        string

	// Cloudflare is required by the workersai provider.
	Cloudflare *cloudflare.Client
}

func NewEmbedder(o *NewEmbedderOpts) (embeddings.Embedder, error) {
	switch o.ProviderType {
	case "workersai":
		return workersai.NewEmbedder(workersai.EmbedderConfig{
			Client: o.Cloudflare,
			Model:  o.Model,
		})
	case "ollama":
		return ollama.NewEmbedder(ollama.EmbedderConfig{
			BaseURL: o.TargetURL,
			Model:   o.Model,
		})
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", o.ProviderType)
	}
}
