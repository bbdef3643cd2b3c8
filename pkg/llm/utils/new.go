// Package llmutils is the generator utility package
package llmutils

import (
	"fmt"

	"github.com/Teeticode/LLM-EMB/pkg/cloudflare"
	"github.com/Teeticode/LLM-EMB/pkg/llm"
	"github.com/Teeticode/LLM-EMB/pkg/llm/ollama"
	"github.com/Teeticode/LLM-EMB/pkg/llm/workersai"
)

type NewGeneratorOpts struct {
	ProviderType string
	TargetURL    string
	Model        string

	// Cloudflare is required by the workersai provider.
	Cloudflare *cloudflare.Client
}

func NewGenerator(o *NewGeneratorOpts) (llm.Generator, error) {
	switch o.ProviderType {
	case "workersai":
		return workersai.NewGenerator(workersai.Config{
			Client: o.Cloudflare,
			Model:  o.Model,
		})
	case "ollama":
		return ollama.NewGenerator(ollama.Config{
			BaseURL: o.TargetURL,
			Model:   o.Model,
		})
	default:
		return nil, fmt.Errorf("unsupported chat provider: %s", o.ProviderType)
	}
}
