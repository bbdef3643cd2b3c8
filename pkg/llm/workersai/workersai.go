// Package workersai implements llm.Generator on Cloudflare Workers AI.
package workersai

import (
	"context"
	"errors"
	"fmt"

	"github.com/Teeticode/LLM-EMB/pkg/cloudflare"
	"github.com/Teeticode/LLM-EMB/pkg/llm"
)

// DefaultModel is the text generation model used when none is configured.
const DefaultModel = "@cf/meta/llama-3.1-8b-instruct"

// Config holds configuration for the Workers AI generator.
type Config struct {
	// Client is the shared Cloudflare API client. Required.
	Client *cloudflare.Client

	// Model is the Workers AI model name. Defaults to DefaultModel if empty.
	Model string
}

// Generator runs text generation models through the Workers AI REST API.
type Generator struct {
	client *cloudflare.Client
	model  string
}

// NewGenerator creates a new Workers AI generator.
func NewGenerator(cfg Config) (*Generator, error) {
	if cfg.Client == nil {
		return nil, errors.New("workersai: cloudflare client is required")
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &Generator{client: cfg.Client, model: model}, nil
}

// Generate forwards {prompt} or {messages} unchanged and decodes the result,
// which Workers AI returns either as a string or as {response, usage}.
func (g *Generator) Generate(ctx context.Context, in llm.ChatInput) (*llm.Generation, error) {
	var gen llm.Generation
	if err := g.client.PostJSON(ctx, g.client.AccountPath("ai", "run", g.model), in, &gen); err != nil {
		return nil, fmt.Errorf("%w: %w", llm.ErrGeneration, err)
	}
	return &gen, nil
}

// Model returns the configured model name.
func (g *Generator) Model() string {
	return g.model
}

// Close is a no-op; the shared client is closed by its owner.
func (g *Generator) Close() error {
	return nil
}

var _ llm.Generator = (*Generator)(nil)
