// Package ollama implements llm.Generator on a local Ollama server.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Teeticode/LLM-EMB/pkg/llm"
)

const (
	// DefaultModel is the model used when none is configured.
	DefaultModel = "llama3.2"

	// DefaultBaseURL is the default Ollama API URL.
	DefaultBaseURL = "http://localhost:11434"
)

// Config holds configuration for the Ollama generator.
type Config struct {
	// BaseURL is the Ollama API URL. Defaults to DefaultBaseURL if empty.
	BaseURL string

	// Model is the Ollama model tag. Defaults to DefaultModel if empty.
	Model string
}

// Generator wraps Ollama's generate and chat APIs.
type Generator struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewGenerator creates a new Ollama generator.
func NewGenerator(cfg Config) (*Generator, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &Generator{
		baseURL: baseURL,
		model:   model,
		httpClient: &http.Client{
			Timeout: 300 * time.Second,
		},
	}, nil
}

// Generate sends prompts to /api/generate and message lists to /api/chat.
// Ollama's eval counters are reported as the backend usage.
func (g *Generator) Generate(ctx context.Context, in llm.ChatInput) (*llm.Generation, error) {
	if in.Kind == llm.KindPrompt {
		var resp generateResponse
		err := g.post(ctx, "/api/generate", generateRequest{
			Model:  g.model,
			Prompt: in.Prompt,
		}, &resp)
		if err != nil {
			return nil, err
		}
		return llm.ObjectGeneration(resp.Response, resp.usage()), nil
	}

	messages := in.Messages
	if messages == nil {
		messages = []llm.Message{}
	}

	var resp chatResponse
	err := g.post(ctx, "/api/chat", chatRequest{
		Model:    g.model,
		Messages: messages,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return llm.ObjectGeneration(resp.Message.Content, resp.usage()), nil
}

func (g *Generator) post(ctx context.Context, path string, payload, result any) error {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: marshaling request: %w", llm.ErrGeneration, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("%w: creating request: %w", llm.ErrGeneration, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: sending request: %w", llm.ErrGeneration, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		var errResp errorResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			return fmt.Errorf("%w: ollama returned status %d: %s", llm.ErrGeneration, resp.StatusCode, errResp.Error)
		}
		return fmt.Errorf("%w: ollama returned status %d: %s", llm.ErrGeneration, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("%w: decoding response: %w", llm.ErrGeneration, err)
	}
	return nil
}

// usage maps Ollama's eval counters onto the OpenAI usage block. It returns
// nil when Ollama reported no counts so usage is synthesized instead.
func (c evalCounts) usage() json.RawMessage {
	if c.PromptEvalCount == 0 && c.EvalCount == 0 {
		return nil
	}
	data, err := json.Marshal(llm.Usage{
		PromptTokens:     c.PromptEvalCount,
		CompletionTokens: c.EvalCount,
		TotalTokens:      c.PromptEvalCount + c.EvalCount,
	})
	if err != nil {
		return nil
	}
	return data
}

// Model returns the configured model tag.
func (g *Generator) Model() string {
	return g.model
}

// Close releases resources held by the generator.
func (g *Generator) Close() error {
	g.httpClient.CloseIdleConnections()
	return nil
}

var _ llm.Generator = (*Generator)(nil)
