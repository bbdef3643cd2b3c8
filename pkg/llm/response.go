package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// GenerationKind discriminates the two result shapes a generator may return.
type GenerationKind int

const (
	// GenerationText is a bare string result.
	GenerationText GenerationKind = iota

	// GenerationObject is an object result carrying a "response" field and
	// optionally a backend-supplied "usage" object.
	GenerationObject
)

// Generation is the result of a single Generate call.
type Generation struct {
	Kind GenerationKind

	// Text holds the result for GenerationText.
	Text string

	// Response holds the "response" field for GenerationObject.
	Response string

	// Usage is the backend's own usage object, kept verbatim.
	Usage json.RawMessage
}

// Usage is the OpenAI-style token accounting block.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// TextGeneration wraps a bare string result.
func TextGeneration(text string) *Generation {
	return &Generation{Kind: GenerationText, Text: text}
}

// ObjectGeneration wraps an object result. usage may be nil.
func ObjectGeneration(response string, usage json.RawMessage) *Generation {
	return &Generation{Kind: GenerationObject, Response: response, Usage: usage}
}

// Content extracts the generated text: the "response" field of an object
// result, or the string itself.
func (g *Generation) Content() string {
	if g == nil {
		return ""
	}
	if g.Kind == GenerationObject {
		return g.Response
	}
	return g.Text
}

// HasUsage reports whether the backend supplied its own usage object.
func (g *Generation) HasUsage() bool {
	if g == nil {
		return false
	}
	trimmed := bytes.TrimSpace(g.Usage)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// UnmarshalJSON accepts either a JSON string or an object with a string
// "response" field and an optional "usage" object.
func (g *Generation) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return fmt.Errorf("decode generation: %w", err)
		}
		*g = *TextGeneration(text)
		return nil
	}

	var obj struct {
		Response *string        `json:"response"`
		Usage    json.RawMessage `json:"usage"`
	}
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return fmt.Errorf("%w: unsupported generation shape: %w", ErrGeneration, err)
	}

	if obj.Response == nil {
		return fmt.Errorf("%w: generation object has no response field", ErrGeneration)
	}
	*g = *ObjectGeneration(*obj.Response, obj.Usage)
	return nil
}
