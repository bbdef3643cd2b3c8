// Package llm defines the provider-agnostic text generation types shared by
// the proxy and its inference backends.
package llm

import (
	"context"
	"errors"
)

var (
	// ErrInvalidInput is returned when a chat request has neither a usable
	// prompt nor a usable message list.
	ErrInvalidInput = errors.New("invalid chat input")

	// ErrMissingContent is returned when a message has no content.
	ErrMissingContent = errors.New("message content is required")

	// ErrGeneration is returned when a backend cannot produce a result.
	ErrGeneration = errors.New("text generation failed")
)

// Generator provides text generation capabilities.
type Generator interface {
	// Generate runs the model on in and returns its result.
	Generate(ctx context.Context, in ChatInput) (*Generation, error)

	// Model returns the model identifier requests are sent to.
	Model() string

	// Close releases any resources held by the generator.
	Close() error
}
