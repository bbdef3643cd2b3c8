package proxy

import (
	"github.com/Teeticode/LLM-EMB/pkg/embeddings"
	"github.com/Teeticode/LLM-EMB/pkg/eventstream"
	"github.com/Teeticode/LLM-EMB/pkg/llm"
	"github.com/Teeticode/LLM-EMB/pkg/vector"
)

// Config is the proxy server configuration. Every backend handle is owned
// by the caller; Close on the proxy does not close them.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8080")
	ListenAddr string

	// Generator serves /v1/chat/completions.
	Generator llm.Generator

	// Embedder serves /v1/embeddings.
	Embedder embeddings.Embedder

	// VectorEmbedder embeds /vectorize data. It is usually a larger model
	// than Embedder, matching the vector store's dimensions.
	VectorEmbedder embeddings.Embedder

	// VectorDriver is the store behind /vectorize.
	VectorDriver vector.Driver

	// Publisher is an optional sink for request events.
	// If nil, events are not emitted.
	Publisher eventstream.Publisher
}
