// Package vector provides interfaces and implementations for vector storage.
package vector

import "context"

// Document represents a stored item with its embedding.
type Document struct {
	// ID is a unique identifier for the document.
	ID string `json:"id"`

	// Embedding is the vector representation of the document content.
	Embedding []float32 `json:"values,omitempty"`
}

// QueryResult represents a search result with similarity score.
type QueryResult struct {
	Document

	// Score represents the similarity score (higher = more similar).
	Score float32 `json:"score"`
}

// Mutation is a store's acknowledgment of an Add. Stores fill in whichever
// fields they report: an asynchronous mutation ID, or the count and IDs of
// the upserted documents.
type Mutation struct {
	MutationID string   `json:"mutationId,omitempty"`
	Count      int      `json:"count,omitempty"`
	IDs        []string `json:"ids,omitempty"`
}

// Driver handles storage and retrieval of vector embeddings.
type Driver interface {
	// Add upserts documents with their embeddings in one batch.
	// If a document with the same ID already exists it is replaced.
	Add(ctx context.Context, docs []Document) (*Mutation, error)

	// Query finds the topK most similar documents to the given embedding.
	Query(ctx context.Context, embedding []float32, topK int) ([]QueryResult, error)

	// Close releases any resources held by the driver.
	Close() error
}

// NewMutation acknowledges docs by count and ID, in order.
func NewMutation(docs []Document) *Mutation {
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return &Mutation{Count: len(docs), IDs: ids}
}
