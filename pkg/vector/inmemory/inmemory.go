// Package inmemory provides an in-process vector driver for local use and tests.
package inmemory

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/Teeticode/LLM-EMB/pkg/vector"
)

// Driver implements vector.Driver with an exhaustive cosine scan.
type Driver struct {
	mu    sync.RWMutex
	order []string
	docs  map[string][]float32
}

// NewDriver creates an empty in-memory driver.
func NewDriver() *Driver {
	return &Driver{
		docs: make(map[string][]float32),
	}
}

// Add upserts documents. Re-adding an ID replaces its vector in place.
func (d *Driver) Add(_ context.Context, docs []vector.Document) (*vector.Mutation, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, doc := range docs {
		if _, ok := d.docs[doc.ID]; !ok {
			d.order = append(d.order, doc.ID)
		}
		d.docs[doc.ID] = slices.Clone(doc.Embedding)
	}

	return vector.NewMutation(docs), nil
}

// Query ranks every stored vector by cosine similarity to embedding.
// Ties keep insertion order.
func (d *Driver) Query(_ context.Context, embedding []float32, topK int) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = 10
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	results := make([]vector.QueryResult, 0, len(d.order))
	for _, id := range d.order {
		values := d.docs[id]
		if len(values) != len(embedding) {
			return nil, fmt.Errorf("%w: doc %s has %d dimensions, query has %d",
				vector.ErrDimensionMismatch, id, len(values), len(embedding))
		}
		results = append(results, vector.QueryResult{
			Document: vector.Document{ID: id, Embedding: slices.Clone(values)},
			Score:    cosine(embedding, values),
		})
	}

	slices.SortStableFunc(results, func(a, b vector.QueryResult) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func cosine(a, b []float32) float32 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}

// Close drops all stored vectors.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.order = nil
	d.docs = make(map[string][]float32)
	return nil
}

var _ vector.Driver = (*Driver)(nil)
