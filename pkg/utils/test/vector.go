package testutils

import (
	"context"
	"sync"

	"github.com/Teeticode/LLM-EMB/pkg/vector"
)

// MockVectorDriver is a test vector driver
type MockVectorDriver struct {
	// Results is returned by Query, truncated to topK.
	Results []vector.QueryResult

	// Mutation overrides the acknowledgment returned by Add.
	Mutation *vector.Mutation

	// Err fails every Add and Query.
	Err error

	mu       sync.Mutex
	added    [][]vector.Document
	queries  [][]float32
	lastTopK int
}

func NewMockVectorDriver() *MockVectorDriver {
	return &MockVectorDriver{
		Results: make([]vector.QueryResult, 0),
	}
}

func (m *MockVectorDriver) Add(_ context.Context, docs []vector.Document) (*vector.Mutation, error) {
	if m.Err != nil {
		return nil, m.Err
	}

	m.mu.Lock()
	m.added = append(m.added, docs)
	m.mu.Unlock()

	if m.Mutation != nil {
		return m.Mutation, nil
	}
	return vector.NewMutation(docs), nil
}

func (m *MockVectorDriver) Query(_ context.Context, embedding []float32, topK int) ([]vector.QueryResult, error) {
	if m.Err != nil {
		return nil, m.Err
	}

	m.mu.Lock()
	m.queries = append(m.queries, embedding)
	m.lastTopK = topK
	m.mu.Unlock()

	if len(m.Results) < topK {
		return m.Results, nil
	}
	return m.Results[:topK], nil
}

// Added returns the batches passed to Add, one entry per call.
func (m *MockVectorDriver) Added() [][]vector.Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]vector.Document(nil), m.added...)
}

// Queries returns the embeddings passed to Query.
func (m *MockVectorDriver) Queries() [][]float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]float32(nil), m.queries...)
}

// LastTopK returns the topK of the most recent Query.
func (m *MockVectorDriver) LastTopK() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastTopK
}

func (m *MockVectorDriver) Close() error {
	return nil
}

var _ vector.Driver = (*MockVectorDriver)(nil)
