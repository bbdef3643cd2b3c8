package testutils

import (
	"context"
	"sync"

	"github.com/Teeticode/LLM-EMB/pkg/llm"
)

// MockGenerator is a test generator that returns a fixed generation.
type MockGenerator struct {
	// Generation is returned by Generate. Defaults to a text generation.
	Generation *llm.Generation

	// Err fails every Generate call.
	Err error

	// ModelName is returned by Model.
	ModelName string

	mu     sync.Mutex
	inputs []llm.ChatInput
}

func NewMockGenerator() *MockGenerator {
	return &MockGenerator{
		Generation: llm.TextGeneration("mock response"),
		ModelName:  "mock-chat-model",
	}
}

func (m *MockGenerator) Generate(_ context.Context, in llm.ChatInput) (*llm.Generation, error) {
	m.mu.Lock()
	m.inputs = append(m.inputs, in)
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	return m.Generation, nil
}

// Inputs returns every input passed to Generate.
func (m *MockGenerator) Inputs() []llm.ChatInput {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]llm.ChatInput(nil), m.inputs...)
}

func (m *MockGenerator) Model() string {
	return m.ModelName
}

func (m *MockGenerator) Close() error {
	return nil
}

var _ llm.Generator = (*MockGenerator)(nil)
