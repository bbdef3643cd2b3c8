package testutils

import (
	"context"
	"sync"

	"github.com/Teeticode/LLM-EMB/pkg/eventstream"
)

// MockPublisher records published events.
type MockPublisher struct {
	// Err fails every Publish after it is counted.
	Err error

	mu       sync.Mutex
	events   []*eventstream.RequestEvent
	attempts int
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Publish(_ context.Context, event *eventstream.RequestEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts++
	if m.Err != nil {
		return m.Err
	}
	m.events = append(m.events, event)
	return nil
}

// Events returns successfully published events.
func (m *MockPublisher) Events() []*eventstream.RequestEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*eventstream.RequestEvent(nil), m.events...)
}

// Attempts counts Publish calls with a non-nil event, failed or not.
func (m *MockPublisher) Attempts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempts
}

func (m *MockPublisher) Close() error {
	return nil
}

var _ eventstream.Publisher = (*MockPublisher)(nil)
