// Package eventstream defines the transport-neutral events emitted after
// each proxied request and the publishers that ship them.
package eventstream

import (
	"time"

	"github.com/google/uuid"

	"github.com/Teeticode/LLM-EMB/pkg/llm"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeRequestCompleted is emitted after a request has been answered.
	EventTypeRequestCompleted = "llmemb.request.completed"
)

// RequestEvent is a transport-neutral event payload for a handled request.
type RequestEvent struct {
	SchemaVersion int         `json:"schema_version"`
	EventType     string      `json:"event_type"`
	EventID       string      `json:"event_id"`
	EmittedAt     time.Time   `json:"emitted_at"`
	Request       RequestMeta `json:"request"`
	Backend       BackendMeta `json:"backend"`
}

// RequestMeta captures request lifecycle metadata for the event.
type RequestMeta struct {
	Method      string    `json:"method"`
	Path        string    `json:"path"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	DurationMs  int64     `json:"duration_ms"`
	HTTPStatus  int       `json:"http_status"`
	Error       string    `json:"error,omitempty"`
}

// BackendMeta describes what the request was served with.
type BackendMeta struct {
	Model     string     `json:"model,omitempty"`
	Operation string     `json:"operation,omitempty"`
	Inputs    int        `json:"inputs,omitempty"`
	Usage     *llm.Usage `json:"usage,omitempty"`
}

// NewRequestEvent stamps a new v1 event for a request that started at
// startedAt and completed at completedAt.
func NewRequestEvent(method, path string, status int, startedAt, completedAt time.Time) *RequestEvent {
	return &RequestEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeRequestCompleted,
		EventID:       uuid.NewString(),
		EmittedAt:     completedAt,
		Request: RequestMeta{
			Method:      method,
			Path:        path,
			StartedAt:   startedAt,
			CompletedAt: completedAt,
			DurationMs:  completedAt.Sub(startedAt).Milliseconds(),
			HTTPStatus:  status,
		},
	}
}
