package eventstream

import "context"

// Publisher publishes request events to an event stream backend.
type Publisher interface {
	Publish(ctx context.Context, event *RequestEvent) error
	Close() error
}
