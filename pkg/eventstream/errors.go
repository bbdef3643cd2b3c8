package eventstream

import "errors"

// ErrNilEvent indicates a nil request event payload was provided to a publisher.
var ErrNilEvent = errors.New("nil request event")
