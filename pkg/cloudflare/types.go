package cloudflare

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrAPI is wrapped by every *APIError so callers can match with errors.Is.
var ErrAPI = errors.New("cloudflare API error")

// ResponseInfo is an entry of the envelope's errors or messages list.
type ResponseInfo struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// envelope is the v4 API response wrapper.
type envelope struct {
	Result   json.RawMessage `json:"result"`
	Success  bool            `json:"success"`
	Errors   []ResponseInfo  `json:"errors"`
	Messages []ResponseInfo  `json:"messages"`
}

// APIError is a failed v4 API call.
type APIError struct {
	StatusCode int
	Errors     []ResponseInfo
}

func (e *APIError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("cloudflare API error: status %d", e.StatusCode)
	}

	msgs := make([]string, len(e.Errors))
	for i, info := range e.Errors {
		if info.Code != 0 {
			msgs[i] = fmt.Sprintf("%d: %s", info.Code, info.Message)
		} else {
			msgs[i] = info.Message
		}
	}
	return fmt.Sprintf("cloudflare API error: status %d: %s", e.StatusCode, strings.Join(msgs, "; "))
}

func (e *APIError) Unwrap() error {
	return ErrAPI
}
