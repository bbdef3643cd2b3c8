package llm

import (
	"encoding/json"
	"fmt"
)

// Message represents a single message in a conversation.
type Message struct {
	Role    string `json:"role"`    // "system", "user", "assistant"
	Content string `json:"content"` // Plain text content
}

// NewTextMessage creates a message with the given role and content.
func NewTextMessage(role, text string) Message {
	return Message{Role: role, Content: text}
}

// UnmarshalJSON requires a string content field. A message without content
// cannot be counted or forwarded.
func (m *Message) UnmarshalJSON(data []byte) error {
	var raw struct {
		Role    string          `json:"role"`
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode message: %w", err)
	}

	if len(raw.Content) == 0 || string(raw.Content) == "null" {
		return ErrMissingContent
	}

	var content string
	if err := json.Unmarshal(raw.Content, &content); err != nil {
		return fmt.Errorf("%w: content must be a string", ErrInvalidInput)
	}

	m.Role = raw.Role
	m.Content = content
	return nil
}
