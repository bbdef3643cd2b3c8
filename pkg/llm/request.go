package llm

import (
	"encoding/json"
	"fmt"
)

// InputKind discriminates the two accepted chat request shapes.
type InputKind int

const (
	// KindMessages is a structured conversation: {"messages": [...]}.
	KindMessages InputKind = iota

	// KindPrompt is a single prompt string: {"prompt": "..."}.
	KindPrompt
)

func (k InputKind) String() string {
	switch k {
	case KindPrompt:
		return "prompt"
	case KindMessages:
		return "messages"
	default:
		return fmt.Sprintf("InputKind(%d)", int(k))
	}
}

// ChatInput is the canonical chat request handed to a Generator.
// Exactly one of Prompt or Messages is meaningful, selected by Kind.
type ChatInput struct {
	Kind     InputKind
	Prompt   string
	Messages []Message
}

// NewPromptInput builds a prompt-mode input.
func NewPromptInput(prompt string) ChatInput {
	return ChatInput{Kind: KindPrompt, Prompt: prompt}
}

// NewMessagesInput builds a messages-mode input.
func NewMessagesInput(messages []Message) ChatInput {
	return ChatInput{Kind: KindMessages, Messages: messages}
}

// UnmarshalJSON selects prompt mode whenever a "prompt" key is present,
// regardless of its value, and messages mode otherwise.
func (in *ChatInput) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode chat input: %w", err)
	}

	if p, ok := raw["prompt"]; ok {
		var prompt string
		if err := json.Unmarshal(p, &prompt); err != nil || string(p) == "null" {
			return fmt.Errorf("%w: prompt must be a string", ErrInvalidInput)
		}
		*in = NewPromptInput(prompt)
		return nil
	}

	m, ok := raw["messages"]
	if !ok || string(m) == "null" {
		return fmt.Errorf("%w: one of prompt or messages is required", ErrInvalidInput)
	}

	var messages []Message
	if err := json.Unmarshal(m, &messages); err != nil {
		return fmt.Errorf("decode messages: %w", err)
	}
	*in = NewMessagesInput(messages)
	return nil
}

// MarshalJSON emits exactly the selected shape, {"prompt"} or {"messages"}.
func (in ChatInput) MarshalJSON() ([]byte, error) {
	if in.Kind == KindPrompt {
		return json.Marshal(struct {
			Prompt string `json:"prompt"`
		}{in.Prompt})
	}

	messages := in.Messages
	if messages == nil {
		messages = []Message{}
	}
	return json.Marshal(struct {
		Messages []Message `json:"messages"`
	}{messages})
}

// Texts returns every text the input carries, in order: the prompt, or
// each message content.
func (in ChatInput) Texts() []string {
	if in.Kind == KindPrompt {
		return []string{in.Prompt}
	}
	out := make([]string, len(in.Messages))
	for i, m := range in.Messages {
		out[i] = m.Content
	}
	return out
}
