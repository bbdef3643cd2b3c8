package openai

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// TextInput is a string-or-list-of-strings request field, normalized to a
// list. A scalar decodes to a one-element list.
type TextInput struct {
	Values []string

	// Scalar records that the wire value was a single string.
	Scalar bool
}

// UnmarshalJSON accepts a JSON string or an array of strings.
func (t *TextInput) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		return fmt.Errorf("%w: expected a string or an array of strings", ErrInvalidInput)
	}

	var single string
	if err := json.Unmarshal(trimmed, &single); err == nil {
		t.Values = []string{single}
		t.Scalar = true
		return nil
	}

	var multi []string
	if err := json.Unmarshal(trimmed, &multi); err != nil {
		return fmt.Errorf("%w: expected a string or an array of strings", ErrInvalidInput)
	}
	if multi == nil {
		multi = []string{}
	}
	t.Values = multi
	t.Scalar = false
	return nil
}

// MarshalJSON emits the scalar form when the input was a scalar.
func (t TextInput) MarshalJSON() ([]byte, error) {
	if t.Scalar && len(t.Values) == 1 {
		return json.Marshal(t.Values[0])
	}
	values := t.Values
	if values == nil {
		values = []string{}
	}
	return json.Marshal(values)
}

// Texts returns the normalized list.
func (t TextInput) Texts() []string {
	return t.Values
}

// First returns the first value, or "" when there is none.
func (t TextInput) First() string {
	if len(t.Values) == 0 {
		return ""
	}
	return t.Values[0]
}

// NewTextInput builds a list-form input.
func NewTextInput(values ...string) TextInput {
	return TextInput{Values: values}
}
