// Package openai holds the OpenAI-compatible wire types served by llmemb:
// request bodies, response envelopes and the error envelope.
package openai

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Teeticode/LLM-EMB/pkg/llm"
	"github.com/Teeticode/LLM-EMB/pkg/vector"
)

const (
	ObjectChatCompletion = "chat.completion"
	ObjectList           = "list"
	ObjectEmbedding      = "embedding"

	RoleAssistant    = "assistant"
	FinishReasonStop = "stop"

	// ErrorTypeInvalidRequest is the only error type surfaced to clients.
	ErrorTypeInvalidRequest = "invalid_request_error"
)

var (
	// ErrInvalidInput is returned when a request field has the wrong shape.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingInput is returned when a required request field is absent.
	ErrMissingInput = errors.New("missing input")
)

// ChatCompletion is the non-streaming chat completion envelope.
type ChatCompletion struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []ChatChoice `json:"choices"`

	// Usage is either an llm.Usage synthesized from token counts or the
	// backend's own usage object passed through verbatim.
	Usage any `json:"usage"`
}

// ChatChoice is one entry of ChatCompletion.Choices.
type ChatChoice struct {
	Index        int         `json:"index"`
	Message      llm.Message `json:"message"`
	Logprobs     any         `json:"logprobs"`
	FinishReason string      `json:"finish_reason"`
}

// NewChatCompletion wraps a generation in the chat completion envelope.
// Usage is passed through when the backend supplied one and synthesized
// from whitespace token counts otherwise.
func NewChatCompletion(model string, in llm.ChatInput, gen *llm.Generation, now time.Time) ChatCompletion {
	content := gen.Content()

	var usage any
	if gen.HasUsage() {
		usage = gen.Usage
	} else {
		usage = ChatUsage(in, content)
	}

	return ChatCompletion{
		ID:      uuid.NewString(),
		Object:  ObjectChatCompletion,
		Created: now.Unix(),
		Model:   model,
		Choices: []ChatChoice{
			{
				Index:        0,
				Message:      llm.NewTextMessage(RoleAssistant, content),
				Logprobs:     nil,
				FinishReason: FinishReasonStop,
			},
		},
		Usage: usage,
	}
}

// ChatUsage synthesizes usage for a chat exchange.
func ChatUsage(in llm.ChatInput, completion string) llm.Usage {
	prompt := SumTokens(in.Texts())
	completionTokens := CountTokens(completion)
	return llm.Usage{
		PromptTokens:     prompt,
		CompletionTokens: completionTokens,
		TotalTokens:      prompt + completionTokens,
	}
}

// EmbeddingsRequest is the body of POST /v1/embeddings.
type EmbeddingsRequest struct {
	Input *TextInput `json:"input"`
	Model string     `json:"model,omitempty"`
}

// EmbeddingList is the embeddings response envelope.
type EmbeddingList struct {
	Object string          `json:"object"`
	Data   []EmbeddingData `json:"data"`
	Model  string          `json:"model"`
	Usage  EmbeddingUsage  `json:"usage"`
}

// EmbeddingData is one embedded input. Index is the input's position.
type EmbeddingData struct {
	Object    string    `json:"object"`
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

// EmbeddingUsage has no completion component, so both counts are equal.
type EmbeddingUsage struct {
	PromptTokens int `json:"prompt_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// NewEmbeddingList builds the envelope for inputs and their vectors, which
// must be in the same order.
func NewEmbeddingList(model string, inputs []string, vectors [][]float32) EmbeddingList {
	data := make([]EmbeddingData, len(vectors))
	for i, v := range vectors {
		data[i] = EmbeddingData{
			Object:    ObjectEmbedding,
			Embedding: v,
			Index:     i,
		}
	}

	tokens := SumTokens(inputs)
	return EmbeddingList{
		Object: ObjectList,
		Data:   data,
		Model:  model,
		Usage: EmbeddingUsage{
			PromptTokens: tokens,
			TotalTokens:  tokens,
		},
	}
}

// VectorizeOperation selects the /vectorize behaviour.
type VectorizeOperation string

const (
	OperationInsert VectorizeOperation = "insert"
	OperationQuery  VectorizeOperation = "query"
)

// VectorizeRequest is the body of POST /vectorize.
type VectorizeRequest struct {
	Operation VectorizeOperation `json:"operation"`
	Data      *TextInput         `json:"data"`
}

// VectorizeMatches is the /vectorize query response.
type VectorizeMatches struct {
	Matches []vector.QueryResult `json:"matches"`
}

// NewVectorizeMatches wraps results, rendering none as an empty list.
func NewVectorizeMatches(results []vector.QueryResult) VectorizeMatches {
	if results == nil {
		results = []vector.QueryResult{}
	}
	return VectorizeMatches{Matches: results}
}

// ErrorEnvelope is the body of every failed request.
type ErrorEnvelope struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the failure message and its type.
type ErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// NewErrorEnvelope wraps err as an invalid_request_error.
func NewErrorEnvelope(err error) ErrorEnvelope {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return ErrorEnvelope{
		Error: ErrorDetail{
			Message: msg,
			Type:    ErrorTypeInvalidRequest,
		},
	}
}
