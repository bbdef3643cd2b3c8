package ollama

import "github.com/Teeticode/LLM-EMB/pkg/llm"

// generateRequest is the body of /api/generate.
type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// chatRequest is the body of /api/chat.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []llm.Message `json:"messages"`
	Stream   bool          `json:"stream"`
}

// evalCounts are the token counters Ollama reports on every completion.
type evalCounts struct {
	PromptEvalCount int `json:"prompt_eval_count,omitempty"`
	EvalCount       int `json:"eval_count,omitempty"`
}

// generateResponse is the non-streaming /api/generate response.
type generateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
	evalCounts
}

// chatResponse is the non-streaming /api/chat response.
type chatResponse struct {
	Model   string `json:"model"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	Done bool `json:"done"`
	evalCounts
}

// errorResponse is returned by Ollama on failures.
type errorResponse struct {
	Error string `json:"error"`
}
