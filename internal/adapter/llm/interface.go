// Package llm provides an abstraction for the generation backend.
package llm

import "context"

// ChatMessage represents a chat message.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest represents a chat completion request.
type CompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream,omitempty"`
}

// CompletionResponse represents a non-streaming completion result.
type CompletionResponse struct {
	ID           string `json:"id"`
	Content      string `json:"content"`
	FinishReason string `json:"finish_reason,omitempty"`
	Usage        *Usage `json:"usage,omitempty"`
}

// Usage represents token usage information.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Chunk is one incremental piece of a streaming completion.
type Chunk struct {
	Content      string
	FinishReason string
}

// StreamCallback is called for each chunk in a streaming response. Returning
// an error aborts the stream.
type StreamCallback func(chunk *Chunk) error

// Client defines the interface for generation operations. Implementations
// self-enforce a timeout and surface it as an ordinary error.
type Client interface {
	// CreateCompletion sends a completion request (non-streaming).
	CreateCompletion(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// CreateCompletionStream sends a streaming completion request. The
	// callback is called for each chunk received.
	CreateCompletionStream(ctx context.Context, req *CompletionRequest, callback StreamCallback) error
}

// Ensure both implementations satisfy the Client interface.
var (
	_ Client = (*HTTPClient)(nil)
	_ Client = (*MockClient)(nil)
)
