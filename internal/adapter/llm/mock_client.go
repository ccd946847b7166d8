package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// MockClient simulates the generation backend without network access.
// Streaming is synthesized by splitting one full completion into
// whitespace-delimited pieces with an artificial inter-token delay; the
// delay stands in for a backend that lacks native incremental output.
type MockClient struct {
	// TokenDelay is the pause before each synthesized token. Zero disables
	// the delay (useful in tests).
	TokenDelay time.Duration
}

// NewMockClient creates a new mock generation client.
func NewMockClient(tokenDelay time.Duration) *MockClient {
	return &MockClient{TokenDelay: tokenDelay}
}

// CreateCompletion returns a canned response.
func (m *MockClient) CreateCompletion(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	content := m.generateResponse(req)
	return &CompletionResponse{
		ID:           fmt.Sprintf("mock-cmpl-%d", time.Now().UnixNano()),
		Content:      content,
		FinishReason: "stop",
		Usage: &Usage{
			PromptTokens:     m.estimateTokens(req),
			CompletionTokens: len(content) / 4,
			TotalTokens:      m.estimateTokens(req) + len(content)/4,
		},
	}, nil
}

// CreateCompletionStream synthesizes a streaming response from a full
// completion. Concatenating every chunk reproduces the completion exactly.
func (m *MockClient) CreateCompletionStream(ctx context.Context, req *CompletionRequest, callback StreamCallback) error {
	content := m.generateResponse(req)
	words := strings.Fields(content)
	if len(words) == 0 {
		words = []string{content}
	}

	for i, word := range words {
		if m.TokenDelay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(m.TokenDelay):
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		token := word
		if i < len(words)-1 {
			token += " "
		}
		finishReason := ""
		if i == len(words)-1 {
			finishReason = "stop"
		}
		if err := callback(&Chunk{Content: token, FinishReason: finishReason}); err != nil {
			return err
		}
	}
	return nil
}

// generateResponse produces a deterministic in-character reply based on the
// last user message.
func (m *MockClient) generateResponse(req *CompletionRequest) string {
	var lastUser string
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == "user" {
			lastUser = req.Messages[i].Content
			break
		}
	}

	if lastUser == "" {
		return "I'm not sure what you want me to say."
	}
	return fmt.Sprintf("Look, you asked %q and I've already told you everything I know about that.", truncate(lastUser, 80))
}

// estimateTokens provides a rough token count estimate.
func (m *MockClient) estimateTokens(req *CompletionRequest) int {
	total := 0
	for _, msg := range req.Messages {
		total += len(msg.Content) / 4
	}
	return total
}

// truncate truncates a string to the given length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
