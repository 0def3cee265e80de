package llm

import (
	"errors"
	"fmt"
)

// Validation sentinels. Handlers match on these to reject a request before
// any vendor call is made.
var (
	ErrNoMessages   = errors.New("messages must not be empty")
	ErrEmptyContent = errors.New("message content must not be empty")
	ErrEmptyMessage = errors.New("message must not be empty")
)

// ChatRequest is a multi-turn chat completion request.
// Sampling parameters are pointers so that an omitted field falls back to
// the configured defaults rather than zero.
type ChatRequest struct {
	Messages    []Message `json:"messages"`
	System      string    `json:"system,omitempty"`
	Temperature *float64  `json:"temperature,omitempty"`
	MaxTokens   *int      `json:"max_tokens,omitempty"`
	ModelID     string    `json:"model_id,omitempty"`
}

// Validate checks the request invariants: a non-empty message sequence where
// every element has a known role and non-empty content.
func (r *ChatRequest) Validate() error {
	if len(r.Messages) == 0 {
		return ErrNoMessages
	}

	for i, msg := range r.Messages {
		if msg.Content == "" {
			return fmt.Errorf("message %d: %w", i, ErrEmptyContent)
		}
		switch msg.Role {
		case RoleUser, RoleAssistant:
		default:
			return fmt.Errorf("message %d: unknown role %q", i, msg.Role)
		}
	}

	return nil
}

// CompletionRequest is a single-message completion request.
type CompletionRequest struct {
	Message     string   `json:"message"`
	System      string   `json:"system,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
	ModelID     string   `json:"model_id,omitempty"`
}

// Validate checks that the request carries a message.
func (r *CompletionRequest) Validate() error {
	if r.Message == "" {
		return ErrEmptyMessage
	}
	return nil
}

// Chat converts the completion request into an equivalent single-turn chat
// request, so both endpoints share one vendor code path.
func (r *CompletionRequest) Chat() *ChatRequest {
	return &ChatRequest{
		Messages:    []Message{{Role: RoleUser, Content: r.Message}},
		System:      r.System,
		Temperature: r.Temperature,
		MaxTokens:   r.MaxTokens,
		ModelID:     r.ModelID,
	}
}
