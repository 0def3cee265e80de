// Package llm defines the request, response, and streaming event types shared
// between the API server, the Bedrock client, and the stream relay.
package llm

// Conversation roles accepted in a chat request.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single turn in a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
