package bedrock

import (
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"github.com/lecternhq/lectern/pkg/llm"
)

// converseMessages converts chat messages to the Converse wire format, one
// text content block per message.
func converseMessages(messages []llm.Message) []types.Message {
	converted := make([]types.Message, 0, len(messages))
	for _, msg := range messages {
		converted = append(converted, types.Message{
			Role: types.ConversationRole(msg.Role),
			Content: []types.ContentBlock{
				&types.ContentBlockMemberText{Value: msg.Content},
			},
		})
	}
	return converted
}

// systemBlocks wraps the system prompt as a separate system-role field.
// It is never folded into the message list.
func systemBlocks(system string) []types.SystemContentBlock {
	if system == "" {
		return nil
	}
	return []types.SystemContentBlock{
		&types.SystemContentBlockMemberText{Value: system},
	}
}

// inferenceConfig builds the sampling configuration, falling back to the
// client defaults for omitted fields.
func (c *Client) inferenceConfig(req *llm.ChatRequest) *types.InferenceConfiguration {
	temperature := float32(c.config.Temperature)
	if req.Temperature != nil {
		temperature = float32(*req.Temperature)
	}

	maxTokens := int32(c.config.MaxTokens)
	if req.MaxTokens != nil {
		maxTokens = int32(*req.MaxTokens)
	}

	return &types.InferenceConfiguration{
		Temperature: aws.Float32(temperature),
		MaxTokens:   aws.Int32(maxTokens),
	}
}

// resolveModelID returns the request's model or the configured default.
func (c *Client) resolveModelID(req *llm.ChatRequest) string {
	if req.ModelID != "" {
		return req.ModelID
	}
	return c.config.ModelID
}

// extractText concatenates the text blocks of a Converse output message.
func extractText(blocks []types.ContentBlock) string {
	var text strings.Builder
	for _, block := range blocks {
		if t, ok := block.(*types.ContentBlockMemberText); ok {
			text.WriteString(t.Value)
		}
	}
	return text.String()
}
