package llm

// Usage reports token counts for a completed model call. Field names match
// the Bedrock Converse usage keys so the JSON response mirrors what the
// vendor reports.
type Usage struct {
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
	TotalTokens  int `json:"totalTokens"`
}

// ChatResponse is the non-streaming response envelope: the generated text,
// the model that produced it, and its token usage.
type ChatResponse struct {
	Response   string `json:"response"`
	ModelID    string `json:"model_id"`
	StopReason string `json:"stop_reason,omitempty"`
	Usage      Usage  `json:"usage"`
}

// ErrorResponse is the uniform JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
