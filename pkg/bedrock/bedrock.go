// Package bedrock wraps the AWS Bedrock Runtime Converse APIs behind the
// small surface the API server needs: one-shot completions and a cancellable
// streaming call producing llm.StreamEvent values.
package bedrock

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"go.uber.org/zap"

	"github.com/lecternhq/lectern/pkg/llm"
)

// Config holds the Bedrock client settings and the defaults applied when a
// request omits a model or sampling parameters.
type Config struct {
	// Region is the AWS region hosting the Bedrock runtime.
	Region string

	// ModelID used when a request does not name one.
	ModelID string

	// Temperature and MaxTokens applied when a request omits them.
	Temperature float64
	MaxTokens   int
}

// Client is a thin wrapper over the Bedrock runtime client. One Client is
// shared read-only across all requests; each call carries its own context.
type Client struct {
	runtime *bedrockruntime.Client
	config  Config
	logger  *zap.Logger
}

// New resolves the ambient AWS credential chain and returns a ready Client.
func New(ctx context.Context, config Config, logger *zap.Logger) (*Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(config.Region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return &Client{
		runtime: bedrockruntime.NewFromConfig(awsCfg),
		config:  config,
		logger:  logger,
	}, nil
}

// Converse performs a non-streaming chat completion.
func (c *Client) Converse(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	modelID := c.resolveModelID(req)

	out, err := c.runtime.Converse(ctx, &bedrockruntime.ConverseInput{
		ModelId:         aws.String(modelID),
		Messages:        converseMessages(req.Messages),
		System:          systemBlocks(req.System),
		InferenceConfig: c.inferenceConfig(req),
	})
	if err != nil {
		return nil, fmt.Errorf("bedrock converse: %w", err)
	}

	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return nil, fmt.Errorf("unexpected converse output type %T", out.Output)
	}

	resp := &llm.ChatResponse{
		Response:   extractText(msg.Value.Content),
		ModelID:    modelID,
		StopReason: string(out.StopReason),
	}
	if out.Usage != nil {
		resp.Usage = llm.Usage{
			InputTokens:  int(aws.ToInt32(out.Usage.InputTokens)),
			OutputTokens: int(aws.ToInt32(out.Usage.OutputTokens)),
			TotalTokens:  int(aws.ToInt32(out.Usage.TotalTokens)),
		}
	}

	return resp, nil
}

// ConverseStream opens a streaming chat completion. The returned channel
// delivers deltas in vendor order and is closed after a terminal event.
// Cancelling ctx stops consumption of the vendor stream and releases the
// underlying connection.
func (c *Client) ConverseStream(ctx context.Context, req *llm.ChatRequest) (<-chan llm.StreamEvent, error) {
	modelID := c.resolveModelID(req)

	out, err := c.runtime.ConverseStream(ctx, &bedrockruntime.ConverseStreamInput{
		ModelId:         aws.String(modelID),
		Messages:        converseMessages(req.Messages),
		System:          systemBlocks(req.System),
		InferenceConfig: c.inferenceConfig(req),
	})
	if err != nil {
		return nil, fmt.Errorf("bedrock converse stream: %w", err)
	}

	events := make(chan llm.StreamEvent)
	go c.pump(ctx, out.GetStream(), events)

	return events, nil
}

// pump translates SDK stream events into llm.StreamEvents until the vendor
// stops, errors, or ctx is cancelled.
func (c *Client) pump(ctx context.Context, stream *bedrockruntime.ConverseStreamEventStream, events chan<- llm.StreamEvent) {
	defer close(events)
	defer stream.Close()

	for vendorEvent := range stream.Events() {
		switch v := vendorEvent.(type) {
		case *types.ConverseStreamOutputMemberContentBlockDelta:
			delta, ok := v.Value.Delta.(*types.ContentBlockDeltaMemberText)
			if !ok {
				// Non-text deltas (tool use, reasoning) are not part of the
				// chat surface; skip without breaking delta ordering.
				continue
			}
			if !send(ctx, events, llm.ContentDelta{Text: delta.Value}) {
				return
			}

		case *types.ConverseStreamOutputMemberMessageStop:
			send(ctx, events, llm.StreamStop{StopReason: string(v.Value.StopReason)})
			return
		}
	}

	if err := stream.Err(); err != nil {
		c.logger.Warn("bedrock stream failed",
			zap.Error(err),
		)
		send(ctx, events, llm.StreamError{Err: err})
	}
	// A stream that drains without a stop event falls through here; the
	// relay reports the missing terminator to the client.
}

// send delivers ev unless ctx is cancelled first. Returns false when the
// consumer is gone.
func send(ctx context.Context, events chan<- llm.StreamEvent, ev llm.StreamEvent) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
