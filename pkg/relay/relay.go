// Package relay translates a vendor streaming response into Server-Sent
// Events on a client connection. It bridges the model client's event channel
// and the HTTP response body: events are encoded and written strictly in
// arrival order, one frame per event, with no batching or coalescing.
package relay

import (
	"context"
	"io"

	"go.uber.org/zap"

	"github.com/lecternhq/lectern/pkg/llm"
	"github.com/lecternhq/lectern/pkg/sse"
)

// DeltaFrame carries one incremental text fragment.
type DeltaFrame struct {
	Text string `json:"text"`
}

// DoneFrame is the terminal frame of a normally completed stream.
type DoneFrame struct {
	Done  bool      `json:"done"`
	Usage DoneUsage `json:"usage"`
}

// DoneUsage carries the stop reason and, when the vendor delivered them
// before stopping, token counts.
type DoneUsage struct {
	StopReason   string `json:"stopReason"`
	InputTokens  int    `json:"inputTokens,omitempty"`
	OutputTokens int    `json:"outputTokens,omitempty"`
}

// ErrorFrame reports a mid-stream failure. Frames already written stand:
// the client keeps the partial text it has accumulated.
type ErrorFrame struct {
	Error string `json:"error"`
}

// Run consumes events and writes one SSE frame per event to dest until a
// terminal event arrives, the channel closes, ctx is cancelled, or a write
// fails (the client hung up). The sequence Run produces is finite and
// non-restartable, and no frame is ever written after a terminal frame.
//
// Cancellation writes nothing: there is no client left to receive a frame.
// The caller owns cancelling the vendor call; Run only stops consuming.
func Run(ctx context.Context, events <-chan llm.StreamEvent, dest io.Writer, logger *zap.Logger) error {
	w := sse.NewWriter(dest)
	deltas := 0

	for {
		select {
		case <-ctx.Done():
			logger.Debug("relay cancelled",
				zap.Int("deltas", deltas),
			)
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				// Vendor channel closed without a stop event.
				logger.Warn("stream ended without stop event",
					zap.Int("deltas", deltas),
				)
				return w.WriteJSON(ErrorFrame{Error: "stream ended unexpectedly"})
			}

			switch ev := ev.(type) {
			case llm.ContentDelta:
				if err := w.WriteJSON(DeltaFrame{Text: ev.Text}); err != nil {
					return err
				}
				deltas++

			case llm.StreamStop:
				frame := DoneFrame{Done: true, Usage: DoneUsage{StopReason: ev.StopReason}}
				if ev.Usage != nil {
					frame.Usage.InputTokens = ev.Usage.InputTokens
					frame.Usage.OutputTokens = ev.Usage.OutputTokens
				}
				logger.Debug("stream complete",
					zap.Int("deltas", deltas),
					zap.String("stop_reason", ev.StopReason),
				)
				return w.WriteJSON(frame)

			case llm.StreamError:
				logger.Warn("vendor stream failed mid-flight",
					zap.Int("deltas", deltas),
					zap.Error(ev.Err),
				)
				return w.WriteJSON(ErrorFrame{Error: ev.Err.Error()})
			}
		}
	}
}
