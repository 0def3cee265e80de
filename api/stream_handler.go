package api

import (
	"context"
	"io"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/lecternhq/lectern/pkg/llm"
	"github.com/lecternhq/lectern/pkg/relay"
)

// handleStreamingChat answers a chat request as a server-sent event stream,
// forwarding model deltas to the client as they arrive.
func (s *Server) handleStreamingChat(c *fiber.Ctx) error {
	var req llm.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "invalid request body"})
	}

	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: err.Error()})
	}

	// Use context.Background() instead of c.Context() because fasthttp recycles
	// its RequestCtx after the handler returns, but the relay goroutine keeps
	// writing after that and needs the model stream to remain open.
	ctx, cancel := context.WithCancel(context.Background())

	events, err := s.model.ConverseStream(ctx, &req)
	if err != nil {
		cancel()
		s.logger.Error("model stream failed to open",
			zap.String("request_id", requestID(c)),
			zap.Error(err),
		)
		return c.Status(fiber.StatusBadGateway).JSON(llm.ErrorResponse{Error: "model invocation failed"})
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	// Use io.Pipe + SetBodyStream instead of SetBodyStreamWriter.
	// SetBodyStreamWriter buffers chunks internally, so Flush() in the callback
	// pushes data into the pipe rather than to the TCP socket. With io.Pipe,
	// pw.Write blocks until fasthttp's writeBodyChunked consumes the data and
	// flushes it, which gives direct backpressure and true per-delta streaming.
	//
	// When the client disconnects, fasthttp closes pr, the next pw.Write in
	// the relay fails, and cancel() tears down the model stream.
	pr, pw := io.Pipe()

	go s.relayToPipe(ctx, cancel, events, pw, requestID(c))

	// Unknown size (-1) triggers chunked transfer encoding in fasthttp.
	c.Context().Response.SetBodyStream(pr, -1)

	return nil
}

// relayToPipe runs the relay loop in a goroutine, closing the pipe when the
// stream ends so fasthttp terminates the chunked response.
func (s *Server) relayToPipe(ctx context.Context, cancel context.CancelFunc, events <-chan llm.StreamEvent, pw *io.PipeWriter, reqID string) {
	defer cancel()
	defer pw.Close()

	logger := s.logger.With(zap.String("request_id", reqID))

	if err := relay.Run(ctx, events, pw, logger); err != nil {
		logger.Debug("stream relay ended", zap.Error(err))
	}
}
