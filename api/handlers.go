package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/lecternhq/lectern/api/worker"
	"github.com/lecternhq/lectern/pkg/llm"
)

// handleCompletion answers a single-prompt completion request.
func (s *Server) handleCompletion(c *fiber.Ctx) error {
	var req llm.CompletionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "invalid request body"})
	}

	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: err.Error()})
	}

	return s.converse(c, req.Chat(), "completions")
}

// handleChat answers a multi-turn chat request with the full response at once.
func (s *Server) handleChat(c *fiber.Ctx) error {
	var req llm.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "invalid request body"})
	}

	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: err.Error()})
	}

	return s.converse(c, &req, "chats")
}

// converse performs a blocking model invocation and records its usage
// asynchronously so accounting stays off the response path.
func (s *Server) converse(c *fiber.Ctx, req *llm.ChatRequest, route string) error {
	ctx, cancel := context.WithTimeout(c.Context(), s.config.RequestTimeout)
	defer cancel()

	start := time.Now()

	resp, err := s.model.Converse(ctx, req)
	if err != nil {
		s.logger.Error("model invocation failed",
			zap.String("route", route),
			zap.String("request_id", requestID(c)),
			zap.Error(err),
		)
		return c.Status(fiber.StatusBadGateway).JSON(llm.ErrorResponse{Error: "model invocation failed"})
	}

	s.pool.Enqueue(worker.Job{
		RequestID: requestID(c),
		Route:     route,
		ModelID:   resp.ModelID,
		Usage:     resp.Usage,
		Duration:  time.Since(start),
	})

	return c.JSON(resp)
}
