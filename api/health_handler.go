package api

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/lecternhq/lectern/pkg/llm"
)

// handleHealth probes the Bedrock runtime with a tiny invocation so the
// check exercises credentials and connectivity, not just process liveness.
func (s *Server) handleHealth(c *fiber.Ctx) error {
	maxTokens := 10
	req := &llm.ChatRequest{
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: "Hello"},
		},
		MaxTokens: &maxTokens,
	}

	if _, err := s.model.Converse(c.Context(), req); err != nil {
		s.logger.Warn("health probe failed", zap.Error(err))
		return c.JSON(fiber.Map{
			"status":  "degraded",
			"bedrock": "unreachable",
		})
	}

	return c.JSON(fiber.Map{
		"status":  "ok",
		"bedrock": "connected",
	})
}

// handleUsage reports token totals accumulated since the server started.
func (s *Server) handleUsage(c *fiber.Ctx) error {
	return c.JSON(s.totals.Snapshot())
}
