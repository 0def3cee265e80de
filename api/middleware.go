package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const requestIDKey = "request_id"

// requestIDMiddleware assigns each request a UUID, stores it in the request
// locals, and echoes it back in the X-Request-Id response header so clients
// can correlate their logs with the server's.
func (s *Server) requestIDMiddleware(c *fiber.Ctx) error {
	id := c.Get("X-Request-Id")
	if id == "" {
		id = uuid.NewString()
	}

	c.Locals(requestIDKey, id)
	c.Set("X-Request-Id", id)

	return c.Next()
}

// requestID returns the request id assigned by requestIDMiddleware.
func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals(requestIDKey).(string); ok {
		return id
	}
	return ""
}
