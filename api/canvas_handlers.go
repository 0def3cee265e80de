package api

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"github.com/lecternhq/lectern/pkg/canvas"
	"github.com/lecternhq/lectern/pkg/llm"
)

// connectivityResponse wraps a Canvas result with a summary flag for the
// connectivity probe, which always answers 200.
type connectivityResponse struct {
	*canvas.Result
	CanvasConnected bool `json:"canvas_connected"`
}

// handleCanvasSearch performs a Canvas smart search across recipients.
func (s *Server) handleCanvasSearch(c *fiber.Ctx) error {
	if s.canvas == nil {
		return s.canvasUnavailable(c)
	}

	query := c.Query("q")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "query parameter q is required"})
	}

	result := s.canvas.SmartSearch(c.Context(), canvas.SearchParams{
		Query:   query,
		PerPage: c.QueryInt("per_page", 20),
		Type:    c.Query("type"),
		Context: c.Query("context"),
	})

	return canvasResult(c, result)
}

// handleCanvasCourses lists the courses visible to the configured token.
func (s *Server) handleCanvasCourses(c *fiber.Ctx) error {
	if s.canvas == nil {
		return s.canvasUnavailable(c)
	}

	result := s.canvas.Courses(c.Context(), canvas.CourseParams{
		EnrollmentState: c.Query("enrollment_state", "active"),
		EnrollmentType:  c.Query("enrollment_type"),
		PerPage:         c.QueryInt("per_page", 20),
	})

	return canvasResult(c, result)
}

// handleCanvasStudents lists the students enrolled in a course.
func (s *Server) handleCanvasStudents(c *fiber.Ctx) error {
	if s.canvas == nil {
		return s.canvasUnavailable(c)
	}

	result := s.canvas.StudentsInCourse(c.Context(), c.Params("course_id"), canvas.StudentParams{
		EnrollmentType:     c.Query("enrollment_type", "StudentEnrollment"),
		EnrollmentState:    c.Query("enrollment_state", "active"),
		PerPage:            c.QueryInt("per_page", 100),
		IncludeAvatarURL:   c.QueryBool("include_avatar_url", true),
		IncludeEnrollments: c.QueryBool("include_enrollments", true),
	})

	return canvasResult(c, result)
}

// handleCanvasUser returns the profile of the token's user.
func (s *Server) handleCanvasUser(c *fiber.Ctx) error {
	if s.canvas == nil {
		return s.canvasUnavailable(c)
	}

	return canvasResult(c, s.canvas.CurrentUser(c.Context()))
}

// handleCanvasTest probes Canvas connectivity. Unlike the other Canvas
// routes it always answers 200 so frontends can render the outcome
// instead of treating it as a request failure.
func (s *Server) handleCanvasTest(c *fiber.Ctx) error {
	if s.canvas == nil {
		return s.canvasUnavailable(c)
	}

	result := s.canvas.TestConnection(c.Context())

	return c.JSON(connectivityResponse{
		Result:          result,
		CanvasConnected: result.Success,
	})
}

// canvasResult writes a Canvas result with the status the upstream reported,
// defaulting to 200 for successful calls.
func canvasResult(c *fiber.Ctx, result *canvas.Result) error {
	status := result.Status
	if status == 0 {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(result)
}

// canvasUnavailable answers Canvas routes when no Canvas credentials were
// configured at startup.
func (s *Server) canvasUnavailable(c *fiber.Ctx) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(canvas.Result{
		Success: false,
		Error:   json.RawMessage(`"canvas integration is not configured"`),
		Status:  fiber.StatusServiceUnavailable,
	})
}
