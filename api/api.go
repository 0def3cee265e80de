package api

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"

	"github.com/lecternhq/lectern/api/worker"
	"github.com/lecternhq/lectern/pkg/canvas"
	"github.com/lecternhq/lectern/pkg/llm"
	"github.com/lecternhq/lectern/pkg/usage"
)

// ModelClient is the subset of the Bedrock client the server invokes.
type ModelClient interface {
	// Converse performs a blocking model invocation and returns the full response.
	Converse(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error)

	// ConverseStream starts a streaming invocation. The returned channel is
	// closed by the client when the stream ends for any reason.
	ConverseStream(ctx context.Context, req *llm.ChatRequest) (<-chan llm.StreamEvent, error)
}

// CanvasClient is the subset of the Canvas LMS client the server invokes.
// A nil CanvasClient means Canvas integration is not configured; the Canvas
// routes then answer 503.
type CanvasClient interface {
	SmartSearch(ctx context.Context, params canvas.SearchParams) *canvas.Result
	StudentsInCourse(ctx context.Context, courseID string, params canvas.StudentParams) *canvas.Result
	CurrentUser(ctx context.Context) *canvas.Result
	TestConnection(ctx context.Context) *canvas.Result
	Courses(ctx context.Context, params canvas.CourseParams) *canvas.Result
}

// Server is the lectern API server.
type Server struct {
	config Config
	model  ModelClient
	canvas CanvasClient
	pool   *worker.Pool
	totals *usage.Accumulator
	logger *zap.Logger
	app    *fiber.App
}

// NewServer creates a new API server.
// The model and canvas clients are injected so tests can substitute fakes;
// canvas may be nil when no Canvas credentials are configured.
func NewServer(config Config, model ModelClient, canvasClient CanvasClient, logger *zap.Logger) (*Server, error) {
	app := fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
		// Enable streaming
		StreamRequestBody: true,
	})

	// Browser clients (the workshop frontend) call from other origins
	app.Use(cors.New())

	totals := usage.NewAccumulator()

	pool, err := worker.NewPool(&worker.Config{
		Totals: totals,
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}

	s := &Server{
		config: config,
		model:  model,
		canvas: canvasClient,
		pool:   pool,
		totals: totals,
		logger: logger,
		app:    app,
	}

	app.Use(s.requestIDMiddleware)

	app.Get("/api/health", s.handleHealth)
	app.Get("/api/usage", s.handleUsage)

	app.Post("/api/completions", s.handleCompletion)
	app.Post("/api/chats", s.handleChat)
	app.Post("/api/streaming/chats", s.handleStreamingChat)

	app.Get("/api/canvas/search", s.handleCanvasSearch)
	app.Get("/api/canvas/courses", s.handleCanvasCourses)
	app.Get("/api/canvas/courses/:course_id/students", s.handleCanvasStudents)
	app.Get("/api/canvas/user", s.handleCanvasUser)
	app.Get("/api/canvas/test", s.handleCanvasTest)

	return s, nil
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		zap.String("listen", s.config.ListenAddr),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server and waits for the usage
// worker pool to drain.
func (s *Server) Shutdown() error {
	err := s.app.Shutdown()
	s.pool.Close()
	return err
}
