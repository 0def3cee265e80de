package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	. "github.com/onsi/gomega"

	"github.com/lecternhq/lectern/pkg/canvas"
	"github.com/lecternhq/lectern/pkg/llm"
	"github.com/lecternhq/lectern/pkg/logger"
)

// fakeModel is a scriptable ModelClient.
type fakeModel struct {
	converse func(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error)
	stream   func(ctx context.Context, req *llm.ChatRequest) (<-chan llm.StreamEvent, error)
}

func (f *fakeModel) Converse(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	return f.converse(ctx, req)
}

func (f *fakeModel) ConverseStream(ctx context.Context, req *llm.ChatRequest) (<-chan llm.StreamEvent, error) {
	return f.stream(ctx, req)
}

// echoModel answers every converse call with a fixed response.
func echoModel(response string) *fakeModel {
	return &fakeModel{
		converse: func(_ context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
			return &llm.ChatResponse{
				Response:   response,
				ModelID:    "test-model",
				StopReason: "end_turn",
				Usage:      llm.Usage{InputTokens: 3, OutputTokens: 5, TotalTokens: 8},
			}, nil
		},
	}
}

// scriptedStream returns a stream function feeding the given events.
func scriptedStream(events ...llm.StreamEvent) func(context.Context, *llm.ChatRequest) (<-chan llm.StreamEvent, error) {
	return func(_ context.Context, _ *llm.ChatRequest) (<-chan llm.StreamEvent, error) {
		ch := make(chan llm.StreamEvent, len(events))
		for _, ev := range events {
			ch <- ev
		}
		close(ch)
		return ch, nil
	}
}

// fakeCanvas is a scriptable CanvasClient returning canned results.
type fakeCanvas struct {
	searchResult  *canvas.Result
	studentResult *canvas.Result
	userResult    *canvas.Result
	testResult    *canvas.Result
	coursesResult *canvas.Result

	lastSearch   canvas.SearchParams
	lastCourseID string
	lastStudents canvas.StudentParams
	lastCourses  canvas.CourseParams
}

func (f *fakeCanvas) SmartSearch(_ context.Context, params canvas.SearchParams) *canvas.Result {
	f.lastSearch = params
	return f.searchResult
}

func (f *fakeCanvas) StudentsInCourse(_ context.Context, courseID string, params canvas.StudentParams) *canvas.Result {
	f.lastCourseID = courseID
	f.lastStudents = params
	return f.studentResult
}

func (f *fakeCanvas) CurrentUser(context.Context) *canvas.Result {
	return f.userResult
}

func (f *fakeCanvas) TestConnection(context.Context) *canvas.Result {
	return f.testResult
}

func (f *fakeCanvas) Courses(_ context.Context, params canvas.CourseParams) *canvas.Result {
	f.lastCourses = params
	return f.coursesResult
}

// newTestServer builds a Server with the given fakes. Canvas may be nil.
func newTestServer(model ModelClient, canvasClient CanvasClient) *Server {
	s, err := NewServer(Config{
		ListenAddr:     ":0",
		RequestTimeout: 5 * time.Second,
	}, model, canvasClient, logger.Nop())
	Expect(err).NotTo(HaveOccurred())
	return s
}

// doJSON performs a JSON request against the server's fiber app.
func doJSON(s *Server, method, path, body string) *http.Response {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.app.Test(req, -1)
	Expect(err).NotTo(HaveOccurred())
	return resp
}
