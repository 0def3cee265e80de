package canvas

import (
	"context"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lecternhq/lectern/pkg/logger"
)

// recordedRequest captures what the upstream stub saw for assertions.
type recordedRequest struct {
	Path  string
	Query map[string][]string
	Auth  string
}

// newStubCanvas starts an httptest server answering every request with the
// given status and body, recording the last request it saw.
func newStubCanvas(status int, body string, headers map[string]string) (*httptest.Server, *recordedRequest) {
	last := &recordedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		last.Path = r.URL.Path
		last.Query = r.URL.Query()
		last.Auth = r.Header.Get("Authorization")

		for k, v := range headers {
			w.Header().Set(k, v)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	return srv, last
}

// newClientFor builds a Client pointed at the stub server.
func newClientFor(srv *httptest.Server) *Client {
	c, err := New(Config{
		APIKey: "token-123",
		Domain: srv.URL,
	}, logger.Nop())
	Expect(err).NotTo(HaveOccurred())
	return c
}

var _ = Describe("New", func() {
	It("returns ErrNotConfigured when the key is missing", func() {
		_, err := New(Config{Domain: "canvas.example.edu"}, logger.Nop())
		Expect(err).To(MatchError(ErrNotConfigured))
	})

	It("returns ErrNotConfigured when the domain is missing", func() {
		_, err := New(Config{APIKey: "token"}, logger.Nop())
		Expect(err).To(MatchError(ErrNotConfigured))
	})
})

var _ = Describe("normalizeDomain", func() {
	It("prefixes https when no scheme is given", func() {
		Expect(normalizeDomain("canvas.example.edu")).To(Equal("https://canvas.example.edu"))
	})

	It("preserves an explicit http scheme", func() {
		Expect(normalizeDomain("http://localhost:3000")).To(Equal("http://localhost:3000"))
	})

	It("strips trailing slashes", func() {
		Expect(normalizeDomain("https://canvas.example.edu/")).To(Equal("https://canvas.example.edu"))
	})

	It("trims surrounding whitespace", func() {
		Expect(normalizeDomain(" canvas.example.edu ")).To(Equal("https://canvas.example.edu"))
	})
})

var _ = Describe("Client", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("SmartSearch", func() {
		It("calls the recipients endpoint with defaults and echoes the query", func() {
			srv, last := newStubCanvas(http.StatusOK, `[{"id":1,"name":"Ada"}]`, map[string]string{
				"X-Total-Count": "1",
			})
			defer srv.Close()

			result := newClientFor(srv).SmartSearch(ctx, SearchParams{Query: "ada"})

			Expect(last.Path).To(Equal("/api/v1/search/recipients"))
			Expect(last.Query["q"]).To(ConsistOf("ada"))
			Expect(last.Query["per_page"]).To(ConsistOf("20"))
			Expect(last.Auth).To(Equal("Bearer token-123"))

			Expect(result.Success).To(BeTrue())
			Expect(result.Query).To(Equal("ada"))
			Expect(result.TotalCount).To(Equal("1"))
			Expect(string(result.Data)).To(ContainSubstring("Ada"))
		})

		It("passes type and context filters through", func() {
			srv, last := newStubCanvas(http.StatusOK, `[]`, nil)
			defer srv.Close()

			newClientFor(srv).SmartSearch(ctx, SearchParams{
				Query:   "hw1",
				PerPage: 5,
				Type:    "user",
				Context: "course_42",
			})

			Expect(last.Query["per_page"]).To(ConsistOf("5"))
			Expect(last.Query["type"]).To(ConsistOf("user"))
			Expect(last.Query["context"]).To(ConsistOf("course_42"))
		})
	})

	Describe("StudentsInCourse", func() {
		It("lists users with enrollment defaults and include flags", func() {
			srv, last := newStubCanvas(http.StatusOK, `[{"id":7}]`, nil)
			defer srv.Close()

			result := newClientFor(srv).StudentsInCourse(ctx, "42", StudentParams{
				IncludeAvatarURL:   true,
				IncludeEnrollments: true,
			})

			Expect(last.Path).To(Equal("/api/v1/courses/42/users"))
			Expect(last.Query["enrollment_type"]).To(ConsistOf("StudentEnrollment"))
			Expect(last.Query["enrollment_state"]).To(ConsistOf("active"))
			Expect(last.Query["per_page"]).To(ConsistOf("100"))
			Expect(last.Query["include[]"]).To(ConsistOf("avatar_url", "enrollments"))

			Expect(result.Success).To(BeTrue())
			Expect(result.CourseID).To(Equal("42"))
		})

		It("echoes the course id even on failure", func() {
			srv, _ := newStubCanvas(http.StatusNotFound, `{"errors":[{"message":"not found"}]}`, nil)
			defer srv.Close()

			result := newClientFor(srv).StudentsInCourse(ctx, "99", StudentParams{})

			Expect(result.Success).To(BeFalse())
			Expect(result.Status).To(Equal(http.StatusNotFound))
			Expect(result.CourseID).To(Equal("99"))
		})
	})

	Describe("CurrentUser", func() {
		It("fetches the self profile", func() {
			srv, last := newStubCanvas(http.StatusOK, `{"id":1,"name":"Teach"}`, nil)
			defer srv.Close()

			result := newClientFor(srv).CurrentUser(ctx)

			Expect(last.Path).To(Equal("/api/v1/users/self/profile"))
			Expect(result.Success).To(BeTrue())
		})
	})

	Describe("TestConnection", func() {
		It("probes the self endpoint and reports the domain", func() {
			srv, last := newStubCanvas(http.StatusOK, `{"id":1}`, nil)
			defer srv.Close()

			c := newClientFor(srv)
			result := c.TestConnection(ctx)

			Expect(last.Path).To(Equal("/api/v1/users/self"))
			Expect(result.Success).To(BeTrue())
			Expect(result.Domain).To(Equal(c.Domain()))
		})

		It("reports the domain on auth failures too", func() {
			srv, _ := newStubCanvas(http.StatusUnauthorized, `{"errors":[{"message":"Invalid access token."}]}`, nil)
			defer srv.Close()

			c := newClientFor(srv)
			result := c.TestConnection(ctx)

			Expect(result.Success).To(BeFalse())
			Expect(result.Status).To(Equal(http.StatusUnauthorized))
			Expect(result.Domain).To(Equal(c.Domain()))
		})
	})

	Describe("Courses", func() {
		It("lists active courses by default", func() {
			srv, last := newStubCanvas(http.StatusOK, `[]`, nil)
			defer srv.Close()

			result := newClientFor(srv).Courses(ctx, CourseParams{})

			Expect(last.Path).To(Equal("/api/v1/courses"))
			Expect(last.Query["enrollment_state"]).To(ConsistOf("active"))
			Expect(last.Query["per_page"]).To(ConsistOf("20"))
			Expect(result.Success).To(BeTrue())
		})
	})

	Describe("error folding", func() {
		It("quotes a non-JSON error body so the envelope still marshals", func() {
			srv, _ := newStubCanvas(http.StatusBadGateway, "upstream exploded", nil)
			defer srv.Close()

			result := newClientFor(srv).CurrentUser(ctx)

			Expect(result.Success).To(BeFalse())
			Expect(result.Status).To(Equal(http.StatusBadGateway))
			Expect(result.ErrorText()).To(Equal("upstream exploded"))
		})

		It("folds transport failures into a 500 result", func() {
			srv, _ := newStubCanvas(http.StatusOK, `{}`, nil)
			srv.Close() // connection refused from here on

			result := newClientFor(srv).CurrentUser(ctx)

			Expect(result.Success).To(BeFalse())
			Expect(result.Status).To(Equal(http.StatusInternalServerError))
			Expect(result.ErrorText()).NotTo(BeEmpty())
		})
	})
})
