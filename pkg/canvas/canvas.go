// Package canvas is a client for the Canvas LMS REST API. Every call
// resolves to a uniform Result envelope: upstream and transport failures are
// folded into the envelope rather than returned as Go errors, so route
// handlers treat all outcomes the same way.
package canvas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	apiPrefix        = "/api/v1"
	defaultTimeout   = 30 * time.Second
	totalCountHeader = "X-Total-Count"
)

// ErrNotConfigured is returned by New when credentials are missing. The
// server runs without Canvas in that case and reports 503 on Canvas routes.
var ErrNotConfigured = errors.New("canvas integration not configured: set CANVAS_API_KEY and CANVAS_DOMAIN")

// Config holds the Canvas connection settings.
type Config struct {
	// APIKey is the Canvas access token, forwarded as a bearer token.
	APIKey string

	// Domain is the Canvas host, with or without a scheme
	// (e.g. "canvas.example.edu" or "https://canvas.example.edu/").
	Domain string

	// Timeout bounds each request (defaults to 30s).
	Timeout time.Duration
}

// Client calls the Canvas REST API. It is safe for concurrent use.
type Client struct {
	baseURL string
	domain  string
	apiKey  string
	http    *http.Client
	logger  *zap.Logger
}

// New validates the credentials and returns a ready Client.
func New(config Config, logger *zap.Logger) (*Client, error) {
	if config.APIKey == "" || config.Domain == "" {
		return nil, ErrNotConfigured
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	domain := normalizeDomain(config.Domain)

	return &Client{
		baseURL: domain + apiPrefix,
		domain:  domain,
		apiKey:  config.APIKey,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}, nil
}

// Domain returns the normalized Canvas base domain.
func (c *Client) Domain() string {
	return c.domain
}

// normalizeDomain ensures the domain has a scheme and no trailing slash.
func normalizeDomain(domain string) string {
	domain = strings.TrimSpace(domain)
	if !strings.HasPrefix(domain, "http://") && !strings.HasPrefix(domain, "https://") {
		domain = "https://" + domain
	}
	return strings.TrimRight(domain, "/")
}

// SmartSearch performs a smart search across Canvas content.
func (c *Client) SmartSearch(ctx context.Context, params SearchParams) *Result {
	query := url.Values{}
	query.Set("q", params.Query)
	query.Set("per_page", strconv.Itoa(orDefault(params.PerPage, 20)))
	if params.Type != "" {
		query.Set("type", params.Type)
	}
	if params.Context != "" {
		query.Set("context", params.Context)
	}

	result := c.request(ctx, http.MethodGet, "/search/recipients", query)
	if result.Success {
		result.Query = params.Query
	}
	return result
}

// StudentsInCourse lists the users enrolled in a course.
func (c *Client) StudentsInCourse(ctx context.Context, courseID string, params StudentParams) *Result {
	query := url.Values{}
	query.Set("enrollment_type", orDefaultString(params.EnrollmentType, "StudentEnrollment"))
	query.Set("enrollment_state", orDefaultString(params.EnrollmentState, "active"))
	query.Set("per_page", strconv.Itoa(orDefault(params.PerPage, 100)))
	if params.IncludeAvatarURL {
		query.Add("include[]", "avatar_url")
	}
	if params.IncludeEnrollments {
		query.Add("include[]", "enrollments")
	}

	result := c.request(ctx, http.MethodGet, "/courses/"+url.PathEscape(courseID)+"/users", query)
	result.CourseID = courseID
	return result
}

// CurrentUser fetches the current user's profile.
func (c *Client) CurrentUser(ctx context.Context) *Result {
	return c.request(ctx, http.MethodGet, "/users/self/profile", nil)
}

// TestConnection probes Canvas connectivity with a self lookup.
func (c *Client) TestConnection(ctx context.Context) *Result {
	result := c.request(ctx, http.MethodGet, "/users/self", nil)
	result.Domain = c.domain
	return result
}

// Courses lists the current user's courses.
func (c *Client) Courses(ctx context.Context, params CourseParams) *Result {
	query := url.Values{}
	query.Set("enrollment_state", orDefaultString(params.EnrollmentState, "active"))
	query.Set("per_page", strconv.Itoa(orDefault(params.PerPage, 20)))
	if params.EnrollmentType != "" {
		query.Set("enrollment_type", params.EnrollmentType)
	}

	return c.request(ctx, http.MethodGet, "/courses", query)
}

// request performs one Canvas API call and folds the outcome into a Result.
func (c *Client) request(ctx context.Context, method, endpoint string, query url.Values) *Result {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, nil)
	if err != nil {
		return transportFailure(fmt.Errorf("building canvas request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if len(query) > 0 {
		req.URL.RawQuery = query.Encode()
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("canvas request failed",
			zap.String("endpoint", endpoint),
			zap.Error(err),
		)
		return transportFailure(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("reading canvas response failed",
			zap.String("endpoint", endpoint),
			zap.Error(err),
		)
		return transportFailure(err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return &Result{
			Success:    true,
			Data:       jsonPayload(body),
			TotalCount: resp.Header.Get(totalCountHeader),
		}
	}

	c.logger.Error("canvas api error",
		zap.Int("status", resp.StatusCode),
		zap.String("endpoint", endpoint),
	)
	return &Result{
		Success: false,
		Error:   jsonPayload(body),
		Status:  resp.StatusCode,
	}
}

// transportFailure wraps a client-side error as a status-500 Result.
func transportFailure(err error) *Result {
	msg, _ := json.Marshal(err.Error())
	return &Result{
		Success: false,
		Error:   msg,
		Status:  http.StatusInternalServerError,
	}
}

// jsonPayload returns body as a raw JSON value, quoting non-JSON bodies as
// strings so the envelope always marshals cleanly.
func jsonPayload(body []byte) json.RawMessage {
	if len(body) == 0 {
		return json.RawMessage("null")
	}
	if json.Valid(body) {
		return json.RawMessage(body)
	}
	quoted, _ := json.Marshal(string(body))
	return quoted
}

func orDefault(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

func orDefaultString(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
