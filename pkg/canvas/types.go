package canvas

import "encoding/json"

// Result is the uniform envelope every Canvas call resolves to. A successful
// call carries the upstream JSON payload in Data; a failed call carries the
// upstream error payload (or a transport error message) in Error plus the
// HTTP status to report. The contextual fields echo request parameters the
// way the workshop frontend expects them.
type Result struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data,omitempty"`
	Error      json.RawMessage `json:"error,omitempty"`
	Status     int             `json:"status,omitempty"`
	TotalCount string          `json:"total_count,omitempty"`

	// Contextual echoes, populated per endpoint.
	Query    string `json:"query,omitempty"`
	CourseID string `json:"course_id,omitempty"`
	Domain   string `json:"domain,omitempty"`
}

// ErrorText returns the error payload as display text, unquoting plain
// JSON strings.
func (r *Result) ErrorText() string {
	if len(r.Error) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(r.Error, &text); err == nil {
		return text
	}
	return string(r.Error)
}

// SearchParams are the options for SmartSearch. Query is required; zero
// values for the rest fall back to the Canvas defaults.
type SearchParams struct {
	Query   string
	PerPage int
	Type    string
	Context string
}

// StudentParams are the options for StudentsInCourse.
type StudentParams struct {
	EnrollmentType     string
	EnrollmentState    string
	PerPage            int
	IncludeAvatarURL   bool
	IncludeEnrollments bool
}

// CourseParams are the options for Courses.
type CourseParams struct {
	EnrollmentType  string
	EnrollmentState string
	PerPage         int
}
