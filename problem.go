package goproblem

import "net/http"

// Well-known member names.
const (
	KeyType     = "type"
	KeyTitle    = "title"
	KeyStatus   = "status"
	KeyDetail   = "detail"
	KeyInstance = "instance"
	KeyErrors   = "errors"
)

// Problem is an RFC 7807 problem details document.
type Problem struct {
	// Type is a URI reference identifying the problem type.
	Type string
	// Title is a short, human-readable summary of the problem type.
	Title string
	// Status is the HTTP status code; nil when unset.
	Status *int
	// Detail explains this occurrence of the problem.
	Detail string
	// Instance is a URI reference identifying this occurrence.
	Instance string
	// Extensions carries every other member, in insertion order.
	Extensions Extensions
}

// ValidationProblem is a Problem carrying per-field validation messages.
type ValidationProblem struct {
	Problem
	Errors ValidationErrors
}

// New returns a Problem with the given status and title.
func New(status int, title string) *Problem {
	return &Problem{Title: title, Status: StatusCode(status)}
}

// NewValidation returns a ValidationProblem with status 400.
func NewValidation(title string) *ValidationProblem {
	if title == "" {
		title = "One or more validation errors occurred."
	}
	return &ValidationProblem{Problem: Problem{Title: title, Status: StatusCode(http.StatusBadRequest)}}
}

// StatusCode returns a pointer to code, for populating Problem.Status.
func StatusCode(code int) *int { return &code }

// StatusOr returns the status, or def when unset.
func (p *Problem) StatusOr(def int) int {
	if p == nil || p.Status == nil {
		return def
	}
	return *p.Status
}

// Error lets a Problem travel as an error value.
func (p *Problem) Error() string {
	switch {
	case p.Detail != "" && p.Title != "":
		return p.Title + ": " + p.Detail
	case p.Detail != "":
		return p.Detail
	case p.Title != "":
		return p.Title
	case p.Status != nil:
		return http.StatusText(*p.Status)
	default:
		return "problem"
	}
}

// AddError appends messages for field, keeping the field's first position.
func (p *ValidationProblem) AddError(field string, msgs ...string) {
	cur, _ := p.Errors.Get(field)
	p.Errors.Set(field, append(cur, msgs...))
}

// isWellKnown reports whether key is one of the five base member names.
func isWellKnown(key string) bool {
	switch key {
	case KeyType, KeyTitle, KeyStatus, KeyDetail, KeyInstance:
		return true
	}
	return false
}
