package goproblem

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Issue codes.
const (
	CodeParseError   = "parse_error"
	CodeInvalidType  = "invalid_type"
	CodeDuplicateKey = "duplicate_key"
	CodeTruncated    = "truncated"
)

// Sentinel errors matched by errors.Is against an *Issue of the same code.
var (
	ErrMalformed    = errors.New("goproblem: malformed document")
	ErrTypeMismatch = errors.New("goproblem: type mismatch")
	ErrDuplicateKey = errors.New("goproblem: duplicate key")
	ErrTruncated    = errors.New("goproblem: max bytes exceeded")
)

// Issue describes why a document could not be read or written.
type Issue struct {
	Path    string // JSON Pointer (for example: /errors/email).
	Code    string // One of the codes listed above.
	Message string
	Offset  int64 // Byte offset in the input source (-1 when unknown).
	Cause   error // Optional: underlying error.
}

// Error renders e.g. "invalid_type at /status: expected number, got string".
func (i *Issue) Error() string {
	b := &strings.Builder{}
	b.WriteString(i.Code)
	if i.Path != "" {
		fmt.Fprintf(b, " at %s", i.Path)
	}
	if i.Message != "" {
		b.WriteString(": ")
		b.WriteString(i.Message)
	}
	if i.Offset >= 0 {
		fmt.Fprintf(b, " (offset %d)", i.Offset)
	}
	return b.String()
}

// Unwrap exposes the underlying cause, if any.
func (i *Issue) Unwrap() error { return i.Cause }

// Is matches the sentinel error for the issue's code.
func (i *Issue) Is(target error) bool {
	switch target {
	case ErrMalformed:
		return i.Code == CodeParseError
	case ErrTypeMismatch:
		return i.Code == CodeInvalidType
	case ErrDuplicateKey:
		return i.Code == CodeDuplicateKey
	case ErrTruncated:
		return i.Code == CodeTruncated
	}
	return false
}

// AsIssue extracts an *Issue from an error chain.
func AsIssue(err error) (*Issue, bool) {
	if err == nil {
		return nil, false
	}
	var iss *Issue
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

func newIssue(code, path, msg string, offset int64) *Issue {
	return &Issue{Path: normalizePath(path), Code: code, Message: msg, Offset: offset}
}

func malformed(r *Reader, path, msg string) *Issue {
	return newIssue(CodeParseError, path, msg, r.Offset())
}

// readFailure converts a driver error into a parse_error issue.
func readFailure(r *Reader, path string, err error) error {
	if _, ok := AsIssue(err); ok {
		return err
	}
	iss := malformed(r, path, err.Error())
	iss.Cause = err
	return iss
}

func unexpectedEnd(r *Reader, path string) *Issue {
	return malformed(r, path, "unexpected end of input")
}

func typeMismatch(r *Reader, path, expected string) *Issue {
	return newIssue(CodeInvalidType, path, "expected "+expected+", got "+r.Kind().String(), r.Offset())
}

func duplicateKey(path, key string) *Issue {
	return newIssue(CodeDuplicateKey, path, "key '"+key+"' duplicated", -1)
}

func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	return p
}

var jsonPointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func joinPointer(base, token string) string {
	if base == "/" {
		base = ""
	}
	return base + "/" + jsonPointerEscaper.Replace(token)
}

func truncated(limit int64) *Issue {
	return newIssue(CodeTruncated, "", "max bytes exceeded ("+strconv.FormatInt(limit, 10)+")", -1)
}
