package xmlformat

import (
	"encoding/xml"

	"github.com/reoring/goproblem"
)

// LegacyProblemWrapper is the pre-RFC 7807 XML shape served to clients that
// pinned compatibility version 2.1. Elements are PascalCase in alphabetical
// order and extensions are not represented.
type LegacyProblemWrapper struct {
	XMLName  xml.Name `xml:"ProblemDetails"`
	Detail   string   `xml:"Detail,omitempty"`
	Instance string   `xml:"Instance,omitempty"`
	Status   *int     `xml:"Status,omitempty"`
	Title    string   `xml:"Title,omitempty"`
	Type     string   `xml:"Type,omitempty"`
}

// NewLegacyProblemWrapper copies the well-known members of p.
func NewLegacyProblemWrapper(p *goproblem.Problem) *LegacyProblemWrapper {
	w := &LegacyProblemWrapper{}
	if p != nil {
		w.Detail, w.Instance, w.Status, w.Title, w.Type = p.Detail, p.Instance, p.Status, p.Title, p.Type
	}
	return w
}

// Original returns a *goproblem.Problem built from the wrapper.
func (w *LegacyProblemWrapper) Original() any {
	return &goproblem.Problem{Type: w.Type, Title: w.Title, Status: w.Status, Detail: w.Detail, Instance: w.Instance}
}

// LegacyError is one field entry of a LegacyValidationProblemWrapper.
type LegacyError struct {
	Key      string   `xml:"Key,attr"`
	Messages []string `xml:"Message"`
}

// LegacyValidationProblemWrapper is the 2.1 shape of a validation problem.
type LegacyValidationProblemWrapper struct {
	XMLName  xml.Name      `xml:"ValidationProblemDetails"`
	Detail   string        `xml:"Detail,omitempty"`
	Errors   []LegacyError `xml:"Errors>Error"`
	Instance string        `xml:"Instance,omitempty"`
	Status   *int          `xml:"Status,omitempty"`
	Title    string        `xml:"Title,omitempty"`
	Type     string        `xml:"Type,omitempty"`
}

// NewLegacyValidationProblemWrapper copies the well-known members and errors
// of p.
func NewLegacyValidationProblemWrapper(p *goproblem.ValidationProblem) *LegacyValidationProblemWrapper {
	w := &LegacyValidationProblemWrapper{}
	if p == nil {
		return w
	}
	w.Detail, w.Instance, w.Status, w.Title, w.Type = p.Detail, p.Instance, p.Status, p.Title, p.Type
	for field, msgs := range p.Errors.All() {
		w.Errors = append(w.Errors, LegacyError{Key: field, Messages: msgs})
	}
	return w
}

// Original returns a *goproblem.ValidationProblem built from the wrapper.
func (w *LegacyValidationProblemWrapper) Original() any {
	p := &goproblem.ValidationProblem{Problem: goproblem.Problem{
		Type: w.Type, Title: w.Title, Status: w.Status, Detail: w.Detail, Instance: w.Instance,
	}}
	for _, e := range w.Errors {
		cur, _ := p.Errors.Get(e.Key)
		p.Errors.Set(e.Key, append(append([]string{}, cur...), e.Messages...))
	}
	return p
}
