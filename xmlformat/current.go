package xmlformat

import (
	"encoding/xml"
	"fmt"
	"io"
	"iter"
	"maps"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/reoring/goproblem"
)

// Namespace is the XML namespace of RFC 7807 Appendix A documents.
const Namespace = "urn:ietf:rfc:7807"

const (
	rootElement      = "problem"
	itemElement      = "i"
	fieldElement     = "field"
	extensionElement = "extension"
	nameAttr         = "name"
	nilAttr          = "nil"
)

// ProblemWrapper renders a Problem in the RFC 7807 XML shape.
type ProblemWrapper struct {
	problem *goproblem.Problem
}

// NewProblemWrapper wraps p.
func NewProblemWrapper(p *goproblem.Problem) *ProblemWrapper { return &ProblemWrapper{problem: p} }

// Original returns the wrapped *goproblem.Problem.
func (w *ProblemWrapper) Original() any { return w.problem }

// MarshalXML implements xml.Marshaler.
func (w *ProblemWrapper) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	return encodeDocument(e, w.problem, nil)
}

// UnmarshalXML implements xml.Unmarshaler.
func (w *ProblemWrapper) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	if err := checkRoot(start); err != nil {
		return err
	}
	if w.problem == nil {
		w.problem = &goproblem.Problem{}
	}
	return decodeDocument(d, w.problem, nil)
}

// ValidationProblemWrapper renders a ValidationProblem in the RFC 7807 XML
// shape, with errors grouped per field.
type ValidationProblemWrapper struct {
	problem *goproblem.ValidationProblem
}

// NewValidationProblemWrapper wraps p.
func NewValidationProblemWrapper(p *goproblem.ValidationProblem) *ValidationProblemWrapper {
	return &ValidationProblemWrapper{problem: p}
}

// Original returns the wrapped *goproblem.ValidationProblem.
func (w *ValidationProblemWrapper) Original() any { return w.problem }

// MarshalXML implements xml.Marshaler.
func (w *ValidationProblemWrapper) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	if w.problem == nil {
		return encodeDocument(e, nil, nil)
	}
	return encodeDocument(e, &w.problem.Problem, &w.problem.Errors)
}

// UnmarshalXML implements xml.Unmarshaler.
func (w *ValidationProblemWrapper) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	if err := checkRoot(start); err != nil {
		return err
	}
	if w.problem == nil {
		w.problem = &goproblem.ValidationProblem{}
	}
	return decodeDocument(d, &w.problem.Problem, &w.problem.Errors)
}

// checkRoot accepts <problem> in the RFC 7807 namespace or without one.
func checkRoot(start xml.StartElement) error {
	if start.Name.Local != rootElement || (start.Name.Space != "" && start.Name.Space != Namespace) {
		return fmt.Errorf("%w: unexpected root element {%s}%s", goproblem.ErrMalformed, start.Name.Space, start.Name.Local)
	}
	return nil
}

// encodeDocument writes the problem element. errs is nil for plain problems.
func encodeDocument(e *xml.Encoder, p *goproblem.Problem, errs *goproblem.ValidationErrors) error {
	start := xml.StartElement{Name: xml.Name{Space: Namespace, Local: rootElement}}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if p != nil {
		if err := encodeMembers(e, p, errs); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

func encodeMembers(e *xml.Encoder, p *goproblem.Problem, errs *goproblem.ValidationErrors) error {
	for _, f := range []struct{ name, value string }{
		{goproblem.KeyType, p.Type},
		{goproblem.KeyTitle, p.Title},
	} {
		if f.value != "" {
			if err := e.EncodeElement(f.value, element(f.name)); err != nil {
				return err
			}
		}
	}
	if p.Status != nil {
		if err := e.EncodeElement(*p.Status, element(goproblem.KeyStatus)); err != nil {
			return err
		}
	}
	for _, f := range []struct{ name, value string }{
		{goproblem.KeyDetail, p.Detail},
		{goproblem.KeyInstance, p.Instance},
	} {
		if f.value != "" {
			if err := e.EncodeElement(f.value, element(f.name)); err != nil {
				return err
			}
		}
	}
	if errs != nil && errs.Len() > 0 {
		if err := encodeErrors(e, errs); err != nil {
			return err
		}
	}
	for k, v := range p.Extensions.All() {
		if reservedMember(k, errs != nil) {
			return fmt.Errorf("%w: extension %q collides with member", goproblem.ErrDuplicateKey, k)
		}
		if err := encodeValue(e, memberElement(k), v); err != nil {
			return err
		}
	}
	return nil
}

func encodeErrors(e *xml.Encoder, errs *goproblem.ValidationErrors) error {
	start := element(goproblem.KeyErrors)
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	for field, msgs := range errs.All() {
		fs := element(fieldElement)
		fs.Attr = []xml.Attr{{Name: xml.Name{Local: nameAttr}, Value: field}}
		if err := e.EncodeToken(fs); err != nil {
			return err
		}
		for _, m := range msgs {
			if err := e.EncodeElement(m, element(itemElement)); err != nil {
				return err
			}
		}
		if err := e.EncodeToken(fs.End()); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

func encodeValue(e *xml.Encoder, start xml.StartElement, v any) error {
	switch x := v.(type) {
	case nil:
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: nilAttr}, Value: "true"})
		if err := e.EncodeToken(start); err != nil {
			return err
		}
		return e.EncodeToken(start.End())
	case []any:
		return encodeSeq(e, start, x)
	case []string:
		items := make([]any, len(x))
		for i, s := range x {
			items[i] = s
		}
		return encodeSeq(e, start, items)
	case *goproblem.Extensions:
		if x == nil {
			return encodeValue(e, start, nil)
		}
		return encodeMap(e, start, x.All())
	case map[string]any:
		m := goproblem.NewExtensions()
		for _, k := range slices.Sorted(maps.Keys(x)) {
			m.Set(k, x[k])
		}
		return encodeMap(e, start, m.All())
	default:
		return e.EncodeElement(v, start)
	}
}

func encodeSeq(e *xml.Encoder, start xml.StartElement, items []any) error {
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	for _, it := range items {
		if err := encodeValue(e, element(itemElement), it); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

func encodeMap(e *xml.Encoder, start xml.StartElement, all iter.Seq2[string, any]) error {
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	for k, v := range all {
		if err := encodeValue(e, memberElement(k), v); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

// decodeDocument reads the children of the problem element into p. errs is
// nil for plain problems, in which case an errors element is an extension.
func decodeDocument(d *xml.Decoder, p *goproblem.Problem, errs *goproblem.ValidationErrors) error {
	for {
		tok, err := d.Token()
		if err != nil {
			if err == io.EOF {
				return fmt.Errorf("%w: unexpected end of input", goproblem.ErrMalformed)
			}
			return err
		}
		switch t := tok.(type) {
		case xml.EndElement:
			return nil
		case xml.StartElement:
			if err := decodeMember(d, t, p, errs); err != nil {
				return err
			}
		}
	}
}

func decodeMember(d *xml.Decoder, t xml.StartElement, p *goproblem.Problem, errs *goproblem.ValidationErrors) error {
	switch t.Name.Local {
	case goproblem.KeyType:
		return d.DecodeElement(&p.Type, &t)
	case goproblem.KeyTitle:
		return d.DecodeElement(&p.Title, &t)
	case goproblem.KeyDetail:
		return d.DecodeElement(&p.Detail, &t)
	case goproblem.KeyInstance:
		return d.DecodeElement(&p.Instance, &t)
	case goproblem.KeyStatus:
		var s string
		if err := d.DecodeElement(&s, &t); err != nil {
			return err
		}
		if strings.TrimSpace(s) == "" {
			p.Status = nil
			return nil
		}
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
		if err != nil {
			return fmt.Errorf("%w: status %q: %w", goproblem.ErrTypeMismatch, s, err)
		}
		p.Status = goproblem.StatusCode(int(n))
		return nil
	case goproblem.KeyErrors:
		if errs != nil {
			return decodeErrors(d, errs)
		}
	}
	v, err := decodeValue(d, t)
	if err != nil {
		return err
	}
	key := memberKey(t)
	if p.Extensions.Has(key) {
		return fmt.Errorf("%w: extension %q", goproblem.ErrDuplicateKey, key)
	}
	p.Extensions.Set(key, v)
	return nil
}

func decodeErrors(d *xml.Decoder, errs *goproblem.ValidationErrors) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.EndElement:
			return nil
		case xml.StartElement:
			var f struct {
				Name  string   `xml:"name,attr"`
				Items []string `xml:"i"`
			}
			if err := d.DecodeElement(&f, &t); err != nil {
				return err
			}
			if f.Items == nil {
				f.Items = []string{}
			}
			errs.Set(f.Name, f.Items)
		}
	}
}

type node struct {
	key  string
	item bool
	val  any
}

// decodeValue reads an extension element. Text-only elements become strings,
// elements whose children are all items become []any and anything else
// becomes a nested *goproblem.Extensions.
func decodeValue(d *xml.Decoder, start xml.StartElement) (any, error) {
	if attrValue(start, nilAttr) == "true" {
		return nil, d.Skip()
	}
	var text strings.Builder
	var children []node
	for {
		tok, err := d.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.CharData:
			text.Write(t)
		case xml.StartElement:
			v, err := decodeValue(d, t)
			if err != nil {
				return nil, err
			}
			item := t.Name.Local == itemElement && attrValue(t, nameAttr) == ""
			children = append(children, node{key: memberKey(t), item: item, val: v})
		case xml.EndElement:
			return collapse(text.String(), children)
		}
	}
}

func collapse(text string, children []node) (any, error) {
	if len(children) == 0 {
		return text, nil
	}
	if !slices.ContainsFunc(children, func(n node) bool { return !n.item }) {
		seq := make([]any, len(children))
		for i, c := range children {
			seq[i] = c.val
		}
		return seq, nil
	}
	obj := goproblem.NewExtensions()
	for _, c := range children {
		if err := obj.Add(c.key, c.val); err != nil {
			return nil, err
		}
	}
	return obj, nil
}

func element(local string) xml.StartElement {
	return xml.StartElement{Name: xml.Name{Local: local}}
}

// memberElement uses the key as element name when it is a valid XML name and
// falls back to <extension name="key"> otherwise. The item and extension
// element names always take the fallback.
func memberElement(key string) xml.StartElement {
	if validName(key) && key != extensionElement && key != itemElement {
		return element(key)
	}
	s := element(extensionElement)
	s.Attr = []xml.Attr{{Name: xml.Name{Local: nameAttr}, Value: key}}
	return s
}

func memberKey(t xml.StartElement) string {
	if t.Name.Local == extensionElement {
		if n := attrValue(t, nameAttr); n != "" {
			return n
		}
	}
	return t.Name.Local
}

func reservedMember(key string, validation bool) bool {
	switch key {
	case goproblem.KeyType, goproblem.KeyTitle, goproblem.KeyStatus, goproblem.KeyDetail, goproblem.KeyInstance:
		return true
	case goproblem.KeyErrors:
		return validation
	}
	return false
}

func attrValue(t xml.StartElement, local string) string {
	for _, a := range t.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

func validName(s string) bool {
	if s == "" || strings.HasPrefix(strings.ToLower(s), "xml") {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && (r == '-' || r == '.' || unicode.IsDigit(r)):
		default:
			return false
		}
	}
	return true
}
