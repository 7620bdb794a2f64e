package goproblem

import (
	"slices"
	"strconv"
)

// WriteProblem writes p as a JSON object with members in the order
// type, title, status, detail, instance, then extensions in stored order.
// Empty strings and an unset status are omitted. A nil p is written as null.
func WriteProblem(w *Writer, p *Problem) error {
	if p == nil {
		w.Null()
		return w.Err()
	}
	w.BeginObject()
	writeProblemFields(w, p)
	if err := WriteExtensions(w, &p.Extensions); err != nil {
		return err
	}
	w.EndObject()
	return w.Err()
}

// WriteValidationProblem writes p like WriteProblem, with a non-empty errors
// member placed after the base members and before extensions.
func WriteValidationProblem(w *Writer, p *ValidationProblem) error {
	if p == nil {
		w.Null()
		return w.Err()
	}
	w.BeginObject()
	writeProblemFields(w, &p.Problem)
	if p.Errors.Len() > 0 {
		w.Key(KeyErrors)
		WriteErrors(w, &p.Errors)
	}
	if err := WriteExtensions(w, &p.Extensions, KeyErrors); err != nil {
		return err
	}
	w.EndObject()
	return w.Err()
}

func writeProblemFields(w *Writer, p *Problem) {
	if p.Type != "" {
		w.Key(KeyType)
		w.String(p.Type)
	}
	if p.Title != "" {
		w.Key(KeyTitle)
		w.String(p.Title)
	}
	if p.Status != nil {
		w.Key(KeyStatus)
		w.Int(int64(*p.Status))
	}
	if p.Detail != "" {
		w.Key(KeyDetail)
		w.String(p.Detail)
	}
	if p.Instance != "" {
		w.Key(KeyInstance)
		w.String(p.Instance)
	}
}

// WriteExtensions writes each entry of ext as an object member. Keys that
// collide with a well-known member, or with one of reserved, fail with a
// duplicate_key issue instead of producing a duplicate wire key.
func WriteExtensions(w *Writer, ext *Extensions, reserved ...string) error {
	for k, v := range ext.All() {
		if isWellKnown(k) || slices.Contains(reserved, k) {
			iss := newIssue(CodeDuplicateKey, joinPointer("", k), "extension collides with member '"+k+"'", -1)
			w.Fail(iss)
			return iss
		}
		w.Key(k)
		writeValue(w, v)
	}
	return w.Err()
}

// WriteErrors writes errs as an object whose values are string arrays.
func WriteErrors(w *Writer, errs *ValidationErrors) {
	w.BeginObject()
	for field, msgs := range errs.All() {
		w.Key(field)
		writeStrings(w, msgs)
	}
	w.EndObject()
}

// ReadProblem reads a problem document starting at the reader's current token.
// When that token does not open an object, ReadProblem returns (nil, nil)
// without consuming anything. Members are read into existing when it is
// non-nil; an extension key that is already present fails with a
// duplicate_key issue.
func ReadProblem(r *Reader, existing *Problem) (*Problem, error) {
	if r.Kind() != _tokenBeginObject {
		return nil, nil
	}
	p := existing
	if p == nil {
		p = &Problem{}
	}
	for {
		key, ok, err := nextMember(r)
		if err != nil {
			return nil, err
		}
		if !ok {
			return p, nil
		}
		if err := readProblemField(r, p, key); err != nil {
			return nil, err
		}
	}
}

// ReadValidationProblem is ReadProblem for the validation variant: an errors
// member is merged into Errors, everything else is handled as for Problem.
func ReadValidationProblem(r *Reader, existing *ValidationProblem) (*ValidationProblem, error) {
	if r.Kind() != _tokenBeginObject {
		return nil, nil
	}
	p := existing
	if p == nil {
		p = &ValidationProblem{}
	}
	for {
		key, ok, err := nextMember(r)
		if err != nil {
			return nil, err
		}
		if !ok {
			return p, nil
		}
		if key == KeyErrors {
			if err := readErrors(r, &p.Errors); err != nil {
				return nil, err
			}
			continue
		}
		if err := readProblemField(r, &p.Problem, key); err != nil {
			return nil, err
		}
	}
}

// nextMember advances to the next key of the current object. ok is false once
// the closing brace is reached.
func nextMember(r *Reader) (string, bool, error) {
	if err := advance(r, ""); err != nil {
		return "", false, err
	}
	switch r.Kind() {
	case _tokenEndObject:
		return "", false, nil
	case _tokenKey:
		return r.Token().String, true, nil
	default:
		return "", false, malformed(r, "", "expected key, got "+r.Kind().String())
	}
}

func readProblemField(r *Reader, p *Problem, key string) error {
	path := joinPointer("", key)
	if err := advance(r, path); err != nil {
		return err
	}
	switch key {
	case KeyDetail:
		return readString(r, path, &p.Detail)
	case KeyInstance:
		return readString(r, path, &p.Instance)
	case KeyStatus:
		return readStatus(r, path, &p.Status)
	case KeyTitle:
		return readString(r, path, &p.Title)
	case KeyType:
		return readString(r, path, &p.Type)
	}
	v, err := readValue(r, path)
	if err != nil {
		return err
	}
	if p.Extensions.Has(key) {
		return duplicateKey(path, key)
	}
	p.Extensions.insert(key, v)
	return nil
}

func readString(r *Reader, path string, dst *string) error {
	switch r.Kind() {
	case _tokenString:
		*dst = r.Token().String
		return nil
	case _tokenNull:
		*dst = ""
		return nil
	default:
		return typeMismatch(r, path, "string")
	}
}

func readStatus(r *Reader, path string, dst **int) error {
	switch r.Kind() {
	case _tokenNumber:
		n, err := strconv.ParseInt(r.Token().Number, 10, 32)
		if err != nil {
			iss := typeMismatch(r, path, "32-bit integer")
			iss.Message = "expected 32-bit integer, got " + r.Token().Number
			iss.Cause = err
			return iss
		}
		*dst = StatusCode(int(n))
		return nil
	case _tokenNull:
		*dst = nil
		return nil
	default:
		return typeMismatch(r, path, "integer")
	}
}

func readErrors(r *Reader, errs *ValidationErrors) error {
	path := joinPointer("", KeyErrors)
	if err := advance(r, path); err != nil {
		return err
	}
	switch r.Kind() {
	case _tokenNull:
		return nil
	case _tokenBeginObject:
	default:
		return typeMismatch(r, path, "object")
	}
	for {
		if err := advance(r, path); err != nil {
			return err
		}
		switch r.Kind() {
		case _tokenEndObject:
			return nil
		case _tokenKey:
		default:
			return malformed(r, path, "expected key, got "+r.Kind().String())
		}
		field := r.Token().String
		fpath := joinPointer(path, field)
		msgs, err := readMessages(r, fpath)
		if err != nil {
			return err
		}
		errs.Set(field, msgs)
	}
}

func readMessages(r *Reader, path string) ([]string, error) {
	if err := advance(r, path); err != nil {
		return nil, err
	}
	switch r.Kind() {
	case _tokenNull:
		return []string{}, nil
	case _tokenBeginArray:
	default:
		return nil, typeMismatch(r, path, "array")
	}
	msgs := []string{}
	for i := 0; ; i++ {
		if err := advance(r, path); err != nil {
			return nil, err
		}
		switch r.Kind() {
		case _tokenEndArray:
			return msgs, nil
		case _tokenString:
			msgs = append(msgs, r.Token().String)
		default:
			return nil, typeMismatch(r, joinPointer(path, strconv.Itoa(i)), "string")
		}
	}
}
