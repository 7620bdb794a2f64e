package goproblem_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/goproblem"
)

const outOfCredit = `{"type":"https://example.com/probs/out-of-credit","title":"You do not have enough credit.",` +
	`"status":400,"detail":"Your current balance is 30, but that costs 50.",` +
	`"instance":"/account/12345/msgs/abc","balance":30,"accounts":["/account/12345","/account/67890"]}`

const outOfCreditIndented = `{
  "type": "https://example.com/probs/out-of-credit",
  "title": "You do not have enough credit.",
  "status": 400,
  "detail": "Your current balance is 30, but that costs 50.",
  "instance": "/account/12345/msgs/abc",
  "balance": 30,
  "accounts": [
    "/account/12345",
    "/account/67890"
  ]
}`

func TestScenario_OutOfCredit(t *testing.T) {
	var p goproblem.Problem
	require.NoError(t, goproblem.Unmarshal([]byte(outOfCredit), &p))

	assert.Equal(t, "https://example.com/probs/out-of-credit", p.Type)
	assert.Equal(t, 400, p.StatusOr(0))
	balance, ok := p.Extensions.Get("balance")
	require.True(t, ok)
	assert.Equal(t, int64(30), balance)
	accounts, _ := p.Extensions.Get("accounts")
	assert.Equal(t, []any{"/account/12345", "/account/67890"}, accounts)

	compact, err := goproblem.Marshal(&p)
	require.NoError(t, err)
	assert.Equal(t, outOfCredit, string(compact))

	indented, err := goproblem.MarshalIndent(&p, "  ")
	require.NoError(t, err)
	assert.Equal(t, outOfCreditIndented, string(indented))
}

func TestScenario_ValidationErrors(t *testing.T) {
	in := strings.TrimSuffix(outOfCredit, "}") + `,"errors":{"key1":["error1","error2"],"key2":["error3"]}}`

	var v goproblem.ValidationProblem
	require.NoError(t, goproblem.UnmarshalValidation([]byte(in), &v))

	assert.Equal(t, []string{"key1", "key2"}, v.Errors.Keys())
	m1, _ := v.Errors.Get("key1")
	m2, _ := v.Errors.Get("key2")
	assert.Equal(t, []string{"error1", "error2"}, m1)
	assert.Equal(t, []string{"error3"}, m2)
	assert.False(t, v.Extensions.Has("errors"))
	assert.Equal(t, []string{"balance", "accounts"}, v.Extensions.Keys())

	out, err := goproblem.MarshalValidation(&v)
	require.NoError(t, err)
	assert.Equal(t, `{"type":"https://example.com/probs/out-of-credit","title":"You do not have enough credit.",`+
		`"status":400,"detail":"Your current balance is 30, but that costs 50.",`+
		`"instance":"/account/12345/msgs/abc","errors":{"key1":["error1","error2"],"key2":["error3"]},`+
		`"balance":30,"accounts":["/account/12345","/account/67890"]}`, string(out))
}

func TestNullRoundTrip(t *testing.T) {
	out, err := goproblem.Marshal(nil)
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))

	out, err = goproblem.MarshalValidation(nil)
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))

	p, err := goproblem.Decode(strings.NewReader("null"))
	require.NoError(t, err)
	assert.Nil(t, p)

	v, err := goproblem.DecodeValidation(strings.NewReader(" null "))
	require.NoError(t, err)
	assert.Nil(t, v)

	existing := goproblem.New(500, "kept")
	require.NoError(t, goproblem.Unmarshal([]byte("null"), existing))
	assert.Equal(t, "kept", existing.Title)
}

func TestFieldOrder(t *testing.T) {
	p := &goproblem.Problem{}
	p.Extensions.Set("z", 1)
	p.Instance = "/i"
	p.Extensions.Set("a", 2)
	p.Detail = "d"
	p.Status = goproblem.StatusCode(409)
	p.Title = "t"
	p.Type = "about:blank"

	out, err := goproblem.Marshal(p)
	require.NoError(t, err)
	assert.Equal(t, `{"type":"about:blank","title":"t","status":409,"detail":"d","instance":"/i","z":1,"a":2}`, string(out))

	v := &goproblem.ValidationProblem{Problem: *p}
	v.AddError("name", "required")
	out, err = goproblem.MarshalValidation(v)
	require.NoError(t, err)
	assert.Equal(t, `{"type":"about:blank","title":"t","status":409,"detail":"d","instance":"/i","errors":{"name":["required"]},"z":1,"a":2}`, string(out))
}

func TestEmptyDocument(t *testing.T) {
	out, err := goproblem.Marshal(&goproblem.Problem{})
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(out))

	out, err = goproblem.MarshalValidationIndent(&goproblem.ValidationProblem{}, "  ")
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(out))
}

func TestRoundTrip(t *testing.T) {
	nested := goproblem.NewExtensions()
	nested.Set("inner", []any{true, nil, "x"})

	docs := map[string]*goproblem.Problem{
		"all absent": {},
		"status zero": {Status: goproblem.StatusCode(0)},
		"negative status": {Status: goproblem.StatusCode(-1), Title: "weird"},
		"extensions": func() *goproblem.Problem {
			p := goproblem.New(422, "Unprocessable")
			p.Detail = "unicode ✓ and \"quotes\" and <tags>"
			p.Extensions.Set("n", int64(7))
			p.Extensions.Set("f", 1.5)
			p.Extensions.Set("b", false)
			p.Extensions.Set("null", nil)
			p.Extensions.Set("nested", nested)
			return p
		}(),
	}
	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			data, err := goproblem.Marshal(doc)
			require.NoError(t, err)

			var got goproblem.Problem
			require.NoError(t, goproblem.Unmarshal(data, &got))
			assert.Equal(t, doc.Type, got.Type)
			assert.Equal(t, doc.Title, got.Title)
			assert.Equal(t, doc.Status, got.Status)
			assert.Equal(t, doc.Detail, got.Detail)
			assert.Equal(t, doc.Instance, got.Instance)
			assert.Equal(t, doc.Extensions.Keys(), got.Extensions.Keys())

			again, err := goproblem.Marshal(&got)
			require.NoError(t, err)
			assert.Equal(t, string(data), string(again))
		})
	}
}

func TestUnknownFieldRouting(t *testing.T) {
	p, err := goproblem.Decode(strings.NewReader(`{"zeta":1,"title":"t","alpha":{"k":"v"},"errors":{"x":["y"]},"mid":[1]}`))
	require.NoError(t, err)
	assert.Equal(t, "t", p.Title)
	assert.Equal(t, []string{"zeta", "alpha", "errors", "mid"}, p.Extensions.Keys())

	alpha, _ := p.Extensions.Get("alpha")
	require.IsType(t, &goproblem.Extensions{}, alpha)
	k, _ := alpha.(*goproblem.Extensions).Get("k")
	assert.Equal(t, "v", k)
}

func TestReadIntoExisting(t *testing.T) {
	p := &goproblem.Problem{Title: "old"}
	p.Extensions.Set("kept", 1)
	require.NoError(t, goproblem.Unmarshal([]byte(`{"title":"new","status":null,"extra":2}`), p))
	assert.Equal(t, "new", p.Title)
	assert.Nil(t, p.Status)
	assert.Equal(t, []string{"kept", "extra"}, p.Extensions.Keys())

	err := goproblem.Unmarshal([]byte(`{"kept":3}`), p)
	require.ErrorIs(t, err, goproblem.ErrDuplicateKey)

	v := goproblem.NewValidation("")
	v.AddError("key0", "e0")
	require.NoError(t, goproblem.UnmarshalValidation([]byte(`{"errors":{"key1":["a"],"key0":["b"]}}`), v))
	assert.Equal(t, []string{"key0", "key1"}, v.Errors.Keys())
	m, _ := v.Errors.Get("key0")
	assert.Equal(t, []string{"b"}, m)
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		target error
		path   string
	}{
		{"truncated object", `{"title":"x"`, goproblem.ErrMalformed, ""},
		{"trailing document", `{} {}`, goproblem.ErrMalformed, ""},
		{"status string", `{"status":"400"}`, goproblem.ErrTypeMismatch, "/status"},
		{"status fraction", `{"status":400.5}`, goproblem.ErrTypeMismatch, "/status"},
		{"status overflow", `{"status":4294967296}`, goproblem.ErrTypeMismatch, "/status"},
		{"title number", `{"title":1}`, goproblem.ErrTypeMismatch, "/title"},
		{"detail object", `{"detail":{}}`, goproblem.ErrTypeMismatch, "/detail"},
		{"duplicate extension", `{"a":1,"a":2}`, goproblem.ErrDuplicateKey, "/a"},
		{"duplicate nested", `{"a":{"b":1,"b":2}}`, goproblem.ErrDuplicateKey, "/a/b"},
		{"missing colon", `{"a" 1}`, goproblem.ErrMalformed, ""},
		{"missing comma", `{"a":1 "b":2}`, goproblem.ErrMalformed, ""},
		{"trailing comma", `{"a":1,}`, goproblem.ErrMalformed, ""},
		{"leading comma", `{,"a":1}`, goproblem.ErrMalformed, ""},
		{"trailing comma in array", `{"a":[1,]}`, goproblem.ErrMalformed, ""},
		{"value after scalar", `"abc" 1`, goproblem.ErrMalformed, ""},
	}
	t.Cleanup(goproblem.UseDefaultJSONDriver)
	for _, d := range []goproblem.JSONDriver{goproblem.GoJSONDriver(), goproblem.StdJSONDriver()} {
		goproblem.SetJSONDriver(d)
		for _, tt := range tests {
			t.Run(d.Name()+"/"+tt.name, func(t *testing.T) {
				var p goproblem.Problem
				err := goproblem.Unmarshal([]byte(tt.input), &p)
				require.ErrorIs(t, err, tt.target)
				if tt.path != "" {
					iss, ok := goproblem.AsIssue(err)
					require.True(t, ok)
					assert.Equal(t, tt.path, iss.Path)
				}

				_, err = goproblem.Decode(strings.NewReader(tt.input))
				require.ErrorIs(t, err, tt.target)
			})
		}
	}
}

func TestDecode_NonObjectIsNil(t *testing.T) {
	for _, in := range []string{``, `  `, `"abc"`, `42`, `true`, `[1,{"a":2}]`} {
		p, err := goproblem.Decode(strings.NewReader(in))
		require.NoError(t, err, in)
		assert.Nil(t, p, in)

		v, err := goproblem.DecodeValidation(strings.NewReader(in))
		require.NoError(t, err, in)
		assert.Nil(t, v, in)

		existing := goproblem.New(500, "kept")
		require.NoError(t, goproblem.Unmarshal([]byte(in), existing), in)
		assert.Equal(t, "kept", existing.Title)
	}
}

func TestReadValidationErrors_Shape(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		target error
	}{
		{"errors array", `{"errors":[]}`, goproblem.ErrTypeMismatch},
		{"message number", `{"errors":{"a":[1]}}`, goproblem.ErrTypeMismatch},
		{"messages string", `{"errors":{"a":"x"}}`, goproblem.ErrTypeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := goproblem.DecodeValidation(strings.NewReader(tt.input))
			require.ErrorIs(t, err, tt.target)
		})
	}

	v, err := goproblem.DecodeValidation(strings.NewReader(`{"errors":null,"title":"t"}`))
	require.NoError(t, err)
	assert.Equal(t, 0, v.Errors.Len())
}

func TestWriteRejectsReservedExtensionKeys(t *testing.T) {
	p := &goproblem.Problem{}
	p.Extensions.Set("title", "shadow")
	_, err := goproblem.Marshal(p)
	require.ErrorIs(t, err, goproblem.ErrDuplicateKey)

	v := &goproblem.ValidationProblem{}
	v.Extensions.Set("errors", "shadow")
	_, err = goproblem.MarshalValidation(v)
	require.ErrorIs(t, err, goproblem.ErrDuplicateKey)

	plain := &goproblem.Problem{}
	plain.Extensions.Set("errors", "fine")
	out, err := goproblem.Marshal(plain)
	require.NoError(t, err)
	assert.Equal(t, `{"errors":"fine"}`, string(out))
}

func TestNumberModes(t *testing.T) {
	in := []byte(`{"i":30,"f":1.25}`)

	tests := []struct {
		mode  goproblem.NumberMode
		wantI any
		wantF any
	}{
		{goproblem.NumberNative, int64(30), 1.25},
		{goproblem.NumberJSONNumber, json.Number("30"), json.Number("1.25")},
		{goproblem.NumberFloat64, float64(30), 1.25},
	}
	for _, tt := range tests {
		var p goproblem.Problem
		require.NoError(t, goproblem.Unmarshal(in, &p, goproblem.WithNumbers(tt.mode)))
		i, _ := p.Extensions.Get("i")
		f, _ := p.Extensions.Get("f")
		assert.Equal(t, tt.wantI, i)
		assert.Equal(t, tt.wantF, f)

		out, err := goproblem.Marshal(&p)
		require.NoError(t, err)
		assert.Equal(t, string(in), string(out))
	}
}

func TestMaxBytes(t *testing.T) {
	_, err := goproblem.Decode(strings.NewReader(outOfCredit), goproblem.WithMaxBytes(16))
	require.ErrorIs(t, err, goproblem.ErrTruncated)

	var p goproblem.Problem
	err = goproblem.Unmarshal([]byte(outOfCredit), &p, goproblem.WithMaxBytes(16))
	require.ErrorIs(t, err, goproblem.ErrTruncated)

	got, err := goproblem.Decode(strings.NewReader(outOfCredit), goproblem.WithMaxBytes(int64(len(outOfCredit))))
	require.NoError(t, err)
	assert.Equal(t, 400, got.StatusOr(0))
}

func TestEncode(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, goproblem.Encode(&buf, goproblem.New(404, "Not Found"), goproblem.WriteOpt{}))
	assert.Equal(t, `{"title":"Not Found","status":404}`, buf.String())
}

func TestJSONMarshalerInterop(t *testing.T) {
	p := goproblem.New(503, "Unavailable")
	p.Extensions.Set("retryAfter", 30)

	data, err := json.Marshal(map[string]any{"problem": p})
	require.NoError(t, err)
	assert.Equal(t, `{"problem":{"title":"Unavailable","status":503,"retryAfter":30}}`, string(data))

	var env struct {
		Problem *goproblem.ValidationProblem `json:"problem"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"problem":{"title":"x","errors":{"a":["b"]},"c":1}}`), &env))
	require.NotNil(t, env.Problem)
	assert.Equal(t, "x", env.Problem.Title)
	assert.Equal(t, []string{"a"}, env.Problem.Errors.Keys())
	assert.Equal(t, []string{"c"}, env.Problem.Extensions.Keys())
}
