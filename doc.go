package goproblem

// Package goproblem provides:
//
// - Problem and ValidationProblem documents (RFC 7807) with an ordered extension bag
// - A JSON document codec with fixed member order and tolerant, type-checked reads
// - A stable error model via Issue (JSON Pointer, code, message, offset)
// - Swappable token drivers (go-json by default, encoding/json as an alternative)
// - YAML rendering that keeps the JSON member order
//
// Design policy:
// - Keep only public APIs in the root package; put token plumbing under internal/.
// - Place wrapper registries under wrapper/ and xmlformat/, the JSON formatter under
//   jsonformat/, configuration under formatters/, and the CLI under cmd/problemfmt.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//  p := goproblem.New(404, "Not Found")
//  p.Extensions.Set("traceId", "00-abc-01")
//  data, err := goproblem.Marshal(p)
//
//  var v goproblem.ValidationProblem
//  err = goproblem.UnmarshalValidation(data, &v, goproblem.WithNumbers(goproblem.NumberJSONNumber))
//
