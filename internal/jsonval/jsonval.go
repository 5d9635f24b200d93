// Package jsonval provides the canonical JSON encoding used for primitive
// column storage (textual JSON-encoded values) and for the meta.config
// fingerprint blob. Both need a deterministic encoding — same logical value
// always produces the same bytes — so that the fingerprint comparison in
// the store initializer is meaningful and so that stored primitive values
// are stable across writes.
package jsonval

import (
	"fmt"

	"github.com/ohler55/ojg/oj"
)

// canonicalOptions sorts map keys and omits insignificant whitespace, which
// is what makes the encoding of a given logical value reproducible.
var canonicalOptions = &oj.Options{Sort: true}

// Encode renders v as canonical JSON text. v may be any value produced by
// decoding a GraphQL response (string, int64, float64, bool, nil, []any,
// map[string]any) or produced by Go code building test fixtures.
func Encode(v any) (string, error) {
	s := oj.JSON(v, canonicalOptions)
	return s, nil
}

// MustEncode panics on encode failure. oj.JSON does not itself return an
// error for well-formed Go values, so this exists only for call sites
// (fingerprinting) where the input is always Mirror-internal and a failure
// would indicate a programming error, not bad input.
func MustEncode(v any) string {
	s, err := Encode(v)
	if err != nil {
		panic(fmt.Sprintf("jsonval: unexpected encode failure: %v", err))
	}
	return s
}

// Decode parses canonical (or any valid) JSON text back into a generic Go
// value: string, int64 (integer literals), float64 (other numbers), bool,
// nil, []any, or map[string]any.
func Decode(s string) (any, error) {
	return oj.ParseString(s)
}
