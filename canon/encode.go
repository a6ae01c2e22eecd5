// Package canon implements the canonical JSON encoding and SHA-256 content
// addressing defined in spec §4.1: UTF-8, LF line endings with a single
// trailing LF, object keys sorted lexicographically at every nesting level,
// arrays in producer order, and integers-only numeric output except for the
// explicitly-defined share fields.
//
// The encoder leans on encoding/json's own behavior for map[string]any
// (keys are sorted lexicographically by the standard library already) and
// only adds what the standard library doesn't give for free: HTML-escape
// suppression, a guaranteed single trailing newline, and a Share type that
// renders a fixed-precision decimal literal from pure integer arithmetic so
// no float64 value is ever computed on the way to the wire.
package canon

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Share is a ratio in [0,1] rendered as a fixed-precision decimal literal.
// Num is the numerator over a fixed denominator of 10^Precision (spec §9
// Open Question 2: ENGINE_SHARE_PRECISION fixed at 1e6 for this engine
// version). Constructing and printing a Share never performs float64
// division; the decimal string is built from integer quotient/remainder.
type Share struct {
	Num       int64 // numerator, 0 <= Num <= 10^Precision
	Precision uint  // number of decimal digits (6 for this engine version)
}

// NewShare builds a Share from an exact integer ratio num/den, rounding
// half-up to Precision decimal digits using only integer arithmetic.
func NewShare(num, den int64, precision uint) (Share, error) {
	if den <= 0 {
		return Share{}, fmt.Errorf("canon: NewShare: non-positive denominator %d", den)
	}
	if num < 0 || num > den {
		return Share{}, fmt.Errorf("canon: NewShare: ratio %d/%d out of [0,1]", num, den)
	}
	scale := int64(1)
	for i := uint(0); i < precision; i++ {
		scale *= 10
	}
	// round-half-up: (num*scale*2 + den) / (den*2)
	scaledNum := num * scale
	quot := scaledNum / den
	rem := scaledNum % den
	if rem*2 >= den {
		quot++
	}
	return Share{Num: quot, Precision: precision}, nil
}

// MarshalJSON renders the Share as a bare decimal JSON number token, e.g.
// 123456 at precision 6 denominator renders "0.123456".
func (s Share) MarshalJSON() ([]byte, error) {
	scale := int64(1)
	for i := uint(0); i < s.Precision; i++ {
		scale *= 10
	}
	whole := s.Num / scale
	frac := s.Num % scale
	if s.Precision == 0 {
		return []byte(fmt.Sprintf("%d", whole)), nil
	}
	return []byte(fmt.Sprintf("%d.%0*d", whole, s.Precision, frac)), nil
}

// Obj is an ordered set of fields for building canonical documents. Encoding
// sorts by Key regardless of insertion order, matching object-key sorting at
// every nesting level; Obj exists (instead of a bare map[string]any) so
// callers can build documents without worrying about Go map key typing for
// non-string-keyed substructures, and so intent is explicit at each call site.
type Obj map[string]any

// Marshal produces canonical JSON bytes for v: UTF-8, unescaped except as
// JSON requires, compact (no indentation), with exactly one trailing '\n'.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("canon: marshal: %w", err)
	}
	out := buf.Bytes()
	// json.Encoder.Encode already appends exactly one '\n'; guard against
	// future stdlib changes by normalizing explicitly.
	out = bytes.TrimRight(out, "\n")
	out = append(out, '\n')
	return out, nil
}
