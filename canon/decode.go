package canon

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/vm-engine/engine/vmerrors"
)

// DecodeLimits bounds untrusted JSON input the way the teacher's schema
// validator bounds schema documents (core/types/validation_config.go):
// a byte ceiling against oversized files and a nesting-depth ceiling against
// resource exhaustion and stack overflow from crafted documents.
type DecodeLimits struct {
	MaxBytes int64
	MaxDepth int
}

// DefaultDecodeLimits are the engine's defaults: 16 MiB, depth 64.
func DefaultDecodeLimits() DecodeLimits {
	return DecodeLimits{MaxBytes: 16 * 1024 * 1024, MaxDepth: 64}
}

// DecodeStrict reads a JSON document from r, enforcing limits and decoding
// numbers as json.Number so integer-vs-float can be distinguished exactly —
// the stdlib's default float64 decoding would silently launder a
// fractional input into a value indistinguishable from an integer, which
// spec §8.1 ("No floats") and §9 ("No floating-point arithmetic in any
// computational path") both forbid. Returns a tree of map[string]any,
// []any, json.Number, string, bool, and nil.
func DecodeStrict(r io.Reader, limits DecodeLimits) (any, error) {
	limited := io.LimitReader(r, limits.MaxBytes+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, vmerrors.Wrap(vmerrors.KindLoad, "Load.ReadFailed", "failed to read input", err)
	}
	if int64(len(data)) > limits.MaxBytes {
		return nil, vmerrors.New(vmerrors.KindLoad, "Load.OversizedFile", fmt.Sprintf("input exceeds max size %d bytes", limits.MaxBytes))
	}
	if !validUTF8(data) {
		return nil, vmerrors.New(vmerrors.KindLoad, "Load.NonUTF8", "input is not valid UTF-8")
	}

	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, vmerrors.Wrap(vmerrors.KindSchema, "Schema.MalformedJSON", "input is not valid JSON", err)
	}
	if dec.More() {
		return nil, vmerrors.New(vmerrors.KindSchema, "Schema.TrailingData", "input has trailing data after the JSON document")
	}

	depth := measureDepth(v, 0)
	if depth > limits.MaxDepth {
		return nil, vmerrors.New(vmerrors.KindLoad, "Load.ExcessiveNesting", fmt.Sprintf("input nesting depth %d exceeds max %d", depth, limits.MaxDepth))
	}
	if err := rejectFloats(v, ""); err != nil {
		return nil, err
	}
	return v, nil
}

func validUTF8(b []byte) bool {
	return utf8.Valid(b)
}

func measureDepth(v any, current int) int {
	switch t := v.(type) {
	case map[string]any:
		max := current
		for _, val := range t {
			d := measureDepth(val, current+1)
			if d > max {
				max = d
			}
		}
		return max
	case []any:
		max := current
		for _, val := range t {
			d := measureDepth(val, current+1)
			if d > max {
				max = d
			}
		}
		return max
	default:
		return current
	}
}

// rejectFloats walks the decoded tree and fails with a Hash error
// (Hash.DisallowedFloat) if any
// json.Number has a fractional or exponential form where the spec's data
// model admits only integers — every numeric field in the four input
// document kinds (Manifest, DivisionRegistry, ParameterSet, BallotTally) is
// integer-typed per spec §3/§6.1.
func rejectFloats(v any, pointer string) error {
	switch t := v.(type) {
	case json.Number:
		s := t.String()
		if strings.ContainsAny(s, ".eE") {
			return vmerrors.New(vmerrors.KindHash, "Hash.DisallowedFloat", fmt.Sprintf("non-integer number %q at %s", s, pointerOrRoot(pointer))).WithPointer(pointerOrRoot(pointer))
		}
	case map[string]any:
		for k, val := range t {
			if err := rejectFloats(val, pointer+"/"+k); err != nil {
				return err
			}
		}
	case []any:
		for i, val := range t {
			if err := rejectFloats(val, fmt.Sprintf("%s/%d", pointer, i)); err != nil {
				return err
			}
		}
	}
	return nil
}

func pointerOrRoot(p string) string {
	if p == "" {
		return "/"
	}
	return p
}
