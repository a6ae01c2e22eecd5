package loader

import (
	"encoding/json"
	"fmt"
)

// jsonInt64 extracts an int64 from a value decoded by canon.DecodeStrict,
// which represents every JSON number as json.Number (canon.DecodeStrict
// already rejected any number with a fractional or exponential form, so
// Int64 here cannot fail on that account — only on magnitude overflow).
func jsonInt64(v any) (int64, error) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, fmt.Errorf("expected a JSON integer, got %T", v)
	}
	i, err := n.Int64()
	if err != nil {
		return 0, fmt.Errorf("integer %q out of int64 range: %w", n.String(), err)
	}
	return i, nil
}
