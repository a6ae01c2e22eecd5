package canon

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeStrictRejectsOversizedInput(t *testing.T) {
	_, err := DecodeStrict(strings.NewReader(`{"a":1}`), DecodeLimits{MaxBytes: 3, MaxDepth: 64})
	assert.Error(t, err)
}

func TestDecodeStrictRejectsExcessiveNesting(t *testing.T) {
	nested := strings.Repeat(`{"a":`, 10) + "1" + strings.Repeat("}", 10)
	_, err := DecodeStrict(strings.NewReader(nested), DecodeLimits{MaxBytes: 1024, MaxDepth: 5})
	assert.Error(t, err)
}

func TestDecodeStrictAllowsWithinDepth(t *testing.T) {
	nested := strings.Repeat(`{"a":`, 3) + "1" + strings.Repeat("}", 3)
	_, err := DecodeStrict(strings.NewReader(nested), DecodeLimits{MaxBytes: 1024, MaxDepth: 5})
	require.NoError(t, err)
}

func TestDecodeStrictRejectsFloats(t *testing.T) {
	_, err := DecodeStrict(strings.NewReader(`{"x":1.5}`), DefaultDecodeLimits())
	assert.Error(t, err)
}

func TestDecodeStrictRejectsExponentialNotation(t *testing.T) {
	_, err := DecodeStrict(strings.NewReader(`{"x":1e3}`), DefaultDecodeLimits())
	assert.Error(t, err)
}

func TestDecodeStrictAcceptsIntegers(t *testing.T) {
	v, err := DecodeStrict(strings.NewReader(`{"x":42,"y":[1,2,3]}`), DefaultDecodeLimits())
	require.NoError(t, err)
	m, ok := v.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, m, "x")
}

func TestDecodeStrictRejectsTrailingData(t *testing.T) {
	_, err := DecodeStrict(strings.NewReader(`{"x":1} garbage`), DefaultDecodeLimits())
	assert.Error(t, err)
}

func TestDecodeStrictRejectsMalformedJSON(t *testing.T) {
	_, err := DecodeStrict(strings.NewReader(`{"x":`), DefaultDecodeLimits())
	assert.Error(t, err)
}
