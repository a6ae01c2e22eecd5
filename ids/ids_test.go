package ids

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunIdFromPartsReplacesColons(t *testing.T) {
	id, err := RunIdFromParts("2026-07-31T12:00:00Z", "abcdef012345")
	assert.NoError(t, err)
	assert.Equal(t, RunId("RUN:2026-07-31T12-00-00Z-abcdef012345"), id)
}

func TestRunIdFromPartsRejectsBadShortHexLength(t *testing.T) {
	_, err := RunIdFromParts("2026-07-31T12:00:00Z", "ab")
	assert.Error(t, err)
}

func TestLessOptionKeyOrdersByOrderIndexThenOptionId(t *testing.T) {
	a := OptionKey{OrderIndex: 0, OptionId: "OPT:B"}
	b := OptionKey{OrderIndex: 0, OptionId: "OPT:A"}
	assert.False(t, LessOptionKey(a, b))
	assert.True(t, LessOptionKey(b, a))

	c := OptionKey{OrderIndex: 1, OptionId: "OPT:A"}
	assert.True(t, LessOptionKey(a, c))
}

func TestValidTokenAndSha256(t *testing.T) {
	assert.True(t, ValidToken("U:001"))
	assert.False(t, ValidToken(""))
	assert.True(t, ValidSha256("0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"))
	assert.False(t, ValidSha256("not-hex"))
}
