package wideint

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMulCmpNoOverflow(t *testing.T) {
	a := uint64(math.MaxUint64 / 2)
	assert.Equal(t, 0, MulCmp(a, 2, 2, a))
	assert.True(t, MulGT(a, 3, a, 2))
}

func TestPctGE(t *testing.T) {
	// 100 * 55 >= 50 * 100 -> true (55% turnout vs 50% quorum)
	assert.True(t, PctGE(55, 50, 100))
	assert.False(t, PctGE(45, 50, 100))
	// exact equality passes
	assert.True(t, PctGE(50, 50, 100))
}

func TestLECap(t *testing.T) {
	assert.True(t, LECap(700, 100, 7)) // 100 ballots * scale 7 = 700 cap, exactly at cap
	assert.False(t, LECap(701, 100, 7))
}

func TestDivisorQuotientCmp(t *testing.T) {
	// 340/1 vs 330/1 -> A bigger
	assert.True(t, DivisorQuotientCmp(340, 1, 330, 1) > 0)
	// 340/2 vs 330/1 -> 170 < 330
	assert.True(t, DivisorQuotientCmp(340, 2, 330, 1) < 0)
}
