package tie

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vm-engine/engine/ids"
	"github.com/vm-engine/engine/params"
	"github.com/vm-engine/engine/registry"
)

func testUnit(t *testing.T) *registry.Unit {
	u := registry.NewUnit("U:001", "Test", false, 1, 1000)
	require.NoError(t, u.AddOption(registry.OptionItem{OptionId: "OPT:B", OrderIndex: 1}))
	require.NoError(t, u.AddOption(registry.OptionItem{OptionId: "OPT:A", OrderIndex: 0}))
	require.NoError(t, u.AddOption(registry.OptionItem{OptionId: "OPT:C", OrderIndex: 2, IsStatusQuo: true}))
	return u
}

func TestDeterministicPicksCanonicalFirst(t *testing.T) {
	u := testUnit(t)
	r := NewResolver(params.TieDeterministic, 0)
	winner, err := r.Breaker(KindWTAWinner, u)("U:001", []ids.OptionId{"OPT:B", "OPT:A"})
	require.NoError(t, err)
	assert.Equal(t, ids.OptionId("OPT:A"), winner)
	require.Len(t, r.Events(), 1)
	assert.Equal(t, KindWTAWinner, r.Events()[0].Kind)
	assert.Equal(t, []ids.OptionId{"OPT:A", "OPT:B"}, r.Events()[0].CandidatesCanon)
}

func TestStatusQuoPicksFlaggedCandidate(t *testing.T) {
	u := testUnit(t)
	r := NewResolver(params.TieStatusQuo, 0)
	winner, err := r.Breaker(KindLastPRSeat, u)("U:001", []ids.OptionId{"OPT:A", "OPT:C"})
	require.NoError(t, err)
	assert.Equal(t, ids.OptionId("OPT:C"), winner)
}

func TestStatusQuoFallsThroughWhenNoneFlagged(t *testing.T) {
	u := testUnit(t)
	r := NewResolver(params.TieStatusQuo, 0)
	winner, err := r.Breaker(KindLastPRSeat, u)("U:001", []ids.OptionId{"OPT:A", "OPT:B"})
	require.NoError(t, err)
	assert.Equal(t, ids.OptionId("OPT:A"), winner)
}

func TestRandomIsDeterministicForFixedSeed(t *testing.T) {
	u := testUnit(t)
	r1 := NewResolver(params.TieRandom, 42)
	w1, err := r1.Breaker(KindIRVElim, u)("U:001", []ids.OptionId{"OPT:A", "OPT:B", "OPT:C"})
	require.NoError(t, err)

	r2 := NewResolver(params.TieRandom, 42)
	w2, err := r2.Breaker(KindIRVElim, u)("U:001", []ids.OptionId{"OPT:A", "OPT:B", "OPT:C"})
	require.NoError(t, err)

	assert.Equal(t, w1, w2)
	assert.Contains(t, []ids.OptionId{"OPT:A", "OPT:B", "OPT:C"}, w1)
	detail := r1.Events()[0].Detail
	assert.Equal(t, uint64(42), detail["seed"])
	assert.Contains(t, detail, "word_index_at_draw")
}

func TestRandomDifferentSeedsCanDiffer(t *testing.T) {
	u := testUnit(t)
	seen := map[ids.OptionId]bool{}
	for seed := uint64(0); seed < 20; seed++ {
		r := NewResolver(params.TieRandom, seed)
		w, err := r.Breaker(KindIRVElim, u)("U:001", []ids.OptionId{"OPT:A", "OPT:B", "OPT:C"})
		require.NoError(t, err)
		seen[w] = true
	}
	assert.Greater(t, len(seen), 1, "expected varied winners across seeds")
}

func TestUnknownOptionRejected(t *testing.T) {
	u := testUnit(t)
	r := NewResolver(params.TieDeterministic, 0)
	_, err := r.Breaker(KindWTAWinner, u)("U:001", []ids.OptionId{"OPT:Z"})
	assert.Error(t, err)
}

func TestEmptyCandidateSetRejected(t *testing.T) {
	u := testUnit(t)
	r := NewResolver(params.TieDeterministic, 0)
	_, err := r.Breaker(KindWTAWinner, u)("U:001", nil)
	assert.Error(t, err)
}
