package tabulate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vm-engine/engine/allocate"
	"github.com/vm-engine/engine/ids"
	"github.com/vm-engine/engine/params"
	"github.com/vm-engine/engine/registry"
)

// noTies fails the test if invoked; none of these fixtures produce a
// genuine lowest-tally tie at elimination.
func noTies(t *testing.T) allocate.TieBreaker {
	t.Helper()
	return func(unit ids.UnitId, candidates []ids.OptionId) (ids.OptionId, error) {
		t.Fatalf("unexpected tie break for unit %s among %v", unit, candidates)
		return "", nil
	}
}

func twoOptionUnit(t *testing.T) *registry.Unit {
	t.Helper()
	u := registry.NewUnit("U:001", "Unit", false, 1, 1000)
	require.NoError(t, u.AddOption(registry.OptionItem{OptionId: "OPT:A", OrderIndex: 0}))
	require.NoError(t, u.AddOption(registry.OptionItem{OptionId: "OPT:B", OrderIndex: 1}))
	return u
}

func TestPluralityBasic(t *testing.T) {
	u := twoOptionUnit(t)
	tally := registry.UnitTally{
		Scores:  map[ids.OptionId]uint64{"OPT:A": 60, "OPT:B": 30},
		Turnout: registry.Turnout{ValidBallots: 90},
	}
	s, err := Plurality(u, tally)
	require.NoError(t, err)
	assert.EqualValues(t, 60, s.Scores["OPT:A"])
}

func TestPluralitySumExceedsValid(t *testing.T) {
	u := twoOptionUnit(t)
	tally := registry.UnitTally{
		Scores:  map[ids.OptionId]uint64{"OPT:A": 60, "OPT:B": 40},
		Turnout: registry.Turnout{ValidBallots: 90},
	}
	_, err := Plurality(u, tally)
	assert.Error(t, err)
}

func TestPluralityUnknownOption(t *testing.T) {
	u := twoOptionUnit(t)
	tally := registry.UnitTally{
		Scores:  map[ids.OptionId]uint64{"OPT:Z": 10},
		Turnout: registry.Turnout{ValidBallots: 90},
	}
	_, err := Plurality(u, tally)
	assert.Error(t, err)
}

func TestApprovalAllowsSumExceedingValid(t *testing.T) {
	u := twoOptionUnit(t)
	tally := registry.UnitTally{
		Scores:  map[ids.OptionId]uint64{"OPT:A": 80, "OPT:B": 70},
		Turnout: registry.Turnout{ValidBallots: 90},
	}
	s, err := Approval(u, tally)
	require.NoError(t, err)
	assert.EqualValues(t, 80, s.Scores["OPT:A"])
}

func TestApprovalOptionExceedsValid(t *testing.T) {
	u := twoOptionUnit(t)
	tally := registry.UnitTally{
		Scores:  map[ids.OptionId]uint64{"OPT:A": 95},
		Turnout: registry.Turnout{ValidBallots: 90},
	}
	_, err := Approval(u, tally)
	assert.Error(t, err)
}

func TestScoreCapEnforced(t *testing.T) {
	u := twoOptionUnit(t)
	tally := registry.UnitTally{
		Scores:  map[ids.OptionId]uint64{"OPT:A": 1000},
		Turnout: registry.Turnout{ValidBallots: 100},
	}
	_, err := Score(u, tally, 5)
	assert.Error(t, err)

	tally.Scores["OPT:A"] = 500
	s, err := Score(u, tally, 5)
	require.NoError(t, err)
	assert.EqualValues(t, 500, s.Scores["OPT:A"])
}

func TestRankedIRVMajorityFirstRound(t *testing.T) {
	u := twoOptionUnit(t)
	tally := registry.UnitTally{
		Ranked: []registry.RankedGroup{
			{Ranking: []ids.OptionId{"OPT:A"}, Count: 60},
			{Ranking: []ids.OptionId{"OPT:B"}, Count: 40},
		},
		Turnout: registry.Turnout{ValidBallots: 100},
	}
	s, err := RankedIRV(u, tally, noTies(t))
	require.NoError(t, err)
	assert.Equal(t, ids.OptionId("OPT:A"), s.IrvLog.Winner)
	assert.Empty(t, s.IrvLog.Rounds)
}

func TestRankedIRVElimination(t *testing.T) {
	u := registry.NewUnit("U:001", "Unit", false, 1, 1000)
	require.NoError(t, u.AddOption(registry.OptionItem{OptionId: "OPT:A", OrderIndex: 0}))
	require.NoError(t, u.AddOption(registry.OptionItem{OptionId: "OPT:B", OrderIndex: 1}))
	require.NoError(t, u.AddOption(registry.OptionItem{OptionId: "OPT:C", OrderIndex: 2}))

	tally := registry.UnitTally{
		Ranked: []registry.RankedGroup{
			{Ranking: []ids.OptionId{"OPT:A"}, Count: 40},
			{Ranking: []ids.OptionId{"OPT:B"}, Count: 35},
			{Ranking: []ids.OptionId{"OPT:C", "OPT:A"}, Count: 25},
		},
		Turnout: registry.Turnout{ValidBallots: 100},
	}
	s, err := RankedIRV(u, tally, noTies(t))
	require.NoError(t, err)
	assert.Equal(t, ids.OptionId("OPT:A"), s.IrvLog.Winner)
	require.Len(t, s.IrvLog.Rounds, 1)
	assert.Equal(t, ids.OptionId("OPT:C"), s.IrvLog.Rounds[0].Eliminated)
	assert.EqualValues(t, 25, s.IrvLog.Rounds[0].Transfers["OPT:A"])
}

// TestRankedIRVExhaustionReducesContinuingDenominator is spec §8.3
// Scenario D verbatim: ballots (B>A>C, 40), (A>C, 35), (C>B, 15), (C, 10),
// valid=100. Round 1 tallies A=35 B=40 C=25; eliminate C; 15 transfer to
// B, 10 exhaust; continuing_total becomes 90; B=55 clears 90/2 and wins.
func TestRankedIRVExhaustionReducesContinuingDenominator(t *testing.T) {
	u := registry.NewUnit("U:001", "Unit", false, 1, 1000)
	require.NoError(t, u.AddOption(registry.OptionItem{OptionId: "OPT:A", OrderIndex: 0}))
	require.NoError(t, u.AddOption(registry.OptionItem{OptionId: "OPT:B", OrderIndex: 1}))
	require.NoError(t, u.AddOption(registry.OptionItem{OptionId: "OPT:C", OrderIndex: 2}))

	tally := registry.UnitTally{
		Ranked: []registry.RankedGroup{
			{Ranking: []ids.OptionId{"OPT:B", "OPT:A", "OPT:C"}, Count: 40},
			{Ranking: []ids.OptionId{"OPT:A", "OPT:C"}, Count: 35},
			{Ranking: []ids.OptionId{"OPT:C", "OPT:B"}, Count: 15},
			{Ranking: []ids.OptionId{"OPT:C"}, Count: 10},
		},
		Turnout: registry.Turnout{ValidBallots: 100},
	}
	s, err := RankedIRV(u, tally, noTies(t))
	require.NoError(t, err)

	require.Len(t, s.IrvLog.Rounds, 1)
	round := s.IrvLog.Rounds[0]
	assert.Equal(t, ids.OptionId("OPT:C"), round.Eliminated)
	assert.EqualValues(t, 15, round.Transfers["OPT:B"])
	assert.EqualValues(t, 10, round.Exhausted)

	assert.Equal(t, ids.OptionId("OPT:B"), s.IrvLog.Winner)
	assert.EqualValues(t, 55, s.Scores["OPT:B"])
	assert.EqualValues(t, 35, s.Scores["OPT:A"])
	assert.EqualValues(t, 0, s.Scores["OPT:C"])
}

func TestRankedIRVEliminationTieInvokesBreaker(t *testing.T) {
	u := registry.NewUnit("U:001", "Unit", false, 1, 1000)
	require.NoError(t, u.AddOption(registry.OptionItem{OptionId: "OPT:A", OrderIndex: 0}))
	require.NoError(t, u.AddOption(registry.OptionItem{OptionId: "OPT:B", OrderIndex: 1}))
	require.NoError(t, u.AddOption(registry.OptionItem{OptionId: "OPT:C", OrderIndex: 2}))

	tally := registry.UnitTally{
		Ranked: []registry.RankedGroup{
			{Ranking: []ids.OptionId{"OPT:A"}, Count: 50},
			{Ranking: []ids.OptionId{"OPT:B"}, Count: 25},
			{Ranking: []ids.OptionId{"OPT:C"}, Count: 25},
		},
		Turnout: registry.Turnout{ValidBallots: 100},
	}
	var brokenUnit ids.UnitId
	var brokenCandidates []ids.OptionId
	breaker := func(unit ids.UnitId, candidates []ids.OptionId) (ids.OptionId, error) {
		brokenUnit, brokenCandidates = unit, candidates
		return "OPT:C", nil
	}
	s, err := RankedIRV(u, tally, breaker)
	require.NoError(t, err)
	assert.Equal(t, ids.UnitId("U:001"), brokenUnit)
	assert.ElementsMatch(t, []ids.OptionId{"OPT:B", "OPT:C"}, brokenCandidates)
	assert.Equal(t, ids.OptionId("OPT:C"), s.IrvLog.Rounds[0].Eliminated)
	assert.Equal(t, ids.OptionId("OPT:A"), s.IrvLog.Winner)
}

func TestRankedCondorcetOutrightWinner(t *testing.T) {
	u := twoOptionUnit(t)
	tally := registry.UnitTally{
		Ranked: []registry.RankedGroup{
			{Ranking: []ids.OptionId{"OPT:A", "OPT:B"}, Count: 60},
			{Ranking: []ids.OptionId{"OPT:B", "OPT:A"}, Count: 40},
		},
		Turnout: registry.Turnout{ValidBallots: 100},
	}
	s, err := RankedCondorcet(u, tally, params.CompletionSchulze)
	require.NoError(t, err)
	assert.Equal(t, ids.OptionId("OPT:A"), s.CondorcetLog.Winner)
	assert.Equal(t, ids.OptionId("OPT:A"), s.CondorcetLog.CondorcetWinner)
	assert.EqualValues(t, 100, s.Scores["OPT:A"])
	assert.EqualValues(t, 0, s.Scores["OPT:B"])
}

// TestRankedCondorcetCycleUsesSchulze is spec §8.3 Scenario E verbatim:
// a pairwise cycle A>B 55-45, B>C 60-40, C>A 60-40 has no Condorcet
// winner; Schulze's widest-path strengths make B beat both A (60 vs 55)
// and C (60 vs 55), so B wins.
func TestRankedCondorcetCycleUsesSchulze(t *testing.T) {
	u := registry.NewUnit("U:001", "Unit", false, 1, 1000)
	require.NoError(t, u.AddOption(registry.OptionItem{OptionId: "OPT:A", OrderIndex: 0}))
	require.NoError(t, u.AddOption(registry.OptionItem{OptionId: "OPT:B", OrderIndex: 1}))
	require.NoError(t, u.AddOption(registry.OptionItem{OptionId: "OPT:C", OrderIndex: 2}))

	tally := registry.UnitTally{
		Ranked: []registry.RankedGroup{
			{Ranking: []ids.OptionId{"OPT:A", "OPT:B", "OPT:C"}, Count: 15},
			{Ranking: []ids.OptionId{"OPT:B", "OPT:A", "OPT:C"}, Count: 25},
			{Ranking: []ids.OptionId{"OPT:B", "OPT:C", "OPT:A"}, Count: 20},
			{Ranking: []ids.OptionId{"OPT:C", "OPT:A", "OPT:B"}, Count: 40},
		},
		Turnout: registry.Turnout{ValidBallots: 100},
	}
	s, err := RankedCondorcet(u, tally, params.CompletionSchulze)
	require.NoError(t, err)
	assert.EqualValues(t, 55, s.Pairwise.Get("OPT:A", "OPT:B"))
	assert.EqualValues(t, 60, s.Pairwise.Get("OPT:B", "OPT:C"))
	assert.EqualValues(t, 60, s.Pairwise.Get("OPT:C", "OPT:A"))
	assert.Equal(t, "schulze", s.CondorcetLog.CompletionUsed)
	assert.Empty(t, s.CondorcetLog.CondorcetWinner)
	assert.Equal(t, ids.OptionId("OPT:B"), s.CondorcetLog.Winner)
	assert.EqualValues(t, 100, s.Scores["OPT:B"])
}
