// Package tabulate implements the five per-unit ballot-family tabulators
// (spec §4.3): plurality, approval, score, ranked-IRV, and
// ranked-Condorcet. Every tabulator consumes canonical option order from
// the registry package and produces a UnitScores plus, for the ranked
// families, an audit log that travels alongside the Result.
package tabulate

import (
	"github.com/vm-engine/engine/allocate"
	"github.com/vm-engine/engine/ids"
	"github.com/vm-engine/engine/registry"
)

// UnitScores is the tabulator's output for one unit (spec §3 Computed
// Entities). For ranked methods, Scores holds the final-round tallies;
// IrvLog/Pairwise/CondorcetLog are populated only by the matching family.
type UnitScores struct {
	UnitId  ids.UnitId
	Turnout registry.Turnout
	Scores  map[ids.OptionId]uint64

	IrvLog       *IrvLog
	Pairwise     *PairwiseMatrix
	CondorcetLog *CondorcetLog
}

// IrvRound records one elimination round of ranked-IRV (spec §4.3 step 8).
type IrvRound struct {
	Eliminated ids.OptionId
	Transfers  map[ids.OptionId]uint64 // votes moved onto each remaining continuing option
	Exhausted  uint64
}

// IrvLog is the full round-by-round audit trail for one unit's IRV count.
type IrvLog struct {
	Rounds []IrvRound
	Winner ids.OptionId
}

// PairwiseMatrix holds wins[(a,b)] := votes preferring a over b, for every
// ordered pair of distinct options (spec §4.3 Ranked Condorcet).
type PairwiseMatrix struct {
	Options []ids.OptionId // canonical order
	Wins    map[[2]ids.OptionId]uint64
}

// Get returns Wins[(a,b)], defaulting to 0 for an unrecorded pair.
func (m *PairwiseMatrix) Get(a, b ids.OptionId) uint64 {
	return m.Wins[[2]ids.OptionId{a, b}]
}

// CondorcetLog records which completion rule (if any) was needed and the
// resulting winner, for the audit trail alongside a unit's Result.
type CondorcetLog struct {
	CondorcetWinner  ids.OptionId // empty if no Condorcet winner existed
	CompletionUsed   string       // "" if a Condorcet winner existed outright
	Winner           ids.OptionId
	SchulzeStrengths map[[2]ids.OptionId]uint64 // populated only when completion=schulze
}

func canonicalOptions(u *registry.Unit) []ids.OptionId {
	return u.OptionIds()
}

func orderIndexOf(u *registry.Unit, opt ids.OptionId) uint16 {
	for _, o := range u.Options() {
		if o.OptionId == opt {
			return o.OrderIndex
		}
	}
	return 0
}

// lowestTallyCandidate finds the option(s) with the lowest tally among
// candidates; a single minimum is returned directly, a genuine tie (two
// or more options sharing the minimum) is handed to breaker, which
// canonicalizes and resolves it under the run's tie_policy, recording a
// TieEvent (spec §4.7).
func lowestTallyCandidate(u *registry.Unit, candidates []ids.OptionId, tally map[ids.OptionId]uint64, breaker allocate.TieBreaker) (ids.OptionId, error) {
	min := tally[candidates[0]]
	for _, c := range candidates[1:] {
		if tally[c] < min {
			min = tally[c]
		}
	}
	var tied []ids.OptionId
	for _, c := range candidates {
		if tally[c] == min {
			tied = append(tied, c)
		}
	}
	if len(tied) == 1 {
		return tied[0], nil
	}
	return breaker(u.UnitId, tied)
}
