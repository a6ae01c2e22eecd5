package tabulate

import (
	"github.com/vm-engine/engine/ids"
	"github.com/vm-engine/engine/params"
	"github.com/vm-engine/engine/registry"
	"github.com/vm-engine/engine/vmerrors"
)

// RankedCondorcet runs Condorcet tabulation for one unit (spec §4.3
// Ranked Condorcet): builds the pairwise matrix, checks for an outright
// Condorcet winner, and falls back to the configured completion rule
// (Schulze or minimax) otherwise. Output is winner-only: {winner:
// valid_ballots, others: 0}.
func RankedCondorcet(u *registry.Unit, t registry.UnitTally, completion params.CondorcetCompletion) (UnitScores, error) {
	opts := canonicalOptions(u)
	if len(opts) == 0 {
		return UnitScores{}, vmerrors.New(vmerrors.KindValidate, vmerrors.ReasonAllocNoEligibleOptions, "unit has no options defined")
	}
	for _, g := range t.Ranked {
		for _, opt := range g.Ranking {
			if !u.HasOption(opt) {
				return UnitScores{}, vmerrors.New(vmerrors.KindValidate, vmerrors.ReasonTallyUnknownOption,
					"ranked tally references option not defined on unit "+string(u.UnitId)).WithContext("option", string(opt))
			}
		}
	}

	matrix := buildPairwiseMatrix(opts, t.Ranked)
	log := &CondorcetLog{}

	winner, ok := condorcetWinner(opts, matrix)
	if ok {
		log.CondorcetWinner = winner
		log.Winner = winner
	} else {
		switch completion {
		case params.CompletionMinimax:
			log.CompletionUsed = "minimax"
			log.Winner = minimaxWinner(u, opts, matrix)
		default:
			log.CompletionUsed = "schulze"
			strengths := schulzeStrengths(opts, matrix)
			log.SchulzeStrengths = strengths
			log.Winner = schulzeWinner(u, opts, strengths)
		}
	}

	scores := make(map[ids.OptionId]uint64, len(opts))
	for _, o := range opts {
		if o == log.Winner {
			scores[o] = t.Turnout.ValidBallots
		} else {
			scores[o] = 0
		}
	}

	return UnitScores{UnitId: u.UnitId, Turnout: t.Turnout, Scores: scores, Pairwise: matrix, CondorcetLog: log}, nil
}

func buildPairwiseMatrix(opts []ids.OptionId, groups []registry.RankedGroup) *PairwiseMatrix {
	m := &PairwiseMatrix{Options: opts, Wins: make(map[[2]ids.OptionId]uint64)}
	for _, g := range groups {
		position := make(map[ids.OptionId]int, len(g.Ranking))
		for i, opt := range g.Ranking {
			position[opt] = i
		}
		for _, a := range opts {
			pa, aRanked := position[a]
			if !aRanked {
				continue
			}
			for _, b := range opts {
				if a == b {
					continue
				}
				pb, bRanked := position[b]
				if !bRanked {
					continue
				}
				if pa < pb {
					m.Wins[[2]ids.OptionId{a, b}] += g.Count
				}
			}
		}
	}
	return m
}

func condorcetWinner(opts []ids.OptionId, m *PairwiseMatrix) (ids.OptionId, bool) {
	for _, x := range opts {
		beatsAll := true
		for _, y := range opts {
			if x == y {
				continue
			}
			if !(m.Get(x, y) > m.Get(y, x)) {
				beatsAll = false
				break
			}
		}
		if beatsAll {
			return x, true
		}
	}
	return "", false
}

// schulzeStrengths computes the widest-path strength matrix via
// Floyd-Warshall-style widening over min-of-path-edges (spec §4.3).
func schulzeStrengths(opts []ids.OptionId, m *PairwiseMatrix) map[[2]ids.OptionId]uint64 {
	p := make(map[[2]ids.OptionId]uint64, len(opts)*len(opts))
	for _, a := range opts {
		for _, b := range opts {
			if a == b {
				continue
			}
			if m.Get(a, b) > m.Get(b, a) {
				p[[2]ids.OptionId{a, b}] = m.Get(a, b)
			} else {
				p[[2]ids.OptionId{a, b}] = 0
			}
		}
	}
	for _, k := range opts {
		for _, i := range opts {
			if i == k {
				continue
			}
			for _, j := range opts {
				if j == i || j == k {
					continue
				}
				viaK := min64(p[[2]ids.OptionId{i, k}], p[[2]ids.OptionId{k, j}])
				if viaK > p[[2]ids.OptionId{i, j}] {
					p[[2]ids.OptionId{i, j}] = viaK
				}
			}
		}
	}
	return p
}

func schulzeWinner(u *registry.Unit, opts []ids.OptionId, p map[[2]ids.OptionId]uint64) ids.OptionId {
	var candidates []ids.OptionId
	for _, x := range opts {
		beatsAll := true
		for _, y := range opts {
			if x == y {
				continue
			}
			if !(p[[2]ids.OptionId{x, y}] > p[[2]ids.OptionId{y, x}]) {
				beatsAll = false
				break
			}
		}
		if beatsAll {
			candidates = append(candidates, x)
		}
	}
	if len(candidates) == 0 {
		candidates = opts
	}
	return lowestOrderAmong(u, candidates)
}

func minimaxWinner(u *registry.Unit, opts []ids.OptionId, m *PairwiseMatrix) ids.OptionId {
	worstDefeat := make(map[ids.OptionId]uint64, len(opts))
	for _, x := range opts {
		var worst uint64
		for _, y := range opts {
			if x == y {
				continue
			}
			if m.Get(y, x) > m.Get(x, y) && m.Get(y, x) > worst {
				worst = m.Get(y, x)
			}
		}
		worstDefeat[x] = worst
	}

	best := opts[0]
	for _, x := range opts[1:] {
		if worstDefeat[x] < worstDefeat[best] {
			best = x
		}
	}
	var tied []ids.OptionId
	for _, x := range opts {
		if worstDefeat[x] == worstDefeat[best] {
			tied = append(tied, x)
		}
	}
	return lowestOrderAmong(u, tied)
}

// lowestOrderAmong breaks ties by ascending (order_index, OptionId).
func lowestOrderAmong(u *registry.Unit, candidates []ids.OptionId) ids.OptionId {
	best := candidates[0]
	bestKey := ids.OptionKey{OrderIndex: orderIndexOf(u, best), OptionId: best}
	for _, c := range candidates[1:] {
		key := ids.OptionKey{OrderIndex: orderIndexOf(u, c), OptionId: c}
		if ids.LessOptionKey(key, bestKey) {
			best, bestKey = c, key
		}
	}
	return best
}

func min64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}
