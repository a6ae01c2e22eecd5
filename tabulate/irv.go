package tabulate

import (
	"github.com/vm-engine/engine/allocate"
	"github.com/vm-engine/engine/ids"
	"github.com/vm-engine/engine/registry"
	"github.com/vm-engine/engine/vmerrors"
)

// RankedIRV runs instant-runoff voting for one unit (spec §4.3 Ranked
// IRV). continuing_total starts at valid_ballots and shrinks by the
// reduce_continuing_denominator exhaustion policy (VM-VAR-006, fixed for
// this engine version) as ballot groups exhaust. breaker is invoked only
// when the lowest-tally set has two or more members (spec §4.7: IRV
// elimination is a tie-policy-governed context, unlike Condorcet
// completion's purely internal canonical-order tie-break).
func RankedIRV(u *registry.Unit, t registry.UnitTally, breaker allocate.TieBreaker) (UnitScores, error) {
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

	continuing := make(map[ids.OptionId]bool, len(opts))
	for _, o := range opts {
		continuing[o] = true
	}
	continuingTotal := t.Turnout.ValidBallots

	log := &IrvLog{}
	var finalTally map[ids.OptionId]uint64

	for {
		tally := tallyFirstPreferences(t.Ranked, continuing)
		finalTally = tally

		var leader ids.OptionId
		var leaderVotes uint64
		for opt, v := range tally {
			if v > leaderVotes {
				leader, leaderVotes = opt, v
			}
		}
		if leaderVotes > continuingTotal/2 {
			log.Winner = leader
			break
		}

		remaining := remainingOptions(opts, continuing)
		if len(remaining) == 1 {
			log.Winner = remaining[0]
			break
		}

		eliminated, err := lowestTallyCandidate(u, remaining, tally, breaker)
		if err != nil {
			return UnitScores{}, err
		}
		newContinuing := make(map[ids.OptionId]bool, len(continuing))
		for opt := range continuing {
			if opt != eliminated {
				newContinuing[opt] = true
			}
		}

		transfers := make(map[ids.OptionId]uint64)
		var exhaustedThisRound uint64
		for _, g := range t.Ranked {
			if firstContinuingPref(g.Ranking, continuing) != eliminated {
				continue
			}
			if np, ok := firstContinuingPrefOk(g.Ranking, newContinuing); ok {
				transfers[np] += g.Count
			} else {
				exhaustedThisRound += g.Count
			}
		}

		log.Rounds = append(log.Rounds, IrvRound{Eliminated: eliminated, Transfers: transfers, Exhausted: exhaustedThisRound})
		continuing = newContinuing
		continuingTotal -= exhaustedThisRound
	}

	scores := make(map[ids.OptionId]uint64, len(opts))
	for _, o := range opts {
		scores[o] = finalTally[o]
	}

	return UnitScores{UnitId: u.UnitId, Turnout: t.Turnout, Scores: scores, IrvLog: log}, nil
}

func tallyFirstPreferences(groups []registry.RankedGroup, continuing map[ids.OptionId]bool) map[ids.OptionId]uint64 {
	out := make(map[ids.OptionId]uint64, len(continuing))
	for opt := range continuing {
		out[opt] = 0
	}
	for _, g := range groups {
		if opt, ok := firstContinuingPrefOk(g.Ranking, continuing); ok {
			out[opt] += g.Count
		}
	}
	return out
}

func firstContinuingPref(ranking []ids.OptionId, continuing map[ids.OptionId]bool) ids.OptionId {
	opt, _ := firstContinuingPrefOk(ranking, continuing)
	return opt
}

func firstContinuingPrefOk(ranking []ids.OptionId, continuing map[ids.OptionId]bool) (ids.OptionId, bool) {
	for _, opt := range ranking {
		if continuing[opt] {
			return opt, true
		}
	}
	return "", false
}

func remainingOptions(canonical []ids.OptionId, continuing map[ids.OptionId]bool) []ids.OptionId {
	out := make([]ids.OptionId, 0, len(continuing))
	for _, o := range canonical {
		if continuing[o] {
			out = append(out, o)
		}
	}
	return out
}
