package tabulate

import (
	"github.com/vm-engine/engine/ids"
	"github.com/vm-engine/engine/registry"
	"github.com/vm-engine/engine/vmerrors"
)

// Plurality tabulates a plurality ballot tally for one unit (spec §4.3).
// Every vote key must name a defined option; the sum of scores must not
// exceed valid_ballots.
func Plurality(u *registry.Unit, t registry.UnitTally) (UnitScores, error) {
	for raw := range t.Scores {
		if !u.HasOption(raw) {
			return UnitScores{}, vmerrors.New(vmerrors.KindValidate, vmerrors.ReasonTallyUnknownOption,
				"plurality tally references option not defined on unit "+string(u.UnitId)).WithContext("option", string(raw))
		}
	}

	opts := canonicalOptions(u)
	scores := make(map[ids.OptionId]uint64, len(opts))
	var sum uint64
	for _, opt := range opts {
		v := t.Scores[opt]
		scores[opt] = v
		sum += v
	}

	if sum > t.Turnout.ValidBallots {
		return UnitScores{}, vmerrors.New(vmerrors.KindValidate, vmerrors.ReasonTallySumGtValid,
			"plurality tally sum exceeds valid_ballots").
			WithContext("sum", sum).WithContext("valid_ballots", t.Turnout.ValidBallots)
	}

	return UnitScores{UnitId: u.UnitId, Turnout: t.Turnout, Scores: scores}, nil
}
