package tabulate

import (
	"github.com/vm-engine/engine/ids"
	"github.com/vm-engine/engine/registry"
	"github.com/vm-engine/engine/vmerrors"
)

// Approval tabulates an approval ballot tally for one unit (spec §4.3).
// Each option's approval count must not exceed valid_ballots; the sum
// across options may exceed valid_ballots since one ballot can approve
// several options. If valid_ballots == 0, every count must be 0.
func Approval(u *registry.Unit, t registry.UnitTally) (UnitScores, error) {
	for raw := range t.Scores {
		if !u.HasOption(raw) {
			return UnitScores{}, vmerrors.New(vmerrors.KindValidate, vmerrors.ReasonTallyUnknownOption,
				"approval tally references option not defined on unit "+string(u.UnitId)).WithContext("option", string(raw))
		}
	}

	opts := canonicalOptions(u)
	scores := make(map[ids.OptionId]uint64, len(opts))
	for _, opt := range opts {
		v := t.Scores[opt]
		if v > t.Turnout.ValidBallots {
			return UnitScores{}, vmerrors.New(vmerrors.KindValidate, vmerrors.ReasonTallyOptionExceedsValid,
				"approval count for option exceeds valid_ballots").
				WithContext("option", string(opt)).WithContext("count", v).WithContext("valid_ballots", t.Turnout.ValidBallots)
		}
		scores[opt] = v
	}

	return UnitScores{UnitId: u.UnitId, Turnout: t.Turnout, Scores: scores}, nil
}
