package tabulate

import (
	"github.com/vm-engine/engine/ids"
	"github.com/vm-engine/engine/registry"
	"github.com/vm-engine/engine/vmerrors"
	"github.com/vm-engine/engine/wideint"
)

// Score tabulates a score ballot tally for one unit (spec §4.3). Inputs
// are pre-summed score totals per option; the cap sum_opt <= valid_ballots
// * scale_max is checked in 128-bit-safe arithmetic to avoid any risk of
// uint64 overflow from a crafted or malformed tally. Normalization mode is
// carried through by the caller but never changes this cap.
func Score(u *registry.Unit, t registry.UnitTally, scaleMax int64) (UnitScores, error) {
	for raw := range t.Scores {
		if !u.HasOption(raw) {
			return UnitScores{}, vmerrors.New(vmerrors.KindValidate, vmerrors.ReasonTallyUnknownOption,
				"score tally references option not defined on unit "+string(u.UnitId)).WithContext("option", string(raw))
		}
	}
	if scaleMax < 0 {
		return UnitScores{}, vmerrors.New(vmerrors.KindValidate, "Validate.BadScaleMax", "scale_max must be non-negative")
	}

	opts := canonicalOptions(u)
	scores := make(map[ids.OptionId]uint64, len(opts))
	for _, opt := range opts {
		v := t.Scores[opt]
		if !wideint.LECap(v, t.Turnout.ValidBallots, uint64(scaleMax)) {
			return UnitScores{}, vmerrors.New(vmerrors.KindValidate, vmerrors.ReasonTallyScoreExceedsCap,
				"score sum for option exceeds valid_ballots*scale_max").
				WithContext("option", string(opt)).WithContext("sum", v)
		}
		scores[opt] = v
	}

	return UnitScores{UnitId: u.UnitId, Turnout: t.Turnout, Scores: scores}, nil
}
