package aggregate

import (
	"github.com/vm-engine/engine/allocate"
	"github.com/vm-engine/engine/params"
	"github.com/vm-engine/engine/registry"
	"github.com/vm-engine/engine/tabulate"
)

// BuildUnitAggregate folds one unit's tabulation and allocation into an
// UnitAggregate. "Support for change" is the sum of scores for every
// option not marked is_status_quo (spec §4.6/§4.8 "support ratio for
// change"); a unit with no status-quo option (every option counts as
// change) sums all of them.
func BuildUnitAggregate(unit *registry.Unit, turnout registry.Turnout, scores tabulate.UnitScores, alloc allocate.Allocation, ballotType params.BallotType, includeBlankInDenominator bool) UnitAggregate {
	var supportNum uint64
	for _, o := range unit.Options() {
		if !o.IsStatusQuo {
			supportNum += scores.Scores[o.OptionId]
		}
	}

	var den uint64
	switch {
	case ballotType == params.BallotApproval:
		den = turnout.ValidBallots
	case includeBlankInDenominator:
		den = turnout.BallotsCast()
	default:
		den = turnout.ValidBallots
	}

	return UnitAggregate{
		UnitId:        unit.UnitId,
		Turnout:       turnout,
		EligibleRoll:  unit.EligibleRoll,
		ProtectedArea: unit.ProtectedArea,
		SupportNum:    supportNum,
		SupportDen:    den,
		Allocation:    alloc,
	}
}

// BuildTotals sums all units to the national level and computes the
// national margin against nationalMajorityPct (VM-VAR-022).
func BuildTotals(units []UnitAggregate, nationalMajorityPct int) Totals {
	ballotsCast, eligibleRoll, supportNum, supportDen := Sum(units)
	support := Ratio{Num: supportNum, Den: supportDen}
	return Totals{
		Units:                units,
		NationalBallotsCast:  ballotsCast,
		NationalEligibleRoll: eligibleRoll,
		NationalSupport:      support,
		NationalMarginPp:     MarginPp(support, nationalMajorityPct),
	}
}
