// Package aggregate implements AGGREGATE (spec §4.5): summing per-unit
// allocations and vote totals across the registry, computing observed
// support ratios and the signed national margin in percentage points.
// Ratios are kept exact as Ratio{Num, Den}; no float64 is computed
// anywhere in the aggregation path (spec §9 "Integer arithmetic").
package aggregate

import (
	"github.com/vm-engine/engine/allocate"
	"github.com/vm-engine/engine/ids"
	"github.com/vm-engine/engine/registry"
	"github.com/vm-engine/engine/wideint"
)

// Ratio is an exact numerator/denominator pair, never reduced to a float.
type Ratio struct {
	Num uint64
	Den uint64
}

// UnitAggregate is one unit's contribution to the national totals: its
// turnout, eligibility, "support for change" ratio, and allocation.
type UnitAggregate struct {
	UnitId        ids.UnitId
	Turnout       registry.Turnout
	EligibleRoll  uint64
	ProtectedArea bool
	SupportNum    uint64 // votes/score for non-status-quo options
	SupportDen    uint64
	Allocation    allocate.Allocation
}

// Totals is the national-level aggregation result.
type Totals struct {
	Units                []UnitAggregate
	NationalBallotsCast  uint64
	NationalEligibleRoll uint64
	NationalSupport      Ratio
	NationalMarginPp     int
}

// Sum folds a slice of UnitAggregate into raw totals (ballots cast,
// eligible roll, support numerator/denominator), reused identically for
// the national level and for any family-level subset (spec §4.6
// double-majority family support uses "the same denominator rule").
func Sum(units []UnitAggregate) (ballotsCast, eligibleRoll, supportNum, supportDen uint64) {
	for _, u := range units {
		ballotsCast += u.Turnout.BallotsCast()
		eligibleRoll += u.EligibleRoll
		supportNum += u.SupportNum
		supportDen += u.SupportDen
	}
	return
}

// MarginPp computes the signed percentage-point margin of support over
// thresholdPct (spec §4.5 "signed integer difference between actual
// support and the majority threshold"). support.Den == 0 counts as 0%
// support and yields -thresholdPct.
func MarginPp(support Ratio, thresholdPct int) int {
	if support.Den == 0 {
		return -thresholdPct
	}
	observedPct := wideint.PctFloor(support.Num, support.Den)
	return int(observedPct) - thresholdPct
}
