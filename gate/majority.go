package gate

import (
	"github.com/vm-engine/engine/aggregate"
	"github.com/vm-engine/engine/wideint"
)

// NationalMajority reports whether the national support ratio clears
// pct (spec §4.6 Majority). The denominator rule (valid-only vs.
// valid+invalid, and the fixed valid-only rule for approval ballots) is
// already baked into totals.NationalSupport by aggregate.BuildUnitAggregate.
func NationalMajority(totals aggregate.Totals, pct int) bool {
	if totals.NationalSupport.Den == 0 {
		return false
	}
	return wideint.PctGE(totals.NationalSupport.Num, uint64(pct), totals.NationalSupport.Den)
}
