// Package gate implements APPLY_DECISION_RULES (spec §4.6): quorum,
// majority, double-majority, and symmetry, evaluated in that fixed
// order. Failing any required gate sets overall pass=false, but every
// gate's observed value is still computed and recorded for the
// diagnostics panel (spec: "still compute and record all gate values").
package gate

import (
	"github.com/vm-engine/engine/aggregate"
	"github.com/vm-engine/engine/ids"
	"github.com/vm-engine/engine/wideint"
)

// NationalQuorum reports whether 100 * ballots_cast >= pct * eligible_roll
// (spec §4.6 Quorum, national form).
func NationalQuorum(totals aggregate.Totals, pct int) bool {
	return wideint.PctGE(totals.NationalBallotsCast, uint64(pct), totals.NationalEligibleRoll)
}

// PerUnitQuorum evaluates the per-unit quorum (VM-VAR-021) independently
// for every unit, returning the pass-set keyed by UnitId.
func PerUnitQuorum(units []aggregate.UnitAggregate, pct int) map[ids.UnitId]bool {
	out := make(map[ids.UnitId]bool, len(units))
	for _, u := range units {
		out[u.UnitId] = wideint.PctGE(u.Turnout.BallotsCast(), uint64(pct), u.EligibleRoll)
	}
	return out
}
