// Package allocate implements the four seat/power allocation methods
// (spec §4.4): winner-take-all, D'Hondt, Sainte-Laguë, and largest
// remainder. Every comparison that could overflow uint64 (score products,
// percentage thresholds, divisor quotients) goes through wideint instead
// of raw multiplication.
package allocate

import (
	"github.com/vm-engine/engine/ids"
	"github.com/vm-engine/engine/vmerrors"
	"github.com/vm-engine/engine/wideint"
)

// Allocation is one unit's seat or power award (spec §3 Computed
// Entities). For WTA, SeatsOrPower is always {winner: 100}.
type Allocation struct {
	UnitId       ids.UnitId
	SeatsOrPower map[ids.OptionId]uint32
	LastSeatTie  bool
}

// TieBreaker resolves a tie among candidates, returning the chosen
// option. It is invoked only when len(candidates) > 1, so every call
// represents one recorded tie event (spec §4.7). Ties that reach it are
// decided by the pipeline's configured tie policy (status_quo /
// deterministic / random); the highest-averages methods call it only for
// a tie on the last seat and give earlier tied seats to the
// canonical-first leader.
type TieBreaker func(unit ids.UnitId, candidates []ids.OptionId) (ids.OptionId, error)

// thresholdFilter keeps options whose score clears pr_entry_threshold_pct
// of the total (spec §4.4 step 1, a 128-bit-safe percentage comparison).
// Returns options in canonical order.
func thresholdFilter(canonical []ids.OptionId, scores map[ids.OptionId]uint64, thresholdPct int) []ids.OptionId {
	var total uint64
	for _, o := range canonical {
		total += scores[o]
	}
	out := make([]ids.OptionId, 0, len(canonical))
	for _, o := range canonical {
		if wideint.PctGE(scores[o], uint64(thresholdPct), total) {
			out = append(out, o)
		}
	}
	return out
}

var errNoEligible = func(unit ids.UnitId) error {
	return vmerrors.New(vmerrors.KindAllocate, vmerrors.ReasonAllocNoEligibleOptions,
		"no options clear the entry threshold in unit "+string(unit))
}

var errBadMagnitude = func(unit ids.UnitId, magnitude uint32) error {
	return vmerrors.New(vmerrors.KindAllocate, vmerrors.ReasonAllocInvalidMagnitude,
		"winner_take_all requires magnitude == 1").WithContext("unit", string(unit)).WithContext("magnitude", magnitude)
}
