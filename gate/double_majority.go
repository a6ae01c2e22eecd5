package gate

import (
	"github.com/vm-engine/engine/aggregate"
	"github.com/vm-engine/engine/ids"
	"github.com/vm-engine/engine/params"
	"github.com/vm-engine/engine/vmerrors"
	"github.com/vm-engine/engine/wideint"
)

// DoubleMajority evaluates VM-VAR-024 (spec §4.6 Double-Majority):
// familyUnits is the already-resolved affected family (params.AffectedFamily);
// when scope is frontier_and_family, units failing per-unit quorum are
// dropped from the family sum before computing family support. Pass iff
// nationalPass AND the family support clears regionalMajorityPct.
func DoubleMajority(unitIndex map[ids.UnitId]aggregate.UnitAggregate, familyUnits []ids.UnitId, perUnitQuorumPass map[ids.UnitId]bool, scope params.QuorumScope, nationalPass bool, regionalMajorityPct int) (pass bool, observed aggregate.Ratio, err error) {
	if len(familyUnits) == 0 {
		return false, aggregate.Ratio{}, vmerrors.New(vmerrors.KindGate, vmerrors.ReasonFamilyUnresolved,
			"affected family resolved to an empty unit set")
	}

	units := make([]aggregate.UnitAggregate, 0, len(familyUnits))
	for _, id := range familyUnits {
		ua, ok := unitIndex[id]
		if !ok {
			continue
		}
		if scope == params.QuorumFrontierFamily && !perUnitQuorumPass[id] {
			continue
		}
		units = append(units, ua)
	}
	if len(units) == 0 {
		return false, aggregate.Ratio{}, vmerrors.New(vmerrors.KindGate, vmerrors.ReasonFamilyUnresolved,
			"every affected-family unit was excluded by per-unit quorum")
	}

	_, _, num, den := aggregate.Sum(units)
	observed = aggregate.Ratio{Num: num, Den: den}
	familyPass := den > 0 && wideint.PctGE(num, uint64(regionalMajorityPct), den)
	return nationalPass && familyPass, observed, nil
}
