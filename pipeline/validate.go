package pipeline

import (
	"fmt"

	"github.com/vm-engine/engine/ids"
	"github.com/vm-engine/engine/params"
	"github.com/vm-engine/engine/registry"
	"github.com/vm-engine/engine/vmerrors"
)

// checkHierarchy enforces the registry's tree invariants (spec §7
// Validate: multiple roots, cycle, orphan parent) over the units' parent
// links. A flat registry — no unit declaring a parent at all — asserts no
// hierarchy and passes; once any unit carries a parent_id, the links must
// form a single-rooted tree.
func checkHierarchy(reg *registry.DivisionRegistry) error {
	units := reg.Units()
	anyParent := false
	for _, u := range units {
		if u.ParentId != nil {
			anyParent = true
			break
		}
	}
	if !anyParent {
		return nil
	}

	var roots []ids.UnitId
	for _, u := range units {
		if u.ParentId == nil {
			roots = append(roots, u.UnitId)
			continue
		}
		if _, ok := reg.Unit(*u.ParentId); !ok {
			return vmerrors.New(vmerrors.KindValidate, vmerrors.ReasonHierarchyOrphanParent,
				fmt.Sprintf("unit %s references parent %s not present in the registry", u.UnitId, *u.ParentId))
		}
	}
	if len(roots) > 1 {
		return vmerrors.New(vmerrors.KindValidate, vmerrors.ReasonHierarchyMultipleRoots,
			fmt.Sprintf("registry has %d root units (first two: %s, %s)", len(roots), roots[0], roots[1]))
	}

	// Every parent chain must terminate at the root within len(units)
	// hops; a longer walk means the chain re-entered itself.
	for _, u := range units {
		cur := u
		for hops := 0; cur.ParentId != nil; hops++ {
			if hops >= len(units) {
				return vmerrors.New(vmerrors.KindValidate, vmerrors.ReasonHierarchyCycle,
					"parent links of unit "+string(u.UnitId)+" form a cycle")
			}
			next, _ := reg.Unit(*cur.ParentId)
			cur = next
		}
	}
	if len(roots) == 0 {
		return vmerrors.New(vmerrors.KindValidate, vmerrors.ReasonHierarchyCycle,
			"registry has no root unit; parent links form a cycle")
	}
	return nil
}

// indexTallies keys the loaded ballot tally by UnitId and rejects a tally
// entry naming a unit the registry doesn't define, or a duplicate unit
// within the same tally document (spec §4 VALIDATE, referential integrity
// beyond what each tabulator's own HasOption checks cover per-option).
func indexTallies(reg *registry.DivisionRegistry, tallies []registry.UnitTally) (map[ids.UnitId]registry.UnitTally, error) {
	out := make(map[ids.UnitId]registry.UnitTally, len(tallies))
	for _, t := range tallies {
		if _, ok := reg.Unit(t.UnitId); !ok {
			return nil, vmerrors.New(vmerrors.KindValidate, vmerrors.ReasonTallyUnknownUnit,
				"ballot tally references unit not present in the division registry: "+string(t.UnitId))
		}
		if _, dup := out[t.UnitId]; dup {
			return nil, vmerrors.New(vmerrors.KindValidate, vmerrors.ReasonTallyUnknownUnit,
				"duplicate unit "+string(t.UnitId)+" in ballot tally")
		}
		out[t.UnitId] = t
	}
	return out, nil
}

// checkQuorumDataCompleteness raises Validate.QuorumDataMissing when a
// quorum threshold is configured (VM-VAR-020/021) but some registry unit
// has no corresponding ballot tally entry at all. Without a quorum check
// configured, a missing unit is harmless: it tabulates as zero turnout
// and simply contributes nothing to the national totals.
func checkQuorumDataCompleteness(reg *registry.DivisionRegistry, tallyByUnit map[ids.UnitId]registry.UnitTally, p params.Params) error {
	if p.QuorumGlobalPct <= 0 && p.QuorumPerUnitPct <= 0 {
		return nil
	}
	for _, u := range reg.Units() {
		if _, ok := tallyByUnit[u.UnitId]; !ok {
			return vmerrors.New(vmerrors.KindValidate, vmerrors.ReasonQuorumDataMissing,
				"unit "+string(u.UnitId)+" has no ballot tally entry but a quorum threshold is configured")
		}
	}
	return nil
}

// checkFrontierBands validates VM-VAR-042's band table: every band's
// range must be within [0,100] with min <= max, and bands must be strictly
// ascending and non-overlapping so frontier.selectBand's first-match scan
// is unambiguous (spec §4.8).
func checkFrontierBands(bands []params.FrontierBand) error {
	prevMax := -1
	for i, b := range bands {
		if b.MinPct < 0 || b.MaxPct > 100 || b.MinPct > b.MaxPct {
			return vmerrors.New(vmerrors.KindValidate, vmerrors.ReasonFrontierBandsMalformed,
				fmt.Sprintf("frontier band %d has invalid range [%d,%d]", i, b.MinPct, b.MaxPct))
		}
		if b.MinPct <= prevMax {
			return vmerrors.New(vmerrors.KindValidate, vmerrors.ReasonFrontierBandsMalformed,
				fmt.Sprintf("frontier band %d overlaps the previous band or is out of ascending order", i))
		}
		prevMax = b.MaxPct
	}
	return nil
}

// checkAllocationMethodSupported rejects mixed_local_correction: spec.md's
// VM-VAR-010 enum names it but §4.4 never defines its algorithm, so
// selecting it is a configuration error rather than a silently-undefined
// computation.
func checkAllocationMethodSupported(method params.AllocationMethod) error {
	if method == params.AllocMixedLocal {
		return vmerrors.New(vmerrors.KindValidate, vmerrors.ReasonUnsupportedAllocationMethod,
			"allocation_method mixed_local_correction has no defined algorithm in this engine version")
	}
	return nil
}
