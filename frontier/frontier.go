package frontier

import (
	"github.com/vm-engine/engine/aggregate"
	"github.com/vm-engine/engine/ids"
	"github.com/vm-engine/engine/params"
	"github.com/vm-engine/engine/registry"
)

// Build runs MAP_FRONTIER (spec §4.8). Callers are responsible for the
// "invoked only if gates pass and mode != none" precondition (spec
// §4.8 intro); Build itself returns an empty map for FrontierNone as a
// convenience so it is always safe to call.
func Build(reg *registry.DivisionRegistry, p params.Params, unitIndex map[ids.UnitId]aggregate.UnitAggregate, quorumPerUnitPass map[ids.UnitId]bool) FrontierMap {
	if p.FrontierMode == params.FrontierNone {
		return FrontierMap{SummaryByStatus: map[string]int{}, SummaryByFlag: map[string]int{}}
	}

	unitIds := reg.UnitIds()
	uf := newUnionFind(unitIds)
	for _, edge := range reg.Adjacency {
		if allowedEdge(edge, p.ContiguityEdgeTypes, p.IslandExceptionRule) {
			uf.union(edge.A, edge.B)
		}
	}
	components := assignComponentIds(uf, unitIds)
	neighbors := buildNeighborMap(reg.Adjacency, p.ContiguityEdgeTypes, p.IslandExceptionRule)

	units := make([]UnitFrontier, 0, len(unitIds))
	statusByUnit := make(map[ids.UnitId]string, len(unitIds))
	for _, id := range unitIds {
		ua := unitIndex[id]
		uFront := UnitFrontier{UnitId: id, ComponentId: components[id]}

		status := StatusNone
		apId := ""
		if band, ok := selectBand(p.FrontierBands, aggregate.Ratio{Num: ua.SupportNum, Den: ua.SupportDen}); ok {
			status = band.Status
			apId = band.ApId
		}

		if ua.ProtectedArea && status != StatusNone {
			uFront.Flags.ProtectedBlocked = true
			status, apId = StatusNone, ""
		}
		if !quorumPerUnitPass[id] {
			uFront.Flags.QuorumBlocked = true
			status, apId = StatusNone, ""
		}

		uFront.Status = status
		uFront.ApId = apId
		statusByUnit[id] = status
		units = append(units, uFront)
	}

	applyRiskFlags(units, statusByUnit, neighbors)

	fm := FrontierMap{
		Units:           units,
		SummaryByStatus: map[string]int{},
		SummaryByFlag:   map[string]int{},
	}
	for _, u := range units {
		fm.SummaryByStatus[u.Status]++
		if u.Flags.Mediation {
			fm.SummaryByFlag["mediation"]++
		}
		if u.Flags.Enclave {
			fm.SummaryByFlag["enclave"]++
		}
		if u.Flags.ProtectedBlocked {
			fm.SummaryByFlag["protected_blocked"]++
		}
		if u.Flags.QuorumBlocked {
			fm.SummaryByFlag["quorum_blocked"]++
		}
	}
	return fm
}

// applyRiskFlags sets mediation (spec §4.8 step 5, first sentence) and
// enclave (step 5, second sentence) in place.
func applyRiskFlags(units []UnitFrontier, statusByUnit map[ids.UnitId]string, neighbors map[ids.UnitId][]ids.UnitId) {
	for i := range units {
		u := &units[i]
		if u.Status == StatusNone {
			continue
		}

		sameStatusInComponent := false
		for _, other := range units {
			if other.UnitId == u.UnitId {
				continue
			}
			if other.ComponentId == u.ComponentId && other.Status == u.Status {
				sameStatusInComponent = true
				break
			}
		}
		if !sameStatusInComponent {
			u.Flags.Mediation = true
		}

		// A unit with no neighbors at all is vacuously "fully surrounded
		// by none" under the same reading as any other change-status unit
		// isolated from the rest of its component.
		ns := neighbors[u.UnitId]
		allNone := true
		for _, n := range ns {
			if statusByUnit[n] != StatusNone {
				allNone = false
				break
			}
		}
		if allNone {
			u.Flags.Enclave = true
		}
	}
}
