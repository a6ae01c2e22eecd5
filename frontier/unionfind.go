package frontier

import (
	"sort"

	"github.com/vm-engine/engine/ids"
)

// unionFind is a standard disjoint-set over UnitId with path halving;
// final component IDs are reassigned afterward in ascending order of
// each component's smallest UnitId (spec §4.8 step 1) so numbering never
// depends on union order.
type unionFind struct {
	parent map[ids.UnitId]ids.UnitId
}

func newUnionFind(unitIds []ids.UnitId) *unionFind {
	uf := &unionFind{parent: make(map[ids.UnitId]ids.UnitId, len(unitIds))}
	for _, id := range unitIds {
		uf.parent[id] = id
	}
	return uf
}

func (uf *unionFind) find(x ids.UnitId) ids.UnitId {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

func (uf *unionFind) union(a, b ids.UnitId) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	uf.parent[rb] = ra
}

// assignComponentIds groups unitIds by their union-find root and numbers
// components 0, 1, 2, ... in ascending order of each component's
// smallest UnitId.
func assignComponentIds(uf *unionFind, unitIds []ids.UnitId) map[ids.UnitId]int {
	members := map[ids.UnitId][]ids.UnitId{}
	for _, id := range unitIds {
		r := uf.find(id)
		members[r] = append(members[r], id)
	}

	type component struct {
		minId   ids.UnitId
		unitIds []ids.UnitId
	}
	comps := make([]component, 0, len(members))
	for _, ids_ := range members {
		minId := ids_[0]
		for _, m := range ids_ {
			if m < minId {
				minId = m
			}
		}
		comps = append(comps, component{minId: minId, unitIds: ids_})
	}
	sort.Slice(comps, func(i, j int) bool { return comps[i].minId < comps[j].minId })

	out := make(map[ids.UnitId]int, len(unitIds))
	for idx, c := range comps {
		for _, m := range c.unitIds {
			out[m] = idx
		}
	}
	return out
}
