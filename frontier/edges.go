package frontier

import (
	"github.com/vm-engine/engine/ids"
	"github.com/vm-engine/engine/params"
	"github.com/vm-engine/engine/registry"
)

// allowedEdge applies VM-VAR-047 (contiguity_edge_types) and, for water
// edges specifically, VM-VAR-048 (island_exception_rule): none keeps the
// plain 047 membership test, ferry_allowed always treats water as
// connecting, corridor_required additionally demands the edge be marked
// as a corridor (spec §4.8 step 2).
func allowedEdge(edge registry.Adjacency, edgeTypes []string, islandRule params.IslandExceptionRule) bool {
	if edge.Kind != registry.EdgeWater {
		return containsEdgeType(edgeTypes, edge.Kind)
	}
	switch islandRule {
	case params.IslandFerryAllowed:
		return true
	case params.IslandCorridorRequired:
		return edge.Corridor
	default:
		return containsEdgeType(edgeTypes, edge.Kind)
	}
}

func containsEdgeType(edgeTypes []string, kind registry.EdgeKind) bool {
	for _, t := range edgeTypes {
		if t == string(kind) {
			return true
		}
	}
	return false
}

// buildNeighborMap indexes the allowed-edge subset for direct-neighbor
// lookups (used by the enclave check, spec §4.8 step 5).
func buildNeighborMap(edges []registry.Adjacency, edgeTypes []string, islandRule params.IslandExceptionRule) map[ids.UnitId][]ids.UnitId {
	out := map[ids.UnitId][]ids.UnitId{}
	for _, e := range edges {
		if !allowedEdge(e, edgeTypes, islandRule) {
			continue
		}
		out[e.A] = append(out[e.A], e.B)
		out[e.B] = append(out[e.B], e.A)
	}
	return out
}
