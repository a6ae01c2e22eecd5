// Package frontier implements MAP_FRONTIER (spec §4.8): union-find
// contiguity components over the allowed adjacency-edge subset, band
// assignment from each unit's observed support ratio, protected-area and
// per-unit-quorum overrides, and the mediation/enclave risk flags.
package frontier

import "github.com/vm-engine/engine/ids"

// StatusNone is the forced status for any unit overridden by a
// protected-area or per-unit-quorum block.
const StatusNone = "none"

// UnitFlags are the four risk flags tracked per unit (spec §4.8 step 3).
type UnitFlags struct {
	Mediation        bool
	Enclave          bool
	ProtectedBlocked bool
	QuorumBlocked    bool
}

// UnitFrontier is one unit's frontier assignment.
type UnitFrontier struct {
	UnitId      ids.UnitId
	ComponentId int
	Status      string
	ApId        string
	Flags       UnitFlags
}

// FrontierMap is the full MAP_FRONTIER output (spec §4.10 FrontierMap).
type FrontierMap struct {
	Units           []UnitFrontier
	SummaryByStatus map[string]int
	SummaryByFlag   map[string]int
}
