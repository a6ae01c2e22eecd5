// Package result assembles the three content-addressed output artifacts
// (spec §4.10): Result (RES:), RunRecord (RUN:), and FrontierMap (FR:).
// Each is built as an intermediate canon.Obj tree, canonicalized, and
// hashed — the same two-pass discipline the teacher's
// core/planfmt/canonical.go uses for its own envelope format.
package result

import (
	"github.com/vm-engine/engine/aggregate"
	"github.com/vm-engine/engine/frontier"
	"github.com/vm-engine/engine/gate"
	"github.com/vm-engine/engine/ids"
	"github.com/vm-engine/engine/label"
	"github.com/vm-engine/engine/tie"
)

// UnitResult is one unit's per-unit block in Result (spec §4.10: "scores,
// turnout, allocation, flags"). PerUnitQuorumPass is the only per-unit
// flag left in Result once the frontier-specific flags move to the
// separate FrontierMap artifact.
type UnitResult struct {
	UnitId            ids.UnitId
	Scores            map[ids.OptionId]uint64
	ValidBallots      uint64
	InvalidBallots    uint64
	SeatsOrPower      map[ids.OptionId]uint32
	LastSeatTie       bool
	PerUnitQuorumPass bool
}

// GatePanel mirrors gate.LegitimacyReport in a form suitable for
// canonical-JSON emission (observed values as shares, thresholds as
// integers, spec §4.10: "gates panel (observed as JSON numbers,
// thresholds as integers, pass booleans)").
type GatePanel struct {
	QuorumNationalObserved     aggregate.Ratio
	QuorumNationalThresholdPct int
	QuorumNationalPass         bool

	QuorumPerUnitPass         map[ids.UnitId]bool
	QuorumPerUnitThresholdPct int

	MajorityObserved     aggregate.Ratio
	MajorityThresholdPct int
	MajorityPass         bool

	DoubleMajorityEnabled      bool
	DoubleMajorityObserved     aggregate.Ratio
	DoubleMajorityThresholdPct int
	DoubleMajorityPass         bool

	SymmetryEnabled    bool
	SymmetryPass       bool
	SymmetryExceptions []string

	Pass               bool
	FirstFailureReason string
}

// GatePanelFrom converts a gate.LegitimacyReport into the Result-shaped panel.
func GatePanelFrom(legit gate.LegitimacyReport) GatePanel {
	return GatePanel{
		QuorumNationalObserved:     legit.QuorumNationalObserved,
		QuorumNationalThresholdPct: legit.QuorumNationalThresholdPct,
		QuorumNationalPass:         legit.QuorumNationalPass,
		QuorumPerUnitPass:          legit.QuorumPerUnitPass,
		QuorumPerUnitThresholdPct:  legit.QuorumPerUnitThresholdPct,
		MajorityObserved:           legit.MajorityObserved,
		MajorityThresholdPct:       legit.MajorityThresholdPct,
		MajorityPass:               legit.MajorityPass,
		DoubleMajorityEnabled:      legit.DoubleMajority.Enabled,
		DoubleMajorityObserved:     legit.DoubleMajority.Observed,
		DoubleMajorityThresholdPct: legit.DoubleMajority.ThresholdPct,
		DoubleMajorityPass:         legit.DoubleMajority.Pass,
		SymmetryEnabled:            legit.Symmetry.Enabled,
		SymmetryPass:               legit.Symmetry.Pass,
		SymmetryExceptions:         legit.Symmetry.Exceptions,
		Pass:                       legit.Pass,
		FirstFailureReason:         legit.FirstFailureReason,
	}
}

// Result is the full RES: artifact (spec §4.10). It never contains input
// IDs, tie events, or raw rationals — those live only in RunRecord.
type Result struct {
	FormulaId ids.FormulaId
	Label     label.Outcome
	// Reasons accumulates every machine-readable reason token observed
	// while producing this run, for post-mortem diagnosis (spec §7:
	// "RunRecord mirrors these and records engine identifiers for
	// post-mortem reproduction"). On a Decisive/Marginal run it is empty.
	Reasons        []string
	Units          []UnitResult
	NationalTotals aggregate.Totals
	Gates          GatePanel
	FrontierMapId  *ids.FrontierMapId
	SharePrecision int64
}

// EngineIdentity is embedded in every RunRecord (spec §6.3).
type EngineIdentity struct {
	Vendor  string
	Name    string
	Version string
	Build   string
}

// Inputs is RunRecord's input-provenance block.
type Inputs struct {
	RegId          string
	ParameterSetId string
	BallotTallyId  string
	ManifestId     string // empty if no manifest was used
	Digests        map[string]ids.Sha256
}

// Determinism is RunRecord's tie-policy/seed block.
type Determinism struct {
	TiePolicy string
	RngSeed   *uint64 // non-nil only when TiePolicy == "random"
}

// Outputs is RunRecord's artifact cross-reference block.
type Outputs struct {
	ResultId          ids.ResultId
	ResultSha256      ids.Sha256
	FrontierMapId     *ids.FrontierMapId
	FrontierMapSha256 *ids.Sha256
}

// Timestamps are caller-provided RFC3339 (with Z) instants.
type Timestamps struct {
	StartedUtc  string
	FinishedUtc string
}

// RunRecord is the full RUN: artifact (spec §4.10).
type RunRecord struct {
	RunId                 ids.RunId
	FormulaId             ids.FormulaId
	FormulaManifestSha256 ids.Sha256
	Engine                EngineIdentity
	Inputs                Inputs
	Determinism           Determinism
	Outputs               Outputs
	Timestamps            Timestamps
	Ties                  []tie.TieEvent
}

// FrontierConfig is FrontierMap's configuration echo block.
type FrontierConfig struct {
	Mode                string
	ContiguityEdgeTypes []string
	IslandExceptionRule string
	Bands               []FrontierBandDoc
}

// FrontierBandDoc mirrors params.FrontierBand for the artifact.
type FrontierBandDoc struct {
	MinPct int
	MaxPct int
	Status string
	ApId   string
}

// FrontierMapDoc is the full FR: artifact (spec §4.10).
type FrontierMapDoc struct {
	Config          FrontierConfig
	Units           []frontier.UnitFrontier
	SupportByUnit   map[ids.UnitId]aggregate.Ratio
	SummaryByStatus map[string]int
	SummaryByFlag   map[string]int
}
