// Package params defines the immutable Params value object (spec §4.2) and
// the Normative Manifest extraction used for Formula ID computation (§4.1).
// Params is constructed once per run by the loader and never mutated.
package params

import "github.com/vm-engine/engine/ids"

// BallotType selects the tabulator (VM-VAR-001).
type BallotType string

const (
	BallotPlurality BallotType = "plurality"
	BallotApproval  BallotType = "approval"
	BallotScore     BallotType = "score"
	BallotRankedIRV BallotType = "ranked_irv"
	BallotCondorcet BallotType = "ranked_condorcet"
)

// ScoreNormalization is VM-VAR-004.
type ScoreNormalization string

const (
	ScoreNormOff    ScoreNormalization = "off"
	ScoreNormLinear ScoreNormalization = "linear"
)

// CondorcetCompletion is VM-VAR-005.
type CondorcetCompletion string

const (
	CompletionSchulze CondorcetCompletion = "schulze"
	CompletionMinimax CondorcetCompletion = "minimax"
)

// AllocationMethod is VM-VAR-010.
type AllocationMethod string

const (
	AllocWTA              AllocationMethod = "winner_take_all"
	AllocFavorBig         AllocationMethod = "proportional_favor_big"
	AllocFavorSmall       AllocationMethod = "proportional_favor_small"
	AllocLargestRemainder AllocationMethod = "largest_remainder"
	AllocMixedLocal       AllocationMethod = "mixed_local_correction"
)

// QuorumScope is part of VM-VAR-021.
type QuorumScope string

const (
	QuorumFrontierOnly   QuorumScope = "frontier_only"
	QuorumFrontierFamily QuorumScope = "frontier_and_family"
)

// AffectedFamilyMode is VM-VAR-026.
type AffectedFamilyMode string

const (
	FamilyByList           AffectedFamilyMode = "by_list"
	FamilyByTag            AffectedFamilyMode = "by_tag"
	FamilyByProposedChange AffectedFamilyMode = "by_proposed_change"
)

// FrontierMode is VM-VAR-040.
type FrontierMode string

const (
	FrontierNone           FrontierMode = "none"
	FrontierSlidingScale   FrontierMode = "sliding_scale"
	FrontierAutonomyLadder FrontierMode = "autonomy_ladder"
)

// IslandExceptionRule is VM-VAR-048.
type IslandExceptionRule string

const (
	IslandNone             IslandExceptionRule = "none"
	IslandFerryAllowed     IslandExceptionRule = "ferry_allowed"
	IslandCorridorRequired IslandExceptionRule = "corridor_required"
)

// TiePolicy is VM-VAR-050.
type TiePolicy string

const (
	TieStatusQuo     TiePolicy = "status_quo"
	TieDeterministic TiePolicy = "deterministic"
	TieRandom        TiePolicy = "random"
)

// LRQuota is the platform-configured largest-remainder quota (spec §9 Open
// Question: not pinned by a numbered VM-VAR; Hare is the documented default).
type LRQuota string

const (
	QuotaHare      LRQuota = "hare"
	QuotaDroop     LRQuota = "droop"
	QuotaImperiali LRQuota = "imperiali"
)

// FrontierBand is one row of VM-VAR-042.
type FrontierBand struct {
	MinPct int
	MaxPct int
	Status string
	ApId   string // optional autonomy-package id; empty if unset
}

// Params is the immutable snapshot of every tunable variable.
type Params struct {
	BallotType                BallotType          // 001
	ScaleMin                  int                 // 002
	ScaleMax                  int                 // 003
	ScoreNormalization        ScoreNormalization  // 004
	CondorcetCompletion       CondorcetCompletion // 005
	IncludeBlankInDenominator bool                // 007
	AllocationMethod          AllocationMethod    // 010
	PrEntryThresholdPct       int                 // 012
	QuorumGlobalPct           int                 // 020
	QuorumPerUnitPct          int                 // 021
	QuorumPerUnitScope        QuorumScope         // 021
	NationalMajorityPct       int                 // 022
	RegionalMajorityPct       int                 // 023
	DoubleMajorityEnabled     bool                // 024
	SymmetryEnabled           bool                // 025
	AffectedFamilyMode        AffectedFamilyMode  // 026
	AffectedFamilyRef         []string            // 027
	SymmetryExceptions        []string            // 029
	FrontierMode              FrontierMode        // 040
	FrontierBands             []FrontierBand      // 042
	ContiguityEdgeTypes       []string            // 047 subset of {land,bridge,water}
	IslandExceptionRule       IslandExceptionRule // 048
	TiePolicy                 TiePolicy           // 050
	TieSeed                   uint64              // 052
	DecisiveMarginPp          int                 // 062

	// Platform-configured, not a numbered VM-VAR (spec §9 Open Question 1).
	LRQuota LRQuota

	SchemaVersion string

	// Id is the ParameterSet document's own "id" (PS:...), carried through
	// for RunRecord.inputs.parameter_set_id only — never part of the
	// Normative Manifest.
	Id string
}

// NormativeManifest is the subset of Params plus schema_version that affects
// computational outcomes; it is the basis for the Formula ID (spec §4.1).
// Origin metadata, timestamps, and comments are never part of it.
type NormativeManifest struct {
	SchemaVersion             string
	BallotType                BallotType
	ScaleMin                  int
	ScaleMax                  int
	ScoreNormalization        ScoreNormalization
	CondorcetCompletion       CondorcetCompletion
	IncludeBlankInDenominator bool
	AllocationMethod          AllocationMethod
	PrEntryThresholdPct       int
	QuorumGlobalPct           int
	QuorumPerUnitPct          int
	QuorumPerUnitScope        QuorumScope
	NationalMajorityPct       int
	RegionalMajorityPct       int
	DoubleMajorityEnabled     bool
	SymmetryEnabled           bool
	AffectedFamilyMode        AffectedFamilyMode
	AffectedFamilyRef         []string
	SymmetryExceptions        []string
	FrontierMode              FrontierMode
	FrontierBands             []FrontierBand
	ContiguityEdgeTypes       []string
	IslandExceptionRule       IslandExceptionRule
	TiePolicy                 TiePolicy
	LRQuota                   LRQuota
	// SharePrecision is ENGINE_SHARE_PRECISION (spec §6.3, §9 Open Question
	// 2): fixed at 1e6 for this engine version, included here because it
	// affects Result bytes.
	SharePrecision int64
	// Note: TieSeed is intentionally excluded — it selects *which* random
	// outcome among tie-policy=random runs, not the rule set itself; two
	// runs with different seeds use the identical Formula ID by design.
}

// ToNormativeManifest extracts the Formula-ID-relevant subset of p.
func (p Params) ToNormativeManifest(sharePrecision int64) NormativeManifest {
	return NormativeManifest{
		SchemaVersion:             p.SchemaVersion,
		BallotType:                p.BallotType,
		ScaleMin:                  p.ScaleMin,
		ScaleMax:                  p.ScaleMax,
		ScoreNormalization:        p.ScoreNormalization,
		CondorcetCompletion:       p.CondorcetCompletion,
		IncludeBlankInDenominator: p.IncludeBlankInDenominator,
		AllocationMethod:          p.AllocationMethod,
		PrEntryThresholdPct:       p.PrEntryThresholdPct,
		QuorumGlobalPct:           p.QuorumGlobalPct,
		QuorumPerUnitPct:          p.QuorumPerUnitPct,
		QuorumPerUnitScope:        p.QuorumPerUnitScope,
		NationalMajorityPct:       p.NationalMajorityPct,
		RegionalMajorityPct:       p.RegionalMajorityPct,
		DoubleMajorityEnabled:     p.DoubleMajorityEnabled,
		SymmetryEnabled:           p.SymmetryEnabled,
		AffectedFamilyMode:        p.AffectedFamilyMode,
		AffectedFamilyRef:         p.AffectedFamilyRef,
		SymmetryExceptions:        p.SymmetryExceptions,
		FrontierMode:              p.FrontierMode,
		FrontierBands:             p.FrontierBands,
		ContiguityEdgeTypes:       p.ContiguityEdgeTypes,
		IslandExceptionRule:       p.IslandExceptionRule,
		TiePolicy:                 p.TiePolicy,
		LRQuota:                   p.LRQuota,
		SharePrecision:            sharePrecision,
	}
}

// AffectedFamily resolves VM-VAR-026/027 to a canonically sorted list of
// UnitIds, given the full registry unit id set. Every mode (by_list,
// by_tag, by_proposed_change) reads AffectedFamilyRef as a list of
// UnitIds; ids not in validUnits are dropped. No tag or proposal lookup
// is performed.
func (p Params) AffectedFamily(validUnits map[ids.UnitId]bool) []ids.UnitId {
	seen := make(map[ids.UnitId]bool, len(p.AffectedFamilyRef))
	out := make([]ids.UnitId, 0, len(p.AffectedFamilyRef))
	for _, ref := range p.AffectedFamilyRef {
		u := ids.UnitId(ref)
		if !validUnits[u] || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j] < out[j-1]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
