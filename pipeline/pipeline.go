// Package pipeline drives the fixed-order engine run (spec §2, §4): LOAD,
// VALIDATE, TABULATE, ALLOCATE, AGGREGATE, APPLY_DECISION_RULES,
// MAP_FRONTIER, RESOLVE_TIES, LABEL, BUILD_RESULT, BUILD_RUN_RECORD. It is
// pure with respect to the filesystem beyond reading through the supplied
// fs.FS — callers (the engine package) own writing the three output
// artifacts to disk and translating Outcome.ExitCode into a process exit.
package pipeline

import (
	"fmt"
	"io/fs"

	"github.com/vm-engine/engine/aggregate"
	"github.com/vm-engine/engine/allocate"
	"github.com/vm-engine/engine/canon"
	"github.com/vm-engine/engine/frontier"
	"github.com/vm-engine/engine/gate"
	"github.com/vm-engine/engine/ids"
	"github.com/vm-engine/engine/invariant"
	"github.com/vm-engine/engine/label"
	"github.com/vm-engine/engine/loader"
	"github.com/vm-engine/engine/params"
	"github.com/vm-engine/engine/registry"
	"github.com/vm-engine/engine/result"
	"github.com/vm-engine/engine/schema"
	"github.com/vm-engine/engine/tabulate"
	"github.com/vm-engine/engine/tie"
	"github.com/vm-engine/engine/vmerrors"
)

// EngineSharePrecision is ENGINE_SHARE_PRECISION (spec §6.3, §9 Open
// Question 2): fixed at 1e6 for this engine version. It is both the
// Normative-Manifest field that participates in the Formula ID and the
// precision every Share in Result/FrontierMap is rendered at.
const EngineSharePrecision int64 = 1_000_000

// Exit codes (spec §6.4).
const (
	ExitOK              = 0
	ExitLoadError       = 1
	ExitInvalidValidate = 2
	ExitInvalidGate     = 3
)

// Outcome is everything the engine layer needs to write the run's output
// files and choose a process exit code.
type Outcome struct {
	ExitCode         int
	ResultBytes      []byte
	RunRecordBytes   []byte
	FrontierMapBytes []byte // nil unless MAP_FRONTIER actually ran

	// Result and FrontierMapDoc are the typed values ResultBytes and
	// FrontierMapBytes were canonicalized from, kept around so a caller
	// can build a report.View without re-parsing the JSON it just wrote
	// (report.Build takes these in-memory, never a filesystem). FrontierMapDoc
	// is nil under the same conditions FrontierMapBytes is.
	Result         result.Result
	FrontierMapDoc *result.FrontierMapDoc
}

// Run executes one engine run against a manifest rooted at manifestPath.
// A non-nil error means a Load/Schema/Contract/Tie failure aborted before
// any artifact was built (exit code 1, spec §7); every other outcome —
// including an Invalid result from a Validate, Allocate, or Gate failure
// — is returned as a fully-built Outcome with a nil error.
func Run(fsys fs.FS, manifestPath string, engineId result.EngineIdentity, startedUtc, finishedUtc string) (*Outcome, error) {
	validator, err := schema.NewValidator(schema.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("pipeline: build schema validator: %w", err)
	}
	ldr := loader.New(fsys, validator)

	// LOAD (spec §6.1).
	manifest, manifestDigest, err := ldr.LoadManifest(manifestPath)
	if err != nil {
		return nil, err
	}
	reg, regDigest, err := ldr.LoadDivisionRegistry(manifest.RegPath)
	if err != nil {
		return nil, err
	}
	p, paramsDigest, err := ldr.LoadParameterSet(manifest.ParamsPath, reg.SchemaVersion)
	if err != nil {
		return nil, err
	}
	tallies, tallyId, tallyDigest, err := ldr.LoadBallotTally(manifest.BallotTallyPath)
	if err != nil {
		return nil, err
	}

	observed := map[string]ids.Sha256{
		manifest.RegPath:         regDigest,
		manifest.ParamsPath:      paramsDigest,
		manifest.BallotTallyPath: tallyDigest,
	}
	if manifest.AdjacencyPath != "" {
		adjDigest, err := ldr.LoadAdjacency(manifest.AdjacencyPath, reg)
		if err != nil {
			return nil, err
		}
		observed[manifest.AdjacencyPath] = adjDigest
	}
	if err := loader.CheckDigests(manifest, observed); err != nil {
		return nil, err
	}

	fid, err := canon.FormulaIDFromNM(p.ToNormativeManifest(EngineSharePrecision))
	if err != nil {
		return nil, err
	}
	if err := loader.CheckExpectations(manifest, fid, engineId.Version); err != nil {
		return nil, err
	}

	_ = manifestDigest // recorded only via manifest.Id in inputs below

	inputs := result.Inputs{
		RegId:          reg.Id,
		ParameterSetId: p.Id,
		BallotTallyId:  tallyId,
		ManifestId:     manifest.Id,
		Digests:        observed,
	}

	var rngSeed *uint64
	if p.TiePolicy == params.TieRandom {
		s := p.TieSeed
		rngSeed = &s
	}
	determinism := result.Determinism{TiePolicy: string(p.TiePolicy), RngSeed: rngSeed}
	resolver := tie.NewResolver(p.TiePolicy, p.TieSeed)

	// VALIDATE (spec §4 VALIDATE, §7 propagation policy): a failure here,
	// or one surfaced while TABULATE/ALLOCATE runs below, skips straight
	// to LABEL with an Invalid result — it never aborts the run.
	verr := checkHierarchy(reg)
	var tallyByUnit map[ids.UnitId]registry.UnitTally
	if verr == nil {
		tallyByUnit, verr = indexTallies(reg, tallies)
	}
	if verr == nil {
		verr = checkQuorumDataCompleteness(reg, tallyByUnit, p)
	}
	if verr == nil {
		verr = checkFrontierBands(p.FrontierBands)
	}
	if verr == nil {
		verr = checkAllocationMethodSupported(p.AllocationMethod)
	}

	var (
		unitAggs    []aggregate.UnitAggregate
		unitIndex   = map[ids.UnitId]aggregate.UnitAggregate{}
		unitResults []result.UnitResult
	)
	if verr == nil {
		for _, u := range reg.Units() {
			t := tallyByUnit[u.UnitId]
			t.UnitId = u.UnitId

			scores, err := tabulateUnit(u, t, p, resolver)
			if err != nil {
				verr = err
				break
			}
			alloc, err := allocateUnit(u, scores, p, resolver)
			if err != nil {
				verr = err
				break
			}

			ua := aggregate.BuildUnitAggregate(u, t.Turnout, scores, alloc, p.BallotType, p.IncludeBlankInDenominator)
			unitAggs = append(unitAggs, ua)
			unitIndex[u.UnitId] = ua
			unitResults = append(unitResults, result.UnitResult{
				UnitId:         u.UnitId,
				Scores:         scores.Scores,
				ValidBallots:   t.Turnout.ValidBallots,
				InvalidBallots: t.Turnout.InvalidBallots,
				SeatsOrPower:   alloc.SeatsOrPower,
				LastSeatTie:    alloc.LastSeatTie,
			})
		}
	}

	if verr == nil {
		unitIdStrings := make([]string, len(unitResults))
		for i, ur := range unitResults {
			unitIdStrings[i] = string(ur.UnitId)
		}
		invariant.SortedStrings(unitIdStrings, "unit results crossing TABULATE/ALLOCATE into AGGREGATE")
	}

	if verr != nil {
		ve, ok := verr.(*vmerrors.Error)
		if !ok || (ve.Kind != vmerrors.KindValidate && ve.Kind != vmerrors.KindAllocate) {
			// Tie-kind (and any other unclassified) errors abort entirely
			// (spec §7: "Tie errors at RESOLVE_TIES abort entirely").
			return nil, verr
		}
		return buildInvalidOutcome(fid, engineId, inputs, determinism, resolver, startedUtc, finishedUtc, ve.Reason), nil
	}

	// AGGREGATE (spec §4.5).
	totals := aggregate.BuildTotals(unitAggs, p.NationalMajorityPct)

	// APPLY_DECISION_RULES (spec §4.6).
	validUnits := make(map[ids.UnitId]bool, reg.Len())
	for _, id := range reg.UnitIds() {
		validUnits[id] = true
	}
	familyUnits := p.AffectedFamily(validUnits)
	legit := gate.Evaluate(totals, p, familyUnits, unitIndex)
	for i := range unitResults {
		unitResults[i].PerUnitQuorumPass = legit.QuorumPerUnitPass[unitResults[i].UnitId]
	}

	var (
		fm            *frontier.FrontierMap
		frontierDoc   *result.FrontierMapDoc
		frontierMapId *ids.FrontierMapId
	)
	exitCode := ExitOK
	if !legit.Pass {
		// Gate failure: skip MAP_FRONTIER only, still assemble a complete
		// Result + RunRecord (spec §7, exit code 3).
		exitCode = ExitInvalidGate
	} else if p.FrontierMode != params.FrontierNone {
		built := frontier.Build(reg, p, unitIndex, legit.QuorumPerUnitPass)
		fm = &built
	}

	outcome := label.Label(legit, totals.NationalMarginPp, p.DecisiveMarginPp, fm)

	if fm != nil {
		supportByUnit := make(map[ids.UnitId]aggregate.Ratio, len(unitAggs))
		for _, ua := range unitAggs {
			supportByUnit[ua.UnitId] = aggregate.Ratio{Num: ua.SupportNum, Den: ua.SupportDen}
		}
		bands := make([]result.FrontierBandDoc, len(p.FrontierBands))
		for i, b := range p.FrontierBands {
			bands[i] = result.FrontierBandDoc{MinPct: b.MinPct, MaxPct: b.MaxPct, Status: b.Status, ApId: b.ApId}
		}
		doc := result.FrontierMapDoc{
			Config: result.FrontierConfig{
				Mode:                string(p.FrontierMode),
				ContiguityEdgeTypes: p.ContiguityEdgeTypes,
				IslandExceptionRule: string(p.IslandExceptionRule),
				Bands:               bands,
			},
			Units:           fm.Units,
			SupportByUnit:   supportByUnit,
			SummaryByStatus: fm.SummaryByStatus,
			SummaryByFlag:   fm.SummaryByFlag,
		}
		frontierDoc = &doc
	}

	var frontierMapBytes []byte
	var frontierMapSha256 *ids.Sha256
	if frontierDoc != nil {
		id, b, err := result.BuildFrontierMapDoc(*frontierDoc)
		if err != nil {
			return nil, err
		}
		frontierMapId = &id
		frontierMapBytes = b
		hex := canon.Sha256Hex(b)
		sum, err := ids.NewSha256(hex)
		if err != nil {
			return nil, err
		}
		frontierMapSha256 = &sum
	}

	reasons := []string{}
	if outcome.Label == label.Invalid {
		reasons = append(reasons, outcome.Reason)
	}

	res := result.Result{
		FormulaId:      fid,
		Label:          outcome,
		Reasons:        reasons,
		Units:          unitResults,
		NationalTotals: totals,
		Gates:          result.GatePanelFrom(legit),
		FrontierMapId:  frontierMapId,
		SharePrecision: EngineSharePrecision,
	}
	resultId, resultBytes, err := result.BuildResult(res)
	if err != nil {
		return nil, err
	}
	resultSha256Hex := canon.Sha256Hex(resultBytes)
	resultSha256, err := ids.NewSha256(resultSha256Hex)
	if err != nil {
		return nil, err
	}

	rr := result.RunRecord{
		FormulaId:             fid,
		FormulaManifestSha256: ids.Sha256(fid),
		Engine:                engineId,
		Inputs:                inputs,
		Determinism:           determinism,
		Outputs: result.Outputs{
			ResultId:          resultId,
			ResultSha256:      resultSha256,
			FrontierMapId:     frontierMapId,
			FrontierMapSha256: frontierMapSha256,
		},
		Timestamps: result.Timestamps{StartedUtc: startedUtc, FinishedUtc: finishedUtc},
		Ties:       resolver.Events(),
	}
	_, runRecordBytes, err := result.BuildRunRecord(rr, startedUtc)
	if err != nil {
		return nil, err
	}

	return &Outcome{
		ExitCode:         exitCode,
		ResultBytes:      resultBytes,
		RunRecordBytes:   runRecordBytes,
		FrontierMapBytes: frontierMapBytes,
		Result:           res,
		FrontierMapDoc:   frontierDoc,
	}, nil
}

// buildInvalidOutcome assembles the complete, Invalid Result + RunRecord
// for a Validate- or Allocate-class failure (spec §7): TABULATE through
// MAP_FRONTIER never ran, so there are no unit results, totals, or gates
// to report beyond the triggering reason token.
func buildInvalidOutcome(fid ids.FormulaId, engineId result.EngineIdentity, inputs result.Inputs, determinism result.Determinism, resolver *tie.Resolver, startedUtc, finishedUtc, reason string) *Outcome {
	res := result.Result{
		FormulaId:      fid,
		Label:          label.Outcome{Label: label.Invalid, Reason: reason},
		Reasons:        []string{reason},
		Gates:          result.GatePanel{FirstFailureReason: reason},
		SharePrecision: EngineSharePrecision,
	}
	resultId, resultBytes, err := result.BuildResult(res)
	if err != nil {
		panic(fmt.Sprintf("pipeline: canonicalizing a trivial Invalid Result failed: %v", err))
	}
	resultSha256Hex := canon.Sha256Hex(resultBytes)
	resultSha256, err := ids.NewSha256(resultSha256Hex)
	if err != nil {
		panic(fmt.Sprintf("pipeline: hashing Invalid Result bytes failed: %v", err))
	}

	rr := result.RunRecord{
		FormulaId:             fid,
		FormulaManifestSha256: ids.Sha256(fid),
		Engine:                engineId,
		Inputs:                inputs,
		Determinism:           determinism,
		Outputs:               result.Outputs{ResultId: resultId, ResultSha256: resultSha256},
		Timestamps:            result.Timestamps{StartedUtc: startedUtc, FinishedUtc: finishedUtc},
		Ties:                  resolver.Events(),
	}
	_, runRecordBytes, err := result.BuildRunRecord(rr, startedUtc)
	if err != nil {
		panic(fmt.Sprintf("pipeline: canonicalizing Invalid RunRecord failed: %v", err))
	}

	return &Outcome{ExitCode: ExitInvalidValidate, ResultBytes: resultBytes, RunRecordBytes: runRecordBytes, Result: res}
}

// tabulateUnit dispatches one unit's tally to the tabulator named by
// VM-VAR-001 (spec §4.3). IRV elimination ties route through the run's
// tie resolver; every other family either has no internal tie-policy
// context or (Condorcet) resolves its internal ties independently of
// tie_policy (see DESIGN.md).
func tabulateUnit(u *registry.Unit, t registry.UnitTally, p params.Params, resolver *tie.Resolver) (tabulate.UnitScores, error) {
	switch p.BallotType {
	case params.BallotPlurality:
		return tabulate.Plurality(u, t)
	case params.BallotApproval:
		return tabulate.Approval(u, t)
	case params.BallotScore:
		return tabulate.Score(u, t, int64(p.ScaleMax))
	case params.BallotRankedIRV:
		return tabulate.RankedIRV(u, t, resolver.Breaker(tie.KindIRVElim, u))
	case params.BallotCondorcet:
		return tabulate.RankedCondorcet(u, t, p.CondorcetCompletion)
	default:
		return tabulate.UnitScores{}, vmerrors.New(vmerrors.KindValidate, "Validate.UnknownBallotType",
			"unrecognized ballot_type "+string(p.BallotType))
	}
}

// allocateUnit dispatches one unit's tabulated scores to the allocation
// method named by VM-VAR-010 (spec §4.4). mixed_local_correction never
// reaches here: checkAllocationMethodSupported rejects it during VALIDATE.
func allocateUnit(u *registry.Unit, scores tabulate.UnitScores, p params.Params, resolver *tie.Resolver) (allocate.Allocation, error) {
	canonical := u.OptionIds()
	switch p.AllocationMethod {
	case params.AllocWTA:
		return allocate.WTA(u.UnitId, u.Magnitude, canonical, scores.Scores, resolver.Breaker(tie.KindWTAWinner, u))
	case params.AllocFavorBig:
		return allocate.DHondt(u.UnitId, u.Magnitude, canonical, scores.Scores, p.PrEntryThresholdPct, resolver.Breaker(tie.KindLastPRSeat, u))
	case params.AllocFavorSmall:
		return allocate.SainteLague(u.UnitId, u.Magnitude, canonical, scores.Scores, p.PrEntryThresholdPct, resolver.Breaker(tie.KindLastPRSeat, u))
	case params.AllocLargestRemainder:
		return allocate.LargestRemainder(u.UnitId, u.Magnitude, canonical, scores.Scores, p.PrEntryThresholdPct, p.LRQuota, resolver.Breaker(tie.KindLastPRSeat, u))
	default:
		return allocate.Allocation{}, vmerrors.New(vmerrors.KindValidate, vmerrors.ReasonUnsupportedAllocationMethod,
			"unrecognized allocation_method "+string(p.AllocationMethod))
	}
}
