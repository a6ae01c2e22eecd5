package result

import (
	"github.com/vm-engine/engine/aggregate"
	"github.com/vm-engine/engine/canon"
	"github.com/vm-engine/engine/ids"
)

// SharePrecisionDigits, the number of decimal digits every Share carries, is
// fixed for this engine version (spec §9 Open Question 2).
const SharePrecisionDigits uint = 6

func shareFromRatio(r aggregate.Ratio) canon.Share {
	if r.Den == 0 {
		return canon.Share{Num: 0, Precision: SharePrecisionDigits}
	}
	s, err := canon.NewShare(int64(r.Num), int64(r.Den), SharePrecisionDigits)
	if err != nil {
		return canon.Share{Num: 0, Precision: SharePrecisionDigits}
	}
	return s
}

func optionScoresObj(m map[ids.OptionId]uint64) canon.Obj {
	obj := canon.Obj{}
	for k, v := range m {
		obj[string(k)] = v
	}
	return obj
}

func optionSeatsObj(m map[ids.OptionId]uint32) canon.Obj {
	obj := canon.Obj{}
	for k, v := range m {
		obj[string(k)] = v
	}
	return obj
}

func boolByUnitObj(m map[ids.UnitId]bool) canon.Obj {
	obj := canon.Obj{}
	for k, v := range m {
		obj[string(k)] = v
	}
	return obj
}

func gatePanelToObj(g GatePanel) canon.Obj {
	return canon.Obj{
		"quorum_national": canon.Obj{
			"observed":      shareFromRatio(g.QuorumNationalObserved),
			"threshold_pct": g.QuorumNationalThresholdPct,
			"pass":          g.QuorumNationalPass,
		},
		"quorum_per_unit": canon.Obj{
			"pass_by_unit":  boolByUnitObj(g.QuorumPerUnitPass),
			"threshold_pct": g.QuorumPerUnitThresholdPct,
		},
		"majority": canon.Obj{
			"observed":      shareFromRatio(g.MajorityObserved),
			"threshold_pct": g.MajorityThresholdPct,
			"pass":          g.MajorityPass,
		},
		"double_majority": canon.Obj{
			"enabled":       g.DoubleMajorityEnabled,
			"observed":      shareFromRatio(g.DoubleMajorityObserved),
			"threshold_pct": g.DoubleMajorityThresholdPct,
			"pass":          g.DoubleMajorityPass,
		},
		"symmetry": canon.Obj{
			"enabled":    g.SymmetryEnabled,
			"pass":       g.SymmetryPass,
			"exceptions": g.SymmetryExceptions,
		},
		"pass":                 g.Pass,
		"first_failure_reason": g.FirstFailureReason,
	}
}

func unitResultToObj(u UnitResult) canon.Obj {
	return canon.Obj{
		"unit_id":              string(u.UnitId),
		"scores":               optionScoresObj(u.Scores),
		"valid_ballots":        u.ValidBallots,
		"invalid_ballots":      u.InvalidBallots,
		"seats_or_power":       optionSeatsObj(u.SeatsOrPower),
		"last_seat_tie":        u.LastSeatTie,
		"per_unit_quorum_pass": u.PerUnitQuorumPass,
	}
}

// ToObj builds the canonical document for a Result (spec §4.10).
func (r Result) ToObj() canon.Obj {
	units := make([]any, len(r.Units))
	for i, u := range r.Units {
		units[i] = unitResultToObj(u)
	}
	reasons := make([]any, len(r.Reasons))
	for i, rs := range r.Reasons {
		reasons[i] = rs
	}
	obj := canon.Obj{
		"formula_id":   string(r.FormulaId),
		"label":        string(r.Label.Label),
		"label_reason": r.Label.Reason,
		"reasons":      reasons,
		"units":        units,
		"national_totals": canon.Obj{
			"ballots_cast":  r.NationalTotals.NationalBallotsCast,
			"eligible_roll": r.NationalTotals.NationalEligibleRoll,
			"support":       shareFromRatio(r.NationalTotals.NationalSupport),
			"margin_pp":     r.NationalTotals.NationalMarginPp,
		},
		"gates":           gatePanelToObj(r.Gates),
		"share_precision": r.SharePrecision,
	}
	if r.FrontierMapId != nil {
		obj["frontier_map_id"] = string(*r.FrontierMapId)
	} else {
		obj["frontier_map_id"] = nil
	}
	return obj
}

func engineIdentityToObj(e EngineIdentity) canon.Obj {
	return canon.Obj{
		"vendor":  e.Vendor,
		"name":    e.Name,
		"version": e.Version,
		"build":   e.Build,
	}
}

func inputsToObj(in Inputs) canon.Obj {
	digests := canon.Obj{}
	for k, v := range in.Digests {
		digests[k] = string(v)
	}
	return canon.Obj{
		"reg_id":           in.RegId,
		"parameter_set_id": in.ParameterSetId,
		"ballot_tally_id":  in.BallotTallyId,
		"manifest_id":      in.ManifestId,
		"digests":          digests,
	}
}

func determinismToObj(d Determinism) canon.Obj {
	obj := canon.Obj{"tie_policy": d.TiePolicy}
	if d.RngSeed != nil {
		obj["rng_seed"] = *d.RngSeed
	} else {
		obj["rng_seed"] = nil
	}
	return obj
}

func outputsToObj(o Outputs) canon.Obj {
	obj := canon.Obj{
		"result_id":     string(o.ResultId),
		"result_sha256": string(o.ResultSha256),
	}
	if o.FrontierMapId != nil {
		obj["frontier_map_id"] = string(*o.FrontierMapId)
	} else {
		obj["frontier_map_id"] = nil
	}
	if o.FrontierMapSha256 != nil {
		obj["frontier_map_sha256"] = string(*o.FrontierMapSha256)
	} else {
		obj["frontier_map_sha256"] = nil
	}
	return obj
}

func timestampsToObj(ts Timestamps) canon.Obj {
	return canon.Obj{
		"started_utc":  ts.StartedUtc,
		"finished_utc": ts.FinishedUtc,
	}
}

// idlessObj builds the RunRecord document without run_id, used to derive the
// RunId's short-hex suffix (spec §4.10: "a short prefix ... of the hash of
// the idless canonical bytes").
func (rr RunRecord) idlessObj() canon.Obj {
	ties := make([]any, len(rr.Ties))
	for i, e := range rr.Ties {
		ties[i] = e.ToObj()
	}
	return canon.Obj{
		"formula_id":              string(rr.FormulaId),
		"formula_manifest_sha256": string(rr.FormulaManifestSha256),
		"engine":                  engineIdentityToObj(rr.Engine),
		"inputs":                  inputsToObj(rr.Inputs),
		"determinism":             determinismToObj(rr.Determinism),
		"outputs":                 outputsToObj(rr.Outputs),
		"timestamps":              timestampsToObj(rr.Timestamps),
		"ties":                    ties,
	}
}

// ToObj builds the full canonical document for a RunRecord, including run_id.
func (rr RunRecord) ToObj() canon.Obj {
	obj := rr.idlessObj()
	obj["run_id"] = string(rr.RunId)
	return obj
}

func frontierBandDocToObj(b FrontierBandDoc) canon.Obj {
	return canon.Obj{
		"min_pct": b.MinPct,
		"max_pct": b.MaxPct,
		"status":  b.Status,
		"ap_id":   b.ApId,
	}
}

func frontierConfigToObj(c FrontierConfig) canon.Obj {
	bands := make([]any, len(c.Bands))
	for i, b := range c.Bands {
		bands[i] = frontierBandDocToObj(b)
	}
	return canon.Obj{
		"mode":                  c.Mode,
		"contiguity_edge_types": c.ContiguityEdgeTypes,
		"island_exception_rule": c.IslandExceptionRule,
		"bands":                 bands,
	}
}

// ToObj builds the canonical document for a FrontierMap (spec §4.10).
func (fm FrontierMapDoc) ToObj() canon.Obj {
	units := make([]any, len(fm.Units))
	for i, u := range fm.Units {
		units[i] = canon.Obj{
			"unit_id":      string(u.UnitId),
			"component_id": u.ComponentId,
			"status":       u.Status,
			"ap_id":        u.ApId,
			"support":      shareFromRatio(fm.SupportByUnit[u.UnitId]),
			"flags": canon.Obj{
				"mediation":         u.Flags.Mediation,
				"enclave":           u.Flags.Enclave,
				"protected_blocked": u.Flags.ProtectedBlocked,
				"quorum_blocked":    u.Flags.QuorumBlocked,
			},
		}
	}
	summaryByStatus := canon.Obj{}
	for k, v := range fm.SummaryByStatus {
		summaryByStatus[k] = v
	}
	summaryByFlag := canon.Obj{}
	for k, v := range fm.SummaryByFlag {
		summaryByFlag[k] = v
	}
	return canon.Obj{
		"config":            frontierConfigToObj(fm.Config),
		"units":             units,
		"summary_by_status": summaryByStatus,
		"summary_by_flag":   summaryByFlag,
	}
}
