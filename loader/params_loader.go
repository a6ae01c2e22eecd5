package loader

import (
	"github.com/vm-engine/engine/ids"
	"github.com/vm-engine/engine/params"
	"github.com/vm-engine/engine/schema"
	"github.com/vm-engine/engine/vmerrors"
)

// LoadParameterSet reads, schema-validates, and decodes a ParameterSet
// document's variables{VM-VAR-###: value} map into a params.Params (spec
// §4.2, §6.1). Unrecognized VM-VAR keys are ignored rather than rejected:
// a ParameterSet from a newer schema_version may carry variables this
// engine version doesn't yet interpret, and only the Normative Manifest
// subset this engine recognizes participates in the Formula ID.
func (l *Loader) LoadParameterSet(path, schemaVersion string) (params.Params, ids.Sha256, error) {
	doc, digest, err := l.readAndDecode(path)
	if err != nil {
		return params.Params{}, digest, err
	}
	if err := l.Validator.Validate(schema.KindParameterSet, doc); err != nil {
		return params.Params{}, digest, err
	}

	m := doc.(map[string]any)
	vars, _ := m["variables"].(map[string]any)

	p := params.Params{SchemaVersion: schemaVersion, Id: stringField(m, "id")}

	if s, ok := stringVar(vars, "VM-VAR-001"); ok {
		p.BallotType = params.BallotType(s)
	}
	if n, ok := intVar(vars, "VM-VAR-002"); ok {
		p.ScaleMin = n
	}
	if n, ok := intVar(vars, "VM-VAR-003"); ok {
		p.ScaleMax = n
	}
	if s, ok := stringVar(vars, "VM-VAR-004"); ok {
		p.ScoreNormalization = params.ScoreNormalization(s)
	}
	if s, ok := stringVar(vars, "VM-VAR-005"); ok {
		p.CondorcetCompletion = params.CondorcetCompletion(s)
	}
	if b, ok := boolVar(vars, "VM-VAR-007"); ok {
		p.IncludeBlankInDenominator = b
	}
	if s, ok := stringVar(vars, "VM-VAR-010"); ok {
		p.AllocationMethod = params.AllocationMethod(s)
	}
	if n, ok := intVar(vars, "VM-VAR-012"); ok {
		p.PrEntryThresholdPct = n
	}
	if n, ok := intVar(vars, "VM-VAR-020"); ok {
		p.QuorumGlobalPct = n
	}
	if n, ok := intVar(vars, "VM-VAR-021"); ok {
		p.QuorumPerUnitPct = n
	}
	if s, ok := stringVarFromObject(vars, "VM-VAR-021", "scope"); ok {
		p.QuorumPerUnitScope = params.QuorumScope(s)
	}
	if n, ok := intVar(vars, "VM-VAR-022"); ok {
		p.NationalMajorityPct = n
	}
	if n, ok := intVar(vars, "VM-VAR-023"); ok {
		p.RegionalMajorityPct = n
	}
	if b, ok := boolVar(vars, "VM-VAR-024"); ok {
		p.DoubleMajorityEnabled = b
	}
	if b, ok := boolVar(vars, "VM-VAR-025"); ok {
		p.SymmetryEnabled = b
	}
	if s, ok := stringVar(vars, "VM-VAR-026"); ok {
		p.AffectedFamilyMode = params.AffectedFamilyMode(s)
	}
	if list, ok := stringListVar(vars, "VM-VAR-027"); ok {
		p.AffectedFamilyRef = list
	}
	if list, ok := stringListVar(vars, "VM-VAR-029"); ok {
		p.SymmetryExceptions = list
	}
	if s, ok := stringVar(vars, "VM-VAR-040"); ok {
		p.FrontierMode = params.FrontierMode(s)
	}
	if bands, ok := frontierBandsVar(vars, "VM-VAR-042"); ok {
		p.FrontierBands = bands
	}
	if list, ok := stringListVar(vars, "VM-VAR-047"); ok {
		p.ContiguityEdgeTypes = list
	}
	if s, ok := stringVar(vars, "VM-VAR-048"); ok {
		p.IslandExceptionRule = params.IslandExceptionRule(s)
	}
	if s, ok := stringVar(vars, "VM-VAR-050"); ok {
		p.TiePolicy = params.TiePolicy(s)
	}
	if n, ok := intVar(vars, "VM-VAR-052"); ok {
		if n < 0 {
			return p, digest, vmerrors.New(vmerrors.KindValidate, vmerrors.ReasonTieBadSeed, "VM-VAR-052 tie_seed must be >= 0")
		}
		p.TieSeed = uint64(n)
	}
	if n, ok := intVar(vars, "VM-VAR-062"); ok {
		p.DecisiveMarginPp = n
	}

	p.LRQuota = params.QuotaHare
	if s, ok := stringVar(vars, "VM-VAR-LR-QUOTA"); ok {
		p.LRQuota = params.LRQuota(s)
	}

	return p, digest, nil
}

func stringVar(vars map[string]any, key string) (string, bool) {
	s, ok := vars[key].(string)
	return s, ok
}

func stringVarFromObject(vars map[string]any, key, field string) (string, bool) {
	obj, ok := vars[key].(map[string]any)
	if !ok {
		return "", false
	}
	s, ok := obj[field].(string)
	return s, ok
}

func boolVar(vars map[string]any, key string) (bool, bool) {
	b, ok := vars[key].(bool)
	return b, ok
}

func intVar(vars map[string]any, key string) (int, bool) {
	v, present := vars[key]
	if !present {
		return 0, false
	}
	n, err := jsonInt64(v)
	if err != nil {
		return 0, false
	}
	return int(n), true
}

func stringListVar(vars map[string]any, key string) ([]string, bool) {
	raw, ok := vars[key].([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out, true
}

func frontierBandsVar(vars map[string]any, key string) ([]params.FrontierBand, bool) {
	raw, ok := vars[key].([]any)
	if !ok {
		return nil, false
	}
	out := make([]params.FrontierBand, 0, len(raw))
	for _, v := range raw {
		bm, ok := v.(map[string]any)
		if !ok {
			continue
		}
		minPct, _ := intVar(bm, "min_pct")
		maxPct, _ := intVar(bm, "max_pct")
		status, _ := stringVar(bm, "status")
		apId, _ := stringVar(bm, "ap_id")
		out = append(out, params.FrontierBand{MinPct: minPct, MaxPct: maxPct, Status: status, ApId: apId})
	}
	// Ordering/overlap of the band table is checked by the VALIDATE stage
	// (Validate.FrontierBandsMalformed), not by the loader.
	return out, true
}
