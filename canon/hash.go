package canon

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/vm-engine/engine/ids"
	"github.com/vm-engine/engine/params"
	"github.com/vm-engine/engine/vmerrors"
)

// Sha256Hex returns the 64 lowercase hex characters of sha256(bytes).
func Sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Sha256OfCanonical canonicalizes v then hashes the result.
func Sha256OfCanonical(v any) (string, error) {
	b, err := Marshal(v)
	if err != nil {
		return "", vmerrors.Wrap(vmerrors.KindHash, "Hash.CanonicalizeFailed", "failed to canonicalize value", err)
	}
	return Sha256Hex(b), nil
}

// ShortHex truncates a 32-byte digest to n hex characters (12 <= n <= 16),
// used to build the RunId suffix (spec §4.10).
func ShortHex(digest [32]byte, n int) (string, error) {
	if n < 12 || n > 16 {
		return "", vmerrors.New(vmerrors.KindHash, "Hash.BadShortHexLength", fmt.Sprintf("short_hex length %d out of [12,16]", n))
	}
	full := hex.EncodeToString(digest[:])
	return full[:n], nil
}

// FormulaIDFromNM canonicalizes and hashes a Normative Manifest. Adding a
// non-normative field (origin, timestamps, comments) elsewhere in the
// caller's data never reaches this function, since NormativeManifest already
// only carries the fields that affect computed outcomes (spec §4.1).
func FormulaIDFromNM(nm params.NormativeManifest) (ids.FormulaId, error) {
	if nm.SchemaVersion == "" {
		return "", vmerrors.New(vmerrors.KindHash, "Hash.IncompleteManifest", "normative manifest missing schema_version")
	}
	obj := nmToObj(nm)
	hex, err := Sha256OfCanonical(obj)
	if err != nil {
		return "", err
	}
	fid, err := ids.NewSha256(hex)
	if err != nil {
		return "", vmerrors.Wrap(vmerrors.KindHash, "Hash.BadDigest", "formula id digest malformed", err)
	}
	return ids.FormulaId(fid), nil
}

func nmToObj(nm params.NormativeManifest) Obj {
	bands := make([]any, len(nm.FrontierBands))
	for i, b := range nm.FrontierBands {
		bands[i] = Obj{
			"min_pct": b.MinPct,
			"max_pct": b.MaxPct,
			"status":  b.Status,
			"ap_id":   b.ApId,
		}
	}
	return Obj{
		"schema_version":               nm.SchemaVersion,
		"ballot_type":                  string(nm.BallotType),
		"scale_min":                    nm.ScaleMin,
		"scale_max":                    nm.ScaleMax,
		"score_normalization":          string(nm.ScoreNormalization),
		"condorcet_completion":         string(nm.CondorcetCompletion),
		"include_blank_in_denominator": nm.IncludeBlankInDenominator,
		"allocation_method":            string(nm.AllocationMethod),
		"pr_entry_threshold_pct":       nm.PrEntryThresholdPct,
		"quorum_global_pct":            nm.QuorumGlobalPct,
		"quorum_per_unit_pct":          nm.QuorumPerUnitPct,
		"quorum_per_unit_scope":        string(nm.QuorumPerUnitScope),
		"national_majority_pct":        nm.NationalMajorityPct,
		"regional_majority_pct":        nm.RegionalMajorityPct,
		"double_majority_enabled":      nm.DoubleMajorityEnabled,
		"symmetry_enabled":             nm.SymmetryEnabled,
		"affected_family_mode":         string(nm.AffectedFamilyMode),
		"affected_family_ref":          nm.AffectedFamilyRef,
		"symmetry_exceptions":          nm.SymmetryExceptions,
		"frontier_mode":                string(nm.FrontierMode),
		"frontier_bands":               bands,
		"contiguity_edge_types":        nm.ContiguityEdgeTypes,
		"island_exception_rule":        string(nm.IslandExceptionRule),
		"tie_policy":                   string(nm.TiePolicy),
		"lr_quota":                     string(nm.LRQuota),
		"share_precision":              nm.SharePrecision,
	}
}
