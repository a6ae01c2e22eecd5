// Package loader reads the engine's input documents (the four required
// kinds plus the optional adjacency document) from the filesystem, validates each against its JSON Schema, and normalizes them
// into the typed domain objects the pipeline consumes (spec §6.1). Grounded
// on the teacher's planfmt.Reader (core/planfmt/reader.go): read the whole
// document under a size cap, hash it while reading, decode, then validate —
// the same read-hash-decode-validate order, adapted from a binary envelope
// to canonical JSON documents.
package loader

import (
	"strings"

	"github.com/vm-engine/engine/ids"
	"github.com/vm-engine/engine/vmerrors"
)

// Manifest is the optional top-level document that names the paths to the
// other three documents and records caller expectations (spec §6.1).
type Manifest struct {
	Id              string
	RegPath         string
	ParamsPath      string
	BallotTallyPath string
	AdjacencyPath   string // optional
	ExpectFormulaId string // optional
	ExpectEngineVer string // optional
	Digests         map[string]ids.Sha256

	// LegacyBallotsPath is populated only so the Contract check below can
	// name it in the error; a manifest carrying it is always rejected.
	LegacyBallotsPath string
}

// manifestFromDoc converts the schema-validated, strictly-decoded JSON tree
// into a Manifest, applying the Contract-error rules from spec §7: the
// ballot_tally_path field is required, the legacy ballots_path field is
// rejected outright, and no path may look like a URL.
func manifestFromDoc(doc any) (Manifest, error) {
	m, ok := doc.(map[string]any)
	if !ok {
		return Manifest{}, vmerrors.New(vmerrors.KindContract, "Contract.MalformedManifest", "manifest is not a JSON object")
	}

	out := Manifest{
		Id:              stringField(m, "id"),
		RegPath:         stringField(m, "reg_path"),
		ParamsPath:      stringField(m, "params_path"),
		BallotTallyPath: stringField(m, "ballot_tally_path"),
		AdjacencyPath:   stringField(m, "adjacency_path"),
	}

	if legacy, has := m["ballots_path"]; has {
		if s, ok := legacy.(string); ok {
			out.LegacyBallotsPath = s
		}
		return out, vmerrors.New(vmerrors.KindContract, vmerrors.ReasonManifestLegacyBallots,
			"manifest carries legacy ballots_path; use ballot_tally_path")
	}

	if out.BallotTallyPath == "" {
		return out, vmerrors.New(vmerrors.KindContract, vmerrors.ReasonManifestMissingTally,
			"manifest missing required ballot_tally_path")
	}

	for _, p := range []string{out.RegPath, out.ParamsPath, out.BallotTallyPath, out.AdjacencyPath} {
		if isURLLike(p) {
			return out, vmerrors.New(vmerrors.KindContract, vmerrors.ReasonManifestURLLikePath,
				"manifest path must not be a URL: "+p)
		}
	}

	if expect, ok := m["expect"].(map[string]any); ok {
		out.ExpectFormulaId = stringField(expect, "formula_id")
		out.ExpectEngineVer = stringField(expect, "engine_version")
	}

	if digests, ok := m["digests"].(map[string]any); ok {
		out.Digests = make(map[string]ids.Sha256, len(digests))
		for path, v := range digests {
			s, _ := v.(string)
			sum, err := ids.NewSha256(s)
			if err != nil {
				return out, vmerrors.Wrap(vmerrors.KindContract, "Contract.BadDigestFormat", "manifest digest for "+path+" is malformed", err)
			}
			out.Digests[path] = sum
		}
	}

	return out, nil
}

func isURLLike(p string) bool {
	return strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://")
}

func stringField(m map[string]any, key string) string {
	v, ok := m[key].(string)
	if !ok {
		return ""
	}
	return v
}
