package loader

import (
	"bytes"
	"io/fs"

	"github.com/vm-engine/engine/canon"
	"github.com/vm-engine/engine/ids"
	"github.com/vm-engine/engine/schema"
	"github.com/vm-engine/engine/vmerrors"
)

// Loader reads and validates the engine's input documents from an fs.FS —
// idiomatic Go's read-only filesystem abstraction, chosen over bare *os.File
// paths so the pipeline can be driven from an in-memory fstest.MapFS in
// tests without touching disk, while still defaulting to os.DirFS(".") at
// the cmd layer.
type Loader struct {
	FS        fs.FS
	Validator *schema.Validator
	Limits    canon.DecodeLimits
}

// New builds a Loader with default decode limits.
func New(fsys fs.FS, validator *schema.Validator) *Loader {
	return &Loader{FS: fsys, Validator: validator, Limits: canon.DefaultDecodeLimits()}
}

// readAndDecode reads path, enforces size/depth/float limits, and returns
// both the decoded tree and the SHA-256 of the raw bytes read — the same
// digest the manifest's digests{} map and RunRecord inputs.sha256 rely on.
func (l *Loader) readAndDecode(path string) (any, ids.Sha256, error) {
	data, err := fs.ReadFile(l.FS, path)
	if err != nil {
		return nil, "", vmerrors.Wrap(vmerrors.KindLoad, "Load.ReadFailed", "failed to read "+path, err)
	}
	hexDigest := canon.Sha256Hex(data)
	digest, err := ids.NewSha256(hexDigest)
	if err != nil {
		return nil, "", vmerrors.Wrap(vmerrors.KindHash, "Hash.BadDigest", "digest of "+path+" malformed", err)
	}

	v, err := canon.DecodeStrict(bytes.NewReader(data), l.Limits)
	if err != nil {
		return nil, digest, err
	}
	return v, digest, nil
}

// LoadManifest reads and validates the optional Manifest document.
func (l *Loader) LoadManifest(path string) (Manifest, ids.Sha256, error) {
	doc, digest, err := l.readAndDecode(path)
	if err != nil {
		return Manifest{}, digest, err
	}
	if err := l.Validator.Validate(schema.KindManifest, doc); err != nil {
		return Manifest{}, digest, err
	}
	m, err := manifestFromDoc(doc)
	return m, digest, err
}

// CheckDigests verifies the manifest's digests{} map (if present) against
// the digests actually observed while loading each referenced path
// (spec §7 Contract error: digest mismatch).
func CheckDigests(m Manifest, observed map[string]ids.Sha256) error {
	for path, want := range m.Digests {
		got, ok := observed[path]
		if !ok {
			continue
		}
		if got != want {
			return vmerrors.New(vmerrors.KindContract, vmerrors.ReasonDigestMismatch,
				"digest mismatch for "+path).WithContext("expected", string(want)).WithContext("actual", string(got))
		}
	}
	return nil
}

// CheckExpectations verifies manifest.expect{formula_id, engine_version}
// against the values computed for this run (spec §7 Contract error:
// expectation mismatch). Either field absent from the manifest is not
// checked.
func CheckExpectations(m Manifest, fid ids.FormulaId, engineVersion string) error {
	if m.ExpectFormulaId != "" && m.ExpectFormulaId != string(fid) {
		return vmerrors.New(vmerrors.KindContract, vmerrors.ReasonExpectationMismatch,
			"manifest expect.formula_id does not match computed formula_id").
			WithContext("expected", m.ExpectFormulaId).WithContext("actual", string(fid))
	}
	if m.ExpectEngineVer != "" && m.ExpectEngineVer != engineVersion {
		return vmerrors.New(vmerrors.KindContract, vmerrors.ReasonExpectationMismatch,
			"manifest expect.engine_version does not match running engine version").
			WithContext("expected", m.ExpectEngineVer).WithContext("actual", engineVersion)
	}
	return nil
}
