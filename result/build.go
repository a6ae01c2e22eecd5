package result

import (
	"fmt"

	"github.com/vm-engine/engine/canon"
	"github.com/vm-engine/engine/ids"
)

// BuildResult canonicalizes r, mints its ResultId, and returns the
// canonical bytes alongside it (spec §4.10: Result's id is the hash of its
// own canonical bytes, with no non-normative fields inside).
func BuildResult(r Result) (ids.ResultId, []byte, error) {
	b, err := canon.Marshal(r.ToObj())
	if err != nil {
		return "", nil, fmt.Errorf("result: canonicalize Result: %w", err)
	}
	hex := canon.Sha256Hex(b)
	id, err := ids.ResultIdFromHash(hex)
	if err != nil {
		return "", nil, fmt.Errorf("result: mint ResultId: %w", err)
	}
	return id, b, nil
}

// BuildFrontierMapDoc canonicalizes fm and mints its FrontierMapId.
func BuildFrontierMapDoc(fm FrontierMapDoc) (ids.FrontierMapId, []byte, error) {
	b, err := canon.Marshal(fm.ToObj())
	if err != nil {
		return "", nil, fmt.Errorf("result: canonicalize FrontierMap: %w", err)
	}
	hex := canon.Sha256Hex(b)
	id, err := ids.FrontierMapIdFromHash(hex)
	if err != nil {
		return "", nil, fmt.Errorf("result: mint FrontierMapId: %w", err)
	}
	return id, b, nil
}

// BuildRunRecord finishes assembling rr (whose RunId field is ignored on
// input), mints its RunId from startedUtc and a hash-derived short suffix,
// and returns the final canonical bytes (spec §4.10: "The RunId embeds
// started_utc ... and a short prefix ... of the hash of the idless
// canonical bytes").
func BuildRunRecord(rr RunRecord, startedUtc string) (ids.RunId, []byte, error) {
	idless, err := canon.Marshal(rr.idlessObj())
	if err != nil {
		return "", nil, fmt.Errorf("result: canonicalize idless RunRecord: %w", err)
	}
	digest := canon.Sha256Hex(idless)
	shortHex := digest[:16]
	runId, err := ids.RunIdFromParts(startedUtc, shortHex)
	if err != nil {
		return "", nil, fmt.Errorf("result: mint RunId: %w", err)
	}
	rr.RunId = runId
	final, err := canon.Marshal(rr.ToObj())
	if err != nil {
		return "", nil, fmt.Errorf("result: canonicalize RunRecord: %w", err)
	}
	return runId, final, nil
}
