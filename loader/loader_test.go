package loader

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vm-engine/engine/ids"
	"github.com/vm-engine/engine/params"
	"github.com/vm-engine/engine/schema"
)

func newTestLoader(t *testing.T, files map[string]string) *Loader {
	t.Helper()
	mapFS := make(fstest.MapFS, len(files))
	for name, content := range files {
		mapFS[name] = &fstest.MapFile{Data: []byte(content)}
	}
	v, err := schema.NewValidator(nil)
	require.NoError(t, err)
	return New(mapFS, v)
}

func TestLoadManifestAccepts(t *testing.T) {
	l := newTestLoader(t, map[string]string{
		"manifest.json": `{"reg_path":"reg.json","params_path":"params.json","ballot_tally_path":"tally.json"}`,
	})
	m, digest, err := l.LoadManifest("manifest.json")
	require.NoError(t, err)
	assert.Equal(t, "reg.json", m.RegPath)
	assert.Len(t, string(digest), 64)
}

func TestLoadManifestRejectsLegacyBallotsPath(t *testing.T) {
	l := newTestLoader(t, map[string]string{
		"manifest.json": `{"reg_path":"reg.json","params_path":"params.json","ballot_tally_path":"tally.json","ballots_path":"old.json"}`,
	})
	_, _, err := l.LoadManifest("manifest.json")
	assert.Error(t, err)
}

func TestLoadManifestRejectsURLLikePath(t *testing.T) {
	l := newTestLoader(t, map[string]string{
		"manifest.json": `{"reg_path":"https://evil.example/reg.json","params_path":"params.json","ballot_tally_path":"tally.json"}`,
	})
	_, _, err := l.LoadManifest("manifest.json")
	assert.Error(t, err)
}

func TestLoadDivisionRegistry(t *testing.T) {
	l := newTestLoader(t, map[string]string{
		"reg.json": `{
			"id": "REG:1",
			"schema_version": "1.0.0",
			"units": [
				{"unit_id": "U:002", "name": "B", "magnitude": 1, "eligible_roll": 100},
				{"unit_id": "U:001", "name": "A", "magnitude": 1, "eligible_roll": 100}
			],
			"adjacency": [{"a": "U:001", "b": "U:002", "type": "land"}]
		}`,
	})
	reg, _, err := l.LoadDivisionRegistry("reg.json")
	require.NoError(t, err)
	assert.Equal(t, []ids.UnitId{"U:001", "U:002"}, reg.UnitIds())
	assert.Len(t, reg.Adjacency, 1)
}

func TestLoadDivisionRegistryRejectsUnknownAdjacencyUnit(t *testing.T) {
	l := newTestLoader(t, map[string]string{
		"reg.json": `{
			"id": "REG:1",
			"schema_version": "1.0.0",
			"units": [{"unit_id": "U:001", "name": "A", "magnitude": 1, "eligible_roll": 100}],
			"adjacency": [{"a": "U:001", "b": "U:999", "type": "land"}]
		}`,
	})
	_, _, err := l.LoadDivisionRegistry("reg.json")
	assert.Error(t, err)
}

func TestLoadParameterSet(t *testing.T) {
	l := newTestLoader(t, map[string]string{
		"params.json": `{
			"id": "PS:1",
			"variables": {
				"VM-VAR-001": "plurality",
				"VM-VAR-010": "winner_take_all",
				"VM-VAR-020": 50,
				"VM-VAR-050": "status_quo"
			}
		}`,
	})
	p, _, err := l.LoadParameterSet("params.json", "1.0.0")
	require.NoError(t, err)
	assert.Equal(t, params.BallotPlurality, p.BallotType)
	assert.Equal(t, params.AllocWTA, p.AllocationMethod)
	assert.Equal(t, 50, p.QuorumGlobalPct)
	assert.Equal(t, params.TieStatusQuo, p.TiePolicy)
	assert.Equal(t, params.QuotaHare, p.LRQuota)
}

func TestLoadBallotTallyPlurality(t *testing.T) {
	l := newTestLoader(t, map[string]string{
		"tally.json": `{
			"id": "TLY:1",
			"ballot_type": "plurality",
			"units": [
				{"unit_id": "U:001", "turnout": {"valid_ballots": 90, "invalid_ballots": 10}, "scores": {"OPT:A": 60, "OPT:B": 30}}
			]
		}`,
	})
	tallies, tallyId, _, err := l.LoadBallotTally("tally.json")
	require.NoError(t, err)
	require.Len(t, tallies, 1)
	assert.Equal(t, "TLY:1", tallyId)
	assert.EqualValues(t, 60, tallies[0].Scores["OPT:A"])
	assert.EqualValues(t, 90, tallies[0].Turnout.ValidBallots)
}

func TestLoadBallotTallyRanked(t *testing.T) {
	l := newTestLoader(t, map[string]string{
		"tally.json": `{
			"id": "TLY:1",
			"ballot_type": "ranked_irv",
			"units": [
				{"unit_id": "U:001", "ranked": [{"ranking": ["OPT:A", "OPT:B"], "count": 40}]}
			]
		}`,
	})
	tallies, tallyId, _, err := l.LoadBallotTally("tally.json")
	require.NoError(t, err)
	require.Len(t, tallies, 1)
	assert.Equal(t, "TLY:1", tallyId)
	require.Len(t, tallies[0].Ranked, 1)
	assert.EqualValues(t, 40, tallies[0].Ranked[0].Count)
}

func TestCheckDigestsMismatch(t *testing.T) {
	m := Manifest{Digests: map[string]ids.Sha256{"reg.json": ids.Sha256("a" + string(make([]byte, 63)))}}
	observed := map[string]ids.Sha256{"reg.json": "b"}
	err := CheckDigests(m, observed)
	assert.Error(t, err)
}

func TestCheckExpectationsMismatch(t *testing.T) {
	m := Manifest{ExpectFormulaId: "deadbeef"}
	err := CheckExpectations(m, "cafebabe", "1.0.0")
	assert.Error(t, err)
}

func TestCheckExpectationsMatch(t *testing.T) {
	m := Manifest{ExpectFormulaId: "deadbeef", ExpectEngineVer: "1.0.0"}
	err := CheckExpectations(m, "deadbeef", "1.0.0")
	assert.NoError(t, err)
}
