package frontier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vm-engine/engine/aggregate"
	"github.com/vm-engine/engine/ids"
	"github.com/vm-engine/engine/params"
	"github.com/vm-engine/engine/registry"
)

func buildRegistry(t *testing.T) *registry.DivisionRegistry {
	reg := registry.NewDivisionRegistry("REG:1", "1.0.0")
	for _, id := range []ids.UnitId{"U:001", "U:002", "U:003"} {
		u := registry.NewUnit(id, string(id), false, 1, 1000)
		require.NoError(t, reg.AddUnit(u))
	}
	reg.Adjacency = []registry.Adjacency{
		{A: "U:001", B: "U:002", Kind: registry.EdgeLand},
	}
	return reg
}

func TestFrontierNoneModeReturnsEmpty(t *testing.T) {
	reg := buildRegistry(t)
	p := params.Params{FrontierMode: params.FrontierNone}
	fm := Build(reg, p, nil, nil)
	assert.Empty(t, fm.Units)
}

func TestFrontierBandAssignmentAndComponents(t *testing.T) {
	reg := buildRegistry(t)
	p := params.Params{
		FrontierMode:        params.FrontierSlidingScale,
		ContiguityEdgeTypes: []string{"land"},
		FrontierBands: []params.FrontierBand{
			{MinPct: 0, MaxPct: 49, Status: "none"},
			{MinPct: 50, MaxPct: 100, Status: "full_autonomy"},
		},
	}
	unitIndex := map[ids.UnitId]aggregate.UnitAggregate{
		"U:001": {UnitId: "U:001", SupportNum: 60, SupportDen: 100},
		"U:002": {UnitId: "U:002", SupportNum: 70, SupportDen: 100},
		"U:003": {UnitId: "U:003", SupportNum: 10, SupportDen: 100},
	}
	quorumPass := map[ids.UnitId]bool{"U:001": true, "U:002": true, "U:003": true}
	fm := Build(reg, p, unitIndex, quorumPass)

	byId := map[ids.UnitId]UnitFrontier{}
	for _, u := range fm.Units {
		byId[u.UnitId] = u
	}
	assert.Equal(t, "full_autonomy", byId["U:001"].Status)
	assert.Equal(t, "full_autonomy", byId["U:002"].Status)
	assert.Equal(t, "none", byId["U:003"].Status)
	assert.Equal(t, byId["U:001"].ComponentId, byId["U:002"].ComponentId)
	assert.NotEqual(t, byId["U:001"].ComponentId, byId["U:003"].ComponentId)
	assert.False(t, byId["U:001"].Flags.Mediation)
	assert.False(t, byId["U:002"].Flags.Mediation)
}

func TestFrontierProtectedAreaForcesNone(t *testing.T) {
	reg := registry.NewDivisionRegistry("REG:1", "1.0.0")
	u := registry.NewUnit("U:001", "U1", true, 1, 1000)
	require.NoError(t, reg.AddUnit(u))
	p := params.Params{
		FrontierMode: params.FrontierSlidingScale,
		FrontierBands: []params.FrontierBand{
			{MinPct: 0, MaxPct: 100, Status: "full_autonomy"},
		},
	}
	unitIndex := map[ids.UnitId]aggregate.UnitAggregate{
		"U:001": {UnitId: "U:001", ProtectedArea: true, SupportNum: 90, SupportDen: 100},
	}
	fm := Build(reg, p, unitIndex, map[ids.UnitId]bool{"U:001": true})
	require.Len(t, fm.Units, 1)
	assert.Equal(t, "none", fm.Units[0].Status)
	assert.True(t, fm.Units[0].Flags.ProtectedBlocked)
}

func TestFrontierQuorumBlockForcesNone(t *testing.T) {
	reg := registry.NewDivisionRegistry("REG:1", "1.0.0")
	u := registry.NewUnit("U:001", "U1", false, 1, 1000)
	require.NoError(t, reg.AddUnit(u))
	p := params.Params{
		FrontierMode: params.FrontierSlidingScale,
		FrontierBands: []params.FrontierBand{
			{MinPct: 0, MaxPct: 100, Status: "full_autonomy"},
		},
	}
	unitIndex := map[ids.UnitId]aggregate.UnitAggregate{
		"U:001": {UnitId: "U:001", SupportNum: 90, SupportDen: 100},
	}
	fm := Build(reg, p, unitIndex, map[ids.UnitId]bool{"U:001": false})
	assert.Equal(t, "none", fm.Units[0].Status)
	assert.True(t, fm.Units[0].Flags.QuorumBlocked)
}

func TestFrontierMediationWhenIsolatedChangeUnit(t *testing.T) {
	reg := registry.NewDivisionRegistry("REG:1", "1.0.0")
	for _, id := range []ids.UnitId{"U:001", "U:002"} {
		require.NoError(t, reg.AddUnit(registry.NewUnit(id, string(id), false, 1, 1000)))
	}
	// no adjacency edges: each unit is its own component
	p := params.Params{
		FrontierMode: params.FrontierSlidingScale,
		FrontierBands: []params.FrontierBand{
			{MinPct: 50, MaxPct: 100, Status: "full_autonomy"},
			{MinPct: 0, MaxPct: 49, Status: "none"},
		},
	}
	unitIndex := map[ids.UnitId]aggregate.UnitAggregate{
		"U:001": {UnitId: "U:001", SupportNum: 90, SupportDen: 100},
		"U:002": {UnitId: "U:002", SupportNum: 10, SupportDen: 100},
	}
	quorumPass := map[ids.UnitId]bool{"U:001": true, "U:002": true}
	fm := Build(reg, p, unitIndex, quorumPass)
	byId := map[ids.UnitId]UnitFrontier{}
	for _, u := range fm.Units {
		byId[u.UnitId] = u
	}
	assert.True(t, byId["U:001"].Flags.Mediation)
	assert.True(t, byId["U:001"].Flags.Enclave)
}
