package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vm-engine/engine/ids"
	"github.com/vm-engine/engine/registry"
)

func TestLoadDivisionRegistryParentLinks(t *testing.T) {
	l := newTestLoader(t, map[string]string{
		"reg.json": `{
			"id": "REG:1",
			"schema_version": "1.0.0",
			"units": [
				{"unit_id": "U:001", "name": "Root", "parent_id": null, "magnitude": 1, "eligible_roll": 100},
				{"unit_id": "U:002", "name": "Child", "parent_id": "U:001", "magnitude": 1, "eligible_roll": 100}
			]
		}`,
	})
	reg, _, err := l.LoadDivisionRegistry("reg.json")
	require.NoError(t, err)

	root, ok := reg.Unit("U:001")
	require.True(t, ok)
	assert.Nil(t, root.ParentId)

	child, ok := reg.Unit("U:002")
	require.True(t, ok)
	require.NotNil(t, child.ParentId)
	assert.Equal(t, ids.UnitId("U:001"), *child.ParentId)
}

func TestLoadAdjacencyDocument(t *testing.T) {
	l := newTestLoader(t, map[string]string{
		"reg.json": `{
			"id": "REG:1",
			"schema_version": "1.0.0",
			"units": [
				{"unit_id": "U:001", "name": "A", "magnitude": 1, "eligible_roll": 100},
				{"unit_id": "U:002", "name": "B", "magnitude": 1, "eligible_roll": 100},
				{"unit_id": "U:003", "name": "C", "magnitude": 1, "eligible_roll": 100}
			]
		}`,
		"adjacency.json": `{
			"id": "ADJ:1",
			"adjacency": [
				{"a": "U:001", "b": "U:002", "type": "land"},
				{"a": "U:002", "b": "U:003", "type": "water", "corridor": true}
			]
		}`,
	})
	reg, _, err := l.LoadDivisionRegistry("reg.json")
	require.NoError(t, err)

	digest, err := l.LoadAdjacency("adjacency.json", reg)
	require.NoError(t, err)
	assert.Len(t, string(digest), 64)

	require.Len(t, reg.Adjacency, 2)
	assert.Equal(t, registry.EdgeLand, reg.Adjacency[0].Kind)
	assert.False(t, reg.Adjacency[0].Corridor)
	assert.Equal(t, registry.EdgeWater, reg.Adjacency[1].Kind)
	assert.True(t, reg.Adjacency[1].Corridor)
}

func TestLoadAdjacencyRejectsUnknownUnit(t *testing.T) {
	l := newTestLoader(t, map[string]string{
		"reg.json": `{
			"id": "REG:1",
			"schema_version": "1.0.0",
			"units": [{"unit_id": "U:001", "name": "A", "magnitude": 1, "eligible_roll": 100}]
		}`,
		"adjacency.json": `{"adjacency": [{"a": "U:001", "b": "U:999", "type": "land"}]}`,
	})
	reg, _, err := l.LoadDivisionRegistry("reg.json")
	require.NoError(t, err)

	_, err = l.LoadAdjacency("adjacency.json", reg)
	assert.Error(t, err)
}
