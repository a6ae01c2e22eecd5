package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vm-engine/engine/ids"
	"github.com/vm-engine/engine/registry"
	"github.com/vm-engine/engine/vmerrors"
)

func hierarchyRegistry(t *testing.T, parents map[string]string, unitIds ...string) *registry.DivisionRegistry {
	t.Helper()
	reg := registry.NewDivisionRegistry("REG:T", "1.0.0")
	for _, id := range unitIds {
		u := registry.NewUnit(ids.UnitId(id), "Unit "+id, false, 1, 100)
		if p, ok := parents[id]; ok {
			parentId := ids.UnitId(p)
			u.ParentId = &parentId
		}
		require.NoError(t, reg.AddUnit(u))
	}
	return reg
}

func assertValidateReason(t *testing.T, err error, reason string) {
	t.Helper()
	require.Error(t, err)
	ve, ok := err.(*vmerrors.Error)
	require.True(t, ok)
	assert.Equal(t, vmerrors.KindValidate, ve.Kind)
	assert.Equal(t, reason, ve.Reason)
}

func TestCheckHierarchyFlatRegistryPasses(t *testing.T) {
	reg := hierarchyRegistry(t, nil, "U:001", "U:002", "U:003")
	assert.NoError(t, checkHierarchy(reg))
}

func TestCheckHierarchySingleRootedTreePasses(t *testing.T) {
	reg := hierarchyRegistry(t, map[string]string{
		"U:002": "U:001",
		"U:003": "U:001",
		"U:004": "U:002",
	}, "U:001", "U:002", "U:003", "U:004")
	assert.NoError(t, checkHierarchy(reg))
}

func TestCheckHierarchyMultipleRoots(t *testing.T) {
	reg := hierarchyRegistry(t, map[string]string{
		"U:003": "U:001",
	}, "U:001", "U:002", "U:003")
	assertValidateReason(t, checkHierarchy(reg), vmerrors.ReasonHierarchyMultipleRoots)
}

func TestCheckHierarchyOrphanParent(t *testing.T) {
	reg := hierarchyRegistry(t, map[string]string{
		"U:002": "U:999",
	}, "U:001", "U:002")
	assertValidateReason(t, checkHierarchy(reg), vmerrors.ReasonHierarchyOrphanParent)
}

func TestCheckHierarchyCycle(t *testing.T) {
	reg := hierarchyRegistry(t, map[string]string{
		"U:001": "U:003",
		"U:002": "U:001",
		"U:003": "U:002",
	}, "U:001", "U:002", "U:003")
	assertValidateReason(t, checkHierarchy(reg), vmerrors.ReasonHierarchyCycle)
}
