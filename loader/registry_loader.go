package loader

import (
	"fmt"

	"github.com/vm-engine/engine/ids"
	"github.com/vm-engine/engine/registry"
	"github.com/vm-engine/engine/schema"
	"github.com/vm-engine/engine/vmerrors"
)

// LoadDivisionRegistry reads, schema-validates, and normalizes a
// DivisionRegistry document into the registry package's ordered domain
// type (spec §6.1). Units and options are inserted through the registry
// package's own btree-backed constructors, so canonical ordering is
// established here once rather than re-sorted at every later stage.
func (l *Loader) LoadDivisionRegistry(path string) (*registry.DivisionRegistry, ids.Sha256, error) {
	doc, digest, err := l.readAndDecode(path)
	if err != nil {
		return nil, digest, err
	}
	if err := l.Validator.Validate(schema.KindDivisionRegistry, doc); err != nil {
		return nil, digest, err
	}

	m := doc.(map[string]any)
	reg := registry.NewDivisionRegistry(stringField(m, "id"), stringField(m, "schema_version"))

	rawUnits, _ := m["units"].([]any)
	for _, ru := range rawUnits {
		um, ok := ru.(map[string]any)
		if !ok {
			continue
		}
		unitId, err := ids.NewUnitId(stringField(um, "unit_id"))
		if err != nil {
			return nil, digest, vmerrors.Wrap(vmerrors.KindSchema, "Schema.BadUnitId", "malformed unit_id", err)
		}
		magnitude, err := jsonUint32(um["magnitude"])
		if err != nil {
			return nil, digest, vmerrors.New(vmerrors.KindSchema, vmerrors.ReasonAllocInvalidMagnitude, fmt.Sprintf("unit %s: %v", unitId, err))
		}
		eligible, err := jsonUint64(um["eligible_roll"])
		if err != nil {
			return nil, digest, vmerrors.New(vmerrors.KindSchema, "Schema.BadEligibleRoll", fmt.Sprintf("unit %s: %v", unitId, err))
		}
		protected, _ := um["protected_area"].(bool)

		u := registry.NewUnit(unitId, stringField(um, "name"), protected, magnitude, eligible)

		if rawParent, ok := um["parent_id"].(string); ok && rawParent != "" {
			parentId, err := ids.NewUnitId(rawParent)
			if err != nil {
				return nil, digest, vmerrors.Wrap(vmerrors.KindSchema, "Schema.BadParentId", fmt.Sprintf("unit %s: malformed parent_id", unitId), err)
			}
			u.ParentId = &parentId
		}

		if baseline, ok := um["population_baseline"]; ok {
			b, err := jsonUint64(baseline)
			if err != nil {
				return nil, digest, vmerrors.New(vmerrors.KindSchema, "Schema.BadPopulationBaseline", err.Error())
			}
			u.PopulationBaseline = &b
			if year, ok := um["population_baseline_year"]; ok {
				y, err := jsonUint32(year)
				if err != nil {
					return nil, digest, vmerrors.New(vmerrors.KindSchema, "Schema.BadPopulationYear", err.Error())
				}
				u.PopulationYear = &y
			}
		}

		rawOptions, _ := um["options"].([]any)
		for _, ro := range rawOptions {
			om, ok := ro.(map[string]any)
			if !ok {
				continue
			}
			optId, err := ids.NewOptionId(stringField(om, "option_id"))
			if err != nil {
				return nil, digest, vmerrors.Wrap(vmerrors.KindSchema, "Schema.BadOptionId", fmt.Sprintf("unit %s: malformed option_id", unitId), err)
			}
			orderIndex, err := jsonUint16(om["order_index"])
			if err != nil {
				return nil, digest, vmerrors.New(vmerrors.KindSchema, "Schema.BadOrderIndex", fmt.Sprintf("unit %s option %s: %v", unitId, optId, err))
			}
			isStatusQuo, _ := om["is_status_quo"].(bool)
			if err := u.AddOption(registry.OptionItem{OptionId: optId, Name: stringField(om, "name"), OrderIndex: orderIndex, IsStatusQuo: isStatusQuo}); err != nil {
				return nil, digest, vmerrors.Wrap(vmerrors.KindValidate, vmerrors.ReasonOptionOrderDuplicate, fmt.Sprintf("unit %s", unitId), err)
			}
		}

		if err := reg.AddUnit(u); err != nil {
			return nil, digest, vmerrors.Wrap(vmerrors.KindValidate, "Validate.DuplicateUnit", "duplicate unit in registry", err)
		}
	}

	rawAdj, _ := m["adjacency"].([]any)
	edges, err := adjacencyFromRaw(rawAdj, reg)
	if err != nil {
		return nil, digest, err
	}
	reg.Adjacency = append(reg.Adjacency, edges...)

	return reg, digest, nil
}

// adjacencyFromRaw normalizes a raw adjacency edge list, enforcing the
// edge invariants from spec §3: a != b, both endpoints defined in the
// registry. Shared by the registry's inline adjacency[] block and the
// standalone adjacency document named by manifest.adjacency_path.
func adjacencyFromRaw(rawAdj []any, reg *registry.DivisionRegistry) ([]registry.Adjacency, error) {
	var out []registry.Adjacency
	for _, ra := range rawAdj {
		am, ok := ra.(map[string]any)
		if !ok {
			continue
		}
		a, err := ids.NewUnitId(stringField(am, "a"))
		if err != nil {
			return nil, vmerrors.Wrap(vmerrors.KindSchema, "Schema.BadAdjacencyEndpoint", "malformed adjacency endpoint a", err)
		}
		b, err := ids.NewUnitId(stringField(am, "b"))
		if err != nil {
			return nil, vmerrors.Wrap(vmerrors.KindSchema, "Schema.BadAdjacencyEndpoint", "malformed adjacency endpoint b", err)
		}
		if a == b {
			return nil, vmerrors.New(vmerrors.KindValidate, "Validate.AdjacencySelfEdge", fmt.Sprintf("adjacency edge has equal endpoints %s", a))
		}
		if _, ok := reg.Unit(a); !ok {
			return nil, vmerrors.New(vmerrors.KindValidate, "Validate.AdjacencyUnknownUnit", "adjacency references unknown unit "+string(a))
		}
		if _, ok := reg.Unit(b); !ok {
			return nil, vmerrors.New(vmerrors.KindValidate, "Validate.AdjacencyUnknownUnit", "adjacency references unknown unit "+string(b))
		}
		corridor, _ := am["corridor"].(bool)
		out = append(out, registry.Adjacency{
			A: a, B: b, Kind: registry.EdgeKind(stringField(am, "type")), Corridor: corridor,
		})
	}
	return out, nil
}

// LoadAdjacency reads the standalone adjacency document named by
// manifest.adjacency_path and appends its edges to reg (spec §6.1: the
// adjacency graph may live inline in the registry or in its own file).
func (l *Loader) LoadAdjacency(path string, reg *registry.DivisionRegistry) (ids.Sha256, error) {
	doc, digest, err := l.readAndDecode(path)
	if err != nil {
		return digest, err
	}
	if err := l.Validator.Validate(schema.KindAdjacency, doc); err != nil {
		return digest, err
	}
	m := doc.(map[string]any)
	rawAdj, _ := m["adjacency"].([]any)
	edges, err := adjacencyFromRaw(rawAdj, reg)
	if err != nil {
		return digest, err
	}
	reg.Adjacency = append(reg.Adjacency, edges...)
	return digest, nil
}

func jsonUint32(v any) (uint32, error) {
	n, err := jsonInt64(v)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative value %d where non-negative expected", n)
	}
	return uint32(n), nil
}

func jsonUint64(v any) (uint64, error) {
	n, err := jsonInt64(v)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative value %d where non-negative expected", n)
	}
	return uint64(n), nil
}

func jsonUint16(v any) (uint16, error) {
	n, err := jsonInt64(v)
	if err != nil {
		return 0, err
	}
	if n < 0 || n > 65535 {
		return 0, fmt.Errorf("order_index %d out of uint16 range", n)
	}
	return uint16(n), nil
}
