// Package registry defines the DivisionRegistry and its constituent
// entities (Unit, OptionItem, adjacency edges) plus per-unit ballot inputs
// (Turnout, UnitTally). Canonical ordering is backed by github.com/google/btree
// so every traversal that crosses a stage boundary walks units and options in
// ascending canonical order without an explicit sort at each call site (spec
// §9 Design Notes, "Ordered containers").
package registry

import (
	"fmt"

	"github.com/google/btree"

	"github.com/vm-engine/engine/ids"
)

// EdgeKind enumerates adjacency edge types.
type EdgeKind string

const (
	EdgeLand   EdgeKind = "land"
	EdgeBridge EdgeKind = "bridge"
	EdgeWater  EdgeKind = "water"
)

// Adjacency is an edge between two units.
type Adjacency struct {
	A        ids.UnitId
	B        ids.UnitId
	Kind     EdgeKind
	Corridor bool
}

// OptionItem is a ballot option defined within a Unit.
type OptionItem struct {
	OptionId    ids.OptionId
	Name        string
	OrderIndex  uint16
	IsStatusQuo bool
}

// unitItem adapts *Unit to btree.Item, ordered by ascending UnitId.
type unitItem struct{ u *Unit }

func (a unitItem) Less(than btree.Item) bool {
	return a.u.UnitId < than.(unitItem).u.UnitId
}

// optionItemNode adapts OptionItem to btree.Item, ordered by (order_index, OptionId).
type optionItemNode struct{ o OptionItem }

func (a optionItemNode) Less(than btree.Item) bool {
	return ids.LessOptionKey(
		ids.OptionKey{OrderIndex: a.o.OrderIndex, OptionId: a.o.OptionId},
		ids.OptionKey{OrderIndex: than.(optionItemNode).o.OrderIndex, OptionId: than.(optionItemNode).o.OptionId},
	)
}

// Unit is a political/administrative unit. ParentId is nil for a root
// unit; the pipeline's VALIDATE stage enforces that the parent links form
// a single-rooted tree.
type Unit struct {
	UnitId             ids.UnitId
	Name               string
	ParentId           *ids.UnitId
	ProtectedArea      bool
	Magnitude          uint32
	EligibleRoll       uint64
	PopulationBaseline *uint64
	PopulationYear     *uint32

	options *btree.BTree // of optionItemNode
}

// NewUnit constructs a Unit with an empty option index.
func NewUnit(unitId ids.UnitId, name string, protectedArea bool, magnitude uint32, eligibleRoll uint64) *Unit {
	return &Unit{
		UnitId:        unitId,
		Name:          name,
		ProtectedArea: protectedArea,
		Magnitude:     magnitude,
		EligibleRoll:  eligibleRoll,
		options:       btree.New(32),
	}
}

// AddOption inserts an option, rejecting a duplicate order_index within the unit.
func (u *Unit) AddOption(o OptionItem) error {
	var dup bool
	u.options.Ascend(func(it btree.Item) bool {
		if it.(optionItemNode).o.OrderIndex == o.OrderIndex {
			dup = true
			return false
		}
		return true
	})
	if dup {
		return fmt.Errorf("registry: duplicate order_index %d in unit %s", o.OrderIndex, u.UnitId)
	}
	u.options.ReplaceOrInsert(optionItemNode{o})
	return nil
}

// Options returns options in canonical (order_index, OptionId) order.
func (u *Unit) Options() []OptionItem {
	out := make([]OptionItem, 0, u.options.Len())
	u.options.Ascend(func(it btree.Item) bool {
		out = append(out, it.(optionItemNode).o)
		return true
	})
	return out
}

// OptionIds returns just the canonically ordered OptionId list.
func (u *Unit) OptionIds() []ids.OptionId {
	opts := u.Options()
	out := make([]ids.OptionId, len(opts))
	for i, o := range opts {
		out[i] = o.OptionId
	}
	return out
}

// HasOption reports whether optID is a defined option of this unit.
func (u *Unit) HasOption(optID ids.OptionId) bool {
	for _, o := range u.Options() {
		if o.OptionId == optID {
			return true
		}
	}
	return false
}

// StatusQuoOption returns the unit's status-quo option, if exactly one exists.
func (u *Unit) StatusQuoOption() (ids.OptionId, bool) {
	var found ids.OptionId
	count := 0
	for _, o := range u.Options() {
		if o.IsStatusQuo {
			found = o.OptionId
			count++
		}
	}
	return found, count == 1
}

// DivisionRegistry is the ordered set of Units plus optional adjacency edges.
type DivisionRegistry struct {
	Id            string
	SchemaVersion string
	units         *btree.BTree // of unitItem
	Adjacency     []Adjacency
}

// NewDivisionRegistry constructs an empty registry.
func NewDivisionRegistry(id, schemaVersion string) *DivisionRegistry {
	return &DivisionRegistry{Id: id, SchemaVersion: schemaVersion, units: btree.New(32)}
}

// AddUnit inserts a unit, rejecting a duplicate UnitId.
func (r *DivisionRegistry) AddUnit(u *Unit) error {
	if r.units.Has(unitItem{u}) {
		return fmt.Errorf("registry: duplicate unit id %s", u.UnitId)
	}
	r.units.ReplaceOrInsert(unitItem{u})
	return nil
}

// Units returns units in ascending UnitId order.
func (r *DivisionRegistry) Units() []*Unit {
	out := make([]*Unit, 0, r.units.Len())
	r.units.Ascend(func(it btree.Item) bool {
		out = append(out, it.(unitItem).u)
		return true
	})
	return out
}

// UnitIds returns just the canonically ordered UnitId list.
func (r *DivisionRegistry) UnitIds() []ids.UnitId {
	units := r.Units()
	out := make([]ids.UnitId, len(units))
	for i, u := range units {
		out[i] = u.UnitId
	}
	return out
}

// Unit looks up a unit by id.
func (r *DivisionRegistry) Unit(id ids.UnitId) (*Unit, bool) {
	probe := &Unit{UnitId: id}
	found := r.units.Get(unitItem{probe})
	if found == nil {
		return nil, false
	}
	return found.(unitItem).u, true
}

// Len returns the number of units.
func (r *DivisionRegistry) Len() int { return r.units.Len() }

// Turnout is the per-unit ballot participation count.
type Turnout struct {
	ValidBallots   uint64
	InvalidBallots uint64
}

// BallotsCast is the derived total of valid + invalid ballots.
func (t Turnout) BallotsCast() uint64 { return t.ValidBallots + t.InvalidBallots }

// BallotFamily enumerates the five tabulated ballot families.
type BallotFamily string

const (
	FamilyPlurality BallotFamily = "plurality"
	FamilyApproval  BallotFamily = "approval"
	FamilyScore     BallotFamily = "score"
	FamilyRankedIRV BallotFamily = "ranked_irv"
	FamilyCondorcet BallotFamily = "ranked_condorcet"
)

// RankedGroup is one compressed group of identical rankings.
type RankedGroup struct {
	Ranking []ids.OptionId
	Count   uint64
}

// UnitTally is the per-unit tally input for one ballot family.
type UnitTally struct {
	UnitId  ids.UnitId
	Family  BallotFamily
	Scores  map[ids.OptionId]uint64 // plurality/approval/score
	Ranked  []RankedGroup           // ranked_irv/ranked_condorcet
	Turnout Turnout
}
