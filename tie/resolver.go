// Package tie implements RESOLVE_TIES (spec §4.7): canonicalizing a
// tied candidate set, applying the configured tie_policy, and logging
// every resolution as a TieEvent for RunRecord. Its Breaker method
// produces an allocate.TieBreaker closure so the allocation kernels
// never need to know which policy is active.
package tie

import (
	"sort"

	"github.com/vm-engine/engine/allocate"
	"github.com/vm-engine/engine/ids"
	"github.com/vm-engine/engine/params"
	"github.com/vm-engine/engine/registry"
	"github.com/vm-engine/engine/vmerrors"
)

// Resolver applies VM-VAR-050/052 and accumulates TieEvents across a run.
// The RNG is constructed lazily, only on the first random-policy draw,
// matching the lifecycle note in spec §"Ownership & Lifecycle": "The RNG
// is constructed only when tie_policy = Random and lives for the
// duration of RESOLVE_TIES."
type Resolver struct {
	policy params.TiePolicy
	seed   uint64
	rng    *wordRng
	events []TieEvent
}

// NewResolver builds a Resolver for the given policy and seed (VM-VAR-050/052).
func NewResolver(policy params.TiePolicy, seed uint64) *Resolver {
	return &Resolver{policy: policy, seed: seed}
}

// Events returns the TieEvents recorded so far, in the order resolved.
func (r *Resolver) Events() []TieEvent {
	return r.events
}

// Breaker returns an allocate.TieBreaker bound to kind and unit, so
// status_quo resolution can consult the unit's option definitions.
func (r *Resolver) Breaker(kind Kind, unit *registry.Unit) allocate.TieBreaker {
	return func(unitId ids.UnitId, candidates []ids.OptionId) (ids.OptionId, error) {
		return r.resolve(kind, unit, unitId, candidates)
	}
}

func (r *Resolver) resolve(kind Kind, unit *registry.Unit, unitId ids.UnitId, candidates []ids.OptionId) (ids.OptionId, error) {
	if len(candidates) == 0 {
		return "", vmerrors.New(vmerrors.KindTie, vmerrors.ReasonTieEmptyCandidateSet,
			"no candidates supplied to tie resolution for unit "+string(unitId))
	}
	canon := canonicalize(unit, candidates)
	if err := r.verifyKnown(unit, canon); err != nil {
		return "", err
	}

	var winner ids.OptionId
	detail := map[string]any{}

	switch r.policy {
	case params.TieStatusQuo:
		if sq, ok := statusQuoAmong(unit, canon); ok {
			winner = sq
			detail["rule"] = "status_quo_match"
		} else {
			winner = canon[0]
			detail["rule"] = "status_quo_fallthrough_deterministic"
		}

	case params.TieDeterministic:
		winner = canon[0]
		detail["rule"] = "deterministic"

	case params.TieRandom:
		if r.rng == nil {
			rng, err := newWordRng(r.seed)
			if err != nil {
				return "", err
			}
			r.rng = rng
		}
		idx, wordIdx := r.rng.uniformIndex(len(canon))
		winner = canon[idx]
		detail["rule"] = "random"
		detail["seed"] = r.seed
		detail["word_index_at_draw"] = wordIdx

	default:
		return "", vmerrors.New(vmerrors.KindTie, vmerrors.ReasonTieBadSeed,
			"unrecognized tie_policy "+string(r.policy))
	}

	r.events = append(r.events, TieEvent{
		Kind:            kind,
		Unit:            unitId,
		CandidatesCanon: canon,
		Policy:          r.policy,
		Detail:          detail,
		Winner:          winner,
	})
	return winner, nil
}

func (r *Resolver) verifyKnown(unit *registry.Unit, candidates []ids.OptionId) error {
	for _, c := range candidates {
		if !unit.HasOption(c) {
			return vmerrors.New(vmerrors.KindTie, vmerrors.ReasonTieUnknownOption,
				"candidate "+string(c)+" is not a defined option of unit "+string(unit.UnitId))
		}
	}
	return nil
}

// canonicalize orders candidates by (order_index, OptionId) ascending
// (spec §4.7 step 1), independent of the order the caller supplied them in.
func canonicalize(unit *registry.Unit, candidates []ids.OptionId) []ids.OptionId {
	order := make(map[ids.OptionId]uint16, len(candidates))
	for _, o := range unit.Options() {
		order[o.OptionId] = o.OrderIndex
	}
	out := append([]ids.OptionId(nil), candidates...)
	sort.Slice(out, func(i, j int) bool {
		return ids.LessOptionKey(
			ids.OptionKey{OrderIndex: order[out[i]], OptionId: out[i]},
			ids.OptionKey{OrderIndex: order[out[j]], OptionId: out[j]},
		)
	})
	return out
}

// statusQuoAmong returns the candidate marked is_status_quo, only if
// exactly one of the candidates carries that flag (spec §4.7 status_quo rule).
func statusQuoAmong(unit *registry.Unit, candidates []ids.OptionId) (ids.OptionId, bool) {
	flagged := map[ids.OptionId]bool{}
	for _, o := range unit.Options() {
		if o.IsStatusQuo {
			flagged[o.OptionId] = true
		}
	}
	var found ids.OptionId
	count := 0
	for _, c := range candidates {
		if flagged[c] {
			found = c
			count++
		}
	}
	if count == 1 {
		return found, true
	}
	return "", false
}
