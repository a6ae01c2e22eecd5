package tie

import "github.com/vm-engine/engine/canon"

// ToObj builds the canonical document fragment for one resolved tie,
// embedded in RunRecord.ties (spec §4.10).
func (e TieEvent) ToObj() canon.Obj {
	candidates := make([]any, len(e.CandidatesCanon))
	for i, c := range e.CandidatesCanon {
		candidates[i] = string(c)
	}
	detail := canon.Obj{}
	for k, v := range e.Detail {
		detail[k] = v
	}
	return canon.Obj{
		"kind":             string(e.Kind),
		"unit":             string(e.Unit),
		"candidates_canon": candidates,
		"policy":           string(e.Policy),
		"detail":           detail,
		"winner":           string(e.Winner),
	}
}
