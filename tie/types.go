package tie

import (
	"github.com/vm-engine/engine/ids"
	"github.com/vm-engine/engine/params"
)

// Kind identifies which pipeline decision required tie resolution
// (spec §4.7: WTA winner, last PR seat, IRV elimination).
type Kind string

const (
	KindWTAWinner  Kind = "wta_winner"
	KindLastPRSeat Kind = "last_pr_seat"
	KindIRVElim    Kind = "irv_elimination"
	KindCondorcet  Kind = "condorcet_completion"
)

// TieEvent records one resolved tie for RunRecord (never Result, spec §4.10).
type TieEvent struct {
	Kind            Kind
	Unit            ids.UnitId
	CandidatesCanon []ids.OptionId
	Policy          params.TiePolicy
	Detail          map[string]any
	Winner          ids.OptionId
}
