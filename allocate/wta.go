package allocate

import (
	"github.com/vm-engine/engine/ids"
)

// WTA awards all power to the option with the highest score (spec §4.4
// WTA). magnitude must equal 1. Ties among the maximum are resolved by
// breaker and set LastSeatTie.
func WTA(unit ids.UnitId, magnitude uint32, canonical []ids.OptionId, scores map[ids.OptionId]uint64, breaker TieBreaker) (Allocation, error) {
	if magnitude != 1 {
		return Allocation{}, errBadMagnitude(unit, magnitude)
	}
	if len(canonical) == 0 {
		return Allocation{}, errNoEligible(unit)
	}

	var max uint64
	for _, o := range canonical {
		if scores[o] > max {
			max = scores[o]
		}
	}
	var tied []ids.OptionId
	for _, o := range canonical {
		if scores[o] == max {
			tied = append(tied, o)
		}
	}

	winner := tied[0]
	tieOccurred := false
	if len(tied) > 1 {
		tieOccurred = true
		w, err := breaker(unit, tied)
		if err != nil {
			return Allocation{}, err
		}
		winner = w
	}

	return Allocation{
		UnitId:       unit,
		SeatsOrPower: map[ids.OptionId]uint32{winner: 100},
		LastSeatTie:  tieOccurred,
	}, nil
}
