package allocate

import (
	"github.com/vm-engine/engine/ids"
	"github.com/vm-engine/engine/invariant"
	"github.com/vm-engine/engine/wideint"
)

// divisor returns the divisor for the (seatsAwarded+1)-th seat under a
// highest-averages method: D'Hondt uses seatsAwarded+1 (1, 2, 3, ...),
// Sainte-Laguë uses 2*seatsAwarded+1 (1, 3, 5, ...).
type divisorFunc func(seatsAwarded uint32) uint64

func dHondtDivisor(seatsAwarded uint32) uint64      { return uint64(seatsAwarded) + 1 }
func sainteLagueDivisor(seatsAwarded uint32) uint64 { return 2*uint64(seatsAwarded) + 1 }

// DHondt allocates magnitude seats by highest averages with divisors
// 1, 2, 3, ... (spec §4.4 D'Hondt, favors large parties).
func DHondt(unit ids.UnitId, magnitude uint32, canonical []ids.OptionId, scores map[ids.OptionId]uint64, thresholdPct int, breaker TieBreaker) (Allocation, error) {
	return highestAverages(unit, magnitude, canonical, scores, thresholdPct, dHondtDivisor, breaker)
}

// SainteLague allocates magnitude seats by highest averages with divisors
// 1, 3, 5, ... (spec §4.4 Sainte-Laguë, favors small parties).
func SainteLague(unit ids.UnitId, magnitude uint32, canonical []ids.OptionId, scores map[ids.OptionId]uint64, thresholdPct int, breaker TieBreaker) (Allocation, error) {
	return highestAverages(unit, magnitude, canonical, scores, thresholdPct, sainteLagueDivisor, breaker)
}

func highestAverages(unit ids.UnitId, magnitude uint32, canonical []ids.OptionId, scores map[ids.OptionId]uint64, thresholdPct int, divisor divisorFunc, breaker TieBreaker) (Allocation, error) {
	if magnitude == 0 {
		return Allocation{UnitId: unit, SeatsOrPower: map[ids.OptionId]uint32{}}, nil
	}
	eligible := thresholdFilter(canonical, scores, thresholdPct)
	if len(eligible) == 0 {
		return Allocation{}, errNoEligible(unit)
	}

	awarded := make(map[ids.OptionId]uint32, len(eligible))
	for _, o := range eligible {
		awarded[o] = 0
	}

	lastSeatTie := false
	for seat := uint32(0); seat < magnitude; seat++ {
		var leaders []ids.OptionId
		for _, o := range eligible {
			if len(leaders) == 0 {
				leaders = []ids.OptionId{o}
				continue
			}
			cmp := wideint.DivisorQuotientCmp(scores[o], divisor(awarded[o]), scores[leaders[0]], divisor(awarded[leaders[0]]))
			if cmp > 0 {
				leaders = []ids.OptionId{o}
			} else if cmp == 0 {
				leaders = append(leaders, o)
			}
		}

		// A tie for any seat but the last takes the canonical-first leader;
		// only a tie for the last seat goes to breaker.
		winner := leaders[0]
		if len(leaders) > 1 && seat == magnitude-1 {
			lastSeatTie = true
			w, err := breaker(unit, leaders)
			if err != nil {
				return Allocation{}, err
			}
			winner = w
		}
		awarded[winner]++
	}

	seats := make([]uint32, 0, len(awarded))
	for _, s := range awarded {
		seats = append(seats, s)
	}
	invariant.SumEquals(seats, magnitude, "highest_averages seats for unit "+string(unit))

	return Allocation{UnitId: unit, SeatsOrPower: awarded, LastSeatTie: lastSeatTie}, nil
}
