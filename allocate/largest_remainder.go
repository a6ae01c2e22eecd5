package allocate

import (
	"github.com/vm-engine/engine/ids"
	"github.com/vm-engine/engine/invariant"
	"github.com/vm-engine/engine/params"
	"github.com/vm-engine/engine/vmerrors"
)

// LargestRemainder allocates magnitude seats using the configured quota
// (Hare, Droop, or Imperiali) and distributes leftover seats by largest
// remainder, ties broken by breaker (spec §4.4 Largest Remainder).
func LargestRemainder(unit ids.UnitId, magnitude uint32, canonical []ids.OptionId, scores map[ids.OptionId]uint64, thresholdPct int, quota params.LRQuota, breaker TieBreaker) (Allocation, error) {
	if magnitude == 0 {
		return Allocation{UnitId: unit, SeatsOrPower: map[ids.OptionId]uint32{}}, nil
	}
	eligible := thresholdFilter(canonical, scores, thresholdPct)
	if len(eligible) == 0 {
		return Allocation{}, errNoEligible(unit)
	}

	var total uint64
	for _, o := range eligible {
		total += scores[o]
	}

	q, err := quotaValue(quota, total, magnitude)
	if err != nil {
		return Allocation{}, err
	}
	if q == 0 {
		return Allocation{}, vmerrors.New(vmerrors.KindAllocate, "Allocate.ZeroQuota", "computed quota is zero for unit "+string(unit))
	}

	awarded := make(map[ids.OptionId]uint32, len(eligible))
	remainder := make(map[ids.OptionId]uint64, len(eligible))
	var seatsUsed uint64
	for _, o := range eligible {
		whole := scores[o] / q
		awarded[o] = uint32(whole)
		remainder[o] = scores[o] % q
		seatsUsed += whole
	}

	// Quota awards can exceed magnitude: Hare whenever magnitude <= total
	// < 2*magnitude (q collapses to 1), Imperiali by construction. Strip
	// the surplus from the smallest remainders so the subtraction below
	// never underflows and the seat sum stays exactly magnitude.
	for seatsUsed > uint64(magnitude) {
		var trailers []ids.OptionId
		var worst uint64
		for _, o := range eligible {
			if awarded[o] == 0 {
				continue
			}
			if len(trailers) == 0 || remainder[o] < worst {
				trailers = []ids.OptionId{o}
				worst = remainder[o]
			} else if remainder[o] == worst {
				trailers = append(trailers, o)
			}
		}
		loser := trailers[0]
		if len(trailers) > 1 {
			w, err := breaker(unit, trailers)
			if err != nil {
				return Allocation{}, err
			}
			loser = w
		}
		awarded[loser]--
		remainder[loser] = q // stripped options go to the back of the strip order
		seatsUsed--
	}

	remaining := magnitude - uint32(seatsUsed)
	lastSeatTie := false
	for remaining > 0 {
		var leaders []ids.OptionId
		var best uint64
		for _, o := range eligible {
			if len(leaders) == 0 || remainder[o] > best {
				leaders = []ids.OptionId{o}
				best = remainder[o]
			} else if remainder[o] == best {
				leaders = append(leaders, o)
			}
		}

		winner := leaders[0]
		if len(leaders) > 1 {
			if remaining == 1 {
				lastSeatTie = true
			}
			w, err := breaker(unit, leaders)
			if err != nil {
				return Allocation{}, err
			}
			winner = w
		}
		awarded[winner]++
		remainder[winner] = 0 // this unit's remainder already consumed one seat
		remaining--
	}

	seats := make([]uint32, 0, len(awarded))
	for _, s := range awarded {
		seats = append(seats, s)
	}
	invariant.SumEquals(seats, magnitude, "largest_remainder seats for unit "+string(unit))

	return Allocation{UnitId: unit, SeatsOrPower: awarded, LastSeatTie: lastSeatTie}, nil
}

func quotaValue(quota params.LRQuota, total uint64, magnitude uint32) (uint64, error) {
	switch quota {
	case params.QuotaDroop:
		return total/(uint64(magnitude)+1) + 1, nil
	case params.QuotaImperiali:
		return total / (uint64(magnitude) + 2), nil
	case params.QuotaHare, "":
		if magnitude == 0 {
			return 0, vmerrors.New(vmerrors.KindAllocate, vmerrors.ReasonAllocInvalidMagnitude, "largest_remainder requires magnitude >= 1")
		}
		return total / uint64(magnitude), nil
	default:
		return 0, vmerrors.New(vmerrors.KindAllocate, "Allocate.UnknownQuota", "unrecognized lr_quota "+string(quota))
	}
}
