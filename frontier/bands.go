package frontier

import (
	"github.com/vm-engine/engine/aggregate"
	"github.com/vm-engine/engine/params"
	"github.com/vm-engine/engine/wideint"
)

// selectBand returns the first band whose [min_pct, max_pct] contains
// support's percentage, compared by cross-multiplication so the check
// never computes a float percentage (spec §4.8 step 3: "integer
// comparison on the ratio"). A zero-denominator ratio selects no band.
func selectBand(bands []params.FrontierBand, support aggregate.Ratio) (params.FrontierBand, bool) {
	if support.Den == 0 {
		return params.FrontierBand{}, false
	}
	for _, b := range bands {
		lowerOk := wideint.MulLE(uint64(b.MinPct), support.Den, 100, support.Num)
		upperOk := wideint.MulLE(100, support.Num, uint64(b.MaxPct), support.Den)
		if lowerOk && upperOk {
			return b, true
		}
	}
	return params.FrontierBand{}, false
}
