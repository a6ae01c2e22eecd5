// Package report is a pure mapping from the engine's content-addressed
// artifacts (Result, FrontierMap) to a presentation-ready view model with
// every ratio pre-rounded to one decimal (spec §2 Reporting Model: "pure
// mapping from artifacts to a view model with one-decimal presentation;
// renderers are external"). It never touches a filesystem or a template —
// an HTML/terminal/JSON renderer is explicitly out of scope (spec §1) and
// consumes View directly.
package report

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/vm-engine/engine/aggregate"
	"github.com/vm-engine/engine/wideint"
)

// PercentTenths rounds r to tenths of a percent (e.g. 605 means "60.5%"),
// half-up, using only integer arithmetic via github.com/holiman/uint256 —
// the same widening discipline wideint uses for the computational stages,
// kept here too so the reporting layer never reintroduces float64.
func PercentTenths(r aggregate.Ratio) int64 {
	if r.Den == 0 {
		return 0
	}
	scaled := wideint.Product(1000, r.Num)
	half := new(uint256.Int).Div(uint256.NewInt(r.Den), uint256.NewInt(2))
	scaled.Add(scaled, half)
	q := new(uint256.Int).Div(scaled, uint256.NewInt(r.Den))
	return int64(q.Uint64())
}

// FormatPercent renders tenths (as returned by PercentTenths) as "NN.N%".
func FormatPercent(tenths int64) string {
	return fmt.Sprintf("%d.%d%%", tenths/10, tenths%10)
}
