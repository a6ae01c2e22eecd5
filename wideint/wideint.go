// Package wideint provides overflow-safe cross-multiplication comparisons
// for the integer-ratio inequalities used throughout allocation, gates, and
// aggregation (spec §4.4–§4.6, §9 "Integer arithmetic"). Every comparison
// that would otherwise risk uint64 overflow (scores × seats, percentages ×
// totals, score-sums × scale) is widened through github.com/holiman/uint256,
// the fixed-width 256-bit integer type also used by the pack's blockchain
// engines for gas/fee arithmetic. No float64 appears anywhere in this
// package.
package wideint

import "github.com/holiman/uint256"

// MulCmp compares a*b against c*d using widened (overflow-free) products,
// returning -1, 0, or 1 as a*b <, ==, > c*d.
func MulCmp(a, b, c, d uint64) int {
	lhs := new(uint256.Int).Mul(uint256.NewInt(a), uint256.NewInt(b))
	rhs := new(uint256.Int).Mul(uint256.NewInt(c), uint256.NewInt(d))
	return lhs.Cmp(rhs)
}

// MulGE reports whether a*b >= c*d without overflow.
func MulGE(a, b, c, d uint64) bool { return MulCmp(a, b, c, d) >= 0 }

// MulGT reports whether a*b > c*d without overflow.
func MulGT(a, b, c, d uint64) bool { return MulCmp(a, b, c, d) > 0 }

// MulLE reports whether a*b <= c*d without overflow.
func MulLE(a, b, c, d uint64) bool { return MulCmp(a, b, c, d) <= 0 }

// PctGE reports whether 100*num >= pct*den (a percentage-threshold gate
// comparison: spec §4.6 quorum/majority inequalities).
func PctGE(num uint64, pct uint64, den uint64) bool {
	return MulGE(100, num, pct, den)
}

// PctLE reports whether 100*num <= pct*den (threshold-exclusion comparisons,
// spec §4.4 pr_entry_threshold_pct filter uses the complementary GE form but
// some callers want the inverse).
func PctLE(num uint64, pct uint64, den uint64) bool {
	return MulLE(100, num, pct, den)
}

// Product returns a*b as a *uint256.Int for further widened arithmetic
// (e.g. comparing a score-sum cap of valid_ballots * scale_max).
func Product(a, b uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(a), uint256.NewInt(b))
}

// LECap reports whether value <= a*b (a cap check against a widened product,
// spec §4.3 Score ballot cap: sum_opt <= valid_ballots * scale_max).
func LECap(value uint64, a, b uint64) bool {
	return uint256.NewInt(value).Cmp(Product(a, b)) <= 0
}

// PctFloor returns floor(100*num/den) as a plain int, widened through
// uint256 so the 100*num product never overflows uint64 (spec §4.5
// national margin computation). den must be > 0.
func PctFloor(num, den uint64) int64 {
	scaled := Product(100, num)
	q := new(uint256.Int).Div(scaled, uint256.NewInt(den))
	return int64(q.Uint64())
}

// DivisorQuotientCmp compares score_a/(seats_a+1) against score_b/(seats_b+1)
// via cross-multiplication, as required for highest-averages allocation
// (spec §4.4 D'Hondt/Sainte-Laguë): returns -1/0/1 as the first average is
// less than, equal to, or greater than the second.
func DivisorQuotientCmp(scoreA uint64, divisorA uint64, scoreB uint64, divisorB uint64) int {
	return MulCmp(scoreA, divisorB, scoreB, divisorA)
}
