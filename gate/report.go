package gate

import (
	"github.com/vm-engine/engine/aggregate"
	"github.com/vm-engine/engine/ids"
	"github.com/vm-engine/engine/params"
	"github.com/vm-engine/engine/vmerrors"
)

// LegitimacyReport is the full gates panel (spec §4.10 Result "gates
// panel": observed values, integer thresholds, and pass booleans for
// every gate, plus the overall pass and first failure reason).
type LegitimacyReport struct {
	QuorumNationalPass         bool
	QuorumNationalObserved     aggregate.Ratio
	QuorumNationalThresholdPct int

	QuorumPerUnitPass         map[ids.UnitId]bool
	QuorumPerUnitThresholdPct int

	MajorityPass         bool
	MajorityObserved     aggregate.Ratio
	MajorityThresholdPct int

	DoubleMajority SymmetryGate

	Symmetry SymmetryResult

	Pass               bool
	FirstFailureReason string
}

// SymmetryGate is the double-majority sub-panel (named apart from
// SymmetryResult since double-majority is a distinct gate, not the
// VM-VAR-025 symmetry check).
type SymmetryGate struct {
	Enabled       bool
	Pass          bool
	Observed      aggregate.Ratio
	ThresholdPct  int
	FailureReason string
}

// Evaluate runs all four gates in fixed order (quorum, majority,
// double_majority, symmetry), recording every gate's value regardless
// of earlier failures, then combines them into an overall verdict.
func Evaluate(totals aggregate.Totals, p params.Params, familyUnits []ids.UnitId, unitIndex map[ids.UnitId]aggregate.UnitAggregate) LegitimacyReport {
	report := LegitimacyReport{}

	report.QuorumNationalObserved = aggregate.Ratio{Num: totals.NationalBallotsCast, Den: totals.NationalEligibleRoll}
	report.QuorumNationalThresholdPct = p.QuorumGlobalPct
	report.QuorumNationalPass = NationalQuorum(totals, p.QuorumGlobalPct)

	report.QuorumPerUnitThresholdPct = p.QuorumPerUnitPct
	report.QuorumPerUnitPass = PerUnitQuorum(totals.Units, p.QuorumPerUnitPct)

	report.MajorityObserved = totals.NationalSupport
	report.MajorityThresholdPct = p.NationalMajorityPct
	report.MajorityPass = NationalMajority(totals, p.NationalMajorityPct)

	report.DoubleMajority.Enabled = p.DoubleMajorityEnabled
	report.DoubleMajority.ThresholdPct = p.RegionalMajorityPct
	if p.DoubleMajorityEnabled {
		pass, observed, err := DoubleMajority(unitIndex, familyUnits, report.QuorumPerUnitPass, p.QuorumPerUnitScope, report.MajorityPass, p.RegionalMajorityPct)
		report.DoubleMajority.Observed = observed
		if err != nil {
			report.DoubleMajority.Pass = false
			if ve, ok := err.(*vmerrors.Error); ok {
				report.DoubleMajority.FailureReason = ve.Reason
			} else {
				report.DoubleMajority.FailureReason = err.Error()
			}
		} else {
			report.DoubleMajority.Pass = pass
		}
	} else {
		report.DoubleMajority.Pass = true
	}

	report.Symmetry = Symmetry(p.SymmetryEnabled, p.SymmetryExceptions)

	report.Pass = report.QuorumNationalPass && report.MajorityPass && report.DoubleMajority.Pass && report.Symmetry.Pass
	if !report.QuorumNationalPass {
		report.FirstFailureReason = "quorum_global_failed"
	} else if !report.MajorityPass {
		report.FirstFailureReason = "national_majority_failed"
	} else if !report.DoubleMajority.Pass {
		if report.DoubleMajority.FailureReason != "" {
			report.FirstFailureReason = report.DoubleMajority.FailureReason
		} else {
			report.FirstFailureReason = "double_majority_failed"
		}
	} else if !report.Symmetry.Pass {
		report.FirstFailureReason = "symmetry_failed"
	}

	return report
}
