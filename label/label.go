// Package label implements LABEL (spec §4.9): combining the legitimacy
// gates, national margin, and frontier risk flags into the final
// decisiveness verdict.
package label

import (
	"github.com/vm-engine/engine/frontier"
	"github.com/vm-engine/engine/gate"
)

// Decisiveness is the Result's top-level verdict.
type Decisiveness string

const (
	Invalid  Decisiveness = "Invalid"
	Marginal Decisiveness = "Marginal"
	Decisive Decisiveness = "Decisive"
)

// Outcome is {label, reason} (spec §4.10 Result).
type Outcome struct {
	Label  Decisiveness
	Reason string
}

// Label implements the exact decision tree from spec §4.9:
//
//	if not legit.pass: return Invalid, first_failure_reason
//	frontier_risk = any(mediation | enclave | protected_override_used)
//	if national_margin_pp < decisive_margin_pp: return Marginal, "margin_below_threshold"
//	if frontier_risk: return Marginal, "frontier_risk_flags_present"
//	return Decisive, "margin_meets_threshold"
//
// Exact equality (margin == threshold) is Decisive.
func Label(legit gate.LegitimacyReport, nationalMarginPp int, decisiveMarginPp int, fm *frontier.FrontierMap) Outcome {
	if !legit.Pass {
		reason := legit.FirstFailureReason
		if reason == "" {
			reason = "gates_failed"
		}
		return Outcome{Label: Invalid, Reason: reason}
	}

	frontierRisk := false
	if fm != nil {
		frontierRisk = fm.SummaryByFlag["mediation"] > 0 || fm.SummaryByFlag["enclave"] > 0 || fm.SummaryByFlag["protected_blocked"] > 0
	}

	if nationalMarginPp < decisiveMarginPp {
		return Outcome{Label: Marginal, Reason: "margin_below_threshold"}
	}
	if frontierRisk {
		return Outcome{Label: Marginal, Reason: "frontier_risk_flags_present"}
	}
	return Outcome{Label: Decisive, Reason: "margin_meets_threshold"}
}
