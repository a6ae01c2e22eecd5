package report

import (
	"github.com/vm-engine/engine/ids"
	"github.com/vm-engine/engine/result"
)

// UnitView is one unit's presentation row (spec §4.10 Result "units" block,
// reduced to the fields a report renders: seats/power and the tie flag).
type UnitView struct {
	UnitId       ids.UnitId
	SeatsOrPower map[ids.OptionId]uint32
	LastSeatTie  bool
}

// GatesView is the legitimacy gates panel rendered at one-decimal precision.
type GatesView struct {
	Pass               bool
	FirstFailureReason string

	QuorumNationalPct          string
	QuorumNationalThresholdPct int
	QuorumNationalPass         bool

	MajorityPct          string
	MajorityThresholdPct int
	MajorityPass         bool

	DoubleMajorityEnabled      bool
	DoubleMajorityPct          string
	DoubleMajorityThresholdPct int
	DoubleMajorityPass         bool

	SymmetryEnabled bool
	SymmetryPass    bool
}

// FrontierUnitView is one unit's row in the frontier map presentation.
type FrontierUnitView struct {
	UnitId           ids.UnitId
	Status           string
	ApId             string
	SupportPct       string
	Mediation        bool
	Enclave          bool
	ProtectedBlocked bool
	QuorumBlocked    bool
}

// FrontierView presents a FrontierMap; nil on a View whose run never
// reached MAP_FRONTIER (gate failure, or an Invalid Validate/Allocate run).
type FrontierView struct {
	Mode            string
	Units           []FrontierUnitView
	SummaryByStatus map[string]int
	SummaryByFlag   map[string]int
}

// View is the full pure view-model over one run's artifacts.
type View struct {
	Label              string
	LabelReason        string
	Reasons            []string
	NationalSupportPct string
	NationalMarginPp   int
	Gates              GatesView
	Units              []UnitView
	Frontier           *FrontierView
}

// Build maps a Result (and, if MAP_FRONTIER ran, its FrontierMapDoc) into a
// View. fm is nil whenever result.FrontierMapId is nil.
func Build(r result.Result, fm *result.FrontierMapDoc) View {
	g := r.Gates
	v := View{
		Label:              string(r.Label.Label),
		LabelReason:        r.Label.Reason,
		Reasons:            r.Reasons,
		NationalSupportPct: FormatPercent(PercentTenths(r.NationalTotals.NationalSupport)),
		NationalMarginPp:   r.NationalTotals.NationalMarginPp,
		Gates: GatesView{
			Pass:                       g.Pass,
			FirstFailureReason:         g.FirstFailureReason,
			QuorumNationalPct:          FormatPercent(PercentTenths(g.QuorumNationalObserved)),
			QuorumNationalThresholdPct: g.QuorumNationalThresholdPct,
			QuorumNationalPass:         g.QuorumNationalPass,
			MajorityPct:                FormatPercent(PercentTenths(g.MajorityObserved)),
			MajorityThresholdPct:       g.MajorityThresholdPct,
			MajorityPass:               g.MajorityPass,
			DoubleMajorityEnabled:      g.DoubleMajorityEnabled,
			DoubleMajorityPct:          FormatPercent(PercentTenths(g.DoubleMajorityObserved)),
			DoubleMajorityThresholdPct: g.DoubleMajorityThresholdPct,
			DoubleMajorityPass:         g.DoubleMajorityPass,
			SymmetryEnabled:            g.SymmetryEnabled,
			SymmetryPass:               g.SymmetryPass,
		},
	}

	for _, u := range r.Units {
		v.Units = append(v.Units, UnitView{UnitId: u.UnitId, SeatsOrPower: u.SeatsOrPower, LastSeatTie: u.LastSeatTie})
	}

	if fm != nil {
		fv := &FrontierView{Mode: fm.Config.Mode, SummaryByStatus: fm.SummaryByStatus, SummaryByFlag: fm.SummaryByFlag}
		for _, u := range fm.Units {
			fv.Units = append(fv.Units, FrontierUnitView{
				UnitId:           u.UnitId,
				Status:           u.Status,
				ApId:             u.ApId,
				SupportPct:       FormatPercent(PercentTenths(fm.SupportByUnit[u.UnitId])),
				Mediation:        u.Flags.Mediation,
				Enclave:          u.Flags.Enclave,
				ProtectedBlocked: u.Flags.ProtectedBlocked,
				QuorumBlocked:    u.Flags.QuorumBlocked,
			})
		}
		v.Frontier = fv
	}

	return v
}
