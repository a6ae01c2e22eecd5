package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vm-engine/engine/aggregate"
	"github.com/vm-engine/engine/ids"
	"github.com/vm-engine/engine/params"
	"github.com/vm-engine/engine/registry"
)

func TestNationalQuorum(t *testing.T) {
	totals := aggregate.Totals{NationalBallotsCast: 500, NationalEligibleRoll: 1000}
	assert.True(t, NationalQuorum(totals, 50))
	assert.False(t, NationalQuorum(totals, 51))
}

func TestPerUnitQuorum(t *testing.T) {
	units := []aggregate.UnitAggregate{
		{UnitId: "U:001", Turnout: registry.Turnout{ValidBallots: 60}, EligibleRoll: 100},
		{UnitId: "U:002", Turnout: registry.Turnout{ValidBallots: 10}, EligibleRoll: 100},
	}
	pass := PerUnitQuorum(units, 50)
	assert.True(t, pass["U:001"])
	assert.False(t, pass["U:002"])
}

func TestNationalMajority(t *testing.T) {
	totals := aggregate.Totals{NationalSupport: aggregate.Ratio{Num: 550, Den: 1000}}
	assert.True(t, NationalMajority(totals, 50))
	assert.False(t, NationalMajority(totals, 60))
}

func TestDoubleMajorityEmptyFamilyFails(t *testing.T) {
	_, _, err := DoubleMajority(map[ids.UnitId]aggregate.UnitAggregate{}, nil, nil, params.QuorumFrontierOnly, true, 55)
	assert.Error(t, err)
}

func TestDoubleMajorityDropsFailingUnitsWhenScopedToFamily(t *testing.T) {
	idx := map[ids.UnitId]aggregate.UnitAggregate{
		"U:001": {UnitId: "U:001", SupportNum: 80, SupportDen: 100},
		"U:002": {UnitId: "U:002", SupportNum: 10, SupportDen: 100},
	}
	quorumPass := map[ids.UnitId]bool{"U:001": true, "U:002": false}
	pass, observed, err := DoubleMajority(idx, []ids.UnitId{"U:001", "U:002"}, quorumPass, params.QuorumFrontierFamily, true, 55)
	require.NoError(t, err)
	assert.True(t, pass)
	assert.EqualValues(t, 80, observed.Num)
	assert.EqualValues(t, 100, observed.Den)
}

func TestDoubleMajorityFailsWhenNationalFails(t *testing.T) {
	idx := map[ids.UnitId]aggregate.UnitAggregate{
		"U:001": {UnitId: "U:001", SupportNum: 90, SupportDen: 100},
	}
	pass, _, err := DoubleMajority(idx, []ids.UnitId{"U:001"}, map[ids.UnitId]bool{"U:001": true}, params.QuorumFrontierOnly, false, 55)
	require.NoError(t, err)
	assert.False(t, pass)
}

func TestSymmetryDisabledPasses(t *testing.T) {
	r := Symmetry(false, nil)
	assert.True(t, r.Pass)
	assert.False(t, r.Enabled)
}

func TestSymmetryEnabledCarriesExceptions(t *testing.T) {
	r := Symmetry(true, []string{"OPT:X"})
	assert.True(t, r.Pass)
	assert.Equal(t, []string{"OPT:X"}, r.Exceptions)
}

func TestEvaluateOverallPassAndFailureReasonOrdering(t *testing.T) {
	totals := aggregate.Totals{
		Units:                []aggregate.UnitAggregate{{UnitId: "U:001", Turnout: registry.Turnout{ValidBallots: 40}, EligibleRoll: 100, SupportNum: 10, SupportDen: 40}},
		NationalBallotsCast:  40,
		NationalEligibleRoll: 100,
		NationalSupport:      aggregate.Ratio{Num: 10, Den: 40},
	}
	p := params.Params{QuorumGlobalPct: 50, NationalMajorityPct: 50}
	report := Evaluate(totals, p, nil, nil)
	assert.False(t, report.Pass)
	assert.Equal(t, "quorum_global_failed", report.FirstFailureReason)
}

func TestEvaluateUnresolvedFamilyYieldsReasonToken(t *testing.T) {
	totals := aggregate.Totals{
		Units:                []aggregate.UnitAggregate{{UnitId: "U:001", Turnout: registry.Turnout{ValidBallots: 80}, EligibleRoll: 100, SupportNum: 60, SupportDen: 80}},
		NationalBallotsCast:  80,
		NationalEligibleRoll: 100,
		NationalSupport:      aggregate.Ratio{Num: 60, Den: 80},
	}
	p := params.Params{QuorumGlobalPct: 50, NationalMajorityPct: 50, DoubleMajorityEnabled: true, RegionalMajorityPct: 55}
	report := Evaluate(totals, p, nil, nil)
	assert.False(t, report.Pass)
	assert.Equal(t, "DoubleMajority.FamilyUnresolved", report.FirstFailureReason)
}
