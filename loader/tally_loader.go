package loader

import (
	"fmt"

	"github.com/vm-engine/engine/ids"
	"github.com/vm-engine/engine/registry"
	"github.com/vm-engine/engine/schema"
	"github.com/vm-engine/engine/vmerrors"
)

// LoadBallotTally reads, schema-validates, and decodes a BallotTally
// document into one registry.UnitTally per unit (spec §4.3, §6.1). The
// tally's own ballot_type selects which of the two per-unit shapes
// ("scores" for plurality/approval/score, "ranked" for the ranked
// families) is expected and rejects the other as malformed.
func (l *Loader) LoadBallotTally(path string) ([]registry.UnitTally, string, ids.Sha256, error) {
	doc, digest, err := l.readAndDecode(path)
	if err != nil {
		return nil, "", digest, err
	}
	if err := l.Validator.Validate(schema.KindBallotTally, doc); err != nil {
		return nil, "", digest, err
	}

	m := doc.(map[string]any)
	tallyId := stringField(m, "id")
	family := registry.BallotFamily(stringField(m, "ballot_type"))
	ranked := family == registry.FamilyRankedIRV || family == registry.FamilyCondorcet

	rawUnits, _ := m["units"].([]any)
	out := make([]registry.UnitTally, 0, len(rawUnits))
	for _, ru := range rawUnits {
		um, ok := ru.(map[string]any)
		if !ok {
			continue
		}
		unitId, err := ids.NewUnitId(stringField(um, "unit_id"))
		if err != nil {
			return nil, tallyId, digest, vmerrors.Wrap(vmerrors.KindSchema, "Schema.BadUnitId", "malformed unit_id in ballot tally", err)
		}

		turnout := registry.Turnout{}
		if t, ok := um["turnout"].(map[string]any); ok {
			if v, err := jsonUint64(t["valid_ballots"]); err == nil {
				turnout.ValidBallots = v
			}
			if v, err := jsonUint64(t["invalid_ballots"]); err == nil {
				turnout.InvalidBallots = v
			}
		}

		ut := registry.UnitTally{UnitId: unitId, Family: family, Turnout: turnout}

		if ranked {
			groups, err := decodeRankedGroups(um["ranked"])
			if err != nil {
				return nil, tallyId, digest, vmerrors.Wrap(vmerrors.KindSchema, vmerrors.ReasonTallyUnknownOption, fmt.Sprintf("unit %s: bad ranked groups", unitId), err)
			}
			ut.Ranked = groups
		} else {
			scores, err := decodeScores(um["scores"])
			if err != nil {
				return nil, tallyId, digest, vmerrors.Wrap(vmerrors.KindSchema, vmerrors.ReasonTallyUnknownOption, fmt.Sprintf("unit %s: bad scores", unitId), err)
			}
			ut.Scores = scores
		}

		out = append(out, ut)
	}

	return out, tallyId, digest, nil
}

func decodeScores(v any) (map[ids.OptionId]uint64, error) {
	raw, ok := v.(map[string]any)
	if !ok {
		return map[ids.OptionId]uint64{}, nil
	}
	out := make(map[ids.OptionId]uint64, len(raw))
	for k, val := range raw {
		optId, err := ids.NewOptionId(k)
		if err != nil {
			return nil, err
		}
		n, err := jsonUint64(val)
		if err != nil {
			return nil, fmt.Errorf("option %s: %w", k, err)
		}
		out[optId] = n
	}
	return out, nil
}

func decodeRankedGroups(v any) ([]registry.RankedGroup, error) {
	raw, ok := v.([]any)
	if !ok {
		return nil, nil
	}
	out := make([]registry.RankedGroup, 0, len(raw))
	for _, g := range raw {
		gm, ok := g.(map[string]any)
		if !ok {
			continue
		}
		rankingRaw, _ := gm["ranking"].([]any)
		ranking := make([]ids.OptionId, 0, len(rankingRaw))
		for _, r := range rankingRaw {
			s, _ := r.(string)
			optId, err := ids.NewOptionId(s)
			if err != nil {
				return nil, err
			}
			ranking = append(ranking, optId)
		}
		count, err := jsonUint64(gm["count"])
		if err != nil {
			return nil, fmt.Errorf("ranked group count: %w", err)
		}
		out = append(out, registry.RankedGroup{Ranking: ranking, Count: count})
	}
	return out, nil
}
