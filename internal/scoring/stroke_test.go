package scoring

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trentd187/golf-league-ledger/internal/models"
	"github.com/trentd187/golf-league-ledger/internal/policy"
)

func strokePolicy(t *testing.T, mutate func(*models.LeagueSettings)) policy.ScoringPolicy {
	t.Helper()
	s := policy.DefaultSettings()
	s.ScoringType = models.ScoringStrokePlay
	s.PointScale = []float64{10, 8, 6, 4, 2}
	if mutate != nil {
		mutate(&s)
	}
	p, err := policy.NewScoringPolicy(s)
	require.NoError(t, err)
	return p
}

func byTeam(results []FieldResult) map[uuid.UUID]FieldResult {
	out := make(map[uuid.UUID]FieldResult, len(results))
	for _, r := range results {
		out[r.TeamID] = r
	}
	return out
}

func TestRankField_NoTies(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	res := byTeam(RankField([]FieldEntry{
		{TeamID: a, Net: 34},
		{TeamID: b, Net: 31},
		{TeamID: c, Net: 36},
	}, strokePolicy(t, nil), 0))

	assert.Equal(t, 1, res[b].Position)
	assert.Equal(t, 10.0, res[b].Points)
	assert.Equal(t, 2, res[a].Position)
	assert.Equal(t, 8.0, res[a].Points)
	assert.Equal(t, 3, res[c].Position)
	assert.Equal(t, "3", res[c].Label)
}

func TestRankField_SplitTieSharesSlots(t *testing.T) {
	a, b, c, d := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	p := strokePolicy(t, nil)
	results := RankField([]FieldEntry{
		{TeamID: a, Net: 30},
		{TeamID: b, Net: 30},
		{TeamID: c, Net: 30},
		{TeamID: d, Net: 33},
	}, p, 0)
	res := byTeam(results)

	var tieSum float64
	for _, id := range []uuid.UUID{a, b, c} {
		assert.Equal(t, 1, res[id].Position)
		assert.True(t, res[id].Tied)
		assert.Equal(t, "T1", res[id].Label)
		tieSum += res[id].Points
	}
	// the group of 3 occupies slots 1-3: 10 + 8 + 6
	assert.InDelta(t, 24.0, tieSum, 1e-9)
	assert.Equal(t, 4, res[d].Position)
	assert.Equal(t, 4.0, res[d].Points)
}

func TestRankField_SameTieGetsBestSlot(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	res := byTeam(RankField([]FieldEntry{
		{TeamID: a, Net: 29},
		{TeamID: b, Net: 31},
		{TeamID: c, Net: 31},
	}, strokePolicy(t, func(s *models.LeagueSettings) { s.TieMode = models.TieSame }), 0))

	assert.Equal(t, 8.0, res[b].Points)
	assert.Equal(t, 8.0, res[c].Points)
	assert.Equal(t, "T2", res[c].Label)
}

func TestRankField_PastEndOfScaleIsZero(t *testing.T) {
	p := strokePolicy(t, func(s *models.LeagueSettings) { s.PointScale = []float64{5, 3} })
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	res := byTeam(RankField([]FieldEntry{
		{TeamID: ids[0], Net: 30},
		{TeamID: ids[1], Net: 31},
		{TeamID: ids[2], Net: 31},
	}, p, 0))
	// tie covers slots 2 and 3: (3 + 0) / 2
	assert.Equal(t, 1.5, res[ids[1]].Points)
	assert.Equal(t, 1.5, res[ids[2]].Points)
}

func TestRankField_DNPAndBonuses(t *testing.T) {
	p := strokePolicy(t, func(s *models.LeagueSettings) {
		s.BonusShow = 1
		s.BonusBeat = 2
		s.DNPPoints = 1
		s.DNPPenalty = -3
	})
	a, b, gone := uuid.New(), uuid.New(), uuid.New()
	results := RankField([]FieldEntry{
		{TeamID: gone, DNP: true},
		{TeamID: a, Net: 33},
		{TeamID: b, Net: 37},
	}, p, 36)
	require.Len(t, results, 3)
	assert.Equal(t, gone, results[2].TeamID, "DNP entries are listed last")

	res := byTeam(results)
	assert.Equal(t, 3.0, res[a].Bonus, "played and beat par")
	assert.Equal(t, 13.0, res[a].Total())
	assert.Equal(t, 1.0, res[b].Bonus, "played only")
	assert.Equal(t, -2.0, res[gone].Points)
	assert.Equal(t, 0.0, res[gone].Bonus)
	assert.Equal(t, 0, res[gone].Position)
	assert.Equal(t, "DNP", res[gone].Label)
}

func TestWeeksPlayedAndPointsPerWeek(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	week1 := []FieldResult{{TeamID: a}, {TeamID: b, DNP: true}}
	week2 := []FieldResult{{TeamID: a}, {TeamID: b}}

	counts := WeeksPlayed(week1, week2)
	assert.Equal(t, 2, counts[a])
	assert.Equal(t, 1, counts[b])

	assert.Equal(t, 7.5, PointsPerWeek(15, 2))
	assert.Equal(t, 0.0, PointsPerWeek(15, 0))
}
