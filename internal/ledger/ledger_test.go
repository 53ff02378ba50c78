package ledger

import (
	"context"
	"errors"
	"io"
	"math"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trentd187/golf-league-ledger/internal/apperr"
	"github.com/trentd187/golf-league-ledger/internal/models"
	"github.com/trentd187/golf-league-ledger/internal/policy"
	"github.com/trentd187/golf-league-ledger/internal/repository"
	"github.com/trentd187/golf-league-ledger/internal/scoring"
)

// recorder collects published events.
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) BroadcastToLeague(leagueID string, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, string(data))
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

type fixture struct {
	svc    *Service
	store  *repository.MemoryStore
	league uuid.UUID
	teams  map[string]uuid.UUID
	events *recorder
}

func newFixture(t *testing.T, names ...string) *fixture {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	fx := &fixture{
		store:  repository.NewMemoryStore(),
		league: uuid.New(),
		teams:  make(map[string]uuid.UUID),
		events: &recorder{},
	}
	for _, name := range names {
		id := uuid.New()
		fx.teams[name] = id
		fx.store.AddTeams(fx.league, models.Team{ID: id, Name: name, Active: true})
	}
	fx.svc = New(fx.store, WithLogger(log), WithNotifier(fx.events))
	return fx
}

func f(v float64) *float64 { return &v }

func (fx *fixture) settings(t *testing.T, mutate func(*models.LeagueSettings)) {
	t.Helper()
	s := policy.DefaultSettings()
	mutate(&s)
	_, _, err := fx.svc.UpdateSettings(context.Background(), fx.league, s)
	require.NoError(t, err)
}

// play submits a matchup. Handicaps are only needed in week 1.
func (fx *fixture) play(t *testing.T, week int, a, b string, grossA, grossB float64, hcps ...float64) models.Matchup {
	t.Helper()
	in := MatchupInput{
		Week:       week,
		TeamAID:    fx.teams[a],
		TeamBID:    fx.teams[b],
		TeamAGross: f(grossA),
		TeamBGross: f(grossB),
	}
	if len(hcps) == 2 {
		in.TeamAHandicap, in.TeamBHandicap = f(hcps[0]), f(hcps[1])
	}
	m, err := fx.svc.SubmitMatchup(context.Background(), fx.league, in)
	require.NoError(t, err)
	return m
}

func (fx *fixture) standing(t *testing.T, name string) models.TeamStanding {
	t.Helper()
	rows, err := fx.svc.Standings(context.Background(), fx.league)
	require.NoError(t, err)
	for _, r := range rows {
		if r.TeamID == fx.teams[name] {
			return r
		}
	}
	t.Fatalf("no standing for %s", name)
	return models.TeamStanding{}
}

// twoWeeks plays the season used by most match-play tests:
//
//	week 1: A 40 (hcp 3) vs B 45 (hcp 7) -> nets 37/38, A wins by 1 -> 13/7
//	week 2: A 42 (hcp 3) vs B 41 (hcp 7) -> nets 39/34, B wins by 5 -> 3/17
func (fx *fixture) twoWeeks(t *testing.T) (week1, week2 models.Matchup) {
	t.Helper()
	week1 = fx.play(t, 1, "A", "B", 40, 45, 3, 7)
	week2 = fx.play(t, 2, "A", "B", 42, 41)
	return week1, week2
}

func TestSubmitMatchup_WeekOneNeedsManualHandicaps(t *testing.T) {
	fx := newFixture(t, "A", "B")
	_, err := fx.svc.SubmitMatchup(context.Background(), fx.league, MatchupInput{
		Week: 1, TeamAID: fx.teams["A"], TeamBID: fx.teams["B"],
		TeamAGross: f(40), TeamBGross: f(45),
	})

	var verr *apperr.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "team_a_handicap", verr.Field)
}

func TestSubmitMatchup_ComputesFromEarlierWeeks(t *testing.T) {
	fx := newFixture(t, "A", "B")
	week1, week2 := fx.twoWeeks(t)

	assert.Equal(t, 3.0, *week1.TeamAHandicap)
	assert.Equal(t, 7.0, *week1.TeamBHandicap)
	assert.Equal(t, 13.0, week1.TeamAPoints)
	assert.Equal(t, 7.0, week1.TeamBPoints)

	// (40-36)*0.8 = 3.2 -> 3 and (45-36)*0.8 = 7.2 -> 7
	assert.Equal(t, 3.0, *week2.TeamAHandicap)
	assert.Equal(t, 7.0, *week2.TeamBHandicap)
	assert.Equal(t, 39.0, *week2.TeamANet)
	assert.Equal(t, 34.0, *week2.TeamBNet)
	assert.Equal(t, 3.0, week2.TeamAPoints)
	assert.Equal(t, 17.0, week2.TeamBPoints)
	assert.False(t, week2.PointsOverride)

	a, b := fx.standing(t, "A"), fx.standing(t, "B")
	assert.Equal(t, 16.0, a.TotalPoints)
	assert.Equal(t, 24.0, b.TotalPoints)
	assert.Equal(t, 1, b.Rank)
	assert.Equal(t, 2, a.Rank)
	assert.Equal(t, 1, a.Wins)
	assert.Equal(t, 1, a.Losses)
	assert.Equal(t, 2, a.WeeksPlayed)
	assert.Equal(t, 2, fx.events.count())
}

func TestSubmitMatchup_PointsAlwaysSumToPool(t *testing.T) {
	fx := newFixture(t, "A", "B")
	_, week2 := fx.twoWeeks(t)
	assert.Equal(t, scoring.MatchPool, week2.TeamAPoints+week2.TeamBPoints)

	_, err := fx.svc.SubmitMatchup(context.Background(), fx.league, MatchupInput{
		Week: 3, TeamAID: fx.teams["A"], TeamBID: fx.teams["B"],
		TeamAGross: f(40), TeamBGross: f(40),
		Points: &scoring.MatchPoints{A: 10, B: 9},
	})
	var verr *apperr.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "points", verr.Field)
}

func TestSubmitMatchup_ConflictLeavesLedgerUntouched(t *testing.T) {
	fx := newFixture(t, "A", "B", "C")
	fx.twoWeeks(t)
	ctx := context.Background()

	before, err := fx.svc.Standings(ctx, fx.league)
	require.NoError(t, err)
	published := fx.events.count()

	_, err = fx.svc.SubmitMatchup(ctx, fx.league, MatchupInput{
		Week: 2, TeamAID: fx.teams["C"], TeamBID: fx.teams["A"],
		TeamAGross: f(40), TeamBGross: f(40),
	})

	var conflict *apperr.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, 2, conflict.Week)
	assert.Equal(t, []uuid.UUID{fx.teams["A"]}, conflict.TeamIDs)
	assert.Contains(t, err.Error(), fx.teams["A"].String())

	after, err := fx.svc.Standings(ctx, fx.league)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, published, fx.events.count())
}

func TestSubmitMatchup_ConcurrentDuplicatesOnlyOneWins(t *testing.T) {
	fx := newFixture(t, "A", "B", "C", "D", "E", "F")
	fx.play(t, 1, "A", "B", 40, 45, 3, 7)

	opponents := []string{"B", "C", "D", "E", "F"}
	errs := make([]error, len(opponents))
	var wg sync.WaitGroup
	for i, opp := range opponents {
		wg.Add(1)
		go func(i int, opp string) {
			defer wg.Done()
			_, errs[i] = fx.svc.SubmitMatchup(context.Background(), fx.league, MatchupInput{
				Week: 2, TeamAID: fx.teams["A"], TeamBID: fx.teams[opp],
				TeamAGross: f(40), TeamBGross: f(41),
				TeamBHandicap: f(5), TeamBSub: true,
			})
		}(i, opp)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var conflict *apperr.ConflictError
		assert.True(t, errors.As(err, &conflict), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, succeeded)

	rows, err := fx.svc.Matchups(context.Background(), fx.league)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestPreviewMatchup_WritesNothing(t *testing.T) {
	fx := newFixture(t, "A", "B")
	fx.play(t, 1, "A", "B", 40, 45, 3, 7)
	ctx := context.Background()

	in := MatchupInput{Week: 2, TeamAID: fx.teams["A"], TeamBID: fx.teams["B"], TeamAGross: f(42), TeamBGross: f(41)}
	first, err := fx.svc.PreviewMatchup(ctx, fx.league, in)
	require.NoError(t, err)
	second, err := fx.svc.PreviewMatchup(ctx, fx.league, in)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, scoring.MatchPoints{A: 3, B: 17}, first.Suggested)
	assert.Equal(t, 3.0, *first.TeamAHandicap)

	rows, err := fx.svc.Matchups(ctx, fx.league)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestSubmitMatchup_Forfeit(t *testing.T) {
	fx := newFixture(t, "A", "B")
	fx.play(t, 1, "A", "B", 40, 45, 3, 7)
	ctx := context.Background()

	forfeiter := fx.teams["B"]
	m, err := fx.svc.SubmitMatchup(ctx, fx.league, MatchupInput{
		Week: 2, TeamAID: fx.teams["A"], TeamBID: fx.teams["B"], ForfeitTeamID: &forfeiter,
	})
	require.NoError(t, err)
	assert.True(t, m.Forfeit)
	assert.Equal(t, 20.0, m.TeamAPoints)
	assert.Equal(t, 0.0, m.TeamBPoints)
	assert.Nil(t, m.TeamAGross)
	assert.Nil(t, m.TeamANet)

	// The forfeit adds nothing to either history.
	week3 := fx.play(t, 3, "A", "B", 40, 45)
	assert.Equal(t, 3.0, *week3.TeamAHandicap)
	assert.Equal(t, 7.0, *week3.TeamBHandicap)

	// B lost all three weeks but only played weeks 1 and 3.
	b := fx.standing(t, "B")
	assert.Equal(t, 3, b.Losses)
	assert.Equal(t, 2, b.WeeksPlayed)
}

func TestSubmitMatchup_SubstituteScoreStaysOutOfHistory(t *testing.T) {
	fx := newFixture(t, "A", "B")
	fx.play(t, 1, "A", "B", 40, 45, 3, 7)
	ctx := context.Background()

	_, err := fx.svc.SubmitMatchup(ctx, fx.league, MatchupInput{
		Week: 2, TeamAID: fx.teams["A"], TeamBID: fx.teams["B"],
		TeamAGross: f(60), TeamBGross: f(45), TeamASub: true, TeamAHandicap: f(20),
	})
	require.NoError(t, err)

	week3 := fx.play(t, 3, "A", "B", 40, 45)
	assert.Equal(t, 3.0, *week3.TeamAHandicap, "the substitute's 60 must not count")
}

func TestRecalculate_IsIdempotent(t *testing.T) {
	fx := newFixture(t, "A", "B", "C")
	fx.twoWeeks(t)
	ctx := context.Background()

	_, err := fx.svc.Recalculate(ctx, fx.league)
	require.NoError(t, err)
	matchups, err := fx.svc.Matchups(ctx, fx.league)
	require.NoError(t, err)
	standings, err := fx.svc.Standings(ctx, fx.league)
	require.NoError(t, err)

	sum, err := fx.svc.Recalculate(ctx, fx.league)
	require.NoError(t, err)
	assert.Equal(t, 0, sum.RowsWritten)
	assert.Equal(t, 2, sum.Matchups)

	again, err := fx.svc.Matchups(ctx, fx.league)
	require.NoError(t, err)
	assert.Equal(t, matchups, again)
	againStandings, err := fx.svc.Standings(ctx, fx.league)
	require.NoError(t, err)
	assert.Equal(t, standings, againStandings)
}

func TestUpdateSettings_ReplaysButKeepsManualHandicaps(t *testing.T) {
	fx := newFixture(t, "A", "B")
	fx.twoWeeks(t)
	ctx := context.Background()

	fx.settings(t, func(s *models.LeagueSettings) { s.Multiplier = 1 })

	rows, err := fx.svc.Matchups(ctx, fx.league)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 3.0, *rows[0].TeamAHandicap)
	assert.Equal(t, 7.0, *rows[0].TeamBHandicap)

	// (40-36)*1 = 4, (45-36)*1 = 9 -> nets 38/32 -> B by 6 -> 2/18
	assert.Equal(t, 4.0, *rows[1].TeamAHandicap)
	assert.Equal(t, 9.0, *rows[1].TeamBHandicap)
	assert.Equal(t, 2.0, rows[1].TeamAPoints)
	assert.Equal(t, 18.0, rows[1].TeamBPoints)

	assert.Equal(t, 15.0, fx.standing(t, "A").TotalPoints)
}

func TestUpdateSettings_RejectsInvalidPolicyBeforeWriting(t *testing.T) {
	fx := newFixture(t, "A", "B")
	fx.twoWeeks(t)
	ctx := context.Background()

	s := policy.DefaultSettings()
	s.ScoreSelection = models.SelectionBestOfLast
	s.BestOf, s.LastOf = 5, 3
	_, _, err := fx.svc.UpdateSettings(ctx, fx.league, s)

	var verr *apperr.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "best_of", verr.Field)

	stored, err := fx.svc.Settings(ctx, fx.league)
	require.NoError(t, err)
	assert.Equal(t, models.SelectionAll, stored.ScoreSelection)
}

func TestSetMatchupPoints_OverrideSurvivesRecalculation(t *testing.T) {
	fx := newFixture(t, "A", "B")
	_, week2 := fx.twoWeeks(t)
	ctx := context.Background()

	m, err := fx.svc.SetMatchupPoints(ctx, fx.league, week2.ID, &scoring.MatchPoints{A: 10, B: 10})
	require.NoError(t, err)
	assert.True(t, m.PointsOverride)

	fx.settings(t, func(s *models.LeagueSettings) { s.Multiplier = 1 })
	rows, err := fx.svc.Matchups(ctx, fx.league)
	require.NoError(t, err)
	assert.Equal(t, 10.0, rows[1].TeamAPoints)
	assert.Equal(t, 10.0, rows[1].TeamBPoints)
	assert.Equal(t, 4.0, *rows[1].TeamAHandicap, "handicaps still follow the policy")

	m, err = fx.svc.SetMatchupPoints(ctx, fx.league, week2.ID, nil)
	require.NoError(t, err)
	assert.False(t, m.PointsOverride)
	assert.Equal(t, 18.0, m.TeamBPoints)
}

func TestRecalculate_RollsBackOnNonFiniteScore(t *testing.T) {
	fx := newFixture(t, "A", "B", "C", "D")
	fx.twoWeeks(t)
	ctx := context.Background()

	// A row that bypassed validation, e.g. written by an older client.
	bad := models.Matchup{
		ID: uuid.New(), Week: 3, TeamAID: fx.teams["C"], TeamBID: fx.teams["D"],
		TeamAGross: f(math.Inf(1)), TeamBGross: f(40),
	}
	require.NoError(t, fx.store.Update(ctx, fx.league, func(tx repository.Tx) error {
		return tx.CreateMatchup(&bad)
	}))

	matchups, err := fx.svc.Matchups(ctx, fx.league)
	require.NoError(t, err)
	standings, err := fx.svc.Standings(ctx, fx.league)
	require.NoError(t, err)

	_, err = fx.svc.Recalculate(ctx, fx.league)
	var cerr *apperr.ComputationError
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, cerr.Record, bad.ID.String())
	assert.Equal(t, "team_a_net", cerr.Field)

	after, err := fx.svc.Matchups(ctx, fx.league)
	require.NoError(t, err)
	assert.Equal(t, matchups, after)
	afterStandings, err := fx.svc.Standings(ctx, fx.league)
	require.NoError(t, err)
	assert.Equal(t, standings, afterStandings)
}

func TestDeleteMatchup_ReplaysLaterWeeks(t *testing.T) {
	fx := newFixture(t, "A", "B")
	fx.play(t, 1, "A", "B", 40, 45, 3, 7)
	fx.play(t, 2, "A", "B", 50, 41)
	week3 := fx.play(t, 3, "A", "B", 40, 40)
	// A: (40+50)/2 = 45 -> (45-36)*0.8 = 7.2 -> 7
	assert.Equal(t, 7.0, *week3.TeamAHandicap)

	ctx := context.Background()
	rows, err := fx.svc.Matchups(ctx, fx.league)
	require.NoError(t, err)
	require.NoError(t, fx.svc.DeleteMatchup(ctx, fx.league, rows[1].ID))

	rows, err = fx.svc.Matchups(ctx, fx.league)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 3.0, *rows[1].TeamAHandicap)

	err = fx.svc.DeleteMatchup(ctx, fx.league, uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRecordBye_Flat(t *testing.T) {
	fx := newFixture(t, "A", "B", "C")
	fx.settings(t, func(s *models.LeagueSettings) {
		s.ByePointsMode = models.ByeFlat
		s.ByePointsFlat = 10
	})
	fx.play(t, 1, "A", "B", 40, 45, 3, 7)

	bye, err := fx.svc.RecordBye(context.Background(), fx.league, 1, fx.teams["C"])
	require.NoError(t, err)
	assert.Equal(t, 10.0, bye.Points)

	c := fx.standing(t, "C")
	assert.Equal(t, 10.0, c.ByePoints)
	assert.Equal(t, 10.0, c.TotalPoints)
	assert.Equal(t, 1, c.ByeCount)

	_, err = fx.svc.RecordBye(context.Background(), fx.league, 1, fx.teams["A"])
	var conflict *apperr.ConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestRecordBye_LeagueAverageFollowsTheWeek(t *testing.T) {
	fx := newFixture(t, "A", "B", "C")
	fx.settings(t, func(s *models.LeagueSettings) { s.ByePointsMode = models.ByeLeagueAverage })
	ctx := context.Background()

	bye, err := fx.svc.RecordBye(ctx, fx.league, 1, fx.teams["C"])
	require.NoError(t, err)
	assert.Equal(t, 0.0, bye.Points, "nothing to average yet")

	fx.play(t, 1, "A", "B", 40, 45, 3, 7)
	byes, err := fx.svc.Byes(ctx, fx.league)
	require.NoError(t, err)
	require.Len(t, byes, 1)
	assert.Equal(t, 10.0, byes[0].Points)
}

func TestStrokePlayWeeks(t *testing.T) {
	fx := newFixture(t, "A", "B", "C", "D")
	fx.settings(t, func(s *models.LeagueSettings) {
		s.ScoringType = models.ScoringStrokePlay
		s.PointScale = []float64{10, 8, 6}
		s.BonusShow = 1
		s.BonusBeat = 2
		s.DNPPoints = 2
		s.DNPPenalty = -1
		s.MaxDNP = 1
	})
	ctx := context.Background()
	id := fx.teams

	// Nets: A 36, B 36, C 40; D missing -> DNP.
	rows, err := fx.svc.SubmitWeek(ctx, fx.league, 1, []WeeklyEntry{
		{TeamID: id["A"], Gross: f(40), Handicap: f(4)},
		{TeamID: id["B"], Gross: f(38), Handicap: f(2)},
		{TeamID: id["C"], Gross: f(45), Handicap: f(5)},
	})
	require.NoError(t, err)
	require.Len(t, rows, 4)

	labels := map[uuid.UUID]WeekRow{}
	for _, r := range rows {
		labels[r.TeamID] = r
	}
	assert.Equal(t, "T1", labels[id["A"]].Label)
	assert.Equal(t, "T1", labels[id["B"]].Label)
	assert.Equal(t, 9.0, labels[id["A"]].Points)
	assert.Equal(t, 1.0, labels[id["A"]].Bonus)
	assert.Equal(t, "3", labels[id["C"]].Label)
	assert.Equal(t, 6.0, labels[id["C"]].Points)
	assert.Equal(t, "DNP", labels[id["D"]].Label)
	assert.Equal(t, 1.0, labels[id["D"]].Points)
	assert.Equal(t, "DNP", rows[3].Label, "DNP rows sort last")

	// Week 2 handicaps: A 3, B 2, C 7, D default 0.
	// Nets: A 38, B 35 (beats par), C 37, D 39.
	rows, err = fx.svc.SubmitWeek(ctx, fx.league, 2, []WeeklyEntry{
		{TeamID: id["A"], Gross: f(41)},
		{TeamID: id["B"], Gross: f(37)},
		{TeamID: id["C"], Gross: f(44)},
		{TeamID: id["D"], Gross: f(39)},
	})
	require.NoError(t, err)
	assert.Equal(t, id["B"], rows[0].TeamID)
	assert.Equal(t, 13.0, rows[0].Total)
	assert.Equal(t, 0.0, *rows[3].Handicap)

	a, b, c, d := fx.standing(t, "A"), fx.standing(t, "B"), fx.standing(t, "C"), fx.standing(t, "D")
	assert.Equal(t, 17.0, a.TotalPoints)
	assert.Equal(t, 23.0, b.TotalPoints)
	assert.Equal(t, 16.0, c.TotalPoints)
	assert.Equal(t, 2.0, d.TotalPoints)
	assert.Equal(t, 1, d.DNPCount)
	assert.Equal(t, 1, d.WeeksPlayed)
	assert.False(t, d.OverDNPLimit)
	assert.Equal(t, 1, b.Rank)

	// Resubmitting a recorded week conflicts on every listed team.
	_, err = fx.svc.SubmitWeek(ctx, fx.league, 2, []WeeklyEntry{{TeamID: id["A"], Gross: f(40)}})
	var conflict *apperr.ConflictError
	require.ErrorAs(t, err, &conflict)

	require.NoError(t, fx.svc.DeleteWeek(ctx, fx.league, 2))
	assert.Equal(t, 10.0, fx.standing(t, "A").TotalPoints)
	assert.ErrorIs(t, fx.svc.DeleteWeek(ctx, fx.league, 2), apperr.ErrNotFound)
}

func TestStrokePlay_ProRateRanksByPointsPerWeek(t *testing.T) {
	fx := newFixture(t, "A", "B")
	fx.settings(t, func(s *models.LeagueSettings) {
		s.ScoringType = models.ScoringStrokePlay
		s.PointScale = []float64{10, 5}
		s.ProRate = true
	})
	ctx := context.Background()
	id := fx.teams

	_, err := fx.svc.SubmitWeek(ctx, fx.league, 1, []WeeklyEntry{
		{TeamID: id["A"], Gross: f(40), Handicap: f(0)},
		{TeamID: id["B"], Gross: f(41), Handicap: f(0)},
	})
	require.NoError(t, err)
	_, err = fx.svc.SubmitWeek(ctx, fx.league, 2, []WeeklyEntry{
		{TeamID: id["A"], Gross: f(50)},
		{TeamID: id["B"], DNP: true},
	})
	require.NoError(t, err)

	// A: 10 + 10 over 2 weeks; B: 5 over 1 week.
	a, b := fx.standing(t, "A"), fx.standing(t, "B")
	assert.Equal(t, 10.0, a.PointsPerWk)
	assert.Equal(t, 5.0, b.PointsPerWk)
	assert.Equal(t, 1, a.Rank)
}

func TestProRate_ByeWeeksCountTowardPointsPerWeek(t *testing.T) {
	fx := newFixture(t, "A", "B", "C")
	fx.settings(t, func(s *models.LeagueSettings) {
		s.ByePointsMode = models.ByeFlat
		s.ByePointsFlat = 10
		s.ProRate = true
	})

	// week 1: A beats B, C has a bye worth 10
	// week 2: B 41 (hcp 7) vs C 40 (no history, hcp 0) -> nets 34/40 -> 18/2
	fx.play(t, 1, "A", "B", 40, 45, 3, 7)
	_, err := fx.svc.RecordBye(context.Background(), fx.league, 1, fx.teams["C"])
	require.NoError(t, err)
	fx.play(t, 2, "B", "C", 41, 40)

	c := fx.standing(t, "C")
	assert.Equal(t, 12.0, c.TotalPoints)
	assert.Equal(t, 1, c.WeeksPlayed)
	assert.Equal(t, 1, c.ByeCount)
	assert.Equal(t, 6.0, c.PointsPerWk)
}

func TestHybrid_FieldPointsFollowTheWholeWeek(t *testing.T) {
	fx := newFixture(t, "A", "B", "C", "D")
	fx.settings(t, func(s *models.LeagueSettings) {
		s.ScoringType = models.ScoringHybrid
		s.PointScale = []float64{5, 3, 1}
		s.HybridFieldWeight = 0.5
	})

	first := fx.play(t, 1, "A", "B", 40, 45, 3, 7) // nets 37, 38
	assert.Equal(t, 2.5, first.TeamAFieldPts)
	assert.Equal(t, 1.5, first.TeamBFieldPts)

	fx.play(t, 1, "C", "D", 39, 42, 3, 4) // nets 36, 38

	ctx := context.Background()
	rows, err := fx.svc.Matchups(ctx, fx.league)
	require.NoError(t, err)
	// C 36 -> 5, A 37 -> 3, B and D tie on 38 for slots 3 and 4 -> 0.5 each; halved.
	assert.Equal(t, 1.5, rows[0].TeamAFieldPts)
	assert.Equal(t, 0.25, rows[0].TeamBFieldPts)
	assert.Equal(t, 2.5, rows[1].TeamAFieldPts)
	assert.Equal(t, 0.25, rows[1].TeamBFieldPts)

	assert.Equal(t, 14.5, fx.standing(t, "A").TotalPoints)
	assert.Equal(t, 16.5, fx.standing(t, "C").TotalPoints)
	assert.Equal(t, 1.5, fx.standing(t, "A").FieldPoints)
}

func TestSubmit_WrongFormatIsRejected(t *testing.T) {
	fx := newFixture(t, "A", "B")
	ctx := context.Background()

	_, err := fx.svc.SubmitWeek(ctx, fx.league, 1, []WeeklyEntry{{TeamID: fx.teams["A"], Gross: f(40), Handicap: f(0)}})
	var verr *apperr.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "scoring_type", verr.Field)
}
