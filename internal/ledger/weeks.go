package ledger

import (
	"cmp"
	"context"
	"slices"
	"strconv"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/trentd187/golf-league-ledger/internal/apperr"
	"github.com/trentd187/golf-league-ledger/internal/models"
	"github.com/trentd187/golf-league-ledger/internal/policy"
	"github.com/trentd187/golf-league-ledger/internal/repository"
)

// WeeklyEntry is one team's line on a stroke-play score sheet. Handicap is read only
// in week 1 or for a substitute.
type WeeklyEntry struct {
	TeamID   uuid.UUID `json:"team_id"`
	Gross    *float64  `json:"gross"`
	Handicap *float64  `json:"handicap"`
	Sub      bool      `json:"sub"`
	DNP      bool      `json:"dnp"`
}

// WeekRow is a ranked stroke-play result with its display label ("1", "T2", "DNP").
type WeekRow struct {
	models.WeeklyScore
	TeamName string  `json:"team_name"`
	Label    string  `json:"label"`
	Total    float64 `json:"total"`
}

// PreviewWeek ranks a stroke-play week without writing anything. Active teams missing
// from entries are shown as DNP, exactly as a submit would record them.
func (s *Service) PreviewWeek(ctx context.Context, leagueID uuid.UUID, week int, entries []WeeklyEntry) ([]WeekRow, error) {
	var out []WeekRow
	err := s.store.View(ctx, leagueID, func(tx repository.Tx) error {
		pol, err := loadPolicy(tx)
		if err != nil {
			return err
		}
		rows, st, err := prepareWeek(tx, pol, week, entries)
		if err != nil {
			return err
		}
		out = weekRows(rows, st)
		return nil
	})
	return out, err
}

// SubmitWeek records a whole stroke-play week in one go. Every team on the sheet (and
// every active team added as DNP) must be free in that week, checked inside the
// insert transaction.
func (s *Service) SubmitWeek(ctx context.Context, leagueID uuid.UUID, week int, entries []WeeklyEntry) ([]WeekRow, error) {
	var out []WeekRow
	err := s.update(ctx, leagueID, "week_submitted", func(tx repository.Tx) error {
		pol, err := loadPolicy(tx)
		if err != nil {
			return err
		}
		rows, _, err := prepareWeek(tx, pol, week, entries)
		if err != nil {
			return err
		}
		teams := make([]uuid.UUID, len(rows))
		for i, r := range rows {
			teams[i] = r.TeamID
		}
		if err := checkConflict(tx, week, teams...); err != nil {
			return err
		}
		if err := tx.CreateWeeklyScores(rows); err != nil {
			return err
		}
		if _, err := s.recalculate(tx, pol); err != nil {
			return err
		}
		st, err := loadState(tx)
		if err != nil {
			return err
		}
		out = weekRows(rowsInWeek(st.weekly, week), st)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"league_id": leagueID,
		"week":      week,
		"teams":     len(out),
	}).Info("stroke-play week submitted")
	return out, nil
}

// DeleteWeek removes every stroke-play score of a week and replays the league.
func (s *Service) DeleteWeek(ctx context.Context, leagueID uuid.UUID, week int) error {
	return s.update(ctx, leagueID, "week_deleted", func(tx repository.Tx) error {
		pol, err := loadPolicy(tx)
		if err != nil {
			return err
		}
		n, err := tx.DeleteWeek(week)
		if err != nil {
			return err
		}
		if n == 0 {
			return apperr.ErrNotFound
		}
		_, err = s.recalculate(tx, pol)
		return err
	})
}

// Week returns the stored results of one stroke-play week, ranked.
func (s *Service) Week(ctx context.Context, leagueID uuid.UUID, week int) ([]WeekRow, error) {
	var out []WeekRow
	err := s.store.View(ctx, leagueID, func(tx repository.Tx) error {
		st, err := loadState(tx)
		if err != nil {
			return err
		}
		rows := rowsInWeek(st.weekly, week)
		if len(rows) == 0 {
			return apperr.ErrNotFound
		}
		out = weekRows(rows, st)
		return nil
	})
	return out, err
}

func prepareWeek(tx repository.Tx, pol policy.Policy, week int, entries []WeeklyEntry) ([]models.WeeklyScore, state, error) {
	if pol.Scoring.Type != models.ScoringStrokePlay {
		return nil, state{}, apperr.Invalid("scoring_type", "%s leagues do not record stroke-play weeks", pol.Scoring.Type)
	}
	if week < 1 {
		return nil, state{}, apperr.Invalid("week", "must be 1 or later")
	}
	st, err := loadState(tx)
	if err != nil {
		return nil, state{}, err
	}

	listed := make(map[uuid.UUID]bool, len(entries))
	played := 0
	rows := make([]models.WeeklyScore, 0, len(st.teams))
	for _, e := range entries {
		if _, ok := st.team(e.TeamID); !ok {
			return nil, state{}, apperr.Invalid("team_id", "unknown team %s", e.TeamID)
		}
		if listed[e.TeamID] {
			return nil, state{}, apperr.Invalid("team_id", "team %s is listed twice", e.TeamID)
		}
		listed[e.TeamID] = true

		row := models.WeeklyScore{ID: uuid.New(), Week: week, TeamID: e.TeamID, Sub: e.Sub, DNP: e.DNP}
		if !e.DNP {
			if err := validateGross("gross", e.Gross); err != nil {
				return nil, state{}, err
			}
			row.Gross = clonePtr(e.Gross)
			if manualHandicap(week, e.Sub) {
				if err := validateManualHandicap("handicap", e.Handicap); err != nil {
					return nil, state{}, err
				}
				row.Handicap = clonePtr(e.Handicap)
			}
			played++
		}
		rows = append(rows, row)
	}
	if played == 0 {
		return nil, state{}, apperr.Invalid("entries", "at least one team must have played")
	}

	for _, t := range st.teams {
		if t.Active && !listed[t.ID] {
			rows = append(rows, models.WeeklyScore{ID: uuid.New(), Week: week, TeamID: t.ID, DNP: true})
		}
	}

	if err := scoreWeek(rows, weeklyHistories(st.weekly, week), pol); err != nil {
		return nil, state{}, err
	}
	return rows, st, nil
}

func rowsInWeek(rows []models.WeeklyScore, week int) []models.WeeklyScore {
	var out []models.WeeklyScore
	for _, r := range rows {
		if r.Week == week {
			out = append(out, r)
		}
	}
	return out
}

// weekRows decorates and orders a week's rows by position, DNPs last.
func weekRows(rows []models.WeeklyScore, st state) []WeekRow {
	out := make([]WeekRow, 0, len(rows))
	for _, r := range rows {
		name := r.TeamID.String()
		if t, ok := st.team(r.TeamID); ok {
			name = t.Name
		}
		out = append(out, WeekRow{WeeklyScore: r, TeamName: name, Label: positionLabel(r), Total: r.Points + r.Bonus})
	}
	sortWeekRows(out)
	return out
}

func positionLabel(r models.WeeklyScore) string {
	switch {
	case r.DNP || r.Position == nil:
		return "DNP"
	case r.Tied:
		return "T" + strconv.Itoa(*r.Position)
	default:
		return strconv.Itoa(*r.Position)
	}
}

func sortWeekRows(rows []WeekRow) {
	slices.SortStableFunc(rows, func(a, b WeekRow) int {
		switch {
		case a.Position == nil && b.Position == nil:
			return 0
		case a.Position == nil:
			return 1
		case b.Position == nil:
			return -1
		}
		return cmp.Compare(*a.Position, *b.Position)
	})
}
