package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/trentd187/golf-league-ledger/internal/models"
	"github.com/trentd187/golf-league-ledger/internal/policy"
	"github.com/trentd187/golf-league-ledger/internal/repository"
)

// RecalcSummary reports what a recalculation touched.
type RecalcSummary struct {
	Matchups     int `json:"matchups"`
	WeeklyScores int `json:"weekly_scores"`
	Byes         int `json:"byes"`
	Teams        int `json:"teams"`
	// RowsWritten counts records whose stored values actually changed.
	RowsWritten int `json:"rows_written"`
}

// Recalculate replays the whole season under the league's current policy and
// rewrites every derived value: handicaps, nets, suggested match points, field
// points, bye credits and standings. It runs as a single transaction; any error,
// including a non-finite intermediate value, leaves the stored ledger untouched.
//
// Running it twice in a row writes nothing the second time.
func (s *Service) Recalculate(ctx context.Context, leagueID uuid.UUID) (RecalcSummary, error) {
	var sum RecalcSummary
	err := s.update(ctx, leagueID, "recalculated", func(tx repository.Tx) error {
		pol, err := loadPolicy(tx)
		if err != nil {
			return err
		}
		sum, err = s.recalculate(tx, pol)
		return err
	})
	if err != nil {
		s.log.WithFields(logrus.Fields{"league_id": leagueID}).WithError(err).Warn("recalculation rolled back")
		return RecalcSummary{}, err
	}
	return sum, nil
}

// UpdateSettings validates and stores a new league policy, then recalculates the
// season under it, all in one transaction. An invalid policy is rejected before
// anything is written.
func (s *Service) UpdateSettings(ctx context.Context, leagueID uuid.UUID, settings models.LeagueSettings) (models.LeagueSettings, RecalcSummary, error) {
	pol, err := policy.FromSettings(settings)
	if err != nil {
		return models.LeagueSettings{}, RecalcSummary{}, err
	}

	var sum RecalcSummary
	err = s.update(ctx, leagueID, "settings_changed", func(tx repository.Tx) error {
		if err := tx.SaveSettings(&settings); err != nil {
			return err
		}
		var err error
		sum, err = s.recalculate(tx, pol)
		return err
	})
	if err != nil {
		return models.LeagueSettings{}, RecalcSummary{}, err
	}
	s.log.WithFields(logrus.Fields{
		"league_id":    leagueID,
		"scoring_type": settings.ScoringType,
	}).Info("league settings updated")
	return settings, sum, nil
}

// recalculate is the replay itself. Every write to the ledger ends with it, inside
// the write's own transaction, so a backfilled or deleted week flows through to the
// handicaps of every later week.
//
// Matchups are walked in (week, insertion) order while handicap history is
// accumulated in memory, so every handicap sees exactly the gross scores of earlier
// weeks as they stand now rather than as they stood when first submitted. Stroke-play
// rows are replayed the same way with their own history.
func (s *Service) recalculate(tx repository.Tx, pol policy.Policy) (RecalcSummary, error) {
	start := time.Now()
	before, err := loadState(tx)
	if err != nil {
		return RecalcSummary{}, err
	}
	st := cloneState(before)

	if err := replayMatchups(st.matchups, pol); err != nil {
		return RecalcSummary{}, err
	}
	if err := replayWeekly(st.weekly, pol); err != nil {
		return RecalcSummary{}, err
	}
	if err := applyFieldPoints(st.matchups, pol); err != nil {
		return RecalcSummary{}, err
	}
	if err := applyByePoints(st.byes, st.matchups, pol); err != nil {
		return RecalcSummary{}, err
	}

	written, err := persistChanges(tx, st, before)
	if err != nil {
		return RecalcSummary{}, err
	}
	standings := foldStandings(st.teams, st.matchups, st.weekly, st.byes, pol)
	if err := tx.ReplaceStandings(standings); err != nil {
		return RecalcSummary{}, err
	}

	sum := RecalcSummary{
		Matchups:     len(st.matchups),
		WeeklyScores: len(st.weekly),
		Byes:         len(st.byes),
		Teams:        len(st.teams),
		RowsWritten:  written,
	}
	s.log.WithFields(logrus.Fields{
		"matchups":      sum.Matchups,
		"weekly_scores": sum.WeeklyScores,
		"byes":          sum.Byes,
		"rows_written":  sum.RowsWritten,
		"duration":      time.Since(start).String(),
	}).Info("ledger recalculated")
	return sum, nil
}

// replayMatchups recomputes every matchup in place. Forfeits are carried through
// unchanged; manual handicaps (week 1, substitutes) are kept; overridden points are
// kept while handicaps and nets still update.
func replayMatchups(rows []models.Matchup, pol policy.Policy) error {
	hist := make(histories)
	for i := range rows {
		m := &rows[i]
		if err := scoreMatchup(m, hist, pol); err != nil {
			return err
		}
		if m.Forfeit {
			continue
		}
		// The calculator ignores entries from the target week itself, so later
		// matchups of this week are unaffected.
		hist.add(m.TeamAID, m.Week, m.TeamAGross, m.TeamASub)
		hist.add(m.TeamBID, m.Week, m.TeamBGross, m.TeamBSub)
	}
	return nil
}
