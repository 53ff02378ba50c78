package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/trentd187/golf-league-ledger/internal/apperr"
	"github.com/trentd187/golf-league-ledger/internal/models"
	"github.com/trentd187/golf-league-ledger/internal/repository"
)

// RecordBye credits a team with no opponent in a matchup week. The credit itself is
// derived from the league's bye mode and is kept current by every replay, so a
// league-average bye moves as the week's other matchups are entered.
func (s *Service) RecordBye(ctx context.Context, leagueID uuid.UUID, week int, teamID uuid.UUID) (models.Bye, error) {
	var out models.Bye
	err := s.update(ctx, leagueID, "bye_recorded", func(tx repository.Tx) error {
		pol, err := loadPolicy(tx)
		if err != nil {
			return err
		}
		if !pol.Scoring.UsesMatchups() {
			return apperr.Invalid("scoring_type", "%s leagues do not record byes", pol.Scoring.Type)
		}
		if week < 1 {
			return apperr.Invalid("week", "must be 1 or later")
		}
		teams, err := tx.Teams()
		if err != nil {
			return err
		}
		if _, ok := (state{teams: teams}).team(teamID); !ok {
			return apperr.Invalid("team_id", "unknown team %s", teamID)
		}
		if err := checkConflict(tx, week, teamID); err != nil {
			return err
		}

		bye := models.Bye{ID: uuid.New(), Week: week, TeamID: teamID}
		if err := tx.CreateBye(&bye); err != nil {
			return err
		}
		if _, err := s.recalculate(tx, pol); err != nil {
			return err
		}
		out, err = tx.Bye(bye.ID)
		return err
	})
	if err != nil {
		return models.Bye{}, err
	}
	s.log.WithFields(logrus.Fields{
		"league_id": leagueID,
		"week":      week,
		"team_id":   teamID,
		"points":    out.Points,
	}).Info("bye recorded")
	return out, nil
}

// DeleteBye removes a bye and replays the league.
func (s *Service) DeleteBye(ctx context.Context, leagueID, byeID uuid.UUID) error {
	return s.update(ctx, leagueID, "bye_deleted", func(tx repository.Tx) error {
		pol, err := loadPolicy(tx)
		if err != nil {
			return err
		}
		if err := tx.DeleteBye(byeID); err != nil {
			return err
		}
		_, err = s.recalculate(tx, pol)
		return err
	})
}

// Byes lists the league's byes in week order.
func (s *Service) Byes(ctx context.Context, leagueID uuid.UUID) ([]models.Bye, error) {
	var out []models.Bye
	err := s.store.View(ctx, leagueID, func(tx repository.Tx) error {
		var err error
		out, err = tx.Byes()
		return err
	})
	return out, err
}
