package ledger

import (
	"context"
	"math"
	"slices"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/trentd187/golf-league-ledger/internal/apperr"
	"github.com/trentd187/golf-league-ledger/internal/models"
	"github.com/trentd187/golf-league-ledger/internal/policy"
	"github.com/trentd187/golf-league-ledger/internal/repository"
	"github.com/trentd187/golf-league-ledger/internal/scoring"
)

// MatchupInput is a head-to-head result as the admin console enters it.
//
// Handicaps are only read for sides that need a manual one (week 1, or a side
// played by a substitute); every other handicap is computed from history.
// ForfeitTeamID marks a forfeit: no scores are needed and the other side takes the
// whole pool. Points, when set, is the admin's chosen split and must sum to 20.
type MatchupInput struct {
	Week          int                  `json:"week"`
	TeamAID       uuid.UUID            `json:"team_a_id"`
	TeamBID       uuid.UUID            `json:"team_b_id"`
	TeamAGross    *float64             `json:"team_a_gross"`
	TeamBGross    *float64             `json:"team_b_gross"`
	TeamAHandicap *float64             `json:"team_a_handicap"`
	TeamBHandicap *float64             `json:"team_b_handicap"`
	TeamASub      bool                 `json:"team_a_sub"`
	TeamBSub      bool                 `json:"team_b_sub"`
	ForfeitTeamID *uuid.UUID           `json:"forfeit_team_id"`
	Points        *scoring.MatchPoints `json:"points"`
}

// MatchupPreview is what a submit of the same input would store.
type MatchupPreview struct {
	Week           int                 `json:"week"`
	TeamAID        uuid.UUID           `json:"team_a_id"`
	TeamBID        uuid.UUID           `json:"team_b_id"`
	TeamAHandicap  *float64            `json:"team_a_handicap"`
	TeamBHandicap  *float64            `json:"team_b_handicap"`
	TeamANet       *float64            `json:"team_a_net"`
	TeamBNet       *float64            `json:"team_b_net"`
	Suggested      scoring.MatchPoints `json:"suggested_points"`
	Points         scoring.MatchPoints `json:"points"`
	PointsOverride bool                `json:"points_overridden"`
	Forfeit        bool                `json:"forfeit"`
}

// PreviewMatchup computes handicaps, nets and the suggested split for a matchup
// without writing anything. It may be called any number of times concurrently.
func (s *Service) PreviewMatchup(ctx context.Context, leagueID uuid.UUID, in MatchupInput) (MatchupPreview, error) {
	var out MatchupPreview
	err := s.store.View(ctx, leagueID, func(tx repository.Tx) error {
		pol, err := loadPolicy(tx)
		if err != nil {
			return err
		}
		m, suggested, err := prepareMatchup(tx, pol, in)
		if err != nil {
			return err
		}
		out = MatchupPreview{
			Week:           m.Week,
			TeamAID:        m.TeamAID,
			TeamBID:        m.TeamBID,
			TeamAHandicap:  m.TeamAHandicap,
			TeamBHandicap:  m.TeamBHandicap,
			TeamANet:       m.TeamANet,
			TeamBNet:       m.TeamBNet,
			Suggested:      suggested,
			Points:         scoring.MatchPoints{A: m.TeamAPoints, B: m.TeamBPoints},
			PointsOverride: m.PointsOverride,
			Forfeit:        m.Forfeit,
		}
		return nil
	})
	return out, err
}

// SubmitMatchup records a matchup and replays the league so standings (and any
// later weeks) reflect it. A team that already has a matchup, stroke-play score or
// bye in the week is rejected with a ConflictError; the check runs inside the insert
// transaction, so two concurrent submissions for the same team cannot both succeed.
func (s *Service) SubmitMatchup(ctx context.Context, leagueID uuid.UUID, in MatchupInput) (models.Matchup, error) {
	var out models.Matchup
	err := s.update(ctx, leagueID, "matchup_submitted", func(tx repository.Tx) error {
		pol, err := loadPolicy(tx)
		if err != nil {
			return err
		}
		m, _, err := prepareMatchup(tx, pol, in)
		if err != nil {
			return err
		}
		if err := checkConflict(tx, m.Week, m.TeamAID, m.TeamBID); err != nil {
			return err
		}
		if err := tx.CreateMatchup(&m); err != nil {
			return err
		}
		if _, err := s.recalculate(tx, pol); err != nil {
			return err
		}
		out, err = tx.Matchup(m.ID)
		return err
	})
	if err != nil {
		return models.Matchup{}, err
	}
	s.log.WithFields(logrus.Fields{
		"league_id":  leagueID,
		"matchup_id": out.ID,
		"week":       out.Week,
		"forfeit":    out.Forfeit,
	}).Info("matchup submitted")
	return out, nil
}

// SetMatchupPoints replaces a matchup's split with an admin-chosen one, which later
// recalculations keep. A nil split clears the override and restores the suggestion.
func (s *Service) SetMatchupPoints(ctx context.Context, leagueID, matchupID uuid.UUID, pts *scoring.MatchPoints) (models.Matchup, error) {
	var out models.Matchup
	err := s.update(ctx, leagueID, "matchup_points_changed", func(tx repository.Tx) error {
		pol, err := loadPolicy(tx)
		if err != nil {
			return err
		}
		m, err := tx.Matchup(matchupID)
		if err != nil {
			return err
		}
		if m.Forfeit {
			return apperr.Invalid("points", "forfeit points are fixed")
		}
		if pts == nil {
			m.PointsOverride = false
		} else {
			if err := scoring.ValidateMatchPoints(*pts); err != nil {
				return err
			}
			m.TeamAPoints, m.TeamBPoints = pts.A, pts.B
			m.PointsOverride = true
		}
		if err := tx.SaveMatchup(&m); err != nil {
			return err
		}
		if _, err := s.recalculate(tx, pol); err != nil {
			return err
		}
		out, err = tx.Matchup(matchupID)
		return err
	})
	return out, err
}

// DeleteMatchup removes a matchup and replays the league without it.
func (s *Service) DeleteMatchup(ctx context.Context, leagueID, matchupID uuid.UUID) error {
	return s.update(ctx, leagueID, "matchup_deleted", func(tx repository.Tx) error {
		pol, err := loadPolicy(tx)
		if err != nil {
			return err
		}
		if err := tx.DeleteMatchup(matchupID); err != nil {
			return err
		}
		_, err = s.recalculate(tx, pol)
		return err
	})
}

// Matchups lists the league's matchups in replay order.
func (s *Service) Matchups(ctx context.Context, leagueID uuid.UUID) ([]models.Matchup, error) {
	var out []models.Matchup
	err := s.store.View(ctx, leagueID, func(tx repository.Tx) error {
		var err error
		out, err = tx.Matchups()
		return err
	})
	return out, err
}

// prepareMatchup validates the input and builds the record a submit would insert,
// along with the suggested split for its nets.
func prepareMatchup(tx repository.Tx, pol policy.Policy, in MatchupInput) (models.Matchup, scoring.MatchPoints, error) {
	if !pol.Scoring.UsesMatchups() {
		return models.Matchup{}, scoring.MatchPoints{}, apperr.Invalid("scoring_type", "%s leagues do not record matchups", pol.Scoring.Type)
	}
	st, err := loadState(tx)
	if err != nil {
		return models.Matchup{}, scoring.MatchPoints{}, err
	}
	if err := validateMatchupInput(in, st); err != nil {
		return models.Matchup{}, scoring.MatchPoints{}, err
	}

	m := models.Matchup{
		ID:      uuid.New(),
		Week:    in.Week,
		TeamAID: in.TeamAID,
		TeamBID: in.TeamBID,
	}

	if in.ForfeitTeamID != nil {
		fid := *in.ForfeitTeamID
		pts := scoring.ForfeitPoints(fid == in.TeamAID)
		m.Forfeit, m.ForfeitTeamID = true, &fid
		m.TeamAPoints, m.TeamBPoints = pts.A, pts.B
		return m, pts, nil
	}

	m.TeamAGross, m.TeamBGross = clonePtr(in.TeamAGross), clonePtr(in.TeamBGross)
	m.TeamASub, m.TeamBSub = in.TeamASub, in.TeamBSub
	if manualHandicap(in.Week, in.TeamASub) {
		m.TeamAHandicap = clonePtr(in.TeamAHandicap)
	}
	if manualHandicap(in.Week, in.TeamBSub) {
		m.TeamBHandicap = clonePtr(in.TeamBHandicap)
	}

	if err := scoreMatchup(&m, matchupHistories(st.matchups, in.Week), pol); err != nil {
		return models.Matchup{}, scoring.MatchPoints{}, err
	}
	suggested := scoring.MatchPoints{A: m.TeamAPoints, B: m.TeamBPoints}

	if in.Points != nil && *in.Points != suggested {
		if err := scoring.ValidateMatchPoints(*in.Points); err != nil {
			return models.Matchup{}, scoring.MatchPoints{}, err
		}
		m.TeamAPoints, m.TeamBPoints = in.Points.A, in.Points.B
		m.PointsOverride = true
	}
	return m, suggested, nil
}

func validateMatchupInput(in MatchupInput, st state) error {
	if in.Week < 1 {
		return apperr.Invalid("week", "must be 1 or later")
	}
	if _, ok := st.team(in.TeamAID); !ok {
		return apperr.Invalid("team_a_id", "unknown team %s", in.TeamAID)
	}
	if _, ok := st.team(in.TeamBID); !ok {
		return apperr.Invalid("team_b_id", "unknown team %s", in.TeamBID)
	}
	if in.TeamAID == in.TeamBID {
		return apperr.Invalid("team_b_id", "a team cannot play itself")
	}

	if in.ForfeitTeamID != nil {
		if *in.ForfeitTeamID != in.TeamAID && *in.ForfeitTeamID != in.TeamBID {
			return apperr.Invalid("forfeit_team_id", "must be one of the two teams")
		}
		return nil
	}

	sides := []struct {
		prefix   string
		gross    *float64
		handicap *float64
		sub      bool
	}{
		{"team_a", in.TeamAGross, in.TeamAHandicap, in.TeamASub},
		{"team_b", in.TeamBGross, in.TeamBHandicap, in.TeamBSub},
	}
	for _, side := range sides {
		if err := validateGross(side.prefix+"_gross", side.gross); err != nil {
			return err
		}
		if manualHandicap(in.Week, side.sub) {
			if err := validateManualHandicap(side.prefix+"_handicap", side.handicap); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateGross(field string, gross *float64) error {
	if gross == nil {
		return apperr.Invalid(field, "required")
	}
	if math.IsNaN(*gross) || math.IsInf(*gross, 0) || *gross <= 0 {
		return apperr.Invalid(field, "must be a positive number")
	}
	return nil
}

func validateManualHandicap(field string, hcp *float64) error {
	if hcp == nil {
		return apperr.Invalid(field, "must be entered manually in week 1 and for substitutes")
	}
	if math.IsNaN(*hcp) || math.IsInf(*hcp, 0) {
		return apperr.Invalid(field, "must be a finite number")
	}
	return nil
}

// checkConflict rejects a submission when any of the teams already has a record in
// the week, naming every conflicting team.
func checkConflict(tx repository.Tx, week int, teams ...uuid.UUID) error {
	recorded, err := tx.TeamsRecordedInWeek(week)
	if err != nil {
		return err
	}
	var clash []uuid.UUID
	for _, id := range teams {
		if slices.Contains(recorded, id) {
			clash = append(clash, id)
		}
	}
	if len(clash) > 0 {
		return &apperr.ConflictError{Week: week, TeamIDs: clash}
	}
	return nil
}
