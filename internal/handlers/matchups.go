package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/trentd187/golf-league-ledger/internal/ledger"
	"github.com/trentd187/golf-league-ledger/internal/scoring"
)

// PreviewMatchup handles POST /api/v1/matchups/preview.
// It answers "what would this matchup score?" without recording anything.
func PreviewMatchup(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in ledger.MatchupInput
		if err := parseBody(c, &in); err != nil {
			return err
		}
		preview, err := svc.PreviewMatchup(c.UserContext(), leagueID(c), in)
		if err != nil {
			return err
		}
		return c.JSON(preview)
	}
}

// SubmitMatchup handles POST /api/v1/matchups.
func SubmitMatchup(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in ledger.MatchupInput
		if err := parseBody(c, &in); err != nil {
			return err
		}
		m, err := svc.SubmitMatchup(c.UserContext(), leagueID(c), in)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(m)
	}
}

// ListMatchups handles GET /api/v1/matchups.
func ListMatchups(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := svc.Matchups(c.UserContext(), leagueID(c))
		if err != nil {
			return err
		}
		return c.JSON(rows)
	}
}

// SetMatchupPoints handles PUT /api/v1/matchups/:id/points.
// Body: {"team_a_points": 14, "team_b_points": 6}
func SetMatchupPoints(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return err
		}
		var pts scoring.MatchPoints
		if err := parseBody(c, &pts); err != nil {
			return err
		}
		m, err := svc.SetMatchupPoints(c.UserContext(), leagueID(c), id, &pts)
		if err != nil {
			return err
		}
		return c.JSON(m)
	}
}

// ClearMatchupPoints handles DELETE /api/v1/matchups/:id/points, dropping an
// admin override so the matchup goes back to the suggested split.
func ClearMatchupPoints(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return err
		}
		m, err := svc.SetMatchupPoints(c.UserContext(), leagueID(c), id, nil)
		if err != nil {
			return err
		}
		return c.JSON(m)
	}
}

// DeleteMatchup handles DELETE /api/v1/matchups/:id.
func DeleteMatchup(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return err
		}
		if err := svc.DeleteMatchup(c.UserContext(), leagueID(c), id); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
