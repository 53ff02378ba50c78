package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/trentd187/golf-league-ledger/internal/ledger"
)

// ByeRequest is the body of POST /api/v1/weeks/:week/byes.
type ByeRequest struct {
	TeamID uuid.UUID `json:"team_id"`
}

// RecordBye handles POST /api/v1/weeks/:week/byes.
func RecordBye(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		week, err := weekParam(c)
		if err != nil {
			return err
		}
		var req ByeRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}
		bye, err := svc.RecordBye(c.UserContext(), leagueID(c), week, req.TeamID)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(bye)
	}
}

// ListByes handles GET /api/v1/byes.
func ListByes(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		byes, err := svc.Byes(c.UserContext(), leagueID(c))
		if err != nil {
			return err
		}
		return c.JSON(byes)
	}
}

// DeleteBye handles DELETE /api/v1/byes/:id.
func DeleteBye(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return err
		}
		if err := svc.DeleteBye(c.UserContext(), leagueID(c), id); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
