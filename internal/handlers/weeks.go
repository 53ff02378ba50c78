package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/trentd187/golf-league-ledger/internal/ledger"
)

// WeekRequest is the body of the stroke-play score sheet routes.
// Active teams left off the sheet are recorded as DNP.
type WeekRequest struct {
	Entries []ledger.WeeklyEntry `json:"entries"`
}

// weekParam reads the ":week" route parameter.
func weekParam(c *fiber.Ctx) (int, error) {
	week, err := c.ParamsInt("week")
	if err != nil || week < 1 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid week")
	}
	return week, nil
}

// PreviewWeek handles POST /api/v1/weeks/:week/scores/preview.
func PreviewWeek(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		week, err := weekParam(c)
		if err != nil {
			return err
		}
		var req WeekRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}
		rows, err := svc.PreviewWeek(c.UserContext(), leagueID(c), week, req.Entries)
		if err != nil {
			return err
		}
		return c.JSON(rows)
	}
}

// SubmitWeek handles POST /api/v1/weeks/:week/scores.
func SubmitWeek(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		week, err := weekParam(c)
		if err != nil {
			return err
		}
		var req WeekRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}
		rows, err := svc.SubmitWeek(c.UserContext(), leagueID(c), week, req.Entries)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(rows)
	}
}

// GetWeek handles GET /api/v1/weeks/:week/scores.
func GetWeek(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		week, err := weekParam(c)
		if err != nil {
			return err
		}
		rows, err := svc.Week(c.UserContext(), leagueID(c), week)
		if err != nil {
			return err
		}
		return c.JSON(rows)
	}
}

// DeleteWeek handles DELETE /api/v1/weeks/:week/scores.
func DeleteWeek(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		week, err := weekParam(c)
		if err != nil {
			return err
		}
		if err := svc.DeleteWeek(c.UserContext(), leagueID(c), week); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
