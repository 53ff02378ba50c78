// Package handlers contains the HTTP route handler functions for the league ledger API.
//
// Each exported function follows the "handler factory" pattern: it takes the
// *ledger.Service and returns a fiber.Handler (a function that handles a single
// HTTP request). This lets us inject the service without using global variables.
//
// The league a request acts on always comes from the caller's token (see
// middleware.Auth), never from the URL. Handlers return errors instead of writing
// error responses themselves; ErrorHandler maps them to status codes.
package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/trentd187/golf-league-ledger/internal/ledger"
	"github.com/trentd187/golf-league-ledger/internal/middleware"
)

// leagueID reads the league the Auth middleware stored for this request.
func leagueID(c *fiber.Ctx) uuid.UUID {
	id, _ := c.Locals(middleware.LocalLeagueID).(uuid.UUID)
	return id
}

// idParam parses a UUID route parameter such as ":id".
func idParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

// parseBody unmarshals the JSON request body into dst.
func parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	return nil
}

// GetSettings handles GET /api/v1/league/settings.
func GetSettings(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		settings, err := svc.Settings(c.UserContext(), leagueID(c))
		if err != nil {
			return err
		}
		return c.JSON(settings)
	}
}

// UpdateSettings handles PUT /api/v1/league/settings.
//
// The body is laid over the current settings, so the console may send only the
// fields it changes. The new policy is validated, saved and applied to the whole
// season in one transaction; the response carries what the recalculation touched.
func UpdateSettings(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		league := leagueID(c)
		settings, err := svc.Settings(c.UserContext(), league)
		if err != nil {
			return err
		}
		if err := parseBody(c, &settings); err != nil {
			return err
		}
		// The league always comes from the token, whatever the body says.
		settings.LeagueID = league

		saved, summary, err := svc.UpdateSettings(c.UserContext(), league, settings)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"settings":      saved,
			"recalculation": summary,
		})
	}
}

// Recalculate handles POST /api/v1/league/recalculate.
func Recalculate(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		summary, err := svc.Recalculate(c.UserContext(), leagueID(c))
		if err != nil {
			return err
		}
		return c.JSON(summary)
	}
}

// GetStandings handles GET /api/v1/league/standings. Rows come back in rank order.
func GetStandings(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		standings, err := svc.Standings(c.UserContext(), leagueID(c))
		if err != nil {
			return err
		}
		return c.JSON(standings)
	}
}
