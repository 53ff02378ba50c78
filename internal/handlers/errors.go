package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/trentd187/golf-league-ledger/internal/apperr"
)

// ErrorHandler turns the errors handlers return into JSON responses.
// Handlers just `return err`; this is the one place that knows which ledger error
// means which status code:
//
//	*apperr.ValidationError  → 400, with the offending field
//	apperr.ErrNotFound       → 404
//	*apperr.ConflictError    → 409, with the week and the teams already recorded
//	*apperr.ComputationError → 422, the ledger was left untouched
//	*fiber.Error             → its own code (bad route params, unparsable bodies)
//	anything else            → 500, logged
func ErrorHandler(log logrus.FieldLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var (
			validation  *apperr.ValidationError
			conflict    *apperr.ConflictError
			computation *apperr.ComputationError
			fiberErr    *fiber.Error
		)
		switch {
		case errors.As(err, &validation):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": validation.Error(),
				"field": validation.Field,
			})
		case errors.Is(err, apperr.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
		case errors.As(err, &conflict):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error":    conflict.Error(),
				"week":     conflict.Week,
				"team_ids": conflict.TeamIDs,
			})
		case errors.As(err, &computation):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error":  computation.Error(),
				"field":  computation.Field,
				"record": computation.Record,
			})
		case errors.As(err, &fiberErr):
			return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
		}

		log.WithFields(logrus.Fields{
			"method": c.Method(),
			"path":   c.Path(),
		}).WithError(err).Error("request failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
}
