package handlers

import (
	"bufio"

	"github.com/gofiber/fiber/v2"

	"github.com/trentd187/golf-league-ledger/internal/live"
)

// StreamLeague handles GET /api/v1/league/stream.
//
// It holds the connection open as a server-sent event stream and writes a
// "standings_updated" event every time a write to the caller's league commits.
// Scoreboards re-fetch /league/standings when one arrives.
//
// fasthttp (which fiber runs on) hands us a buffered writer in a callback that
// runs after this handler returns; the stream lives inside that callback.
func StreamLeague(hub *live.Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		league := leagueID(c).String()

		c.Set("Content-Type", "text/event-stream")
		c.Set("Cache-Control", "no-cache")
		c.Set("Connection", "keep-alive")
		c.Set("X-Accel-Buffering", "no") // stop nginx from buffering the stream

		c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
			hub.Stream(league, w)
		})
		return nil
	}
}
