package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/trentd187/golf-league-ledger/internal/ledger"
	"github.com/trentd187/golf-league-ledger/internal/live"
	"github.com/trentd187/golf-league-ledger/internal/middleware"
)

// Deps is everything the routes need.
type Deps struct {
	JWTSecret string
	Ledger    *ledger.Service
	Hub       *live.Hub
	Ping      PingFunc
}

// Register mounts every route on app.
//
// Reads are open to any authenticated member of the league; writes need the
// admin or manager role (middleware.CanWrite).
func Register(app *fiber.App, d Deps) {
	// --- Public routes (no auth required) ---
	app.Get("/health", HealthCheck)
	app.Get("/ready", Ready(d.Ping))

	// --- Authenticated API routes ---
	// Route group pattern: app.Group(prefix, middlewares...) applies the middleware
	// to every route registered on the returned group.
	api := app.Group("/api/v1", middleware.Auth(d.JWTSecret))
	write := middleware.CanWrite()

	// League policy and derived standings
	api.Get("/league/settings", GetSettings(d.Ledger))
	api.Put("/league/settings", write, UpdateSettings(d.Ledger))
	api.Post("/league/recalculate", write, Recalculate(d.Ledger))
	api.Get("/league/standings", GetStandings(d.Ledger))
	api.Get("/league/stream", StreamLeague(d.Hub))

	// Head-to-head results (match play and hybrid leagues)
	api.Get("/matchups", ListMatchups(d.Ledger))
	api.Post("/matchups/preview", PreviewMatchup(d.Ledger))
	api.Post("/matchups", write, SubmitMatchup(d.Ledger))
	api.Put("/matchups/:id/points", write, SetMatchupPoints(d.Ledger))
	api.Delete("/matchups/:id/points", write, ClearMatchupPoints(d.Ledger))
	api.Delete("/matchups/:id", write, DeleteMatchup(d.Ledger))

	// Stroke-play score sheets
	api.Get("/weeks/:week/scores", GetWeek(d.Ledger))
	api.Post("/weeks/:week/scores/preview", PreviewWeek(d.Ledger))
	api.Post("/weeks/:week/scores", write, SubmitWeek(d.Ledger))
	api.Delete("/weeks/:week/scores", write, DeleteWeek(d.Ledger))

	// Byes
	api.Get("/byes", ListByes(d.Ledger))
	api.Post("/weeks/:week/byes", write, RecordBye(d.Ledger))
	api.Delete("/byes/:id", write, DeleteBye(d.Ledger))
}
