// cmd/server/main.go
// This is the entry point for the league ledger API server.
// In Go, the "main" package and its "main()" function is where the program starts executing.
// The "cmd/server" directory follows a common Go convention: the cmd/ folder holds executable
// binaries, and internal/ holds reusable packages that are not meant to be imported by other projects.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	// fiber is a fast HTTP web framework inspired by Express.js
	"github.com/gofiber/fiber/v2"
	// cors handles Cross-Origin Resource Sharing. It allows the admin console to talk to
	// the API even though they're running on different origins (hosts/ports)
	"github.com/gofiber/fiber/v2/middleware/cors"
	// logger prints request details (method, path, status, duration) to stdout
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	// Internal packages: our own code, imported by module path
	"github.com/trentd187/golf-league-ledger/internal/config"
	"github.com/trentd187/golf-league-ledger/internal/database"
	"github.com/trentd187/golf-league-ledger/internal/handlers"
	"github.com/trentd187/golf-league-ledger/internal/ledger"
	"github.com/trentd187/golf-league-ledger/internal/live"
	"github.com/trentd187/golf-league-ledger/internal/logger"
	"github.com/trentd187/golf-league-ledger/internal/middleware"
	"github.com/trentd187/golf-league-ledger/internal/models"
	"github.com/trentd187/golf-league-ledger/internal/repository"
)

func main() {
	// Load configuration from environment variables (and optionally a .env file).
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	// Pick the storage backend. Postgres is the real deployment; the in-memory store
	// lets the admin console be developed without a database.
	store, ping := openStore(cfg, log)

	// ctx is cancelled on SIGINT/SIGTERM, which stops the live hub and the server.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The Hub pushes a "standings_updated" event to connected scoreboards after every
	// committed write. "go hub.Run(ctx)" starts its event loop in the background.
	hub := live.NewHub(log)
	go hub.Run(ctx)

	svc := ledger.New(store, ledger.WithLogger(log), ledger.WithNotifier(hub))

	// Create a new Fiber app (our HTTP server). ErrorHandler turns the ledger's typed
	// errors into status codes, so handlers can simply return them.
	app := fiber.New(fiber.Config{
		AppName:      "Golf League Ledger",
		ErrorHandler: handlers.ErrorHandler(log),
	})

	// --- Global middleware ---
	app.Use(fiberlogger.New())
	// In production, lock this down to the admin console's domain.
	app.Use(cors.New())

	handlers.Register(app, handlers.Deps{
		JWTSecret: cfg.JWTSecret,
		Ledger:    svc,
		Hub:       hub,
		Ping:      ping,
	})

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.WithError(err).Error("forced shutdown")
		}
	}()

	// ":" + cfg.Port produces a string like ":8080", listening on all network interfaces.
	log.WithFields(logrus.Fields{"port": cfg.Port, "store": cfg.Store, "env": cfg.Env}).Info("starting server")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

// openStore connects the configured backend and returns it with a readiness check.
func openStore(cfg *config.Config, log *logrus.Logger) (repository.Store, handlers.PingFunc) {
	if cfg.Store == config.StoreMemory {
		store := repository.NewMemoryStore()
		if cfg.IsDevelopment() {
			seedDemoLeague(cfg, store, log)
		}
		return store, nil
	}

	db, err := database.Connect(cfg.DatabaseURL, cfg.IsDevelopment(), log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	// Run any pending SQL migrations embedded in the binary, so the schema is always
	// in sync when the server starts.
	if err := database.RunMigrations(db, log); err != nil {
		log.WithError(err).Fatal("failed to run migrations")
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.WithError(err).Fatal("failed to get database handle")
	}
	return repository.NewGormStore(db), sqlDB.PingContext
}

// seedDemoLeague gives a local in-memory server a league with four teams and logs
// an admin token for it, so the console has something to talk to.
func seedDemoLeague(cfg *config.Config, store *repository.MemoryStore, log *logrus.Logger) {
	league := uuid.New()
	for _, name := range []string{"Aces", "Birdies", "Eagles", "Albatrosses"} {
		store.AddTeams(league, models.Team{Name: name, Active: true})
	}
	token, err := middleware.IssueToken(cfg.JWTSecret, "dev-admin", middleware.RoleAdmin, league, 24*time.Hour)
	if err != nil {
		log.WithError(err).Error("failed to issue development token")
		return
	}
	log.WithFields(logrus.Fields{"league_id": league, "token": token}).Info("seeded demo league")
}
