// Package repository is the ledger's persistence boundary. The ledger only ever talks
// to a Store, and every read or write happens inside a league-scoped Tx, so the same
// service code runs against Postgres (GormStore) or memory (MemoryStore).
package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/trentd187/golf-league-ledger/internal/models"
)

// ErrReadOnly is returned when a write is attempted inside View.
var ErrReadOnly = errors.New("write attempted in a read-only transaction")

// Store opens league-scoped transactions.
type Store interface {
	// View runs fn against a consistent read-only snapshot of the league.
	View(ctx context.Context, leagueID uuid.UUID, fn func(Tx) error) error
	// Update runs fn in a single transaction that commits only if fn returns nil.
	// Updates for the same league never overlap.
	Update(ctx context.Context, leagueID uuid.UUID, fn func(Tx) error) error
}

// Tx is the set of reads and writes the ledger needs, already scoped to one league.
// List methods return rows in the deterministic order the replay depends on.
type Tx interface {
	// Settings returns apperr.ErrNotFound when the league has never saved any.
	Settings() (models.LeagueSettings, error)
	SaveSettings(s *models.LeagueSettings) error

	// Teams are ordered by name, then id.
	Teams() ([]models.Team, error)

	// Matchups are ordered by week, then insertion order.
	Matchups() ([]models.Matchup, error)
	Matchup(id uuid.UUID) (models.Matchup, error)
	CreateMatchup(m *models.Matchup) error
	SaveMatchup(m *models.Matchup) error
	DeleteMatchup(id uuid.UUID) error

	// WeeklyScores are ordered by week, then insertion order.
	WeeklyScores() ([]models.WeeklyScore, error)
	CreateWeeklyScores(rows []models.WeeklyScore) error
	SaveWeeklyScore(w *models.WeeklyScore) error
	DeleteWeek(week int) (int64, error)

	// Byes are ordered by week, then insertion order.
	Byes() ([]models.Bye, error)
	Bye(id uuid.UUID) (models.Bye, error)
	CreateBye(b *models.Bye) error
	SaveBye(b *models.Bye) error
	DeleteBye(id uuid.UUID) error

	// TeamsRecordedInWeek returns every team that already has a matchup, weekly
	// score or bye in the given week. Submissions use it for their uniqueness check.
	TeamsRecordedInWeek(week int) ([]uuid.UUID, error)

	// Standings are ordered by rank.
	Standings() ([]models.TeamStanding, error)
	ReplaceStandings(rows []models.TeamStanding) error
}
