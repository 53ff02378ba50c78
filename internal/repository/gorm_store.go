package repository

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/trentd187/golf-league-ledger/internal/apperr"
	"github.com/trentd187/golf-league-ledger/internal/models"
)

// GormStore is the Postgres-backed Store.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an open gorm handle.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// View opens a read-only REPEATABLE READ transaction so every query in fn sees
// the same snapshot, even while a recalculation commits next to it.
func (s *GormStore) View(ctx context.Context, leagueID uuid.UUID, fn func(Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTx{db: tx, leagueID: leagueID})
	}, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
}

// Update runs fn in one transaction. The first statement takes a transaction-scoped
// advisory lock keyed by the league, so concurrent submissions and recalculations for
// a league queue up behind each other and release automatically on commit/rollback.
func (s *GormStore) Update(ctx context.Context, leagueID uuid.UUID, fn func(Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", advisoryKey(leagueID)).Error; err != nil {
			return fmt.Errorf("lock league %s: %w", leagueID, err)
		}
		return fn(&gormTx{db: tx, leagueID: leagueID})
	})
}

// advisoryKey folds a league UUID into the bigint pg_advisory_xact_lock takes.
func advisoryKey(id uuid.UUID) int64 {
	hi := binary.BigEndian.Uint64(id[:8])
	lo := binary.BigEndian.Uint64(id[8:])
	return int64(hi ^ lo)
}

type gormTx struct {
	db       *gorm.DB
	leagueID uuid.UUID
}

// league scopes a query to the transaction's league.
func (t *gormTx) league() *gorm.DB {
	return t.db.Where("league_id = ?", t.leagueID)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.ErrNotFound
	}
	return err
}

func (t *gormTx) Settings() (models.LeagueSettings, error) {
	var s models.LeagueSettings
	err := t.league().First(&s).Error
	return s, notFound(err)
}

func (t *gormTx) SaveSettings(s *models.LeagueSettings) error {
	s.LeagueID = t.leagueID
	// Insert or overwrite every column. Select("*") keeps gorm from skipping
	// zero-valued fields, which are valid settings.
	return t.db.Select("*").Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "league_id"}},
		UpdateAll: true,
	}).Create(s).Error
}

func (t *gormTx) Teams() ([]models.Team, error) {
	var teams []models.Team
	err := t.league().Order("name ASC, id ASC").Find(&teams).Error
	return teams, err
}

func (t *gormTx) Matchups() ([]models.Matchup, error) {
	var rows []models.Matchup
	err := t.league().Order("week ASC, created_at ASC, id ASC").Find(&rows).Error
	return rows, err
}

func (t *gormTx) Matchup(id uuid.UUID) (models.Matchup, error) {
	var m models.Matchup
	err := t.league().Where("id = ?", id).First(&m).Error
	return m, notFound(err)
}

func (t *gormTx) CreateMatchup(m *models.Matchup) error {
	m.LeagueID = t.leagueID
	return t.db.Create(m).Error
}

func (t *gormTx) SaveMatchup(m *models.Matchup) error {
	m.LeagueID = t.leagueID
	return t.db.Save(m).Error
}

func (t *gormTx) DeleteMatchup(id uuid.UUID) error {
	res := t.league().Where("id = ?", id).Delete(&models.Matchup{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (t *gormTx) WeeklyScores() ([]models.WeeklyScore, error) {
	var rows []models.WeeklyScore
	err := t.league().Order("week ASC, created_at ASC, id ASC").Find(&rows).Error
	return rows, err
}

func (t *gormTx) CreateWeeklyScores(rows []models.WeeklyScore) error {
	if len(rows) == 0 {
		return nil
	}
	for i := range rows {
		rows[i].LeagueID = t.leagueID
	}
	return t.db.Create(&rows).Error
}

func (t *gormTx) SaveWeeklyScore(w *models.WeeklyScore) error {
	w.LeagueID = t.leagueID
	return t.db.Save(w).Error
}

func (t *gormTx) DeleteWeek(week int) (int64, error) {
	res := t.league().Where("week = ?", week).Delete(&models.WeeklyScore{})
	return res.RowsAffected, res.Error
}

func (t *gormTx) Byes() ([]models.Bye, error) {
	var rows []models.Bye
	err := t.league().Order("week ASC, created_at ASC, id ASC").Find(&rows).Error
	return rows, err
}

func (t *gormTx) Bye(id uuid.UUID) (models.Bye, error) {
	var b models.Bye
	err := t.league().Where("id = ?", id).First(&b).Error
	return b, notFound(err)
}

func (t *gormTx) CreateBye(b *models.Bye) error {
	b.LeagueID = t.leagueID
	return t.db.Create(b).Error
}

func (t *gormTx) SaveBye(b *models.Bye) error {
	b.LeagueID = t.leagueID
	return t.db.Save(b).Error
}

func (t *gormTx) DeleteBye(id uuid.UUID) error {
	res := t.league().Where("id = ?", id).Delete(&models.Bye{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (t *gormTx) TeamsRecordedInWeek(week int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := t.db.Raw(`
		SELECT team_a_id FROM matchups WHERE league_id = @league AND week = @week
		UNION SELECT team_b_id FROM matchups WHERE league_id = @league AND week = @week
		UNION SELECT team_id FROM weekly_scores WHERE league_id = @league AND week = @week
		UNION SELECT team_id FROM byes WHERE league_id = @league AND week = @week`,
		sql.Named("league", t.leagueID), sql.Named("week", week),
	).Scan(&ids).Error
	return ids, err
}

func (t *gormTx) Standings() ([]models.TeamStanding, error) {
	var rows []models.TeamStanding
	err := t.league().Order("rank ASC, team_name ASC").Find(&rows).Error
	return rows, err
}

func (t *gormTx) ReplaceStandings(rows []models.TeamStanding) error {
	if err := t.league().Delete(&models.TeamStanding{}).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	for i := range rows {
		rows[i].LeagueID = t.leagueID
	}
	return t.db.CreateInBatches(&rows, 100).Error
}
