// Package ledger is the league's scoring service. It owns every write to the
// competitive record: submitting matchups, stroke-play weeks and byes, changing the
// league policy, and the full recalculation that replays the season under the current
// policy.
//
// All writes for a league go through repository.Store.Update, which serializes them per
// league and commits all-or-nothing. Previews use View and never write.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/trentd187/golf-league-ledger/internal/apperr"
	"github.com/trentd187/golf-league-ledger/internal/models"
	"github.com/trentd187/golf-league-ledger/internal/policy"
	"github.com/trentd187/golf-league-ledger/internal/repository"
)

// Notifier receives a message after a write to a league has committed.
// live.Hub implements it.
type Notifier interface {
	BroadcastToLeague(leagueID string, data []byte)
}

// Service is the ledger. It is safe for concurrent use.
type Service struct {
	store    repository.Store
	log      logrus.FieldLogger
	notifier Notifier
}

// Option configures a Service.
type Option func(*Service)

// WithNotifier sets where standings updates are published.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithLogger replaces the default logrus standard logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Service) { s.log = log }
}

// New returns a ledger backed by store.
func New(store repository.Store, opts ...Option) *Service {
	s := &Service{store: store, log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// loadSettings returns the league's stored settings, or the defaults for a league
// that never saved any.
func loadSettings(tx repository.Tx) (models.LeagueSettings, error) {
	s, err := tx.Settings()
	if errors.Is(err, apperr.ErrNotFound) {
		return policy.DefaultSettings(), nil
	}
	return s, err
}

// loadPolicy reads the settings once and snapshots them. Every computation in an
// operation uses this one snapshot.
func loadPolicy(tx repository.Tx) (policy.Policy, error) {
	s, err := loadSettings(tx)
	if err != nil {
		return policy.Policy{}, err
	}
	return policy.FromSettings(s)
}

// state is the full set of records a league's standings are derived from.
type state struct {
	teams    []models.Team
	matchups []models.Matchup
	weekly   []models.WeeklyScore
	byes     []models.Bye
}

func loadState(tx repository.Tx) (state, error) {
	var st state
	var err error
	if st.teams, err = tx.Teams(); err != nil {
		return st, err
	}
	if st.matchups, err = tx.Matchups(); err != nil {
		return st, err
	}
	if st.weekly, err = tx.WeeklyScores(); err != nil {
		return st, err
	}
	st.byes, err = tx.Byes()
	return st, err
}

func (st state) team(id uuid.UUID) (models.Team, bool) {
	for _, t := range st.teams {
		if t.ID == id {
			return t, true
		}
	}
	return models.Team{}, false
}

// persistChanges writes back every row of st whose values differ from the same row
// in before and returns how many rows it wrote. Untouched rows are left alone.
func persistChanges(tx repository.Tx, st, before state) (int, error) {
	written := 0
	prevMatchups := indexBy(before.matchups, func(m models.Matchup) uuid.UUID { return m.ID })
	for i := range st.matchups {
		m := &st.matchups[i]
		if sameMatchup(prevMatchups[m.ID], *m) {
			continue
		}
		if err := tx.SaveMatchup(m); err != nil {
			return written, err
		}
		written++
	}
	prevWeekly := indexBy(before.weekly, func(w models.WeeklyScore) uuid.UUID { return w.ID })
	for i := range st.weekly {
		w := &st.weekly[i]
		if sameWeekly(prevWeekly[w.ID], *w) {
			continue
		}
		if err := tx.SaveWeeklyScore(w); err != nil {
			return written, err
		}
		written++
	}
	prevByes := indexBy(before.byes, func(b models.Bye) uuid.UUID { return b.ID })
	for i := range st.byes {
		b := &st.byes[i]
		if prevByes[b.ID].Points == b.Points {
			continue
		}
		if err := tx.SaveBye(b); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

func indexBy[T any](rows []T, key func(T) uuid.UUID) map[uuid.UUID]T {
	out := make(map[uuid.UUID]T, len(rows))
	for _, r := range rows {
		out[key(r)] = r
	}
	return out
}

// Rows are compared without their write timestamps so an unchanged row is never
// rewritten.
func sameMatchup(a, b models.Matchup) bool {
	a.UpdatedAt = b.UpdatedAt
	return reflect.DeepEqual(a, b)
}

func sameWeekly(a, b models.WeeklyScore) bool {
	a.UpdatedAt = b.UpdatedAt
	return reflect.DeepEqual(a, b)
}

func cloneState(st state) state {
	out := state{
		teams:    st.teams,
		matchups: make([]models.Matchup, len(st.matchups)),
		weekly:   make([]models.WeeklyScore, len(st.weekly)),
		byes:     append([]models.Bye(nil), st.byes...),
	}
	for i, m := range st.matchups {
		m.TeamAGross, m.TeamBGross = clonePtr(m.TeamAGross), clonePtr(m.TeamBGross)
		m.TeamAHandicap, m.TeamBHandicap = clonePtr(m.TeamAHandicap), clonePtr(m.TeamBHandicap)
		m.TeamANet, m.TeamBNet = clonePtr(m.TeamANet), clonePtr(m.TeamBNet)
		m.ForfeitTeamID = clonePtr(m.ForfeitTeamID)
		out.matchups[i] = m
	}
	for i, w := range st.weekly {
		w.Gross, w.Handicap, w.Net = clonePtr(w.Gross), clonePtr(w.Handicap), clonePtr(w.Net)
		w.Position = clonePtr(w.Position)
		out.weekly[i] = w
	}
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	return ptr(*p)
}

// update runs fn in a league transaction and, once it has committed, tells the
// notifier why the standings changed.
func (s *Service) update(ctx context.Context, leagueID uuid.UUID, reason string, fn func(repository.Tx) error) error {
	if err := s.store.Update(ctx, leagueID, fn); err != nil {
		return err
	}
	s.publish(leagueID, reason)
	return nil
}

// StandingsEvent is the message published after every committed write.
type StandingsEvent struct {
	Type     string `json:"type"`
	LeagueID string `json:"league_id"`
	Reason   string `json:"reason"`
}

func (s *Service) publish(leagueID uuid.UUID, reason string) {
	if s.notifier == nil {
		return
	}
	data, err := json.Marshal(StandingsEvent{Type: "standings_updated", LeagueID: leagueID.String(), Reason: reason})
	if err != nil {
		s.log.WithError(err).Error("failed to encode standings event")
		return
	}
	s.notifier.BroadcastToLeague(leagueID.String(), data)
}

// Settings returns the league's current policy settings (defaults if never saved).
func (s *Service) Settings(ctx context.Context, leagueID uuid.UUID) (models.LeagueSettings, error) {
	var out models.LeagueSettings
	err := s.store.View(ctx, leagueID, func(tx repository.Tx) error {
		var err error
		out, err = loadSettings(tx)
		out.LeagueID = leagueID
		return err
	})
	return out, err
}

// Standings returns the league's derived standings in rank order.
func (s *Service) Standings(ctx context.Context, leagueID uuid.UUID) ([]models.TeamStanding, error) {
	var out []models.TeamStanding
	err := s.store.View(ctx, leagueID, func(tx repository.Tx) error {
		var err error
		out, err = tx.Standings()
		return err
	})
	return out, err
}
