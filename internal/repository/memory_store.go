package repository

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/trentd187/golf-league-ledger/internal/apperr"
	"github.com/trentd187/golf-league-ledger/internal/models"
)

// MemoryStore keeps every league in process memory. Update works on a copy of the
// league and swaps it in only when fn succeeds, which gives the same all-or-nothing
// behaviour as the Postgres store. Used by tests and by STORE=memory for local runs.
type MemoryStore struct {
	mu      sync.RWMutex
	leagues map[uuid.UUID]*leagueState
	clock   time.Time
}

type leagueState struct {
	settings  *models.LeagueSettings
	teams     []models.Team
	matchups  []models.Matchup
	weekly    []models.WeeklyScore
	byes      []models.Bye
	standings []models.TeamStanding
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		leagues: make(map[uuid.UUID]*leagueState),
		clock:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// AddTeams registers teams for a league, creating the league on first use.
// Team management lives outside the ledger, so this is how tests and local runs
// seed a league.
func (s *MemoryStore) AddTeams(leagueID uuid.UUID, teams ...models.Team) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state(leagueID)
	for _, team := range teams {
		if team.ID == uuid.Nil {
			team.ID = uuid.New()
		}
		team.LeagueID = leagueID
		st.teams = append(st.teams, team)
	}
}

func (s *MemoryStore) state(leagueID uuid.UUID) *leagueState {
	st, ok := s.leagues[leagueID]
	if !ok {
		st = &leagueState{}
		s.leagues[leagueID] = st
	}
	return st
}

func (s *MemoryStore) View(ctx context.Context, leagueID uuid.UUID, fn func(Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.leagues[leagueID]
	if !ok {
		st = &leagueState{}
	}
	return fn(&memoryTx{store: s, state: st, leagueID: leagueID, readOnly: true})
}

func (s *MemoryStore) Update(ctx context.Context, leagueID uuid.UUID, fn func(Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state(leagueID).clone()
	if err := fn(&memoryTx{store: s, state: work, leagueID: leagueID}); err != nil {
		return err
	}
	s.leagues[leagueID] = work
	return nil
}

func (st *leagueState) clone() *leagueState {
	out := &leagueState{
		teams:     slices.Clone(st.teams),
		matchups:  cloneMatchups(st.matchups),
		weekly:    cloneWeekly(st.weekly),
		byes:      slices.Clone(st.byes),
		standings: slices.Clone(st.standings),
	}
	if st.settings != nil {
		cp := *st.settings
		cp.PointScale = slices.Clone(st.settings.PointScale)
		out.settings = &cp
	}
	return out
}

// Records carry pointer fields, so copies have to be deep or a caller editing a
// returned row would write straight into committed state.

func cloneMatchups(rows []models.Matchup) []models.Matchup {
	out := make([]models.Matchup, len(rows))
	for i, m := range rows {
		m.TeamAGross, m.TeamBGross = clonePtr(m.TeamAGross), clonePtr(m.TeamBGross)
		m.TeamAHandicap, m.TeamBHandicap = clonePtr(m.TeamAHandicap), clonePtr(m.TeamBHandicap)
		m.TeamANet, m.TeamBNet = clonePtr(m.TeamANet), clonePtr(m.TeamBNet)
		m.ForfeitTeamID = clonePtr(m.ForfeitTeamID)
		out[i] = m
	}
	return out
}

func cloneWeekly(rows []models.WeeklyScore) []models.WeeklyScore {
	out := make([]models.WeeklyScore, len(rows))
	for i, w := range rows {
		w.Gross, w.Handicap, w.Net = clonePtr(w.Gross), clonePtr(w.Handicap), clonePtr(w.Net)
		w.Position = clonePtr(w.Position)
		out[i] = w
	}
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// tick hands out strictly increasing timestamps so insertion order is preserved
// the way created_at preserves it in Postgres.
func (s *MemoryStore) tick() time.Time {
	s.clock = s.clock.Add(time.Millisecond)
	return s.clock
}

type memoryTx struct {
	store    *MemoryStore
	state    *leagueState
	leagueID uuid.UUID
	readOnly bool
}

func (t *memoryTx) writable() error {
	if t.readOnly {
		return ErrReadOnly
	}
	return nil
}

func (t *memoryTx) Settings() (models.LeagueSettings, error) {
	if t.state.settings == nil {
		return models.LeagueSettings{}, apperr.ErrNotFound
	}
	cp := *t.state.settings
	cp.PointScale = slices.Clone(t.state.settings.PointScale)
	return cp, nil
}

func (t *memoryTx) SaveSettings(s *models.LeagueSettings) error {
	if err := t.writable(); err != nil {
		return err
	}
	s.LeagueID = t.leagueID
	s.UpdatedAt = t.store.tick()
	cp := *s
	cp.PointScale = slices.Clone(s.PointScale)
	t.state.settings = &cp
	return nil
}

func (t *memoryTx) Teams() ([]models.Team, error) {
	teams := slices.Clone(t.state.teams)
	slices.SortFunc(teams, func(a, b models.Team) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
	return teams, nil
}

// byWeekThenCreated is the replay order shared by all record lists.
func byWeekThenCreated(weekA, weekB int, createdA, createdB time.Time) int {
	if c := cmp.Compare(weekA, weekB); c != 0 {
		return c
	}
	return createdA.Compare(createdB)
}

func (t *memoryTx) Matchups() ([]models.Matchup, error) {
	rows := cloneMatchups(t.state.matchups)
	slices.SortStableFunc(rows, func(a, b models.Matchup) int {
		return byWeekThenCreated(a.Week, b.Week, a.CreatedAt, b.CreatedAt)
	})
	return rows, nil
}

func (t *memoryTx) Matchup(id uuid.UUID) (models.Matchup, error) {
	for _, m := range t.state.matchups {
		if m.ID == id {
			return cloneMatchups([]models.Matchup{m})[0], nil
		}
	}
	return models.Matchup{}, apperr.ErrNotFound
}

func (t *memoryTx) CreateMatchup(m *models.Matchup) error {
	if err := t.writable(); err != nil {
		return err
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	now := t.store.tick()
	m.LeagueID, m.CreatedAt, m.UpdatedAt = t.leagueID, now, now
	t.state.matchups = append(t.state.matchups, cloneMatchups([]models.Matchup{*m})...)
	return nil
}

func (t *memoryTx) SaveMatchup(m *models.Matchup) error {
	if err := t.writable(); err != nil {
		return err
	}
	for i := range t.state.matchups {
		if t.state.matchups[i].ID == m.ID {
			m.LeagueID = t.leagueID
			m.UpdatedAt = t.store.tick()
			t.state.matchups[i] = cloneMatchups([]models.Matchup{*m})[0]
			return nil
		}
	}
	return apperr.ErrNotFound
}

func (t *memoryTx) DeleteMatchup(id uuid.UUID) error {
	if err := t.writable(); err != nil {
		return err
	}
	n := len(t.state.matchups)
	t.state.matchups = slices.DeleteFunc(t.state.matchups, func(m models.Matchup) bool { return m.ID == id })
	if len(t.state.matchups) == n {
		return apperr.ErrNotFound
	}
	return nil
}

func (t *memoryTx) WeeklyScores() ([]models.WeeklyScore, error) {
	rows := cloneWeekly(t.state.weekly)
	slices.SortStableFunc(rows, func(a, b models.WeeklyScore) int {
		return byWeekThenCreated(a.Week, b.Week, a.CreatedAt, b.CreatedAt)
	})
	return rows, nil
}

func (t *memoryTx) CreateWeeklyScores(rows []models.WeeklyScore) error {
	if err := t.writable(); err != nil {
		return err
	}
	for i := range rows {
		if rows[i].ID == uuid.Nil {
			rows[i].ID = uuid.New()
		}
		now := t.store.tick()
		rows[i].LeagueID, rows[i].CreatedAt, rows[i].UpdatedAt = t.leagueID, now, now
		t.state.weekly = append(t.state.weekly, cloneWeekly(rows[i:i+1])...)
	}
	return nil
}

func (t *memoryTx) SaveWeeklyScore(w *models.WeeklyScore) error {
	if err := t.writable(); err != nil {
		return err
	}
	for i := range t.state.weekly {
		if t.state.weekly[i].ID == w.ID {
			w.LeagueID = t.leagueID
			w.UpdatedAt = t.store.tick()
			t.state.weekly[i] = cloneWeekly([]models.WeeklyScore{*w})[0]
			return nil
		}
	}
	return apperr.ErrNotFound
}

func (t *memoryTx) DeleteWeek(week int) (int64, error) {
	if err := t.writable(); err != nil {
		return 0, err
	}
	n := len(t.state.weekly)
	t.state.weekly = slices.DeleteFunc(t.state.weekly, func(w models.WeeklyScore) bool { return w.Week == week })
	return int64(n - len(t.state.weekly)), nil
}

func (t *memoryTx) Byes() ([]models.Bye, error) {
	rows := slices.Clone(t.state.byes)
	slices.SortStableFunc(rows, func(a, b models.Bye) int {
		return byWeekThenCreated(a.Week, b.Week, a.CreatedAt, b.CreatedAt)
	})
	return rows, nil
}

func (t *memoryTx) Bye(id uuid.UUID) (models.Bye, error) {
	for _, b := range t.state.byes {
		if b.ID == id {
			return b, nil
		}
	}
	return models.Bye{}, apperr.ErrNotFound
}

func (t *memoryTx) CreateBye(b *models.Bye) error {
	if err := t.writable(); err != nil {
		return err
	}
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	b.LeagueID, b.CreatedAt = t.leagueID, t.store.tick()
	t.state.byes = append(t.state.byes, *b)
	return nil
}

func (t *memoryTx) SaveBye(b *models.Bye) error {
	if err := t.writable(); err != nil {
		return err
	}
	for i := range t.state.byes {
		if t.state.byes[i].ID == b.ID {
			b.LeagueID = t.leagueID
			t.state.byes[i] = *b
			return nil
		}
	}
	return apperr.ErrNotFound
}

func (t *memoryTx) DeleteBye(id uuid.UUID) error {
	if err := t.writable(); err != nil {
		return err
	}
	n := len(t.state.byes)
	t.state.byes = slices.DeleteFunc(t.state.byes, func(b models.Bye) bool { return b.ID == id })
	if len(t.state.byes) == n {
		return apperr.ErrNotFound
	}
	return nil
}

func (t *memoryTx) TeamsRecordedInWeek(week int) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	add := func(id uuid.UUID) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, m := range t.state.matchups {
		if m.Week == week {
			add(m.TeamAID)
			add(m.TeamBID)
		}
	}
	for _, w := range t.state.weekly {
		if w.Week == week {
			add(w.TeamID)
		}
	}
	for _, b := range t.state.byes {
		if b.Week == week {
			add(b.TeamID)
		}
	}
	return ids, nil
}

func (t *memoryTx) Standings() ([]models.TeamStanding, error) {
	rows := slices.Clone(t.state.standings)
	slices.SortStableFunc(rows, func(a, b models.TeamStanding) int {
		if c := cmp.Compare(a.Rank, b.Rank); c != 0 {
			return c
		}
		return cmp.Compare(a.TeamName, b.TeamName)
	})
	return rows, nil
}

func (t *memoryTx) ReplaceStandings(rows []models.TeamStanding) error {
	if err := t.writable(); err != nil {
		return err
	}
	out := make([]models.TeamStanding, len(rows))
	for i, r := range rows {
		r.LeagueID = t.leagueID
		out[i] = r
	}
	t.state.standings = out
	return nil
}
