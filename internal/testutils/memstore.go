package testutils

import (
	"context"
	"sort"
	"sync"
	"time"

	"LeagueSync/internal/interfaces"
	"LeagueSync/internal/model"
)

type memState struct {
	nextID    uint64
	regions   map[uint64]model.Region
	seasons   map[uint64]model.Season
	leagues   map[uint64]model.League
	divisions map[uint64]model.Division
	teams     map[uint64]model.Team
	links     map[[2]uint64]bool
	standings map[uint64]model.Standing
	fixtures  map[uint64]model.Fixture
	players   map[uint64]model.Player
	awards    map[uint64]model.PlayerAward
	runs      []model.SyncRun
}

func newMemState() *memState {
	return &memState{
		regions:   make(map[uint64]model.Region),
		seasons:   make(map[uint64]model.Season),
		leagues:   make(map[uint64]model.League),
		divisions: make(map[uint64]model.Division),
		teams:     make(map[uint64]model.Team),
		links:     make(map[[2]uint64]bool),
		standings: make(map[uint64]model.Standing),
		fixtures:  make(map[uint64]model.Fixture),
		players:   make(map[uint64]model.Player),
		awards:    make(map[uint64]model.PlayerAward),
	}
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *memState) clone() *memState {
	return &memState{
		nextID:    s.nextID,
		regions:   copyMap(s.regions),
		seasons:   copyMap(s.seasons),
		leagues:   copyMap(s.leagues),
		divisions: copyMap(s.divisions),
		teams:     copyMap(s.teams),
		links:     copyMap(s.links),
		standings: copyMap(s.standings),
		fixtures:  copyMap(s.fixtures),
		players:   copyMap(s.players),
		awards:    copyMap(s.awards),
		runs:      append([]model.SyncRun(nil), s.runs...),
	}
}

func (s *memState) id() uint64 {
	s.nextID++
	return s.nextID
}

// MemStore is an in-memory LeagueStore with the same keying rules as the gorm
// repository. Transactions work on a copy that replaces the state on success.
type MemStore struct {
	mu    *sync.Mutex
	state *memState
	root  *MemStore

	failMu sync.Mutex
	fail   map[string]error
}

func NewMemStore() *MemStore {
	m := &MemStore{mu: &sync.Mutex{}, state: newMemState(), fail: make(map[string]error)}
	m.root = m
	return m
}

// FailOn makes every later call of the named method return err; nil clears it.
func (m *MemStore) FailOn(method string, err error) {
	m.root.failMu.Lock()
	defer m.root.failMu.Unlock()
	if err == nil {
		delete(m.root.fail, method)
		return
	}
	m.root.fail[method] = err
}

func (m *MemStore) injected(method string) error {
	m.root.failMu.Lock()
	defer m.root.failMu.Unlock()
	return m.root.fail[method]
}

// lock is a no-op inside a transaction, which already holds the root lock.
func (m *MemStore) lock() func() {
	if m.root != m {
		return func() {}
	}
	m.mu.Lock()
	return m.mu.Unlock
}

func (m *MemStore) RunInTransaction(ctx context.Context, fn func(tx interfaces.LeagueStore) error) error {
	if err := m.injected("RunInTransaction"); err != nil {
		return err
	}
	unlock := m.lock()
	defer unlock()

	tx := &MemStore{mu: m.mu, state: m.state.clone(), root: m.root}
	if err := fn(tx); err != nil {
		return err
	}
	m.state = tx.state
	return nil
}

// ---------- read helpers for tests ----------

func (m *MemStore) Regions() []model.Region {
	defer m.lock()()
	return sortedValues(m.state.regions, func(r model.Region) uint64 { return r.ID })
}

func (m *MemStore) Seasons() []model.Season {
	defer m.lock()()
	return sortedValues(m.state.seasons, func(r model.Season) uint64 { return r.ID })
}

func (m *MemStore) Leagues() []model.League {
	defer m.lock()()
	return sortedValues(m.state.leagues, func(r model.League) uint64 { return r.ID })
}

func (m *MemStore) Divisions() []model.Division {
	defer m.lock()()
	return sortedValues(m.state.divisions, func(r model.Division) uint64 { return r.ID })
}

func (m *MemStore) Teams() []model.Team {
	defer m.lock()()
	return sortedValues(m.state.teams, func(r model.Team) uint64 { return r.ID })
}

// Standings returns the standings of a division ordered by position.
func (m *MemStore) Standings(divisionID uint64) []model.Standing {
	defer m.lock()()
	var out []model.Standing
	for _, st := range m.state.standings {
		if st.DivisionID == divisionID {
			out = append(out, st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

func (m *MemStore) Fixtures() []model.Fixture {
	defer m.lock()()
	return sortedValues(m.state.fixtures, func(r model.Fixture) uint64 { return r.ID })
}

func (m *MemStore) Players() []model.Player {
	defer m.lock()()
	return sortedValues(m.state.players, func(r model.Player) uint64 { return r.ID })
}

func (m *MemStore) Awards() []model.PlayerAward {
	defer m.lock()()
	return sortedValues(m.state.awards, func(r model.PlayerAward) uint64 { return r.ID })
}

func (m *MemStore) DivisionTeams(divisionID uint64) []uint64 {
	defer m.lock()()
	var out []uint64
	for k := range m.state.links {
		if k[0] == divisionID {
			out = append(out, k[1])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (m *MemStore) SyncRuns() []model.SyncRun {
	defer m.lock()()
	return append([]model.SyncRun(nil), m.state.runs...)
}

// SeedFixture stores f as is and returns it with its id.
func (m *MemStore) SeedFixture(f model.Fixture) model.Fixture {
	defer m.lock()()
	f.ID = m.state.id()
	f.Status = model.DeriveFixtureStatus(f.HomeScore, f.AwayScore)
	m.state.fixtures[f.ID] = f
	return f
}

func sortedValues[V any](m map[uint64]V, id func(V) uint64) []V {
	out := make([]V, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return id(out[i]) < id(out[j]) })
	return out
}

// ---------- LeagueStore ----------

func (m *MemStore) UpsertRegion(ctx context.Context, name string) (*model.Region, error) {
	if err := m.injected("UpsertRegion"); err != nil {
		return nil, err
	}
	defer m.lock()()
	now := time.Now()
	slug := model.Slugify(name)
	for id, r := range m.state.regions {
		if r.Slug == slug {
			r.UpdatedAt = now
			m.state.regions[id] = r
			return &r, nil
		}
	}
	r := model.Region{ID: m.state.id(), Name: name, Slug: slug, CreatedAt: now, UpdatedAt: now}
	m.state.regions[r.ID] = r
	return &r, nil
}

func (m *MemStore) FindRegionBySlug(ctx context.Context, slug string) (*model.Region, error) {
	if err := m.injected("FindRegionBySlug"); err != nil {
		return nil, err
	}
	defer m.lock()()
	for _, r := range m.state.regions {
		if r.Slug == slug {
			return &r, nil
		}
	}
	return nil, interfaces.ErrNotFound
}

func (m *MemStore) UpsertSeason(ctx context.Context, in interfaces.SeasonInput) (*model.Season, error) {
	if err := m.injected("UpsertSeason"); err != nil {
		return nil, err
	}
	defer m.lock()()
	now := time.Now()
	var stored *model.Season
	for id, s := range m.state.seasons {
		if s.ExternalSeasonID == in.ExternalID {
			s.Name, s.IsCurrent, s.UpdatedAt = in.Name, in.IsCurrent, now
			m.state.seasons[id] = s
			stored = &s
			break
		}
	}
	if stored == nil {
		s := model.Season{ID: m.state.id(), ExternalSeasonID: in.ExternalID, Name: in.Name, IsCurrent: in.IsCurrent, CreatedAt: now, UpdatedAt: now}
		m.state.seasons[s.ID] = s
		stored = &s
	}
	if in.IsCurrent {
		for id, s := range m.state.seasons {
			if id != stored.ID && s.IsCurrent {
				s.IsCurrent = false
				m.state.seasons[id] = s
			}
		}
	}
	return stored, nil
}

func (m *MemStore) FindSeasonByExternalID(ctx context.Context, externalID int64) (*model.Season, error) {
	if err := m.injected("FindSeasonByExternalID"); err != nil {
		return nil, err
	}
	defer m.lock()()
	for _, s := range m.state.seasons {
		if s.ExternalSeasonID == externalID {
			return &s, nil
		}
	}
	return nil, interfaces.ErrNotFound
}

func (m *MemStore) UpsertLeague(ctx context.Context, externalID int64, name string, regionID uint64, venueID int64) (*model.League, error) {
	if err := m.injected("UpsertLeague"); err != nil {
		return nil, err
	}
	defer m.lock()()
	now := time.Now()
	for id, l := range m.state.leagues {
		if l.ExternalLeagueID == externalID {
			l.Name, l.RegionID, l.VenueID, l.UpdatedAt = name, regionID, venueID, now
			m.state.leagues[id] = l
			return &l, nil
		}
	}
	l := model.League{ID: m.state.id(), ExternalLeagueID: externalID, Name: name, RegionID: regionID, VenueID: venueID, CreatedAt: now, UpdatedAt: now}
	m.state.leagues[l.ID] = l
	return &l, nil
}

func (m *MemStore) FindLeagueByExternalID(ctx context.Context, externalID int64) (*model.League, error) {
	if err := m.injected("FindLeagueByExternalID"); err != nil {
		return nil, err
	}
	defer m.lock()()
	return m.findLeague(externalID)
}

func (m *MemStore) findLeague(externalID int64) (*model.League, error) {
	for _, l := range m.state.leagues {
		if l.ExternalLeagueID == externalID {
			return &l, nil
		}
	}
	return nil, interfaces.ErrNotFound
}

func (m *MemStore) UpsertDivision(ctx context.Context, in interfaces.DivisionInput) (*model.Division, error) {
	if err := m.injected("UpsertDivision"); err != nil {
		return nil, err
	}
	defer m.lock()()
	now := time.Now()
	for id, d := range m.state.divisions {
		if d.ExternalDivisionID == in.ExternalID && d.LeagueID == in.LeagueID && d.SeasonID == in.SeasonID {
			d.Name, d.Tier, d.UpdatedAt = in.Name, in.Tier, now
			m.state.divisions[id] = d
			return &d, nil
		}
	}
	d := model.Division{
		ID: m.state.id(), ExternalDivisionID: in.ExternalID, LeagueID: in.LeagueID, SeasonID: in.SeasonID,
		Name: in.Name, Tier: in.Tier, CreatedAt: now, UpdatedAt: now,
	}
	m.state.divisions[d.ID] = d
	return &d, nil
}

func (m *MemStore) FindDivisionByExternalID(ctx context.Context, leagueExternalID, seasonExternalID, divisionExternalID int64) (*model.Division, error) {
	if err := m.injected("FindDivisionByExternalID"); err != nil {
		return nil, err
	}
	defer m.lock()()
	for _, d := range m.state.divisions {
		if d.ExternalDivisionID != divisionExternalID {
			continue
		}
		l, lok := m.state.leagues[d.LeagueID]
		s, sok := m.state.seasons[d.SeasonID]
		if lok && sok && l.ExternalLeagueID == leagueExternalID && s.ExternalSeasonID == seasonExternalID {
			return &d, nil
		}
	}
	return nil, interfaces.ErrNotFound
}

func (m *MemStore) FindDivisionByID(ctx context.Context, id uint64) (*model.Division, error) {
	if err := m.injected("FindDivisionByID"); err != nil {
		return nil, err
	}
	defer m.lock()()
	d, ok := m.state.divisions[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return &d, nil
}

func (m *MemStore) UpdateLastScraped(ctx context.Context, divisionID uint64, at time.Time) error {
	if err := m.injected("UpdateLastScraped"); err != nil {
		return err
	}
	defer m.lock()()
	d, ok := m.state.divisions[divisionID]
	if !ok {
		return interfaces.ErrNotFound
	}
	d.LastScrapedAt = &at
	m.state.divisions[divisionID] = d
	return nil
}

func (m *MemStore) UpsertTeam(ctx context.Context, in interfaces.TeamInput) (*model.Team, error) {
	if err := m.injected("UpsertTeam"); err != nil {
		return nil, err
	}
	defer m.lock()()
	now := time.Now()
	if in.ExternalID == nil {
		var named *model.Team
		for _, t := range sortedValues(m.state.teams, func(r model.Team) uint64 { return r.ID }) {
			if t.Name != in.Name {
				continue
			}
			if named == nil || (t.ExternalTeamID != nil && named.ExternalTeamID == nil) {
				t := t
				named = &t
			}
		}
		if named != nil {
			return named, nil
		}
	}
	for id, t := range m.state.teams {
		if in.ExternalID != nil && t.ExternalTeamID != nil && *t.ExternalTeamID == *in.ExternalID {
			t.Name, t.UpdatedAt = in.Name, now
			m.state.teams[id] = t
			return &t, nil
		}
	}
	t := model.Team{ID: m.state.id(), Name: in.Name, CreatedAt: now, UpdatedAt: now}
	if in.ExternalID != nil {
		ext := *in.ExternalID
		t.ExternalTeamID = &ext
	}
	m.state.teams[t.ID] = t
	return &t, nil
}

func (m *MemStore) LinkTeamToDivision(ctx context.Context, divisionID, teamID uint64) error {
	if err := m.injected("LinkTeamToDivision"); err != nil {
		return err
	}
	defer m.lock()()
	m.state.links[[2]uint64{divisionID, teamID}] = true
	return nil
}

func (m *MemStore) DeleteStandingsByDivision(ctx context.Context, divisionID uint64) error {
	if err := m.injected("DeleteStandingsByDivision"); err != nil {
		return err
	}
	defer m.lock()()
	for id, st := range m.state.standings {
		if st.DivisionID == divisionID {
			delete(m.state.standings, id)
		}
	}
	return nil
}

func (m *MemStore) UpsertStanding(ctx context.Context, standing *model.Standing) (*model.Standing, error) {
	if err := m.injected("UpsertStanding"); err != nil {
		return nil, err
	}
	defer m.lock()()
	row := *standing
	row.UpdatedAt = time.Now()
	for id, st := range m.state.standings {
		if st.TeamID == row.TeamID && st.DivisionID == row.DivisionID {
			row.ID = id
			m.state.standings[id] = row
			return &row, nil
		}
	}
	row.ID = m.state.id()
	m.state.standings[row.ID] = row
	return &row, nil
}

func (m *MemStore) UpsertFixture(ctx context.Context, fixture *model.Fixture) (*model.Fixture, error) {
	if err := m.injected("UpsertFixture"); err != nil {
		return nil, err
	}
	defer m.lock()()
	row := *fixture
	row.Status = model.DeriveFixtureStatus(row.HomeScore, row.AwayScore)
	row.UpdatedAt = time.Now()
	for id, f := range m.state.fixtures {
		if !f.MatchDate.Equal(row.MatchDate) || f.DivisionID != row.DivisionID {
			continue
		}
		if row.VenueVerified && !f.VenueVerified && f.HomeTeamID == row.AwayTeamID && f.AwayTeamID == row.HomeTeamID {
			delete(m.state.fixtures, id)
			continue
		}
		if f.HomeTeamID == row.HomeTeamID && f.AwayTeamID == row.AwayTeamID {
			row.ID, row.CreatedAt = id, f.CreatedAt
			m.state.fixtures[id] = row
			return &row, nil
		}
	}
	row.ID = m.state.id()
	row.CreatedAt = row.UpdatedAt
	m.state.fixtures[row.ID] = row
	return &row, nil
}

func (m *MemStore) FindFixtureByTeamsAndDate(ctx context.Context, teamA, teamB uint64, date time.Time) (*model.Fixture, error) {
	if err := m.injected("FindFixtureByTeamsAndDate"); err != nil {
		return nil, err
	}
	defer m.lock()()
	var best *model.Fixture
	for _, f := range sortedValues(m.state.fixtures, func(r model.Fixture) uint64 { return r.ID }) {
		if !f.MatchDate.Equal(date) {
			continue
		}
		if !(f.HomeTeamID == teamA && f.AwayTeamID == teamB) && !(f.HomeTeamID == teamB && f.AwayTeamID == teamA) {
			continue
		}
		if best == nil || (f.VenueVerified && !best.VenueVerified) {
			f := f
			best = &f
		}
	}
	if best == nil {
		return nil, interfaces.ErrNotFound
	}
	return best, nil
}

func (m *MemStore) UpdateFixtureScore(ctx context.Context, id uint64, homeScore, awayScore *int, isForfeit bool) error {
	if err := m.injected("UpdateFixtureScore"); err != nil {
		return err
	}
	defer m.lock()()
	f, ok := m.state.fixtures[id]
	if !ok {
		return interfaces.ErrNotFound
	}
	f.HomeScore, f.AwayScore, f.IsForfeit = homeScore, awayScore, isForfeit
	f.Status = model.DeriveFixtureStatus(homeScore, awayScore)
	f.UpdatedAt = time.Now()
	m.state.fixtures[id] = f
	return nil
}

func (m *MemStore) UpsertPlayer(ctx context.Context, in interfaces.PlayerInput) (*model.Player, error) {
	if err := m.injected("UpsertPlayer"); err != nil {
		return nil, err
	}
	defer m.lock()()
	now := time.Now()
	for id, p := range m.state.players {
		switch {
		case in.ExternalID != nil && p.ExternalPlayerID != nil && *p.ExternalPlayerID == *in.ExternalID:
			p.Name, p.TeamID, p.UpdatedAt = in.Name, in.TeamID, now
			m.state.players[id] = p
			return &p, nil
		case in.ExternalID == nil && p.ExternalPlayerID == nil && p.Name == in.Name && p.TeamID == in.TeamID:
			return &p, nil
		}
	}
	p := model.Player{ID: m.state.id(), Name: in.Name, TeamID: in.TeamID, CreatedAt: now, UpdatedAt: now}
	if in.ExternalID != nil {
		ext := *in.ExternalID
		p.ExternalPlayerID = &ext
	}
	m.state.players[p.ID] = p
	return &p, nil
}

func (m *MemStore) UpsertPlayerAward(ctx context.Context, award *model.PlayerAward) (*model.PlayerAward, error) {
	if err := m.injected("UpsertPlayerAward"); err != nil {
		return nil, err
	}
	defer m.lock()()
	row := *award
	row.UpdatedAt = time.Now()
	for id, a := range m.state.awards {
		if a.PlayerID == row.PlayerID && a.DivisionID == row.DivisionID && a.AwardType == row.AwardType {
			row.ID = id
			m.state.awards[id] = row
			return &row, nil
		}
	}
	row.ID = m.state.id()
	m.state.awards[row.ID] = row
	return &row, nil
}

func (m *MemStore) SaveSyncRun(ctx context.Context, run *model.SyncRun) error {
	if err := m.injected("SaveSyncRun"); err != nil {
		return err
	}
	defer m.lock()()
	run.ID = m.state.id()
	m.state.runs = append(m.state.runs, *run)
	return nil
}
