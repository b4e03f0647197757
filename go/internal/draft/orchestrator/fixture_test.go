package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/livedraft/go/internal/draft/events"
	"github.com/mcdev12/livedraft/go/internal/draft/repository"
	"github.com/mcdev12/livedraft/go/internal/models"
)

type fakeClock interface {
	clockwork.Clock
	Advance(d time.Duration)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Envelope
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) all() []events.Envelope {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Envelope(nil), p.events...)
}

func (p *recordingPublisher) ofType(typ events.EventType) []events.Envelope {
	var out []events.Envelope
	for _, e := range p.all() {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

type staticLeagues struct {
	cfg   models.DraftConfig
	loads atomic.Int32
	delay time.Duration
}

func (l *staticLeagues) LoadDraftConfig(_ context.Context, draftID uuid.UUID) (*models.DraftConfig, error) {
	l.loads.Add(1)
	if l.delay > 0 {
		time.Sleep(l.delay)
	}
	if draftID != l.cfg.Draft.ID {
		return nil, fmt.Errorf("draft %s: %w", draftID, models.ErrNotFound)
	}
	cfg := l.cfg
	cfg.Teams = append([]models.DraftTeam(nil), l.cfg.Teams...)
	cfg.Players = append([]models.Player(nil), l.cfg.Players...)
	return &cfg, nil
}

type commissionerOnly struct {
	id uuid.UUID
}

func (a commissionerOnly) IsCommissioner(_ context.Context, _, userID uuid.UUID) (bool, error) {
	return userID == a.id, nil
}

type fixture struct {
	t            *testing.T
	ctx          context.Context
	clock        fakeClock
	store        Store
	memory       *repository.MemoryStore
	pub          *recordingPublisher
	leagues      *staticLeagues
	orch         *Orchestrator
	draftID      uuid.UUID
	commissioner uuid.UUID
	teams        []models.DraftTeam
	players      []models.Player
}

type fixtureOption func(*fixtureConfig)

type fixtureConfig struct {
	settings models.DraftSettings
	players  []models.Player
	store    func(*repository.MemoryStore) Store
	opts     []Option
}

func withSettings(mutate func(*models.DraftSettings)) fixtureOption {
	return func(c *fixtureConfig) { mutate(&c.settings) }
}

func withPlayers(players ...models.Player) fixtureOption {
	return func(c *fixtureConfig) { c.players = players }
}

func withStore(wrap func(*repository.MemoryStore) Store) fixtureOption {
	return func(c *fixtureConfig) { c.store = wrap }
}

func withOptions(opts ...Option) fixtureOption {
	return func(c *fixtureConfig) { c.opts = append(c.opts, opts...) }
}

func newFixture(t *testing.T, teamCount, rounds int, opts ...fixtureOption) *fixture {
	t.Helper()

	cfg := fixtureConfig{
		settings: models.DraftSettings{
			Rounds:         rounds,
			TimePerPickSec: 60,
			DraftType:      models.DraftTypeSnake,
			ScoringMode:    models.ScoringStandard,
			Roster:         models.DefaultRosterRequirements(),
		},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.players == nil {
		cfg.players = playerPool(teamCount * rounds * 2)
	}

	leagueID := uuid.New()
	draftID := uuid.New()
	teams := make([]models.DraftTeam, teamCount)
	for i := range teams {
		teams[i] = models.DraftTeam{
			FantasyTeam: models.FantasyTeam{
				ID:       uuid.New(),
				LeagueID: leagueID,
				OwnerID:  uuid.New(),
				Name:     fmt.Sprintf("Team %c", 'A'+i),
			},
			DraftPosition: i + 1,
		}
	}

	clock := clockwork.NewFakeClockAt(time.Date(2026, 9, 1, 19, 0, 0, 0, time.UTC))
	memory := repository.NewMemoryStore()
	var store Store = memory
	if cfg.store != nil {
		store = cfg.store(memory)
	}

	f := &fixture{
		t:            t,
		ctx:          context.Background(),
		clock:        clock,
		store:        store,
		memory:       memory,
		pub:          &recordingPublisher{},
		draftID:      draftID,
		commissioner: uuid.New(),
		teams:        teams,
		players:      cfg.players,
	}
	f.leagues = &staticLeagues{cfg: models.DraftConfig{
		Draft:   models.Draft{ID: draftID, LeagueID: leagueID, Settings: cfg.settings},
		League:  models.League{ID: leagueID, Name: "Test League", CommissionerID: f.commissioner},
		Teams:   teams,
		Players: cfg.players,
	}}

	options := append([]Option{
		WithClock(clock),
		WithConfig(Config{RetryDelay: time.Millisecond, AttemptTimeout: time.Second}),
	}, cfg.opts...)
	f.orch = New(f.leagues, store, f.pub, commissionerOnly{id: f.commissioner}, options...)

	t.Cleanup(func() {
		_ = f.orch.Shutdown(context.Background())
	})
	return f
}

func playerPool(n int) []models.Player {
	positions := []models.Position{models.PositionRB, models.PositionWR, models.PositionQB, models.PositionTE, models.PositionWR, models.PositionRB}
	players := make([]models.Player, n)
	for i := range players {
		players[i] = models.Player{
			ID:              uuid.New(),
			FullName:        fmt.Sprintf("Player %02d", i+1),
			Position:        positions[i%len(positions)],
			ProTeam:         "FA",
			ByeWeek:         5 + i%8,
			ProjectedPoints: float64(300 - i*3),
			ADP:             float64(i + 1),
			PositionRank:    i/len(positions) + 1,
		}
	}
	return players
}

func (f *fixture) start() {
	f.t.Helper()
	_, err := f.orch.InitializeOrLoad(f.ctx, f.draftID)
	require.NoError(f.t, err)
	require.NoError(f.t, f.orch.Start(f.ctx, f.draftID, f.commissioner))
}

func (f *fixture) state() events.DraftState {
	f.t.Helper()
	st, err := f.orch.GetState(f.ctx, f.draftID)
	require.NoError(f.t, err)
	return st
}

// onTheClock returns the team due to pick now.
func (f *fixture) onTheClock() uuid.UUID {
	f.t.Helper()
	st := f.state()
	require.NotNil(f.t, st.OnTheClock)
	return *st.OnTheClock
}

// advanceUntil moves the fake clock a second at a time until cond holds.
func (f *fixture) advanceUntil(cond func(st events.DraftState) bool) events.DraftState {
	f.t.Helper()
	var last events.DraftState
	require.Eventually(f.t, func() bool {
		last = f.state()
		if cond(last) {
			return true
		}
		f.clock.Advance(time.Second)
		return false
	}, 10*time.Second, time.Millisecond)
	return last
}
