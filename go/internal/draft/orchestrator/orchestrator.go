package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/livedraft/go/internal/draft/autopick"
	"github.com/mcdev12/livedraft/go/internal/draft/events"
	"github.com/mcdev12/livedraft/go/internal/models"
)

// Config tunes the orchestrator. Zero fields take the DefaultConfig value.
type Config struct {
	EvictAfter        time.Duration
	StoreAttempts     int
	RetryDelay        time.Duration
	AttemptTimeout    time.Duration
	ReconcileInterval time.Duration
	ReconcileWorkers  int
	TickInterval      time.Duration
	MailboxSize       int
	PublishTimeout    time.Duration
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		EvictAfter:        10 * time.Minute,
		StoreAttempts:     3,
		RetryDelay:        100 * time.Millisecond,
		AttemptTimeout:    2 * time.Second,
		ReconcileInterval: 5 * time.Second,
		ReconcileWorkers:  4,
		TickInterval:      time.Second,
		MailboxSize:       64,
		PublishTimeout:    2 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.EvictAfter <= 0 {
		c.EvictAfter = d.EvictAfter
	}
	if c.StoreAttempts <= 0 {
		c.StoreAttempts = d.StoreAttempts
	}
	if c.RetryDelay < 0 {
		c.RetryDelay = d.RetryDelay
	}
	if c.AttemptTimeout <= 0 {
		c.AttemptTimeout = d.AttemptTimeout
	}
	if c.ReconcileInterval <= 0 {
		c.ReconcileInterval = d.ReconcileInterval
	}
	if c.ReconcileWorkers <= 0 {
		c.ReconcileWorkers = d.ReconcileWorkers
	}
	if c.TickInterval <= 0 {
		c.TickInterval = d.TickInterval
	}
	if c.MailboxSize <= 0 {
		c.MailboxSize = d.MailboxSize
	}
	if c.PublishTimeout <= 0 {
		c.PublishTimeout = d.PublishTimeout
	}
	return c
}

// Option customises an Orchestrator.
type Option func(*Orchestrator)

// WithClock replaces the real clock, mainly for tests.
func WithClock(clock clockwork.Clock) Option {
	return func(o *Orchestrator) { o.clock = clock }
}

// WithAutoPicker replaces the round-banded selector.
func WithAutoPicker(picker AutoPicker) Option {
	return func(o *Orchestrator) { o.picker = picker }
}

// WithNotifier sets where turn and pick notifications go.
func WithNotifier(n Notifier) Option {
	return func(o *Orchestrator) { o.notifier = n }
}

// WithLeaser makes every session load take a draft ownership lease.
func WithLeaser(l Leaser) Option {
	return func(o *Orchestrator) { o.leaser = l }
}

// WithConfig overrides the timing and retry configuration.
func WithConfig(cfg Config) Option {
	return func(o *Orchestrator) { o.cfg = cfg }
}

// Orchestrator runs live drafts. Every operation is keyed by draft id and routed to
// that draft's session, which is loaded on first use.
type Orchestrator struct {
	leagues    LeagueSource
	store      Store
	publisher  Publisher
	authorizer Authorizer
	notifier   Notifier
	picker     AutoPicker
	leaser     Leaser
	clock      clockwork.Clock
	cfg        Config
	instanceID string

	persister  *persister
	reconciler *Reconciler
	registry   *registry
}

// New creates an Orchestrator.
func New(leagues LeagueSource, store Store, publisher Publisher, authorizer Authorizer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		leagues:    leagues,
		store:      store,
		publisher:  publisher,
		authorizer: authorizer,
		clock:      clockwork.NewRealClock(),
		cfg:        DefaultConfig(),
		instanceID: uuid.New().String()[:8], // short ID for logging
	}
	for _, opt := range opts {
		opt(o)
	}
	o.cfg = o.cfg.withDefaults()
	if o.picker == nil {
		o.picker = autopick.NewSelector(nil)
	}

	o.reconciler = newReconciler(o.clock, o.cfg.ReconcileInterval, o.cfg.AttemptTimeout, o.cfg.ReconcileWorkers, o.instanceID)
	o.persister = &persister{
		clock:          o.clock,
		attempts:       o.cfg.StoreAttempts,
		retryDelay:     o.cfg.RetryDelay,
		attemptTimeout: o.cfg.AttemptTimeout,
		reconciler:     o.reconciler,
	}
	o.registry = newRegistry(o.clock, o.leaser, o.cfg.EvictAfter, o.loadSession)
	return o
}

// Run drives background store reconciliation until ctx is cancelled.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.reconciler.Run(ctx)
	return nil
}

func (o *Orchestrator) loadSession(ctx context.Context, draftID uuid.UUID) (*session, error) {
	cfg, err := o.leagues.LoadDraftConfig(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("load draft config: %w", err)
	}

	snap, err := o.store.LoadDraft(ctx, draftID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("load draft snapshot: %w", err)
	}
	if err != nil {
		snap = nil
	}
	if cfg.Draft.ID == uuid.Nil {
		cfg.Draft.ID = draftID
	}
	if cfg.Draft.LeagueID == uuid.Nil {
		cfg.Draft.LeagueID = cfg.League.ID
	}

	s, err := newSession(cfg, snap, sessionDeps{
		clock:        o.clock,
		store:        o.store,
		persist:      o.persister,
		publisher:    o.publisher,
		notifier:     o.notifier,
		picker:       o.picker,
		tickInterval: o.cfg.TickInterval,
		mailboxSize:  o.cfg.MailboxSize,
		publishWait:  o.cfg.PublishTimeout,
		onTerminal:   o.registry.scheduleEviction,
	})
	if err != nil {
		return nil, err
	}

	s.start()
	if err := s.do(ctx, s.afterLoad); err != nil {
		s.close()
		return nil, err
	}
	return s, nil
}

// InitializeOrLoad makes sure a session exists for the draft and returns its state.
// Repeated calls return the same in-memory session.
func (o *Orchestrator) InitializeOrLoad(ctx context.Context, draftID uuid.UUID) (events.DraftState, error) {
	s, err := o.registry.getOrCreate(ctx, draftID)
	if err != nil {
		return events.DraftState{}, err
	}
	return o.stateOf(ctx, s)
}

// Start begins a waiting draft. Commissioner only.
func (o *Orchestrator) Start(ctx context.Context, draftID, requesterID uuid.UUID) error {
	s, err := o.commissionerSession(ctx, draftID, requesterID)
	if err != nil {
		return err
	}
	return s.do(ctx, s.startDraft)
}

// Pause freezes the clock of the team on the clock. Commissioner only.
func (o *Orchestrator) Pause(ctx context.Context, draftID, requesterID uuid.UUID) error {
	s, err := o.commissionerSession(ctx, draftID, requesterID)
	if err != nil {
		return err
	}
	return s.do(ctx, func() error { return s.pause(requesterID) })
}

// Resume restarts a paused draft with exactly the time that was left. Commissioner only.
func (o *Orchestrator) Resume(ctx context.Context, draftID, requesterID uuid.UUID) error {
	s, err := o.commissionerSession(ctx, draftID, requesterID)
	if err != nil {
		return err
	}
	return s.do(ctx, s.resume)
}

// SubmitPick commits a pick for the team on the clock.
func (o *Orchestrator) SubmitPick(ctx context.Context, draftID, teamID, playerID uuid.UUID, origin models.PickOrigin) (models.DraftPick, error) {
	s, err := o.registry.getOrCreate(ctx, draftID)
	if err != nil {
		return models.DraftPick{}, err
	}
	if origin == "" {
		origin = models.PickOriginHuman
	}

	var pick models.DraftPick
	err = s.do(ctx, func() error {
		var perr error
		pick, perr = s.submitPick(teamID, playerID, origin)
		return perr
	})
	return pick, err
}

// SubmitPickForUser resolves the team owned by userID and submits a human pick for it.
func (o *Orchestrator) SubmitPickForUser(ctx context.Context, draftID, userID, playerID uuid.UUID) (models.DraftPick, error) {
	return o.submitPickAs(ctx, draftID, userID, uuid.Nil, playerID)
}

// submitPickAs submits a human pick for a team userID owns. A non-nil teamID
// names which one and is rejected when it is not theirs.
func (o *Orchestrator) submitPickAs(ctx context.Context, draftID, userID, teamID, playerID uuid.UUID) (models.DraftPick, error) {
	s, err := o.registry.getOrCreate(ctx, draftID)
	if err != nil {
		return models.DraftPick{}, err
	}

	var pick models.DraftPick
	err = s.do(ctx, func() error {
		team, err := s.ownedTeam(userID, teamID)
		if err != nil {
			return err
		}
		pick, err = s.submitPick(team.ID, playerID, models.PickOriginHuman)
		return err
	})
	return pick, err
}

// GetState returns a deep copy of the draft's current state.
func (o *Orchestrator) GetState(ctx context.Context, draftID uuid.UUID) (events.DraftState, error) {
	s, err := o.registry.getOrCreate(ctx, draftID)
	if err != nil {
		return events.DraftState{}, err
	}
	return o.stateOf(ctx, s)
}

func (o *Orchestrator) stateOf(ctx context.Context, s *session) (events.DraftState, error) {
	var st events.DraftState
	err := s.do(ctx, func() error {
		st = s.state()
		return nil
	})
	return st, err
}

// PostChat appends a message to the draft room.
func (o *Orchestrator) PostChat(ctx context.Context, draftID, userID uuid.UUID, body string) (models.ChatMessage, error) {
	s, err := o.registry.getOrCreate(ctx, draftID)
	if err != nil {
		return models.ChatMessage{}, err
	}

	var msg models.ChatMessage
	err = s.do(ctx, func() error {
		var perr error
		msg, perr = s.postChat(userID, body)
		return perr
	})
	return msg, err
}

// SetTeamOnline records whether a team's owner is connected.
func (o *Orchestrator) SetTeamOnline(ctx context.Context, draftID, teamID uuid.UUID, online bool) error {
	s, err := o.registry.getOrCreate(ctx, draftID)
	if err != nil {
		return err
	}
	return s.do(ctx, func() error {
		return s.updateTeam(teamID, onlineFlag(online))
	})
}

// SetUserOnline is SetTeamOnline for the team owned by userID. Users without a
// team in the draft are ignored.
func (o *Orchestrator) SetUserOnline(ctx context.Context, draftID, userID uuid.UUID, online bool) error {
	s, err := o.registry.getOrCreate(ctx, draftID)
	if err != nil {
		return err
	}
	return s.do(ctx, func() error {
		team, err := s.ownedTeam(userID, uuid.Nil)
		if errors.Is(err, ErrUnknownTeam) {
			return nil
		}
		if err != nil {
			return err
		}
		return s.updateTeam(team.ID, onlineFlag(online))
	})
}

// SetAutoPick turns auto-drafting on or off for a team.
func (o *Orchestrator) SetAutoPick(ctx context.Context, draftID, teamID uuid.UUID, enabled bool) error {
	s, err := o.registry.getOrCreate(ctx, draftID)
	if err != nil {
		return err
	}
	return s.do(ctx, func() error {
		return s.updateTeam(teamID, autoPickFlag(enabled))
	})
}

// updateOwnedTeam applies a flag change to a team userID owns.
func (o *Orchestrator) updateOwnedTeam(ctx context.Context, draftID, userID, teamID uuid.UUID, apply func(t *models.DraftTeam) bool) error {
	s, err := o.registry.getOrCreate(ctx, draftID)
	if err != nil {
		return err
	}
	return s.do(ctx, func() error {
		team, err := s.ownedTeam(userID, teamID)
		if err != nil {
			return err
		}
		return s.updateTeam(team.ID, apply)
	})
}

func onlineFlag(online bool) func(t *models.DraftTeam) bool {
	return func(t *models.DraftTeam) bool {
		if t.Online == online {
			return false
		}
		t.Online = online
		return true
	}
}

func autoPickFlag(enabled bool) func(t *models.DraftTeam) bool {
	return func(t *models.DraftTeam) bool {
		if t.AutoPickEnabled == enabled {
			return false
		}
		t.AutoPickEnabled = enabled
		return true
	}
}

// ActiveDraftIDs lists drafts with a live session in this process.
func (o *Orchestrator) ActiveDraftIDs() []uuid.UUID {
	return o.registry.ids()
}

// Teardown stops a draft's session and timer and releases its lease.
func (o *Orchestrator) Teardown(ctx context.Context, draftID uuid.UUID) {
	o.registry.remove(ctx, draftID)
}

// Shutdown tears down every session and makes a last pass over queued store writes.
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	log.Info().
		Str("instance", o.instanceID).
		Int("sessions", len(o.registry.ids())).
		Msg("shutting down draft sessions")

	o.registry.removeAll(ctx)
	o.reconciler.DrainAll(ctx)

	if n := o.reconciler.Backlog(); n > 0 {
		return fmt.Errorf("%d store writes still pending at shutdown", n)
	}
	return nil
}

// PendingWrites is the number of store writes waiting for reconciliation.
func (o *Orchestrator) PendingWrites() int {
	return o.reconciler.Backlog()
}

// ReconcileNow makes one synchronous reconciliation pass.
func (o *Orchestrator) ReconcileNow(ctx context.Context) {
	o.reconciler.DrainAll(ctx)
}

func (o *Orchestrator) commissionerSession(ctx context.Context, draftID, requesterID uuid.UUID) (*session, error) {
	s, err := o.registry.getOrCreate(ctx, draftID)
	if err != nil {
		return nil, err
	}
	ok, err := o.authorizer.IsCommissioner(ctx, s.leagueID, requesterID)
	if err != nil {
		return nil, fmt.Errorf("check commissioner: %w", err)
	}
	if !ok {
		return nil, ErrUnauthorized
	}
	return s, nil
}
