package orchestrator

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/mcdev12/livedraft/go/internal/draft/events"
	"github.com/mcdev12/livedraft/go/internal/models"
)

const chatHistorySize = 100

var validate = validator.New()

type sessionDeps struct {
	clock        clockwork.Clock
	store        Store
	persist      *persister
	publisher    Publisher
	notifier     Notifier
	picker       AutoPicker
	tickInterval time.Duration
	mailboxSize  int
	publishWait  time.Duration
	onTerminal   func(draftID uuid.UUID)
}

// session is one live draft. Every field below the mailbox is owned by the actor
// goroutine and must only be touched from inside a mailbox function.
type session struct {
	deps sessionDeps

	mailbox   chan func()
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	id         uuid.UUID
	leagueID   uuid.UUID
	settings   models.DraftSettings
	status     models.DraftStatus
	haltReason string

	currentRound int
	currentPick  int

	teams    []*models.DraftTeam // ordered by draft position
	teamByID map[uuid.UUID]*models.DraftTeam

	players map[uuid.UUID]models.Player // full universe
	pool    map[uuid.UUID]models.Player // still available
	drafted []models.Player
	picks   []models.DraftPick
	chat    []models.ChatMessage

	pausedRemaining time.Duration
	startedAt       *time.Time
	completedAt     *time.Time
	createdAt       time.Time

	timer       *turnTimer
	lastTickSec int

	seq     uint64
	pending []events.Envelope

	// fresh is true when no stored header existed at load
	fresh bool
}

// newSession builds a session from league configuration and, when present, the
// stored snapshot. Stored picks are replayed onto rosters and removed from the pool.
// The actor is not started.
func newSession(cfg *models.DraftConfig, snap *models.DraftSnapshot, deps sessionDeps) (*session, error) {
	if cfg == nil {
		return nil, fmt.Errorf("draft config is required")
	}
	if len(cfg.Teams) == 0 {
		return nil, fmt.Errorf("draft %s has no teams", cfg.Draft.ID)
	}

	header := cfg.Draft
	if snap != nil {
		header = snap.Draft
	}
	settings := header.Settings
	if settings.Roster.IsZero() {
		settings.Roster = models.DefaultRosterRequirements()
	}
	if err := validate.Struct(settings); err != nil {
		return nil, fmt.Errorf("invalid draft settings: %w", err)
	}

	s := &session{
		deps:     deps,
		mailbox:  make(chan func(), deps.mailboxSize),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
		id:       header.ID,
		leagueID: header.LeagueID,
		settings: settings,
		status:   header.Status,
		teamByID: make(map[uuid.UUID]*models.DraftTeam, len(cfg.Teams)),
		players:  make(map[uuid.UUID]models.Player, len(cfg.Players)),
		pool:     make(map[uuid.UUID]models.Player, len(cfg.Players)),
		timer:    newTurnTimer(deps.clock, deps.tickInterval),
		fresh:    snap == nil,
	}
	if s.id == uuid.Nil {
		s.id = cfg.Draft.ID
	}
	if s.status == "" {
		s.status = models.DraftStatusWaiting
	}

	if err := s.loadTeams(cfg.Teams); err != nil {
		return nil, err
	}
	for _, p := range cfg.Players {
		s.players[p.ID] = p
		s.pool[p.ID] = p
	}

	var picks []models.DraftPick
	if snap != nil {
		picks = snap.Picks
	}
	if err := s.replay(picks); err != nil {
		return nil, fmt.Errorf("draft %s: %w", s.id, err)
	}

	s.createdAt = header.CreatedAt
	if s.createdAt.IsZero() {
		s.createdAt = deps.clock.Now()
	}
	s.startedAt = header.StartedAt
	s.completedAt = header.CompletedAt
	s.haltReason = header.HaltReason
	s.currentPick = len(s.picks) + 1
	s.currentRound = s.roundFor(s.currentPick)

	switch s.status {
	case models.DraftStatusPaused:
		s.pausedRemaining = s.settings.PickTime()
		if header.RemainingSec != nil {
			s.pausedRemaining = time.Duration(*header.RemainingSec) * time.Second
		}
	case models.DraftStatusInProgress:
		if s.currentPick > s.totalPicks() {
			// Crashed between the last pick and the completion write
			s.status = models.DraftStatusCompleted
		}
	}

	return s, nil
}

func (s *session) loadTeams(teams []models.DraftTeam) error {
	sorted := make([]models.DraftTeam, len(teams))
	copy(sorted, teams)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].DraftPosition < sorted[j].DraftPosition })

	for i := range sorted {
		t := sorted[i].Clone()
		t.Roster = nil
		if t.DraftPosition != i+1 {
			return fmt.Errorf("draft positions must be 1..%d, got %d for team %s", len(sorted), t.DraftPosition, t.ID)
		}
		if _, dup := s.teamByID[t.ID]; dup {
			return fmt.Errorf("team %s listed twice", t.ID)
		}
		s.teams = append(s.teams, &t)
		s.teamByID[t.ID] = &t
	}
	return nil
}

func (s *session) replay(picks []models.DraftPick) error {
	sorted := append([]models.DraftPick(nil), picks...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].OverallPick < sorted[j].OverallPick })

	for i, pick := range sorted {
		if pick.OverallPick != i+1 {
			return fmt.Errorf("stored picks are not contiguous: expected %d, got %d", i+1, pick.OverallPick)
		}
		if pick.OverallPick > s.totalPicks() {
			return fmt.Errorf("stored pick %d exceeds %d slots", pick.OverallPick, s.totalPicks())
		}
		want := s.teams[s.slot(pick.OverallPick).TeamIndex]
		if pick.TeamID != want.ID {
			return fmt.Errorf("stored pick %d belongs to team %s, order says %s", pick.OverallPick, pick.TeamID, want.ID)
		}
		player, ok := s.pool[pick.PlayerID]
		if !ok {
			return fmt.Errorf("stored pick %d references unknown or duplicate player %s", pick.OverallPick, pick.PlayerID)
		}
		delete(s.pool, player.ID)
		want.Roster = append(want.Roster, player)
		s.drafted = append(s.drafted, player)
		s.picks = append(s.picks, pick)
	}
	return nil
}

// start launches the actor goroutine.
func (s *session) start() {
	activeSessions.Inc()
	go s.run()
}

func (s *session) run() {
	defer func() {
		activeSessions.Dec()
		close(s.done)
	}()

	for {
		select {
		case fn := <-s.mailbox:
			fn()
			s.flush()
		case <-s.quit:
			s.timer.disarm()
			return
		}
	}
}

// close stops the actor and waits for it to exit. The timer is disarmed by the actor.
func (s *session) close() {
	s.closeOnce.Do(func() { close(s.quit) })
	<-s.done
}

// do runs fn on the actor and waits for its result.
func (s *session) do(ctx context.Context, fn func() error) error {
	reply := make(chan error, 1)
	wrapped := func() { reply <- fn() }

	select {
	case s.mailbox <- wrapped:
	case <-s.quit:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-reply:
		return err
	case <-s.done:
		select {
		case err := <-reply:
			return err
		default:
			return ErrSessionClosed
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// post enqueues fn without waiting for it to run.
func (s *session) post(fn func()) {
	select {
	case s.mailbox <- fn:
	case <-s.quit:
	}
}

// tryPost enqueues fn only if the mailbox has room. Used for ticks, which are
// superseded by the next one anyway.
func (s *session) tryPost(fn func()) {
	select {
	case s.mailbox <- fn:
	default:
	}
}

// emit buffers an event. Buffered events are published in order once the current
// mailbox function returns.
func (s *session) emit(typ events.EventType, payload any) {
	env, err := events.New(s.id, s.seq+1, typ, s.deps.clock.Now(), payload)
	if err != nil {
		log.Error().Err(err).Str("draft_id", s.id.String()).Msg("failed to build event")
		return
	}
	s.seq++
	s.pending = append(s.pending, env)
}

// emitSnapshot buffers a DraftState event carrying its own sequence number.
func (s *session) emitSnapshot() {
	st := s.state()
	st.Sequence = s.seq + 1
	s.emit(events.EventTypeDraftState, st)
}

func (s *session) flush() {
	if len(s.pending) == 0 {
		return
	}
	pending := s.pending
	s.pending = nil

	for _, e := range pending {
		ctx, cancel := context.WithTimeout(context.Background(), s.deps.publishWait)
		err := s.deps.publisher.Publish(ctx, e)
		cancel()
		if err != nil {
			log.Warn().
				Err(err).
				Str("draft_id", s.id.String()).
				Str("event_type", string(e.Type)).
				Uint64("sequence", e.Sequence).
				Msg("failed to publish draft event")
		}
	}
}

// afterLoad finishes a freshly built session on the actor: persists a new header
// or re-arms the turn of a draft that was in progress.
func (s *session) afterLoad() error {
	if s.fresh {
		s.persist("save_draft", func(ctx context.Context, store Store, h models.Draft) error {
			return store.SaveDraft(ctx, h)
		})
	}

	switch s.status {
	case models.DraftStatusInProgress:
		s.beginTurn(0)
	case models.DraftStatusCompleted:
		if s.completedAt == nil {
			s.complete()
		} else {
			s.terminal()
		}
	case models.DraftStatusHalted:
		s.terminal()
	}

	log.Info().
		Str("draft_id", s.id.String()).
		Str("status", string(s.status)).
		Int("current_pick", s.currentPick).
		Int("teams", len(s.teams)).
		Int("available", len(s.pool)).
		Msg("draft session loaded")
	return nil
}

func (s *session) totalPicks() int {
	return s.settings.Rounds * len(s.teams)
}

func (s *session) slot(p int) Slot {
	return SlotForPick(s.settings.DraftType, len(s.teams), p)
}

func (s *session) roundFor(p int) int {
	if p > s.totalPicks() {
		return s.settings.Rounds
	}
	return s.slot(p).Round
}

// onTheClock returns the team due at the current pick, or nil once all slots are filled.
func (s *session) onTheClock() *models.DraftTeam {
	if s.currentPick > s.totalPicks() {
		return nil
	}
	return s.teams[s.slot(s.currentPick).TeamIndex]
}

// ownedTeam resolves the team userID acts for. A claimed team must be one the
// user owns; without a claim their team on the clock comes first.
func (s *session) ownedTeam(userID, claimed uuid.UUID) (*models.DraftTeam, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: no user", ErrUnknownTeam)
	}
	if claimed == uuid.Nil {
		if t := s.onTheClock(); t != nil && t.OwnerID == userID {
			return t, nil
		}
	}

	owns := false
	for _, t := range s.teams {
		if t.OwnerID != userID {
			continue
		}
		if claimed == uuid.Nil || t.ID == claimed {
			return t, nil
		}
		owns = true
	}
	if owns {
		return nil, fmt.Errorf("%w: team %s is not owned by %s", ErrUnknownTeam, claimed, userID)
	}
	return nil, fmt.Errorf("%w: no team owned by %s", ErrUnknownTeam, userID)
}

// header is the persisted form of the session.
func (s *session) header() models.Draft {
	h := models.Draft{
		ID:           s.id,
		LeagueID:     s.leagueID,
		Status:       s.status,
		Settings:     s.settings,
		CurrentRound: s.currentRound,
		CurrentPick:  s.currentPick,
		HaltReason:   s.haltReason,
		StartedAt:    s.startedAt,
		CompletedAt:  s.completedAt,
		CreatedAt:    s.createdAt,
		UpdatedAt:    s.deps.clock.Now(),
	}
	if s.status == models.DraftStatusPaused {
		secs := ceilSeconds(s.pausedRemaining)
		h.RemainingSec = &secs
	}
	return h
}

func (s *session) statusUpdate() models.StatusUpdate {
	h := s.header()
	return models.StatusUpdate{
		Status:       h.Status,
		Round:        h.CurrentRound,
		Pick:         h.CurrentPick,
		RemainingSec: h.RemainingSec,
		HaltReason:   h.HaltReason,
		At:           h.UpdatedAt,
	}
}

// persist hands a store write to the persister. The header is captured now so a
// queued retry writes the state of this moment, not a later one.
func (s *session) persist(name string, fn func(ctx context.Context, store Store, h models.Draft) error) {
	h := s.header()
	store := s.deps.store
	op := writeOp{
		draftID: s.id,
		name:    name,
		fn:      func(ctx context.Context) error { return fn(ctx, store, h) },
	}
	// Failures are logged, counted and queued by the persister
	_ = s.deps.persist.write(context.Background(), op)
}

func (s *session) persistStatus() {
	upd := s.statusUpdate()
	s.persist("update_status", func(ctx context.Context, store Store, h models.Draft) error {
		return store.UpdateSessionStatus(ctx, h.ID, upd)
	})
}

// state builds a deep-copied snapshot.
func (s *session) state() events.DraftState {
	st := events.DraftState{
		DraftID:      s.id,
		LeagueID:     s.leagueID,
		Status:       s.status,
		HaltReason:   s.haltReason,
		Settings:     s.settings,
		CurrentRound: s.currentRound,
		CurrentPick:  s.currentPick,
		TotalPicks:   s.totalPicks(),
		Teams:        lo.Map(s.teams, func(t *models.DraftTeam, _ int) models.DraftTeam { return t.Clone() }),
		Picks:        append([]models.DraftPick{}, s.picks...),
		Chat:         append([]models.ChatMessage{}, s.chat...),
		Sequence:     s.seq,
	}

	available := lo.Values(s.pool)
	sort.Slice(available, func(i, j int) bool {
		if available[i].ProjectedPoints != available[j].ProjectedPoints {
			return available[i].ProjectedPoints > available[j].ProjectedPoints
		}
		return available[i].ID.String() < available[j].ID.String()
	})
	st.Available = available

	switch s.status {
	case models.DraftStatusInProgress:
		st.TimeRemainingSec = ceilSeconds(s.timer.remaining())
	case models.DraftStatusPaused:
		st.TimeRemainingSec = ceilSeconds(s.pausedRemaining)
	}
	if s.status == models.DraftStatusInProgress || s.status == models.DraftStatusPaused {
		if team := s.onTheClock(); team != nil {
			id := team.ID
			st.OnTheClock = &id
		}
	}
	return st
}

func (s *session) terminal() {
	if s.deps.onTerminal != nil {
		// The registry takes its own lock; never call it from inside the actor
		go s.deps.onTerminal(s.id)
	}
}
