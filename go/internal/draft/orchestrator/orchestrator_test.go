package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/mcdev12/livedraft/go/internal/draft/events"
	"github.com/mcdev12/livedraft/go/internal/draft/orchestrator/mocks"
	"github.com/mcdev12/livedraft/go/internal/draft/repository"
	"github.com/mcdev12/livedraft/go/internal/models"
)

func Test_InitializeOrLoad_Creates_Waiting_Draft_Once(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, 4, 3)
	f.leagues.delay = 20 * time.Millisecond

	// When many callers initialize the same draft at once
	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.orch.InitializeOrLoad(f.ctx, f.draftID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		req.NoError(err)
	}

	// Then the league configuration was loaded once and a waiting header was stored
	req.Equal(int32(1), f.leagues.loads.Load())
	req.Equal([]uuid.UUID{f.draftID}, f.orch.ActiveDraftIDs())

	snap, err := f.memory.LoadDraft(f.ctx, f.draftID)
	req.NoError(err)
	req.Equal(models.DraftStatusWaiting, snap.Draft.Status)

	st := f.state()
	req.Equal(models.DraftStatusWaiting, st.Status)
	req.Equal(12, st.TotalPicks)
	req.Nil(st.OnTheClock)
	req.Len(st.Available, len(f.players))
}

func Test_InitializeOrLoad_Unknown_Draft(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, 2, 2)

	_, err := f.orch.InitializeOrLoad(f.ctx, uuid.New())

	req.ErrorIs(err, ErrDraftNotFound)
	req.Empty(f.orch.ActiveDraftIDs())
}

func Test_Start_Arms_First_Turn_And_Broadcasts_Snapshot(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, 3, 2)

	f.start()

	st := f.state()
	req.Equal(models.DraftStatusInProgress, st.Status)
	req.Equal(1, st.CurrentPick)
	req.Equal(1, st.CurrentRound)
	req.Equal(f.teams[0].ID, *st.OnTheClock)
	req.Equal(60, st.TimeRemainingSec)

	types := make([]events.EventType, 0)
	for _, e := range f.pub.all() {
		types = append(types, e.Type)
	}
	req.Equal([]events.EventType{
		events.EventTypeDraftStarted,
		events.EventTypePickStarted,
		events.EventTypeDraftState,
	}, types)

	// And a second start is rejected
	req.ErrorIs(f.orch.Start(f.ctx, f.draftID, f.commissioner), ErrSessionNotActive)
}

func Test_Commissioner_Operations_Reject_Others(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, 2, 2)
	_, err := f.orch.InitializeOrLoad(f.ctx, f.draftID)
	req.NoError(err)

	stranger := uuid.New()
	req.ErrorIs(f.orch.Start(f.ctx, f.draftID, stranger), ErrUnauthorized)

	f.start()
	req.ErrorIs(f.orch.Pause(f.ctx, f.draftID, stranger), ErrUnauthorized)
	req.ErrorIs(f.orch.Resume(f.ctx, f.draftID, stranger), ErrUnauthorized)
	req.Equal(models.DraftStatusInProgress, f.state().Status)
}

func Test_SubmitPick_Follows_Snake_Order(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, 3, 3)
	f.start()

	// When every pick is made by whoever is on the clock
	var order []uuid.UUID
	for i := 0; i < 9; i++ {
		team := f.onTheClock()
		order = append(order, team)
		st := f.state()
		_, err := f.orch.SubmitPick(f.ctx, f.draftID, team, st.Available[0].ID, models.PickOriginHuman)
		req.NoError(err)
	}

	// Then the order snakes and the draft completes
	a, b, c := f.teams[0].ID, f.teams[1].ID, f.teams[2].ID
	req.Equal([]uuid.UUID{a, b, c, c, b, a, a, b, c}, order)

	st := f.state()
	req.Equal(models.DraftStatusCompleted, st.Status)
	req.Nil(st.OnTheClock)
	req.Len(st.Picks, 9)
	for i, p := range st.Picks {
		req.Equal(i+1, p.OverallPick)
		req.Equal((i/3)+1, p.Round)
	}

	// Pool and rosters are disjoint and cover the universe
	seen := make(map[uuid.UUID]bool)
	for _, team := range st.Teams {
		req.Len(team.Roster, 3)
		for _, p := range team.Roster {
			req.False(seen[p.ID])
			seen[p.ID] = true
		}
	}
	for _, p := range st.Available {
		req.False(seen[p.ID])
		seen[p.ID] = true
	}
	req.Len(seen, len(f.players))

	rosters, err := f.memory.Rosters(context.Background(), f.draftID)
	req.NoError(err)
	req.Len(rosters, 9)
	req.Len(f.pub.ofType(events.EventTypeDraftCompleted), 1)
}

func Test_SubmitPick_Linear_Order(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, 2, 2, withSettings(func(s *models.DraftSettings) { s.DraftType = models.DraftTypeLinear }))
	f.start()

	var order []uuid.UUID
	for i := 0; i < 4; i++ {
		team := f.onTheClock()
		order = append(order, team)
		_, err := f.orch.SubmitPick(f.ctx, f.draftID, team, f.state().Available[0].ID, models.PickOriginHuman)
		req.NoError(err)
	}

	a, b := f.teams[0].ID, f.teams[1].ID
	req.Equal([]uuid.UUID{a, b, a, b}, order)
}

func Test_SubmitPick_Rejections_Leave_State_Unchanged(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, 2, 2)

	// Not started yet
	_, err := f.orch.SubmitPick(f.ctx, f.draftID, f.teams[0].ID, f.players[0].ID, models.PickOriginHuman)
	req.ErrorIs(err, ErrSessionNotActive)

	f.start()
	before := f.state()
	published := len(f.pub.all())

	// Out of turn is checked before the player
	_, err = f.orch.SubmitPick(f.ctx, f.draftID, f.teams[1].ID, uuid.New(), models.PickOriginHuman)
	req.ErrorIs(err, ErrOutOfTurn)

	_, err = f.orch.SubmitPick(f.ctx, f.draftID, f.teams[0].ID, uuid.New(), models.PickOriginHuman)
	req.ErrorIs(err, ErrPlayerUnavailable)

	_, err = f.orch.SubmitPick(f.ctx, f.draftID, f.teams[0].ID, f.players[0].ID, models.PickOriginHuman)
	req.NoError(err)
	_, err = f.orch.SubmitPick(f.ctx, f.draftID, f.teams[1].ID, f.players[0].ID, models.PickOriginHuman)
	req.ErrorIs(err, ErrPlayerUnavailable)

	after := f.state()
	req.Equal(before.CurrentPick+1, after.CurrentPick)
	req.Len(after.Picks, 1)
	// Only the accepted pick produced events: PickMade and PickStarted
	req.Len(f.pub.all(), published+2)
}

func Test_Halts_When_Pool_Empties_With_Picks_Due(t *testing.T) {
	req := require.New(t)
	players := playerPool(4)
	f := newFixture(t, 2, 3, withPlayers(players...))
	f.start()
	a, b := f.teams[0].ID, f.teams[1].ID

	// Given A-P1, B-P2, B-P3, A-P4
	for i, team := range []uuid.UUID{a, b, b, a} {
		_, err := f.orch.SubmitPick(f.ctx, f.draftID, team, players[i].ID, models.PickOriginHuman)
		req.NoError(err)
	}

	// Then the draft halts at pick 5 instead of completing
	st := f.state()
	req.Equal(models.DraftStatusHalted, st.Status)
	req.NotEmpty(st.HaltReason)
	req.Equal(5, st.CurrentPick)
	req.Len(st.Picks, 4)
	req.Empty(st.Available)

	halted := f.pub.ofType(events.EventTypeDraftHalted)
	req.Len(halted, 1)
	req.Empty(f.pub.ofType(events.EventTypeDraftCompleted))

	payload, err := events.ParsePayload(halted[0])
	req.NoError(err)
	req.Equal(5, payload.(*events.DraftHaltedPayload).OverallPick)
	req.Equal(a.String(), payload.(*events.DraftHaltedPayload).TeamID)

	snap, err := f.memory.LoadDraft(f.ctx, f.draftID)
	req.NoError(err)
	req.Equal(models.DraftStatusHalted, snap.Draft.Status)
	req.Len(snap.Picks, 4)

	_, err = f.orch.SubmitPick(f.ctx, f.draftID, a, uuid.New(), models.PickOriginHuman)
	req.ErrorIs(err, ErrSessionNotActive)
}

func Test_Expired_Turns_Auto_Pick_To_Completion(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, 2, 3)
	f.start()

	// When nobody ever picks
	st := f.advanceUntil(func(st events.DraftState) bool { return st.Status == models.DraftStatusCompleted })

	// Then every slot was filled once by the auto-picker
	req.Len(st.Picks, 6)
	for i, p := range st.Picks {
		req.Equal(i+1, p.OverallPick)
		req.Equal(models.PickOriginAuto, p.Origin)
	}
	req.Len(f.pub.ofType(events.EventTypePickMade), 6)
	rosters, err := f.memory.Rosters(context.Background(), f.draftID)
	req.NoError(err)
	req.Len(rosters, 6)
}

func Test_Auto_Pick_Teams_Use_The_Shorter_Delay(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, 2, 1, withSettings(func(s *models.DraftSettings) {
		s.TimePerPickSec = 90
		s.AutoPickDelaySec = 5
	}))
	_, err := f.orch.InitializeOrLoad(f.ctx, f.draftID)
	req.NoError(err)
	req.NoError(f.orch.SetTeamOnline(f.ctx, f.draftID, f.teams[0].ID, true))
	f.start()

	// Team A is online and gets the full pick time
	req.Equal(90, f.state().TimeRemainingSec)

	// Switching to auto-pick shortens the live turn
	req.NoError(f.orch.SetAutoPick(f.ctx, f.draftID, f.teams[0].ID, true))
	req.Equal(5, f.state().TimeRemainingSec)

	f.clock.Advance(5 * time.Second)
	st := f.advanceUntil(func(st events.DraftState) bool { return st.CurrentPick == 2 })
	req.Equal(models.PickOriginAuto, st.Picks[0].Origin)

	// Team B never connected, so its turn is short as well
	req.LessOrEqual(st.TimeRemainingSec, 5)
	req.Len(f.pub.ofType(events.EventTypeTeamStatusChanged), 2)

	req.ErrorIs(f.orch.SetAutoPick(f.ctx, f.draftID, uuid.New(), true), ErrUnknownTeam)
}

func Test_Auto_Pick_Team_Completes_Alongside_Humans(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, 3, 3, withSettings(func(s *models.DraftSettings) {
		s.AutoPickDelaySec = 5
	}))
	_, err := f.orch.InitializeOrLoad(f.ctx, f.draftID)
	req.NoError(err)

	// Given team B drafts on auto-pick and never submits, while A and C are at the table
	robot := f.teams[1]
	req.NoError(f.orch.SetAutoPick(f.ctx, f.draftID, robot.ID, true))
	owners := make(map[uuid.UUID]uuid.UUID)
	for _, team := range f.teams {
		owners[team.ID] = team.OwnerID
		if team.ID != robot.ID {
			req.NoError(f.orch.SetTeamOnline(f.ctx, f.draftID, team.ID, true))
		}
	}
	f.start()

	// When the humans pick the best available player whenever they are up
	for st := f.state(); st.Status != models.DraftStatusCompleted; st = f.state() {
		req.NotNil(st.OnTheClock)
		if *st.OnTheClock == robot.ID {
			pick := st.CurrentPick
			f.advanceUntil(func(next events.DraftState) bool {
				return next.CurrentPick > pick || next.Status == models.DraftStatusCompleted
			})
			continue
		}
		req.NotEmpty(st.Available)
		req.NoError(f.orch.HandleCommand(f.ctx, Command{
			Type:     CommandMakePick,
			DraftID:  f.draftID,
			UserID:   owners[*st.OnTheClock],
			PlayerID: st.Available[0].ID,
		}))
	}

	// Then the draft completes and the auto team holds a full roster of auto picks
	st := f.state()
	req.Len(st.Picks, 9)
	for _, p := range st.Picks {
		if p.TeamID == robot.ID {
			req.Equal(models.PickOriginAuto, p.Origin)
		} else {
			req.Equal(models.PickOriginHuman, p.Origin)
		}
	}
	for _, team := range st.Teams {
		req.Len(team.Roster, 3, team.Name)
	}
	rosters, err := f.memory.Rosters(context.Background(), f.draftID)
	req.NoError(err)
	req.Len(rosters, 9)
}

func Test_Turn_Expires_At_Most_Once(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, 2, 2)
	f.start()
	first := f.teams[0].ID

	// Given the timer is about to fire, a human pick lands first
	f.clock.Advance(59 * time.Second)
	_, err := f.orch.SubmitPick(f.ctx, f.draftID, first, f.players[0].ID, models.PickOriginHuman)
	req.NoError(err)

	// When the old deadline passes
	f.clock.Advance(2 * time.Second)
	st := f.state()

	// Then no auto-pick happened for the filled slot or early for the next one
	req.Equal(2, st.CurrentPick)
	req.Len(st.Picks, 1)

	// And the next turn expires exactly once
	st = f.advanceUntil(func(st events.DraftState) bool { return st.CurrentPick == 3 })
	req.Len(st.Picks, 2)
	req.Equal(models.PickOriginAuto, st.Picks[1].Origin)
	made := f.pub.ofType(events.EventTypePickMade)
	req.Len(made, 2)
}

func Test_Pause_And_Resume_Preserve_Remaining_Time(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, 2, 2)
	f.start()

	// Given 20 seconds of the first turn have elapsed
	f.clock.Advance(20 * time.Second)

	// When the commissioner pauses
	req.NoError(f.orch.Pause(f.ctx, f.draftID, f.commissioner))
	st := f.state()
	req.Equal(models.DraftStatusPaused, st.Status)
	req.Equal(40, st.TimeRemainingSec)

	// Then time stands still and picks are refused
	f.clock.Advance(10 * time.Minute)
	req.Equal(40, f.state().TimeRemainingSec)
	_, err := f.orch.SubmitPick(f.ctx, f.draftID, f.teams[0].ID, f.players[0].ID, models.PickOriginHuman)
	req.ErrorIs(err, ErrSessionNotActive)

	snap, err := f.memory.LoadDraft(f.ctx, f.draftID)
	req.NoError(err)
	req.Equal(models.DraftStatusPaused, snap.Draft.Status)
	req.NotNil(snap.Draft.RemainingSec)
	req.Equal(40, *snap.Draft.RemainingSec)

	// When resumed, the turn gets exactly the 40 seconds that were left
	req.NoError(f.orch.Resume(f.ctx, f.draftID, f.commissioner))
	req.Equal(40, f.state().TimeRemainingSec)

	f.clock.Advance(39 * time.Second)
	req.Equal(1, f.state().CurrentPick)

	f.clock.Advance(time.Second)
	st = f.advanceUntil(func(st events.DraftState) bool { return st.CurrentPick == 2 })
	req.Equal(models.PickOriginAuto, st.Picks[0].Origin)

	req.Len(f.pub.ofType(events.EventTypeDraftPaused), 1)
	req.Len(f.pub.ofType(events.EventTypeDraftResumed), 1)
	req.ErrorIs(f.orch.Resume(f.ctx, f.draftID, f.commissioner), ErrSessionNotActive)
}

func Test_Events_Carry_Increasing_Sequence(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, 2, 2)
	f.start()

	_, err := f.orch.PostChat(f.ctx, f.draftID, f.teams[0].OwnerID, "good luck")
	req.NoError(err)
	_, err = f.orch.SubmitPickForUser(f.ctx, f.draftID, f.teams[0].OwnerID, f.players[3].ID)
	req.NoError(err)

	all := f.pub.all()
	req.NotEmpty(all)
	for i, e := range all {
		req.Equal(uint64(i+1), e.Sequence)
		req.Equal(f.draftID, e.DraftID)
	}

	made := f.pub.ofType(events.EventTypePickMade)
	req.Len(made, 1)
	payload, err := events.ParsePayload(made[0])
	req.NoError(err)
	pm := payload.(*events.PickMadePayload)
	req.Equal(f.players[3].ID.String(), pm.PlayerID)
	req.Contains(pm.Announcement, "Team A")
}

func Test_PostChat_Validates_And_Keeps_Recent_History(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, 2, 2)
	_, err := f.orch.InitializeOrLoad(f.ctx, f.draftID)
	req.NoError(err)

	_, err = f.orch.PostChat(f.ctx, f.draftID, uuid.New(), "   ")
	req.ErrorIs(err, ErrInvalidChat)

	for i := 0; i < chatHistorySize+5; i++ {
		_, err := f.orch.PostChat(f.ctx, f.draftID, uuid.New(), "hello")
		req.NoError(err)
	}
	req.Len(f.state().Chat, chatHistorySize)
}

func Test_Reload_Replays_Picks_And_Rearms(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, 2, 2)
	f.start()
	_, err := f.orch.SubmitPick(f.ctx, f.draftID, f.teams[0].ID, f.players[0].ID, models.PickOriginHuman)
	req.NoError(err)

	// When the session is torn down and loaded again from the store
	f.orch.Teardown(f.ctx, f.draftID)
	req.Empty(f.orch.ActiveDraftIDs())

	st, err := f.orch.InitializeOrLoad(f.ctx, f.draftID)
	req.NoError(err)

	// Then the pick is replayed and the next team is on a fresh clock
	req.Equal(models.DraftStatusInProgress, st.Status)
	req.Equal(2, st.CurrentPick)
	req.Equal(f.teams[1].ID, *st.OnTheClock)
	req.Equal(60, st.TimeRemainingSec)
	req.Len(st.Teams[0].Roster, 1)
	for _, p := range st.Available {
		req.NotEqual(f.players[0].ID, p.ID)
	}
}

func Test_Completed_Sessions_Are_Evicted(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, 1, 1, withOptions(WithConfig(Config{EvictAfter: time.Minute, RetryDelay: time.Millisecond})))
	f.start()

	_, err := f.orch.SubmitPick(f.ctx, f.draftID, f.teams[0].ID, f.players[0].ID, models.PickOriginHuman)
	req.NoError(err)
	req.Equal(models.DraftStatusCompleted, f.state().Status)

	req.Eventually(func() bool {
		f.clock.Advance(10 * time.Second)
		return len(f.orch.ActiveDraftIDs()) == 0
	}, 5*time.Second, time.Millisecond)
}

// flakyStore fails every write while broken is set.
type flakyStore struct {
	*repository.MemoryStore
	mu     sync.Mutex
	broken bool
	calls  int
}

func (s *flakyStore) fail() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.broken {
		return errors.New("connection refused")
	}
	return nil
}

func (s *flakyStore) heal() {
	s.mu.Lock()
	s.broken = false
	s.mu.Unlock()
}

func (s *flakyStore) AppendPick(ctx context.Context, draftID uuid.UUID, pick models.DraftPick) error {
	if err := s.fail(); err != nil {
		return err
	}
	return s.MemoryStore.AppendPick(ctx, draftID, pick)
}

func (s *flakyStore) UpdateSessionStatus(ctx context.Context, draftID uuid.UUID, u models.StatusUpdate) error {
	if err := s.fail(); err != nil {
		return err
	}
	return s.MemoryStore.UpdateSessionStatus(ctx, draftID, u)
}

func Test_Store_Failures_Do_Not_Block_The_Draft(t *testing.T) {
	req := require.New(t)
	var flaky *flakyStore
	f := newFixture(t, 2, 2, withStore(func(m *repository.MemoryStore) Store {
		flaky = &flakyStore{MemoryStore: m}
		return flaky
	}))
	f.start()

	// Given the store goes away
	flaky.mu.Lock()
	flaky.broken = true
	flaky.mu.Unlock()

	// When a pick is made, with the write retries backing off on the fake clock
	var err error
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err = f.orch.SubmitPick(f.ctx, f.draftID, f.teams[0].ID, f.players[0].ID, models.PickOriginHuman)
	}()
	req.Eventually(func() bool {
		select {
		case <-done:
			return true
		default:
			f.clock.Advance(time.Millisecond)
			return false
		}
	}, 5*time.Second, time.Millisecond)

	// Then the pick still succeeds, is broadcast and the writes wait for reconciliation
	req.NoError(err)
	req.Equal(2, f.state().CurrentPick)
	req.Len(f.pub.ofType(events.EventTypePickMade), 1)
	req.Equal(2, f.orch.PendingWrites()) // append_pick, update_status

	f.orch.ReconcileNow(f.ctx)
	req.Equal(2, f.orch.PendingWrites())

	// When the store recovers, the backlog drains in order
	flaky.heal()
	f.orch.ReconcileNow(f.ctx)
	req.Zero(f.orch.PendingWrites())

	snap, err := f.memory.LoadDraft(f.ctx, f.draftID)
	req.NoError(err)
	req.Len(snap.Picks, 1)
	req.Equal(2, snap.Draft.CurrentPick)
}

func Test_Notifier_Hears_Turns_And_Picks(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	notifier := mocks.NewMockNotifier(ctrl)

	f := newFixture(t, 2, 1, withOptions(WithNotifier(notifier)))
	a, b := f.teams[0], f.teams[1]

	gomock.InOrder(
		notifier.EXPECT().YourTurn(gomock.Any(), a.OwnerID, f.draftID, 1),
		notifier.EXPECT().YourTurn(gomock.Any(), b.OwnerID, f.draftID, 1),
		notifier.EXPECT().PickMade(gomock.Any(), a.OwnerID, f.draftID, gomock.Any()).
			Do(func(_ context.Context, _, _ uuid.UUID, pick events.PickMadePayload) {
				req.Equal(1, pick.OverallPick)
			}),
	)

	f.start()
	_, err := f.orch.SubmitPick(f.ctx, f.draftID, a.ID, f.players[0].ID, models.PickOriginHuman)
	req.NoError(err)
}

func Test_Authorizer_Errors_Are_Returned(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	authorizer := mocks.NewMockAuthorizer(ctrl)
	leagues := mocks.NewMockLeagueSource(ctrl)
	store := mocks.NewMockStore(ctrl)

	draftID := uuid.New()
	cfg := &models.DraftConfig{
		Draft: models.Draft{ID: draftID, LeagueID: uuid.New(), Settings: models.DraftSettings{
			Rounds: 1, TimePerPickSec: 30, DraftType: models.DraftTypeSnake, ScoringMode: models.ScoringPPR,
		}},
		Teams: []models.DraftTeam{{FantasyTeam: models.FantasyTeam{ID: uuid.New()}, DraftPosition: 1}},
	}

	leagues.EXPECT().LoadDraftConfig(gomock.Any(), draftID).Return(cfg, nil)
	store.EXPECT().LoadDraft(gomock.Any(), draftID).Return(nil, models.ErrNotFound)
	store.EXPECT().SaveDraft(gomock.Any(), gomock.Any()).Return(nil)
	authorizer.EXPECT().IsCommissioner(gomock.Any(), cfg.Draft.LeagueID, gomock.Any()).Return(false, errors.New("league service down"))

	orch := New(leagues, store, &recordingPublisher{}, authorizer)
	defer func() { _ = orch.Shutdown(context.Background()) }()

	err := orch.Start(context.Background(), draftID, uuid.New())
	req.Error(err)
	req.NotErrorIs(err, ErrUnauthorized)
	req.Contains(err.Error(), "league service down")
}
