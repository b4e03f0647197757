package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/livedraft/go/internal/draft/events"
	"github.com/mcdev12/livedraft/go/internal/draft/orchestrator"
	"github.com/mcdev12/livedraft/go/internal/models"
)

type presence struct {
	userID uuid.UUID
	online bool
}

type fakeDrafts struct {
	mu       sync.Mutex
	states   map[uuid.UUID]events.DraftState
	commands []orchestrator.Command
	presence []presence
	cmdErr   error

	// onlineDelay slows down going online, the way a cold draft load would
	onlineDelay time.Duration
}

func newFakeDrafts(states ...events.DraftState) *fakeDrafts {
	f := &fakeDrafts{states: make(map[uuid.UUID]events.DraftState)}
	for _, st := range states {
		f.states[st.DraftID] = st
	}
	return f
}

func (f *fakeDrafts) GetState(_ context.Context, id uuid.UUID) (events.DraftState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.states[id]
	if !ok {
		return events.DraftState{}, fmt.Errorf("load %s: %w", id, orchestrator.ErrDraftNotFound)
	}
	return st, nil
}

func (f *fakeDrafts) ActiveDraftIDs() []uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []uuid.UUID
	for id := range f.states {
		ids = append(ids, id)
	}
	return ids
}

func (f *fakeDrafts) HandleCommand(_ context.Context, cmd orchestrator.Command) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commands = append(f.commands, cmd)
	return f.cmdErr
}

func (f *fakeDrafts) SetUserOnline(_ context.Context, _, userID uuid.UUID, online bool) error {
	if online && f.onlineDelay > 0 {
		time.Sleep(f.onlineDelay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.presence = append(f.presence, presence{userID: userID, online: online})
	return nil
}

func (f *fakeDrafts) snapshot() ([]orchestrator.Command, []presence) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]orchestrator.Command(nil), f.commands...), append([]presence(nil), f.presence...)
}

func draftState(seq uint64) events.DraftState {
	return events.DraftState{
		DraftID:     uuid.New(),
		LeagueID:    uuid.New(),
		Status:      models.DraftStatusInProgress,
		Settings:    models.DraftSettings{Rounds: 3},
		CurrentPick: 2,
		TotalPicks:  12,
		Teams:       make([]models.DraftTeam, 4),
		Sequence:    seq,
	}
}

func newGateway(t *testing.T, drafts *fakeDrafts) (*ConnectionManager, *httptest.Server) {
	t.Helper()
	cm := NewConnectionManager(DefaultConnectionConfig(), drafts)
	ctx, cancel := context.WithCancel(context.Background())
	go cm.Start(ctx)

	mux := http.NewServeMux()
	NewWebSocketHandler(cm).RegisterRoutes(mux)
	NewStateHandler(drafts, time.Second).RegisterStateRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return cm, srv
}

func dial(t *testing.T, srv *httptest.Server, draftID, userID uuid.UUID) *websocket.Conn {
	t.Helper()
	url := fmt.Sprintf("ws%s/ws/draft?draft_id=%s", strings.TrimPrefix(srv.URL, "http"), draftID)
	if userID != uuid.Nil {
		url += "&user_id=" + userID.String()
	}
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) events.Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var env events.Envelope
	require.NoError(t, conn.ReadJSON(&env))
	return env
}

func Test_Websocket_Sends_Snapshot_Then_Broadcasts(t *testing.T) {
	req := require.New(t)

	// Given a draft at sequence 7
	st := draftState(7)
	drafts := newFakeDrafts(st)
	cm, srv := newGateway(t, drafts)
	userID := uuid.New()

	// When a participant connects
	conn := dial(t, srv, st.DraftID, userID)

	// Then the first frame is the snapshot carrying the current sequence
	first := readFrame(t, conn)
	req.Equal(events.EventTypeDraftState, first.Type)
	req.Equal(uint64(7), first.Sequence)
	var got events.DraftState
	req.NoError(json.Unmarshal(first.Data, &got))
	req.Equal(st.DraftID, got.DraftID)

	// And the owner is marked online
	req.Eventually(func() bool {
		_, p := drafts.snapshot()
		return len(p) == 1 && p[0] == presence{userID: userID, online: true}
	}, 2*time.Second, 10*time.Millisecond)

	// When an event for the draft is published
	tick, err := events.New(st.DraftID, 8, events.EventTypeTimerTick, time.Now(), events.TimerTickPayload{TimeRemainingSec: 9})
	req.NoError(err)
	req.NoError(cm.Publish(context.Background(), tick))

	// Then the connection receives it
	next := readFrame(t, conn)
	req.Equal(events.EventTypeTimerTick, next.Type)
	req.Equal(uint64(8), next.Sequence)
	req.Equal(1, cm.GetConnectionStats().TotalConnections)
}

func Test_Websocket_Command_Rejection_Goes_To_Sender(t *testing.T) {
	req := require.New(t)

	// Given a service that rejects every command as out of turn
	st := draftState(1)
	drafts := newFakeDrafts(st)
	drafts.cmdErr = fmt.Errorf("pick 2: %w", orchestrator.ErrOutOfTurn)
	_, srv := newGateway(t, drafts)
	userID := uuid.New()
	conn := dial(t, srv, st.DraftID, userID)
	readFrame(t, conn)

	// When the client submits a pick
	playerID := uuid.New()
	req.NoError(conn.WriteJSON(ClientMessage{ID: "c-1", Type: orchestrator.CommandMakePick, PlayerID: playerID}))

	// Then it is told why
	frame := readFrame(t, conn)
	req.Equal(EventTypeCommandRejected, frame.Type)
	var payload CommandRejectedPayload
	req.NoError(json.Unmarshal(frame.Data, &payload))
	req.Equal("c-1", payload.CommandID)
	req.Equal("out_of_turn", payload.Code)

	// And the command carried the connection's draft and user
	cmds, _ := drafts.snapshot()
	req.Len(cmds, 1)
	req.Equal(st.DraftID, cmds[0].DraftID)
	req.Equal(userID, cmds[0].UserID)
	req.Equal(playerID, cmds[0].PlayerID)
}

func Test_Websocket_Spectator_Cannot_Command_And_Disconnect_Marks_Offline(t *testing.T) {
	req := require.New(t)
	st := draftState(1)
	drafts := newFakeDrafts(st)
	cm, srv := newGateway(t, drafts)

	// Given a spectator and a participant
	spectator := dial(t, srv, st.DraftID, uuid.Nil)
	readFrame(t, spectator)
	userID := uuid.New()
	participant := dial(t, srv, st.DraftID, userID)
	readFrame(t, participant)

	// When the spectator sends a command
	req.NoError(spectator.WriteJSON(ClientMessage{Type: orchestrator.CommandStartDraft}))

	// Then it is refused without reaching the service
	frame := readFrame(t, spectator)
	req.Equal(EventTypeCommandRejected, frame.Type)
	cmds, _ := drafts.snapshot()
	req.Empty(cmds)

	// When the participant disconnects
	req.NoError(participant.Close())

	// Then they are marked offline and only the spectator remains
	req.Eventually(func() bool {
		_, p := drafts.snapshot()
		return len(p) > 0 && p[len(p)-1] == presence{userID: userID, online: false}
	}, 2*time.Second, 10*time.Millisecond)
	req.Eventually(func() bool {
		return cm.GetConnectionStats().TotalConnections == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func Test_Websocket_Unknown_Draft_Is_Not_Found(t *testing.T) {
	req := require.New(t)
	_, srv := newGateway(t, newFakeDrafts())

	url := fmt.Sprintf("ws%s/ws/draft?draft_id=%s", strings.TrimPrefix(srv.URL, "http"), uuid.New())
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	req.Error(err)
	req.NotNil(resp)
	req.Equal(http.StatusNotFound, resp.StatusCode)
}

func Test_StateHandler_Routes(t *testing.T) {
	req := require.New(t)
	st := draftState(3)
	drafts := newFakeDrafts(st)
	_, srv := newGateway(t, drafts)

	// State of a known draft
	resp, err := http.Get(fmt.Sprintf("%s/api/drafts/%s/state", srv.URL, st.DraftID))
	req.NoError(err)
	var got events.DraftState
	req.NoError(json.NewDecoder(resp.Body).Decode(&got))
	resp.Body.Close()
	req.Equal(http.StatusOK, resp.StatusCode)
	req.Equal(uint64(3), got.Sequence)

	// Unknown and malformed ids
	resp, err = http.Get(fmt.Sprintf("%s/api/drafts/%s/state", srv.URL, uuid.New()))
	req.NoError(err)
	resp.Body.Close()
	req.Equal(http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/api/drafts/not-a-uuid/state")
	req.NoError(err)
	resp.Body.Close()
	req.Equal(http.StatusBadRequest, resp.StatusCode)

	// Active drafts
	resp, err = http.Get(srv.URL + "/api/drafts/active")
	req.NoError(err)
	var active []DraftSummary
	req.NoError(json.NewDecoder(resp.Body).Decode(&active))
	resp.Body.Close()
	req.Len(active, 1)
	req.Equal(st.DraftID, active[0].DraftID)
	req.Equal(4, active[0].TotalTeams)
	req.Equal(3, active[0].TotalRounds)
}

func Test_StateHandler_Command_Maps_Errors(t *testing.T) {
	req := require.New(t)
	st := draftState(1)
	drafts := newFakeDrafts(st)
	_, srv := newGateway(t, drafts)
	url := fmt.Sprintf("%s/api/drafts/%s/commands", srv.URL, st.DraftID)

	// Accepted
	resp, err := http.Post(url, "application/json", strings.NewReader(`{"type":"StartDraft","user_id":"`+uuid.NewString()+`"}`))
	req.NoError(err)
	resp.Body.Close()
	req.Equal(http.StatusAccepted, resp.StatusCode)
	cmds, _ := drafts.snapshot()
	req.Equal(st.DraftID, cmds[0].DraftID)

	// Commissioner-only command from someone else
	drafts.mu.Lock()
	drafts.cmdErr = orchestrator.ErrUnauthorized
	drafts.mu.Unlock()
	resp, err = http.Post(url, "application/json", strings.NewReader(`{"type":"PauseDraft"}`))
	req.NoError(err)
	var body errorResponse
	req.NoError(json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	req.Equal(http.StatusForbidden, resp.StatusCode)
	req.Equal("unauthorized", body.Code)

	// Rejections are conflicts
	drafts.mu.Lock()
	drafts.cmdErr = fmt.Errorf("wrap: %w", orchestrator.ErrPlayerUnavailable)
	drafts.mu.Unlock()
	resp, err = http.Post(url, "application/json", strings.NewReader(`{"type":"MakePick"}`))
	req.NoError(err)
	resp.Body.Close()
	req.Equal(http.StatusConflict, resp.StatusCode)
}

func Test_Presence_Settles_On_The_Last_Connection_Change(t *testing.T) {
	req := require.New(t)
	st := draftState(1)
	drafts := newFakeDrafts(st)
	drafts.onlineDelay = 50 * time.Millisecond
	cm := NewConnectionManager(DefaultConnectionConfig(), drafts)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go cm.Start(ctx)

	// Given a user who connects and drops again at once, several times over
	userID := uuid.New()
	for i := 0; i < 5; i++ {
		conn := &Connection{
			ID:      uuid.New().String(),
			UserID:  userID,
			DraftID: st.DraftID,
			Send:    make(chan []byte, 1),
			Manager: cm,
		}
		cm.registerConnection(conn)
		cm.markPresence(conn)
		req.True(cm.unregisterConnection(conn))
	}

	// Then the user ends offline and stays there
	offline := presence{userID: userID, online: false}
	req.Eventually(func() bool {
		_, p := drafts.snapshot()
		return len(p) > 0 && p[len(p)-1] == offline
	}, 2*time.Second, 10*time.Millisecond)
	req.Never(func() bool {
		_, p := drafts.snapshot()
		return p[len(p)-1] != offline
	}, 200*time.Millisecond, 10*time.Millisecond)
}
