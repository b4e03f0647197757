package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/livedraft/go/internal/models"
)

func Test_HandleCommand_Routes_To_Operations(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, 2, 2)
	_, err := f.orch.InitializeOrLoad(f.ctx, f.draftID)
	req.NoError(err)

	// Given a start from the commissioner
	req.NoError(f.orch.HandleCommand(f.ctx, Command{Type: CommandStartDraft, DraftID: f.draftID, UserID: f.commissioner}))
	req.Equal(models.DraftStatusInProgress, f.state().Status)

	// When the owner on the clock picks by user id
	onClock := f.onTheClock()
	var owner uuid.UUID
	for _, team := range f.teams {
		if team.ID == onClock {
			owner = team.OwnerID
		}
	}
	player := f.players[0].ID
	req.NoError(f.orch.HandleCommand(f.ctx, Command{Type: CommandMakePick, DraftID: f.draftID, UserID: owner, PlayerID: player}))

	// Then the pick is committed for their team
	st := f.state()
	req.Equal(2, st.CurrentPick)

	// And a repeat of the same player is a rejection
	err = f.orch.HandleCommand(f.ctx, Command{Type: CommandMakePick, DraftID: f.draftID, TeamID: f.onTheClock(), PlayerID: player})
	req.True(IsRejection(err))

	// And commands without a draft are malformed, unknown types ignored
	req.True(errors.Is(f.orch.HandleCommand(f.ctx, Command{Type: CommandPauseDraft}), errMalformedCommand))
	req.NoError(f.orch.HandleCommand(f.ctx, Command{Type: "Trade", DraftID: f.draftID}))
}

func Test_CommandConsumer_Runs_Published_Commands(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, 2, 2)
	_, err := f.orch.InitializeOrLoad(f.ctx, f.draftID)
	req.NoError(err)

	// Given an embedded JetStream server and a running consumer
	ns, err := server.NewServer(&server.Options{Port: -1, JetStream: true, StoreDir: t.TempDir(), NoSigs: true, NoLog: true})
	req.NoError(err)
	go ns.Start()
	req.True(ns.ReadyForConnections(10*time.Second))
	t.Cleanup(ns.Shutdown)

	nc, js, err := ConnectNATS(ns.ClientURL())
	req.NoError(err)
	t.Cleanup(nc.Close)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	consumer := NewCommandConsumer(js, f.orch, "DRAFT_COMMANDS", "draft.commands")
	go func() { _ = consumer.Run(ctx) }()

	req.Eventually(func() bool {
		stream, err := js.Stream(ctx, "DRAFT_COMMANDS")
		if err != nil {
			return false
		}
		_, err = stream.Consumer(ctx, "draft-orchestrator-commands")
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)

	// When a malformed message and then a start command are published
	_, err = js.Publish(ctx, "draft.commands."+f.draftID.String(), []byte("{not json"))
	req.NoError(err)
	data, err := json.Marshal(Command{ID: "start-1", Type: CommandStartDraft, DraftID: f.draftID, UserID: f.commissioner})
	req.NoError(err)
	_, err = js.Publish(ctx, "draft.commands."+f.draftID.String(), data)
	req.NoError(err)

	// Then the draft starts
	req.Eventually(func() bool {
		return f.state().Status == models.DraftStatusInProgress
	}, 5*time.Second, 20*time.Millisecond)

	// And both messages leave the work queue
	req.Eventually(func() bool {
		stream, err := js.Stream(ctx, "DRAFT_COMMANDS")
		if err != nil {
			return false
		}
		info, err := stream.Info(ctx)
		return err == nil && info.State.Msgs == 0
	}, 5*time.Second, 20*time.Millisecond)
}
