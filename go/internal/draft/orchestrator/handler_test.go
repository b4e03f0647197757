package orchestrator

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/livedraft/go/internal/models"
)

func Test_HandleCommand_Acts_Only_On_The_Senders_Team(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, 2, 2)
	f.start()

	onClock := f.onTheClock()
	var due, other models.DraftTeam
	for _, team := range f.teams {
		if team.ID == onClock {
			due = team
		} else {
			other = team
		}
	}
	player := f.players[0].ID

	// When the other owner submits a pick naming the team on the clock
	err := f.orch.HandleCommand(f.ctx, Command{Type: CommandMakePick, DraftID: f.draftID, UserID: other.OwnerID, TeamID: due.ID, PlayerID: player})

	// Then it is rejected and nothing is drafted
	req.ErrorIs(err, ErrUnknownTeam)
	req.True(IsRejection(err))
	st := f.state()
	req.Equal(1, st.CurrentPick)
	req.Empty(st.Picks)

	// And naming their own team is simply out of turn
	err = f.orch.HandleCommand(f.ctx, Command{Type: CommandMakePick, DraftID: f.draftID, UserID: other.OwnerID, TeamID: other.ID, PlayerID: player})
	req.ErrorIs(err, ErrOutOfTurn)

	// And they cannot flip the flags of a team they do not own
	err = f.orch.HandleCommand(f.ctx, Command{Type: CommandSetAutoPick, DraftID: f.draftID, UserID: other.OwnerID, TeamID: due.ID, Enabled: true})
	req.ErrorIs(err, ErrUnknownTeam)
	err = f.orch.HandleCommand(f.ctx, Command{Type: CommandSetOnline, DraftID: f.draftID, UserID: other.OwnerID, TeamID: due.ID, Enabled: true})
	req.ErrorIs(err, ErrUnknownTeam)
	err = f.orch.HandleCommand(f.ctx, Command{Type: CommandSetAutoPick, DraftID: f.draftID, UserID: uuid.New(), Enabled: true})
	req.ErrorIs(err, ErrUnknownTeam)

	st = f.state()
	for _, team := range st.Teams {
		req.False(team.AutoPickEnabled)
		req.False(team.Online)
	}

	// When the owner of the team on the clock names it
	req.NoError(f.orch.HandleCommand(f.ctx, Command{Type: CommandMakePick, DraftID: f.draftID, UserID: due.OwnerID, TeamID: due.ID, PlayerID: player}))
	req.NoError(f.orch.HandleCommand(f.ctx, Command{Type: CommandSetAutoPick, DraftID: f.draftID, UserID: other.OwnerID, Enabled: true}))

	// Then the pick is theirs and the flag lands on the sender's own team
	st = f.state()
	req.Len(st.Picks, 1)
	req.Equal(due.ID, st.Picks[0].TeamID)
	for _, team := range st.Teams {
		req.Equal(team.ID == other.ID, team.AutoPickEnabled)
	}
}
