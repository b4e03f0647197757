package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/livedraft/go/internal/models"
)

// CommandType names an inbound request against a draft.
type CommandType string

const (
	CommandMakePick    CommandType = "MakePick"
	CommandStartDraft  CommandType = "StartDraft"
	CommandPauseDraft  CommandType = "PauseDraft"
	CommandResumeDraft CommandType = "ResumeDraft"
	CommandPostChat    CommandType = "PostChat"
	CommandSetAutoPick CommandType = "SetAutoPick"
	CommandSetOnline   CommandType = "SetOnline"
)

// Command is the transport-neutral form of a draft request. It arrives over
// JetStream or the websocket gateway.
type Command struct {
	ID        string      `json:"id,omitempty"`
	Type      CommandType `json:"type"`
	DraftID   uuid.UUID   `json:"draft_id"`
	UserID    uuid.UUID   `json:"user_id"`
	TeamID    uuid.UUID   `json:"team_id,omitempty"`
	PlayerID  uuid.UUID   `json:"player_id,omitempty"`
	Body      string      `json:"body,omitempty"`
	Enabled   bool        `json:"enabled,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// HandleCommand routes a command to the matching operation.
func (o *Orchestrator) HandleCommand(ctx context.Context, cmd Command) error {
	log.Debug().
		Str("command", string(cmd.Type)).
		Str("draft_id", cmd.DraftID.String()).
		Str("user_id", cmd.UserID.String()).
		Msg("handling draft command")

	if cmd.DraftID == uuid.Nil {
		return fmt.Errorf("%w: %s has no draft id", errMalformedCommand, cmd.Type)
	}

	// A command from a user acts only on that user's team. A bare team id is
	// trusted and comes from internal publishers only.
	switch cmd.Type {
	case CommandMakePick:
		var err error
		if cmd.UserID != uuid.Nil {
			_, err = o.submitPickAs(ctx, cmd.DraftID, cmd.UserID, cmd.TeamID, cmd.PlayerID)
		} else {
			_, err = o.SubmitPick(ctx, cmd.DraftID, cmd.TeamID, cmd.PlayerID, models.PickOriginHuman)
		}
		return err

	case CommandStartDraft:
		return o.Start(ctx, cmd.DraftID, cmd.UserID)

	case CommandPauseDraft:
		return o.Pause(ctx, cmd.DraftID, cmd.UserID)

	case CommandResumeDraft:
		return o.Resume(ctx, cmd.DraftID, cmd.UserID)

	case CommandPostChat:
		_, err := o.PostChat(ctx, cmd.DraftID, cmd.UserID, cmd.Body)
		return err

	case CommandSetAutoPick:
		if cmd.UserID != uuid.Nil {
			return o.updateOwnedTeam(ctx, cmd.DraftID, cmd.UserID, cmd.TeamID, autoPickFlag(cmd.Enabled))
		}
		return o.SetAutoPick(ctx, cmd.DraftID, cmd.TeamID, cmd.Enabled)

	case CommandSetOnline:
		switch {
		case cmd.UserID == uuid.Nil:
			return o.SetTeamOnline(ctx, cmd.DraftID, cmd.TeamID, cmd.Enabled)
		case cmd.TeamID != uuid.Nil:
			return o.updateOwnedTeam(ctx, cmd.DraftID, cmd.UserID, cmd.TeamID, onlineFlag(cmd.Enabled))
		default:
			return o.SetUserOnline(ctx, cmd.DraftID, cmd.UserID, cmd.Enabled)
		}

	default:
		log.Warn().
			Str("command", string(cmd.Type)).
			Str("draft_id", cmd.DraftID.String()).
			Msg("unknown command type - ignoring")
		return nil
	}
}

// IsRejection reports whether err is a validation outcome rather than a fault.
// Rejected commands must not be retried.
func IsRejection(err error) bool {
	for _, target := range []error{
		ErrOutOfTurn,
		ErrPlayerUnavailable,
		ErrSessionNotActive,
		ErrUnauthorized,
		ErrUnknownTeam,
		ErrInvalidChat,
		ErrDraftNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
