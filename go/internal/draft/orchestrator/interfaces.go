//go:generate go run go.uber.org/mock/mockgen -source=interfaces.go -destination=mocks/mock_collaborators.go -package=mocks
package orchestrator

import (
	"context"

	"github.com/google/uuid"

	"github.com/mcdev12/livedraft/go/internal/draft/autopick"
	"github.com/mcdev12/livedraft/go/internal/draft/events"
	"github.com/mcdev12/livedraft/go/internal/models"
)

// Store is the durable record of drafts. LoadDraft returns models.ErrNotFound for
// an unknown draft. AppendPick must be idempotent per overall pick number.
type Store interface {
	LoadDraft(ctx context.Context, draftID uuid.UUID) (*models.DraftSnapshot, error)
	SaveDraft(ctx context.Context, draft models.Draft) error
	AppendPick(ctx context.Context, draftID uuid.UUID, pick models.DraftPick) error
	UpdateSessionStatus(ctx context.Context, draftID uuid.UUID, update models.StatusUpdate) error
	FinalizeRosters(ctx context.Context, draftID uuid.UUID, entries []models.RosterEntry) error
}

// Publisher fans events out to observers. Publish is called from the session's
// commit path in event order and must not block for long.
type Publisher interface {
	Publish(ctx context.Context, event events.Envelope) error
}

// Notifier delivers fire-and-forget signals to users.
type Notifier interface {
	PickMade(ctx context.Context, userID, draftID uuid.UUID, pick events.PickMadePayload)
	YourTurn(ctx context.Context, userID, draftID uuid.UUID, minutesRemaining int)
}

// Authorizer gates commissioner-only operations.
type Authorizer interface {
	IsCommissioner(ctx context.Context, leagueID, userID uuid.UUID) (bool, error)
}

// LeagueSource provides the teams, settings and player universe of a draft.
type LeagueSource interface {
	LoadDraftConfig(ctx context.Context, draftID uuid.UUID) (*models.DraftConfig, error)
}

// Leaser grants this process exclusive ownership of a draft's commit path.
type Leaser interface {
	Acquire(ctx context.Context, draftID uuid.UUID) error
	Release(ctx context.Context, draftID uuid.UUID) error
}

// AutoPicker chooses a player on a team's behalf.
type AutoPicker interface {
	Select(c autopick.Context) (autopick.Choice, error)
}
