package orchestrator

import (
	"errors"
	"fmt"

	"github.com/mcdev12/livedraft/go/internal/draft/autopick"
	"github.com/mcdev12/livedraft/go/internal/models"
)

// Rejections. All of them leave the session unchanged.
var (
	ErrOutOfTurn         = errors.New("team is not on the clock")
	ErrPlayerUnavailable = errors.New("player is not available")
	ErrSessionNotActive  = errors.New("draft is not in progress")
	ErrUnauthorized      = errors.New("requester is not the league commissioner")
	ErrUnknownTeam       = errors.New("team is not part of this draft")
	ErrInvalidChat       = errors.New("chat message must be 1-500 characters")
	ErrSessionClosed     = errors.New("draft session closed")
	ErrDraftNotFound     = models.ErrNotFound
	ErrEmptyPool         = autopick.ErrEmptyPool
)

var validStatusTransitions = map[models.DraftStatus][]models.DraftStatus{
	models.DraftStatusWaiting:    {models.DraftStatusInProgress},
	models.DraftStatusInProgress: {models.DraftStatusPaused, models.DraftStatusCompleted, models.DraftStatusHalted},
	models.DraftStatusPaused:     {models.DraftStatusInProgress},
	models.DraftStatusCompleted:  {}, // Terminal state
	models.DraftStatusHalted:     {}, // Terminal state
}

// validateStatusTransition reports ErrSessionNotActive for moves the state machine forbids.
func validateStatusTransition(from, to models.DraftStatus) error {
	for _, allowed := range validStatusTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return fmt.Errorf("%w: cannot transition from %s to %s", ErrSessionNotActive, from, to)
}
