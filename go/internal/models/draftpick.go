package models

import (
	"time"

	"github.com/google/uuid"
)

// PickOrigin records who made a pick.
type PickOrigin string

const (
	PickOriginHuman PickOrigin = "HUMAN"
	PickOriginAuto  PickOrigin = "AUTO"
)

// DraftPick represents a single committed pick in a draft. Immutable once made.
type DraftPick struct {
	ID          uuid.UUID  `json:"id"`
	DraftID     uuid.UUID  `json:"draft_id"`
	TeamID      uuid.UUID  `json:"team_id"`
	PlayerID    uuid.UUID  `json:"player_id"`
	Round       int        `json:"round"`
	Pick        int        `json:"pick"`         // pick number in the round
	OverallPick int        `json:"overall_pick"` // pick number overall
	Origin      PickOrigin `json:"origin"`
	PickedAt    time.Time  `json:"picked_at"`
}
