package models

import (
	"time"

	"github.com/google/uuid"
)

// DraftType defines how the pick order moves between rounds.
type DraftType string

const (
	DraftTypeSnake  DraftType = "SNAKE"
	DraftTypeLinear DraftType = "LINEAR"
)

// DraftStatus defines the status of a draft.
type DraftStatus string

const (
	DraftStatusWaiting    DraftStatus = "WAITING"
	DraftStatusInProgress DraftStatus = "IN_PROGRESS"
	DraftStatusPaused     DraftStatus = "PAUSED"
	DraftStatusCompleted  DraftStatus = "COMPLETED"
	// DraftStatusHalted marks a draft that cannot continue because a pick was due
	// with no players left in the pool. Terminal.
	DraftStatusHalted DraftStatus = "HALTED"
)

// Terminal reports whether no further mutation is allowed in this status.
func (s DraftStatus) Terminal() bool {
	return s == DraftStatusCompleted || s == DraftStatusHalted
}

// ScoringMode is the league scoring format used when valuing players.
type ScoringMode string

const (
	ScoringStandard ScoringMode = "STANDARD"
	ScoringHalfPPR  ScoringMode = "HALF_PPR"
	ScoringPPR      ScoringMode = "PPR"
)

// DraftSettings holds the immutable configuration of a draft.
type DraftSettings struct {
	Rounds               int                `json:"rounds" yaml:"rounds" validate:"min=1,max=40"`
	TimePerPickSec       int                `json:"time_per_pick_sec" yaml:"time_per_pick_sec" validate:"min=1"`
	DraftType            DraftType          `json:"draft_type" yaml:"draft_type" validate:"oneof=SNAKE LINEAR"`
	PauseBetweenPicksSec int                `json:"pause_between_picks_sec,omitempty" yaml:"pause_between_picks_sec" validate:"min=0"`
	AutoPickDelaySec     int                `json:"auto_pick_delay_sec,omitempty" yaml:"auto_pick_delay_sec" validate:"min=0"`
	ScoringMode          ScoringMode        `json:"scoring_mode" yaml:"scoring_mode" validate:"oneof=STANDARD HALF_PPR PPR"`
	AllowTrades          bool               `json:"allow_trades" yaml:"allow_trades"` // stored only; mid-draft trades are not supported
	Roster               RosterRequirements `json:"roster" yaml:"roster"`
}

// PickTime returns the per-pick time limit.
func (s DraftSettings) PickTime() time.Duration {
	return time.Duration(s.TimePerPickSec) * time.Second
}

// Draft is the persisted header of a draft session.
type Draft struct {
	ID           uuid.UUID     `json:"id"`
	LeagueID     uuid.UUID     `json:"league_id"`
	Status       DraftStatus   `json:"status"`
	Settings     DraftSettings `json:"settings"`
	CurrentRound int           `json:"current_round"`
	CurrentPick  int           `json:"current_pick"`
	RemainingSec *int          `json:"remaining_sec,omitempty"` // set while paused
	HaltReason   string        `json:"halt_reason,omitempty"`
	StartedAt    *time.Time    `json:"started_at,omitempty"`
	CompletedAt  *time.Time    `json:"completed_at,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}
