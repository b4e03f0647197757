package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/mcdev12/livedraft/go/internal/models"
)

// Event payload types shared by the orchestrator, broadcast sinks and the gateway

// PickStartedPayload is the payload for a PickStarted event
type PickStartedPayload struct {
	TeamID         string    `json:"team_id"`
	TeamName       string    `json:"team_name"`
	Round          int       `json:"round"`
	Pick           int       `json:"pick"`
	OverallPick    int       `json:"overall_pick"`
	StartedAt      time.Time `json:"started_at"`
	TimeoutAt      time.Time `json:"timeout_at"`
	TimePerPickSec int       `json:"time_per_pick_sec"`
}

// PickMadePayload is the payload for a PickMade event
type PickMadePayload struct {
	PickID       string            `json:"pick_id"`
	TeamID       string            `json:"team_id"`
	TeamName     string            `json:"team_name"`
	PlayerID     string            `json:"player_id"`
	PlayerName   string            `json:"player_name"`
	Position     models.Position   `json:"position"`
	Round        int               `json:"round"`
	Pick         int               `json:"pick"`
	OverallPick  int               `json:"overall_pick"`
	Origin       models.PickOrigin `json:"origin"`
	MadeAt       time.Time         `json:"made_at"`
	Announcement string            `json:"announcement"`
}

// DraftStartedPayload is the payload for a DraftStarted event
type DraftStartedPayload struct {
	DraftID     string           `json:"draft_id"`
	DraftType   models.DraftType `json:"draft_type"`
	StartedAt   time.Time        `json:"started_at"`
	TotalRounds int              `json:"total_rounds"`
	TotalPicks  int              `json:"total_picks"`
}

// DraftCompletedPayload is the payload for a DraftCompleted event
type DraftCompletedPayload struct {
	DraftID     string    `json:"draft_id"`
	CompletedAt time.Time `json:"completed_at"`
	Duration    string    `json:"duration"`
	TotalPicks  int       `json:"total_picks"`
}

// DraftPausedPayload is the payload for a DraftPaused event
type DraftPausedPayload struct {
	DraftID      string    `json:"draft_id"`
	PausedAt     time.Time `json:"paused_at"`
	PausedBy     string    `json:"paused_by"`
	RemainingSec int       `json:"remaining_sec"`
}

// DraftResumedPayload is the payload for a DraftResumed event
type DraftResumedPayload struct {
	DraftID      string    `json:"draft_id"`
	ResumedAt    time.Time `json:"resumed_at"`
	RemainingSec int       `json:"remaining_sec"`
}

// DraftHaltedPayload is the payload for a DraftHalted event
type DraftHaltedPayload struct {
	DraftID     string    `json:"draft_id"`
	Reason      string    `json:"reason"`
	OverallPick int       `json:"overall_pick"`
	TeamID      string    `json:"team_id,omitempty"`
	HaltedAt    time.Time `json:"halted_at"`
}

// TimerTickPayload contains periodic timer updates
type TimerTickPayload struct {
	TeamID           string    `json:"team_id"`
	OverallPick      int       `json:"overall_pick"`
	TimeRemainingSec int       `json:"time_remaining_sec"`
	TickedAt         time.Time `json:"ticked_at"`
}

// ChatPostedPayload is the payload for a ChatPosted event
type ChatPostedPayload struct {
	Message models.ChatMessage `json:"message"`
}

// TeamStatusPayload is the payload for a TeamStatusChanged event
type TeamStatusPayload struct {
	TeamID          string `json:"team_id"`
	Online          bool   `json:"online"`
	AutoPickEnabled bool   `json:"auto_pick_enabled"`
}

// DraftState is a full snapshot of a draft. It is both the read model returned by
// the orchestrator and the payload of DraftState events.
type DraftState struct {
	DraftID          uuid.UUID            `json:"draft_id"`
	LeagueID         uuid.UUID            `json:"league_id"`
	Status           models.DraftStatus   `json:"status"`
	HaltReason       string               `json:"halt_reason,omitempty"`
	Settings         models.DraftSettings `json:"settings"`
	CurrentRound     int                  `json:"current_round"`
	CurrentPick      int                  `json:"current_pick"`
	TotalPicks       int                  `json:"total_picks"`
	OnTheClock       *uuid.UUID           `json:"on_the_clock,omitempty"`
	TimeRemainingSec int                  `json:"time_remaining_sec"`
	Teams            []models.DraftTeam   `json:"teams"`
	Picks            []models.DraftPick   `json:"picks"`
	Available        []models.Player      `json:"available"`
	Chat             []models.ChatMessage `json:"chat"`
	Sequence         uint64               `json:"sequence"`
}
