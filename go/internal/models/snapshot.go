package models

import (
	"errors"
	"time"
)

// ErrNotFound is returned by stores and league sources when a record does not exist.
var ErrNotFound = errors.New("not found")

// DraftSnapshot is what a durable store holds for one draft: the header plus the
// committed picks in overall order.
type DraftSnapshot struct {
	Draft Draft       `json:"draft"`
	Picks []DraftPick `json:"picks"`
}

// StatusUpdate is written on every status or turn-pointer change.
type StatusUpdate struct {
	Status       DraftStatus `json:"status"`
	Round        int         `json:"round"`
	Pick         int         `json:"pick"`
	RemainingSec *int        `json:"remaining_sec,omitempty"`
	HaltReason   string      `json:"halt_reason,omitempty"`
	At           time.Time   `json:"at"`
}

// DraftConfig is the league-side configuration a new draft session is built from.
type DraftConfig struct {
	Draft   Draft       `json:"draft"` // ID, LeagueID and Settings are used
	League  League      `json:"league"`
	Teams   []DraftTeam `json:"teams"`
	Players []Player    `json:"players"` // the full player universe
}
