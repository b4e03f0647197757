package models

import (
	"time"

	"github.com/google/uuid"
)

// RosterEntry is a finalized roster row produced when a draft completes.
type RosterEntry struct {
	FantasyTeamID   uuid.UUID       `json:"fantasy_team_id"`
	PlayerID        uuid.UUID       `json:"player_id"`
	Position        RosterPosition  `json:"position"`
	Round           int             `json:"round"`
	AcquiredAt      time.Time       `json:"acquired_at"`
	AcquisitionType AcquisitionType `json:"acquisition_type"`
}

// RosterPosition represents the slot a player has on a roster
type RosterPosition string

const (
	RosterPositionStarter RosterPosition = "STARTER"
	RosterPositionFlex    RosterPosition = "FLEX"
	RosterPositionBench   RosterPosition = "BENCH"
)

// AcquisitionType represents how a player was acquired
type AcquisitionType string

const (
	AcquisitionTypeDraft AcquisitionType = "DRAFT"
)

// RosterRequirements is the number of starting slots per position.
type RosterRequirements struct {
	QB    int `json:"qb" yaml:"qb" validate:"min=0"`
	RB    int `json:"rb" yaml:"rb" validate:"min=0"`
	WR    int `json:"wr" yaml:"wr" validate:"min=0"`
	TE    int `json:"te" yaml:"te" validate:"min=0"`
	Flex  int `json:"flex" yaml:"flex" validate:"min=0"`
	K     int `json:"k" yaml:"k" validate:"min=0"`
	DEF   int `json:"def" yaml:"def" validate:"min=0"`
	Bench int `json:"bench" yaml:"bench" validate:"min=0"`
}

// DefaultRosterRequirements is the standard 1QB/2RB/2WR/1TE/1FLEX/1K/1DEF lineup.
func DefaultRosterRequirements() RosterRequirements {
	return RosterRequirements{QB: 1, RB: 2, WR: 2, TE: 1, Flex: 1, K: 1, DEF: 1, Bench: 6}
}

// IsZero reports whether no requirement has been configured.
func (r RosterRequirements) IsZero() bool {
	return r == RosterRequirements{}
}

// Starters returns the dedicated starter slots for a position. FLEX is not included.
func (r RosterRequirements) Starters(p Position) int {
	switch p {
	case PositionQB:
		return r.QB
	case PositionRB:
		return r.RB
	case PositionWR:
		return r.WR
	case PositionTE:
		return r.TE
	case PositionK:
		return r.K
	case PositionDEF:
		return r.DEF
	}
	return 0
}
