package models

import (
	"github.com/google/uuid"
)

// Position is a fantasy football roster position.
type Position string

const (
	PositionQB  Position = "QB"
	PositionRB  Position = "RB"
	PositionWR  Position = "WR"
	PositionTE  Position = "TE"
	PositionK   Position = "K"
	PositionDEF Position = "DEF"
)

// Positions lists every draftable position in display order.
var Positions = []Position{PositionQB, PositionRB, PositionWR, PositionTE, PositionK, PositionDEF}

// FlexEligible reports whether the position can fill a FLEX slot.
func (p Position) FlexEligible() bool {
	return p == PositionRB || p == PositionWR || p == PositionTE
}

// Player is a draftable player and the projection data used to value them.
type Player struct {
	ID              uuid.UUID `json:"id" yaml:"id"`
	FullName        string    `json:"full_name" yaml:"full_name"`
	Position        Position  `json:"position" yaml:"position"`
	ProTeam         string    `json:"pro_team" yaml:"pro_team"`
	ByeWeek         int       `json:"bye_week" yaml:"bye_week"`
	ProjectedPoints float64   `json:"projected_points" yaml:"projected_points"`
	ADP             float64   `json:"adp" yaml:"adp"`                     // average draft position, 0 when unknown
	PositionRank    int       `json:"position_rank" yaml:"position_rank"` // 1 is the best at the position
}
