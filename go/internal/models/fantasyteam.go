package models

import (
	"github.com/google/uuid"
)

type FantasyTeam struct {
	ID       uuid.UUID `json:"id" yaml:"id"`
	LeagueID uuid.UUID `json:"league_id" yaml:"league_id"`
	OwnerID  uuid.UUID `json:"owner_id" yaml:"owner_id"`
	Name     string    `json:"name" yaml:"name"`
}

// DraftTeam is a fantasy team as seen by a running draft.
type DraftTeam struct {
	FantasyTeam
	DraftPosition   int      `json:"draft_position"` // 1..N, fixed for the draft
	Online          bool     `json:"online"`
	AutoPickEnabled bool     `json:"auto_pick_enabled"`
	Roster          []Player `json:"roster"` // drafted players in pick order
}

// Clone returns a deep copy safe to hand outside the owning session.
func (t DraftTeam) Clone() DraftTeam {
	out := t
	out.Roster = append([]Player(nil), t.Roster...)
	return out
}
