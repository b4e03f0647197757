package models

import (
	"time"

	"github.com/google/uuid"
)

// LeagueType represents the type of league
type LeagueType string

const (
	LeagueTypeRedraft LeagueType = "REDRAFT"
	LeagueTypeKeeper  LeagueType = "KEEPER"
	LeagueTypeDynasty LeagueType = "DYNASTY"
)

// League represents a fantasy sports league
type League struct {
	ID             uuid.UUID  `json:"id" yaml:"id"`
	Name           string     `json:"name" yaml:"name"`
	LeagueType     LeagueType `json:"league_type" yaml:"league_type"`
	CommissionerID uuid.UUID  `json:"commissioner_id" yaml:"commissioner_id"`
	Season         string     `json:"season" yaml:"season"`
	CreatedAt      time.Time  `json:"created_at" yaml:"-"`
}
