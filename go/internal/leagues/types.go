package leagues

import (
	"github.com/google/uuid"

	"github.com/mcdev12/livedraft/go/internal/models"
)

// File is the YAML layout of a league configuration file.
//
//	players:
//	  - id: ...
//	    full_name: Bijan Robinson
//	    position: RB
//	leagues:
//	  - id: ...
//	    name: Sunday League
//	    commissioner_id: ...
//	    teams:
//	      - {id: ..., owner_id: ..., name: Gridiron Gurus}
//	    drafts:
//	      - id: ...
//	        settings: {rounds: 15, time_per_pick_sec: 90, draft_type: SNAKE, scoring_mode: PPR}
//	        order: [<team id>, ...]
type File struct {
	Players []models.Player `yaml:"players" validate:"min=1,dive"`
	Leagues []LeagueSpec    `yaml:"leagues" validate:"min=1,dive"`
}

// LeagueSpec is one league with its teams and drafts.
type LeagueSpec struct {
	models.League `yaml:",inline"`
	Teams         []models.FantasyTeam `yaml:"teams" validate:"min=1"`
	Drafts        []DraftSpec          `yaml:"drafts" validate:"dive"`
}

// DraftSpec configures one draft of a league. Order lists team ids by draft
// position and defaults to the league's team order. AutoPick lists teams that
// start with auto-drafting enabled.
type DraftSpec struct {
	ID       uuid.UUID            `yaml:"id"`
	Settings models.DraftSettings `yaml:"settings"`
	Order    []uuid.UUID          `yaml:"order"`
	AutoPick []uuid.UUID          `yaml:"auto_pick"`
}
