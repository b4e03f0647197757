package leagues

import (
	"context"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/mcdev12/livedraft/go/internal/models"
)

var validate = validator.New()

type draftRef struct {
	league *LeagueSpec
	spec   DraftSpec
}

// FileSource serves league configuration from a YAML file held in memory.
type FileSource struct {
	file    File
	leagues map[uuid.UUID]*LeagueSpec
	drafts  map[uuid.UUID]draftRef
}

// LoadFile reads and validates a league configuration file.
func LoadFile(path string) (*FileSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read league file: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse league file %s: %w", path, err)
	}
	src, err := NewFileSource(f)
	if err != nil {
		return nil, fmt.Errorf("league file %s: %w", path, err)
	}

	log.Info().
		Str("path", path).
		Int("leagues", len(f.Leagues)).
		Int("drafts", len(src.drafts)).
		Int("players", len(f.Players)).
		Msg("loaded league file")
	return src, nil
}

// NewFileSource validates f and indexes its drafts.
func NewFileSource(f File) (*FileSource, error) {
	if err := validate.Struct(f); err != nil {
		return nil, fmt.Errorf("invalid league file: %w", err)
	}

	src := &FileSource{
		file:    f,
		leagues: make(map[uuid.UUID]*LeagueSpec, len(f.Leagues)),
		drafts:  make(map[uuid.UUID]draftRef),
	}
	for i := range src.file.Leagues {
		l := &src.file.Leagues[i]
		if l.ID == uuid.Nil || l.CommissionerID == uuid.Nil {
			return nil, fmt.Errorf("league %q needs an id and a commissioner_id", l.Name)
		}
		if _, dup := src.leagues[l.ID]; dup {
			return nil, fmt.Errorf("league %s listed twice", l.ID)
		}
		src.leagues[l.ID] = l

		for _, d := range l.Drafts {
			if d.ID == uuid.Nil {
				return nil, fmt.Errorf("league %s has a draft without an id", l.ID)
			}
			if _, dup := src.drafts[d.ID]; dup {
				return nil, fmt.Errorf("draft %s listed twice", d.ID)
			}
			if _, err := draftTeams(l, d); err != nil {
				return nil, fmt.Errorf("draft %s: %w", d.ID, err)
			}
			src.drafts[d.ID] = draftRef{league: l, spec: d}
		}
	}
	return src, nil
}

// File returns the parsed configuration.
func (s *FileSource) File() File {
	return s.file
}

func (s *FileSource) LoadDraftConfig(_ context.Context, draftID uuid.UUID) (*models.DraftConfig, error) {
	ref, ok := s.drafts[draftID]
	if !ok {
		return nil, fmt.Errorf("draft %s: %w", draftID, models.ErrNotFound)
	}
	teams, err := draftTeams(ref.league, ref.spec)
	if err != nil {
		return nil, err
	}

	return &models.DraftConfig{
		Draft: models.Draft{
			ID:       draftID,
			LeagueID: ref.league.ID,
			Status:   models.DraftStatusWaiting,
			Settings: ref.spec.Settings,
		},
		League:  ref.league.League,
		Teams:   teams,
		Players: append([]models.Player(nil), s.file.Players...),
	}, nil
}

func (s *FileSource) IsCommissioner(_ context.Context, leagueID, userID uuid.UUID) (bool, error) {
	l, ok := s.leagues[leagueID]
	if !ok {
		return false, fmt.Errorf("league %s: %w", leagueID, models.ErrNotFound)
	}
	return l.CommissionerID == userID, nil
}

// draftTeams orders a league's teams for one draft.
func draftTeams(l *LeagueSpec, d DraftSpec) ([]models.DraftTeam, error) {
	order := d.Order
	if len(order) == 0 {
		order = lo.Map(l.Teams, func(t models.FantasyTeam, _ int) uuid.UUID { return t.ID })
	}
	if len(order) != len(l.Teams) || len(lo.Uniq(order)) != len(order) {
		return nil, fmt.Errorf("order must list each of the %d teams once", len(l.Teams))
	}

	byID := lo.KeyBy(l.Teams, func(t models.FantasyTeam) uuid.UUID { return t.ID })

	teams := make([]models.DraftTeam, 0, len(order))
	for i, id := range order {
		ft, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("order names unknown team %s", id)
		}
		ft.LeagueID = l.ID
		teams = append(teams, models.DraftTeam{
			FantasyTeam:     ft,
			DraftPosition:   i + 1,
			AutoPickEnabled: lo.Contains(d.AutoPick, id),
		})
	}
	return teams, nil
}
