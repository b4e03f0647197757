package orchestrator

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/mcdev12/livedraft/go/internal/draft/autopick"
	"github.com/mcdev12/livedraft/go/internal/models"
)

// handleExpiry runs on the actor when a turn timer fires. Stale generations and
// fires that lost the race to a pick, pause or teardown are dropped.
func (s *session) handleExpiry(gen uint64) {
	if !s.timer.current(gen) || s.status != models.DraftStatusInProgress {
		log.Debug().
			Str("draft_id", s.id.String()).
			Uint64("generation", gen).
			Msg("ignoring stale timer expiry")
		return
	}
	s.timer.disarm()

	team := s.onTheClock()
	if team == nil {
		return
	}

	choice, err := s.autoSelect(team)
	if errors.Is(err, ErrEmptyPool) {
		s.halt(fmt.Sprintf("player pool exhausted with pick %d of %d due", s.currentPick, s.totalPicks()))
		return
	}
	if choice.Fallback {
		autoPickFallbacks.Inc()
	}

	log.Info().
		Str("draft_id", s.id.String()).
		Str("team_id", team.ID.String()).
		Int("overall_pick", s.currentPick).
		Str("player_id", choice.Player.ID.String()).
		Str("reason", choice.Reason).
		Float64("value", choice.Value).
		Msg("turn expired, auto-picking")

	s.commit(team, choice.Player, models.PickOriginAuto)
}

// autoSelect asks the picker for a player and guarantees the answer is in the pool.
func (s *session) autoSelect(team *models.DraftTeam) (autopick.Choice, error) {
	available := lo.Values(s.pool)
	if len(available) == 0 {
		return autopick.Choice{}, ErrEmptyPool
	}

	choice, err := s.deps.picker.Select(s.autoPickContext(team, available))
	if err == nil {
		if _, ok := s.pool[choice.Player.ID]; ok {
			return choice, nil
		}
		err = fmt.Errorf("picker chose unavailable player %s", choice.Player.ID)
	}
	if errors.Is(err, ErrEmptyPool) {
		return autopick.Choice{}, err
	}

	p, _ := autopick.Fallback(available)
	log.Warn().
		Err(err).
		Str("draft_id", s.id.String()).
		Str("team_id", team.ID.String()).
		Msg("auto-picker failed, using projection fallback")
	return autopick.Choice{Player: p, Value: p.ProjectedPoints, Reason: "fallback", Fallback: true}, nil
}

func (s *session) autoPickContext(team *models.DraftTeam, available []models.Player) autopick.Context {
	return autopick.Context{
		Round:        s.currentRound,
		OverallPick:  s.currentPick,
		TotalRounds:  s.settings.Rounds,
		TeamCount:    len(s.teams),
		Scoring:      s.settings.ScoringMode,
		Requirements: s.settings.Roster,
		Roster:       append([]models.Player(nil), team.Roster...),
		Available:    available,
		Drafted:      append([]models.Player(nil), s.drafted...),
	}
}
