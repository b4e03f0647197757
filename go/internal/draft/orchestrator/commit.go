package orchestrator

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/livedraft/go/internal/draft/events"
	"github.com/mcdev12/livedraft/go/internal/models"
)

const maxChatLength = 500

// submitPick validates a pick request (status, then turn, then player) and commits it.
func (s *session) submitPick(teamID, playerID uuid.UUID, origin models.PickOrigin) (models.DraftPick, error) {
	if s.status != models.DraftStatusInProgress {
		return models.DraftPick{}, fmt.Errorf("%w: draft is %s", ErrSessionNotActive, s.status)
	}
	team := s.onTheClock()
	if team == nil || team.ID != teamID {
		return models.DraftPick{}, fmt.Errorf("%w: pick %d", ErrOutOfTurn, s.currentPick)
	}
	player, ok := s.pool[playerID]
	if !ok {
		return models.DraftPick{}, fmt.Errorf("%w: %s", ErrPlayerUnavailable, playerID)
	}
	return s.commit(team, player, origin), nil
}

// commit fills the current slot. The caller has validated team and player.
func (s *session) commit(team *models.DraftTeam, player models.Player, origin models.PickOrigin) models.DraftPick {
	began := time.Now()
	s.timer.disarm()

	now := s.deps.clock.Now()
	slot := s.slot(s.currentPick)
	pick := models.DraftPick{
		ID:          uuid.New(),
		DraftID:     s.id,
		TeamID:      team.ID,
		PlayerID:    player.ID,
		Round:       slot.Round,
		Pick:        slot.PickInRound,
		OverallPick: s.currentPick,
		Origin:      origin,
		PickedAt:    now,
	}

	s.picks = append(s.picks, pick)
	delete(s.pool, player.ID)
	team.Roster = append(team.Roster, player)
	s.drafted = append(s.drafted, player)

	s.persist("append_pick", func(ctx context.Context, store Store, h models.Draft) error {
		return store.AppendPick(ctx, h.ID, pick)
	})

	s.currentPick++
	s.currentRound = s.roundFor(s.currentPick)
	picksCommitted.WithLabelValues(string(origin)).Inc()

	made := events.PickMadePayload{
		PickID:       pick.ID.String(),
		TeamID:       team.ID.String(),
		TeamName:     team.Name,
		PlayerID:     player.ID.String(),
		PlayerName:   player.FullName,
		Position:     player.Position,
		Round:        pick.Round,
		Pick:         pick.Pick,
		OverallPick:  pick.OverallPick,
		Origin:       origin,
		MadeAt:       now,
		Announcement: announcement(team, player, pick),
	}
	s.emit(events.EventTypePickMade, made)

	log.Info().
		Str("draft_id", s.id.String()).
		Str("team_id", team.ID.String()).
		Str("player_id", player.ID.String()).
		Int("overall_pick", pick.OverallPick).
		Str("origin", string(origin)).
		Msg("pick committed")

	if s.currentPick > s.totalPicks() {
		s.complete()
	} else {
		s.persistStatus()
		s.beginTurn(time.Duration(s.settings.PauseBetweenPicksSec) * time.Second)
	}

	if s.deps.notifier != nil {
		s.deps.notifier.PickMade(context.Background(), team.OwnerID, s.id, made)
	}

	pickCommitDuration.Observe(time.Since(began).Seconds())
	return pick
}

func announcement(team *models.DraftTeam, player models.Player, pick models.DraftPick) string {
	how := "select"
	if pick.Origin == models.PickOriginAuto {
		how = "auto-select"
	}
	return fmt.Sprintf("With pick %d.%02d, %s %s %s (%s, %s)",
		pick.Round, pick.Pick, team.Name, how, player.FullName, player.Position, player.ProTeam)
}

// beginTurn arms the timer for the team now on the clock, or halts when there is
// nobody left to pick.
func (s *session) beginTurn(delay time.Duration) {
	team := s.onTheClock()
	if team == nil {
		return
	}
	if len(s.pool) == 0 {
		s.halt(fmt.Sprintf("player pool exhausted with pick %d of %d due", s.currentPick, s.totalPicks()))
		return
	}

	d := s.turnDuration(team)
	s.armTurn(delay, d)

	startsAt := s.deps.clock.Now().Add(delay)
	s.emit(events.EventTypePickStarted, events.PickStartedPayload{
		TeamID:         team.ID.String(),
		TeamName:       team.Name,
		Round:          s.currentRound,
		Pick:           s.slot(s.currentPick).PickInRound,
		OverallPick:    s.currentPick,
		StartedAt:      startsAt,
		TimeoutAt:      startsAt.Add(d),
		TimePerPickSec: ceilSeconds(d),
	})

	if s.deps.notifier != nil {
		minutes := int(math.Ceil(d.Minutes()))
		s.deps.notifier.YourTurn(context.Background(), team.OwnerID, s.id, minutes)
	}
}

// turnDuration is the countdown for a team: the auto-pick delay for teams that are
// offline or on auto-pick when one is configured, the pick time otherwise.
func (s *session) turnDuration(team *models.DraftTeam) time.Duration {
	if s.settings.AutoPickDelaySec > 0 && (team.AutoPickEnabled || !team.Online) {
		d := time.Duration(s.settings.AutoPickDelaySec) * time.Second
		if d < s.settings.PickTime() {
			return d
		}
	}
	return s.settings.PickTime()
}

func (s *session) armTurn(delay, d time.Duration) {
	s.lastTickSec = -1
	s.timer.arm(delay, d,
		func(gen uint64) { s.tryPost(func() { s.handleTick(gen) }) },
		func(gen uint64) { s.post(func() { s.handleExpiry(gen) }) },
	)
}

func (s *session) handleTick(gen uint64) {
	if !s.timer.current(gen) || s.status != models.DraftStatusInProgress {
		return
	}
	secs := ceilSeconds(s.timer.remaining())
	if secs == s.lastTickSec || !shouldBroadcastTick(secs) {
		return
	}
	s.lastTickSec = secs

	team := s.onTheClock()
	s.emit(events.EventTypeTimerTick, events.TimerTickPayload{
		TeamID:           team.ID.String(),
		OverallPick:      s.currentPick,
		TimeRemainingSec: secs,
		TickedAt:         s.deps.clock.Now(),
	})
}

func (s *session) complete() {
	s.timer.disarm()
	now := s.deps.clock.Now()
	s.status = models.DraftStatusCompleted
	s.completedAt = &now
	s.currentRound = s.settings.Rounds

	s.persistStatus()
	entries := buildRosterEntries(s.settings.Roster, s.picks, s.players, now)
	s.persist("finalize_rosters", func(ctx context.Context, store Store, h models.Draft) error {
		return store.FinalizeRosters(ctx, h.ID, entries)
	})

	payload := events.DraftCompletedPayload{
		DraftID:     s.id.String(),
		CompletedAt: now,
		TotalPicks:  len(s.picks),
	}
	if s.startedAt != nil {
		payload.Duration = now.Sub(*s.startedAt).String()
	}
	s.emit(events.EventTypeDraftCompleted, payload)

	log.Info().
		Str("draft_id", s.id.String()).
		Int("total_picks", len(s.picks)).
		Msg("draft completed")
	s.terminal()
}

func (s *session) halt(reason string) {
	s.timer.disarm()
	now := s.deps.clock.Now()
	s.status = models.DraftStatusHalted
	s.haltReason = reason
	s.persistStatus()

	payload := events.DraftHaltedPayload{
		DraftID:     s.id.String(),
		Reason:      reason,
		OverallPick: s.currentPick,
		HaltedAt:    now,
	}
	if team := s.onTheClock(); team != nil {
		payload.TeamID = team.ID.String()
	}
	s.emit(events.EventTypeDraftHalted, payload)
	draftsHalted.Inc()

	log.Error().
		Str("draft_id", s.id.String()).
		Int("overall_pick", s.currentPick).
		Str("reason", reason).
		Msg("draft halted")
	s.terminal()
}

func (s *session) startDraft() error {
	if s.status != models.DraftStatusWaiting {
		return fmt.Errorf("%w: draft is %s", ErrSessionNotActive, s.status)
	}

	now := s.deps.clock.Now()
	s.status = models.DraftStatusInProgress
	s.startedAt = &now
	s.currentPick = len(s.picks) + 1
	s.currentRound = s.roundFor(s.currentPick)
	s.persistStatus()

	s.emit(events.EventTypeDraftStarted, events.DraftStartedPayload{
		DraftID:     s.id.String(),
		DraftType:   s.settings.DraftType,
		StartedAt:   now,
		TotalRounds: s.settings.Rounds,
		TotalPicks:  s.totalPicks(),
	})
	s.beginTurn(0)
	s.emitSnapshot()
	return nil
}

func (s *session) pause(by uuid.UUID) error {
	if err := validateStatusTransition(s.status, models.DraftStatusPaused); err != nil {
		return err
	}

	s.pausedRemaining = s.timer.remaining()
	s.timer.disarm()
	s.status = models.DraftStatusPaused
	s.persistStatus()

	s.emit(events.EventTypeDraftPaused, events.DraftPausedPayload{
		DraftID:      s.id.String(),
		PausedAt:     s.deps.clock.Now(),
		PausedBy:     by.String(),
		RemainingSec: ceilSeconds(s.pausedRemaining),
	})
	return nil
}

func (s *session) resume() error {
	if s.status != models.DraftStatusPaused {
		return fmt.Errorf("%w: draft is %s", ErrSessionNotActive, s.status)
	}

	s.status = models.DraftStatusInProgress
	remaining := s.pausedRemaining
	s.pausedRemaining = 0
	s.persistStatus()

	s.emit(events.EventTypeDraftResumed, events.DraftResumedPayload{
		DraftID:      s.id.String(),
		ResumedAt:    s.deps.clock.Now(),
		RemainingSec: ceilSeconds(remaining),
	})
	if len(s.pool) == 0 {
		s.halt(fmt.Sprintf("player pool exhausted with pick %d of %d due", s.currentPick, s.totalPicks()))
		return nil
	}
	s.armTurn(0, remaining)
	return nil
}

func (s *session) postChat(userID uuid.UUID, body string) (models.ChatMessage, error) {
	body = strings.TrimSpace(body)
	if n := utf8.RuneCountInString(body); n == 0 || n > maxChatLength {
		return models.ChatMessage{}, ErrInvalidChat
	}

	msg := models.ChatMessage{
		ID:      uuid.New(),
		DraftID: s.id,
		UserID:  userID,
		Body:    body,
		SentAt:  s.deps.clock.Now(),
	}
	s.chat = append(s.chat, msg)
	if len(s.chat) > chatHistorySize {
		s.chat = append([]models.ChatMessage(nil), s.chat[len(s.chat)-chatHistorySize:]...)
	}
	s.emit(events.EventTypeChatPosted, events.ChatPostedPayload{Message: msg})
	return msg, nil
}

// updateTeam applies a flag change and shortens the live countdown when the team on
// the clock now qualifies for the auto-pick delay.
func (s *session) updateTeam(teamID uuid.UUID, apply func(t *models.DraftTeam) bool) error {
	team, ok := s.teamByID[teamID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTeam, teamID)
	}
	if !apply(team) {
		return nil
	}

	s.emit(events.EventTypeTeamStatusChanged, events.TeamStatusPayload{
		TeamID:          team.ID.String(),
		Online:          team.Online,
		AutoPickEnabled: team.AutoPickEnabled,
	})

	if s.status != models.DraftStatusInProgress || s.onTheClock() != team {
		return nil
	}
	if d := s.turnDuration(team); d < s.timer.remaining() {
		s.armTurn(0, d)
		log.Debug().
			Str("draft_id", s.id.String()).
			Str("team_id", team.ID.String()).
			Dur("countdown", d).
			Msg("shortened turn after team status change")
	}
	return nil
}
