package orchestrator

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/mcdev12/livedraft/go/internal/models"
)

// buildRosterEntries classifies every pick of a completed draft. Picks are walked in
// round order per team: a player starts while the position has open starter slots,
// RB/WR/TE spill into FLEX while flex slots remain, and everything else is bench.
func buildRosterEntries(req models.RosterRequirements, picks []models.DraftPick, players map[uuid.UUID]models.Player, at time.Time) []models.RosterEntry {
	sorted := append([]models.DraftPick(nil), picks...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].OverallPick < sorted[j].OverallPick })

	type slots struct {
		starters map[models.Position]int
		flex     int
	}
	open := make(map[uuid.UUID]*slots)

	entries := make([]models.RosterEntry, 0, len(sorted))
	for _, pick := range sorted {
		sl, ok := open[pick.TeamID]
		if !ok {
			sl = &slots{starters: make(map[models.Position]int, len(models.Positions)), flex: req.Flex}
			for _, pos := range models.Positions {
				sl.starters[pos] = req.Starters(pos)
			}
			open[pick.TeamID] = sl
		}

		pos := players[pick.PlayerID].Position
		slot := models.RosterPositionBench
		switch {
		case sl.starters[pos] > 0:
			sl.starters[pos]--
			slot = models.RosterPositionStarter
		case pos.FlexEligible() && sl.flex > 0:
			sl.flex--
			slot = models.RosterPositionFlex
		}

		entries = append(entries, models.RosterEntry{
			FantasyTeamID:   pick.TeamID,
			PlayerID:        pick.PlayerID,
			Position:        slot,
			Round:           pick.Round,
			AcquiredAt:      at,
			AcquisitionType: models.AcquisitionTypeDraft,
		})
	}
	return entries
}
