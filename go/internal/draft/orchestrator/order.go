package orchestrator

import (
	"github.com/mcdev12/livedraft/go/internal/models"
)

// Slot locates an overall pick within the draft.
type Slot struct {
	Round       int // 1-based
	PickInRound int // 1-based
	TeamIndex   int // 0-based index into teams ordered by draft position
}

// SlotForPick maps overall pick p (1-based) to its round and the team on the clock.
// Snake drafts run odd rounds by ascending draft position and even rounds
// descending; linear drafts always ascend.
func SlotForPick(draftType models.DraftType, teamCount, p int) Slot {
	round := (p-1)/teamCount + 1
	inRound := (p-1)%teamCount + 1

	index := inRound - 1
	if draftType == models.DraftTypeSnake && round%2 == 0 {
		// Even rounds are reversed in snake
		index = teamCount - inRound
	}
	return Slot{Round: round, PickInRound: inRound, TeamIndex: index}
}

// DraftOrder expands every slot of a draft in overall pick order.
func DraftOrder(draftType models.DraftType, teamCount, rounds int) []Slot {
	total := rounds * teamCount
	order := make([]Slot, 0, total)
	for p := 1; p <= total; p++ {
		order = append(order, SlotForPick(draftType, teamCount, p))
	}
	return order
}
