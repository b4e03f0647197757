package autopick

import (
	"github.com/mcdev12/livedraft/go/internal/models"
)

// Needs counts the roster slots a team still has to fill.
type Needs struct {
	Starters map[models.Position]int
	Flex     int
}

// ComputeNeeds compares a roster against the league requirements. Players beyond a
// position's starter count spill into FLEX when the position is flex eligible.
func ComputeNeeds(req models.RosterRequirements, roster []models.Player) Needs {
	have := make(map[models.Position]int, len(models.Positions))
	for _, p := range roster {
		have[p.Position]++
	}

	needs := Needs{Starters: make(map[models.Position]int, len(models.Positions))}
	overflow := 0
	for _, pos := range models.Positions {
		want := req.Starters(pos)
		if have[pos] < want {
			needs.Starters[pos] = want - have[pos]
			continue
		}
		if pos.FlexEligible() {
			overflow += have[pos] - want
		}
	}
	if req.Flex > overflow {
		needs.Flex = req.Flex - overflow
	}
	return needs
}

// OpenStarter reports whether a dedicated starter slot is open for the position.
func (n Needs) OpenStarter(p models.Position) bool {
	return n.Starters[p] > 0
}

// Open reports whether drafting the position fills any open starting slot.
func (n Needs) Open(p models.Position) bool {
	return n.OpenStarter(p) || (p.FlexEligible() && n.Flex > 0)
}

// Total is the number of starting slots still open.
func (n Needs) Total() int {
	total := n.Flex
	for _, c := range n.Starters {
		total += c
	}
	return total
}
