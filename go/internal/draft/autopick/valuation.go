// Package autopick scores available players and chooses one on behalf of a team.
package autopick

import (
	"sort"

	"github.com/mcdev12/livedraft/go/internal/models"
)

// Valuation weights.
const (
	ADPValueWeight         = 0.5  // per pick the player has fallen past their ADP
	ADPValueCap            = 25.0 // upper bound of the ADP bonus
	ScarcityWeight         = 30.0 // applied to the drafted share of a position's top tier
	NeedMultiplier         = 1.25
	TierOneBonus           = 15.0
	TierTwoBonus           = 7.0
	ByeWeekPenalty         = 4.0 // per rostered same-position player sharing the bye
	EarlyQBPenalty         = 20.0
	EarlyQBRounds          = 3
	LateKickerDefenseBonus = 20.0
	LateRounds             = 2 // the final rounds where K/DEF are worth taking
)

// TopTierSize is the position rank cut-off used to measure positional scarcity.
var TopTierSize = map[models.Position]int{
	models.PositionQB:  12,
	models.PositionRB:  24,
	models.PositionWR:  24,
	models.PositionTE:  12,
	models.PositionK:   12,
	models.PositionDEF: 12,
}

// TierOneSize is the position rank cut-off of the elite tier. Twice the size is tier two.
var TierOneSize = map[models.Position]int{
	models.PositionQB:  3,
	models.PositionRB:  6,
	models.PositionWR:  6,
	models.PositionTE:  3,
	models.PositionK:   3,
	models.PositionDEF: 3,
}

var pprUplift = map[models.Position]float64{
	models.PositionWR: 0.10,
	models.PositionTE: 0.08,
	models.PositionRB: 0.05,
}

// Context is everything the valuation needs to know about the pick being made.
type Context struct {
	Round        int
	OverallPick  int
	TotalRounds  int
	TeamCount    int
	Scoring      models.ScoringMode
	Requirements models.RosterRequirements
	Roster       []models.Player // the picking team's roster
	Available    []models.Player
	Drafted      []models.Player // every player already drafted by any team
}

// PicksRemaining counts the team's picks left including the current one.
func (c Context) PicksRemaining() int {
	return c.TotalRounds - c.Round + 1
}

// LateRound reports whether the pick falls in the final LateRounds rounds.
func (c Context) LateRound() bool {
	return c.Round > c.TotalRounds-LateRounds
}

// Score is a valued candidate.
type Score struct {
	Player models.Player
	Value  float64
}

// Scarcity returns, per position, the fraction of top-tier players already drafted.
func Scarcity(c Context) map[models.Position]float64 {
	total := make(map[models.Position]int)
	drafted := make(map[models.Position]int)
	count := func(players []models.Player, into map[models.Position]int) {
		for _, p := range players {
			if p.PositionRank > 0 && p.PositionRank <= TopTierSize[p.Position] {
				into[p.Position]++
			}
		}
	}
	count(c.Available, total)
	count(c.Drafted, total)
	count(c.Drafted, drafted)

	out := make(map[models.Position]float64, len(total))
	for pos, n := range total {
		out[pos] = float64(drafted[pos]) / float64(n)
	}
	return out
}

// Value scores one candidate for the picking team.
func Value(p models.Player, c Context, needs Needs, scarcity map[models.Position]float64) float64 {
	v := p.ProjectedPoints

	if p.ADP > 0 {
		if fallen := float64(c.OverallPick) - p.ADP; fallen > 0 {
			v += min(fallen*ADPValueWeight, ADPValueCap)
		}
	}

	v += scarcity[p.Position] * ScarcityWeight
	v += tierBonus(p)
	v -= ByeWeekPenalty * float64(sameBye(p, c.Roster))

	if p.Position == models.PositionQB && c.Round <= EarlyQBRounds {
		v -= EarlyQBPenalty
	}
	if isKickerOrDefense(p.Position) && c.LateRound() {
		v += LateKickerDefenseBonus
	}

	if needs.Open(p.Position) {
		v *= NeedMultiplier
	}
	return v * pprMultiplier(p.Position, c.Scoring)
}

// ScoreAll values every available player, best first.
func ScoreAll(c Context) []Score {
	needs := ComputeNeeds(c.Requirements, c.Roster)
	scarcity := Scarcity(c)

	scores := make([]Score, 0, len(c.Available))
	for _, p := range c.Available {
		scores = append(scores, Score{Player: p, Value: Value(p, c, needs, scarcity)})
	}
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Value != scores[j].Value {
			return scores[i].Value > scores[j].Value
		}
		return byProjection(scores[i].Player, scores[j].Player)
	})
	return scores
}

func tierBonus(p models.Player) float64 {
	if p.PositionRank <= 0 {
		return 0
	}
	tier := TierOneSize[p.Position]
	switch {
	case p.PositionRank <= tier:
		return TierOneBonus
	case p.PositionRank <= 2*tier:
		return TierTwoBonus
	}
	return 0
}

func sameBye(p models.Player, roster []models.Player) int {
	if p.ByeWeek == 0 {
		return 0
	}
	n := 0
	for _, r := range roster {
		if r.Position == p.Position && r.ByeWeek == p.ByeWeek {
			n++
		}
	}
	return n
}

func pprMultiplier(pos models.Position, mode models.ScoringMode) float64 {
	switch mode {
	case models.ScoringPPR:
		return 1 + pprUplift[pos]
	case models.ScoringHalfPPR:
		return 1 + pprUplift[pos]/2
	}
	return 1
}

func isKickerOrDefense(pos models.Position) bool {
	return pos == models.PositionK || pos == models.PositionDEF
}

// byProjection orders by projected points, then earlier ADP, then id.
func byProjection(a, b models.Player) bool {
	if a.ProjectedPoints != b.ProjectedPoints {
		return a.ProjectedPoints > b.ProjectedPoints
	}
	if adpKey(a) != adpKey(b) {
		return adpKey(a) < adpKey(b)
	}
	return a.ID.String() < b.ID.String()
}

func adpKey(p models.Player) float64 {
	if p.ADP <= 0 {
		return 1 << 30
	}
	return p.ADP
}
