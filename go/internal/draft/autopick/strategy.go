package autopick

import (
	"math/rand"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/mcdev12/livedraft/go/internal/models"
)

// Strategy chooses a player from a valued context. Implementations may fail; the
// Selector guards them.
type Strategy interface {
	Pick(c Context) (Score, string, error)
}

// handcuffPositions are the scarce positions worth insuring with a same-team backup.
var handcuffPositions = []models.Position{models.PositionRB, models.PositionQB}

// RoundBanded applies a different preference depending on the round.
type RoundBanded struct{}

// Pick implements Strategy.
func (RoundBanded) Pick(c Context) (Score, string, error) {
	scores := ScoreAll(c)
	if len(scores) == 0 {
		return Score{}, "", ErrEmptyPool
	}
	needs := ComputeNeeds(c.Requirements, c.Roster)

	if s, ok := forcedKickerDefense(c, needs, scores); ok {
		return s, "fill_k_def", nil
	}
	if !c.LateRound() {
		scores = deferKickerDefense(scores)
	}

	switch {
	case c.Round <= 2:
		return earlyValue(scores, needs), "early_value", nil
	case c.Round <= 6:
		return bestAtNeed(scores, needs), "best_at_need", nil
	case c.Round <= 10:
		return completeStarters(scores, needs), "complete_starters", nil
	default:
		s, reason := depth(c, scores, needs)
		return s, reason, nil
	}
}

// earlyValue takes the best value, unless a need position sits within 90% of it.
func earlyValue(scores []Score, needs Needs) Score {
	top := scores[0]
	threshold := top.Value * 0.9
	for _, s := range scores {
		if s.Value < threshold {
			break
		}
		if needs.Open(s.Player.Position) {
			return s
		}
	}
	return top
}

func bestAtNeed(scores []Score, needs Needs) Score {
	if s, ok := lo.Find(scores, func(s Score) bool { return needs.Open(s.Player.Position) }); ok {
		return s
	}
	return scores[0]
}

func completeStarters(scores []Score, needs Needs) Score {
	if s, ok := lo.Find(scores, func(s Score) bool { return needs.OpenStarter(s.Player.Position) }); ok {
		return s
	}
	return bestAtNeed(scores, needs)
}

func depth(c Context, scores []Score, needs Needs) (Score, string) {
	anchors := lo.Filter(c.Roster, func(p models.Player, _ int) bool {
		return p.ProTeam != "" && lo.Contains(handcuffPositions, p.Position)
	})
	if s, ok := lo.Find(scores, func(s Score) bool {
		return lo.ContainsBy(anchors, func(a models.Player) bool {
			return a.Position == s.Player.Position && a.ProTeam == s.Player.ProTeam
		})
	}); ok {
		return s, "handcuff"
	}

	if s, ok := lo.Find(scores, func(s Score) bool {
		return s.Player.ADP > 0 && s.Player.ADP < float64(c.OverallPick)
	}); ok {
		return s, "upside"
	}

	if s, ok := lo.Find(scores, func(s Score) bool {
		return isKickerOrDefense(s.Player.Position) && needs.OpenStarter(s.Player.Position)
	}); ok {
		return s, "fill_k_def"
	}
	return scores[0], "best_available"
}

// forcedKickerDefense fills an empty K or DEF slot once the team has no spare picks left.
func forcedKickerDefense(c Context, needs Needs, scores []Score) (Score, bool) {
	empty := needs.Starters[models.PositionK] + needs.Starters[models.PositionDEF]
	if empty == 0 || c.PicksRemaining() > empty {
		return Score{}, false
	}
	return lo.Find(scores, func(s Score) bool {
		return isKickerOrDefense(s.Player.Position) && needs.OpenStarter(s.Player.Position)
	})
}

// deferKickerDefense drops K and DEF while anything else is left.
func deferKickerDefense(scores []Score) []Score {
	rest := lo.Filter(scores, func(s Score, _ int) bool { return !isKickerOrDefense(s.Player.Position) })
	if len(rest) == 0 {
		return scores
	}
	return rest
}

// RandomStrategy picks uniformly among available players. It backs the
// "random" auto-pick setting used for load tests.
type RandomStrategy struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomStrategy constructs a RandomStrategy with its own seed.
func NewRandomStrategy() *RandomStrategy {
	return &RandomStrategy{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// Pick implements Strategy.
func (s *RandomStrategy) Pick(c Context) (Score, string, error) {
	if len(c.Available) == 0 {
		return Score{}, "", ErrEmptyPool
	}
	s.mu.Lock()
	p := c.Available[s.rng.Intn(len(c.Available))]
	s.mu.Unlock()
	return Score{Player: p, Value: p.ProjectedPoints}, "random", nil
}
