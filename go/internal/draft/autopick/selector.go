package autopick

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/livedraft/go/internal/models"
)

// ErrEmptyPool is returned when there is nobody left to pick.
var ErrEmptyPool = errors.New("no players available")

// Choice is the result of an automatic selection.
type Choice struct {
	Player   models.Player
	Value    float64
	Reason   string
	Fallback bool // true when the strategy failed and the projection fallback was used
}

// Selector wraps a Strategy with the guaranteed projection fallback.
type Selector struct {
	strategy Strategy
}

// NewSelector creates a Selector. A nil strategy means RoundBanded.
func NewSelector(strategy Strategy) *Selector {
	if strategy == nil {
		strategy = RoundBanded{}
	}
	return &Selector{strategy: strategy}
}

// Select returns exactly one available player. It only fails when the pool is empty.
func (s *Selector) Select(c Context) (Choice, error) {
	if len(c.Available) == 0 {
		return Choice{}, ErrEmptyPool
	}

	score, reason, err := s.tryStrategy(c)
	if err == nil && !isAvailable(score.Player, c.Available) {
		err = fmt.Errorf("strategy %q chose unavailable player %s", reason, score.Player.ID)
	}
	if err != nil {
		p, _ := Fallback(c.Available)
		log.Warn().
			Err(err).
			Int("overall_pick", c.OverallPick).
			Str("player_id", p.ID.String()).
			Msg("auto-pick strategy failed, using projection fallback")
		return Choice{Player: p, Value: p.ProjectedPoints, Reason: "fallback", Fallback: true}, nil
	}

	return Choice{Player: score.Player, Value: score.Value, Reason: reason}, nil
}

func (s *Selector) tryStrategy(c Context) (score Score, reason string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("strategy panicked: %v", r)
		}
	}()
	return s.strategy.Pick(c)
}

// Fallback returns the highest projected player regardless of position or roster
// needs. Ties go to the earlier ADP, then the lower id.
func Fallback(available []models.Player) (models.Player, bool) {
	if len(available) == 0 {
		return models.Player{}, false
	}
	sorted := append([]models.Player(nil), available...)
	sort.Slice(sorted, func(i, j int) bool { return byProjection(sorted[i], sorted[j]) })
	return sorted[0], true
}

func isAvailable(p models.Player, available []models.Player) bool {
	for _, a := range available {
		if a.ID == p.ID {
			return true
		}
	}
	return false
}
