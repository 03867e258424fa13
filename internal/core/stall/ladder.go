package stall

import (
	"errors"
	"fmt"
)

// Strategy is one rung of the retry ladder.
type Strategy string

const (
	// StrategyBackUp reverses briefly and retries.
	StrategyBackUp Strategy = "back_up"
	// StrategyAdjustAngle turns slightly and approaches from a new angle.
	StrategyAdjustAngle Strategy = "adjust_angle"
	// StrategyReduceDepth retries with a shallower scoop.
	StrategyReduceDepth Strategy = "reduce_depth"
	// StrategySkip gives up on the target.
	StrategySkip Strategy = "skip"
)

// DefaultLadder is the fixed default escalation order.
var DefaultLadder = []Strategy{StrategyBackUp, StrategyAdjustAngle, StrategyReduceDepth, StrategySkip}

// ErrLadderExhausted indicates every strategy in the ladder, including
// Skip, has been consumed for the current episode.
var ErrLadderExhausted = errors.New("retry ladder exhausted")

// ParseLadder validates a configured strategy order. The order must be
// a permutation of the full strategy set ending in Skip, so every
// episode stays bounded and always terminates by giving up.
func ParseLadder(names []string) ([]Strategy, error) {
	if len(names) == 0 {
		return DefaultLadder, nil
	}
	if len(names) != len(DefaultLadder) {
		return nil, fmt.Errorf("retry ladder must list all %d strategies, got %d", len(DefaultLadder), len(names))
	}

	seen := make(map[Strategy]bool, len(names))
	ladder := make([]Strategy, 0, len(names))
	for _, name := range names {
		s := Strategy(name)
		switch s {
		case StrategyBackUp, StrategyAdjustAngle, StrategyReduceDepth, StrategySkip:
		default:
			return nil, fmt.Errorf("unknown retry strategy %q", name)
		}
		if seen[s] {
			return nil, fmt.Errorf("duplicate retry strategy %q", name)
		}
		seen[s] = true
		ladder = append(ladder, s)
	}
	if ladder[len(ladder)-1] != StrategySkip {
		return nil, fmt.Errorf("retry ladder must end with %q", StrategySkip)
	}
	return ladder, nil
}

// Episode tracks retry escalation for one manipulation episode. The
// attempt count only grows, bounded by the ladder length.
type Episode struct {
	ladder []Strategy
	tried  int
}

// NewEpisode creates an episode over the given ladder.
func NewEpisode(ladder []Strategy) *Episode {
	if len(ladder) == 0 {
		ladder = DefaultLadder
	}
	return &Episode{ladder: ladder}
}

// NextStrategy returns the next strategy not yet tried, in ladder
// order. After all rungs are consumed it returns ErrLadderExhausted.
func (e *Episode) NextStrategy() (Strategy, error) {
	if e.tried >= len(e.ladder) {
		return "", ErrLadderExhausted
	}
	s := e.ladder[e.tried]
	e.tried++
	return s, nil
}

// Tried returns the strategies consumed so far, in order.
func (e *Episode) Tried() []Strategy {
	out := make([]Strategy, e.tried)
	copy(out, e.ladder[:e.tried])
	return out
}

// Attempts returns how many strategies have been consumed.
func (e *Episode) Attempts() int { return e.tried }

// Reset clears the episode counter. Called on manipulation success or
// after Skip, before the next target.
func (e *Episode) Reset() {
	e.tried = 0
}
