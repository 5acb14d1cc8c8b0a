package engine

import (
	"errors"
	"fmt"

	"github.com/piwi3910/CutPlan/internal/hierarchy"
)

// ErrLevelNotReady is returned when a level is reached before the levels
// nested inside it have been scheduled.
var ErrLevelNotReady = errors.New("level scheduled before its inner levels")

// LevelOptimizer orders the units of one level. On cancellation it returns
// the units ordered so far together with the context error.
type LevelOptimizer func(level *hierarchy.Level) ([]Unit, error)

// Schedule walks the hierarchy from the deepest level to depth 0, calling
// opt once per level, and concatenates the results. A level's output never
// interleaves with another level's.
func Schedule(h *hierarchy.Context, opt LevelOptimizer) ([]Unit, error) {
	var out []Unit
	for d := h.Deepest(); d >= 0; d-- {
		lvl := h.Levels[d]
		if !lvl.Ready() {
			return out, fmt.Errorf("%w: depth %d", ErrLevelNotReady, lvl.Depth)
		}
		units, err := opt(lvl)
		out = append(out, units...)
		if err != nil {
			return out, err
		}
		lvl.MarkComplete()
	}
	return out, nil
}
