package engine

import (
	"context"
	"log/slog"
	"math"

	"github.com/piwi3910/CutPlan/internal/model"
)

// Strategy orders candidate units starting from a head position. On
// cancellation it returns the prefix ordered so far with the context error.
type Strategy interface {
	Name() string
	Order(candidates []Unit, start model.Point2D) ([]Unit, error)
}

// StrategyKind identifies a base ordering strategy.
type StrategyKind int

const (
	StrategyGreedy  StrategyKind = iota // Linear nearest-neighbor scan
	StrategySpatial                     // Nearest-neighbor over a quadtree
)

func (k StrategyKind) String() string {
	if k == StrategySpatial {
		return "spatial"
	}
	return "greedy"
}

// StrategyChoice is the strategy picked for a candidate set.
type StrategyChoice struct {
	Kind   StrategyKind
	Refine bool // Follow with 2-opt
}

func (c StrategyChoice) String() string {
	if c.Refine {
		return c.Kind.String() + "+2opt"
	}
	return c.Kind.String()
}

// SelectStrategy picks a strategy from the number of candidates alone.
func SelectStrategy(n int, s model.PlanSettings) StrategyChoice {
	s = s.Normalized()
	choice := StrategyChoice{Kind: StrategyGreedy}
	if n >= s.Thresholds.Spatial {
		choice.Kind = StrategySpatial
	}
	choice.Refine = s.TwoOptPasses > 0 && n >= 3 && n <= s.Thresholds.TwoOptMaxUnits
	return choice
}

// newStrategy builds the strategy for a choice, bound to a run's monitor.
func newStrategy(c StrategyChoice, s model.PlanSettings, m *monitor) Strategy {
	eps := s.AdjacentEpsilon * s.AdjacentEpsilon
	var base Strategy = &greedy{m: m, epsSq: eps}
	if c.Kind == StrategySpatial {
		base = &spatial{m: m, epsSq: eps}
	}
	if c.Refine {
		return &twoOpt{base: base, m: m, passes: s.TwoOptPasses, window: s.TwoOptWindow}
	}
	return base
}

// monitor counts scheduled units, polls for cancellation every interval
// and reports progress.
type monitor struct {
	ctx      context.Context
	interval int
	done     int
	total    int
	level    int
	progress func(Progress)
	logger   *slog.Logger
	degraded int
	err      error
}

func newMonitor(ctx context.Context, interval, total int, progress func(Progress), logger *slog.Logger) *monitor {
	if interval <= 0 {
		interval = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &monitor{ctx: ctx, interval: interval, total: total, level: -1, progress: progress, logger: logger}
}

// tick records one scheduled unit and returns the cancellation error once
// it has been observed.
func (m *monitor) tick() error {
	m.done++
	if m.done%m.interval != 0 {
		return m.err
	}
	m.poll()
	if m.progress != nil {
		m.progress(Progress{Done: m.done, Total: m.total, Depth: m.level})
	}
	return m.err
}

// quiet returns a monitor for a nested sub-order. It polls the same
// context on the same interval but reports no progress, so the parent's
// Done stays a count of its own units. Call absorb when the sub-order ends.
func (m *monitor) quiet() *monitor {
	return &monitor{ctx: m.ctx, interval: m.interval, level: m.level, logger: m.logger, err: m.err}
}

// absorb folds a quiet monitor's cancellation and degradation into m.
func (m *monitor) absorb(sub *monitor) {
	m.degraded += sub.degraded
	if m.err == nil {
		m.err = sub.err
	}
}

// poll checks the context without counting.
func (m *monitor) poll() error {
	if m.err == nil {
		m.err = m.ctx.Err()
	}
	return m.err
}

// degrade records units whose distance could not be computed.
func (m *monitor) degrade(n int) {
	if n == 0 {
		return
	}
	m.degraded += n
	m.logger.Warn("distance computation failed, keeping encountered order", "units", n, "depth", m.level)
}

// approach returns the squared travel from pos into u and whether entering
// reversed is shorter. ok is false when no finite distance exists.
func approach(pos model.Point2D, u *Unit) (d float64, rev, ok bool) {
	d = pos.DistSq(u.start)
	fwd := finite(d)
	if u.Reversible {
		r := pos.DistSq(u.end)
		if finite(r) && (!fwd || r < d) {
			return r, true, true
		}
	}
	return d, false, fwd
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// greedy is nearest-neighbor by linear scan. Ties go to the earliest
// candidate; a candidate within epsilon of the head is taken immediately.
type greedy struct {
	m     *monitor
	epsSq float64
}

func (g *greedy) Name() string { return StrategyGreedy.String() }

func (g *greedy) Order(candidates []Unit, start model.Point2D) ([]Unit, error) {
	n := len(candidates)
	out := make([]Unit, 0, n)
	used := make([]bool, n)
	var failed []int
	pos := start

	for len(out)+len(failed) < n {
		best, bestRev, bestD := -1, false, math.Inf(1)
		for i := range candidates {
			if used[i] {
				continue
			}
			d, rev, ok := approach(pos, &candidates[i])
			if !ok {
				used[i] = true
				failed = append(failed, i)
				continue
			}
			if best < 0 || d < bestD {
				best, bestRev, bestD = i, rev, d
			}
			if d <= g.epsSq {
				break
			}
		}
		if best < 0 {
			break
		}
		used[best] = true
		u := candidates[best]
		u.SetReversed(bestRev)
		out = append(out, u)
		pos = u.ExitPoint()
		if err := g.m.tick(); err != nil {
			return out, err
		}
	}

	g.m.degrade(len(failed))
	for _, i := range failed {
		out = append(out, candidates[i])
	}
	return out, nil
}

// inOrder keeps candidates exactly as given.
func inOrder(candidates []Unit) []Unit {
	return append([]Unit(nil), candidates...)
}

// travel sums the euclidean head movement over ordered units, including the
// returns between passes of a loop.
func travel(units []Unit, start model.Point2D, cuts []model.Cut) float64 {
	return entryTravel(Flatten(units), start, cuts)
}

func entryTravel(entries []Entry, start model.Point2D, cuts []model.Cut) float64 {
	total := 0.0
	pos := start
	for _, e := range entries {
		c := &cuts[e.Cut]
		in, out := c.Start, c.End
		if e.Reversed {
			in, out = out, in
		}
		if d := pos.DistSq(in); finite(d) {
			total += math.Sqrt(d)
		}
		pos = out
	}
	return total
}
