// Package engine turns an unordered job into an execution order: it expands
// multi-pass cuts into atomic loops, schedules containment levels inner
// first and orders each level to keep head travel short.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/piwi3910/CutPlan/internal/hierarchy"
	"github.com/piwi3910/CutPlan/internal/model"
)

// Status tells whether a plan covers the whole job.
type Status int

const (
	StatusComplete  Status = iota
	StatusCancelled        // Planning stopped early; the order is a valid prefix
)

func (s Status) String() string {
	if s == StatusCancelled {
		return "cancelled"
	}
	return "complete"
}

// MarshalText makes the status readable in saved results.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	switch string(b) {
	case "complete":
		*s = StatusComplete
	case "cancelled":
		*s = StatusCancelled
	default:
		return fmt.Errorf("unknown plan status %q", b)
	}
	return nil
}

// Step is one scheduled cut.
type Step struct {
	Index    int        `json:"index"` // Index of the cut in the input job
	ID       string     `json:"id"`
	Cut      *model.Cut `json:"-"` // The input cut, read-only
	Reversed bool       `json:"reversed"`
	Pass     int        `json:"pass"`   // 1-based pass this step starts with
	Passes   int        `json:"passes"` // Passes burned back to back from this step on
}

// Stats summarizes a planning run.
type Stats struct {
	Cuts          int           `json:"cuts"`
	Entries       int           `json:"entries"`
	Units         int           `json:"units"`
	Hierarchical  bool          `json:"hierarchical"`
	Levels        int           `json:"levels"`
	UnitsPerLevel []int         `json:"units_per_level"` // Deepest level first
	Strategies    []string      `json:"strategies"`      // One per ordered level
	Degraded      int           `json:"degraded"`        // Units kept in encountered order after a distance failure
	Travel        float64       `json:"travel"`          // Head movement between cuts in mm
	Elapsed       time.Duration `json:"elapsed"`
}

// Result is the outcome of Plan.
type Result struct {
	Status   Status   `json:"status"`
	Order    []Step   `json:"order"` // One step per pass
	Steps    []Step   `json:"steps"` // Passes of a loop collapsed into one step
	Dropped  []int    `json:"dropped,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	Stats    Stats    `json:"stats"`
}

// Progress is reported every CheckInterval scheduled units.
type Progress struct {
	Done  int
	Total int
	Depth int // Level being ordered, -1 for a flat plan
}

// Planner orders jobs. It holds no state between calls and is safe for
// concurrent use.
type Planner struct {
	settings model.PlanSettings
	logger   *slog.Logger
	progress func(Progress)
}

// Option configures a Planner.
type Option func(*Planner)

// WithLogger sets the logger used for planning diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(p *Planner) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithProgress registers a progress callback. It runs on the planning
// goroutine.
func WithProgress(fn func(Progress)) Option {
	return func(p *Planner) {
		p.progress = fn
	}
}

func New(settings model.PlanSettings, opts ...Option) *Planner {
	p := &Planner{settings: settings.Normalized(), logger: slog.Default()}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Settings returns the normalized settings the planner runs with.
func (p *Planner) Settings() model.PlanSettings {
	return p.settings
}

// validateHierarchy checks a built hierarchy before it is scheduled.
var validateHierarchy = hierarchy.Validate

// run is the state of one Plan call.
type run struct {
	settings model.PlanSettings
	logger   *slog.Logger
	job      *model.Job // Working copy
	byCut    [][]Entry
	mon      *monitor
	pos      model.Point2D
	stats    *Stats
	warnings []string
}

// Plan validates the job and returns its execution order. The job is not
// modified. If ctx is cancelled, the order scheduled so far is returned
// with StatusCancelled and a nil error.
func (p *Planner) Plan(ctx context.Context, job *model.Job) (*Result, error) {
	if job == nil {
		return nil, errors.New("nil job")
	}
	if err := model.ValidateJob(job); err != nil {
		return nil, fmt.Errorf("invalid job %q: %w", job.Name, err)
	}
	started := time.Now()

	res := &Result{Status: StatusComplete}
	r := &run{
		settings: p.settings,
		logger:   p.logger.With("job", job.Name),
		job:      job.Clone(),
		pos:      p.settings.Start(),
		stats:    &res.Stats,
	}
	r.adoptOrphans()

	entries, dropped := Expand(r.job.Cuts)
	r.byCut = make([][]Entry, len(r.job.Cuts))
	for i := 0; i < len(entries); {
		j := i
		for j < len(entries) && entries[j].Cut == entries[i].Cut {
			j++
		}
		r.byCut[entries[i].Cut] = entries[i:j:j]
		i = j
	}
	if len(dropped) > 0 {
		r.logger.Info("dropped cuts with no remaining passes", "count", len(dropped))
	}
	res.Dropped = dropped
	res.Stats.Cuts = len(job.Cuts)
	res.Stats.Entries = len(entries)
	r.mon = newMonitor(ctx, p.settings.CheckInterval, len(r.job.Cuts)-len(dropped), p.progress, r.logger)

	units, err := r.schedule()
	if err != nil {
		if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		res.Status = StatusCancelled
		r.logger.Warn("planning cancelled, returning partial order", "scheduled_units", len(units), "error", err)
	}

	ordered := Flatten(units)
	res.Order = p.steps(job, ordered)
	res.Steps = p.steps(job, Collapse(ordered))
	res.Warnings = r.warnings
	res.Stats.Units = len(units)
	res.Stats.Degraded = r.mon.degraded
	res.Stats.Travel = entryTravel(ordered, p.settings.Start(), r.job.Cuts)
	res.Stats.Elapsed = time.Since(started)

	r.logger.Info("plan finished",
		"status", res.Status,
		"steps", len(res.Steps),
		"levels", res.Stats.Levels,
		"travel", res.Stats.Travel,
		"elapsed", res.Stats.Elapsed)
	return res, nil
}

// adoptOrphans gives every ungrouped cut its own open group.
func (r *run) adoptOrphans() {
	for ci := range r.job.Cuts {
		c := &r.job.Cuts[ci]
		if c.Group >= 0 {
			continue
		}
		c.Group = len(r.job.Groups)
		r.job.Groups = append(r.job.Groups, model.Group{ID: c.ID, Cuts: []int{ci}})
	}
}

func (r *run) schedule() ([]Unit, error) {
	exclude := make(map[int]bool)
	var live []int
	for gi := range r.job.Groups {
		if len(r.liveCuts(gi)) == 0 {
			exclude[gi] = true
			continue
		}
		live = append(live, gi)
	}

	if !r.settings.InnerFirst {
		return r.flat(live)
	}

	h := hierarchy.Build(r.job, r.settings.Tolerance, hierarchy.Options{Exclude: exclude})
	if ok, errs := validateHierarchy(h); !ok {
		for _, e := range errs {
			r.warnings = append(r.warnings, e.Error())
		}
		r.logger.Warn("hierarchy invalid, planning without containment", "errors", len(errs))
		return r.flat(live)
	}
	if !r.job.HierarchyConstrained {
		return r.flat(live)
	}

	r.stats.Hierarchical = true
	r.stats.Levels = len(h.Levels)
	r.logger.Debug("hierarchy built", "levels", len(h.Levels), "groups", len(live))
	return Schedule(h, func(lvl *hierarchy.Level) ([]Unit, error) {
		r.mon.level = lvl.Depth
		return r.orderGroups(lvl.Groups)
	})
}

// flat orders every live group as a single level.
func (r *run) flat(groups []int) ([]Unit, error) {
	r.stats.Levels = 1
	r.mon.level = -1
	return r.orderGroups(groups)
}

func (r *run) orderGroups(groups []int) ([]Unit, error) {
	if err := r.mon.poll(); err != nil {
		return nil, err
	}
	units, err := r.groupUnits(groups)
	if err != nil {
		return nil, err
	}
	choice := SelectStrategy(len(units), r.settings)
	r.stats.Strategies = append(r.stats.Strategies, choice.String())
	r.stats.UnitsPerLevel = append(r.stats.UnitsPerLevel, len(units))

	ordered, err := newStrategy(choice, r.settings, r.mon).Order(units, r.pos)
	if n := len(ordered); n > 0 {
		r.pos = ordered[n-1].ExitPoint()
	}
	return ordered, err
}

func (p *Planner) steps(job *model.Job, entries []Entry) []Step {
	out := make([]Step, len(entries))
	for i, e := range entries {
		c := &job.Cuts[e.Cut]
		out[i] = Step{
			Index:    e.Cut,
			ID:       c.ID,
			Cut:      c,
			Reversed: e.Reversed,
			Pass:     e.Pass,
			Passes:   e.Passes,
		}
	}
	return out
}
