// Package hierarchy detects which groups enclose which and arranges them in
// depth levels so that inner content can be cut before its container.
package hierarchy

import (
	"sort"
	"strconv"

	"github.com/piwi3910/CutPlan/internal/geom"
	"github.com/piwi3910/CutPlan/internal/model"
)

// Level is one depth of the containment tree. Depth 0 holds the groups that
// are not enclosed by anything.
type Level struct {
	Depth    int
	Groups   []int // Indices into Job.Groups
	Parent   *Level
	Children []*Level

	complete bool
}

// Complete reports whether the level has been scheduled.
func (l *Level) Complete() bool {
	return l.complete
}

// MarkComplete records that every cut of the level has been scheduled.
func (l *Level) MarkComplete() {
	l.complete = true
}

// Ready reports whether all deeper levels have completed.
func (l *Level) Ready() bool {
	for _, c := range l.Children {
		if !c.complete {
			return false
		}
	}
	return true
}

// Context is the full containment structure of one planning pass.
type Context struct {
	Roots  []*Level
	Levels []*Level // Ordered by depth, shallowest first

	// PrimaryParent is the designated parent group of each group, -1 for
	// groups at depth 0 and for excluded groups.
	PrimaryParent []int

	levelOf  map[int]*Level
	job      *model.Job
	excluded map[int]bool
}

// LevelOf returns the level a group was assigned to, or nil.
func (c *Context) LevelOf(group int) *Level {
	return c.levelOf[group]
}

// Job returns the job the context was built from.
func (c *Context) Job() *model.Job {
	return c.job
}

// Deepest returns the number of levels minus one, or -1 when empty.
func (c *Context) Deepest() int {
	return len(c.Levels) - 1
}

// Options restricts which groups take part in detection.
type Options struct {
	// Exclude lists group indices that are left out entirely, e.g. groups
	// with nothing left to burn.
	Exclude map[int]bool
}

// InnerFirstIdent runs pairwise containment over the job's groups, writes
// Contains/InsideOf on them, sets job.HierarchyConstrained and returns the
// leveled hierarchy.
func InnerFirstIdent(job *model.Job, tolerance float64) *Context {
	return Build(job, tolerance, Options{})
}

// Build is InnerFirstIdent with options.
func Build(job *model.Job, tolerance float64, opts Options) *Context {
	n := len(job.Groups)
	shapes := make([]*geom.Prepared, n)
	for gi := range job.Groups {
		job.Groups[gi].Contains = nil
		job.Groups[gi].InsideOf = nil
		if opts.Exclude[gi] {
			continue
		}
		shapes[gi] = geom.Prepare(GroupShape(job, gi))
	}

	// Only closed, non-skip groups can act as containers.
	var outers []int
	for gi, g := range job.Groups {
		if shapes[gi] != nil && g.Closed && !g.Skip && shapes[gi].CanContain() {
			outers = append(outers, gi)
		}
	}

	inside := make(map[[2]int]bool)
	for _, oi := range outers {
		for gi := 0; gi < n; gi++ {
			if gi == oi || shapes[gi] == nil {
				continue
			}
			if geom.IsInside(shapes[gi], shapes[oi], tolerance) {
				inside[[2]int{gi, oi}] = true
			}
		}
	}

	job.HierarchyConstrained = false
	for key := range inside {
		inner, outer := key[0], key[1]
		if inside[[2]int{outer, inner}] && !innerWins(shapes, inner, outer) {
			continue // mutual containment, the other direction is kept
		}
		job.Groups[outer].Contains = append(job.Groups[outer].Contains, inner)
		job.Groups[inner].InsideOf = append(job.Groups[inner].InsideOf, outer)
		job.HierarchyConstrained = true
	}
	for gi := range job.Groups {
		sort.Ints(job.Groups[gi].Contains)
		sort.Ints(job.Groups[gi].InsideOf)
	}

	return assignLevels(job, shapes, opts.Exclude)
}

// innerWins breaks mutual containment between near-identical shapes: the
// smaller one is inner, on equal area the later group is inner.
func innerWins(shapes []*geom.Prepared, inner, outer int) bool {
	ai, ao := shapes[inner].Area, shapes[outer].Area
	if ai != ao {
		return ai < ao
	}
	return inner > outer
}

// assignLevels peels groups outward-in: a group gets its depth once every
// container has one, so depth is the length of the longest enclosing chain.
func assignLevels(job *model.Job, shapes []*geom.Prepared, exclude map[int]bool) *Context {
	n := len(job.Groups)
	ctx := &Context{
		PrimaryParent: make([]int, n),
		levelOf:       make(map[int]*Level),
		job:           job,
		excluded:      exclude,
	}
	depth := make([]int, n)
	pending := make([]int, n)
	for gi := range job.Groups {
		depth[gi] = -1
		ctx.PrimaryParent[gi] = -1
		pending[gi] = len(job.Groups[gi].InsideOf)
	}

	var queue []int
	for gi := 0; gi < n; gi++ {
		if !exclude[gi] && pending[gi] == 0 {
			depth[gi] = 0
			queue = append(queue, gi)
		}
	}
	for len(queue) > 0 {
		gi := queue[0]
		queue = queue[1:]
		for _, child := range job.Groups[gi].Contains {
			if d := depth[gi] + 1; d > depth[child] {
				depth[child] = d
			}
			pending[child]--
			if pending[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	for gi := 0; gi < n; gi++ {
		if depth[gi] <= 0 {
			continue
		}
		best := -1
		for _, p := range job.Groups[gi].InsideOf {
			if best < 0 || parentBefore(p, best, depth, shapes) {
				best = p
			}
		}
		ctx.PrimaryParent[gi] = best
	}

	for gi := 0; gi < n; gi++ {
		if exclude[gi] || depth[gi] < 0 || pending[gi] != 0 {
			continue
		}
		d := depth[gi]
		for len(ctx.Levels) <= d {
			lvl := &Level{Depth: len(ctx.Levels)}
			if lvl.Depth > 0 {
				lvl.Parent = ctx.Levels[lvl.Depth-1]
				lvl.Parent.Children = append(lvl.Parent.Children, lvl)
			} else {
				ctx.Roots = append(ctx.Roots, lvl)
			}
			ctx.Levels = append(ctx.Levels, lvl)
		}
		lvl := ctx.Levels[d]
		lvl.Groups = append(lvl.Groups, gi)
		ctx.levelOf[gi] = lvl
	}
	return ctx
}

// parentBefore orders candidate parents: deepest first, then smallest area,
// then lowest index.
func parentBefore(a, b int, depth []int, shapes []*geom.Prepared) bool {
	if depth[a] != depth[b] {
		return depth[a] > depth[b]
	}
	if shapes[a] != nil && shapes[b] != nil && shapes[a].Area != shapes[b].Area {
		return shapes[a].Area < shapes[b].Area
	}
	return a < b
}

// GroupShape builds the oracle geometry for a group: its cuts' vertices in
// group order. A group made of a single raster cut is a raster region.
func GroupShape(job *model.Job, gi int) geom.Shape {
	g := job.Groups[gi]
	// Identity is the arena index; user IDs are not guaranteed unique.
	s := geom.Shape{ID: "#" + strconv.Itoa(gi), Closed: g.Closed}
	if len(g.Cuts) == 1 {
		if c := job.Cuts[g.Cuts[0]]; c.Kind == model.KindRaster && c.Raster != nil {
			s.Raster = c.Raster
			return s
		}
	}
	for _, ci := range g.Cuts {
		c := job.Cuts[ci]
		if c.Kind == model.KindRaster && c.Raster != nil {
			b := c.Raster.Bounds()
			s.Points = append(s.Points, b.Min, model.Point2D{X: b.Max.X, Y: b.Min.Y}, b.Max, model.Point2D{X: b.Min.X, Y: b.Max.Y})
			continue
		}
		s.Points = append(s.Points, c.Points()...)
	}
	return s
}
