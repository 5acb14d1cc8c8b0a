package hierarchy

import (
	"errors"
	"fmt"
)

var (
	ErrUnassigned = errors.New("group not assigned to a level")
	ErrDuplicate  = errors.New("group assigned to more than one level")
	ErrAsymmetric = errors.New("parent/child references are not symmetric")
	ErrCycle      = errors.New("containment cycle")
	ErrDepth      = errors.New("level ordering violated")
)

// Validate checks the structural invariants of a hierarchy. It never
// panics; every violation found is returned.
func Validate(c *Context) (bool, []error) {
	if c == nil {
		return false, []error{errors.New("nil hierarchy")}
	}
	var errs []error
	job := c.job

	seen := make(map[int]*Level)
	for _, lvl := range c.Levels {
		for _, gi := range lvl.Groups {
			if prev, ok := seen[gi]; ok {
				errs = append(errs, fmt.Errorf("%w: group %d at depth %d and %d", ErrDuplicate, gi, prev.Depth, lvl.Depth))
				continue
			}
			seen[gi] = lvl
		}
	}
	if job != nil {
		for gi := range job.Groups {
			if c.excluded[gi] {
				continue
			}
			if _, ok := seen[gi]; !ok {
				errs = append(errs, fmt.Errorf("%w: group %d", ErrUnassigned, gi))
			}
		}
	}

	for i, lvl := range c.Levels {
		if lvl.Depth != i {
			errs = append(errs, fmt.Errorf("%w: level %d reports depth %d", ErrDepth, i, lvl.Depth))
		}
		if lvl.Parent == nil {
			if lvl.Depth != 0 {
				errs = append(errs, fmt.Errorf("%w: level %d has no parent", ErrAsymmetric, lvl.Depth))
			}
		} else {
			if lvl.Parent.Depth >= lvl.Depth {
				errs = append(errs, fmt.Errorf("%w: parent of level %d is at depth %d", ErrDepth, lvl.Depth, lvl.Parent.Depth))
			}
			if !hasChild(lvl.Parent, lvl) {
				errs = append(errs, fmt.Errorf("%w: level %d missing from its parent's children", ErrAsymmetric, lvl.Depth))
			}
		}
		for _, ch := range lvl.Children {
			if ch.Parent != lvl {
				errs = append(errs, fmt.Errorf("%w: child of level %d points elsewhere", ErrAsymmetric, lvl.Depth))
			}
		}
	}

	if job != nil {
		for gi, g := range job.Groups {
			for _, o := range g.InsideOf {
				if o < 0 || o >= len(job.Groups) {
					errs = append(errs, fmt.Errorf("%w: group %d inside unknown group %d", ErrAsymmetric, gi, o))
					continue
				}
				if !contains(job.Groups[o].Contains, gi) {
					errs = append(errs, fmt.Errorf("%w: group %d inside %d but not listed by it", ErrAsymmetric, gi, o))
				}
				inner, outer := seen[gi], seen[o]
				if inner != nil && outer != nil && outer.Depth >= inner.Depth {
					errs = append(errs, fmt.Errorf("%w: group %d (depth %d) is not deeper than container %d (depth %d)",
						ErrDepth, gi, inner.Depth, o, outer.Depth))
				}
			}
			for _, in := range g.Contains {
				if in < 0 || in >= len(job.Groups) {
					errs = append(errs, fmt.Errorf("%w: group %d contains unknown group %d", ErrAsymmetric, gi, in))
					continue
				}
				if !contains(job.Groups[in].InsideOf, gi) {
					errs = append(errs, fmt.Errorf("%w: group %d contains %d but not listed by it", ErrAsymmetric, gi, in))
				}
			}
		}
		if cyc := findCycle(c); cyc >= 0 {
			errs = append(errs, fmt.Errorf("%w through group %d", ErrCycle, cyc))
		}
	}

	return len(errs) == 0, errs
}

// findCycle returns a group on a containment cycle, or -1.
func findCycle(c *Context) int {
	const (
		white = iota
		grey
		black
	)
	groups := c.job.Groups
	color := make([]int, len(groups))
	var visit func(int) int
	visit = func(gi int) int {
		color[gi] = grey
		for _, in := range groups[gi].Contains {
			if in < 0 || in >= len(groups) {
				continue
			}
			switch color[in] {
			case grey:
				return in
			case white:
				if r := visit(in); r >= 0 {
					return r
				}
			}
		}
		color[gi] = black
		return -1
	}
	for gi := range groups {
		if color[gi] == white {
			if r := visit(gi); r >= 0 {
				return r
			}
		}
	}
	return -1
}

func hasChild(parent, child *Level) bool {
	for _, ch := range parent.Children {
		if ch == child {
			return true
		}
	}
	return false
}

func contains(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
