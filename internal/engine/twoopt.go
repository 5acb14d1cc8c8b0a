package engine

import (
	"math"

	"github.com/piwi3910/CutPlan/internal/model"
)

// improveEps is the minimum gain for a reversal to be accepted.
const improveEps = 1e-9

// twoOpt refines the order produced by base with first-improvement 2-opt on
// an open path. A segment is only reversed when every unit in it can be.
type twoOpt struct {
	base   Strategy
	m      *monitor
	passes int
	window int
}

func (t *twoOpt) Name() string { return t.base.Name() + "+2opt" }

func (t *twoOpt) Order(candidates []Unit, start model.Point2D) ([]Unit, error) {
	out, err := t.base.Order(candidates, start)
	if err != nil {
		return out, err
	}
	return out, t.refine(out, start)
}

func (t *twoOpt) refine(tour []Unit, start model.Point2D) error {
	n := len(tour)
	if n < 2 {
		return nil
	}
	for pass := 0; pass < t.passes; pass++ {
		improved := false
		for i := 0; i < n-1; i++ {
			if err := t.m.poll(); err != nil {
				return err
			}
			if !tour[i].Reversible {
				continue
			}
			a := start
			if i > 0 {
				a = tour[i-1].ExitPoint()
			}
			for k := i + 1; k < n && k-i < t.window; k++ {
				if !tour[k].Reversible {
					break
				}
				b, c := tour[i].EntryPoint(), tour[k].ExitPoint()
				before, after := dist(a, b), dist(a, c)
				if k+1 < n {
					d := tour[k+1].EntryPoint()
					before += dist(c, d)
					after += dist(b, d)
				}
				if !finite(before) || !finite(after) || after >= before-improveEps {
					continue
				}
				reverseSegment(tour, i, k)
				improved = true
			}
		}
		if !improved {
			break
		}
	}
	return nil
}

// reverseSegment reverses tour[i..k] and flips each unit's orientation.
func reverseSegment(tour []Unit, i, k int) {
	for lo, hi := i, k; lo < hi; lo, hi = lo+1, hi-1 {
		tour[lo], tour[hi] = tour[hi], tour[lo]
	}
	for j := i; j <= k; j++ {
		tour[j].Reversed = !tour[j].Reversed
	}
}

func dist(p, q model.Point2D) float64 {
	return math.Sqrt(p.DistSq(q))
}
