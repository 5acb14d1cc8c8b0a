package engine

import (
	"math"

	"github.com/asim/quadtree"
	"github.com/piwi3910/CutPlan/internal/model"
)

// endKey is one enterable end of a candidate unit.
type endKey struct {
	unit int
	rev  bool
}

// bucket holds every unit end sitting on one exact coordinate. The tree
// stores one point per bucket.
type bucket struct {
	keys  []endKey
	point *quadtree.Point
}

type endTree struct {
	tree     *quadtree.QuadTree
	buckets  map[model.Point2D]*bucket
	overflow []*bucket // Buckets the tree refused
	min, max model.Point2D
}

func newEndTree(min, max model.Point2D) *endTree {
	mid := min.Mid(max)
	halfW := (max.X-min.X)/2 + 10
	halfH := (max.Y-min.Y)/2 + 10
	aabb := quadtree.NewAABB(
		quadtree.NewPoint(mid.X, mid.Y, nil),
		quadtree.NewPoint(halfW, halfH, nil))
	return &endTree{
		tree:    quadtree.New(aabb, 0, nil),
		buckets: make(map[model.Point2D]*bucket),
		min:     min,
		max:     max,
	}
}

func (t *endTree) add(p model.Point2D, k endKey) {
	if b, ok := t.buckets[p]; ok {
		b.keys = append(b.keys, k)
		return
	}
	b := &bucket{keys: []endKey{k}}
	b.point = quadtree.NewPoint(p.X, p.Y, b)
	t.buckets[p] = b
	if !t.tree.Insert(b.point) {
		t.overflow = append(t.overflow, b)
	}
}

// drop removes every end of a unit; empty buckets leave the tree.
func (t *endTree) drop(p model.Point2D, unit int) {
	b, ok := t.buckets[p]
	if !ok {
		return
	}
	keys := b.keys[:0]
	for _, k := range b.keys {
		if k.unit != unit {
			keys = append(keys, k)
		}
	}
	b.keys = keys
	if len(b.keys) == 0 {
		delete(t.buckets, p)
		t.tree.Remove(b.point)
	}
}

// reach is the half-size of a query box around pos that covers every point.
func (t *endTree) reach(pos model.Point2D) float64 {
	r := math.Max(math.Abs(pos.X-t.min.X), math.Abs(pos.X-t.max.X))
	r = math.Max(r, math.Abs(pos.Y-t.min.Y))
	return math.Max(r, math.Abs(pos.Y-t.max.Y)) + 10
}

func (t *endTree) search(pos model.Point2D, r float64) []*quadtree.Point {
	return t.tree.Search(quadtree.NewAABB(
		quadtree.NewPoint(pos.X, pos.Y, nil),
		quadtree.NewPoint(r, r, nil)))
}

// spatial is nearest-neighbor with candidate ends indexed in a quadtree.
// The query window grows until the best hit is provably nearest, so the
// order matches greedy up to ties broken by candidate position.
type spatial struct {
	m     *monitor
	epsSq float64
}

func (s *spatial) Name() string { return StrategySpatial.String() }

func (s *spatial) Order(candidates []Unit, start model.Point2D) ([]Unit, error) {
	n := len(candidates)
	if n == 0 {
		return nil, nil
	}
	min, max := candidates[0].start, candidates[0].start
	for i := range candidates {
		for _, p := range ends(&candidates[i]) {
			min.X, min.Y = math.Min(min.X, p.X), math.Min(min.Y, p.Y)
			max.X, max.Y = math.Max(max.X, p.X), math.Max(max.Y, p.Y)
		}
	}
	if !finite(max.X-min.X) || !finite(max.Y-min.Y) {
		// The index cannot span the extent; fall back to a linear scan.
		return (&greedy{m: s.m, epsSq: s.epsSq}).Order(candidates, start)
	}

	t := newEndTree(min, max)
	for i := range candidates {
		u := &candidates[i]
		t.add(u.start, endKey{unit: i})
		if u.Reversible {
			t.add(u.end, endKey{unit: i, rev: true})
		}
	}
	step := math.Max(math.Max(max.X-min.X, max.Y-min.Y)/math.Sqrt(float64(n)), 1)

	out := make([]Unit, 0, n)
	used := make([]bool, n)
	var failed []int
	pos := start

	take := func(i int) {
		used[i] = true
		u := &candidates[i]
		t.drop(u.start, i)
		if u.Reversible {
			t.drop(u.end, i)
		}
	}

	for len(out)+len(failed) < n {
		best, bestRev, bestD := -1, false, math.Inf(1)
		consider := func(b *bucket) {
			for _, k := range b.keys {
				if used[k.unit] {
					continue
				}
				d, rev, ok := approach(pos, &candidates[k.unit])
				if !ok {
					used[k.unit] = true
					failed = append(failed, k.unit)
					continue
				}
				if best < 0 || d < bestD || (d == bestD && k.unit < best) {
					best, bestRev, bestD = k.unit, rev, d
				}
			}
		}

		limit := t.reach(pos)
		for r := step; ; r *= 2 {
			if r > limit {
				r = limit
			}
			for _, p := range t.search(pos, r) {
				consider(p.Data().(*bucket))
			}
			for _, b := range t.overflow {
				consider(b)
			}
			if best >= 0 && (bestD <= r*r || bestD <= s.epsSq) {
				break
			}
			if r >= limit {
				break
			}
		}
		if best < 0 {
			break
		}

		take(best)
		u := candidates[best]
		u.SetReversed(bestRev)
		out = append(out, u)
		pos = u.ExitPoint()
		if err := s.m.tick(); err != nil {
			return out, err
		}
	}

	s.m.degrade(len(failed))
	for _, i := range failed {
		out = append(out, candidates[i])
	}
	return out, nil
}

// ends returns the points a unit can be entered from.
func ends(u *Unit) []model.Point2D {
	if u.Reversible {
		return []model.Point2D{u.start, u.end}
	}
	return []model.Point2D{u.start}
}
