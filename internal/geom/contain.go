package geom

import (
	"math"

	"github.com/piwi3910/CutPlan/internal/model"
)

// Shape is the geometry handed to the oracle: a path, optionally closed, or
// a raster region.
type Shape struct {
	ID     string
	Points model.Outline
	Closed bool
	Raster *model.Raster // Non-nil: occupied area is the hull of its samples
}

// Prepared caches everything the oracle needs about one shape so that the
// pairwise tests do not recompute it.
type Prepared struct {
	ID      string
	Bounds  model.Rect
	Ring    model.Outline // Boundary usable as a container, nil when the shape cannot contain
	Samples model.Outline // Geometry used when the shape is the inner one
	Closed  bool          // Samples form a closed loop
	Area    float64
	Simple  bool // Ring has no self-intersections
	empty   bool
}

// Empty reports whether the shape has no geometry at all.
func (p *Prepared) Empty() bool {
	return p.empty
}

// CanContain reports whether the shape has a usable closed boundary.
func (p *Prepared) CanContain() bool {
	return len(p.Ring) >= 3
}

// Prepare computes the bounds, boundary ring and area of s.
func Prepare(s Shape) *Prepared {
	p := &Prepared{ID: s.ID}

	var pts model.Outline
	closed := s.Closed
	if s.Raster != nil {
		pts = RasterHull(s.Raster)
		closed = true
	} else {
		pts = dedupe(s.Points)
		if closed && len(pts) > 1 && pts[0] == pts[len(pts)-1] {
			pts = pts[:len(pts)-1]
		}
	}

	if len(pts) == 0 {
		p.empty = true
		return p
	}
	min, max := pts.BoundingBox()
	p.Bounds = model.Rect{Min: min, Max: max}
	p.Samples = pts
	p.Closed = closed
	if closed && len(pts) >= 3 {
		p.Ring = pts
		p.Area = pts.Area()
		p.Simple = s.Raster != nil || !selfIntersects(pts)
	} else {
		p.Area = p.Bounds.Area()
	}
	return p
}

func dedupe(pts model.Outline) model.Outline {
	if len(pts) == 0 {
		return nil
	}
	out := model.Outline{pts[0]}
	for _, q := range pts[1:] {
		if q != out[len(out)-1] {
			out = append(out, q)
		}
	}
	return out
}

type verdict int

const (
	inconclusive verdict = iota
	inside
	outside
)

// IsInside reports whether inner lies entirely within outer's closed
// geometry, with tol of slack on outer's boundary. Undecidable cases return
// false.
func IsInside(inner, outer *Prepared, tol float64) bool {
	if inner == nil || outer == nil || inner == outer || (inner.ID != "" && inner.ID == outer.ID) {
		return false
	}
	if inner.empty || outer.empty {
		return false
	}
	if !outer.Bounds.Expand(tol).ContainsRect(inner.Bounds) {
		return false
	}
	if !outer.CanContain() {
		return false
	}

	switch precise(inner, outer, tol) {
	case inside:
		return true
	case outside:
		return false
	}
	return sampled(inner, outer, tol)
}

// precise is the polygon-in-polygon test: every inner vertex is inside the
// ring and no inner edge leaves it by more than tol.
func precise(inner, outer *Prepared, tol float64) verdict {
	if !outer.Simple || outer.Area <= tol*tol || math.IsNaN(outer.Area) {
		return inconclusive
	}
	pts := inner.Samples
	if len(pts) < 2 {
		return inconclusive
	}
	ring := outer.Ring
	for _, v := range pts {
		if !PointInRing(v, ring, tol) {
			return outside
		}
	}

	edges := len(pts) - 1
	if inner.Closed && len(pts) > 2 {
		edges = len(pts)
	}
	for i := 0; i < edges; i++ {
		a, b := pts[i], pts[(i+1)%len(pts)]
		// Between two consecutive boundary contacts the edge is either wholly
		// inside or wholly outside, so one midpoint per piece decides it.
		ts := boundaryParams(a, b, ring, tol)
		for k := 1; k < len(ts); k++ {
			if ts[k]-ts[k-1] <= 1e-12 {
				continue
			}
			t := (ts[k-1] + ts[k]) / 2
			q := model.Point2D{X: a.X + t*(b.X-a.X), Y: a.Y + t*(b.Y-a.Y)}
			if !PointInRing(q, ring, tol) {
				return outside
			}
		}
	}
	return inside
}

// sampled is the weak fallback: vertices and edge midpoints of inner must
// all pass the even-odd test against outer.
func sampled(inner, outer *Prepared, tol float64) bool {
	ring := outer.Ring
	if len(ring) < 3 || outer.Area <= 0 {
		return false
	}
	pts := inner.Samples
	for i, v := range pts {
		if !PointInRing(v, ring, tol) {
			return false
		}
		if i+1 < len(pts) && !PointInRing(v.Mid(pts[i+1]), ring, tol) {
			return false
		}
	}
	if inner.Closed && len(pts) > 2 && !PointInRing(pts[len(pts)-1].Mid(pts[0]), ring, tol) {
		return false
	}
	return true
}
