// Package geom decides whether one cut shape lies inside another.
package geom

import (
	"math"
	"sort"

	"github.com/piwi3910/CutPlan/internal/model"
)

// cross returns the z component of (b-a) x (c-a). Positive means c is left
// of the directed line a->b.
func cross(a, b, c model.Point2D) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// properIntersect reports whether segments ab and cd cross at a single point
// interior to both. Touching and collinear overlap do not count.
func properIntersect(a, b, c, d model.Point2D) bool {
	d1 := cross(c, d, a)
	d2 := cross(c, d, b)
	d3 := cross(a, b, c)
	d4 := cross(a, b, d)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

// segmentDistSq returns the squared distance from p to segment ab.
func segmentDistSq(p, a, b model.Point2D) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return p.DistSq(a)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / l2
	t = math.Max(0, math.Min(1, t))
	return p.DistSq(model.Point2D{X: a.X + t*dx, Y: a.Y + t*dy})
}

// boundaryParams returns the sorted positions t in [0,1] along ab where it
// meets the ring: edge crossings, touches, and ring vertices lying within
// tol of ab. The ends 0 and 1 are always included.
func boundaryParams(a, b model.Point2D, ring model.Outline, tol float64) []float64 {
	ts := []float64{0, 1}
	dx, dy := b.X-a.X, b.Y-a.Y
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return ts
	}
	n := len(ring)
	for k := 0; k < n; k++ {
		c, d := ring[k], ring[(k+1)%n]
		ex, ey := d.X-c.X, d.Y-c.Y
		den := dx*ey - dy*ex
		if den != 0 {
			t := ((c.X-a.X)*ey - (c.Y-a.Y)*ex) / den
			u := ((c.X-a.X)*dy - (c.Y-a.Y)*dx) / den
			if t > 0 && t < 1 && u >= 0 && u <= 1 {
				ts = append(ts, t)
			}
		}
		if segmentDistSq(c, a, b) <= tol*tol {
			t := ((c.X-a.X)*dx + (c.Y-a.Y)*dy) / l2
			if t > 0 && t < 1 {
				ts = append(ts, t)
			}
		}
	}
	sort.Float64s(ts)
	return ts
}

// ringDistSq returns the squared distance from p to the nearest edge of the
// closed ring.
func ringDistSq(p model.Point2D, ring model.Outline) float64 {
	best := math.Inf(1)
	n := len(ring)
	for i := 0; i < n; i++ {
		d := segmentDistSq(p, ring[i], ring[(i+1)%n])
		if d < best {
			best = d
		}
	}
	return best
}

// evenOdd is the crossing-number point-in-polygon test. It stays meaningful
// for self-intersecting rings.
func evenOdd(p model.Point2D, ring model.Outline) bool {
	inside := false
	n := len(ring)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := ring[i], ring[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y) + a.X
			if p.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

// PointInRing reports whether p is inside the closed ring or within tol of
// its boundary.
func PointInRing(p model.Point2D, ring model.Outline, tol float64) bool {
	if len(ring) < 3 {
		return false
	}
	if ringDistSq(p, ring) <= tol*tol {
		return true
	}
	return evenOdd(p, ring)
}

// selfIntersects reports whether any two non-adjacent ring edges cross.
func selfIntersects(ring model.Outline) bool {
	n := len(ring)
	if n < 4 {
		return false
	}
	for i := 0; i < n; i++ {
		a, b := ring[i], ring[(i+1)%n]
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue // shares vertex 0
			}
			if properIntersect(a, b, ring[j], ring[(j+1)%n]) {
				return true
			}
		}
	}
	return false
}

// ConvexHull returns the convex hull of pts in counter-clockwise order,
// without repeating the first point (Andrew's monotone chain).
func ConvexHull(pts []model.Point2D) model.Outline {
	if len(pts) == 0 {
		return nil
	}
	sorted := make([]model.Point2D, len(pts))
	copy(sorted, pts)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X != sorted[j].X {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Y < sorted[j].Y
	})
	uniq := sorted[:1]
	for _, p := range sorted[1:] {
		if p != uniq[len(uniq)-1] {
			uniq = append(uniq, p)
		}
	}
	if len(uniq) < 3 {
		return append(model.Outline(nil), uniq...)
	}

	hull := make(model.Outline, 0, 2*len(uniq))
	for _, p := range uniq {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(uniq) - 2; i >= 0; i-- {
		p := uniq[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}

// RasterHull returns the convex hull over the corners of every
// non-background sample of r.
func RasterHull(r *model.Raster) model.Outline {
	if r == nil {
		return nil
	}
	var pts []model.Point2D
	for y := 0; y < r.Height; y++ {
		first, last := -1, -1
		for x := 0; x < r.Width; x++ {
			if r.At(x, y) != r.Background {
				if first < 0 {
					first = x
				}
				last = x
			}
		}
		if first < 0 {
			continue
		}
		// Only the row extremes can be hull vertices.
		x0 := r.Origin.X + float64(first)*r.Step
		x1 := r.Origin.X + float64(last+1)*r.Step
		y0 := r.Origin.Y + float64(y)*r.Step
		y1 := y0 + r.Step
		pts = append(pts,
			model.Point2D{X: x0, Y: y0}, model.Point2D{X: x0, Y: y1},
			model.Point2D{X: x1, Y: y0}, model.Point2D{X: x1, Y: y1})
	}
	return ConvexHull(pts)
}
