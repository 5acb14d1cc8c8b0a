package model

import (
	"math"

	"github.com/google/uuid"
)

// Point2D represents a 2D coordinate in mm.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sub returns p - q.
func (p Point2D) Sub(q Point2D) Point2D {
	return Point2D{X: p.X - q.X, Y: p.Y - q.Y}
}

// Mid returns the midpoint between p and q.
func (p Point2D) Mid(q Point2D) Point2D {
	return Point2D{X: (p.X + q.X) / 2, Y: (p.Y + q.Y) / 2}
}

// DistSq returns the squared euclidean distance between p and q.
func (p Point2D) DistSq(q Point2D) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return dx*dx + dy*dy
}

// Finite reports whether both coordinates are real numbers.
func (p Point2D) Finite() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// Outline is a sequence of 2D points. Whether it is closed is decided by the
// owner (a Group's Closed flag); closed outlines connect the last point back
// to the first.
type Outline []Point2D

// BoundingBox returns the min and max corners of the outline.
func (o Outline) BoundingBox() (min, max Point2D) {
	if len(o) == 0 {
		return Point2D{}, Point2D{}
	}
	min = Point2D{X: o[0].X, Y: o[0].Y}
	max = Point2D{X: o[0].X, Y: o[0].Y}
	for _, p := range o[1:] {
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
	}
	return min, max
}

// Translate shifts all points by dx, dy.
func (o Outline) Translate(dx, dy float64) Outline {
	result := make(Outline, len(o))
	for i, p := range o {
		result[i] = Point2D{X: p.X + dx, Y: p.Y + dy}
	}
	return result
}

// Area returns the absolute area enclosed by the outline (shoelace formula).
func (o Outline) Area() float64 {
	n := len(o)
	if n < 3 {
		return 0
	}
	var area float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += o[i].X * o[j].Y
		area -= o[j].X * o[i].Y
	}
	return math.Abs(area) / 2
}

// Rect is an axis-aligned box.
type Rect struct {
	Min Point2D `json:"min"`
	Max Point2D `json:"max"`
}

// Expand grows the box by d on every side.
func (r Rect) Expand(d float64) Rect {
	return Rect{
		Min: Point2D{X: r.Min.X - d, Y: r.Min.Y - d},
		Max: Point2D{X: r.Max.X + d, Y: r.Max.Y + d},
	}
}

// ContainsRect reports whether o lies inside r (edges inclusive).
func (r Rect) ContainsRect(o Rect) bool {
	return o.Min.X >= r.Min.X && o.Min.Y >= r.Min.Y &&
		o.Max.X <= r.Max.X && o.Max.Y <= r.Max.Y
}

// Union returns the smallest box covering r and o.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		Min: Point2D{X: math.Min(r.Min.X, o.Min.X), Y: math.Min(r.Min.Y, o.Min.Y)},
		Max: Point2D{X: math.Max(r.Max.X, o.Max.X), Y: math.Max(r.Max.Y, o.Max.Y)},
	}
}

// Area returns the box area.
func (r Rect) Area() float64 {
	return (r.Max.X - r.Min.X) * (r.Max.Y - r.Min.Y)
}

// Center returns the box centre.
func (r Rect) Center() Point2D {
	return r.Min.Mid(r.Max)
}

// CutKind is the variant tag of a cut primitive.
type CutKind int

const (
	KindLine     CutKind = iota // Straight segment from Start to End
	KindPolyline                // Path through the vertices in Path
	KindRaster                  // Raster engrave sweep over a sample grid
)

func (k CutKind) String() string {
	switch k {
	case KindPolyline:
		return "Polyline"
	case KindRaster:
		return "Raster"
	default:
		return "Line"
	}
}

// HasHull reports whether the kind's occupied area is approximated by a
// convex hull over its samples rather than by its path.
func (k CutKind) HasHull() bool {
	return k == KindRaster
}

// CanReverse reports whether cuts of this kind may ever be traversed end to
// start. Raster sweeps have a fixed scan direction.
func (k CutKind) CanReverse() bool {
	return k != KindRaster
}

// Raster is a row-major sample grid. Samples equal to Background are empty.
type Raster struct {
	Origin     Point2D `json:"origin"` // Corner of sample (0,0)
	Step       float64 `json:"step"`   // Sample pitch in mm
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Data       []uint8 `json:"data"`
	Background uint8   `json:"background"`
}

// At returns the sample at column x, row y.
func (r *Raster) At(x, y int) uint8 {
	return r.Data[y*r.Width+x]
}

// Bounds returns the area covered by the whole grid.
func (r *Raster) Bounds() Rect {
	return Rect{
		Min: r.Origin,
		Max: Point2D{
			X: r.Origin.X + float64(r.Width)*r.Step,
			Y: r.Origin.Y + float64(r.Height)*r.Step,
		},
	}
}

// Cut is the atomic unit of laser-head motion.
type Cut struct {
	ID         string  `json:"id"`
	Kind       CutKind `json:"kind"`
	Start      Point2D `json:"start"`
	End        Point2D `json:"end"`
	Path       Outline `json:"path,omitempty"`   // Vertices from Start to End; empty means the straight segment
	Raster     *Raster `json:"raster,omitempty"` // Only for KindRaster
	Reversible bool    `json:"reversible"`       // May be entered from End without cost
	Passes     int     `json:"passes"`           // Required pass count
	Burns      int     `json:"burns"`            // Passes already completed
	Group      int     `json:"group"`            // Index into Job.Groups, -1 for none
}

func NewCut(start, end Point2D) Cut {
	return Cut{
		ID:         uuid.New().String()[:8],
		Kind:       KindLine,
		Start:      start,
		End:        end,
		Reversible: true,
		Passes:     1,
		Group:      -1,
	}
}

// NewPolylineCut creates a cut following the given vertices.
func NewPolylineCut(path Outline) Cut {
	c := NewCut(path[0], path[len(path)-1])
	c.Kind = KindPolyline
	c.Path = path
	return c
}

// NewRasterCut creates a raster sweep over r. The sweep starts at the grid
// origin and ends at the opposite corner.
func NewRasterCut(r *Raster) Cut {
	b := r.Bounds()
	c := NewCut(b.Min, b.Max)
	c.Kind = KindRaster
	c.Raster = r
	c.Reversible = false
	return c
}

// Remaining returns the number of passes still to be burned.
func (c Cut) Remaining() int {
	if c.Burns >= c.Passes {
		return 0
	}
	return c.Passes - c.Burns
}

// CanReverse reports whether the cut may be entered from its end point.
func (c Cut) CanReverse() bool {
	return c.Reversible && c.Kind.CanReverse()
}

// Points returns the geometry of the cut as a vertex list.
func (c Cut) Points() Outline {
	if len(c.Path) > 0 {
		return c.Path
	}
	return Outline{c.Start, c.End}
}

// Bounds returns the cut's bounding box.
func (c Cut) Bounds() Rect {
	if c.Kind == KindRaster && c.Raster != nil {
		return c.Raster.Bounds()
	}
	min, max := c.Points().BoundingBox()
	return Rect{Min: min, Max: max}
}

// Group is an ordered collection of cuts forming one sub-path.
type Group struct {
	ID       string `json:"id"`
	Closed   bool   `json:"closed"`
	Skip     bool   `json:"skip"` // Hatch or pattern fill, scheduled as one block
	Cuts     []int  `json:"cuts"` // Indices into Job.Cuts, in path order
	Contains []int  `json:"contains,omitempty"`
	InsideOf []int  `json:"inside_of,omitempty"`
}

func NewGroup(closed bool, cuts ...int) Group {
	return Group{
		ID:     uuid.New().String()[:8],
		Closed: closed,
		Cuts:   cuts,
	}
}

// Job is the unordered input of one planning pass.
type Job struct {
	Name   string  `json:"name"`
	Cuts   []Cut   `json:"cuts"`
	Groups []Group `json:"groups"`

	// Set by hierarchy detection: any containment found at all.
	HierarchyConstrained bool `json:"-"`
}

// AddGroup appends a group over the given cuts, links them back to it and
// returns the group index.
func (j *Job) AddGroup(closed bool, cuts ...Cut) int {
	gi := len(j.Groups)
	g := NewGroup(closed)
	for _, c := range cuts {
		c.Group = gi
		g.Cuts = append(g.Cuts, len(j.Cuts))
		j.Cuts = append(j.Cuts, c)
	}
	j.Groups = append(j.Groups, g)
	return gi
}

// AddCut appends an ungrouped cut and returns its index.
func (j *Job) AddCut(c Cut) int {
	c.Group = -1
	j.Cuts = append(j.Cuts, c)
	return len(j.Cuts) - 1
}

// Clone returns a deep copy of the job's cut and group arenas. Raster
// sample data is shared since it is never written.
func (j *Job) Clone() *Job {
	cp := &Job{Name: j.Name, HierarchyConstrained: j.HierarchyConstrained}
	cp.Cuts = make([]Cut, len(j.Cuts))
	for i, c := range j.Cuts {
		c.Path = append(Outline(nil), c.Path...)
		cp.Cuts[i] = c
	}
	cp.Groups = make([]Group, len(j.Groups))
	for i, g := range j.Groups {
		g.Cuts = append([]int(nil), g.Cuts...)
		g.Contains = append([]int(nil), g.Contains...)
		g.InsideOf = append([]int(nil), g.InsideOf...)
		cp.Groups[i] = g
	}
	return cp
}

// NewJob returns an empty named job.
func NewJob(name string) *Job {
	return &Job{
		Name:   name,
		Cuts:   []Cut{},
		Groups: []Group{},
	}
}
