package model

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(x, y, size float64) Outline {
	return Outline{{X: x, Y: y}, {X: x + size, Y: y}, {X: x + size, Y: y + size}, {X: x, Y: y + size}, {X: x, Y: y}}
}

func TestOutlineBoundingBoxAndArea(t *testing.T) {
	o := square(10, 20, 5)
	min, max := o.BoundingBox()
	assert.Equal(t, Point2D{X: 10, Y: 20}, min)
	assert.Equal(t, Point2D{X: 15, Y: 25}, max)
	assert.InDelta(t, 25.0, o.Area(), 1e-9)
	assert.Equal(t, 0.0, Outline{{X: 1, Y: 1}}.Area())
}

func TestRectContainsRect(t *testing.T) {
	outer := Rect{Min: Point2D{X: 0, Y: 0}, Max: Point2D{X: 10, Y: 10}}
	inner := Rect{Min: Point2D{X: 2, Y: 2}, Max: Point2D{X: 10.005, Y: 8}}

	assert.False(t, outer.ContainsRect(inner))
	assert.True(t, outer.Expand(0.01).ContainsRect(inner))
	assert.True(t, outer.ContainsRect(outer), "edges are inclusive")
}

func TestCutRemaining(t *testing.T) {
	c := NewCut(Point2D{}, Point2D{X: 1})
	c.Passes = 3
	assert.Equal(t, 3, c.Remaining())
	c.Burns = 2
	assert.Equal(t, 1, c.Remaining())
	c.Burns = 5
	assert.Equal(t, 0, c.Remaining())
}

func TestRasterCutIsNeverReversible(t *testing.T) {
	r := &Raster{Step: 1, Width: 2, Height: 2, Data: []uint8{0, 1, 1, 0}}
	c := NewRasterCut(r)
	c.Reversible = true
	assert.False(t, c.CanReverse())
	assert.True(t, c.Kind.HasHull())
	assert.Equal(t, Rect{Min: Point2D{}, Max: Point2D{X: 2, Y: 2}}, c.Bounds())
}

func TestJobAddGroupLinksCuts(t *testing.T) {
	j := NewJob("test")
	j.AddCut(NewCut(Point2D{}, Point2D{X: 1}))
	gi := j.AddGroup(true, NewCut(Point2D{}, Point2D{X: 1}), NewCut(Point2D{X: 1}, Point2D{}))

	require.Equal(t, 0, gi)
	assert.Equal(t, []int{1, 2}, j.Groups[0].Cuts)
	assert.Equal(t, -1, j.Cuts[0].Group)
	assert.Equal(t, 0, j.Cuts[1].Group)
	assert.NoError(t, ValidateJob(j))
}

func TestJobCloneIsIndependent(t *testing.T) {
	j := NewJob("test")
	j.AddGroup(true, NewPolylineCut(square(0, 0, 1)))
	cp := j.Clone()
	cp.Cuts[0].Path[0].X = 99
	cp.Groups[0].Contains = append(cp.Groups[0].Contains, 7)

	assert.Equal(t, 0.0, j.Cuts[0].Path[0].X)
	assert.Empty(t, j.Groups[0].Contains)
}

func TestValidateJobRejectsNegativePasses(t *testing.T) {
	j := NewJob("bad")
	c := NewCut(Point2D{}, Point2D{X: 1})
	c.Passes = -1
	j.AddCut(c)

	err := ValidateJob(j)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNegativePasses))

	var inErr *InputError
	require.True(t, errors.As(err, &inErr))
	assert.Equal(t, 0, inErr.Cut)
	assert.Equal(t, c.ID, inErr.ID)
}

func TestValidateJobRejectsNonFiniteGeometry(t *testing.T) {
	j := NewJob("bad")
	j.AddCut(NewCut(Point2D{}, Point2D{X: math.NaN()}))
	j.AddCut(NewPolylineCut(Outline{{X: 0}, {X: math.Inf(1)}, {X: 2}}))

	err := ValidateJob(j)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidGeometry))
	assert.Contains(t, err.Error(), "cut 0")
	assert.Contains(t, err.Error(), "cut 1")
}

func TestValidateJobRejectsMalformedRaster(t *testing.T) {
	j := NewJob("bad")
	c := NewRasterCut(&Raster{Step: 1, Width: 3, Height: 3, Data: []uint8{1}})
	j.AddCut(c)

	assert.True(t, errors.Is(ValidateJob(j), ErrInvalidRaster))
}

func TestValidateJobRejectsBrokenGroupLinks(t *testing.T) {
	j := NewJob("bad")
	j.AddGroup(false, NewCut(Point2D{}, Point2D{X: 1}))
	j.Groups[0].Cuts = append(j.Groups[0].Cuts, 5)

	err := ValidateJob(j)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBadGroupRef))

	var inErr *InputError
	require.True(t, errors.As(err, &inErr))
	assert.Equal(t, 0, inErr.Group)
	assert.Equal(t, -1, inErr.Cut)
}

func TestNormalizedSettingsRepairsBadValues(t *testing.T) {
	s := DefaultSettings()
	s.Thresholds.Spatial = 0
	s.CheckInterval = -4
	s.Tolerance = -1

	n := s.Normalized()
	assert.Equal(t, DefaultSettings().Thresholds.Spatial, n.Thresholds.Spatial)
	assert.Equal(t, DefaultSettings().CheckInterval, n.CheckInterval)
	assert.Equal(t, 0.0, n.Tolerance)
	assert.True(t, n.InnerFirst)
}
