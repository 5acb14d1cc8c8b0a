package export

import (
	"fmt"

	"github.com/piwi3910/CutPlan/internal/engine"
	"github.com/piwi3910/CutPlan/internal/model"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/table"
)

// DXF layer names.
const (
	LayerCut    = "CUT"
	LayerTravel = "TRAVEL"
)

// ExportDXF draws the plan as a DXF file: cut geometry on the CUT layer in
// execution order and head moves between steps on the TRAVEL layer. Raster
// steps are drawn as their bounding frame.
func ExportDXF(path string, res *engine.Result, start model.Point2D) error {
	if res == nil || len(res.Steps) == 0 {
		return fmt.Errorf("no steps to export")
	}

	d := dxf.NewDrawing()
	if _, err := d.AddLayer(LayerCut, color.Red, dxf.DefaultLineType, true); err != nil {
		return fmt.Errorf("failed to add cut layer: %w", err)
	}
	if _, err := d.AddLayer(LayerTravel, color.Cyan, table.LT_HIDDEN, false); err != nil {
		return fmt.Errorf("failed to add travel layer: %w", err)
	}

	pos := start
	for _, st := range res.Steps {
		if st.Cut == nil {
			continue
		}
		in, out := entryExit(st)

		if err := d.ChangeLayer(LayerTravel); err != nil {
			return err
		}
		if pos != in {
			if _, err := d.Line(pos.X, pos.Y, 0, in.X, in.Y, 0); err != nil {
				return err
			}
		}

		if err := d.ChangeLayer(LayerCut); err != nil {
			return err
		}
		for _, seg := range cutSegments(st) {
			if _, err := d.Line(seg[0].X, seg[0].Y, 0, seg[1].X, seg[1].Y, 0); err != nil {
				return err
			}
		}
		pos = out
	}

	return d.SaveAs(path)
}

// cutSegments returns the straight segments of a step's geometry in
// traversal order.
func cutSegments(st engine.Step) [][2]model.Point2D {
	var pts model.Outline
	if st.Cut.Kind == model.KindRaster && st.Cut.Raster != nil {
		b := st.Cut.Raster.Bounds()
		pts = model.Outline{b.Min, {X: b.Max.X, Y: b.Min.Y}, b.Max, {X: b.Min.X, Y: b.Max.Y}, b.Min}
	} else {
		pts = st.Cut.Points()
	}
	if st.Reversed {
		rev := make(model.Outline, len(pts))
		for i, p := range pts {
			rev[len(pts)-1-i] = p
		}
		pts = rev
	}
	var segs [][2]model.Point2D
	for i := 1; i < len(pts); i++ {
		if pts[i-1] != pts[i] {
			segs = append(segs, [2]model.Point2D{pts[i-1], pts[i]})
		}
	}
	return segs
}
