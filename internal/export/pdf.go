// Package export renders plans into report formats: a PDF travel diagram,
// an XLSX cut-order sheet and a DXF drawing of the toolpath.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/CutPlan/internal/engine"
	"github.com/piwi3910/CutPlan/internal/model"
	qrcode "github.com/skip2/go-qrcode"
)

// levelColor represents an RGB color for a cut.
type levelColor struct {
	R, G, B int
}

// orderColors shade cuts from first to last along the plan.
var orderColors = []levelColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 244, G: 67, B: 54},  // red
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	statsHeight  = 10.0
	drawAreaTop  = marginTop + headerHeight + 5.0
	qrSize       = 30.0
)

// PlanSummary is the data encoded into the report's QR code.
type PlanSummary struct {
	Job     string  `json:"job"`
	Status  string  `json:"status"`
	Steps   int     `json:"steps"`
	Passes  int     `json:"passes"`
	Levels  int     `json:"levels"`
	Travel  float64 `json:"travel_mm"`
	Dropped int     `json:"dropped"`
}

// Summarize extracts the report summary from a plan.
func Summarize(job *model.Job, res *engine.Result) PlanSummary {
	return PlanSummary{
		Job:     job.Name,
		Status:  res.Status.String(),
		Steps:   len(res.Steps),
		Passes:  len(res.Order),
		Levels:  res.Stats.Levels,
		Travel:  math.Round(res.Stats.Travel*100) / 100,
		Dropped: len(res.Dropped),
	}
}

// ExportPDF generates a PDF with the toolpath diagram of the plan, cuts
// numbered in execution order with travel moves dashed, followed by a
// summary page.
func ExportPDF(path string, job *model.Job, res *engine.Result, settings model.PlanSettings) error {
	if res == nil || len(res.Steps) == 0 {
		return fmt.Errorf("no steps to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	pdf.AddPage()
	renderDiagramPage(pdf, job, res, settings)

	pdf.AddPage()
	if err := renderSummaryPage(pdf, job, res, settings); err != nil {
		return err
	}

	return pdf.OutputFileAndClose(path)
}

// planBounds returns the extent of every cut in the plan and the start point.
func planBounds(res *engine.Result, start model.Point2D) model.Rect {
	r := model.Rect{Min: start, Max: start}
	for _, st := range res.Steps {
		if st.Cut != nil {
			r = r.Union(st.Cut.Bounds())
		}
	}
	return r
}

// renderDiagramPage draws every step scaled to fit the page.
func renderDiagramPage(pdf *fpdf.Fpdf, job *model.Job, res *engine.Result, settings model.PlanSettings) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Cut order: %s", job.Name)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Steps: %d | Passes: %d | Levels: %d | Travel: %.1f mm | Status: %s",
		len(res.Steps), len(res.Order), res.Stats.Levels, res.Stats.Travel, res.Status)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - statsHeight

	start := settings.Start()
	bounds := planBounds(res, start)
	w := math.Max(bounds.Max.X-bounds.Min.X, 1)
	h := math.Max(bounds.Max.Y-bounds.Min.Y, 1)
	scale := math.Min(drawWidth/w, drawHeight/h)
	offsetX := marginLeft + (drawWidth-w*scale)/2
	offsetY := drawAreaTop

	// Machine coordinates grow upwards, the page grows downwards.
	tx := func(p model.Point2D) (float64, float64) {
		return offsetX + (p.X-bounds.Min.X)*scale, offsetY + (bounds.Max.Y-p.Y)*scale
	}

	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.2)
	pdf.Rect(offsetX, offsetY, w*scale, h*scale, "D")

	// Travel moves
	pdf.SetDrawColor(150, 150, 150)
	pdf.SetLineWidth(0.15)
	pdf.SetDashPattern([]float64{1, 1}, 0)
	pos := start
	for _, st := range res.Steps {
		if st.Cut == nil {
			continue
		}
		in, out := entryExit(st)
		x0, y0 := tx(pos)
		x1, y1 := tx(in)
		pdf.Line(x0, y0, x1, y1)
		pos = out
	}
	pdf.SetDashPattern([]float64{}, 0)

	// Cuts
	pdf.SetLineWidth(0.4)
	pdf.SetFont("Helvetica", "", 6)
	n := len(res.Steps)
	for i, st := range res.Steps {
		if st.Cut == nil {
			continue
		}
		col := orderColors[i*len(orderColors)/n]
		pdf.SetDrawColor(col.R, col.G, col.B)
		pts := st.Cut.Points()
		if st.Cut.Kind == model.KindRaster && st.Cut.Raster != nil {
			b := st.Cut.Raster.Bounds()
			x0, y0 := tx(model.Point2D{X: b.Min.X, Y: b.Max.Y})
			pdf.SetFillColor(col.R, col.G, col.B)
			pdf.Rect(x0, y0, (b.Max.X-b.Min.X)*scale, (b.Max.Y-b.Min.Y)*scale, "D")
		} else {
			for k := 1; k < len(pts); k++ {
				x0, y0 := tx(pts[k-1])
				x1, y1 := tx(pts[k])
				pdf.Line(x0, y0, x1, y1)
			}
		}

		in, _ := entryExit(st)
		lx, ly := tx(in)
		pdf.SetTextColor(0, 0, 0)
		label := fmt.Sprintf("%d", i+1)
		if st.Passes > 1 {
			label = fmt.Sprintf("%d x%d", i+1, st.Passes)
		}
		pdf.Text(lx+0.5, ly-0.5, label)
	}

	// Start marker
	sx, sy := tx(start)
	pdf.SetFillColor(0, 0, 0)
	pdf.Circle(sx, sy, 1, "F")
}

// entryExit returns where a step starts and ends.
func entryExit(st engine.Step) (model.Point2D, model.Point2D) {
	if st.Reversed {
		return st.Cut.End, st.Cut.Start
	}
	return st.Cut.Start, st.Cut.End
}

// renderSummaryPage draws the statistics page with a QR-coded summary.
func renderSummaryPage(pdf *fpdf.Fpdf, job *model.Job, res *engine.Result, settings model.PlanSettings) error {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Cut Plan Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	summary := Summarize(job, res)
	qrData, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal plan summary: %w", err)
	}
	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}
	pdf.RegisterImageOptionsReader("plan_summary", fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))
	pdf.ImageOptions("plan_summary", pageWidth-marginRight-qrSize, marginTop+16, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	y := marginTop + 18
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Overall Statistics", "", 0, "L", false, 0, "")
	y += 9

	items := []struct {
		label string
		value string
	}{
		{"Status", summary.Status},
		{"Steps", fmt.Sprintf("%d", summary.Steps)},
		{"Passes", fmt.Sprintf("%d", summary.Passes)},
		{"Levels", fmt.Sprintf("%d", summary.Levels)},
		{"Travel", fmt.Sprintf("%.1f mm", res.Stats.Travel)},
		{"Dropped Cuts", fmt.Sprintf("%d", summary.Dropped)},
		{"Degraded Units", fmt.Sprintf("%d", res.Stats.Degraded)},
	}
	pdf.SetFont("Helvetica", "", 10)
	for _, item := range items {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(40, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}

	// Per-level breakdown, deepest first
	if len(res.Stats.UnitsPerLevel) > 0 {
		y += 5
		pdf.SetFont("Helvetica", "B", 12)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(100, 7, "Levels", "", 0, "L", false, 0, "")
		y += 9

		colWidths := []float64{30, 40, 60}
		headers := []string{"Depth", "Units", "Strategy"}
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		xPos := marginLeft
		for i, header := range headers {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
			xPos += colWidths[i]
		}
		y += 6

		pdf.SetFont("Helvetica", "", 9)
		deepest := len(res.Stats.UnitsPerLevel) - 1
		for i, units := range res.Stats.UnitsPerLevel {
			depth := "flat"
			if res.Stats.Hierarchical {
				depth = fmt.Sprintf("%d", deepest-i)
			}
			strategy := ""
			if i < len(res.Stats.Strategies) {
				strategy = res.Stats.Strategies[i]
			}
			if i%2 == 0 {
				pdf.SetFillColor(245, 245, 245)
			} else {
				pdf.SetFillColor(255, 255, 255)
			}
			xPos = marginLeft
			for j, cell := range []string{depth, fmt.Sprintf("%d", units), strategy} {
				pdf.SetXY(xPos, y)
				pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
				xPos += colWidths[j]
			}
			y += 6
		}
	}

	if len(res.Warnings) > 0 {
		y += 8
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(200, 0, 0)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(200, 7, "WARNING: Hierarchy Problems", "", 0, "L", false, 0, "")
		y += 8
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(0, 0, 0)
		for _, w := range res.Warnings {
			pdf.SetXY(marginLeft+5, y)
			pdf.CellFormat(250, 5, "- "+w, "", 0, "L", false, 0, "")
			y += 5
			if y > pageHeight-marginBottom-30 {
				break
			}
		}
	}

	y += 8
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Planner Settings", "", 0, "L", false, 0, "")
	y += 9

	settingsItems := []struct {
		label string
		value string
	}{
		{"Inner First", fmt.Sprintf("%t", settings.InnerFirst)},
		{"Tolerance", fmt.Sprintf("%.3f mm", settings.Tolerance)},
		{"Grouped Inner", fmt.Sprintf("%t", settings.GroupedInner)},
		{"Hatch Optimize", fmt.Sprintf("%t", settings.HatchOptimize)},
		{"Spatial Threshold", fmt.Sprintf("%d", settings.Thresholds.Spatial)},
	}
	pdf.SetFont("Helvetica", "", 9)
	for _, item := range settingsItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(50, 5, item.label+":", "", 0, "L", false, 0, "")
		pdf.CellFormat(30, 5, item.value, "", 0, "L", false, 0, "")
		y += 5
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by CutPlan - laser cut order planner", "", 0, "C", false, 0, "")
	return nil
}
