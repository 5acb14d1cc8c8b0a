package export

import (
	"fmt"

	"github.com/piwi3910/CutPlan/internal/engine"
	"github.com/piwi3910/CutPlan/internal/model"
	"github.com/xuri/excelize/v2"
)

const (
	orderSheet   = "Order"
	summarySheet = "Summary"
)

var orderHeaders = []string{"Step", "Cut", "ID", "Kind", "Group", "Passes", "Reversed", "Entry X", "Entry Y", "Exit X", "Exit Y"}

// ExportXLSX writes the collapsed cut order to a spreadsheet, one row per
// step, with a second sheet holding the plan summary.
func ExportXLSX(path string, job *model.Job, res *engine.Result) error {
	if res == nil {
		return fmt.Errorf("no plan to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", orderSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	for col, h := range orderHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(orderSheet, cell, h); err != nil {
			return err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(orderHeaders), 1)
	if err := f.SetCellStyle(orderSheet, "A1", last, bold); err != nil {
		return err
	}

	for i, st := range res.Steps {
		row := i + 2
		values := []interface{}{i + 1, st.Index, st.ID, "", "", st.Passes, st.Reversed, "", "", "", ""}
		if st.Cut != nil {
			in, out := entryExit(st)
			values[3] = st.Cut.Kind.String()
			if st.Cut.Group >= 0 && st.Cut.Group < len(job.Groups) {
				values[4] = job.Groups[st.Cut.Group].ID
			}
			values[7], values[8] = in.X, in.Y
			values[9], values[10] = out.X, out.Y
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(orderSheet, cell, v); err != nil {
				return err
			}
		}
	}
	if err := f.SetColWidth(orderSheet, "C", "E", 14); err != nil {
		return err
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("failed to add summary sheet: %w", err)
	}
	summary := Summarize(job, res)
	rows := [][]interface{}{
		{"Job", summary.Job},
		{"Status", summary.Status},
		{"Steps", summary.Steps},
		{"Passes", summary.Passes},
		{"Levels", summary.Levels},
		{"Travel (mm)", summary.Travel},
		{"Dropped", summary.Dropped},
		{"Degraded", res.Stats.Degraded},
	}
	for i, r := range rows {
		for col, v := range r {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+1)
			if err := f.SetCellValue(summarySheet, cell, v); err != nil {
				return err
			}
		}
	}
	if err := f.SetCellStyle(summarySheet, "A1", fmt.Sprintf("A%d", len(rows)), bold); err != nil {
		return err
	}
	if err := f.SetColWidth(summarySheet, "A", "B", 16); err != nil {
		return err
	}

	return f.SaveAs(path)
}
