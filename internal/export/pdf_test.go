package export

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/CutPlan/internal/engine"
	"github.com/piwi3910/CutPlan/internal/model"
)

// buildTestPlan plans a small nested job with a loop, a raster and a hatch.
func buildTestPlan(t *testing.T) (*model.Job, *engine.Result, model.PlanSettings) {
	t.Helper()
	job := model.NewJob("test-job")
	job.AddGroup(true, model.NewPolylineCut(model.Outline{{X: 0, Y: 0}, {X: 200, Y: 0}, {X: 200, Y: 120}, {X: 0, Y: 120}, {X: 0, Y: 0}}))
	inner := model.NewCut(model.Point2D{X: 20, Y: 20}, model.Point2D{X: 60, Y: 20})
	inner.Passes = 3
	job.AddCut(inner)
	hatch := job.AddGroup(false,
		model.NewCut(model.Point2D{X: 100, Y: 30}, model.Point2D{X: 150, Y: 30}),
		model.NewCut(model.Point2D{X: 100, Y: 40}, model.Point2D{X: 150, Y: 40}))
	job.Groups[hatch].Skip = true
	r := &model.Raster{Origin: model.Point2D{X: 30, Y: 70}, Step: 1, Width: 4, Height: 2, Data: []uint8{1, 1, 1, 1, 1, 0, 0, 1}}
	job.AddCut(model.NewRasterCut(r))

	settings := model.DefaultSettings()
	res, err := engine.New(settings).Plan(context.Background(), job)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	return job, res, settings
}

func TestExportPDF_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.pdf")
	job, res, settings := buildTestPlan(t)

	if err := ExportPDF(path, job, res, settings); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("PDF file was not created: %v", err)
	}
	if info.Size() < 500 {
		t.Errorf("PDF file seems too small: %d bytes", info.Size())
	}
}

func TestExportPDF_EmptyResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pdf")
	job := model.NewJob("empty")
	res, err := engine.New(model.DefaultSettings()).Plan(context.Background(), job)
	if err != nil {
		t.Fatal(err)
	}

	if err := ExportPDF(path, job, res, model.DefaultSettings()); err == nil {
		t.Fatal("expected error for empty plan, got nil")
	}
	if err := ExportPDF(path, job, nil, model.DefaultSettings()); err == nil {
		t.Fatal("expected error for nil plan, got nil")
	}
}

func TestExportPDF_WithWarnings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "warnings.pdf")
	job, res, settings := buildTestPlan(t)
	res.Warnings = []string{"containment cycle through group 1", "level ordering violated"}

	if err := ExportPDF(path, job, res, settings); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}
}

func TestSummarize(t *testing.T) {
	job, res, _ := buildTestPlan(t)

	s := Summarize(job, res)

	if s.Job != "test-job" || s.Status != "complete" {
		t.Errorf("unexpected summary header: %+v", s)
	}
	if s.Steps != 5 || s.Passes != 7 {
		t.Errorf("expected 5 steps and 7 passes, got %d and %d", s.Steps, s.Passes)
	}
	if s.Levels != 2 {
		t.Errorf("expected 2 levels, got %d", s.Levels)
	}
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) > 500 {
		t.Errorf("summary too large for a QR code: %d bytes", len(data))
	}
}
