package project

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/CutPlan/internal/engine"
	"github.com/piwi3910/CutPlan/internal/model"
)

func sampleJob() *model.Job {
	job := model.NewJob("sample")
	job.AddGroup(true, model.NewPolylineCut(model.Outline{{X: 0, Y: 0}, {X: 50, Y: 0}, {X: 50, Y: 50}, {X: 0, Y: 50}, {X: 0, Y: 0}}))
	c := model.NewCut(model.Point2D{X: 10, Y: 10}, model.Point2D{X: 20, Y: 10})
	c.Passes = 2
	job.AddCut(c)
	return job
}

func TestSaveAndLoadJob(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs", "sample.json")
	job := sampleJob()

	if err := SaveJob(path, job); err != nil {
		t.Fatalf("SaveJob failed: %v", err)
	}
	loaded, err := LoadJob(path)
	if err != nil {
		t.Fatalf("LoadJob failed: %v", err)
	}

	if loaded.Name != "sample" {
		t.Errorf("expected name sample, got %s", loaded.Name)
	}
	if len(loaded.Cuts) != 2 || len(loaded.Groups) != 1 {
		t.Fatalf("expected 2 cuts and 1 group, got %d and %d", len(loaded.Cuts), len(loaded.Groups))
	}
	if loaded.Cuts[1].Passes != 2 || loaded.Cuts[1].Group != -1 {
		t.Errorf("unexpected cut: %+v", loaded.Cuts[1])
	}
	if loaded.Cuts[0].Kind != model.KindPolyline || len(loaded.Cuts[0].Path) != 5 {
		t.Errorf("polyline not preserved: %+v", loaded.Cuts[0])
	}
}

func TestLoadJobDefaultsName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "anon.json")
	if err := os.WriteFile(path, []byte(`{"cuts":[]}`), 0644); err != nil {
		t.Fatal(err)
	}
	job, err := LoadJob(path)
	if err != nil {
		t.Fatalf("LoadJob failed: %v", err)
	}
	if job.Name != "anon.json" {
		t.Errorf("expected file name as job name, got %q", job.Name)
	}
	if job.Groups == nil {
		t.Error("groups must never be nil")
	}
}

func TestLoadJobErrors(t *testing.T) {
	if _, err := LoadJob(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing job")
	}
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("nope"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadJob(path); err == nil {
		t.Error("expected error for invalid job")
	}
}

func TestSaveAndLoadPlan(t *testing.T) {
	job := sampleJob()
	settings := model.DefaultSettings()
	res, err := engine.New(settings).Plan(context.Background(), job)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "out", "plan.json")
	if err := SavePlan(path, job, settings, res); err != nil {
		t.Fatalf("SavePlan failed: %v", err)
	}

	file, err := LoadPlan(path, job)
	if err != nil {
		t.Fatalf("LoadPlan failed: %v", err)
	}
	if file.Version != FormatVersion || file.Job != "sample" {
		t.Errorf("unexpected header: %+v", file)
	}
	if file.Result.Status != engine.StatusComplete {
		t.Errorf("expected complete status, got %v", file.Result.Status)
	}
	if len(file.Result.Order) != 3 || len(file.Result.Steps) != 2 {
		t.Fatalf("expected 3 passes in 2 steps, got %d and %d", len(file.Result.Order), len(file.Result.Steps))
	}
	for _, st := range file.Result.Order {
		if st.Cut != &job.Cuts[st.Index] {
			t.Errorf("step %d not linked to its cut", st.Index)
		}
	}

	small := model.NewJob("small")
	if _, err := LoadPlan(path, small); err == nil {
		t.Error("expected error when the job does not match the plan")
	}
}

func TestSavePlanNil(t *testing.T) {
	if err := SavePlan(filepath.Join(t.TempDir(), "p.json"), sampleJob(), model.DefaultSettings(), nil); err == nil {
		t.Error("expected error for nil plan")
	}
}

func TestLoadPlanMissingVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.json")
	if err := os.WriteFile(path, []byte(`{"result":{}}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadPlan(path, nil); err == nil {
		t.Error("expected error for missing version")
	}
}
