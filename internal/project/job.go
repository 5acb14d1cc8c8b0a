package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/piwi3910/CutPlan/internal/engine"
	"github.com/piwi3910/CutPlan/internal/model"
)

// FormatVersion is written into every plan file.
const FormatVersion = "1.0.0"

// SaveJob writes a job as indented JSON.
func SaveJob(path string, job *model.Job) error {
	data, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create job directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write job file: %w", err)
	}
	return nil
}

// LoadJob reads a job file. The job is not validated here; the planner
// does that.
func LoadJob(path string) (*model.Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read job file: %w", err)
	}
	job := model.NewJob("")
	if err := json.Unmarshal(data, job); err != nil {
		return nil, fmt.Errorf("failed to parse job file: %w", err)
	}
	if job.Name == "" {
		job.Name = filepath.Base(path)
	}
	if job.Cuts == nil {
		job.Cuts = []model.Cut{}
	}
	if job.Groups == nil {
		job.Groups = []model.Group{}
	}
	return job, nil
}

// PlanFile is the saved outcome of a planning run.
type PlanFile struct {
	Version   string             `json:"version"`
	CreatedAt string             `json:"created_at"`
	Job       string             `json:"job"`
	Settings  model.PlanSettings `json:"settings"`
	Result    *engine.Result     `json:"result"`
}

// SavePlan writes the result of planning job under settings.
func SavePlan(path string, job *model.Job, settings model.PlanSettings, res *engine.Result) error {
	if res == nil {
		return fmt.Errorf("no plan to save")
	}
	file := PlanFile{
		Version:   FormatVersion,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Job:       job.Name,
		Settings:  settings,
		Result:    res,
	}
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create plan directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write plan file: %w", err)
	}
	return nil
}

// LoadPlan reads a plan file. When job is non-nil, each step is linked back
// to its cut; a step pointing outside the job is an error.
func LoadPlan(path string, job *model.Job) (PlanFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PlanFile{}, fmt.Errorf("failed to read plan file: %w", err)
	}
	var file PlanFile
	if err := json.Unmarshal(data, &file); err != nil {
		return PlanFile{}, fmt.Errorf("failed to parse plan file: %w", err)
	}
	if file.Version == "" {
		return PlanFile{}, fmt.Errorf("invalid plan file: missing version field")
	}
	if file.Result == nil {
		return PlanFile{}, fmt.Errorf("invalid plan file: missing result")
	}
	if job != nil {
		for _, steps := range [][]engine.Step{file.Result.Order, file.Result.Steps} {
			for i := range steps {
				idx := steps[i].Index
				if idx < 0 || idx >= len(job.Cuts) {
					return PlanFile{}, fmt.Errorf("plan step %d references cut %d, job has %d", i, idx, len(job.Cuts))
				}
				steps[i].Cut = &job.Cuts[idx]
			}
		}
	}
	return file, nil
}
