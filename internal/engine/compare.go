package engine

import (
	"context"
	"log/slog"

	"github.com/piwi3910/CutPlan/internal/model"
)

// ComparisonScenario defines a named set of settings to compare.
type ComparisonScenario struct {
	Name     string
	Settings model.PlanSettings
}

// ComparisonResult holds the plan and computed statistics for a single
// scenario. Err is set when the scenario could not be planned.
type ComparisonResult struct {
	Scenario ComparisonScenario
	Result   *Result
	Err      error
	Steps    int
	Travel   float64
	Levels   int
	Status   Status
}

// CompareScenarios plans the same job under each scenario and returns the
// results in scenario order. The job is never modified, so every scenario
// sees identical input.
func CompareScenarios(ctx context.Context, scenarios []ComparisonScenario, job *model.Job, opts ...Option) []ComparisonResult {
	results := make([]ComparisonResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		p := New(scenario.Settings, opts...)
		res, err := p.Plan(ctx, job)
		if err != nil {
			p.logger.Warn("scenario failed", "scenario", scenario.Name, "error", err)
			results = append(results, ComparisonResult{Scenario: scenario, Err: err})
			continue
		}

		results = append(results, ComparisonResult{
			Scenario: scenario,
			Result:   res,
			Steps:    len(res.Steps),
			Travel:   res.Stats.Travel,
			Levels:   res.Stats.Levels,
			Status:   res.Status,
		})
	}

	return results
}

// BestScenario returns the index of the complete result with the least
// travel, or -1 when none completed.
func BestScenario(results []ComparisonResult) int {
	best := -1
	for i, r := range results {
		if r.Err != nil || r.Status != StatusComplete {
			continue
		}
		if best < 0 || r.Travel < results[best].Travel {
			best = i
		}
	}
	return best
}

// BuildDefaultScenarios generates a set of comparison scenarios based on
// the current settings, toggling one option at a time to show what-if
// alternatives.
func BuildDefaultScenarios(baseSettings model.PlanSettings) []ComparisonScenario {
	scenarios := []ComparisonScenario{
		{
			Name:     "Current Settings",
			Settings: baseSettings,
		},
	}

	// Scenario: containment off or on
	alt := baseSettings
	alt.InnerFirst = !baseSettings.InnerFirst
	name := "Inner First"
	if !alt.InnerFirst {
		name = "Flat Order"
	}
	scenarios = append(scenarios, ComparisonScenario{Name: name, Settings: alt})

	// Scenario: keep groups together
	grouped := baseSettings
	grouped.GroupedInner = !baseSettings.GroupedInner
	name = "Grouped Paths"
	if !grouped.GroupedInner {
		name = "Ungrouped Paths"
	}
	scenarios = append(scenarios, ComparisonScenario{Name: name, Settings: grouped})

	// Scenario: hatch lines in input order
	if baseSettings.HatchOptimize {
		hatch := baseSettings
		hatch.HatchOptimize = false
		scenarios = append(scenarios, ComparisonScenario{
			Name:     "Hatch In Input Order",
			Settings: hatch,
		})
	}

	// Scenario: no 2-opt refinement
	if baseSettings.TwoOptPasses > 0 {
		noRefine := baseSettings
		noRefine.TwoOptPasses = 0
		scenarios = append(scenarios, ComparisonScenario{
			Name:     "Nearest Neighbor Only",
			Settings: noRefine,
		})
	}

	return scenarios
}

// LogComparison writes one line per scenario.
func LogComparison(logger *slog.Logger, results []ComparisonResult) {
	for _, r := range results {
		if r.Err != nil {
			logger.Warn("scenario", "name", r.Scenario.Name, "error", r.Err)
			continue
		}
		logger.Info("scenario", "name", r.Scenario.Name, "status", r.Status,
			"steps", r.Steps, "levels", r.Levels, "travel", r.Travel)
	}
}
