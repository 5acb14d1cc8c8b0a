package engine

import (
	"context"
	"testing"

	"github.com/piwi3910/CutPlan/internal/hierarchy"
	"github.com/piwi3910/CutPlan/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDefaultScenarios(t *testing.T) {
	scenarios := BuildDefaultScenarios(model.DefaultSettings())

	require.Len(t, scenarios, 5)
	assert.Equal(t, "Current Settings", scenarios[0].Name)
	assert.Equal(t, "Flat Order", scenarios[1].Name)
	assert.False(t, scenarios[1].Settings.InnerFirst)
	assert.True(t, scenarios[2].Settings.GroupedInner)
	assert.False(t, scenarios[3].Settings.HatchOptimize)
	assert.Zero(t, scenarios[4].Settings.TwoOptPasses)

	base := model.DefaultSettings()
	base.HatchOptimize = false
	base.TwoOptPasses = 0
	base.InnerFirst = false
	scenarios = BuildDefaultScenarios(base)
	require.Len(t, scenarios, 3)
	assert.Equal(t, "Inner First", scenarios[1].Name)
}

func TestCompareScenarios(t *testing.T) {
	job := model.NewJob("compare")
	job.AddGroup(true, model.NewPolylineCut(square(0, 0, 100)))
	job.AddCut(line(50, 50, 60, 60))
	job.AddCut(line(300, 0, 310, 0))

	results := CompareScenarios(context.Background(), BuildDefaultScenarios(model.DefaultSettings()), job)

	require.Len(t, results, 5)
	for _, r := range results {
		require.NoError(t, r.Err, r.Scenario.Name)
		assert.Equal(t, 3, r.Steps)
		assert.Equal(t, StatusComplete, r.Status)
	}
	assert.Equal(t, 2, results[0].Levels)
	assert.Equal(t, 1, results[1].Levels)
	assert.GreaterOrEqual(t, BestScenario(results), 0)
}

func TestCompareScenarios_InvalidJob(t *testing.T) {
	job := model.NewJob("bad")
	c := line(0, 0, 1, 0)
	c.Burns = -2
	job.AddCut(c)

	results := CompareScenarios(context.Background(), BuildDefaultScenarios(model.DefaultSettings()), job)

	for _, r := range results {
		assert.ErrorIs(t, r.Err, model.ErrNegativeBurns)
	}
	assert.Equal(t, -1, BestScenario(results))
}

func TestSchedule_DeepestFirst(t *testing.T) {
	job := model.NewJob("sched")
	job.AddGroup(true, model.NewPolylineCut(square(0, 0, 100)))
	job.AddGroup(true, model.NewPolylineCut(square(10, 10, 50)))
	job.AddGroup(true, model.NewPolylineCut(square(20, 20, 10)))
	h := hierarchy.InnerFirstIdent(job, 0.01)

	var depths []int
	_, err := Schedule(h, func(lvl *hierarchy.Level) ([]Unit, error) {
		depths = append(depths, lvl.Depth)
		return nil, nil
	})

	require.NoError(t, err)
	assert.Equal(t, []int{2, 1, 0}, depths)
	for _, lvl := range h.Levels {
		assert.True(t, lvl.Complete())
	}
}

func TestSchedule_StopsOnError(t *testing.T) {
	job := model.NewJob("sched-err")
	job.AddGroup(true, model.NewPolylineCut(square(0, 0, 100)))
	job.AddGroup(true, model.NewPolylineCut(square(10, 10, 50)))
	h := hierarchy.InnerFirstIdent(job, 0.01)

	calls := 0
	out, err := Schedule(h, func(lvl *hierarchy.Level) ([]Unit, error) {
		calls++
		return []Unit{{Kind: UnitCut}}, context.Canceled
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
	assert.Len(t, out, 1, "the partial level is kept")
	assert.False(t, h.Levels[1].Complete())
}
