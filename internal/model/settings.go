package model

// AlgorithmThresholds are the candidate-count boundaries that select a
// travel optimizer strategy. They only affect speed and travel quality.
type AlgorithmThresholds struct {
	Spatial        int `json:"spatial" envconfig:"SPATIAL"`               // At or above this many units, use the spatial index
	TwoOptMaxUnits int `json:"two_opt_max_units" envconfig:"TWO_OPT_MAX"` // Refine with 2-opt up to this many units, 0 disables
}

// PlanSettings holds the planner configuration. It is passed by value into
// each planner and never read from global state.
type PlanSettings struct {
	InnerFirst    bool    `json:"inner_first" envconfig:"INNER_FIRST"`       // Detect containment and cut inner content first
	Tolerance     float64 `json:"tolerance" envconfig:"TOLERANCE"`           // Containment slack in mm
	GroupedInner  bool    `json:"grouped_inner" envconfig:"GROUPED_INNER"`   // Keep each group together as one travel unit
	HatchOptimize bool    `json:"hatch_optimize" envconfig:"HATCH_OPTIMIZE"` // Sub-optimize hatch/skip groups

	Thresholds AlgorithmThresholds `json:"thresholds" envconfig:"THRESHOLDS"`

	TwoOptPasses    int     `json:"two_opt_passes" envconfig:"TWO_OPT_PASSES"`     // Max improvement sweeps
	TwoOptWindow    int     `json:"two_opt_window" envconfig:"TWO_OPT_WINDOW"`     // Max segment length considered for reversal
	AdjacentEpsilon float64 `json:"adjacent_epsilon" envconfig:"ADJACENT_EPSILON"` // Distance treated as "already there" in mm
	CheckInterval   int     `json:"check_interval" envconfig:"CHECK_INTERVAL"`     // Candidates between cancellation checks

	StartX float64 `json:"start_x" envconfig:"START_X"` // Head position when the job starts
	StartY float64 `json:"start_y" envconfig:"START_Y"`
}

// Start returns the configured head start position.
func (s PlanSettings) Start() Point2D {
	return Point2D{X: s.StartX, Y: s.StartY}
}

func DefaultSettings() PlanSettings {
	return PlanSettings{
		InnerFirst:    true,
		Tolerance:     0.01,
		GroupedInner:  false,
		HatchOptimize: true,
		Thresholds: AlgorithmThresholds{
			Spatial:        400,
			TwoOptMaxUnits: 1000,
		},
		TwoOptPasses:    2,
		TwoOptWindow:    32,
		AdjacentEpsilon: 0.001,
		CheckInterval:   256,
	}
}

// Normalized returns a copy with unusable values replaced by defaults.
func (s PlanSettings) Normalized() PlanSettings {
	d := DefaultSettings()
	if s.Tolerance < 0 {
		s.Tolerance = 0
	}
	if s.Thresholds.Spatial <= 0 {
		s.Thresholds.Spatial = d.Thresholds.Spatial
	}
	if s.Thresholds.TwoOptMaxUnits < 0 {
		s.Thresholds.TwoOptMaxUnits = 0
	}
	if s.TwoOptPasses < 0 {
		s.TwoOptPasses = 0
	}
	if s.TwoOptWindow < 2 {
		s.TwoOptWindow = d.TwoOptWindow
	}
	if s.AdjacentEpsilon < 0 {
		s.AdjacentEpsilon = 0
	}
	if s.CheckInterval <= 0 {
		s.CheckInterval = d.CheckInterval
	}
	return s
}
