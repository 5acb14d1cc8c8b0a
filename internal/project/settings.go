package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"github.com/piwi3910/CutPlan/internal/model"
)

// EnvPrefix prefixes every environment override, e.g. CUTPLAN_TOLERANCE.
const EnvPrefix = "CUTPLAN"

// DefaultConfigDir returns the default directory for planner configuration.
// On all platforms this is ~/.cutplan/
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".cutplan")
}

// DefaultSettingsPath returns the default path for the settings file.
func DefaultSettingsPath() string {
	return filepath.Join(DefaultConfigDir(), "settings.json")
}

// SaveSettings persists PlanSettings to the given path as JSON.
// It creates any missing parent directories automatically.
func SaveSettings(path string, settings model.PlanSettings) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadSettings reads PlanSettings from the given path. Keys missing from the
// file keep their default value. If the file does not exist, it returns
// DefaultSettings with no error.
func LoadSettings(path string) (model.PlanSettings, error) {
	settings := model.DefaultSettings()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return model.PlanSettings{}, err
	}
	if err := json.Unmarshal(data, &settings); err != nil {
		return model.PlanSettings{}, fmt.Errorf("failed to parse settings %s: %w", path, err)
	}
	return settings, nil
}

// ApplyEnv overrides settings from CUTPLAN_* environment variables. Unset
// variables leave the current value alone. Nested thresholds use
// CUTPLAN_THRESHOLDS_SPATIAL and CUTPLAN_THRESHOLDS_TWO_OPT_MAX.
func ApplyEnv(settings model.PlanSettings) (model.PlanSettings, error) {
	if err := envconfig.Process(EnvPrefix, &settings); err != nil {
		return model.PlanSettings{}, fmt.Errorf("failed to read environment overrides: %w", err)
	}
	return settings, nil
}

// ResolveSettings loads the settings file, or the named built-in/custom
// profile when profile is set, and applies environment overrides on top.
func ResolveSettings(path, profile, profilesPath string) (model.PlanSettings, error) {
	var settings model.PlanSettings
	if profile != "" {
		p, err := FindProfile(profile, profilesPath)
		if err != nil {
			return model.PlanSettings{}, err
		}
		settings = p.Settings
	} else {
		s, err := LoadSettings(path)
		if err != nil {
			return model.PlanSettings{}, err
		}
		settings = s
	}
	return ApplyEnv(settings)
}
