package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/piwi3910/CutPlan/internal/model"
)

// Profile is a named settings preset.
type Profile struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	IsBuiltIn   bool               `json:"-"`
	Settings    model.PlanSettings `json:"settings"`
}

// BuiltInProfiles returns the presets shipped with the planner.
func BuiltInProfiles() []Profile {
	def := model.DefaultSettings()

	flat := def
	flat.InnerFirst = false

	engrave := def
	engrave.GroupedInner = true
	engrave.HatchOptimize = false

	fast := def
	fast.TwoOptPasses = 0
	fast.Thresholds.Spatial = 100

	return []Profile{
		{Name: "Default", Description: "Inner-first cutting with travel optimization", IsBuiltIn: true, Settings: def},
		{Name: "Flat", Description: "No containment ordering, travel only", IsBuiltIn: true, Settings: flat},
		{Name: "Engrave", Description: "Keeps each path together, runs hatch fills in drawn order", IsBuiltIn: true, Settings: engrave},
		{Name: "Fast", Description: "Nearest neighbor only, spatial index from 100 units", IsBuiltIn: true, Settings: fast},
	}
}

// DefaultProfilesPath returns the default file path for custom profiles.
func DefaultProfilesPath() string {
	return filepath.Join(DefaultConfigDir(), "profiles.json")
}

// SaveCustomProfiles saves custom profiles to a JSON file.
func SaveCustomProfiles(path string, profiles []Profile) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(profiles, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadCustomProfiles loads custom profiles from a JSON file.
// Returns an empty slice if the file does not exist.
func LoadCustomProfiles(path string) ([]Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Profile{}, nil
		}
		return nil, err
	}

	var profiles []Profile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// FindProfile looks a profile up by name, case-insensitively. Custom
// profiles shadow built-in ones of the same name.
func FindProfile(name, customPath string) (Profile, error) {
	if customPath != "" {
		custom, err := LoadCustomProfiles(customPath)
		if err != nil {
			return Profile{}, fmt.Errorf("failed to load profiles: %w", err)
		}
		for _, p := range custom {
			if strings.EqualFold(p.Name, name) {
				return p, nil
			}
		}
	}
	for _, p := range BuiltInProfiles() {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return Profile{}, fmt.Errorf("unknown profile %q", name)
}

// ExportProfile exports a single profile to a JSON file (for sharing).
func ExportProfile(path string, profile Profile) error {
	data, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ImportProfile imports a single profile from a JSON file.
func ImportProfile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, err
	}

	profile := Profile{Settings: model.DefaultSettings()}
	if err := json.Unmarshal(data, &profile); err != nil {
		return Profile{}, err
	}

	if profile.Name == "" {
		return Profile{}, errors.New("imported profile has no name")
	}
	return profile, nil
}
