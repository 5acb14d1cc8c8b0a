package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/CutPlan/internal/model"
)

func TestSaveAndLoadCustomProfiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profiles.json")

	slow := model.DefaultSettings()
	slow.TwoOptPasses = 8
	slow.TwoOptWindow = 64
	profiles := []Profile{
		{Name: "Thorough", Description: "More 2-opt sweeps", Settings: slow},
		{Name: "Tight", Description: "Zero tolerance", Settings: model.PlanSettings{Tolerance: 0}},
	}

	if err := SaveCustomProfiles(path, profiles); err != nil {
		t.Fatalf("SaveCustomProfiles failed: %v", err)
	}

	loaded, err := LoadCustomProfiles(path)
	if err != nil {
		t.Fatalf("LoadCustomProfiles failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(loaded))
	}
	if loaded[0].Name != "Thorough" || loaded[0].Settings.TwoOptPasses != 8 {
		t.Errorf("unexpected first profile: %+v", loaded[0])
	}
	if loaded[0].IsBuiltIn {
		t.Error("loaded profiles must not be built-in")
	}
}

func TestLoadCustomProfilesNonExistent(t *testing.T) {
	profiles, err := LoadCustomProfiles(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(profiles) != 0 {
		t.Errorf("expected empty slice, got %d profiles", len(profiles))
	}
}

func TestLoadCustomProfilesInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("[{"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCustomProfiles(path); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestBuiltInProfiles(t *testing.T) {
	profiles := BuiltInProfiles()
	if len(profiles) != 4 {
		t.Fatalf("expected 4 built-in profiles, got %d", len(profiles))
	}
	names := map[string]bool{}
	for _, p := range profiles {
		if !p.IsBuiltIn {
			t.Errorf("profile %s should be built-in", p.Name)
		}
		if names[p.Name] {
			t.Errorf("duplicate profile name %s", p.Name)
		}
		names[p.Name] = true
	}
	if profiles[0].Settings != model.DefaultSettings() {
		t.Error("the first profile should carry the defaults")
	}
}

func TestFindProfileCustomShadowsBuiltIn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.json")
	custom := model.DefaultSettings()
	custom.Tolerance = 0.5
	if err := SaveCustomProfiles(path, []Profile{{Name: "default", Settings: custom}}); err != nil {
		t.Fatal(err)
	}

	p, err := FindProfile("DEFAULT", path)
	if err != nil {
		t.Fatalf("FindProfile failed: %v", err)
	}
	if p.Settings.Tolerance != 0.5 {
		t.Errorf("expected the custom profile, got tolerance %f", p.Settings.Tolerance)
	}

	p, err = FindProfile("engrave", path)
	if err != nil {
		t.Fatalf("FindProfile failed: %v", err)
	}
	if !p.Settings.GroupedInner {
		t.Error("expected the built-in engrave profile")
	}
}

func TestExportImportProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shared.json")
	s := model.DefaultSettings()
	s.HatchOptimize = false
	if err := ExportProfile(path, Profile{Name: "Shared", IsBuiltIn: true, Settings: s}); err != nil {
		t.Fatalf("ExportProfile failed: %v", err)
	}

	p, err := ImportProfile(path)
	if err != nil {
		t.Fatalf("ImportProfile failed: %v", err)
	}
	if p.Name != "Shared" || p.Settings.HatchOptimize {
		t.Errorf("unexpected profile: %+v", p)
	}
	if p.IsBuiltIn {
		t.Error("imported profile must not be built-in")
	}
}

func TestImportProfileNoName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noname.json")
	if err := os.WriteFile(path, []byte(`{"description":"x"}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ImportProfile(path); err == nil {
		t.Error("expected error for profile without a name")
	}
}

func TestBuiltInProfilesDifferFromDefault(t *testing.T) {
	def := model.DefaultSettings()
	for _, p := range BuiltInProfiles() {
		if !p.IsBuiltIn {
			t.Errorf("%s: expected built-in flag", p.Name)
		}
		if p.Name != "Default" && p.Settings == def {
			t.Errorf("%s: settings identical to Default", p.Name)
		}
	}

	engrave, err := FindProfile("Engrave", "")
	if err != nil {
		t.Fatalf("FindProfile failed: %v", err)
	}
	if !engrave.Settings.GroupedInner || engrave.Settings.HatchOptimize {
		t.Errorf("engrave should group paths and keep hatch order: %+v", engrave.Settings)
	}
}
