package model

import (
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Driver = %q, want %q", cfg.Database.Driver, "sqlite")
	}
	if cfg.Database.DSN == "" {
		t.Error("expected a default database path")
	}
	if cfg.Display.Theme != "default" {
		t.Errorf("Theme = %q, want %q", cfg.Display.Theme, "default")
	}
}

func TestSaveAndLoadConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	want := &AppConfig{
		Database: DatabaseConfig{
			Driver: "postgres",
			DSN:    "postgres://localhost:5432/daylist",
		},
		Display: DisplayConfig{Theme: "dark"},
	}

	if err := SaveConfig(path, want); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got.Database.Driver != want.Database.Driver {
		t.Errorf("Driver = %q, want %q", got.Database.Driver, want.Database.Driver)
	}
	if got.Database.DSN != want.Database.DSN {
		t.Errorf("DSN = %q, want %q", got.Database.DSN, want.Database.DSN)
	}
	if got.Display.Theme != want.Display.Theme {
		t.Errorf("Theme = %q, want %q", got.Display.Theme, want.Display.Theme)
	}
}
