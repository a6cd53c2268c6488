package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadProjectConfig(t *testing.T) {
	t.Run("valid config loads", func(t *testing.T) {
		cfg, err := LoadProjectConfig(filepath.Join("testdata", "valid_config.yaml"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Project != "test-project" {
			t.Fatalf("expected project name, got %q", cfg.Project)
		}
		if cfg.Database.DSN != "sqlite://./sprites.sqlite" {
			t.Fatalf("unexpected dsn: %q", cfg.Database.DSN)
		}
	})

	t.Run("defaults applied", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 1\ndatabase:\n  dsn: sqlite://./db.sqlite\n")
		cfg, err := LoadProjectConfig(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Sprites.Directions["south"] != 3 {
			t.Fatalf("expected default direction rows, got %v", cfg.Sprites.Directions)
		}
		if cfg.Sprites.FrameWidth != 64 || cfg.Sprites.FrameHeight != 64 {
			t.Fatalf("expected 64x64 frame default, got %dx%d", cfg.Sprites.FrameWidth, cfg.Sprites.FrameHeight)
		}
		if *cfg.Composer.OptionalProbability != 0.5 {
			t.Fatalf("expected default probability, got %v", *cfg.Composer.OptionalProbability)
		}
		if len(cfg.Composer.EssentialTypes) == 0 {
			t.Fatalf("expected default essential types")
		}
	})

	t.Run("missing project name", func(t *testing.T) {
		path := writeTempConfig(t, "version: 1\ndatabase:\n  dsn: sqlite://./db.sqlite\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("missing dsn", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 1\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("unsupported version", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 2\ndatabase:\n  dsn: sqlite://./db.sqlite\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("invalid direction row", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 1\ndatabase:\n  dsn: sqlite://./db.sqlite\nsprites:\n  directions:\n    south: 0\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("probability out of range", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 1\ndatabase:\n  dsn: sqlite://./db.sqlite\ncomposer:\n  optional_probability: 1.5\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("duplicate type across taxonomy groups", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 1\ndatabase:\n  dsn: sqlite://./db.sqlite\ntaxonomy:\n  - name: torso\n    types: [clothes]\n  - name: upper\n    types: [Clothes]\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("file not found", func(t *testing.T) {
		if _, err := LoadProjectConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := writeTempConfig(t, "project: [\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})
}

func TestCategoryFor(t *testing.T) {
	cfg := &ProjectConfig{
		Taxonomy: []CategoryGroup{
			{Name: "torso", Types: []string{"clothes", "armour"}},
			{Name: "head", Types: []string{"hair", "hat"}},
		},
	}

	tests := []struct {
		typeName string
		expected string
	}{
		{"clothes", "torso"},
		{"Armour", "torso"},
		{"hair", "head"},
		{"weapon", "weapon"},
	}

	for _, tt := range tests {
		if got := cfg.CategoryFor(tt.typeName); got != tt.expected {
			t.Errorf("CategoryFor(%q) = %q, want %q", tt.typeName, got, tt.expected)
		}
	}
}

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "spritedb.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}
	return path
}
