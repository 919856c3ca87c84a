package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"jamsync/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != filepath.Join(tempHome, ".config", "jamsync", "config.toml") {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	if want := filepath.Join(tempHome, ".local", "share", "jamsync"); cfg.Paths.StateDir != want {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, want)
	}
	if cfg.HistoryPath() != filepath.Join(cfg.Paths.StateDir, "history.db") {
		t.Fatalf("unexpected history path: %q", cfg.HistoryPath())
	}
	if cfg.Matching.Threshold != 0.8 {
		t.Fatalf("expected default threshold 0.8, got %v", cfg.Matching.Threshold)
	}
	if cfg.Matching.Normalizer != "minimal" {
		t.Fatalf("expected minimal normalizer, got %q", cfg.Matching.Normalizer)
	}
	if !cfg.Sheets.SkipFirstWorksheet {
		t.Fatal("expected first worksheet to be skipped by default")
	}
	if cfg.Sync.Workers != 4 {
		t.Fatalf("unexpected worker count: %d", cfg.Sync.Workers)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadFallsBackToProjectFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	project := t.TempDir()
	t.Chdir(project)

	if err := os.WriteFile("jamsync.toml", []byte("[sync]\nworkers = 2\n"), 0o644); err != nil {
		t.Fatalf("write project config: %v", err)
	}

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected project config to be found")
	}
	if filepath.Base(resolved) != "jamsync.toml" {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.Sync.Workers != 2 {
		t.Fatalf("expected workers from file, got %d", cfg.Sync.Workers)
	}
}

func TestLoadCustomPathOverridesValues(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	configPath := filepath.Join(t.TempDir(), "config.toml")
	payload := map[string]any{
		"paths": map[string]any{
			"state_dir": "~/jam-state",
			"log_dir":   "",
		},
		"matching": map[string]any{
			"threshold":    0.65,
			"normalizer":   " Folded ",
			"required_tag": " regular ",
		},
		"sync": map[string]any{
			"workers": 8,
			"outputs": []string{"~/out/sessions.jsonl", "~/out/sessions.jsonl", " "},
		},
		"logging": map[string]any{
			"format": "JSON",
			"level":  "DEBUG",
		},
	}
	data, err := toml.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	if cfg.Paths.StateDir != filepath.Join(tempHome, "jam-state") {
		t.Fatalf("unexpected state dir: %q", cfg.Paths.StateDir)
	}
	if cfg.LogFilePath() != "" {
		t.Fatalf("expected file logging disabled, got %q", cfg.LogFilePath())
	}
	if cfg.Matching.Threshold != 0.65 || cfg.Matching.Normalizer != "folded" || cfg.Matching.RequiredTag != "regular" {
		t.Fatalf("unexpected matching section: %+v", cfg.Matching)
	}
	if len(cfg.Sync.Outputs) != 1 || cfg.Sync.Outputs[0] != filepath.Join(tempHome, "out", "sessions.jsonl") {
		t.Fatalf("unexpected outputs: %v", cfg.Sync.Outputs)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging section: %+v", cfg.Logging)
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	t.Setenv("JAMSYNC_MATCH_THRESHOLD", "0.9")
	t.Setenv("JAMSYNC_LOG_LEVEL", "warn")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Matching.Threshold != 0.9 {
		t.Fatalf("expected env threshold, got %v", cfg.Matching.Threshold)
	}
	if cfg.Logging.Level != "warn" {
		t.Fatalf("expected env log level, got %q", cfg.Logging.Level)
	}
}

func TestLoadRejectsBadEnvThreshold(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	t.Setenv("JAMSYNC_MATCH_THRESHOLD", "high")

	if _, _, _, err := config.Load(""); err == nil || !strings.Contains(err.Error(), "JAMSYNC_MATCH_THRESHOLD") {
		t.Fatalf("expected env parse error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*config.Config) {}},
		{name: "threshold zero", mutate: func(c *config.Config) { c.Matching.Threshold = 0 }},
		{name: "threshold one", mutate: func(c *config.Config) { c.Matching.Threshold = 1 }},
		{name: "threshold negative", mutate: func(c *config.Config) { c.Matching.Threshold = -0.1 }, wantErr: "matching.threshold"},
		{name: "threshold above one", mutate: func(c *config.Config) { c.Matching.Threshold = 1.5 }, wantErr: "matching.threshold"},
		{name: "unknown normalizer", mutate: func(c *config.Config) { c.Matching.Normalizer = "soundex" }, wantErr: "matching.normalizer"},
		{name: "zero workers", mutate: func(c *config.Config) { c.Sync.Workers = 0 }, wantErr: "sync.workers"},
		{name: "bad format", mutate: func(c *config.Config) { c.Sync.Format = "csv" }, wantErr: "sync.format"},
		{name: "bad log format", mutate: func(c *config.Config) { c.Logging.Format = "xml" }, wantErr: "logging.format"},
		{name: "bad log level", mutate: func(c *config.Config) { c.Logging.Level = "trace" }, wantErr: "logging.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected sample file to exist")
	}
	defaults := config.Default()
	if cfg.Matching.Threshold != defaults.Matching.Threshold || cfg.Sync.Workers != defaults.Sync.Workers {
		t.Fatalf("sample diverges from defaults: %+v", cfg)
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories returned error: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StateDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q: %v", dir, err)
		}
	}
}
