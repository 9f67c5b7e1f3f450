package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATA_DIR", t.TempDir())
	t.Setenv("MEDVAULT_CONFIG", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != "8787" {
		t.Errorf("Port = %q, want 8787", cfg.Port)
	}
	if cfg.PageSize != DefaultPageSize {
		t.Errorf("PageSize = %d, want %d", cfg.PageSize, DefaultPageSize)
	}
	if cfg.StatsStaleAfter != 5*time.Minute {
		t.Errorf("StatsStaleAfter = %v, want 5m", cfg.StatsStaleAfter)
	}
	if !cfg.WatchFolders {
		t.Error("WatchFolders should default to true")
	}
}

func TestLoad_FileOverlayAndEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "medvault.yaml")
	content := []byte("port: \"9000\"\npage_size: 25\nstats_stale_after: 1m\nwatch_folders: false\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("MEDVAULT_CONFIG", path)
	t.Setenv("DATA_DIR", dir)
	t.Setenv("PORT", "9100")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != "9100" {
		t.Errorf("Port = %q, env should win over file", cfg.Port)
	}
	if cfg.PageSize != 25 {
		t.Errorf("PageSize = %d, want 25", cfg.PageSize)
	}
	if cfg.StatsStaleAfter != time.Minute {
		t.Errorf("StatsStaleAfter = %v, want 1m", cfg.StatsStaleAfter)
	}
	if cfg.WatchFolders {
		t.Error("WatchFolders should be false from file")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "page size too large", key: "PAGE_SIZE", val: "100000"},
		{name: "page size not a number", key: "PAGE_SIZE", val: "many"},
		{name: "bad duration", key: "STATS_STALE_AFTER", val: "soon"},
		{name: "zero scans", key: "MAX_CONCURRENT_SCANS", val: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DATA_DIR", t.TempDir())
			t.Setenv("MEDVAULT_CONFIG", "")
			t.Setenv(tt.key, tt.val)

			if _, err := Load(); err == nil {
				t.Errorf("Load() with %s=%s expected error", tt.key, tt.val)
			}
		})
	}
}

func TestSetupLogFile_Rotation(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"medvault-2024-01-01T00-00-00.log", "medvault-2024-01-02T00-00-00.log", "medvault-2024-01-03T00-00-00.log"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	f, err := SetupLogFile(dir, 2)
	if err != nil {
		t.Fatalf("SetupLogFile() error = %v", err)
	}
	defer f.Close()

	files, _ := filepath.Glob(filepath.Join(dir, "medvault-*.log"))
	if len(files) != 2 {
		t.Errorf("expected 2 log files after rotation, got %d", len(files))
	}
	if _, err := os.Stat(filepath.Join(dir, "medvault-2024-01-01T00-00-00.log")); !os.IsNotExist(err) {
		t.Error("oldest log file should have been removed")
	}
}
