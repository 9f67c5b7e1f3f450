package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port        string
	Environment string
	DataDir     string // Process-wide state: registry, settings, session, dictionaries, folder index
	CORSOrigins string
	// Logging
	LogDir      string // Empty = stdout only
	LogMaxFiles int
	// Storage
	StatsStaleAfter    time.Duration // Root patient count/size older than this is recomputed on list
	PageSize           int           // Fixed "load more" page size
	MaxConcurrentScans int64
	WatchFolders       bool
	// Media probing
	FFProbePath string // Optional; falls back to container sniffing
}

// fileConfig mirrors Config for the optional YAML overlay (MEDVAULT_CONFIG).
type fileConfig struct {
	Port               string `yaml:"port"`
	Environment        string `yaml:"environment"`
	DataDir            string `yaml:"data_dir"`
	CORSOrigins        string `yaml:"cors_origins"`
	LogDir             string `yaml:"log_dir"`
	LogMaxFiles        int    `yaml:"log_max_files"`
	StatsStaleAfter    string `yaml:"stats_stale_after"`
	PageSize           int    `yaml:"page_size"`
	MaxConcurrentScans int64  `yaml:"max_concurrent_scans"`
	WatchFolders       *bool  `yaml:"watch_folders"`
	FFProbePath        string `yaml:"ffprobe_path"`
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:               "8787",
		Environment:        "dev",
		DataDir:            defaultDataDir(),
		CORSOrigins:        "http://localhost:5173",
		LogMaxFiles:        10,
		StatsStaleAfter:    5 * time.Minute,
		PageSize:           DefaultPageSize,
		MaxConcurrentScans: 4,
		WatchFolders:       true,
	}

	if path := os.Getenv("MEDVAULT_CONFIG"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	// Environment always wins over the file
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.Environment = getEnv("ENVIRONMENT", cfg.Environment)
	cfg.DataDir = getEnv("DATA_DIR", cfg.DataDir)
	cfg.CORSOrigins = getEnv("CORS_ORIGINS", cfg.CORSOrigins)
	cfg.LogDir = getEnv("LOG_DIR", cfg.LogDir)
	cfg.FFProbePath = getEnv("FFPROBE_PATH", cfg.FFProbePath)

	var err error
	if cfg.LogMaxFiles, err = getEnvInt("LOG_MAX_FILES", cfg.LogMaxFiles); err != nil {
		return nil, err
	}
	if cfg.PageSize, err = getEnvInt("PAGE_SIZE", cfg.PageSize); err != nil {
		return nil, err
	}
	scans, err := getEnvInt("MAX_CONCURRENT_SCANS", int(cfg.MaxConcurrentScans))
	if err != nil {
		return nil, err
	}
	cfg.MaxConcurrentScans = int64(scans)

	if v := os.Getenv("STATS_STALE_AFTER"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("STATS_STALE_AFTER: %w", err)
		}
		cfg.StatsStaleAfter = d
	}
	if v := os.Getenv("WATCH_FOLDERS"); v != "" {
		cfg.WatchFolders = v == "true"
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFile overlays non-zero values from a YAML config file
func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.Port != "" {
		c.Port = fc.Port
	}
	if fc.Environment != "" {
		c.Environment = fc.Environment
	}
	if fc.DataDir != "" {
		c.DataDir = fc.DataDir
	}
	if fc.CORSOrigins != "" {
		c.CORSOrigins = fc.CORSOrigins
	}
	if fc.LogDir != "" {
		c.LogDir = fc.LogDir
	}
	if fc.LogMaxFiles > 0 {
		c.LogMaxFiles = fc.LogMaxFiles
	}
	if fc.StatsStaleAfter != "" {
		d, err := time.ParseDuration(fc.StatsStaleAfter)
		if err != nil {
			return fmt.Errorf("stats_stale_after: %w", err)
		}
		c.StatsStaleAfter = d
	}
	if fc.PageSize > 0 {
		c.PageSize = fc.PageSize
	}
	if fc.MaxConcurrentScans > 0 {
		c.MaxConcurrentScans = fc.MaxConcurrentScans
	}
	if fc.WatchFolders != nil {
		c.WatchFolders = *fc.WatchFolders
	}
	if fc.FFProbePath != "" {
		c.FFProbePath = fc.FFProbePath
	}
	return nil
}

func (c *Config) validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("DATA_DIR must be set")
	}
	if c.PageSize < 1 || c.PageSize > MaxPageLimit {
		return fmt.Errorf("PAGE_SIZE must be between 1 and %d", MaxPageLimit)
	}
	if c.MaxConcurrentScans < 1 {
		return fmt.Errorf("MAX_CONCURRENT_SCANS must be at least 1")
	}
	return nil
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".medvault"
	}
	return filepath.Join(home, ".medvault")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
