package filestore

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// RepositoryConfig holds configuration for file-backed repositories
type RepositoryConfig struct {
	DataDir string
	Files   *FileNames
	Logger  *slog.Logger
}

// FileNames holds the names of every persisted document
type FileNames struct {
	Registry     string // In DataDir
	Settings     string // In DataDir
	Session      string // In DataDir
	ShownTabs    string // In DataDir
	Dictionaries string // In DataDir
	Patient      string // In each patient folder
	Appointment  string // In each appointment folder
}

// NewFileNames returns the standard layout
func NewFileNames() *FileNames {
	return &FileNames{
		Registry:     "storage_paths.json",
		Settings:     "settings.json",
		Session:      "session.json",
		ShownTabs:    "shown_tabs.json",
		Dictionaries: "dictionaries.json",
		Patient:      "patient.json",
		Appointment:  "appointment.json",
	}
}

// NewRepositoryConfig creates the data directory if needed
func NewRepositoryConfig(dataDir string, logger *slog.Logger) (*RepositoryConfig, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	abs, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("resolve data directory: %w", err)
	}
	return &RepositoryConfig{
		DataDir: abs,
		Files:   NewFileNames(),
		Logger:  logger,
	}, nil
}

func (c *RepositoryConfig) path(name string) string {
	return filepath.Join(c.DataDir, name)
}
