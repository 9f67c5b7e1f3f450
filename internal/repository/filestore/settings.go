package filestore

import (
	"context"
	"errors"
	"fmt"

	"medvault/internal/domain"
	"medvault/internal/domain/models"
	"medvault/internal/domain/repositories"
)

// FileSettingsRepository implements SettingsRepository with one JSON file per document
type FileSettingsRepository struct {
	settingsPath  string
	sessionPath   string
	shownTabsPath string
}

// NewSettingsRepository creates a new FileSettingsRepository
func NewSettingsRepository(config *RepositoryConfig) repositories.SettingsRepository {
	return &FileSettingsRepository{
		settingsPath:  config.path(config.Files.Settings),
		sessionPath:   config.path(config.Files.Session),
		shownTabsPath: config.path(config.Files.ShownTabs),
	}
}

func (r *FileSettingsRepository) GetSettings(ctx context.Context) (*models.Settings, error) {
	var s models.Settings
	found, err := loadDocument(r.settingsPath, &s)
	if err != nil || !found {
		return nil, err
	}
	return &s, nil
}

func (r *FileSettingsRepository) SaveSettings(ctx context.Context, s *models.Settings) error {
	return saveDocument(r.settingsPath, s)
}

func (r *FileSettingsRepository) GetSession(ctx context.Context) (*models.Session, error) {
	var s models.Session
	found, err := loadDocument(r.sessionPath, &s)
	if err != nil || !found {
		return nil, err
	}
	return &s, nil
}

func (r *FileSettingsRepository) SaveSession(ctx context.Context, s *models.Session) error {
	return saveDocument(r.sessionPath, s)
}

func (r *FileSettingsRepository) GetShownTabs(ctx context.Context) ([]string, error) {
	var tabs []string
	found, err := loadDocument(r.shownTabsPath, &tabs)
	if err != nil || !found {
		return nil, err
	}
	return tabs, nil
}

func (r *FileSettingsRepository) SaveShownTabs(ctx context.Context, tabs []string) error {
	return saveDocument(r.shownTabsPath, tabs)
}

// loadDocument reads a process-wide document; absence is not an error
func loadDocument(path string, dest interface{}) (bool, error) {
	if err := readJSON(path, dest); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("load document: %w", err)
	}
	return true, nil
}

func saveDocument(path string, v interface{}) error {
	if err := writeJSON(path, v); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}
