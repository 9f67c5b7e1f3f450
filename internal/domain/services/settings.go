package services

import (
	"context"

	"medvault/internal/domain/models"
)

// SettingsService handles the process-wide key-value documents
type SettingsService interface {
	// GetSettings returns defaults if none were saved yet
	GetSettings(ctx context.Context) (*models.Settings, error)
	UpdateSettings(ctx context.Context, patch *models.SettingsPatch) (*models.Settings, error)

	GetSession(ctx context.Context) (*models.Session, error)
	UpdateSession(ctx context.Context, patch *models.SessionPatch) (*models.Session, error)

	GetShownTabs(ctx context.Context) ([]string, error)
	SetShownTabs(ctx context.Context, tabs []string) ([]string, error)
}

// DictionaryService handles the doctors/diagnosis dictionaries
type DictionaryService interface {
	Get(ctx context.Context) (*models.Dictionaries, error)
	// Add is idempotent: an existing exact value is a no-op, not an error
	Add(ctx context.Context, t models.DictionaryType, value string) (*models.Dictionaries, error)
}
