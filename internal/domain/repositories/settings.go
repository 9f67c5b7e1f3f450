package repositories

import (
	"context"

	"medvault/internal/domain/models"
)

// SettingsRepository persists the settings, session and shown-tabs documents.
// Getters return nil when the document does not exist yet.
type SettingsRepository interface {
	GetSettings(ctx context.Context) (*models.Settings, error)
	SaveSettings(ctx context.Context, s *models.Settings) error

	GetSession(ctx context.Context) (*models.Session, error)
	SaveSession(ctx context.Context, s *models.Session) error

	GetShownTabs(ctx context.Context) ([]string, error)
	SaveShownTabs(ctx context.Context, tabs []string) error
}
