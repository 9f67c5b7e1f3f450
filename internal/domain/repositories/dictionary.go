package repositories

import (
	"context"

	"medvault/internal/domain/models"
)

// DictionaryRepository persists the process-wide dictionaries document
type DictionaryRepository interface {
	// Get returns nil if no dictionaries have been saved yet
	Get(ctx context.Context) (*models.Dictionaries, error)
	Save(ctx context.Context, dict *models.Dictionaries) error
}
