package repositories

import (
	"context"

	"medvault/internal/domain/models"
)

// StorageRootRepository persists the storage root registry file.
// The registry service owns locking; implementations only load and replace.
type StorageRootRepository interface {
	// Load returns roots in registration order.
	// Returns an empty slice if the registry has never been written.
	Load(ctx context.Context) ([]models.StorageRoot, error)

	// Save replaces the whole registry atomically
	Save(ctx context.Context, roots []models.StorageRoot) error
}
