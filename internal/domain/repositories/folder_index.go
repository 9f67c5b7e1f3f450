package repositories

import (
	"context"

	"medvault/internal/domain/models"
)

// FolderIndex caches per-folder media stats, partitioned by storage root.
// It is an accelerator only: a miss or a stale entry means "re-scan".
type FolderIndex interface {
	// Get returns nil if the folder has no entry
	Get(ctx context.Context, rootID, path string) (*models.FolderStats, error)
	Put(ctx context.Context, rootID string, stats *models.FolderStats) error
	// Invalidate drops the entry for path and every entry below it
	Invalidate(ctx context.Context, rootID, path string) error
	Close() error
}
