package storage

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"medvault/internal/domain"
	"medvault/internal/domain/models"
	"medvault/internal/repository/filestore"
)

// ComputeRootStats counts the immediate patient folders of root and sums the
// size of every regular file below it. Unreadable subtrees are skipped; only
// an unreachable root fails.
func ComputeRootStats(ctx context.Context, root string) (*models.RootStats, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, filestore.Classify("readdir", root, err, domain.ErrFolderUnavailable)
	}

	stats := &models.RootStats{}
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			stats.PatientCount++
		}
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Skip what we cannot read; the root itself was readable above
			if d != nil && d.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		stats.TotalSize += info.Size()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return stats, nil
}
