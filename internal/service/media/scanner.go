package media

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"medvault/internal/domain"
	"medvault/internal/domain/models"
	"medvault/internal/repository/filestore"
)

// scanDir lists the regular, non-hidden files directly inside dir, newest
// first with ties broken by name. A directory that does not exist is empty.
// Entries that disappear between the read and the stat are skipped.
func scanDir(ctx context.Context, classifier *Classifier, dir string) ([]models.MediaAsset, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if filestore.IsNotExistError(err) {
			return []models.MediaAsset{}, nil
		}
		return nil, filestore.Classify("readdir", dir, err, domain.ErrNotFound)
	}

	assets := make([]models.MediaAsset, 0, len(entries))
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		// Follow symlinks so linked recordings are listed like copies
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil || !info.Mode().IsRegular() {
			continue
		}

		path := filepath.Join(dir, name)
		assets = append(assets, models.MediaAsset{
			URL:        fileURL(path),
			Path:       path,
			Name:       name,
			Extension:  strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), "."),
			Type:       classifier.Classify(name),
			Size:       info.Size(),
			ModifiedAt: info.ModTime(),
		})
	}

	sortNewestFirst(assets)
	return assets, nil
}

func sortNewestFirst(assets []models.MediaAsset) {
	sort.SliceStable(assets, func(i, j int) bool {
		a, b := assets[i], assets[j]
		if !a.ModifiedAt.Equal(b.ModifiedAt) {
			return a.ModifiedAt.After(b.ModifiedAt)
		}
		return a.Name < b.Name
	})
}

// filterAssets keeps the assets whose kind passes filter
func filterAssets(assets []models.MediaAsset, filter models.MediaFilter) []models.MediaAsset {
	if len(filter) == 0 {
		return assets
	}
	out := make([]models.MediaAsset, 0, len(assets))
	for _, a := range assets {
		if filter.Allows(a.Type) {
			out = append(out, a)
		}
	}
	return out
}

// summarize derives folder index stats from a full listing
func summarize(dir string, assets []models.MediaAsset) *models.FolderStats {
	stats := &models.FolderStats{Path: dir, FileCount: len(assets)}
	for _, a := range assets {
		stats.TotalSize += a.Size
		switch a.Type {
		case models.MediaVideo:
			stats.VideoCount++
		case models.MediaAudio:
			stats.AudioCount++
		}
	}
	return stats
}

func fileURL(path string) string {
	p := filepath.ToSlash(path)
	if !strings.HasPrefix(p, "/") {
		// Windows drive paths: file:///C:/...
		p = "/" + p
	}
	return (&url.URL{Scheme: "file", Path: p}).String()
}
