package filestore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"medvault/internal/domain"
	"medvault/internal/domain/models"
	"medvault/internal/domain/repositories"
)

// registryFile is the on-disk shape of the storage root registry.
// Version lets a future layout migrate older files.
type registryFile struct {
	Version int                  `json:"version"`
	Roots   []models.StorageRoot `json:"roots"`
}

const registryVersion = 1

// FileStorageRootRepository implements StorageRootRepository on a JSON file
type FileStorageRootRepository struct {
	path   string
	logger *slog.Logger
}

// NewStorageRootRepository creates a new FileStorageRootRepository
func NewStorageRootRepository(config *RepositoryConfig) repositories.StorageRootRepository {
	return &FileStorageRootRepository{
		path:   config.path(config.Files.Registry),
		logger: config.Logger,
	}
}

func (r *FileStorageRootRepository) Load(ctx context.Context) ([]models.StorageRoot, error) {
	var file registryFile
	if err := readJSON(r.path, &file); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return []models.StorageRoot{}, nil
		}
		return nil, fmt.Errorf("load storage registry: %w", err)
	}

	if file.Roots == nil {
		file.Roots = []models.StorageRoot{}
	}
	r.logger.Debug("storage registry loaded", "roots", len(file.Roots), "version", file.Version)
	return file.Roots, nil
}

func (r *FileStorageRootRepository) Save(ctx context.Context, roots []models.StorageRoot) error {
	file := registryFile{Version: registryVersion, Roots: roots}
	if err := writeJSON(r.path, file); err != nil {
		return fmt.Errorf("save storage registry: %w", err)
	}
	return nil
}
