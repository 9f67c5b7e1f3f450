package filestore

import (
	"context"
	"errors"
	"fmt"

	"medvault/internal/domain"
	"medvault/internal/domain/models"
	"medvault/internal/domain/repositories"
)

// FileDictionaryRepository implements DictionaryRepository on a JSON file
type FileDictionaryRepository struct {
	path string
}

// NewDictionaryRepository creates a new FileDictionaryRepository
func NewDictionaryRepository(config *RepositoryConfig) repositories.DictionaryRepository {
	return &FileDictionaryRepository{path: config.path(config.Files.Dictionaries)}
}

func (r *FileDictionaryRepository) Get(ctx context.Context) (*models.Dictionaries, error) {
	var dict models.Dictionaries
	if err := readJSON(r.path, &dict); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load dictionaries: %w", err)
	}
	dict.Normalize()
	return &dict, nil
}

func (r *FileDictionaryRepository) Save(ctx context.Context, dict *models.Dictionaries) error {
	if err := writeJSON(r.path, dict); err != nil {
		return fmt.Errorf("save dictionaries: %w", err)
	}
	return nil
}
