package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"medvault/internal/domain"
	"medvault/internal/domain/models"
	"medvault/internal/domain/services"
	"medvault/internal/repository/filestore"
)

type pathResolver struct {
	registry services.StorageRegistry
	logger   *slog.Logger
}

// NewPathResolver creates a new path resolver. It holds no cache: roots can
// be added or switched between any two calls.
func NewPathResolver(registry services.StorageRegistry, logger *slog.Logger) services.PathResolver {
	return &pathResolver{
		registry: registry,
		logger:   logger,
	}
}

func (p *pathResolver) ValidateFolderName(name string) error {
	if err := ValidateFolderName(name); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}

// searchOrder returns the active root first, then the others in registration order
func searchOrder(roots []models.StorageRoot) []models.StorageRoot {
	ordered := make([]models.StorageRoot, 0, len(roots))
	for _, r := range roots {
		if r.IsActive {
			ordered = append(ordered, r)
		}
	}
	for _, r := range roots {
		if !r.IsActive {
			ordered = append(ordered, r)
		}
	}
	return ordered
}

func (p *pathResolver) Resolve(ctx context.Context, folder string) (*services.Resolution, error) {
	if err := p.ValidateFolderName(folder); err != nil {
		return nil, err
	}

	roots, err := p.registry.Roots(ctx)
	if err != nil {
		return nil, err
	}
	if len(roots) == 0 {
		return nil, fmt.Errorf("%w: no storage location registered", domain.ErrNotFound)
	}

	unreachable := 0
	for _, root := range searchOrder(roots) {
		if !dirExists(root.Path) {
			unreachable++
			continue
		}

		candidate := filepath.Join(root.Path, folder)
		info, err := os.Stat(candidate)
		if err == nil {
			if info.IsDir() {
				return &services.Resolution{Root: root, Path: candidate}, nil
			}
			continue
		}
		if !filestore.IsNotExistError(err) {
			return nil, filestore.Classify("stat", candidate, err, domain.ErrNotFound)
		}
	}

	// The patient may live on a root that is currently unplugged
	if unreachable > 0 {
		return nil, fmt.Errorf("%w: patient %q not found on reachable storage (%d location(s) offline)",
			domain.ErrFolderUnavailable, folder, unreachable)
	}
	return nil, fmt.Errorf("%w: patient %q", domain.ErrNotFound, folder)
}

func (p *pathResolver) ResolveAppointment(ctx context.Context, path string) (*services.Resolution, string, error) {
	folder, appointment, err := SplitAppointmentPath(path)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	res, err := p.Resolve(ctx, folder)
	if err != nil {
		return nil, "", err
	}
	return res, filepath.Join(res.Path, appointment), nil
}

func (p *pathResolver) EnsureUnique(ctx context.Context, folder string) error {
	if err := p.ValidateFolderName(folder); err != nil {
		return err
	}

	roots, err := p.registry.Roots(ctx)
	if err != nil {
		return err
	}

	for _, root := range roots {
		if !dirExists(root.Path) {
			// Cannot prove absence on an unplugged root; creation proceeds
			p.logger.Warn("uniqueness check skipped offline storage location",
				"root_id", root.ID,
				"path", root.Path,
				"folder", folder,
			)
			continue
		}

		candidate := filepath.Join(root.Path, folder)
		if _, err := os.Lstat(candidate); err == nil {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("a patient named %q already exists in %s", folder, root.Path),
				ResourceType: "patient",
				ResourceID:   folder,
				Location:     root.Path,
			}
		} else if !filestore.IsNotExistError(err) {
			return filestore.Classify("lstat", candidate, err, domain.ErrNotFound)
		}
	}
	return nil
}
