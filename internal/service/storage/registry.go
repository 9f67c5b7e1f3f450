package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"medvault/internal/domain"
	"medvault/internal/domain/models"
	"medvault/internal/domain/repositories"
	"medvault/internal/domain/services"
	"medvault/internal/repository/filestore"
)

// statsWalkLimit bounds how many roots are walked at once on refresh
const statsWalkLimit = 4

// registry is the single in-process owner of the storage root list.
// mu guards roots and every registry write; the stats walk runs unlocked.
type registry struct {
	repo       repositories.StorageRootRepository
	staleAfter time.Duration
	now        func() time.Time
	logger     *slog.Logger

	mu    sync.RWMutex
	roots []models.StorageRoot
}

// NewRegistry loads the registry file and repairs the active-root invariant
// if the file was edited by hand
func NewRegistry(
	ctx context.Context,
	repo repositories.StorageRootRepository,
	staleAfter time.Duration,
	logger *slog.Logger,
) (services.StorageRegistry, error) {
	roots, err := repo.Load(ctx)
	if err != nil {
		return nil, err
	}

	r := &registry{
		repo:       repo,
		staleAfter: staleAfter,
		now:        time.Now,
		logger:     logger,
		roots:      roots,
	}

	if repaired, changed := repairActive(roots); changed {
		logger.Warn("storage registry had an invalid active flag, repaired", "roots", len(roots))
		if err := repo.Save(ctx, repaired); err != nil {
			return nil, err
		}
		r.roots = repaired
	}

	return r, nil
}

// repairActive keeps the first active root, or activates the first root
// when none is active
func repairActive(roots []models.StorageRoot) ([]models.StorageRoot, bool) {
	if len(roots) == 0 {
		return roots, false
	}

	out := cloneRoots(roots)
	activeIdx := -1
	changed := false
	for i := range out {
		if out[i].IsActive {
			if activeIdx == -1 {
				activeIdx = i
			} else {
				out[i].IsActive = false
				changed = true
			}
		}
	}
	if activeIdx == -1 {
		out[0].IsActive = true
		changed = true
	}
	return out, changed
}

func cloneRoots(roots []models.StorageRoot) []models.StorageRoot {
	out := make([]models.StorageRoot, len(roots))
	copy(out, roots)
	return out
}

func (r *registry) Roots(ctx context.Context) ([]models.StorageRoot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneRoots(r.roots), nil
}

func (r *registry) Active(ctx context.Context) (*models.StorageRoot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.roots {
		if r.roots[i].IsActive {
			root := r.roots[i]
			return &root, nil
		}
	}
	return nil, fmt.Errorf("%w: no storage location registered", domain.ErrNotFound)
}

func (r *registry) AddRoot(ctx context.Context, path string) (*models.StorageRoot, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("%w: path is required", domain.ErrInvalidPath)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPath, err)
	}
	abs = filepath.Clean(abs)

	info, err := os.Stat(abs)
	if err != nil {
		if filestore.IsPermissionError(err) {
			return nil, filestore.Classify("stat", abs, err, domain.ErrInvalidPath)
		}
		return nil, fmt.Errorf("%w: %s does not exist", domain.ErrInvalidPath, abs)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidPath, abs)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	hasActive := false
	for _, existing := range r.roots {
		if samePath(existing.Path, abs) {
			return nil, &domain.ConflictError{
				Message:      fmt.Sprintf("storage location %q is already registered", abs),
				ResourceType: "storage_root",
				ResourceID:   existing.ID,
				Location:     existing.Path,
			}
		}
		hasActive = hasActive || existing.IsActive
	}

	root := models.StorageRoot{
		ID:        uuid.NewString(),
		Path:      abs,
		IsActive:  !hasActive, // Keeps exactly-one-active for the very first root
		CreatedAt: r.now().UTC(),
		Available: true,
	}

	next := append(cloneRoots(r.roots), root)
	if err := r.repo.Save(ctx, next); err != nil {
		return nil, err
	}
	r.roots = next

	r.logger.Info("storage location added",
		"id", root.ID,
		"path", root.Path,
		"active", root.IsActive,
	)

	return &root, nil
}

func (r *registry) SetActive(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	found := false
	next := cloneRoots(r.roots)
	for i := range next {
		next[i].IsActive = next[i].ID == id
		found = found || next[i].IsActive
	}
	if !found {
		return fmt.Errorf("%w: storage location %s", domain.ErrNotFound, id)
	}

	if err := r.repo.Save(ctx, next); err != nil {
		return err
	}
	r.roots = next

	r.logger.Info("active storage location changed", "id", id)
	return nil
}

func (r *registry) ListRoots(ctx context.Context, refresh bool) ([]models.StorageRoot, error) {
	snapshot, err := r.Roots(ctx)
	if err != nil {
		return nil, err
	}

	now := r.now()
	type result struct {
		stats     *models.RootStats
		available bool
	}
	results := make([]result, len(snapshot))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(statsWalkLimit)
	for i := range snapshot {
		root := snapshot[i]
		if !refresh && !root.StatsStale(now, r.staleAfter) {
			results[i] = result{available: dirExists(root.Path)}
			continue
		}
		g.Go(func() error {
			stats, err := ComputeRootStats(gctx, root.Path)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				// Unmounted roots keep their last known stats
				r.logger.Warn("storage location unavailable", "id", root.ID, "path", root.Path, "error", err)
				return nil
			}
			results[i] = result{stats: stats, available: true}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	updated := false
	stamp := now.UTC()
	for i := range snapshot {
		snapshot[i].Available = results[i].available
		if results[i].stats == nil {
			continue
		}
		snapshot[i].PatientCount = results[i].stats.PatientCount
		snapshot[i].TotalSize = results[i].stats.TotalSize
		snapshot[i].StatsUpdatedAt = &stamp

		// Registry may have changed while we walked; merge by ID
		for j := range r.roots {
			if r.roots[j].ID == snapshot[i].ID {
				r.roots[j].PatientCount = snapshot[i].PatientCount
				r.roots[j].TotalSize = snapshot[i].TotalSize
				r.roots[j].StatsUpdatedAt = &stamp
				updated = true
			}
		}
	}

	if updated {
		if err := r.repo.Save(ctx, r.roots); err != nil {
			// Stats are derived; a failed persist only costs a recompute later
			r.logger.Warn("failed to persist storage stats", "error", err)
		}
	}

	// Active flags come from the live registry, not the pre-walk snapshot
	active := ""
	for _, root := range r.roots {
		if root.IsActive {
			active = root.ID
		}
	}
	for i := range snapshot {
		snapshot[i].IsActive = snapshot[i].ID == active
	}

	return snapshot, nil
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func samePath(a, b string) bool {
	a, b = filepath.Clean(a), filepath.Clean(b)
	if a == b {
		return true
	}
	// Same directory reached through a symlink
	ra, errA := filepath.EvalSymlinks(a)
	rb, errB := filepath.EvalSymlinks(b)
	return errA == nil && errB == nil && ra == rb
}
