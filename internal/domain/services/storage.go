package services

import (
	"context"

	"medvault/internal/domain/models"
)

// StorageRegistry manages the set of storage roots and which one is active
type StorageRegistry interface {
	// ListRoots returns roots in registration order with patient count and
	// total size recomputed when stale (or always, if refresh is set)
	ListRoots(ctx context.Context, refresh bool) ([]models.StorageRoot, error)

	// Roots returns a snapshot of the registry without touching stats
	Roots(ctx context.Context) ([]models.StorageRoot, error)

	// AddRoot registers an existing directory. The new root only becomes
	// active if the registry had no active root before.
	AddRoot(ctx context.Context, path string) (*models.StorageRoot, error)

	// SetActive makes id the only active root
	SetActive(ctx context.Context, id string) error

	// Active returns the active root, or domain.ErrNotFound if the registry is empty
	Active(ctx context.Context) (*models.StorageRoot, error)
}

// Resolution is where a patient folder lives
type Resolution struct {
	Root models.StorageRoot
	Path string // Absolute patient folder path
}

// PathResolver maps folder identifiers to absolute locations across all roots
type PathResolver interface {
	// Resolve finds the patient folder, active root first then the rest in
	// registration order. Nothing is cached between calls.
	Resolve(ctx context.Context, folder string) (*Resolution, error)

	// ResolveAppointment resolves a "<folder>/<appointment>" identifier to the
	// appointment directory
	ResolveAppointment(ctx context.Context, path string) (*Resolution, string, error)

	// EnsureUnique fails with domain.ErrDuplicatePatient if any root holds folder
	EnsureUnique(ctx context.Context, folder string) error

	// ValidateFolderName checks a single path segment
	ValidateFolderName(name string) error
}
