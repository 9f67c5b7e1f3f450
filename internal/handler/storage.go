package handler

import (
	"context"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"medvault/internal/domain/models"
	"medvault/internal/domain/services"
)

// StorageHandler serves the storage-root registry and project listing channels
type StorageHandler struct {
	registry services.StorageRegistry
	patients services.PatientService
	launcher services.Launcher
	logger   *slog.Logger
}

// NewStorageHandler creates a new storage handler
func NewStorageHandler(
	registry services.StorageRegistry,
	patients services.PatientService,
	launcher services.Launcher,
	logger *slog.Logger,
) *StorageHandler {
	return &StorageHandler{
		registry: registry,
		patients: patients,
		launcher: launcher,
		logger:   logger,
	}
}

// Register adds the storage channels to d
func (h *StorageHandler) Register(d *Dispatcher) {
	d.Register("scanUsb", h.ScanUsb)
	d.Register("getProjects", h.GetProjects)
	d.Register("db:storagePaths:getAll", h.GetAll)
	d.Register("db:storagePaths:add", h.Add)
	d.Register("db:storagePaths:setActive", h.SetActive)
	d.Register("db:storagePaths:openInExplorer", h.OpenInExplorer)
}

// ScanUsb refreshes root stats, then lists every patient folder
func (h *StorageHandler) ScanUsb(ctx context.Context, args Args) (interface{}, error) {
	if err := args.Bind(); err != nil {
		return nil, err
	}
	if _, err := h.registry.ListRoots(ctx, true); err != nil {
		return nil, err
	}
	return h.patients.Projects(ctx)
}

func (h *StorageHandler) GetProjects(ctx context.Context, args Args) (interface{}, error) {
	if err := args.Bind(); err != nil {
		return nil, err
	}
	return h.patients.Projects(ctx)
}

func (h *StorageHandler) GetAll(ctx context.Context, args Args) (interface{}, error) {
	if err := args.Bind(); err != nil {
		return nil, err
	}
	return h.registry.ListRoots(ctx, false)
}

// Add registers a directory. An empty path means the picker was canceled.
// Failures are reported in the result, not as an error.
func (h *StorageHandler) Add(ctx context.Context, args Args) (interface{}, error) {
	var path string
	if err := args.Bind(&path); err != nil {
		return nil, err
	}
	if strings.TrimSpace(path) == "" {
		return &models.AddRootResult{Canceled: true}, nil
	}

	root, err := h.registry.AddRoot(ctx, path)
	if err != nil {
		h.logger.Warn("storage location not added", "path", path, "error", err)
		return &models.AddRootResult{Error: failure(err)}, nil
	}
	return &models.AddRootResult{Success: true, Root: root}, nil
}

type setActiveArgs struct {
	ID string
}

func (a setActiveArgs) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.ID, validation.Required),
	)
}

func (h *StorageHandler) SetActive(ctx context.Context, args Args) (interface{}, error) {
	var req setActiveArgs
	if err := bind(args, &req, &req.ID); err != nil {
		return nil, err
	}
	return nil, h.registry.SetActive(ctx, req.ID)
}

type pathArgs struct {
	Path string
}

func (a pathArgs) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Path, validation.Required),
	)
}

func (h *StorageHandler) OpenInExplorer(ctx context.Context, args Args) (interface{}, error) {
	var req pathArgs
	if err := bind(args, &req, &req.Path); err != nil {
		return nil, err
	}
	if err := h.launcher.Open(ctx, req.Path); err != nil {
		h.logger.Warn("open in explorer failed", "path", req.Path, "error", err)
	}
	return nil, nil
}
