package handler

import (
	"context"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"medvault/internal/domain/models"
	"medvault/internal/domain/services"
)

// PraatHandler serves the Praat integration channels. Both report failures
// in the result.
type PraatHandler struct {
	praat  services.PraatService
	logger *slog.Logger
}

// NewPraatHandler creates a new Praat handler
func NewPraatHandler(praat services.PraatService, logger *slog.Logger) *PraatHandler {
	return &PraatHandler{
		praat:  praat,
		logger: logger,
	}
}

// Register adds the Praat channels to d
func (h *PraatHandler) Register(d *Dispatcher) {
	d.Register("praat:selectExecutable", h.SelectExecutable)
	d.Register("praat:openFile", h.OpenFile)
}

func (h *PraatHandler) SelectExecutable(ctx context.Context, args Args) (interface{}, error) {
	var req pathArgs
	if err := bind(args, &req, &req.Path); err != nil {
		return &models.LaunchResult{Error: failure(err)}, nil
	}

	path, err := h.praat.SelectExecutable(ctx, req.Path)
	if err != nil {
		h.logger.Warn("praat executable rejected", "path", req.Path, "error", err)
		return &models.LaunchResult{Error: failure(err)}, nil
	}
	return &models.LaunchResult{Success: true, Path: path}, nil
}

type openFileArgs struct {
	PraatPath string
	AudioPath string
}

func (a openFileArgs) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.AudioPath, validation.Required),
	)
}

// OpenFile opens an audio file in Praat; an empty praatPath uses the stored one
func (h *PraatHandler) OpenFile(ctx context.Context, args Args) (interface{}, error) {
	var req openFileArgs
	if err := bind(args, &req, &req.PraatPath, &req.AudioPath); err != nil {
		return &models.LaunchResult{Error: failure(err)}, nil
	}

	if err := h.praat.OpenFile(ctx, req.PraatPath, req.AudioPath); err != nil {
		h.logger.Warn("praat launch failed", "audio", req.AudioPath, "error", err)
		return &models.LaunchResult{Error: failure(err)}, nil
	}
	return &models.LaunchResult{Success: true}, nil
}
