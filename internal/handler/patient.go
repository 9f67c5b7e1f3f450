package handler

import (
	"context"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"medvault/internal/domain/models"
	"medvault/internal/domain/services"
)

// PatientHandler serves patient and appointment metadata channels
type PatientHandler struct {
	patients services.PatientService
	media    services.MediaService
	launcher services.Launcher
	logger   *slog.Logger
}

// NewPatientHandler creates a new patient handler
func NewPatientHandler(
	patients services.PatientService,
	media services.MediaService,
	launcher services.Launcher,
	logger *slog.Logger,
) *PatientHandler {
	return &PatientHandler{
		patients: patients,
		media:    media,
		launcher: launcher,
		logger:   logger,
	}
}

// Register adds the patient channels to d
func (h *PatientHandler) Register(d *Dispatcher) {
	d.Register("patient:getMeta", h.GetMeta)
	d.Register("patient:setMeta", h.SetMeta)
	d.Register("patient:appointments", h.Appointments)
	d.Register("patient:getAppointment", h.GetAppointment)
	d.Register("patient:setAppointment", h.SetAppointment)
	d.Register("patient:counts", h.Counts)
	d.Register("patient:new", h.New)
	d.Register("patient:openFolder", h.OpenFolder)
}

type folderArgs struct {
	Folder string
}

func (a folderArgs) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Folder, validation.Required, folderName),
	)
}

func (h *PatientHandler) GetMeta(ctx context.Context, args Args) (interface{}, error) {
	var req folderArgs
	if err := bind(args, &req, &req.Folder); err != nil {
		return nil, err
	}
	return h.patients.GetMeta(ctx, req.Folder)
}

type setMetaArgs struct {
	Folder string
	Data   *models.PatientRecord
}

func (a setMetaArgs) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Folder, validation.Required, folderName),
		validation.Field(&a.Data, validation.NotNil),
	)
}

func (h *PatientHandler) SetMeta(ctx context.Context, args Args) (interface{}, error) {
	var req setMetaArgs
	if err := bind(args, &req, &req.Folder, &req.Data); err != nil {
		return nil, err
	}
	return nil, h.patients.SetMeta(ctx, req.Folder, req.Data)
}

func (h *PatientHandler) Appointments(ctx context.Context, args Args) (interface{}, error) {
	var req folderArgs
	if err := bind(args, &req, &req.Folder); err != nil {
		return nil, err
	}
	return h.patients.Appointments(ctx, req.Folder)
}

type appointmentArgs struct {
	Path string
}

func (a appointmentArgs) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Path, validation.Required, appointmentPath),
	)
}

type setAppointmentArgs struct {
	Path string
	Data *models.AppointmentRecord
}

func (a setAppointmentArgs) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Path, validation.Required, appointmentPath),
		validation.Field(&a.Data, validation.NotNil),
	)
}

func (h *PatientHandler) GetAppointment(ctx context.Context, args Args) (interface{}, error) {
	var req appointmentArgs
	if err := bind(args, &req, &req.Path); err != nil {
		return nil, err
	}
	return h.patients.GetAppointment(ctx, req.Path)
}

func (h *PatientHandler) SetAppointment(ctx context.Context, args Args) (interface{}, error) {
	var req setAppointmentArgs
	if err := bind(args, &req, &req.Path, &req.Data); err != nil {
		return nil, err
	}
	return nil, h.patients.SetAppointment(ctx, req.Path, req.Data)
}

func (h *PatientHandler) Counts(ctx context.Context, args Args) (interface{}, error) {
	var req folderArgs
	if err := bind(args, &req, &req.Folder); err != nil {
		return nil, err
	}
	return h.media.Counts(ctx, req.Folder)
}

type newPatientArgs struct {
	Base string
	Date string
}

func (a newPatientArgs) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Base, validation.Required),
		validation.Field(&a.Date, validation.Date("2006-01-02")),
	)
}

// New creates a patient folder and its first appointment
func (h *PatientHandler) New(ctx context.Context, args Args) (interface{}, error) {
	var req newPatientArgs
	if err := bind(args, &req, &req.Base, &req.Date); err != nil {
		return nil, err
	}

	project, err := h.patients.NewPatient(ctx, &models.NewPatientRequest{
		Base: req.Base,
		Date: req.Date,
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

func (h *PatientHandler) OpenFolder(ctx context.Context, args Args) (interface{}, error) {
	var req folderArgs
	if err := bind(args, &req, &req.Folder); err != nil {
		return nil, err
	}

	path, err := h.patients.FolderPath(ctx, req.Folder)
	if err != nil {
		return nil, err
	}
	if err := h.launcher.Open(ctx, path); err != nil {
		h.logger.Warn("open patient folder failed", "folder", req.Folder, "path", path, "error", err)
	}
	return nil, nil
}
