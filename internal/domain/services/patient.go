package services

import (
	"context"

	"medvault/internal/domain/models"
)

// PatientService handles patient and appointment metadata
type PatientService interface {
	// GetMeta returns an empty record when the metadata file is missing or unreadable
	GetMeta(ctx context.Context, folder string) (*models.PatientRecord, error)
	SetMeta(ctx context.Context, folder string, rec *models.PatientRecord) error

	// Appointments lists appointment records by date ascending
	Appointments(ctx context.Context, folder string) ([]models.AppointmentSummary, error)
	GetAppointment(ctx context.Context, path string) (*models.AppointmentRecord, error)
	SetAppointment(ctx context.Context, path string, rec *models.AppointmentRecord) error

	// NewPatient creates a patient folder in the active root
	NewPatient(ctx context.Context, req *models.NewPatientRequest) (*models.Project, error)

	// Projects lists every patient folder across all roots
	Projects(ctx context.Context) ([]models.Project, error)

	// FolderPath returns the absolute folder path of a patient
	FolderPath(ctx context.Context, folder string) (string, error)
}
