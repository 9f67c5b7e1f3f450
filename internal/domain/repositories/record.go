package repositories

import (
	"context"

	"medvault/internal/domain/models"
)

// RecordRepository reads and writes the metadata files inside patient
// and appointment folders. dir is always an absolute folder path.
//
// Get* return an error wrapping domain.ErrNotFound when the file is absent
// and domain.ErrCorruptRecord when it exists but cannot be parsed.
// The leniency policy (absent = empty record) belongs to the service.
type RecordRepository interface {
	GetPatient(ctx context.Context, dir string) (*models.PatientRecord, error)
	SavePatient(ctx context.Context, dir string, rec *models.PatientRecord) error

	GetAppointment(ctx context.Context, dir string) (*models.AppointmentRecord, error)
	SaveAppointment(ctx context.Context, dir string, rec *models.AppointmentRecord) error

	// HasPatientRecord reports whether dir carries a patient metadata file
	HasPatientRecord(dir string) bool
	HasAppointmentRecord(dir string) bool
}
