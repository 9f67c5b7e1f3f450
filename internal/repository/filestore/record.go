package filestore

import (
	"context"
	"os"
	"path/filepath"

	"medvault/internal/domain/models"
	"medvault/internal/domain/repositories"
)

// FileRecordRepository implements RecordRepository with one JSON file per folder
type FileRecordRepository struct {
	patientFile     string
	appointmentFile string
}

// NewRecordRepository creates a new FileRecordRepository
func NewRecordRepository(config *RepositoryConfig) repositories.RecordRepository {
	return &FileRecordRepository{
		patientFile:     config.Files.Patient,
		appointmentFile: config.Files.Appointment,
	}
}

func (r *FileRecordRepository) GetPatient(ctx context.Context, dir string) (*models.PatientRecord, error) {
	var rec models.PatientRecord
	if err := readJSON(filepath.Join(dir, r.patientFile), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *FileRecordRepository) SavePatient(ctx context.Context, dir string, rec *models.PatientRecord) error {
	return writeJSON(filepath.Join(dir, r.patientFile), rec)
}

func (r *FileRecordRepository) GetAppointment(ctx context.Context, dir string) (*models.AppointmentRecord, error) {
	var rec models.AppointmentRecord
	if err := readJSON(filepath.Join(dir, r.appointmentFile), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *FileRecordRepository) SaveAppointment(ctx context.Context, dir string, rec *models.AppointmentRecord) error {
	return writeJSON(filepath.Join(dir, r.appointmentFile), rec)
}

func (r *FileRecordRepository) HasPatientRecord(dir string) bool {
	return isRegularFile(filepath.Join(dir, r.patientFile))
}

func (r *FileRecordRepository) HasAppointmentRecord(dir string) bool {
	return isRegularFile(filepath.Join(dir, r.appointmentFile))
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
