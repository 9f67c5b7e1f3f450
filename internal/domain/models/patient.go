package models

import (
	"encoding/json"
	"time"
)

// PatientRecord is the metadata file of a patient folder.
// Unknown members are carried in Extra so older readers never drop newer fields.
type PatientRecord struct {
	Name      string `json:"name"`
	BirthDate string `json:"birthDate,omitempty"`
	Gender    string `json:"gender,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Notes     string `json:"notes,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

var patientKnownFields = []string{"name", "birthDate", "gender", "phone", "notes", "createdAt"}

type patientRecordAlias PatientRecord

func (p *PatientRecord) UnmarshalJSON(data []byte) error {
	var alias patientRecordAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	extra, err := splitExtra(data, patientKnownFields...)
	if err != nil {
		return err
	}
	*p = PatientRecord(alias)
	p.Extra = extra
	return nil
}

func (p PatientRecord) MarshalJSON() ([]byte, error) {
	return mergeExtra(patientRecordAlias(p), p.Extra)
}

// Project is one patient folder as listed by getProjects / scanUsb
type Project struct {
	Folder           string    `json:"folder"`
	Path             string    `json:"path"`
	RootID           string    `json:"rootId"`
	RootPath         string    `json:"rootPath"`
	RootActive       bool      `json:"rootActive"`
	Name             string    `json:"name"`
	AppointmentCount int       `json:"appointmentCount"`
	ModifiedAt       time.Time `json:"modifiedAt"`
}

// PatientCounts is the response of patient:counts
type PatientCounts struct {
	VideoCount int `json:"videoCount"`
	AudioCount int `json:"audioCount"`
}

// NewPatientRequest creates a patient folder and its first appointment
type NewPatientRequest struct {
	Base string // Folder name, unique across all roots
	Date string // First appointment date (YYYY-MM-DD)
}
