package models

import (
	"encoding/json"
)

// AppointmentRecord is the metadata file of one visit folder
type AppointmentRecord struct {
	Date      string `json:"date"`
	Doctor    string `json:"doctor"`
	Diagnosis string `json:"diagnosis"`
	Notes     string `json:"notes,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

var appointmentKnownFields = []string{"date", "doctor", "diagnosis", "notes"}

type appointmentRecordAlias AppointmentRecord

func (a *AppointmentRecord) UnmarshalJSON(data []byte) error {
	var alias appointmentRecordAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	extra, err := splitExtra(data, appointmentKnownFields...)
	if err != nil {
		return err
	}
	*a = AppointmentRecord(alias)
	a.Extra = extra
	return nil
}

func (a AppointmentRecord) MarshalJSON() ([]byte, error) {
	return mergeExtra(appointmentRecordAlias(a), a.Extra)
}

// AppointmentSummary is one row of patient:appointments.
// Path is the "<folder>/<appointment>" identifier accepted by get/setAppointment.
type AppointmentSummary struct {
	Date      string `json:"date"`
	Doctor    string `json:"doctor"`
	Diagnosis string `json:"diagnosis"`
	Path      string `json:"path"`
	Folder    string `json:"folder"`
}
