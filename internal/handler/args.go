package handler

import (
	"bytes"
	"encoding/json"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"medvault/internal/domain"
	"medvault/internal/service/storage"
)

// Args are the positional arguments of one call, still encoded
type Args []json.RawMessage

// Bind decodes the arguments into targets, in order. Missing trailing
// arguments and JSON nulls leave their target untouched; surplus arguments
// are rejected.
func (a Args) Bind(targets ...interface{}) error {
	if len(a) > len(targets) {
		return fmt.Errorf("%w: expected at most %d arguments, got %d", domain.ErrValidation, len(targets), len(a))
	}
	for i, raw := range a {
		if isNull(raw) {
			continue
		}
		if err := json.Unmarshal(raw, targets[i]); err != nil {
			return fmt.Errorf("%w: argument %d: %v", domain.ErrValidation, i+1, err)
		}
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// bind decodes args into the fields of dest and validates it
func bind(args Args, dest validation.Validatable, targets ...interface{}) error {
	if err := args.Bind(targets...); err != nil {
		return err
	}
	if err := dest.Validate(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}

// folderName is the rule for patient and appointment folder segments
var folderName = validation.By(func(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	return storage.ValidateFolderName(s)
})

// appointmentPath is the rule for "<folder>/<appointment>" identifiers
var appointmentPath = validation.By(func(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	_, _, err := storage.SplitAppointmentPath(s)
	return err
})
