package httputil

import (
	"bytes"
	"encoding/json"
	"fmt"

	"medvault/internal/domain/models"
)

// OptionalString decodes one field of a settings or session patch.
// A field missing from the object leaves the stored value alone, null resets
// it to its default, and a string (empty included) replaces it.
type OptionalString models.OptionalValue

// UnmarshalJSON only runs for fields present in the object
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Present = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("expected a string or null, got %s", data)
	}
	o.Value = &s
	return nil
}

// Optional hands the decoded field to the settings service
func (o OptionalString) Optional() models.OptionalValue {
	return models.OptionalValue(o)
}
