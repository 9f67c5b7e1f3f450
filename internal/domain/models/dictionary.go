package models

// DictionaryType names one category of the dictionaries document
type DictionaryType string

const (
	DictionaryDoctors   DictionaryType = "doctors"
	DictionaryDiagnosis DictionaryType = "diagnosis"
)

// Dictionaries holds the append-only value lists, in insertion order
type Dictionaries struct {
	Doctors   []string `json:"doctors"`
	Diagnosis []string `json:"diagnosis"`
}

// NewDictionaries returns empty (non-nil) lists
func NewDictionaries() *Dictionaries {
	return &Dictionaries{
		Doctors:   []string{},
		Diagnosis: []string{},
	}
}

// Add appends value to the category unless an exact (case-sensitive) match exists.
// Returns true if the dictionary changed.
func (d *Dictionaries) Add(t DictionaryType, value string) bool {
	list := d.list(t)
	if list == nil {
		return false
	}
	for _, v := range *list {
		if v == value {
			return false
		}
	}
	*list = append(*list, value)
	return true
}

// Normalize replaces nil lists with empty ones and drops duplicate entries
// a hand-edited file may contain, keeping the first occurrence.
func (d *Dictionaries) Normalize() {
	d.Doctors = dedupe(d.Doctors)
	d.Diagnosis = dedupe(d.Diagnosis)
}

func (d *Dictionaries) list(t DictionaryType) *[]string {
	switch t {
	case DictionaryDoctors:
		return &d.Doctors
	case DictionaryDiagnosis:
		return &d.Diagnosis
	}
	return nil
}

func dedupe(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
