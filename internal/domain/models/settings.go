package models

// Settings is the process-wide settings document
type Settings struct {
	Theme     string `json:"theme"`  // "light", "dark", "system"
	Locale    string `json:"locale"` // e.g. "en", "ru"
	PraatPath string `json:"praatPath"`
}

// DefaultSettings is returned when no settings file exists yet
func DefaultSettings() *Settings {
	return &Settings{
		Theme:  "light",
		Locale: "en",
	}
}

// OptionalValue tracks tri-state PATCH semantics, transport-agnostic.
//   - Present=false: field absent (don't change)
//   - Present=true, Value=nil: clear
//   - Present=true, Value=&"x": set
type OptionalValue struct {
	Present bool
	Value   *string
}

// Apply returns the patched value of current
func (o OptionalValue) Apply(current string) string {
	if !o.Present {
		return current
	}
	if o.Value == nil {
		return ""
	}
	return *o.Value
}

// SettingsPatch is a partial update of Settings
type SettingsPatch struct {
	Theme     OptionalValue
	Locale    OptionalValue
	PraatPath OptionalValue
}

// Session holds state of the current UI session
type Session struct {
	CurrentDoctor string `json:"currentDoctor"`
}

// SessionPatch is a partial update of Session
type SessionPatch struct {
	CurrentDoctor OptionalValue
}

// DefaultShownTabs is the tab list when none has been saved
func DefaultShownTabs() []string {
	return []string{"clips", "audio", "appointments"}
}
