package storage

import (
	"fmt"
	"strings"
	"unicode"

	"medvault/internal/config"
)

// ValidateSimpleName validates a single folder or file name segment.
// Names are used verbatim as directory entries, so separators, traversal
// segments and control characters are rejected.
func ValidateSimpleName(name string, maxLength int) error {
	if name == "" || strings.TrimSpace(name) == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if name != strings.TrimSpace(name) {
		return fmt.Errorf("name cannot start or end with whitespace")
	}
	if len(name) > maxLength {
		return fmt.Errorf("name exceeds maximum length of %d", maxLength)
	}
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("name cannot contain path separators")
	}
	if name == "." || name == ".." {
		return fmt.Errorf("name cannot be '.' or '..'")
	}
	if strings.HasPrefix(name, ".") {
		return fmt.Errorf("name cannot start with '.'")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return fmt.Errorf("name contains a control character")
		}
		if strings.ContainsRune(`<>:"|?*`, r) {
			return fmt.Errorf("name contains invalid character: %c", r)
		}
	}
	return nil
}

// ValidateFolderName validates a patient or appointment folder name
func ValidateFolderName(name string) error {
	return ValidateSimpleName(name, config.MaxFolderNameLength)
}

// SplitAppointmentPath splits "<folder>/<appointment>" into its two segments
func SplitAppointmentPath(path string) (string, string, error) {
	path = strings.Trim(strings.ReplaceAll(path, `\`, "/"), "/")
	segments := strings.Split(path, "/")
	if len(segments) != 2 {
		return "", "", fmt.Errorf("appointment path must look like <folder>/<appointment>")
	}
	for _, s := range segments {
		if err := ValidateFolderName(s); err != nil {
			return "", "", fmt.Errorf("invalid segment %q: %w", s, err)
		}
	}
	return segments[0], segments[1], nil
}
