package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is the wire name of an error class returned to the UI.
type Code string

const (
	CodeNotFound          Code = "NotFound"
	CodeDuplicatePatient  Code = "DuplicatePatient"
	CodeDuplicateRoot     Code = "DuplicateRoot"
	CodeInvalidPath       Code = "InvalidPath"
	CodeFolderUnavailable Code = "FolderUnavailable"
	CodeCorruptRecord     Code = "CorruptRecord"
	CodePermissionDenied  Code = "PermissionDenied"
	CodeIOFailure         Code = "IOFailure"
	CodeValidation        Code = "ValidationError"
)

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicatePatient  = errors.New("patient already exists")
	ErrDuplicateRoot     = errors.New("storage location already registered")
	ErrInvalidPath       = errors.New("invalid path")
	ErrFolderUnavailable = errors.New("folder unavailable")
	ErrCorruptRecord     = errors.New("corrupt record")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrIOFailure         = errors.New("i/o failure")
	ErrValidation        = errors.New("validation failed")
)

// ConflictError reports a name collision with details about the existing resource
type ConflictError struct {
	Message      string
	ResourceType string // "patient" or "storage_root"
	ResourceID   string // Folder name or root ID that already exists
	Location     string // Root path holding the existing resource, if known
}

func (e *ConflictError) Error() string {
	return e.Message
}

// Is matches the taxonomy sentinel for the conflicting resource type
func (e *ConflictError) Is(target error) bool {
	switch e.ResourceType {
	case "patient":
		return target == ErrDuplicatePatient
	case "storage_root":
		return target == ErrDuplicateRoot
	}
	return false
}

// FSError is a filesystem failure already classified into the taxonomy.
// Op and Path are kept for logs; Kind drives errors.Is.
type FSError struct {
	Op   string
	Path string
	Kind error
	Err  error
}

func (e *FSError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Kind)
	}
	return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Path, e.Kind, e.Err)
}

func (e *FSError) Is(target error) bool {
	return target == e.Kind
}

func (e *FSError) Unwrap() error {
	return e.Err
}

// ErrorCode maps any error onto the taxonomy. Unclassified errors are IOFailure.
func ErrorCode(err error) Code {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return CodeValidation
	case errors.Is(err, ErrDuplicatePatient):
		return CodeDuplicatePatient
	case errors.Is(err, ErrDuplicateRoot):
		return CodeDuplicateRoot
	case errors.Is(err, ErrInvalidPath):
		return CodeInvalidPath
	case errors.Is(err, ErrFolderUnavailable):
		return CodeFolderUnavailable
	case errors.Is(err, ErrCorruptRecord):
		return CodeCorruptRecord
	case errors.Is(err, ErrPermissionDenied):
		return CodePermissionDenied
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	default:
		return CodeIOFailure
	}
}

// StatusCode maps a taxonomy code to the HTTP status used by the transport
func (c Code) StatusCode() int {
	switch c {
	case CodeValidation, CodeInvalidPath:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeDuplicatePatient, CodeDuplicateRoot:
		return http.StatusConflict
	case CodeFolderUnavailable:
		return http.StatusServiceUnavailable
	case CodeCorruptRecord:
		return http.StatusUnprocessableEntity
	case CodePermissionDenied:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Recoverable reports whether the UI should offer a retry
func (c Code) Recoverable() bool {
	return c == CodeFolderUnavailable
}
