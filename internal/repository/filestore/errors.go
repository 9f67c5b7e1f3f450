package filestore

import (
	"errors"
	"io/fs"
	"syscall"

	"medvault/internal/domain"
)

// IsNotExistError reports a missing file or directory
func IsNotExistError(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// IsPermissionError reports an access failure
func IsPermissionError(err error) bool {
	return errors.Is(err, fs.ErrPermission)
}

// IsDeviceGoneError reports failures typical of removed or unmounted media
func IsDeviceGoneError(err error) bool {
	return errors.Is(err, syscall.ENODEV) ||
		errors.Is(err, syscall.ENXIO) ||
		errors.Is(err, syscall.EIO) ||
		errors.Is(err, syscall.ESTALE)
}

// Classify wraps a filesystem error into the domain taxonomy.
// missing is the class used for "does not exist" (ErrNotFound for records,
// ErrFolderUnavailable for folders that were resolved a moment ago).
func Classify(op, path string, err error, missing error) error {
	if err == nil {
		return nil
	}

	// Already classified
	var fsErr *domain.FSError
	if errors.As(err, &fsErr) {
		return err
	}

	kind := domain.ErrIOFailure
	switch {
	case IsNotExistError(err):
		kind = missing
	case IsPermissionError(err):
		kind = domain.ErrPermissionDenied
	case IsDeviceGoneError(err):
		kind = domain.ErrFolderUnavailable
	}

	return &domain.FSError{Op: op, Path: path, Kind: kind, Err: err}
}
