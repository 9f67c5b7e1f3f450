package domain

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"testing"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{name: "nil", err: nil, want: ""},
		{name: "wrapped not found", err: fmt.Errorf("resolve: %w", ErrNotFound), want: CodeNotFound},
		{name: "validation", err: fmt.Errorf("%w: limit", ErrValidation), want: CodeValidation},
		{
			name: "patient conflict",
			err:  &ConflictError{Message: "exists", ResourceType: "patient", ResourceID: "P001"},
			want: CodeDuplicatePatient,
		},
		{
			name: "root conflict",
			err:  &ConflictError{Message: "exists", ResourceType: "storage_root"},
			want: CodeDuplicateRoot,
		},
		{
			name: "fs error unavailable",
			err:  &FSError{Op: "readdir", Path: "/mnt/usb", Kind: ErrFolderUnavailable, Err: fs.ErrNotExist},
			want: CodeFolderUnavailable,
		},
		{
			name: "fs error permission",
			err:  &FSError{Op: "open", Path: "/x", Kind: ErrPermissionDenied, Err: fs.ErrPermission},
			want: CodePermissionDenied,
		},
		{name: "unclassified", err: errors.New("boom"), want: CodeIOFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorCode(tt.err); got != tt.want {
				t.Errorf("ErrorCode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFSError_UnwrapKeepsCause(t *testing.T) {
	err := &FSError{Op: "stat", Path: "/a", Kind: ErrNotFound, Err: fs.ErrNotExist}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("FSError should unwrap to its cause")
	}
	if !errors.Is(err, ErrNotFound) {
		t.Error("FSError should match its kind")
	}
}

func TestCode_StatusCode(t *testing.T) {
	if CodeFolderUnavailable.StatusCode() != http.StatusServiceUnavailable {
		t.Error("FolderUnavailable should map to 503")
	}
	if !CodeFolderUnavailable.Recoverable() {
		t.Error("FolderUnavailable should be recoverable")
	}
	if CodeCorruptRecord.Recoverable() {
		t.Error("CorruptRecord should not be recoverable")
	}
	if CodeIOFailure.StatusCode() != http.StatusInternalServerError {
		t.Error("IOFailure should map to 500")
	}
}
