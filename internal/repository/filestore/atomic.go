package filestore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"medvault/internal/domain"
)

// WriteFileAtomic writes data to a temp file in the target directory and
// renames it over path. The temp file is removed on every failure path, so
// readers only ever see the previous or the new content.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) (err error) {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return Classify("create temp", path, err, domain.ErrFolderUnavailable)
	}
	tmpName := tmp.Name()

	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return Classify("write temp", path, err, domain.ErrFolderUnavailable)
	}
	if err := tmp.Sync(); err != nil {
		return Classify("sync temp", path, err, domain.ErrFolderUnavailable)
	}
	if err := tmp.Chmod(perm); err != nil {
		return Classify("chmod temp", path, err, domain.ErrFolderUnavailable)
	}
	if err := tmp.Close(); err != nil {
		return Classify("close temp", path, err, domain.ErrFolderUnavailable)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return Classify("rename", path, err, domain.ErrFolderUnavailable)
	}

	committed = true
	return nil
}

// writeJSON serializes v with indentation and writes it atomically
func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	return WriteFileAtomic(path, append(data, '\n'), 0o644)
}

// readJSON decodes path into dest.
// Missing files wrap domain.ErrNotFound; malformed content wraps domain.ErrCorruptRecord.
func readJSON(path string, dest interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return Classify("read", path, err, domain.ErrNotFound)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return &domain.FSError{Op: "decode", Path: path, Kind: domain.ErrCorruptRecord, Err: err}
	}
	return nil
}
