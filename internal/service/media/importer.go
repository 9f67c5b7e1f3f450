package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"medvault/internal/config"
	"medvault/internal/domain"
	"medvault/internal/domain/models"
	"medvault/internal/domain/services"
	"medvault/internal/repository/filestore"
	"medvault/internal/service/storage"
)

// maxNameAttempts bounds the "name (n).ext" collision search
const maxNameAttempts = 10000

func (s *mediaService) CopyIn(ctx context.Context, loc services.MediaLocation, sources []string) (*models.CopyResult, error) {
	if len(sources) == 0 {
		return &models.CopyResult{Success: true, Files: []string{}}, nil
	}

	res, dir, err := s.createDir(ctx, loc)
	if err != nil {
		return nil, err
	}
	defer s.invalidateIndex(ctx, res.Root.ID, dir)

	result := &models.CopyResult{Files: make([]string, 0, len(sources))}
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		dest, err := s.copyFile(dir, src)
		if err != nil {
			s.logger.Error("failed to copy file", "source", src, "dir", dir, "error", err)
			return result, err
		}
		result.Count++
		result.Files = append(result.Files, dest)
	}

	s.logger.Info("files copied", "folder", loc.Folder, "dir", dir, "count", result.Count)
	result.Success = true
	return result, nil
}

func (s *mediaService) copyFile(dir, src string) (string, error) {
	info, err := os.Stat(src)
	if err != nil {
		return "", filestore.Classify("stat", src, err, domain.ErrNotFound)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s is not a regular file", domain.ErrInvalidPath, src)
	}

	in, err := os.Open(src)
	if err != nil {
		return "", filestore.Classify("open", src, err, domain.ErrNotFound)
	}
	defer in.Close()

	dest, err := writeUnique(dir, filepath.Base(src), in)
	if err != nil {
		return "", err
	}

	// Keep the recording time so the copy sorts where the original would
	if err := os.Chtimes(dest, time.Now(), info.ModTime()); err != nil {
		s.logger.Warn("failed to preserve modification time", "path", dest, "error", err)
	}
	return dest, nil
}

func (s *mediaService) SaveRecording(ctx context.Context, loc services.MediaLocation, filename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: recording is empty", domain.ErrValidation)
	}
	if len(data) > config.MaxRecordedAudioBytes {
		return "", fmt.Errorf("%w: recording exceeds %d bytes", domain.ErrValidation, config.MaxRecordedAudioBytes)
	}

	filename = strings.TrimSpace(filename)
	if filename == "" {
		filename = "recording-" + time.Now().Format("2006-01-02_15-04-05") + ".webm"
	}
	if err := storage.ValidateSimpleName(filename, config.MaxFileNameLength); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if kind := s.classifier.Classify(filename); kind != models.MediaAudio {
		return "", fmt.Errorf("%w: %s is not an audio file name", domain.ErrValidation, filename)
	}

	if loc.Sub == "" {
		loc.Sub = services.AudioSubfolder
	}
	res, dir, err := s.createDir(ctx, loc)
	if err != nil {
		return "", err
	}

	path, err := writeUnique(dir, filename, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	s.invalidateIndex(ctx, res.Root.ID, dir)

	s.logger.Info("recording saved", "folder", loc.Folder, "path", path, "bytes", len(data))
	return path, nil
}

// writeUnique stores r under name in dir without ever replacing an existing
// file. The final name is reserved first with O_EXCL; content goes to a
// hidden temp file that is renamed over the reservation once complete.
func writeUnique(dir, name string, r io.Reader) (string, error) {
	dest, err := reserveName(dir, name)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(dir, ".medvault-import-*")
	if err != nil {
		os.Remove(dest)
		return "", filestore.Classify("create", dir, err, domain.ErrFolderUnavailable)
	}
	tmpName := tmp.Name()

	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpName)
			os.Remove(dest)
		}
	}()

	if _, err := io.Copy(tmp, r); err != nil {
		return "", filestore.Classify("write", tmpName, err, domain.ErrFolderUnavailable)
	}
	if err := tmp.Sync(); err != nil {
		return "", filestore.Classify("sync", tmpName, err, domain.ErrFolderUnavailable)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return "", filestore.Classify("chmod", tmpName, err, domain.ErrFolderUnavailable)
	}
	if err := tmp.Close(); err != nil {
		return "", filestore.Classify("close", tmpName, err, domain.ErrFolderUnavailable)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		return "", filestore.Classify("rename", dest, err, domain.ErrFolderUnavailable)
	}

	committed = true
	return dest, nil
}

// reserveName creates an empty placeholder at the first free name among
// "name.ext", "name (1).ext", "name (2).ext", ...
func reserveName(dir, name string) (string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	for i := 0; i < maxNameAttempts; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s (%d)%s", stem, i, ext)
		}
		path := filepath.Join(dir, candidate)

		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			f.Close()
			return path, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", filestore.Classify("create", path, err, domain.ErrFolderUnavailable)
		}
	}
	return "", fmt.Errorf("%w: no free file name for %s after %d attempts", domain.ErrIOFailure, name, maxNameAttempts)
}
