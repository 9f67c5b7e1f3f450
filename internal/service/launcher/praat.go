package launcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"medvault/internal/domain"
	"medvault/internal/domain/models"
	"medvault/internal/domain/services"
	"medvault/internal/repository/filestore"
)

type praatService struct {
	launcher services.Launcher
	settings services.SettingsService
	goos     string
	logger   *slog.Logger
}

// NewPraatService creates a new Praat integration
func NewPraatService(
	launcher services.Launcher,
	settings services.SettingsService,
	logger *slog.Logger,
) services.PraatService {
	return &praatService{
		launcher: launcher,
		settings: settings,
		goos:     runtime.GOOS,
		logger:   logger,
	}
}

func (s *praatService) SelectExecutable(ctx context.Context, path string) (string, error) {
	exe, err := resolveExecutable(s.goos, path)
	if err != nil {
		return "", err
	}

	_, err = s.settings.UpdateSettings(ctx, &models.SettingsPatch{
		PraatPath: models.OptionalValue{Present: true, Value: &exe},
	})
	if err != nil {
		return "", err
	}

	s.logger.Info("praat executable selected", "path", exe)
	return exe, nil
}

func (s *praatService) OpenFile(ctx context.Context, praatPath, audioPath string) error {
	if strings.TrimSpace(praatPath) == "" {
		st, err := s.settings.GetSettings(ctx)
		if err != nil {
			return err
		}
		praatPath = st.PraatPath
	}
	if praatPath == "" {
		return fmt.Errorf("%w: praat executable has not been selected", domain.ErrNotFound)
	}

	exe, err := resolveExecutable(s.goos, praatPath)
	if err != nil {
		return err
	}

	info, err := os.Stat(audioPath)
	if err != nil {
		return filestore.Classify("stat", audioPath, err, domain.ErrNotFound)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a file", domain.ErrInvalidPath, audioPath)
	}

	return s.launcher.Run(ctx, exe, "--open", audioPath)
}

// resolveExecutable checks path names something runnable. A macOS app
// bundle resolves to the binary inside it.
func resolveExecutable(goos, path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("%w: path is required", domain.ErrInvalidPath)
	}
	if !filepath.IsAbs(path) {
		return "", fmt.Errorf("%w: %s is not an absolute path", domain.ErrInvalidPath, path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", filestore.Classify("stat", path, err, domain.ErrInvalidPath)
	}

	if info.IsDir() && strings.HasSuffix(path, ".app") {
		return resolveExecutable(goos, filepath.Join(path, "Contents", "MacOS", "Praat"))
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s is not a file", domain.ErrInvalidPath, path)
	}

	if goos == "windows" {
		if !strings.EqualFold(filepath.Ext(path), ".exe") {
			return "", fmt.Errorf("%w: %s is not an .exe", domain.ErrInvalidPath, path)
		}
		return path, nil
	}
	if info.Mode().Perm()&0o111 == 0 {
		return "", fmt.Errorf("%w: %s is not executable", domain.ErrInvalidPath, path)
	}
	return path, nil
}
