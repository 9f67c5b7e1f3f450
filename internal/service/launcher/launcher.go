package launcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"runtime"

	"medvault/internal/domain"
	"medvault/internal/domain/services"
	"medvault/internal/repository/filestore"
)

// commandStarter starts a process without waiting for it; swapped in tests
type commandStarter func(name string, args ...string) error

// osLauncher implements the Launcher interface with the platform opener
type osLauncher struct {
	start  commandStarter
	goos   string
	logger *slog.Logger
}

// NewLauncher creates a launcher for the current OS
func NewLauncher(logger *slog.Logger) services.Launcher {
	l := &osLauncher{goos: runtime.GOOS, logger: logger}
	l.start = l.startDetached
	return l
}

func (l *osLauncher) Open(ctx context.Context, path string) error {
	if _, err := os.Stat(path); err != nil {
		return filestore.Classify("stat", path, err, domain.ErrNotFound)
	}

	name, args := openCommand(l.goos, path)
	if err := l.start(name, args...); err != nil {
		return fmt.Errorf("%w: open %s: %v", domain.ErrIOFailure, path, err)
	}

	l.logger.Debug("opened with default handler", "path", path)
	return nil
}

func (l *osLauncher) Run(ctx context.Context, executable string, args ...string) error {
	if err := l.start(executable, args...); err != nil {
		return fmt.Errorf("%w: start %s: %v", domain.ErrIOFailure, executable, err)
	}

	l.logger.Info("external program started", "executable", executable, "args", args)
	return nil
}

// openCommand returns the command that opens path with its default handler
func openCommand(goos, path string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{path}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", path}
	default:
		return "xdg-open", []string{path}
	}
}

// startDetached starts the process and reaps it in the background. The
// request context is not attached: closing a request must not kill the app.
func (l *osLauncher) startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			l.logger.Debug("launched process exited with error", "command", name, "error", err)
		}
	}()
	return nil
}
