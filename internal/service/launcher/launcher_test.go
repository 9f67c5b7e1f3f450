package launcher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"testing"

	"medvault/internal/domain"
	"medvault/internal/repository/filestore"
	"medvault/internal/service/settings"
)

type started struct {
	name string
	args []string
}

func fakeLauncher(fail error) (*osLauncher, *[]started) {
	calls := &[]started{}
	l := &osLauncher{
		goos:   "linux",
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	l.start = func(name string, args ...string) error {
		*calls = append(*calls, started{name: name, args: args})
		return fail
	}
	return l, calls
}

func TestOpenCommand(t *testing.T) {
	tests := []struct {
		goos     string
		wantName string
	}{
		{"darwin", "open"},
		{"windows", "rundll32"},
		{"linux", "xdg-open"},
		{"freebsd", "xdg-open"},
	}
	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			name, args := openCommand(tt.goos, "/x/y")
			if name != tt.wantName || args[len(args)-1] != "/x/y" {
				t.Errorf("openCommand(%s) = %s %v", tt.goos, name, args)
			}
		})
	}
}

func TestLauncher_Open(t *testing.T) {
	ctx := context.Background()
	l, calls := fakeLauncher(nil)
	dir := t.TempDir()

	if err := l.Open(ctx, dir); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if len(*calls) != 1 || (*calls)[0].name != "xdg-open" {
		t.Errorf("calls = %+v", *calls)
	}

	if err := l.Open(ctx, filepath.Join(dir, "missing")); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Open(missing) = %v, want ErrNotFound", err)
	}

	failing, _ := fakeLauncher(errors.New("no opener"))
	if err := failing.Open(ctx, dir); !errors.Is(err, domain.ErrIOFailure) {
		t.Errorf("Open() with broken opener = %v, want ErrIOFailure", err)
	}
}

func writeExecutable(t *testing.T, dir, name string, mode os.FileMode) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), mode); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestResolveExecutable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses unix permission bits")
	}
	dir := t.TempDir()
	exe := writeExecutable(t, dir, "praat", 0o755)
	plain := writeExecutable(t, dir, "notes.txt", 0o644)
	winExe := writeExecutable(t, dir, "Praat.exe", 0o644)

	bundle := filepath.Join(dir, "Praat.app", "Contents", "MacOS")
	if err := os.MkdirAll(bundle, 0o755); err != nil {
		t.Fatal(err)
	}
	bundled := writeExecutable(t, bundle, "Praat", 0o755)

	tests := []struct {
		name    string
		goos    string
		path    string
		want    string
		wantErr bool
	}{
		{name: "unix executable", goos: "linux", path: exe, want: exe},
		{name: "not executable", goos: "linux", path: plain, wantErr: true},
		{name: "windows exe", goos: "windows", path: winExe, want: winExe},
		{name: "windows non-exe", goos: "windows", path: plain, wantErr: true},
		{name: "mac app bundle", goos: "darwin", path: filepath.Join(dir, "Praat.app"), want: bundled},
		{name: "relative", goos: "linux", path: "praat", wantErr: true},
		{name: "missing", goos: "linux", path: filepath.Join(dir, "nope"), wantErr: true},
		{name: "directory", goos: "linux", path: dir, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveExecutable(tt.goos, tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("resolveExecutable() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, domain.ErrInvalidPath) {
				t.Errorf("error = %v, want ErrInvalidPath", err)
			}
			if got != tt.want {
				t.Errorf("resolveExecutable() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestPraat_SelectAndOpen(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses unix permission bits")
	}
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg, err := filestore.NewRepositoryConfig(t.TempDir(), logger)
	if err != nil {
		t.Fatal(err)
	}
	settingsSvc := settings.NewSettingsService(filestore.NewSettingsRepository(cfg), logger)
	l, calls := fakeLauncher(nil)
	praat := NewPraatService(l, settingsSvc, logger)

	dir := t.TempDir()
	audio := filepath.Join(dir, "voice.wav")
	if err := os.WriteFile(audio, []byte("RIFF"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := praat.OpenFile(ctx, "", audio); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("OpenFile() before selection = %v, want ErrNotFound", err)
	}

	exe := writeExecutable(t, dir, "praat", 0o755)
	got, err := praat.SelectExecutable(ctx, exe)
	if err != nil || got != exe {
		t.Fatalf("SelectExecutable() = %s, %v", got, err)
	}
	st, _ := settingsSvc.GetSettings(ctx)
	if st.PraatPath != exe {
		t.Errorf("settings.PraatPath = %s, want %s", st.PraatPath, exe)
	}

	if err := praat.OpenFile(ctx, "", audio); err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	want := started{name: exe, args: []string{"--open", audio}}
	if len(*calls) != 1 || !reflect.DeepEqual((*calls)[0], want) {
		t.Errorf("calls = %+v, want %+v", *calls, want)
	}

	if err := praat.OpenFile(ctx, exe, filepath.Join(dir, "gone.wav")); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("OpenFile(missing audio) = %v, want ErrNotFound", err)
	}
}
