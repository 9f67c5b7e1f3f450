package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"medvault/internal/domain"
	"medvault/internal/domain/models"
	"medvault/internal/domain/services"
	"medvault/internal/repository/filestore"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRegistry(t *testing.T) (services.StorageRegistry, *filestore.RepositoryConfig) {
	t.Helper()
	cfg, err := filestore.NewRepositoryConfig(t.TempDir(), testLogger())
	if err != nil {
		t.Fatal(err)
	}
	reg, err := NewRegistry(context.Background(), filestore.NewStorageRootRepository(cfg), time.Minute, testLogger())
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	return reg, cfg
}

func assertOneActive(t *testing.T, reg services.StorageRegistry) {
	t.Helper()
	roots, _ := reg.Roots(context.Background())
	active := 0
	for _, r := range roots {
		if r.IsActive {
			active++
		}
	}
	if len(roots) > 0 && active != 1 {
		t.Fatalf("expected exactly one active root among %d, got %d", len(roots), active)
	}
}

func mkdir(t *testing.T, parts ...string) string {
	t.Helper()
	p := filepath.Join(parts...)
	if err := os.MkdirAll(p, 0o755); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestRegistry_ExactlyOneActive(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	a, err := reg.AddRoot(ctx, t.TempDir())
	if err != nil {
		t.Fatalf("AddRoot(a) error = %v", err)
	}
	if !a.IsActive {
		t.Error("first root added to an empty registry should be active")
	}
	assertOneActive(t, reg)

	b, err := reg.AddRoot(ctx, t.TempDir())
	if err != nil {
		t.Fatalf("AddRoot(b) error = %v", err)
	}
	if b.IsActive {
		t.Error("later roots must not become active without SetActive")
	}
	assertOneActive(t, reg)

	c, _ := reg.AddRoot(ctx, t.TempDir())
	for _, id := range []string{b.ID, c.ID, a.ID, c.ID} {
		if err := reg.SetActive(ctx, id); err != nil {
			t.Fatalf("SetActive(%s) error = %v", id, err)
		}
		assertOneActive(t, reg)
		active, err := reg.Active(ctx)
		if err != nil || active.ID != id {
			t.Fatalf("Active() = %v, %v; want %s", active, err, id)
		}
	}

	if err := reg.SetActive(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("SetActive(unknown) = %v, want ErrNotFound", err)
	}
	assertOneActive(t, reg)
}

func TestRegistry_AddRootErrors(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()
	dir := t.TempDir()

	file := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
		want error
	}{
		{name: "missing", path: filepath.Join(dir, "nope"), want: domain.ErrInvalidPath},
		{name: "not a directory", path: file, want: domain.ErrInvalidPath},
		{name: "empty", path: "  ", want: domain.ErrInvalidPath},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := reg.AddRoot(ctx, tt.path); !errors.Is(err, tt.want) {
				t.Errorf("AddRoot(%q) = %v, want %v", tt.path, err, tt.want)
			}
		})
	}

	t.Run("duplicate", func(t *testing.T) {
		if _, err := reg.AddRoot(ctx, dir); err != nil {
			t.Fatal(err)
		}
		_, err := reg.AddRoot(ctx, dir+string(filepath.Separator))
		if !errors.Is(err, domain.ErrDuplicateRoot) {
			t.Errorf("AddRoot(duplicate) = %v, want ErrDuplicateRoot", err)
		}
	})
}

func TestRegistry_PersistsAcrossInstances(t *testing.T) {
	reg, cfg := newTestRegistry(t)
	ctx := context.Background()

	a, _ := reg.AddRoot(ctx, t.TempDir())
	b, _ := reg.AddRoot(ctx, t.TempDir())
	if err := reg.SetActive(ctx, b.ID); err != nil {
		t.Fatal(err)
	}

	reloaded, err := NewRegistry(ctx, filestore.NewStorageRootRepository(cfg), time.Minute, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	roots, _ := reloaded.Roots(ctx)
	if len(roots) != 2 || roots[0].ID != a.ID || roots[0].IsActive || !roots[1].IsActive {
		t.Errorf("reloaded roots = %+v", roots)
	}
}

func TestRegistry_RepairsHandEditedFile(t *testing.T) {
	cfg, _ := filestore.NewRepositoryConfig(t.TempDir(), testLogger())
	repo := filestore.NewStorageRootRepository(cfg)
	ctx := context.Background()

	_ = repo.Save(ctx, []models.StorageRoot{
		{ID: "1", Path: "/a", IsActive: true},
		{ID: "2", Path: "/b", IsActive: true},
	})

	reg, err := NewRegistry(ctx, repo, time.Minute, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	assertOneActive(t, reg)
	active, _ := reg.Active(ctx)
	if active.ID != "1" {
		t.Errorf("expected first active root to be kept, got %s", active.ID)
	}
}

func TestRegistry_ListRootsStats(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	root := t.TempDir()
	mkdir(t, root, "P001", "2024-01-01")
	mkdir(t, root, "P002")
	mkdir(t, root, ".trash")
	if err := os.WriteFile(filepath.Join(root, "P001", "2024-01-01", "clip.mp4"), make([]byte, 100), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "P002", "patient.json"), make([]byte, 20), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := reg.AddRoot(ctx, root); err != nil {
		t.Fatal(err)
	}

	roots, err := reg.ListRoots(ctx, false)
	if err != nil {
		t.Fatalf("ListRoots() error = %v", err)
	}
	if len(roots) != 1 {
		t.Fatalf("expected 1 root, got %d", len(roots))
	}
	got := roots[0]
	if got.PatientCount != 2 {
		t.Errorf("PatientCount = %d, want 2", got.PatientCount)
	}
	if got.TotalSize != 120 {
		t.Errorf("TotalSize = %d, want 120", got.TotalSize)
	}
	if !got.Available || got.StatsUpdatedAt == nil {
		t.Errorf("root should be available with fresh stats: %+v", got)
	}

	// Fresh stats are not recomputed without refresh
	mkdir(t, root, "P003")
	roots, _ = reg.ListRoots(ctx, false)
	if roots[0].PatientCount != 2 {
		t.Errorf("PatientCount = %d, fresh stats should be reused", roots[0].PatientCount)
	}
	roots, _ = reg.ListRoots(ctx, true)
	if roots[0].PatientCount != 3 {
		t.Errorf("PatientCount after refresh = %d, want 3", roots[0].PatientCount)
	}
}

func TestRegistry_ListRootsUnavailableRoot(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	root := filepath.Join(t.TempDir(), "usb")
	mkdir(t, root)
	if _, err := reg.AddRoot(ctx, root); err != nil {
		t.Fatal(err)
	}
	if err := os.RemoveAll(root); err != nil {
		t.Fatal(err)
	}

	roots, err := reg.ListRoots(ctx, true)
	if err != nil {
		t.Fatalf("ListRoots() must not fail on an unplugged root: %v", err)
	}
	if roots[0].Available {
		t.Error("removed root should be reported unavailable")
	}
}

// Root A added and activated, P001 created there; root B activated; P001 is
// still refused and a new patient on B resolves while A is inactive.
func TestPathResolver_MultiRootScenario(t *testing.T) {
	reg, _ := newTestRegistry(t)
	resolver := NewPathResolver(reg, testLogger())
	ctx := context.Background()

	rootA := t.TempDir()
	rootB := t.TempDir()

	a, err := reg.AddRoot(ctx, rootA)
	if err != nil {
		t.Fatal(err)
	}
	if err := reg.SetActive(ctx, a.ID); err != nil {
		t.Fatal(err)
	}

	if err := resolver.EnsureUnique(ctx, "P001"); err != nil {
		t.Fatalf("EnsureUnique(P001) on empty roots = %v", err)
	}
	mkdir(t, rootA, "P001")

	res, err := resolver.Resolve(ctx, "P001")
	if err != nil || res.Root.ID != a.ID || res.Path != filepath.Join(rootA, "P001") {
		t.Fatalf("Resolve(P001) = %+v, %v", res, err)
	}

	b, _ := reg.AddRoot(ctx, rootB)
	if err := reg.SetActive(ctx, b.ID); err != nil {
		t.Fatal(err)
	}

	err = resolver.EnsureUnique(ctx, "P001")
	if !errors.Is(err, domain.ErrDuplicatePatient) {
		t.Fatalf("EnsureUnique(P001) after switching root = %v, want ErrDuplicatePatient", err)
	}

	mkdir(t, rootB, "P002")
	res, err = resolver.Resolve(ctx, "P002")
	if err != nil || res.Root.ID != b.ID {
		t.Fatalf("Resolve(P002) = %+v, %v", res, err)
	}

	// Historical patient still found on the inactive root
	res, err = resolver.Resolve(ctx, "P001")
	if err != nil || res.Root.ID != a.ID {
		t.Fatalf("Resolve(P001) on inactive root = %+v, %v", res, err)
	}
}

func TestPathResolver_NotFoundVsUnavailable(t *testing.T) {
	reg, _ := newTestRegistry(t)
	resolver := NewPathResolver(reg, testLogger())
	ctx := context.Background()

	if _, err := resolver.Resolve(ctx, "P001"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Resolve() with no roots = %v, want ErrNotFound", err)
	}

	root := t.TempDir()
	if _, err := reg.AddRoot(ctx, root); err != nil {
		t.Fatal(err)
	}
	if _, err := resolver.Resolve(ctx, "P001"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Resolve(missing) = %v, want ErrNotFound", err)
	}

	usb := filepath.Join(t.TempDir(), "usb")
	mkdir(t, usb, "P001")
	if _, err := reg.AddRoot(ctx, usb); err != nil {
		t.Fatal(err)
	}
	if _, err := resolver.Resolve(ctx, "P001"); err != nil {
		t.Fatalf("Resolve(P001) on plugged usb = %v", err)
	}

	if err := os.RemoveAll(usb); err != nil {
		t.Fatal(err)
	}
	if _, err := resolver.Resolve(ctx, "P001"); !errors.Is(err, domain.ErrFolderUnavailable) {
		t.Errorf("Resolve(P001) with usb removed = %v, want ErrFolderUnavailable", err)
	}
}

func TestPathResolver_ResolveAppointment(t *testing.T) {
	reg, _ := newTestRegistry(t)
	resolver := NewPathResolver(reg, testLogger())
	ctx := context.Background()

	root := t.TempDir()
	mkdir(t, root, "P001")
	_, _ = reg.AddRoot(ctx, root)

	_, dir, err := resolver.ResolveAppointment(ctx, "P001/2024-03-01")
	if err != nil {
		t.Fatalf("ResolveAppointment() error = %v", err)
	}
	if dir != filepath.Join(root, "P001", "2024-03-01") {
		t.Errorf("dir = %s", dir)
	}

	for _, bad := range []string{"P001", "P001/../x", "a/b/c", ""} {
		if _, _, err := resolver.ResolveAppointment(ctx, bad); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("ResolveAppointment(%q) = %v, want ErrValidation", bad, err)
		}
	}
}

func TestValidateFolderName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "simple", input: "P001", wantErr: false},
		{name: "with spaces", input: "Ivanov Ivan 1980", wantErr: false},
		{name: "unicode", input: "Иванов", wantErr: false},
		{name: "empty", input: "", wantErr: true},
		{name: "slash", input: "a/b", wantErr: true},
		{name: "backslash", input: `a\b`, wantErr: true},
		{name: "dot dot", input: "..", wantErr: true},
		{name: "hidden", input: ".index", wantErr: true},
		{name: "padded", input: " P001", wantErr: true},
		{name: "control", input: "P\x00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFolderName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFolderName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
