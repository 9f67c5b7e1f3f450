package leveldb

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"medvault/internal/domain/models"
)

func newTestIndex(t *testing.T) *FolderIndex {
	t.Helper()
	idx, err := NewFolderIndex(t.TempDir(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewFolderIndex() error = %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx.(*FolderIndex)
}

func TestFolderIndex_PutGet(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	got, err := idx.Get(ctx, "root-a", "/data/usb1/P001")
	if err != nil || got != nil {
		t.Fatalf("Get() on empty index = %v, %v; want nil, nil", got, err)
	}

	stats := &models.FolderStats{
		Path:       "/data/usb1/P001",
		VideoCount: 12,
		AudioCount: 3,
		TotalSize:  4096,
		DirModTime: time.Unix(1700000000, 0).UTC(),
		IndexedAt:  time.Unix(1700000100, 0).UTC(),
	}
	if err := idx.Put(ctx, "root-a", stats); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err = idx.Get(ctx, "root-a", "/data/usb1/P001/")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got == nil || got.VideoCount != 12 || !got.DirModTime.Equal(stats.DirModTime) {
		t.Errorf("Get() = %+v, want %+v", got, stats)
	}

	// Roots are partitioned
	other, err := idx.Get(ctx, "root-b", "/data/usb1/P001")
	if err != nil || other != nil {
		t.Errorf("Get() from another root = %v, %v; want nil", other, err)
	}
}

func TestFolderIndex_InvalidateSubtree(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	base := filepath.Join(string(filepath.Separator), "data", "P001")
	paths := []string{
		base,
		filepath.Join(base, "video"),
		filepath.Join(base, "2024-01-01", "audio"),
		filepath.Join(string(filepath.Separator), "data", "P0010"),
	}
	for _, p := range paths {
		if err := idx.Put(ctx, "root", &models.FolderStats{Path: p, FileCount: 1}); err != nil {
			t.Fatal(err)
		}
	}

	if err := idx.Invalidate(ctx, "root", base); err != nil {
		t.Fatalf("Invalidate() error = %v", err)
	}

	for _, p := range paths[:3] {
		if got, _ := idx.Get(ctx, "root", p); got != nil {
			t.Errorf("entry %s should be invalidated", p)
		}
	}
	if got, _ := idx.Get(ctx, "root", paths[3]); got == nil {
		t.Error("sibling folder with shared name prefix must survive")
	}
}

func TestFolderIndex_RejectsBadRootID(t *testing.T) {
	idx := newTestIndex(t)
	if _, err := idx.Get(context.Background(), "../escape", "/x"); err == nil {
		t.Error("expected error for root id containing a separator")
	}
}
