package leveldb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"medvault/internal/domain/models"
	"medvault/internal/domain/repositories"
)

// Key layout inside each root's database:
//
//	stats_<clean absolute folder path>  => FolderStats JSON
const statsPrefix = "stats_"

// FolderIndex keeps one LevelDB database per storage root under
// <dataDir>/index/<rootID>. Databases are opened lazily and kept open.
type FolderIndex struct {
	dir    string
	logger *slog.Logger

	mu  sync.Mutex
	dbs map[string]*leveldb.DB
}

// NewFolderIndex creates the index directory; no database is opened yet
func NewFolderIndex(dataDir string, logger *slog.Logger) (repositories.FolderIndex, error) {
	dir := filepath.Join(dataDir, "index")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create index directory: %w", err)
	}
	return &FolderIndex{
		dir:    dir,
		logger: logger,
		dbs:    make(map[string]*leveldb.DB),
	}, nil
}

func (x *FolderIndex) open(rootID string) (*leveldb.DB, error) {
	if rootID == "" || strings.ContainsAny(rootID, `/\`) {
		return nil, fmt.Errorf("invalid root id %q", rootID)
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if db, ok := x.dbs[rootID]; ok {
		return db, nil
	}

	path := filepath.Join(x.dir, rootID)
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open folder index %s: %w", rootID, err)
	}
	x.dbs[rootID] = db
	x.logger.Debug("folder index opened", "root_id", rootID, "path", path)
	return db, nil
}

func statsKey(path string) []byte {
	return []byte(statsPrefix + filepath.Clean(path))
}

func (x *FolderIndex) Get(ctx context.Context, rootID, path string) (*models.FolderStats, error) {
	db, err := x.open(rootID)
	if err != nil {
		return nil, err
	}

	data, err := db.Get(statsKey(path), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("read folder index: %w", err)
	}

	var stats models.FolderStats
	if err := json.Unmarshal(data, &stats); err != nil {
		// A bad entry is a cache miss, not a failure
		x.logger.Warn("dropping unreadable folder index entry", "root_id", rootID, "path", path, "error", err)
		_ = db.Delete(statsKey(path), nil)
		return nil, nil
	}
	return &stats, nil
}

func (x *FolderIndex) Put(ctx context.Context, rootID string, stats *models.FolderStats) error {
	db, err := x.open(rootID)
	if err != nil {
		return err
	}

	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("encode folder stats: %w", err)
	}
	if err := db.Put(statsKey(stats.Path), data, nil); err != nil {
		return fmt.Errorf("write folder index: %w", err)
	}
	return nil
}

func (x *FolderIndex) Invalidate(ctx context.Context, rootID, path string) error {
	db, err := x.open(rootID)
	if err != nil {
		return err
	}

	clean := filepath.Clean(path)
	batch := new(leveldb.Batch)
	batch.Delete(statsKey(clean))

	// Everything below path as well
	iter := db.NewIterator(util.BytesPrefix([]byte(statsPrefix+clean+string(filepath.Separator))), nil)
	for iter.Next() {
		key := make([]byte, len(iter.Key()))
		copy(key, iter.Key())
		batch.Delete(key)
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return fmt.Errorf("scan folder index: %w", err)
	}

	if err := db.Write(batch, nil); err != nil {
		return fmt.Errorf("invalidate folder index: %w", err)
	}
	return nil
}

func (x *FolderIndex) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()

	var errs []error
	for id, db := range x.dbs {
		if err := db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close index %s: %w", id, err))
		}
		delete(x.dbs, id)
	}
	return errors.Join(errs...)
}
