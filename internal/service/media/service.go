package media

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"medvault/internal/config"
	"medvault/internal/domain"
	"medvault/internal/domain/models"
	"medvault/internal/domain/repositories"
	"medvault/internal/domain/services"
	"medvault/internal/repository/filestore"
	"medvault/internal/service/storage"
)

// probeLimit bounds concurrent hasAudio probes per request
const probeLimit = 4

// FolderWatcher is told about every directory the folder index has an entry for
type FolderWatcher interface {
	Watch(rootID, dir string)
}

// Options tunes the media service
type Options struct {
	PageSize           int
	MaxConcurrentScans int64
	Prober             Prober
	Watcher            FolderWatcher // Optional
}

type mediaService struct {
	resolver   services.PathResolver
	index      repositories.FolderIndex
	classifier *Classifier
	prober     Prober
	watcher    FolderWatcher
	scans      *semaphore.Weighted
	pageSize   int
	logger     *slog.Logger
}

// NewMediaService creates a new media service
func NewMediaService(
	resolver services.PathResolver,
	index repositories.FolderIndex,
	classifier *Classifier,
	opts Options,
	logger *slog.Logger,
) services.MediaService {
	if opts.PageSize <= 0 {
		opts.PageSize = config.DefaultPageSize
	}
	if opts.MaxConcurrentScans <= 0 {
		opts.MaxConcurrentScans = 4
	}
	if opts.Prober == nil {
		opts.Prober = NewProber(classifier, "", logger)
	}

	return &mediaService{
		resolver:   resolver,
		index:      index,
		classifier: classifier,
		prober:     opts.Prober,
		watcher:    opts.Watcher,
		scans:      semaphore.NewWeighted(opts.MaxConcurrentScans),
		pageSize:   opts.PageSize,
		logger:     logger,
	}
}

// locate resolves loc to its patient folder and media directory
func (s *mediaService) locate(ctx context.Context, loc services.MediaLocation) (*services.Resolution, string, error) {
	res, err := s.resolver.Resolve(ctx, loc.Folder)
	if err != nil {
		return nil, "", err
	}

	dir := res.Path
	for _, segment := range []string{loc.Appointment, loc.Sub} {
		if segment == "" {
			continue
		}
		if err := storage.ValidateFolderName(segment); err != nil {
			return nil, "", fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		dir = filepath.Join(dir, segment)
	}
	return res, dir, nil
}

func (s *mediaService) createDir(ctx context.Context, loc services.MediaLocation) (*services.Resolution, string, error) {
	res, dir, err := s.locate(ctx, loc)
	if err != nil {
		return nil, "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, "", filestore.Classify("mkdir", dir, err, domain.ErrFolderUnavailable)
	}
	return res, dir, nil
}

func (s *mediaService) Dir(ctx context.Context, loc services.MediaLocation, create bool) (string, error) {
	if create {
		_, dir, err := s.createDir(ctx, loc)
		return dir, err
	}
	_, dir, err := s.locate(ctx, loc)
	return dir, err
}

// listing re-reads dir and refreshes its folder index entry
func (s *mediaService) listing(ctx context.Context, res *services.Resolution, dir string) ([]models.MediaAsset, error) {
	if err := s.scans.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer s.scans.Release(1)

	// Stat before reading so a concurrent add leaves the entry looking stale
	dirInfo, statErr := os.Stat(dir)

	assets, err := scanDir(ctx, s.classifier, dir)
	if err != nil {
		return nil, err
	}

	if statErr != nil {
		if err := s.checkPatientFolder(res); err != nil {
			return nil, err
		}
		return assets, nil
	}

	stats := summarize(dir, assets)
	stats.DirModTime = dirInfo.ModTime()
	stats.IndexedAt = time.Now().UTC()
	s.putIndex(ctx, res.Root.ID, stats)

	return assets, nil
}

// checkPatientFolder distinguishes an empty media folder from a patient
// folder that went away after it was resolved (unplugged drive)
func (s *mediaService) checkPatientFolder(res *services.Resolution) error {
	if _, err := os.Stat(res.Path); err != nil {
		return filestore.Classify("stat", res.Path, err, domain.ErrFolderUnavailable)
	}
	return nil
}

func (s *mediaService) putIndex(ctx context.Context, rootID string, stats *models.FolderStats) {
	if err := s.index.Put(ctx, rootID, stats); err != nil {
		s.logger.Warn("failed to update folder index", "root_id", rootID, "path", stats.Path, "error", err)
		return
	}
	if s.watcher != nil {
		s.watcher.Watch(rootID, stats.Path)
	}
}

func (s *mediaService) invalidateIndex(ctx context.Context, rootID, dir string) {
	if err := s.index.Invalidate(ctx, rootID, dir); err != nil {
		s.logger.Warn("failed to invalidate folder index", "root_id", rootID, "path", dir, "error", err)
	}
}

// mtimeGranularity is the coarsest directory mtime resolution expected on
// removable media (FAT and exFAT round to 2s)
const mtimeGranularity = 2 * time.Second

// indexFresh reports whether cached still describes a directory whose current
// mtime is modTime. An entry indexed within one mtime tick of the directory's
// last change is never trusted, since a later write in that tick leaves the
// mtime unchanged.
func indexFresh(cached *models.FolderStats, modTime time.Time) bool {
	return cached != nil &&
		cached.DirModTime.Equal(modTime) &&
		cached.IndexedAt.After(cached.DirModTime.Add(mtimeGranularity))
}

// folderStats serves dir's stats from the index while the directory mtime is
// unchanged, and re-scans otherwise
func (s *mediaService) folderStats(ctx context.Context, res *services.Resolution, dir string) (*models.FolderStats, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if !filestore.IsNotExistError(err) {
			return nil, filestore.Classify("stat", dir, err, domain.ErrNotFound)
		}
		if err := s.checkPatientFolder(res); err != nil {
			return nil, err
		}
		return &models.FolderStats{Path: dir}, nil
	}

	cached, err := s.index.Get(ctx, res.Root.ID, dir)
	if err != nil {
		s.logger.Warn("folder index read failed, re-scanning", "path", dir, "error", err)
	}
	if indexFresh(cached, info.ModTime()) {
		return cached, nil
	}

	assets, err := s.listing(ctx, res, dir)
	if err != nil {
		return nil, err
	}
	return summarize(dir, assets), nil
}

func (s *mediaService) Counts(ctx context.Context, folder string) (*models.PatientCounts, error) {
	res, err := s.resolver.Resolve(ctx, folder)
	if err != nil {
		return nil, err
	}

	video, err := s.folderStats(ctx, res, filepath.Join(res.Path, services.VideoSubfolder))
	if err != nil {
		return nil, err
	}
	audio, err := s.folderStats(ctx, res, filepath.Join(res.Path, services.AudioSubfolder))
	if err != nil {
		return nil, err
	}

	return &models.PatientCounts{
		VideoCount: video.VideoCount,
		AudioCount: audio.AudioCount,
	}, nil
}

func (s *mediaService) List(ctx context.Context, loc services.MediaLocation, filter models.MediaFilter) ([]models.MediaAsset, error) {
	res, dir, err := s.locate(ctx, loc)
	if err != nil {
		return nil, err
	}

	assets, err := s.listing(ctx, res, dir)
	if err != nil {
		return nil, err
	}
	assets = filterAssets(assets, filter)
	s.probe(ctx, assets)
	return assets, nil
}

func (s *mediaService) Clips(ctx context.Context, folder string) ([]models.MediaAsset, error) {
	return s.List(ctx,
		services.MediaLocation{Folder: folder, Sub: services.VideoSubfolder},
		models.MediaFilter{models.MediaVideo},
	)
}

func (s *mediaService) Page(ctx context.Context, loc services.MediaLocation, filter models.MediaFilter, opts models.PageOptions) (*models.ClipPage, error) {
	page, err := s.page(ctx, loc, filter, opts)
	if err != nil {
		return nil, err
	}
	s.probe(ctx, page.Clips)
	return page, nil
}

func (s *mediaService) page(ctx context.Context, loc services.MediaLocation, filter models.MediaFilter, opts models.PageOptions) (*models.ClipPage, error) {
	opts.ApplyDefaults(s.pageSize)
	if err := opts.Validate(config.MaxPageLimit); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	res, dir, err := s.locate(ctx, loc)
	if err != nil {
		return nil, err
	}
	assets, err := s.listing(ctx, res, dir)
	if err != nil {
		return nil, err
	}
	return paginate(filterAssets(assets, filter), opts), nil
}

func (s *mediaService) LoadMore(ctx context.Context, loc services.MediaLocation, filter models.MediaFilter, cursor int) (*models.LoadMoreResult, error) {
	if cursor < 0 {
		return nil, fmt.Errorf("%w: cursor cannot be negative", domain.ErrValidation)
	}

	// Only the count is returned, so delivered entries are not probed
	page, err := s.page(ctx, loc, filter, nextPage(cursor, s.pageSize))
	if err != nil {
		return nil, err
	}
	return models.LoadMoreFromPage(page), nil
}

// probe fills HasAudio for the video entries of assets in place
func (s *mediaService) probe(ctx context.Context, assets []models.MediaAsset) {
	var g errgroup.Group
	g.SetLimit(probeLimit)
	for i := range assets {
		if assets[i].Type != models.MediaVideo {
			continue
		}
		g.Go(func() error {
			assets[i].HasAudio = s.prober.HasAudio(ctx, assets[i].Path)
			return nil
		})
	}
	_ = g.Wait()
}
