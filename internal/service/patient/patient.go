package patient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"medvault/internal/domain"
	"medvault/internal/domain/models"
	"medvault/internal/domain/repositories"
	"medvault/internal/domain/services"
	"medvault/internal/repository/filestore"
)

const (
	dateLayout = "2006-01-02"

	// projectsReadLimit bounds how many roots are listed at once
	projectsReadLimit = 4
)

// patientService implements the PatientService interface
type patientService struct {
	registry services.StorageRegistry
	resolver services.PathResolver
	records  repositories.RecordRepository
	now      func() time.Time
	logger   *slog.Logger

	// createMu serializes the uniqueness check and folder creation
	createMu sync.Mutex
}

// NewPatientService creates a new patient service
func NewPatientService(
	registry services.StorageRegistry,
	resolver services.PathResolver,
	records repositories.RecordRepository,
	logger *slog.Logger,
) services.PatientService {
	return &patientService{
		registry: registry,
		resolver: resolver,
		records:  records,
		now:      time.Now,
		logger:   logger,
	}
}

func (s *patientService) FolderPath(ctx context.Context, folder string) (string, error) {
	res, err := s.resolver.Resolve(ctx, folder)
	if err != nil {
		return "", err
	}
	return res.Path, nil
}

// GetMeta returns an empty record for a folder without metadata, or one whose
// metadata cannot be read. A present but malformed file is an error.
func (s *patientService) GetMeta(ctx context.Context, folder string) (*models.PatientRecord, error) {
	res, err := s.resolver.Resolve(ctx, folder)
	if err != nil {
		return nil, err
	}

	rec, err := s.records.GetPatient(ctx, res.Path)
	switch {
	case err == nil:
		return rec, nil
	case errors.Is(err, domain.ErrNotFound):
		return &models.PatientRecord{}, nil
	case errors.Is(err, domain.ErrPermissionDenied):
		s.logger.Warn("patient metadata unreadable, using empty record", "folder", folder, "error", err)
		return &models.PatientRecord{}, nil
	default:
		return nil, err
	}
}

func (s *patientService) SetMeta(ctx context.Context, folder string, rec *models.PatientRecord) error {
	if rec == nil {
		return fmt.Errorf("%w: record is required", domain.ErrValidation)
	}

	res, err := s.resolver.Resolve(ctx, folder)
	if err != nil {
		return err
	}
	if err := s.records.SavePatient(ctx, res.Path, rec); err != nil {
		return err
	}

	s.logger.Info("patient metadata saved", "folder", folder, "root_id", res.Root.ID)
	return nil
}

// Appointments lists the appointment folders that carry a record, oldest
// first. Folders without a record, or with a broken one, are skipped.
func (s *patientService) Appointments(ctx context.Context, folder string) ([]models.AppointmentSummary, error) {
	res, err := s.resolver.Resolve(ctx, folder)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(res.Path)
	if err != nil {
		return nil, filestore.Classify("readdir", res.Path, err, domain.ErrFolderUnavailable)
	}

	out := make([]models.AppointmentSummary, 0)
	for _, e := range entries {
		if !isAppointmentCandidate(e) {
			continue
		}

		dir := filepath.Join(res.Path, e.Name())
		rec, err := s.records.GetAppointment(ctx, dir)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				s.logger.Warn("skipping unreadable appointment", "path", dir, "error", err)
			}
			continue
		}

		date := rec.Date
		if date == "" {
			date = e.Name()
		}
		out = append(out, models.AppointmentSummary{
			Date:      date,
			Doctor:    rec.Doctor,
			Diagnosis: rec.Diagnosis,
			Path:      folder + "/" + e.Name(),
			Folder:    e.Name(),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Folder < out[j].Folder
	})
	return out, nil
}

func isAppointmentCandidate(e os.DirEntry) bool {
	if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
		return false
	}
	return e.Name() != services.VideoSubfolder && e.Name() != services.AudioSubfolder
}

// GetAppointment returns a record dated by its folder name when the
// appointment has no record yet
func (s *patientService) GetAppointment(ctx context.Context, path string) (*models.AppointmentRecord, error) {
	_, dir, err := s.resolver.ResolveAppointment(ctx, path)
	if err != nil {
		return nil, err
	}

	rec, err := s.records.GetAppointment(ctx, dir)
	switch {
	case err == nil:
		return rec, nil
	case errors.Is(err, domain.ErrNotFound):
		return &models.AppointmentRecord{Date: filepath.Base(dir)}, nil
	case errors.Is(err, domain.ErrPermissionDenied):
		s.logger.Warn("appointment record unreadable, using empty record", "path", path, "error", err)
		return &models.AppointmentRecord{Date: filepath.Base(dir)}, nil
	default:
		return nil, err
	}
}

func (s *patientService) SetAppointment(ctx context.Context, path string, rec *models.AppointmentRecord) error {
	if rec == nil {
		return fmt.Errorf("%w: record is required", domain.ErrValidation)
	}

	_, dir, err := s.resolver.ResolveAppointment(ctx, path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return filestore.Classify("mkdir", dir, err, domain.ErrFolderUnavailable)
	}
	if err := s.records.SaveAppointment(ctx, dir, rec); err != nil {
		return err
	}

	s.logger.Info("appointment saved", "path", path)
	return nil
}

// NewPatient creates <active root>/<base>/ with a patient record and a first
// appointment folder named after the date
func (s *patientService) NewPatient(ctx context.Context, req *models.NewPatientRequest) (*models.Project, error) {
	if err := s.resolver.ValidateFolderName(req.Base); err != nil {
		return nil, err
	}
	date := req.Date
	if date == "" {
		date = s.now().Format(dateLayout)
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", domain.ErrValidation)
	}

	s.createMu.Lock()
	defer s.createMu.Unlock()

	if err := s.resolver.EnsureUnique(ctx, req.Base); err != nil {
		return nil, err
	}

	active, err := s.registry.Active(ctx)
	if err != nil {
		return nil, err
	}
	if info, err := os.Stat(active.Path); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: active storage location %s is not reachable", domain.ErrFolderUnavailable, active.Path)
	}

	dir := filepath.Join(active.Path, req.Base)
	if err := os.Mkdir(dir, 0o755); err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, &domain.ConflictError{
				Message:      fmt.Sprintf("a patient named %q already exists in %s", req.Base, active.Path),
				ResourceType: "patient",
				ResourceID:   req.Base,
				Location:     active.Path,
			}
		}
		return nil, filestore.Classify("mkdir", dir, err, domain.ErrFolderUnavailable)
	}

	now := s.now()
	if err := s.initPatient(ctx, dir, req.Base, date, now); err != nil {
		// Leave no half-created patient behind
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			s.logger.Error("failed to roll back patient folder", "path", dir, "error", rmErr)
		}
		return nil, err
	}

	s.logger.Info("patient created",
		"folder", req.Base,
		"root_id", active.ID,
		"path", dir,
	)

	return &models.Project{
		Folder:           req.Base,
		Path:             dir,
		RootID:           active.ID,
		RootPath:         active.Path,
		RootActive:       true,
		Name:             req.Base,
		AppointmentCount: 1,
		ModifiedAt:       now,
	}, nil
}

func (s *patientService) initPatient(ctx context.Context, dir, name, date string, now time.Time) error {
	rec := &models.PatientRecord{
		Name:      name,
		CreatedAt: now.UTC().Format(time.RFC3339),
	}
	if err := s.records.SavePatient(ctx, dir, rec); err != nil {
		return err
	}

	apptDir := filepath.Join(dir, date)
	if err := os.Mkdir(apptDir, 0o755); err != nil {
		return filestore.Classify("mkdir", apptDir, err, domain.ErrFolderUnavailable)
	}
	return s.records.SaveAppointment(ctx, apptDir, &models.AppointmentRecord{Date: date})
}

// Projects lists every patient folder of every reachable root, roots in
// registration order and folders by name within a root
func (s *patientService) Projects(ctx context.Context) ([]models.Project, error) {
	roots, err := s.registry.Roots(ctx)
	if err != nil {
		return nil, err
	}

	perRoot := make([][]models.Project, len(roots))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(projectsReadLimit)
	for i, root := range roots {
		g.Go(func() error {
			projects, err := s.rootProjects(gctx, root)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				s.logger.Warn("storage location unavailable, skipping", "root_id", root.ID, "path", root.Path, "error", err)
				return nil
			}
			perRoot[i] = projects
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]models.Project, 0)
	for _, projects := range perRoot {
		out = append(out, projects...)
	}
	return out, nil
}

func (s *patientService) rootProjects(ctx context.Context, root models.StorageRoot) ([]models.Project, error) {
	entries, err := os.ReadDir(root.Path)
	if err != nil {
		return nil, filestore.Classify("readdir", root.Path, err, domain.ErrFolderUnavailable)
	}

	projects := make([]models.Project, 0, len(entries))
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}

		dir := filepath.Join(root.Path, e.Name())
		p := models.Project{
			Folder:     e.Name(),
			Path:       dir,
			RootID:     root.ID,
			RootPath:   root.Path,
			RootActive: root.IsActive,
			Name:       e.Name(),
		}
		if info, err := e.Info(); err == nil {
			p.ModifiedAt = info.ModTime()
		}
		if rec, err := s.records.GetPatient(ctx, dir); err == nil && rec.Name != "" {
			p.Name = rec.Name
		}
		p.AppointmentCount = s.countAppointments(dir)

		projects = append(projects, p)
	}

	sort.Slice(projects, func(i, j int) bool { return projects[i].Folder < projects[j].Folder })
	return projects, nil
}

func (s *patientService) countAppointments(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	n := 0
	for _, e := range entries {
		if isAppointmentCandidate(e) && s.records.HasAppointmentRecord(filepath.Join(dir, e.Name())) {
			n++
		}
	}
	return n
}
