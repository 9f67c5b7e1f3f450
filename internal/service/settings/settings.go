package settings

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"medvault/internal/config"
	"medvault/internal/domain"
	"medvault/internal/domain/models"
	"medvault/internal/domain/repositories"
	"medvault/internal/domain/services"
)

// maxTabs caps the shown-tabs list
const maxTabs = 64

// settingsService implements the SettingsService interface.
// mu makes each read-modify-write of a document atomic in-process.
type settingsService struct {
	repo   repositories.SettingsRepository
	logger *slog.Logger
	mu     sync.Mutex
}

// NewSettingsService creates a new settings service
func NewSettingsService(repo repositories.SettingsRepository, logger *slog.Logger) services.SettingsService {
	return &settingsService{
		repo:   repo,
		logger: logger,
	}
}

func (s *settingsService) GetSettings(ctx context.Context) (*models.Settings, error) {
	current, err := s.repo.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	if current == nil {
		s.logger.Debug("no settings found, returning defaults")
		current = models.DefaultSettings()
	}
	return current, nil
}

// UpdateSettings applies a partial update; absent fields keep their value
func (s *settingsService) UpdateSettings(ctx context.Context, patch *models.SettingsPatch) (*models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.GetSettings(ctx)
	if err != nil {
		return nil, err
	}

	current.Theme = patch.Theme.Apply(current.Theme)
	current.Locale = patch.Locale.Apply(current.Locale)
	current.PraatPath = patch.PraatPath.Apply(current.PraatPath)

	// A cleared theme or locale falls back to the default rather than ""
	defaults := models.DefaultSettings()
	if current.Theme == "" {
		current.Theme = defaults.Theme
	}
	if current.Locale == "" {
		current.Locale = defaults.Locale
	}

	if err := validateSettings(current); err != nil {
		return nil, err
	}

	if err := s.repo.SaveSettings(ctx, current); err != nil {
		return nil, fmt.Errorf("save settings: %w", err)
	}

	s.logger.Info("settings updated",
		"has_theme", patch.Theme.Present,
		"has_locale", patch.Locale.Present,
		"has_praat_path", patch.PraatPath.Present,
	)
	return current, nil
}

func validateSettings(st *models.Settings) error {
	err := validation.ValidateStruct(st,
		validation.Field(&st.Theme, validation.In("light", "dark", "system")),
		validation.Field(&st.Locale, validation.Length(2, 16)),
		validation.Field(&st.PraatPath, validation.Length(0, 4096)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}

func (s *settingsService) GetSession(ctx context.Context) (*models.Session, error) {
	current, err := s.repo.GetSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if current == nil {
		current = &models.Session{}
	}
	return current, nil
}

func (s *settingsService) UpdateSession(ctx context.Context, patch *models.SessionPatch) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.GetSession(ctx)
	if err != nil {
		return nil, err
	}
	current.CurrentDoctor = strings.TrimSpace(patch.CurrentDoctor.Apply(current.CurrentDoctor))

	if err := validation.Validate(current.CurrentDoctor, validation.Length(0, config.MaxDictionaryValueLength)); err != nil {
		return nil, fmt.Errorf("%w: currentDoctor %v", domain.ErrValidation, err)
	}

	if err := s.repo.SaveSession(ctx, current); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return current, nil
}

func (s *settingsService) GetShownTabs(ctx context.Context) ([]string, error) {
	tabs, err := s.repo.GetShownTabs(ctx)
	if err != nil {
		return nil, fmt.Errorf("get shown tabs: %w", err)
	}
	if tabs == nil {
		return models.DefaultShownTabs(), nil
	}
	return tabs, nil
}

// SetShownTabs replaces the tab list; blanks and duplicates are dropped
func (s *settingsService) SetShownTabs(ctx context.Context, tabs []string) ([]string, error) {
	if len(tabs) > maxTabs {
		return nil, fmt.Errorf("%w: at most %d tabs", domain.ErrValidation, maxTabs)
	}

	clean := make([]string, 0, len(tabs))
	seen := make(map[string]struct{}, len(tabs))
	for _, t := range tabs {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		clean = append(clean, t)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.SaveShownTabs(ctx, clean); err != nil {
		return nil, fmt.Errorf("save shown tabs: %w", err)
	}
	return clean, nil
}
