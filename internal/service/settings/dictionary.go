package settings

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"medvault/internal/config"
	"medvault/internal/domain"
	"medvault/internal/domain/models"
	"medvault/internal/domain/repositories"
	"medvault/internal/domain/services"
)

// dictionaryService implements the DictionaryService interface
type dictionaryService struct {
	repo   repositories.DictionaryRepository
	logger *slog.Logger
	mu     sync.Mutex
}

// NewDictionaryService creates a new dictionary service
func NewDictionaryService(repo repositories.DictionaryRepository, logger *slog.Logger) services.DictionaryService {
	return &dictionaryService{
		repo:   repo,
		logger: logger,
	}
}

func (s *dictionaryService) Get(ctx context.Context) (*models.Dictionaries, error) {
	dict, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if dict == nil {
		dict = models.NewDictionaries()
	}
	return dict, nil
}

var nonBlank = regexp.MustCompile(`\S`)

// Add appends value to the category. Values compare exactly, so case and
// surrounding whitespace make a value distinct. Adding a value that is already
// there leaves the dictionary, and the file, untouched.
func (s *dictionaryService) Add(ctx context.Context, t models.DictionaryType, value string) (*models.Dictionaries, error) {
	err := validation.Errors{
		"type": validation.Validate(string(t),
			validation.Required,
			validation.In(string(models.DictionaryDoctors), string(models.DictionaryDiagnosis)),
		),
		"value": validation.Validate(value,
			validation.Required,
			validation.Match(nonBlank).Error("must not be blank"),
			validation.Length(1, config.MaxDictionaryValueLength),
		),
	}.Filter()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dict, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !dict.Add(t, value) {
		return dict, nil
	}

	if err := s.repo.Save(ctx, dict); err != nil {
		return nil, err
	}

	s.logger.Info("dictionary value added", "type", t, "value", value)
	return dict, nil
}
