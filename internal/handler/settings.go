package handler

import (
	"context"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"medvault/internal/domain"
	"medvault/internal/domain/models"
	"medvault/internal/domain/services"
	"medvault/internal/httputil"
)

// SettingsHandler serves the process-wide settings, session, tabs and
// dictionary channels
type SettingsHandler struct {
	settings     services.SettingsService
	dictionaries services.DictionaryService
	logger       *slog.Logger
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(
	settings services.SettingsService,
	dictionaries services.DictionaryService,
	logger *slog.Logger,
) *SettingsHandler {
	return &SettingsHandler{
		settings:     settings,
		dictionaries: dictionaries,
		logger:       logger,
	}
}

// Register adds the settings channels to d
func (h *SettingsHandler) Register(d *Dispatcher) {
	d.Register("settings:get", h.GetSettings)
	d.Register("settings:set", h.SetSettings)
	d.Register("session:get", h.GetSession)
	d.Register("session:set", h.SetSession)
	d.Register("shownTabs:get", h.GetShownTabs)
	d.Register("shownTabs:set", h.SetShownTabs)
	d.Register("dict:get", h.GetDictionaries)
	d.Register("dict:add", h.AddDictionaryValue)
}

// settingsPatch is the wire form of settings:set. Absent members are kept,
// null clears.
type settingsPatch struct {
	Theme     httputil.OptionalString `json:"theme"`
	Locale    httputil.OptionalString `json:"locale"`
	PraatPath httputil.OptionalString `json:"praatPath"`
}

type sessionPatch struct {
	CurrentDoctor httputil.OptionalString `json:"currentDoctor"`
}

func (h *SettingsHandler) GetSettings(ctx context.Context, args Args) (interface{}, error) {
	if err := args.Bind(); err != nil {
		return nil, err
	}
	return h.settings.GetSettings(ctx)
}

func (h *SettingsHandler) SetSettings(ctx context.Context, args Args) (interface{}, error) {
	var patch settingsPatch
	if err := args.Bind(&patch); err != nil {
		return nil, err
	}
	return h.settings.UpdateSettings(ctx, &models.SettingsPatch{
		Theme:     patch.Theme.Optional(),
		Locale:    patch.Locale.Optional(),
		PraatPath: patch.PraatPath.Optional(),
	})
}

func (h *SettingsHandler) GetSession(ctx context.Context, args Args) (interface{}, error) {
	if err := args.Bind(); err != nil {
		return nil, err
	}
	return h.settings.GetSession(ctx)
}

func (h *SettingsHandler) SetSession(ctx context.Context, args Args) (interface{}, error) {
	var patch sessionPatch
	if err := args.Bind(&patch); err != nil {
		return nil, err
	}
	return h.settings.UpdateSession(ctx, &models.SessionPatch{
		CurrentDoctor: patch.CurrentDoctor.Optional(),
	})
}

func (h *SettingsHandler) GetShownTabs(ctx context.Context, args Args) (interface{}, error) {
	if err := args.Bind(); err != nil {
		return nil, err
	}
	return h.settings.GetShownTabs(ctx)
}

func (h *SettingsHandler) SetShownTabs(ctx context.Context, args Args) (interface{}, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: tab list is required", domain.ErrValidation)
	}
	var tabs []string
	if err := args.Bind(&tabs); err != nil {
		return nil, err
	}
	return h.settings.SetShownTabs(ctx, tabs)
}

func (h *SettingsHandler) GetDictionaries(ctx context.Context, args Args) (interface{}, error) {
	if err := args.Bind(); err != nil {
		return nil, err
	}
	return h.dictionaries.Get(ctx)
}

type dictArgs struct {
	Type  string
	Value string
}

func (a dictArgs) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Type, validation.Required,
			validation.In(string(models.DictionaryDoctors), string(models.DictionaryDiagnosis))),
		validation.Field(&a.Value, validation.Required),
	)
}

func (h *SettingsHandler) AddDictionaryValue(ctx context.Context, args Args) (interface{}, error) {
	var req dictArgs
	if err := bind(args, &req, &req.Type, &req.Value); err != nil {
		return nil, err
	}
	return h.dictionaries.Add(ctx, models.DictionaryType(req.Type), req.Value)
}
