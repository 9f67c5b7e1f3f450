package handler

import (
	"context"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"medvault/internal/config"
	"medvault/internal/domain/models"
	"medvault/internal/domain/services"
)

var (
	videoOnly = models.MediaFilter{models.MediaVideo}
	audioOnly = models.MediaFilter{models.MediaAudio}
)

// MediaHandler serves clip listing, paging and import channels
type MediaHandler struct {
	media    services.MediaService
	launcher services.Launcher
	logger   *slog.Logger
}

// NewMediaHandler creates a new media handler
func NewMediaHandler(media services.MediaService, launcher services.Launcher, logger *slog.Logger) *MediaHandler {
	return &MediaHandler{
		media:    media,
		launcher: launcher,
		logger:   logger,
	}
}

// Register adds the media channels to d
func (h *MediaHandler) Register(d *Dispatcher) {
	d.Register("patient:clips", h.Clips)
	d.Register("patient:clipsDetailed", h.ClipsDetailed)
	d.Register("patient:loadMoreVideos", h.loadMore(services.VideoSubfolder, videoOnly))
	d.Register("patient:loadMoreAudio", h.loadMore(services.AudioSubfolder, audioOnly))
	d.Register("patient:audioFiles", h.AudioFiles)
	d.Register("patient:openAudioFolder", h.OpenAudioFolder)
	d.Register("patient:saveRecordedAudio", h.SaveRecordedAudio)
	d.Register("getCustomTabFiles", h.GetCustomTabFiles)
	d.Register("selectAndCopyFiles", h.SelectAndCopyFiles)
	d.Register("openFileInDefaultApp", h.OpenFileInDefaultApp)
}

func (h *MediaHandler) Clips(ctx context.Context, args Args) (interface{}, error) {
	var req folderArgs
	if err := bind(args, &req, &req.Folder); err != nil {
		return nil, err
	}
	return h.media.Clips(ctx, req.Folder)
}

type pageArgs struct {
	Folder      string
	Offset      int
	Limit       int
	Appointment string
}

func (a pageArgs) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Folder, validation.Required, folderName),
		validation.Field(&a.Offset, validation.Min(0)),
		validation.Field(&a.Limit, validation.Min(0), validation.Max(config.MaxPageLimit)),
		validation.Field(&a.Appointment, folderName),
	)
}

// ClipsDetailed returns one page of videos; a zero limit means the default page size
func (h *MediaHandler) ClipsDetailed(ctx context.Context, args Args) (interface{}, error) {
	var req pageArgs
	if err := bind(args, &req, &req.Folder, &req.Offset, &req.Limit, &req.Appointment); err != nil {
		return nil, err
	}

	loc := services.MediaLocation{Folder: req.Folder, Appointment: req.Appointment, Sub: services.VideoSubfolder}
	return h.media.Page(ctx, loc, videoOnly, models.PageOptions{Offset: req.Offset, Limit: req.Limit})
}

type loadMoreArgs struct {
	Folder      string
	Appointment string
	Cursor      int
}

func (a loadMoreArgs) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Folder, validation.Required, folderName),
		validation.Field(&a.Appointment, folderName),
		validation.Field(&a.Cursor, validation.Min(0)),
	)
}

func (h *MediaHandler) loadMore(sub string, filter models.MediaFilter) Channel {
	return func(ctx context.Context, args Args) (interface{}, error) {
		var req loadMoreArgs
		if err := bind(args, &req, &req.Folder, &req.Appointment, &req.Cursor); err != nil {
			return nil, err
		}

		loc := services.MediaLocation{Folder: req.Folder, Appointment: req.Appointment, Sub: sub}
		return h.media.LoadMore(ctx, loc, filter, req.Cursor)
	}
}

type audioArgs struct {
	Folder      string
	Appointment string
}

func (a audioArgs) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Folder, validation.Required, folderName),
		validation.Field(&a.Appointment, folderName),
	)
}

func (a audioArgs) location() services.MediaLocation {
	return services.MediaLocation{Folder: a.Folder, Appointment: a.Appointment, Sub: services.AudioSubfolder}
}

func (h *MediaHandler) AudioFiles(ctx context.Context, args Args) (interface{}, error) {
	var req audioArgs
	if err := bind(args, &req, &req.Folder, &req.Appointment); err != nil {
		return nil, err
	}
	return h.media.List(ctx, req.location(), audioOnly)
}

// OpenAudioFolder creates the audio folder if needed, opens it and returns its path
func (h *MediaHandler) OpenAudioFolder(ctx context.Context, args Args) (interface{}, error) {
	var req audioArgs
	if err := bind(args, &req, &req.Folder, &req.Appointment); err != nil {
		return nil, err
	}

	dir, err := h.media.Dir(ctx, req.location(), true)
	if err != nil {
		return nil, err
	}
	if err := h.launcher.Open(ctx, dir); err != nil {
		h.logger.Warn("audio folder not opened", "path", dir, "error", err)
	}
	return dir, nil
}

type recordingArgs struct {
	Folder      string
	Appointment string
	Buffer      []byte // base64 in JSON
	Filename    string
}

func (a recordingArgs) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Folder, validation.Required, folderName),
		validation.Field(&a.Appointment, folderName),
		validation.Field(&a.Buffer, validation.Required),
	)
}

// SaveRecordedAudio stores a recording. Failures are reported in the result.
func (h *MediaHandler) SaveRecordedAudio(ctx context.Context, args Args) (interface{}, error) {
	var req recordingArgs
	if err := bind(args, &req, &req.Folder, &req.Appointment, &req.Buffer, &req.Filename); err != nil {
		return &models.SaveAudioResult{Error: failure(err)}, nil
	}

	loc := services.MediaLocation{Folder: req.Folder, Appointment: req.Appointment, Sub: services.AudioSubfolder}
	path, err := h.media.SaveRecording(ctx, loc, req.Filename, req.Buffer)
	if err != nil {
		h.logger.Warn("recording not saved", "folder", req.Folder, "error", err)
		return &models.SaveAudioResult{Error: failure(err)}, nil
	}
	return &models.SaveAudioResult{Success: true, FilePath: path}, nil
}

type tabArgs struct {
	Folder      string
	Tab         string
	Appointment string
	Sources     []string
}

func (a tabArgs) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Folder, validation.Required, folderName),
		validation.Field(&a.Tab, validation.Required, folderName),
		validation.Field(&a.Appointment, folderName),
		validation.Field(&a.Sources, validation.Each(validation.Required)),
	)
}

func (a tabArgs) location() services.MediaLocation {
	return services.MediaLocation{Folder: a.Folder, Appointment: a.Appointment, Sub: a.Tab}
}

// GetCustomTabFiles lists every file of a custom tab folder, newest first
func (h *MediaHandler) GetCustomTabFiles(ctx context.Context, args Args) (interface{}, error) {
	var req tabArgs
	if err := bind(args, &req, &req.Folder, &req.Tab, &req.Appointment); err != nil {
		return nil, err
	}
	return h.media.List(ctx, req.location(), nil)
}

// SelectAndCopyFiles copies the given files into a tab folder. Failures,
// including a partial copy, are reported in the result.
func (h *MediaHandler) SelectAndCopyFiles(ctx context.Context, args Args) (interface{}, error) {
	var req tabArgs
	if err := bind(args, &req, &req.Folder, &req.Tab, &req.Appointment, &req.Sources); err != nil {
		return &models.CopyResult{Error: failure(err)}, nil
	}

	result, err := h.media.CopyIn(ctx, req.location(), req.Sources)
	if err != nil {
		if result == nil {
			result = &models.CopyResult{}
		}
		result.Success = false
		result.Error = failure(err)
		return result, nil
	}
	return result, nil
}

// OpenFileInDefaultApp hands a file to the OS. Failures are reported in the result.
func (h *MediaHandler) OpenFileInDefaultApp(ctx context.Context, args Args) (interface{}, error) {
	var req pathArgs
	if err := bind(args, &req, &req.Path); err != nil {
		return &models.LaunchResult{Error: failure(err)}, nil
	}

	if err := h.launcher.Open(ctx, req.Path); err != nil {
		h.logger.Warn("file not opened", "path", req.Path, "error", err)
		return &models.LaunchResult{Error: failure(err)}, nil
	}
	return &models.LaunchResult{Success: true}, nil
}
