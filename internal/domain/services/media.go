package services

import (
	"context"

	"medvault/internal/domain/models"
)

// Media subfolders of a patient or appointment folder
const (
	VideoSubfolder = "video"
	AudioSubfolder = "audio"
)

// MediaLocation addresses a media directory: a patient folder, optionally an
// appointment inside it, and the media subfolder (video, audio or a custom tab)
type MediaLocation struct {
	Folder      string
	Appointment string
	Sub         string
}

// MediaService lists, pages and imports media files
type MediaService interface {
	// Clips returns every video of the patient, newest first
	Clips(ctx context.Context, folder string) ([]models.MediaAsset, error)

	// Page returns one newest-first page of the location, filtered by kind
	Page(ctx context.Context, loc MediaLocation, filter models.MediaFilter, opts models.PageOptions) (*models.ClipPage, error)

	// LoadMore returns the next fixed-size page after cursor as a delta count
	LoadMore(ctx context.Context, loc MediaLocation, filter models.MediaFilter, cursor int) (*models.LoadMoreResult, error)

	// List returns every file of the location matching filter, newest first
	List(ctx context.Context, loc MediaLocation, filter models.MediaFilter) ([]models.MediaAsset, error)

	// Counts returns video/audio counts, served from the folder index when fresh
	Counts(ctx context.Context, folder string) (*models.PatientCounts, error)

	// Dir resolves a location to its absolute directory, creating it if asked
	Dir(ctx context.Context, loc MediaLocation, create bool) (string, error)

	// CopyIn copies external files into the location, never overwriting
	CopyIn(ctx context.Context, loc MediaLocation, sources []string) (*models.CopyResult, error)

	// SaveRecording writes a new audio file into the location, never overwriting
	SaveRecording(ctx context.Context, loc MediaLocation, filename string, data []byte) (string, error)
}
