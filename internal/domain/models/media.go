package models

import (
	"time"
)

// MediaKind is the classification of a file by extension
type MediaKind string

const (
	MediaVideo    MediaKind = "video"
	MediaAudio    MediaKind = "audio"
	MediaImage    MediaKind = "image"
	MediaDocument MediaKind = "document"
	MediaOther    MediaKind = "other"
)

// MediaFilter selects which kinds a scan returns. Empty = all files.
type MediaFilter []MediaKind

// Allows reports whether kind passes the filter
func (f MediaFilter) Allows(kind MediaKind) bool {
	if len(f) == 0 {
		return true
	}
	for _, k := range f {
		if k == kind {
			return true
		}
	}
	return false
}

// MediaAsset is one file inside a patient or appointment folder.
// HasAudio is only meaningful for video and is best-effort.
type MediaAsset struct {
	URL        string    `json:"url"`
	Path       string    `json:"path"`
	Name       string    `json:"name"`
	Extension  string    `json:"extension"`
	Type       MediaKind `json:"type"`
	HasAudio   bool      `json:"hasAudio"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

// FolderStats is the per-folder lightweight metadata kept in the folder index
type FolderStats struct {
	Path       string    `json:"path"`
	VideoCount int       `json:"videoCount"`
	AudioCount int       `json:"audioCount"`
	FileCount  int       `json:"fileCount"`
	TotalSize  int64     `json:"totalSize"`
	DirModTime time.Time `json:"dirModTime"` // Directory mtime at index time; a change means re-scan
	IndexedAt  time.Time `json:"indexedAt"`
}

// CopyResult is the recovered-shape response of selectAndCopyFiles
type CopyResult struct {
	Success bool     `json:"success"`
	Count   int      `json:"count"`
	Files   []string `json:"files,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// SaveAudioResult is the recovered-shape response of saveRecordedAudio
type SaveAudioResult struct {
	Success  bool   `json:"success"`
	FilePath string `json:"filePath,omitempty"`
	Error    string `json:"error,omitempty"`
}

// LaunchResult is the recovered-shape response of OS launch operations
type LaunchResult struct {
	Success bool   `json:"success"`
	Path    string `json:"path,omitempty"`
	Error   string `json:"error,omitempty"`
}
