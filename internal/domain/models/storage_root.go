package models

import (
	"time"
)

// StorageRoot is a registered top-level directory that may hold patient folders.
// PatientCount and TotalSize are derived and may be stale until StatsUpdatedAt is refreshed.
type StorageRoot struct {
	ID             string     `json:"id"`
	Path           string     `json:"path"`
	IsActive       bool       `json:"isActive"`
	CreatedAt      time.Time  `json:"createdAt"`
	PatientCount   int        `json:"patientCount"`
	TotalSize      int64      `json:"totalSize"`
	StatsUpdatedAt *time.Time `json:"statsUpdatedAt,omitempty"`
	Available      bool       `json:"available"` // Computed on list, not persisted meaningfully
}

// StatsStale reports whether derived stats need a recompute
func (r *StorageRoot) StatsStale(now time.Time, maxAge time.Duration) bool {
	if r.StatsUpdatedAt == nil {
		return true
	}
	return now.Sub(*r.StatsUpdatedAt) > maxAge
}

// RootStats is the result of walking one storage root
type RootStats struct {
	PatientCount int
	TotalSize    int64
}

// AddRootResult is the recovered-shape response of db:storagePaths:add
type AddRootResult struct {
	Success  bool         `json:"success"`
	Canceled bool         `json:"canceled,omitempty"`
	Error    string       `json:"error,omitempty"`
	Root     *StorageRoot `json:"root,omitempty"`
}
