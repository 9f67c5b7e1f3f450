package models

import (
	"fmt"
)

// PageOptions selects a slice of a newest-first directory listing.
//
// Offset means "skip the first N of the listing as it is right now". The
// listing is re-read on every request, so if files are added or removed
// between two requests the page boundary shifts by at most that many entries.
type PageOptions struct {
	Offset int
	Limit  int
}

// ApplyDefaults fills in the default limit
func (o *PageOptions) ApplyDefaults(defaultLimit int) {
	if o.Limit <= 0 {
		o.Limit = defaultLimit
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
}

// Validate checks offset/limit ranges
func (o *PageOptions) Validate(maxLimit int) error {
	if o.Offset < 0 {
		return fmt.Errorf("offset cannot be negative")
	}
	if o.Limit < 1 {
		return fmt.Errorf("limit must be at least 1")
	}
	if o.Limit > maxLimit {
		return fmt.Errorf("limit cannot exceed %d (requested: %d)", maxLimit, o.Limit)
	}
	return nil
}

// ClipPage is the response of patient:clipsDetailed
type ClipPage struct {
	Clips   []MediaAsset `json:"clips"`
	Total   int          `json:"total"`
	HasMore bool         `json:"hasMore"`
	Offset  int          `json:"offset"`
	Limit   int          `json:"limit"`
}

// NewClipPage creates a ClipPage with HasMore = offset+limit < total
func NewClipPage(clips []MediaAsset, total int, opts PageOptions) *ClipPage {
	if clips == nil {
		clips = []MediaAsset{}
	}
	return &ClipPage{
		Clips:   clips,
		Total:   total,
		HasMore: opts.Offset < total-opts.Limit,
		Offset:  opts.Offset,
		Limit:   opts.Limit,
	}
}

// LoadMoreResult is the incremental view of a page: only the number of
// newly delivered entries, plus the cursor the caller passes back next time.
type LoadMoreResult struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
	Cursor  int  `json:"cursor"`
	Total   int  `json:"total"`
	HasMore bool `json:"hasMore"`
}

// LoadMoreFromPage derives the incremental view from a page
func LoadMoreFromPage(page *ClipPage) *LoadMoreResult {
	return &LoadMoreResult{
		Success: true,
		Count:   len(page.Clips),
		Cursor:  page.Offset + len(page.Clips),
		Total:   page.Total,
		HasMore: page.HasMore,
	}
}
