package media

import (
	"medvault/internal/domain/models"
)

// paginate slices the current listing. Offset is applied to the listing as
// it is now, so files added or removed since the previous page shift the
// boundary by at most that many entries. An offset past the end yields an
// empty page rather than an error.
func paginate(listing []models.MediaAsset, opts models.PageOptions) *models.ClipPage {
	total := len(listing)
	start := min(opts.Offset, total)
	end := min(start+opts.Limit, total)

	clips := make([]models.MediaAsset, end-start)
	copy(clips, listing[start:end])
	return models.NewClipPage(clips, total, opts)
}

// nextPage returns the options for the load-more page after cursor
func nextPage(cursor, pageSize int) models.PageOptions {
	return models.PageOptions{Offset: max(cursor, 0), Limit: pageSize}
}
