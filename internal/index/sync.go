package index

import (
	"fmt"
	"log/slog"

	"github.com/starford/folio/internal/frontmatter"
	"github.com/starford/folio/internal/storage"
)

// SyncStats summarises one Sync pass.
type SyncStats struct {
	Indexed int `json:"indexed"`
	Removed int `json:"removed"`
	Skipped int `json:"skipped"`
}

// Sync walks the content store and brings the index up to date:
//   - new/changed posts are parsed and upserted
//   - posts removed from disk are deleted from the index
//
// Files that cannot be read or parsed are counted as skipped.
func Sync(db PostIndex, store storage.Provider, logger *slog.Logger) (SyncStats, error) {
	var stats SyncStats

	files, err := store.List()
	if err != nil {
		return stats, err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return stats, err
	}

	disk := make(map[string]struct{}, len(files))
	for _, f := range files {
		disk[f.Slug] = struct{}{}

		data, err := store.Read(f.Slug)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("slug", f.Slug), slog.String("error", err.Error()))
			stats.Skipped++
			continue
		}
		if !storage.Changed(checksums[f.Slug], data) {
			continue
		}
		if err := indexFile(db, f.Slug, data); err != nil {
			logger.Warn("sync: index failed", slog.String("slug", f.Slug), slog.String("error", err.Error()))
			stats.Skipped++
			continue
		}
		logger.Debug("sync: indexed", slog.String("slug", f.Slug))
		stats.Indexed++
	}

	for slug := range checksums {
		if _, ok := disk[slug]; ok {
			continue
		}
		if err := db.DeletePost(slug); err != nil {
			logger.Warn("sync: delete failed", slog.String("slug", slug), slog.String("error", err.Error()))
			continue
		}
		logger.Debug("sync: removed stale", slog.String("slug", slug))
		stats.Removed++
	}

	return stats, nil
}

// indexFile parses data and upserts it into the DB.
func indexFile(db PostIndex, slug string, data []byte) error {
	doc, err := frontmatter.Parse(data)
	if err != nil {
		return fmt.Errorf("index %s: %w", slug, err)
	}
	row := PostRow{
		Slug:        slug,
		Title:       doc.Title(slug),
		Description: doc.Meta.Description,
		Tags:        doc.Meta.Tags,
		Date:        doc.Meta.Date,
		Checksum:    storage.Checksum(data),
	}
	return db.UpsertPost(row, string(doc.Body))
}
