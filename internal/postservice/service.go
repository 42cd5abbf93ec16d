// Package postservice coordinates the post repository and the search index
// for the HTTP and MCP transports.
package postservice

import (
	"context"
	"log/slog"
	"strings"

	"github.com/starford/folio/internal/index"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/posts"
	"github.com/starford/folio/internal/storage"
)

const maxSearchLimit = 100

// Service coordinates repository and index operations.
type Service struct {
	repo   *posts.Repository
	db     index.PostIndex
	store  storage.Provider
	logger *slog.Logger
}

// NewService creates a new post service.
func NewService(repo *posts.Repository, db index.PostIndex, store storage.Provider, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, db: db, store: store, logger: logger}
}

// ListPosts returns metadata for every post, newest first.
func (s *Service) ListPosts(ctx context.Context) ([]models.PostMetadata, error) {
	return s.repo.ListAll(ctx)
}

// GetPost returns a post with rendered content, or apperr.ErrNotFound.
func (s *Service) GetPost(ctx context.Context, slug string) (*models.PostDetail, error) {
	return s.repo.GetBySlug(ctx, slug)
}

// Search queries the index. Limits outside (0, maxSearchLimit] are clamped.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	return s.db.Search(strings.TrimSpace(query), limit)
}

// Reindex brings the search index in line with the content store.
func (s *Service) Reindex(_ context.Context) (index.SyncStats, error) {
	stats, err := index.Sync(s.db, s.store, s.logger)
	if err != nil {
		return stats, err
	}
	s.logger.Info("postservice: reindexed",
		slog.Int("indexed", stats.Indexed),
		slog.Int("removed", stats.Removed),
		slog.Int("skipped", stats.Skipped))
	return stats, nil
}

// HandleChange reacts to a watcher event by dropping the cached parse.
func (s *Service) HandleChange(kind, slug string) {
	s.repo.Forget(slug)
	s.logger.Debug("postservice: change", slog.String("kind", kind), slog.String("slug", slug))
}
