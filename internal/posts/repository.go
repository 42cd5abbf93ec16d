// Package posts implements the post repository: listing and fetching posts
// from the content store through the front-matter and markdown pipeline.
package posts

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"slices"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/frontmatter"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/render"
	"github.com/starford/folio/internal/storage"
)

const defaultConcurrency = 8

// Repository reads posts from a storage.Provider. It owns no mutable state
// other than the optional parse cache.
type Repository struct {
	store       storage.Provider
	renderer    *render.Renderer
	cache       *Cache
	logger      *slog.Logger
	concurrency int
}

// Option configures a Repository.
type Option func(*Repository)

// WithLogger sets the logger used for skipped files.
func WithLogger(l *slog.Logger) Option {
	return func(r *Repository) {
		r.logger = l
	}
}

// WithCache enables the parse cache.
func WithCache(c *Cache) Option {
	return func(r *Repository) {
		r.cache = c
	}
}

// WithConcurrency bounds the number of files parsed in parallel by ListAll.
func WithConcurrency(n int) Option {
	return func(r *Repository) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// NewRepository creates a repository over store using renderer for post bodies.
func NewRepository(store storage.Provider, renderer *render.Renderer, opts ...Option) *Repository {
	r := &Repository{
		store:       store,
		renderer:    renderer,
		logger:      slog.Default(),
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ListAll returns metadata for every post, most recent first. Posts with
// equal dates keep file name order; undated posts come last. Files that
// cannot be read or parsed are logged and left out.
func (r *Repository) ListAll(ctx context.Context) ([]models.PostMetadata, error) {
	files, err := r.store.List()
	if err != nil {
		return nil, err
	}

	slots := make([]*models.PostMetadata, len(files))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, f := range files {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			entry, err := r.load(f.Slug, false)
			if err != nil {
				if errors.Is(err, apperr.ErrStoreUnavailable) {
					return err
				}
				r.logger.Warn("posts: skipping file",
					slog.String("file", f.Name),
					slog.String("error", err.Error()))
				return nil
			}
			meta := entry.meta
			slots[i] = &meta
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]models.PostMetadata, 0, len(files))
	for _, m := range slots {
		if m != nil {
			out = append(out, *m)
		}
	}
	slices.SortStableFunc(out, func(a, b models.PostMetadata) int {
		return b.Date.Compare(a.Date)
	})
	return out, nil
}

// GetBySlug returns the post stored as slug.md with its rendered HTML.
// It returns apperr.ErrNotFound when no such file exists.
func (r *Repository) GetBySlug(ctx context.Context, slug string) (*models.PostDetail, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !storage.ValidSlug(slug) {
		return nil, apperr.ErrNotFound
	}
	entry, err := r.load(slug, true)
	if err != nil {
		return nil, err
	}
	return &models.PostDetail{PostMetadata: entry.meta, Content: entry.html}, nil
}

// CheckSlugs reports slugs that collide when compared case-insensitively.
// Such a store is a configuration error: URLs on case-insensitive clients
// or file systems would resolve to either file.
func (r *Repository) CheckSlugs(_ context.Context) error {
	files, err := r.store.List()
	if err != nil {
		return err
	}
	groups := make(map[string][]string)
	for _, f := range files {
		key := strings.ToLower(f.Slug)
		groups[key] = append(groups[key], f.Name)
	}
	var dups []string
	for _, names := range groups {
		if len(names) > 1 {
			dups = append(dups, strings.Join(names, ", "))
		}
	}
	if len(dups) == 0 {
		return nil
	}
	sort.Strings(dups)
	return fmt.Errorf("%w: %s", apperr.ErrDuplicateSlug, strings.Join(dups, "; "))
}

// Forget drops slug from the parse cache.
func (r *Repository) Forget(slug string) {
	if r.cache != nil {
		r.cache.Forget(slug)
	}
}

// load reads and parses slug, rendering the body when withHTML is set.
// Cached results are reused while the file checksum is unchanged.
func (r *Repository) load(slug string, withHTML bool) (entry, error) {
	data, err := r.store.Read(slug)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return entry{}, apperr.ErrNotFound
		}
		return entry{}, err
	}
	sum := storage.Checksum(data)

	if r.cache != nil {
		if e, ok := r.cache.Get(slug, sum); ok && (!withHTML || e.rendered) {
			return e, nil
		}
	}

	doc, err := frontmatter.Parse(data)
	if err != nil {
		return entry{}, fmt.Errorf("post %s: %w", slug, err)
	}
	e := entry{
		checksum: sum,
		meta: models.PostMetadata{
			Slug:        slug,
			Title:       doc.Title(slug),
			Date:        doc.Meta.Date,
			Description: doc.Meta.Description,
			Tags:        doc.Meta.Tags,
			Extra:       doc.Meta.Extra,
		},
	}
	if withHTML {
		html, err := r.renderer.Render(doc.Body)
		if err != nil {
			return entry{}, fmt.Errorf("post %s: %w", slug, err)
		}
		e.html = html
		e.rendered = true
	}

	if r.cache != nil {
		r.cache.Put(slug, e)
	}
	return e, nil
}
