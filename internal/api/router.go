package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/folio/internal/postservice"
)

// RouterConfig carries the optional parts of the API.
type RouterConfig struct {
	// AuthEnabled guards the admin routes with a Bearer token.
	AuthEnabled bool
	Token       string
	// Events, if non-nil, is mounted at GET /events.
	Events http.Handler
}

// NewRouter creates a chi router with all API routes mounted.
// Read routes are public; admin routes sit behind AuthMiddleware.
func NewRouter(svc *postservice.Service, css StylesheetWriter, cfg RouterConfig) chi.Router {
	h := NewHandler(svc, css)

	r := chi.NewRouter()

	// Posts.
	r.Get("/posts", h.ListPosts)
	r.Get("/posts/{slug}", h.GetPost)

	// Search.
	r.Get("/search", h.Search)

	// Code highlighting stylesheet.
	r.Get("/highlight.css", h.HighlightCSS)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.AuthEnabled, cfg.Token))
		r.Post("/admin/reindex", h.Reindex)
	})

	if cfg.Events != nil {
		r.Get("/events", cfg.Events.ServeHTTP)
	}

	return r
}
