package api

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/postservice"
)

// StylesheetWriter writes the CSS used by highlighted code blocks.
type StylesheetWriter interface {
	WriteCSS(w io.Writer) error
}

// Handler holds API route handlers.
type Handler struct {
	svc *postservice.Service
	css StylesheetWriter
}

// NewHandler creates a new Handler.
func NewHandler(svc *postservice.Service, css StylesheetWriter) *Handler {
	return &Handler{svc: svc, css: css}
}

// ListPosts handles GET /api/posts.
//
//	@Summary		List post metadata, newest first
//	@Tags			posts
//	@Produce		json
//	@Success		200	{object}	PostListResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/posts [get]
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListPosts(r.Context())
	if err != nil {
		slog.Error("list posts failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to list posts")
		return
	}
	writeData(w, items)
}

// GetPost handles GET /api/posts/{slug}.
//
//	@Summary		Get a single post with rendered content
//	@Tags			posts
//	@Produce		json
//	@Param			slug	path		string	true	"Post slug"
//	@Success		200		{object}	PostResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/posts/{slug} [get]
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	post, err := h.svc.GetPost(r.Context(), slug)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeError(w, http.StatusNotFound, "post not found")
		} else {
			slog.Error("get post failed", slog.String("slug", slug), slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "failed to load post")
		}
		return
	}
	writeData(w, post)
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across posts
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	ErrorResponse
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}
	writeData(w, results)
}

// HighlightCSS handles GET /api/highlight.css.
//
//	@Summary		Stylesheet for highlighted code blocks
//	@Tags			posts
//	@Produce		text/css
//	@Success		200
//	@Router			/highlight.css [get]
func (h *Handler) HighlightCSS(w http.ResponseWriter, _ *http.Request) {
	var buf bytes.Buffer
	if err := h.css.WriteCSS(&buf); err != nil {
		slog.Error("write css failed", slog.String("error", err.Error()))
		http.Error(w, "failed to build stylesheet", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(buf.Bytes())
}

// Reindex handles POST /api/admin/reindex.
//
//	@Summary		Rebuild the search index from the content directory
//	@Tags			admin
//	@Produce		json
//	@Success		200	{object}	ReindexResponse
//	@Failure		401	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/admin/reindex [post]
func (h *Handler) Reindex(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Reindex(r.Context())
	if err != nil {
		slog.Error("reindex failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "reindex failed")
		return
	}
	writeData(w, stats)
}
