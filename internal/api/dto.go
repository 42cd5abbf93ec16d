package api

import (
	"github.com/starford/folio/internal/index"
	"github.com/starford/folio/internal/models"
)

// PostMetadata is the list item type (aliased from the domain layer).
type PostMetadata = models.PostMetadata

// PostDetail is the full post response type (aliased from the domain layer).
type PostDetail = models.PostDetail

// SearchResult is a single search hit (aliased from the index layer).
type SearchResult = index.SearchResult

// ReindexResult reports what a reindex changed.
type ReindexResult = index.SyncStats

// PostListResponse wraps post listings.
type PostListResponse struct {
	Success bool           `json:"success" example:"true" validate:"required"`
	Data    []PostMetadata `json:"data" validate:"required"`
}

// PostResponse wraps a single post.
type PostResponse struct {
	Success bool       `json:"success" example:"true" validate:"required"`
	Data    PostDetail `json:"data" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Success bool           `json:"success" example:"true" validate:"required"`
	Data    []SearchResult `json:"data" validate:"required"`
}

// ReindexResponse wraps reindex statistics.
type ReindexResponse struct {
	Success bool          `json:"success" example:"true" validate:"required"`
	Data    ReindexResult `json:"data" validate:"required"`
}

// ErrorResponse is returned for every failed request.
type ErrorResponse struct {
	Success bool   `json:"success" example:"false"`
	Message string `json:"message" example:"post not found" validate:"required"`
}
