// Package apperr holds the sentinel errors shared across layers.
package apperr

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrStoreUnavailable = errors.New("content store unavailable")
	ErrParse            = errors.New("parse error")
	ErrRender           = errors.New("render error")
	ErrDuplicateSlug    = errors.New("duplicate slug")
)
