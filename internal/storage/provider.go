// Package storage defines the read-only content store abstraction.
package storage

import "github.com/starford/folio/internal/models"

// Ext is the file extension of post files.
const Ext = ".md"

// Provider is the interface for content store reads.
type Provider interface {
	// List returns every regular top-level post file, ordered by file name.
	List() ([]models.PostFile, error)
	// Read returns the raw bytes of the post file for slug.
	Read(slug string) ([]byte, error)
	// Root returns the absolute path of the content directory.
	Root() string
}
