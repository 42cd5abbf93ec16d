package storage

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/models"
)

// FS implements Provider backed by a local directory.
//
// The directory is checked on every call rather than at construction, so a
// store that disappears at runtime reports ErrStoreUnavailable instead of
// stale data.
type FS struct {
	root string // absolute path to content directory
}

// NewFS creates a new FS provider rooted at the given directory.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute content directory.
func (f *FS) Root() string {
	return f.root
}

func (f *FS) checkRoot() error {
	info, err := os.Stat(f.root)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", apperr.ErrStoreUnavailable, f.root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", apperr.ErrStoreUnavailable, f.root)
	}
	return nil
}

// ValidSlug reports whether slug can name a file directly inside the root.
func ValidSlug(slug string) bool {
	if slug == "" || slug == "." || slug == ".." {
		return false
	}
	return !strings.ContainsAny(slug, "/\\\x00")
}

// SlugOf returns the slug for a post file name, or false if name is not a post file.
func SlugOf(name string) (string, bool) {
	if !strings.HasSuffix(name, Ext) {
		return "", false
	}
	slug := strings.TrimSuffix(name, Ext)
	if !ValidSlug(slug) {
		return "", false
	}
	return slug, true
}

// List returns every regular *.md file directly inside the root. Symlinks are
// followed; subdirectories are not descended into.
func (f *FS) List() ([]models.PostFile, error) {
	if err := f.checkRoot(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(f.root)
	if err != nil {
		return nil, fmt.Errorf("%w: read dir: %v", apperr.ErrStoreUnavailable, err)
	}
	out := make([]models.PostFile, 0, len(entries))
	for _, e := range entries {
		slug, ok := SlugOf(e.Name())
		if !ok {
			continue
		}
		p := filepath.Join(f.root, e.Name())
		info, err := os.Stat(p)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		out = append(out, models.PostFile{
			Name:    e.Name(),
			Slug:    slug,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return out, nil
}

// Read returns the raw bytes of slug's file. A missing file yields an error
// wrapping fs.ErrNotExist.
func (f *FS) Read(slug string) ([]byte, error) {
	if err := f.checkRoot(); err != nil {
		return nil, err
	}
	if !ValidSlug(slug) {
		return nil, fmt.Errorf("storage: read %q: %w", slug, fs.ErrNotExist)
	}
	p := filepath.Join(f.root, slug+Ext)
	info, err := os.Stat(p)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", slug, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("storage: read %s: not a regular file: %w", slug, fs.ErrNotExist)
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", slug, err)
	}
	return data, nil
}
