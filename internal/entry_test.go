package internal

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/folio/internal/api"
	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/testutil"
)

func testConfig(t *testing.T) (*Config, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := NewDefaultConfig()
	cfg.Content.Path = dir
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "folio.db")
	return cfg, dir
}

func TestSetup_IndexesContent(t *testing.T) {
	cfg, dir := testConfig(t)
	testutil.WritePost(t, dir, "hello", "---\ntitle: Hello\n---\nsearchable words\n")

	c, err := setup(context.Background(), cfg, quietLogger())
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	defer c.db.Close()

	results, err := c.svc.Search(context.Background(), "searchable", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Slug != "hello" {
		t.Errorf("results = %+v", results)
	}
}

func TestSetup_DuplicateSlugFails(t *testing.T) {
	cfg, dir := testConfig(t)
	testutil.WritePost(t, dir, "Hello", "# A\n")
	testutil.WritePost(t, dir, "hello", "# B\n")

	// Case-insensitive filesystems cannot hold both files.
	entries, _ := os.ReadDir(dir)
	if len(entries) < 2 {
		t.Skip("filesystem is case-insensitive")
	}

	_, err := setup(context.Background(), cfg, quietLogger())
	if !errors.Is(err, apperr.ErrDuplicateSlug) {
		t.Fatalf("err = %v, want ErrDuplicateSlug", err)
	}
}

func TestSetup_BadRenderConfig(t *testing.T) {
	cfg, _ := testConfig(t)
	cfg.Render.Highlight.Style = "no-such-style"
	if _, err := setup(context.Background(), cfg, quietLogger()); err == nil {
		t.Fatal("expected error for unknown style")
	}
}

func TestRootRouter_Health(t *testing.T) {
	cfg, dir := testConfig(t)
	c, err := setup(context.Background(), cfg, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer c.db.Close()

	r := newRootRouter(c.store, api.NewRouter(c.svc, c.renderer, api.RouterConfig{}))

	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	if w := get("/health/live"); w.Code != http.StatusOK {
		t.Errorf("live = %d", w.Code)
	}
	if w := get("/health/ready"); w.Code != http.StatusOK {
		t.Errorf("ready = %d", w.Code)
	}
	if w := get("/api/posts"); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"success":true`) {
		t.Errorf("api/posts = %d %s", w.Code, w.Body.String())
	}

	if err := os.RemoveAll(dir); err != nil {
		t.Fatal(err)
	}
	if w := get("/health/ready"); w.Code != http.StatusServiceUnavailable {
		t.Errorf("ready after removal = %d, want 503", w.Code)
	}
	if w := get("/health/live"); w.Code != http.StatusOK {
		t.Errorf("live after removal = %d", w.Code)
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
