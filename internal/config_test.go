package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	pkgconfig "github.com/starford/folio/pkg/config"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestRenderConfig_UnknownExtension(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Render.Extensions = []string{"gfm", "mermaid"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown extension should fail validation")
	}
}

func TestContentConfig_PathRequired(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Content.Path = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty content path should fail validation")
	}
}

func TestEventsConfig_NegativeThrottle(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Events.Throttle = -time.Second
	if err := cfg.Validate(); err == nil {
		t.Fatal("negative throttle should fail validation")
	}
}

func TestRenderConfig_Options(t *testing.T) {
	cfg := RenderConfig{
		Extensions: []string{"table"},
		Unsafe:     true,
		Highlight:  HighlightConfig{Style: "monokai", LineNumbers: true, Languages: []string{"go"}},
	}
	opts := cfg.Options()
	if len(opts.Extensions) != 1 || opts.Extensions[0] != "table" {
		t.Errorf("extensions = %v", opts.Extensions)
	}
	if !opts.Unsafe || opts.HardWraps {
		t.Errorf("flags = %+v", opts)
	}
	if opts.Highlight.Style != "monokai" || !opts.Highlight.LineNumbers || len(opts.Highlight.Languages) != 1 {
		t.Errorf("highlight = %+v", opts.Highlight)
	}
}

func TestLoadYAML(t *testing.T) {
	t.Setenv("FOLIO_TEST_TOKEN", "from-env")
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `app:
  log_level: debug
  http:
    port: 9090
content:
  path: ./blog
render:
  extensions: [gfm, typographer]
  highlight:
    style: dracula
events:
  throttle: 500ms
auth:
  mode: token
  token: ${FOLIO_TEST_TOKEN}
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.HTTP.Port != 9090 || cfg.Content.Path != "./blog" {
		t.Errorf("app/content = %+v / %+v", cfg.App, cfg.Content)
	}
	if cfg.SQLite.Path != "./folio.db" {
		t.Errorf("sqlite default lost: %q", cfg.SQLite.Path)
	}
	if len(cfg.Render.Extensions) != 2 || cfg.Render.Highlight.Style != "dracula" {
		t.Errorf("render = %+v", cfg.Render)
	}
	if cfg.Events.Throttle != 500*time.Millisecond {
		t.Errorf("throttle = %v", cfg.Events.Throttle)
	}
	if cfg.Auth.Token != "from-env" {
		t.Errorf("token = %q", cfg.Auth.Token)
	}
	if !cfg.Cache.Enabled {
		t.Error("cache default lost")
	}
}
