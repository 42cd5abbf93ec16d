package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/folio/internal/render"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Content ContentConfig     `yaml:"content"`
	SQLite  SQLiteConfig      `yaml:"sqlite"`
	Render  RenderConfig      `yaml:"render"`
	Cache   CacheConfig       `yaml:"cache"`
	Events  EventsConfig      `yaml:"events"`
	Auth    AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Content.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Render.Validate(); err != nil {
		return err
	}
	if err := c.Cache.Validate(); err != nil {
		return err
	}
	if err := c.Events.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// ContentConfig holds the path to the directory of markdown posts.
type ContentConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the content configuration.
func (c *ContentConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// RenderConfig controls markdown conversion.
type RenderConfig struct {
	Extensions []string        `yaml:"extensions"`
	HardWraps  bool            `yaml:"hard_wraps"`
	Unsafe     bool            `yaml:"unsafe"`
	HeadingIDs bool            `yaml:"heading_ids"`
	Highlight  HighlightConfig `yaml:"highlight"`
}

// HighlightConfig controls syntax highlighting of fenced code blocks.
type HighlightConfig struct {
	Style        string   `yaml:"style"`
	LineNumbers  bool     `yaml:"line_numbers"`
	InlineStyles bool     `yaml:"inline_styles"`
	Languages    []string `yaml:"languages"`
}

var knownExtension = validation.By(func(value interface{}) error {
	name, _ := value.(string)
	if !render.KnownExtension(name) {
		return errors.New("unknown markdown extension")
	}
	return nil
})

// Validate validates the render configuration. Style names are checked
// when the renderer is built.
func (c *RenderConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Extensions, validation.Each(validation.Required, knownExtension)),
	)
}

// Options converts the configuration into renderer options.
func (c *RenderConfig) Options() render.Options {
	return render.Options{
		Extensions: c.Extensions,
		HardWraps:  c.HardWraps,
		Unsafe:     c.Unsafe,
		HeadingIDs: c.HeadingIDs,
		Highlight: render.HighlightOptions{
			Style:        c.Highlight.Style,
			LineNumbers:  c.Highlight.LineNumbers,
			InlineStyles: c.Highlight.InlineStyles,
			Languages:    c.Highlight.Languages,
		},
	}
}

// CacheConfig controls the in-memory parse cache and listing fan-out.
type CacheConfig struct {
	Enabled     bool `yaml:"enabled"`
	Concurrency int  `yaml:"concurrency"`
}

// Validate validates the cache configuration.
func (c *CacheConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Concurrency, validation.Min(0), validation.Max(256)),
	)
}

// EventsConfig controls the live update stream.
type EventsConfig struct {
	// Throttle is the minimum interval between posts.changed events.
	Throttle time.Duration `yaml:"throttle"`
}

// Validate validates the events configuration.
func (c *EventsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Throttle, validation.Min(time.Duration(0))),
	)
}

// AuthConfig holds authentication configuration for admin routes.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): admin routes are open, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Content: ContentConfig{
			Path: "./posts",
		},
		SQLite: SQLiteConfig{
			Path: "./folio.db",
		},
		Render: RenderConfig{
			Extensions: slices.Clone(render.DefaultExtensions),
			Highlight: HighlightConfig{
				Style: render.DefaultStyle,
			},
		},
		Cache: CacheConfig{
			Enabled:     true,
			Concurrency: 8,
		},
		Events: EventsConfig{
			Throttle: 2 * time.Second,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
