// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/folio/internal/api"
	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/index"
	"github.com/starford/folio/internal/mcpserver"
	"github.com/starford/folio/internal/postservice"
	"github.com/starford/folio/internal/posts"
	"github.com/starford/folio/internal/render"
	"github.com/starford/folio/internal/sse"
	"github.com/starford/folio/internal/storage"
)

// components holds everything shared by the HTTP and MCP front ends.
type components struct {
	logger   *slog.Logger
	store    storage.Provider
	renderer *render.Renderer
	db       *index.DB
	svc      *postservice.Service
}

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{version: "dev"}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// MCP owns stdout, so logs go to stderr there.
	var out io.Writer = os.Stdout
	if app.mcp {
		out = os.Stderr
	}
	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("content_path", cfg.Content.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()),
		slog.Bool("mcp", app.mcp))

	c, err := setup(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer c.db.Close()

	if app.mcp {
		return runMCP(ctx, c, app.version)
	}
	return runHTTP(ctx, cfg, c)
}

func setup(ctx context.Context, cfg *Config, logger *slog.Logger) (*components, error) {
	store, err := storage.NewFS(cfg.Content.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	renderer, err := render.New(cfg.Render.Options())
	if err != nil {
		return nil, fmt.Errorf("init renderer: %w", err)
	}

	repoOpts := []posts.Option{
		posts.WithLogger(logger),
		posts.WithConcurrency(cfg.Cache.Concurrency),
	}
	if cfg.Cache.Enabled {
		repoOpts = append(repoOpts, posts.WithCache(posts.NewCache()))
	}
	repo := posts.NewRepository(store, renderer, repoOpts...)

	// Two files whose slugs differ only in case are a configuration error.
	if err := repo.CheckSlugs(ctx); err != nil {
		if errors.Is(err, apperr.ErrDuplicateSlug) {
			return nil, fmt.Errorf("check content: %w", err)
		}
		logger.Warn("content directory not readable", slog.String("error", err.Error()))
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	svc := postservice.NewService(repo, db, store, logger)

	// Run initial sync.
	if _, err := svc.Reindex(ctx); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	return &components{
		logger:   logger,
		store:    store,
		renderer: renderer,
		db:       db,
		svc:      svc,
	}, nil
}

// watch keeps the index in sync until ctx ends. A watcher that cannot start
// only disables live updates.
func watch(ctx context.Context, c *components, cb index.EventCallback) {
	err := index.Watch(ctx, c.db, c.store, c.logger, func(kind, slug string) {
		c.svc.HandleChange(kind, slug)
		if cb != nil {
			cb(kind, slug)
		}
	})
	if err != nil {
		c.logger.Warn("watcher: disabled", slog.String("error", err.Error()))
	}
}

func runMCP(ctx context.Context, c *components, version string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		watch(gCtx, c, nil)
		return nil
	})

	g.Go(func() error {
		defer cancel()
		c.logger.Info("Starting MCP server on stdio")
		return mcpserver.New(c.svc, c.store, version).ServeStdio()
	})

	return g.Wait()
}

func runHTTP(ctx context.Context, cfg *Config, c *components) error {
	logger := c.logger

	// SSE broker.
	broker := sse.NewBroker(cfg.Events.Throttle)
	defer broker.Close()

	apiRouter := api.NewRouter(c.svc, c.renderer, api.RouterConfig{
		AuthEnabled: cfg.Auth.AuthEnabled(),
		Token:       cfg.Auth.Token,
		Events:      broker,
	})

	r := newRootRouter(c.store, apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start file watcher with SSE callback.
	g.Go(func() error {
		watch(gCtx, c, broker.PublishPostEvent)
		return nil
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		// Closing the broker ends open event streams so Shutdown does not wait on them.
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// newRootRouter wires middleware, health probes and the API under /api.
// Readiness means the content directory can be listed.
func newRootRouter(store storage.Provider, apiRouter http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Health endpoints.
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := store.List(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	return r
}

// errShutdown cancels the group context so the watcher stops with the server.
var errShutdown = errors.New("shutdown")
