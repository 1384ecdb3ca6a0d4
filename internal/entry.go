// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/LucasGeos/GKG/internal/api"
	"github.com/LucasGeos/GKG/internal/index"
	"github.com/LucasGeos/GKG/internal/logging"
	"github.com/LucasGeos/GKG/internal/mcpserver"
	"github.com/LucasGeos/GKG/internal/metrics"
	"github.com/LucasGeos/GKG/internal/selectservice"
	"github.com/LucasGeos/GKG/internal/sse"
	"github.com/LucasGeos/GKG/internal/storage"
)

// components are the long-lived pieces shared by the server and MCP modes.
type components struct {
	logger  *slog.Logger
	store   *storage.FS
	db      *index.DB
	metrics *metrics.Registry
	svc     *selectservice.Service
}

func (c *components) Close() error {
	return c.db.Close()
}

func setup(opts []Option) (*application, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// open builds logging, storage, cache, metrics and the selection service,
// then syncs the inbox with the cache.
func open(app *application) (*components, error) {
	cfg := app.config

	logger := logging.New(cfg.App.LogLevel, cfg.App.LogFormat, app.logOutput)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("data_path", cfg.Data.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	dirs := cfg.Data.Dirs()
	for _, d := range []string{dirs.Inbox, dirs.Output, dirs.Rejected} {
		if err := os.MkdirAll(filepath.Join(cfg.Data.Path, d), 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	store, err := storage.NewFS(cfg.Data.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	reg := metrics.NewRegistry()
	svc := selectservice.NewService(store, db, dirs, reg, logger)

	if err := index.Sync(db, store, dirs.Inbox, logger, svc); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	return &components{logger: logger, store: store, db: db, metrics: reg, svc: svc}, nil
}

// Run starts the HTTP server and, when enabled, the inbox watcher.
func Run(ctx context.Context, opts ...Option) error {
	app, err := setup(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	c, err := open(app)
	if err != nil {
		return err
	}
	defer c.Close()
	logger := c.logger

	broker := sse.NewBroker(cfg.Events.Throttle)
	defer broker.Close()

	apiRouter := api.NewRouter(c.svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker, c.metrics)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Unauthenticated.
	api.HealthRoutes(r, c.svc.Ready)
	r.Handle("/metrics", c.metrics.Handler())

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	if cfg.Watch.Enabled {
		w := &index.Watcher{
			DB:       c.db,
			Store:    c.store,
			DataRoot: c.store.Root(),
			Inbox:    cfg.Data.Dirs().Inbox,
			Handler:  c.svc,
			Logger:   logger,
			OnChange: broker.PublishJobEvent,
		}
		g.Go(func() error {
			return w.Watch(gCtx)
		})
	}

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

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

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return context.Canceled
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP serves the MCP tools over stdio. Logs go to stderr unless
// WithLogOutput says otherwise, since stdout carries the protocol.
func RunMCP(_ context.Context, opts ...Option) error {
	app, err := setup(opts)
	if err != nil {
		return err
	}
	if app.logOutput == nil {
		app.logOutput = os.Stderr
	}

	c, err := open(app)
	if err != nil {
		return err
	}
	defer c.Close()

	c.logger.Info("MCP server starting on stdio")
	return mcpserver.New(c.svc).ServeStdio()
}
