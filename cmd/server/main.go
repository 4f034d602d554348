package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/p-n-ai/pai-classmatch/internal/api"
	"github.com/p-n-ai/pai-classmatch/internal/materials"
	"github.com/p-n-ai/pai-classmatch/internal/platform/cache"
	"github.com/p-n-ai/pai-classmatch/internal/platform/config"
	"github.com/p-n-ai/pai-classmatch/internal/platform/database"
	"github.com/p-n-ai/pai-classmatch/internal/progress"
	"github.com/p-n-ai/pai-classmatch/internal/recommend"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(newLogger(cfg.Log, os.Stdout))

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	// Graceful shutdown on SIGTERM/SIGINT.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer a.close()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      a.handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "content_source", cfg.ContentSource)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

// app holds the wired service and the resources it must release.
type app struct {
	handler http.Handler
	closers []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// newApp connects the configured backends and builds the HTTP handler.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{}

	var repo materials.Repository
	var prog progress.Provider
	var events recommend.EventLogger = recommend.NopEventLogger{}
	apiOpts := []api.Option{api.WithMinThreshold(cfg.Recommend.MinThreshold)}

	switch cfg.ContentSource {
	case config.ContentSourceCatalog:
		catalog, err := materials.NewCatalog(cfg.CatalogPath, nil)
		if err != nil {
			return nil, fmt.Errorf("loading catalog: %w", err)
		}
		students, err := progress.LoadDir(cfg.CatalogPath)
		if err != nil {
			return nil, err
		}
		repo, prog = catalog, students

	default:
		db, err := database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
		if err != nil {
			return nil, fmt.Errorf("connecting database: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		apiOpts = append(apiOpts, api.WithHealthCheck("database", db))

		if cfg.Database.AutoMigrate {
			if err := db.Migrate(ctx, cfg.Database.MigrationsPath); err != nil {
				a.close()
				return nil, err
			}
		}

		pgRepo, err := materials.NewPostgresRepository(db.Pool, nil)
		if err != nil {
			a.close()
			return nil, err
		}
		pgProgress, err := progress.NewPostgresStore(db.Pool)
		if err != nil {
			a.close()
			return nil, err
		}
		repo, prog = pgRepo, pgProgress
		events = recommend.NewPostgresEventLogger(db.Pool)
	}

	if cfg.Cache.URL != "" {
		c, err := cache.New(ctx, cfg.Cache.URL)
		if err != nil {
			slog.Warn("content cache unavailable, serving uncached", "error", err)
		} else {
			a.closers = append(a.closers, func() { _ = c.Close() })
			apiOpts = append(apiOpts, api.WithHealthCheck("cache", c))
			repo = materials.NewCachedRepository(repo, c, cfg.Cache.ContentTTL)
		}
	}

	rec := recommend.NewRecommender(repo,
		recommend.WithConcurrency(cfg.Recommend.Concurrency),
		recommend.WithEvents(events),
	)
	a.handler = api.NewServer(repo, rec, prog, apiOpts...).Handler()
	return a, nil
}

// newLogger builds the process logger from LEARN_LOG_* settings.
func newLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
