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

	"github.com/p-n-ai/career-guide/internal/api"
	"github.com/p-n-ai/career-guide/internal/assessment"
	"github.com/p-n-ai/career-guide/internal/catalog"
	"github.com/p-n-ai/career-guide/internal/platform/cache"
	"github.com/p-n-ai/career-guide/internal/platform/config"
	"github.com/p-n-ai/career-guide/internal/platform/database"
	"github.com/p-n-ai/career-guide/internal/progress"
	"github.com/p-n-ai/career-guide/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(newLogger(os.Stdout, cfg.Log))

	// Graceful shutdown on SIGTERM/SIGINT.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	app, err := newApp(ctx, cfg)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer app.close()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      api.NewMux(app.handler),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "storage", cfg.Storage)
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

// newLogger builds the process logger from the log settings.
func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func parseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// app holds the wired service and the connections it must release.
type app struct {
	handler *api.Handler
	closers []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	bank, err := loadBank(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}

	matcher, err := assessment.NewMatcher(bank, scoringConfig(cfg.Match))
	if err != nil {
		return nil, fmt.Errorf("create matcher: %w", err)
	}

	a := &app{}
	var (
		seen     progress.SeenStore
		sessions session.Store
		events   session.EventLogger = session.NopEventLogger{}
		checkers []api.HealthChecker
	)

	switch cfg.Storage {
	case config.StorageMemory:
		seen = progress.NewMemoryStore()
		sessions = session.NewMemoryStore()

	case config.StorageRedis:
		c, err := cache.New(ctx, cfg.Cache)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { c.Close() })
		checkers = append(checkers, c)

		if seen, err = progress.NewRedisStore(c.Client); err != nil {
			a.close()
			return nil, err
		}
		if sessions, err = session.NewRedisStore(c.Client, cfg.Session.TTL()); err != nil {
			a.close()
			return nil, err
		}

	case config.StoragePostgres:
		db, err := database.New(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		checkers = append(checkers, db)

		c, err := cache.New(ctx, cfg.Cache)
		if err != nil {
			a.close()
			return nil, err
		}
		a.closers = append(a.closers, func() { c.Close() })
		checkers = append(checkers, c)

		pgSeen, err := progress.NewPostgresStore(db.Pool)
		if err != nil {
			a.close()
			return nil, err
		}
		if err := pgSeen.Migrate(ctx); err != nil {
			a.close()
			return nil, err
		}
		pgEvents := session.NewPostgresEventLogger(db.Pool)
		if err := pgEvents.Migrate(ctx); err != nil {
			a.close()
			return nil, err
		}
		if sessions, err = session.NewRedisStore(c.Client, cfg.Session.TTL()); err != nil {
			a.close()
			return nil, err
		}
		seen = pgSeen
		events = pgEvents
	}

	svc, err := session.NewService(session.ServiceConfig{
		Bank:        bank,
		Matcher:     matcher,
		Seen:        seen,
		Sessions:    sessions,
		Events:      events,
		SessionSize: cfg.Assessment.SessionSize,
		TopTraits:   cfg.Assessment.TopTraits,
	})
	if err != nil {
		a.close()
		return nil, fmt.Errorf("create service: %w", err)
	}

	a.handler = api.NewHandler(svc, checkers...)
	return a, nil
}

// scoringConfig maps the match settings onto the matcher's tuning.
func scoringConfig(mc config.MatchConfig) assessment.ScoringConfig {
	sc := assessment.DefaultScoringConfig()
	sc.MaxExpectedTraitScore = mc.MaxExpectedTraitScore
	sc.Ceiling = mc.Ceiling
	sc.Floor = mc.Floor
	sc.Limit = mc.Limit
	return sc
}

func loadBank(path string) (*assessment.Bank, error) {
	if path == "" {
		return catalog.Default()
	}
	slog.Info("loading catalog from directory", "path", path)
	return catalog.LoadDir(path)
}
