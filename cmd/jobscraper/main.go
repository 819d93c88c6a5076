package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"jobscraper-web/internal/backend"
	"jobscraper-web/internal/config"
	"jobscraper-web/internal/httpapi"
	"jobscraper-web/internal/scheduler"
	"jobscraper-web/internal/session"
	"jobscraper-web/internal/store"
	"jobscraper-web/internal/view"
)

func main() {
	if err := run(); err != nil {
		slog.Error("jobscraper exited", "err", err)
		os.Exit(1)
	}
}

func run() error {
	// Data dir: use env if provided, else local folder.
	dataDir := os.Getenv("JOBSCRAPER_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	defaultCfgPath := filepath.Join("config", "config.yml")
	userCfgPath, err := config.EnsureUserConfig(dataDir, defaultCfgPath)
	if err != nil {
		return fmt.Errorf("config bootstrap failed: %w", err)
	}

	cfg, err := config.Load(userCfgPath)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", userCfgPath, err)
	}
	if err := config.OverlayEnv(&cfg, ".env"); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	cfg, validation := config.NormalizeAndValidate(cfg)
	if err := validation.Err(); err != nil {
		return fmt.Errorf("config invalid (%s): %w", userCfgPath, err)
	}

	log := newLogger(cfg.Log.Level)
	slog.SetDefault(log)
	for _, w := range validation.Warnings {
		log.Warn("config", "warning", w)
	}

	lock, err := store.LockDataDir(dataDir)
	if err != nil {
		return err
	}
	defer func() { _ = lock.Unlock() }()

	var db *store.DB
	if cfg.Diagnostics.Enabled {
		dbPath := filepath.Join(dataDir, "jobscraper.db")
		db, err = store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open fetch log: %w", err)
		}
		defer db.Close()
		if err := store.Migrate(db.Pool); err != nil {
			return fmt.Errorf("migrate fetch log: %w", err)
		}
		log.Info("fetch log enabled", "db", dbPath)
	}

	client, err := backend.New(cfg.Backend.Host,
		backend.WithLimiter(backend.NewHostLimiter(cfg.Backend.RatePerSecond, cfg.Backend.Burst)),
		backend.WithTimeout(time.Duration(cfg.Backend.TimeoutSeconds)*time.Second),
		backend.WithLogger(log.With("component", "backend")),
	)
	if err != nil {
		return fmt.Errorf("backend client: %w", err)
	}

	viewLog := log.With("component", "view")
	sessions := session.NewManager(func(id string) *view.View {
		opts := []view.Option{view.WithLogger(viewLog)}
		if db != nil {
			opts = append(opts, view.WithRecorder(db))
		}
		return view.New(id, client, opts...)
	}, time.Duration(cfg.Sessions.IdleMinutes)*time.Minute, log.With("component", "session"))
	defer sessions.CloseAll()

	deps := httpapi.Deps{
		Sessions:   sessions,
		Cfg:        cfg,
		Validation: validation,
	}
	if db != nil {
		deps.DB = db.Pool
	}
	mux := httpapi.NewMux(deps)

	addr := net.JoinHostPort(cfg.App.Bind, fmt.Sprint(cfg.App.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	log.Info("jobscraper listening", "addr", "http://"+addr, "backend", client.Host())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Handler:           httpapi.Handler(mux, log.With("component", "http")),
		ReadHeaderTimeout: 5 * time.Second,
	}
	// open event streams only end once their views close
	srv.RegisterOnShutdown(sessions.CloseAll)

	token := os.Getenv("JOBSCRAPER_SHUTDOWN_TOKEN")
	if token == "" {
		token, err = randomToken(16)
		if err != nil {
			return err
		}
		log.Info("shutdown token generated", "token", token)
	}
	mux.HandleFunc("/shutdown", shutdownHandler(token, stop))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	jobs := []scheduler.Job{{
		Name:     "session_sweep",
		Interval: time.Duration(cfg.Sessions.SweepSeconds) * time.Second,
		Task:     sessions.Sweep,
	}}
	if db != nil && cfg.Diagnostics.RetentionDays > 0 {
		retention := time.Duration(cfg.Diagnostics.RetentionDays) * 24 * time.Hour
		jobs = append(jobs, scheduler.Job{
			Name:     "fetch_log_cleanup",
			Interval: time.Hour,
			Task: func(ctx context.Context) error {
				n, err := store.CleanupOldFetches(ctx, db.Pool, time.Now().Add(-retention))
				if err != nil {
					return err
				}
				if n > 0 {
					log.Info("fetch log cleanup", "deleted", n)
				}
				return nil
			},
		})
	}
	g.Go(func() error {
		scheduler.Run(gctx, jobs...)
		return nil
	})

	return g.Wait()
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
