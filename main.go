package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/msomdec/student-roster/internal/app"
	"github.com/msomdec/student-roster/internal/channel"
	"github.com/msomdec/student-roster/internal/config"
	"github.com/msomdec/student-roster/internal/domain"
	"github.com/msomdec/student-roster/internal/handler"
	"github.com/msomdec/student-roster/internal/repository/sqlite"
	"github.com/msomdec/student-roster/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logOpts := &slog.HandlerOptions{Level: level}
	logger := slog.New(slog.NewMultiHandler(
		slog.NewTextHandler(os.Stdout, logOpts),
		slog.NewJSONHandler(os.Stderr, logOpts),
	))
	slog.SetDefault(logger)

	db, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := migrate(context.Background(), db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	layer, err := channel.New(channel.Config{
		Backend: cfg.ChannelBackend,
		Kafka: channel.KafkaConfig{
			Brokers: cfg.ChannelBrokers,
			Topic:   cfg.ChannelTopic,
		},
	})
	if err != nil {
		slog.Error("failed to create channel layer", "backend", cfg.ChannelBackend, "error", err)
		os.Exit(1)
	}
	defer layer.Close()

	authService, err := service.NewAuthService(cfg.AdminPassword, cfg.SecretKey, cfg.BcryptCost)
	if err != nil {
		slog.Error("failed to set up admin auth", "error", err)
		os.Exit(1)
	}
	if !authService.Enabled() {
		slog.Warn("ADMIN_PASSWORD is not set, admin login is disabled")
	}

	// Five login attempts per IP, refilling one every twelve seconds.
	limiter := service.NewTokenBucket(1.0/12, 5)
	defer limiter.Close()

	studentService := service.NewStudentService(db.Students(), layer)

	sched, err := app.NewScheduler(cfg, db.Students(), db.TaskResults())
	if err != nil {
		slog.Error("failed to configure scheduler", "error", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, handler.Deps{
		Students:     studentService,
		Auth:         authService,
		Limiter:      limiter,
		Tasks:        sched,
		Results:      db.TaskResults(),
		Layer:        layer,
		Store:        db,
		CookieSecure: cfg.CookieSecure,
		// Open pages catch up with expiry within one interval.
		StreamRefresh: cfg.ExpiryInterval,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.SecurityHeaders(handler.AllowedHosts(cfg.AllowedHosts, mux)),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := sched.Start(ctx); err != nil {
		slog.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "debug", cfg.Debug)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Close the channel layer first so open streams end and Shutdown does
	// not wait on them.
	if err := layer.Close(); err != nil {
		slog.Error("channel layer close error", "error", err)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
	sched.Stop()
	slog.Info("server stopped")
}

func migrate(ctx context.Context, db domain.Database) error {
	start := time.Now()
	if err := db.Migrate(ctx); err != nil {
		return err
	}
	slog.Info("database migrations applied", "duration", time.Since(start))
	return nil
}
