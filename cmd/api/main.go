package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/attendance-review/internal/config"
	appHTTP "github.com/cmlabs-hris/attendance-review/internal/handler/http"
	"github.com/cmlabs-hris/attendance-review/internal/pkg/cron"
	"github.com/cmlabs-hris/attendance-review/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-review/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-review/internal/pkg/sse"
	"github.com/cmlabs-hris/attendance-review/internal/repository/postgresql"
	reviewService "github.com/cmlabs-hris/attendance-review/internal/service/attendance"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading config: ", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.SlogLevel(),
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), cfg.Database.MaxConns, cfg.Database.MinConns)
	if err != nil {
		slog.Error("Error connecting to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	policy, err := reviewService.PolicyByName(cfg.Review.OverlayPolicy)
	if err != nil {
		slog.Error("Invalid overlay policy", "error", err)
		os.Exit(1)
	}

	attendanceRepo := postgresql.NewAttendanceRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	hub := sse.NewHub()
	sessions := reviewService.NewSessionStore()

	reviewSvc := reviewService.NewReviewService(attendanceRepo, sessions, hub, JWTService, policy, cfg.Import.MaxRows)
	sweeper := reviewService.NewSessionSweeper(sessions, hub)
	recalculator := reviewService.NewLateRecalculator(attendanceRepo)

	scheduler := cron.NewScheduler(ctx)
	reviewJobs := cron.NewReviewJobs(sweeper, recalculator, cron.ReviewJobsConfig{
		SessionIdleTimeout: cfg.Review.SessionIdleTimeout,
		SweepInterval:      cfg.Review.SweepInterval,
		RecalcInterval:     cfg.Review.RecalcInterval,
		RecalcBatchSize:    cfg.Review.RecalcBatchSize,
	})
	if err := reviewJobs.RegisterJobs(scheduler); err != nil {
		slog.Error("Failed to register review jobs", "error", err)
		os.Exit(1)
	}
	scheduler.Start()
	defer scheduler.Stop()

	reviewHandler := appHTTP.NewReviewHandler(reviewSvc, JWTService, sessions, hub)
	router := appHTTP.NewRouter(cfg.App, JWTService, reviewHandler)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// Review streams end when the process is asked to stop
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		slog.Info("Server running", "addr", server.Addr, "overlay_policy", policy.Name())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
}
