package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/job-board/internal/auth"
	"github.com/justsurfingit/job-board/internal/config"
	"github.com/justsurfingit/job-board/internal/database"
	"github.com/justsurfingit/job-board/internal/metrics"
	"github.com/justsurfingit/job-board/internal/router"
	"github.com/justsurfingit/job-board/internal/scheduler"
	"github.com/justsurfingit/job-board/internal/services"
	"github.com/prometheus/client_golang/prometheus"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := config.NewLogger(cfg)
	slog.SetDefault(logger)
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Database Connection
	db, err := database.Connect(cfg.DatabaseURL, cfg.Production())
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		return fmt.Errorf("registering metrics: %w", err)
	}

	// 3. Identity Provider
	sessions, err := auth.NewSessionVerifier(cfg.ClerkJWTKey, cfg.ClerkAuthorizedParties)
	if err != nil {
		return err
	}
	webhooks, err := auth.NewWebhookVerifier(cfg.WebhookSigningSecret)
	if err != nil {
		return err
	}
	clerk := auth.NewClerkClient(cfg.ClerkAPIURL, cfg.ClerkSecretKey)

	// 4. Initialize Core Services (Dependencies)
	var llmService *services.LLMService
	if cfg.GeminiAPIKey != "" {
		llmService, err = services.NewLLMService(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return err
		}
		logger.Info("job extraction enabled", "model", cfg.GeminiModel)
	} else {
		logger.Warn("GEMINI_API_KEY not set, job extraction disabled")
	}

	notifier := services.NewNotificationService(cfg.SendGridAPIKey, cfg.MailFrom, logger)
	if !notifier.Enabled() {
		logger.Warn("SENDGRID_API_KEY not set, application emails disabled")
	}

	analysis := services.NewAnalysisService(db, cfg.AnalyticsCacheTTL, logger)
	userSync := services.NewUserSyncService(db, clerk, analysis, logger)

	// 5. Background Jobs
	jobs, err := scheduler.New(analysis, userSync, cfg.WebhookRetention, logger)
	if err != nil {
		return err
	}
	go jobs.RunNow()
	jobs.Start()
	defer jobs.Stop()

	// 6. Setup Router
	engine := router.New(router.Deps{
		DB:              db,
		Logger:          logger,
		Sessions:        sessions,
		WebhookVerifier: webhooks,
		AllowedOrigins:  cfg.CORSAllowedOrigins,
		Jobs:            services.NewJobService(db, llmService, notifier, analysis, logger),
		Candidates:      services.NewCandidateService(db),
		Companies:       services.NewCompanyService(db, analysis),
		Resumes:         services.NewResumeService(db, analysis),
		Analysis:        analysis,
		UserSync:        userSync,
		Onboarding:      services.NewOnboardingService(db, clerk, logger),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed to start: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
