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

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/backoffice-service/internal/auth"
	"github.com/SAP-F-2025/backoffice-service/internal/cache"
	"github.com/SAP-F-2025/backoffice-service/internal/config"
	"github.com/SAP-F-2025/backoffice-service/internal/events"
	"github.com/SAP-F-2025/backoffice-service/internal/handlers"
	"github.com/SAP-F-2025/backoffice-service/internal/integrations/loyverse"
	"github.com/SAP-F-2025/backoffice-service/internal/notify"
	"github.com/SAP-F-2025/backoffice-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/backoffice-service/internal/scheduler"
	"github.com/SAP-F-2025/backoffice-service/internal/services"
	"github.com/SAP-F-2025/backoffice-service/internal/utils"
	"github.com/SAP-F-2025/backoffice-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := utils.New(cfg.Environment)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg, logger, logger.Slog()); err != nil {
		logger.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger utils.Logger, slogger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return err
	}
	if err := postgres.Migrate(db); err != nil {
		return err
	}
	logger.Info("Database ready", "driver", cfg.DatabaseDriver)

	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenHours)*time.Hour)
	deps := services.Dependencies{
		Repo:     postgres.NewRepository(db),
		Mailer:   notify.NewMailer(cfg.Mail.SendGridAPIKey, cfg.Mail.FromName, cfg.Mail.FromEmail, slogger),
		Tokens:   tokens,
		Receipts: loyverse.NewClient(cfg.Loyverse.BaseURL),
		Config:   cfg,
		Logger:   slogger,
	}

	if cfg.CacheEnabled {
		redisClient, err := pkg.NewRedisClient(ctx, cfg)
		if err != nil {
			logger.Warn("Redis unavailable, course outlines will not be cached", "error", err)
		} else {
			defer redisClient.Close()
			deps.Cache = cache.NewRedisCache(redisClient, "backoffice", slogger)
		}
	}

	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		logger.Error("Failed to create event publisher, falling back to mock", "error", err)
		publisher = events.NewMockEventPublisher(slogger)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("Failed to close event publisher", "error", err)
		}
	}()
	deps.Publisher = publisher

	serviceManager := services.NewServiceManager(deps)

	var verifier auth.Verifier = tokens
	if cfg.Auth.Provider == "casdoor" {
		verifier = auth.NewCasdoorVerifier(cfg.Auth, serviceManager.User())
		logger.Info("Using casdoor token verification", "endpoint", cfg.Auth.CasdoorEndpoint)
	}

	var jobs *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		jobs, err = scheduler.New(cfg.Scheduler, serviceManager.Loyverse(), serviceManager.Task(), slogger)
		if err != nil {
			return err
		}
		jobs.Start()
	}

	router := gin.New()
	router.Use(gin.Recovery(), utils.RequestID(), utils.AccessLog(logger))
	handlers.NewHandlerManager(serviceManager, verifier, auth.NewChecker(nil), logger).SetupRoutes(router)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if jobs != nil {
		if err := jobs.Stop(shutdownCtx); err != nil {
			logger.Warn("Scheduler did not stop in time", "error", err)
		}
	}
	return server.Shutdown(shutdownCtx)
}
