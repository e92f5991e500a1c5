package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alimgiray/crewledger/internal/handlers"
	"github.com/alimgiray/crewledger/internal/repositories"
	"github.com/alimgiray/crewledger/internal/services"
	"github.com/alimgiray/crewledger/internal/workers"
	"github.com/alimgiray/crewledger/pkg/config"
	"github.com/alimgiray/crewledger/pkg/database"
	"github.com/alimgiray/crewledger/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
}

func runServer(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	gin.SetMode(cfg.Server.Mode)
	decimal.MarshalJSONWithoutQuotes = true

	db, err := database.OpenAndMigrate(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer db.Close()

	// Initialize dependencies
	userRepo := repositories.NewUserRepository(db)
	workerRepo := repositories.NewWorkerRepository(db)
	projectRepo := repositories.NewProjectRepository(db)

	gate := services.NewAccessGate(projectRepo, workerRepo)
	projectService := services.NewProjectService(projectRepo, gate)
	workerService := services.NewWorkerService(workerRepo, gate)
	exportService := services.NewExportService(projectService, gate)
	githubService := services.NewGitHubService(cfg.GitHub.Token, gate)

	mailer, err := services.NewMailer(cfg.SMTP)
	if err != nil {
		return fmt.Errorf("initialize mailer: %w", err)
	}
	tokens := services.NewTokenService(cfg.Auth.AccessTokenSecret, cfg.Auth.AccessTokenExpiry)
	authService := services.NewAuthService(userRepo, mailer, tokens, cfg.Auth)

	// Background workers
	workerManager := workers.NewWorkerManager(
		workers.NewOTPSweeper("otp-sweeper-1", userRepo, cfg.Auth.OTPSweepInterval),
	)
	if err := workerManager.StartAll(); err != nil {
		return fmt.Errorf("start workers: %w", err)
	}
	defer func() {
		if err := workerManager.StopAll(); err != nil {
			logger.WithError(err).Warn("Failed to stop workers")
		}
	}()

	router := handlers.NewRouter(handlers.Handlers{
		Auth:          handlers.NewAuthHandler(authService, tokens, cfg.Auth.CookieSecure),
		Workers:       handlers.NewWorkerHandler(workerService, githubService),
		Projects:      handlers.NewProjectHandler(projectService, exportService),
		Health:        handlers.NewHealthHandler(db),
		Authenticator: authService,
		CORSOrigin:    cfg.Server.CORSOrigin,
		RatePerMinute: cfg.Auth.RatePerMinute,
		RateBurst:     cfg.Auth.RateBurst,
	})

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for interrupt signal
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err, ok := <-serverErr:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}
