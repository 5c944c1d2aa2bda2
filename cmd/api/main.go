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

	"github.com/straye-as/project-tracker/docs"
	"github.com/straye-as/project-tracker/internal/config"
	"github.com/straye-as/project-tracker/internal/http/handler"
	"github.com/straye-as/project-tracker/internal/http/middleware"
	"github.com/straye-as/project-tracker/internal/http/router"
	"github.com/straye-as/project-tracker/internal/jobs"
	"github.com/straye-as/project-tracker/internal/logger"
	"github.com/straye-as/project-tracker/internal/repository"
	"github.com/straye-as/project-tracker/internal/service"
	"github.com/straye-as/project-tracker/internal/spreadsheet"
	"github.com/straye-as/project-tracker/internal/storage"
	"go.uber.org/zap"
)

// @title Straye Project Tracker API
// @version 1.0
// @description Product portfolio and go-to-market tracker with Excel exchange
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@straye.io

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

const backupJobTimeout = 2 * time.Minute

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	switch basicCfg.App.Environment {
	case "staging", "production":
		if host := os.Getenv("SWAGGER_HOST"); host != "" {
			docs.SwaggerInfo.Host = host
		}
	default:
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// Load full configuration with secrets
	// In development: uses environment variables
	// In staging/production: fetches the blob connection string from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	store, err := repository.OpenStore(cfg.Data.PrimaryStore, log)
	if err != nil {
		return fmt.Errorf("failed to open document store: %w", err)
	}

	fileStorage, err := storage.NewStorage(&cfg.Storage, storage.AreaFiles, cfg.Data.FilesDir, log)
	if err != nil {
		return fmt.Errorf("failed to initialize file storage: %w", err)
	}
	imageStorage, err := storage.NewStorage(&cfg.Storage, storage.AreaImages, cfg.Data.ImagesDir, log)
	if err != nil {
		return fmt.Errorf("failed to initialize image storage: %w", err)
	}
	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	// Initialize repositories
	groupRepo := repository.NewGroupRepository(store)
	projectRepo := repository.NewProjectRepository(store)
	templateRepo := repository.NewTemplateRepository(store)

	// Initialize services
	attachmentService := service.NewAttachmentService(projectRepo, fileStorage, imageStorage, log)
	groupService := service.NewGroupService(groupRepo, log)
	projectService := service.NewProjectService(projectRepo, groupRepo, attachmentService, log)
	gtmService := service.NewGTMService(projectRepo, templateRepo, log)
	characteristicService := service.NewCharacteristicService(projectRepo, templateRepo, log)
	templateService := service.NewTemplateService(templateRepo, log)
	dashboardService := service.NewDashboardService(projectRepo, groupRepo, log)
	backupService := service.NewBackupService(store, cfg.Data.BackupsDir, log)
	syncService := service.NewSyncService(spreadsheet.NewCodec(log), projectRepo, groupRepo, log)

	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)
	maxUpload := cfg.Storage.MaxUploadBytes()

	rt := router.NewRouter(cfg, log, store, rateLimiter, router.Handlers{
		Group:          handler.NewGroupHandler(groupService, log),
		Project:        handler.NewProjectHandler(projectService, log),
		GTM:            handler.NewGTMHandler(gtmService, log),
		Characteristic: handler.NewCharacteristicHandler(characteristicService, log),
		Template:       handler.NewTemplateHandler(templateService, log),
		Attachment:     handler.NewAttachmentHandler(attachmentService, maxUpload, log),
		Dashboard:      handler.NewDashboardHandler(dashboardService, log),
		Backup:         handler.NewBackupHandler(backupService, log),
		Sync:           handler.NewSyncHandler(syncService, maxUpload, log),
	})

	// Scheduled backups of the document store
	var scheduler *jobs.Scheduler
	if cfg.Backup.Enabled {
		scheduler = jobs.NewScheduler(log)
		if err := jobs.RegisterBackupJob(scheduler, backupService, cfg.Backup.Keep, cfg.Backup.Cron, backupJobTimeout, log); err != nil {
			log.Error("Failed to register backup job", zap.Error(err))
			scheduler = nil
		} else {
			scheduler.Start()
			log.Info("Scheduler started with backup job",
				zap.String("cron_expr", cfg.Backup.Cron),
				zap.Int("keep", cfg.Backup.Keep),
			)
		}
	} else {
		log.Info("Scheduled backups disabled")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		if scheduler != nil {
			ctx := scheduler.Stop()
			<-ctx.Done()
			log.Info("Scheduler stopped")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			if err := srv.Close(); err != nil {
				return fmt.Errorf("could not stop server: %w", err)
			}
		}
	}

	log.Info("Server stopped")
	return nil
}
