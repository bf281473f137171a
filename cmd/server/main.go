package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alimgiray/codenexus/internal/handlers"
	"github.com/alimgiray/codenexus/internal/middleware"
	"github.com/alimgiray/codenexus/internal/repositories"
	"github.com/alimgiray/codenexus/internal/services"
	"github.com/alimgiray/codenexus/internal/workers"
	"github.com/alimgiray/codenexus/pkg/config"
	"github.com/alimgiray/codenexus/pkg/database"
	"github.com/alimgiray/codenexus/pkg/logger"
	"github.com/alimgiray/codenexus/web"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	if err := config.Load(); err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.AppConfig

	logger.Init(cfg.LogLevel)
	gin.SetMode(cfg.Server.Mode)

	// Initialize database
	if err := database.Init(cfg.Database.Path); err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	// Initialize dependencies
	githubClient, err := services.NewGitHubClientFromConfig(cfg.GitHub)
	if err != nil {
		logger.Fatalf("Failed to create GitHub client: %v", err)
	}
	creationRepo := repositories.NewRepoCreationRepository(database.DB)
	repositoryService := services.NewRepositoryService(githubClient, creationRepo)
	exportService := services.NewExportService()

	// Initialize worker manager
	workerManager := workers.NewWorkerManager()
	workerManager.Add(workers.NewPruneWorker("journal-pruner-1", repositoryService,
		cfg.Journal.Retention(), cfg.Journal.PruneInterval()))

	// Initialize router
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger())

	templates, err := web.LoadTemplates()
	if err != nil {
		logger.Fatalf("Failed to load templates: %v", err)
	}
	router.SetHTMLTemplate(templates)

	// Setup routes
	handlers.SetupRoutes(router,
		handlers.NewHomeHandler(githubClient, repositoryService),
		handlers.NewGitHubHandler(githubClient, repositoryService, exportService),
		handlers.NewHealthHandler(database.DB),
		handlers.NewNotFoundHandler(),
	)

	// Start workers
	if err := workerManager.StartAll(); err != nil {
		logger.Fatalf("Failed to start workers: %v", err)
	}

	// Setup server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		logger.Infof("Server starting on :%s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Server shutdown did not complete: %v", err)
	}
	workerManager.StopAll()

	logger.Info("Server stopped")
}
