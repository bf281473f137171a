package main

import (
	"os"

	"github.com/alimgiray/codenexus/internal/cli"
	"github.com/alimgiray/codenexus/internal/repositories"
	"github.com/alimgiray/codenexus/internal/services"
	"github.com/alimgiray/codenexus/pkg/config"
	"github.com/alimgiray/codenexus/pkg/database"
	"github.com/alimgiray/codenexus/pkg/logger"
)

func main() {
	// Command output goes to stdout; logs stay out of the way on stderr
	logger.SetOutput(os.Stderr)

	if err := config.Load(); err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.AppConfig

	logger.Init(cfg.LogLevel)
	logger.SetOutput(os.Stderr)

	if err := database.Init(cfg.Database.Path); err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}

	client, err := services.NewGitHubClientFromConfig(cfg.GitHub)
	if err != nil {
		logger.Fatalf("Failed to create GitHub client: %v", err)
	}

	code := cli.Execute(cli.Dependencies{
		Client:       client,
		Repositories: services.NewRepositoryService(client, repositories.NewRepoCreationRepository(database.DB)),
		Export:       services.NewExportService(),
	})

	database.Close()
	os.Exit(code)
}
