package main

import (
	"context"
	"log"

	"finsight/internal"
	"finsight/internal/config"
	"finsight/internal/container"
	"finsight/ui"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load application configuration
	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := internal.NewLogger(internal.ParseLogLevel(appConfig.LogLevel))
	internal.SetDefault(logger)
	gin.SetMode(appConfig.Server.GinMode)

	// Create dependency injection container
	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer appContainer.Shutdown(context.Background())

	// Upload history is optional
	if appConfig.Database.Enabled() {
		db, err := container.OpenDatabase(context.Background(), appConfig)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		if err := appContainer.InitWithDatabase(db); err != nil {
			log.Fatalf("Failed to initialize container: %v", err)
		}
		if err := appContainer.RestoreLatest(context.Background()); err != nil {
			logger.Warn("Could not restore the latest upload: %v", err)
		}
	} else {
		logger.Info("DATABASE_URL not set, upload history disabled")
	}

	server, err := ui.NewServer(appContainer.Store, appContainer.Loader, appContainer.Pages)
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	logger.Info("Starting dashboard on port %s", appConfig.Server.Port)
	log.Fatal(server.Start(":" + appConfig.Server.Port))
}
