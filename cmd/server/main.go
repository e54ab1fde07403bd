package main

import (
	"fmt"
	"os"

	gcpclients "github.com/dlopezkluever/wizardirector/internal/clients/gcp"
	openaiclient "github.com/dlopezkluever/wizardirector/internal/clients/openai"
	redisclient "github.com/dlopezkluever/wizardirector/internal/clients/redis"
	"github.com/dlopezkluever/wizardirector/internal/data/db"
	"github.com/dlopezkluever/wizardirector/internal/data/repos"
	httpserver "github.com/dlopezkluever/wizardirector/internal/http"
	httpH "github.com/dlopezkluever/wizardirector/internal/http/handlers"
	"github.com/dlopezkluever/wizardirector/internal/platform/envutil"
	"github.com/dlopezkluever/wizardirector/internal/platform/keylock"
	"github.com/dlopezkluever/wizardirector/internal/platform/logger"
	"github.com/dlopezkluever/wizardirector/internal/services"
)

func main() {
	// Logger
	log, err := logger.New(envutil.Str("LOG_MODE", "development"))
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err := postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	pg := postgresService.DB()

	// Repos
	log.Info("Setting up repos...")
	libraryRepo := repos.NewLibraryAssetRepo(pg, log)
	localRepo := repos.NewLocalAssetRepo(pg, log)

	// Clients
	log.Info("Setting up clients...")
	bucketService, err := gcpclients.NewBucketService(log)
	if err != nil {
		log.Error("Could not init BucketService", "error", err)
		os.Exit(1)
	}
	openaiClient, err := openaiclient.NewClient(log)
	if err != nil {
		log.Error("Could not init OpenAI client", "error", err)
		os.Exit(1)
	}
	var bus redisclient.EventBus
	bus, err = redisclient.NewEventBus(log)
	if err != nil {
		log.Warn("Redis unavailable, asset events disabled", "error", err)
		bus = redisclient.NopEventBus{}
	}
	defer bus.Close()

	// Services
	log.Info("Setting up services...")
	locks := keylock.New()
	merger := services.NewDescriptionMerger(log, openaiClient)
	generator, localizer := services.NewAssetImageService(log, openaiClient, bucketService, localRepo)

	libraryService := services.NewLibraryService(pg, log, libraryRepo, locks)
	localService := services.NewLocalAssetService(pg, log, libraryRepo, localRepo, locks)
	cloneService := services.NewCloneService(pg, log, libraryRepo, localRepo, merger, generator, localizer, bus, locks)
	syncService := services.NewSyncService(pg, log, libraryRepo, localRepo, localizer, bus, locks)
	promotionService := services.NewPromotionService(pg, log, libraryRepo, localRepo, bus, locks)
	gateService := services.NewLockGateService(log, localRepo)
	extractionService := services.NewExtractionService(pg, log, localRepo, cloneService)

	// Handlers
	log.Info("Setting up handlers...")
	routerCfg := httpserver.RouterConfig{
		LibraryHandler:    httpH.NewLibraryHandler(log, pg, libraryService, cloneService),
		LocalAssetHandler: httpH.NewLocalAssetHandler(log, pg, localService, promotionService),
		SyncHandler:       httpH.NewSyncHandler(log, pg, syncService, gateService),
		ExtractionHandler: httpH.NewExtractionHandler(log, pg, extractionService),
		HealthHandler:     httpH.NewHealthHandler(),
	}

	srv := httpserver.NewServer(routerCfg)
	port := envutil.Str("PORT", "8080")
	log.Info("Server listening", "port", port)
	if err := srv.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
