package app

import (
	"fmt"
	"os"

	"github.com/pkruczek/course-system/api"
	"github.com/pkruczek/course-system/config"
	"github.com/pkruczek/course-system/database"
	"github.com/pkruczek/course-system/router"
	"github.com/pkruczek/course-system/services/cron"
	"github.com/pkruczek/course-system/services/storage"
	"github.com/pkruczek/course-system/utils/auth"
)

func SetupAndRunServer() error {

	// Load ENV
	if err := config.LoadENV(); err != nil {
		return err
	}

	getEnv, err := config.Get()
	if err != nil {
		return err
	}

	// Initialize GORM database connection
	store, err := database.StartGORM()
	if err != nil {
		print("Check whether the Postgres is running or not\n")
		return err
	}

	if err := store.Init(); err != nil {
		print("Failed to initialize database tables\n")
		return err
	}

	// Artifact storage for submission files
	artifactStore, err := storage.NewSpacesStore(storage.SpacesConfig{
		AccessKey: getEnv.SPACES_ACCESS_KEY,
		SecretKey: getEnv.SPACES_SECRET_KEY,
		Bucket:    getEnv.SPACES_BUCKET,
		Region:    getEnv.SPACES_REGION,
		Endpoint:  getEnv.SPACES_ENDPOINT,
	})
	if err != nil {
		print("Failed to initialize artifact storage\n")
		return err
	}

	// Initialize Cron Manager (only if enabled via environment variable)
	var cronManager *cron.CronManager
	if os.Getenv("CRON_ENABLED") != "false" { // Default to enabled
		blacklist := auth.NewBlacklistService(store.DB())
		cronManager = cron.NewCronManager(store.DB(), blacklist)
		if err := cronManager.Start(); err != nil {
			print("Warning: Failed to start cron jobs\n")
			print("Error: ", err.Error(), "\n")
			// Don't fail the app, just log the warning
		}
	}

	// Defer Closing DB and stopping cron jobs
	defer func() {
		if cronManager != nil {
			cronManager.Stop()
		}
		store.Close()
	}()

	// Init API
	server := api.NewAPIServer(fmt.Sprintf(":%d", getEnv.PORT))
	app := server.GetEngine()

	// Setup Routes
	router.SetupRoutes(app, store, getEnv, artifactStore)

	// Get the PORT & Start the Server
	return server.Run()
}
