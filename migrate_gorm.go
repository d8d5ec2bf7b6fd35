// migrate_gorm.go - Run this file to test GORM migrations
// Usage: go run migrate_gorm.go

//go:build ignore

package main

import (
	"log"

	"github.com/pkruczek/course-system/config"
	"github.com/pkruczek/course-system/database"
)

func main() {
	log.Println("=== GORM Migration Test ===")

	// Load environment variables
	if err := config.LoadENV(); err != nil {
		log.Fatal("Failed to load environment variables:", err)
	}

	// Initialize GORM connection
	store, err := database.StartGORM()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer store.Close()

	// Run migrations
	if err := store.Init(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Health check
	if err := store.HealthCheck(); err != nil {
		log.Fatal("Database health check failed:", err)
	}

	log.Println("All migrations completed successfully!")
	log.Println("Tables created:")
	log.Println("  - users")
	log.Println("  - courses")
	log.Println("  - enrollments")
	log.Println("  - assignments")
	log.Println("  - submissions")
	log.Println("  - notifications")
	log.Println("  - jwt_token_blacklist")
	log.Println("  - cron_job_logs")
}
