// migrate applies all pending SQL migrations against the configured database.
//
// Usage: go run ./cmd/migrate
package main

import (
	"log"

	"agrosupply/internal/config"
	"agrosupply/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := db.Migrate(cfg.DatabaseURL, cfg.MigrationsDir); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	log.Println("migrations applied")
}
