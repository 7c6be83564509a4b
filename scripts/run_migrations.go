package main

import (
	"log"
	"os"

	"github.com/chofys/petshop/internal/config"
	"github.com/chofys/petshop/internal/database"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run scripts/run_migrations.go [up|down]")
	}

	direction := database.MigrateDirection(os.Args[1])
	if direction != database.MigrateUp && direction != database.MigrateDown {
		log.Fatal("Direction must be 'up' or 'down'")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}

	log.Printf("Running migrations %s from %s", direction, cfg.Database.MigrationsDir)
	if err := database.Migrate(cfg.Database.URL, cfg.Database.MigrationsDir, direction); err != nil {
		log.Fatalf("Migrate: %v", err)
	}

	log.Printf("Migrations %s complete", direction)
}
