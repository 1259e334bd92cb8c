package main

// Copy the embedded candidate dataset into Postgres:
//   go run ./cmd/seed

import (
	"context"
	"log"
	"os"

	"candidate-insights/internal/candidates"
	"candidate-insights/internal/shared/config"
	"candidate-insights/internal/shared/storage/db"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	opts := db.OptionsFromEnv(db.DefaultMigrateOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		log.Printf("failed to connect database: %v", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		log.Printf("failed to run migrations: %v", err)
		os.Exit(1)
	}

	items, err := candidates.EmbeddedSource{}.Fetch(ctx)
	if err != nil {
		log.Printf("failed to read embedded dataset: %v", err)
		os.Exit(1)
	}

	n, err := candidates.Seed(ctx, sqlDB, items)
	if err != nil {
		log.Printf("failed to seed candidates: %v", err)
		os.Exit(1)
	}
	log.Printf("seeded %d of %d candidates", n, len(items))
}
