package main

import (
	"context"
	"database/sql"
	"log"
	"strings"

	"vrp-search-service/internal/adapters/repositories"
	"vrp-search-service/internal/config"
	"vrp-search-service/internal/platform/db"
)

func main() {
	config.Load()

	databaseURL := config.Get("DATABASE_URL", "")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()
	conn, err := db.Open(ctx, databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	instanceDir := config.Get("INSTANCE_DIR", "data/instances")
	if err := initAndSeed(ctx, conn, instanceDir); err != nil {
		log.Fatal(err)
	}
}

func initAndSeed(ctx context.Context, conn *sql.DB, instanceDir string) error {
	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(ctx, conn); err != nil {
		return err
	}
	log.Println("Schema ready.")

	log.Printf("Seeding instances from %s...", instanceDir)
	n, err := repositories.SeedFromDir(ctx, conn, instanceDir)
	if err != nil {
		return err
	}
	log.Printf("Seeding complete. instances=%d", n)

	return nil
}
