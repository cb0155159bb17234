package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jesseruder/electric-lullaby/internal/config"
	"github.com/jesseruder/electric-lullaby/internal/server/database"
)

func main() {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fmt.Println("Running migrations...")
	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	fmt.Println("Migration successful!")
}
