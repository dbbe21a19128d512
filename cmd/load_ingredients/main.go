package main

import (
	"context"
	"flag"
	"log"

	"github.com/avolkov/plateful/backend/config"
	"github.com/avolkov/plateful/backend/internal/database"
	"github.com/avolkov/plateful/backend/internal/service"
)

// One-shot bootstrap of the ingredient catalog from a two-column CSV
// (name, measurement_unit). Does nothing when the catalog already has rows.
func main() {
	path := flag.String("file", "data/ingredients.csv", "path to the ingredients CSV file")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	catalog := service.NewCatalogService(db)
	loaded, err := catalog.LoadIngredientsCSV(context.Background(), *path)
	if err != nil {
		log.Fatalf("Failed to load ingredients: %v", err)
	}

	log.Printf("Done, %d ingredients loaded", loaded)
}
