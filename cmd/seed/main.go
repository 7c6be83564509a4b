package main

import (
	"context"
	"flag"
	"log"

	"github.com/chofys/petshop/internal/config"
	"github.com/chofys/petshop/internal/database"
	"github.com/chofys/petshop/internal/seed"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}

	path := flag.String("file", cfg.Shop.CatalogFile, "YAML catalog to load")
	flag.Parse()

	catalog, err := seed.Load(*path)
	if err != nil {
		log.Fatalf("Load catalog: %v", err)
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		log.Fatalf("Connect to database: %v", err)
	}
	defer db.Close()

	res, err := seed.Apply(context.Background(), db, catalog)
	if err != nil {
		log.Fatalf("Seed catalog: %v", err)
	}

	log.Printf("Seeded %d categories, %d types, %d products, %d pets, %d users from %s",
		res.Categories, res.Types, res.Products, res.Pets, res.Users, *path)
}
