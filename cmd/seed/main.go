package main

import (
	"context"
	"log"
	"time"

	"points-mall/config"
	"points-mall/internal/seed"
	"points-mall/internal/store"
)

func main() {
	cfg := config.Load()

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := seed.Apply(ctx, db.GetDB(), cfg.Business.DemoUserID); err != nil {
		log.Fatalf("Seed failed: %v", err)
	}

	log.Println("Seed data applied")
}
