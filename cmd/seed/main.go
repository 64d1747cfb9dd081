package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"julianmorley.ca/con-plar/storefront/pkg/catalog"
	"julianmorley.ca/con-plar/storefront/pkg/config"
	"julianmorley.ca/con-plar/storefront/pkg/logger"
	"julianmorley.ca/con-plar/storefront/pkg/mongo"
	"julianmorley.ca/con-plar/storefront/pkg/shutdown"
)

func main() {
	os.Exit(run())
}

func run() int {
	workers := flag.Int("workers", 4, "concurrent upserts")
	database := flag.String("db", "", "override MONGODB_DATABASE (optional)")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	if *database != "" {
		cfg.MongoDatabase = *database
	}

	log := logger.New(logger.Options{
		Service: "storefront-seed",
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
	})

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	if err := seed(ctx, cfg, *workers, log); err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		return 1
	}
	return 0
}

func seed(ctx context.Context, cfg config.Config, workers int, log *slog.Logger) error {
	cat, err := catalog.Static()
	if err != nil {
		return err
	}

	client, err := mongo.Connect(ctx, cfg.MongoURI, log)
	if err != nil {
		return err
	}
	defer client.Disconnect(context.Background())

	db := client.Database(cfg.MongoDatabase)
	if err := mongo.EnsureIndexes(db, log); err != nil {
		return err
	}

	categories := cat.Categories()
	if err := mongo.SeedCatalog(ctx, db, cat.Products(), categories, workers); err != nil {
		return err
	}

	log.Info("catalog seeded", "database", cfg.MongoDatabase, "products", cat.Len(), "categories", len(categories))
	return nil
}
