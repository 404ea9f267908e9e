// Command seed loads a material catalog file into Postgres and announces the
// update so running services drop their cached catalog.
//
// Usage:
//
//	go run ./cmd/seed -file materials.csv
//	go run ./cmd/seed -file materials.yaml -dry-run
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/MikeSquared-Agency/EcoPack/internal/catalog"
	"github.com/MikeSquared-Agency/EcoPack/internal/config"
	"github.com/MikeSquared-Agency/EcoPack/internal/hermes"
	"github.com/MikeSquared-Agency/EcoPack/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	file := flag.String("file", "materials.csv", "catalog file (.csv, .yaml or .yml)")
	dryRun := flag.Bool("dry-run", false, "print materials without writing")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	materials, err := catalog.LoadFile(*file)
	if err != nil {
		logger.Error("failed to read catalog file", "file", *file, "error", err)
		os.Exit(1)
	}
	logger.Info("parsed catalog file", "file", *file, "materials", len(materials))

	if *dryRun {
		for _, m := range materials {
			fmt.Printf("%-30s category=%s\n", m.Name, m.Category)
		}
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.Database.URL == "" {
		logger.Error("database.url is not set")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := store.RunMigrations(ctx, cfg.Database.URL); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	db, err := store.NewPostgresStore(ctx, cfg.Database.URL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var writer catalog.Writer = catalog.NewPostgresSource(db.Pool(), logger)
	n, err := writer.ReplaceAll(ctx, materials)
	if err != nil {
		logger.Error("failed to write catalog", "error", err)
		os.Exit(1)
	}
	logger.Info("catalog seeded", "materials", n)

	if cfg.Hermes.URL == "" {
		return
	}
	hc, err := hermes.NewNATSClient(ctx, cfg.Hermes.URL, logger)
	if err != nil {
		logger.Warn("failed to connect to hermes, running services keep their cache until it expires", "error", err)
		return
	}
	defer hc.Close()
	evt := hermes.CatalogUpdatedEvent{
		Source:    filepath.Base(*file),
		Materials: int(n),
		Timestamp: time.Now().UTC(),
	}
	if err := hc.Publish(hermes.SubjectCatalogUpdated, evt); err != nil {
		logger.Warn("failed to publish catalog update", "error", err)
		return
	}
	if err := hc.Flush(); err != nil {
		logger.Warn("failed to flush catalog update", "error", err)
	}
}
