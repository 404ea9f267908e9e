package main

// Apply, inspect or roll back database migrations:
//
//	go run ./cmd/migrate -cmd up
//	go run ./cmd/migrate -cmd status
//	go run ./cmd/migrate -cmd down

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/MikeSquared-Agency/EcoPack/internal/config"
	"github.com/MikeSquared-Agency/EcoPack/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	command := flag.String("cmd", "up", "migration command: up, status or down")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.Database.URL == "" {
		logger.Error("database.url is not set")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	switch *command {
	case "up":
		err = store.RunMigrations(ctx, cfg.Database.URL)
	case "status":
		err = store.MigrationStatus(ctx, cfg.Database.URL)
	case "down":
		err = store.RollbackMigration(ctx, cfg.Database.URL)
	default:
		logger.Error("unknown migration command", "cmd", *command)
		os.Exit(2)
	}
	if err != nil {
		logger.Error("migration failed", "cmd", *command, "error", err)
		os.Exit(1)
	}
	logger.Info("migration complete", "cmd", *command)
}
