package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

func withGoose(ctx context.Context, databaseURL string, fn func(db *sql.DB) error) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	goose.SetBaseFS(migrationFiles)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return fn(db)
}

// RunMigrations applies the embedded SQL migrations via goose.
func RunMigrations(ctx context.Context, databaseURL string) error {
	return withGoose(ctx, databaseURL, func(db *sql.DB) error {
		if err := goose.UpContext(ctx, db, "migrations"); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		return nil
	})
}

// MigrationStatus prints the applied state of every migration.
func MigrationStatus(ctx context.Context, databaseURL string) error {
	return withGoose(ctx, databaseURL, func(db *sql.DB) error {
		return goose.StatusContext(ctx, db, "migrations")
	})
}

// RollbackMigration reverts the most recent migration.
func RollbackMigration(ctx context.Context, databaseURL string) error {
	return withGoose(ctx, databaseURL, func(db *sql.DB) error {
		return goose.DownContext(ctx, db, "migrations")
	})
}
