package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeSquared-Agency/EcoPack/internal/scoring"
)

// PostgresSource reads the materials table.
type PostgresSource struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewPostgresSource(pool *pgxpool.Pool, logger *slog.Logger) *PostgresSource {
	return &PostgresSource{pool: pool, logger: logger}
}

const materialColumns = `name, category, strength, weight_capacity, recyclability,
	biodegradability, cost_per_unit, baseline_impact`

// List ignores category: material rows are not tagged by product category.
func (s *PostgresSource) List(ctx context.Context, _ string) ([]scoring.Material, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+materialColumns+` FROM materials ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query materials: %w", err)
	}
	defer rows.Close()

	var out []scoring.Material
	for rows.Next() {
		var m scoring.Material
		var category *string
		if err := rows.Scan(&m.Name, &category, &m.Strength, &m.WeightCapacity, &m.Recyclability,
			&m.Biodegradability, &m.CostPerUnit, &m.BaselineImpact); err != nil {
			return nil, fmt.Errorf("scan material: %w", err)
		}
		if category != nil {
			m.Category = *category
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return dedupe(out, s.logger), nil
}

// ReplaceAll swaps the whole catalog in one transaction.
func (s *PostgresSource) ReplaceAll(ctx context.Context, materials []scoring.Material) (int64, error) {
	materials = dedupe(materials, s.logger)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM materials`); err != nil {
		return 0, fmt.Errorf("clear materials: %w", err)
	}

	rows := make([][]interface{}, len(materials))
	for i, m := range materials {
		var category *string
		if m.Category != "" {
			c := m.Category
			category = &c
		}
		rows[i] = []interface{}{m.Name, category, m.Strength, m.WeightCapacity, m.Recyclability,
			m.Biodegradability, m.CostPerUnit, m.BaselineImpact}
	}
	n, err := tx.CopyFrom(ctx, pgx.Identifier{"materials"},
		[]string{"name", "category", "strength", "weight_capacity", "recyclability",
			"biodegradability", "cost_per_unit", "baseline_impact"},
		pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("copy materials: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return n, nil
}
