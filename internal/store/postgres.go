package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeSquared-Agency/EcoPack/internal/scoring"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Pool exposes the connection pool for collaborators sharing the database.
func (s *PostgresStore) Pool() *pgxpool.Pool {
	return s.pool
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

const runColumns = `id, status, product_category, fragility, shipping_type, sustainability_priority,
	min_strength, min_weight_capacity, weights, baseline, catalog_count, eligible_count,
	applied_rules, relaxed_rules, pareto_frontier, created_at`

const itemColumns = `run_id, rank, material, predicted_cost, predicted_impact, suitability_score, score,
	cost_savings, impact_reduction_percent, cost_fallback, impact_fallback, factors`

func (s *PostgresStore) RecordRun(ctx context.Context, run *Run, usage []UsageRecord) (uuid.UUID, error) {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	weightsJSON, err := json.Marshal(run.Weights)
	if err != nil {
		return uuid.Nil, err
	}
	baselineJSON, err := json.Marshal(run.Baseline)
	if err != nil {
		return uuid.Nil, err
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return uuid.Nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	rc := run.Context
	_, err = tx.Exec(ctx, `
		INSERT INTO recommendation_runs (`+runColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		run.ID, run.Status, rc.ProductCategory, rc.Fragility, rc.ShippingType, rc.SustainabilityPriority,
		rc.MinStrength, rc.MinWeightCapacity, weightsJSON, baselineJSON, run.CatalogCount, run.EligibleCount,
		nonNil(run.AppliedRules), nonNil(run.RelaxedRules), nonNil(run.Frontier), run.CreatedAt,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert run: %w", err)
	}

	if len(run.Items) > 0 {
		batch := &pgx.Batch{}
		for _, item := range run.Items {
			factorsJSON, err := json.Marshal(item.Factors)
			if err != nil {
				return uuid.Nil, err
			}
			batch.Queue(`INSERT INTO recommendation_items (`+itemColumns+`)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
				run.ID, item.Rank, item.Material, item.PredictedCost, item.PredictedImpact,
				item.SuitabilityScore, item.Score, item.CostSavings, item.ImpactReductionPercent,
				item.CostFallback, item.ImpactFallback, factorsJSON,
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return uuid.Nil, fmt.Errorf("insert items: %w", err)
		}
	}

	if len(usage) > 0 {
		rows := make([][]interface{}, len(usage))
		for i, u := range usage {
			if u.ID == uuid.Nil {
				u.ID = uuid.New()
			}
			if u.CreatedAt.IsZero() {
				u.CreatedAt = run.CreatedAt
			}
			rows[i] = []interface{}{u.ID, u.Material, u.ProductCategory, u.Fragility,
				u.ShippingType, u.SustainabilityPriority, u.CreatedAt}
		}
		_, err := tx.CopyFrom(ctx, pgx.Identifier{"usage_records"},
			[]string{"id", "material", "product_category", "fragility", "shipping_type",
				"sustainability_priority", "created_at"},
			pgx.CopyFromRows(rows))
		if err != nil {
			return uuid.Nil, fmt.Errorf("insert usage: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("commit run: %w", err)
	}
	return run.ID, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func scanRun(row pgx.Row) (*Run, error) {
	r := &Run{}
	var weightsJSON, baselineJSON []byte
	var fragility, shipping, priority string
	err := row.Scan(
		&r.ID, &r.Status, &r.Context.ProductCategory, &fragility, &shipping, &priority,
		&r.Context.MinStrength, &r.Context.MinWeightCapacity, &weightsJSON, &baselineJSON,
		&r.CatalogCount, &r.EligibleCount, &r.AppliedRules, &r.RelaxedRules, &r.Frontier, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.Context.Fragility = scoring.Fragility(fragility)
	r.Context.ShippingType = scoring.ShippingType(shipping)
	r.Context.SustainabilityPriority = scoring.Priority(priority)
	if err := json.Unmarshal(weightsJSON, &r.Weights); err != nil {
		return nil, fmt.Errorf("decode weights: %w", err)
	}
	if err := json.Unmarshal(baselineJSON, &r.Baseline); err != nil {
		return nil, fmt.Errorf("decode baseline: %w", err)
	}
	r.Persisted = true
	r.Items = []scoring.RankedItem{}
	return r, nil
}

func (s *PostgresStore) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	run, err := scanRun(s.pool.QueryRow(ctx, `SELECT `+runColumns+` FROM recommendation_runs WHERE id = $1`, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := s.attachItems(ctx, []*Run{run}); err != nil {
		return nil, err
	}
	return run, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	query := `SELECT ` + runColumns + ` FROM recommendation_runs ORDER BY seq`
	args := []interface{}{}
	if limit > 0 {
		// newest N, still returned oldest first
		query = `SELECT ` + runColumns + ` FROM (
			SELECT * FROM recommendation_runs ORDER BY seq DESC LIMIT $1
		) recent ORDER BY seq`
		args = append(args, limit)
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := s.attachItems(ctx, runs); err != nil {
		return nil, err
	}
	return runs, nil
}

func (s *PostgresStore) attachItems(ctx context.Context, runs []*Run) error {
	if len(runs) == 0 {
		return nil
	}
	byID := make(map[uuid.UUID]*Run, len(runs))
	ids := make([]string, len(runs))
	for i, r := range runs {
		byID[r.ID] = r
		ids[i] = r.ID.String()
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+itemColumns+` FROM recommendation_items
		WHERE run_id = ANY($1::uuid[]) ORDER BY run_id, rank`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var runID uuid.UUID
		var item scoring.RankedItem
		var factorsJSON []byte
		if err := rows.Scan(&runID, &item.Rank, &item.Material, &item.PredictedCost, &item.PredictedImpact,
			&item.SuitabilityScore, &item.Score, &item.CostSavings, &item.ImpactReductionPercent,
			&item.CostFallback, &item.ImpactFallback, &factorsJSON); err != nil {
			return err
		}
		if item.Factors, err = decodeFactors(factorsJSON); err != nil {
			return fmt.Errorf("run %s rank %d: %w", runID, item.Rank, err)
		}
		if r, ok := byID[runID]; ok {
			r.Items = append(r.Items, item)
		}
	}
	return rows.Err()
}

// decodeFactors reads the factors column. NULL or empty means no breakdown.
func decodeFactors(data []byte) ([]scoring.FactorResult, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var factors []scoring.FactorResult
	if err := json.Unmarshal(data, &factors); err != nil {
		return nil, fmt.Errorf("decode factors: %w", err)
	}
	return factors, nil
}

func (s *PostgresStore) Clear(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `TRUNCATE recommendation_items, recommendation_runs`)
	if err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

func (s *PostgresStore) UsageCounts(ctx context.Context) ([]MaterialUsage, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT material, COUNT(*) FROM usage_records
		GROUP BY material ORDER BY COUNT(*) DESC, material`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MaterialUsage
	for rows.Next() {
		var u MaterialUsage
		if err := rows.Scan(&u.Material, &u.Count); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
