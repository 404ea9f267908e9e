package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/EcoPack/internal/scoring"
)

type RunStatus string

const (
	StatusOK         RunStatus = "ok"
	StatusNoEligible RunStatus = "no_eligible_materials"
)

// Run is one recommendation result as returned to the caller and kept in history.
type Run struct {
	ID            uuid.UUID              `json:"run_id"`
	Status        RunStatus              `json:"status"`
	Context       scoring.RequestContext `json:"context"`
	Weights       scoring.Weights        `json:"weights"`
	Baseline      scoring.Baseline       `json:"baseline"`
	Items         []scoring.RankedItem   `json:"items"`
	CatalogCount  int                    `json:"catalog_count"`
	EligibleCount int                    `json:"eligible_count"`
	AppliedRules  []string               `json:"applied_rules,omitempty"`
	RelaxedRules  []string               `json:"relaxed_rules,omitempty"`
	Frontier      []string               `json:"pareto_frontier,omitempty"`
	Persisted     bool                   `json:"persisted"`
	CreatedAt     time.Time              `json:"created_at"`
}

// UsageRecord is an append-only log entry for one recommended material.
type UsageRecord struct {
	ID                     uuid.UUID `json:"id"`
	Material               string    `json:"material"`
	ProductCategory        string    `json:"product_category"`
	Fragility              string    `json:"fragility"`
	ShippingType           string    `json:"shipping_type"`
	SustainabilityPriority string    `json:"sustainability_priority"`
	CreatedAt              time.Time `json:"created_at"`
}

// UsageFromRun builds one usage record per recommended item.
func UsageFromRun(run *Run) []UsageRecord {
	out := make([]UsageRecord, len(run.Items))
	for i, item := range run.Items {
		out[i] = UsageRecord{
			ID:                     uuid.New(),
			Material:               item.Material,
			ProductCategory:        run.Context.ProductCategory,
			Fragility:              string(run.Context.Fragility),
			ShippingType:           string(run.Context.ShippingType),
			SustainabilityPriority: string(run.Context.SustainabilityPriority),
			CreatedAt:              run.CreatedAt,
		}
	}
	return out
}

type MaterialUsage struct {
	Material string `json:"material"`
	Count    int    `json:"count"`
}

// ResultStore persists recommendation history.
type ResultStore interface {
	// RecordRun appends the run, its items and the usage records atomically.
	// A nil run ID is replaced with a fresh one.
	RecordRun(ctx context.Context, run *Run, usage []UsageRecord) (uuid.UUID, error)
	// GetRun returns nil, nil when the run does not exist.
	GetRun(ctx context.Context, id uuid.UUID) (*Run, error)
	// ListRuns returns runs in insertion order. limit <= 0 returns all.
	ListRuns(ctx context.Context, limit int) ([]*Run, error)
	// Clear removes all runs and their items. Usage records are kept.
	Clear(ctx context.Context) error
	// UsageCounts aggregates usage records, most used first.
	UsageCounts(ctx context.Context) ([]MaterialUsage, error)
	Close() error
}
