package recommender

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/EcoPack/internal/catalog"
	"github.com/MikeSquared-Agency/EcoPack/internal/config"
	"github.com/MikeSquared-Agency/EcoPack/internal/hermes"
	"github.com/MikeSquared-Agency/EcoPack/internal/metrics"
	"github.com/MikeSquared-Agency/EcoPack/internal/scoring"
	"github.com/MikeSquared-Agency/EcoPack/internal/store"
)

const defaultTopK = 3

// RecommendRequest is a request context plus an optional result size.
type RecommendRequest struct {
	scoring.RequestContext
	TopK int
}

// Options holds the engine-level settings the service applies per run.
type Options struct {
	Rules         scoring.RuleSet
	Weights       scoring.WeightConfig
	TopK          int
	Baseline      scoring.BaselineMethod
	ParetoEnabled bool
}

// OptionsFromConfig maps the engine config section onto service options.
func OptionsFromConfig(cfg config.EngineConfig) Options {
	return Options{
		Rules:         scoring.RuleSetFromConfig(cfg),
		Weights:       scoring.WeightConfigFromConfig(cfg),
		TopK:          cfg.TopK,
		Baseline:      scoring.BaselineMethod(cfg.Baseline),
		ParetoEnabled: cfg.ParetoEnabled,
	}
}

type Service struct {
	catalog catalog.Source
	store   store.ResultStore
	hermes  hermes.Client
	engine  *scoring.Engine
	opts    Options
	logger  *slog.Logger
	now     func() time.Time
}

// New creates a Service. h may be nil, in which case no events are published.
// A nil store is replaced by an in-memory one.
func New(src catalog.Source, s store.ResultStore, h hermes.Client, engine *scoring.Engine, opts Options, logger *slog.Logger) *Service {
	if opts.TopK <= 0 {
		opts.TopK = defaultTopK
	}
	if opts.Baseline == "" {
		opts.Baseline = scoring.BaselineMax
	}
	if opts.Rules.Categories == nil {
		opts.Rules = scoring.DefaultRuleSet()
	}
	if opts.Weights.Base == (scoring.Weights{}) {
		opts.Weights = scoring.DefaultWeightConfig()
	}
	if s == nil {
		s = store.NewMemoryStore()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		catalog: src,
		store:   s,
		hermes:  h,
		engine:  engine,
		opts:    opts,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Recommend runs the full pipeline for one request. Store and event failures
// are logged and reflected in Persisted; the computed run is still returned.
func (s *Service) Recommend(ctx context.Context, req RecommendRequest) (*store.Run, error) {
	start := time.Now()
	rc := req.RequestContext.Normalized()
	if err := rc.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.opts.Rules.Category(rc.ProductCategory); err != nil {
		return nil, err
	}

	materials, err := s.catalog.List(ctx, rc.ProductCategory)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", scoring.ErrCatalogUnavailable, err)
	}

	outcome, err := s.opts.Rules.Filter(materials, rc)
	if err != nil {
		return nil, err
	}
	for _, rule := range outcome.Relaxed {
		metrics.RelaxedRulesTotal.WithLabelValues(ruleLabel(rule)).Inc()
		s.logger.Warn("filter rule relaxed", "rule", rule, "category", rc.ProductCategory)
	}
	metrics.EligibleCandidates.Observe(float64(len(outcome.Eligible)))

	weights := scoring.ResolveWeights(rc, s.opts.Weights)
	run := &store.Run{
		ID:            uuid.New(),
		Status:        store.StatusOK,
		Context:       rc,
		Weights:       weights,
		Baseline:      scoring.Baseline{Method: s.opts.Baseline},
		Items:         []scoring.RankedItem{},
		CatalogCount:  len(materials),
		EligibleCount: len(outcome.Eligible),
		AppliedRules:  outcome.Applied,
		RelaxedRules:  outcome.Relaxed,
		CreatedAt:     s.now(),
	}

	if len(outcome.Eligible) == 0 {
		run.Status = store.StatusNoEligible
		s.logger.Info("no eligible materials", "run_id", run.ID, "category", rc.ProductCategory,
			"catalog_count", len(materials))
	} else {
		scored, err := s.engine.Score(ctx, outcome.Eligible, weights)
		if err != nil {
			return nil, err
		}
		countFallbacks(scored)

		k := req.TopK
		if k <= 0 {
			k = s.opts.TopK
		}
		sel := scoring.Select(scored, k, s.opts.Baseline)
		run.Items = sel.Items
		run.Baseline = sel.Baseline
		if s.opts.ParetoEnabled {
			run.Frontier = scoring.FrontierNames(scored)
		}
	}

	s.persist(ctx, run)
	s.publishRun(run)

	metrics.RecommendTotal.WithLabelValues(string(run.Status)).Inc()
	metrics.RecommendDuration.Observe(time.Since(start).Seconds())
	s.logger.Info("recommendation complete",
		"run_id", run.ID,
		"status", run.Status,
		"eligible", run.EligibleCount,
		"items", len(run.Items),
		"persisted", run.Persisted,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return run, nil
}

func (s *Service) persist(ctx context.Context, run *store.Run) {
	if _, err := s.store.RecordRun(ctx, run, store.UsageFromRun(run)); err != nil {
		metrics.PersistFailuresTotal.Inc()
		s.logger.Error("failed to record run", "run_id", run.ID, "error", err)
		return
	}
	run.Persisted = true
}

func (s *Service) publishRun(run *store.Run) {
	subject := hermes.SubjectRecommendationRecorded(run.ID.String())
	if run.Status == store.StatusNoEligible {
		subject = hermes.SubjectRecommendationEmpty(run.ID.String())
	}
	items := make([]hermes.RecommendedItem, len(run.Items))
	for i, item := range run.Items {
		items[i] = hermes.RecommendedItem{
			Material:               item.Material,
			Rank:                   item.Rank,
			PredictedCost:          item.PredictedCost,
			PredictedImpact:        item.PredictedImpact,
			ImpactReductionPercent: item.ImpactReductionPercent,
		}
	}
	s.publish(subject, hermes.RecommendationRecordedEvent{
		RunID:                  run.ID.String(),
		Status:                 string(run.Status),
		ProductCategory:        run.Context.ProductCategory,
		Fragility:              string(run.Context.Fragility),
		ShippingType:           string(run.Context.ShippingType),
		SustainabilityPriority: string(run.Context.SustainabilityPriority),
		EligibleCount:          run.EligibleCount,
		Relaxed:                run.RelaxedRules,
		Items:                  items,
		Persisted:              run.Persisted,
		Timestamp:              run.CreatedAt,
	})
}

func (s *Service) publish(subject string, event interface{}) {
	if s.hermes == nil {
		return
	}
	if err := s.hermes.Publish(subject, event); err != nil {
		metrics.PublishFailuresTotal.Inc()
		s.logger.Warn("failed to publish event", "subject", subject, "error", err)
	}
}

// History returns recorded runs oldest first. limit <= 0 returns all.
func (s *Service) History(ctx context.Context, limit int) ([]*store.Run, error) {
	runs, err := s.store.ListRuns(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	if runs == nil {
		runs = []*store.Run{}
	}
	return runs, nil
}

// GetRun returns nil, nil for an unknown run.
func (s *Service) GetRun(ctx context.Context, id uuid.UUID) (*store.Run, error) {
	run, err := s.store.GetRun(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	return run, nil
}

// ClearHistory removes recorded runs. Usage records survive for analytics.
func (s *Service) ClearHistory(ctx context.Context, clearedBy string) error {
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	s.logger.Info("history cleared", "cleared_by", clearedBy)
	s.publish(hermes.SubjectHistoryCleared, hermes.HistoryClearedEvent{
		ClearedBy: clearedBy,
		Timestamp: s.now(),
	})
	return nil
}

// Materials lists the full catalog.
func (s *Service) Materials(ctx context.Context) ([]scoring.Material, error) {
	materials, err := s.catalog.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", scoring.ErrCatalogUnavailable, err)
	}
	if materials == nil {
		materials = []scoring.Material{}
	}
	return materials, nil
}

// Categories lists the configured product categories.
func (s *Service) Categories() []string {
	return s.opts.Rules.CategoryNames()
}

// Invalidator is implemented by catalog sources that cache.
type Invalidator interface {
	Invalidate()
}

// HandleCatalogUpdated drops cached catalog data when a catalog.updated
// event arrives.
func (s *Service) HandleCatalogUpdated(subject string, data []byte) {
	var evt hermes.CatalogUpdatedEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		s.logger.Warn("bad catalog event", "subject", subject, "error", err)
		return
	}
	inv, ok := s.catalog.(Invalidator)
	if !ok {
		return
	}
	inv.Invalidate()
	s.logger.Info("catalog cache invalidated", "source", evt.Source, "materials", evt.Materials)
}

func countFallbacks(scored []scoring.ScoredCandidate) {
	for _, c := range scored {
		if c.CostFallback {
			metrics.PredictorFallbackTotal.WithLabelValues(string(scoring.MetricCost)).Inc()
		}
		if c.ImpactFallback {
			metrics.PredictorFallbackTotal.WithLabelValues(string(scoring.MetricImpact)).Inc()
		}
	}
}

// ruleLabel keeps metric cardinality bounded: "category:food" -> "category".
func ruleLabel(rule string) string {
	kind, _, _ := strings.Cut(rule, ":")
	return kind
}
