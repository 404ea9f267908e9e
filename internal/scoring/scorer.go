package scoring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/MikeSquared-Agency/EcoPack/internal/config"
)

// Predictor estimates one metric for a batch of feature vectors. The result
// must have one value per input, in input order.
type Predictor interface {
	Predict(ctx context.Context, features []FeatureVector) ([]float64, error)
}

// PredictorFunc adapts a plain function to Predictor.
type PredictorFunc func(ctx context.Context, features []FeatureVector) ([]float64, error)

func (f PredictorFunc) Predict(ctx context.Context, features []FeatureVector) ([]float64, error) {
	return f(ctx, features)
}

// Metric names a predicted quantity.
type Metric string

const (
	MetricCost   Metric = "cost"
	MetricImpact Metric = "impact"
)

// ScoredCandidate is an eligible material with its predictions and scores.
type ScoredCandidate struct {
	Material        *Material      `json:"-"`
	PredictedCost   float64        `json:"predicted_cost"`
	PredictedImpact float64        `json:"predicted_impact"`
	Scores          SubScores      `json:"scores"`
	Score           float64        `json:"score"`
	CostFallback    bool           `json:"cost_fallback"`
	ImpactFallback  bool           `json:"impact_fallback"`
	Factors         []FactorResult `json:"factors"`
}

// EngineOptions configures an Engine.
type EngineOptions struct {
	Strategy       Strategy
	Suitability    SuitabilityWeights
	Features       FeatureAdapter
	PredictTimeout time.Duration
}

// EngineOptionsFromConfig maps the engine config section onto options.
func EngineOptionsFromConfig(cfg config.EngineConfig, predictTimeout time.Duration) (EngineOptions, error) {
	features, err := FeatureAdapterFromConfig(cfg)
	if err != nil {
		return EngineOptions{}, err
	}
	return EngineOptions{
		Strategy:       Strategy(cfg.Normalization),
		Suitability:    SuitabilityWeightsFromConfig(cfg.Suitability),
		Features:       features,
		PredictTimeout: predictTimeout,
	}, nil
}

// Engine scores an eligible set against cost and impact predictors.
type Engine struct {
	cost   Predictor
	impact Predictor
	opts   EngineOptions
	logger *slog.Logger
}

// NewEngine creates an Engine. Either predictor may be nil, in which case
// every value for that metric falls back to the catalog attribute.
func NewEngine(cost, impact Predictor, opts EngineOptions, logger *slog.Logger) *Engine {
	if opts.Strategy == "" {
		opts.Strategy = StrategyMinMax
	}
	if opts.Suitability == (SuitabilityWeights{}) {
		opts.Suitability = SuitabilityWeights{Strength: 0.4, Recyclability: 0.3, Biodegradability: 0.3}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{cost: cost, impact: impact, opts: opts, logger: logger}
}

// Score predicts, normalizes and combines sub-scores for each eligible
// material. Output order matches eligible. Predictor problems never fail the
// call; a feature schema mismatch does, before any predictor is invoked.
func (e *Engine) Score(ctx context.Context, eligible []*Material, w Weights) ([]ScoredCandidate, error) {
	if len(eligible) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	features, err := e.opts.Features.Build(eligible)
	if err != nil {
		return nil, err
	}

	costs, costFallback := e.predict(ctx, MetricCost, e.cost, features, eligible)
	impacts, impactFallback := e.predict(ctx, MetricImpact, e.impact, features, eligible)

	costScores := e.opts.Strategy.Normalize(costs, LowerIsBetter)
	ecoScores := e.opts.Strategy.Normalize(impacts, LowerIsBetter)
	suitScores := suitabilityScores(eligible, e.opts.Strategy, e.opts.Suitability)

	out := make([]ScoredCandidate, len(eligible))
	for i, m := range eligible {
		sub := SubScores{Eco: ecoScores[i], Cost: costScores[i], Suitability: suitScores[i]}
		factors, total := composeFactors(sub, w, costFallback[i], impactFallback[i])
		out[i] = ScoredCandidate{
			Material:        m,
			PredictedCost:   costs[i],
			PredictedImpact: impacts[i],
			Scores:          sub,
			Score:           total,
			CostFallback:    costFallback[i],
			ImpactFallback:  impactFallback[i],
			Factors:         factors,
		}
	}
	return out, nil
}

// predict calls p once for the batch. A failed, timed-out or wrong-length
// call falls back for every candidate; non-finite values fall back
// individually and negative values clamp to zero.
func (e *Engine) predict(ctx context.Context, metric Metric, p Predictor, features []FeatureVector, eligible []*Material) ([]float64, []bool) {
	values := make([]float64, len(eligible))
	fallback := make([]bool, len(eligible))

	raw, err := e.call(ctx, p, features)
	if err == nil && len(raw) != len(eligible) {
		err = fmt.Errorf("%w: %d values for %d candidates", ErrPredictorFailure, len(raw), len(eligible))
	}
	if err != nil {
		e.logger.Warn("predictor unavailable, using catalog fallback",
			"metric", metric, "candidates", len(eligible), "error", err)
		raw = nil
	}

	for i, m := range eligible {
		if raw == nil || math.IsNaN(raw[i]) || math.IsInf(raw[i], 0) {
			values[i] = fallbackEstimate(metric, m)
			fallback[i] = true
			continue
		}
		values[i] = math.Max(0, raw[i])
	}
	return values, fallback
}

func (e *Engine) call(ctx context.Context, p Predictor, features []FeatureVector) (out []float64, err error) {
	if p == nil {
		return nil, fmt.Errorf("%w: not configured", ErrPredictorFailure)
	}
	if e.opts.PredictTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.PredictTimeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("%w: panic: %v", ErrPredictorFailure, r)
		}
	}()

	out, err = p.Predict(ctx, features)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", ErrPredictorTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrPredictorFailure, err)
	}
	return out, nil
}

// fallbackEstimate uses the catalog attribute for the metric, or 0.
func fallbackEstimate(metric Metric, m *Material) float64 {
	attr := AttrCostPerUnit
	if metric == MetricImpact {
		attr = AttrBaselineImpact
	}
	v, ok := m.Value(attr)
	if !ok {
		return 0
	}
	return math.Max(0, v)
}
