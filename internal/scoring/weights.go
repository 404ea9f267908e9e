package scoring

import (
	"fmt"
	"math"

	"github.com/MikeSquared-Agency/EcoPack/internal/config"
)

// Weights is the priority triple used to combine sub-scores.
// Resolved weights are non-negative and sum to 1.0.
type Weights struct {
	Eco         float64 `json:"eco"`
	Cost        float64 `json:"cost"`
	Suitability float64 `json:"suitability"`
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.Eco + w.Cost + w.Suitability
}

// Validate checks that weights sum to 1.0 and none are negative.
func (w Weights) Validate() error {
	if math.Abs(w.Sum()-1.0) > 1e-9 {
		return fmt.Errorf("weights sum to %.6f, must sum to 1.0", w.Sum())
	}
	for _, v := range []float64{w.Eco, w.Cost, w.Suitability} {
		if v < 0 {
			return fmt.Errorf("negative weight: %f", v)
		}
	}
	return nil
}

func (w Weights) add(d Weights) Weights {
	return Weights{Eco: w.Eco + d.Eco, Cost: w.Cost + d.Cost, Suitability: w.Suitability + d.Suitability}
}

// normalized clamps negatives to zero and rescales to sum 1.0.
// ok is false when nothing positive remains.
func (w Weights) normalized() (Weights, bool) {
	w.Eco = math.Max(0, w.Eco)
	w.Cost = math.Max(0, w.Cost)
	w.Suitability = math.Max(0, w.Suitability)
	sum := w.Sum()
	if sum <= 0 {
		return Weights{}, false
	}
	return Weights{Eco: w.Eco / sum, Cost: w.Cost / sum, Suitability: w.Suitability / sum}, true
}

// WeightConfig is a base triple plus additive adjustments per
// sustainability priority and shipping type.
type WeightConfig struct {
	Base           Weights
	Sustainability map[Priority]Weights
	Shipping       map[ShippingType]Weights
}

func weightsFromTriple(t config.WeightTriple) Weights {
	return Weights{Eco: t.Eco, Cost: t.Cost, Suitability: t.Suitability}
}

func WeightConfigFromConfig(cfg config.EngineConfig) WeightConfig {
	wc := WeightConfig{
		Base:           weightsFromTriple(cfg.Weights.Base),
		Sustainability: make(map[Priority]Weights, len(cfg.Weights.Sustainability)),
		Shipping:       make(map[ShippingType]Weights, len(cfg.Weights.Shipping)),
	}
	for k, v := range cfg.Weights.Sustainability {
		wc.Sustainability[Priority(k)] = weightsFromTriple(v)
	}
	for k, v := range cfg.Weights.Shipping {
		wc.Shipping[ShippingType(k)] = weightsFromTriple(v)
	}
	return wc
}

// DefaultWeightConfig returns the built-in base weights and adjustments.
func DefaultWeightConfig() WeightConfig {
	return WeightConfigFromConfig(config.DefaultEngineConfig())
}

// ResolveWeights applies the sustainability and shipping adjustments to the
// base triple, clamps negatives and renormalizes. If every component clamps
// to zero the normalized base is used.
func ResolveWeights(rc RequestContext, cfg WeightConfig) Weights {
	w := cfg.Base.add(cfg.Sustainability[rc.SustainabilityPriority])
	w = w.add(cfg.Shipping[rc.ShippingType])

	if resolved, ok := w.normalized(); ok {
		return resolved
	}
	if base, ok := cfg.Base.normalized(); ok {
		return base
	}
	return Weights{Eco: 1.0 / 3, Cost: 1.0 / 3, Suitability: 1.0 / 3}
}

// SuitabilityWeights blends strength, recyclability and biodegradability
// into the suitability sub-score.
type SuitabilityWeights struct {
	Strength         float64 `json:"strength"`
	Recyclability    float64 `json:"recyclability"`
	Biodegradability float64 `json:"biodegradability"`
}

// SuitabilityWeightsFromConfig normalizes the configured sub-weights to sum 1.0.
func SuitabilityWeightsFromConfig(c config.SuitabilityWeights) SuitabilityWeights {
	s := SuitabilityWeights{
		Strength:         math.Max(0, c.Strength),
		Recyclability:    math.Max(0, c.Recyclability),
		Biodegradability: math.Max(0, c.Biodegradability),
	}
	sum := s.Strength + s.Recyclability + s.Biodegradability
	if sum <= 0 {
		return SuitabilityWeights{Strength: 1.0 / 3, Recyclability: 1.0 / 3, Biodegradability: 1.0 / 3}
	}
	return SuitabilityWeights{
		Strength:         s.Strength / sum,
		Recyclability:    s.Recyclability / sum,
		Biodegradability: s.Biodegradability / sum,
	}
}
