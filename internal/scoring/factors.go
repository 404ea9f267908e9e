package scoring

// FactorResult captures one factor's contribution to the composite score.
type FactorResult struct {
	Name      string  `json:"name"`
	Score     float64 `json:"score"`
	Weight    float64 `json:"weight"`
	Weighted  float64 `json:"weighted"`
	Available bool    `json:"available"`
	Reason    string  `json:"reason"`
}

// SubScores are the normalized, higher-is-better components of one candidate.
type SubScores struct {
	Eco         float64 `json:"eco"`
	Cost        float64 `json:"cost"`
	Suitability float64 `json:"suitability"`
}

// column holds one raw attribute per candidate.
func column(eligible []*Material, attr Attribute) []float64 {
	out := make([]float64, len(eligible))
	for i, m := range eligible {
		v, _ := m.Value(attr)
		out[i] = v
	}
	return out
}

// suitabilityScores blends the normalized strength, recyclability and
// biodegradability columns. Each result stays in [0,1] because the
// sub-weights sum to 1.0.
func suitabilityScores(eligible []*Material, strategy Strategy, sw SuitabilityWeights) []float64 {
	strength := strategy.Normalize(column(eligible, AttrStrength), HigherIsBetter)
	recyc := strategy.Normalize(column(eligible, AttrRecyclability), HigherIsBetter)
	biodeg := strategy.Normalize(column(eligible, AttrBiodegradability), HigherIsBetter)

	out := make([]float64, len(eligible))
	for i := range eligible {
		out[i] = clamp(sw.Strength*strength[i]+sw.Recyclability*recyc[i]+sw.Biodegradability*biodeg[i], 0, 1)
	}
	return out
}

func composeFactors(s SubScores, w Weights, costFallback, impactFallback bool) ([]FactorResult, float64) {
	factors := []FactorResult{
		{Name: "eco", Score: s.Eco, Weight: w.Eco, Available: !impactFallback, Reason: reason(impactFallback, "baseline_impact")},
		{Name: "cost", Score: s.Cost, Weight: w.Cost, Available: !costFallback, Reason: reason(costFallback, "cost_per_unit")},
		{Name: "suitability", Score: s.Suitability, Weight: w.Suitability, Available: true, Reason: "catalog attributes"},
	}
	var total float64
	for i := range factors {
		factors[i].Weighted = factors[i].Score * factors[i].Weight
		total += factors[i].Weighted
	}
	return factors, clamp(total, 0, 1)
}

func reason(fallback bool, attr string) string {
	if fallback {
		return "fallback: " + attr
	}
	return "predicted"
}

// StaticSuitability is the catalog-only suitability used by analytics:
// the mean of biodegradability rescaled to 0-100 and recyclability.
func StaticSuitability(m *Material) (float64, bool) {
	biodeg, okB := m.Value(AttrBiodegradability)
	recyc, okR := m.Value(AttrRecyclability)
	if !okB || !okR {
		return 0, false
	}
	return (biodeg*10 + recyc) / 2, true
}
