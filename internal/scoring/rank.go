package scoring

import (
	"math"
	"sort"
)

// ScoreTolerance is the composite score difference below which two
// candidates are considered tied.
const ScoreTolerance = 1e-9

// BaselineMethod selects how the reference cost and impact are derived
// from the eligible set.
type BaselineMethod string

const (
	BaselineMax  BaselineMethod = "max"
	BaselineMean BaselineMethod = "mean"
)

// Baseline is the reference point savings are measured against.
type Baseline struct {
	Method BaselineMethod `json:"method"`
	Cost   float64        `json:"cost"`
	Impact float64        `json:"impact"`
}

// RankedItem is one recommended material with its derived savings.
type RankedItem struct {
	Rank                   int            `json:"rank"`
	Material               string         `json:"material"`
	PredictedCost          float64        `json:"predicted_cost"`
	PredictedImpact        float64        `json:"predicted_impact"`
	SuitabilityScore       float64        `json:"suitability_score"`
	Score                  float64        `json:"score"`
	CostSavings            float64        `json:"cost_savings"`
	ImpactReductionPercent float64        `json:"impact_reduction_percent"`
	CostFallback           bool           `json:"cost_fallback,omitempty"`
	ImpactFallback         bool           `json:"impact_fallback,omitempty"`
	Factors                []FactorResult `json:"factors,omitempty"`
}

// Selection is the top-K outcome of ranking.
type Selection struct {
	Items    []RankedItem
	Baseline Baseline
}

// Less orders by composite score descending, then predicted cost ascending,
// then material name ascending. Scores are compared on a ScoreTolerance grid
// so that ties are transitive.
func Less(a, b *ScoredCandidate) bool {
	if ka, kb := scoreKey(a.Score), scoreKey(b.Score); ka != kb {
		return ka > kb
	}
	if a.PredictedCost != b.PredictedCost {
		return a.PredictedCost < b.PredictedCost
	}
	return a.Material.Name < b.Material.Name
}

func scoreKey(score float64) float64 {
	return math.Round(score / ScoreTolerance)
}

// Rank returns a sorted copy of scored.
func Rank(scored []ScoredCandidate) []ScoredCandidate {
	sorted := make([]ScoredCandidate, len(scored))
	copy(sorted, scored)
	sort.SliceStable(sorted, func(i, j int) bool { return Less(&sorted[i], &sorted[j]) })
	return sorted
}

// ComputeBaseline derives the reference cost and impact over the whole
// scored set, not just the selected items.
func ComputeBaseline(scored []ScoredCandidate, method BaselineMethod) Baseline {
	if method == "" {
		method = BaselineMax
	}
	b := Baseline{Method: method}
	if len(scored) == 0 {
		return b
	}
	for i, c := range scored {
		switch method {
		case BaselineMean:
			b.Cost += c.PredictedCost
			b.Impact += c.PredictedImpact
		default:
			if i == 0 || c.PredictedCost > b.Cost {
				b.Cost = c.PredictedCost
			}
			if i == 0 || c.PredictedImpact > b.Impact {
				b.Impact = c.PredictedImpact
			}
		}
	}
	if method == BaselineMean {
		b.Cost /= float64(len(scored))
		b.Impact /= float64(len(scored))
	}
	return b
}

// Select ranks scored, keeps the first k and derives savings against the
// baseline of the full set. k <= 0 keeps nothing.
func Select(scored []ScoredCandidate, k int, method BaselineMethod) Selection {
	baseline := ComputeBaseline(scored, method)
	ranked := Rank(scored)
	if k < 0 {
		k = 0
	}
	if k > len(ranked) {
		k = len(ranked)
	}

	items := make([]RankedItem, k)
	for i := 0; i < k; i++ {
		c := ranked[i]
		items[i] = RankedItem{
			Rank:                   i + 1,
			Material:               c.Material.Name,
			PredictedCost:          c.PredictedCost,
			PredictedImpact:        c.PredictedImpact,
			SuitabilityScore:       c.Scores.Suitability,
			Score:                  c.Score,
			CostSavings:            baseline.Cost - c.PredictedCost,
			ImpactReductionPercent: ImpactReduction(baseline.Impact, c.PredictedImpact),
			CostFallback:           c.CostFallback,
			ImpactFallback:         c.ImpactFallback,
			Factors:                c.Factors,
		}
	}
	return Selection{Items: items, Baseline: baseline}
}

// ImpactReduction is the percentage reduction of impact relative to the
// baseline, clamped to [0,100]. A non-positive baseline yields 0.
func ImpactReduction(baseline, impact float64) float64 {
	if baseline <= 0 {
		return 0
	}
	return clamp((baseline-impact)/baseline*100, 0, 100)
}
