package recommender

import (
	"context"
	"fmt"
	"sort"

	"github.com/MikeSquared-Agency/EcoPack/internal/scoring"
	"github.com/MikeSquared-Agency/EcoPack/internal/store"
)

const topSuitabilityCount = 5

type SuitabilityEntry struct {
	Material string  `json:"material"`
	Score    float64 `json:"score"`
}

type Analytics struct {
	MaterialCount     int                   `json:"material_count"`
	AvgCostPerUnit    *float64              `json:"avg_cost_per_unit"`
	AvgBaselineImpact *float64              `json:"avg_baseline_impact"`
	TopSuitability    []SuitabilityEntry    `json:"top_suitability"`
	Usage             []store.MaterialUsage `json:"usage"`
	RecordedRuns      int                   `json:"recorded_runs"`
	TotalRecommended  int                   `json:"total_recommended"`
}

// Analytics summarizes the catalog and recorded usage.
func (s *Service) Analytics(ctx context.Context) (*Analytics, error) {
	materials, err := s.Materials(ctx)
	if err != nil {
		return nil, err
	}
	usage, err := s.store.UsageCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("usage counts: %w", err)
	}
	runs, err := s.store.ListRuns(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}

	a := &Analytics{
		MaterialCount:     len(materials),
		AvgCostPerUnit:    average(materials, scoring.AttrCostPerUnit),
		AvgBaselineImpact: average(materials, scoring.AttrBaselineImpact),
		TopSuitability:    topSuitability(materials, topSuitabilityCount),
		Usage:             usage,
		RecordedRuns:      len(runs),
	}
	if a.Usage == nil {
		a.Usage = []store.MaterialUsage{}
	}
	for _, u := range usage {
		a.TotalRecommended += u.Count
	}
	return a, nil
}

// average is nil when no material records the attribute.
func average(materials []scoring.Material, attr scoring.Attribute) *float64 {
	var sum float64
	var n int
	for i := range materials {
		if v, ok := materials[i].Value(attr); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return nil
	}
	return scoring.Float(sum / float64(n))
}

func topSuitability(materials []scoring.Material, n int) []SuitabilityEntry {
	entries := make([]SuitabilityEntry, 0, len(materials))
	for i := range materials {
		if score, ok := scoring.StaticSuitability(&materials[i]); ok {
			entries = append(entries, SuitabilityEntry{Material: materials[i].Name, Score: score})
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Material < entries[j].Material
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}
