package scoring

// ParetoCandidate places a candidate on the three trade-off axes.
type ParetoCandidate struct {
	Material    string  `json:"material"`
	Cost        float64 `json:"cost"`        // lower is better
	Impact      float64 `json:"impact"`      // lower is better
	Suitability float64 `json:"suitability"` // higher is better
}

// ParetoCandidates projects scored candidates onto the trade-off axes.
func ParetoCandidates(scored []ScoredCandidate) []ParetoCandidate {
	out := make([]ParetoCandidate, len(scored))
	for i, c := range scored {
		out[i] = ParetoCandidate{
			Material:    c.Material.Name,
			Cost:        c.PredictedCost,
			Impact:      c.PredictedImpact,
			Suitability: c.Scores.Suitability,
		}
	}
	return out
}

// ComputeFrontier returns the Pareto-optimal candidates from the input set,
// preserving input order. O(n^2) is fine at catalog scale.
func ComputeFrontier(candidates []ParetoCandidate) []ParetoCandidate {
	if len(candidates) <= 1 {
		return candidates
	}

	var frontier []ParetoCandidate
	for i := range candidates {
		dominated := false
		for j := range candidates {
			if i == j {
				continue
			}
			if dominates(candidates[j], candidates[i]) {
				dominated = true
				break
			}
		}
		if !dominated {
			frontier = append(frontier, candidates[i])
		}
	}
	return frontier
}

// dominates returns true if a is no worse than b on every axis and strictly
// better on at least one.
func dominates(a, b ParetoCandidate) bool {
	if a.Cost > b.Cost || a.Impact > b.Impact || a.Suitability < b.Suitability {
		return false
	}
	return a.Cost < b.Cost || a.Impact < b.Impact || a.Suitability > b.Suitability
}

// FrontierNames returns the material names on the frontier of scored.
func FrontierNames(scored []ScoredCandidate) []string {
	frontier := ComputeFrontier(ParetoCandidates(scored))
	names := make([]string, len(frontier))
	for i, c := range frontier {
		names[i] = c.Material
	}
	return names
}
