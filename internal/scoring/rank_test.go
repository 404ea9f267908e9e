package scoring

import (
	"math"
	"testing"
)

func candidate(name string, score, cost, impact float64) ScoredCandidate {
	m := &Material{Name: name}
	return ScoredCandidate{Material: m, Score: score, PredictedCost: cost, PredictedImpact: impact}
}

func TestSelectOrdersAndTruncates(t *testing.T) {
	scored := []ScoredCandidate{
		candidate("A", 0.2, 1.0, 4.0),
		candidate("B", 0.9, 2.0, 1.0),
		candidate("C", 0.5, 1.5, 2.0),
		candidate("D", 0.7, 3.0, 3.0),
	}
	sel := Select(scored, 3, BaselineMax)
	if len(sel.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(sel.Items))
	}
	want := []string{"B", "D", "C"}
	for i, item := range sel.Items {
		if item.Material != want[i] {
			t.Errorf("rank %d: expected %s, got %s", i+1, want[i], item.Material)
		}
		if item.Rank != i+1 {
			t.Errorf("expected rank %d, got %d", i+1, item.Rank)
		}
		if i > 0 && item.Score > sel.Items[i-1].Score {
			t.Errorf("scores not non-increasing at %d", i)
		}
	}
	if scored[0].Material.Name != "A" {
		t.Error("Select must not reorder its input")
	}
}

func TestSelectKLargerThanSet(t *testing.T) {
	scored := []ScoredCandidate{candidate("A", 0.5, 1, 1), candidate("B", 0.4, 1, 1)}
	if got := len(Select(scored, 10, BaselineMax).Items); got != 2 {
		t.Errorf("expected 2 items, got %d", got)
	}
	if got := len(Select(scored, 0, BaselineMax).Items); got != 0 {
		t.Errorf("expected 0 items, got %d", got)
	}
	if got := len(Select(nil, 3, BaselineMax).Items); got != 0 {
		t.Errorf("expected 0 items, got %d", got)
	}
}

func TestTieBreakByCostThenName(t *testing.T) {
	scored := []ScoredCandidate{
		candidate("Zeta", 0.6, 1.0, 1),
		candidate("Alpha", 0.6+1e-12, 1.0, 1),
		candidate("Mid", 0.6, 0.5, 1),
	}
	ranked := Rank(scored)
	want := []string{"Mid", "Alpha", "Zeta"}
	for i, c := range ranked {
		if c.Material.Name != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], c.Material.Name)
		}
	}
}

func TestLessIsTransitiveNearTolerance(t *testing.T) {
	// each neighbouring pair is within tolerance, the outer pair is not
	cs := []ScoredCandidate{
		candidate("A", 0.5, 1, 1),
		candidate("B", 0.5+0.8e-9, 2, 1),
		candidate("C", 0.5+1.6e-9, 3, 1),
	}
	for i := range cs {
		for j := range cs {
			for k := range cs {
				if Less(&cs[i], &cs[j]) && Less(&cs[j], &cs[k]) && !Less(&cs[i], &cs[k]) {
					t.Errorf("not transitive: %s < %s < %s but not %s < %s",
						cs[i].Material.Name, cs[j].Material.Name, cs[k].Material.Name,
						cs[i].Material.Name, cs[k].Material.Name)
				}
			}
		}
	}

	orders := [][]int{{0, 1, 2}, {2, 1, 0}, {1, 0, 2}, {2, 0, 1}}
	var first []string
	for _, order := range orders {
		in := make([]ScoredCandidate, len(order))
		for i, idx := range order {
			in[i] = cs[idx]
		}
		var got []string
		for _, c := range Rank(in) {
			got = append(got, c.Material.Name)
		}
		if first == nil {
			first = got
			continue
		}
		for i := range got {
			if got[i] != first[i] {
				t.Fatalf("ranking depends on input order: %v vs %v", first, got)
			}
		}
	}
}

func TestBaselineMaxSavings(t *testing.T) {
	scored := []ScoredCandidate{
		candidate("Cheap", 0.9, 0.5, 1.0),
		candidate("Pricey", 0.1, 2.0, 4.0),
	}
	sel := Select(scored, 1, BaselineMax)
	if sel.Baseline.Cost != 2.0 || sel.Baseline.Impact != 4.0 {
		t.Errorf("unexpected baseline: %+v", sel.Baseline)
	}
	item := sel.Items[0]
	if item.CostSavings != 1.5 {
		t.Errorf("expected savings 1.5, got %f", item.CostSavings)
	}
	if math.Abs(item.ImpactReductionPercent-75) > 1e-9 {
		t.Errorf("expected 75%% reduction, got %f", item.ImpactReductionPercent)
	}
}

func TestBaselineMeanAllowsNegativeSavings(t *testing.T) {
	scored := []ScoredCandidate{
		candidate("Best", 0.9, 3.0, 5.0),
		candidate("Other", 0.1, 1.0, 1.0),
	}
	sel := Select(scored, 2, BaselineMean)
	if sel.Baseline.Cost != 2.0 || sel.Baseline.Impact != 3.0 {
		t.Errorf("unexpected mean baseline: %+v", sel.Baseline)
	}
	if sel.Items[0].CostSavings != -1.0 {
		t.Errorf("expected unclamped savings -1.0, got %f", sel.Items[0].CostSavings)
	}
	if sel.Items[0].ImpactReductionPercent != 0 {
		t.Errorf("expected reduction clamped to 0, got %f", sel.Items[0].ImpactReductionPercent)
	}
}

func TestImpactReduction(t *testing.T) {
	tests := []struct {
		baseline, impact, want float64
	}{
		{4, 1, 75},
		{4, 4, 0},
		{4, 6, 0},
		{4, -1, 100},
		{0, 1, 0},
		{-2, 1, 0},
	}
	for _, tt := range tests {
		if got := ImpactReduction(tt.baseline, tt.impact); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("ImpactReduction(%f, %f) = %f, expected %f", tt.baseline, tt.impact, got, tt.want)
		}
	}
}

func TestComputeFrontier(t *testing.T) {
	candidates := []ParetoCandidate{
		{Material: "A", Cost: 1, Impact: 5, Suitability: 0.5},
		{Material: "B", Cost: 2, Impact: 2, Suitability: 0.5},
		{Material: "C", Cost: 3, Impact: 3, Suitability: 0.4}, // dominated by B
		{Material: "D", Cost: 4, Impact: 4, Suitability: 0.9},
	}
	frontier := ComputeFrontier(candidates)
	got := make([]string, len(frontier))
	for i, c := range frontier {
		got[i] = c.Material
	}
	if !equalStrings(got, []string{"A", "B", "D"}) {
		t.Errorf("unexpected frontier: %v", got)
	}
}

func TestFrontierNames(t *testing.T) {
	scored := []ScoredCandidate{
		candidate("A", 0.5, 1, 1),
		candidate("B", 0.5, 2, 2),
	}
	if got := FrontierNames(scored); !equalStrings(got, []string{"A"}) {
		t.Errorf("expected only A on frontier, got %v", got)
	}
}
