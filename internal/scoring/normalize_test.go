package scoring

import (
	"math"
	"testing"
)

func approxSlice(t *testing.T, got, want []float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length %d, expected %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("index %d: got %f, expected %f", i, got[i], want[i])
		}
	}
}

func TestMinMax(t *testing.T) {
	approxSlice(t, MinMax([]float64{1, 2, 3}, HigherIsBetter), []float64{0, 0.5, 1})
	approxSlice(t, MinMax([]float64{1, 2, 3}, LowerIsBetter), []float64{1, 0.5, 0})
	approxSlice(t, MinMax([]float64{10, 0, 5}, HigherIsBetter), []float64{1, 0, 0.5})
}

func TestMinMaxDegenerate(t *testing.T) {
	approxSlice(t, MinMax([]float64{4, 4, 4}, HigherIsBetter), []float64{0.5, 0.5, 0.5})
	approxSlice(t, MinMax([]float64{7}, LowerIsBetter), []float64{0.5})
	if got := MinMax(nil, HigherIsBetter); len(got) != 0 {
		t.Errorf("expected empty output, got %v", got)
	}
}

func TestMinMaxWideRange(t *testing.T) {
	values := []float64{-math.MaxFloat64, 0, math.MaxFloat64}
	approxSlice(t, MinMax(values, HigherIsBetter), []float64{0, 0.5, 1})
	approxSlice(t, MinMax(values, LowerIsBetter), []float64{1, 0.5, 0})
}

func TestClampNaN(t *testing.T) {
	if got := clamp(math.NaN(), 0, 1); got != 0 {
		t.Errorf("NaN should clamp to the lower bound, got %f", got)
	}
	if got := clamp(2, 0, 1); got != 1 {
		t.Errorf("expected 1, got %f", got)
	}
}

func TestPercentileRank(t *testing.T) {
	approxSlice(t, PercentileRank([]float64{10, 20, 20, 30}, HigherIsBetter), []float64{0, 0.5, 0.5, 1})
	approxSlice(t, PercentileRank([]float64{10, 20, 20, 30}, LowerIsBetter), []float64{1, 0.5, 0.5, 0})
	approxSlice(t, PercentileRank([]float64{3, 1, 2}, HigherIsBetter), []float64{1, 0, 0.5})
}

func TestPercentileRankDegenerate(t *testing.T) {
	approxSlice(t, PercentileRank([]float64{2}, HigherIsBetter), []float64{0.5})
	approxSlice(t, PercentileRank([]float64{2, 2}, LowerIsBetter), []float64{0.5, 0.5})
}

func TestNormalizeByStrategy(t *testing.T) {
	values := []float64{1, 2, 100}
	mm := StrategyMinMax.Normalize(values, HigherIsBetter)
	pr := StrategyPercentile.Normalize(values, HigherIsBetter)
	if mm[1] == pr[1] {
		t.Errorf("expected strategies to differ on skewed input, both gave %f", mm[1])
	}
	approxSlice(t, pr, []float64{0, 0.5, 1})
	approxSlice(t, Strategy("").Normalize(values, HigherIsBetter), mm)
}

func TestNormalizeRange(t *testing.T) {
	values := []float64{0.3, 12.5, -2, 7, 7, 1e6}
	for _, s := range []Strategy{StrategyMinMax, StrategyPercentile} {
		for _, d := range []Direction{HigherIsBetter, LowerIsBetter} {
			for i, v := range s.Normalize(values, d) {
				if v < 0 || v > 1 {
					t.Errorf("%s/%d index %d out of range: %f", s, d, i, v)
				}
			}
		}
	}
}
