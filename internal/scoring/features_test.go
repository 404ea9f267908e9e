package scoring

import (
	"math"
	"testing"

	"github.com/MikeSquared-Agency/EcoPack/internal/config"
)

func TestBuildFeaturesOrder(t *testing.T) {
	m := mat("Molded Pulp", 3, 35, 85, 9, 0.7, 1.5)
	v, missing := BuildFeatures(&m)
	if len(missing) != 0 {
		t.Fatalf("unexpected missing attributes: %v", missing)
	}
	want := FeatureVector{3, 35, 85, 9}
	for i := range want {
		if v[i] != want[i] {
			t.Errorf("feature %d = %f, expected %f", i, v[i], want[i])
		}
	}
}

func TestBuildFeaturesReportsMissingAndNonFinite(t *testing.T) {
	m := mat("Odd", 3, 35, 85, 9, 0.7, 1.5)
	m.WeightCapacity = nil
	m.Biodegradability = Float(math.NaN())
	_, missing := BuildFeatures(&m)
	if len(missing) != 2 || missing[0] != AttrWeightCapacity || missing[1] != AttrBiodegradability {
		t.Errorf("unexpected missing attributes: %v", missing)
	}
}

func TestScalerTransform(t *testing.T) {
	s, err := NewScaler([]float64{3, 40, 80, 5}, []float64{1, 10, 0, 2})
	if err != nil {
		t.Fatal(err)
	}
	got := s.Transform(FeatureVector{4, 60, 90, 9})
	want := FeatureVector{1, 2, 10, 2}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("feature %d = %f, expected %f", i, got[i], want[i])
		}
	}
}

func TestNilScalerIsIdentity(t *testing.T) {
	s, err := NewScaler(nil, nil)
	if err != nil || s != nil {
		t.Fatalf("expected nil scaler, got %v %v", s, err)
	}
	in := FeatureVector{1, 2, 3, 4}
	out := s.Transform(in)
	out[0] = 99
	if in[0] != 1 {
		t.Error("Transform must not alias its input")
	}
}

func TestNewScalerRejectsWrongLength(t *testing.T) {
	if _, err := NewScaler([]float64{1, 2}, []float64{1, 2}); err == nil {
		t.Error("expected error for short scaler")
	}
}

func TestFeatureAdapterFromConfig(t *testing.T) {
	cfg := config.DefaultEngineConfig()
	cfg.Scaler = config.ScalerConfig{Mean: []float64{0, 0, 0, 0}, Std: []float64{2, 2, 2, 2}}
	a, err := FeatureAdapterFromConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	m := mat("Kraft Paper", 2, 15, 95, 8, 0.2, 1.2)
	vecs, err := a.Build([]*Material{&m})
	if err != nil {
		t.Fatal(err)
	}
	if vecs[0][0] != 1 || vecs[0][2] != 47.5 {
		t.Errorf("unexpected scaled features: %v", vecs[0])
	}
}
