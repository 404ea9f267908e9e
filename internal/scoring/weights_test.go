package scoring

import (
	"math"
	"testing"

	"github.com/MikeSquared-Agency/EcoPack/internal/config"
)

func approxWeights(t *testing.T, got, want Weights) {
	t.Helper()
	if math.Abs(got.Eco-want.Eco) > 1e-9 || math.Abs(got.Cost-want.Cost) > 1e-9 ||
		math.Abs(got.Suitability-want.Suitability) > 1e-9 {
		t.Errorf("got %+v, expected %+v", got, want)
	}
}

func TestResolveWeights(t *testing.T) {
	cfg := DefaultWeightConfig()
	tests := []struct {
		name     string
		priority Priority
		shipping ShippingType
		want     Weights
	}{
		{"medium domestic", PriorityMedium, ShippingDomestic, Weights{Eco: 0.4, Cost: 0.4, Suitability: 0.2}},
		{"high domestic", PriorityHigh, ShippingDomestic, Weights{Eco: 0.7, Cost: 0.2, Suitability: 0.2}.scaled(1 / 1.1)},
		{"low domestic", PriorityLow, ShippingDomestic, Weights{Eco: 0.2, Cost: 0.6, Suitability: 0.2}},
		{"high international", PriorityHigh, ShippingInternational, Weights{Eco: 0.9, Cost: 0.1, Suitability: 0.2}.scaled(1 / 1.2)},
		{"low international", PriorityLow, ShippingInternational, Weights{Eco: 0.4, Cost: 0.5, Suitability: 0.2}.scaled(1 / 1.1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc := RequestContext{SustainabilityPriority: tt.priority, ShippingType: tt.shipping}
			got := ResolveWeights(rc, cfg)
			approxWeights(t, got, tt.want)
			if err := got.Validate(); err != nil {
				t.Errorf("resolved weights invalid: %v", err)
			}
		})
	}
}

func TestResolveWeightsHighPriorityRaisesEco(t *testing.T) {
	cfg := DefaultWeightConfig()
	for _, ship := range []ShippingType{ShippingDomestic, ShippingInternational} {
		high := ResolveWeights(RequestContext{SustainabilityPriority: PriorityHigh, ShippingType: ship}, cfg)
		low := ResolveWeights(RequestContext{SustainabilityPriority: PriorityLow, ShippingType: ship}, cfg)
		if high.Eco <= low.Eco {
			t.Errorf("%s: high eco %f not above low eco %f", ship, high.Eco, low.Eco)
		}
	}
}

func TestResolveWeightsClampsNegatives(t *testing.T) {
	cfg := WeightConfig{
		Base:           Weights{Eco: 0.1, Cost: 0.6, Suitability: 0.3},
		Sustainability: map[Priority]Weights{PriorityHigh: {Eco: 0.5, Cost: -1.0}},
	}
	got := ResolveWeights(RequestContext{SustainabilityPriority: PriorityHigh}, cfg)
	if got.Cost != 0 {
		t.Errorf("expected cost clamped to 0, got %f", got.Cost)
	}
	approxWeights(t, got, Weights{Eco: 0.6 / 0.9, Suitability: 0.3 / 0.9})
}

func TestResolveWeightsAllClampedFallsBackToBase(t *testing.T) {
	cfg := WeightConfig{
		Base:     Weights{Eco: 0.5, Cost: 0.3, Suitability: 0.2},
		Shipping: map[ShippingType]Weights{ShippingInternational: {Eco: -1, Cost: -1, Suitability: -1}},
	}
	got := ResolveWeights(RequestContext{ShippingType: ShippingInternational}, cfg)
	approxWeights(t, got, cfg.Base)
}

func TestResolveWeightsEmptyConfig(t *testing.T) {
	got := ResolveWeights(RequestContext{}, WeightConfig{})
	approxWeights(t, got, Weights{Eco: 1.0 / 3, Cost: 1.0 / 3, Suitability: 1.0 / 3})
}

func TestWeightsValidate(t *testing.T) {
	if err := (Weights{Eco: 0.5, Cost: 0.5}).Validate(); err != nil {
		t.Errorf("expected valid weights, got %v", err)
	}
	if err := (Weights{Eco: 0.5, Cost: 0.4}).Validate(); err == nil {
		t.Error("expected error for sum 0.9")
	}
	if err := (Weights{Eco: 1.2, Cost: -0.2}).Validate(); err == nil {
		t.Error("expected error for negative weight")
	}
}

func TestSuitabilityWeightsFromConfig(t *testing.T) {
	got := SuitabilityWeightsFromConfig(config.SuitabilityWeights{Strength: 2, Recyclability: 1, Biodegradability: 1})
	if math.Abs(got.Strength-0.5) > 1e-12 || math.Abs(got.Recyclability-0.25) > 1e-12 {
		t.Errorf("unexpected normalization: %+v", got)
	}
	even := SuitabilityWeightsFromConfig(config.SuitabilityWeights{})
	if math.Abs(even.Strength+even.Recyclability+even.Biodegradability-1) > 1e-12 {
		t.Errorf("expected even split, got %+v", even)
	}
}

func (w Weights) scaled(f float64) Weights {
	return Weights{Eco: w.Eco * f, Cost: w.Cost * f, Suitability: w.Suitability * f}
}
