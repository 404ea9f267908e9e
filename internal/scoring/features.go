package scoring

import (
	"fmt"

	"github.com/MikeSquared-Agency/EcoPack/internal/config"
)

// FeatureOrder is the attribute order of every FeatureVector.
var FeatureOrder = []Attribute{AttrStrength, AttrWeightCapacity, AttrRecyclability, AttrBiodegradability}

// FeatureVector is the predictor input for one material, in FeatureOrder.
type FeatureVector []float64

// Scaler standardises features as (x - mean) / std. A zero std is treated as 1.
type Scaler struct {
	mean []float64
	std  []float64
}

// NewScaler returns nil when both slices are empty, meaning no scaling.
func NewScaler(mean, std []float64) (*Scaler, error) {
	if len(mean) == 0 && len(std) == 0 {
		return nil, nil
	}
	if len(mean) != len(FeatureOrder) || len(std) != len(FeatureOrder) {
		return nil, fmt.Errorf("scaler needs %d means and stds, got %d and %d",
			len(FeatureOrder), len(mean), len(std))
	}
	s := &Scaler{mean: append([]float64(nil), mean...), std: append([]float64(nil), std...)}
	for i, v := range s.std {
		if v == 0 {
			s.std[i] = 1
		}
	}
	return s, nil
}

func (s *Scaler) Transform(v FeatureVector) FeatureVector {
	out := make(FeatureVector, len(v))
	copy(out, v)
	if s == nil {
		return out
	}
	for i := range out {
		out[i] = (out[i] - s.mean[i]) / s.std[i]
	}
	return out
}

// FeatureAdapter turns materials into predictor inputs.
type FeatureAdapter struct {
	scaler *Scaler
}

func NewFeatureAdapter(scaler *Scaler) FeatureAdapter {
	return FeatureAdapter{scaler: scaler}
}

// FeatureAdapterFromConfig builds the adapter from the engine scaler section.
func FeatureAdapterFromConfig(cfg config.EngineConfig) (FeatureAdapter, error) {
	scaler, err := NewScaler(cfg.Scaler.Mean, cfg.Scaler.Std)
	if err != nil {
		return FeatureAdapter{}, err
	}
	return NewFeatureAdapter(scaler), nil
}

// BuildFeatures returns the raw feature vector of m and the attributes it lacks.
func BuildFeatures(m *Material) (FeatureVector, []Attribute) {
	v := make(FeatureVector, len(FeatureOrder))
	var missing []Attribute
	for i, attr := range FeatureOrder {
		val, ok := m.Value(attr)
		if !ok {
			missing = append(missing, attr)
			continue
		}
		v[i] = val
	}
	return v, missing
}

// Build converts every eligible material. If any material lacks a feature
// the whole batch is rejected with a SchemaMismatchError.
func (a FeatureAdapter) Build(eligible []*Material) ([]FeatureVector, error) {
	out := make([]FeatureVector, len(eligible))
	var mismatch *SchemaMismatchError
	for i, m := range eligible {
		v, missing := BuildFeatures(m)
		if len(missing) > 0 {
			if mismatch == nil {
				mismatch = &SchemaMismatchError{Missing: map[string][]Attribute{}}
			}
			mismatch.Missing[m.Name] = missing
			continue
		}
		out[i] = a.scaler.Transform(v)
	}
	if mismatch != nil {
		return nil, mismatch
	}
	return out, nil
}
