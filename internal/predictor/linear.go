package predictor

import (
	"context"
	"fmt"

	"github.com/MikeSquared-Agency/EcoPack/internal/config"
	"github.com/MikeSquared-Agency/EcoPack/internal/scoring"
)

// Linear evaluates intercept + coefficients . features in process.
type Linear struct {
	Intercept    float64
	Coefficients []float64
}

func NewLinear(cfg config.ModelConfig) *Linear {
	return &Linear{Intercept: cfg.Intercept, Coefficients: append([]float64(nil), cfg.Coefficients...)}
}

func (l *Linear) Predict(ctx context.Context, features []scoring.FeatureVector) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]float64, len(features))
	for i, f := range features {
		if len(f) != len(l.Coefficients) {
			return nil, fmt.Errorf("linear model expects %d features, got %d", len(l.Coefficients), len(f))
		}
		v := l.Intercept
		for j, c := range l.Coefficients {
			v += c * f[j]
		}
		out[i] = v
	}
	return out, nil
}

