package predictor

import (
	"fmt"
	"log/slog"

	"github.com/MikeSquared-Agency/EcoPack/internal/config"
	"github.com/MikeSquared-Agency/EcoPack/internal/scoring"
)

// FromConfig builds the cost and impact predictors for the configured mode.
func FromConfig(cfg *config.Config, logger *slog.Logger) (cost, impact scoring.Predictor, err error) {
	switch cfg.Predictor.Mode {
	case "linear":
		return NewLinear(cfg.Predictor.Cost), NewLinear(cfg.Predictor.Impact), nil
	case "http":
		bs := BreakerSettings{
			FailureThreshold: cfg.Predictor.Breaker.FailureThreshold,
			OpenTimeout:      cfg.BreakerOpenTimeout(),
		}
		cost = NewHTTPClient("cost", cfg.Predictor.Cost.URL, cfg.PredictorTimeout(), bs, logger)
		impact = NewHTTPClient("impact", cfg.Predictor.Impact.URL, cfg.PredictorTimeout(), bs, logger)
		return cost, impact, nil
	default:
		return nil, nil, fmt.Errorf("unknown predictor mode %q", cfg.Predictor.Mode)
	}
}
