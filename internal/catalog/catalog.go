package catalog

import (
	"context"
	"log/slog"
	"strings"

	"github.com/MikeSquared-Agency/EcoPack/internal/scoring"
)

// Source lists candidate materials. category is a hint; sources that cannot
// pre-filter return the full catalog and the engine applies the rules.
type Source interface {
	List(ctx context.Context, category string) ([]scoring.Material, error)
}

// Writer replaces the stored catalog. Implemented by sources backed by
// mutable storage.
type Writer interface {
	ReplaceAll(ctx context.Context, materials []scoring.Material) (int64, error)
}

// dedupe drops unnamed entries and repeated names, keeping the first occurrence.
func dedupe(materials []scoring.Material, logger *slog.Logger) []scoring.Material {
	if logger == nil {
		logger = slog.Default()
	}
	seen := make(map[string]bool, len(materials))
	out := materials[:0:0]
	for _, m := range materials {
		m.Name = strings.TrimSpace(m.Name)
		if m.Name == "" {
			logger.Warn("skipping catalog entry without a name")
			continue
		}
		if seen[m.Name] {
			logger.Warn("skipping duplicate catalog entry", "material", m.Name)
			continue
		}
		seen[m.Name] = true
		out = append(out, m)
	}
	return out
}
