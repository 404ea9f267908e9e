package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/MikeSquared-Agency/EcoPack/internal/scoring"
)

// columnAliases maps accepted CSV header names onto material fields.
var columnAliases = map[string]string{
	"name":                     "name",
	"material":                 "name",
	"material_name":            "name",
	"category":                 "category",
	"material_type":            "category",
	"strength":                 "strength",
	"weight_capacity":          "weight_capacity",
	"recyclability":            "recyclability",
	"recyclability_percentage": "recyclability",
	"recyclability_percent":    "recyclability",
	"biodegradability":         "biodegradability",
	"biodegradability_score":   "biodegradability",
	"cost_per_unit":            "cost_per_unit",
	"cost":                     "cost_per_unit",
	"baseline_impact":          "baseline_impact",
	"co2_emission_score":       "baseline_impact",
}

// ReadCSV parses a catalog CSV with a header row. Empty numeric cells are
// left unset.
func ReadCSV(r io.Reader) ([]scoring.Material, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	fields := make([]string, len(header))
	hasName := false
	for i, h := range header {
		fields[i] = columnAliases[strings.ToLower(strings.TrimSpace(h))]
		if fields[i] == "name" {
			hasName = true
		}
	}
	if !hasName {
		return nil, fmt.Errorf("csv header has no material name column")
	}

	var out []scoring.Material
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
		var m scoring.Material
		for i, cell := range rec {
			if i >= len(fields) || fields[i] == "" {
				continue
			}
			cell = strings.TrimSpace(cell)
			switch fields[i] {
			case "name":
				m.Name = cell
				continue
			case "category":
				m.Category = cell
				continue
			}
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("csv line %d column %s: %w", line, header[i], err)
			}
			setAttribute(&m, fields[i], v)
		}
		out = append(out, m)
	}
	return out, nil
}

func setAttribute(m *scoring.Material, field string, v float64) {
	switch field {
	case "strength":
		m.Strength = scoring.Float(v)
	case "weight_capacity":
		m.WeightCapacity = scoring.Float(v)
	case "recyclability":
		m.Recyclability = scoring.Float(v)
	case "biodegradability":
		m.Biodegradability = scoring.Float(v)
	case "cost_per_unit":
		m.CostPerUnit = scoring.Float(v)
	case "baseline_impact":
		m.BaselineImpact = scoring.Float(v)
	}
}
