package scoring

import (
	"fmt"
	"sort"
	"strings"

	"github.com/MikeSquared-Agency/EcoPack/internal/config"
)

// Threshold is a set of attribute minimums. A zero minimum is unconstrained.
type Threshold struct {
	MinStrength         float64 `json:"min_strength,omitempty"`
	MinWeightCapacity   float64 `json:"min_weight_capacity,omitempty"`
	MinRecyclability    float64 `json:"min_recyclability,omitempty"`
	MinBiodegradability float64 `json:"min_biodegradability,omitempty"`
}

func thresholdFromConfig(c config.ThresholdConfig) Threshold {
	return Threshold{
		MinStrength:         c.MinStrength,
		MinWeightCapacity:   c.MinWeightCapacity,
		MinRecyclability:    c.MinRecyclability,
		MinBiodegradability: c.MinBiodegradability,
	}
}

func (t Threshold) IsZero() bool {
	return t.MinStrength <= 0 && t.MinWeightCapacity <= 0 &&
		t.MinRecyclability <= 0 && t.MinBiodegradability <= 0
}

// Allows reports whether m meets every constrained minimum. A material
// lacking a constrained attribute fails.
func (t Threshold) Allows(m *Material) bool {
	checks := [...]struct {
		attr Attribute
		min  float64
	}{
		{AttrStrength, t.MinStrength},
		{AttrWeightCapacity, t.MinWeightCapacity},
		{AttrRecyclability, t.MinRecyclability},
		{AttrBiodegradability, t.MinBiodegradability},
	}
	for _, c := range checks {
		if c.min <= 0 {
			continue
		}
		v, ok := m.Value(c.attr)
		if !ok || v < c.min {
			return false
		}
	}
	return true
}

// FilterPolicy decides what happens when a rule would eliminate every candidate.
type FilterPolicy string

const (
	// PolicyRelax skips a rule that would empty the eligible set.
	PolicyRelax FilterPolicy = "relax"
	// PolicyStrict applies every rule even if nothing survives.
	PolicyStrict FilterPolicy = "strict"
)

// RuleSet holds the category and fragility threshold tables.
type RuleSet struct {
	Categories map[string]Threshold
	Fragility  map[Fragility]Threshold
	Policy     FilterPolicy
}

// RuleSetFromConfig builds the rule tables from engine configuration.
func RuleSetFromConfig(cfg config.EngineConfig) RuleSet {
	rs := RuleSet{
		Categories: make(map[string]Threshold, len(cfg.Categories)),
		Fragility:  make(map[Fragility]Threshold, len(cfg.Fragility)),
		Policy:     FilterPolicy(cfg.FilterPolicy),
	}
	for name, t := range cfg.Categories {
		rs.Categories[strings.ToLower(name)] = thresholdFromConfig(t)
	}
	for level, t := range cfg.Fragility {
		rs.Fragility[Fragility(strings.ToLower(level))] = thresholdFromConfig(t)
	}
	if rs.Policy == "" {
		rs.Policy = PolicyRelax
	}
	return rs
}

// DefaultRuleSet returns the built-in category and fragility tables.
func DefaultRuleSet() RuleSet {
	return RuleSetFromConfig(config.DefaultEngineConfig())
}

// Category looks up the category rule, case-insensitively.
func (r RuleSet) Category(name string) (Threshold, error) {
	t, ok := r.Categories[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Threshold{}, &ValidationError{
			Field:   "product_category",
			Message: fmt.Sprintf("unknown category %q", name),
			Err:     ErrUnknownCategory,
		}
	}
	return t, nil
}

// CategoryNames lists the configured categories.
func (r RuleSet) CategoryNames() []string {
	names := make([]string, 0, len(r.Categories))
	for name := range r.Categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FilterOutcome is the eligible subset plus the rules that shaped it.
type FilterOutcome struct {
	Eligible []*Material
	Applied  []string
	Relaxed  []string
}

type namedRule struct {
	name      string
	threshold Threshold
}

// Filter applies the category rule, then the fragility rule, then any explicit
// request minimums. Eligible entries point into catalog and keep its order.
func (r RuleSet) Filter(catalog []Material, rc RequestContext) (FilterOutcome, error) {
	catRule, err := r.Category(rc.ProductCategory)
	if err != nil {
		return FilterOutcome{}, err
	}

	rules := []namedRule{{name: "category:" + strings.ToLower(rc.ProductCategory), threshold: catRule}}
	if t, ok := r.Fragility[rc.Fragility]; ok {
		rules = append(rules, namedRule{name: "fragility:" + string(rc.Fragility), threshold: t})
	}
	explicit := Threshold{MinStrength: rc.MinStrength, MinWeightCapacity: rc.MinWeightCapacity}
	if !explicit.IsZero() {
		rules = append(rules, namedRule{name: "request", threshold: explicit})
	}

	current := make([]*Material, 0, len(catalog))
	for i := range catalog {
		current = append(current, &catalog[i])
	}

	var outcome FilterOutcome
	for _, rule := range rules {
		if rule.threshold.IsZero() {
			continue
		}
		next := make([]*Material, 0, len(current))
		for _, m := range current {
			if rule.threshold.Allows(m) {
				next = append(next, m)
			}
		}
		if len(next) == 0 && len(current) > 0 && r.Policy != PolicyStrict {
			outcome.Relaxed = append(outcome.Relaxed, rule.name)
			continue
		}
		outcome.Applied = append(outcome.Applied, rule.name)
		current = next
	}
	outcome.Eligible = current
	return outcome, nil
}
