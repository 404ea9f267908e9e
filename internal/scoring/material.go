package scoring

import (
	"fmt"
	"math"
	"strings"
)

// Attribute names a measurable property of a packaging material.
type Attribute string

const (
	AttrStrength         Attribute = "strength"
	AttrWeightCapacity   Attribute = "weight_capacity"
	AttrRecyclability    Attribute = "recyclability"
	AttrBiodegradability Attribute = "biodegradability"
	AttrCostPerUnit      Attribute = "cost_per_unit"
	AttrBaselineImpact   Attribute = "baseline_impact"
)

// Material is one catalog entry. Attributes are optional; a nil value means
// the catalog did not record it.
//
// Strength is an ordinal 1-5, WeightCapacity is in kg, Recyclability is a
// percentage 0-100 and Biodegradability is a 0-10 score.
type Material struct {
	Name             string   `json:"name" yaml:"name"`
	Category         string   `json:"category,omitempty" yaml:"category"`
	Strength         *float64 `json:"strength,omitempty" yaml:"strength"`
	WeightCapacity   *float64 `json:"weight_capacity,omitempty" yaml:"weight_capacity"`
	Recyclability    *float64 `json:"recyclability,omitempty" yaml:"recyclability"`
	Biodegradability *float64 `json:"biodegradability,omitempty" yaml:"biodegradability"`
	CostPerUnit      *float64 `json:"cost_per_unit,omitempty" yaml:"cost_per_unit"`
	BaselineImpact   *float64 `json:"baseline_impact,omitempty" yaml:"baseline_impact"`
}

// Value returns the attribute and whether it is present as a finite number.
func (m *Material) Value(a Attribute) (float64, bool) {
	var p *float64
	switch a {
	case AttrStrength:
		p = m.Strength
	case AttrWeightCapacity:
		p = m.WeightCapacity
	case AttrRecyclability:
		p = m.Recyclability
	case AttrBiodegradability:
		p = m.Biodegradability
	case AttrCostPerUnit:
		p = m.CostPerUnit
	case AttrBaselineImpact:
		p = m.BaselineImpact
	}
	if p == nil || math.IsNaN(*p) || math.IsInf(*p, 0) {
		return 0, false
	}
	return *p, true
}

// Float is a helper for building materials in code.
func Float(v float64) *float64 {
	return &v
}

type Fragility string

const (
	FragilityLow    Fragility = "low"
	FragilityMedium Fragility = "medium"
	FragilityHigh   Fragility = "high"
)

func (f Fragility) Valid() bool {
	switch f {
	case FragilityLow, FragilityMedium, FragilityHigh:
		return true
	}
	return false
}

type ShippingType string

const (
	ShippingDomestic      ShippingType = "domestic"
	ShippingInternational ShippingType = "international"
)

func (s ShippingType) Valid() bool {
	return s == ShippingDomestic || s == ShippingInternational
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// RequestContext describes the product being packed.
type RequestContext struct {
	ProductCategory        string       `json:"product_category"`
	Fragility              Fragility    `json:"fragility"`
	ShippingType           ShippingType `json:"shipping_type"`
	SustainabilityPriority Priority     `json:"sustainability_priority"`

	// Optional explicit minimums on top of the rule tables. Zero means none.
	MinStrength       float64 `json:"min_strength,omitempty"`
	MinWeightCapacity float64 `json:"min_weight_capacity,omitempty"`
}

// Normalized returns a copy with enum and category fields trimmed and lower-cased.
func (rc RequestContext) Normalized() RequestContext {
	rc.ProductCategory = strings.ToLower(strings.TrimSpace(rc.ProductCategory))
	rc.Fragility = Fragility(strings.ToLower(strings.TrimSpace(string(rc.Fragility))))
	rc.ShippingType = ShippingType(strings.ToLower(strings.TrimSpace(string(rc.ShippingType))))
	rc.SustainabilityPriority = Priority(strings.ToLower(strings.TrimSpace(string(rc.SustainabilityPriority))))
	return rc
}

// Validate checks the request fields. Category membership is checked by the
// rule set since the category table is configurable.
func (rc RequestContext) Validate() error {
	if rc.ProductCategory == "" {
		return &ValidationError{Field: "product_category", Message: "is required"}
	}
	if !rc.Fragility.Valid() {
		return &ValidationError{Field: "fragility", Message: fmt.Sprintf("must be low, medium or high, got %q", rc.Fragility)}
	}
	if !rc.ShippingType.Valid() {
		return &ValidationError{Field: "shipping_type", Message: fmt.Sprintf("must be domestic or international, got %q", rc.ShippingType)}
	}
	if !rc.SustainabilityPriority.Valid() {
		return &ValidationError{Field: "sustainability_priority", Message: fmt.Sprintf("must be low, medium or high, got %q", rc.SustainabilityPriority)}
	}
	if rc.MinStrength < 0 || math.IsNaN(rc.MinStrength) {
		return &ValidationError{Field: "min_strength", Message: "must be non-negative"}
	}
	if rc.MinWeightCapacity < 0 || math.IsNaN(rc.MinWeightCapacity) {
		return &ValidationError{Field: "min_weight_capacity", Message: "must be non-negative"}
	}
	return nil
}
