package hermes

import "time"

type RecommendedItem struct {
	Material               string  `json:"material"`
	Rank                   int     `json:"rank"`
	PredictedCost          float64 `json:"predicted_cost"`
	PredictedImpact        float64 `json:"predicted_impact"`
	ImpactReductionPercent float64 `json:"impact_reduction_percent"`
}

type RecommendationRecordedEvent struct {
	RunID                  string            `json:"run_id"`
	Status                 string            `json:"status"`
	ProductCategory        string            `json:"product_category"`
	Fragility              string            `json:"fragility"`
	ShippingType           string            `json:"shipping_type"`
	SustainabilityPriority string            `json:"sustainability_priority"`
	EligibleCount          int               `json:"eligible_count"`
	Relaxed                []string          `json:"relaxed,omitempty"`
	Items                  []RecommendedItem `json:"items"`
	Persisted              bool              `json:"persisted"`
	Timestamp              time.Time         `json:"timestamp"`
}

type HistoryClearedEvent struct {
	ClearedBy string    `json:"cleared_by,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type CatalogUpdatedEvent struct {
	Source    string    `json:"source"`
	Materials int       `json:"materials"`
	Timestamp time.Time `json:"timestamp"`
}
