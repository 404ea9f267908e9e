package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Hermes    HermesConfig    `yaml:"hermes"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Predictor PredictorConfig `yaml:"predictor"`
	Engine    EngineConfig    `yaml:"engine"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	Port               int    `yaml:"port"`
	MetricsPort        int    `yaml:"metrics_port"`
	AdminToken         string `yaml:"admin_token"`
	RateLimitPerMinute int    `yaml:"rate_limit_per_minute"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type HermesConfig struct {
	URL string `yaml:"url"`
}

// CatalogConfig selects where candidate materials come from.
// Source is one of "postgres", "file" or "http".
type CatalogConfig struct {
	Source          string `yaml:"source"`
	Path            string `yaml:"path"`
	URL             string `yaml:"url"`
	CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
}

// PredictorConfig configures the cost and impact estimators.
// Mode "http" calls a model server; "linear" evaluates the coefficients locally.
type PredictorConfig struct {
	Mode      string        `yaml:"mode"`
	TimeoutMs int           `yaml:"timeout_ms"`
	Cost      ModelConfig   `yaml:"cost"`
	Impact    ModelConfig   `yaml:"impact"`
	Breaker   BreakerConfig `yaml:"breaker"`
}

type ModelConfig struct {
	URL          string    `yaml:"url"`
	Intercept    float64   `yaml:"intercept"`
	Coefficients []float64 `yaml:"coefficients"`
}

type BreakerConfig struct {
	FailureThreshold uint32 `yaml:"failure_threshold"`
	OpenTimeoutMs    int    `yaml:"open_timeout_ms"`
}

// EngineConfig holds every tunable of the ranking engine: rule tables,
// weight deltas, sub-weights and strategy switches.
type EngineConfig struct {
	TopK          int                        `yaml:"top_k"`
	Normalization string                     `yaml:"normalization"`
	Baseline      string                     `yaml:"baseline"`
	FilterPolicy  string                     `yaml:"filter_policy"`
	ParetoEnabled bool                       `yaml:"pareto_enabled"`
	Weights       WeightConfig               `yaml:"weights"`
	Suitability   SuitabilityWeights         `yaml:"suitability"`
	Categories    map[string]ThresholdConfig `yaml:"categories"`
	Fragility     map[string]ThresholdConfig `yaml:"fragility"`
	Scaler        ScalerConfig               `yaml:"scaler"`
}

type WeightTriple struct {
	Eco         float64 `yaml:"eco"`
	Cost        float64 `yaml:"cost"`
	Suitability float64 `yaml:"suitability"`
}

// WeightConfig is the base triple plus additive deltas keyed by
// sustainability priority and shipping type.
type WeightConfig struct {
	Base           WeightTriple            `yaml:"base"`
	Sustainability map[string]WeightTriple `yaml:"sustainability"`
	Shipping       map[string]WeightTriple `yaml:"shipping"`
}

type SuitabilityWeights struct {
	Strength         float64 `yaml:"strength"`
	Recyclability    float64 `yaml:"recyclability"`
	Biodegradability float64 `yaml:"biodegradability"`
}

// ThresholdConfig lists attribute minimums. Zero means unconstrained.
type ThresholdConfig struct {
	MinStrength         float64 `yaml:"min_strength"`
	MinWeightCapacity   float64 `yaml:"min_weight_capacity"`
	MinRecyclability    float64 `yaml:"min_recyclability"`
	MinBiodegradability float64 `yaml:"min_biodegradability"`
}

type ScalerConfig struct {
	Mean []float64 `yaml:"mean"`
	Std  []float64 `yaml:"std"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Config) PredictorTimeout() time.Duration {
	return time.Duration(c.Predictor.TimeoutMs) * time.Millisecond
}

func (c *Config) CatalogCacheTTL() time.Duration {
	return time.Duration(c.Catalog.CacheTTLSeconds) * time.Second
}

func (c *Config) BreakerOpenTimeout() time.Duration {
	return time.Duration(c.Predictor.Breaker.OpenTimeoutMs) * time.Millisecond
}

// DefaultEngineConfig returns the rule tables and weights used when no
// config file overrides them.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		TopK:          3,
		Normalization: "minmax",
		Baseline:      "max",
		FilterPolicy:  "relax",
		ParetoEnabled: false,
		Weights: WeightConfig{
			Base: WeightTriple{Eco: 0.4, Cost: 0.4, Suitability: 0.2},
			Sustainability: map[string]WeightTriple{
				"high":   {Eco: 0.3, Cost: -0.2},
				"medium": {},
				"low":    {Eco: -0.2, Cost: 0.2},
			},
			Shipping: map[string]WeightTriple{
				"international": {Eco: 0.2, Cost: -0.1},
				"domestic":      {},
			},
		},
		Suitability: SuitabilityWeights{
			Strength:         0.4,
			Recyclability:    0.3,
			Biodegradability: 0.3,
		},
		Categories: map[string]ThresholdConfig{
			"food":              {MinBiodegradability: 8, MinRecyclability: 60},
			"electronics":       {MinStrength: 4, MinWeightCapacity: 50, MinRecyclability: 50},
			"cosmetics":         {MinRecyclability: 85, MinBiodegradability: 6},
			"pharmaceuticals":   {MinBiodegradability: 7, MinStrength: 3},
			"fragile_goods":     {MinStrength: 4, MinWeightCapacity: 60},
			"textiles":          {MinRecyclability: 80},
			"furniture":         {MinStrength: 5, MinWeightCapacity: 70},
			"industrial_parts":  {MinStrength: 5, MinWeightCapacity: 80, MinRecyclability: 55},
			"stationery":        {MinRecyclability: 85},
			"ecommerce_general": {MinStrength: 3, MinWeightCapacity: 30, MinRecyclability: 60},
		},
		Fragility: map[string]ThresholdConfig{
			"high":   {MinStrength: 4, MinWeightCapacity: 60},
			"medium": {MinStrength: 3, MinWeightCapacity: 40},
			"low":    {MinStrength: 2},
		},
	}
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:               8700,
			MetricsPort:        8701,
			RateLimitPerMinute: 120,
		},
		Hermes: HermesConfig{
			URL: "nats://localhost:4222",
		},
		Catalog: CatalogConfig{
			Source:          "postgres",
			CacheTTLSeconds: 300,
		},
		Predictor: PredictorConfig{
			Mode:      "linear",
			TimeoutMs: 2000,
			Cost: ModelConfig{
				Intercept:    0.8,
				Coefficients: []float64{0.45, 0.012, -0.004, 0.06},
			},
			Impact: ModelConfig{
				Intercept:    7.5,
				Coefficients: []float64{0.25, 0.01, -0.03, -0.35},
			},
			Breaker: BreakerConfig{
				FailureThreshold: 5,
				OpenTimeoutMs:    30000,
			},
		},
		Engine: DefaultEngineConfig(),
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadDotEnv populates unset environment variables from a dotenv file.
// A missing file is not an error.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	switch c.Catalog.Source {
	case "postgres", "file", "http":
	default:
		return fmt.Errorf("catalog.source must be postgres, file or http, got %q", c.Catalog.Source)
	}
	if c.Catalog.Source == "file" && c.Catalog.Path == "" {
		return fmt.Errorf("catalog.path required for file source")
	}
	if c.Catalog.Source == "http" && c.Catalog.URL == "" {
		return fmt.Errorf("catalog.url required for http source")
	}

	switch c.Predictor.Mode {
	case "linear":
		if len(c.Predictor.Cost.Coefficients) != 4 || len(c.Predictor.Impact.Coefficients) != 4 {
			return fmt.Errorf("linear predictor needs 4 coefficients per model")
		}
	case "http":
		if c.Predictor.Cost.URL == "" || c.Predictor.Impact.URL == "" {
			return fmt.Errorf("http predictor needs cost.url and impact.url")
		}
	default:
		return fmt.Errorf("predictor.mode must be linear or http, got %q", c.Predictor.Mode)
	}

	e := c.Engine
	if e.TopK <= 0 {
		return fmt.Errorf("engine.top_k must be positive, got %d", e.TopK)
	}
	switch e.Normalization {
	case "minmax", "percentile":
	default:
		return fmt.Errorf("engine.normalization must be minmax or percentile, got %q", e.Normalization)
	}
	switch e.Baseline {
	case "max", "mean":
	default:
		return fmt.Errorf("engine.baseline must be max or mean, got %q", e.Baseline)
	}
	switch e.FilterPolicy {
	case "relax", "strict":
	default:
		return fmt.Errorf("engine.filter_policy must be relax or strict, got %q", e.FilterPolicy)
	}
	b := e.Weights.Base
	if b.Eco < 0 || b.Cost < 0 || b.Suitability < 0 || b.Eco+b.Cost+b.Suitability <= 0 {
		return fmt.Errorf("engine.weights.base must be non-negative with a positive sum")
	}
	s := e.Suitability
	if s.Strength < 0 || s.Recyclability < 0 || s.Biodegradability < 0 ||
		s.Strength+s.Recyclability+s.Biodegradability <= 0 {
		return fmt.Errorf("engine.suitability weights must be non-negative with a positive sum")
	}
	if len(e.Categories) == 0 {
		return fmt.Errorf("engine.categories must not be empty")
	}
	if len(e.Scaler.Mean) != len(e.Scaler.Std) {
		return fmt.Errorf("engine.scaler mean and std lengths differ")
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("ECOPACK_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("ECOPACK_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("ECOPACK_ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("ECOPACK_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("ECOPACK_HERMES_URL"); v != "" {
		cfg.Hermes.URL = v
	}
	if v := os.Getenv("ECOPACK_CATALOG_SOURCE"); v != "" {
		cfg.Catalog.Source = v
	}
	if v := os.Getenv("ECOPACK_CATALOG_PATH"); v != "" {
		cfg.Catalog.Path = v
	}
	if v := os.Getenv("ECOPACK_CATALOG_URL"); v != "" {
		cfg.Catalog.URL = v
	}
	if v := os.Getenv("ECOPACK_PREDICTOR_MODE"); v != "" {
		cfg.Predictor.Mode = v
	}
	if v := os.Getenv("ECOPACK_COST_MODEL_URL"); v != "" {
		cfg.Predictor.Cost.URL = v
	}
	if v := os.Getenv("ECOPACK_IMPACT_MODEL_URL"); v != "" {
		cfg.Predictor.Impact.URL = v
	}
	if v := os.Getenv("ECOPACK_PREDICTOR_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Predictor.TimeoutMs = n
		}
	}
	if v := os.Getenv("ECOPACK_TOP_K"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Engine.TopK = n
		}
	}
	if v := os.Getenv("ECOPACK_PARETO_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Engine.ParetoEnabled = b
		}
	}
	if v := os.Getenv("ECOPACK_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
