package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/MikeSquared-Agency/EcoPack/internal/scoring"
)

var ErrCircuitOpen = errors.New("predictor circuit open")

type predictRequest struct {
	Instances []scoring.FeatureVector `json:"instances"`
}

// predictResponse keeps nulls distinct from zero; model servers commonly
// write a NaN estimate as null.
type predictResponse struct {
	Predictions []*float64 `json:"predictions"`
}

// values maps null predictions to NaN.
func (r predictResponse) values() []float64 {
	out := make([]float64, len(r.Predictions))
	for i, p := range r.Predictions {
		if p == nil {
			out[i] = math.NaN()
			continue
		}
		out[i] = *p
	}
	return out
}

// BreakerSettings controls when the client stops calling a failing model server.
type BreakerSettings struct {
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

// HTTPClient calls a model server that accepts {"instances": [[...]]} and
// answers {"predictions": [...]}.
type HTTPClient struct {
	name       string
	url        string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *slog.Logger
}

func NewHTTPClient(name, url string, timeout time.Duration, bs BreakerSettings, logger *slog.Logger) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if bs.FailureThreshold == 0 {
		bs.FailureThreshold = 5
	}
	if logger == nil {
		logger = slog.Default()
	}
	settings := gobreaker.Settings{
		Name:        "predictor-" + name,
		MaxRequests: 1,
		Timeout:     bs.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= bs.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("predictor circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}
	return &HTTPClient{
		name:       name,
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		breaker:    gobreaker.NewCircuitBreaker(settings),
		logger:     logger,
	}
}

// Predict sends the whole batch in one request.
func (c *HTTPClient) Predict(ctx context.Context, features []scoring.FeatureVector) ([]float64, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.doReq(ctx, features)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %s", ErrCircuitOpen, c.name)
	}
	if err != nil {
		return nil, err
	}
	return result.([]float64), nil
}

// State reports the breaker state: closed, half-open or open.
func (c *HTTPClient) State() string {
	return c.breaker.State().String()
}

func (c *HTTPClient) doReq(ctx context.Context, features []scoring.FeatureVector) ([]float64, error) {
	payload, err := json.Marshal(predictRequest{Instances: features})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("predictor %s: %d %s", c.name, resp.StatusCode, string(body))
	}

	var out predictResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("predictor %s: decode response: %w", c.name, err)
	}
	if len(out.Predictions) != len(features) {
		return nil, fmt.Errorf("predictor %s: %d predictions for %d instances", c.name, len(out.Predictions), len(features))
	}
	return out.values(), nil
}
