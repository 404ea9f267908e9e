package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/MikeSquared-Agency/EcoPack/internal/scoring"
)

// HTTPSource fetches the catalog from a remote materials service.
type HTTPSource struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewHTTPSource(baseURL string, logger *slog.Logger) *HTTPSource {
	return &HTTPSource{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

type materialsResponse struct {
	Materials []scoring.Material `json:"materials"`
}

func (s *HTTPSource) List(ctx context.Context, category string) ([]scoring.Material, error) {
	path := "/api/v1/materials"
	if category != "" {
		path += "?category=" + url.QueryEscape(category)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("catalog service: %d %s", resp.StatusCode, string(body))
	}

	var out materialsResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("catalog service: decode: %w", err)
	}
	return dedupe(out.Materials, s.logger), nil
}
