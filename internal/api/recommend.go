package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/EcoPack/internal/recommender"
	"github.com/MikeSquared-Agency/EcoPack/internal/scoring"
	"github.com/MikeSquared-Agency/EcoPack/internal/store"
)

// Recommender is the service surface the HTTP handlers depend on.
type Recommender interface {
	Recommend(ctx context.Context, req recommender.RecommendRequest) (*store.Run, error)
	History(ctx context.Context, limit int) ([]*store.Run, error)
	GetRun(ctx context.Context, id uuid.UUID) (*store.Run, error)
	ClearHistory(ctx context.Context, clearedBy string) error
	Materials(ctx context.Context) ([]scoring.Material, error)
	Analytics(ctx context.Context) (*recommender.Analytics, error)
	Categories() []string
}

type RecommendHandler struct {
	svc Recommender
}

func NewRecommendHandler(svc Recommender) *RecommendHandler {
	return &RecommendHandler{svc: svc}
}

type recommendRequest struct {
	ProductCategory        string  `json:"product_category" validate:"required"`
	Fragility              string  `json:"fragility" validate:"required,oneof=low medium high"`
	ShippingType           string  `json:"shipping_type" validate:"required,oneof=domestic international"`
	SustainabilityPriority string  `json:"sustainability_priority" validate:"required,oneof=low medium high"`
	MinStrength            float64 `json:"min_strength" validate:"gte=0"`
	MinWeightCapacity      float64 `json:"min_weight_capacity" validate:"gte=0"`
	TopK                   int     `json:"top_k" validate:"omitempty,min=1,max=50"`
}

func (r *recommendRequest) normalize() {
	r.ProductCategory = strings.ToLower(strings.TrimSpace(r.ProductCategory))
	r.Fragility = strings.ToLower(strings.TrimSpace(r.Fragility))
	r.ShippingType = strings.ToLower(strings.TrimSpace(r.ShippingType))
	r.SustainabilityPriority = strings.ToLower(strings.TrimSpace(r.SustainabilityPriority))
}

// Recommend runs one recommendation.
// POST /api/v1/recommend
func (h *RecommendHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	req.normalize()
	if err := getValidator().Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  "validation failed",
			"fields": validationFields(err),
		})
		return
	}

	run, err := h.svc.Recommend(r.Context(), recommender.RecommendRequest{
		RequestContext: scoring.RequestContext{
			ProductCategory:        req.ProductCategory,
			Fragility:              scoring.Fragility(req.Fragility),
			ShippingType:           scoring.ShippingType(req.ShippingType),
			SustainabilityPriority: scoring.Priority(req.SustainabilityPriority),
			MinStrength:            req.MinStrength,
			MinWeightCapacity:      req.MinWeightCapacity,
		},
		TopK: req.TopK,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// History lists recorded runs oldest first.
// GET /api/v1/history?limit=N
func (h *RecommendHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		limit = n
	}
	runs, err := h.svc.History(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

// Run returns a single recorded run with its scoring factors.
// GET /api/v1/runs/{id}
func (h *RecommendHandler) Run(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid run id"})
		return
	}
	run, err := h.svc.GetRun(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if run == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "run not found"})
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// ClearHistory removes recorded runs.
// POST /api/v1/history/clear
func (h *RecommendHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ClearHistory(r.Context(), r.Header.Get(clientIDHeader)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// Materials lists the catalog.
// GET /api/v1/materials
func (h *RecommendHandler) Materials(w http.ResponseWriter, r *http.Request) {
	materials, err := h.svc.Materials(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, materials)
}

// Categories lists the configured product categories.
// GET /api/v1/categories
func (h *RecommendHandler) Categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Categories())
}

// Analytics summarizes the catalog and usage.
// GET /api/v1/analytics
func (h *RecommendHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.Analytics(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func writeError(w http.ResponseWriter, err error) {
	var ve *scoring.ValidationError
	var sm *scoring.SchemaMismatchError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  "validation failed",
			"fields": map[string]string{ve.Field: ve.Message},
		})
	case errors.As(err, &sm):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":   sm.Error(),
			"missing": sm.Missing,
		})
	case errors.Is(err, scoring.ErrCatalogUnavailable):
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
	case errors.Is(err, context.Canceled):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "request canceled"})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
