package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/salesdash/salesdash-backend/internal/analytics/domain"
	"github.com/salesdash/salesdash-backend/pkg/errors"
	"github.com/salesdash/salesdash-backend/pkg/httputil"
	"github.com/salesdash/salesdash-backend/pkg/logger"
)

// Service is the analytics service as seen by the handler
type Service interface {
	GetStats(ctx context.Context) (domain.Stats, error)
	GetTrends(ctx context.Context) ([]domain.TrendPoint, error)
	GetForecast(ctx context.Context, horizon int) ([]domain.ForecastPoint, error)
}

// AnalyticsHandler handles analytics endpoints
type AnalyticsHandler struct {
	service Service
	logger  *logger.Logger
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(svc Service, log *logger.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: svc,
		logger:  log,
	}
}

// RegisterRoutes mounts the analytics endpoints on r
func (h *AnalyticsHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/analytics", func(r chi.Router) {
		r.Get("/stats", h.GetStats)
		r.Get("/trends", h.GetTrends)
		r.Get("/forecast", h.GetForecast)
	})
}

// GetStats returns sales statistics
func (h *AnalyticsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetStats(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, stats)
}

// GetTrends returns daily revenue
func (h *AnalyticsHandler) GetTrends(w http.ResponseWriter, r *http.Request) {
	trends, err := h.service.GetTrends(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, trends)
}

// GetForecast returns upcoming forecast days.
// Query: ?horizon=N (1..90, default from config)
func (h *AnalyticsHandler) GetForecast(w http.ResponseWriter, r *http.Request) {
	horizon := 0
	if raw := r.URL.Query().Get("horizon"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			httputil.Error(w, errors.Validation(map[string]string{"horizon": "must be an integer"}))
			return
		}
		if err := httputil.ValidateVar("horizon", n, "min=1,max=90"); err != nil {
			httputil.Error(w, err)
			return
		}
		horizon = n
	}

	forecast, err := h.service.GetForecast(r.Context(), horizon)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, forecast)
}
