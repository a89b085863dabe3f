package handler

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/salesdash/salesdash-backend/internal/dashboard/chart"
	"github.com/salesdash/salesdash-backend/internal/dashboard/domain"
	"github.com/salesdash/salesdash-backend/internal/dashboard/state"
	"github.com/salesdash/salesdash-backend/pkg/errors"
	"github.com/salesdash/salesdash-backend/pkg/httputil"
	"github.com/salesdash/salesdash-backend/pkg/logger"
)

// StateReader gives read access to the dashboard state
type StateReader interface {
	Snapshot(ctx context.Context) (state.State, error)
	Policy() state.Policy
}

// Refresher reloads dashboard datasets
type Refresher interface {
	Refresh(ctx context.Context, datasets ...domain.Dataset) error
}

// DashboardHandler handles dashboard endpoints
type DashboardHandler struct {
	state     StateReader
	refresher Refresher
	renderer  *chart.Renderer
	logger    *logger.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(st StateReader, refresher Refresher, renderer *chart.Renderer, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		state:     st,
		refresher: refresher,
		renderer:  renderer,
		logger:    log,
	}
}

// RegisterRoutes mounts the dashboard endpoints on r
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/dashboard", func(r chi.Router) {
		r.Get("/stats", h.GetStats)
		r.Get("/trend", h.GetTrend)
		r.Get("/chart", h.GetChart)
		r.Post("/refresh", h.Refresh)
	})
}

// DatasetStatus is the load status of one dataset as shown to clients
type DatasetStatus struct {
	Status    state.LoadStatus `json:"status"`
	LastError string           `json:"last_error,omitempty"`
	UpdatedAt *time.Time       `json:"updated_at,omitempty"`
}

// TrendResponse is the merged trend plus how it was produced
type TrendResponse struct {
	Trend       []domain.TrendPoint              `json:"trend"`
	BridgeIndex int                              `json:"bridge_index"`
	Outcome     string                           `json:"outcome,omitempty"`
	Stitches    int                              `json:"stitches"`
	Policy      state.Policy                     `json:"policy"`
	Datasets    map[domain.Dataset]DatasetStatus `json:"datasets"`
}

// RefreshRequest names the datasets to reload
type RefreshRequest struct {
	Datasets []string `json:"datasets" validate:"required,min=1,dive,oneof=stats trends forecast"`
}

// GetStats returns the summary cards. Stats that never loaded are zero.
func (h *DashboardHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	s, err := h.snapshot(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, s.Stats)
}

// GetTrend returns the merged trend and per-dataset load status
func (h *DashboardHandler) GetTrend(w http.ResponseWriter, r *http.Request) {
	s, err := h.snapshot(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, h.trendResponse(s))
}

// GetChart renders the trend chart page
func (h *DashboardHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	s, err := h.snapshot(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, s.Trend, s.Stats); err != nil {
		h.logger.Error().Err(err).Msg("failed to render chart")
		httputil.Error(w, errors.Internal("failed to render chart"))
		return
	}

	httputil.HTML(w, http.StatusOK, buf.Bytes())
}

// Refresh reloads the requested datasets and returns the resulting trend.
// Individual fetch failures show up in the dataset statuses, not as an error.
func (h *DashboardHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	datasets := make([]domain.Dataset, 0, len(req.Datasets))
	for _, d := range req.Datasets {
		datasets = append(datasets, domain.Dataset(d))
	}

	if err := h.refresher.Refresh(r.Context(), datasets...); err != nil {
		h.logger.Error().Err(err).Msg("refresh failed")
		httputil.Error(w, unavailable(err))
		return
	}

	s, err := h.snapshot(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, h.trendResponse(s))
}

func (h *DashboardHandler) snapshot(ctx context.Context) (state.State, error) {
	s, err := h.state.Snapshot(ctx)
	if err != nil {
		return state.State{}, unavailable(err)
	}
	return s, nil
}

func (h *DashboardHandler) trendResponse(s state.State) TrendResponse {
	trend := s.Trend
	if trend == nil {
		trend = []domain.TrendPoint{}
	}

	datasets := make(map[domain.Dataset]DatasetStatus, len(s.Datasets))
	for d, ds := range s.Datasets {
		status := DatasetStatus{Status: ds.Status, LastError: ds.LastError}
		if !ds.UpdatedAt.IsZero() {
			at := ds.UpdatedAt
			status.UpdatedAt = &at
		}
		datasets[d] = status
	}

	return TrendResponse{
		Trend:       trend,
		BridgeIndex: domain.BridgeIndex(trend),
		Outcome:     s.LastOutcome,
		Stitches:    s.Stitches,
		Policy:      h.state.Policy(),
		Datasets:    datasets,
	}
}

func unavailable(err error) *errors.AppError {
	return errors.Wrap(err, "DASHBOARD_UNAVAILABLE", "dashboard state is unavailable", http.StatusServiceUnavailable)
}
