package service

import (
	"context"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/stat"

	"github.com/salesdash/salesdash-backend/internal/analytics/domain"
	"github.com/salesdash/salesdash-backend/pkg/logger"
)

// DefaultHorizon is the number of forecast days served when none is requested.
const DefaultHorizon = 7

// SalesStore is the data the analytics service reads
type SalesStore interface {
	ListAmounts(ctx context.Context) ([]float64, error)
	DailyTotals(ctx context.Context) ([]domain.DailyTotal, error)
	ListForecast(ctx context.Context, limit int) ([]domain.ForecastRow, error)
}

// AnalyticsService computes the dashboard datasets from raw sales
type AnalyticsService struct {
	store          SalesStore
	defaultHorizon int
	logger         *logger.Logger
}

// NewAnalyticsService creates a new analytics service. A non-positive
// defaultHorizon falls back to DefaultHorizon.
func NewAnalyticsService(store SalesStore, defaultHorizon int, log *logger.Logger) *AnalyticsService {
	if defaultHorizon <= 0 {
		defaultHorizon = DefaultHorizon
	}
	return &AnalyticsService{
		store:          store,
		defaultHorizon: defaultHorizon,
		logger:         log.WithComponent("analytics"),
	}
}

// GetStats returns revenue, order count and average order value, rounded to
// cents. No sales means all zeros.
func (s *AnalyticsService) GetStats(ctx context.Context) (domain.Stats, error) {
	amounts, err := s.store.ListAmounts(ctx)
	if err != nil {
		return domain.Stats{}, err
	}

	if len(amounts) == 0 {
		return domain.Stats{}, nil
	}

	return domain.Stats{
		TotalRevenue:  round2(floats.Sum(amounts)),
		TotalOrders:   len(amounts),
		AvgOrderValue: round2(stat.Mean(amounts, nil)),
	}, nil
}

// GetTrends returns daily revenue, oldest first. Never nil.
func (s *AnalyticsService) GetTrends(ctx context.Context) ([]domain.TrendPoint, error) {
	totals, err := s.store.DailyTotals(ctx)
	if err != nil {
		return nil, err
	}

	points := make([]domain.TrendPoint, 0, len(totals))
	for _, t := range totals {
		points = append(points, domain.TrendPoint{
			Date:   t.Day.Format(domain.DateLayout),
			Amount: round2(t.Amount),
		})
	}
	return points, nil
}

// GetForecast returns up to horizon upcoming forecast days, oldest first.
// A non-positive horizon uses the service default. Never nil.
func (s *AnalyticsService) GetForecast(ctx context.Context, horizon int) ([]domain.ForecastPoint, error) {
	if horizon <= 0 {
		horizon = s.defaultHorizon
	}

	rows, err := s.store.ListForecast(ctx, horizon)
	if err != nil {
		s.logger.Error().Err(err).Int("horizon", horizon).Msg("failed to read forecast")
		return nil, err
	}

	points := make([]domain.ForecastPoint, 0, len(rows))
	for _, r := range rows {
		points = append(points, domain.ForecastPoint{
			Date:     r.Date.Format(domain.DateLayout),
			Forecast: round2(r.Forecast),
		})
	}
	return points, nil
}

func round2(v float64) float64 {
	return scalar.Round(v, 2)
}
