package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/salesdash/salesdash-backend/internal/dashboard/domain"
	"github.com/salesdash/salesdash-backend/internal/dashboard/state"
	"github.com/salesdash/salesdash-backend/pkg/logger"
	"github.com/salesdash/salesdash-backend/pkg/metrics"
)

// AnalyticsSource supplies the three dashboard datasets
type AnalyticsSource interface {
	GetStats(ctx context.Context) (domain.Stats, error)
	GetTrends(ctx context.Context) ([]domain.TrendPoint, error)
	GetForecast(ctx context.Context) ([]domain.TrendPoint, error)
}

// Dispatcher accepts state actions
type Dispatcher interface {
	Dispatch(ctx context.Context, a state.Action) error
}

// Loader fetches analytics datasets and feeds the results to the coordinator
type Loader struct {
	source     AnalyticsSource
	dispatcher Dispatcher
	metrics    *metrics.Metrics
	logger     *logger.Logger
	now        func() time.Time
}

// NewLoader creates a new loader. m may be nil.
func NewLoader(source AnalyticsSource, dispatcher Dispatcher, m *metrics.Metrics, log *logger.Logger) *Loader {
	return &Loader{
		source:     source,
		dispatcher: dispatcher,
		metrics:    m,
		logger:     log.WithComponent("loader"),
		now:        time.Now,
	}
}

// Load fetches every dataset
func (l *Loader) Load(ctx context.Context) error {
	return l.Refresh(ctx, domain.AllDatasets...)
}

// Refresh fetches the given datasets concurrently. Each fetch is independent:
// a failure is logged and recorded as a FetchFailed action and never stops the
// others. Nothing is retried. The only error returned is a dispatch failure,
// which means the coordinator is gone.
func (l *Loader) Refresh(ctx context.Context, datasets ...domain.Dataset) error {
	seen := make(map[domain.Dataset]bool, len(datasets))

	g, gctx := errgroup.WithContext(ctx)
	for _, d := range datasets {
		if !d.Valid() {
			return fmt.Errorf("unknown dataset %q", d)
		}
		if seen[d] {
			continue
		}
		seen[d] = true

		d := d
		g.Go(func() error {
			return l.fetch(gctx, d)
		})
	}

	return g.Wait()
}

func (l *Loader) fetch(ctx context.Context, d domain.Dataset) error {
	start := time.Now()
	action, err := l.retrieve(ctx, d)
	l.recordFetch(d, err, time.Since(start))

	if err != nil {
		l.logger.WithDataset(string(d)).Error().Err(err).Msg("analytics fetch failed")
		action = state.FetchFailed{Dataset: d, Err: err, At: l.now()}
	}

	if err := l.dispatcher.Dispatch(ctx, action); err != nil {
		return fmt.Errorf("failed to dispatch %s: %w", d, err)
	}
	return nil
}

func (l *Loader) retrieve(ctx context.Context, d domain.Dataset) (state.Action, error) {
	switch d {
	case domain.DatasetStats:
		stats, err := l.source.GetStats(ctx)
		if err != nil {
			return nil, err
		}
		return state.StatsArrived{Stats: stats, At: l.now()}, nil

	case domain.DatasetTrends:
		points, err := l.source.GetTrends(ctx)
		if err != nil {
			return nil, err
		}
		if points == nil {
			points = []domain.TrendPoint{}
		}
		return state.HistoryArrived{Points: points, At: l.now()}, nil

	default:
		points, err := l.source.GetForecast(ctx)
		if err != nil {
			return nil, err
		}
		return state.ForecastArrived{Points: points, At: l.now()}, nil
	}
}

func (l *Loader) recordFetch(d domain.Dataset, err error, elapsed time.Duration) {
	if l.metrics == nil {
		return
	}
	l.metrics.RecordFetch(string(d), err, elapsed)
}
