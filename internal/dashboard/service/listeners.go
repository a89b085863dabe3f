package service

import (
	"context"

	"github.com/salesdash/salesdash-backend/internal/dashboard/state"
	"github.com/salesdash/salesdash-backend/pkg/logger"
	"github.com/salesdash/salesdash-backend/pkg/metrics"
)

// MetricsListener records every stitch outcome and the size of both source series.
func MetricsListener(m *metrics.Metrics) state.StitchListener {
	return func(_ context.Context, s state.State) {
		m.RecordStitch(s.LastOutcome, len(s.History), len(s.Forecast))
	}
}

// LogListener logs every stitch at debug level.
func LogListener(log *logger.Logger) state.StitchListener {
	return func(_ context.Context, s state.State) {
		log.Debug().
			Str("outcome", s.LastOutcome).
			Int("history_points", len(s.History)).
			Int("forecast_points", len(s.Forecast)).
			Int("trend_points", len(s.Trend)).
			Int("stitches", s.Stitches).
			Msg("trend stitched")
	}
}
