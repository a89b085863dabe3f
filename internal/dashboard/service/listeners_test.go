package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/salesdash/salesdash-backend/internal/dashboard/domain"
	"github.com/salesdash/salesdash-backend/internal/dashboard/state"
	"github.com/salesdash/salesdash-backend/pkg/logger"
	"github.com/salesdash/salesdash-backend/pkg/metrics"
)

func TestMetricsListener(t *testing.T) {
	m := metrics.New("dashboard-service")
	listener := MetricsListener(m)

	s := state.Initial()
	s.History = []domain.TrendPoint{domain.Observed("Jan", 1), domain.Observed("Feb", 2)}
	s.Forecast = []domain.TrendPoint{domain.Projected("Mar", 3)}
	s.LastOutcome = domain.OutcomeBridged

	listener(context.Background(), s)
	listener(context.Background(), s)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.StitchTotal.WithLabelValues(domain.OutcomeBridged)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.TrendPoints.WithLabelValues("history")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TrendPoints.WithLabelValues("forecast")))
}

func TestLogListener(t *testing.T) {
	var buf bytes.Buffer
	listener := LogListener(logger.NewWithWriter("test", &buf))

	s := state.Initial()
	s.LastOutcome = domain.OutcomeHistoryOnly
	listener(context.Background(), s)

	assert.Contains(t, buf.String(), `"outcome":"history_only"`)
	assert.Contains(t, buf.String(), "trend stitched")
}
