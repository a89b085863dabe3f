package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salesdash/salesdash-backend/internal/dashboard/domain"
	"github.com/salesdash/salesdash-backend/pkg/httputil"
	"github.com/salesdash/salesdash-backend/pkg/logger"
)

func newServer(t *testing.T, routes map[string]func(w http.ResponseWriter, r *http.Request)) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	for path, h := range routes {
		mux.HandleFunc(path, h)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func body(s string) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(s))
	}
}

func TestGetStats(t *testing.T) {
	srv := newServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"/api/v1/analytics/stats": body(`{"success":true,"data":{"total_revenue":1234.56,"total_orders":10,"avg_order_value":123.46}}`),
	})
	c := NewAnalyticsClient(srv.URL, time.Second, 7, logger.Nop())

	stats, err := c.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.Stats{TotalRevenue: 1234.56, TotalOrders: 10, AvgOrderValue: 123.46}, stats)
}

func TestGetTrends(t *testing.T) {
	srv := newServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"/api/v1/analytics/trends": body(`{"success":true,"data":[{"date":"2024-01-01","amount":100},{"date":"2024-01-02","amount":150}]}`),
	})
	c := NewAnalyticsClient(srv.URL, time.Second, 7, logger.Nop())

	points, err := c.GetTrends(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.TrendPoint{
		domain.Observed("2024-01-01", 100),
		domain.Observed("2024-01-02", 150),
	}, points)
}

func TestGetTrends_BareArray(t *testing.T) {
	srv := newServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"/api/v1/analytics/trends": body(`[{"date":"2024-01-01","amount":100}]`),
	})
	c := NewAnalyticsClient(srv.URL, time.Second, 7, logger.Nop())

	points, err := c.GetTrends(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.TrendPoint{domain.Observed("2024-01-01", 100)}, points)
}

func TestGetForecast(t *testing.T) {
	var horizon string
	srv := newServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"/api/v1/analytics/forecast": func(w http.ResponseWriter, r *http.Request) {
			horizon = r.URL.Query().Get("horizon")
			body(`{"success":true,"data":[{"date":"2024-01-03","forecast":180}]}`)(w, r)
		},
	})
	c := NewAnalyticsClient(srv.URL, time.Second, 14, logger.Nop())

	points, err := c.GetForecast(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.TrendPoint{domain.Projected("2024-01-03", 180)}, points)
	assert.Equal(t, "14", horizon)
}

func TestGetForecast_MalformedIsNotAnError(t *testing.T) {
	payloads := []string{
		`{"success":true,"data":"not-an-array"}`,
		`{"success":true,"data":{"date":"2024-01-03"}}`,
		`{"success":true,"data":null}`,
		`{"success":true}`,
		`"not-an-array"`,
		`42`,
	}

	for _, p := range payloads {
		t.Run(p, func(t *testing.T) {
			srv := newServer(t, map[string]func(http.ResponseWriter, *http.Request){
				"/api/v1/analytics/forecast": body(p),
			})
			c := NewAnalyticsClient(srv.URL, time.Second, 0, logger.Nop())

			points, err := c.GetForecast(context.Background())
			require.NoError(t, err)
			assert.Nil(t, points)
		})
	}
}

func TestGetForecast_EmptyArray(t *testing.T) {
	srv := newServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"/api/v1/analytics/forecast": body(`{"success":true,"data":[]}`),
	})
	c := NewAnalyticsClient(srv.URL, time.Second, 0, logger.Nop())

	points, err := c.GetForecast(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, points)
	assert.Empty(t, points)
}

func TestGet_StatusError(t *testing.T) {
	srv := newServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"/api/v1/analytics/trends": func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"success":false,"error":{"code":"UPSTREAM_UNAVAILABLE","message":"forecast store is unavailable"}}`))
		},
	})
	c := NewAnalyticsClient(srv.URL, time.Second, 0, logger.Nop())

	_, err := c.GetTrends(context.Background())
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.Equal(t, "UPSTREAM_UNAVAILABLE", statusErr.Code)
	assert.Contains(t, err.Error(), "forecast store is unavailable")
}

func TestGet_NotFoundWithoutBody(t *testing.T) {
	srv := newServer(t, nil)
	c := NewAnalyticsClient(srv.URL, time.Second, 0, logger.Nop())

	_, err := c.GetStats(context.Background())
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}

func TestGet_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewAnalyticsClient(url, time.Second, 0, logger.Nop())
	_, err := c.GetStats(context.Background())
	assert.ErrorContains(t, err, "failed to call analytics service")
}

func TestGet_Timeout(t *testing.T) {
	srv := newServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"/api/v1/analytics/stats": func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-time.After(time.Second):
			case <-r.Context().Done():
			}
		},
	})
	c := NewAnalyticsClient(srv.URL, 20*time.Millisecond, 0, logger.Nop())

	_, err := c.GetStats(context.Background())
	assert.Error(t, err)
}

func TestGet_ForwardsRequestID(t *testing.T) {
	var seen string
	srv := newServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"/api/v1/analytics/stats": func(w http.ResponseWriter, r *http.Request) {
			seen = r.Header.Get("X-Request-ID")
			body(`{"success":true,"data":{}}`)(w, r)
		},
	})
	c := NewAnalyticsClient(srv.URL, time.Second, 0, logger.Nop())

	var captured string
	h := httputil.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = httputil.GetRequestID(r.Context())
		_, err := c.GetStats(r.Context())
		require.NoError(t, err)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEmpty(t, captured)
	assert.Equal(t, captured, seen)
}
