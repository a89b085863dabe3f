package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/salesdash/salesdash-backend/internal/dashboard/domain"
	"github.com/salesdash/salesdash-backend/pkg/httputil"
	"github.com/salesdash/salesdash-backend/pkg/logger"
)

// maxBodySize caps how much of an analytics response is read.
const maxBodySize = 8 << 20

// AnalyticsClient calls the analytics service from the dashboard service
type AnalyticsClient struct {
	baseURL         string
	forecastHorizon int
	httpClient      *http.Client
	logger          *logger.Logger
}

// NewAnalyticsClient creates a new analytics service client.
// A zero timeout falls back to 10 seconds and a zero horizon lets the server pick.
func NewAnalyticsClient(baseURL string, timeout time.Duration, forecastHorizon int, log *logger.Logger) *AnalyticsClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &AnalyticsClient{
		baseURL:         baseURL,
		forecastHorizon: forecastHorizon,
		httpClient:      &http.Client{Timeout: timeout},
		logger:          log.WithComponent("analytics_client"),
	}
}

// StatusError is returned when the analytics service answers with a non-2xx status
type StatusError struct {
	Path       string
	StatusCode int
	Code       string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("analytics %s returned %d: %s", e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("analytics %s returned %d", e.Path, e.StatusCode)
}

// GetStats fetches the revenue summary
func (c *AnalyticsClient) GetStats(ctx context.Context) (domain.Stats, error) {
	var stats domain.Stats

	data, err := c.get(ctx, "/api/v1/analytics/stats", nil)
	if err != nil {
		return stats, err
	}
	if err := json.Unmarshal(data, &stats); err != nil {
		return stats, fmt.Errorf("failed to decode stats: %w", err)
	}
	return stats, nil
}

// GetTrends fetches the observed daily revenue, oldest first
func (c *AnalyticsClient) GetTrends(ctx context.Context) ([]domain.TrendPoint, error) {
	data, err := c.get(ctx, "/api/v1/analytics/trends", nil)
	if err != nil {
		return nil, err
	}

	var points []domain.TrendPoint
	if err := json.Unmarshal(data, &points); err != nil {
		return nil, fmt.Errorf("failed to decode trends: %w", err)
	}
	return points, nil
}

// GetForecast fetches the projected daily revenue. A payload that is not an
// array of points is not an error: it is logged and reported as nil points.
func (c *AnalyticsClient) GetForecast(ctx context.Context) ([]domain.TrendPoint, error) {
	var query url.Values
	if c.forecastHorizon > 0 {
		query = url.Values{"horizon": {strconv.Itoa(c.forecastHorizon)}}
	}

	data, err := c.get(ctx, "/api/v1/analytics/forecast", query)
	if err != nil {
		return nil, err
	}

	points, ok := domain.ParseForecast(data)
	if !ok {
		c.logger.Warn().
			Int("payload_bytes", len(data)).
			Msg("forecast payload is not a list of points, ignoring it")
		return nil, nil
	}
	return points, nil
}

// get performs a GET and returns the "data" member of the response envelope.
// Bare JSON bodies without an envelope are returned as is.
func (c *AnalyticsClient) get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if requestID := httputil.GetRequestID(ctx); requestID != "" {
		httpReq.Header.Set("X-Request-ID", requestID)
	}

	c.logger.Debug().Str("path", path).Msg("calling analytics service")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call analytics service: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read analytics response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := &StatusError{Path: path, StatusCode: resp.StatusCode}
		var errResp httputil.Response
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != nil {
			statusErr.Code = errResp.Error.Code
			statusErr.Message = errResp.Error.Message
		}
		return nil, statusErr
	}

	return unwrapEnvelope(body), nil
}

func unwrapEnvelope(body []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return trimmed
	}

	var envelope struct {
		Success *bool           `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil || envelope.Success == nil {
		return trimmed
	}
	if envelope.Data == nil {
		return json.RawMessage("null")
	}
	return envelope.Data
}
