package messaging

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Event types
const (
	// Analytics events, published by the ingestion side and the upstream forecast job
	EventSalesIngested   = "analytics.sales.ingested"
	EventForecastUpdated = "analytics.forecast.updated"

	// Dashboard events
	EventTrendStitched = "dashboard.trend.stitched"
)

// Exchange names
const (
	ExchangeAnalyticsEvents = "analytics.events"
	ExchangeDashboardEvents = "dashboard.events"
	ExchangeDeadLetter      = "dlx.events"
)

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            uuid.NewString(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// SalesIngestedEvent is published after new sales rows land in the sales table
type SalesIngestedEvent struct {
	Rows int       `json:"rows"`
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// ForecastUpdatedEvent is published when the forecast job rewrites revenue_forecasts
type ForecastUpdatedEvent struct {
	Horizon     int       `json:"horizon"`
	GeneratedAt time.Time `json:"generated_at"`
}

// TrendStitchedEvent is published every time the dashboard recomputes its merged trend
type TrendStitchedEvent struct {
	Outcome        string `json:"outcome"`
	HistoryPoints  int    `json:"history_points"`
	ForecastPoints int    `json:"forecast_points"`
	BridgeDate     string `json:"bridge_date,omitempty"`
}
