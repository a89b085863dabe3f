package consumers

import (
	"context"

	"github.com/salesdash/salesdash-backend/internal/dashboard/domain"
	"github.com/salesdash/salesdash-backend/pkg/logger"
	"github.com/salesdash/salesdash-backend/pkg/messaging"
)

const queueName = "dashboard-service.analytics-events"

// Refresher reloads dashboard datasets
type Refresher interface {
	Refresh(ctx context.Context, datasets ...domain.Dataset) error
}

// AnalyticsEventHandler turns analytics events into dataset refreshes (testable without RabbitMQ)
type AnalyticsEventHandler struct {
	refresher Refresher
	logger    *logger.Logger
}

// NewAnalyticsEventHandler creates a new handler
func NewAnalyticsEventHandler(refresher Refresher, log *logger.Logger) *AnalyticsEventHandler {
	return &AnalyticsEventHandler{
		refresher: refresher,
		logger:    log,
	}
}

// HandleEvent routes an analytics event to the matching refresh
func (h *AnalyticsEventHandler) HandleEvent(ctx context.Context, event *messaging.Event) error {
	switch event.Type {
	case messaging.EventSalesIngested:
		return h.handleSalesIngested(ctx, event)
	case messaging.EventForecastUpdated:
		return h.handleForecastUpdated(ctx, event)
	default:
		h.logger.Warn().Str("event_type", event.Type).Msg("unknown event type received")
		return nil
	}
}

// AnalyticsEventConsumer refreshes the dashboard when analytics data changes
type AnalyticsEventConsumer struct {
	consumer *messaging.Consumer
	handler  *AnalyticsEventHandler
	logger   *logger.Logger
}

// NewAnalyticsEventConsumer binds the dashboard queue to analytics.#
func NewAnalyticsEventConsumer(rmq *messaging.RabbitMQ, refresher Refresher, log *logger.Logger) (*AnalyticsEventConsumer, error) {
	consumer, err := messaging.NewConsumer(rmq, queueName, log)
	if err != nil {
		return nil, err
	}

	if err := consumer.Subscribe(messaging.ExchangeAnalyticsEvents, "analytics.#"); err != nil {
		return nil, err
	}

	handler := NewAnalyticsEventHandler(refresher, log)
	consumer.RegisterHandler(messaging.EventSalesIngested, handler.handleSalesIngested)
	consumer.RegisterHandler(messaging.EventForecastUpdated, handler.handleForecastUpdated)

	return &AnalyticsEventConsumer{
		consumer: consumer,
		handler:  handler,
		logger:   log,
	}, nil
}

// Start starts consuming messages
func (c *AnalyticsEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Start(ctx)
}

// handleSalesIngested reloads stats and history. The forecast is left alone;
// with the restitch policy the new history is stitched against the held forecast.
func (h *AnalyticsEventHandler) handleSalesIngested(ctx context.Context, event *messaging.Event) error {
	var data messaging.SalesIngestedEvent
	if err := event.UnmarshalData(&data); err != nil {
		h.logger.Error().Err(err).Msg("failed to unmarshal SalesIngestedEvent")
		return err
	}

	h.logger.Info().
		Int("rows", data.Rows).
		Time("from", data.From).
		Time("to", data.To).
		Msg("sales ingested, refreshing stats and trends")

	return h.refresher.Refresh(ctx, domain.DatasetStats, domain.DatasetTrends)
}

func (h *AnalyticsEventHandler) handleForecastUpdated(ctx context.Context, event *messaging.Event) error {
	var data messaging.ForecastUpdatedEvent
	if err := event.UnmarshalData(&data); err != nil {
		h.logger.Error().Err(err).Msg("failed to unmarshal ForecastUpdatedEvent")
		return err
	}

	h.logger.Info().
		Int("horizon", data.Horizon).
		Time("generated_at", data.GeneratedAt).
		Msg("forecast updated, refreshing forecast")

	return h.refresher.Refresh(ctx, domain.DatasetForecast)
}
