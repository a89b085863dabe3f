package events

import (
	"context"
	"time"

	"github.com/salesdash/salesdash-backend/internal/dashboard/domain"
	"github.com/salesdash/salesdash-backend/internal/dashboard/state"
	"github.com/salesdash/salesdash-backend/pkg/logger"
	"github.com/salesdash/salesdash-backend/pkg/messaging"
)

const (
	publishTimeout = 5 * time.Second
	queueSize      = 64
)

// Publisher is the subset of messaging.Publisher used here
type Publisher interface {
	Publish(ctx context.Context, eventType string, data interface{}) error
}

// TrendEventPublisher publishes dashboard trend events
type TrendEventPublisher struct {
	publisher Publisher
	queue     chan messaging.TrendStitchedEvent
	logger    *logger.Logger
}

// NewTrendEventPublisher creates a publisher on the dashboard exchange
func NewTrendEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*TrendEventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeDashboardEvents, "dashboard-service", log)
	if err != nil {
		return nil, err
	}

	return NewTrendEventPublisherWith(publisher, log), nil
}

// NewTrendEventPublisherWith wraps an existing publisher
func NewTrendEventPublisherWith(publisher Publisher, log *logger.Logger) *TrendEventPublisher {
	return &TrendEventPublisher{
		publisher: publisher,
		queue:     make(chan messaging.TrendStitchedEvent, queueSize),
		logger:    log,
	}
}

// PublishTrendStitched publishes a trend stitched event for s. Failures are logged, not returned.
func (p *TrendEventPublisher) PublishTrendStitched(ctx context.Context, s state.State) {
	if p == nil {
		return
	}
	p.publish(ctx, trendStitched(s))
}

// Run publishes events queued by Listener until ctx is cancelled.
func (p *TrendEventPublisher) Run(ctx context.Context) {
	if p == nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case data := <-p.queue:
			p.publish(ctx, data)
		}
	}
}

// Listener returns a coordinator hook that queues an event after every stitch
// for Run to publish. When the queue is full the event is dropped.
// A nil publisher yields a listener that does nothing.
func (p *TrendEventPublisher) Listener() state.StitchListener {
	return func(_ context.Context, s state.State) {
		if p == nil {
			return
		}

		data := trendStitched(s)
		select {
		case p.queue <- data:
		default:
			p.logger.Warn().Str("outcome", data.Outcome).Msg("trend event queue full, dropping event")
		}
	}
}

func (p *TrendEventPublisher) publish(ctx context.Context, data messaging.TrendStitchedEvent) {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := p.publisher.Publish(ctx, messaging.EventTrendStitched, data); err != nil {
		p.logger.Error().Err(err).Str("outcome", data.Outcome).Msg("failed to publish trend stitched event")
	}
}

func trendStitched(s state.State) messaging.TrendStitchedEvent {
	data := messaging.TrendStitchedEvent{
		Outcome:        s.LastOutcome,
		HistoryPoints:  len(s.History),
		ForecastPoints: len(s.Forecast),
	}
	if i := domain.BridgeIndex(s.Trend); i >= 0 {
		data.BridgeDate = s.Trend[i].Date
	}
	return data
}
