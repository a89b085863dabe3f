package events_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salesdash/salesdash-backend/internal/dashboard/domain"
	"github.com/salesdash/salesdash-backend/internal/dashboard/events"
	"github.com/salesdash/salesdash-backend/internal/dashboard/state"
	"github.com/salesdash/salesdash-backend/pkg/logger"
	"github.com/salesdash/salesdash-backend/pkg/messaging"
	"github.com/salesdash/salesdash-backend/pkg/testutil"
)

func stitchedState() state.State {
	s := state.Initial()
	s.History = []domain.TrendPoint{domain.Observed("Jan", 100), domain.Observed("Feb", 150)}
	s.Forecast = []domain.TrendPoint{domain.Projected("Mar", 180)}
	s.Trend = domain.Stitch(s.History, s.Forecast)
	s.LastOutcome = domain.OutcomeBridged
	s.Stitches = 1
	return s
}

func TestPublishTrendStitched(t *testing.T) {
	mock := testutil.NewMockPublisher()
	p := events.NewTrendEventPublisherWith(mock, logger.Nop())

	p.PublishTrendStitched(context.Background(), stitchedState())

	mock.AssertEventPublished(t, messaging.EventTrendStitched)
	published := mock.Events()
	require.Len(t, published, 1)

	data, ok := published[0].Payload.(messaging.TrendStitchedEvent)
	require.True(t, ok)
	assert.Equal(t, domain.OutcomeBridged, data.Outcome)
	assert.Equal(t, 2, data.HistoryPoints)
	assert.Equal(t, 1, data.ForecastPoints)
	assert.Equal(t, "Feb", data.BridgeDate)
}

func TestPublishTrendStitched_NoBridge(t *testing.T) {
	mock := testutil.NewMockPublisher()
	p := events.NewTrendEventPublisherWith(mock, logger.Nop())

	s := state.Initial()
	s.History = []domain.TrendPoint{domain.Observed("Jan", 100)}
	s.Trend = domain.Stitch(s.History, nil)
	s.LastOutcome = domain.OutcomeHistoryOnly

	p.PublishTrendStitched(context.Background(), s)

	data := mock.Events()[0].Payload.(messaging.TrendStitchedEvent)
	assert.Empty(t, data.BridgeDate)
	assert.Equal(t, domain.OutcomeHistoryOnly, data.Outcome)
}

func TestPublishTrendStitched_ErrorIsSwallowed(t *testing.T) {
	mock := testutil.NewMockPublisher()
	mock.Err = errors.New("channel closed")
	p := events.NewTrendEventPublisherWith(mock, logger.Nop())

	assert.NotPanics(t, func() {
		p.PublishTrendStitched(context.Background(), stitchedState())
	})
	assert.Len(t, mock.Events(), 1)
}

func TestNilPublisher(t *testing.T) {
	var p *events.TrendEventPublisher

	assert.NotPanics(t, func() {
		p.PublishTrendStitched(context.Background(), stitchedState())
		p.Listener()(context.Background(), stitchedState())
	})
}

func TestListener_WiredToCoordinator(t *testing.T) {
	mock := testutil.NewMockPublisher()
	p := events.NewTrendEventPublisherWith(mock, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := state.NewCoordinator(state.PolicyRestitch, logger.Nop(), p.Listener())
	go c.Run(ctx)
	go p.Run(ctx)

	require.NoError(t, c.Dispatch(ctx, state.StatsArrived{}))
	require.NoError(t, c.Dispatch(ctx, state.HistoryArrived{Points: []domain.TrendPoint{domain.Observed("Jan", 1)}}))
	require.NoError(t, c.Dispatch(ctx, state.ForecastArrived{Points: []domain.TrendPoint{domain.Projected("Feb", 2)}}))

	require.Eventually(t, func() bool { return len(mock.Events()) == 2 }, time.Second, 5*time.Millisecond)

	published := mock.Events()
	first := published[0].Payload.(messaging.TrendStitchedEvent)
	assert.Empty(t, first.BridgeDate)
	last := published[1].Payload.(messaging.TrendStitchedEvent)
	assert.Equal(t, "Jan", last.BridgeDate)
}

// blockingPublisher holds every Publish until release is closed.
type blockingPublisher struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingPublisher) Publish(ctx context.Context, _ string, _ interface{}) error {
	select {
	case b.started <- struct{}{}:
	default:
	}
	select {
	case <-b.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestListener_SlowBrokerDoesNotStallCoordinator(t *testing.T) {
	slow := &blockingPublisher{started: make(chan struct{}, 1), release: make(chan struct{})}
	defer close(slow.release)
	p := events.NewTrendEventPublisherWith(slow, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := state.NewCoordinator(state.PolicyRestitch, logger.Nop(), p.Listener())
	go c.Run(ctx)
	go p.Run(ctx)

	require.NoError(t, c.Dispatch(ctx, state.HistoryArrived{Points: []domain.TrendPoint{domain.Observed("Jan", 1)}}))

	select {
	case <-slow.started:
	case <-time.After(time.Second):
		t.Fatal("publisher never started")
	}

	// The broker is stuck on the first event; the loop must keep serving.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 3; i++ {
			_ = c.Dispatch(ctx, state.ForecastArrived{Points: []domain.TrendPoint{domain.Projected("Feb", float64(i))}})
		}
		_, _ = c.Snapshot(ctx)
	}()

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("coordinator blocked behind the event publisher")
	}
}

func TestListener_FullQueueDropsInsteadOfBlocking(t *testing.T) {
	mock := testutil.NewMockPublisher()
	p := events.NewTrendEventPublisherWith(mock, logger.Nop())
	listener := p.Listener()

	// Nothing drains the queue.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			listener(context.Background(), stitchedState())
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("listener blocked on a full queue")
	}
	assert.Empty(t, mock.Events())
}
