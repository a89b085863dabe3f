package state

import (
	"context"
	"errors"

	"github.com/salesdash/salesdash-backend/pkg/logger"
)

// ErrStopped is returned once the coordinator loop has exited.
var ErrStopped = errors.New("coordinator stopped")

// StitchListener is called from the coordinator loop after every stitch with
// a private copy of the new state. It must not block for long.
type StitchListener func(ctx context.Context, s State)

// Coordinator owns the dashboard State. A single goroutine applies actions in
// arrival order, so no handler ever observes a half-applied update.
type Coordinator struct {
	policy    Policy
	actions   chan Action
	snapshots chan chan State
	done      chan struct{}
	listeners []StitchListener
	logger    *logger.Logger
}

// NewCoordinator creates a coordinator. Call Run to start it.
func NewCoordinator(policy Policy, log *logger.Logger, listeners ...StitchListener) *Coordinator {
	return &Coordinator{
		policy:    policy,
		actions:   make(chan Action),
		snapshots: make(chan chan State),
		done:      make(chan struct{}),
		listeners: listeners,
		logger:    log.WithComponent("coordinator"),
	}
}

// Policy returns the stitch policy in effect.
func (c *Coordinator) Policy() Policy {
	return c.policy
}

// Run processes actions until ctx is cancelled.
func (c *Coordinator) Run(ctx context.Context) {
	defer close(c.done)

	s := Initial()
	for {
		select {
		case <-ctx.Done():
			c.logger.Debug().Msg("coordinator stopped")
			return

		case a := <-c.actions:
			next := Reduce(s, a, c.policy)
			stitched := next.Stitches != s.Stitches
			s = next

			c.logger.Debug().
				Str("dataset", string(a.dataset())).
				Bool("stitched", stitched).
				Int("trend_points", len(s.Trend)).
				Msg("action applied")

			if stitched {
				for _, l := range c.listeners {
					l(ctx, s.Clone())
				}
			}

		case reply := <-c.snapshots:
			reply <- s.Clone()
		}
	}
}

// Dispatch hands an action to the loop and waits until it has been accepted.
func (c *Coordinator) Dispatch(ctx context.Context, a Action) error {
	select {
	case c.actions <- a:
		return nil
	case <-c.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot returns a copy of the current state.
func (c *Coordinator) Snapshot(ctx context.Context) (State, error) {
	reply := make(chan State, 1)

	select {
	case c.snapshots <- reply:
	case <-c.done:
		return State{}, ErrStopped
	case <-ctx.Done():
		return State{}, ctx.Err()
	}

	select {
	case s := <-reply:
		return s, nil
	case <-ctx.Done():
		return State{}, ctx.Err()
	}
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := s
	out.History = clonePoints(s.History)
	out.Forecast = clonePoints(s.Forecast)
	out.Trend = clonePoints(s.Trend)
	out.Datasets = copyDatasets(s.Datasets)
	return out
}
