package state

import (
	"fmt"
	"time"

	"github.com/salesdash/salesdash-backend/internal/dashboard/domain"
	"github.com/salesdash/salesdash-backend/pkg/config"
)

// Policy decides when the merged trend is recomputed.
type Policy string

const (
	// PolicyRestitch stitches again whenever history or forecast arrives, so a
	// forecast that lands before history still gets its bridge once history shows up.
	PolicyRestitch Policy = config.StitchPolicyRestitch
	// PolicyForecastOnly stitches only on forecast arrival. History arriving later
	// replaces the trend with plain history and never adds the bridge.
	PolicyForecastOnly Policy = config.StitchPolicyForecastOnly
)

// ParsePolicy validates a configured policy name.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case PolicyRestitch, PolicyForecastOnly:
		return p, nil
	case "":
		return PolicyRestitch, nil
	default:
		return "", fmt.Errorf("unknown stitch policy %q", s)
	}
}

// LoadStatus tracks one dataset's fetch lifecycle.
type LoadStatus string

const (
	StatusPending LoadStatus = "pending"
	StatusLoaded  LoadStatus = "loaded"
	StatusFailed  LoadStatus = "failed"
)

// DatasetState is the load status of one dataset.
type DatasetState struct {
	Status    LoadStatus `json:"status"`
	LastError string     `json:"last_error,omitempty"`
	UpdatedAt time.Time  `json:"updated_at,omitempty"`
}

// State is everything the dashboard shows. It is owned by the Coordinator
// goroutine and only ever replaced through Reduce.
type State struct {
	Stats    domain.Stats
	History  []domain.TrendPoint
	Forecast []domain.TrendPoint
	// Trend is the sequence handed to the chart.
	Trend    []domain.TrendPoint
	Datasets map[domain.Dataset]DatasetState
	// Stitches counts how many times Trend was produced by Stitch.
	Stitches    int
	LastOutcome string
}

// Initial returns the empty state with every dataset pending.
func Initial() State {
	datasets := make(map[domain.Dataset]DatasetState, len(domain.AllDatasets))
	for _, d := range domain.AllDatasets {
		datasets[d] = DatasetState{Status: StatusPending}
	}
	return State{Datasets: datasets}
}

// Action is a state transition request.
type Action interface {
	dataset() domain.Dataset
}

// StatsArrived carries a fresh summary.
type StatsArrived struct {
	Stats domain.Stats
	At    time.Time
}

// HistoryArrived carries the observed daily trend.
type HistoryArrived struct {
	Points []domain.TrendPoint
	At     time.Time
}

// ForecastArrived carries forecast points. Nil Points means the payload was
// malformed and is treated as no forecast.
type ForecastArrived struct {
	Points []domain.TrendPoint
	At     time.Time
}

// FetchFailed reports that retrieving a dataset failed.
type FetchFailed struct {
	Dataset domain.Dataset
	Err     error
	At      time.Time
}

func (StatsArrived) dataset() domain.Dataset    { return domain.DatasetStats }
func (HistoryArrived) dataset() domain.Dataset  { return domain.DatasetTrends }
func (ForecastArrived) dataset() domain.Dataset { return domain.DatasetForecast }
func (a FetchFailed) dataset() domain.Dataset   { return a.Dataset }

// Reduce applies one action and returns the next state. It never modifies s
// or the slices carried by the action.
func Reduce(s State, a Action, p Policy) State {
	next := s
	next.Datasets = copyDatasets(s.Datasets)

	switch a := a.(type) {
	case StatsArrived:
		next.Stats = a.Stats
		next.Datasets[domain.DatasetStats] = DatasetState{Status: StatusLoaded, UpdatedAt: a.At}

	case HistoryArrived:
		next.History = clonePoints(a.Points)
		next.Datasets[domain.DatasetTrends] = DatasetState{Status: StatusLoaded, UpdatedAt: a.At}
		if p == PolicyForecastOnly {
			next.Trend = clonePoints(next.History)
		} else {
			next = stitch(next)
		}

	case ForecastArrived:
		next.Forecast = clonePoints(a.Points)
		next.Datasets[domain.DatasetForecast] = DatasetState{Status: StatusLoaded, UpdatedAt: a.At}
		next = stitch(next)

	case FetchFailed:
		prev := next.Datasets[a.Dataset]
		prev.Status = StatusFailed
		prev.UpdatedAt = a.At
		if a.Err != nil {
			prev.LastError = a.Err.Error()
		}
		next.Datasets[a.Dataset] = prev
	}

	return next
}

func stitch(s State) State {
	s.Trend = domain.Stitch(s.History, s.Forecast)
	s.Stitches++
	s.LastOutcome = domain.StitchOutcome(s.History, s.Forecast)
	return s
}

func copyDatasets(in map[domain.Dataset]DatasetState) map[domain.Dataset]DatasetState {
	out := make(map[domain.Dataset]DatasetState, len(domain.AllDatasets))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func clonePoints(points []domain.TrendPoint) []domain.TrendPoint {
	if points == nil {
		return nil
	}
	out := make([]domain.TrendPoint, len(points))
	for i, p := range points {
		out[i] = p.Clone()
	}
	return out
}
