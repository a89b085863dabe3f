package domain

import (
	"bytes"

	"github.com/goccy/go-json"
)

// Stitch outcomes, used for metrics and events.
const (
	OutcomeBridged      = "bridged"
	OutcomeForecastOnly = "forecast_only"
	OutcomeHistoryOnly  = "history_only"
	OutcomeEmpty        = "empty"
)

// Stitch merges history and forecast into one chart sequence.
//
// The result is history followed by forecast, with the last historical point
// also carrying a forecast value equal to its amount so the two curves meet.
// A nil forecast means the payload was absent or malformed and yields history
// alone. Empty history yields the forecast, empty forecast yields the history,
// and neither case adds a bridge.
//
// The inputs are never modified and the result shares no memory with them.
func Stitch(history, forecast []TrendPoint) []TrendPoint {
	if len(forecast) == 0 {
		return clonePoints(history)
	}
	if len(history) == 0 {
		return clonePoints(forecast)
	}

	merged := make([]TrendPoint, 0, len(history)+len(forecast))
	for _, p := range history {
		merged = append(merged, p.Clone())
	}

	last := &merged[len(merged)-1]
	if last.Amount != nil {
		last.Forecast = copyFloat(last.Amount)
	}

	for _, p := range forecast {
		merged = append(merged, p.Clone())
	}
	return merged
}

// ParseForecast decodes a forecast payload. Anything other than a JSON array of
// points (an object, a string, null, broken JSON) reports ok=false and a nil
// slice, which Stitch treats as "no forecast". An empty array is valid.
func ParseForecast(raw []byte) (points []TrendPoint, ok bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, false
	}

	if err := json.Unmarshal(trimmed, &points); err != nil {
		return nil, false
	}
	if points == nil {
		points = []TrendPoint{}
	}
	return points, true
}

// StitchOutcome classifies what Stitch does with the given inputs.
func StitchOutcome(history, forecast []TrendPoint) string {
	switch {
	case len(history) > 0 && len(forecast) > 0:
		return OutcomeBridged
	case len(forecast) > 0:
		return OutcomeForecastOnly
	case len(history) > 0:
		return OutcomeHistoryOnly
	default:
		return OutcomeEmpty
	}
}

// BridgeIndex returns the position of the bridge point in a stitched sequence, or -1.
func BridgeIndex(points []TrendPoint) int {
	for i, p := range points {
		if p.IsBridge() {
			return i
		}
	}
	return -1
}

func clonePoints(points []TrendPoint) []TrendPoint {
	if points == nil {
		return nil
	}
	out := make([]TrendPoint, len(points))
	for i, p := range points {
		out[i] = p.Clone()
	}
	return out
}
