package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func history(n int) []TrendPoint {
	out := make([]TrendPoint, n)
	for i := range out {
		out[i] = Observed(fmt.Sprintf("2024-01-%02d", i+1), float64(100+10*i))
	}
	return out
}

func forecast(n int) []TrendPoint {
	out := make([]TrendPoint, n)
	for i := range out {
		out[i] = Projected(fmt.Sprintf("2024-02-%02d", i+1), float64(200+5*i))
	}
	return out
}

// snapshot deep-copies points so before/after comparisons see values, not shared pointers.
func snapshot(points []TrendPoint) []TrendPoint {
	return clonePoints(points)
}

func TestStitch_ScenarioA(t *testing.T) {
	h := []TrendPoint{Observed("Jan", 100), Observed("Feb", 150)}
	f := []TrendPoint{Projected("Mar", 180), Projected("Apr", 200)}

	got := Stitch(h, f)

	bridge := Observed("Feb", 150)
	v := 150.0
	bridge.Forecast = &v
	assert.Equal(t, []TrendPoint{
		Observed("Jan", 100),
		bridge,
		Projected("Mar", 180),
		Projected("Apr", 200),
	}, got)
}

func TestStitch_ScenarioB_EmptyHistory(t *testing.T) {
	f := []TrendPoint{Projected("Mar", 180)}

	assert.Equal(t, []TrendPoint{Projected("Mar", 180)}, Stitch(nil, f))
	assert.Equal(t, []TrendPoint{Projected("Mar", 180)}, Stitch([]TrendPoint{}, f))
}

func TestStitch_ScenarioC_MalformedForecast(t *testing.T) {
	h := []TrendPoint{Observed("Jan", 100)}

	parsed, ok := ParseForecast([]byte(`"not-an-array"`))
	require.False(t, ok)

	assert.Equal(t, []TrendPoint{Observed("Jan", 100)}, Stitch(h, parsed))
}

func TestStitch_EmptyForecastAddsNoBridge(t *testing.T) {
	h := history(3)

	got := Stitch(h, []TrendPoint{})

	assert.Equal(t, h, got)
	assert.Equal(t, -1, BridgeIndex(got))
}

func TestStitch_BothEmpty(t *testing.T) {
	assert.Empty(t, Stitch(nil, nil))
	assert.Empty(t, Stitch([]TrendPoint{}, []TrendPoint{}))
}

func TestStitch_Properties(t *testing.T) {
	for _, hn := range []int{0, 1, 2, 7, 30} {
		for _, fn := range []int{0, 1, 7} {
			t.Run(fmt.Sprintf("history=%d/forecast=%d", hn, fn), func(t *testing.T) {
				h, f := history(hn), forecast(fn)
				hBefore, fBefore := snapshot(h), snapshot(f)

				got := Stitch(h, f)

				// purity
				assert.Equal(t, hBefore, h)
				assert.Equal(t, fBefore, f)

				// length
				assert.Len(t, got, hn+fn)

				// bridge uniqueness and position
				bridges := 0
				for _, p := range got {
					if p.IsBridge() {
						bridges++
					}
				}
				if hn > 0 && fn > 0 {
					require.Equal(t, 1, bridges)
					idx := BridgeIndex(got)
					assert.Equal(t, hn-1, idx)
					assert.Equal(t, *got[idx].Amount, *got[idx].Forecast)
					assert.Equal(t, f[0].Date, got[idx+1].Date)
				} else {
					assert.Zero(t, bridges)
				}
			})
		}
	}
}

func TestStitch_EmptyHistoryReturnsForecastUnchanged(t *testing.T) {
	f := forecast(5)
	assert.Equal(t, f, Stitch(nil, f))
}

func TestStitch_NilForecastReturnsHistoryUnchanged(t *testing.T) {
	for _, n := range []int{0, 1, 4} {
		h := history(n)
		got := Stitch(h, nil)
		assert.Equal(t, h, got)
	}
}

func TestStitch_OutputDoesNotAliasInputs(t *testing.T) {
	h, f := history(2), forecast(2)

	got := Stitch(h, f)
	*got[0].Amount = -1
	*got[1].Forecast = -1
	*got[2].Forecast = -1

	assert.Equal(t, 100.0, *h[0].Amount)
	assert.Nil(t, h[1].Forecast)
	assert.Equal(t, 200.0, *f[0].Forecast)
}

func TestStitch_RepeatedCallsStartFresh(t *testing.T) {
	h, f := history(3), forecast(2)

	first := Stitch(h, f)
	second := Stitch(h, f)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, countBridges(second))
}

func TestStitch_DuplicateDatesAcrossSeriesKept(t *testing.T) {
	h := []TrendPoint{Observed("2024-01-01", 10)}
	f := []TrendPoint{Projected("2024-01-01", 12)}

	got := Stitch(h, f)

	require.Len(t, got, 2)
	assert.Equal(t, "2024-01-01", got[0].Date)
	assert.Equal(t, "2024-01-01", got[1].Date)
}

func TestStitch_LastHistoryWithoutAmount(t *testing.T) {
	h := []TrendPoint{{Date: "2024-01-01"}}
	got := Stitch(h, forecast(1))

	require.Len(t, got, 2)
	assert.Nil(t, got[0].Forecast)
}

func countBridges(points []TrendPoint) int {
	n := 0
	for _, p := range points {
		if p.IsBridge() {
			n++
		}
	}
	return n
}

func TestParseForecast(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		wantOK bool
		want   []TrendPoint
	}{
		{"array of points", `[{"date":"Mar","forecast":180},{"date":"Apr","forecast":200}]`, true,
			[]TrendPoint{Projected("Mar", 180), Projected("Apr", 200)}},
		{"empty array", `[]`, true, []TrendPoint{}},
		{"leading whitespace", "  \n[{\"date\":\"Mar\",\"forecast\":1}]", true, []TrendPoint{Projected("Mar", 1)}},
		{"string", `"not-an-array"`, false, nil},
		{"object", `{"date":"Mar","forecast":180}`, false, nil},
		{"number", `42`, false, nil},
		{"null", `null`, false, nil},
		{"empty body", ``, false, nil},
		{"broken json", `[{"date":`, false, nil},
		{"array of scalars", `[1,2,3]`, false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseForecast([]byte(tt.raw))
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStitchOutcome(t *testing.T) {
	assert.Equal(t, OutcomeBridged, StitchOutcome(history(1), forecast(1)))
	assert.Equal(t, OutcomeForecastOnly, StitchOutcome(nil, forecast(1)))
	assert.Equal(t, OutcomeHistoryOnly, StitchOutcome(history(1), nil))
	assert.Equal(t, OutcomeHistoryOnly, StitchOutcome(history(1), []TrendPoint{}))
	assert.Equal(t, OutcomeEmpty, StitchOutcome(nil, nil))
}

func TestDataset_Valid(t *testing.T) {
	for _, d := range AllDatasets {
		assert.True(t, d.Valid())
	}
	assert.False(t, Dataset("weather").Valid())
}
