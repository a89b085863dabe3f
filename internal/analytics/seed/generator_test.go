package seed

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salesdash/salesdash-backend/internal/analytics/domain"
)

func TestGenerator_Sales(t *testing.T) {
	now := time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)
	g := Generator{Rows: 500, Days: 180, Now: now}

	sales := g.Sales()
	require.Len(t, sales, 500)

	start := now.AddDate(0, 0, -180)
	maxPossible := maxAmount * (1 + 180.0/trendDivisor) * weekendMultiplier

	for i, s := range sales {
		assert.False(t, s.Timestamp.Before(start), "sale %d before window", i)
		assert.True(t, s.Timestamp.Before(now), "sale %d after now", i)
		assert.GreaterOrEqual(t, s.Amount, float64(minAmount))
		assert.LessOrEqual(t, s.Amount, maxPossible)
		assert.Contains(t, categories, s.Category)
		assert.Contains(t, regions, s.Region)
		assert.Contains(t, customers, s.CustomerName)
		assert.Contains(t, statuses, s.Status)
		assert.InDelta(t, math.Round(s.Amount*100)/100, s.Amount, 1e-9, "sale %d not rounded to cents", i)

		if i > 0 {
			assert.False(t, s.Timestamp.Before(sales[i-1].Timestamp), "sales not ordered at %d", i)
		}
	}
}

func TestGenerator_Empty(t *testing.T) {
	g := Generator{Rows: 0, Days: 30, Now: time.Now()}
	assert.Empty(t, g.Sales())
}

func TestForecast(t *testing.T) {
	last := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	totals := make([]domain.DailyTotal, 0, 20)
	for i := 19; i >= 0; i-- {
		amount := 100.0
		if i >= 14 {
			// Older than the two week window, must not affect the base.
			amount = 10000
		}
		totals = append(totals, domain.DailyTotal{Day: last.AddDate(0, 0, -i), Amount: amount})
	}

	rows := Forecast(totals, 7)
	require.Len(t, rows, 7)

	for i, r := range rows {
		assert.Equal(t, last.AddDate(0, 0, i+1), r.Date)
		assert.GreaterOrEqual(t, r.Forecast, 100*forecastLowSwing-0.01)
		assert.LessOrEqual(t, r.Forecast, 100*forecastHiSwing+0.01)
		assert.InDelta(t, math.Round(r.Forecast*100)/100, r.Forecast, 1e-9)
	}
}

func TestForecast_Empty(t *testing.T) {
	assert.Empty(t, Forecast(nil, 7))
	assert.Empty(t, Forecast([]domain.DailyTotal{{Day: time.Now(), Amount: 1}}, 0))
}
