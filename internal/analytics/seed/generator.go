// Package seed generates mock sales history and a naive forecast for local
// development and demos.
package seed

import (
	"math/rand"
	"slices"
	"time"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/salesdash/salesdash-backend/internal/analytics/domain"
)

var (
	categories = []string{"Software", "Consulting", "Hardware", "Subscription"}
	regions    = []string{"North America", "Europe", "Asia", "LATAM"}
	customers  = []string{
		"Acme Corp", "Globex", "Initech", "Umbrella Group", "Hooli",
		"Stark Industries", "Wayne Enterprises", "Vandelay Industries",
		"Soylent Co", "Tyrell Systems", "Cyberdyne", "Wonka Holdings",
	}
	statuses = []string{"completed", "pending", "refunded"}
	// statusWeights line up with statuses.
	statusWeights = []float64{0.9, 0.07, 0.03}
)

const (
	minAmount         = 20
	maxAmount         = 500
	weekendMultiplier = 1.5
	// trendDivisor controls the upward drift: a sale d days into the window is
	// scaled by 1 + d/trendDivisor.
	trendDivisor = 200

	forecastWindow   = 14
	forecastLowSwing = 0.85
	forecastHiSwing  = 1.15
)

// Generator produces mock sales spread over the Days before Now
type Generator struct {
	Rows int
	Days int
	Now  time.Time
}

// Sales returns Rows sales ordered by timestamp. Amounts drift upward over the
// window and weekend sales are boosted.
func (g Generator) Sales() []domain.Sale {
	start := g.Now.AddDate(0, 0, -g.Days)
	amount := distuv.Uniform{Min: minAmount, Max: maxAmount}
	status := distuv.NewCategorical(statusWeights, nil)

	sales := make([]domain.Sale, 0, g.Rows)
	for i := 0; i < g.Rows; i++ {
		offset := rand.Intn(g.Days)
		ts := start.
			AddDate(0, 0, offset).
			Add(time.Duration(rand.Intn(24*60)) * time.Minute)

		multiplier := 1.0
		if wd := ts.Weekday(); wd == time.Saturday || wd == time.Sunday {
			multiplier = weekendMultiplier
		}
		trend := 1 + float64(offset)/trendDivisor

		sales = append(sales, domain.Sale{
			Timestamp:    ts,
			Amount:       scalar.Round(amount.Rand()*trend*multiplier, 2),
			Category:     categories[rand.Intn(len(categories))],
			CustomerName: customers[rand.Intn(len(customers))],
			Region:       regions[rand.Intn(len(regions))],
			Status:       statuses[int(status.Rand())],
		})
	}

	slices.SortFunc(sales, func(a, b domain.Sale) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return sales
}

// Forecast projects horizon days after the last daily total from the mean of
// the most recent two weeks, each day jittered by up to 15%. Empty totals
// yield no forecast.
func Forecast(totals []domain.DailyTotal, horizon int) []domain.ForecastRow {
	if len(totals) == 0 || horizon <= 0 {
		return []domain.ForecastRow{}
	}

	recent := totals
	if len(recent) > forecastWindow {
		recent = recent[len(recent)-forecastWindow:]
	}
	values := make([]float64, len(recent))
	for i, t := range recent {
		values[i] = t.Amount
	}
	base := stat.Mean(values, nil)

	swing := distuv.Uniform{Min: forecastLowSwing, Max: forecastHiSwing}
	last := totals[len(totals)-1].Day

	rows := make([]domain.ForecastRow, 0, horizon)
	for i := 1; i <= horizon; i++ {
		rows = append(rows, domain.ForecastRow{
			Date:     last.AddDate(0, 0, i),
			Forecast: scalar.Round(base*swing.Rand(), 2),
		})
	}
	return rows
}
