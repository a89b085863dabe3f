package domain

// TrendPoint is one daily revenue bucket of the dashboard trend.
// Historical points carry Amount, forecast points carry Forecast, and the
// single bridge point between the two series carries both.
type TrendPoint struct {
	Date     string   `json:"date"`
	Amount   *float64 `json:"amount,omitempty"`
	Forecast *float64 `json:"forecast,omitempty"`
}

// Observed returns a historical point.
func Observed(date string, amount float64) TrendPoint {
	return TrendPoint{Date: date, Amount: &amount}
}

// Projected returns a forecast point.
func Projected(date string, forecast float64) TrendPoint {
	return TrendPoint{Date: date, Forecast: &forecast}
}

// IsBridge reports whether the point carries both an observed and a projected value.
func (p TrendPoint) IsBridge() bool {
	return p.Amount != nil && p.Forecast != nil
}

// Clone returns a copy that shares no pointers with p.
func (p TrendPoint) Clone() TrendPoint {
	return TrendPoint{
		Date:     p.Date,
		Amount:   copyFloat(p.Amount),
		Forecast: copyFloat(p.Forecast),
	}
}

// Stats is the summary shown on the dashboard cards.
type Stats struct {
	TotalRevenue  float64 `json:"total_revenue"`
	TotalOrders   int     `json:"total_orders"`
	AvgOrderValue float64 `json:"avg_order_value"`
}

// Dataset names one of the three independently fetched analytics datasets.
type Dataset string

const (
	DatasetStats    Dataset = "stats"
	DatasetTrends   Dataset = "trends"
	DatasetForecast Dataset = "forecast"
)

// AllDatasets lists the datasets in fetch order.
var AllDatasets = []Dataset{DatasetStats, DatasetTrends, DatasetForecast}

// Valid reports whether d is a known dataset.
func (d Dataset) Valid() bool {
	switch d {
	case DatasetStats, DatasetTrends, DatasetForecast:
		return true
	}
	return false
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
