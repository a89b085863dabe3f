package domain

import "time"

// DateLayout is the wire format of trend and forecast dates.
const DateLayout = "2006-01-02"

// Sale is one row of the sales table
type Sale struct {
	ID           int64     `db:"id" json:"id"`
	Timestamp    time.Time `db:"timestamp" json:"timestamp"`
	Amount       float64   `db:"amount" json:"amount"`
	Category     string    `db:"category" json:"category"`
	CustomerName string    `db:"customer_name" json:"customer_name"`
	Region       string    `db:"region" json:"region"`
	Status       string    `db:"status" json:"status"`
}

// DailyTotal is the revenue of one calendar day
type DailyTotal struct {
	Day    time.Time `db:"day"`
	Amount float64   `db:"amount"`
}

// ForecastRow is one row written by the upstream forecast job
type ForecastRow struct {
	Date     time.Time `db:"date"`
	Forecast float64   `db:"forecast"`
}

// Stats summarises all sales
type Stats struct {
	TotalRevenue  float64 `json:"total_revenue"`
	TotalOrders   int     `json:"total_orders"`
	AvgOrderValue float64 `json:"avg_order_value"`
}

// TrendPoint is one day of observed revenue
type TrendPoint struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

// ForecastPoint is one day of projected revenue
type ForecastPoint struct {
	Date     string  `json:"date"`
	Forecast float64 `json:"forecast"`
}
