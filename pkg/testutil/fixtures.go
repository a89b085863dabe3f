//go:build integration

package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/salesdash/salesdash-backend/pkg/database"
)

// SaleFixture is one row of the sales table
type SaleFixture struct {
	Timestamp    time.Time `db:"timestamp"`
	Amount       float64   `db:"amount"`
	Category     string    `db:"category"`
	CustomerName string    `db:"customer_name"`
	Region       string    `db:"region"`
	Status       string    `db:"status"`
}

// NewSale returns a completed sale with fixed descriptive fields
func NewSale(ts time.Time, amount float64) SaleFixture {
	return SaleFixture{
		Timestamp:    ts,
		Amount:       amount,
		Category:     "Software",
		CustomerName: "Test Customer",
		Region:       "North America",
		Status:       "completed",
	}
}

// InsertSales writes the fixtures in one batch
func InsertSales(t *testing.T, db *database.DB, sales ...SaleFixture) {
	t.Helper()
	if len(sales) == 0 {
		return
	}
	_, err := db.NamedExecContext(context.Background(),
		`INSERT INTO sales (timestamp, amount, category, customer_name, region, status)
		 VALUES (:timestamp, :amount, :category, :customer_name, :region, :status)`, sales)
	if err != nil {
		t.Fatalf("failed to insert sales fixtures: %v", err)
	}
}

// InsertForecast writes one revenue_forecasts row
func InsertForecast(t *testing.T, db *database.DB, date string, forecast float64) {
	t.Helper()
	_, err := db.ExecContext(context.Background(),
		"INSERT INTO revenue_forecasts (date, forecast) VALUES ($1, $2)", date, forecast)
	if err != nil {
		t.Fatalf("failed to insert forecast fixture: %v", err)
	}
}
