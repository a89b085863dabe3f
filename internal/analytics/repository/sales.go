package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/salesdash/salesdash-backend/internal/analytics/domain"
	"github.com/salesdash/salesdash-backend/pkg/database"
)

// SalesRepository reads sales and forecast data
type SalesRepository struct {
	db *database.DB
}

// NewSalesRepository creates a new sales repository
func NewSalesRepository(db *database.DB) *SalesRepository {
	return &SalesRepository{db: db}
}

const (
	listAmountsQuery = `SELECT amount FROM sales`

	// Days are bucketed in UTC whatever the session TimeZone.
	dailyTotalsQuery = `
		SELECT (timestamp AT TIME ZONE 'UTC')::date AS day, SUM(amount) AS amount
		FROM sales
		GROUP BY day
		ORDER BY day ASC`

	// Only rows after the last observed day are a forecast; older rows are stale.
	listForecastQuery = `
		SELECT date, forecast
		FROM revenue_forecasts
		WHERE date > (SELECT COALESCE(MAX(timestamp AT TIME ZONE 'UTC')::date, '-infinity'::date) FROM sales)
		ORDER BY date ASC
		LIMIT $1`
)

// ListAmounts returns the amount of every sale
func (r *SalesRepository) ListAmounts(ctx context.Context) ([]float64, error) {
	amounts := []float64{}
	if err := r.db.SelectContext(ctx, &amounts, listAmountsQuery); err != nil {
		return nil, fmt.Errorf("failed to list sale amounts: %w", err)
	}
	return amounts, nil
}

// DailyTotals returns revenue summed per calendar day, oldest first
func (r *SalesRepository) DailyTotals(ctx context.Context) ([]domain.DailyTotal, error) {
	totals := []domain.DailyTotal{}
	if err := r.db.SelectContext(ctx, &totals, dailyTotalsQuery); err != nil {
		return nil, fmt.Errorf("failed to aggregate daily totals: %w", err)
	}
	return totals, nil
}

// ListForecast returns up to limit upcoming forecast rows, oldest first
func (r *SalesRepository) ListForecast(ctx context.Context, limit int) ([]domain.ForecastRow, error) {
	rows := []domain.ForecastRow{}
	if err := r.db.SelectContext(ctx, &rows, listForecastQuery, limit); err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return nil, appErr
		}
		return nil, fmt.Errorf("failed to list forecast: %w", err)
	}
	return rows, nil
}

const (
	insertSaleQuery = `
		INSERT INTO sales (timestamp, amount, category, customer_name, region, status)
		VALUES (:timestamp, :amount, :category, :customer_name, :region, :status)`

	insertForecastQuery = `
		INSERT INTO revenue_forecasts (date, forecast)
		VALUES (:date, :forecast)`

	truncateSalesQuery   = `TRUNCATE sales RESTART IDENTITY`
	deleteForecastsQuery = `DELETE FROM revenue_forecasts`
	insertBatchSize      = 1000
)

// InsertSales writes sales in batches inside one transaction
func (r *SalesRepository) InsertSales(ctx context.Context, sales []domain.Sale) error {
	if len(sales) == 0 {
		return nil
	}

	return r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		for start := 0; start < len(sales); start += insertBatchSize {
			end := min(start+insertBatchSize, len(sales))
			if _, err := tx.NamedExecContext(ctx, insertSaleQuery, sales[start:end]); err != nil {
				if appErr := database.MapPQError(err); appErr != nil {
					return appErr
				}
				return fmt.Errorf("failed to insert sales: %w", err)
			}
		}
		return nil
	})
}

// ReplaceForecast swaps the whole forecast table for rows in one transaction
func (r *SalesRepository) ReplaceForecast(ctx context.Context, rows []domain.ForecastRow) error {
	return r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, deleteForecastsQuery); err != nil {
			return fmt.Errorf("failed to clear forecast: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if _, err := tx.NamedExecContext(ctx, insertForecastQuery, rows); err != nil {
			if appErr := database.MapPQError(err); appErr != nil {
				return appErr
			}
			return fmt.Errorf("failed to insert forecast: %w", err)
		}
		return nil
	})
}

// TruncateSales removes every sale
func (r *SalesRepository) TruncateSales(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, truncateSalesQuery); err != nil {
		return fmt.Errorf("failed to truncate sales: %w", err)
	}
	return nil
}
