package database

import (
	"context"
	"fmt"
)

// Schema creates the sales fact table and the forecast table written by the
// upstream forecasting job. Both statements are idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS sales (
    id            BIGSERIAL PRIMARY KEY,
    timestamp     TIMESTAMPTZ      NOT NULL,
    amount        DOUBLE PRECISION NOT NULL CONSTRAINT sales_amount_positive CHECK (amount > 0),
    category      TEXT             NOT NULL,
    customer_name TEXT             NOT NULL,
    region        TEXT             NOT NULL,
    status        TEXT             NOT NULL CONSTRAINT sales_status_valid CHECK (status IN ('completed', 'pending', 'refunded'))
);

CREATE INDEX IF NOT EXISTS sales_timestamp_idx ON sales (timestamp);

CREATE TABLE IF NOT EXISTS revenue_forecasts (
    date     DATE PRIMARY KEY,
    forecast DOUBLE PRECISION NOT NULL
);
`

// EnsureSchema applies Schema.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
