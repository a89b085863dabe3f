//go:build integration

package testutil

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/salesdash/salesdash-backend/pkg/database"
	"github.com/salesdash/salesdash-backend/pkg/logger"
)

// IntegrationSuite provides a real PostgreSQL with the sales schema applied.
//
// Usage:
//
//	var suite *testutil.IntegrationSuite
//
//	func TestMain(m *testing.M) {
//	    ctx := context.Background()
//	    s, err := testutil.NewIntegrationSuite(ctx)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    suite = s
//	    code := m.Run()
//	    s.Cleanup(ctx)
//	    os.Exit(code)
//	}
type IntegrationSuite struct {
	Container *PostgresContainer
	DB        *database.DB
	Logger    *logger.Logger
}

// NewIntegrationSuite starts the container, connects and applies database.Schema.
func NewIntegrationSuite(ctx context.Context) (*IntegrationSuite, error) {
	container, err := NewPostgresContainer(ctx, DefaultPostgresConfig())
	if err != nil {
		return nil, err
	}

	raw, err := container.Connect(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}

	log := logger.NewWithWriter("integration-test", io.Discard)
	db := database.Wrap(raw, log)
	if err := db.EnsureSchema(ctx); err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}

	return &IntegrationSuite{
		Container: container,
		DB:        db,
		Logger:    log,
	}, nil
}

// Reset empties the sales and forecast tables between tests.
func (s *IntegrationSuite) Reset(t *testing.T) {
	t.Helper()
	if _, err := s.DB.ExecContext(context.Background(), "TRUNCATE sales, revenue_forecasts RESTART IDENTITY"); err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}
}

// Cleanup closes the connection and removes the container.
func (s *IntegrationSuite) Cleanup(ctx context.Context) error {
	if err := s.DB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return s.Container.Terminate(ctx)
}
