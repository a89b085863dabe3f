package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/salesdash/salesdash-backend/internal/analytics/repository"
	"github.com/salesdash/salesdash-backend/internal/analytics/seed"
	"github.com/salesdash/salesdash-backend/pkg/config"
	"github.com/salesdash/salesdash-backend/pkg/database"
	"github.com/salesdash/salesdash-backend/pkg/logger"
	"github.com/salesdash/salesdash-backend/pkg/messaging"
)

const serviceName = "seed-sales"

var (
	rows     int
	days     int
	horizon  int
	truncate bool
	publish  bool
)

var rootCmd = &cobra.Command{
	Use:   serviceName,
	Short: "Fill the sales table with mock data",
	Long: `seed-sales writes mock sales spread over the last N days, with an upward
drift and a weekend boost, then writes a naive forecast to revenue_forecasts.

It refuses to run in production and staging.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().IntVar(&rows, "rows", 500, "number of sales to generate")
	rootCmd.Flags().IntVar(&days, "days", 180, "length of the history window in days")
	rootCmd.Flags().IntVar(&horizon, "horizon", 7, "number of forecast days to write")
	rootCmd.Flags().BoolVar(&truncate, "truncate", false, "remove existing sales first")
	rootCmd.Flags().BoolVar(&publish, "publish", true, "publish analytics events when RabbitMQ is enabled")
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	if rows < 0 || days < 1 || horizon < 0 {
		return fmt.Errorf("rows must be >= 0, days >= 1 and horizon >= 0")
	}

	if config.IsProductionLike() {
		return fmt.Errorf("refusing to seed mock data in %s", config.GetEnvironment())
	}

	cfg, err := config.Load(serviceName)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	log := logger.New(serviceName, cfg.Server.Environment)

	db, err := database.New(&cfg.Database, log)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		return err
	}

	repo := repository.NewSalesRepository(db)

	if truncate {
		if err := repo.TruncateSales(ctx); err != nil {
			return err
		}
		log.Info().Msg("existing sales removed")
	}

	now := time.Now().UTC()
	sales := seed.Generator{Rows: rows, Days: days, Now: now}.Sales()
	if err := repo.InsertSales(ctx, sales); err != nil {
		return err
	}
	log.Info().Int("rows", len(sales)).Int("days", days).Msg("sales generated")

	totals, err := repo.DailyTotals(ctx)
	if err != nil {
		return err
	}
	forecast := seed.Forecast(totals, horizon)
	if err := repo.ReplaceForecast(ctx, forecast); err != nil {
		return err
	}
	log.Info().Int("days", len(forecast)).Msg("forecast written")

	if !publish || !cfg.RabbitMQ.Enabled {
		return nil
	}
	return publishEvents(ctx, cfg, log, messaging.SalesIngestedEvent{
		Rows: len(sales),
		From: now.AddDate(0, 0, -days),
		To:   now,
	}, messaging.ForecastUpdatedEvent{
		Horizon:     len(forecast),
		GeneratedAt: now,
	})
}

func publishEvents(ctx context.Context, cfg *config.Config, log *logger.Logger, ingested messaging.SalesIngestedEvent, updated messaging.ForecastUpdatedEvent) error {
	rmq, err := messaging.New(ctx, &cfg.RabbitMQ, log)
	if err != nil {
		return err
	}
	defer rmq.Close()

	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeAnalyticsEvents, serviceName, log)
	if err != nil {
		return err
	}

	if err := publisher.Publish(ctx, messaging.EventSalesIngested, ingested); err != nil {
		return err
	}
	if err := publisher.Publish(ctx, messaging.EventForecastUpdated, updated); err != nil {
		return err
	}

	log.Info().Msg("analytics events published")
	return nil
}
