package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/salesdash/salesdash-backend/internal/dashboard/chart"
	"github.com/salesdash/salesdash-backend/internal/dashboard/client"
	"github.com/salesdash/salesdash-backend/internal/dashboard/consumers"
	"github.com/salesdash/salesdash-backend/internal/dashboard/events"
	"github.com/salesdash/salesdash-backend/internal/dashboard/gateway"
	"github.com/salesdash/salesdash-backend/internal/dashboard/handler"
	"github.com/salesdash/salesdash-backend/internal/dashboard/service"
	"github.com/salesdash/salesdash-backend/internal/dashboard/state"
	"github.com/salesdash/salesdash-backend/pkg/config"
	"github.com/salesdash/salesdash-backend/pkg/httputil"
	"github.com/salesdash/salesdash-backend/pkg/logger"
	"github.com/salesdash/salesdash-backend/pkg/messaging"
	"github.com/salesdash/salesdash-backend/pkg/metrics"
)

const serviceName = "dashboard-service"

func main() {
	cfg, err := config.LoadWithValidation(serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(serviceName, cfg.Server.Environment)
	log.Info().Msg("starting Dashboard Service")

	policy, err := state.ParsePolicy(cfg.Dashboard.StitchPolicy)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid stitch policy")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New(serviceName)

	// Messaging is optional; without it the publisher stays nil and no consumer runs
	var rmq *messaging.RabbitMQ
	var publisher *events.TrendEventPublisher
	if cfg.RabbitMQ.Enabled {
		rmq, err = messaging.New(ctx, &cfg.RabbitMQ, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
		}
		defer rmq.Close()

		if err := rmq.DeclareDeadLetterQueue(serviceName); err != nil {
			log.Fatal().Err(err).Msg("failed to declare dead letter queue")
		}

		publisher, err = events.NewTrendEventPublisher(rmq, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create event publisher")
		}
	}

	coordinator := state.NewCoordinator(policy, log,
		service.LogListener(log),
		service.MetricsListener(m),
		publisher.Listener(),
	)
	go coordinator.Run(ctx)
	go publisher.Run(ctx)

	analyticsClient := client.NewAnalyticsClient(cfg.Analytics.BaseURL, cfg.Analytics.Timeout, cfg.Analytics.ForecastHorizon, log)
	loader := service.NewLoader(analyticsClient, coordinator, m, log)

	if rmq != nil {
		analyticsConsumer, err := consumers.NewAnalyticsEventConsumer(rmq, loader, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create analytics event consumer")
		}
		if err := analyticsConsumer.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to start analytics event consumer")
		}
	}

	go func() {
		if err := loader.Load(ctx); err != nil {
			log.Error().Err(err).Msg("initial dashboard load failed")
		}
	}()

	analyticsProxy, err := gateway.NewProxy(cfg.Analytics.BaseURL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create analytics proxy")
	}

	renderer := chart.NewRenderer(cfg.Dashboard.ChartTitle, cfg.Dashboard.ChartHeight)
	dashboardHandler := handler.NewDashboardHandler(coordinator, loader, renderer, log)

	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(m.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		health := map[string]interface{}{
			"status":  "healthy",
			"service": serviceName,
			"policy":  coordinator.Policy(),
		}
		if s, err := coordinator.Snapshot(r.Context()); err == nil {
			health["datasets"] = s.Datasets
		} else {
			health["status"] = "degraded"
		}
		if rmq != nil {
			health["rabbitmq"] = rmq.Health()
		}
		httputil.JSON(w, http.StatusOK, health)
	})
	r.Handle("/metrics", m.Handler())

	dashboardHandler.RegisterRoutes(r)
	r.Handle("/api/v1/analytics/*", analyticsProxy)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", addr).Str("analytics", cfg.Analytics.BaseURL).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	// Stop consumers and the coordinator after in-flight requests are done
	cancel()

	log.Info().Msg("server stopped")
}
