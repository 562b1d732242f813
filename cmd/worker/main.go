package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/afrolatino/storefront/internal/messaging"
	"github.com/afrolatino/storefront/internal/telemetry"
	"github.com/afrolatino/storefront/internal/worker"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	kafkaBrokers := os.Getenv("KAFKA_BROKERS")
	if kafkaBrokers == "" {
		logger.Error("KAFKA_BROKERS environment variable is required")
		os.Exit(1)
	}

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider("storefront-worker", "0.1.0")
	if err != nil {
		logger.Error("failed to initialize meter", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(ctx) }()

	handler, err := worker.NewMetricsHandler(logger)
	if err != nil {
		logger.Error("failed to create metrics handler", "error", err)
		os.Exit(1)
	}

	brokers := strings.Split(kafkaBrokers, ",")

	orderConsumer := messaging.NewConsumer(brokers, messaging.TopicOrderSubmitted, "storefront-metrics")
	defer func() { _ = orderConsumer.Close() }()

	cartConsumer := messaging.NewConsumer(brokers, messaging.TopicCartChanged, "storefront-metrics")
	defer func() { _ = cartConsumer.Close() }()

	metricsPort := os.Getenv("METRICS_PORT")
	if metricsPort == "" {
		metricsPort = "9090"
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("GET /metrics", metricsHandler)
	metricsServer := &http.Server{
		Addr:         ":" + metricsPort,
		Handler:      metricsMux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
			os.Exit(1)
		}
	}()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop
		logger.Info("shutting down")
		cancel()
		_ = metricsServer.Shutdown(context.Background())
	}()

	errs := make(chan error, 2)
	go func() { errs <- orderConsumer.Consume(runCtx, handler.HandleOrderSubmitted) }()
	go func() { errs <- cartConsumer.Consume(runCtx, handler.HandleCartChanged) }()

	logger.Info("starting storefront metrics worker", "brokers", brokers, "metrics_port", metricsPort)

	if err := <-errs; err != nil {
		if runCtx.Err() == context.Canceled {
			logger.Info("consumer stopped")
			return
		}
		logger.Error("consumer error", "error", err)
		os.Exit(1)
	}
}
