package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/contrib/instrumentation/runtime"

	"github.com/afrolatino/storefront/internal/cart"
	"github.com/afrolatino/storefront/internal/catalog"
	"github.com/afrolatino/storefront/internal/checkout"
	"github.com/afrolatino/storefront/internal/messaging"
	"github.com/afrolatino/storefront/internal/orders"
	"github.com/afrolatino/storefront/internal/payments"
	"github.com/afrolatino/storefront/internal/pricing"
	"github.com/afrolatino/storefront/internal/settings"
	"github.com/afrolatino/storefront/internal/stock"
	"github.com/afrolatino/storefront/internal/telemetry"
)

const serviceVersion = "0.1.0"

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, "storefront", serviceVersion)
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider("storefront", serviceVersion)
	if err != nil {
		logger.Error("failed to initialize meter", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(ctx) }()

	if err := runtime.Start(); err != nil {
		logger.Error("failed to start runtime instrumentation", "error", err)
		os.Exit(1)
	}

	repo, err := buildCartRepository(logger)
	if err != nil {
		logger.Error("failed to set up cart storage", "error", err)
		os.Exit(1)
	}

	store := cart.NewStore(repo, logger)

	httpClient := &http.Client{
		Timeout:   10 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	catalogClient := catalog.NewClient(requiredEnv(logger, "CATALOG_SERVICE_URL"), httpClient)
	ordersClient := orders.NewClient(requiredEnv(logger, "ORDERS_SERVICE_URL"), httpClient)
	paymentsClient := payments.NewClient(requiredEnv(logger, "PAYMENTS_SERVICE_URL"), httpClient)
	settingsClient := settings.NewClient(requiredEnv(logger, "SETTINGS_SERVICE_URL"), httpClient)

	var events checkout.Publisher
	if kafkaBrokers := os.Getenv("KAFKA_BROKERS"); kafkaBrokers != "" {
		brokers := strings.Split(kafkaBrokers, ",")

		orderProducer := messaging.NewProducer(brokers, messaging.TopicOrderSubmitted)
		defer func() { _ = orderProducer.Close() }()
		events = orderProducer

		cartProducer := messaging.NewProducer(brokers, messaging.TopicCartChanged)
		defer func() { _ = cartProducer.Close() }()
		relay := messaging.NewCartEventRelay(cartProducer, logger)
		store.Subscribe(relay.Notify)
	}

	fees := pricing.NewCalculator(pricing.ParsePolicy(os.Getenv("DELIVERY_FEE_POLICY")))
	distanceKm := intEnv("DELIVERY_DISTANCE_KM", 8)

	reconciler := stock.NewReconciler(catalogClient, logger)
	orchestrator := checkout.NewOrchestrator(store, fees, ordersClient, paymentsClient, settingsClient, reconciler, events, logger)

	cartHandler := cart.NewHandler(store, catalogClient, settingsClient, fees, distanceKm, logger)
	checkoutHandler := checkout.NewHandler(orchestrator, distanceKm, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /carts/{cartId}", telemetry.WithHTTPRoute(cartHandler.HandleGet))
	mux.HandleFunc("POST /carts/{cartId}/items", telemetry.WithHTTPRoute(cartHandler.HandleAddItem))
	mux.HandleFunc("PATCH /carts/{cartId}/items/{productId}", telemetry.WithHTTPRoute(cartHandler.HandleUpdateQuantity))
	mux.HandleFunc("DELETE /carts/{cartId}/items/{productId}", telemetry.WithHTTPRoute(cartHandler.HandleRemoveItem))
	mux.HandleFunc("DELETE /carts/{cartId}", telemetry.WithHTTPRoute(cartHandler.HandleClear))
	mux.HandleFunc("GET /carts/{cartId}/checkout-readiness", telemetry.WithHTTPRoute(cartHandler.HandleCheckoutReadiness))
	mux.HandleFunc("POST /carts/{cartId}/checkout", telemetry.WithHTTPRoute(checkoutHandler.HandleSubmit))
	mux.Handle("GET /metrics", metricsHandler)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr: ":" + port,
		Handler: otelhttp.NewHandler(mux, "storefront",
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				if r.Pattern != "" {
					return r.Pattern
				}
				return r.Method + " " + r.URL.Path
			}),
		),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting storefront service", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}

// buildCartRepository picks the snapshot backend: postgres (default),
// redis, or memory for local development.
func buildCartRepository(logger *slog.Logger) (cart.Repository, error) {
	backend := os.Getenv("CART_BACKEND")
	if backend == "" {
		backend = "postgres"
	}

	switch backend {
	case "postgres":
		postgresURL := requiredEnv(logger, "POSTGRES_URL")
		db, err := telemetry.OpenDB("postgres", postgresURL)
		if err != nil {
			return nil, err
		}
		if err := db.Ping(); err != nil {
			return nil, err
		}
		return cart.NewPostgresRepository(db), nil

	case "redis":
		addr := requiredEnv(logger, "REDIS_ADDR")
		client := redis.NewClient(&redis.Options{Addr: addr})
		return cart.NewRedisRepository(client), nil

	case "memory":
		logger.Warn("using in-memory cart storage, carts will not survive restarts")
		return cart.NewMemoryRepository(), nil

	default:
		logger.Error("unknown cart backend", "backend", backend)
		os.Exit(1)
		return nil, nil
	}
}

func requiredEnv(logger *slog.Logger, name string) string {
	value := os.Getenv(name)
	if value == "" {
		logger.Error(name + " environment variable is required")
		os.Exit(1)
	}
	return value
}

func intEnv(name string, fallback int) int {
	value := os.Getenv(name)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}
