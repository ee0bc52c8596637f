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
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/contrib/instrumentation/runtime"

	"github.com/lnhoang/fumarket/internal/messaging"
	"github.com/lnhoang/fumarket/internal/orders"
	"github.com/lnhoang/fumarket/internal/shops"
	"github.com/lnhoang/fumarket/internal/telemetry"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, "orders", "0.1.0")
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider("orders", "0.1.0")
	if err != nil {
		logger.Error("failed to initialize meter", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(ctx) }()

	if err := runtime.Start(); err != nil {
		logger.Error("failed to start runtime instrumentation", "error", err)
		os.Exit(1)
	}

	postgresURL := os.Getenv("POSTGRES_URL")
	if postgresURL == "" {
		logger.Error("POSTGRES_URL environment variable is required")
		os.Exit(1)
	}

	db, err := telemetry.OpenDB("postgres", postgresURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	var producer *messaging.Producer
	kafkaBrokers := os.Getenv("KAFKA_BROKERS")
	if kafkaBrokers != "" {
		brokers := strings.Split(kafkaBrokers, ",")
		producer = messaging.NewProducer(brokers, "order.placed")
		defer func() { _ = producer.Close() }()
	}

	cfg := orders.Config{MatchPolicy: orders.MatchPolicy(os.Getenv("ORDER_MATCH_POLICY"))}
	if v := os.Getenv("ORDER_DEFAULT_QUANTITY"); v != "" {
		quantity, err := strconv.Atoi(v)
		if err != nil {
			logger.Error("invalid ORDER_DEFAULT_QUANTITY", "value", v)
			os.Exit(1)
		}
		cfg.DefaultQuantity = quantity
	}

	shopRepo := shops.NewShopRepository(db)
	orderRepo := orders.NewOrderRepository(db)

	var publisher orders.EventPublisher
	if producer != nil {
		publisher = producer
	}

	svc, err := orders.NewService(orderRepo, shopRepo, publisher, cfg, logger)
	if err != nil {
		logger.Error("failed to create order service", "error", err)
		os.Exit(1)
	}
	handler := orders.NewHandler(svc, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /shops/{shopId}/orders", telemetry.WithHTTPRoute(handler.HandlePlaceOrder))
	mux.HandleFunc("GET /orders", telemetry.WithHTTPRoute(handler.HandleListOrders))
	mux.HandleFunc("GET /orders/{orderId}", telemetry.WithHTTPRoute(handler.HandleGetOrder))
	mux.HandleFunc("PUT /orders/{orderId}", telemetry.WithHTTPRoute(handler.HandleUpdateOrder))
	mux.HandleFunc("POST /orders/{orderId}/cancel", telemetry.WithHTTPRoute(handler.HandleCancelOrder))
	mux.HandleFunc("POST /orders/{orderId}/rate", telemetry.WithHTTPRoute(handler.HandleRateOrder))
	mux.HandleFunc("POST /orders/{orderId}/tickets", telemetry.WithHTTPRoute(handler.HandleOpenTicket))
	mux.Handle("GET /metrics", metricsHandler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8081"
	}

	server := &http.Server{
		Addr: ":" + port,
		Handler: otelhttp.NewHandler(mux, "orders",
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
		logger.Info("starting orders service", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
