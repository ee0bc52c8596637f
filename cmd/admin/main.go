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

	_ "github.com/lib/pq"

	"github.com/lnhoang/fumarket/internal/messaging"
	"github.com/lnhoang/fumarket/internal/openings"
	"github.com/lnhoang/fumarket/internal/shops"
	"github.com/lnhoang/fumarket/internal/telemetry"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, "admin", "0.1.0")
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider("admin", "0.1.0")
	if err != nil {
		logger.Error("failed to initialize meter", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(ctx) }()

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

	var shopProducer *messaging.Producer
	var openingProducer *messaging.Producer
	kafkaBrokers := os.Getenv("KAFKA_BROKERS")
	if kafkaBrokers != "" {
		brokers := strings.Split(kafkaBrokers, ",")
		shopProducer = messaging.NewProducer(brokers, "shop.deleted")
		defer func() { _ = shopProducer.Close() }()
		openingProducer = messaging.NewProducer(brokers, "shop_opening.decided")
		defer func() { _ = openingProducer.Close() }()
	}

	var shopPublisher shops.EventPublisher
	if shopProducer != nil {
		shopPublisher = shopProducer
	}
	var openingPublisher openings.EventPublisher
	if openingProducer != nil {
		openingPublisher = openingProducer
	}

	shopHandler := shops.NewHandler(shops.NewShopRepository(db), shopPublisher, logger)
	openingHandler := openings.NewHandler(openings.NewOpeningRepository(db), openingPublisher, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /shops", telemetry.WithHTTPRoute(shopHandler.HandleListShops))
	mux.HandleFunc("GET /shops/{id}", telemetry.WithHTTPRoute(shopHandler.HandleGetShop))
	mux.HandleFunc("DELETE /shops/{id}", telemetry.WithHTTPRoute(shopHandler.HandleDeleteShop))
	mux.HandleFunc("GET /shop-opening-requests", telemetry.WithHTTPRoute(openingHandler.HandleList))
	mux.HandleFunc("POST /shop-opening-requests/{id}/accept", telemetry.WithHTTPRoute(openingHandler.HandleAccept))
	mux.HandleFunc("POST /shop-opening-requests/{id}/reject", telemetry.WithHTTPRoute(openingHandler.HandleReject))
	mux.Handle("GET /metrics", metricsHandler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8082"
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting admin service", "port", port)
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
