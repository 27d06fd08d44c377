package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/quickbite-app/quickbite/internal/auth"
	"github.com/quickbite-app/quickbite/internal/cart"
	"github.com/quickbite-app/quickbite/internal/telemetry"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, "cart", "0.1.0")
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider("cart", "0.1.0")
	if err != nil {
		logger.Error("failed to initialize meter", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(ctx) }()

	authSecret := os.Getenv("AUTH_SECRET")
	if authSecret == "" {
		logger.Error("AUTH_SECRET environment variable is required")
		os.Exit(1)
	}

	catalogServiceURL := os.Getenv("CATALOG_SERVICE_URL")
	if catalogServiceURL == "" {
		logger.Error("CATALOG_SERVICE_URL environment variable is required")
		os.Exit(1)
	}

	ordersServiceURL := os.Getenv("ORDERS_SERVICE_URL")
	if ordersServiceURL == "" {
		logger.Error("ORDERS_SERVICE_URL environment variable is required")
		os.Exit(1)
	}

	meter := otel.Meter("cart")
	mutations, err := meter.Int64Counter("cart.mutations",
		metric.WithDescription("Number of successful cart mutations"))
	if err != nil {
		logger.Error("failed to create counter", "error", err)
		os.Exit(1)
	}
	lineCount, err := meter.Int64Histogram("cart.lines",
		metric.WithDescription("Cart line count after each mutation"))
	if err != nil {
		logger.Error("failed to create histogram", "error", err)
		os.Exit(1)
	}

	carts := cart.NewStore(func(customerID string, lines []cart.Line, total decimal.Decimal) {
		mutations.Add(context.Background(), 1)
		lineCount.Record(context.Background(), int64(len(lines)))
		logger.Debug("cart changed", "customer_id", customerID, "lines", len(lines), "total", total)
	})

	httpClient := &http.Client{
		Timeout: 10 * time.Second,
	}

	verifier := auth.NewVerifier([]byte(authSecret))
	catalogClient := cart.NewCatalogClient(catalogServiceURL, httpClient)
	ordersClient := cart.NewOrdersClient(ordersServiceURL, httpClient)
	checkout := cart.NewCheckout(ordersClient, logger)
	handler := cart.NewHandler(carts, catalogClient, checkout, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /carts", verifier.Require(handler.HandleGet))
	mux.HandleFunc("DELETE /carts", verifier.Require(handler.HandleClear))
	mux.HandleFunc("POST /carts/items", verifier.Require(handler.HandleAddItem))
	mux.HandleFunc("PATCH /carts/items/{itemId}", verifier.Require(handler.HandleUpdateQuantity))
	mux.HandleFunc("DELETE /carts/items/{itemId}", verifier.Require(handler.HandleRemoveItem))
	mux.HandleFunc("POST /carts/checkout", verifier.Require(handler.HandleCheckout))
	mux.Handle("GET /metrics", metricsHandler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8085"
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting cart service", "port", port)
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
