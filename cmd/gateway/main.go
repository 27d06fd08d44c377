package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/quickbite-app/quickbite/internal/gateway"
	"github.com/quickbite-app/quickbite/internal/telemetry"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, "gateway", "0.1.0")
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	catalogServiceURL := os.Getenv("CATALOG_SERVICE_URL")
	if catalogServiceURL == "" {
		logger.Error("CATALOG_SERVICE_URL is required")
		os.Exit(1)
	}

	cartServiceURL := os.Getenv("CART_SERVICE_URL")
	if cartServiceURL == "" {
		logger.Error("CART_SERVICE_URL is required")
		os.Exit(1)
	}

	ordersServiceURL := os.Getenv("ORDERS_SERVICE_URL")
	if ordersServiceURL == "" {
		logger.Error("ORDERS_SERVICE_URL is required")
		os.Exit(1)
	}

	httpClient := &http.Client{
		Timeout:   10 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	catalogProxy := gateway.NewServiceProxy(catalogServiceURL, httpClient)
	cartProxy := gateway.NewServiceProxy(cartServiceURL, httpClient)
	ordersProxy := gateway.NewServiceProxy(ordersServiceURL, httpClient)
	handler := gateway.NewHandler(catalogProxy, cartProxy, ordersProxy, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /categories", telemetry.WithHTTPRoute(handler.HandleCatalog))
	mux.HandleFunc("POST /categories", telemetry.WithHTTPRoute(handler.HandleCatalog))
	mux.HandleFunc("GET /categories/{categoryId}/items", telemetry.WithHTTPRoute(handler.HandleCatalog))
	mux.HandleFunc("GET /items/{id}", telemetry.WithHTTPRoute(handler.HandleCatalog))
	mux.HandleFunc("POST /items", telemetry.WithHTTPRoute(handler.HandleCatalog))
	mux.HandleFunc("PUT /items/{id}", telemetry.WithHTTPRoute(handler.HandleCatalog))
	mux.HandleFunc("DELETE /items/{id}", telemetry.WithHTTPRoute(handler.HandleCatalog))
	mux.HandleFunc("GET /carts", telemetry.WithHTTPRoute(handler.HandleCarts))
	mux.HandleFunc("DELETE /carts", telemetry.WithHTTPRoute(handler.HandleCarts))
	mux.HandleFunc("POST /carts/items", telemetry.WithHTTPRoute(handler.HandleCarts))
	mux.HandleFunc("PATCH /carts/items/{itemId}", telemetry.WithHTTPRoute(handler.HandleCarts))
	mux.HandleFunc("DELETE /carts/items/{itemId}", telemetry.WithHTTPRoute(handler.HandleCarts))
	mux.HandleFunc("POST /carts/checkout", telemetry.WithHTTPRoute(handler.HandleCarts))
	mux.HandleFunc("GET /orders", telemetry.WithHTTPRoute(handler.HandleOrders))
	mux.HandleFunc("GET /orders/{id}", telemetry.WithHTTPRoute(handler.HandleOrders))
	mux.HandleFunc("PATCH /orders/{id}/status", telemetry.WithHTTPRoute(handler.HandleOrders))

	server := &http.Server{
		Addr: ":" + port,
		Handler: otelhttp.NewHandler(mux, "gateway",
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
		logger.Info("starting gateway service", "port", port)
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
