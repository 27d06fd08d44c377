package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/quickbite-app/quickbite/internal/auth"
	"github.com/quickbite-app/quickbite/internal/catalog"
	"github.com/quickbite-app/quickbite/internal/telemetry"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	postgresURL := os.Getenv("POSTGRES_URL")
	if postgresURL == "" {
		logger.Error("POSTGRES_URL environment variable is required")
		os.Exit(1)
	}

	authSecret := os.Getenv("AUTH_SECRET")
	if authSecret == "" {
		logger.Error("AUTH_SECRET environment variable is required")
		os.Exit(1)
	}

	db, err := telemetry.OpenDB("postgres", postgresURL)
	if err != nil {
		logger.Error("failed to open database connection", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if _, err := db.Exec("SET search_path TO catalog"); err != nil {
		logger.Error("failed to set search_path", "error", err)
		os.Exit(1)
	}

	verifier := auth.NewVerifier([]byte(authSecret))
	repo := catalog.NewCatalogRepository(db)
	handler := catalog.NewHandler(repo, logger)

	// Browsing is public; writes are restricted to back-office staff.
	mux := http.NewServeMux()
	mux.HandleFunc("GET /categories", handler.HandleListCategories)
	mux.HandleFunc("POST /categories", verifier.RequireAdmin(handler.HandleCreateCategory))
	mux.HandleFunc("GET /categories/{categoryId}/items", handler.HandleListItems)
	mux.HandleFunc("GET /items/{id}", handler.HandleGetItem)
	mux.HandleFunc("POST /items", verifier.RequireAdmin(handler.HandleCreateItem))
	mux.HandleFunc("PUT /items/{id}", verifier.RequireAdmin(handler.HandleUpdateItem))
	mux.HandleFunc("DELETE /items/{id}", verifier.RequireAdmin(handler.HandleDeleteItem))

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
		logger.Info("starting catalog service", "port", port)
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
