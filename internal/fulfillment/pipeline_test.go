package fulfillment

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/quickbite-app/quickbite/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func eventPayload(t *testing.T) []byte {
	t.Helper()
	payload, err := json.Marshal(domain.OrderSubmittedEvent{
		OrderID:    "order-1",
		CustomerID: "cust-1",
		Lines:      []domain.OrderLine{{ItemID: "burger", Name: "Burger", Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("failed to marshal event: %v", err)
	}
	return payload
}

func TestPipeline_Handle(t *testing.T) {
	t.Run("advances through every stage and sends one receipt", func(t *testing.T) {
		var mu sync.Mutex
		var statuses []string

		ordersServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPatch {
				t.Errorf("expected PATCH, got %s", r.Method)
			}
			var req map[string]string
			_ = json.NewDecoder(r.Body).Decode(&req)
			mu.Lock()
			statuses = append(statuses, req["status"])
			mu.Unlock()
			w.WriteHeader(http.StatusOK)
		}))
		defer ordersServer.Close()

		var receipts int
		notifyServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			receipts++
			mu.Unlock()
			w.WriteHeader(http.StatusOK)
		}))
		defer notifyServer.Close()

		p := NewPipeline(ordersServer.URL, notifyServer.URL, http.DefaultClient, 0, discardLogger())
		if err := p.Handle(context.Background(), eventPayload(t)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []string{"confirmed", "processing", "shipped", "delivered"}
		if len(statuses) != len(want) {
			t.Fatalf("expected %d status updates, got %v", len(want), statuses)
		}
		for i, s := range want {
			if statuses[i] != s {
				t.Errorf("update %d: expected %s, got %s", i, s, statuses[i])
			}
		}
		if receipts != 1 {
			t.Errorf("expected exactly 1 receipt, got %d", receipts)
		}
	})

	t.Run("conflict means redelivery, stops without error", func(t *testing.T) {
		var updates int
		ordersServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			updates++
			w.WriteHeader(http.StatusConflict)
		}))
		defer ordersServer.Close()

		p := NewPipeline(ordersServer.URL, "http://unused", http.DefaultClient, 0, discardLogger())
		if err := p.Handle(context.Background(), eventPayload(t)); err != nil {
			t.Fatalf("expected redelivered event to be dropped silently, got %v", err)
		}
		if updates != 1 {
			t.Errorf("expected pipeline to stop after first conflict, got %d updates", updates)
		}
	})

	t.Run("orders service failure surfaces for retry", func(t *testing.T) {
		ordersServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer ordersServer.Close()

		p := NewPipeline(ordersServer.URL, "http://unused", http.DefaultClient, 0, discardLogger())
		if err := p.Handle(context.Background(), eventPayload(t)); err == nil {
			t.Fatal("expected error so the message is not committed")
		}
	})

	t.Run("receipt failure does not stall fulfillment", func(t *testing.T) {
		var statuses []string
		ordersServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req map[string]string
			_ = json.NewDecoder(r.Body).Decode(&req)
			statuses = append(statuses, req["status"])
			w.WriteHeader(http.StatusOK)
		}))
		defer ordersServer.Close()

		notifyServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer notifyServer.Close()

		p := NewPipeline(ordersServer.URL, notifyServer.URL, http.DefaultClient, 0, discardLogger())
		if err := p.Handle(context.Background(), eventPayload(t)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(statuses) != 4 {
			t.Errorf("expected all 4 stage updates despite receipt failure, got %v", statuses)
		}
	})

	t.Run("malformed payload rejected", func(t *testing.T) {
		p := NewPipeline("http://unused", "http://unused", http.DefaultClient, 0, discardLogger())
		if err := p.Handle(context.Background(), []byte("{")); err == nil {
			t.Fatal("expected error for malformed payload")
		}
	})
}
