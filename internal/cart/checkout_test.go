package cart

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/quickbite-app/quickbite/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCheckout_Submit(t *testing.T) {
	t.Run("success clears the ledger", func(t *testing.T) {
		var received submitOrderRequest
		ordersServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/orders" || r.Method != http.MethodPost {
				t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			}
			if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
				t.Errorf("failed to decode submission: %v", err)
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(domain.Order{
				ID:         "order-1",
				CustomerID: received.CustomerID,
				Lines:      received.Lines,
				Total:      domain.LineTotal(received.Lines),
				Status:     domain.OrderStatusPending,
				CreatedAt:  time.Now().UTC(),
			})
		}))
		defer ordersServer.Close()

		checkout := NewCheckout(NewOrdersClient(ordersServer.URL, ordersServer.Client()), discardLogger())

		g := NewLedger()
		g.AddItem(menuItem("burger", "Burger", "5.99"))
		g.AddItem(menuItem("burger", "Burger", "5.99"))

		order, err := checkout.Submit(context.Background(), "cust-1", g)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if order.ID != "order-1" {
			t.Errorf("expected order id order-1, got %s", order.ID)
		}
		if received.CustomerID != "cust-1" {
			t.Errorf("expected submitted customer cust-1, got %s", received.CustomerID)
		}
		if len(received.Lines) != 1 || received.Lines[0].Quantity != 2 {
			t.Errorf("unexpected submitted lines: %+v", received.Lines)
		}
		if len(g.Lines()) != 0 {
			t.Error("expected ledger cleared after acknowledged submission")
		}
	})

	t.Run("empty cart rejected before calling the orders service", func(t *testing.T) {
		called := false
		ordersServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))
		defer ordersServer.Close()

		checkout := NewCheckout(NewOrdersClient(ordersServer.URL, ordersServer.Client()), discardLogger())

		_, err := checkout.Submit(context.Background(), "cust-1", NewLedger())
		if !errors.Is(err, ErrEmptyCart) {
			t.Fatalf("expected ErrEmptyCart, got %v", err)
		}
		if called {
			t.Error("orders service must not be called for an empty cart")
		}
	})

	t.Run("missing identity rejected", func(t *testing.T) {
		checkout := NewCheckout(NewOrdersClient("http://unused", http.DefaultClient), discardLogger())

		g := NewLedger()
		g.AddItem(menuItem("burger", "Burger", "5.99"))

		if _, err := checkout.Submit(context.Background(), "", g); !errors.Is(err, ErrAuthRequired) {
			t.Fatalf("expected ErrAuthRequired, got %v", err)
		}
	})

	t.Run("failure preserves the ledger for retry", func(t *testing.T) {
		ordersServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer ordersServer.Close()

		checkout := NewCheckout(NewOrdersClient(ordersServer.URL, ordersServer.Client()), discardLogger())

		g := NewLedger()
		g.AddItem(menuItem("burger", "Burger", "5.99"))

		_, err := checkout.Submit(context.Background(), "cust-1", g)
		if !errors.Is(err, ErrSubmitFailed) {
			t.Fatalf("expected ErrSubmitFailed, got %v", err)
		}
		if len(g.Lines()) != 1 {
			t.Error("expected ledger preserved after failed submission")
		}
	})

	t.Run("unreachable orders service preserves the ledger", func(t *testing.T) {
		checkout := NewCheckout(NewOrdersClient("http://localhost:0", &http.Client{Timeout: time.Second}), discardLogger())

		g := NewLedger()
		g.AddItem(menuItem("burger", "Burger", "5.99"))

		if _, err := checkout.Submit(context.Background(), "cust-1", g); err == nil {
			t.Fatal("expected error for unreachable orders service")
		}
		if len(g.Lines()) != 1 {
			t.Error("expected ledger preserved")
		}
	})
}

func TestCatalogClient_GetItem(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/items/burger" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"burger","name":"Burger","price":"5.99"}`))
		}))
		defer server.Close()

		item, err := NewCatalogClient(server.URL, server.Client()).GetItem(context.Background(), "burger")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if item == nil || item.Name != "Burger" {
			t.Errorf("unexpected item: %+v", item)
		}
	})

	t.Run("not found returns nil without error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		item, err := NewCatalogClient(server.URL, server.Client()).GetItem(context.Background(), "ghost")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if item != nil {
			t.Errorf("expected nil item, got %+v", item)
		}
	})

	t.Run("server error surfaces", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		if _, err := NewCatalogClient(server.URL, server.Client()).GetItem(context.Background(), "burger"); err == nil {
			t.Fatal("expected error for catalog failure")
		}
	})
}
