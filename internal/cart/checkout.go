package cart

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/quickbite-app/quickbite/internal/domain"
)

var (
	// ErrEmptyCart is returned when checkout is attempted on an empty ledger.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrAuthRequired is returned when no customer identity is available.
	ErrAuthRequired = errors.New("authentication required")
	// ErrSubmitFailed wraps orders-service failures. The ledger is left
	// untouched so the customer can retry.
	ErrSubmitFailed = errors.New("order submission failed")
)

// OrdersClient submits checkout snapshots to the orders service.
type OrdersClient struct {
	baseURL string
	client  *http.Client
}

func NewOrdersClient(baseURL string, client *http.Client) *OrdersClient {
	return &OrdersClient{baseURL: baseURL, client: client}
}

type submitOrderRequest struct {
	CustomerID string             `json:"customer_id"`
	Lines      []domain.OrderLine `json:"lines"`
}

func (c *OrdersClient) Submit(ctx context.Context, customerID string, snap Snapshot) (*domain.Order, error) {
	data, err := json.Marshal(submitOrderRequest{CustomerID: customerID, Lines: snap.Lines})
	if err != nil {
		return nil, fmt.Errorf("marshal order submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create order submission request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSubmitFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("%w: orders service returned status %d", ErrSubmitFailed, resp.StatusCode)
	}

	var order domain.Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("decode order response: %w", err)
	}

	return &order, nil
}

// CatalogClient resolves menu items so the ledger snapshots authoritative
// prices rather than trusting whatever the client sent.
type CatalogClient struct {
	baseURL string
	client  *http.Client
}

func NewCatalogClient(baseURL string, client *http.Client) *CatalogClient {
	return &CatalogClient{baseURL: baseURL, client: client}
}

// GetItem returns nil without error when the item does not exist.
func (c *CatalogClient) GetItem(ctx context.Context, itemID string) (*domain.MenuItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/items/"+itemID, nil)
	if err != nil {
		return nil, fmt.Errorf("create catalog request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch item %s: %w", itemID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog service returned status %d for item %s", resp.StatusCode, itemID)
	}

	var item domain.MenuItem
	if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
		return nil, fmt.Errorf("decode item %s: %w", itemID, err)
	}

	return &item, nil
}

// Checkout captures a ledger snapshot and hands it to the orders service.
// The ledger is cleared only after the service acknowledged the order; on any
// failure it is preserved for retry. Retry policy belongs to the caller.
type Checkout struct {
	orders *OrdersClient
	logger *slog.Logger
}

func NewCheckout(orders *OrdersClient, logger *slog.Logger) *Checkout {
	return &Checkout{orders: orders, logger: logger}
}

func (c *Checkout) Submit(ctx context.Context, customerID string, ledger *Ledger) (*domain.Order, error) {
	if customerID == "" {
		return nil, ErrAuthRequired
	}

	snap := ledger.Snapshot(time.Now().UTC())
	if len(snap.Lines) == 0 {
		return nil, ErrEmptyCart
	}

	order, err := c.orders.Submit(ctx, customerID, snap)
	if err != nil {
		c.logger.Error("order submission failed, cart preserved", "error", err, "customer_id", customerID)
		return nil, err
	}

	ledger.Clear()
	c.logger.Info("order submitted", "order_id", order.ID, "customer_id", customerID, "total", order.Total)
	return order, nil
}
