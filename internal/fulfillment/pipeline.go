package fulfillment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/quickbite-app/quickbite/internal/domain"
)

// Pipeline drives a submitted order through the fulfillment stages. The
// client never regresses an order; the orders service enforces that with 409,
// which the pipeline treats as "someone already moved it further" on event
// redelivery.
type Pipeline struct {
	ordersServiceURL string
	notifyServiceURL string
	httpClient       *http.Client
	stageDelay       time.Duration
	logger           *slog.Logger
}

func NewPipeline(ordersServiceURL, notifyServiceURL string, client *http.Client, stageDelay time.Duration, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		ordersServiceURL: ordersServiceURL,
		notifyServiceURL: notifyServiceURL,
		httpClient:       client,
		stageDelay:       stageDelay,
		logger:           logger,
	}
}

var stages = []domain.OrderStatus{
	domain.OrderStatusConfirmed,
	domain.OrderStatusProcessing,
	domain.OrderStatusShipped,
	domain.OrderStatusDelivered,
}

func (p *Pipeline) Handle(ctx context.Context, payload []byte) error {
	var event domain.OrderSubmittedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("unmarshal order submitted event: %w", err)
	}

	p.logger.Info("processing submitted order", "order_id", event.OrderID, "customer_id", event.CustomerID)

	for i, status := range stages {
		if i > 0 {
			if err := p.wait(ctx); err != nil {
				return err
			}
		}

		advanced, err := p.advance(ctx, event.OrderID, status)
		if err != nil {
			return fmt.Errorf("advance order %s to %s: %w", event.OrderID, status, err)
		}
		if !advanced {
			p.logger.Info("order already past stage, skipping", "order_id", event.OrderID, "status", status)
			return nil
		}

		if status == domain.OrderStatusConfirmed {
			if err := p.sendReceipt(ctx, event); err != nil {
				// The receipt is best-effort; fulfillment keeps moving.
				p.logger.Error("failed to send receipt", "error", err, "order_id", event.OrderID)
			}
		}
	}

	p.logger.Info("order fulfillment complete", "order_id", event.OrderID)
	return nil
}

func (p *Pipeline) advance(ctx context.Context, orderID string, status domain.OrderStatus) (bool, error) {
	body, err := json.Marshal(map[string]string{"status": string(status)})
	if err != nil {
		return false, err
	}

	url := fmt.Sprintf("%s/orders/%s/status", p.ordersServiceURL, orderID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusConflict:
		return false, nil
	default:
		return false, fmt.Errorf("orders service returned status %d", resp.StatusCode)
	}
}

func (p *Pipeline) sendReceipt(ctx context.Context, event domain.OrderSubmittedEvent) error {
	body, err := json.Marshal(map[string]string{
		"to":      event.CustomerID,
		"subject": "Order confirmed: " + event.OrderID,
		"body":    fmt.Sprintf("Your order %s with %d items is confirmed and being prepared.", event.OrderID, len(event.Lines)),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.notifyServiceURL+"/send", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("notify service returned status %d", resp.StatusCode)
	}

	return nil
}

func (p *Pipeline) wait(ctx context.Context) error {
	if p.stageDelay <= 0 {
		return nil
	}
	timer := time.NewTimer(p.stageDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
