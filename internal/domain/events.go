package domain

import "time"

// OrderSubmittedEvent is published after an order has been durably stored.
type OrderSubmittedEvent struct {
	OrderID    string      `json:"order_id"`
	CustomerID string      `json:"customer_id"`
	Lines      []OrderLine `json:"lines"`
	Timestamp  time.Time   `json:"timestamp"`
}
