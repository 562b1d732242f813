package domain

import "time"

// CartChangedEvent is emitted after every persisted cart mutation so
// other components (nav badge, open cart views, downstream consumers)
// can refresh.
type CartChangedEvent struct {
	CartID    string    `json:"cart_id"`
	Op        string    `json:"op"` // add, remove, update_quantity, clear
	ProductID string    `json:"product_id,omitempty"`
	Count     int       `json:"count"`
	Subtotal  int64     `json:"subtotal"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderSubmittedEvent is emitted once an order has been accepted by
// the order service, before any payment redirect.
type OrderSubmittedEvent struct {
	OrderID        string        `json:"order_id"`
	CartID         string        `json:"cart_id"`
	PaymentType    PaymentType   `json:"payment_type"`
	PaymentMethod  PaymentMethod `json:"payment_method"`
	Total          int64         `json:"total"`
	IdempotencyKey string        `json:"idempotency_key"`
	Timestamp      time.Time     `json:"timestamp"`
}
