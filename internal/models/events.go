package models

import "time"

// Event types published to the order events topic
const (
	EventTypeOrderPlaced        = "ORDER_PLACED"
	EventTypeOrderStatusChanged = "ORDER_STATUS_CHANGED"
	EventTypeOrderCancelled     = "ORDER_CANCELLED"
)

// BaseEvent contains fields common to all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderPlacedEvent is published when a checkout commits
type OrderPlacedEvent struct {
	BaseEvent
	OrderID int64      `json:"order_id"`
	UserID  int64      `json:"user_id,omitempty"`
	Guest   bool       `json:"guest"`
	Items   []CartLine `json:"items"`
}

// OrderStatusChangedEvent is published on confirm/fulfill transitions
type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID int64  `json:"order_id"`
	From    string `json:"from"`
	To      string `json:"to"`
}

// OrderCancelledEvent is published when an order is cancelled and its
// stock restored
type OrderCancelledEvent struct {
	BaseEvent
	OrderID  int64      `json:"order_id"`
	Restored []CartLine `json:"restored"`
}
