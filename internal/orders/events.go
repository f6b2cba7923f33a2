package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderPlaced    = "OrderPlaced"
	EventOrderCancelled = "OrderCancelled"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order_id
	Payload       json.RawMessage `json:"payload"`
}

type ItemQty struct {
	MenuItemID string `json:"menu_item_id"`
	StallID    string `json:"stall_id"`
	Qty        int    `json:"qty"`
}

type OrderPlacedPayload struct {
	OrderID          string    `json:"order_id"`
	UserID           string    `json:"user_id"`
	Items            []ItemQty `json:"items"`
	TotalPrice       string    `json:"total_price"` // 2-dp decimal string
	DeliveryLocation string    `json:"delivery_location"`
	EstimatedMinutes int       `json:"estimated_minutes"`
}

type OrderCancelledPayload struct {
	OrderID string `json:"order_id"`
	UserID  string `json:"user_id"`
	Reason  string `json:"reason"` // user_request | expired_window
}
