package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is the durable record written when a checkout finalizes. Line items
// are denormalized from the cart so menu edits never rewrite history.
type Order struct {
	ID               string          `json:"id"`
	UserID           string          `json:"user_id"`
	Items            []Item          `json:"items"`
	TotalPrice       decimal.Decimal `json:"total_price"`
	Status           Status          `json:"status"`
	DeliveryLocation string          `json:"delivery_location"`
	PaymentRef       string          `json:"payment_ref,omitempty"`
	PaidAt           *time.Time      `json:"paid_at,omitempty"`
	EstimatedMinutes int             `json:"estimated_minutes"`
	CancelledAt      *time.Time      `json:"cancelled_at,omitempty"`
	CancelReason     string          `json:"cancel_reason,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

type Item struct {
	MenuItemID string          `json:"menu_item_id"`
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
	StallID    string          `json:"stall_id"`
	StallName  string          `json:"stall_name"`
	ImageRef   string          `json:"image_ref,omitempty"`
}

// EstimateDeliveryMinutes: 15 minutes base plus 2 per item, 0 for nothing.
func EstimateDeliveryMinutes(itemCount int) int {
	if itemCount == 0 {
		return 0
	}
	return 15 + itemCount*2
}
