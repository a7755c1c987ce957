package models

import "time"

// Event types
const (
	EventTypeOrderPlaced      = "ORDER_PLACED"
	EventTypeCheckinCompleted = "CHECKIN_COMPLETED"
	EventTypePointsAdjusted   = "POINTS_ADJUSTED"
	EventTypeCouponClaimed    = "COUPON_CLAIMED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderPlacedEvent published after a checkout settles
type OrderPlacedEvent struct {
	BaseEvent
	OrderID        string          `json:"order_id"`
	UserID         string          `json:"user_id"`
	Subtotal       int64           `json:"subtotal"`
	DiscountAmount int64           `json:"discount_amount"`
	FinalPrice     int64           `json:"final_price"`
	CouponID       string          `json:"coupon_id,omitempty"`
	Items          []OrderItemData `json:"items"`
}

// CheckinCompletedEvent published after a daily check-in awards points
type CheckinCompletedEvent struct {
	BaseEvent
	UserID string `json:"user_id"`
	Award  int64  `json:"award"`
}

// PointsAdjustedEvent published when an operator adjusts a balance
type PointsAdjustedEvent struct {
	BaseEvent
	UserID string `json:"user_id"`
	Delta  int64  `json:"delta"`
}

// CouponClaimedEvent published when a user claims a coupon
type CouponClaimedEvent struct {
	BaseEvent
	UserID   string `json:"user_id"`
	CouponID string `json:"coupon_id"`
}

// OrderItemData represents item data in events
type OrderItemData struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}
