package models

import (
	"database/sql"
	"time"
)

// Category groups products on the menu
type Category struct {
	ID       string `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Icon     string `db:"icon" json:"icon"`
	Position int    `db:"position" json:"position"`
}

// Product represents a menu item priced in points
type Product struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Price       int64     `db:"price" json:"price"`
	Image       string    `db:"image" json:"image"`
	CategoryID  string    `db:"category_id" json:"category_id"`
	Rating      float64   `db:"rating" json:"rating,omitempty"`
	Calories    int       `db:"calories" json:"calories,omitempty"`
	TagType     string    `db:"tag_type" json:"tag_type,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// User is the member profile. Points is the authoritative balance; it must
// always equal the sum of the user's points transactions. Level is stored
// independently and may be overridden by an operator.
type User struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Avatar    string    `db:"avatar" json:"avatar"`
	Level     string    `db:"level" json:"level"`
	Points    int64     `db:"points" json:"points"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// CartItem holds a product snapshot taken at add-to-cart time. UnitPrice
// already includes the size surcharge, so later product edits do not change
// what the user pays.
type CartItem struct {
	ID           int64     `db:"id" json:"id"`
	UserID       string    `db:"user_id" json:"user_id"`
	ProductID    string    `db:"product_id" json:"product_id"`
	ProductName  string    `db:"product_name" json:"product_name"`
	ProductImage string    `db:"product_image" json:"product_image"`
	Size         string    `db:"size" json:"size"`
	Quantity     int       `db:"quantity" json:"quantity"`
	UnitPrice    int64     `db:"unit_price" json:"unit_price"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Order is a settled checkout
type Order struct {
	ID             string      `db:"id" json:"id"`
	UserID         string      `db:"user_id" json:"user_id"`
	Status         string      `db:"status" json:"status"`
	Subtotal       int64       `db:"subtotal" json:"subtotal"`
	DiscountAmount int64       `db:"discount_amount" json:"discount_amount"`
	FinalPrice     int64       `db:"final_price" json:"final_price"`
	CreatedAt      time.Time   `db:"created_at" json:"created_at"`
	Items          []OrderItem `db:"-" json:"items,omitempty"`
}

// OrderItem is a cart item frozen into an order; immutable once created
type OrderItem struct {
	ID           int64  `db:"id" json:"id"`
	OrderID      string `db:"order_id" json:"order_id"`
	ProductID    string `db:"product_id" json:"product_id"`
	ProductName  string `db:"product_name" json:"product_name"`
	ProductImage string `db:"product_image" json:"product_image"`
	Size         string `db:"size" json:"size"`
	Quantity     int    `db:"quantity" json:"quantity"`
	UnitPrice    int64  `db:"unit_price" json:"unit_price"`
}

// Coupon is operator-defined and read-only to settlement.
// For deduction coupons Amount is a flat points value; for discount coupons
// it is the retained fraction in (0,1], e.g. 0.8 means 20% off.
type Coupon struct {
	ID          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Kind        string    `db:"kind" json:"kind"`
	Amount      float64   `db:"amount" json:"amount"`
	MinSpend    int64     `db:"min_spend" json:"min_spend"`
	Description string    `db:"description" json:"description"`
	Active      bool      `db:"active" json:"active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// UserCoupon relates one user to one claimed coupon. A used claim is terminal.
type UserCoupon struct {
	ID        int64        `db:"id" json:"id"`
	UserID    string       `db:"user_id" json:"user_id"`
	CouponID  string       `db:"coupon_id" json:"coupon_id"`
	Used      bool         `db:"used" json:"used"`
	UsedAt    sql.NullTime `db:"used_at" json:"used_at,omitempty"`
	ClaimedAt time.Time    `db:"claimed_at" json:"claimed_at"`
}

// PointsTransaction is one row of the append-only ledger. Amount is signed:
// positive for earn, negative for spend. CheckinDate is set only for daily
// check-in rows and backs the one-check-in-per-day unique index.
type PointsTransaction struct {
	ID          int64          `db:"id" json:"id"`
	UserID      string         `db:"user_id" json:"user_id"`
	Amount      int64          `db:"amount" json:"amount"`
	Kind        string         `db:"kind" json:"kind"`
	Description string         `db:"description" json:"description"`
	OrderID     sql.NullString `db:"order_id" json:"order_id,omitempty"`
	CheckinDate sql.NullTime   `db:"checkin_date" json:"-"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
}

// Favorite marks a product as favorited by a user
type Favorite struct {
	ID        int64     `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	ProductID string    `db:"product_id" json:"product_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Order statuses
const (
	OrderStatusPlaced    = "placed"
	OrderStatusCompleted = "completed"
)

// Coupon kinds
const (
	CouponKindDeduction = "deduction"
	CouponKindDiscount  = "discount"
)

// Ledger kinds
const (
	TxKindEarn  = "earn"
	TxKindSpend = "spend"
)

// Item sizes
const (
	SizeStandard = "standard"
	SizeLarge    = "large"
)

// Ledger descriptions the service writes and queries by
const (
	TxDescOrder      = "order consumption"
	TxDescCheckin    = "daily check-in"
	TxDescAdjustment = "operator adjustment"
)

// ProcessedEvent for idempotent event consumption
type ProcessedEvent struct {
	EventID     string    `db:"event_id"`
	EventType   string    `db:"event_type"`
	ProcessedAt time.Time `db:"processed_at"`
}
