package pricing

import (
	"math"

	"points-mall/internal/models"
)

// Quote is the result of pricing a cart against an optional coupon
type Quote struct {
	Subtotal       int64 `json:"subtotal"`
	DiscountAmount int64 `json:"discount_amount"`
	FinalPrice     int64 `json:"final_price"`
}

// Subtotal sums unit price times quantity over the cart
func Subtotal(items []models.CartItem) int64 {
	var total int64
	for _, item := range items {
		total += item.UnitPrice * int64(item.Quantity)
	}
	return total
}

// Discount computes the discount a coupon yields on a subtotal.
// A deduction coupon applies its flat amount only when the min-spend
// threshold is met; below the threshold it silently yields zero.
// A discount coupon retains the given fraction of the subtotal, with the
// discount rounded half-up to the nearest point.
func Discount(subtotal int64, coupon *models.Coupon) int64 {
	if coupon == nil {
		return 0
	}

	switch coupon.Kind {
	case models.CouponKindDeduction:
		if coupon.MinSpend > 0 && subtotal < coupon.MinSpend {
			return 0
		}
		return int64(coupon.Amount)
	case models.CouponKindDiscount:
		return int64(math.Round(float64(subtotal) * (1 - coupon.Amount)))
	default:
		return 0
	}
}

// Price quotes a cart against an optional coupon. It is the single pricing
// function shared by checkout preview and settlement so the two can never
// drift. Pure: no side effects.
func Price(items []models.CartItem, coupon *models.Coupon) Quote {
	subtotal := Subtotal(items)
	discount := Discount(subtotal, coupon)

	final := subtotal - discount
	if final < 0 {
		final = 0
	}

	return Quote{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		FinalPrice:     final,
	}
}
