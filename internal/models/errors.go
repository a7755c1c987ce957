package models

import "errors"

// Business failures surfaced to the API edge. Storage failures are wrapped
// with %w and propagated as-is.
var (
	// ErrInsufficientPoints means the final price exceeds the current balance;
	// checkout is aborted before any write sticks.
	ErrInsufficientPoints = errors.New("insufficient points")

	// ErrEmptyCart means checkout was attempted with zero cart items.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrAlreadyCheckedIn means a second daily check-in on the same calendar day.
	ErrAlreadyCheckedIn = errors.New("already checked in today")

	// ErrCheckoutInProgress means another settlement for the same user holds
	// the checkout lock.
	ErrCheckoutInProgress = errors.New("checkout already in progress")

	ErrUserNotFound    = errors.New("user not found")
	ErrProductNotFound = errors.New("product not found")
	ErrCouponNotFound  = errors.New("coupon not found")
	ErrOrderNotFound   = errors.New("order not found")
)
