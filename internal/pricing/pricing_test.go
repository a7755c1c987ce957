package pricing

import (
	"testing"

	"points-mall/internal/models"

	"github.com/stretchr/testify/assert"
)

func cart(prices ...int64) []models.CartItem {
	items := make([]models.CartItem, 0, len(prices))
	for _, p := range prices {
		items = append(items, models.CartItem{UnitPrice: p, Quantity: 1})
	}
	return items
}

func TestSubtotal(t *testing.T) {
	items := []models.CartItem{
		{UnitPrice: 800, Quantity: 2},
		{UnitPrice: 450, Quantity: 1},
	}

	assert.Equal(t, int64(2050), Subtotal(items))
	assert.Equal(t, int64(0), Subtotal(nil))
}

func TestPriceNoCoupon(t *testing.T) {
	q := Price(cart(400), nil)

	assert.Equal(t, int64(400), q.Subtotal)
	assert.Equal(t, int64(0), q.DiscountAmount)
	assert.Equal(t, int64(400), q.FinalPrice)
}

func TestDeductionCouponBelowMinSpend(t *testing.T) {
	coupon := &models.Coupon{Kind: models.CouponKindDeduction, Amount: 100, MinSpend: 500}

	q := Price(cart(400), coupon)

	assert.Equal(t, int64(0), q.DiscountAmount)
	assert.Equal(t, int64(400), q.FinalPrice)
}

func TestDeductionCouponMinSpendMet(t *testing.T) {
	coupon := &models.Coupon{Kind: models.CouponKindDeduction, Amount: 100, MinSpend: 500}

	q := Price(cart(500), coupon)

	assert.Equal(t, int64(100), q.DiscountAmount)
	assert.Equal(t, int64(400), q.FinalPrice)
}

func TestDeductionCouponNoMinSpend(t *testing.T) {
	coupon := &models.Coupon{Kind: models.CouponKindDeduction, Amount: 50}

	q := Price(cart(800), coupon)

	assert.Equal(t, int64(50), q.DiscountAmount)
	assert.Equal(t, int64(750), q.FinalPrice)
}

func TestDiscountCoupon(t *testing.T) {
	coupon := &models.Coupon{Kind: models.CouponKindDiscount, Amount: 0.8}

	q := Price(cart(1000), coupon)

	assert.Equal(t, int64(200), q.DiscountAmount)
	assert.Equal(t, int64(800), q.FinalPrice)
}

func TestDiscountCouponRoundsHalfUp(t *testing.T) {
	coupon := &models.Coupon{Kind: models.CouponKindDiscount, Amount: 0.85}

	// 350 * 0.15 = 52.5, rounds to 53
	q := Price(cart(350), coupon)

	assert.Equal(t, int64(53), q.DiscountAmount)
	assert.Equal(t, int64(297), q.FinalPrice)
}

func TestFinalPriceNeverNegative(t *testing.T) {
	coupon := &models.Coupon{Kind: models.CouponKindDeduction, Amount: 500}

	q := Price(cart(300), coupon)

	assert.Equal(t, int64(500), q.DiscountAmount)
	assert.Equal(t, int64(0), q.FinalPrice)
}

func TestDiscountUnknownKind(t *testing.T) {
	coupon := &models.Coupon{Kind: "mystery", Amount: 100}

	assert.Equal(t, int64(0), Discount(1000, coupon))
}
