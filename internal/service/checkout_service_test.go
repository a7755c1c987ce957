package service

import (
	"context"
	"testing"
	"time"

	"points-mall/internal/models"
	"points-mall/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSettlementStore struct {
	user         *models.User
	cart         []models.CartItem
	claims       map[string]*models.Coupon
	settled      []store.SettlementInput
	orders       map[string]*models.Order
	settleErr    error
	couponUsed   map[string]bool
	cartCleared  bool
	debited      int64
	ledgerWrites int
}

func newFakeSettlementStore() *fakeSettlementStore {
	return &fakeSettlementStore{
		claims:     map[string]*models.Coupon{},
		orders:     map[string]*models.Order{},
		couponUsed: map[string]bool{},
	}
}

func (f *fakeSettlementStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	if f.user == nil || f.user.ID != id {
		return nil, models.ErrUserNotFound
	}
	u := *f.user
	return &u, nil
}

func (f *fakeSettlementStore) CartByUser(ctx context.Context, userID string) ([]models.CartItem, error) {
	return f.cart, nil
}

func (f *fakeSettlementStore) UnusedClaim(ctx context.Context, userID, couponID string) (*models.Coupon, error) {
	coupon, ok := f.claims[couponID]
	if !ok || f.couponUsed[couponID] {
		return nil, models.ErrCouponNotFound
	}
	return coupon, nil
}

func (f *fakeSettlementStore) SettleCheckout(ctx context.Context, in store.SettlementInput) (*models.Order, error) {
	if f.settleErr != nil {
		return nil, f.settleErr
	}
	if f.user.Points < in.Order.FinalPrice {
		return nil, models.ErrInsufficientPoints
	}

	f.settled = append(f.settled, in)
	f.user.Points -= in.Order.FinalPrice
	f.debited += in.Order.FinalPrice
	f.ledgerWrites++
	if in.CouponID != "" {
		f.couponUsed[in.CouponID] = true
	}
	f.cart = nil
	f.cartCleared = true

	order := in.Order
	order.CreatedAt = time.Now()
	for _, item := range in.Items {
		order.Items = append(order.Items, models.OrderItem{
			OrderID:   order.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	f.orders[order.ID] = order
	return order, nil
}

func (f *fakeSettlementStore) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, models.ErrOrderNotFound
	}
	return order, nil
}

func (f *fakeSettlementStore) OrdersByUser(ctx context.Context, userID string) ([]models.Order, error) {
	var out []models.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeSettlementStore) ListOrders(ctx context.Context) ([]models.Order, error) {
	var out []models.Order
	for _, o := range f.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (f *fakeSettlementStore) UpdateOrderStatus(ctx context.Context, id, status string) error {
	order, ok := f.orders[id]
	if !ok {
		return models.ErrOrderNotFound
	}
	order.Status = status
	return nil
}

type fakeLocker struct {
	held     map[string]bool
	acquired []string
	released []string
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: map[string]bool{}}
}

func (f *fakeLocker) AcquireLock(ctx context.Context, lockKey string, ttl time.Duration) (bool, error) {
	if f.held[lockKey] {
		return false, nil
	}
	f.held[lockKey] = true
	f.acquired = append(f.acquired, lockKey)
	return true, nil
}

func (f *fakeLocker) ReleaseLock(ctx context.Context, lockKey string) error {
	delete(f.held, lockKey)
	f.released = append(f.released, lockKey)
	return nil
}

func cartFixture() []models.CartItem {
	return []models.CartItem{
		{ProductID: "p1", ProductName: "Latte", Size: models.SizeStandard, Quantity: 2, UnitPrice: 300},
		{ProductID: "p2", ProductName: "Croissant", Size: models.SizeLarge, Quantity: 1, UnitPrice: 200},
	}
}

func TestPlaceOrderSettlesCart(t *testing.T) {
	st := newFakeSettlementStore()
	st.user = &models.User{ID: "u1", Points: 1000}
	st.cart = cartFixture()

	svc := NewCheckoutService(st, newFakeLocker(), nil)

	order, err := svc.PlaceOrder(context.Background(), "u1", "")
	require.NoError(t, err)

	assert.Equal(t, int64(800), order.Subtotal)
	assert.Equal(t, int64(0), order.DiscountAmount)
	assert.Equal(t, int64(800), order.FinalPrice)
	assert.Equal(t, models.OrderStatusPlaced, order.Status)
	assert.Len(t, order.Items, 2)

	assert.Equal(t, int64(200), st.user.Points)
	assert.Equal(t, int64(800), st.debited)
	assert.Equal(t, 1, st.ledgerWrites)
	assert.True(t, st.cartCleared)
}

func TestPlaceOrderAppliesDeductionCoupon(t *testing.T) {
	st := newFakeSettlementStore()
	st.user = &models.User{ID: "u1", Points: 1000}
	st.cart = cartFixture()
	st.claims["c1"] = &models.Coupon{ID: "c1", Kind: models.CouponKindDeduction, Amount: 50}

	svc := NewCheckoutService(st, newFakeLocker(), nil)

	order, err := svc.PlaceOrder(context.Background(), "u1", "c1")
	require.NoError(t, err)

	assert.Equal(t, int64(800), order.Subtotal)
	assert.Equal(t, int64(50), order.DiscountAmount)
	assert.Equal(t, int64(750), order.FinalPrice)
	assert.True(t, st.couponUsed["c1"])
	assert.Equal(t, int64(250), st.user.Points)
}

func TestPlaceOrderSkipsDeductionBelowMinSpend(t *testing.T) {
	st := newFakeSettlementStore()
	st.user = &models.User{ID: "u1", Points: 1000}
	st.cart = []models.CartItem{
		{ProductID: "p1", Quantity: 1, UnitPrice: 400},
	}
	st.claims["c2"] = &models.Coupon{ID: "c2", Kind: models.CouponKindDeduction, Amount: 100, MinSpend: 500}

	svc := NewCheckoutService(st, newFakeLocker(), nil)

	order, err := svc.PlaceOrder(context.Background(), "u1", "c2")
	require.NoError(t, err)

	assert.Equal(t, int64(0), order.DiscountAmount)
	assert.Equal(t, int64(400), order.FinalPrice)
}

func TestPlaceOrderInsufficientPoints(t *testing.T) {
	st := newFakeSettlementStore()
	st.user = &models.User{ID: "u1", Points: 100}
	st.cart = cartFixture()

	svc := NewCheckoutService(st, newFakeLocker(), nil)

	_, err := svc.PlaceOrder(context.Background(), "u1", "")
	assert.ErrorIs(t, err, models.ErrInsufficientPoints)

	assert.Empty(t, st.settled)
	assert.Equal(t, int64(100), st.user.Points)
	assert.Equal(t, 0, st.ledgerWrites)
	assert.False(t, st.cartCleared)
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	st := newFakeSettlementStore()
	st.user = &models.User{ID: "u1", Points: 1000}

	svc := NewCheckoutService(st, newFakeLocker(), nil)

	_, err := svc.PlaceOrder(context.Background(), "u1", "")
	assert.ErrorIs(t, err, models.ErrEmptyCart)
	assert.Empty(t, st.settled)
}

func TestPlaceOrderUnknownCoupon(t *testing.T) {
	st := newFakeSettlementStore()
	st.user = &models.User{ID: "u1", Points: 1000}
	st.cart = cartFixture()

	svc := NewCheckoutService(st, newFakeLocker(), nil)

	_, err := svc.PlaceOrder(context.Background(), "u1", "no-such-coupon")
	assert.ErrorIs(t, err, models.ErrCouponNotFound)
	assert.Empty(t, st.settled)
}

func TestPlaceOrderRejectsConcurrentCheckout(t *testing.T) {
	st := newFakeSettlementStore()
	st.user = &models.User{ID: "u1", Points: 1000}
	st.cart = cartFixture()

	locker := newFakeLocker()
	locker.held["checkout:u1"] = true

	svc := NewCheckoutService(st, locker, nil)

	_, err := svc.PlaceOrder(context.Background(), "u1", "")
	assert.ErrorIs(t, err, models.ErrCheckoutInProgress)
	assert.Empty(t, st.settled)
}

func TestPlaceOrderReleasesLock(t *testing.T) {
	st := newFakeSettlementStore()
	st.user = &models.User{ID: "u1", Points: 1000}
	st.cart = cartFixture()

	locker := newFakeLocker()
	svc := NewCheckoutService(st, locker, nil)

	_, err := svc.PlaceOrder(context.Background(), "u1", "")
	require.NoError(t, err)

	assert.Equal(t, []string{"checkout:u1"}, locker.acquired)
	assert.Equal(t, []string{"checkout:u1"}, locker.released)
}

func TestPreviewMatchesPlaceOrderPricing(t *testing.T) {
	st := newFakeSettlementStore()
	st.user = &models.User{ID: "u1", Points: 10000}
	st.cart = []models.CartItem{
		{ProductID: "p1", Quantity: 1, UnitPrice: 1000},
	}
	st.claims["c3"] = &models.Coupon{ID: "c3", Kind: models.CouponKindDiscount, Amount: 0.8}

	svc := NewCheckoutService(st, newFakeLocker(), nil)

	quote, err := svc.Preview(context.Background(), "u1", "c3")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), quote.Subtotal)
	assert.Equal(t, int64(200), quote.DiscountAmount)
	assert.Equal(t, int64(800), quote.FinalPrice)

	order, err := svc.PlaceOrder(context.Background(), "u1", "c3")
	require.NoError(t, err)
	assert.Equal(t, quote.Subtotal, order.Subtotal)
	assert.Equal(t, quote.DiscountAmount, order.DiscountAmount)
	assert.Equal(t, quote.FinalPrice, order.FinalPrice)
}

func TestGetOrderEnforcesOwnership(t *testing.T) {
	st := newFakeSettlementStore()
	st.user = &models.User{ID: "u1", Points: 1000}
	st.cart = cartFixture()

	svc := NewCheckoutService(st, newFakeLocker(), nil)

	order, err := svc.PlaceOrder(context.Background(), "u1", "")
	require.NoError(t, err)

	got, err := svc.GetOrder(context.Background(), "u1", order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	_, err = svc.GetOrder(context.Background(), "someone-else", order.ID)
	assert.ErrorIs(t, err, models.ErrOrderNotFound)
}

func TestSetOrderStatusValidatesStatus(t *testing.T) {
	st := newFakeSettlementStore()
	st.user = &models.User{ID: "u1", Points: 1000}
	st.cart = cartFixture()

	svc := NewCheckoutService(st, newFakeLocker(), nil)

	order, err := svc.PlaceOrder(context.Background(), "u1", "")
	require.NoError(t, err)

	assert.Error(t, svc.SetOrderStatus(context.Background(), order.ID, "shipped"))
	require.NoError(t, svc.SetOrderStatus(context.Background(), order.ID, models.OrderStatusCompleted))

	got, err := svc.GetOrder(context.Background(), "u1", order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, got.Status)
}
