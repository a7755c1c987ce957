package service

import (
	"context"
	"testing"

	"points-mall/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCouponStore struct {
	coupons map[string]*models.Coupon
	claims  map[string]map[string]bool
}

func newFakeCouponStore() *fakeCouponStore {
	return &fakeCouponStore{
		coupons: map[string]*models.Coupon{},
		claims:  map[string]map[string]bool{},
	}
}

func (f *fakeCouponStore) ActiveCoupons(ctx context.Context) ([]models.Coupon, error) {
	var out []models.Coupon
	for _, c := range f.coupons {
		if c.Active {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCouponStore) UnusedCouponsByUser(ctx context.Context, userID string) ([]models.Coupon, error) {
	var out []models.Coupon
	for couponID := range f.claims[userID] {
		out = append(out, *f.coupons[couponID])
	}
	return out, nil
}

func (f *fakeCouponStore) ClaimCoupon(ctx context.Context, userID, couponID string) error {
	if _, ok := f.coupons[couponID]; !ok {
		return models.ErrCouponNotFound
	}
	if f.claims[userID] == nil {
		f.claims[userID] = map[string]bool{}
	}
	f.claims[userID][couponID] = true
	return nil
}

func TestClaimCouponIsIdempotent(t *testing.T) {
	st := newFakeCouponStore()
	st.coupons["c1"] = &models.Coupon{ID: "c1", Kind: models.CouponKindDeduction, Amount: 50, Active: true}

	svc := NewCouponService(st, nil)

	require.NoError(t, svc.Claim(context.Background(), "u1", "c1"))
	require.NoError(t, svc.Claim(context.Background(), "u1", "c1"))

	mine, err := svc.Mine(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestClaimUnknownCoupon(t *testing.T) {
	svc := NewCouponService(newFakeCouponStore(), nil)
	err := svc.Claim(context.Background(), "u1", "ghost")
	assert.ErrorIs(t, err, models.ErrCouponNotFound)
}

func TestAvailableListsActiveOnly(t *testing.T) {
	st := newFakeCouponStore()
	st.coupons["c1"] = &models.Coupon{ID: "c1", Active: true}
	st.coupons["c2"] = &models.Coupon{ID: "c2", Active: false}

	svc := NewCouponService(st, nil)

	coupons, err := svc.Available(context.Background())
	require.NoError(t, err)
	require.Len(t, coupons, 1)
	assert.Equal(t, "c1", coupons[0].ID)
}
