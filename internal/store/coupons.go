package store

import (
	"context"
	"database/sql"

	"points-mall/internal/models"
)

// GetCoupon retrieves a coupon definition by ID
func (s *Store) GetCoupon(ctx context.Context, id string) (*models.Coupon, error) {
	var coupon models.Coupon
	err := s.db.GetContext(ctx, &coupon, "SELECT * FROM coupons WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, models.ErrCouponNotFound
	}
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

// ActiveCoupons retrieves coupons currently open for claiming
func (s *Store) ActiveCoupons(ctx context.Context) ([]models.Coupon, error) {
	var coupons []models.Coupon
	err := s.db.SelectContext(ctx, &coupons,
		"SELECT * FROM coupons WHERE active ORDER BY created_at")
	return coupons, err
}

// UnusedCouponsByUser retrieves the coupon definitions behind a user's
// unused claims.
func (s *Store) UnusedCouponsByUser(ctx context.Context, userID string) ([]models.Coupon, error) {
	var coupons []models.Coupon
	err := s.db.SelectContext(ctx, &coupons, `
		SELECT c.* FROM coupons c
		JOIN user_coupons uc ON uc.coupon_id = c.id
		WHERE uc.user_id = $1 AND NOT uc.used
		ORDER BY uc.claimed_at`,
		userID)
	return coupons, err
}

// ClaimCoupon records a claim. Claiming a coupon the user already holds is
// a no-op, so the operation is idempotent.
func (s *Store) ClaimCoupon(ctx context.Context, userID, couponID string) error {
	if _, err := s.GetCoupon(ctx, couponID); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_coupons (user_id, coupon_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, coupon_id) DO NOTHING`,
		userID, couponID)
	return err
}

// UnusedClaim retrieves the coupon for a claim the user holds and has not
// spent yet. Settlement uses this to price and later consume the coupon.
func (s *Store) UnusedClaim(ctx context.Context, userID, couponID string) (*models.Coupon, error) {
	var coupon models.Coupon
	err := s.db.GetContext(ctx, &coupon, `
		SELECT c.* FROM coupons c
		JOIN user_coupons uc ON uc.coupon_id = c.id
		WHERE uc.user_id = $1 AND uc.coupon_id = $2 AND NOT uc.used`,
		userID, couponID)
	if err == sql.ErrNoRows {
		return nil, models.ErrCouponNotFound
	}
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}
