package service

import (
	"context"
	"time"

	"points-mall/internal/models"
	"points-mall/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CouponStore is the persistence surface coupon flows need
type CouponStore interface {
	ActiveCoupons(ctx context.Context) ([]models.Coupon, error)
	UnusedCouponsByUser(ctx context.Context, userID string) ([]models.Coupon, error)
	ClaimCoupon(ctx context.Context, userID, couponID string) error
}

// CouponEventPublisher publishes coupon events
type CouponEventPublisher interface {
	PublishCouponClaimed(ctx context.Context, event *models.CouponClaimedEvent) error
}

// CouponService handles coupon browsing and claiming. Consumption happens
// only inside checkout settlement.
type CouponService struct {
	store  CouponStore
	events CouponEventPublisher
	logger *zap.Logger
}

// NewCouponService creates a new coupon service
func NewCouponService(st CouponStore, events CouponEventPublisher) *CouponService {
	return &CouponService{
		store:  st,
		events: events,
		logger: util.GetLogger(),
	}
}

// Available lists coupons open for claiming
func (s *CouponService) Available(ctx context.Context) ([]models.Coupon, error) {
	return s.store.ActiveCoupons(ctx)
}

// Mine lists the user's unused claimed coupons
func (s *CouponService) Mine(ctx context.Context, userID string) ([]models.Coupon, error) {
	return s.store.UnusedCouponsByUser(ctx, userID)
}

// Claim records a coupon claim for the user. Claiming a coupon the user
// already holds succeeds without creating a second claim.
func (s *CouponService) Claim(ctx context.Context, userID, couponID string) error {
	ctx, span := util.StartSpan(ctx, "CouponService.Claim")
	defer span.End()

	if err := s.store.ClaimCoupon(ctx, userID, couponID); err != nil {
		return err
	}

	util.CouponsClaimedTotal.Inc()

	if s.events != nil {
		event := &models.CouponClaimedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeCouponClaimed,
				Timestamp: time.Now(),
			},
			UserID:   userID,
			CouponID: couponID,
		}

		if err := s.events.PublishCouponClaimed(ctx, event); err != nil {
			s.logger.Error("Failed to publish CouponClaimed event", zap.Error(err))
		}
	}

	return nil
}
