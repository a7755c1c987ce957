package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"points-mall/internal/broker"
	"points-mall/internal/models"
	"points-mall/internal/pricing"
	"points-mall/internal/store"
	"points-mall/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const checkoutLockTTL = 10 * time.Second

// SettlementStore is the persistence surface checkout needs
type SettlementStore interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	CartByUser(ctx context.Context, userID string) ([]models.CartItem, error)
	UnusedClaim(ctx context.Context, userID, couponID string) (*models.Coupon, error)
	SettleCheckout(ctx context.Context, in store.SettlementInput) (*models.Order, error)
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	OrdersByUser(ctx context.Context, userID string) ([]models.Order, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, id, status string) error
}

// CheckoutLocker serializes settlement per user
type CheckoutLocker interface {
	AcquireLock(ctx context.Context, lockKey string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, lockKey string) error
}

// OrderEventPublisher publishes settlement events
type OrderEventPublisher interface {
	PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error
}

// CheckoutService executes checkout settlement: pricing, affordability
// check, and the all-or-nothing write.
type CheckoutService struct {
	store  SettlementStore
	locks  CheckoutLocker
	events OrderEventPublisher
	logger *zap.Logger
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(st SettlementStore, locks CheckoutLocker, events OrderEventPublisher) *CheckoutService {
	return &CheckoutService{
		store:  st,
		locks:  locks,
		events: events,
		logger: util.GetLogger(),
	}
}

// Preview prices the current cart against an optional claimed coupon. It
// shares the settlement's pricing function, so the preview can never drift
// from what PlaceOrder charges.
func (s *CheckoutService) Preview(ctx context.Context, userID, couponID string) (pricing.Quote, error) {
	ctx, span := util.StartSpan(ctx, "CheckoutService.Preview")
	defer span.End()

	items, err := s.store.CartByUser(ctx, userID)
	if err != nil {
		return pricing.Quote{}, fmt.Errorf("failed to read cart: %w", err)
	}

	var coupon *models.Coupon
	if couponID != "" {
		coupon, err = s.store.UnusedClaim(ctx, userID, couponID)
		if err != nil {
			return pricing.Quote{}, err
		}
	}

	return pricing.Price(items, coupon), nil
}

// PlaceOrder settles the current cart. The subtotal, discount and final
// price are always recomputed here from the live cart and coupon state;
// anything the client computed during preview is ignored.
func (s *CheckoutService) PlaceOrder(ctx context.Context, userID, couponID string) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "CheckoutService.PlaceOrder")
	defer span.End()

	start := time.Now()
	defer func() {
		util.SettlementLatency.Observe(time.Since(start).Seconds())
	}()

	if s.locks != nil {
		lockKey := fmt.Sprintf("checkout:%s", userID)
		ok, err := s.locks.AcquireLock(ctx, lockKey, checkoutLockTTL)
		if err != nil {
			s.logger.Warn("Checkout lock unavailable, proceeding without it",
				zap.String("user_id", userID), zap.Error(err))
		} else if !ok {
			util.CheckoutFailedTotal.WithLabelValues("in_progress").Inc()
			return nil, models.ErrCheckoutInProgress
		} else {
			defer func() {
				if err := s.locks.ReleaseLock(context.Background(), lockKey); err != nil {
					s.logger.Warn("Failed to release checkout lock", zap.Error(err))
				}
			}()
		}
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		util.CheckoutFailedTotal.WithLabelValues("user_not_found").Inc()
		return nil, err
	}

	items, err := s.store.CartByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}
	if len(items) == 0 {
		util.CheckoutFailedTotal.WithLabelValues("empty_cart").Inc()
		return nil, models.ErrEmptyCart
	}

	var coupon *models.Coupon
	if couponID != "" {
		coupon, err = s.store.UnusedClaim(ctx, userID, couponID)
		if err != nil {
			util.CheckoutFailedTotal.WithLabelValues("coupon_not_found").Inc()
			return nil, err
		}
	}

	quote := pricing.Price(items, coupon)

	if user.Points < quote.FinalPrice {
		util.CheckoutFailedTotal.WithLabelValues("insufficient_points").Inc()
		return nil, models.ErrInsufficientPoints
	}

	order := &models.Order{
		ID:             uuid.New().String(),
		UserID:         userID,
		Status:         models.OrderStatusPlaced,
		Subtotal:       quote.Subtotal,
		DiscountAmount: quote.DiscountAmount,
		FinalPrice:     quote.FinalPrice,
	}

	settled, err := s.store.SettleCheckout(ctx, store.SettlementInput{
		Order:    order,
		Items:    items,
		CouponID: couponID,
	})
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInsufficientPoints):
			util.CheckoutFailedTotal.WithLabelValues("insufficient_points").Inc()
		case errors.Is(err, models.ErrCouponNotFound):
			util.CheckoutFailedTotal.WithLabelValues("coupon_not_found").Inc()
		default:
			util.CheckoutFailedTotal.WithLabelValues("db_error").Inc()
		}
		return nil, err
	}

	util.OrdersPlacedTotal.Inc()
	util.PointsSpentTotal.Add(float64(settled.FinalPrice))
	if couponID != "" {
		util.CouponsRedeemedTotal.Inc()
	}

	s.logger.Info("Order settled",
		zap.String("order_id", settled.ID),
		zap.String("user_id", userID),
		zap.Int64("final_price", settled.FinalPrice))

	if s.events != nil {
		eventItems := make([]models.OrderItemData, 0, len(settled.Items))
		for _, item := range settled.Items {
			eventItems = append(eventItems, models.OrderItemData{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
			})
		}

		event := &models.OrderPlacedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeOrderPlaced,
				Timestamp: time.Now(),
			},
			OrderID:        settled.ID,
			UserID:         userID,
			Subtotal:       settled.Subtotal,
			DiscountAmount: settled.DiscountAmount,
			FinalPrice:     settled.FinalPrice,
			CouponID:       couponID,
			Items:          eventItems,
		}

		if err := s.events.PublishOrderPlaced(ctx, event); err != nil {
			s.logger.Error("Failed to publish OrderPlaced event", zap.Error(err))
		}
	}

	return settled, nil
}

// GetOrder retrieves one of the user's orders with its items
func (s *CheckoutService) GetOrder(ctx context.Context, userID, orderID string) (*models.Order, error) {
	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, models.ErrOrderNotFound
	}
	return order, nil
}

// Orders retrieves the user's order history, newest first
func (s *CheckoutService) Orders(ctx context.Context, userID string) ([]models.Order, error) {
	return s.store.OrdersByUser(ctx, userID)
}

// AllOrders retrieves every order for the admin dashboard
func (s *CheckoutService) AllOrders(ctx context.Context) ([]models.Order, error) {
	return s.store.ListOrders(ctx)
}

// SetOrderStatus applies an operator status change
func (s *CheckoutService) SetOrderStatus(ctx context.Context, orderID, status string) error {
	if status != models.OrderStatusPlaced && status != models.OrderStatusCompleted {
		return fmt.Errorf("invalid order status: %s", status)
	}
	return s.store.UpdateOrderStatus(ctx, orderID, status)
}

var _ OrderEventPublisher = (*broker.EventPublisher)(nil)
