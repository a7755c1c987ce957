package service

import (
	"context"
	"time"

	"points-mall/internal/models"
	"points-mall/internal/pricing"
	"points-mall/internal/store"
	"points-mall/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserEventPublisher publishes user points events
type UserEventPublisher interface {
	PublishPointsAdjusted(ctx context.Context, event *models.PointsAdjustedEvent) error
}

// UserService handles profiles, favorites and the admin user surface
type UserService struct {
	store  *store.Store
	events UserEventPublisher
	logger *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(st *store.Store, events UserEventPublisher) *UserService {
	return &UserService{
		store:  st,
		events: events,
		logger: util.GetLogger(),
	}
}

// Profile retrieves a user profile
func (s *UserService) Profile(ctx context.Context, userID string) (*models.User, error) {
	return s.store.GetUser(ctx, userID)
}

// UpdateProfile updates name and avatar
func (s *UserService) UpdateProfile(ctx context.Context, userID, name, avatar string) (*models.User, error) {
	return s.store.UpdateUserProfile(ctx, userID, name, avatar)
}

// Favorites retrieves the user's favorited product IDs
func (s *UserService) Favorites(ctx context.Context, userID string) ([]string, error) {
	return s.store.FavoriteProductIDs(ctx, userID)
}

// AddFavorite favorites a product; re-favoriting is a no-op
func (s *UserService) AddFavorite(ctx context.Context, userID, productID string) error {
	if _, err := s.store.GetProductByID(ctx, productID); err != nil {
		return err
	}
	return s.store.AddFavorite(ctx, userID, productID)
}

// ToggleFavorite flips the favorite state and returns the new state
func (s *UserService) ToggleFavorite(ctx context.Context, userID, productID string) (bool, error) {
	fav, err := s.store.IsFavorite(ctx, userID, productID)
	if err != nil {
		return false, err
	}
	if fav {
		return false, s.store.RemoveFavorite(ctx, userID, productID)
	}
	return true, s.AddFavorite(ctx, userID, productID)
}

// RemoveFavorite unfavorites a product
func (s *UserService) RemoveFavorite(ctx context.Context, userID, productID string) error {
	return s.store.RemoveFavorite(ctx, userID, productID)
}

// ListUsers retrieves all users for the admin dashboard
func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.store.ListUsers(ctx)
}

// AdjustPoints applies an operator point adjustment: balance and ledger
// move together, and the membership level is recomputed right away on this
// path (the operator expects the new tier to show immediately).
func (s *UserService) AdjustPoints(ctx context.Context, userID string, delta int64) (*models.User, error) {
	ctx, span := util.StartSpan(ctx, "UserService.AdjustPoints")
	defer span.End()

	user, err := s.store.AdjustPoints(ctx, userID, delta)
	if err != nil {
		return nil, err
	}

	if delta > 0 {
		util.PointsEarnedTotal.Add(float64(delta))
	}

	level := pricing.LevelForPoints(user.Points)
	if level != user.Level {
		if err := s.store.UpdateUserLevel(ctx, userID, level); err != nil {
			s.logger.Error("Failed to update level after adjustment",
				zap.String("user_id", userID), zap.Error(err))
		} else {
			user.Level = level
			util.LevelRecomputedTotal.Inc()
		}
	}

	if s.events != nil {
		event := &models.PointsAdjustedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypePointsAdjusted,
				Timestamp: time.Now(),
			},
			UserID: userID,
			Delta:  delta,
		}

		if err := s.events.PublishPointsAdjusted(ctx, event); err != nil {
			s.logger.Error("Failed to publish PointsAdjusted event", zap.Error(err))
		}
	}

	return user, nil
}

// SetLevel applies an operator level override. The override holds until
// the next points change triggers a recompute.
func (s *UserService) SetLevel(ctx context.Context, userID, level string) error {
	return s.store.UpdateUserLevel(ctx, userID, level)
}
