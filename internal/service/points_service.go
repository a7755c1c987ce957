package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"points-mall/internal/models"
	"points-mall/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PointsStore is the persistence surface the points ledger needs
type PointsStore interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	HasCheckedInToday(ctx context.Context, userID string, startOfDay time.Time) (bool, error)
	RecordCheckin(ctx context.Context, userID string, award int64, day string) error
	TransactionsByUser(ctx context.Context, userID string, since *time.Time, description string) ([]models.PointsTransaction, error)
	SumTransactions(ctx context.Context, userID string) (int64, error)
}

// CheckinGuard is the fast pre-check in front of the ledger's unique index
type CheckinGuard interface {
	ClaimDailyCheckin(ctx context.Context, userID, day string, until time.Time) (bool, error)
	ReleaseDailyCheckin(ctx context.Context, userID, day string) error
}

// PointsEventPublisher publishes points events
type PointsEventPublisher interface {
	PublishCheckinCompleted(ctx context.Context, event *models.CheckinCompletedEvent) error
}

// PointsService handles the daily check-in and ledger reads
type PointsService struct {
	store  PointsStore
	guard  CheckinGuard
	events PointsEventPublisher
	award  int64
	logger *zap.Logger
	now    func() time.Time
}

// NewPointsService creates a new points service
func NewPointsService(st PointsStore, guard CheckinGuard, events PointsEventPublisher, award int64) *PointsService {
	return &PointsService{
		store:  st,
		guard:  guard,
		events: events,
		award:  award,
		logger: util.GetLogger(),
		now:    time.Now,
	}
}

// DailyCheckin awards the fixed daily bonus once per calendar day and
// returns the awarded amount. The Redis guard rejects repeats cheaply;
// the ledger's unique index is what actually prevents a double award.
func (s *PointsService) DailyCheckin(ctx context.Context, userID string) (int64, error) {
	ctx, span := util.StartSpan(ctx, "PointsService.DailyCheckin")
	defer span.End()

	today := s.now()
	day := today.Format("2006-01-02")
	startOfDay := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	nextMidnight := startOfDay.Add(24 * time.Hour)

	guarded := false
	if s.guard != nil {
		ok, err := s.guard.ClaimDailyCheckin(ctx, userID, day, nextMidnight)
		if err != nil {
			s.logger.Warn("Check-in guard unavailable, relying on ledger constraint",
				zap.String("user_id", userID), zap.Error(err))
		} else if !ok {
			util.CheckinsRejectedTotal.Inc()
			return 0, models.ErrAlreadyCheckedIn
		} else {
			guarded = true
		}
	}

	checkedIn, err := s.store.HasCheckedInToday(ctx, userID, startOfDay)
	if err != nil {
		s.releaseGuard(guarded, userID, day)
		return 0, fmt.Errorf("failed to check today's check-in: %w", err)
	}
	if checkedIn {
		util.CheckinsRejectedTotal.Inc()
		return 0, models.ErrAlreadyCheckedIn
	}

	if err := s.store.RecordCheckin(ctx, userID, s.award, day); err != nil {
		if errors.Is(err, models.ErrAlreadyCheckedIn) {
			util.CheckinsRejectedTotal.Inc()
			return 0, err
		}
		s.releaseGuard(guarded, userID, day)
		return 0, err
	}

	util.CheckinsTotal.Inc()
	util.PointsEarnedTotal.Add(float64(s.award))

	s.logger.Info("Daily check-in awarded",
		zap.String("user_id", userID),
		zap.Int64("award", s.award))

	if s.events != nil {
		event := &models.CheckinCompletedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeCheckinCompleted,
				Timestamp: s.now(),
			},
			UserID: userID,
			Award:  s.award,
		}

		if err := s.events.PublishCheckinCompleted(ctx, event); err != nil {
			s.logger.Error("Failed to publish CheckinCompleted event", zap.Error(err))
		}
	}

	return s.award, nil
}

func (s *PointsService) releaseGuard(guarded bool, userID, day string) {
	if !guarded {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.guard.ReleaseDailyCheckin(ctx, userID, day); err != nil {
		s.logger.Warn("Failed to release check-in guard", zap.Error(err))
	}
}

// HasCheckedInToday reports whether the user already checked in today
func (s *PointsService) HasCheckedInToday(ctx context.Context, userID string) (bool, error) {
	today := s.now()
	startOfDay := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	return s.store.HasCheckedInToday(ctx, userID, startOfDay)
}

// History retrieves the user's full ledger, newest first
func (s *PointsService) History(ctx context.Context, userID string) ([]models.PointsTransaction, error) {
	return s.store.TransactionsByUser(ctx, userID, nil, "")
}

// VerifyLedger checks the ledger/balance invariant: the signed sum of a
// user's transactions must equal the stored balance.
func (s *PointsService) VerifyLedger(ctx context.Context, userID string) (bool, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return false, err
	}

	sum, err := s.store.SumTransactions(ctx, userID)
	if err != nil {
		return false, err
	}

	if sum != user.Points {
		s.logger.Error("Ledger does not match balance",
			zap.String("user_id", userID),
			zap.Int64("balance", user.Points),
			zap.Int64("ledger_sum", sum))
		return false, nil
	}
	return true, nil
}
