package worker

import (
	"context"

	"points-mall/internal/broker"
	"points-mall/internal/models"
	"points-mall/internal/pricing"
	"points-mall/internal/store"
	"points-mall/internal/util"

	"go.uber.org/zap"
)

// MembershipWorker consumes points events and recomputes membership levels
// asynchronously. Processed event IDs are recorded so redelivered messages
// do not recompute twice.
type MembershipWorker struct {
	consumer *broker.Consumer
	handler  *broker.EventHandler
	store    *store.Store
	logger   *zap.Logger
}

// NewMembershipWorker creates a membership worker wired to its handlers
func NewMembershipWorker(consumer *broker.Consumer, st *store.Store) *MembershipWorker {
	w := &MembershipWorker{
		consumer: consumer,
		handler:  broker.NewEventHandler(),
		store:    st,
		logger:   util.GetLogger(),
	}

	w.handler.OnOrderPlaced(func(ctx context.Context, event *models.OrderPlacedEvent) error {
		return w.recompute(ctx, event.EventID, event.EventType, event.UserID)
	})
	w.handler.OnCheckinCompleted(func(ctx context.Context, event *models.CheckinCompletedEvent) error {
		return w.recompute(ctx, event.EventID, event.EventType, event.UserID)
	})
	w.handler.OnPointsAdjusted(func(ctx context.Context, event *models.PointsAdjustedEvent) error {
		return w.recompute(ctx, event.EventID, event.EventType, event.UserID)
	})

	return w
}

// Start consumes until the context is cancelled
func (w *MembershipWorker) Start(ctx context.Context) error {
	w.logger.Info("Membership worker starting")
	return w.consumer.StartConsuming(ctx, w.handler.HandleMessage)
}

// Close closes the underlying consumer
func (w *MembershipWorker) Close() error {
	return w.consumer.Close()
}

func (w *MembershipWorker) recompute(ctx context.Context, eventID, eventType, userID string) error {
	processed, err := w.store.IsEventProcessed(ctx, eventID)
	if err != nil {
		return err
	}
	if processed {
		return nil
	}

	user, err := w.store.GetUser(ctx, userID)
	if err != nil {
		w.logger.Error("Failed to load user for level recompute",
			zap.String("user_id", userID), zap.Error(err))
		return err
	}

	level := pricing.LevelForPoints(user.Points)
	if level != user.Level {
		if err := w.store.UpdateUserLevel(ctx, userID, level); err != nil {
			return err
		}
		util.LevelRecomputedTotal.Inc()
		w.logger.Info("Membership level recomputed",
			zap.String("user_id", userID),
			zap.String("from", user.Level),
			zap.String("to", level))
	}

	return w.store.MarkEventProcessed(ctx, eventID, eventType)
}
