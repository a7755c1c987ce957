package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"points-mall/internal/models"

	"github.com/segmentio/kafka-go"
)

// EventPublisher handles publishing domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishOrderPlaced publishes an OrderPlaced event
func (ep *EventPublisher) PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error {
	key := fmt.Sprintf("user-%s", event.UserID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishCheckinCompleted publishes a CheckinCompleted event
func (ep *EventPublisher) PublishCheckinCompleted(ctx context.Context, event *models.CheckinCompletedEvent) error {
	key := fmt.Sprintf("user-%s", event.UserID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishPointsAdjusted publishes a PointsAdjusted event
func (ep *EventPublisher) PublishPointsAdjusted(ctx context.Context, event *models.PointsAdjustedEvent) error {
	key := fmt.Sprintf("user-%s", event.UserID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishCouponClaimed publishes a CouponClaimed event
func (ep *EventPublisher) PublishCouponClaimed(ctx context.Context, event *models.CouponClaimedEvent) error {
	key := fmt.Sprintf("user-%s", event.UserID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// EventHandler routes incoming events to registered handlers
type EventHandler struct {
	onOrderPlaced      func(context.Context, *models.OrderPlacedEvent) error
	onCheckinCompleted func(context.Context, *models.CheckinCompletedEvent) error
	onPointsAdjusted   func(context.Context, *models.PointsAdjustedEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnOrderPlaced registers a handler for OrderPlaced events
func (eh *EventHandler) OnOrderPlaced(handler func(context.Context, *models.OrderPlacedEvent) error) {
	eh.onOrderPlaced = handler
}

// OnCheckinCompleted registers a handler for CheckinCompleted events
func (eh *EventHandler) OnCheckinCompleted(handler func(context.Context, *models.CheckinCompletedEvent) error) {
	eh.onCheckinCompleted = handler
}

// OnPointsAdjusted registers a handler for PointsAdjusted events
func (eh *EventHandler) OnPointsAdjusted(handler func(context.Context, *models.PointsAdjustedEvent) error) {
	eh.onPointsAdjusted = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	switch baseEvent.EventType {
	case models.EventTypeOrderPlaced:
		if eh.onOrderPlaced != nil {
			var event models.OrderPlacedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal OrderPlaced event: %w", err)
			}
			return eh.onOrderPlaced(ctx, &event)
		}

	case models.EventTypeCheckinCompleted:
		if eh.onCheckinCompleted != nil {
			var event models.CheckinCompletedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal CheckinCompleted event: %w", err)
			}
			return eh.onCheckinCompleted(ctx, &event)
		}

	case models.EventTypePointsAdjusted:
		if eh.onPointsAdjusted != nil {
			var event models.PointsAdjustedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal PointsAdjusted event: %w", err)
			}
			return eh.onPointsAdjusted(ctx, &event)
		}

	default:
		log.Printf("Unhandled event type: %s", baseEvent.EventType)
	}

	return nil
}
