package event

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	apperrors "github.com/choiyeonggeon/DangDangSalon-sub000/pkg/errors"
	pkgkafka "github.com/choiyeonggeon/DangDangSalon-sub000/pkg/kafka"
)

// Event types consumed by the booking service.
const (
	EventReviewCreated     = "review.created"
	EventShopRatingUpdated = "shop.rating_updated"
)

// Kafka topics consumed by the booking service.
var (
	TopicReviewCreated     = pkgkafka.Topic("review", "created")
	TopicShopRatingUpdated = pkgkafka.Topic("shop", "rating_updated")
)

// BookingService defines what the consumer needs from the service layer.
type BookingService interface {
	MarkReviewWritten(ctx context.Context, reservationID, authorID, shopID string) error
	ApplyShopRating(ctx context.Context, shopID string, average float64, count int) error
}

// ReviewCreatedData is the part of a review.created payload the booking service reads.
type ReviewCreatedData struct {
	ReviewID      string `json:"review_id"`
	ShopID        string `json:"shop_id"`
	ReservationID string `json:"reservation_id"`
	AuthorID      string `json:"author_id"`
}

// ShopRatingUpdatedData is the expected payload of a shop.rating_updated event.
type ShopRatingUpdatedData struct {
	ShopID        string  `json:"shop_id"`
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int     `json:"review_count"`
}

// Consumer dispatches events from other services to the booking service.
type Consumer struct {
	service BookingService
	logger  *slog.Logger
}

func NewConsumer(service BookingService, logger *slog.Logger) *Consumer {
	return &Consumer{service: service, logger: logger}
}

// Handle is a pkgkafka.Handler. Unknown event types are ignored.
func (c *Consumer) Handle(ctx context.Context, evt *pkgkafka.Event) error {
	switch evt.EventType {
	case EventReviewCreated:
		return c.handleReviewCreated(ctx, evt)
	case EventShopRatingUpdated:
		return c.handleShopRatingUpdated(ctx, evt)
	default:
		c.logger.DebugContext(ctx, "ignoring event", slog.String("event_type", evt.EventType))
		return nil
	}
}

func (c *Consumer) handleReviewCreated(ctx context.Context, evt *pkgkafka.Event) error {
	var data ReviewCreatedData
	if err := evt.UnmarshalData(&data); err != nil {
		return err
	}
	if data.ReservationID == "" {
		return nil
	}

	err := c.service.MarkReviewWritten(ctx, data.ReservationID, data.AuthorID, data.ShopID)
	if errors.Is(err, apperrors.ErrNotFound) {
		c.logger.WarnContext(ctx, "review references unknown reservation",
			slog.String("review_id", data.ReviewID),
			slog.String("reservation_id", data.ReservationID),
		)
		return nil
	}
	if err != nil {
		return fmt.Errorf("mark review written on reservation %s: %w", data.ReservationID, err)
	}
	return nil
}

func (c *Consumer) handleShopRatingUpdated(ctx context.Context, evt *pkgkafka.Event) error {
	var data ShopRatingUpdatedData
	if err := evt.UnmarshalData(&data); err != nil {
		return err
	}

	err := c.service.ApplyShopRating(ctx, data.ShopID, data.AverageRating, data.ReviewCount)
	if errors.Is(err, apperrors.ErrNotFound) {
		c.logger.WarnContext(ctx, "rating update for unknown shop", slog.String("shop_id", data.ShopID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("apply rating to shop %s: %w", data.ShopID, err)
	}
	return nil
}
