package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/choiyeonggeon/DangDangSalon-sub000/pkg/kafka"
	"github.com/choiyeonggeon/DangDangSalon-sub000/services/review/internal/domain"
)

// Event types consumed from the booking service.
const (
	EventShopCreated        = "shop.created"
	EventReservationCreated = "reservation.created"
)

var (
	TopicShopCreated        = pkgkafka.Topic("shop", "created")
	TopicReservationCreated = pkgkafka.Topic("reservation", "created")
)

// ShopCreatedData is the part of a shop.created payload the review service reads.
type ShopCreatedData struct {
	ShopID  string `json:"shop_id"`
	OwnerID string `json:"owner_id"`
}

// ReservationCreatedData is the part of a reservation.created payload the
// review service reads.
type ReservationCreatedData struct {
	ReservationID string `json:"reservation_id"`
	ShopID        string `json:"shop_id"`
	OwnerID       string `json:"owner_id"`
	CustomerID    string `json:"customer_id"`
}

// RatingAggregator recomputes a shop's rating from its reviews.
type RatingAggregator interface {
	Recompute(ctx context.Context, shopID string) (*domain.ShopRating, error)
}

// Consumer triggers the aggregator on review.changed events.
type Consumer struct {
	aggregator RatingAggregator
	logger     *slog.Logger
}

func NewConsumer(aggregator RatingAggregator, logger *slog.Logger) *Consumer {
	return &Consumer{aggregator: aggregator, logger: logger}
}

// Handle is a pkgkafka.Handler.
func (c *Consumer) Handle(ctx context.Context, evt *pkgkafka.Event) error {
	if evt.EventType != EventReviewChanged {
		c.logger.DebugContext(ctx, "ignoring event", slog.String("event_type", evt.EventType))
		return nil
	}

	var data ReviewChangedData
	if err := evt.UnmarshalData(&data); err != nil {
		return err
	}
	if data.ShopID == "" {
		c.logger.WarnContext(ctx, "review.changed without shop id", slog.String("event_id", evt.EventID))
		return nil
	}

	if _, err := c.aggregator.Recompute(ctx, data.ShopID); err != nil {
		return fmt.Errorf("recompute rating of shop %s: %w", data.ShopID, err)
	}
	return nil
}

// Directory records booking facts used to authorize reviews and replies.
type Directory interface {
	RecordShopOwner(ctx context.Context, shopID, ownerID string) error
	RecordVisit(ctx context.Context, visit *domain.BookedVisit) error
}

// DirectoryConsumer feeds shop.created and reservation.created into the
// directory. Both events carry the shop owner.
type DirectoryConsumer struct {
	directory Directory
	logger    *slog.Logger
}

func NewDirectoryConsumer(directory Directory, logger *slog.Logger) *DirectoryConsumer {
	return &DirectoryConsumer{directory: directory, logger: logger}
}

// Handle is a pkgkafka.Handler.
func (c *DirectoryConsumer) Handle(ctx context.Context, evt *pkgkafka.Event) error {
	switch evt.EventType {
	case EventShopCreated:
		var data ShopCreatedData
		if err := evt.UnmarshalData(&data); err != nil {
			return err
		}
		return c.recordOwner(ctx, evt, data.ShopID, data.OwnerID)
	case EventReservationCreated:
		var data ReservationCreatedData
		if err := evt.UnmarshalData(&data); err != nil {
			return err
		}
		if data.ReservationID == "" || data.ShopID == "" || data.CustomerID == "" {
			c.logger.WarnContext(ctx, "incomplete reservation.created", slog.String("event_id", evt.EventID))
			return nil
		}
		if err := c.recordOwner(ctx, evt, data.ShopID, data.OwnerID); err != nil {
			return err
		}
		err := c.directory.RecordVisit(ctx, &domain.BookedVisit{
			ReservationID: data.ReservationID,
			ShopID:        data.ShopID,
			CustomerID:    data.CustomerID,
		})
		if err != nil {
			return fmt.Errorf("record reservation %s: %w", data.ReservationID, err)
		}
		return nil
	default:
		c.logger.DebugContext(ctx, "ignoring event", slog.String("event_type", evt.EventType))
		return nil
	}
}

func (c *DirectoryConsumer) recordOwner(ctx context.Context, evt *pkgkafka.Event, shopID, ownerID string) error {
	if shopID == "" || ownerID == "" {
		c.logger.WarnContext(ctx, "event without shop owner",
			slog.String("event_id", evt.EventID),
			slog.String("event_type", evt.EventType),
		)
		return nil
	}
	if err := c.directory.RecordShopOwner(ctx, shopID, ownerID); err != nil {
		return fmt.Errorf("record owner of shop %s: %w", shopID, err)
	}
	return nil
}
