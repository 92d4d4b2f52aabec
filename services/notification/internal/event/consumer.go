package event

import (
	"context"
	"log/slog"

	pkgkafka "github.com/choiyeonggeon/DangDangSalon-sub000/pkg/kafka"
	"github.com/choiyeonggeon/DangDangSalon-sub000/services/notification/internal/domain"
)

// Event types this service reacts to.
const (
	EventReservationCreated       = "reservation.created"
	EventReservationStatusChanged = "reservation.status_changed"
	EventReservationReminder      = "reservation.reminder"
	EventReviewCreated            = "review.created"
)

// Topics returns every topic the notification consumer group subscribes to.
func Topics() []string {
	return []string{
		pkgkafka.Topic("reservation", "created"),
		pkgkafka.Topic("reservation", "status_changed"),
		pkgkafka.Topic("reservation", "reminder"),
		pkgkafka.Topic("review", "created"),
	}
}

// Payloads, as published by the booking and review services. Only the
// fields used for templating are decoded.

type reservationCreatedPayload struct {
	ReservationID string `json:"reservation_id"`
	ShopID        string `json:"shop_id"`
	ShopName      string `json:"shop_name"`
	OwnerID       string `json:"owner_id"`
	Date          string `json:"date"`
	Time          string `json:"time"`
}

type reservationStatusChangedPayload struct {
	ReservationID string `json:"reservation_id"`
	ShopID        string `json:"shop_id"`
	ShopName      string `json:"shop_name"`
	OwnerID       string `json:"owner_id"`
	CustomerID    string `json:"customer_id"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	Status        string `json:"status"`
	ChangedBy     string `json:"changed_by"`
}

type reservationReminderPayload struct {
	ReservationID string `json:"reservation_id"`
	ShopID        string `json:"shop_id"`
	ShopName      string `json:"shop_name"`
	CustomerID    string `json:"customer_id"`
	Date          string `json:"date"`
	Time          string `json:"time"`
}

type reviewCreatedPayload struct {
	ReviewID   string `json:"review_id"`
	ShopID     string `json:"shop_id"`
	OwnerID    string `json:"owner_id"`
	AuthorName string `json:"author_name"`
	Rating     int    `json:"rating"`
}

// Dispatcher delivers a rendered notice.
type Dispatcher interface {
	Dispatch(ctx context.Context, n domain.Notice) error
}

// Consumer turns booking and review events into push notices.
type Consumer struct {
	dispatcher Dispatcher
	logger     *slog.Logger
}

func NewConsumer(dispatcher Dispatcher, logger *slog.Logger) *Consumer {
	return &Consumer{dispatcher: dispatcher, logger: logger}
}

// Handle is a pkgkafka.Handler.
func (c *Consumer) Handle(ctx context.Context, evt *pkgkafka.Event) error {
	switch evt.EventType {
	case EventReservationCreated:
		return c.handleReservationCreated(ctx, evt)
	case EventReservationStatusChanged:
		return c.handleStatusChanged(ctx, evt)
	case EventReservationReminder:
		return c.handleReminder(ctx, evt)
	case EventReviewCreated:
		return c.handleReviewCreated(ctx, evt)
	default:
		c.logger.DebugContext(ctx, "ignoring event", slog.String("event_type", evt.EventType))
		return nil
	}
}

func (c *Consumer) handleReservationCreated(ctx context.Context, evt *pkgkafka.Event) error {
	var p reservationCreatedPayload
	if err := evt.UnmarshalData(&p); err != nil {
		return err
	}
	return c.dispatcher.Dispatch(ctx, domain.NewReservationNotice(p.OwnerID, domain.Slot{
		ReservationID: p.ReservationID,
		ShopID:        p.ShopID,
		ShopName:      p.ShopName,
		Date:          p.Date,
		Time:          p.Time,
	}))
}

func (c *Consumer) handleStatusChanged(ctx context.Context, evt *pkgkafka.Event) error {
	var p reservationStatusChangedPayload
	if err := evt.UnmarshalData(&p); err != nil {
		return err
	}

	n, ok := domain.StatusNotice(p.CustomerID, p.OwnerID, p.ChangedBy, p.Status, domain.Slot{
		ReservationID: p.ReservationID,
		ShopID:        p.ShopID,
		ShopName:      p.ShopName,
		Date:          p.Date,
		Time:          p.Time,
	})
	if !ok {
		c.logger.DebugContext(ctx, "no notice for reservation status",
			slog.String("reservation_id", p.ReservationID),
			slog.String("status", p.Status),
		)
		return nil
	}
	return c.dispatcher.Dispatch(ctx, n)
}

func (c *Consumer) handleReminder(ctx context.Context, evt *pkgkafka.Event) error {
	var p reservationReminderPayload
	if err := evt.UnmarshalData(&p); err != nil {
		return err
	}
	return c.dispatcher.Dispatch(ctx, domain.ReminderNotice(p.CustomerID, domain.Slot{
		ReservationID: p.ReservationID,
		ShopID:        p.ShopID,
		ShopName:      p.ShopName,
		Date:          p.Date,
		Time:          p.Time,
	}))
}

func (c *Consumer) handleReviewCreated(ctx context.Context, evt *pkgkafka.Event) error {
	var p reviewCreatedPayload
	if err := evt.UnmarshalData(&p); err != nil {
		return err
	}
	if p.OwnerID == "" {
		// Empty until the booking service has announced the shop.
		c.logger.DebugContext(ctx, "review without owner, no notice", slog.String("review_id", p.ReviewID))
		return nil
	}
	return c.dispatcher.Dispatch(ctx, domain.ReviewNotice(p.OwnerID, p.ShopID, p.ReviewID, p.AuthorName, p.Rating))
}
