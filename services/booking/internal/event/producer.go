package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/choiyeonggeon/DangDangSalon-sub000/pkg/kafka"
	"github.com/choiyeonggeon/DangDangSalon-sub000/services/booking/internal/domain"
)

// Event types published by the booking service.
const (
	EventReservationCreated       = "reservation.created"
	EventReservationStatusChanged = "reservation.status_changed"
	EventReservationReminder      = "reservation.reminder"
	EventShopCreated              = "shop.created"
)

// Kafka topics for reservation domain events.
var (
	TopicReservationCreated       = pkgkafka.Topic("reservation", "created")
	TopicReservationStatusChanged = pkgkafka.Topic("reservation", "status_changed")
	TopicReservationReminder      = pkgkafka.Topic("reservation", "reminder")
	TopicShopCreated              = pkgkafka.Topic("shop", "created")
)

const (
	AggregateTypeReservation = "reservation"
	AggregateTypeShop        = "shop"
	SourceBookingService     = "booking-service"
)

// ReservationCreatedData is the payload for a reservation.created event.
type ReservationCreatedData struct {
	ReservationID string `json:"reservation_id"`
	ShopID        string `json:"shop_id"`
	ShopName      string `json:"shop_name"`
	OwnerID       string `json:"owner_id"`
	CustomerID    string `json:"customer_id"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	TotalPrice    int64  `json:"total_price"`
}

// ReservationStatusChangedData is the payload for a reservation.status_changed event.
type ReservationStatusChangedData struct {
	ReservationID  string `json:"reservation_id"`
	ShopID         string `json:"shop_id"`
	ShopName       string `json:"shop_name"`
	OwnerID        string `json:"owner_id"`
	CustomerID     string `json:"customer_id"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	PreviousStatus string `json:"previous_status"`
	Status         string `json:"status"`
	ChangedBy      string `json:"changed_by"`
}

// ReservationReminderData is the payload for a reservation.reminder event.
type ReservationReminderData struct {
	ReservationID string `json:"reservation_id"`
	ShopID        string `json:"shop_id"`
	ShopName      string `json:"shop_name"`
	CustomerID    string `json:"customer_id"`
	Date          string `json:"date"`
	Time          string `json:"time"`
}

// ShopCreatedData is the payload for a shop.created event. Other services
// take shop ownership from it.
type ShopCreatedData struct {
	ShopID  string `json:"shop_id"`
	OwnerID string `json:"owner_id"`
	Name    string `json:"name"`
}

// Producer publishes reservation events keyed by reservation ID and shop
// events keyed by shop ID.
type Producer struct {
	publisher pkgkafka.Publisher
	logger    *slog.Logger
}

func NewProducer(publisher pkgkafka.Publisher, logger *slog.Logger) *Producer {
	return &Producer{publisher: publisher, logger: logger}
}

func (p *Producer) publish(ctx context.Context, topic, eventType, reservationID string, data any) error {
	return p.publishAggregate(ctx, topic, eventType, reservationID, AggregateTypeReservation, data)
}

func (p *Producer) publishAggregate(ctx context.Context, topic, eventType, aggregateID, aggregateType string, data any) error {
	evt, err := pkgkafka.NewEvent(eventType, aggregateID, aggregateType, SourceBookingService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", eventType, err)
	}
	if err := p.publisher.Publish(ctx, topic, evt); err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}

	p.logger.DebugContext(ctx, "event published",
		slog.String("event_type", eventType),
		slog.String("aggregate_id", aggregateID),
	)
	return nil
}

func (p *Producer) PublishReservationCreated(ctx context.Context, r *domain.Reservation, shopName string) error {
	return p.publish(ctx, TopicReservationCreated, EventReservationCreated, r.ID, ReservationCreatedData{
		ReservationID: r.ID,
		ShopID:        r.ShopID,
		ShopName:      shopName,
		OwnerID:       r.OwnerID,
		CustomerID:    r.CustomerID,
		Date:          r.Date,
		Time:          r.TimeSlot,
		TotalPrice:    r.TotalPrice,
	})
}

func (p *Producer) PublishReservationStatusChanged(ctx context.Context, r *domain.Reservation, shopName, previous, changedBy string) error {
	return p.publish(ctx, TopicReservationStatusChanged, EventReservationStatusChanged, r.ID, ReservationStatusChangedData{
		ReservationID:  r.ID,
		ShopID:         r.ShopID,
		ShopName:       shopName,
		OwnerID:        r.OwnerID,
		CustomerID:     r.CustomerID,
		Date:           r.Date,
		Time:           r.TimeSlot,
		PreviousStatus: previous,
		Status:         r.Status,
		ChangedBy:      changedBy,
	})
}

func (p *Producer) PublishReservationReminder(ctx context.Context, r *domain.Reservation, shopName string) error {
	return p.publish(ctx, TopicReservationReminder, EventReservationReminder, r.ID, ReservationReminderData{
		ReservationID: r.ID,
		ShopID:        r.ShopID,
		ShopName:      shopName,
		CustomerID:    r.CustomerID,
		Date:          r.Date,
		Time:          r.TimeSlot,
	})
}

// PublishShopCreated announces a shop and its owner. Re-publishing is
// harmless: consumers overwrite the owner they hold.
func (p *Producer) PublishShopCreated(ctx context.Context, shop *domain.Shop) error {
	return p.publishAggregate(ctx, TopicShopCreated, EventShopCreated, shop.ID, AggregateTypeShop, ShopCreatedData{
		ShopID:  shop.ID,
		OwnerID: shop.OwnerID,
		Name:    shop.Name,
	})
}
