package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/choiyeonggeon/DangDangSalon-sub000/pkg/kafka"
	"github.com/choiyeonggeon/DangDangSalon-sub000/services/review/internal/domain"
)

// Event types published by the review service.
const (
	EventReviewCreated     = "review.created"
	EventReviewChanged     = "review.changed"
	EventShopRatingUpdated = "shop.rating_updated"
)

var (
	TopicReviewCreated     = pkgkafka.Topic("review", "created")
	TopicReviewChanged     = pkgkafka.Topic("review", "changed")
	TopicShopRatingUpdated = pkgkafka.Topic("shop", "rating_updated")
)

const (
	AggregateTypeReview = "review"
	AggregateTypeShop   = "shop"
	SourceReviewService = "review-service"
)

// Review change actions carried by review.changed.
const (
	ActionCreated   = "created"
	ActionUpdated   = "updated"
	ActionBlinded   = "blinded"
	ActionUnblinded = "unblinded"
	ActionDeleted   = "deleted"
)

// ReviewCreatedData is the payload of review.created. OwnerID is the shop
// owner as announced by the booking service, empty when not yet known.
type ReviewCreatedData struct {
	ReviewID      string `json:"review_id"`
	ShopID        string `json:"shop_id"`
	ReservationID string `json:"reservation_id,omitempty"`
	OwnerID       string `json:"owner_id,omitempty"`
	AuthorID      string `json:"author_id"`
	AuthorName    string `json:"author_name"`
	Rating        int    `json:"rating"`
}

// ReviewChangedData is the payload of review.changed, keyed by shop.
type ReviewChangedData struct {
	ShopID   string `json:"shop_id"`
	ReviewID string `json:"review_id"`
	Action   string `json:"action"`
}

type ShopRatingUpdatedData struct {
	ShopID        string  `json:"shop_id"`
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int     `json:"review_count"`
}

// Producer publishes review events.
type Producer struct {
	publisher pkgkafka.Publisher
	logger    *slog.Logger
}

func NewProducer(publisher pkgkafka.Publisher, logger *slog.Logger) *Producer {
	return &Producer{publisher: publisher, logger: logger}
}

func (p *Producer) publish(ctx context.Context, topic, eventType, aggregateID, aggregateType string, data any) error {
	evt, err := pkgkafka.NewEvent(eventType, aggregateID, aggregateType, SourceReviewService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", eventType, err)
	}
	if err := p.publisher.Publish(ctx, topic, evt); err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}
	return nil
}

func (p *Producer) PublishReviewCreated(ctx context.Context, r *domain.Review) error {
	return p.publish(ctx, TopicReviewCreated, EventReviewCreated, r.ID, AggregateTypeReview, ReviewCreatedData{
		ReviewID:      r.ID,
		ShopID:        r.ShopID,
		ReservationID: r.ReservationID,
		OwnerID:       r.OwnerID,
		AuthorID:      r.AuthorID,
		AuthorName:    r.AuthorName,
		Rating:        r.Rating,
	})
}

// PublishReviewChanged keys the event by shop so that changes to one shop's
// reviews land on one partition.
func (p *Producer) PublishReviewChanged(ctx context.Context, shopID, reviewID, action string) error {
	return p.publish(ctx, TopicReviewChanged, EventReviewChanged, shopID, AggregateTypeShop, ReviewChangedData{
		ShopID:   shopID,
		ReviewID: reviewID,
		Action:   action,
	})
}

func (p *Producer) PublishShopRatingUpdated(ctx context.Context, rating *domain.ShopRating) error {
	return p.publish(ctx, TopicShopRatingUpdated, EventShopRatingUpdated, rating.ShopID, AggregateTypeShop, ShopRatingUpdatedData{
		ShopID:        rating.ShopID,
		AverageRating: rating.AverageRating,
		ReviewCount:   rating.ReviewCount,
	})
}
