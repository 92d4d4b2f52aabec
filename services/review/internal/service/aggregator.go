package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/choiyeonggeon/DangDangSalon-sub000/services/review/internal/domain"
	"github.com/choiyeonggeon/DangDangSalon-sub000/services/review/internal/event"
	"github.com/choiyeonggeon/DangDangSalon-sub000/services/review/internal/repository"
)

// Aggregator rebuilds a shop's rating from scratch on every invocation.
// Invocations are not serialised; when two overlap the last write wins.
type Aggregator struct {
	source   repository.RatingSource
	ratings  repository.RatingRepository
	producer *event.Producer
	logger   *slog.Logger
	now      func() time.Time
}

func NewAggregator(
	source repository.RatingSource,
	ratings repository.RatingRepository,
	producer *event.Producer,
	logger *slog.Logger,
) *Aggregator {
	return &Aggregator{
		source:   source,
		ratings:  ratings,
		producer: producer,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Recompute rescans every review of the shop, averages the numeric ratings
// to one decimal and stores the result with the count. Failures are logged
// and returned; nothing is retried.
func (a *Aggregator) Recompute(ctx context.Context, shopID string) (*domain.ShopRating, error) {
	rating, err := a.recompute(ctx, shopID)
	if err != nil {
		ratingRecomputations.WithLabelValues("error").Inc()
		a.logger.ErrorContext(ctx, "shop rating recomputation failed",
			slog.String("shop_id", shopID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	ratingRecomputations.WithLabelValues("ok").Inc()
	return rating, nil
}

func (a *Aggregator) recompute(ctx context.Context, shopID string) (*domain.ShopRating, error) {
	values, skipped, err := a.source.NumericRatings(ctx, shopID)
	if err != nil {
		return nil, fmt.Errorf("read ratings: %w", err)
	}
	if skipped > 0 {
		ratingDocumentsSkipped.Add(float64(skipped))
		a.logger.WarnContext(ctx, "reviews without a numeric rating left out",
			slog.String("shop_id", shopID),
			slog.Int("skipped", skipped),
		)
	}

	average, count := domain.Summarize(values)
	rating := &domain.ShopRating{
		ShopID:        shopID,
		AverageRating: average,
		ReviewCount:   count,
		UpdatedAt:     a.now(),
	}
	if err := a.ratings.Upsert(ctx, rating); err != nil {
		return nil, fmt.Errorf("write rating: %w", err)
	}

	if err := a.producer.PublishShopRatingUpdated(ctx, rating); err != nil {
		a.logger.ErrorContext(ctx, "failed to publish shop.rating_updated event",
			slog.String("shop_id", shopID),
			slog.String("error", err.Error()),
		)
	}

	a.logger.InfoContext(ctx, "shop rating recomputed",
		slog.String("shop_id", shopID),
		slog.Float64("average_rating", average),
		slog.Int("review_count", count),
	)
	return rating, nil
}
