package repository

import (
	"context"

	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/pagination"
	"github.com/choiyeonggeon/DangDangSalon-sub000/services/review/internal/domain"
)

// ReviewRepository stores review documents.
type ReviewRepository interface {
	// Create inserts a review. A second review for the same reservation
	// fails with ErrAlreadyExists.
	Create(ctx context.Context, review *domain.Review) error
	GetByID(ctx context.Context, id string) (*domain.Review, error)
	// Update replaces the mutable fields: content, rating, photos, reply and
	// the blinded flag.
	Update(ctx context.Context, review *domain.Review) error
	// Delete removes a review without decoding it and returns the shop it
	// belonged to.
	Delete(ctx context.Context, id string) (shopID string, err error)
	// ListByShop returns one page of the shop's reviews, newest first, and
	// the total count.
	ListByShop(ctx context.Context, shopID string, p pagination.Params) ([]domain.Review, int, error)
}

// RatingSource yields the raw rating values of every review of a shop.
type RatingSource interface {
	// NumericRatings rescans the shop's reviews and returns the ratings that
	// are stored as numbers, along with how many documents were skipped.
	NumericRatings(ctx context.Context, shopID string) (ratings []float64, skipped int, err error)
}

// RatingRepository stores the per-shop aggregate.
type RatingRepository interface {
	Upsert(ctx context.Context, rating *domain.ShopRating) error
	Get(ctx context.Context, shopID string) (*domain.ShopRating, error)
}

// DirectoryRepository holds what the booking service announces: the owner of
// each shop and the customer and shop of each reservation.
type DirectoryRepository interface {
	// SaveShopOwner records or replaces the owner of a shop.
	SaveShopOwner(ctx context.Context, shopID, ownerID string) error
	// ShopOwner fails with ErrNotFound for a shop that was never announced.
	ShopOwner(ctx context.Context, shopID string) (string, error)
	SaveVisit(ctx context.Context, visit *domain.BookedVisit) error
	GetVisit(ctx context.Context, reservationID string) (*domain.BookedVisit, error)
}
