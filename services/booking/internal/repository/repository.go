package repository

import (
	"context"

	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/pagination"
	"github.com/choiyeonggeon/DangDangSalon-sub000/services/booking/internal/domain"
)

// ShopRepository defines the interface for shop persistence operations.
type ShopRepository interface {
	Create(ctx context.Context, shop *domain.Shop) error

	// GetByID returns apperrors.ErrNotFound when the shop does not exist.
	GetByID(ctx context.Context, id string) (*domain.Shop, error)

	UpdateSlots(ctx context.Context, id string, slots []string) error

	// UpdateRating stores the aggregate computed by the review service.
	UpdateRating(ctx context.Context, id string, average float64, count int) error
}

// ReservationRepository defines the interface for reservation persistence operations.
type ReservationRepository interface {
	// Create inserts a reservation. Stores that enforce slot uniqueness
	// return apperrors.ErrBookingConflict on a duplicate active slot.
	Create(ctx context.Context, r *domain.Reservation) error

	GetByID(ctx context.Context, id string) (*domain.Reservation, error)

	// ListByShopAndDate returns every reservation of a shop on a day, whatever its status.
	ListByShopAndDate(ctx context.Context, shopID, date string) ([]domain.Reservation, error)

	// FindBySlot returns every reservation holding (shop, date, time), whatever its status.
	FindBySlot(ctx context.Context, shopID, date, timeSlot string) ([]domain.Reservation, error)

	ListByCustomer(ctx context.Context, customerID string, p pagination.Params) ([]domain.Reservation, int, error)

	// ListByShop lists a shop's reservations, optionally restricted to one day.
	ListByShop(ctx context.Context, shopID, date string, p pagination.Params) ([]domain.Reservation, int, error)

	// ListByDateAndStatus returns reservations of every shop on a day in the given status.
	ListByDateAndStatus(ctx context.Context, date, status string) ([]domain.Reservation, error)

	// UpdateStatus moves a reservation from one status to another. It returns
	// apperrors.ErrConflict when the stored status is no longer from.
	UpdateStatus(ctx context.Context, id, from, to string) error

	// MarkReviewWritten sets review_written and reports whether it changed.
	MarkReviewWritten(ctx context.Context, id string) (bool, error)
}
