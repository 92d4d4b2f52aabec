package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/choiyeonggeon/DangDangSalon-sub000/pkg/errors"
	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/pagination"
	"github.com/choiyeonggeon/DangDangSalon-sub000/services/booking/internal/domain"
	"github.com/choiyeonggeon/DangDangSalon-sub000/services/booking/internal/repository"
)

var (
	_ repository.ShopRepository        = (*Store)(nil)
	_ repository.ReservationRepository = (*ReservationStore)(nil)
)

func TestStore_Shops(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	require.NoError(t, s.Create(ctx, &domain.Shop{ID: "shop-1", OwnerID: "owner-1", Name: "Paws"}))
	assert.ErrorIs(t, s.Create(ctx, &domain.Shop{ID: "shop-1"}), apperrors.ErrAlreadyExists)

	require.NoError(t, s.UpdateSlots(ctx, "shop-1", []string{"10:00"}))
	require.NoError(t, s.UpdateRating(ctx, "shop-1", 4.2, 5))

	shop, err := s.GetByID(ctx, "shop-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"10:00"}, shop.TimeSlots)
	assert.Equal(t, 4.2, shop.AverageRating)

	_, err = s.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestStore_AllowsDuplicateSlots(t *testing.T) {
	ctx := context.Background()
	rs := NewStore().Reservations()

	for _, id := range []string{"r1", "r2"} {
		require.NoError(t, rs.Create(ctx, &domain.Reservation{
			ID: id, ShopID: "shop-1", Date: "2025-12-01", TimeSlot: "10:00", Status: domain.StatusRequested,
		}))
	}

	got, err := rs.FindBySlot(ctx, "shop-1", "2025-12-01", "10:00")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	rs := NewStore().Reservations()
	require.NoError(t, rs.Create(ctx, &domain.Reservation{ID: "r1", Items: []domain.Item{{Name: "bath"}}}))

	got, err := rs.GetByID(ctx, "r1")
	require.NoError(t, err)
	got.Items[0].Name = "mutated"

	again, err := rs.GetByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "bath", again.Items[0].Name)
}

func TestStore_ListByCustomerPaginates(t *testing.T) {
	ctx := context.Background()
	rs := NewStore().Reservations()
	for i, date := range []string{"2025-12-01", "2025-12-03", "2025-12-02"} {
		require.NoError(t, rs.Create(ctx, &domain.Reservation{
			ID: string(rune('a' + i)), CustomerID: "cust-1", Date: date, TimeSlot: "10:00",
		}))
	}

	got, total, err := rs.ListByCustomer(ctx, "cust-1", pagination.Params{Page: 1, PerPage: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, got, 2)
	assert.Equal(t, "2025-12-03", got[0].Date)
	assert.Equal(t, "2025-12-02", got[1].Date)

	got, _, err = rs.ListByCustomer(ctx, "cust-1", pagination.Params{Page: 3, PerPage: 2})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_UpdateStatusAndReviewFlag(t *testing.T) {
	ctx := context.Background()
	rs := NewStore().Reservations()
	require.NoError(t, rs.Create(ctx, &domain.Reservation{ID: "r1", Status: domain.StatusRequested}))

	require.NoError(t, rs.UpdateStatus(ctx, "r1", domain.StatusRequested, domain.StatusConfirmed))
	assert.ErrorIs(t, rs.UpdateStatus(ctx, "r1", domain.StatusRequested, domain.StatusCancelled), apperrors.ErrConflict)

	changed, err := rs.MarkReviewWritten(ctx, "r1")
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = rs.MarkReviewWritten(ctx, "r1")
	require.NoError(t, err)
	assert.False(t, changed)

	got, err := rs.ListByDateAndStatus(ctx, "", domain.StatusConfirmed)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].ReviewWritten)
}
