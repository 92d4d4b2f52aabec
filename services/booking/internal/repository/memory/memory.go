// Package memory is an in-process store for local runs and tests. Unlike the
// PostgreSQL schema it has no uniqueness constraint on booked slots.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	apperrors "github.com/choiyeonggeon/DangDangSalon-sub000/pkg/errors"
	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/pagination"
	"github.com/choiyeonggeon/DangDangSalon-sub000/services/booking/internal/domain"
)

// Store implements repository.ShopRepository and repository.ReservationRepository.
type Store struct {
	mu           sync.RWMutex
	shops        map[string]domain.Shop
	reservations map[string]domain.Reservation
	now          func() time.Time
}

func NewStore() *Store {
	return &Store{
		shops:        make(map[string]domain.Shop),
		reservations: make(map[string]domain.Reservation),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func cloneReservation(r domain.Reservation) domain.Reservation {
	r.Items = slices.Clone(r.Items)
	return r
}

func (s *Store) Create(ctx context.Context, shop *domain.Shop) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.shops[shop.ID]; ok {
		return apperrors.AlreadyExists("shop", "id", shop.ID)
	}
	c := *shop
	c.TimeSlots = slices.Clone(shop.TimeSlots)
	s.shops[shop.ID] = c
	return nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*domain.Shop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	shop, ok := s.shops[id]
	if !ok {
		return nil, apperrors.NotFound("shop", id)
	}
	shop.TimeSlots = slices.Clone(shop.TimeSlots)
	return &shop, nil
}

func (s *Store) UpdateSlots(ctx context.Context, id string, slots []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	shop, ok := s.shops[id]
	if !ok {
		return apperrors.NotFound("shop", id)
	}
	shop.TimeSlots = slices.Clone(slots)
	shop.UpdatedAt = s.now()
	s.shops[id] = shop
	return nil
}

func (s *Store) UpdateRating(ctx context.Context, id string, average float64, count int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	shop, ok := s.shops[id]
	if !ok {
		return apperrors.NotFound("shop", id)
	}
	shop.AverageRating = average
	shop.ReviewCount = count
	shop.UpdatedAt = s.now()
	s.shops[id] = shop
	return nil
}

// Reservations returns the reservation side of the store. Both sides share
// one lock and one map set.
func (s *Store) Reservations() *ReservationStore {
	return &ReservationStore{s: s}
}

// ReservationStore is a view of Store implementing repository.ReservationRepository.
type ReservationStore struct {
	s *Store
}

func (rs *ReservationStore) Create(ctx context.Context, r *domain.Reservation) error {
	rs.s.mu.Lock()
	defer rs.s.mu.Unlock()

	if _, ok := rs.s.reservations[r.ID]; ok {
		return apperrors.AlreadyExists("reservation", "id", r.ID)
	}
	rs.s.reservations[r.ID] = cloneReservation(*r)
	return nil
}

func (rs *ReservationStore) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	rs.s.mu.RLock()
	defer rs.s.mu.RUnlock()

	r, ok := rs.s.reservations[id]
	if !ok {
		return nil, apperrors.NotFound("reservation", id)
	}
	r = cloneReservation(r)
	return &r, nil
}

// filter returns matching reservations sorted by date then time, newest day first when desc is set.
func (rs *ReservationStore) filter(match func(*domain.Reservation) bool, desc bool) []domain.Reservation {
	rs.s.mu.RLock()
	defer rs.s.mu.RUnlock()

	var out []domain.Reservation
	for _, r := range rs.s.reservations {
		if match(&r) {
			out = append(out, cloneReservation(r))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			if desc {
				return out[i].Date > out[j].Date
			}
			return out[i].Date < out[j].Date
		}
		if out[i].TimeSlot != out[j].TimeSlot {
			return out[i].TimeSlot < out[j].TimeSlot
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func page(all []domain.Reservation, p pagination.Params) ([]domain.Reservation, int) {
	total := len(all)
	start := min(p.Offset(), total)
	end := min(start+p.PerPage, total)
	return all[start:end], total
}

func (rs *ReservationStore) ListByShopAndDate(ctx context.Context, shopID, date string) ([]domain.Reservation, error) {
	return rs.filter(func(r *domain.Reservation) bool {
		return r.ShopID == shopID && r.Date == date
	}, false), nil
}

func (rs *ReservationStore) FindBySlot(ctx context.Context, shopID, date, timeSlot string) ([]domain.Reservation, error) {
	return rs.filter(func(r *domain.Reservation) bool {
		return r.ShopID == shopID && r.Date == date && r.TimeSlot == timeSlot
	}, false), nil
}

func (rs *ReservationStore) ListByCustomer(ctx context.Context, customerID string, p pagination.Params) ([]domain.Reservation, int, error) {
	items, total := page(rs.filter(func(r *domain.Reservation) bool {
		return r.CustomerID == customerID
	}, true), p)
	return items, total, nil
}

func (rs *ReservationStore) ListByShop(ctx context.Context, shopID, date string, p pagination.Params) ([]domain.Reservation, int, error) {
	items, total := page(rs.filter(func(r *domain.Reservation) bool {
		return r.ShopID == shopID && (date == "" || r.Date == date)
	}, true), p)
	return items, total, nil
}

func (rs *ReservationStore) ListByDateAndStatus(ctx context.Context, date, status string) ([]domain.Reservation, error) {
	return rs.filter(func(r *domain.Reservation) bool {
		return r.Date == date && r.Status == status
	}, false), nil
}

func (rs *ReservationStore) UpdateStatus(ctx context.Context, id, from, to string) error {
	rs.s.mu.Lock()
	defer rs.s.mu.Unlock()

	r, ok := rs.s.reservations[id]
	if !ok {
		return apperrors.NotFound("reservation", id)
	}
	if r.Status != from {
		return apperrors.Conflict(fmt.Sprintf("reservation %s is no longer %s", id, from))
	}
	r.Status = to
	r.UpdatedAt = rs.s.now()
	rs.s.reservations[id] = r
	return nil
}

func (rs *ReservationStore) MarkReviewWritten(ctx context.Context, id string) (bool, error) {
	rs.s.mu.Lock()
	defer rs.s.mu.Unlock()

	r, ok := rs.s.reservations[id]
	if !ok {
		return false, apperrors.NotFound("reservation", id)
	}
	if r.ReviewWritten {
		return false, nil
	}
	r.ReviewWritten = true
	r.UpdatedAt = rs.s.now()
	rs.s.reservations[id] = r
	return true, nil
}
