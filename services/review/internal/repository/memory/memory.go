// Package memory is an in-process review store for local runs and tests.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	apperrors "github.com/choiyeonggeon/DangDangSalon-sub000/pkg/errors"
	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/pagination"
	"github.com/choiyeonggeon/DangDangSalon-sub000/services/review/internal/domain"
)

// Store implements repository.ReviewRepository, repository.RatingSource,
// repository.RatingRepository and repository.DirectoryRepository.
type Store struct {
	mu      sync.RWMutex
	reviews map[string]domain.Review
	ratings map[string]domain.ShopRating
	owners  map[string]string
	visits  map[string]domain.BookedVisit
}

func NewStore() *Store {
	return &Store{
		reviews: make(map[string]domain.Review),
		ratings: make(map[string]domain.ShopRating),
		owners:  make(map[string]string),
		visits:  make(map[string]domain.BookedVisit),
	}
}

func cloneReview(r domain.Review) domain.Review {
	r.Photos = slices.Clone(r.Photos)
	if r.Reply != nil {
		reply := *r.Reply
		r.Reply = &reply
	}
	return r
}

func (s *Store) Create(ctx context.Context, review *domain.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reviews[review.ID]; ok {
		return apperrors.AlreadyExists("review", "id", review.ID)
	}
	if review.ReservationID != "" {
		for _, existing := range s.reviews {
			if existing.ReservationID == review.ReservationID {
				return apperrors.AlreadyExists("review", "reservation_id", review.ReservationID)
			}
		}
	}
	s.reviews[review.ID] = cloneReview(*review)
	return nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	review, ok := s.reviews[id]
	if !ok {
		return nil, apperrors.NotFound("review", id)
	}
	review = cloneReview(review)
	return &review, nil
}

func (s *Store) Update(ctx context.Context, review *domain.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.reviews[review.ID]
	if !ok {
		return apperrors.NotFound("review", review.ID)
	}
	current.Content = review.Content
	current.Rating = review.Rating
	current.Photos = review.Photos
	current.Reply = review.Reply
	current.Blinded = review.Blinded
	current.UpdatedAt = review.UpdatedAt
	s.reviews[review.ID] = cloneReview(current)
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	review, ok := s.reviews[id]
	if !ok {
		return "", apperrors.NotFound("review", id)
	}
	delete(s.reviews, id)
	return review.ShopID, nil
}

func (s *Store) ListByShop(ctx context.Context, shopID string, p pagination.Params) ([]domain.Review, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []domain.Review
	for _, r := range s.reviews {
		if r.ShopID == shopID {
			matched = append(matched, cloneReview(r))
		}
	}
	slices.SortFunc(matched, func(a, b domain.Review) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	total := len(matched)
	start := min(p.Offset(), total)
	end := min(start+p.PerPage, total)
	return matched[start:end], total, nil
}

func (s *Store) NumericRatings(ctx context.Context, shopID string) ([]float64, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ratings []float64
	for _, r := range s.reviews {
		if r.ShopID == shopID {
			ratings = append(ratings, float64(r.Rating))
		}
	}
	return ratings, 0, nil
}

func (s *Store) Upsert(ctx context.Context, rating *domain.ShopRating) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ratings[rating.ShopID] = *rating
	return nil
}

func (s *Store) Get(ctx context.Context, shopID string) (*domain.ShopRating, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rating, ok := s.ratings[shopID]
	if !ok {
		return nil, apperrors.NotFound("shop rating", shopID)
	}
	return &rating, nil
}

func (s *Store) SaveShopOwner(ctx context.Context, shopID, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.owners[shopID] = ownerID
	return nil
}

func (s *Store) ShopOwner(ctx context.Context, shopID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	owner, ok := s.owners[shopID]
	if !ok {
		return "", apperrors.NotFound("shop owner", shopID)
	}
	return owner, nil
}

func (s *Store) SaveVisit(ctx context.Context, visit *domain.BookedVisit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.visits[visit.ReservationID]; !ok {
		s.visits[visit.ReservationID] = *visit
	}
	return nil
}

func (s *Store) GetVisit(ctx context.Context, reservationID string) (*domain.BookedVisit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	visit, ok := s.visits[reservationID]
	if !ok {
		return nil, apperrors.NotFound("reservation", reservationID)
	}
	return &visit, nil
}
