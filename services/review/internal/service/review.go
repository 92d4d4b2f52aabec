package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/choiyeonggeon/DangDangSalon-sub000/pkg/errors"
	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/middleware"
	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/pagination"
	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/validator"
	"github.com/choiyeonggeon/DangDangSalon-sub000/services/review/internal/domain"
	"github.com/choiyeonggeon/DangDangSalon-sub000/services/review/internal/event"
	"github.com/choiyeonggeon/DangDangSalon-sub000/services/review/internal/repository"
)

// Actor is the authenticated user performing an operation.
type Actor struct {
	UserID string
	Name   string
	Role   string
}

func (a Actor) IsAdmin() bool { return a.Role == middleware.RoleAdmin }

// CreateReviewInput carries a new review. ShopID comes from the path and the
// author from the access token. The shop owner is never taken from the client.
type CreateReviewInput struct {
	ShopID        string   `json:"-" validate:"required,uuid"`
	AuthorID      string   `json:"-" validate:"required"`
	AuthorName    string   `json:"-"`
	ReservationID string   `json:"reservation_id" validate:"omitempty,uuid"`
	Rating        int      `json:"rating" validate:"required,min=1,max=5"`
	Content       string   `json:"content" validate:"required,max=1000"`
	Photos        []string `json:"photos" validate:"max=5,dive,url"`
}

// UpdateReviewInput changes the fields that are set. An empty photos array
// removes all photos.
type UpdateReviewInput struct {
	Rating  *int     `json:"rating"`
	Content *string  `json:"content" validate:"omitempty,max=1000"`
	Photos  []string `json:"photos" validate:"max=5,dive,url"`
}

type ReplyInput struct {
	Content string `json:"content" validate:"required,max=500"`
}

// ReviewService implements review writes, moderation and listing. Every
// change that can move a shop's rating is announced with review.changed.
// Shop owners and reservations come from the directory, which is filled from
// booking events.
type ReviewService struct {
	reviews   repository.ReviewRepository
	ratings   repository.RatingRepository
	directory repository.DirectoryRepository
	producer  *event.Producer
	logger    *slog.Logger
	now       func() time.Time
}

func NewReviewService(
	reviews repository.ReviewRepository,
	ratings repository.RatingRepository,
	directory repository.DirectoryRepository,
	producer *event.Producer,
	logger *slog.Logger,
) *ReviewService {
	return &ReviewService{
		reviews:   reviews,
		ratings:   ratings,
		directory: directory,
		producer:  producer,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *ReviewService) CreateReview(ctx context.Context, in CreateReviewInput) (*domain.Review, error) {
	in.Content = strings.TrimSpace(in.Content)
	in.AuthorName = strings.TrimSpace(in.AuthorName)
	if err := validator.Validate(in); err != nil {
		return nil, err
	}
	if in.ReservationID != "" {
		if err := s.checkVisit(ctx, in); err != nil {
			return nil, err
		}
	}
	ownerID, err := s.shopOwner(ctx, in.ShopID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	review := &domain.Review{
		ID:            uuid.NewString(),
		ShopID:        in.ShopID,
		ReservationID: in.ReservationID,
		OwnerID:       ownerID,
		AuthorID:      in.AuthorID,
		AuthorName:    in.AuthorName,
		Content:       in.Content,
		Rating:        in.Rating,
		Photos:        in.Photos,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	if err := s.producer.PublishReviewCreated(ctx, review); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.created event",
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
	}
	s.announceChange(ctx, review.ShopID, review.ID, event.ActionCreated)

	s.logger.InfoContext(ctx, "review created",
		slog.String("review_id", review.ID),
		slog.String("shop_id", review.ShopID),
		slog.Int("rating", review.Rating),
	)
	return review, nil
}

// UpdateReview lets the author edit rating, text and photos.
func (s *ReviewService) UpdateReview(ctx context.Context, actor Actor, id string, in UpdateReviewInput) (*domain.Review, error) {
	if in.Rating == nil && in.Content == nil && in.Photos == nil {
		return nil, apperrors.InvalidInput("nothing to update")
	}
	if in.Rating != nil && !domain.ValidRating(*in.Rating) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("rating must be between %d and %d", domain.MinRating, domain.MaxRating))
	}
	if in.Content != nil {
		trimmed := strings.TrimSpace(*in.Content)
		if trimmed == "" {
			return nil, apperrors.InvalidInput("content must not be empty")
		}
		in.Content = &trimmed
	}
	if err := validator.Validate(in); err != nil {
		return nil, err
	}

	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}
	if !review.WrittenBy(actor.UserID) {
		return nil, apperrors.Forbidden("only the author can edit a review")
	}

	if in.Rating != nil {
		review.Rating = *in.Rating
	}
	if in.Content != nil {
		review.Content = *in.Content
	}
	if in.Photos != nil {
		review.Photos = in.Photos
	}
	review.UpdatedAt = s.now()

	if err := s.reviews.Update(ctx, review); err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}
	s.announceChange(ctx, review.ShopID, review.ID, event.ActionUpdated)
	return review, nil
}

// ReplyToReview stores the shop owner's reply, replacing an earlier one.
// Only the shop's owner as announced by the booking service, or an admin,
// may reply.
func (s *ReviewService) ReplyToReview(ctx context.Context, actor Actor, id string, in ReplyInput) (*domain.Review, error) {
	in.Content = strings.TrimSpace(in.Content)
	if err := validator.Validate(in); err != nil {
		return nil, err
	}

	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}
	if !actor.IsAdmin() {
		ownerID, err := s.shopOwner(ctx, review.ShopID)
		if err != nil {
			return nil, err
		}
		if ownerID == "" || ownerID != actor.UserID {
			return nil, apperrors.Forbidden("only the shop owner can reply to this review")
		}
	}

	now := s.now()
	review.Reply = &domain.Reply{Content: in.Content, OwnerID: actor.UserID, CreatedAt: now}
	review.UpdatedAt = now

	if err := s.reviews.Update(ctx, review); err != nil {
		return nil, fmt.Errorf("save reply: %w", err)
	}
	return review, nil
}

// BlindReview hides or shows a review. Blinded reviews still count toward
// the shop's rating.
func (s *ReviewService) BlindReview(ctx context.Context, actor Actor, id string, blinded bool) (*domain.Review, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.Forbidden("moderation requires the admin role")
	}

	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}
	if review.Blinded == blinded {
		return review, nil
	}
	review.Blinded = blinded
	review.UpdatedAt = s.now()

	if err := s.reviews.Update(ctx, review); err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}

	action := event.ActionUnblinded
	if blinded {
		action = event.ActionBlinded
	}
	s.announceChange(ctx, review.ShopID, review.ID, action)

	s.logger.InfoContext(ctx, "review moderated",
		slog.String("review_id", review.ID),
		slog.Bool("blinded", blinded),
		slog.String("admin_id", actor.UserID),
	)
	return review, nil
}

// DeleteReview removes a review permanently. The author and admins may
// delete. Admins delete without reading the review, so a stored document that
// no longer decodes can still be removed.
func (s *ReviewService) DeleteReview(ctx context.Context, actor Actor, id string) error {
	if !actor.IsAdmin() {
		review, err := s.reviews.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("get review: %w", err)
		}
		if !review.WrittenBy(actor.UserID) {
			return apperrors.Forbidden("only the author or an admin can delete a review")
		}
	}

	shopID, err := s.reviews.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	s.announceChange(ctx, shopID, id, event.ActionDeleted)

	s.logger.InfoContext(ctx, "review deleted",
		slog.String("review_id", id),
		slog.String("shop_id", shopID),
		slog.String("deleted_by", actor.UserID),
	)
	return nil
}

// ListShopReviews returns the shop's reviews newest first, with blinded
// reviews masked.
func (s *ReviewService) ListShopReviews(ctx context.Context, shopID string, p pagination.Params) (pagination.Result[domain.Review], error) {
	reviews, total, err := s.reviews.ListByShop(ctx, shopID, p)
	if err != nil {
		return pagination.Result[domain.Review]{}, fmt.Errorf("list reviews: %w", err)
	}
	for i := range reviews {
		reviews[i] = reviews[i].Masked()
	}
	return pagination.NewResult(reviews, total, p), nil
}

// GetShopRating returns the stored aggregate, or an empty one when the shop
// has never been rated.
func (s *ReviewService) GetShopRating(ctx context.Context, shopID string) (*domain.ShopRating, error) {
	rating, err := s.ratings.Get(ctx, shopID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return &domain.ShopRating{ShopID: shopID}, nil
		}
		return nil, fmt.Errorf("get shop rating: %w", err)
	}
	return rating, nil
}

// RecordShopOwner stores the owner of a shop as announced by the booking service.
func (s *ReviewService) RecordShopOwner(ctx context.Context, shopID, ownerID string) error {
	if err := s.directory.SaveShopOwner(ctx, shopID, ownerID); err != nil {
		return err
	}
	s.logger.DebugContext(ctx, "shop owner recorded",
		slog.String("shop_id", shopID),
		slog.String("owner_id", ownerID),
	)
	return nil
}

// RecordVisit stores a reservation so reviews citing it can be checked.
func (s *ReviewService) RecordVisit(ctx context.Context, visit *domain.BookedVisit) error {
	return s.directory.SaveVisit(ctx, visit)
}

// checkVisit rejects a review that cites a reservation the booking service
// never announced, or one made by another customer or at another shop.
func (s *ReviewService) checkVisit(ctx context.Context, in CreateReviewInput) error {
	visit, err := s.directory.GetVisit(ctx, in.ReservationID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.InvalidInput("unknown reservation: " + in.ReservationID)
		}
		return fmt.Errorf("get reservation: %w", err)
	}
	if !visit.Matches(in.AuthorID, in.ShopID) {
		s.logger.WarnContext(ctx, "review cites a reservation of another customer or shop",
			slog.String("reservation_id", in.ReservationID),
			slog.String("author_id", in.AuthorID),
			slog.String("shop_id", in.ShopID),
		)
		return apperrors.Forbidden("the reservation belongs to another customer or shop")
	}
	return nil
}

// shopOwner returns "" for a shop the booking service has not announced yet.
func (s *ReviewService) shopOwner(ctx context.Context, shopID string) (string, error) {
	ownerID, err := s.directory.ShopOwner(ctx, shopID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("get shop owner: %w", err)
	}
	return ownerID, nil
}

func (s *ReviewService) announceChange(ctx context.Context, shopID, reviewID, action string) {
	if err := s.producer.PublishReviewChanged(ctx, shopID, reviewID, action); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.changed event; shop rating stays stale until the next change",
			slog.String("review_id", reviewID),
			slog.String("shop_id", shopID),
			slog.String("error", err.Error()),
		)
	}
}
