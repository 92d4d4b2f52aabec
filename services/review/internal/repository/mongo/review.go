package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/database"
	apperrors "github.com/choiyeonggeon/DangDangSalon-sub000/pkg/errors"
	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/pagination"
	"github.com/choiyeonggeon/DangDangSalon-sub000/services/review/internal/domain"
)

const reservationIndex = "reservationId_unique"

// ReviewRepository implements repository.ReviewRepository and
// repository.RatingSource.
type ReviewRepository struct {
	reviews *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	return &ReviewRepository{reviews: db.Collection(ReviewsCollection)}
}

// EnsureIndexes creates the listing index and the one-review-per-reservation
// index. It is safe to call on every start.
func (r *ReviewRepository) EnsureIndexes(ctx context.Context) (err error) {
	ctx, end := database.TraceMongo(ctx, ReviewsCollection, "createIndexes")
	defer func() { end(err) }()

	_, err = r.reviews.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "shopId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{
			Keys: bson.D{{Key: "reservationId", Value: 1}},
			Options: options.Index().
				SetName(reservationIndex).
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"reservationId": bson.M{"$type": "string"}}),
		},
	})
	if err != nil {
		return fmt.Errorf("create review indexes: %w", err)
	}
	return nil
}

func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) (err error) {
	ctx, end := database.TraceMongo(ctx, ReviewsCollection, "insertOne")
	defer func() { end(err) }()

	if _, err = r.reviews.InsertOne(ctx, newReviewDocument(review)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.AlreadyExists("review", "reservation_id", review.ReservationID)
		}
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

func (r *ReviewRepository) GetByID(ctx context.Context, id string) (_ *domain.Review, err error) {
	ctx, end := database.TraceMongo(ctx, ReviewsCollection, "findOne")
	defer func() { end(err) }()

	var doc reviewDocument
	if err = r.reviews.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("review", id)
		}
		return nil, fmt.Errorf("find review: %w", err)
	}
	return doc.toDomain()
}

func (r *ReviewRepository) Update(ctx context.Context, review *domain.Review) (err error) {
	ctx, end := database.TraceMongo(ctx, ReviewsCollection, "updateOne")
	defer func() { end(err) }()

	doc := newReviewDocument(review)
	res, err := r.reviews.UpdateByID(ctx, review.ID, bson.M{"$set": bson.M{
		"content":   doc.Content,
		"rating":    doc.Rating,
		"photos":    doc.Photos,
		"reply":     doc.Reply,
		"blinded":   doc.Blinded,
		"updatedAt": doc.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFound("review", review.ID)
	}
	return nil
}

// Delete projects only the shop ID, so documents that no longer decode can
// still be removed.
func (r *ReviewRepository) Delete(ctx context.Context, id string) (_ string, err error) {
	ctx, end := database.TraceMongo(ctx, ReviewsCollection, "findOneAndDelete")
	defer func() { end(err) }()

	var doc struct {
		ShopID string `bson:"shopId"`
	}
	err = r.reviews.FindOneAndDelete(ctx, bson.M{"_id": id},
		options.FindOneAndDelete().SetProjection(bson.M{"shopId": 1})).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", apperrors.NotFound("review", id)
		}
		return "", fmt.Errorf("delete review: %w", err)
	}
	return doc.ShopID, nil
}

// ListByShop only returns documents whose rating is a number in range, so a
// malformed document never breaks a page.
func (r *ReviewRepository) ListByShop(ctx context.Context, shopID string, p pagination.Params) (_ []domain.Review, _ int, err error) {
	ctx, end := database.TraceMongo(ctx, ReviewsCollection, "find")
	defer func() { end(err) }()

	filter := bson.M{
		"shopId": shopID,
		"rating": bson.M{"$type": "number", "$gte": domain.MinRating, "$lte": domain.MaxRating},
	}

	total, err := r.reviews.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(p.Offset())).
		SetLimit(int64(p.PerPage))

	cursor, err := r.reviews.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find reviews: %w", err)
	}
	defer cursor.Close(ctx)

	reviews := make([]domain.Review, 0)
	for cursor.Next(ctx) {
		var doc reviewDocument
		if err = cursor.Decode(&doc); err != nil {
			return nil, 0, fmt.Errorf("decode review: %w", err)
		}
		review, err := doc.toDomain()
		if err != nil {
			return nil, 0, err
		}
		reviews = append(reviews, *review)
	}
	if err = cursor.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate reviews: %w", err)
	}
	return reviews, int(total), nil
}

// NumericRatings reads the rating field of every review of the shop as raw
// BSON and keeps only numeric values.
func (r *ReviewRepository) NumericRatings(ctx context.Context, shopID string) (_ []float64, _ int, err error) {
	ctx, end := database.TraceMongo(ctx, ReviewsCollection, "rescanRatings")
	defer func() { end(err) }()

	cursor, err := r.reviews.Find(ctx, bson.M{"shopId": shopID},
		options.Find().SetProjection(bson.M{"rating": 1}))
	if err != nil {
		return nil, 0, fmt.Errorf("scan ratings: %w", err)
	}
	defer cursor.Close(ctx)

	var (
		ratings []float64
		skipped int
	)
	for cursor.Next(ctx) {
		if v, ok := numericRating(cursor.Current.Lookup("rating")); ok {
			ratings = append(ratings, v)
		} else {
			skipped++
		}
	}
	if err = cursor.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate ratings: %w", err)
	}
	return ratings, skipped, nil
}
