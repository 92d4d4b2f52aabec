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
	"github.com/choiyeonggeon/DangDangSalon-sub000/services/review/internal/domain"
)

// RatingRepository implements repository.RatingRepository.
type RatingRepository struct {
	ratings *mongo.Collection
}

func NewRatingRepository(db *mongo.Database) *RatingRepository {
	return &RatingRepository{ratings: db.Collection(RatingsCollection)}
}

// Upsert overwrites the shop's aggregate. Concurrent writers are not
// serialised; the last one wins.
func (r *RatingRepository) Upsert(ctx context.Context, rating *domain.ShopRating) (err error) {
	ctx, end := database.TraceMongo(ctx, RatingsCollection, "upsert")
	defer func() { end(err) }()

	_, err = r.ratings.UpdateByID(ctx, rating.ShopID, bson.M{"$set": bson.M{
		"averageRating": rating.AverageRating,
		"reviewCount":   rating.ReviewCount,
		"updatedAt":     rating.UpdatedAt,
	}}, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert shop rating: %w", err)
	}
	return nil
}

func (r *RatingRepository) Get(ctx context.Context, shopID string) (_ *domain.ShopRating, err error) {
	ctx, end := database.TraceMongo(ctx, RatingsCollection, "findOne")
	defer func() { end(err) }()

	var doc ratingDocument
	if err = r.ratings.FindOne(ctx, bson.M{"_id": shopID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("shop rating", shopID)
		}
		return nil, fmt.Errorf("find shop rating: %w", err)
	}
	return &domain.ShopRating{
		ShopID:        doc.ShopID,
		AverageRating: doc.AverageRating,
		ReviewCount:   doc.ReviewCount,
		UpdatedAt:     doc.UpdatedAt.UTC(),
	}, nil
}
