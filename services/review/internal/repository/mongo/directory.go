package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/database"
	apperrors "github.com/choiyeonggeon/DangDangSalon-sub000/pkg/errors"
	"github.com/choiyeonggeon/DangDangSalon-sub000/services/review/internal/domain"
)

// DirectoryRepository implements repository.DirectoryRepository.
type DirectoryRepository struct {
	owners *mongo.Collection
	visits *mongo.Collection
	now    func() time.Time
}

func NewDirectoryRepository(db *mongo.Database) *DirectoryRepository {
	return &DirectoryRepository{
		owners: db.Collection(ShopOwnersCollection),
		visits: db.Collection(VisitsCollection),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (r *DirectoryRepository) SaveShopOwner(ctx context.Context, shopID, ownerID string) (err error) {
	ctx, end := database.TraceMongo(ctx, ShopOwnersCollection, "upsert")
	defer func() { end(err) }()

	_, err = r.owners.UpdateByID(ctx, shopID, bson.M{"$set": bson.M{
		"ownerId":   ownerID,
		"updatedAt": r.now(),
	}}, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert shop owner: %w", err)
	}
	return nil
}

func (r *DirectoryRepository) ShopOwner(ctx context.Context, shopID string) (_ string, err error) {
	ctx, end := database.TraceMongo(ctx, ShopOwnersCollection, "findOne")
	defer func() { end(err) }()

	var doc shopOwnerDocument
	if err = r.owners.FindOne(ctx, bson.M{"_id": shopID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", apperrors.NotFound("shop owner", shopID)
		}
		return "", fmt.Errorf("find shop owner: %w", err)
	}
	return doc.OwnerID, nil
}

// SaveVisit keeps the first announcement of a reservation; its customer and
// shop never change.
func (r *DirectoryRepository) SaveVisit(ctx context.Context, visit *domain.BookedVisit) (err error) {
	ctx, end := database.TraceMongo(ctx, VisitsCollection, "upsert")
	defer func() { end(err) }()

	_, err = r.visits.UpdateByID(ctx, visit.ReservationID, bson.M{"$setOnInsert": bson.M{
		"shopId":     visit.ShopID,
		"customerId": visit.CustomerID,
	}}, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert booked visit: %w", err)
	}
	return nil
}

func (r *DirectoryRepository) GetVisit(ctx context.Context, reservationID string) (_ *domain.BookedVisit, err error) {
	ctx, end := database.TraceMongo(ctx, VisitsCollection, "findOne")
	defer func() { end(err) }()

	var doc visitDocument
	if err = r.visits.FindOne(ctx, bson.M{"_id": reservationID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("reservation", reservationID)
		}
		return nil, fmt.Errorf("find booked visit: %w", err)
	}
	return &domain.BookedVisit{
		ReservationID: doc.ReservationID,
		ShopID:        doc.ShopID,
		CustomerID:    doc.CustomerID,
	}, nil
}
