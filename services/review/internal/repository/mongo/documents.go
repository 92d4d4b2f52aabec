// Package mongo stores reviews and shop ratings in MongoDB.
package mongo

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"

	"github.com/choiyeonggeon/DangDangSalon-sub000/services/review/internal/domain"
)

// Collection names.
const (
	ReviewsCollection    = "reviews"
	RatingsCollection    = "shop_ratings"
	ShopOwnersCollection = "shop_owners"
	VisitsCollection     = "booked_visits"
)

// ErrInvalidDocument marks a stored review that does not decode into a valid
// domain.Review.
var ErrInvalidDocument = errors.New("invalid review document")

// reviewDocument is the MongoDB shape of a review. Rating is kept raw so that
// documents written by other clients can be inspected before use.
type reviewDocument struct {
	ID            string         `bson:"_id"`
	ShopID        string         `bson:"shopId"`
	ReservationID string         `bson:"reservationId,omitempty"`
	OwnerID       string         `bson:"ownerId,omitempty"`
	AuthorID      string         `bson:"authorId"`
	AuthorName    string         `bson:"authorName"`
	Content       string         `bson:"content"`
	Rating        bson.RawValue  `bson:"rating"`
	Photos        []string       `bson:"photos,omitempty"`
	Reply         *replyDocument `bson:"reply,omitempty"`
	Blinded       bool           `bson:"blinded"`
	CreatedAt     time.Time      `bson:"createdAt"`
	UpdatedAt     time.Time      `bson:"updatedAt"`
}

type replyDocument struct {
	Content   string    `bson:"content"`
	OwnerID   string    `bson:"ownerId"`
	CreatedAt time.Time `bson:"createdAt"`
}

// shopOwnerDocument is keyed by shop ID.
type shopOwnerDocument struct {
	ShopID    string    `bson:"_id"`
	OwnerID   string    `bson:"ownerId"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// visitDocument is keyed by reservation ID.
type visitDocument struct {
	ReservationID string `bson:"_id"`
	ShopID        string `bson:"shopId"`
	CustomerID    string `bson:"customerId"`
}

// ratingDocument is keyed by shop ID.
type ratingDocument struct {
	ShopID        string    `bson:"_id"`
	AverageRating float64   `bson:"averageRating"`
	ReviewCount   int       `bson:"reviewCount"`
	UpdatedAt     time.Time `bson:"updatedAt"`
}

func ratingValue(n int) bson.RawValue {
	t, data, _ := bson.MarshalValue(int32(n))
	return bson.RawValue{Type: t, Value: data}
}

// numericRating accepts the BSON number types: double, int32, int64 and
// decimal128. Anything else, a missing field, NaN and infinities are rejected.
func numericRating(v bson.RawValue) (float64, bool) {
	var f float64
	switch v.Type {
	case bsontype.Double:
		f = v.Double()
	case bsontype.Int32:
		f = float64(v.Int32())
	case bsontype.Int64:
		f = float64(v.Int64())
	case bsontype.Decimal128:
		parsed, err := strconv.ParseFloat(v.Decimal128().String(), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func newReviewDocument(r *domain.Review) reviewDocument {
	doc := reviewDocument{
		ID:            r.ID,
		ShopID:        r.ShopID,
		ReservationID: r.ReservationID,
		OwnerID:       r.OwnerID,
		AuthorID:      r.AuthorID,
		AuthorName:    r.AuthorName,
		Content:       r.Content,
		Rating:        ratingValue(r.Rating),
		Photos:        r.Photos,
		Blinded:       r.Blinded,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if r.Reply != nil {
		doc.Reply = &replyDocument{Content: r.Reply.Content, OwnerID: r.Reply.OwnerID, CreatedAt: r.Reply.CreatedAt}
	}
	return doc
}

func (d reviewDocument) toDomain() (*domain.Review, error) {
	rating, ok := numericRating(d.Rating)
	if !ok || rating != math.Trunc(rating) || !domain.ValidRating(int(rating)) {
		return nil, fmt.Errorf("review %s: %w: rating of type %s", d.ID, ErrInvalidDocument, d.Rating.Type)
	}

	r := &domain.Review{
		ID:            d.ID,
		ShopID:        d.ShopID,
		ReservationID: d.ReservationID,
		OwnerID:       d.OwnerID,
		AuthorID:      d.AuthorID,
		AuthorName:    d.AuthorName,
		Content:       d.Content,
		Rating:        int(rating),
		Photos:        d.Photos,
		Blinded:       d.Blinded,
		CreatedAt:     d.CreatedAt.UTC(),
		UpdatedAt:     d.UpdatedAt.UTC(),
	}
	if d.Reply != nil {
		r.Reply = &domain.Reply{Content: d.Reply.Content, OwnerID: d.Reply.OwnerID, CreatedAt: d.Reply.CreatedAt.UTC()}
	}
	return r, nil
}
