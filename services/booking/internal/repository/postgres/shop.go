package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/database"
	apperrors "github.com/choiyeonggeon/DangDangSalon-sub000/pkg/errors"
	"github.com/choiyeonggeon/DangDangSalon-sub000/services/booking/internal/domain"
)

// ShopRepository implements repository.ShopRepository using PostgreSQL.
type ShopRepository struct {
	pool database.DBTX
}

func NewShopRepository(pool database.DBTX) *ShopRepository {
	return &ShopRepository{pool: pool}
}

func (r *ShopRepository) Create(ctx context.Context, shop *domain.Shop) (err error) {
	query := `
		INSERT INTO shops (id, owner_id, name, time_slots, avg_rating, review_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	ctx, end := database.TraceQuery(ctx, "CreateShop", query)
	defer func() { end(err) }()

	_, err = r.pool.Exec(ctx, query,
		shop.ID,
		shop.OwnerID,
		shop.Name,
		shop.TimeSlots,
		shop.AverageRating,
		shop.ReviewCount,
		shop.CreatedAt,
		shop.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert shop: %w", err)
	}
	return nil
}

func (r *ShopRepository) GetByID(ctx context.Context, id string) (_ *domain.Shop, err error) {
	query := `
		SELECT id, owner_id, name, time_slots, avg_rating, review_count, created_at, updated_at
		FROM shops
		WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "GetShop", query)
	defer func() { end(err) }()

	var s domain.Shop
	err = r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID,
		&s.OwnerID,
		&s.Name,
		&s.TimeSlots,
		&s.AverageRating,
		&s.ReviewCount,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("shop", id)
		}
		return nil, fmt.Errorf("get shop %s: %w", id, err)
	}
	return &s, nil
}

func (r *ShopRepository) UpdateSlots(ctx context.Context, id string, slots []string) (err error) {
	query := `UPDATE shops SET time_slots = $2, updated_at = NOW() WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "UpdateShopSlots", query)
	defer func() { end(err) }()

	tag, err := r.pool.Exec(ctx, query, id, slots)
	if err != nil {
		return fmt.Errorf("update slots of shop %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("shop", id)
	}
	return nil
}

func (r *ShopRepository) UpdateRating(ctx context.Context, id string, average float64, count int) (err error) {
	query := `UPDATE shops SET avg_rating = $2, review_count = $3, updated_at = NOW() WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "UpdateShopRating", query)
	defer func() { end(err) }()

	tag, err := r.pool.Exec(ctx, query, id, average, count)
	if err != nil {
		return fmt.Errorf("update rating of shop %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("shop", id)
	}
	return nil
}
