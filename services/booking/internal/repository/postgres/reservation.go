package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/database"
	apperrors "github.com/choiyeonggeon/DangDangSalon-sub000/pkg/errors"
	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/pagination"
	"github.com/choiyeonggeon/DangDangSalon-sub000/services/booking/internal/domain"
)

// activeSlotConstraint is the partial unique index over non-cancelled
// reservations of one (shop, day, time).
const activeSlotConstraint = "reservations_active_slot_key"

const reservationColumns = `id, shop_id, customer_id, owner_id,
		to_char(reservation_date, 'YYYY-MM-DD'), time_slot, items, total_price,
		status, request, review_written, created_at, updated_at`

// ReservationRepository implements repository.ReservationRepository using PostgreSQL.
type ReservationRepository struct {
	pool database.DBTX
}

func NewReservationRepository(pool database.DBTX) *ReservationRepository {
	return &ReservationRepository{pool: pool}
}

func (r *ReservationRepository) Create(ctx context.Context, res *domain.Reservation) (err error) {
	query := `
		INSERT INTO reservations (id, shop_id, customer_id, owner_id, reservation_date, time_slot,
			items, total_price, status, request, review_written, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5::date, $6, $7, $8, $9, $10, $11, $12, $13)`

	ctx, end := database.TraceQuery(ctx, "CreateReservation", query)
	defer func() { end(err) }()

	items, err := json.Marshal(res.Items)
	if err != nil {
		return fmt.Errorf("encode reservation items: %w", err)
	}

	_, err = r.pool.Exec(ctx, query,
		res.ID,
		res.ShopID,
		res.CustomerID,
		res.OwnerID,
		res.Date,
		res.TimeSlot,
		items,
		res.TotalPrice,
		res.Status,
		res.Request,
		res.ReviewWritten,
		res.CreatedAt,
		res.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err, activeSlotConstraint) {
			return apperrors.BookingConflict(res.Date, res.TimeSlot)
		}
		return fmt.Errorf("insert reservation: %w", err)
	}
	return nil
}

func (r *ReservationRepository) GetByID(ctx context.Context, id string) (_ *domain.Reservation, err error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "GetReservation", query)
	defer func() { end(err) }()

	res, err := scanReservation(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("reservation", id)
		}
		return nil, fmt.Errorf("get reservation %s: %w", id, err)
	}
	return res, nil
}

func (r *ReservationRepository) ListByShopAndDate(ctx context.Context, shopID, date string) (_ []domain.Reservation, err error) {
	query := `SELECT ` + reservationColumns + `
		FROM reservations
		WHERE shop_id = $1 AND reservation_date = $2::date
		ORDER BY time_slot`

	ctx, end := database.TraceQuery(ctx, "ListReservationsByShopAndDate", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, shopID, date)
	if err != nil {
		return nil, fmt.Errorf("list reservations of shop %s on %s: %w", shopID, date, err)
	}
	return collectReservations(rows)
}

func (r *ReservationRepository) FindBySlot(ctx context.Context, shopID, date, timeSlot string) (_ []domain.Reservation, err error) {
	query := `SELECT ` + reservationColumns + `
		FROM reservations
		WHERE shop_id = $1 AND reservation_date = $2::date AND time_slot = $3`

	ctx, end := database.TraceQuery(ctx, "FindReservationsBySlot", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, shopID, date, timeSlot)
	if err != nil {
		return nil, fmt.Errorf("find reservations for %s %s: %w", date, timeSlot, err)
	}
	return collectReservations(rows)
}

func (r *ReservationRepository) ListByCustomer(ctx context.Context, customerID string, p pagination.Params) (_ []domain.Reservation, _ int, err error) {
	query := `SELECT ` + reservationColumns + `, count(*) OVER() AS total_count
		FROM reservations
		WHERE customer_id = $1
		ORDER BY reservation_date DESC, time_slot DESC
		LIMIT $2 OFFSET $3`

	ctx, end := database.TraceQuery(ctx, "ListReservationsByCustomer", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, customerID, p.PerPage, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list reservations of customer %s: %w", customerID, err)
	}
	return collectCountedReservations(rows)
}

func (r *ReservationRepository) ListByShop(ctx context.Context, shopID, date string, p pagination.Params) (_ []domain.Reservation, _ int, err error) {
	query := `SELECT ` + reservationColumns + `, count(*) OVER() AS total_count
		FROM reservations
		WHERE shop_id = $1 AND ($2::text = '' OR reservation_date = NULLIF($2::text, '')::date)
		ORDER BY reservation_date DESC, time_slot
		LIMIT $3 OFFSET $4`

	ctx, end := database.TraceQuery(ctx, "ListReservationsByShop", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, shopID, date, p.PerPage, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list reservations of shop %s: %w", shopID, err)
	}
	return collectCountedReservations(rows)
}

func (r *ReservationRepository) ListByDateAndStatus(ctx context.Context, date, status string) (_ []domain.Reservation, err error) {
	query := `SELECT ` + reservationColumns + `
		FROM reservations
		WHERE reservation_date = $1::date AND status = $2
		ORDER BY shop_id, time_slot`

	ctx, end := database.TraceQuery(ctx, "ListReservationsByDateAndStatus", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, date, status)
	if err != nil {
		return nil, fmt.Errorf("list %s reservations on %s: %w", status, date, err)
	}
	return collectReservations(rows)
}

func (r *ReservationRepository) UpdateStatus(ctx context.Context, id, from, to string) (err error) {
	query := `UPDATE reservations SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`

	ctx, end := database.TraceQuery(ctx, "UpdateReservationStatus", query)
	defer func() { end(err) }()

	tag, err := r.pool.Exec(ctx, query, id, from, to)
	if err != nil {
		return fmt.Errorf("update status of reservation %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.Conflict(fmt.Sprintf("reservation %s is no longer %s", id, from))
	}
	return nil
}

func (r *ReservationRepository) MarkReviewWritten(ctx context.Context, id string) (_ bool, err error) {
	query := `UPDATE reservations SET review_written = TRUE, updated_at = NOW() WHERE id = $1 AND review_written = FALSE`

	ctx, end := database.TraceQuery(ctx, "MarkReviewWritten", query)
	defer func() { end(err) }()

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("mark review written on reservation %s: %w", id, err)
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}

	var exists bool
	if err = r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM reservations WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("check reservation %s: %w", id, err)
	}
	if !exists {
		return false, apperrors.NotFound("reservation", id)
	}
	return false, nil
}

// scanReservation decodes one row. Rows with undecodable items or an
// unknown status are rejected.
func scanReservation(row pgx.Row, extra ...any) (*domain.Reservation, error) {
	var (
		res   domain.Reservation
		items []byte
	)
	dest := append([]any{
		&res.ID,
		&res.ShopID,
		&res.CustomerID,
		&res.OwnerID,
		&res.Date,
		&res.TimeSlot,
		&items,
		&res.TotalPrice,
		&res.Status,
		&res.Request,
		&res.ReviewWritten,
		&res.CreatedAt,
		&res.UpdatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(items, &res.Items); err != nil {
		return nil, fmt.Errorf("decode items of reservation %s: %w", res.ID, err)
	}
	status, err := domain.ParseStatus(res.Status)
	if err != nil {
		return nil, fmt.Errorf("reservation %s: %w", res.ID, err)
	}
	res.Status = status
	return &res, nil
}

func collectReservations(rows pgx.Rows) ([]domain.Reservation, error) {
	defer rows.Close()

	var out []domain.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		out = append(out, *res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reservations: %w", err)
	}
	return out, nil
}

func collectCountedReservations(rows pgx.Rows) ([]domain.Reservation, int, error) {
	defer rows.Close()

	var (
		out   []domain.Reservation
		total int
	)
	for rows.Next() {
		res, err := scanReservation(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan reservation: %w", err)
		}
		out = append(out, *res)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate reservations: %w", err)
	}
	return out, total, nil
}
