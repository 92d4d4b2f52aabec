package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/choiyeonggeon/DangDangSalon-sub000/pkg/errors"
	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/middleware"
	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/pagination"
	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/validator"
	"github.com/choiyeonggeon/DangDangSalon-sub000/services/booking/internal/domain"
	"github.com/choiyeonggeon/DangDangSalon-sub000/services/booking/internal/event"
	"github.com/choiyeonggeon/DangDangSalon-sub000/services/booking/internal/repository"
)

// Actor is the authenticated user performing an operation.
type Actor struct {
	UserID string
	Role   string
}

func (a Actor) IsAdmin() bool { return a.Role == middleware.RoleAdmin }

// ItemInput is one requested grooming service.
type ItemInput struct {
	Name  string `json:"name" validate:"required,max=100"`
	Price int64  `json:"price" validate:"gte=0,lte=10000000"`
}

// CommitReservationInput carries a booking request. CustomerID comes from
// the access token, never from the body.
type CommitReservationInput struct {
	ShopID     string      `json:"shop_id" validate:"required,uuid"`
	CustomerID string      `json:"-" validate:"required"`
	Date       string      `json:"date" validate:"required,calendar_date"`
	TimeSlot   string      `json:"time" validate:"required,timeslot"`
	Items      []ItemInput `json:"items" validate:"required,min=1,max=20,dive"`
	Request    string      `json:"request" validate:"max=500"`
}

type CreateShopInput struct {
	Name      string   `json:"name" validate:"required,max=100"`
	TimeSlots []string `json:"time_slots" validate:"omitempty,dive,timeslot"`
}

// BookingService implements slot listing, reservation commit and the
// reservation lifecycle.
type BookingService struct {
	shops           repository.ShopRepository
	reservations    repository.ReservationRepository
	producer        *event.Producer
	logger          *slog.Logger
	cancelledBlocks bool
	now             func() time.Time
}

// NewBookingService creates a booking service. When cancelledBlocks is set a
// cancelled reservation keeps its slot reserved.
func NewBookingService(
	shops repository.ShopRepository,
	reservations repository.ReservationRepository,
	producer *event.Producer,
	logger *slog.Logger,
	cancelledBlocks bool,
) *BookingService {
	return &BookingService{
		shops:           shops,
		reservations:    reservations,
		producer:        producer,
		logger:          logger,
		cancelledBlocks: cancelledBlocks,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// ---------------------------------------------------------------------------
// Slots and reservation commit
// ---------------------------------------------------------------------------

// ListAvailableSlots returns the shop's slots for date, each flagged reserved
// when a reservation of that day holds the same time. A shop that cannot be
// read or has no usable slot list gets the default grid.
func (s *BookingService) ListAvailableSlots(ctx context.Context, shopID, date string) ([]domain.Slot, error) {
	if strings.TrimSpace(shopID) == "" {
		return nil, apperrors.InvalidInput("shop id is required")
	}
	if !validator.IsCalendarDate(date) {
		return nil, apperrors.InvalidInput("date must be in YYYY-MM-DD format")
	}

	slots := s.slotsForShop(ctx, shopID)

	reservations, err := s.reservations.ListByShopAndDate(ctx, shopID, date)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}

	return domain.AnnotateSlots(slots, reservations, s.cancelledBlocks), nil
}

func (s *BookingService) slotsForShop(ctx context.Context, shopID string) []string {
	shop, err := s.shops.GetByID(ctx, shopID)
	if err != nil {
		s.logger.WarnContext(ctx, "shop slots unreadable, using default slots",
			slog.String("shop_id", shopID),
			slog.String("error", err.Error()),
		)
		slotFallbacks.Inc()
		return domain.DefaultSlots()
	}
	slots := domain.EffectiveSlots(shop.TimeSlots)
	if len(shop.TimeSlots) > 0 && !slices.Equal(slots, shop.TimeSlots) {
		s.logger.WarnContext(ctx, "shop has invalid slot entries, using default slots",
			slog.String("shop_id", shopID),
			slog.Any("time_slots", shop.TimeSlots),
		)
		slotFallbacks.Inc()
	}
	return slots
}

// CommitReservation books a slot. It re-reads the slot right before writing
// and fails with a booking conflict when it is already held. The check and
// the insert are separate round trips; only a store-level constraint can
// close the gap between them.
func (s *BookingService) CommitReservation(ctx context.Context, in CommitReservationInput) (*domain.Reservation, error) {
	in.ShopID = strings.TrimSpace(in.ShopID)
	in.Request = strings.TrimSpace(in.Request)
	for i := range in.Items {
		in.Items[i].Name = strings.TrimSpace(in.Items[i].Name)
	}
	if err := validator.Validate(in); err != nil {
		return nil, err
	}

	items := make([]domain.Item, len(in.Items))
	for i, it := range in.Items {
		items[i] = domain.Item{Name: it.Name, Price: it.Price}
	}
	total, err := domain.TotalPrice(items)
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	shop, err := s.shops.GetByID(ctx, in.ShopID)
	if err != nil {
		return nil, fmt.Errorf("get shop: %w", err)
	}
	if !slices.Contains(domain.EffectiveSlots(shop.TimeSlots), in.TimeSlot) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("time %s is not offered by this shop", in.TimeSlot))
	}

	existing, err := s.reservations.FindBySlot(ctx, in.ShopID, in.Date, in.TimeSlot)
	if err != nil {
		return nil, fmt.Errorf("check slot: %w", err)
	}
	for i := range existing {
		if existing[i].BlocksSlot(s.cancelledBlocks) {
			bookingConflicts.WithLabelValues(conflictStageCheck).Inc()
			s.logger.InfoContext(ctx, "slot already reserved",
				slog.String("shop_id", in.ShopID),
				slog.String("date", in.Date),
				slog.String("time", in.TimeSlot),
			)
			return nil, apperrors.BookingConflict(in.Date, in.TimeSlot)
		}
	}

	now := s.now()
	res := &domain.Reservation{
		ID:            uuid.New().String(),
		ShopID:        shop.ID,
		CustomerID:    in.CustomerID,
		OwnerID:       shop.OwnerID,
		Date:          in.Date,
		TimeSlot:      in.TimeSlot,
		Items:         items,
		TotalPrice:    total,
		Status:        domain.StatusRequested,
		Request:       in.Request,
		ReviewWritten: false,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.reservations.Create(ctx, res); err != nil {
		if errors.Is(err, apperrors.ErrBookingConflict) {
			bookingConflicts.WithLabelValues(conflictStageInsert).Inc()
			return nil, err
		}
		return nil, fmt.Errorf("create reservation: %w", err)
	}
	reservationsCommitted.Inc()

	if err := s.producer.PublishReservationCreated(ctx, res, shop.Name); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish reservation.created event",
			slog.String("reservation_id", res.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "reservation requested",
		slog.String("reservation_id", res.ID),
		slog.String("shop_id", res.ShopID),
		slog.String("date", res.Date),
		slog.String("time", res.TimeSlot),
	)
	return res, nil
}

// ---------------------------------------------------------------------------
// Reservation queries and lifecycle
// ---------------------------------------------------------------------------

// GetReservation returns a reservation to its customer, the shop owner or an admin.
func (s *BookingService) GetReservation(ctx context.Context, actor Actor, id string) (*domain.Reservation, error) {
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	if !actor.IsAdmin() && actor.UserID != res.CustomerID && actor.UserID != res.OwnerID {
		return nil, apperrors.Forbidden("not a party to this reservation")
	}
	return res, nil
}

func (s *BookingService) ListCustomerReservations(ctx context.Context, customerID string, p pagination.Params) (pagination.Result[domain.Reservation], error) {
	items, total, err := s.reservations.ListByCustomer(ctx, customerID, p)
	if err != nil {
		return pagination.Result[domain.Reservation]{}, fmt.Errorf("list customer reservations: %w", err)
	}
	return pagination.NewResult(items, total, p), nil
}

// ListShopReservations is the owner's view of a shop's bookings, optionally for one day.
func (s *BookingService) ListShopReservations(ctx context.Context, actor Actor, shopID, date string, p pagination.Params) (pagination.Result[domain.Reservation], error) {
	var empty pagination.Result[domain.Reservation]
	if date != "" && !validator.IsCalendarDate(date) {
		return empty, apperrors.InvalidInput("date must be in YYYY-MM-DD format")
	}
	if _, err := s.ownedShop(ctx, actor, shopID); err != nil {
		return empty, err
	}

	items, total, err := s.reservations.ListByShop(ctx, shopID, date, p)
	if err != nil {
		return empty, fmt.Errorf("list shop reservations: %w", err)
	}
	return pagination.NewResult(items, total, p), nil
}

// UpdateReservationStatus moves a reservation along its lifecycle. The shop
// owner may confirm, complete or cancel; the customer may only cancel.
func (s *BookingService) UpdateReservationStatus(ctx context.Context, actor Actor, id, status string) (*domain.Reservation, error) {
	if !domain.IsValidStatus(status) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown status %q", status))
	}

	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get reservation: %w", err)
	}

	isOwner := actor.UserID == res.OwnerID || actor.IsAdmin()
	isCustomer := actor.UserID == res.CustomerID
	switch {
	case isOwner:
	case isCustomer && status == domain.StatusCancelled:
	case isCustomer:
		return nil, apperrors.Forbidden("customers may only cancel a reservation")
	default:
		return nil, apperrors.Forbidden("not a party to this reservation")
	}

	if !domain.CanTransition(res.Status, status) {
		return nil, apperrors.Conflict(fmt.Sprintf("cannot change reservation from %s to %s", res.Status, status))
	}

	previous := res.Status
	if err := s.reservations.UpdateStatus(ctx, id, previous, status); err != nil {
		return nil, fmt.Errorf("update reservation status: %w", err)
	}
	res.Status = status
	res.UpdatedAt = s.now()

	shopName := s.shopName(ctx, res.ShopID)
	if err := s.producer.PublishReservationStatusChanged(ctx, res, shopName, previous, actor.UserID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish reservation.status_changed event",
			slog.String("reservation_id", res.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "reservation status changed",
		slog.String("reservation_id", res.ID),
		slog.String("from", previous),
		slog.String("to", status),
	)
	return res, nil
}

// MarkReviewWritten records that the customer reviewed the visit. The flag
// is set once and never cleared. A review whose author or shop does not match
// the reservation is dropped and leaves the flag untouched.
func (s *BookingService) MarkReviewWritten(ctx context.Context, reservationID, authorID, shopID string) error {
	res, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return err
	}
	if res.CustomerID != authorID || res.ShopID != shopID {
		s.logger.WarnContext(ctx, "review does not match reservation, ignoring",
			slog.String("reservation_id", reservationID),
			slog.String("author_id", authorID),
			slog.String("shop_id", shopID),
		)
		return nil
	}

	changed, err := s.reservations.MarkReviewWritten(ctx, reservationID)
	if err != nil {
		return err
	}
	if changed {
		s.logger.InfoContext(ctx, "review recorded on reservation", slog.String("reservation_id", reservationID))
	}
	return nil
}

// SendReminders publishes a reminder for every confirmed reservation on date
// and returns how many were sent.
func (s *BookingService) SendReminders(ctx context.Context, date string) (int, error) {
	reservations, err := s.reservations.ListByDateAndStatus(ctx, date, domain.StatusConfirmed)
	if err != nil {
		return 0, fmt.Errorf("list confirmed reservations: %w", err)
	}

	names := make(map[string]string)
	sent := 0
	for i := range reservations {
		res := &reservations[i]
		name, ok := names[res.ShopID]
		if !ok {
			name = s.shopName(ctx, res.ShopID)
			names[res.ShopID] = name
		}
		if err := s.producer.PublishReservationReminder(ctx, res, name); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish reservation.reminder event",
				slog.String("reservation_id", res.ID),
				slog.String("error", err.Error()),
			)
			continue
		}
		sent++
	}
	return sent, nil
}

// ---------------------------------------------------------------------------
// Shops
// ---------------------------------------------------------------------------

func (s *BookingService) CreateShop(ctx context.Context, actor Actor, in CreateShopInput) (*domain.Shop, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validator.Validate(in); err != nil {
		return nil, err
	}

	var slots []string
	if len(in.TimeSlots) > 0 {
		normalized, err := domain.NormalizeSlots(in.TimeSlots)
		if err != nil {
			return nil, apperrors.InvalidInput(err.Error())
		}
		slots = normalized
	}

	now := s.now()
	shop := &domain.Shop{
		ID:        uuid.New().String(),
		OwnerID:   actor.UserID,
		Name:      in.Name,
		TimeSlots: slots,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.shops.Create(ctx, shop); err != nil {
		return nil, fmt.Errorf("create shop: %w", err)
	}

	if err := s.producer.PublishShopCreated(ctx, shop); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish shop.created event",
			slog.String("shop_id", shop.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "shop created",
		slog.String("shop_id", shop.ID),
		slog.String("owner_id", shop.OwnerID),
	)
	return shop, nil
}

func (s *BookingService) GetShop(ctx context.Context, id string) (*domain.Shop, error) {
	shop, err := s.shops.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get shop: %w", err)
	}
	return shop, nil
}

// ConfigureSlots replaces the shop's slot list with a sorted, de-duplicated copy of slots.
func (s *BookingService) ConfigureSlots(ctx context.Context, actor Actor, shopID string, slots []string) (*domain.Shop, error) {
	if len(slots) == 0 {
		return nil, apperrors.InvalidInput("at least one time slot is required")
	}
	normalized, err := domain.NormalizeSlots(slots)
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	shop, err := s.ownedShop(ctx, actor, shopID)
	if err != nil {
		return nil, err
	}
	if err := s.shops.UpdateSlots(ctx, shopID, normalized); err != nil {
		return nil, fmt.Errorf("update slots: %w", err)
	}
	shop.TimeSlots = normalized
	shop.UpdatedAt = s.now()
	return shop, nil
}

// ApplyShopRating stores the review aggregate on the shop.
func (s *BookingService) ApplyShopRating(ctx context.Context, shopID string, average float64, count int) error {
	if err := s.shops.UpdateRating(ctx, shopID, average, count); err != nil {
		return err
	}
	s.logger.DebugContext(ctx, "shop rating applied",
		slog.String("shop_id", shopID),
		slog.Float64("average_rating", average),
		slog.Int("review_count", count),
	)
	return nil
}

func (s *BookingService) ownedShop(ctx context.Context, actor Actor, shopID string) (*domain.Shop, error) {
	shop, err := s.shops.GetByID(ctx, shopID)
	if err != nil {
		return nil, fmt.Errorf("get shop: %w", err)
	}
	if !shop.OwnedBy(actor.UserID) && !actor.IsAdmin() {
		return nil, apperrors.Forbidden("only the shop owner may do this")
	}
	return shop, nil
}

// shopName is best effort; events carry an empty name when the shop cannot be read.
func (s *BookingService) shopName(ctx context.Context, shopID string) string {
	shop, err := s.shops.GetByID(ctx, shopID)
	if err != nil {
		s.logger.WarnContext(ctx, "shop lookup failed", slog.String("shop_id", shopID), slog.String("error", err.Error()))
		return ""
	}
	return shop.Name
}
