package service

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/choiyeonggeon/DangDangSalon-sub000/pkg/errors"
	pkgkafka "github.com/choiyeonggeon/DangDangSalon-sub000/pkg/kafka"
	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/logger"
	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/middleware"
	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/pagination"
	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/validator"
	"github.com/choiyeonggeon/DangDangSalon-sub000/services/booking/internal/domain"
	"github.com/choiyeonggeon/DangDangSalon-sub000/services/booking/internal/event"
	"github.com/choiyeonggeon/DangDangSalon-sub000/services/booking/internal/repository"
	"github.com/choiyeonggeon/DangDangSalon-sub000/services/booking/internal/repository/memory"
)

// --- Test doubles ---

type recordingPublisher struct {
	mu     sync.Mutex
	events []*pkgkafka.Event
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, evt *pkgkafka.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType
	}
	return out
}

type mockReservationRepository struct {
	mock.Mock
}

func (m *mockReservationRepository) Create(ctx context.Context, r *domain.Reservation) error {
	return m.Called(ctx, r).Error(0)
}

func (m *mockReservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *mockReservationRepository) ListByShopAndDate(ctx context.Context, shopID, date string) ([]domain.Reservation, error) {
	args := m.Called(ctx, shopID, date)
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

func (m *mockReservationRepository) FindBySlot(ctx context.Context, shopID, date, timeSlot string) ([]domain.Reservation, error) {
	args := m.Called(ctx, shopID, date, timeSlot)
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

func (m *mockReservationRepository) ListByCustomer(ctx context.Context, customerID string, p pagination.Params) ([]domain.Reservation, int, error) {
	args := m.Called(ctx, customerID, p)
	return args.Get(0).([]domain.Reservation), args.Int(1), args.Error(2)
}

func (m *mockReservationRepository) ListByShop(ctx context.Context, shopID, date string, p pagination.Params) ([]domain.Reservation, int, error) {
	args := m.Called(ctx, shopID, date, p)
	return args.Get(0).([]domain.Reservation), args.Int(1), args.Error(2)
}

func (m *mockReservationRepository) ListByDateAndStatus(ctx context.Context, date, status string) ([]domain.Reservation, error) {
	args := m.Called(ctx, date, status)
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

func (m *mockReservationRepository) UpdateStatus(ctx context.Context, id, from, to string) error {
	return m.Called(ctx, id, from, to).Error(0)
}

func (m *mockReservationRepository) MarkReviewWritten(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// barrierReservations holds every FindBySlot caller until n callers have
// finished their check, so all of them see the slot as free.
type barrierReservations struct {
	repository.ReservationRepository
	arrived sync.WaitGroup
}

func newBarrierReservations(inner repository.ReservationRepository, n int) *barrierReservations {
	b := &barrierReservations{ReservationRepository: inner}
	b.arrived.Add(n)
	return b
}

func (b *barrierReservations) FindBySlot(ctx context.Context, shopID, date, timeSlot string) ([]domain.Reservation, error) {
	res, err := b.ReservationRepository.FindBySlot(ctx, shopID, date, timeSlot)
	b.arrived.Done()
	b.arrived.Wait()
	return res, err
}

// --- Fixtures ---

const testShopID = "5f1c2d3e-4a5b-4c6d-8e7f-90a1b2c3d4e5"

var (
	owner    = Actor{UserID: "owner-1", Role: middleware.RoleOwner}
	customer = Actor{UserID: "cust-1", Role: middleware.RoleCustomer}
	stranger = Actor{UserID: "cust-2", Role: middleware.RoleCustomer}
	admin    = Actor{UserID: "admin-1", Role: middleware.RoleAdmin}
)

type fixture struct {
	svc   *BookingService
	store *memory.Store
	pub   *recordingPublisher
}

func newFixture(t *testing.T, slots []string, cancelledBlocks bool) *fixture {
	t.Helper()
	store := memory.NewStore()
	require.NoError(t, store.Create(context.Background(), &domain.Shop{
		ID: testShopID, OwnerID: owner.UserID, Name: "Happy Paws", TimeSlots: slots,
	}))
	pub := &recordingPublisher{}
	svc := NewBookingService(store, store.Reservations(), event.NewProducer(pub, logger.Discard()), logger.Discard(), cancelledBlocks)
	return &fixture{svc: svc, store: store, pub: pub}
}

func commitInput(date, slot string) CommitReservationInput {
	return CommitReservationInput{
		ShopID:     testShopID,
		CustomerID: customer.UserID,
		Date:       date,
		TimeSlot:   slot,
		Items: []ItemInput{
			{Name: "full grooming", Price: 45000},
			{Name: "nail trim", Price: 10000},
		},
		Request: "  she is shy  ",
	}
}

// --- ListAvailableSlots ---

func TestListAvailableSlots_MarksReservedSlots(t *testing.T) {
	f := newFixture(t, []string{"10:00", "10:30"}, true)
	ctx := context.Background()

	_, err := f.svc.CommitReservation(ctx, commitInput("2025-12-01", "10:00"))
	require.NoError(t, err)

	slots, err := f.svc.ListAvailableSlots(ctx, testShopID, "2025-12-01")
	require.NoError(t, err)
	assert.Equal(t, []domain.Slot{
		{Time: "10:00", Reserved: true},
		{Time: "10:30", Reserved: false},
	}, slots)

	otherDay, err := f.svc.ListAvailableSlots(ctx, testShopID, "2025-12-02")
	require.NoError(t, err)
	assert.False(t, otherDay[0].Reserved)
}

func TestListAvailableSlots_FallsBackToDefaults(t *testing.T) {
	tests := []struct {
		name   string
		shopID string
		slots  []string
	}{
		{"no slots configured", testShopID, nil},
		{"invalid entry", testShopID, []string{"10:00", "lunch"}},
		{"unknown shop", "missing-shop", []string{"10:00"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.slots, true)
			slots, err := f.svc.ListAvailableSlots(context.Background(), tt.shopID, "2025-12-01")
			require.NoError(t, err)
			require.Len(t, slots, 26)
			assert.Equal(t, "10:00", slots[0].Time)
			assert.Equal(t, "22:30", slots[25].Time)
		})
	}
}

func TestListAvailableSlots_Validation(t *testing.T) {
	repo := new(mockReservationRepository)
	svc := NewBookingService(memory.NewStore(), repo, event.NewProducer(&recordingPublisher{}, logger.Discard()), logger.Discard(), true)

	_, err := svc.ListAvailableSlots(context.Background(), "", "2025-12-01")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = svc.ListAvailableSlots(context.Background(), testShopID, "2025-13-01")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	repo.AssertNotCalled(t, "ListByShopAndDate", mock.Anything, mock.Anything, mock.Anything)
}

func TestListAvailableSlots_BackendFailure(t *testing.T) {
	repo := new(mockReservationRepository)
	repo.On("ListByShopAndDate", mock.Anything, testShopID, "2025-12-01").Return([]domain.Reservation(nil), errors.New("connection reset"))
	svc := NewBookingService(memory.NewStore(), repo, event.NewProducer(&recordingPublisher{}, logger.Discard()), logger.Discard(), true)

	_, err := svc.ListAvailableSlots(context.Background(), testShopID, "2025-12-01")
	require.Error(t, err)
	assert.Equal(t, 500, apperrors.HTTPStatus(err))
}

func TestListAvailableSlots_CancelledPolicy(t *testing.T) {
	for _, blocks := range []bool{true, false} {
		f := newFixture(t, []string{"10:00"}, blocks)
		ctx := context.Background()
		res, err := f.svc.CommitReservation(ctx, commitInput("2025-12-01", "10:00"))
		require.NoError(t, err)
		_, err = f.svc.UpdateReservationStatus(ctx, customer, res.ID, domain.StatusCancelled)
		require.NoError(t, err)

		slots, err := f.svc.ListAvailableSlots(ctx, testShopID, "2025-12-01")
		require.NoError(t, err)
		assert.Equal(t, blocks, slots[0].Reserved)
	}
}

// --- CommitReservation ---

func TestCommitReservation_Success(t *testing.T) {
	f := newFixture(t, nil, true)

	res, err := f.svc.CommitReservation(context.Background(), commitInput("2025-12-01", "14:30"))
	require.NoError(t, err)

	assert.NotEmpty(t, res.ID)
	assert.Equal(t, domain.StatusRequested, res.Status)
	assert.False(t, res.ReviewWritten)
	assert.Equal(t, owner.UserID, res.OwnerID)
	assert.Equal(t, int64(55000), res.TotalPrice)
	assert.Equal(t, "she is shy", res.Request)
	assert.Equal(t, []string{event.EventReservationCreated}, f.pub.types())

	stored, err := f.store.Reservations().GetByID(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, res.TimeSlot, stored.TimeSlot)
}

func TestCommitReservation_SecondCommitConflicts(t *testing.T) {
	f := newFixture(t, nil, true)
	ctx := context.Background()

	_, err := f.svc.CommitReservation(ctx, commitInput("2025-12-01", "10:00"))
	require.NoError(t, err)

	_, err = f.svc.CommitReservation(ctx, commitInput("2025-12-01", "10:00"))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrBookingConflict)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "BOOKING_CONFLICT", appErr.Code)
	assert.Equal(t, 409, appErr.Status)

	all, err := f.store.Reservations().FindBySlot(ctx, testShopID, "2025-12-01", "10:00")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCommitReservation_CancelledSlotCanBeRebookedWhenPolicyAllows(t *testing.T) {
	f := newFixture(t, nil, false)
	ctx := context.Background()

	first, err := f.svc.CommitReservation(ctx, commitInput("2025-12-01", "10:00"))
	require.NoError(t, err)
	_, err = f.svc.UpdateReservationStatus(ctx, owner, first.ID, domain.StatusCancelled)
	require.NoError(t, err)

	_, err = f.svc.CommitReservation(ctx, commitInput("2025-12-01", "10:00"))
	assert.NoError(t, err)
}

func TestCommitReservation_ValidationNeverTouchesStore(t *testing.T) {
	repo := new(mockReservationRepository)
	svc := NewBookingService(memory.NewStore(), repo, event.NewProducer(&recordingPublisher{}, logger.Discard()), logger.Discard(), true)

	tests := []struct {
		name   string
		mutate func(*CommitReservationInput)
		field  string
	}{
		{"missing shop", func(in *CommitReservationInput) { in.ShopID = " " }, "shop_id"},
		{"missing customer", func(in *CommitReservationInput) { in.CustomerID = "" }, "CustomerID"},
		{"bad date", func(in *CommitReservationInput) { in.Date = "01/12/2025" }, "date"},
		{"bad time", func(in *CommitReservationInput) { in.TimeSlot = "10:00am" }, "time"},
		{"no items", func(in *CommitReservationInput) { in.Items = nil }, "items"},
		{"blank item name", func(in *CommitReservationInput) { in.Items[0].Name = "   " }, "name"},
		{"negative price", func(in *CommitReservationInput) { in.Items[1].Price = -1 }, "price"},
		{"malformed shop id", func(in *CommitReservationInput) { in.ShopID = "shop-1" }, "shop_id"},
		{"price sum overflows", func(in *CommitReservationInput) {
			in.Items = []ItemInput{{Name: "a", Price: math.MaxInt64}, {Name: "b", Price: 1}}
		}, "price"},
		{"too many items", func(in *CommitReservationInput) {
			in.Items = make([]ItemInput, 21)
			for i := range in.Items {
				in.Items[i] = ItemInput{Name: "bath", Price: 1000}
			}
		}, "items"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := commitInput("2025-12-01", "10:00")
			tt.mutate(&in)

			_, err := svc.CommitReservation(context.Background(), in)
			var valErr *validator.ValidationError
			require.ErrorAs(t, err, &valErr)
			assert.Contains(t, valErr.Fields(), tt.field)
		})
	}

	repo.AssertNotCalled(t, "FindBySlot", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCommitReservation_TimeNotOffered(t *testing.T) {
	f := newFixture(t, []string{"10:00", "10:30"}, true)

	_, err := f.svc.CommitReservation(context.Background(), commitInput("2025-12-01", "11:00"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestCommitReservation_UnknownShop(t *testing.T) {
	f := newFixture(t, nil, true)
	in := commitInput("2025-12-01", "10:00")
	in.ShopID = "0b7e1f52-6c3d-4a9e-b8f1-2d4c6e8a0b13"

	_, err := f.svc.CommitReservation(context.Background(), in)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCommitReservation_StoreConstraintIsBookingConflict(t *testing.T) {
	store := memory.NewStore()
	require.NoError(t, store.Create(context.Background(), &domain.Shop{ID: testShopID, OwnerID: owner.UserID}))

	repo := new(mockReservationRepository)
	repo.On("FindBySlot", mock.Anything, testShopID, "2025-12-01", "10:00").Return([]domain.Reservation(nil), nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(apperrors.BookingConflict("2025-12-01", "10:00"))
	pub := &recordingPublisher{}
	svc := NewBookingService(store, repo, event.NewProducer(pub, logger.Discard()), logger.Discard(), true)

	_, err := svc.CommitReservation(context.Background(), commitInput("2025-12-01", "10:00"))
	assert.ErrorIs(t, err, apperrors.ErrBookingConflict)
	assert.Empty(t, pub.types())
}

// Concurrent commits for the same slot both pass the existence check when
// the store has no uniqueness constraint, and both are written.
func TestCommitReservation_ConcurrentRaceAgainstUnconstrainedStore(t *testing.T) {
	store := memory.NewStore()
	require.NoError(t, store.Create(context.Background(), &domain.Shop{ID: testShopID, OwnerID: owner.UserID, Name: "Happy Paws"}))
	reservations := newBarrierReservations(store.Reservations(), 2)
	svc := NewBookingService(store, reservations, event.NewProducer(&recordingPublisher{}, logger.Discard()), logger.Discard(), true)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			in := commitInput("2025-12-01", "10:00")
			in.CustomerID = []string{"cust-a", "cust-b"}[i]
			_, errs[i] = svc.CommitReservation(context.Background(), in)
		}(i)
	}
	wg.Wait()

	assert.NoError(t, errs[0])
	assert.NoError(t, errs[1])

	held, err := store.Reservations().FindBySlot(context.Background(), testShopID, "2025-12-01", "10:00")
	require.NoError(t, err)
	assert.Len(t, held, 2, "both commits were written for the same slot")
}

// --- Lifecycle ---

func TestUpdateReservationStatus(t *testing.T) {
	tests := []struct {
		name    string
		actor   Actor
		steps   []string
		wantErr error
	}{
		{"owner confirms", owner, []string{domain.StatusConfirmed}, nil},
		{"owner completes after confirm", owner, []string{domain.StatusConfirmed, domain.StatusCompleted}, nil},
		{"admin confirms", admin, []string{domain.StatusConfirmed}, nil},
		{"customer cancels", customer, []string{domain.StatusCancelled}, nil},
		{"customer cannot confirm", customer, []string{domain.StatusConfirmed}, apperrors.ErrForbidden},
		{"stranger cannot cancel", stranger, []string{domain.StatusCancelled}, apperrors.ErrForbidden},
		{"cannot complete a request", owner, []string{domain.StatusCompleted}, apperrors.ErrConflict},
		{"cancelled is terminal", owner, []string{domain.StatusCancelled, domain.StatusConfirmed}, apperrors.ErrConflict},
		{"unknown status", owner, []string{"archived"}, apperrors.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil, true)
			ctx := context.Background()
			res, err := f.svc.CommitReservation(ctx, commitInput("2025-12-01", "10:00"))
			require.NoError(t, err)

			for _, status := range tt.steps {
				_, err = f.svc.UpdateReservationStatus(ctx, tt.actor, res.ID, status)
			}

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			stored, err := f.store.Reservations().GetByID(ctx, res.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.steps[len(tt.steps)-1], stored.Status)
			assert.Contains(t, f.pub.types(), event.EventReservationStatusChanged)
		})
	}
}

func TestGetReservation_Access(t *testing.T) {
	f := newFixture(t, nil, true)
	ctx := context.Background()
	res, err := f.svc.CommitReservation(ctx, commitInput("2025-12-01", "10:00"))
	require.NoError(t, err)

	for _, a := range []Actor{customer, owner, admin} {
		_, err := f.svc.GetReservation(ctx, a, res.ID)
		assert.NoError(t, err, a.UserID)
	}
	_, err = f.svc.GetReservation(ctx, stranger, res.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestMarkReviewWritten_IsIdempotent(t *testing.T) {
	f := newFixture(t, nil, true)
	ctx := context.Background()
	res, err := f.svc.CommitReservation(ctx, commitInput("2025-12-01", "10:00"))
	require.NoError(t, err)

	require.NoError(t, f.svc.MarkReviewWritten(ctx, res.ID, customer.UserID, testShopID))
	require.NoError(t, f.svc.MarkReviewWritten(ctx, res.ID, customer.UserID, testShopID))

	stored, err := f.store.Reservations().GetByID(ctx, res.ID)
	require.NoError(t, err)
	assert.True(t, stored.ReviewWritten)

	assert.ErrorIs(t, f.svc.MarkReviewWritten(ctx, "missing", customer.UserID, testShopID), apperrors.ErrNotFound)
}

func TestMarkReviewWritten_IgnoresReviewFromAnotherCustomer(t *testing.T) {
	f := newFixture(t, nil, true)
	ctx := context.Background()
	res, err := f.svc.CommitReservation(ctx, commitInput("2025-12-01", "10:00"))
	require.NoError(t, err)

	tests := []struct {
		name     string
		authorID string
		shopID   string
	}{
		{"other customer, other shop", stranger.UserID, "7d0e4f6a-3b8c-4e2a-9f1d-5c6b7a8e9f00"},
		{"other customer, same shop", stranger.UserID, testShopID},
		{"same customer, other shop", customer.UserID, "7d0e4f6a-3b8c-4e2a-9f1d-5c6b7a8e9f00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, f.svc.MarkReviewWritten(ctx, res.ID, tt.authorID, tt.shopID))

			stored, err := f.store.Reservations().GetByID(ctx, res.ID)
			require.NoError(t, err)
			assert.False(t, stored.ReviewWritten)
		})
	}
}

func TestSendReminders(t *testing.T) {
	f := newFixture(t, nil, true)
	ctx := context.Background()

	confirmed, err := f.svc.CommitReservation(ctx, commitInput("2025-12-01", "10:00"))
	require.NoError(t, err)
	_, err = f.svc.UpdateReservationStatus(ctx, owner, confirmed.ID, domain.StatusConfirmed)
	require.NoError(t, err)
	_, err = f.svc.CommitReservation(ctx, commitInput("2025-12-01", "11:00"))
	require.NoError(t, err)

	sent, err := f.svc.SendReminders(ctx, "2025-12-01")
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Contains(t, f.pub.types(), event.EventReservationReminder)
}

func TestListReservations(t *testing.T) {
	f := newFixture(t, nil, true)
	ctx := context.Background()
	for _, slot := range []string{"10:00", "10:30", "11:00"} {
		_, err := f.svc.CommitReservation(ctx, commitInput("2025-12-01", slot))
		require.NoError(t, err)
	}

	mine, err := f.svc.ListCustomerReservations(ctx, customer.UserID, pagination.Params{Page: 1, PerPage: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, mine.TotalCount)
	assert.Len(t, mine.Data, 2)
	assert.True(t, mine.HasNext)

	shopView, err := f.svc.ListShopReservations(ctx, owner, testShopID, "2025-12-01", pagination.DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, 3, shopView.TotalCount)

	_, err = f.svc.ListShopReservations(ctx, customer, testShopID, "", pagination.DefaultParams())
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

// --- Shops ---

func TestCreateShopAndConfigureSlots(t *testing.T) {
	f := newFixture(t, nil, true)
	ctx := context.Background()

	shop, err := f.svc.CreateShop(ctx, owner, CreateShopInput{Name: " Fluffy ", TimeSlots: []string{"11:00", "10:00", "11:00"}})
	require.NoError(t, err)
	assert.Equal(t, "Fluffy", shop.Name)
	assert.Equal(t, []string{"10:00", "11:00"}, shop.TimeSlots)

	require.Equal(t, []string{event.EventShopCreated}, f.pub.types())
	var announced event.ShopCreatedData
	require.NoError(t, f.pub.events[0].UnmarshalData(&announced))
	assert.Equal(t, event.ShopCreatedData{ShopID: shop.ID, OwnerID: owner.UserID, Name: "Fluffy"}, announced)

	updated, err := f.svc.ConfigureSlots(ctx, owner, shop.ID, []string{"15:00", "09:00"})
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "15:00"}, updated.TimeSlots)

	_, err = f.svc.ConfigureSlots(ctx, stranger, shop.ID, []string{"15:00"})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = f.svc.ConfigureSlots(ctx, owner, shop.ID, []string{"9:00"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = f.svc.CreateShop(ctx, owner, CreateShopInput{Name: "Bad", TimeSlots: []string{"noon"}})
	var valErr *validator.ValidationError
	assert.ErrorAs(t, err, &valErr)
}

func TestApplyShopRating(t *testing.T) {
	f := newFixture(t, nil, true)
	ctx := context.Background()

	require.NoError(t, f.svc.ApplyShopRating(ctx, testShopID, 3.5, 4))
	shop, err := f.svc.GetShop(ctx, testShopID)
	require.NoError(t, err)
	assert.Equal(t, 3.5, shop.AverageRating)
	assert.Equal(t, 4, shop.ReviewCount)

	assert.ErrorIs(t, f.svc.ApplyShopRating(ctx, "missing", 1, 1), apperrors.ErrNotFound)
}
