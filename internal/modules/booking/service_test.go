package booking

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"museumtix/internal/domain"
	"museumtix/internal/pkg/ticket"
	"museumtix/internal/repository"
)

// Mock repositories
type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) CreateReserving(ctx context.Context, b *domain.Booking) error {
	return m.Called(ctx, b).Error(0)
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Booking, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) List(ctx context.Context, f repository.BookingFilter) ([]domain.Booking, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) MarkPaid(ctx context.Context, id string, p *domain.Payment) error {
	return m.Called(ctx, id, p).Error(0)
}

func (m *MockBookingRepository) Cancel(ctx context.Context, id string, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *MockBookingRepository) MarkCheckedIn(ctx context.Context, id string, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *MockBookingRepository) ExpirePending(ctx context.Context, cutoff, at time.Time) ([]string, error) {
	args := m.Called(ctx, cutoff, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockMuseumReader struct {
	mock.Mock
}

func (m *MockMuseumReader) GetByID(ctx context.Context, id string) (*domain.Museum, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Museum), args.Error(1)
}

type MockEventReader struct {
	mock.Mock
}

func (m *MockEventReader) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

type MockPromotionLookup struct {
	mock.Mock
}

func (m *MockPromotionLookup) Lookup(ctx context.Context, code string) (*domain.Promotion, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Promotion), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Send(ctx context.Context, to, subject, body string) error {
	return m.Called(ctx, to, subject, body).Error(0)
}

var fixedNow = time.Date(2030, 3, 10, 9, 0, 0, 0, time.UTC)

type fixture struct {
	bookings *MockBookingRepository
	museums  *MockMuseumReader
	events   *MockEventReader
	promos   *MockPromotionLookup
	notifs   *MockNotifier
	signer   *ticket.Signer
	svc      *Service
}

func newFixture() *fixture {
	f := &fixture{
		bookings: new(MockBookingRepository),
		museums:  new(MockMuseumReader),
		events:   new(MockEventReader),
		promos:   new(MockPromotionLookup),
		notifs:   new(MockNotifier),
		signer:   ticket.NewSigner("test-secret"),
	}
	f.svc = NewService(f.bookings, f.museums, f.events, f.promos, f.notifs, f.signer)
	f.svc.now = func() time.Time { return fixedNow }
	f.svc.async = func(fn func()) { fn() }
	return f
}

func met() *domain.Museum {
	return &domain.Museum{ID: "museum-1", Name: "The Metropolitan Museum of Art"}
}

func egypt() *domain.Event {
	return &domain.Event{
		ID: "event-1", MuseumID: "museum-1", Title: "Ancient Egypt: Art and Magic",
		Date: "2030-04-01", StartTime: "10:00", EndTime: "17:00", Capacity: 200, BookedCount: 150, BasePrice: 25,
	}
}

func validRequest() BookRequest {
	return BookRequest{
		UserID: "u1", MuseumID: "museum-1", EventID: "event-1", NumTickets: 2,
		ContactEmail: "ann@example.com", TicketType: "adult", Source: domain.SourceChat,
	}
}

func TestService_Book_Success(t *testing.T) {
	f := newFixture()
	f.museums.On("GetByID", mock.Anything, "museum-1").Return(met(), nil)
	f.events.On("GetByID", mock.Anything, "event-1").Return(egypt(), nil)
	f.bookings.On("CreateReserving", mock.Anything, mock.AnythingOfType("*domain.Booking")).Return(nil)
	f.notifs.On("Send", mock.Anything, "ann@example.com", mock.Anything, mock.Anything).Return(nil)

	b, err := f.svc.Book(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, 50.0, b.PricePaid)
	assert.Equal(t, "USD", b.Currency)
	assert.Equal(t, domain.BookingPending, b.Status)
	assert.Equal(t, "10:00-17:00", b.Slot)
	assert.Equal(t, "qr-"+b.ID, b.QRID)
	assert.Equal(t, "Ancient Egypt: Art and Magic", b.EventTitle)
	assert.Equal(t, "The Metropolitan Museum of Art", b.MuseumName)
	assert.Nil(t, b.IdempotencyKey)
	f.bookings.AssertNumberOfCalls(t, "CreateReserving", 1)
	f.notifs.AssertExpectations(t)
}

func TestService_Book_NotifierFailureIsNotFatal(t *testing.T) {
	f := newFixture()
	f.museums.On("GetByID", mock.Anything, "museum-1").Return(met(), nil)
	f.events.On("GetByID", mock.Anything, "event-1").Return(egypt(), nil)
	f.bookings.On("CreateReserving", mock.Anything, mock.Anything).Return(nil)
	f.notifs.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	_, err := f.svc.Book(context.Background(), validRequest())
	assert.NoError(t, err)
}

func TestService_Book_UnknownReferenceWritesNothing(t *testing.T) {
	f := newFixture()
	f.museums.On("GetByID", mock.Anything, "museum-x").Return(nil, repository.ErrNotFound)
	f.museums.On("GetByID", mock.Anything, "museum-1").Return(met(), nil)
	f.events.On("GetByID", mock.Anything, "event-x").Return(nil, repository.ErrNotFound)
	f.events.On("GetByID", mock.Anything, "event-other").Return(&domain.Event{ID: "event-other", MuseumID: "museum-2", Date: "2030-05-01"}, nil)

	for _, tc := range []struct{ museum, event string }{
		{"museum-x", "event-1"},
		{"museum-1", "event-x"},
		{"museum-1", "event-other"},
	} {
		req := validRequest()
		req.MuseumID, req.EventID = tc.museum, tc.event
		_, err := f.svc.Book(context.Background(), req)
		assert.ErrorIs(t, err, ErrUnknownReference, tc)
	}
	f.bookings.AssertNotCalled(t, "CreateReserving", mock.Anything, mock.Anything)
}

func TestService_Book_ValidationErrors(t *testing.T) {
	f := newFixture()
	past := egypt()
	past.Date = "2030-03-09"
	f.museums.On("GetByID", mock.Anything, "museum-1").Return(met(), nil)
	f.events.On("GetByID", mock.Anything, "event-1").Return(past, nil)

	req := validRequest()
	req.NumTickets = 0
	_, err := f.svc.Book(context.Background(), req)
	assert.ErrorIs(t, err, ErrValidation)

	req = validRequest()
	req.ContactEmail = "ann@"
	_, err = f.svc.Book(context.Background(), req)
	assert.ErrorIs(t, err, ErrValidation)

	req = validRequest()
	req.IdempotencyKey = strings.Repeat("k", maxIdempotencyKeyLen+1)
	_, err = f.svc.Book(context.Background(), req)
	assert.ErrorIs(t, err, ErrValidation)
	f.bookings.AssertNotCalled(t, "GetByIdempotencyKey", mock.Anything, mock.Anything)

	_, err = f.svc.Book(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "past")

	f.bookings.AssertNotCalled(t, "CreateReserving", mock.Anything, mock.Anything)
}

func TestService_Book_SoldOut(t *testing.T) {
	f := newFixture()
	f.museums.On("GetByID", mock.Anything, "museum-1").Return(met(), nil)
	f.events.On("GetByID", mock.Anything, "event-1").Return(egypt(), nil)
	f.bookings.On("CreateReserving", mock.Anything, mock.Anything).Return(repository.ErrCapacityExceeded)

	_, err := f.svc.Book(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrSoldOut)
	f.notifs.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Book_IdempotentReplay(t *testing.T) {
	f := newFixture()
	existing := &domain.Booking{ID: "b-1", UserID: "u1", NumTickets: 2, PricePaid: 50}
	f.bookings.On("GetByIdempotencyKey", mock.Anything, "u1:conv-1").Return(existing, nil)

	req := validRequest()
	req.IdempotencyKey = "conv-1"
	b, err := f.svc.Book(context.Background(), req)
	require.NoError(t, err)
	assert.Same(t, existing, b)
	f.bookings.AssertNotCalled(t, "CreateReserving", mock.Anything, mock.Anything)
}

func TestService_Book_ConcurrentDuplicateReturnsStored(t *testing.T) {
	f := newFixture()
	stored := &domain.Booking{ID: "b-first"}
	f.bookings.On("GetByIdempotencyKey", mock.Anything, "u1:k").Return(nil, repository.ErrNotFound).Once()
	f.bookings.On("GetByIdempotencyKey", mock.Anything, "u1:k").Return(stored, nil).Once()
	f.museums.On("GetByID", mock.Anything, "museum-1").Return(met(), nil)
	f.events.On("GetByID", mock.Anything, "event-1").Return(egypt(), nil)
	f.bookings.On("CreateReserving", mock.Anything, mock.MatchedBy(func(b *domain.Booking) bool {
		return b.IdempotencyKey != nil && *b.IdempotencyKey == "u1:k"
	})).Return(repository.ErrDuplicateKey)

	req := validRequest()
	req.IdempotencyKey = "k"
	b, err := f.svc.Book(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "b-first", b.ID)
}

func TestService_Book_PromotionOnlyForWeb(t *testing.T) {
	f := newFixture()
	f.museums.On("GetByID", mock.Anything, "museum-1").Return(met(), nil)
	f.events.On("GetByID", mock.Anything, "event-1").Return(egypt(), nil)
	f.bookings.On("CreateReserving", mock.Anything, mock.Anything).Return(nil)
	f.notifs.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.promos.On("Lookup", mock.Anything, "SPRING").Return(&domain.Promotion{Code: "SPRING", Active: true, DiscountPercent: 20}, nil)
	f.promos.On("Lookup", mock.Anything, "BOGUS").Return(nil, errors.New("not found"))

	req := validRequest()
	req.Source = domain.SourceWeb
	req.PromoCode = "SPRING"
	b, err := f.svc.Book(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 40.0, b.PricePaid)

	req.Source = domain.SourceChat
	b, err = f.svc.Book(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 50.0, b.PricePaid)

	req.Source = domain.SourceWeb
	req.PromoCode = "BOGUS"
	_, err = f.svc.Book(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidPromoCode)
}

func TestService_Pay(t *testing.T) {
	f := newFixture()
	pending := &domain.Booking{ID: "b1", UserID: "u1", Status: domain.BookingPending, PricePaid: 50, Currency: "USD"}
	paid := &domain.Booking{ID: "b1", UserID: "u1", Status: domain.BookingPaid, PaymentID: "p"}
	f.bookings.On("GetByID", mock.Anything, "b1").Return(pending, nil).Twice()
	f.bookings.On("GetByID", mock.Anything, "b1").Return(paid, nil)
	f.bookings.On("MarkPaid", mock.Anything, "b1", mock.MatchedBy(func(p *domain.Payment) bool {
		return p.Amount == 50 && p.Provider == "simulated" && p.Status == domain.PaymentSucceeded
	})).Return(nil)

	_, err := f.svc.Pay(context.Background(), Actor{UserID: "someone-else"}, "b1")
	assert.ErrorIs(t, err, ErrForbidden)

	b, err := f.svc.Pay(context.Background(), Actor{UserID: "u1"}, "b1")
	require.NoError(t, err)
	assert.Equal(t, domain.BookingPaid, b.Status)

	_, err = f.svc.Pay(context.Background(), Actor{UserID: "u1"}, "b1")
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
	f.bookings.AssertNumberOfCalls(t, "MarkPaid", 1)
}

func TestService_Cancel(t *testing.T) {
	f := newFixture()
	f.bookings.On("GetByID", mock.Anything, "done").Return(&domain.Booking{ID: "done", UserID: "u1", Status: domain.BookingCheckedIn}, nil)
	f.bookings.On("GetByID", mock.Anything, "b2").Return(&domain.Booking{ID: "b2", UserID: "u1", Status: domain.BookingPaid}, nil)
	f.bookings.On("Cancel", mock.Anything, "b2", fixedNow).Return(nil)

	_, err := f.svc.Cancel(context.Background(), Actor{UserID: "u1"}, "done")
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)

	_, err = f.svc.Cancel(context.Background(), Actor{UserID: "u9", Role: domain.RoleStaff}, "b2")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.Cancel(context.Background(), Actor{UserID: "admin", Role: domain.RoleAdmin}, "b2")
	assert.NoError(t, err)
	f.bookings.AssertCalled(t, "Cancel", mock.Anything, "b2", fixedNow)
}

func TestService_CheckIn(t *testing.T) {
	f := newFixture()
	paid := &domain.Booking{ID: "b1", EventID: "event-1", Status: domain.BookingPaid}
	checked := &domain.Booking{ID: "b1", EventID: "event-1", Status: domain.BookingCheckedIn}
	f.bookings.On("GetByID", mock.Anything, "b1").Return(paid, nil).Once()
	f.bookings.On("GetByID", mock.Anything, "b1").Return(checked, nil)
	f.bookings.On("MarkCheckedIn", mock.Anything, "b1", fixedNow).Return(nil)

	_, err := f.svc.CheckIn(context.Background(), "MT1|b1|event-1|forged")
	assert.ErrorIs(t, err, ErrInvalidTicket)

	b, err := f.svc.CheckIn(context.Background(), f.signer.Payload("b1", "event-1"))
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCheckedIn, b.Status)

	_, err = f.svc.CheckIn(context.Background(), f.signer.Payload("b1", "event-1"))
	assert.ErrorIs(t, err, ErrAlreadyCheckedIn)

	_, err = f.svc.CheckIn(context.Background(), f.signer.Payload("b1", "event-2"))
	assert.ErrorIs(t, err, ErrInvalidTicket)
}

func TestService_Ticket_RequiresPayment(t *testing.T) {
	f := newFixture()
	f.bookings.On("GetByID", mock.Anything, "pending").Return(&domain.Booking{ID: "pending", UserID: "u1", Status: domain.BookingPending}, nil)
	f.bookings.On("GetByID", mock.Anything, "paid").Return(&domain.Booking{ID: "paid", UserID: "u1", EventID: "event-1",
		Status: domain.BookingPaid, NumTickets: 2, EventTitle: "Egypt", MuseumName: "Met", Currency: "USD"}, nil)

	_, err := f.svc.Ticket(context.Background(), Actor{UserID: "u1"}, "pending")
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)

	pdf, err := f.svc.Ticket(context.Background(), Actor{UserID: "u1"}, "paid")
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)
}

func TestService_ExpirePending(t *testing.T) {
	f := newFixture()
	f.bookings.On("ExpirePending", mock.Anything, fixedNow.Add(-30*time.Minute), fixedNow).Return([]string{"a", "b"}, nil)

	n, err := f.svc.ExpirePending(context.Background(), 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestTool_Invoke(t *testing.T) {
	f := newFixture()
	f.museums.On("GetByID", mock.Anything, "museum-1").Return(met(), nil)
	f.museums.On("GetByID", mock.Anything, "nowhere").Return(nil, repository.ErrNotFound)
	f.events.On("GetByID", mock.Anything, "event-1").Return(egypt(), nil)
	f.bookings.On("CreateReserving", mock.Anything, mock.Anything).Return(nil)
	f.notifs.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	tool := NewTool(f.svc)

	res := tool.Invoke(context.Background(), ToolInput{UserID: "u1", MuseumID: "nowhere", EventID: "event-1", NumTickets: 2})
	assert.False(t, res.Success)
	assert.Empty(t, res.BookingID)
	assert.Contains(t, res.ConfirmationMessage, "no booking was made")

	res = tool.Invoke(context.Background(), ToolInput{UserID: "u1", MuseumID: "museum-1", EventID: "event-1", NumTickets: 2, ContactEmail: "ann@example.com"})
	assert.True(t, res.Success)
	assert.NotEmpty(t, res.BookingID)
	assert.Contains(t, res.ConfirmationMessage, "$50.00")
	assert.Contains(t, res.ConfirmationMessage, "2 tickets for Ancient Egypt: Art and Magic")
}
