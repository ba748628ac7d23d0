package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"museumtix/internal/domain"
	"museumtix/internal/pkg/ticket"
	"museumtix/internal/pkg/validator"
	"museumtix/internal/repository"

	"github.com/google/uuid"
)

const (
	maxTicketsPerBooking = 50
	// user id (64) + ":" + key must fit the 128-char idempotency column
	maxIdempotencyKeyLen = 60
	paymentProvider      = "simulated"
	notifyTimeout        = 15 * time.Second
)

type Service struct {
	bookings BookingRepository
	museums  MuseumReader
	events   EventReader
	promos   PromotionLookup
	notifs   Notifier
	signer   TicketSigner
	now      func() time.Time
	// async runs best-effort side effects off the request path.
	async func(func())
}

func NewService(
	bookings BookingRepository,
	museums MuseumReader,
	events EventReader,
	promos PromotionLookup,
	notifs Notifier,
	signer TicketSigner,
) *Service {
	return &Service{
		bookings: bookings,
		museums:  museums,
		events:   events,
		promos:   promos,
		notifs:   notifs,
		signer:   signer,
		now:      time.Now,
		async:    func(f func()) { go f() },
	}
}

func scopedKey(userID, key string) *string {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}
	v := userID + ":" + key
	return &v
}

func (s *Service) validate(req BookRequest) error {
	var problems []string
	if strings.TrimSpace(req.UserID) == "" {
		problems = append(problems, "user is required")
	}
	if strings.TrimSpace(req.MuseumID) == "" || strings.TrimSpace(req.EventID) == "" {
		problems = append(problems, "museum and event are required")
	}
	if req.NumTickets < 1 || req.NumTickets > maxTicketsPerBooking {
		problems = append(problems, fmt.Sprintf("ticket count must be between 1 and %d", maxTicketsPerBooking))
	}
	if len(strings.TrimSpace(req.IdempotencyKey)) > maxIdempotencyKeyLen {
		problems = append(problems, fmt.Sprintf("idempotency key must be at most %d characters", maxIdempotencyKeyLen))
	}
	if req.ContactEmail != "" && !validator.IsEmail(req.ContactEmail) {
		problems = append(problems, "contact email is not a valid address")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}

// Book creates a pending booking and reserves its seats. Repeating a call with
// the same idempotency key returns the booking created by the first call.
func (s *Service) Book(ctx context.Context, req BookRequest) (*domain.Booking, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	key := scopedKey(req.UserID, req.IdempotencyKey)
	if key != nil {
		existing, err := s.bookings.GetByIdempotencyKey(ctx, *key)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}

	museum, err := s.museums.GetByID(ctx, req.MuseumID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnknownReference
		}
		return nil, err
	}
	event, err := s.events.GetByID(ctx, req.EventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnknownReference
		}
		return nil, err
	}
	if event.MuseumID != museum.ID {
		return nil, ErrUnknownReference
	}

	now := s.now().UTC()
	if event.IsPast(now) {
		return nil, fmt.Errorf("%w: event date %s is in the past", ErrValidation, event.Date)
	}

	total := math.Round(event.BasePrice*float64(req.NumTickets)*100) / 100
	if req.PromoCode != "" && req.Source != domain.SourceChat && s.promos != nil {
		promo, err := s.promos.Lookup(ctx, req.PromoCode)
		if err != nil {
			return nil, ErrInvalidPromoCode
		}
		total = promo.Apply(total)
	}

	source := req.Source
	if source == "" {
		source = domain.SourceWeb
	}
	id := uuid.NewString()
	b := &domain.Booking{
		ID:              id,
		UserID:          req.UserID,
		EventID:         event.ID,
		MuseumID:        museum.ID,
		NumTickets:      req.NumTickets,
		PricePaid:       total,
		Currency:        domain.DefaultCurrency,
		Status:          domain.BookingPending,
		Source:          source,
		EventTitle:      event.Title,
		MuseumName:      museum.Name,
		EventDate:       event.Date,
		Slot:            event.Slot(),
		QRID:            "qr-" + id,
		TicketType:      req.TicketType,
		ContactEmail:    strings.TrimSpace(req.ContactEmail),
		VisitorNames:    req.VisitorNames,
		SpecialRequests: req.SpecialRequests,
		PromoCode:       strings.ToUpper(strings.TrimSpace(req.PromoCode)),
		IdempotencyKey:  key,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.bookings.CreateReserving(ctx, b); err != nil {
		switch {
		case errors.Is(err, repository.ErrCapacityExceeded):
			return nil, ErrSoldOut
		case errors.Is(err, repository.ErrDuplicateKey) && key != nil:
			// lost a race against a concurrent request carrying the same key
			return s.bookings.GetByIdempotencyKey(ctx, *key)
		}
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.notifyConfirmed(b)
	return b, nil
}

func (s *Service) notifyConfirmed(b *domain.Booking) {
	if s.notifs == nil || b.ContactEmail == "" {
		return
	}
	subject := fmt.Sprintf("Your booking for %s", b.EventTitle)
	body := fmt.Sprintf(
		"Thank you for booking with %s.\n\nEvent: %s\nDate: %s (%s)\nTickets: %d\nTotal: %.2f %s\nBooking ID: %s\n\nPlease complete payment from My Bookings to receive your ticket.\n",
		b.MuseumName, b.EventTitle, b.EventDate, b.Slot, b.NumTickets, b.PricePaid, b.Currency, b.ID,
	)
	s.async(func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := s.notifs.Send(ctx, b.ContactEmail, subject, body); err != nil {
			log.Printf("booking_notify_failed booking_id=%s error=%q", b.ID, err.Error())
		}
	})
}

func (s *Service) load(ctx context.Context, id string) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

// Get returns a booking visible to the actor: its owner or staff.
func (s *Service) Get(ctx context.Context, actor Actor, id string) (*domain.Booking, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.UserID != actor.UserID && !actor.isStaff() {
		return nil, ErrForbidden
	}
	return b, nil
}

func (s *Service) ListMine(ctx context.Context, userID string) ([]domain.Booking, error) {
	return s.bookings.List(ctx, repository.BookingFilter{UserID: userID})
}

func (s *Service) ListAll(ctx context.Context, q ListQuery) ([]domain.Booking, error) {
	f := repository.BookingFilter{MuseumID: q.MuseumID}
	if q.Status != "" {
		f.Status = domain.BookingStatus(q.Status)
	}
	return s.bookings.List(ctx, f)
}

// Pay settles a pending booking with the simulated provider.
func (s *Service) Pay(ctx context.Context, actor Actor, id string) (*domain.Booking, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.UserID != actor.UserID {
		return nil, ErrForbidden
	}
	if !b.Status.CanTransitionTo(domain.BookingPaid) {
		return nil, ErrInvalidStatusTransition
	}

	p := &domain.Payment{
		ID:        uuid.NewString(),
		BookingID: b.ID,
		UserID:    b.UserID,
		Amount:    b.PricePaid,
		Currency:  b.Currency,
		Provider:  paymentProvider,
		Status:    domain.PaymentSucceeded,
		CreatedAt: s.now().UTC(),
	}
	if err := s.bookings.MarkPaid(ctx, b.ID, p); err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			return nil, ErrInvalidStatusTransition
		}
		return nil, err
	}
	return s.load(ctx, id)
}

// Cancel releases the seats of a pending or paid booking.
func (s *Service) Cancel(ctx context.Context, actor Actor, id string) (*domain.Booking, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.UserID != actor.UserID && actor.Role != domain.RoleAdmin {
		return nil, ErrForbidden
	}
	if !b.Status.CanTransitionTo(domain.BookingCancelled) {
		return nil, ErrInvalidStatusTransition
	}
	if err := s.bookings.Cancel(ctx, b.ID, s.now().UTC()); err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			return nil, ErrInvalidStatusTransition
		}
		return nil, err
	}
	return s.load(ctx, id)
}

// CheckIn admits the holder of a signed ticket payload.
func (s *Service) CheckIn(ctx context.Context, payload string) (*domain.Booking, error) {
	bookingID, eventID, err := s.signer.Verify(payload)
	if err != nil {
		return nil, ErrInvalidTicket
	}
	b, err := s.load(ctx, bookingID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidTicket
		}
		return nil, err
	}
	if b.EventID != eventID {
		return nil, ErrInvalidTicket
	}
	if b.Status == domain.BookingCheckedIn {
		return b, ErrAlreadyCheckedIn
	}
	if !b.Status.CanTransitionTo(domain.BookingCheckedIn) {
		return nil, ErrInvalidStatusTransition
	}
	if err := s.bookings.MarkCheckedIn(ctx, b.ID, s.now().UTC()); err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			return nil, ErrAlreadyCheckedIn
		}
		return nil, err
	}
	return s.load(ctx, b.ID)
}

// Ticket renders the PDF ticket of a paid booking.
func (s *Service) Ticket(ctx context.Context, actor Actor, id string) ([]byte, error) {
	b, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if b.Status != domain.BookingPaid && b.Status != domain.BookingCheckedIn {
		return nil, ErrInvalidStatusTransition
	}

	holder := b.ContactEmail
	if len(b.VisitorNames) > 0 {
		holder = strings.Join(b.VisitorNames, ", ")
	}
	return ticket.Render(ticket.Details{
		BookingID:  b.ID,
		MuseumName: b.MuseumName,
		EventTitle: b.EventTitle,
		EventDate:  b.EventDate,
		Slot:       b.Slot,
		NumTickets: b.NumTickets,
		TicketType: b.TicketType,
		Holder:     holder,
		PricePaid:  b.PricePaid,
		Currency:   b.Currency,
	}, s.signer.Payload(b.ID, b.EventID))
}

// ExpirePending cancels pending bookings older than ttl and returns how many.
func (s *Service) ExpirePending(ctx context.Context, ttl time.Duration) (int, error) {
	now := s.now().UTC()
	ids, err := s.bookings.ExpirePending(ctx, now.Add(-ttl), now)
	return len(ids), err
}
