package booking

import (
	"context"
	"time"

	"museumtix/internal/domain"
	"museumtix/internal/repository"
)

// BookingRepository defines the interface for booking operations
type BookingRepository interface {
	CreateReserving(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.Booking, error)
	List(ctx context.Context, f repository.BookingFilter) ([]domain.Booking, error)
	MarkPaid(ctx context.Context, id string, p *domain.Payment) error
	Cancel(ctx context.Context, id string, at time.Time) error
	MarkCheckedIn(ctx context.Context, id string, at time.Time) error
	ExpirePending(ctx context.Context, cutoff, at time.Time) ([]string, error)
}

type MuseumReader interface {
	GetByID(ctx context.Context, id string) (*domain.Museum, error)
}

type EventReader interface {
	GetByID(ctx context.Context, id string) (*domain.Event, error)
}

type PromotionLookup interface {
	Lookup(ctx context.Context, code string) (*domain.Promotion, error)
}

// Notifier delivers the booking confirmation to the visitor.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

type TicketSigner interface {
	Payload(bookingID, eventID string) string
	Verify(payload string) (bookingID, eventID string, err error)
}
