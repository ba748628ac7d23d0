package admin

import (
	"context"
	"time"

	"museumtix/internal/domain"
	"museumtix/internal/repository"
)

type MuseumRepository interface {
	List(ctx context.Context, city string) ([]domain.Museum, error)
	GetByID(ctx context.Context, id string) (*domain.Museum, error)
	Create(ctx context.Context, m *domain.Museum) error
	Update(ctx context.Context, m *domain.Museum) error
	Delete(ctx context.Context, id string) error
}

type EventRepository interface {
	List(ctx context.Context, f repository.EventFilter) ([]domain.Event, error)
	GetByID(ctx context.Context, id string) (*domain.Event, error)
	CountByMuseum(ctx context.Context, museumID string) (int64, error)
	Create(ctx context.Context, e *domain.Event) error
	Update(ctx context.Context, e *domain.Event) error
	Delete(ctx context.Context, id string) error
}

type UserRepository interface {
	List(ctx context.Context) ([]domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	UpdateRole(ctx context.Context, id string, role domain.UserRole) error
}

type BookingLister interface {
	List(ctx context.Context, f repository.BookingFilter) ([]domain.Booking, error)
}

type ChatLogStats interface {
	RouteCounts(ctx context.Context, from, to time.Time) ([]repository.RouteCount, error)
}
