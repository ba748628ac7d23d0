package catalog

import (
	"context"

	"museumtix/internal/domain"
	"museumtix/internal/repository"
)

type MuseumReader interface {
	List(ctx context.Context, city string) ([]domain.Museum, error)
	GetByID(ctx context.Context, id string) (*domain.Museum, error)
}

type EventReader interface {
	List(ctx context.Context, f repository.EventFilter) ([]domain.Event, error)
	GetByID(ctx context.Context, id string) (*domain.Event, error)
}
