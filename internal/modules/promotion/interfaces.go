package promotion

import (
	"context"

	"museumtix/internal/domain"
)

type PromotionRepository interface {
	List(ctx context.Context, activeOnly bool) ([]domain.Promotion, error)
	GetByID(ctx context.Context, id string) (*domain.Promotion, error)
	GetByCode(ctx context.Context, code string) (*domain.Promotion, error)
	Create(ctx context.Context, p *domain.Promotion) error
	Update(ctx context.Context, p *domain.Promotion) error
	Delete(ctx context.Context, id string) error
}
