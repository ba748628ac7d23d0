package repository

import (
	"context"
	"strings"

	"museumtix/internal/domain"

	"gorm.io/gorm"
)

type PromotionRepository struct {
	db *gorm.DB
}

func NewPromotionRepository(db *gorm.DB) *PromotionRepository {
	return &PromotionRepository{db: db}
}

func (r *PromotionRepository) List(ctx context.Context, activeOnly bool) ([]domain.Promotion, error) {
	var out []domain.Promotion
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PromotionRepository) GetByID(ctx context.Context, id string) (*domain.Promotion, error) {
	var p domain.Promotion
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *PromotionRepository) GetByCode(ctx context.Context, code string) (*domain.Promotion, error) {
	var p domain.Promotion
	err := r.db.WithContext(ctx).First(&p, "code = ?", strings.ToUpper(strings.TrimSpace(code))).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *PromotionRepository) Create(ctx context.Context, p *domain.Promotion) error {
	err := r.db.WithContext(ctx).Create(p).Error
	if isUniqueViolation(err) {
		return ErrDuplicateKey
	}
	return err
}

func (r *PromotionRepository) Update(ctx context.Context, p *domain.Promotion) error {
	tx := r.db.WithContext(ctx).Model(&domain.Promotion{}).Where("id = ?", p.ID).
		Select("*").Omit("id", "created_at").Updates(p)
	if isUniqueViolation(tx.Error) {
		return ErrDuplicateKey
	}
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PromotionRepository) Delete(ctx context.Context, id string) error {
	tx := r.db.WithContext(ctx).Delete(&domain.Promotion{}, "id = ?", id)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
