package repository

import (
	"context"
	"strings"

	"museumtix/internal/domain"

	"gorm.io/gorm"
)

type MuseumRepository struct {
	db *gorm.DB
}

func NewMuseumRepository(db *gorm.DB) *MuseumRepository {
	return &MuseumRepository{db: db}
}

func (r *MuseumRepository) List(ctx context.Context, city string) ([]domain.Museum, error) {
	var out []domain.Museum
	q := r.db.WithContext(ctx).Order("name ASC")
	if c := strings.TrimSpace(city); c != "" {
		q = q.Where("LOWER(city) = ?", strings.ToLower(c))
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MuseumRepository) GetByID(ctx context.Context, id string) (*domain.Museum, error) {
	var m domain.Museum
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

func (r *MuseumRepository) Create(ctx context.Context, m *domain.Museum) error {
	err := r.db.WithContext(ctx).Create(m).Error
	if isUniqueViolation(err) {
		return ErrDuplicateKey
	}
	return err
}

func (r *MuseumRepository) Update(ctx context.Context, m *domain.Museum) error {
	tx := r.db.WithContext(ctx).Model(&domain.Museum{}).Where("id = ?", m.ID).Select("*").Omit("id", "created_at").Updates(m)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MuseumRepository) Delete(ctx context.Context, id string) error {
	tx := r.db.WithContext(ctx).Delete(&domain.Museum{}, "id = ?", id)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
