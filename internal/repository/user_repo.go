package repository

import (
	"context"
	"strings"
	"time"

	"museumtix/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	u.Email = normalizeEmail(u.Email)
	err := r.db.WithContext(ctx).Create(u).Error
	if isUniqueViolation(err) {
		return ErrDuplicateKey
	}
	return err
}

// Ensure inserts u unless a user with the same id already exists.
func (r *UserRepository) Ensure(ctx context.Context, u *domain.User) (*domain.User, error) {
	u.Email = normalizeEmail(u.Email)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(u).Error
	if err != nil && !isUniqueViolation(err) {
		return nil, err
	}
	return r.GetByID(ctx, u.ID)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	tx := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", normalizeEmail(email)).
		First(&u)
	if tx.Error != nil {
		return nil, notFound(tx.Error)
	}
	return &u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	var out []domain.User
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *UserRepository) UpdateRole(ctx context.Context, id string, role domain.UserRole) error {
	tx := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Update("role", role)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) TouchLastSeen(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).UpdateColumn("last_seen", at).Error
}
