package repository

import (
	"context"

	"museumtix/internal/domain"

	"gorm.io/gorm"
)

type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

type EventFilter struct {
	MuseumID string
	// FromDate keeps events on or after this YYYY-MM-DD day.
	FromDate string
}

func (r *EventRepository) List(ctx context.Context, f EventFilter) ([]domain.Event, error) {
	var out []domain.Event
	q := r.db.WithContext(ctx).Order("date ASC, start_time ASC")
	if f.MuseumID != "" {
		q = q.Where("museum_id = ?", f.MuseumID)
	}
	if f.FromDate != "" {
		q = q.Where("date >= ?", f.FromDate)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *EventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	var e domain.Event
	if err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &e, nil
}

func (r *EventRepository) CountByMuseum(ctx context.Context, museumID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Event{}).Where("museum_id = ?", museumID).Count(&n).Error
	return n, err
}

func (r *EventRepository) Create(ctx context.Context, e *domain.Event) error {
	err := r.db.WithContext(ctx).Create(e).Error
	if isUniqueViolation(err) {
		return ErrDuplicateKey
	}
	return err
}

// Update writes editable fields; booked_count is owned by the booking flow.
func (r *EventRepository) Update(ctx context.Context, e *domain.Event) error {
	tx := r.db.WithContext(ctx).Model(&domain.Event{}).Where("id = ? AND ? >= booked_count", e.ID, e.Capacity).
		Select("*").Omit("id", "booked_count", "created_at").Updates(e)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, e.ID); err != nil {
			return err
		}
		return ErrCapacityExceeded
	}
	return nil
}

func (r *EventRepository) Delete(ctx context.Context, id string) error {
	tx := r.db.WithContext(ctx).Delete(&domain.Event{}, "id = ?", id)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
