package repository

import (
	"context"
	"errors"
	"time"

	"museumtix/internal/domain"

	"gorm.io/gorm"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

type BookingFilter struct {
	UserID   string
	MuseumID string
	Status   domain.BookingStatus
	From     time.Time
	To       time.Time
}

// CreateReserving takes b.NumTickets seats of the event and inserts the booking
// in one transaction. The seat update is conditional so capacity cannot be oversold.
func (r *BookingRepository) CreateReserving(ctx context.Context, b *domain.Booking) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Event{}).
			Where("id = ? AND booked_count + ? <= capacity", b.EventID, b.NumTickets).
			UpdateColumn("booked_count", gorm.Expr("booked_count + ?", b.NumTickets))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrCapacityExceeded
		}
		return tx.Create(b).Error
	})
	if isUniqueViolation(err) {
		return ErrDuplicateKey
	}
	return err
}

func (r *BookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	var b domain.Booking
	if err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

// GetByIdempotencyKey returns ErrNotFound when no booking carries key.
func (r *BookingRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Booking, error) {
	var found []domain.Booking
	res := r.db.WithContext(ctx).Where("idempotency_key = ?", key).Limit(1).Find(&found)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return &found[0], nil
}

func (r *BookingRepository) List(ctx context.Context, f BookingFilter) ([]domain.Booking, error) {
	var out []domain.Booking
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.MuseumID != "" {
		q = q.Where("museum_id = ?", f.MuseumID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if !f.From.IsZero() {
		q = q.Where("created_at >= ?", f.From)
	}
	if !f.To.IsZero() {
		q = q.Where("created_at < ?", f.To)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// MarkPaid moves a pending booking to paid and records the payment.
func (r *BookingRepository) MarkPaid(ctx context.Context, id string, p *domain.Payment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Booking{}).
			Where("id = ? AND status = ?", id, domain.BookingPending).
			Updates(map[string]any{
				"status":     domain.BookingPaid,
				"payment_id": p.ID,
				"updated_at": p.CreatedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStatusChanged
		}
		return tx.Create(p).Error
	})
}

// Cancel moves a pending or paid booking to cancelled and gives its seats back.
func (r *BookingRepository) Cancel(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return cancelTx(tx, id, at)
	})
}

func cancelTx(tx *gorm.DB, id string, at time.Time) error {
	var b domain.Booking
	if err := tx.Select("id", "event_id", "num_tickets").First(&b, "id = ?", id).Error; err != nil {
		return notFound(err)
	}
	res := tx.Model(&domain.Booking{}).
		Where("id = ? AND status IN ?", id, []domain.BookingStatus{domain.BookingPending, domain.BookingPaid}).
		Updates(map[string]any{
			"status":       domain.BookingCancelled,
			"cancelled_at": at,
			"updated_at":   at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStatusChanged
	}
	return tx.Model(&domain.Event{}).
		Where("id = ? AND booked_count >= ?", b.EventID, b.NumTickets).
		UpdateColumn("booked_count", gorm.Expr("booked_count - ?", b.NumTickets)).Error
}

func (r *BookingRepository) MarkCheckedIn(ctx context.Context, id string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&domain.Booking{}).
		Where("id = ? AND status = ?", id, domain.BookingPaid).
		Updates(map[string]any{
			"status":        domain.BookingCheckedIn,
			"checked_in_at": at,
			"updated_at":    at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStatusChanged
	}
	return nil
}

// ExpirePending cancels pending bookings created before cutoff and returns their ids.
func (r *BookingRepository) ExpirePending(ctx context.Context, cutoff, at time.Time) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&domain.Booking{}).
		Where("status = ? AND created_at < ?", domain.BookingPending, cutoff).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}

	expired := make([]string, 0, len(ids))
	for _, id := range ids {
		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return cancelTx(tx, id, at)
		})
		if errors.Is(err, ErrStatusChanged) || errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return expired, err
		}
		expired = append(expired, id)
	}
	return expired, nil
}

func (r *BookingRepository) PaymentsForBooking(ctx context.Context, bookingID string) ([]domain.Payment, error) {
	var out []domain.Payment
	err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).Order("created_at ASC").Find(&out).Error
	return out, err
}
