package domain

import "time"

type PaymentStatus string

const (
	PaymentSucceeded PaymentStatus = "succeeded"
	PaymentFailed    PaymentStatus = "failed"
)

type Payment struct {
	ID        string        `json:"id" gorm:"primaryKey;size:64"`
	BookingID string        `json:"booking_id" gorm:"index;size:64"`
	UserID    string        `json:"user_id" gorm:"size:64"`
	Amount    float64       `json:"amount"`
	Currency  string        `json:"currency" gorm:"size:3"`
	Provider  string        `json:"provider" gorm:"size:32"`
	Status    PaymentStatus `json:"status" gorm:"size:16"`
	CreatedAt time.Time     `json:"created_at"`
}
