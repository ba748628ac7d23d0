package domain

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingPaid      BookingStatus = "paid"
	BookingCancelled BookingStatus = "cancelled"
	BookingCheckedIn BookingStatus = "checkedIn"
)

// CanTransitionTo encodes pending -> paid -> checkedIn, with cancel allowed before check-in.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case BookingPending:
		return next == BookingPaid || next == BookingCancelled
	case BookingPaid:
		return next == BookingCheckedIn || next == BookingCancelled
	}
	return false
}

type BookingSource string

const (
	SourceWeb   BookingSource = "web"
	SourceChat  BookingSource = "chat"
	SourceAdmin BookingSource = "admin"
)

const DefaultCurrency = "USD"

type Booking struct {
	ID         string        `json:"id" gorm:"primaryKey;size:64"`
	UserID     string        `json:"user_id" gorm:"index;size:64"`
	EventID    string        `json:"event_id" gorm:"index;size:64"`
	MuseumID   string        `json:"museum_id" gorm:"index;size:64"`
	NumTickets int           `json:"num_tickets"`
	PricePaid  float64       `json:"price_paid"`
	Currency   string        `json:"currency" gorm:"size:3"`
	Status     BookingStatus `json:"status" gorm:"size:16;index"`
	Source     BookingSource `json:"source" gorm:"size:16"`

	EventTitle string `json:"event_title"`
	MuseumName string `json:"museum_name"`
	EventDate  string `json:"event_date" gorm:"size:10"`
	Slot       string `json:"slot,omitempty"`
	PaymentID  string `json:"payment_id,omitempty"`
	QRID       string `json:"qr_id,omitempty"`

	TicketType      string   `json:"ticket_type,omitempty" gorm:"size:16"`
	ContactEmail    string   `json:"contact_email,omitempty"`
	VisitorNames    []string `json:"visitor_names,omitempty" gorm:"type:text;serializer:json"`
	SpecialRequests string   `json:"special_requests,omitempty" gorm:"type:text"`
	PromoCode       string   `json:"promo_code,omitempty" gorm:"size:32"`

	// IdempotencyKey is unique; NULL for bookings created without one.
	IdempotencyKey *string `json:"-" gorm:"uniqueIndex;size:128"`

	CreatedAt   time.Time  `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CheckedInAt *time.Time `json:"checked_in_at,omitempty"`
}
