package booking

import (
	"museumtix/internal/domain"
)

// BookRequest is the input of Service.Book, shared by the web form and the chat tool.
type BookRequest struct {
	UserID          string
	MuseumID        string
	EventID         string
	NumTickets      int
	ContactEmail    string
	TicketType      string
	VisitorNames    []string
	SpecialRequests string
	PromoCode       string
	Source          domain.BookingSource
	IdempotencyKey  string
}

type CreateBookingRequest struct {
	MuseumID        string   `json:"museum_id" binding:"required"`
	EventID         string   `json:"event_id" binding:"required"`
	NumTickets      int      `json:"num_tickets" binding:"required,min=1,max=50"`
	ContactEmail    string   `json:"contact_email" binding:"omitempty,email"`
	TicketType      string   `json:"ticket_type" binding:"omitempty,oneof=adult child student senior mixed"`
	VisitorNames    []string `json:"visitor_names"`
	SpecialRequests string   `json:"special_requests" binding:"max=1000"`
	PromoCode       string   `json:"promo_code"`
}

type VerifyTicketRequest struct {
	Payload string `json:"payload" binding:"required"`
}

type ListQuery struct {
	Status   string `form:"status"`
	MuseumID string `form:"museumId"`
}

// Actor is who performs an operation on a booking.
type Actor struct {
	UserID string
	Role   domain.UserRole
}

func (a Actor) isStaff() bool {
	return a.Role == domain.RoleStaff || a.Role == domain.RoleAdmin
}
