package assistant

import "museumtix/internal/domain"

type Route string

const (
	RouteFAQ      Route = "faq"
	RouteBooking  Route = "booking"
	RouteFallback Route = "fallback"
)

type TurnRequest struct {
	UserID  string
	Email   string
	Message string
	// History is the client-side transcript, used only to seed a new session.
	History []domain.ConversationMessage
}

type TurnResult struct {
	Reply             string `json:"reply"`
	Route             Route  `json:"route"`
	Stage             Stage  `json:"stage"`
	AwaitingSlot      Slot   `json:"awaiting_slot,omitempty"`
	IsBookingReady    bool   `json:"is_booking_ready"`
	IsBookingComplete bool   `json:"is_booking_complete"`
	Draft             *Draft `json:"booking_data,omitempty"`
	BookingID         string `json:"booking_id,omitempty"`
}

type MessageRequest struct {
	Message string                       `json:"message" binding:"required,max=2000"`
	History []domain.ConversationMessage `json:"history"`
}

type TranslateRequest struct {
	Text           string `json:"text" binding:"required,max=4000"`
	TargetLanguage string `json:"target_language" binding:"required,max=32"`
}

type VisitTime struct {
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	CrowdLevel   string `json:"crowd_level"`
	EventDetails string `json:"event_details,omitempty"`
}
