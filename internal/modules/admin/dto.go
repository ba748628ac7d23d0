package admin

import (
	"time"

	"museumtix/internal/domain"
)

type MuseumRequest struct {
	ID          string             `json:"id" validate:"omitempty,max=64"`
	Name        string             `json:"name" validate:"required,min=2,max=255"`
	Description string             `json:"description"`
	Address     string             `json:"address"`
	City        string             `json:"city" validate:"required"`
	Country     string             `json:"country"`
	OpenHours   []domain.OpenHours `json:"open_hours" validate:"dive"`
	ImageURL    string             `json:"image_url" validate:"omitempty,url"`
	ImageHint   string             `json:"image_hint"`
}

type EventRequest struct {
	ID          string  `json:"id" validate:"omitempty,max=64"`
	MuseumID    string  `json:"museum_id" validate:"required"`
	Title       string  `json:"title" validate:"required,min=2,max=255"`
	Description string  `json:"description"`
	Date        string  `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime   string  `json:"start_time" validate:"required,datetime=15:04"`
	EndTime     string  `json:"end_time" validate:"required,datetime=15:04"`
	Capacity    int     `json:"capacity" validate:"required,min=1"`
	BasePrice   float64 `json:"base_price" validate:"min=0"`
	ImageURL    string  `json:"image_url" validate:"omitempty,url"`
	ImageHint   string  `json:"image_hint"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

type AnalyticsQuery struct {
	From string `form:"from"`
	To   string `form:"to"`
}

type DailyStat struct {
	Date     string  `json:"date"`
	Bookings int     `json:"bookings"`
	Tickets  int     `json:"tickets"`
	Revenue  float64 `json:"revenue"`
}

type MuseumRevenue struct {
	MuseumID   string  `json:"museum_id"`
	MuseumName string  `json:"museum_name"`
	Bookings   int     `json:"bookings"`
	Revenue    float64 `json:"revenue"`
}

type EventFill struct {
	EventID     string  `json:"event_id"`
	Title       string  `json:"title"`
	Capacity    int     `json:"capacity"`
	BookedCount int     `json:"booked_count"`
	FillRate    float64 `json:"fill_rate"`
}

// Analytics summarises bookings created in [From, To].
type Analytics struct {
	From                 string                       `json:"from"`
	To                   string                       `json:"to"`
	TotalBookings        int                          `json:"total_bookings"`
	TotalTickets         int                          `json:"total_tickets"`
	TotalRevenue         float64                      `json:"total_revenue"`
	AvgRevenuePerBooking float64                      `json:"avg_revenue_per_booking"`
	Daily                []DailyStat                  `json:"daily"`
	RevenueByMuseum      []MuseumRevenue              `json:"revenue_by_museum"`
	PeakWeekday          string                       `json:"peak_weekday,omitempty"`
	MostPopularMuseum    string                       `json:"most_popular_museum,omitempty"`
	StatusCounts         map[domain.BookingStatus]int `json:"status_counts"`
	AbandonedBookings    int                          `json:"abandoned_bookings"`
	QRVerifications      int                          `json:"qr_verifications"`
	TopEvent             *EventFill                   `json:"top_event,omitempty"`
	PeakHour             string                       `json:"peak_hour,omitempty"`
	CancellationRate     float64                      `json:"cancellation_rate"`
	Promotions           []PromoStat                  `json:"promotions"`
	Chatbot              []RouteStat                  `json:"chatbot"`
}

// PromoStat is the booking volume carried by one promo code.
type PromoStat struct {
	Code     string  `json:"code"`
	Bookings int     `json:"bookings"`
	Tickets  int     `json:"tickets"`
	Revenue  float64 `json:"revenue"`
}

// RouteStat is the share of assistant turns answered by one route.
type RouteStat struct {
	Route string  `json:"route"`
	Turns int     `json:"turns"`
	Share float64 `json:"share"`
}

type Suggestion struct {
	Title      string `json:"title"`
	Suggestion string `json:"suggestion"`
}

type Recommendation struct {
	ID             string  `json:"id"`
	Type           string  `json:"type"`
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Reason         string  `json:"reason"`
	ExpectedImpact string  `json:"expected_impact"`
	Confidence     float64 `json:"confidence"`
}

type ReportMeta struct {
	PeriodStart string    `json:"period_start"`
	PeriodEnd   string    `json:"period_end"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Report is the executive analysis of one period: computed figures plus the model's reading of them.
type Report struct {
	Meta             ReportMeta       `json:"meta"`
	Summary          *Analytics       `json:"summary"`
	ExecutiveSummary string           `json:"executive_summary"`
	KeyProblem       string           `json:"key_problem"`
	TopOpportunity   string           `json:"top_opportunity"`
	Recommendations  []Recommendation `json:"recommendations"`
}
