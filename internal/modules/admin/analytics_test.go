package admin

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"museumtix/internal/domain"
	"museumtix/internal/repository"
)

func TestParseRange(t *testing.T) {
	now := time.Date(2030, 3, 15, 18, 30, 0, 0, time.UTC)

	from, to, err := parseRange(AnalyticsQuery{}, now)
	require.NoError(t, err)
	assert.Equal(t, "2030-02-14", from.Format(domain.DateLayout))
	assert.Equal(t, "2030-03-16", to.Format(domain.DateLayout))

	from, to, err = parseRange(AnalyticsQuery{From: "2030-01-01", To: "2030-01-31"}, now)
	require.NoError(t, err)
	assert.Equal(t, 31*24*time.Hour, to.Sub(from))

	_, _, err = parseRange(AnalyticsQuery{From: "2030-02-01", To: "2030-01-01"}, now)
	assert.ErrorIs(t, err, ErrValidation)
	_, _, err = parseRange(AnalyticsQuery{From: "01/02/2030"}, now)
	assert.ErrorIs(t, err, ErrValidation)
	_, _, err = parseRange(AnalyticsQuery{From: "2020-01-01", To: "2030-01-01"}, now)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestComputeAnalytics(t *testing.T) {
	from := time.Date(2030, 3, 1, 0, 0, 0, 0, time.UTC) // Friday
	to := from.AddDate(0, 0, 3)
	at := func(day int) time.Time { return from.AddDate(0, 0, day).Add(10 * time.Hour) }

	bookings := []domain.Booking{
		{MuseumID: "m1", MuseumName: "Met", NumTickets: 2, PricePaid: 50, Status: domain.BookingPaid, CreatedAt: at(0), PromoCode: "spring20"},
		{MuseumID: "m1", MuseumName: "Met", NumTickets: 1, PricePaid: 25, Status: domain.BookingCheckedIn, CreatedAt: at(0)},
		{MuseumID: "m2", MuseumName: "Louvre", NumTickets: 4, PricePaid: 72, Status: domain.BookingPending, CreatedAt: at(1)},
		{MuseumID: "m2", MuseumName: "Louvre", NumTickets: 3, PricePaid: 54, Status: domain.BookingCancelled, CreatedAt: at(2), PromoCode: "SPRING20"},
	}
	events := []domain.Event{
		{ID: "e1", Title: "Egypt", Capacity: 200, BookedCount: 150},
		{ID: "e2", Title: "Mona Lisa", Capacity: 20, BookedCount: 19},
		{ID: "e3", Title: "Draft", Capacity: 0},
	}

	routes := []repository.RouteCount{{Route: "booking", Turns: 3}, {Route: "faq", Turns: 1}}

	a := computeAnalytics(bookings, events, routes, from, to)

	assert.Equal(t, "2030-03-01", a.From)
	assert.Equal(t, "2030-03-03", a.To)
	assert.Equal(t, 4, a.TotalBookings)
	assert.Equal(t, 7, a.TotalTickets)
	assert.Equal(t, 75.0, a.TotalRevenue)
	assert.Equal(t, 18.75, a.AvgRevenuePerBooking)
	assert.Equal(t, 1, a.AbandonedBookings)
	assert.Equal(t, 1, a.QRVerifications)
	assert.Equal(t, 1, a.StatusCounts[domain.BookingPending])

	require.Len(t, a.Daily, 3)
	assert.Equal(t, DailyStat{Date: "2030-03-01", Bookings: 2, Tickets: 3, Revenue: 75}, a.Daily[0])
	assert.Equal(t, DailyStat{Date: "2030-03-03", Bookings: 1}, a.Daily[2])

	require.Len(t, a.RevenueByMuseum, 2)
	assert.Equal(t, "Met", a.RevenueByMuseum[0].MuseumName)
	assert.Equal(t, 0.0, a.RevenueByMuseum[1].Revenue)

	assert.Equal(t, "Friday", a.PeakWeekday)
	assert.Equal(t, "Louvre", a.MostPopularMuseum)

	require.NotNil(t, a.TopEvent)
	assert.Equal(t, "e2", a.TopEvent.EventID)
	assert.Equal(t, 0.95, a.TopEvent.FillRate)

	assert.Equal(t, "10:00", a.PeakHour)
	assert.Equal(t, 0.25, a.CancellationRate)
	assert.Equal(t, []PromoStat{{Code: "SPRING20", Bookings: 2, Tickets: 2, Revenue: 50}}, a.Promotions)
	assert.Equal(t, []RouteStat{{Route: "booking", Turns: 3, Share: 0.75}, {Route: "faq", Turns: 1, Share: 0.25}}, a.Chatbot)
}

func TestComputeAnalytics_Empty(t *testing.T) {
	from := time.Date(2030, 3, 1, 0, 0, 0, 0, time.UTC)
	a := computeAnalytics(nil, nil, nil, from, from.AddDate(0, 0, 1))
	assert.Zero(t, a.TotalBookings)
	assert.Zero(t, a.CancellationRate)
	assert.Empty(t, a.PeakHour)
	assert.Empty(t, a.Promotions)
	assert.Empty(t, a.PeakWeekday)
	assert.Empty(t, a.MostPopularMuseum)
	assert.Nil(t, a.TopEvent)
	assert.Len(t, a.Daily, 1)
}
