package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"
	"time"

	"museumtix/internal/domain"
	"museumtix/internal/pkg/llm"
	"museumtix/internal/repository"
)

const (
	defaultAnalyticsDays = 30
	maxAnalyticsDays     = 366
	maxSuggestions       = 5
	maxRecommendations   = 5
)

const suggestionsPrompt = `You advise the operations team of a museum ticketing platform.
You receive a JSON summary of recent booking analytics.
Reply with JSON only: {"suggestions": [{"title": "...", "suggestion": "..."}]} containing 3 to 5
suggestions to improve revenue or visitor engagement. Each title is short and catchy; each
suggestion is one or two sentences describing a concrete action.
Refer to museums and events by name and base every suggestion on the numbers given.
Example: {"title": "Weekend Flash Sale", "suggestion": "Saturday is the busiest day, so run a
Tuesday flash sale on weekend tickets to pull bookings earlier in the week."}`

const summaryPrompt = `You are the analytics and operations engine of a museum ticketing platform,
acting as a museum business strategist and data scientist.
You receive a JSON summary of the booking analytics for one period.
Reply with JSON only, in this shape:
{"executive_summary": "3 to 6 sentences on the most important insights",
 "key_problem": "one sentence naming the single biggest problem in the data",
 "top_opportunity": "one sentence naming the single biggest growth opportunity",
 "recommendations": [{"type": "staffing|marketing|pricing|event|cx|infrastructure",
   "title": "...", "description": "...", "reason": "...",
   "expected_impact": "low|medium|high", "confidence": 0.0}]}
Give at most 5 recommendations, most important first. Confidence is between 0 and 1.
Base every statement on the numbers given and do not invent figures.`

var recommendationTypes = map[string]bool{
	"staffing": true, "marketing": true, "pricing": true, "event": true, "cx": true, "infrastructure": true,
}

var impactLevels = map[string]bool{"low": true, "medium": true, "high": true}

// parseRange returns [from, to) in UTC. Both bounds are inclusive days in the query.
func parseRange(q AnalyticsQuery, now time.Time) (time.Time, time.Time, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	to := today
	if q.To != "" {
		t, err := time.Parse(domain.DateLayout, q.To)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: to must be YYYY-MM-DD", ErrValidation)
		}
		to = t
	}
	from := to.AddDate(0, 0, -(defaultAnalyticsDays - 1))
	if q.From != "" {
		t, err := time.Parse(domain.DateLayout, q.From)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: from must be YYYY-MM-DD", ErrValidation)
		}
		from = t
	}
	if from.After(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: from is after to", ErrValidation)
	}
	if to.Sub(from) > maxAnalyticsDays*24*time.Hour {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: range exceeds %d days", ErrValidation, maxAnalyticsDays)
	}
	return from, to.AddDate(0, 0, 1), nil
}

func (s *Service) Analytics(ctx context.Context, q AnalyticsQuery) (*Analytics, error) {
	from, to, err := parseRange(q, s.now().UTC())
	if err != nil {
		return nil, err
	}
	bookings, err := s.bookings.List(ctx, repository.BookingFilter{From: from, To: to})
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	events, err := s.events.List(ctx, repository.EventFilter{})
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	var routes []repository.RouteCount
	if s.chatLogs != nil {
		routes, err = s.chatLogs.RouteCounts(ctx, from, to)
		if err != nil {
			log.Printf("admin_chat_stats_failed error=%q", err.Error())
			routes = nil
		}
	}
	return computeAnalytics(bookings, events, routes, from, to), nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

func ratio(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(n)/float64(total)*1000) / 1000
}

func earnsRevenue(st domain.BookingStatus) bool {
	return st == domain.BookingPaid || st == domain.BookingCheckedIn
}

func computeAnalytics(bookings []domain.Booking, events []domain.Event, routes []repository.RouteCount, from, to time.Time) *Analytics {
	a := &Analytics{
		From:         from.Format(domain.DateLayout),
		To:           to.AddDate(0, 0, -1).Format(domain.DateLayout),
		StatusCounts: map[domain.BookingStatus]int{},
	}

	daily := map[string]*DailyStat{}
	var days []string
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		key := d.Format(domain.DateLayout)
		daily[key] = &DailyStat{Date: key}
		days = append(days, key)
	}

	museums := map[string]*MuseumRevenue{}
	museumTickets := map[string]int{}
	promos := map[string]*PromoStat{}
	var weekdays [7]int
	var hours [24]int

	for _, b := range bookings {
		a.TotalBookings++
		a.StatusCounts[b.Status]++

		day := daily[b.CreatedAt.UTC().Format(domain.DateLayout)]
		if day != nil {
			day.Bookings++
		}

		mr := museums[b.MuseumID]
		if mr == nil {
			mr = &MuseumRevenue{MuseumID: b.MuseumID, MuseumName: b.MuseumName}
			museums[b.MuseumID] = mr
		}
		mr.Bookings++

		var ps *PromoStat
		if code := strings.ToUpper(strings.TrimSpace(b.PromoCode)); code != "" {
			ps = promos[code]
			if ps == nil {
				ps = &PromoStat{Code: code}
				promos[code] = ps
			}
			ps.Bookings++
		}

		if b.Status != domain.BookingCancelled {
			a.TotalTickets += b.NumTickets
			museumTickets[b.MuseumID] += b.NumTickets
			weekdays[b.CreatedAt.UTC().Weekday()]++
			hours[b.CreatedAt.UTC().Hour()]++
			if day != nil {
				day.Tickets += b.NumTickets
			}
			if ps != nil {
				ps.Tickets += b.NumTickets
			}
		}
		if earnsRevenue(b.Status) {
			a.TotalRevenue += b.PricePaid
			mr.Revenue += b.PricePaid
			if day != nil {
				day.Revenue += b.PricePaid
			}
			if ps != nil {
				ps.Revenue += b.PricePaid
			}
		}
	}

	a.TotalRevenue = roundCents(a.TotalRevenue)
	if a.TotalBookings > 0 {
		a.AvgRevenuePerBooking = roundCents(a.TotalRevenue / float64(a.TotalBookings))
	}
	a.AbandonedBookings = a.StatusCounts[domain.BookingCancelled]
	a.QRVerifications = a.StatusCounts[domain.BookingCheckedIn]
	a.CancellationRate = ratio(a.AbandonedBookings, a.TotalBookings)

	a.Daily = make([]DailyStat, 0, len(days))
	for _, key := range days {
		d := daily[key]
		d.Revenue = roundCents(d.Revenue)
		a.Daily = append(a.Daily, *d)
	}

	a.RevenueByMuseum = make([]MuseumRevenue, 0, len(museums))
	for _, mr := range museums {
		mr.Revenue = roundCents(mr.Revenue)
		a.RevenueByMuseum = append(a.RevenueByMuseum, *mr)
	}
	sort.Slice(a.RevenueByMuseum, func(i, j int) bool {
		x, y := a.RevenueByMuseum[i], a.RevenueByMuseum[j]
		if x.Revenue != y.Revenue {
			return x.Revenue > y.Revenue
		}
		return x.MuseumName < y.MuseumName
	})

	peak := -1
	for wd, n := range weekdays {
		if n > 0 && (peak < 0 || n > weekdays[peak]) {
			peak = wd
		}
	}
	if peak >= 0 {
		a.PeakWeekday = time.Weekday(peak).String()
	}

	peakHour := -1
	for h, n := range hours {
		if n > 0 && (peakHour < 0 || n > hours[peakHour]) {
			peakHour = h
		}
	}
	if peakHour >= 0 {
		a.PeakHour = fmt.Sprintf("%02d:00", peakHour)
	}

	a.Promotions = make([]PromoStat, 0, len(promos))
	for _, ps := range promos {
		ps.Revenue = roundCents(ps.Revenue)
		a.Promotions = append(a.Promotions, *ps)
	}
	sort.Slice(a.Promotions, func(i, j int) bool {
		x, y := a.Promotions[i], a.Promotions[j]
		if x.Bookings != y.Bookings {
			return x.Bookings > y.Bookings
		}
		return x.Code < y.Code
	})

	turns := 0
	for _, rc := range routes {
		turns += rc.Turns
	}
	a.Chatbot = make([]RouteStat, 0, len(routes))
	for _, rc := range routes {
		a.Chatbot = append(a.Chatbot, RouteStat{Route: rc.Route, Turns: rc.Turns, Share: ratio(rc.Turns, turns)})
	}

	best, bestTickets := "", 0
	for id, n := range museumTickets {
		name := museums[id].MuseumName
		if n > bestTickets || (n == bestTickets && name < best) {
			best, bestTickets = name, n
		}
	}
	a.MostPopularMuseum = best

	for _, e := range events {
		if e.Capacity <= 0 {
			continue
		}
		rate := math.Round(float64(e.BookedCount)/float64(e.Capacity)*1000) / 1000
		if a.TopEvent == nil || rate > a.TopEvent.FillRate {
			a.TopEvent = &EventFill{
				EventID:     e.ID,
				Title:       e.Title,
				Capacity:    e.Capacity,
				BookedCount: e.BookedCount,
				FillRate:    rate,
			}
		}
	}
	return a
}

func (s *Service) askModel(ctx context.Context, system string, a *Analytics, out any) error {
	summary, err := json.Marshal(a)
	if err != nil {
		return err
	}
	resp, err := s.model.Complete(ctx, llm.Request{
		System:      system,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: string(summary)}},
		JSON:        true,
		MaxTokens:   1500,
		Temperature: 0.4,
	})
	if err != nil {
		log.Printf("admin_model_failed error=%q", err.Error())
		return ErrAssistantUnavailable
	}
	if err := llm.DecodeJSON(resp.Text, out); err != nil {
		log.Printf("admin_model_unparsable error=%q", err.Error())
		return ErrAssistantUnavailable
	}
	return nil
}

// Suggestions asks the language model for improvement ideas based on the analytics.
func (s *Service) Suggestions(ctx context.Context, q AnalyticsQuery) ([]Suggestion, error) {
	a, err := s.Analytics(ctx, q)
	if err != nil {
		return nil, err
	}
	var out struct {
		Suggestions []Suggestion `json:"suggestions"`
	}
	if err := s.askModel(ctx, suggestionsPrompt, a, &out); err != nil {
		return nil, err
	}

	list := make([]Suggestion, 0, maxSuggestions)
	for _, item := range out.Suggestions {
		item.Title = strings.TrimSpace(item.Title)
		item.Suggestion = strings.TrimSpace(item.Suggestion)
		if item.Title == "" || item.Suggestion == "" {
			continue
		}
		if list = append(list, item); len(list) == maxSuggestions {
			break
		}
	}
	if len(list) == 0 {
		return nil, ErrAssistantUnavailable
	}
	return list, nil
}

// Summary builds the executive report for the period: the computed analytics
// plus the model's summary, key problem, opportunity and recommendations.
func (s *Service) Summary(ctx context.Context, q AnalyticsQuery) (*Report, error) {
	a, err := s.Analytics(ctx, q)
	if err != nil {
		return nil, err
	}
	var out struct {
		ExecutiveSummary string           `json:"executive_summary"`
		KeyProblem       string           `json:"key_problem"`
		TopOpportunity   string           `json:"top_opportunity"`
		Recommendations  []Recommendation `json:"recommendations"`
	}
	if err := s.askModel(ctx, summaryPrompt, a, &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.ExecutiveSummary) == "" {
		return nil, ErrAssistantUnavailable
	}

	report := &Report{
		Meta:             ReportMeta{PeriodStart: a.From, PeriodEnd: a.To, GeneratedAt: s.now().UTC()},
		Summary:          a,
		ExecutiveSummary: strings.TrimSpace(out.ExecutiveSummary),
		KeyProblem:       strings.TrimSpace(out.KeyProblem),
		TopOpportunity:   strings.TrimSpace(out.TopOpportunity),
		Recommendations:  make([]Recommendation, 0, maxRecommendations),
	}
	for _, r := range out.Recommendations {
		r.Type = strings.ToLower(strings.TrimSpace(r.Type))
		r.ExpectedImpact = strings.ToLower(strings.TrimSpace(r.ExpectedImpact))
		r.Title = strings.TrimSpace(r.Title)
		if r.Title == "" || !recommendationTypes[r.Type] {
			continue
		}
		if !impactLevels[r.ExpectedImpact] {
			r.ExpectedImpact = "medium"
		}
		r.Confidence = math.Max(0, math.Min(1, r.Confidence))
		r.ID = fmt.Sprintf("rec-%d", len(report.Recommendations)+1)
		report.Recommendations = append(report.Recommendations, r)
		if len(report.Recommendations) == maxRecommendations {
			break
		}
	}
	return report, nil
}
