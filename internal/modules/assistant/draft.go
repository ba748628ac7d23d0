package assistant

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"museumtix/internal/domain"
	"museumtix/internal/modules/catalog"
	"museumtix/internal/pkg/validator"
)

var ticketTypes = []string{"adult", "child", "student", "senior", "mixed"}

var paymentMethods = map[string]bool{"card": true, "upi": true, "cash": true, "none": true}

var dayParts = map[string]bool{"morning": true, "afternoon": true, "evening": true}

// count accepts 2, 2.0 or "2" from model output.
type count int

func (c *count) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(bytes.TrimSpace(b), `"`)
	if len(b) == 0 || string(b) == "null" {
		*c = 0
		return nil
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		// unparsable counts are treated as not given
		*c = 0
		return nil
	}
	if f != float64(int(f)) {
		*c = -1
		return nil
	}
	*c = count(int(f))
	return nil
}

// extraction is what the model reads out of one user message.
type extraction struct {
	Intent          string   `json:"intent"`
	Museum          string   `json:"museum"`
	Event           string   `json:"event"`
	VisitDate       string   `json:"visit_date"`
	VisitTime       string   `json:"visit_time"`
	TicketCount     count    `json:"ticket_count"`
	TicketType      string   `json:"ticket_type"`
	VisitorNames    []string `json:"visitor_names"`
	ContactEmail    string   `json:"contact_email"`
	ContactPhone    string   `json:"contact_phone"`
	PaymentMethod   string   `json:"payment_method"`
	SpecialRequests string   `json:"special_requests"`
	Reply           string   `json:"reply"`
}

func (x extraction) empty() bool {
	return x.Museum == "" && x.Event == "" && x.VisitDate == "" && x.VisitTime == "" &&
		x.TicketCount == 0 && x.TicketType == "" && len(x.VisitorNames) == 0 &&
		x.ContactEmail == "" && x.ContactPhone == "" && x.PaymentMethod == "" && x.SpecialRequests == ""
}

// slotError is a rejected value together with the corrective question to ask.
type slotError struct {
	Slot     Slot
	Question string
}

func (e *slotError) Error() string { return string(e.Slot) + ": " + e.Question }

// draftValidator checks slot values against the catalog independently of the model.
type draftValidator struct {
	cat   *catalog.Snapshot
	today string
}

func findMuseum(cat *catalog.Snapshot, ref string) *domain.Museum {
	ref = strings.TrimSpace(ref)
	if m := cat.Museum(ref); m != nil {
		return m
	}
	q := strings.ToLower(ref)
	for i := range cat.Museums {
		if strings.ToLower(cat.Museums[i].Name) == q {
			return &cat.Museums[i]
		}
	}
	if len(q) < 3 {
		return nil
	}
	var hit *domain.Museum
	for i := range cat.Museums {
		if strings.Contains(strings.ToLower(cat.Museums[i].Name), q) {
			if hit != nil {
				return nil
			}
			hit = &cat.Museums[i]
		}
	}
	return hit
}

func findEvent(cat *catalog.Snapshot, ref, museumID string) *domain.Event {
	ref = strings.TrimSpace(ref)
	if e := cat.Event(ref); e != nil {
		return e
	}
	q := strings.ToLower(ref)
	if len(q) < 3 {
		return nil
	}
	var hit *domain.Event
	for i := range cat.Events {
		e := &cat.Events[i]
		if museumID != "" && e.MuseumID != museumID {
			continue
		}
		title := strings.ToLower(e.Title)
		if title == q {
			return e
		}
		if strings.Contains(title, q) {
			if hit != nil {
				return nil
			}
			hit = e
		}
	}
	return hit
}

func museumOptions(cat *catalog.Snapshot) string {
	names := make([]string, 0, len(cat.Museums))
	for _, m := range cat.Museums {
		if m.Location.City != "" {
			names = append(names, fmt.Sprintf("%s (%s)", m.Name, m.Location.City))
		} else {
			names = append(names, m.Name)
		}
	}
	return strings.Join(names, ", ")
}

func eventOptions(events []domain.Event) string {
	parts := make([]string, 0, len(events))
	for _, e := range events {
		parts = append(parts, fmt.Sprintf("%s on %s", e.Title, e.Date))
	}
	return strings.Join(parts, "; ")
}

func normalizeTicketType(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimSuffix(s, "s")
	if s == "children" || s == "kid" {
		return "child"
	}
	for _, t := range ticketTypes {
		if s == t {
			return t
		}
	}
	return ""
}

// validTime accepts HH:MM or a part of the day.
func validTime(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if dayParts[s] {
		return s, true
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return "", false
	}
	return t.Format("15:04"), true
}

// question returns what to ask next for an empty slot.
func (v draftValidator) question(d *Draft, slot Slot) string {
	switch slot {
	case SlotMuseum:
		return "Which museum would you like to visit? We have: " + museumOptions(v.cat) + "."
	case SlotEvent:
		events := v.cat.EventsOf(d.MuseumID)
		return fmt.Sprintf("Which event at %s would you like to attend? Options: %s.", d.MuseumName, eventOptions(events))
	case SlotVisitDate:
		return "What date would you like to visit? Please use the format YYYY-MM-DD."
	case SlotVisitTime:
		if e := v.cat.Event(d.EventID); e != nil && e.StartTime != "" {
			return fmt.Sprintf("What time would you like to arrive? %s runs from %s to %s.", e.Title, e.StartTime, e.EndTime)
		}
		return "What time would you like to arrive? You can give a time like 11:00 or say morning, afternoon or evening."
	case SlotTicketCount:
		return "How many tickets would you like?"
	case SlotTicketType:
		return "Which ticket type would you like: adult, child, student, senior or mixed?"
	case SlotContactEmail:
		return "What email address should we send the confirmation to?"
	}
	return ""
}

// apply merges extracted values into d. Valid values are stored, invalid ones are
// dropped, and the first problem in slot order is returned.
func (v draftValidator) apply(d *Draft, x extraction) *slotError {
	var first *slotError
	note := func(e *slotError) {
		if first == nil {
			first = e
		}
	}

	if x.Museum != "" {
		if m := findMuseum(v.cat, x.Museum); m != nil {
			if m.ID != d.MuseumID {
				d.MuseumID, d.MuseumName = m.ID, m.Name
				if e := v.cat.Event(d.EventID); e == nil || e.MuseumID != m.ID {
					d.clear(SlotEvent)
					d.clear(SlotVisitDate)
					d.clear(SlotVisitTime)
				}
			}
		} else {
			note(&slotError{SlotMuseum, fmt.Sprintf("I couldn't find a museum called %q. We have: %s. Which one would you like?", x.Museum, museumOptions(v.cat))})
		}
	}

	if x.Event != "" {
		e := findEvent(v.cat, x.Event, "")
		switch {
		case e == nil:
			msg := fmt.Sprintf("I couldn't find an upcoming event called %q.", x.Event)
			if d.MuseumID != "" {
				msg += fmt.Sprintf(" Events at %s: %s.", d.MuseumName, eventOptions(v.cat.EventsOf(d.MuseumID)))
			}
			note(&slotError{SlotEvent, msg + " Which one would you like?"})
		case d.MuseumID != "" && e.MuseumID != d.MuseumID:
			note(&slotError{SlotEvent, fmt.Sprintf("%s is not held at %s. Events there: %s. Which one would you like?",
				e.Title, d.MuseumName, eventOptions(v.cat.EventsOf(d.MuseumID)))})
		default:
			if m := v.cat.Museum(e.MuseumID); m != nil {
				d.MuseumID, d.MuseumName = m.ID, m.Name
			}
			if e.ID != d.EventID {
				d.EventID, d.EventTitle = e.ID, e.Title
				d.VisitDate = e.Date
				d.clear(SlotVisitTime)
				if e.StartTime != "" {
					d.VisitTime = e.StartTime
				}
			}
		}
	}

	if x.VisitDate != "" {
		if err := v.checkDate(d, strings.TrimSpace(x.VisitDate)); err != nil {
			note(err)
		} else {
			d.VisitDate = strings.TrimSpace(x.VisitDate)
		}
	}

	if x.VisitTime != "" {
		if t, err := v.checkTime(d, x.VisitTime); err != nil {
			note(err)
		} else {
			d.VisitTime = t
		}
	}

	if x.TicketCount != 0 {
		if err := v.checkCount(d, int(x.TicketCount)); err != nil {
			note(err)
		} else {
			d.TicketCount = int(x.TicketCount)
		}
	}

	if x.TicketType != "" {
		if t := normalizeTicketType(x.TicketType); t != "" {
			d.TicketType = t
		} else {
			note(&slotError{SlotTicketType, fmt.Sprintf("%q is not a ticket type we offer. Please choose adult, child, student, senior or mixed.", x.TicketType)})
		}
	}

	if x.ContactEmail != "" {
		if email := strings.TrimSpace(x.ContactEmail); validator.IsEmail(email) {
			d.ContactEmail = email
		} else {
			note(&slotError{SlotContactEmail, fmt.Sprintf("%q doesn't look like a valid email address. Could you check it and send it again?", x.ContactEmail)})
		}
	}

	if len(x.VisitorNames) > 0 {
		names := make([]string, 0, len(x.VisitorNames))
		for _, n := range x.VisitorNames {
			if n = strings.TrimSpace(n); n != "" {
				names = append(names, n)
			}
		}
		d.VisitorNames = names
	}
	if p := strings.TrimSpace(x.ContactPhone); p != "" {
		d.ContactPhone = p
	}
	if pm := strings.ToLower(strings.TrimSpace(x.PaymentMethod)); paymentMethods[pm] {
		d.PaymentMethod = pm
	}
	if r := strings.TrimSpace(x.SpecialRequests); r != "" {
		d.SpecialRequests = r
	}

	return first
}

func (v draftValidator) checkDate(d *Draft, date string) *slotError {
	if _, err := time.Parse(domain.DateLayout, date); err != nil {
		return &slotError{SlotVisitDate, fmt.Sprintf("I couldn't read the date %q. Please give it as YYYY-MM-DD.", date)}
	}
	if date < v.today {
		return &slotError{SlotVisitDate, fmt.Sprintf("%s is in the past. Which upcoming date would you like to visit?", date)}
	}
	if e := v.cat.Event(d.EventID); e != nil && e.Date != date {
		return &slotError{SlotVisitDate, fmt.Sprintf("%s takes place on %s. Would you like to visit on that date, or choose another event?", e.Title, e.Date)}
	}
	return nil
}

func (v draftValidator) checkTime(d *Draft, raw string) (string, *slotError) {
	t, ok := validTime(raw)
	if !ok {
		return "", &slotError{SlotVisitTime, fmt.Sprintf("I couldn't understand the time %q. Please give it like 11:00, or say morning, afternoon or evening.", raw)}
	}
	if e := v.cat.Event(d.EventID); e != nil && !dayParts[t] && e.StartTime != "" && e.EndTime != "" {
		if t < e.StartTime || t >= e.EndTime {
			return "", &slotError{SlotVisitTime, fmt.Sprintf("%s runs from %s to %s. What time within those hours would you like?", e.Title, e.StartTime, e.EndTime)}
		}
	}
	return t, nil
}

func (v draftValidator) checkCount(d *Draft, n int) *slotError {
	if n < 1 {
		return &slotError{SlotTicketCount, "The number of tickets must be a whole number of at least 1. How many tickets would you like?"}
	}
	if e := v.cat.Event(d.EventID); e != nil && n > e.Remaining() {
		return &slotError{SlotTicketCount, fmt.Sprintf("Only %d tickets are left for %s. How many would you like?", e.Remaining(), e.Title)}
	}
	return nil
}

// revalidate re-checks every stored slot against the current catalog and clears
// values that are no longer consistent.
func (v draftValidator) revalidate(d *Draft) *slotError {
	if d.MuseumID != "" && v.cat.Museum(d.MuseumID) == nil {
		d.clear(SlotMuseum)
		d.clear(SlotEvent)
		return &slotError{SlotMuseum, "That museum is no longer available. Which museum would you like to visit? We have: " + museumOptions(v.cat) + "."}
	}
	if d.MuseumID != "" && d.EventID == "" && len(v.cat.EventsOf(d.MuseumID)) == 0 {
		name := d.MuseumName
		d.clear(SlotMuseum)
		return &slotError{SlotMuseum, fmt.Sprintf("There are no upcoming events at %s right now. Which other museum would you like? We have: %s.", name, museumOptions(v.cat))}
	}
	if d.EventID != "" {
		e := v.cat.Event(d.EventID)
		if e == nil || e.MuseumID != d.MuseumID {
			d.clear(SlotEvent)
			d.clear(SlotVisitDate)
			return &slotError{SlotEvent, fmt.Sprintf("That event is no longer available. Events at %s: %s. Which one would you like?", d.MuseumName, eventOptions(v.cat.EventsOf(d.MuseumID)))}
		}
	}
	if d.VisitDate != "" {
		if err := v.checkDate(d, d.VisitDate); err != nil {
			d.clear(SlotVisitDate)
			return err
		}
	}
	if d.TicketCount > 0 {
		if err := v.checkCount(d, d.TicketCount); err != nil {
			d.clear(SlotTicketCount)
			return err
		}
	}
	return nil
}

// total is basePrice x ticket count of the chosen event.
func (v draftValidator) total(d *Draft) float64 {
	e := v.cat.Event(d.EventID)
	if e == nil {
		return 0
	}
	return e.BasePrice * float64(d.TicketCount)
}

func (v draftValidator) summary(d *Draft) string {
	var sb strings.Builder
	sb.WriteString("Here is your booking summary:\n")
	fmt.Fprintf(&sb, "- Museum: %s\n", d.MuseumName)
	fmt.Fprintf(&sb, "- Event: %s\n", d.EventTitle)
	fmt.Fprintf(&sb, "- Date: %s at %s\n", d.VisitDate, d.VisitTime)
	fmt.Fprintf(&sb, "- Tickets: %d x %s\n", d.TicketCount, d.TicketType)
	if len(d.VisitorNames) > 0 {
		fmt.Fprintf(&sb, "- Visitors: %s\n", strings.Join(d.VisitorNames, ", "))
	}
	fmt.Fprintf(&sb, "- Contact: %s\n", d.ContactEmail)
	if d.SpecialRequests != "" {
		fmt.Fprintf(&sb, "- Special requests: %s\n", d.SpecialRequests)
	}
	fmt.Fprintf(&sb, "- Total: $%.2f %s\n", v.total(d), domain.DefaultCurrency)
	sb.WriteString("Shall I confirm this booking now?")
	return sb.String()
}

func draftJSON(d *Draft) string {
	raw, _ := json.Marshal(d)
	return string(raw)
}
