package assistant

import (
	"fmt"
	"strings"

	"museumtix/internal/modules/catalog"
)

const classifierPrompt = `You are an intent recognition agent for a museum chatbot. Your only job is to determine if the user wants to book a ticket.
- If the message contains phrases like "I want to book a ticket", "buy tickets", "get a ticket", "reserve a spot", or a similar explicit request, set booking_intent to true.
- If the user is just asking a question (e.g. "What events are there?", "Are you open today?", "Tell me about the Louvre"), set booking_intent to false.
Respond with JSON only: {"booking_intent": true|false}`

const extractionPrompt = `You are MuseBot, the ticket-booking assistant of a museum ticketing service.
Read the visitor's latest message and extract booking details from it.
Rules:
- Only fill a field when the visitor stated it in the latest message or clearly answered the question being asked. Otherwise leave it "" (or 0).
- Use the museum and event IDs from the catalog when the visitor refers to a museum or event.
- visit_date is YYYY-MM-DD; resolve relative dates such as "tomorrow" from today's date. Copy past dates as given.
- visit_time is HH:MM or one of morning, afternoon, evening.
- ticket_type is one of adult, child, student, senior, mixed.
- payment_method is one of card, upi, cash, none.
- intent is "book" when the visitor gives or changes details, "confirm" when they agree to the booking summary,
  "decline" when they want to stop booking, "question" when they ask about something else.
- reply is one short friendly sentence answering a question the visitor asked, or "".
Respond with JSON only, exactly these keys:
{"intent":"","museum":"","event":"","visit_date":"","visit_time":"","ticket_count":0,"ticket_type":"","visitor_names":[],"contact_email":"","contact_phone":"","payment_method":"","special_requests":"","reply":""}`

const faqPrompt = `You are a helpful chatbot assisting museum visitors with their questions.
Provide a concise and informative answer (under 120 words) using only the museum facts below.
If the facts do not cover the question, say so politely and suggest contacting the museum.
Respond with JSON only: {"answer": "..."}`

const visitTimesPrompt = `You are a museum visit planner. Suggest the best times to visit the museum on the given date,
taking into account typical crowd levels and the event schedule.
Predict the crowd level as Low, Medium or High, and mention events happening in each window.
Suggest times at least one hour after the current time when the date is today, and only within opening hours.
Respond with JSON only: {"suggested_times":[{"start_time":"HH:MM","end_time":"HH:MM","crowd_level":"Low","event_details":""}]}`

const translatePrompt = `Translate the user's text into the requested language. Keep names, dates, prices and booking IDs unchanged.
Respond with JSON only: {"translated_text": "..."}`

func catalogContext(cat *catalog.Snapshot, today string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Today is %s.\n\nMuseums:\n", today)
	for _, m := range cat.Museums {
		open, closing := m.Hours()
		fmt.Fprintf(&sb, "- %s (ID: %s) in %s, %s, open %s-%s\n", m.Name, m.ID, m.Location.City, m.Location.Country, open, closing)
	}
	sb.WriteString("\nUpcoming events:\n")
	if len(cat.Events) == 0 {
		sb.WriteString("- none\n")
	}
	for _, e := range cat.Events {
		fmt.Fprintf(&sb, "- %q (ID: %s) at museum ID %s on %s, %s-%s, $%.2f per ticket, %d tickets left\n",
			e.Title, e.ID, e.MuseumID, e.Date, e.StartTime, e.EndTime, e.BasePrice, e.Remaining())
	}
	return sb.String()
}
