package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"museumtix/internal/domain"
)

// ToolInput is what the conversation hands over once a draft is confirmed.
type ToolInput struct {
	UserID          string
	MuseumID        string
	EventID         string
	NumTickets      int
	ContactEmail    string
	TicketType      string
	VisitorNames    []string
	SpecialRequests string
	IdempotencyKey  string
}

type ToolResult struct {
	Success             bool
	ConfirmationMessage string
	BookingID           string
}

// Tool is the create-booking capability exposed to the chat assistant.
// It never returns an error: every failure becomes a user-facing message.
type Tool struct {
	service *Service
}

func NewTool(service *Service) *Tool {
	return &Tool{service: service}
}

func (t *Tool) Invoke(ctx context.Context, in ToolInput) ToolResult {
	b, err := t.service.Book(ctx, BookRequest{
		UserID:          in.UserID,
		MuseumID:        in.MuseumID,
		EventID:         in.EventID,
		NumTickets:      in.NumTickets,
		ContactEmail:    in.ContactEmail,
		TicketType:      in.TicketType,
		VisitorNames:    in.VisitorNames,
		SpecialRequests: in.SpecialRequests,
		Source:          domain.SourceChat,
		IdempotencyKey:  in.IdempotencyKey,
	})
	if err != nil {
		return ToolResult{ConfirmationMessage: failureMessage(err)}
	}
	return ToolResult{
		Success:             true,
		BookingID:           b.ID,
		ConfirmationMessage: confirmationMessage(b),
	}
}

func confirmationMessage(b *domain.Booking) string {
	noun := "tickets"
	if b.NumTickets == 1 {
		noun = "ticket"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Your booking is confirmed! %d %s for %s at %s on %s",
		b.NumTickets, noun, b.EventTitle, b.MuseumName, b.EventDate)
	if b.Slot != "" && b.Slot != "-" {
		fmt.Fprintf(&sb, " (%s)", b.Slot)
	}
	fmt.Fprintf(&sb, ". Total: $%.2f %s. Booking ID: %s.", b.PricePaid, b.Currency, b.ID)
	if b.ContactEmail != "" {
		fmt.Fprintf(&sb, " A confirmation has been sent to %s.", b.ContactEmail)
	}
	sb.WriteString(" You can pay and download your ticket from My Bookings.")
	return sb.String()
}

func failureMessage(err error) string {
	switch {
	case errors.Is(err, ErrUnknownReference):
		return "Sorry, I couldn't find that museum or event, so no booking was made. Please pick one from the list."
	case errors.Is(err, ErrSoldOut):
		return "Sorry, there are not enough tickets left for that event, so no booking was made. Would you like fewer tickets or a different event?"
	case errors.Is(err, ErrValidation):
		msg := strings.TrimPrefix(err.Error(), ErrValidation.Error()+": ")
		return "Sorry, I couldn't make the booking: " + msg + "."
	}
	log.Printf("booking_tool_failed error=%q", err.Error())
	return "Sorry, something went wrong while saving your booking and nothing was booked. Please try again in a moment."
}
