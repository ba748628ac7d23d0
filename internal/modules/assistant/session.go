package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"museumtix/internal/domain"
	"museumtix/internal/repository"

	"github.com/google/uuid"
)

type Stage string

const (
	StageIdle                 Stage = "idle"
	StageCollecting           Stage = "collecting"
	StageReady                Stage = "ready_for_confirmation"
	StageAwaitingConfirmation Stage = "awaiting_confirmation"
	StageCompleted            Stage = "completed"
	StageAbandoned            Stage = "abandoned"
)

type Slot string

const (
	SlotMuseum       Slot = "museum"
	SlotEvent        Slot = "event"
	SlotVisitDate    Slot = "visit_date"
	SlotVisitTime    Slot = "visit_time"
	SlotTicketCount  Slot = "ticket_count"
	SlotTicketType   Slot = "ticket_type"
	SlotContactEmail Slot = "contact_email"
)

// requiredSlots are asked for in this order.
var requiredSlots = []Slot{
	SlotMuseum,
	SlotEvent,
	SlotVisitDate,
	SlotVisitTime,
	SlotTicketCount,
	SlotTicketType,
	SlotContactEmail,
}

// Draft is the booking request under construction. Every stored value has passed validation.
type Draft struct {
	MuseumID        string   `json:"museum_id,omitempty"`
	MuseumName      string   `json:"museum_name,omitempty"`
	EventID         string   `json:"event_id,omitempty"`
	EventTitle      string   `json:"event_title,omitempty"`
	VisitDate       string   `json:"visit_date,omitempty"`
	VisitTime       string   `json:"visit_time,omitempty"`
	TicketCount     int      `json:"ticket_count,omitempty"`
	TicketType      string   `json:"ticket_type,omitempty"`
	VisitorNames    []string `json:"visitor_names,omitempty"`
	ContactEmail    string   `json:"contact_email,omitempty"`
	ContactPhone    string   `json:"contact_phone,omitempty"`
	PaymentMethod   string   `json:"payment_method,omitempty"`
	SpecialRequests string   `json:"special_requests,omitempty"`
}

func (d *Draft) has(slot Slot) bool {
	switch slot {
	case SlotMuseum:
		return d.MuseumID != ""
	case SlotEvent:
		return d.EventID != ""
	case SlotVisitDate:
		return d.VisitDate != ""
	case SlotVisitTime:
		return d.VisitTime != ""
	case SlotTicketCount:
		return d.TicketCount > 0
	case SlotTicketType:
		return d.TicketType != ""
	case SlotContactEmail:
		return d.ContactEmail != ""
	}
	return false
}

// Missing returns the first required slot without a value, or "" when the draft is complete.
func (d *Draft) Missing() Slot {
	for _, slot := range requiredSlots {
		if !d.has(slot) {
			return slot
		}
	}
	return ""
}

func (d *Draft) clear(slot Slot) {
	switch slot {
	case SlotMuseum:
		d.MuseumID, d.MuseumName = "", ""
	case SlotEvent:
		d.EventID, d.EventTitle = "", ""
	case SlotVisitDate:
		d.VisitDate = ""
	case SlotVisitTime:
		d.VisitTime = ""
	case SlotTicketCount:
		d.TicketCount = 0
	case SlotTicketType:
		d.TicketType = ""
	case SlotContactEmail:
		d.ContactEmail = ""
	}
}

// Session is the explicit state of one user's conversation.
type Session struct {
	ID             string                       `json:"id"`
	UserID         string                       `json:"user_id"`
	Stage          Stage                        `json:"stage"`
	AwaitingSlot   Slot                         `json:"awaiting_slot,omitempty"`
	Draft          Draft                        `json:"draft"`
	IdempotencyKey string                       `json:"-"`
	BookingID      string                       `json:"booking_id,omitempty"`
	Confirmation   string                       `json:"confirmation,omitempty"`
	RepeatAnswered bool                         `json:"repeat_answered,omitempty"`
	LastError      string                       `json:"last_error,omitempty"`
	History        []domain.ConversationMessage `json:"history,omitempty"`
	UpdatedAt      time.Time                    `json:"updated_at"`
}

func newSession(userID string, now time.Time) *Session {
	id := uuid.NewString()
	return &Session{
		ID:             id,
		UserID:         userID,
		Stage:          StageIdle,
		IdempotencyKey: "chat-" + id,
		UpdatedAt:      now,
	}
}

// InBooking reports whether the conversation is in the middle of a booking.
func (s *Session) InBooking() bool {
	switch s.Stage {
	case StageCollecting, StageReady, StageAwaitingConfirmation:
		return true
	}
	return false
}

func (s *Session) remember(role domain.MessageRole, content string, limit int) {
	s.History = append(s.History, domain.ConversationMessage{Role: role, Content: content})
	if limit > 0 && len(s.History) > limit {
		s.History = append([]domain.ConversationMessage(nil), s.History[len(s.History)-limit:]...)
	}
}

// storedSession carries the idempotency key, which stays out of API responses.
type storedSession struct {
	Session
	Key string `json:"idempotency_key"`
}

// BlobStore keeps one opaque value per user.
type BlobStore interface {
	Get(ctx context.Context, userID string) ([]byte, error)
	Put(ctx context.Context, userID string, raw []byte) error
	Delete(ctx context.Context, userID string) error
}

// SessionStore persists sessions as JSON in a BlobStore.
type SessionStore struct {
	blobs BlobStore
}

func NewSessionStore(blobs BlobStore) *SessionStore {
	return &SessionStore{blobs: blobs}
}

// Load returns the stored session, or nil when there is none.
func (s *SessionStore) Load(ctx context.Context, userID string) (*Session, error) {
	raw, err := s.blobs.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	var st storedSession
	if err := json.Unmarshal(raw, &st); err != nil {
		log.Printf("assistant_session_corrupt user_id=%s error=%q", userID, err.Error())
		return nil, nil
	}
	sess := st.Session
	sess.IdempotencyKey = st.Key
	return &sess, nil
}

func (s *SessionStore) Save(ctx context.Context, sess *Session) error {
	raw, err := json.Marshal(storedSession{Session: *sess, Key: sess.IdempotencyKey})
	if err != nil {
		return err
	}
	return s.blobs.Put(ctx, sess.UserID, raw)
}

func (s *SessionStore) Delete(ctx context.Context, userID string) error {
	return s.blobs.Delete(ctx, userID)
}
