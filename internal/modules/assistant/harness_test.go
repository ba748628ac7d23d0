package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"museumtix/internal/database"
	"museumtix/internal/domain"
	"museumtix/internal/modules/booking"
	"museumtix/internal/modules/catalog"
	"museumtix/internal/pkg/llm"
	"museumtix/internal/pkg/ticket"
	"museumtix/internal/repository"
)

// scriptedModel answers each kind of prompt from its own queue.
type scriptedModel struct {
	mu      sync.Mutex
	replies map[string][]string
	fail    map[string]error
	calls   map[string]int
	block   bool
}

func newScriptedModel() *scriptedModel {
	return &scriptedModel{replies: map[string][]string{}, fail: map[string]error{}, calls: map[string]int{}}
}

func promptKind(system string) string {
	switch {
	case strings.HasPrefix(system, classifierPrompt):
		return "classify"
	case strings.HasPrefix(system, extractionPrompt):
		return "extract"
	case strings.HasPrefix(system, faqPrompt):
		return "faq"
	case strings.HasPrefix(system, visitTimesPrompt):
		return "visit"
	case strings.HasPrefix(system, translatePrompt):
		return "translate"
	}
	return "unknown"
}

func (m *scriptedModel) on(kind string, replies ...string) *scriptedModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies[kind] = append(m.replies[kind], replies...)
	return m
}

func (m *scriptedModel) count(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[kind]
}

func (m *scriptedModel) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	kind := promptKind(req.System)
	m.mu.Lock()
	m.calls[kind]++
	block := m.block
	err := m.fail[kind]
	queue := m.replies[kind]
	var text string
	if len(queue) > 0 {
		text, m.replies[kind] = queue[0], queue[1:]
	}
	m.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	if text == "" && len(queue) == 0 {
		return nil, fmt.Errorf("unexpected %s call", kind)
	}
	return &llm.Response{Text: text}, nil
}

// countingTool records hand-offs to the booking tool.
type countingTool struct {
	mu    sync.Mutex
	next  BookingTool
	calls []booking.ToolInput
}

func (t *countingTool) Invoke(ctx context.Context, in booking.ToolInput) booking.ToolResult {
	t.mu.Lock()
	t.calls = append(t.calls, in)
	t.mu.Unlock()
	return t.next.Invoke(ctx, in)
}

func (t *countingTool) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.calls)
}

type failingLog struct{}

func (failingLog) Append(context.Context, *domain.ChatLogEntry) error {
	return errors.New("log store down")
}

func (failingLog) Recent(context.Context, string, int) ([]domain.ChatLogEntry, error) {
	return nil, errors.New("log store down")
}

type harness struct {
	db       *gorm.DB
	model    *scriptedModel
	tool     *countingTool
	sessions *SessionStore
	svc      *Service
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	require.NoError(t, db.Create(&domain.Museum{ID: "museum-1", Name: "The Metropolitan Museum of Art",
		Location:  domain.Location{City: "New York", Country: "USA"},
		OpenHours: []domain.OpenHours{{Day: "Mon-Sun", Open: "10:00", Close: "17:00"}}}).Error)
	require.NoError(t, db.Create(&domain.Museum{ID: "museum-2", Name: "Louvre Museum",
		Location: domain.Location{City: "Paris", Country: "France"}}).Error)
	require.NoError(t, db.Create(&domain.Event{ID: "event-1", MuseumID: "museum-1", Title: "Ancient Egypt: Art and Magic",
		Date: "2099-06-01", StartTime: "10:00", EndTime: "17:00", Capacity: 200, BookedCount: 150, BasePrice: 25}).Error)
	require.NoError(t, db.Create(&domain.Event{ID: "event-2", MuseumID: "museum-2", Title: "Mona Lisa Up Close",
		Date: "2099-07-01", StartTime: "09:00", EndTime: "12:00", Capacity: 20, BookedCount: 19, BasePrice: 18}).Error)

	museums := repository.NewMuseumRepository(db)
	events := repository.NewEventRepository(db)
	bookingSvc := booking.NewService(repository.NewBookingRepository(db), museums, events, nil, nil, ticket.NewSigner("test"))

	h := &harness{
		db:       db,
		model:    newScriptedModel(),
		tool:     &countingTool{next: booking.NewTool(bookingSvc)},
		sessions: NewSessionStore(repository.NewMemorySessionStore(time.Hour)),
	}
	h.svc = NewService(h.model, catalog.NewService(museums, events), h.tool, h.sessions,
		repository.NewGormChatLogRepository(db), Options{ModelTimeout: time.Second})
	h.svc.now = func() time.Time { return time.Date(2030, 1, 10, 9, 0, 0, 0, time.UTC) }
	return h
}

func (h *harness) say(t *testing.T, msg string) *TurnResult {
	t.Helper()
	res, err := h.svc.HandleTurn(context.Background(), TurnRequest{UserID: "u1", Email: "ann@example.com", Message: msg})
	require.NoError(t, err)
	return res
}

func (h *harness) bookings(t *testing.T) []domain.Booking {
	t.Helper()
	var out []domain.Booking
	require.NoError(t, h.db.Find(&out).Error)
	return out
}

func (h *harness) session(t *testing.T) *Session {
	t.Helper()
	sess, err := h.sessions.Load(context.Background(), "u1")
	require.NoError(t, err)
	return sess
}
