package assistant

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"museumtix/internal/domain"
	"museumtix/internal/modules/booking"
	"museumtix/internal/modules/catalog"
	"museumtix/internal/pkg/llm"
	"museumtix/internal/pkg/validator"
)

const (
	maxMessageLength    = 2000
	defaultModelTimeout = 20 * time.Second
	defaultHistoryLimit = 20
	chatLogTimeout      = 5 * time.Second
	maxHistoryPage      = 100
	// modelHistory is how many past messages the model sees.
	modelHistory = 8
)

type Options struct {
	ModelTimeout time.Duration
	HistoryLimit int
}

type Service struct {
	model    llm.Client
	catalog  CatalogSource
	tool     BookingTool
	sessions *SessionStore
	chatLog  ChatLog
	locks    *userLocks
	opts     Options
	now      func() time.Time
}

func NewService(
	model llm.Client,
	catalog CatalogSource,
	tool BookingTool,
	sessions *SessionStore,
	chatLog ChatLog,
	opts Options,
) *Service {
	if opts.ModelTimeout <= 0 {
		opts.ModelTimeout = defaultModelTimeout
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = defaultHistoryLimit
	}
	return &Service{
		model:    model,
		catalog:  catalog,
		tool:     tool,
		sessions: sessions,
		chatLog:  chatLog,
		locks:    newUserLocks(),
		opts:     opts,
		now:      time.Now,
	}
}

// turn carries the state of one HandleTurn call.
type turn struct {
	req   TurnRequest
	msg   string
	sess  *Session
	cat   *catalog.Snapshot
	check draftValidator
}

// HandleTurn answers one user message. Turns of the same user run one at a time.
// Model failures produce an apology and leave the stored session untouched.
func (s *Service) HandleTurn(ctx context.Context, req TurnRequest) (*TurnResult, error) {
	msg := strings.TrimSpace(req.Message)
	if req.UserID == "" || msg == "" {
		return nil, fmt.Errorf("%w: message is required", ErrValidation)
	}
	if len(msg) > maxMessageLength {
		return nil, fmt.Errorf("%w: message is longer than %d characters", ErrValidation, maxMessageLength)
	}

	unlock := s.locks.lock(req.UserID)
	defer unlock()

	res, save, t := s.run(ctx, req, msg)
	if save {
		t.sess.remember(domain.RoleUserMessage, msg, s.opts.HistoryLimit)
		t.sess.remember(domain.RoleBotMessage, res.Reply, s.opts.HistoryLimit)
		t.sess.UpdatedAt = s.now().UTC()
		if err := s.sessions.Save(ctx, t.sess); err != nil {
			log.Printf("assistant_session_save_failed user_id=%s error=%q", req.UserID, err.Error())
			res = s.fallback(t.sess)
		}
	}
	s.appendLog(req.UserID, msg, res)
	return res, nil
}

func (s *Service) run(ctx context.Context, req TurnRequest, msg string) (*TurnResult, bool, *turn) {
	now := s.now().UTC()
	t := &turn{req: req, msg: msg}

	sess, err := s.sessions.Load(ctx, req.UserID)
	if err != nil {
		log.Printf("assistant_session_load_failed user_id=%s error=%q", req.UserID, err.Error())
		t.sess = newSession(req.UserID, now)
		return s.fallback(t.sess), false, t
	}
	if sess == nil {
		sess = newSession(req.UserID, now)
		sess.History = seedHistory(req.History, s.opts.HistoryLimit)
	}
	t.sess = sess

	switch sess.Stage {
	case StageCompleted:
		// only the first bare "yes" after a booking is treated as a repeat
		if !sess.RepeatAnswered && isBareConfirmation(msg) {
			sess.RepeatAnswered = true
			return s.alreadyConfirmed(sess), true, t
		}
		t.sess = restart(sess, now)
	case StageAbandoned:
		t.sess = restart(sess, now)
	}

	cat, err := s.catalog.Snapshot(ctx)
	if err != nil {
		log.Printf("assistant_catalog_failed error=%q", err.Error())
		return s.fallback(t.sess), false, t
	}
	t.cat = cat
	t.check = draftValidator{cat: cat, today: now.Format(domain.DateLayout)}

	if !t.sess.InBooking() {
		wantsBooking, err := s.classify(ctx, msg)
		if err != nil {
			log.Printf("assistant_classifier_failed user_id=%s error=%q", req.UserID, err.Error())
			return s.fallback(t.sess), false, t
		}
		if !wantsBooking {
			res, ok := s.answerFAQ(ctx, t)
			if !ok {
				return s.fallback(t.sess), false, t
			}
			return res, true, t
		}
	}

	res, ok := s.bookingTurn(ctx, t)
	if !ok {
		return s.fallback(t.sess), false, t
	}
	return res, true, t
}

// restart begins a fresh conversation cycle, keeping the transcript.
func restart(prev *Session, now time.Time) *Session {
	next := newSession(prev.UserID, now)
	next.History = prev.History
	return next
}

func seedHistory(history []domain.ConversationMessage, limit int) []domain.ConversationMessage {
	if len(history) > limit {
		history = history[len(history)-limit:]
	}
	return append([]domain.ConversationMessage(nil), history...)
}

func (s *Service) fallback(sess *Session) *TurnResult {
	return &TurnResult{
		Reply:        apologyMessage,
		Route:        RouteFallback,
		Stage:        sess.Stage,
		AwaitingSlot: sess.AwaitingSlot,
	}
}

func (s *Service) alreadyConfirmed(sess *Session) *TurnResult {
	d := sess.Draft
	return &TurnResult{
		Reply: fmt.Sprintf("Your booking is already confirmed (booking ID: %s), so I haven't made another one. Is there anything else I can help you with?",
			sess.BookingID),
		Route:     RouteBooking,
		Stage:     sess.Stage,
		Draft:     &d,
		BookingID: sess.BookingID,
	}
}

func (s *Service) result(t *turn, reply string) *TurnResult {
	res := &TurnResult{
		Reply:          reply,
		Route:          RouteBooking,
		Stage:          t.sess.Stage,
		AwaitingSlot:   t.sess.AwaitingSlot,
		IsBookingReady: t.sess.Stage == StageReady,
		BookingID:      t.sess.BookingID,
	}
	if t.sess.Stage == StageReady || t.sess.Stage == StageCompleted {
		d := t.sess.Draft
		res.Draft = &d
	}
	return res
}

// bookingTurn advances the slot-filling state machine by one message.
// ok is false when the model could not be used.
func (s *Service) bookingTurn(ctx context.Context, t *turn) (*TurnResult, bool) {
	sess := t.sess
	if sess.Stage == StageIdle {
		sess.Stage = StageCollecting
		if email := strings.TrimSpace(t.req.Email); email != "" && validator.IsEmail(email) {
			sess.Draft.ContactEmail = email
		}
	}

	if isNegative(t.msg) {
		return s.abandon(t), true
	}
	confirming := sess.Stage == StageReady || sess.Stage == StageAwaitingConfirmation
	if confirming && isAffirmative(t.msg) {
		return s.confirm(ctx, t), true
	}

	x, err := s.extract(ctx, t)
	if err != nil {
		log.Printf("assistant_extract_failed user_id=%s error=%q", sess.UserID, err.Error())
		return nil, false
	}
	switch strings.ToLower(x.Intent) {
	case "decline":
		if x.empty() {
			return s.abandon(t), true
		}
	case "confirm":
		if confirming && x.empty() {
			return s.confirm(ctx, t), true
		}
	}

	problem := t.check.apply(&sess.Draft, x)
	if p := t.check.revalidate(&sess.Draft); problem == nil {
		problem = p
	}

	if problem != nil {
		sess.Stage = StageCollecting
		sess.AwaitingSlot = problem.Slot
		return s.result(t, problem.Question), true
	}
	if missing := sess.Draft.Missing(); missing != "" {
		sess.Stage = StageCollecting
		sess.AwaitingSlot = missing
		reply := t.check.question(&sess.Draft, missing)
		if x.empty() && strings.TrimSpace(x.Reply) != "" {
			reply = strings.TrimSpace(x.Reply) + "\n\n" + reply
		}
		return s.result(t, reply), true
	}

	sess.Stage = StageReady
	sess.AwaitingSlot = ""
	return s.result(t, t.check.summary(&sess.Draft)), true
}

func (s *Service) abandon(t *turn) *TurnResult {
	t.sess.Stage = StageAbandoned
	t.sess.AwaitingSlot = ""
	t.sess.Draft = Draft{}
	return s.result(t, abandonedMessage)
}

// confirm hands the draft to the booking tool. The session key makes a repeated
// hand-off return the booking created the first time.
func (s *Service) confirm(ctx context.Context, t *turn) *TurnResult {
	sess := t.sess
	if problem := t.check.revalidate(&sess.Draft); problem != nil {
		sess.Stage = StageCollecting
		sess.AwaitingSlot = problem.Slot
		return s.result(t, problem.Question)
	}
	if missing := sess.Draft.Missing(); missing != "" {
		sess.Stage = StageCollecting
		sess.AwaitingSlot = missing
		return s.result(t, t.check.question(&sess.Draft, missing))
	}

	sess.Stage = StageAwaitingConfirmation
	sess.UpdatedAt = s.now().UTC()
	if err := s.sessions.Save(ctx, sess); err != nil {
		log.Printf("assistant_session_save_failed user_id=%s error=%q", sess.UserID, err.Error())
	}

	d := sess.Draft
	out := s.tool.Invoke(ctx, booking.ToolInput{
		UserID:          sess.UserID,
		MuseumID:        d.MuseumID,
		EventID:         d.EventID,
		NumTickets:      d.TicketCount,
		ContactEmail:    d.ContactEmail,
		TicketType:      d.TicketType,
		VisitorNames:    d.VisitorNames,
		SpecialRequests: d.SpecialRequests,
		IdempotencyKey:  sess.IdempotencyKey,
	})
	if !out.Success {
		sess.Stage = StageReady
		sess.LastError = out.ConfirmationMessage
		return s.result(t, out.ConfirmationMessage)
	}

	sess.Stage = StageCompleted
	sess.BookingID = out.BookingID
	sess.Confirmation = out.ConfirmationMessage
	sess.LastError = ""
	res := s.result(t, out.ConfirmationMessage)
	res.IsBookingComplete = true
	return res
}

func (s *Service) answerFAQ(ctx context.Context, t *turn) (*TurnResult, bool) {
	var out struct {
		Answer string `json:"answer"`
	}
	err := s.completeJSON(ctx, llm.Request{
		System:      faqPrompt + "\n\n" + catalogContext(t.cat, t.check.today),
		Messages:    s.conversation(t.sess, t.msg),
		JSON:        true,
		MaxTokens:   600,
		Temperature: 0.3,
	}, &out)
	if err != nil {
		log.Printf("assistant_faq_failed user_id=%s error=%q", t.sess.UserID, err.Error())
		return nil, false
	}
	reply := strings.TrimSpace(out.Answer)
	if reply == "" {
		reply = notUnderstoodMessage
	}
	return &TurnResult{Reply: reply, Route: RouteFAQ, Stage: t.sess.Stage}, true
}

func (s *Service) classify(ctx context.Context, msg string) (bool, error) {
	var out struct {
		BookingIntent bool `json:"booking_intent"`
	}
	err := s.completeJSON(ctx, llm.Request{
		System:      classifierPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: msg}},
		JSON:        true,
		MaxTokens:   50,
		Temperature: 0,
	}, &out)
	return out.BookingIntent, err
}

func (s *Service) extract(ctx context.Context, t *turn) (extraction, error) {
	var x extraction
	awaiting := string(t.sess.AwaitingSlot)
	if awaiting == "" {
		awaiting = "none"
	}
	system := fmt.Sprintf("%s\n\n%s\nCurrent booking draft: %s\nQuestion being answered: %s",
		extractionPrompt, catalogContext(t.cat, t.check.today), draftJSON(&t.sess.Draft), awaiting)

	err := s.completeJSON(ctx, llm.Request{
		System:      system,
		Messages:    s.conversation(t.sess, t.msg),
		JSON:        true,
		MaxTokens:   600,
		Temperature: 0,
	}, &x)
	return x, err
}

// completeJSON runs one model call bounded by the configured timeout.
func (s *Service) completeJSON(ctx context.Context, req llm.Request, v any) error {
	ctx, cancel := context.WithTimeout(ctx, s.opts.ModelTimeout)
	defer cancel()

	resp, err := s.model.Complete(ctx, req)
	if err != nil {
		return err
	}
	return llm.DecodeJSON(resp.Text, v)
}

// conversation maps the recent transcript plus msg to model messages.
func (s *Service) conversation(sess *Session, msg string) []llm.Message {
	history := sess.History
	if len(history) > modelHistory {
		history = history[len(history)-modelHistory:]
	}
	out := make([]llm.Message, 0, len(history)+1)
	for _, m := range history {
		switch m.Role {
		case domain.RoleUserMessage:
			out = append(out, llm.Message{Role: llm.RoleUser, Content: m.Content})
		case domain.RoleBotMessage:
			if len(out) == 0 {
				continue
			}
			out = append(out, llm.Message{Role: llm.RoleModel, Content: m.Content})
		}
	}
	return append(out, llm.Message{Role: llm.RoleUser, Content: msg})
}

func (s *Service) appendLog(userID, msg string, res *TurnResult) {
	if s.chatLog == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), chatLogTimeout)
	defer cancel()
	err := s.chatLog.Append(ctx, &domain.ChatLogEntry{
		UserID:      userID,
		UserMessage: msg,
		BotResponse: res.Reply,
		Route:       string(res.Route),
		Timestamp:   s.now().UTC(),
	})
	if err != nil {
		log.Printf("chat_log_append_failed user_id=%s error=%q", userID, err.Error())
	}
}

// GetSession returns the user's conversation, a fresh idle one when none is stored.
func (s *Service) GetSession(ctx context.Context, userID string) (*Session, error) {
	sess, err := s.sessions.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		sess = newSession(userID, s.now().UTC())
	}
	return sess, nil
}

// ChatHistory returns the user's latest logged turns, newest first.
func (s *Service) ChatHistory(ctx context.Context, userID string, limit int) ([]domain.ChatLogEntry, error) {
	if limit <= 0 || limit > maxHistoryPage {
		limit = maxHistoryPage
	}
	if s.chatLog == nil {
		return []domain.ChatLogEntry{}, nil
	}
	return s.chatLog.Recent(ctx, userID, limit)
}

// ResetSession discards the conversation, as when the chat widget is closed.
func (s *Service) ResetSession(ctx context.Context, userID string) error {
	unlock := s.locks.lock(userID)
	defer unlock()
	return s.sessions.Delete(ctx, userID)
}
