package assistant

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"museumtix/internal/middleware"
	"museumtix/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	wsReadLimit  = 16 << 10
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 30 * time.Second
	wsWriteWait  = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// callers authenticate with a token, so any widget origin may connect
	CheckOrigin: func(r *http.Request) bool { return true },
}

// FrameLimiter throttles websocket frames per user.
type FrameLimiter interface {
	Allow(key string) bool
}

type Handler struct {
	service *Service
	frames  FrameLimiter
}

func NewHandler(service *Service, frames FrameLimiter) *Handler {
	return &Handler{service: service, frames: frames}
}

// RegisterRoutes mounts the chat API on an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	chat := rg.Group("/chat")
	{
		chat.POST("/messages", h.PostMessage)
		chat.GET("/session", h.GetSession)
		chat.DELETE("/session", h.DeleteSession)
		chat.GET("/history", h.History)
		chat.POST("/translate", h.Translate)
		chat.GET("/ws", h.ServeWS)
	}
	rg.GET("/museums/:id/visit-times", h.VisitTimes)
}

// PostMessage runs one conversation turn.
// @Summary		Send chat message
// @Tags		Chat
// @Security	BearerAuth
// @Param		request	body	MessageRequest	true	"message and optional client history"
// @Success		200	{object}	map[string]interface{}
// @Failure		400	{object}	map[string]interface{}
// @Failure		429	{object}	map[string]interface{}
// @Router		/chat/messages [POST]
func (h *Handler) PostMessage(c *gin.Context) {
	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	p := middleware.CurrentUser(c)
	res, err := h.service.HandleTurn(c.Request.Context(), TurnRequest{
		UserID:  p.UserID,
		Email:   p.Email,
		Message: req.Message,
		History: req.History,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"turn": res})
}

func (h *Handler) GetSession(c *gin.Context) {
	sess, err := h.service.GetSession(c.Request.Context(), middleware.CurrentUser(c).UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": sess})
}

// DeleteSession discards the conversation when the widget is closed.
func (h *Handler) DeleteSession(c *gin.Context) {
	if err := h.service.ResetSession(c.Request.Context(), middleware.CurrentUser(c).UserID); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// History handles GET /chat/history?limit=
func (h *Handler) History(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	entries, err := h.service.ChatHistory(c.Request.Context(), middleware.CurrentUser(c).UserID, limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"entries": entries})
}

func (h *Handler) Translate(c *gin.Context) {
	var req TranslateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	text := h.service.Translate(c.Request.Context(), req.Text, req.TargetLanguage)
	response.Success(c, http.StatusOK, gin.H{"translated_text": text})
}

// VisitTimes handles GET /museums/:id/visit-times?date=YYYY-MM-DD
func (h *Handler) VisitTimes(c *gin.Context) {
	date := strings.TrimSpace(c.Query("date"))
	times, err := h.service.VisitTimes(c.Request.Context(), c.Param("id"), date)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"museum_id":       c.Param("id"),
		"date":            date,
		"suggested_times": times,
	})
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Museum not found")
	case errors.Is(err, ErrUnavailable):
		response.Error(c, http.StatusServiceUnavailable, "ASSISTANT_UNAVAILABLE", apologyMessage)
	default:
		_ = c.Error(err)
		response.Internal(c)
	}
}

// wsFrame is the server-to-client message on the chat socket.
type wsFrame struct {
	Type   string      `json:"type"`
	Turn   *TurnResult `json:"turn,omitempty"`
	Error  string      `json:"error,omitempty"`
	Detail string      `json:"detail,omitempty"`
}

// ServeWS upgrades to a websocket carrying one JSON turn per frame. While a turn
// is in flight further frames are answered with a busy frame and dropped.
func (h *Handler) ServeWS(c *gin.Context) {
	p := middleware.CurrentUser(c)
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("chat_ws_upgrade_failed user_id=%s error=%q", p.UserID, err.Error())
		return
	}
	defer conn.Close()

	var writeMu sync.Mutex
	write := func(f wsFrame) {
		writeMu.Lock()
		defer writeMu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := conn.WriteJSON(f); err != nil {
			log.Printf("chat_ws_write_failed user_id=%s error=%q", p.UserID, err.Error())
		}
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(wsPingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				writeMu.Lock()
				err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait))
				writeMu.Unlock()
				if err != nil {
					return
				}
			}
		}
	}()

	conn.SetReadLimit(wsReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	ctx := c.Request.Context()
	var busy atomic.Bool
	var turns sync.WaitGroup
	defer turns.Wait()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("chat_ws_closed user_id=%s error=%q", p.UserID, err.Error())
			}
			return
		}

		var in MessageRequest
		if err := json.Unmarshal(raw, &in); err != nil || strings.TrimSpace(in.Message) == "" {
			write(wsFrame{Type: "error", Error: "VALIDATION_ERROR", Detail: "expected {\"message\": \"...\"}"})
			continue
		}
		if h.frames != nil && !h.frames.Allow(p.UserID) {
			write(wsFrame{Type: "error", Error: "RATE_LIMITED", Detail: "Too many requests. Please slow down."})
			continue
		}
		if !busy.CompareAndSwap(false, true) {
			write(wsFrame{Type: "busy", Detail: busyMessage})
			continue
		}

		turns.Add(1)
		go func(in MessageRequest) {
			defer turns.Done()
			defer busy.Store(false)
			res, err := h.service.HandleTurn(ctx, TurnRequest{
				UserID:  p.UserID,
				Email:   p.Email,
				Message: in.Message,
				History: in.History,
			})
			if err != nil {
				write(wsFrame{Type: "error", Error: "VALIDATION_ERROR", Detail: err.Error()})
				return
			}
			write(wsFrame{Type: "reply", Turn: res})
		}(in)
	}
}
