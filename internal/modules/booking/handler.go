package booking

import (
	"errors"
	"fmt"
	"net/http"

	"museumtix/internal/domain"
	"museumtix/internal/middleware"
	"museumtix/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	bookings := rg.Group("/bookings")
	{
		bookings.POST("", h.CreateBooking)
		bookings.GET("", h.ListMine)
		bookings.GET("/:id", h.GetBooking)
		bookings.POST("/:id/pay", h.Pay)
		bookings.POST("/:id/cancel", h.Cancel)
		bookings.GET("/:id/ticket", h.Ticket)
	}
	rg.POST("/scanner/verify", middleware.StaffOrAdmin(), h.VerifyTicket)
}

func (h *Handler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	admin.GET("/bookings", h.ListAll)
}

func actorOf(c *gin.Context) Actor {
	p := middleware.CurrentUser(c)
	return Actor{UserID: p.UserID, Role: domain.UserRole(p.Role)}
}

// CreateBooking reserves seats for an event.
// @Summary		Create booking
// @Tags		Bookings
// @Security	BearerAuth
// @Param		Idempotency-Key	header	string	false	"repeat-safe request key"
// @Param		request	body	CreateBookingRequest	true	"museum, event, ticket count"
// @Success		201	{object}	map[string]interface{}
// @Failure		400	{object}	map[string]interface{}
// @Failure		404	{object}	map[string]interface{}
// @Failure		409	{object}	map[string]interface{}
// @Router		/bookings [POST]
func (h *Handler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	p := middleware.CurrentUser(c)
	email := req.ContactEmail
	if email == "" {
		email = p.Email
	}

	b, err := h.service.Book(c.Request.Context(), BookRequest{
		UserID:          p.UserID,
		MuseumID:        req.MuseumID,
		EventID:         req.EventID,
		NumTickets:      req.NumTickets,
		ContactEmail:    email,
		TicketType:      req.TicketType,
		VisitorNames:    req.VisitorNames,
		SpecialRequests: req.SpecialRequests,
		PromoCode:       req.PromoCode,
		Source:          domain.SourceWeb,
		IdempotencyKey:  c.GetHeader("Idempotency-Key"),
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"booking": b})
}

func (h *Handler) ListMine(c *gin.Context) {
	list, err := h.service.ListMine(c.Request.Context(), middleware.CurrentUser(c).UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bookings": list})
}

func (h *Handler) GetBooking(c *gin.Context) {
	b, err := h.service.Get(c.Request.Context(), actorOf(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) Pay(c *gin.Context) {
	b, err := h.service.Pay(c.Request.Context(), actorOf(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) Cancel(c *gin.Context) {
	b, err := h.service.Cancel(c.Request.Context(), actorOf(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) Ticket(c *gin.Context) {
	pdf, err := h.service.Ticket(c.Request.Context(), actorOf(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=ticket-%s.pdf", c.Param("id")))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// VerifyTicket checks in the holder of a scanned QR payload.
func (h *Handler) VerifyTicket(c *gin.Context) {
	var req VerifyTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	b, err := h.service.CheckIn(c.Request.Context(), req.Payload)
	if errors.Is(err, ErrAlreadyCheckedIn) && b != nil {
		response.ErrorWithDetails(c, http.StatusConflict, "ALREADY_CHECKED_IN", "Ticket was already used", gin.H{"booking": b})
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) ListAll(c *gin.Context) {
	var q ListQuery
	_ = c.ShouldBindQuery(&q)
	list, err := h.service.ListAll(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bookings": list})
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrInvalidPromoCode):
		response.Error(c, http.StatusBadRequest, "INVALID_PROMO_CODE", "Promotion code is not valid")
	case errors.Is(err, ErrUnknownReference):
		response.Error(c, http.StatusNotFound, "UNKNOWN_REFERENCE", "Museum or event not found")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Booking not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Access denied")
	case errors.Is(err, ErrSoldOut):
		response.Error(c, http.StatusConflict, "SOLD_OUT", "Not enough tickets left for this event")
	case errors.Is(err, ErrInvalidStatusTransition):
		response.Error(c, http.StatusConflict, "INVALID_STATUS", "Booking is not in a state that allows this action")
	case errors.Is(err, ErrInvalidTicket):
		response.Error(c, http.StatusBadRequest, "INVALID_TICKET", "Ticket could not be verified")
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to process booking")
	}
}
