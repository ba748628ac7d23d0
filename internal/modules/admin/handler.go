package admin

import (
	"errors"
	"net/http"

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

// RegisterRoutes mounts the back-office API; admin is expected to be guarded by AdminOnly.
func (h *Handler) RegisterRoutes(admin *gin.RouterGroup) {
	// catalog
	admin.GET("/museums", h.ListMuseums)
	admin.POST("/museums", h.CreateMuseum)
	admin.PUT("/museums/:id", h.UpdateMuseum)
	admin.DELETE("/museums/:id", h.DeleteMuseum)

	admin.GET("/events", h.ListEvents)
	admin.POST("/events", h.CreateEvent)
	admin.PUT("/events/:id", h.UpdateEvent)
	admin.DELETE("/events/:id", h.DeleteEvent)

	// users
	admin.GET("/users", h.ListUsers)
	admin.PATCH("/users/:id/role", h.UpdateUserRole)

	// analytics
	admin.GET("/analytics", h.GetAnalytics)
	admin.GET("/analytics/summary", h.GetSummary)
	admin.GET("/suggestions", h.GetSuggestions)
}

func (h *Handler) ListMuseums(c *gin.Context) {
	museums, err := h.service.ListMuseums(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"museums": museums})
}

// CreateMuseum adds a museum; the id defaults to a slug of its name.
// @Summary		Create museum
// @Tags		Admin - Catalog
// @Security	BearerAuth
// @Param		request	body	MuseumRequest	true	"museum"
// @Success		201	{object}	map[string]interface{}
// @Failure		400	{object}	map[string]interface{}
// @Failure		409	{object}	map[string]interface{}
// @Router		/admin/museums [POST]
func (h *Handler) CreateMuseum(c *gin.Context) {
	var req MuseumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	m, err := h.service.CreateMuseum(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"museum": m})
}

func (h *Handler) UpdateMuseum(c *gin.Context) {
	var req MuseumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	m, err := h.service.UpdateMuseum(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"museum": m})
}

func (h *Handler) DeleteMuseum(c *gin.Context) {
	if err := h.service.DeleteMuseum(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) ListEvents(c *gin.Context) {
	events, err := h.service.ListEvents(c.Request.Context(), c.Query("museumId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"events": events})
}

func (h *Handler) CreateEvent(c *gin.Context) {
	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	e, err := h.service.CreateEvent(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"event": e})
}

func (h *Handler) UpdateEvent(c *gin.Context) {
	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	e, err := h.service.UpdateEvent(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"event": e})
}

func (h *Handler) DeleteEvent(c *gin.Context) {
	if err := h.service.DeleteEvent(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"users": users, "count": len(users)})
}

func (h *Handler) UpdateUserRole(c *gin.Context) {
	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	adminID := middleware.CurrentUser(c).UserID
	u, err := h.service.UpdateUserRole(c.Request.Context(), adminID, c.Param("id"), req.Role)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": u})
}

// GetAnalytics returns booking analytics for a day range.
// @Summary		Booking analytics
// @Tags		Admin - Analytics
// @Security	BearerAuth
// @Param		from	query	string	false	"first day, YYYY-MM-DD (default: 29 days before to)"
// @Param		to		query	string	false	"last day, YYYY-MM-DD (default: today)"
// @Success		200	{object}	map[string]interface{}
// @Failure		400	{object}	map[string]interface{}
// @Router		/admin/analytics [GET]
func (h *Handler) GetAnalytics(c *gin.Context) {
	var q AnalyticsQuery
	_ = c.ShouldBindQuery(&q)
	a, err := h.service.Analytics(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"analytics": a})
}

// GetSummary returns the executive report for a day range.
func (h *Handler) GetSummary(c *gin.Context) {
	var q AnalyticsQuery
	_ = c.ShouldBindQuery(&q)
	report, err := h.service.Summary(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"report": report})
}

func (h *Handler) GetSuggestions(c *gin.Context) {
	var q AnalyticsQuery
	_ = c.ShouldBindQuery(&q)
	list, err := h.service.Suggestions(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"suggestions": list})
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Resource not found")
	case errors.Is(err, ErrConflict):
		response.Error(c, http.StatusConflict, "CONFLICT", err.Error())
	case errors.Is(err, ErrAssistantUnavailable):
		response.Error(c, http.StatusServiceUnavailable, "ASSISTANT_UNAVAILABLE", "AI insights are not available right now")
	default:
		_ = c.Error(err)
		response.Internal(c)
	}
}
