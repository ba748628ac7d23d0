package catalog

import (
	"errors"
	"net/http"

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
	rg.GET("/museums", h.ListMuseums)
	rg.GET("/museums/:id", h.GetMuseum)
	rg.GET("/events", h.ListEvents)
	rg.GET("/events/:id", h.GetEvent)
}

// ListMuseums handles GET /museums?city=
func (h *Handler) ListMuseums(c *gin.Context) {
	museums, err := h.service.ListMuseums(c.Request.Context(), c.Query("city"))
	if err != nil {
		_ = c.Error(err)
		response.Internal(c)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"museums": museums})
}

func (h *Handler) GetMuseum(c *gin.Context) {
	m, err := h.service.GetMuseum(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "Museum not found")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"museum": m})
}

// ListEvents handles GET /events?museumId=&upcoming=true
func (h *Handler) ListEvents(c *gin.Context) {
	var q EventQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query")
		return
	}
	events, err := h.service.ListEvents(c.Request.Context(), q)
	if err != nil {
		_ = c.Error(err)
		response.Internal(c)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"events": events})
}

func (h *Handler) GetEvent(c *gin.Context) {
	e, err := h.service.GetEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "Event not found")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"event": e})
}

func (h *Handler) fail(c *gin.Context, err error, notFoundMsg string) {
	if errors.Is(err, ErrNotFound) {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", notFoundMsg)
		return
	}
	_ = c.Error(err)
	response.Internal(c)
}
