package promotion

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

func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/promotions", h.ListActive)
	rg.GET("/promotions/validate", h.Validate)
}

func (h *Handler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	promos := admin.Group("/promotions")
	{
		promos.GET("", h.ListAll)
		promos.POST("", h.Create)
		promos.PUT("/:id", h.Update)
		promos.PATCH("/:id/active", h.Toggle)
		promos.DELETE("/:id", h.Delete)
	}
}

func (h *Handler) ListActive(c *gin.Context) {
	promos, err := h.service.ListActive(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"promotions": promos})
}

// Validate handles GET /promotions/validate?code=SPRING
func (h *Handler) Validate(c *gin.Context) {
	p, err := h.service.Lookup(c.Request.Context(), c.Query("code"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"promotion": p})
}

func (h *Handler) ListAll(c *gin.Context) {
	promos, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"promotions": promos})
}

func (h *Handler) Create(c *gin.Context) {
	var req UpsertPromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	p, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"promotion": p})
}

func (h *Handler) Update(c *gin.Context) {
	var req UpsertPromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	p, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"promotion": p})
}

func (h *Handler) Toggle(c *gin.Context) {
	var req ToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	p, err := h.service.SetActive(c.Request.Context(), c.Param("id"), req.Active)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"promotion": p})
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Promotion not found")
	case errors.Is(err, ErrDuplicateCode):
		response.Error(c, http.StatusConflict, "DUPLICATE_CODE", "Promotion code already exists")
	default:
		_ = c.Error(err)
		response.Internal(c)
	}
}
