package auth

import (
	"errors"
	"net/http"

	"museumtix/internal/middleware"
	"museumtix/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// Handler manages all HTTP interactions for authentication
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup) {
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
	}
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	protected.GET("/auth/me", h.GetMe)
}

// Register creates a visitor account and returns an access token.
// @Summary		Register visitor
// @Tags		Auth
// @Param		request	body	RegisterRequest	true	"email, password, display_name"
// @Success		201	{object}	map[string]interface{}
// @Failure		400	{object}	map[string]interface{}
// @Failure		409	{object}	map[string]interface{}
// @Router		/auth/register [POST]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	res, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			response.Error(c, http.StatusConflict, "EMAIL_EXISTS", "Email is already registered")
			return
		}
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "REGISTER_FAILED", "Failed to register")
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"user": ToPublic(res.User), "token": res.Token})
}

// Login exchanges credentials for an access token.
// @Summary		Login
// @Tags		Auth
// @Param		request	body	LoginRequest	true	"email and password"
// @Success		200	{object}	map[string]interface{}
// @Failure		401	{object}	map[string]interface{}
// @Router		/auth/login [POST]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Email or password is incorrect")
			return
		}
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "LOGIN_FAILED", "Failed to login")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": ToPublic(res.User), "token": res.Token})
}

func (h *Handler) GetMe(c *gin.Context) {
	p := middleware.CurrentUser(c)

	user, err := h.service.GetCurrentUser(c.Request.Context(), p.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "User not found")
			return
		}
		_ = c.Error(err)
		response.Internal(c)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": ToPublic(user)})
}
