package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"museumtix/internal/pkg/jwt"
	"museumtix/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
	ctxEmail  = "email"
)

// Principal is the authenticated caller.
type Principal struct {
	UserID string
	Role   string
	Email  string
}

// ExternalVerifier accepts tokens minted by a hosted identity provider.
type ExternalVerifier interface {
	Verify(ctx context.Context, token string) (*Principal, error)
}

// JWTAuth accepts locally issued tokens and, when ext is set, identity provider ID tokens.
func JWTAuth(tokens *jwt.Service, ext ExternalVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			response.Abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
			return
		}

		if claims, err := tokens.ValidateToken(raw); err == nil {
			setPrincipal(c, Principal{UserID: claims.UserID, Role: claims.Role, Email: claims.Email})
			c.Next()
			return
		}

		if ext != nil {
			p, err := ext.Verify(c.Request.Context(), raw)
			if err == nil {
				setPrincipal(c, *p)
				c.Next()
				return
			}
			log.Printf("auth_external_failed path=%s error=%q", c.Request.URL.Path, err.Error())
		}

		response.Abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
	}
}

func bearerToken(c *gin.Context) string {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	if h == "" {
		// browsers cannot set headers on websocket upgrades
		return strings.TrimSpace(c.Query("access_token"))
	}
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return h
}

func setPrincipal(c *gin.Context, p Principal) {
	c.Set(ctxUserID, p.UserID)
	c.Set(ctxRole, p.Role)
	c.Set(ctxEmail, p.Email)
}

func CurrentUser(c *gin.Context) Principal {
	return Principal{
		UserID: c.GetString(ctxUserID),
		Role:   c.GetString(ctxRole),
		Email:  c.GetString(ctxEmail),
	}
}
