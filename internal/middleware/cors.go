package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var localOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
	"http://127.0.0.1:3000",
	"http://127.0.0.1:5173",
}

// CORS allows the local dev frontends plus any configured extra origins.
func CORS(extra []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(localOrigins)+len(extra))
	for _, o := range localOrigins {
		allowed[o] = true
	}
	for _, o := range extra {
		allowed[o] = true
	}

	cc := cors.DefaultConfig()
	cc.AllowHeaders = append(cc.AllowHeaders, "Authorization", "Accept", "X-Requested-With", "X-Request-ID", "Idempotency-Key")
	cc.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	cc.ExposeHeaders = []string{"Content-Disposition", "X-Request-ID"}
	cc.AllowCredentials = true
	cc.AllowOriginFunc = func(origin string) bool { return allowed[origin] }
	cc.MaxAge = 10 * time.Minute
	return cors.New(cc)
}
