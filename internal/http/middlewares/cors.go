package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CORSMiddleware answers for the browser UI. "*" in allowedOrigins opens
// the API to any origin, without credentials.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	wildcard := false

	for _, origin := range allowedOrigins {
		if origin == "*" {
			wildcard = true
			continue
		}
		allowed[origin] = struct{}{}
	}

	return func(ctx *gin.Context) {
		origin := ctx.GetHeader("Origin")
		if origin != "" {
			if _, ok := allowed[origin]; ok {
				ctx.Header("Access-Control-Allow-Origin", origin)
				ctx.Header("Access-Control-Allow-Credentials", "true")
				ctx.Header("Vary", "Origin")
				setCORSMethods(ctx)
			} else if wildcard {
				ctx.Header("Access-Control-Allow-Origin", "*")
				setCORSMethods(ctx)
			}
		}

		if ctx.Request.Method == http.MethodOptions {
			ctx.AbortWithStatus(http.StatusNoContent)
			return
		}

		ctx.Next()
	}
}

func setCORSMethods(ctx *gin.Context) {
	ctx.Header("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
	ctx.Header("Access-Control-Allow-Headers", "Content-Type,X-Request-Id")
	ctx.Header("Access-Control-Expose-Headers", "X-Request-Id")
}
