package middleware

import (
	"net/http"

	"go-garage/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// ExtractUserID re-checks the user id set by AuthMiddleware and stores a
// validated copy. Handlers that record an approver read
// "user_id_validated" so a missing claim fails the request, not the audit
// trail.
func ExtractUserID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		userID, exists := ctx.Get("user_id")
		if !exists {
			response.Error(ctx, http.StatusUnauthorized, "UNAUTHORIZED", "user is not authenticated", nil)
			ctx.Abort()
			return
		}

		userIDStr, ok := userID.(string)
		if !ok || userIDStr == "" {
			response.Error(ctx, http.StatusUnauthorized, "INVALID_USER_ID", "invalid user id claim", nil)
			ctx.Abort()
			return
		}

		ctx.Set("user_id_validated", userIDStr)
		ctx.Next()
	}
}
