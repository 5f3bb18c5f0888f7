package middleware

import (
	"github.com/eventflow-dev/eventflow/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestID assigns a uuid to each request and echoes it in the response so
// clients and audit rows can be correlated.
func RequestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		requestID := ctx.GetHeader("X-Request-ID")

		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx.Set(types.ContextRequestIDKey, requestID)
		ctx.Header("X-Request-ID", requestID)
		ctx.Next()
	}
}
