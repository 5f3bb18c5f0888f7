package middleware

import (
	"fmt"

	"github.com/eventflow-dev/eventflow/internal/audit"
	"github.com/eventflow-dev/eventflow/internal/models"
	"github.com/eventflow-dev/eventflow/internal/types"
	"github.com/gin-gonic/gin"
)

// AuditTrail records an API_ERROR event for failed requests. Handlers that
// record their own failure event set the audit-recorded context flag, so a
// single action never produces two audit rows.
func AuditTrail() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Next()

		status := ctx.Writer.Status()

		if status < 400 || ctx.GetBool(types.ContextAuditRecordedKey) {
			return
		}

		userID := models.SystemUserID

		if value, exists := ctx.Get(types.ContextUserKey); exists {
			if user, ok := value.(AuthenticatedUser); ok {
				userID = user.ID
			}
		}

		audit.Record(
			userID,
			types.EventAPIError,
			fmt.Sprintf("%s %s returned %d", ctx.Request.Method, ctx.Request.URL.Path, status),
			ctx.ClientIP(),
			ctx.Request.UserAgent(),
			map[string]interface{}{
				"method":     ctx.Request.Method,
				"path":       ctx.Request.URL.Path,
				"status":     status,
				"request_id": ctx.GetString(types.ContextRequestIDKey),
			},
		)
	}
}
