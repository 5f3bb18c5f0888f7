package utils

import (
	"fmt"

	"github.com/eventflow-dev/eventflow/internal/middleware"
	"github.com/eventflow-dev/eventflow/internal/types"
	"github.com/gin-gonic/gin"
)

func GetCurrentUser(ctx *gin.Context) (middleware.AuthenticatedUser, error) {
	user, exists := ctx.Get(types.ContextUserKey)

	if !exists {
		return middleware.AuthenticatedUser{}, fmt.Errorf("User not authenticated")
	}

	authenticatedUser, ok := user.(middleware.AuthenticatedUser)

	if !ok {
		return middleware.AuthenticatedUser{}, fmt.Errorf("Invalid user type in context")
	}

	return authenticatedUser, nil
}

func GetCurrentUserID(ctx *gin.Context) (uint, error) {
	user, err := GetCurrentUser(ctx)

	if err != nil {
		return 0, err
	}

	return user.ID, nil
}

// MarkAuditRecorded tells the audit middleware that the handler already
// recorded an event for this request's outcome.
func MarkAuditRecorded(ctx *gin.Context) {
	ctx.Set(types.ContextAuditRecordedKey, true)
}
