package types

import (
	"os"
	"strings"
)

const (
	ContextUserKey          = "user"
	ContextRequestIDKey     = "request_id"
	ContextAuditRecordedKey = "audit_recorded"
)

// Event types emitted by the application itself. The column is free-form, so
// API clients may record their own types alongside these.
const (
	EventUserRegistered        = "USER_REGISTERED"
	EventLoginSuccess          = "LOGIN_SUCCESS"
	EventLoginFailed           = "LOGIN_FAILED"
	EventLogout                = "LOGOUT"
	EventProfileUpdated        = "PROFILE_UPDATED"
	EventPasswordChanged       = "PASSWORD_CHANGED"
	EventPasswordChangeFailed  = "PASSWORD_CHANGE_FAILED"
	EventProfilePictureUpdated = "PROFILE_PICTURE_UPDATED"
	EventAccountDeleted        = "ACCOUNT_DELETED"
	EventNotificationCreated   = "NOTIFICATION_CREATED"
	EventEventsPurged          = "EVENTS_PURGED"
	EventAPIError              = "API_ERROR"
)

// Notification types
const (
	NotificationInfo    = "INFO"
	NotificationWarning = "WARNING"
	NotificationSuccess = "SUCCESS"
	NotificationError   = "ERROR"
)

var (
	// Default allowed origins for development
	defaultOrigins = []string{
		"http://localhost:3000",
		"http://localhost:5173",
	}

	AllowedOrigins = initAllowedOrigins()
)

func initAllowedOrigins() []string {
	origins := make([]string, len(defaultOrigins))
	copy(origins, defaultOrigins)

	if clientURL := os.Getenv("CLIENT_URL"); clientURL != "" {
		origins = append(origins, clientURL)
	}

	if allowedOrigins := os.Getenv("ALLOWED_ORIGINS"); allowedOrigins != "" {
		envOrigins := strings.Split(allowedOrigins, ",")
		for _, origin := range envOrigins {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
	}

	return origins
}
