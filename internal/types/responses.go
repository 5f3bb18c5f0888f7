package types

import (
	"time"

	"github.com/eventflow-dev/eventflow/internal/models"
	"gorm.io/datatypes"
)

type UserResponse struct {
	ID             uint      `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	SocialName     string    `json:"social_name,omitempty"`
	Bio            string    `json:"bio,omitempty"`
	ProfilePicture string    `json:"profile_picture,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func NewUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:             user.ID,
		Name:           user.Name,
		Email:          user.Email,
		SocialName:     user.SocialName,
		Bio:            user.Bio,
		ProfilePicture: user.ProfilePicture,
		CreatedAt:      user.CreatedAt,
	}
}

type EventResponse struct {
	ID        uint           `json:"id"`
	Type      string         `json:"type"`
	Message   string         `json:"message"`
	UserID    uint           `json:"user_id"`
	IPAddress string         `json:"ip_address"`
	UserAgent string         `json:"user_agent"`
	Metadata  datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

func NewEventResponse(event models.Event) EventResponse {
	return EventResponse{
		ID:        event.ID,
		Type:      event.Type,
		Message:   event.Message,
		UserID:    event.UserID,
		IPAddress: event.IPAddress,
		UserAgent: event.UserAgent,
		Metadata:  event.Metadata,
		CreatedAt: event.CreatedAt,
	}
}

type NotificationResponse struct {
	ID        uint           `json:"id"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Type      string         `json:"type"`
	Read      bool           `json:"read"`
	Metadata  datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

func NewNotificationResponse(notification models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        notification.ID,
		Title:     notification.Title,
		Message:   notification.Message,
		Type:      notification.Type,
		Read:      notification.Read,
		Metadata:  notification.Metadata,
		CreatedAt: notification.CreatedAt,
	}
}
