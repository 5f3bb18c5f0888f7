package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/eventflow-dev/eventflow/db"
	"github.com/eventflow-dev/eventflow/internal/audit"
	"github.com/eventflow-dev/eventflow/internal/models"
	"github.com/eventflow-dev/eventflow/internal/types"
	"github.com/eventflow-dev/eventflow/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type CreateNotificationRequest struct {
	Title    string                 `json:"title" binding:"required"`
	Message  string                 `json:"message" binding:"required"`
	Type     string                 `json:"type" binding:"omitempty,oneof=INFO WARNING SUCCESS ERROR"`
	Metadata map[string]interface{} `json:"metadata"`
}

type UpdateNotificationRequest struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Type    string `json:"type" binding:"omitempty,oneof=INFO WARNING SUCCESS ERROR"`
	Read    *bool  `json:"read"`
}

type NotificationListResponse struct {
	Notifications []types.NotificationResponse `json:"notifications"`
	Total         int64                        `json:"total"`
	Unread        int64                        `json:"unread"`
	Page          int                          `json:"page"`
	Pages         int                          `json:"pages"`
	Limit         int                          `json:"limit"`
}

func parseNotificationID(ctx *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification ID"})
		return 0, false
	}

	return uint(id), true
}

// ListNotifications is a pure read: acknowledging is a separate, explicit
// call (MarkNotificationRead / MarkAllNotificationsRead).
func ListNotifications(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	page, limit := utils.ParsePagination(ctx)

	query := db.DB.Model(&models.Notification{}).Where("user_id = ?", userID)

	if ctx.Query("unreadOnly") == "true" {
		query = query.Where("read = ?", false)
	}

	var total int64

	if err := query.Count(&total).Error; err != nil {
		logrus.WithError(err).Error("Failed to count notifications")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve notifications"})
		return
	}

	var unread int64

	err = db.DB.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&unread).Error

	if err != nil {
		logrus.WithError(err).Error("Failed to count unread notifications")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve notifications"})
		return
	}

	var notifications []models.Notification

	err = query.
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&notifications).Error

	if err != nil {
		logrus.WithError(err).Error("Failed to list notifications")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve notifications"})
		return
	}

	response := NotificationListResponse{
		Notifications: make([]types.NotificationResponse, 0, len(notifications)),
		Total:         total,
		Unread:        unread,
		Page:          page,
		Pages:         utils.Pages(total, limit),
		Limit:         limit,
	}

	for _, notification := range notifications {
		response.Notifications = append(response.Notifications, types.NewNotificationResponse(notification))
	}

	ctx.JSON(http.StatusOK, response)
}

func GetUnreadCount(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var unread int64

	err = db.DB.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&unread).Error

	if err != nil {
		logrus.WithError(err).Error("Failed to count unread notifications")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve unread count"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"unread": unread})
}

func CreateNotification(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreateNotificationRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if req.Type == "" {
		req.Type = types.NotificationInfo
	}

	notification := models.Notification{
		Title:   req.Title,
		Message: req.Message,
		Type:    req.Type,
		UserID:  userID,
	}

	if req.Metadata != nil {
		encoded, err := json.Marshal(req.Metadata)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid metadata format"})
			return
		}
		notification.Metadata = encoded
	}

	if err := db.DB.Create(&notification).Error; err != nil {
		logrus.WithError(err).Error("Failed to create notification")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create notification"})
		return
	}

	PushNotification(userID, notification)

	audit.Record(userID, types.EventNotificationCreated, "Notification created", ctx.ClientIP(), ctx.Request.UserAgent(), map[string]interface{}{
		"notification_id": notification.ID,
		"request_id":      ctx.GetString(types.ContextRequestIDKey),
	})

	ctx.JSON(http.StatusCreated, gin.H{"notification": types.NewNotificationResponse(notification)})
}

func UpdateNotification(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	notificationID, ok := parseNotificationID(ctx)

	if !ok {
		return
	}

	var notification models.Notification

	err = db.DB.Where("id = ? AND user_id = ?", notificationID, userID).First(&notification).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		} else {
			logrus.WithError(err).Error("Failed to fetch notification")
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve notification"})
		}
		return
	}

	var req UpdateNotificationRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	updates := make(map[string]interface{})

	if req.Title != "" {
		updates["title"] = req.Title
	}

	if req.Message != "" {
		updates["message"] = req.Message
	}

	if req.Type != "" {
		updates["type"] = req.Type
	}

	if req.Read != nil {
		updates["read"] = *req.Read
	}

	if len(updates) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "No valid fields to update"})
		return
	}

	if err := db.DB.Model(&notification).Updates(updates).Error; err != nil {
		logrus.WithError(err).Error("Failed to update notification")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"notification": types.NewNotificationResponse(notification)})
}

func MarkNotificationRead(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	notificationID, ok := parseNotificationID(ctx)

	if !ok {
		return
	}

	result := db.DB.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("read", true)

	if result.Error != nil {
		logrus.WithError(result.Error).Error("Failed to mark notification read")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification"})
		return
	}

	if result.RowsAffected == 0 {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

// MarkAllNotificationsRead is idempotent: a second call affects zero rows and
// reports as much.
func MarkAllNotificationsRead(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	result := db.DB.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true)

	if result.Error != nil {
		logrus.WithError(result.Error).Error("Failed to mark notifications read")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notifications"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"updated": result.RowsAffected})
}

func DeleteNotification(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	notificationID, ok := parseNotificationID(ctx)

	if !ok {
		return
	}

	result := db.DB.Where("id = ? AND user_id = ?", notificationID, userID).Delete(&models.Notification{})

	if result.Error != nil {
		logrus.WithError(result.Error).Error("Failed to delete notification")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete notification"})
		return
	}

	if result.RowsAffected == 0 {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Notification deleted successfully"})
}

// DeleteNotifications clears the caller's inbox. With ?read=true only
// already-read notifications are removed.
func DeleteNotifications(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	query := db.DB.Where("user_id = ?", userID)

	if ctx.Query("read") == "true" {
		query = query.Where("read = ?", true)
	}

	result := query.Delete(&models.Notification{})

	if result.Error != nil {
		logrus.WithError(result.Error).Error("Failed to delete notifications")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete notifications"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"deleted": result.RowsAffected})
}
