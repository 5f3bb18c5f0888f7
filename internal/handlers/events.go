package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/eventflow-dev/eventflow/db"
	"github.com/eventflow-dev/eventflow/internal/audit"
	"github.com/eventflow-dev/eventflow/internal/models"
	"github.com/eventflow-dev/eventflow/internal/types"
	"github.com/eventflow-dev/eventflow/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type EventListResponse struct {
	Events []types.EventResponse `json:"events"`
	Total  int64                 `json:"total"`
	Page   int                   `json:"page"`
	Pages  int                   `json:"pages"`
	Limit  int                   `json:"limit"`
}

type EventTypeCount struct {
	Type  string `json:"type"`
	Count int64  `json:"count"`
}

type EventStatsResponse struct {
	Total  int64            `json:"total"`
	Today  int64            `json:"today"`
	ByType []EventTypeCount `json:"by_type"`
}

type ChartPoint struct {
	Day   string `json:"day"`
	Count int64  `json:"count"`
}

// parseDate accepts RFC3339 timestamps or plain dates. The bool reports
// whether only a date was given, so end-of-range filters can cover the whole
// day.
func parseDate(value string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, false, nil
	}

	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, false, err
	}

	return t, true, nil
}

// eventQuery builds the owner-scoped, filtered query shared by the list and
// count paths. Every events read starts from the caller's user id.
func eventQuery(ctx *gin.Context, userID uint) (*gorm.DB, error) {
	query := db.DB.Model(&models.Event{}).Where("user_id = ?", userID)

	if eventType := ctx.Query("type"); eventType != "" {
		query = query.Where("type = ?", eventType)
	}

	if startDate := ctx.Query("startDate"); startDate != "" {
		start, _, err := parseDate(startDate)
		if err != nil {
			return nil, errors.New("Invalid startDate")
		}
		query = query.Where("created_at >= ?", start)
	}

	if endDate := ctx.Query("endDate"); endDate != "" {
		end, dateOnly, err := parseDate(endDate)
		if err != nil {
			return nil, errors.New("Invalid endDate")
		}
		if dateOnly {
			end = end.Add(24 * time.Hour)
		}
		query = query.Where("created_at < ?", end)
	}

	if search := ctx.Query("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("(message ILIKE ? OR type ILIKE ?)", pattern, pattern)
	}

	return query, nil
}

func ListEvents(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	page, limit := utils.ParsePagination(ctx)

	query, err := eventQuery(ctx, userID)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var total int64

	if err := query.Count(&total).Error; err != nil {
		logrus.WithError(err).Error("Failed to count events")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve events"})
		return
	}

	var events []models.Event

	err = query.
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&events).Error

	if err != nil {
		logrus.WithError(err).Error("Failed to list events")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve events"})
		return
	}

	response := EventListResponse{
		Events: make([]types.EventResponse, 0, len(events)),
		Total:  total,
		Page:   page,
		Pages:  utils.Pages(total, limit),
		Limit:  limit,
	}

	for _, event := range events {
		response.Events = append(response.Events, types.NewEventResponse(event))
	}

	ctx.JSON(http.StatusOK, response)
}

func GetEvent(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	eventID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID"})
		return
	}

	var event models.Event

	// Absent and foreign rows get the same answer to preserve isolation.
	err = db.DB.Where("id = ? AND user_id = ?", eventID, userID).First(&event).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		} else {
			logrus.WithError(err).Error("Failed to fetch event")
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve event"})
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"event": types.NewEventResponse(event)})
}

func GetEventStats(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var stats EventStatsResponse

	if err := db.DB.Model(&models.Event{}).Where("user_id = ?", userID).Count(&stats.Total).Error; err != nil {
		logrus.WithError(err).Error("Failed to count events")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve stats"})
		return
	}

	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	err = db.DB.Model(&models.Event{}).
		Where("user_id = ? AND created_at >= ?", userID, midnight).
		Count(&stats.Today).Error

	if err != nil {
		logrus.WithError(err).Error("Failed to count today's events")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve stats"})
		return
	}

	err = db.DB.Model(&models.Event{}).
		Select("type, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("type").
		Order("count DESC").
		Limit(10).
		Scan(&stats.ByType).Error

	if err != nil {
		logrus.WithError(err).Error("Failed to aggregate event types")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve stats"})
		return
	}

	ctx.JSON(http.StatusOK, stats)
}

func GetEventChart(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	days := 7

	if value, err := strconv.Atoi(ctx.Query("days")); err == nil && value > 0 {
		days = value
	}

	if days > 90 {
		days = 90
	}

	now := time.Now()
	since := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -(days - 1))

	var rows []ChartPoint

	err = db.DB.Model(&models.Event{}).
		Select("to_char(created_at, 'YYYY-MM-DD') AS day, COUNT(*) AS count").
		Where("user_id = ? AND created_at >= ?", userID, since).
		Group("day").
		Order("day").
		Scan(&rows).Error

	if err != nil {
		logrus.WithError(err).Error("Failed to aggregate event chart")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve chart"})
		return
	}

	counts := make(map[string]int64, len(rows))

	for _, row := range rows {
		counts[row.Day] = row.Count
	}

	// Zero-fill so the chart always has one point per day.
	chart := make([]ChartPoint, 0, days)

	for i := 0; i < days; i++ {
		day := since.AddDate(0, 0, i).Format("2006-01-02")
		chart = append(chart, ChartPoint{Day: day, Count: counts[day]})
	}

	ctx.JSON(http.StatusOK, gin.H{"days": days, "chart": chart})
}

func GetEventTypes(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var eventTypes []string

	err = db.DB.Model(&models.Event{}).
		Where("user_id = ?", userID).
		Distinct().
		Order("type").
		Pluck("type", &eventTypes).Error

	if err != nil {
		logrus.WithError(err).Error("Failed to list event types")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve event types"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"types": eventTypes})
}

func GetRecentEvents(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	limit := 10

	if value, err := strconv.Atoi(ctx.Query("limit")); err == nil && value > 0 {
		limit = value
	}

	if limit > 50 {
		limit = 50
	}

	var events []models.Event

	err = db.DB.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&events).Error

	if err != nil {
		logrus.WithError(err).Error("Failed to list recent events")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve events"})
		return
	}

	response := make([]types.EventResponse, 0, len(events))

	for _, event := range events {
		response = append(response, types.NewEventResponse(event))
	}

	ctx.JSON(http.StatusOK, gin.H{"events": response})
}

// PurgeEvents deletes the caller's entire audit history.
func PurgeEvents(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	result := db.DB.Where("user_id = ?", userID).Delete(&models.Event{})

	if result.Error != nil {
		logrus.WithError(result.Error).Error("Failed to purge events")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to purge events"})
		return
	}

	audit.Record(userID, types.EventEventsPurged, "Event history purged", ctx.ClientIP(), ctx.Request.UserAgent(), map[string]interface{}{
		"deleted":    result.RowsAffected,
		"request_id": ctx.GetString(types.ContextRequestIDKey),
	})

	ctx.JSON(http.StatusOK, gin.H{"deleted": result.RowsAffected})
}
