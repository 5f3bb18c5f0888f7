package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func notificationsRouter(userID uint) *gin.Engine {
	r := gin.New()

	notifications := r.Group("/api/notifications", authAs(userID))
	{
		notifications.GET("", ListNotifications)
		notifications.GET("/unread-count", GetUnreadCount)
		notifications.POST("", CreateNotification)
		notifications.PUT("/read-all", MarkAllNotificationsRead)
		notifications.PUT("/:id/read", MarkNotificationRead)
		notifications.DELETE("/:id", DeleteNotification)
		notifications.DELETE("", DeleteNotifications)
	}

	return r
}

func notificationRows(userID uint, ids ...int) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "created_at", "updated_at", "title", "message", "type", "user_id", "read"})

	for _, id := range ids {
		rows.AddRow(id, time.Now(), time.Now(), "Welcome", "Hello", "INFO", userID, false)
	}

	return rows
}

// Listing is a pure read. sqlmock rejects any statement it was not told to
// expect, so an implicit mark-read UPDATE would fail this test.
func TestListNotificationsDoesNotMutate(t *testing.T) {
	mock := setupMockDB(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "notifications" WHERE .*user_id = \$1`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	mock.ExpectQuery(`SELECT count\(\*\) FROM "notifications" WHERE .*user_id = \$1 AND read = \$2`).
		WithArgs(7, false).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	mock.ExpectQuery(`SELECT \* FROM "notifications" WHERE .*user_id = \$1.*ORDER BY created_at DESC LIMIT \$2`).
		WithArgs(7, 20).
		WillReturnRows(notificationRows(7, 2, 1))

	recorder := performRequest(t, notificationsRouter(7), http.MethodGet, "/api/notifications", nil)

	require.Equal(t, http.StatusOK, recorder.Code)

	body := decodeBody(t, recorder)
	assert.EqualValues(t, 2, body["total"])
	assert.EqualValues(t, 2, body["unread"])

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListNotificationsUnreadOnly(t *testing.T) {
	mock := setupMockDB(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "notifications" WHERE .*user_id = \$1 AND read = \$2`).
		WithArgs(7, false).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	mock.ExpectQuery(`SELECT count\(\*\) FROM "notifications" WHERE .*user_id = \$1 AND read = \$2`).
		WithArgs(7, false).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	mock.ExpectQuery(`SELECT \* FROM "notifications" WHERE .*user_id = \$1 AND read = \$2.*ORDER BY created_at DESC LIMIT \$3`).
		WithArgs(7, false, 20).
		WillReturnRows(notificationRows(7, 3))

	recorder := performRequest(t, notificationsRouter(7), http.MethodGet, "/api/notifications?unreadOnly=true", nil)

	require.Equal(t, http.StatusOK, recorder.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateNotification(t *testing.T) {
	mock := setupMockDB(t)

	mock.ExpectQuery(`INSERT INTO "notifications"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

	recorder := performRequest(t, notificationsRouter(7), http.MethodPost, "/api/notifications", gin.H{
		"title":   "Heads up",
		"message": "Something happened",
		"type":    "WARNING",
	})

	require.Equal(t, http.StatusCreated, recorder.Code)

	body := decodeBody(t, recorder)
	notification, ok := body["notification"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "WARNING", notification["type"])

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateNotificationRejectsUnknownType(t *testing.T) {
	setupMockDB(t)

	recorder := performRequest(t, notificationsRouter(7), http.MethodPost, "/api/notifications", gin.H{
		"title":   "Heads up",
		"message": "Something happened",
		"type":    "URGENT",
	})

	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

// Marking everything read twice must leave zero unread rows and report zero
// additional rows affected on the second call.
func TestMarkAllNotificationsReadIdempotent(t *testing.T) {
	mock := setupMockDB(t)
	router := notificationsRouter(7)

	mock.ExpectExec(`UPDATE "notifications" SET "read"=\$1,"updated_at"=\$2 WHERE .*user_id = \$3 AND read = \$4`).
		WithArgs(true, sqlmock.AnyArg(), 7, false).
		WillReturnResult(sqlmock.NewResult(0, 3))

	recorder := performRequest(t, router, http.MethodPut, "/api/notifications/read-all", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.EqualValues(t, 3, decodeBody(t, recorder)["updated"])

	mock.ExpectExec(`UPDATE "notifications" SET "read"=\$1,"updated_at"=\$2 WHERE .*user_id = \$3 AND read = \$4`).
		WithArgs(true, sqlmock.AnyArg(), 7, false).
		WillReturnResult(sqlmock.NewResult(0, 0))

	recorder = performRequest(t, router, http.MethodPut, "/api/notifications/read-all", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.EqualValues(t, 0, decodeBody(t, recorder)["updated"])

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkNotificationReadNotFound(t *testing.T) {
	mock := setupMockDB(t)

	mock.ExpectExec(`UPDATE "notifications" SET "read"=\$1,"updated_at"=\$2 WHERE .*id = \$3 AND user_id = \$4`).
		WithArgs(true, sqlmock.AnyArg(), 99, 7).
		WillReturnResult(sqlmock.NewResult(0, 0))

	recorder := performRequest(t, notificationsRouter(7), http.MethodPut, "/api/notifications/99/read", nil)

	require.Equal(t, http.StatusNotFound, recorder.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteNotification(t *testing.T) {
	mock := setupMockDB(t)

	mock.ExpectExec(`UPDATE "notifications" SET "deleted_at"=\$1 WHERE .*id = \$2 AND user_id = \$3`).
		WithArgs(sqlmock.AnyArg(), 5, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))

	recorder := performRequest(t, notificationsRouter(7), http.MethodDelete, "/api/notifications/5", nil)

	require.Equal(t, http.StatusOK, recorder.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteNotificationsReadOnly(t *testing.T) {
	mock := setupMockDB(t)

	mock.ExpectExec(`UPDATE "notifications" SET "deleted_at"=\$1 WHERE .*user_id = \$2 AND read = \$3`).
		WithArgs(sqlmock.AnyArg(), 7, true).
		WillReturnResult(sqlmock.NewResult(0, 4))

	recorder := performRequest(t, notificationsRouter(7), http.MethodDelete, "/api/notifications?read=true", nil)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.EqualValues(t, 4, decodeBody(t, recorder)["deleted"])

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUnreadCount(t *testing.T) {
	mock := setupMockDB(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "notifications" WHERE .*user_id = \$1 AND read = \$2`).
		WithArgs(7, false).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	recorder := performRequest(t, notificationsRouter(7), http.MethodGet, "/api/notifications/unread-count", nil)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.EqualValues(t, 5, decodeBody(t, recorder)["unread"])

	require.NoError(t, mock.ExpectationsWereMet())
}
