package router

import (
	"time"

	"github.com/eventflow-dev/eventflow/internal/handlers"
	"github.com/eventflow-dev/eventflow/internal/middleware"
	"github.com/eventflow-dev/eventflow/internal/types"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(middleware.RequestID())
	r.Use(middleware.AuditTrail())

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.GET("/ws", middleware.AuthMiddleware(), handlers.WebSocket)

		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.CreateUser)
			auth.POST("/login", handlers.LoginUser)
			auth.GET("/verify", handlers.VerifyToken)
			auth.POST("/logout", middleware.AuthMiddleware(), handlers.LogoutUser)
			auth.GET("/me", middleware.AuthMiddleware(), handlers.Me)
		}

		events := api.Group("/events", middleware.AuthMiddleware())
		{
			events.GET("", handlers.ListEvents)
			events.GET("/stats", handlers.GetEventStats)
			events.GET("/chart", handlers.GetEventChart)
			events.GET("/types", handlers.GetEventTypes)
			events.GET("/recent", handlers.GetRecentEvents)
			events.GET("/:id", handlers.GetEvent)
			events.DELETE("", handlers.PurgeEvents)
		}

		notifications := api.Group("/notifications", middleware.AuthMiddleware())
		{
			notifications.GET("", handlers.ListNotifications)
			notifications.GET("/unread-count", handlers.GetUnreadCount)
			notifications.POST("", handlers.CreateNotification)
			notifications.PUT("/read-all", handlers.MarkAllNotificationsRead)
			notifications.PUT("/:id/read", handlers.MarkNotificationRead)
			notifications.PUT("/:id", handlers.UpdateNotification)
			notifications.DELETE("/:id", handlers.DeleteNotification)
			notifications.DELETE("", handlers.DeleteNotifications)
		}

		profile := api.Group("/profile", middleware.AuthMiddleware())
		{
			profile.GET("", handlers.GetProfile)
			profile.PUT("", handlers.UpdateProfile)
			profile.PUT("/password", handlers.UpdatePassword)
			profile.PATCH("/picture", handlers.UpdatePicture)
			profile.DELETE("", handlers.DeleteAccount)
		}
	}

	return r
}
