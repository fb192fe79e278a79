package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Ernie1234/team-task-backend/internal/handlers"
	"github.com/Ernie1234/team-task-backend/internal/middleware"
)

func RegisterNotificationRoutes(r gin.IRouter) {
	notifications := r.Group("/notifications")
	notifications.Use(middleware.AuthMiddleware())
	{
		notifications.GET("", handlers.GetNotifications)
		notifications.GET("/unread-count", handlers.GetUnreadNotificationCount)
		notifications.PUT("/:notificationId/read", handlers.MarkNotificationRead)
		notifications.PUT("/read-all", handlers.MarkAllNotificationsRead)
	}
}
