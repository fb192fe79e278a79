package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Ernie1234/team-task-backend/internal/handlers"
	"github.com/Ernie1234/team-task-backend/internal/middleware"
)

func RegisterUploadRoutes(r gin.IRouter) {
	upload := r.Group("/upload")
	upload.Use(middleware.AuthMiddleware())
	{
		upload.POST("/profile-image", handlers.UploadProfileImage)
		upload.POST("/chat-attachment", handlers.UploadChatAttachment)
		upload.POST("", handlers.UploadFile)
	}
}
