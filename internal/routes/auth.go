package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Ernie1234/team-task-backend/internal/handlers"
	"github.com/Ernie1234/team-task-backend/internal/middleware"
)

func RegisterAuthRoutes(r gin.IRouter) {
	auth := r.Group("/auth")
	{
		auth.POST("/register", handlers.Register)
		auth.POST("/login", handlers.Login)
		// Logout needs claims so the token can be revoked
		auth.POST("/logout", middleware.AuthMiddleware(), handlers.Logout)
		auth.GET("/me", middleware.AuthMiddleware(), handlers.CurrentUser)

		// OAuth
		auth.GET("/google/login", handlers.GoogleLogin)
		auth.GET("/google/callback", handlers.GoogleCallback)
	}
}
