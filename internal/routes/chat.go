package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Ernie1234/team-task-backend/internal/handlers"
	"github.com/Ernie1234/team-task-backend/internal/middleware"
)

func RegisterChatRoutes(r gin.IRouter) {
	chat := r.Group("/chat")
	chat.Use(middleware.AuthMiddleware())
	{
		// History
		chat.GET("/workspace/:workspaceId/messages", handlers.GetWorkspaceMessages)
		chat.GET("/project/:projectId/messages", handlers.GetProjectMessages)
		chat.GET("/direct/:otherUserId/messages", handlers.GetDirectMessages)

		// Send (rate limited per user inside the handlers)
		chat.POST("/workspace/:workspaceId/messages", handlers.SendWorkspaceMessage)
		chat.POST("/project/:projectId/messages", handlers.SendProjectMessage)
		chat.POST("/direct/:otherUserId/messages", handlers.SendDirectMessage)

		// Search
		chat.GET("/workspace/:workspaceId/search", handlers.SearchWorkspaceMessages)
		chat.GET("/project/:projectId/search", handlers.SearchProjectMessages)

		// Workspace chat extras
		chat.GET("/workspace/:workspaceId/online", handlers.GetOnlineUsers)
		chat.GET("/workspace/:workspaceId/members", handlers.GetChatMembers)
		chat.GET("/workspace/:workspaceId/stats", handlers.GetWorkspaceStats)

		chat.GET("/conversations", handlers.GetDirectConversations)
		chat.POST("/read", handlers.MarkMessagesRead)
	}
}
