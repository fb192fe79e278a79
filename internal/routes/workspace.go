package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Ernie1234/team-task-backend/internal/handlers"
	"github.com/Ernie1234/team-task-backend/internal/middleware"
)

func RegisterWorkspaceRoutes(r gin.IRouter) {
	ws := r.Group("/workspaces")
	ws.Use(middleware.AuthMiddleware())
	{
		ws.POST("", handlers.CreateWorkspace)
		ws.GET("", handlers.GetMyWorkspaces)
		ws.GET("/:workspaceId", handlers.GetWorkspace)
		ws.GET("/:workspaceId/members", handlers.GetWorkspaceMembers)
		ws.POST("/join/:inviteCode", handlers.JoinWorkspaceByInvite)
		ws.PUT("/:workspaceId/current", handlers.ChangeCurrentWorkspace)

		ws.GET("/:workspaceId/activities", handlers.GetWorkspaceActivities)

		// Projects live under their workspace
		ws.POST("/:workspaceId/projects", handlers.CreateProject)
		ws.GET("/:workspaceId/projects", handlers.GetProjects)
		ws.GET("/:workspaceId/projects/:projectId", handlers.GetProject)

		// Tasks live under their project
		ws.POST("/:workspaceId/projects/:projectId/tasks", handlers.CreateTask)
		ws.GET("/:workspaceId/projects/:projectId/tasks", handlers.GetTasks)
		ws.PUT("/:workspaceId/projects/:projectId/tasks/:taskId/status", handlers.UpdateTaskStatus)
	}
}
