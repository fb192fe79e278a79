package handlers

import (
	"net/http"

	"github.com/Ernie1234/team-task-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// GetWorkspaceActivities lists recent activity entries for a workspace
// the caller belongs to.
func GetWorkspaceActivities(c *gin.Context) {
	userID := c.MustGet("userId").(string)
	workspaceID := c.Param("workspaceId")

	if !services.VerifyWorkspaceAccess(userID, workspaceID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not a member of this workspace"})
		return
	}

	limit := intQuery(c, "limit", 20)
	activities, err := services.RecentActivities(workspaceID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch activities"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"activities": activities})
}
