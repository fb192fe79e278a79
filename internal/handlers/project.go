package handlers

import (
	"net/http"

	"github.com/Ernie1234/team-task-backend/internal/database"
	"github.com/Ernie1234/team-task-backend/internal/models"
	"github.com/Ernie1234/team-task-backend/internal/services"
	"github.com/gin-gonic/gin"
)

type createProjectInput struct {
	Name        string `json:"name" binding:"required"`
	Emoji       string `json:"emoji"`
	Description string `json:"description"`
}

// CreateProject adds a project to a workspace the caller belongs to
func CreateProject(c *gin.Context) {
	userID := c.MustGet("userId").(string)
	workspaceID := c.Param("workspaceId")

	if !services.VerifyWorkspaceAccess(userID, workspaceID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied to workspace"})
		return
	}

	var input createProjectInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project := models.Project{
		Name:        input.Name,
		Description: input.Description,
		WorkspaceID: workspaceID,
		CreatedByID: userID,
	}
	if input.Emoji != "" {
		project.Emoji = input.Emoji
	}
	if err := database.DB.Create(&project).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
		return
	}

	services.RecordActivity(userID, workspaceID, "created project "+project.Name)

	c.JSON(http.StatusCreated, gin.H{"project": project})
}

// GetProjects lists a workspace's projects
func GetProjects(c *gin.Context) {
	userID := c.MustGet("userId").(string)
	workspaceID := c.Param("workspaceId")

	if !services.VerifyWorkspaceAccess(userID, workspaceID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied to workspace"})
		return
	}

	var projects []models.Project
	if err := database.DB.Where("workspace_id = ?", workspaceID).
		Order("created_at desc").Find(&projects).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch projects"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

// GetProject returns one project, membership-guarded via its workspace
func GetProject(c *gin.Context) {
	userID := c.MustGet("userId").(string)
	projectID := c.Param("projectId")

	if !services.VerifyProjectAccess(userID, projectID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied to project"})
		return
	}

	var project models.Project
	if err := database.DB.Preload("CreatedBy").First(&project, "id = ?", projectID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"project": project})
}
