package handlers

import (
	"fmt"
	"net/http"

	"github.com/Ernie1234/team-task-backend/internal/database"
	"github.com/Ernie1234/team-task-backend/internal/models"
	"github.com/Ernie1234/team-task-backend/internal/services"
	"github.com/Ernie1234/team-task-backend/pkg/utils"
	"github.com/gin-gonic/gin"
)

// ensureRole fetches a role row by name, creating it on first use.
func ensureRole(name models.RoleName) (models.Role, error) {
	var role models.Role
	err := database.DB.First(&role, "name = ?", name).Error
	if err == nil {
		return role, nil
	}
	role = models.Role{Name: name, Permissions: defaultPermissions(name)}
	if err := database.DB.Create(&role).Error; err != nil {
		return models.Role{}, err
	}
	return role, nil
}

func defaultPermissions(name models.RoleName) []string {
	switch name {
	case models.RoleOwner:
		return []string{"CREATE_WORKSPACE", "DELETE_WORKSPACE", "EDIT_WORKSPACE", "MANAGE_WORKSPACE_SETTINGS", "ADD_MEMBER", "REMOVE_MEMBER", "CREATE_PROJECT", "EDIT_PROJECT", "DELETE_PROJECT", "CREATE_TASK", "EDIT_TASK", "DELETE_TASK", "VIEW_ONLY"}
	case models.RoleAdmin:
		return []string{"ADD_MEMBER", "CREATE_PROJECT", "EDIT_PROJECT", "DELETE_PROJECT", "CREATE_TASK", "EDIT_TASK", "DELETE_TASK", "MANAGE_WORKSPACE_SETTINGS", "VIEW_ONLY"}
	default:
		return []string{"CREATE_TASK", "EDIT_TASK", "VIEW_ONLY"}
	}
}

type createWorkspaceInput struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// CreateWorkspace creates a workspace, makes the caller its OWNER member
// and switches their current workspace to it.
func CreateWorkspace(c *gin.Context) {
	userID := c.MustGet("userId").(string)

	var input createWorkspaceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	workspace := models.Workspace{
		Name:        input.Name,
		Description: input.Description,
		OwnerID:     userID,
		InviteCode:  utils.GenerateInviteCode(),
	}
	if err := database.DB.Create(&workspace).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create workspace"})
		return
	}

	ownerRole, err := ensureRole(models.RoleOwner)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create workspace"})
		return
	}
	member := models.Member{
		UserID:      userID,
		WorkspaceID: workspace.ID,
		RoleID:      ownerRole.ID,
	}
	if err := database.DB.Create(&member).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create workspace"})
		return
	}

	database.DB.Model(&models.User{}).Where("id = ?", userID).
		Update("current_workspace_id", workspace.ID)

	c.JSON(http.StatusCreated, gin.H{"workspace": workspace})
}

// GetMyWorkspaces lists workspaces the caller belongs to
func GetMyWorkspaces(c *gin.Context) {
	userID := c.MustGet("userId").(string)

	var members []models.Member
	if err := database.DB.Preload("Workspace").Where("user_id = ?", userID).Find(&members).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch workspaces"})
		return
	}

	workspaces := make([]models.Workspace, 0, len(members))
	for _, m := range members {
		workspaces = append(workspaces, m.Workspace)
	}
	c.JSON(http.StatusOK, gin.H{"workspaces": workspaces})
}

// GetWorkspace returns one workspace with the caller's role
func GetWorkspace(c *gin.Context) {
	userID := c.MustGet("userId").(string)
	workspaceID := c.Param("workspaceId")

	var member models.Member
	err := database.DB.Preload("Role").Preload("Workspace").
		Where("user_id = ? AND workspace_id = ?", userID, workspaceID).
		First(&member).Error
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied to workspace"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"workspace": member.Workspace, "role": member.Role.Name})
}

// JoinWorkspaceByInvite adds the caller as MEMBER of the workspace
// behind an invite code
func JoinWorkspaceByInvite(c *gin.Context) {
	userID := c.MustGet("userId").(string)
	inviteCode := c.Param("inviteCode")

	var workspace models.Workspace
	if err := database.DB.First(&workspace, "invite_code = ?", inviteCode).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invalid invite code"})
		return
	}

	if services.VerifyWorkspaceAccess(userID, workspace.ID) {
		c.JSON(http.StatusConflict, gin.H{"error": "Already a member of this workspace"})
		return
	}

	memberRole, err := ensureRole(models.RoleMember)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to join workspace"})
		return
	}
	member := models.Member{
		UserID:      userID,
		WorkspaceID: workspace.ID,
		RoleID:      memberRole.ID,
	}
	if err := database.DB.Create(&member).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to join workspace"})
		return
	}

	var user models.User
	database.DB.First(&user, "id = ?", userID)
	services.RecordActivity(userID, workspace.ID, fmt.Sprintf("%s joined the workspace", user.Name))

	c.JSON(http.StatusOK, gin.H{"workspace": workspace})
}

// ChangeCurrentWorkspace switches which workspace room the user's next
// socket connection auto-joins
func ChangeCurrentWorkspace(c *gin.Context) {
	userID := c.MustGet("userId").(string)
	workspaceID := c.Param("workspaceId")

	if !services.VerifyWorkspaceAccess(userID, workspaceID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied to workspace"})
		return
	}

	if err := database.DB.Model(&models.User{}).Where("id = ?", userID).
		Update("current_workspace_id", workspaceID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to switch workspace"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"currentWorkspace": workspaceID})
}

// GetWorkspaceMembers lists members with their roles
func GetWorkspaceMembers(c *gin.Context) {
	userID := c.MustGet("userId").(string)
	workspaceID := c.Param("workspaceId")

	if !services.VerifyWorkspaceAccess(userID, workspaceID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied to workspace"})
		return
	}

	var members []models.Member
	if err := database.DB.Preload("User").Preload("Role").
		Where("workspace_id = ?", workspaceID).Find(&members).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch members"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"members": members})
}
