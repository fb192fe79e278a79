package services

import (
	"github.com/Ernie1234/team-task-backend/internal/database"
	"github.com/Ernie1234/team-task-backend/internal/models"
)

// VerifyWorkspaceAccess reports whether a membership record exists for
// the pair. It never returns an error: any lookup failure, malformed id
// included, reads as a plain denial.
func VerifyWorkspaceAccess(userID, workspaceID string) bool {
	if userID == "" || workspaceID == "" {
		return false
	}
	var count int64
	err := database.DB.Model(&models.Member{}).
		Where("user_id = ? AND workspace_id = ?", userID, workspaceID).
		Count(&count).Error
	if err != nil {
		return false
	}
	return count > 0
}

// VerifyProjectAccess resolves the project's workspace and delegates to
// the workspace check. A missing project is a denial, not an error.
//
// Direct chat has no counterpart here: any authenticated user may open a
// direct conversation with any other user id.
func VerifyProjectAccess(userID, projectID string) bool {
	if userID == "" || projectID == "" {
		return false
	}
	var project models.Project
	if err := database.DB.Select("workspace_id").First(&project, "id = ?", projectID).Error; err != nil {
		return false
	}
	return VerifyWorkspaceAccess(userID, project.WorkspaceID)
}

// ProjectWorkspaceID resolves the workspace a project belongs to, or ""
// when the project does not exist.
func ProjectWorkspaceID(projectID string) string {
	var project models.Project
	if err := database.DB.Select("workspace_id").First(&project, "id = ?", projectID).Error; err != nil {
		return ""
	}
	return project.WorkspaceID
}
