package services

import (
	"github.com/Ernie1234/team-task-backend/internal/database"
	"github.com/Ernie1234/team-task-backend/internal/models"
	"github.com/Ernie1234/team-task-backend/pkg/logger"
)

// RecordActivity appends a workspace feed entry. Failures are logged,
// never surfaced; the feed is best-effort.
func RecordActivity(userID, workspaceID, message string) {
	activity := models.Activity{
		Message:     message,
		UserID:      userID,
		WorkspaceID: workspaceID,
	}
	if err := database.DB.Create(&activity).Error; err != nil {
		logger.Error().Err(err).Str("workspaceId", workspaceID).Msg("Failed to record activity")
	}
}

// RecentActivities returns the newest feed entries for a workspace.
func RecentActivities(workspaceID string, limit int) ([]models.Activity, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var activities []models.Activity
	err := database.DB.
		Preload("User").
		Where("workspace_id = ?", workspaceID).
		Order("created_at desc").
		Limit(limit).
		Find(&activities).Error
	return activities, err
}
