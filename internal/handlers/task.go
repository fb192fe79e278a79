package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Ernie1234/team-task-backend/internal/database"
	"github.com/Ernie1234/team-task-backend/internal/models"
	"github.com/Ernie1234/team-task-backend/internal/services"
	"github.com/gin-gonic/gin"
)

type createTaskInput struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	AssignedTo  *string    `json:"assignedTo"`
	DueDate     *time.Time `json:"dueDate"`
}

// CreateTask creates a task in a project; assigning it notifies the
// assignee in real time.
func CreateTask(c *gin.Context) {
	userID := c.MustGet("userId").(string)
	projectID := c.Param("projectId")

	if !services.VerifyProjectAccess(userID, projectID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied to project"})
		return
	}

	var input createTaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task := models.Task{
		Title:       input.Title,
		Description: input.Description,
		ProjectID:   projectID,
		WorkspaceID: services.ProjectWorkspaceID(projectID),
		Status:      models.TaskStatusTodo,
		Priority:    models.TaskPriorityMedium,
		AssignedTo:  input.AssignedTo,
		CreatedByID: userID,
		DueDate:     input.DueDate,
	}
	if input.Status != "" {
		status := models.TaskStatus(input.Status)
		if !status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task status"})
			return
		}
		task.Status = status
	}
	if input.Priority != "" {
		priority := models.TaskPriority(input.Priority)
		if !priority.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task priority"})
			return
		}
		task.Priority = priority
	}

	if err := database.DB.Create(&task).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create task"})
		return
	}

	var actor models.User
	database.DB.First(&actor, "id = ?", userID)
	services.RecordActivity(userID, task.WorkspaceID, fmt.Sprintf("%s created task %s", actor.Name, task.TaskCode))

	if task.AssignedTo != nil && *task.AssignedTo != userID {
		notification, err := services.CreateNotification(
			*task.AssignedTo,
			userID,
			fmt.Sprintf("%s assigned you task %s: %s", actor.Name, task.TaskCode, task.Title),
			fmt.Sprintf("/project/%s/task/%s", projectID, task.ID),
		)
		if err == nil {
			SendNotificationToUser(*task.AssignedTo, notification)
		}
	}

	c.JSON(http.StatusCreated, gin.H{"task": task})
}

// GetTasks lists a project's tasks
func GetTasks(c *gin.Context) {
	userID := c.MustGet("userId").(string)
	projectID := c.Param("projectId")

	if !services.VerifyProjectAccess(userID, projectID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied to project"})
		return
	}

	var tasks []models.Task
	if err := database.DB.Preload("Assignee").
		Where("project_id = ?", projectID).
		Order("created_at desc").Find(&tasks).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tasks"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

type updateTaskStatusInput struct {
	Status string `json:"status" binding:"required"`
}

// UpdateTaskStatus moves a task across the board
func UpdateTaskStatus(c *gin.Context) {
	userID := c.MustGet("userId").(string)
	taskID := c.Param("taskId")

	var input updateTaskStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	status := models.TaskStatus(input.Status)
	if !status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task status"})
		return
	}

	var task models.Task
	if err := database.DB.First(&task, "id = ?", taskID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}
	if !services.VerifyWorkspaceAccess(userID, task.WorkspaceID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied to workspace"})
		return
	}

	if err := database.DB.Model(&task).Update("status", status).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
		return
	}

	var actor models.User
	database.DB.First(&actor, "id = ?", userID)
	services.RecordActivity(userID, task.WorkspaceID, fmt.Sprintf("%s moved task %s to %s", actor.Name, task.TaskCode, status))

	c.JSON(http.StatusOK, gin.H{"task": task})
}
