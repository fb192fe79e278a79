package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusBacklog    TaskStatus = "BACKLOG"
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusInReview   TaskStatus = "IN_REVIEW"
	TaskStatusDone       TaskStatus = "DONE"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusBacklog, TaskStatusTodo, TaskStatusInProgress, TaskStatusInReview, TaskStatusDone:
		return true
	}
	return false
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "LOW"
	TaskPriorityMedium TaskPriority = "MEDIUM"
	TaskPriorityHigh   TaskPriority = "HIGH"
)

func (p TaskPriority) Valid() bool {
	return p == TaskPriorityLow || p == TaskPriorityMedium || p == TaskPriorityHigh
}

type Task struct {
	ID          string       `gorm:"primaryKey;type:text" json:"id"`
	TaskCode    string       `gorm:"uniqueIndex" json:"taskCode"`
	Title       string       `gorm:"not null" json:"title"`
	Description string       `json:"description"`
	ProjectID   string       `gorm:"index;type:text;not null" json:"projectId"`
	WorkspaceID string       `gorm:"index;type:text;not null" json:"workspaceId"`
	Status      TaskStatus   `gorm:"type:text;default:'TODO'" json:"status"`
	Priority    TaskPriority `gorm:"type:text;default:'MEDIUM'" json:"priority"`
	AssignedTo  *string      `gorm:"index;type:text" json:"assignedTo"`
	CreatedByID string       `gorm:"type:text;not null" json:"createdBy"`
	DueDate     *time.Time   `json:"dueDate"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`

	Project   Project `gorm:"foreignKey:ProjectID" json:"-"`
	Assignee  *User   `gorm:"foreignKey:AssignedTo" json:"assignee,omitempty"`
	CreatedBy User    `gorm:"foreignKey:CreatedByID" json:"createdByUser,omitempty"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.TaskCode == "" {
		t.TaskCode = fmt.Sprintf("task-%s", uuid.New().String()[:8])
	}
	return
}
