package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Activity is a workspace-scoped feed entry ("Alice moved task T-42 to Done").
type Activity struct {
	ID          string    `gorm:"primaryKey;type:text" json:"id"`
	Message     string    `gorm:"type:text;not null" json:"message"`
	UserID      string    `gorm:"index;type:text;not null" json:"userId"`
	WorkspaceID string    `gorm:"index;type:text;not null" json:"workspaceId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	User      User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Workspace Workspace `gorm:"foreignKey:WorkspaceID" json:"-"`
}

func (a *Activity) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return
}
