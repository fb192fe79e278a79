package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Name           string     `json:"name"`
	Email          string     `gorm:"uniqueIndex;not null" json:"email"`
	Password       string     `json:"-"`
	ProfilePicture string     `json:"profilePicture"`
	IsActive       bool       `gorm:"default:true" json:"isActive"`
	LastLogin      *time.Time `json:"lastLogin"`

	// The workspace the user last switched to; socket connections
	// auto-join its room.
	CurrentWorkspaceID *string `gorm:"index;type:text" json:"currentWorkspace"`

	// Presence companion fields, persisted across process restarts
	IsOnline bool       `gorm:"default:false" json:"isOnline"`
	LastSeen *time.Time `json:"lastSeen"`
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}
