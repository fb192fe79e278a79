package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type RoleName string

const (
	RoleOwner  RoleName = "OWNER"
	RoleAdmin  RoleName = "ADMIN"
	RoleMember RoleName = "MEMBER"
)

type Workspace struct {
	ID          string    `gorm:"primaryKey;type:text" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `json:"description"`
	OwnerID     string    `gorm:"index;type:text;not null" json:"ownerId"`
	InviteCode  string    `gorm:"uniqueIndex" json:"inviteCode"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	Owner User `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
}

func (w *Workspace) BeforeCreate(tx *gorm.DB) (err error) {
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	return
}

type Project struct {
	ID          string    `gorm:"primaryKey;type:text" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Emoji       string    `gorm:"default:'📋'" json:"emoji"`
	Description string    `json:"description"`
	WorkspaceID string    `gorm:"index;type:text;not null" json:"workspaceId"`
	CreatedByID string    `gorm:"type:text;not null" json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	Workspace Workspace `gorm:"foreignKey:WorkspaceID" json:"-"`
	CreatedBy User      `gorm:"foreignKey:CreatedByID" json:"createdByUser,omitempty"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return
}

// Role carries a named permission set; permissions are stored as a
// Postgres text array.
type Role struct {
	ID          string         `gorm:"primaryKey;type:text" json:"id"`
	Name        RoleName       `gorm:"uniqueIndex;type:text;not null" json:"name"`
	Permissions pq.StringArray `gorm:"type:text[]" json:"permissions"`
}

func (r *Role) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return
}

// Member links a user to a workspace with a role. Its existence is the
// whole of workspace access control.
type Member struct {
	ID          string    `gorm:"primaryKey;type:text" json:"id"`
	UserID      string    `gorm:"index:idx_member_user_workspace;type:text;not null" json:"userId"`
	WorkspaceID string    `gorm:"index:idx_member_user_workspace;type:text;not null" json:"workspaceId"`
	RoleID      string    `gorm:"type:text;not null" json:"roleId"`
	JoinedAt    time.Time `json:"joinedAt"`

	User      User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Workspace Workspace `gorm:"foreignKey:WorkspaceID" json:"-"`
	Role      Role      `gorm:"foreignKey:RoleID" json:"role,omitempty"`
}

func (m *Member) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now()
	}
	return
}
