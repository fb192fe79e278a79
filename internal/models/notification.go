package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Notification struct {
	ID          string    `gorm:"primaryKey;type:text" json:"id"`
	RecipientID string    `gorm:"index;type:text;not null" json:"recipientId"`
	SenderID    string    `gorm:"index;type:text;not null" json:"senderId"`
	Message     string    `gorm:"type:text;not null" json:"message"`
	Link        string    `json:"link"`
	IsRead      bool      `gorm:"default:false" json:"isRead"`
	CreatedAt   time.Time `json:"createdAt"`

	Recipient User `gorm:"foreignKey:RecipientID" json:"-"`
	Sender    User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	return
}
