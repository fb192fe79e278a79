package services

import (
	"github.com/Ernie1234/team-task-backend/internal/database"
	"github.com/Ernie1234/team-task-backend/internal/models"
)

// CreateNotification persists a notification for a user. Real-time
// delivery to the recipient's personal room happens at the socket layer.
func CreateNotification(recipientID, senderID, message, link string) (*models.Notification, error) {
	n := models.Notification{
		RecipientID: recipientID,
		SenderID:    senderID,
		Message:     message,
		Link:        link,
	}
	if err := database.DB.Create(&n).Error; err != nil {
		return nil, err
	}
	database.DB.Preload("Sender").First(&n, "id = ?", n.ID)
	return &n, nil
}
