package services

import (
	"healthsync-server/internal/models"

	"gorm.io/gorm"
)

// notify records a notification for userID. It is called inside the same
// transaction as the state transition that triggered it, so a rolled-back
// transition never leaves a stray notification behind.
func notify(tx *gorm.DB, userID string, typ models.NotificationType, message, relatedID string) error {
	n := models.Notification{
		UserID:    userID,
		Type:      typ,
		Message:   message,
		RelatedID: relatedID,
	}
	return tx.Create(&n).Error
}
