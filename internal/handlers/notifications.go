package handlers

import (
	"healthsync-server/internal/middleware"
	"healthsync-server/internal/models"
	"healthsync-server/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// NotificationHandler handles the notification feed. Clients poll this;
// notifications are fire-and-forget records and only IsRead ever changes.
type NotificationHandler struct {
	DB *gorm.DB
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(db *gorm.DB) *NotificationHandler {
	return &NotificationHandler{DB: db}
}

// GetNotifications handles GET /api/notifications.
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var notifications []models.Notification
	err := h.DB.Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(50).
		Find(&notifications).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch notifications: "+err.Error())
		return
	}
	utils.Success(c, "Notifications fetched successfully", notifications)
}

// MarkAsRead handles PATCH /api/notifications/:id/read.
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var notification models.Notification
	if err := h.DB.First(&notification, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Notification not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	if notification.UserID != userID {
		utils.Forbidden(c, "Not your notification")
		return
	}

	if err := h.DB.Model(&notification).Update("is_read", true).Error; err != nil {
		utils.InternalServerError(c, "Failed to update notification: "+err.Error())
		return
	}
	utils.Success(c, "Notification marked as read", notification)
}

// MarkAllAsRead handles PATCH /api/notifications/read-all.
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	err := h.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to update notifications: "+err.Error())
		return
	}
	utils.Success(c, "All notifications marked as read", nil)
}
