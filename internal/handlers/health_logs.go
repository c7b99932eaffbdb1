package handlers

import (
	"time"

	"healthsync-server/internal/middleware"
	"healthsync-server/internal/models"
	"healthsync-server/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// HealthLogHandler handles a patient's daily health logs.
type HealthLogHandler struct {
	DB *gorm.DB
}

// NewHealthLogHandler creates a new HealthLogHandler.
func NewHealthLogHandler(db *gorm.DB) *HealthLogHandler {
	return &HealthLogHandler{DB: db}
}

// GetLogs handles GET /api/logs.
func (h *HealthLogHandler) GetLogs(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var logs []models.HealthLog
	if err := h.DB.Where("user_id = ?", userID).Order("date desc").Find(&logs).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch logs: "+err.Error())
		return
	}
	utils.Success(c, "Logs fetched successfully", logs)
}

// CreateLogRequest represents the request body for a health log entry.
type CreateLogRequest struct {
	Mood        string        `json:"mood" binding:"required"`
	Symptoms    string        `json:"symptoms"`
	Vitals      models.Vitals `json:"vitals"`
	SleepHours  float64       `json:"sleepHours"`
	WaterIntake int           `json:"waterIntake"`
	Notes       string        `json:"notes"`
	Date        *time.Time    `json:"date"`
}

// CreateLog handles POST /api/logs.
func (h *HealthLogHandler) CreateLog(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var req CreateLogRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	date := time.Now()
	if req.Date != nil {
		date = *req.Date
	}

	log := models.HealthLog{
		UserID:      userID,
		Date:        date,
		Mood:        req.Mood,
		Symptoms:    req.Symptoms,
		Vitals:      req.Vitals,
		SleepHours:  req.SleepHours,
		WaterIntake: req.WaterIntake,
		Notes:       req.Notes,
	}
	if err := h.DB.Create(&log).Error; err != nil {
		utils.InternalServerError(c, "Failed to create log: "+err.Error())
		return
	}
	utils.Created(c, "Log created successfully", log)
}
