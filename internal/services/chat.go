package services

import (
	"fmt"
	"strings"
	"time"

	"healthsync-server/internal/models"

	"gorm.io/gorm"
)

// Chat around an appointment opens one hour before its date and closes 24
// hours after it, bounds inclusive, and only while the appointment is
// confirmed.
const (
	ChatWindowBefore = time.Hour
	ChatWindowAfter  = 24 * time.Hour
)

// ChatService gates and persists appointment chat. The window and
// participant checks run on every history read, room join and message send;
// the client's disabled send button is advisory only.
type ChatService struct {
	DB *gorm.DB
}

// NewChatService creates a ChatService.
func NewChatService(db *gorm.DB) *ChatService {
	return &ChatService{DB: db}
}

// Appointment loads the appointment backing a chat room.
func (s *ChatService) Appointment(appointmentID string) (*models.Appointment, error) {
	var appointment models.Appointment
	if err := s.DB.First(&appointment, "id = ?", appointmentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("appointment %s: %w", appointmentID, ErrNotFound)
		}
		return nil, err
	}
	return &appointment, nil
}

// CanChat reports whether userID may use the appointment's chat at time at.
// It fails closed: non-participants and probes outside the window both get
// ErrForbidden.
func (s *ChatService) CanChat(appointment *models.Appointment, userID string, at time.Time) error {
	if !appointment.IsParticipant(userID) {
		return fmt.Errorf("not a participant of this appointment: %w", ErrForbidden)
	}
	if appointment.Status != models.StatusConfirmed {
		return fmt.Errorf("chat is only available for confirmed appointments: %w", ErrForbidden)
	}
	opens := appointment.Date.Add(-ChatWindowBefore)
	closes := appointment.Date.Add(ChatWindowAfter)
	if at.Before(opens) || at.After(closes) {
		return fmt.Errorf("chat window is closed: %w", ErrForbidden)
	}
	return nil
}

// History returns the appointment's messages in creation order, gated the
// same way as sending.
func (s *ChatService) History(userID, appointmentID string, at time.Time) ([]models.ChatMessage, error) {
	appointment, err := s.Appointment(appointmentID)
	if err != nil {
		return nil, err
	}
	if err := s.CanChat(appointment, userID, at); err != nil {
		return nil, err
	}

	var messages []models.ChatMessage
	err = s.DB.Where("appointment_id = ?", appointmentID).
		Order("created_at asc").
		Find(&messages).Error
	return messages, err
}

// SaveMessage validates the gate and persists a message. Persistence
// happens-before relay: callers broadcast only the returned, stored message,
// so a reconnecting client's history fetch is consistent with what was
// broadcast.
func (s *ChatService) SaveMessage(userID, appointmentID, text string, at time.Time) (*models.ChatMessage, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("message text is required: %w", ErrValidation)
	}

	appointment, err := s.Appointment(appointmentID)
	if err != nil {
		return nil, err
	}
	if err := s.CanChat(appointment, userID, at); err != nil {
		return nil, err
	}

	message := models.ChatMessage{
		AppointmentID: appointmentID,
		SenderID:      userID,
		Text:          text,
	}
	if err := s.DB.Create(&message).Error; err != nil {
		return nil, err
	}
	return &message, nil
}
