package models

// ChatMessage belongs to exactly one appointment's chat room. Messages are
// immutable once created and ordered by creation time.
type ChatMessage struct {
	BaseModel
	AppointmentID string `gorm:"size:36;index" json:"appointmentId"`
	SenderID      string `gorm:"size:36;index" json:"senderId"`
	Text          string `gorm:"type:text;not null" json:"text"`

	// Relations
	Appointment Appointment `gorm:"foreignKey:AppointmentID" json:"-"`
	Sender      User        `gorm:"foreignKey:SenderID" json:"-"`
}
