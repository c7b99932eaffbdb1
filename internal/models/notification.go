package models

// NotificationType represents the kind of event a notification describes
type NotificationType string

const (
	NotifyPrescription NotificationType = "prescription"
	NotifyConnection   NotificationType = "connection"
	NotifyAppointment  NotificationType = "appointment"
	NotifySystem       NotificationType = "system"
)

// Notification is a fire-and-forget record created as a side effect of state
// transitions. Only IsRead is ever mutated after creation.
type Notification struct {
	BaseModel
	UserID    string           `gorm:"size:36;index" json:"userId"`
	Type      NotificationType `gorm:"size:20;not null" json:"type"`
	Message   string           `gorm:"size:500;not null" json:"message"`
	IsRead    bool             `gorm:"default:false" json:"isRead"`
	RelatedID string           `gorm:"size:36" json:"relatedId,omitempty"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"-"`
}
