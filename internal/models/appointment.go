package models

import (
	"time"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusCompleted AppointmentStatus = "completed"
	// StatusUpcoming is the legacy default for free-text bookings that have
	// no doctor on record to confirm them.
	StatusUpcoming AppointmentStatus = "upcoming"
)

// CanTransitionTo reports whether the state machine allows moving from s to
// next. Cancelled and completed are terminal.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed, StatusUpcoming:
		return next == StatusCancelled || next == StatusCompleted
	}
	return false
}

// Appointment represents a scheduled medical appointment. DoctorID is nil for
// legacy free-text bookings, which carry only DoctorName.
type Appointment struct {
	BaseModel
	PatientID    string            `gorm:"size:36;index" json:"patientId"`
	DoctorID     *string           `gorm:"size:36;index" json:"doctorId,omitempty"`
	DoctorName   string            `gorm:"size:255" json:"doctorName,omitempty"`
	Date         time.Time         `json:"date"`
	Location     string            `gorm:"size:255" json:"location"`
	Notes        string            `gorm:"type:text" json:"notes,omitempty"`
	Status       AppointmentStatus `gorm:"size:20;default:'pending'" json:"status"`
	CancelReason string            `gorm:"size:255" json:"cancelReason,omitempty"`

	// Relations
	Patient User  `gorm:"foreignKey:PatientID" json:"-"`
	Doctor  *User `gorm:"foreignKey:DoctorID" json:"-"`
}

// AddressedDoctorID returns the confirming doctor's id, or "" for legacy
// free-text appointments.
func (a *Appointment) AddressedDoctorID() string {
	if a.DoctorID == nil {
		return ""
	}
	return *a.DoctorID
}

// IsParticipant reports whether userID is one of the two parties.
func (a *Appointment) IsParticipant(userID string) bool {
	return userID == a.PatientID || userID == a.AddressedDoctorID()
}
