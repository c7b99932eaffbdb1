package models

import (
	"time"
)

// MedicationStatus represents the status of a medication
type MedicationStatus string

const (
	MedicationActive    MedicationStatus = "active"
	MedicationCompleted MedicationStatus = "completed"
	MedicationArchived  MedicationStatus = "archived"
)

// Ownership is the closed set of medication management modes. A self-managed
// medication is fully under the patient's control; a prescribed one may only
// be edited or deleted by the doctor who wrote it.
type Ownership int

const (
	SelfManaged Ownership = iota
	DoctorPrescribed
)

// Medication belongs to exactly one patient. PrescribedByID is nil for
// self-managed medications; on doctor-patient unlink it is cleared rather
// than the row being deleted (handover to the patient).
type Medication struct {
	BaseModel
	UserID         string           `gorm:"size:36;index" json:"userId"`
	Name           string           `gorm:"size:255;not null" json:"name"`
	Dosage         string           `gorm:"size:100;not null" json:"dosage"`
	Frequency      string           `gorm:"size:100;not null" json:"frequency"`
	StartDate      time.Time        `json:"startDate"`
	EndDate        *time.Time       `json:"endDate,omitempty"` // absent = ongoing
	TimeOfIntake   []string         `gorm:"serializer:json" json:"timeOfIntake,omitempty"`
	Instructions   string           `gorm:"type:text" json:"instructions,omitempty"`
	Status         MedicationStatus `gorm:"size:20;default:'active'" json:"status"`
	PrescribedByID *string          `gorm:"size:36;index" json:"prescribedBy,omitempty"`

	// Relations
	User         User  `gorm:"foreignKey:UserID" json:"-"`
	PrescribedBy *User `gorm:"foreignKey:PrescribedByID" json:"-"`
}

// Ownership reports who manages this medication.
func (m *Medication) Ownership() Ownership {
	if m.PrescribedByID != nil && *m.PrescribedByID != "" {
		return DoctorPrescribed
	}
	return SelfManaged
}

// PrescriberID returns the prescribing doctor's id, or "" when self-managed.
func (m *Medication) PrescriberID() string {
	if m.PrescribedByID == nil {
		return ""
	}
	return *m.PrescribedByID
}
