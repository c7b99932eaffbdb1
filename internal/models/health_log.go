package models

import (
	"time"
)

// Vitals holds the measurements attached to a health log entry.
type Vitals struct {
	BloodPressure string  `gorm:"size:20" json:"bloodPressure,omitempty"`
	HeartRate     int     `json:"heartRate,omitempty"`
	Temperature   float64 `json:"temperature,omitempty"`
	Weight        float64 `json:"weight,omitempty"`
}

// HealthLog is a patient's daily self-report. Doctors may read a patient's
// logs only while linked to that patient.
type HealthLog struct {
	BaseModel
	UserID      string    `gorm:"size:36;index" json:"userId"`
	Date        time.Time `json:"date"`
	Mood        string    `gorm:"size:50;not null" json:"mood"`
	Symptoms    string    `gorm:"size:500" json:"symptoms,omitempty"`
	Vitals      Vitals    `gorm:"embedded;embeddedPrefix:vitals_" json:"vitals"`
	SleepHours  float64   `json:"sleepHours,omitempty"`
	WaterIntake int       `json:"waterIntake,omitempty"`
	Notes       string    `gorm:"type:text" json:"notes,omitempty"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"-"`
}
