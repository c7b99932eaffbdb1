package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role enum
type Role string

const (
	RolePatient   Role = "patient"
	RoleCaregiver Role = "caregiver"
	RoleDoctor    Role = "doctor"
)

// DoctorStatus gates a doctor's access to doctor-facing features.
// Patients and caregivers are approved at registration; doctors start pending.
type DoctorStatus string

const (
	DoctorPending  DoctorStatus = "pending"
	DoctorApproved DoctorStatus = "approved"
)

// User represents a user in the system
type User struct {
	BaseModel
	Email          string       `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password       string       `gorm:"size:255;not null" json:"-"` // Never send password in JSON
	FirstName      string       `gorm:"size:100" json:"firstName"`
	LastName       string       `gorm:"size:100" json:"lastName"`
	Role           Role         `gorm:"size:20;default:'patient'" json:"role"`
	Status         DoctorStatus `gorm:"size:20;default:'approved'" json:"status"`
	Specialization string       `gorm:"size:100" json:"specialization,omitempty"`
	LicenseNumber  string       `gorm:"size:100" json:"-"`

	// ConnectionCode is a doctor-owned opaque token patients exchange for a
	// care link. Regenerating it invalidates the previous one. Nullable so
	// the unique index ignores users without a code.
	ConnectionCode *string `gorm:"uniqueIndex;size:16" json:"-"`

	// Relations (not always preloaded)
	RefreshTokens []RefreshToken `gorm:"foreignKey:UserID" json:"-"`
	PatientLinks  []CareLink     `gorm:"foreignKey:PatientID" json:"-"`
	DoctorLinks   []CareLink     `gorm:"foreignKey:DoctorID" json:"-"`
}

// UserSanitized represents the user data that is safe to send in API responses.
type UserSanitized struct {
	ID             string       `json:"id"`
	Email          string       `json:"email"`
	FirstName      string       `json:"firstName"`
	LastName       string       `json:"lastName"`
	Role           Role         `json:"role"`
	Status         DoctorStatus `json:"status"`
	Specialization string       `json:"specialization,omitempty"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

// SetPassword hashes a password and sets it on the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword compares a password with the user's hashed password
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// FullName returns the user's display name.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// IsApprovedDoctor reports whether the user may act as a doctor.
func (u *User) IsApprovedDoctor() bool {
	return u.Role == RoleDoctor && u.Status == DoctorApproved
}

// Sanitize creates a UserSanitized struct from a User model, excluding
// sensitive data. The connection code is deliberately never serialized.
func (u *User) Sanitize() UserSanitized {
	return UserSanitized{
		ID:             u.ID,
		Email:          u.Email,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Role:           u.Role,
		Status:         u.Status,
		Specialization: u.Specialization,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}
