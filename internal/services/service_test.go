package services

import (
	"testing"
	"time"

	"healthsync-server/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory database migrated with the full schema.
// Max one open connection so every query sees the same :memory: instance.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, models.AutoMigrate(db))
	return db
}

func createDoctor(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	doctor := models.User{
		Email:          email,
		FirstName:      "Gregory",
		LastName:       "House",
		Role:           models.RoleDoctor,
		Status:         models.DoctorApproved,
		Specialization: "Diagnostics",
	}
	require.NoError(t, doctor.SetPassword("password123"))
	require.NoError(t, db.Create(&doctor).Error)
	return doctor
}

func createPatient(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	patient := models.User{
		Email:     email,
		FirstName: "Jane",
		LastName:  "Doe",
		Role:      models.RolePatient,
		Status:    models.DoctorApproved,
	}
	require.NoError(t, patient.SetPassword("password123"))
	require.NoError(t, db.Create(&patient).Error)
	return patient
}

func linkPair(t *testing.T, db *gorm.DB, doctorID, patientID string) {
	t.Helper()
	require.NoError(t, db.Create(&models.CareLink{DoctorID: doctorID, PatientID: patientID}).Error)
}

func countNotifications(t *testing.T, db *gorm.DB, userID string, typ models.NotificationType) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("user_id = ? AND type = ?", userID, typ).
		Count(&count).Error)
	return count
}

func fixedTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return parsed
}
