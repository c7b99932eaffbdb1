package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"healthsync-server/internal/config"
	"healthsync-server/internal/models"
	"healthsync-server/internal/services"
	"healthsync-server/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupRouter(t *testing.T) (*gin.Engine, *gorm.DB, *config.Config) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, models.AutoMigrate(db))

	cfg := &config.Config{
		JWTSecret:                 "test-secret",
		JWTRefreshSecret:          "test-refresh",
		JWTExpirationMinutes:      15,
		JWTRefreshExpirationHours: 1,
	}

	router := gin.New()
	SetupRoutes(router, db, cfg, zap.NewNop())
	return router, db, cfg
}

func createUser(t *testing.T, db *gorm.DB, email string, role models.Role) models.User {
	t.Helper()
	user := models.User{
		Email:     email,
		FirstName: "Test",
		LastName:  "User",
		Role:      role,
		Status:    models.DoctorApproved,
	}
	require.NoError(t, user.SetPassword("password123"))
	require.NoError(t, db.Create(&user).Error)
	return user
}

func postJSON(t *testing.T, router *gin.Engine, target, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// Code-based connect is served at /doctor/connect, the path existing clients
// call, alongside the /patient/connect alias.
func TestCodeConnectPaths(t *testing.T) {
	router, db, cfg := setupRouter(t)

	doctor := createUser(t, db, "doc@example.com", models.RoleDoctor)
	patient := createUser(t, db, "pat@example.com", models.RolePatient)

	code, err := services.NewConnectionService(db).GenerateCode(doctor.ID)
	require.NoError(t, err)

	patientToken, _, err := utils.GenerateTokens(&patient, cfg)
	require.NoError(t, err)

	w := postJSON(t, router, "/api/doctor/connect", patientToken,
		gin.H{"connectionCode": code})
	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, db.Model(&models.CareLink{}).
		Where("doctor_id = ? AND patient_id = ?", doctor.ID, patient.ID).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)

	// The alias reaches the same handler: the pair is already linked.
	w = postJSON(t, router, "/api/patient/connect", patientToken,
		gin.H{"connectionCode": code})
	assert.Equal(t, http.StatusConflict, w.Code)

	// The path lives under /doctor but the caller must be patient-side.
	doctorToken, _, err := utils.GenerateTokens(&doctor, cfg)
	require.NoError(t, err)
	w = postJSON(t, router, "/api/doctor/connect", doctorToken,
		gin.H{"connectionCode": code})
	assert.Equal(t, http.StatusForbidden, w.Code)
}
