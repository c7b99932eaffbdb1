package handlers

import (
	"healthsync-server/internal/middleware"
	"healthsync-server/internal/models"
	"healthsync-server/internal/services"
	"healthsync-server/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// PatientHandler handles patient-facing requests around the doctor directory
// and the connection lifecycle.
type PatientHandler struct {
	DB          *gorm.DB
	Connections *services.ConnectionService
}

// NewPatientHandler creates a new PatientHandler.
func NewPatientHandler(db *gorm.DB, connections *services.ConnectionService) *PatientHandler {
	return &PatientHandler{DB: db, Connections: connections}
}

// GetDoctors handles GET /api/patient/doctors with an optional search query
// matching name or specialization. Only approved doctors are listed, and
// neither connection codes nor patient lists ever leave the server.
func (h *PatientHandler) GetDoctors(c *gin.Context) {
	query := h.DB.Where("role = ? AND status = ?", models.RoleDoctor, models.DoctorApproved)

	if search := c.Query("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.Where(
			"first_name LIKE ? OR last_name LIKE ? OR specialization LIKE ?",
			pattern, pattern, pattern,
		)
	}

	var doctors []models.User
	if err := query.Find(&doctors).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch doctors: "+err.Error())
		return
	}

	sanitized := make([]models.UserSanitized, len(doctors))
	for i, d := range doctors {
		sanitized[i] = d.Sanitize()
	}
	utils.Success(c, "Doctors fetched successfully", sanitized)
}

// GetMyDoctors handles GET /api/patient/my-doctors — the caller's linked
// doctors.
func (h *PatientHandler) GetMyDoctors(c *gin.Context) {
	patientID, _ := middleware.GetUserIDFromContext(c)

	doctors, err := h.Connections.LinkedDoctors(patientID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	sanitized := make([]models.UserSanitized, len(doctors))
	for i, d := range doctors {
		sanitized[i] = d.Sanitize()
	}
	utils.Success(c, "Doctors fetched successfully", sanitized)
}

// ConnectRequest carries a doctor's connection code.
type ConnectRequest struct {
	ConnectionCode string `json:"connectionCode" binding:"required"`
}

// Connect handles code-based linking, served at POST /api/doctor/connect
// and its /api/patient/connect alias.
func (h *PatientHandler) Connect(c *gin.Context) {
	patientID, _ := middleware.GetUserIDFromContext(c)

	var req ConnectRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if err := h.Connections.ConnectWithCode(patientID, req.ConnectionCode); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Connected to doctor", nil)
}

// RequestConnectionRequest represents the request-based linking body.
type RequestConnectionRequest struct {
	DoctorID string `json:"doctorId" binding:"required"`
	Message  string `json:"message" binding:"max=500"`
}

// RequestConnection handles POST /api/patient/request-connection.
func (h *PatientHandler) RequestConnection(c *gin.Context) {
	patientID, _ := middleware.GetUserIDFromContext(c)

	var req RequestConnectionRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	request, err := h.Connections.RequestConnection(patientID, req.DoctorID, req.Message)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Created(c, "Connection request sent", request)
}

// GetMyRequests handles GET /api/patient/requests.
func (h *PatientHandler) GetMyRequests(c *gin.Context) {
	patientID, _ := middleware.GetUserIDFromContext(c)

	requests, err := h.Connections.RequestsBy(patientID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Requests fetched successfully", requests)
}

// CancelRequest handles DELETE /api/patient/requests/:id.
func (h *PatientHandler) CancelRequest(c *gin.Context) {
	patientID, _ := middleware.GetUserIDFromContext(c)

	if err := h.Connections.CancelRequest(patientID, c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Request cancelled", nil)
}

// UnlinkDoctor handles DELETE /api/patient/doctors/:doctorId — the full
// unlink cascade initiated from the patient's side.
func (h *PatientHandler) UnlinkDoctor(c *gin.Context) {
	patientID, _ := middleware.GetUserIDFromContext(c)

	if err := h.Connections.Unlink(patientID, c.Param("doctorId"), patientID); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Connection removed", nil)
}
