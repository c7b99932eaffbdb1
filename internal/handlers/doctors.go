package handlers

import (
	"time"

	"healthsync-server/internal/middleware"
	"healthsync-server/internal/models"
	"healthsync-server/internal/services"
	"healthsync-server/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// DoctorHandler handles doctor-facing requests. Every patient-scoped
// operation goes through the care relationship guard in the service layer.
type DoctorHandler struct {
	DB            *gorm.DB
	Connections   *services.ConnectionService
	Prescriptions *services.PrescriptionService
	Appointments  *services.AppointmentService
}

// NewDoctorHandler creates a new DoctorHandler.
func NewDoctorHandler(db *gorm.DB, connections *services.ConnectionService, prescriptions *services.PrescriptionService, appointments *services.AppointmentService) *DoctorHandler {
	return &DoctorHandler{
		DB:            db,
		Connections:   connections,
		Prescriptions: prescriptions,
		Appointments:  appointments,
	}
}

// GetPatients handles GET /api/doctor/patients.
func (h *DoctorHandler) GetPatients(c *gin.Context) {
	doctorID, _ := middleware.GetUserIDFromContext(c)

	patients, err := h.Connections.LinkedPatients(doctorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	sanitized := make([]models.UserSanitized, len(patients))
	for i, p := range patients {
		sanitized[i] = p.Sanitize()
	}
	utils.Success(c, "Patients fetched successfully", sanitized)
}

// GenerateCode handles POST /api/doctor/generate-code. The previous code, if
// any, stops working immediately.
func (h *DoctorHandler) GenerateCode(c *gin.Context) {
	doctorID, _ := middleware.GetUserIDFromContext(c)

	code, err := h.Connections.GenerateCode(doctorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Connection code generated", gin.H{"connectionCode": code})
}

// GetPatientLogs handles GET /api/doctor/patient/:id/logs. Fails closed with
// Forbidden when the patient is not linked to the caller.
func (h *DoctorHandler) GetPatientLogs(c *gin.Context) {
	doctorID, _ := middleware.GetUserIDFromContext(c)
	patientID := c.Param("id")

	ok, err := services.IsAuthorized(h.DB, doctorID, patientID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !ok {
		utils.Forbidden(c, "Not authorized to view this patient")
		return
	}

	var logs []models.HealthLog
	if err := h.DB.Where("user_id = ?", patientID).Order("date desc").Find(&logs).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch logs: "+err.Error())
		return
	}
	utils.Success(c, "Logs fetched successfully", logs)
}

// GetAppointments handles GET /api/doctor/appointments.
func (h *DoctorHandler) GetAppointments(c *gin.Context) {
	doctorID, _ := middleware.GetUserIDFromContext(c)

	appointments, err := h.Appointments.ForDoctor(doctorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Appointments fetched successfully", appointments)
}

// UpdateAppointmentStatusRequest represents the request body for an
// appointment status change.
type UpdateAppointmentStatusRequest struct {
	Status models.AppointmentStatus `json:"status" binding:"required"`
}

// UpdateAppointmentStatus handles PATCH /api/doctor/appointments/:id/status.
func (h *DoctorHandler) UpdateAppointmentStatus(c *gin.Context) {
	doctorID, _ := middleware.GetUserIDFromContext(c)

	var req UpdateAppointmentStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appointment, err := h.Appointments.UpdateStatus(doctorID, c.Param("id"), req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Appointment status updated", appointment)
}

// PrescribeRequest represents the request body for a prescribe batch.
type PrescribeRequest struct {
	PatientID   string `json:"patientId" binding:"required"`
	Medications []struct {
		Name      string    `json:"name" binding:"required"`
		Dosage    string    `json:"dosage" binding:"required"`
		Frequency string    `json:"frequency" binding:"required"`
		StartDate time.Time `json:"startDate"`
	} `json:"medications" binding:"required,min=1,dive"`
	Notes string `json:"notes"`
}

// Prescribe handles POST /api/doctor/prescribe.
func (h *DoctorHandler) Prescribe(c *gin.Context) {
	doctorID, _ := middleware.GetUserIDFromContext(c)

	var req PrescribeRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	items := make([]services.PrescriptionItem, len(req.Medications))
	for i, m := range req.Medications {
		items[i] = services.PrescriptionItem{
			Name:      m.Name,
			Dosage:    m.Dosage,
			Frequency: m.Frequency,
			StartDate: m.StartDate,
		}
	}

	created, err := h.Prescriptions.Prescribe(doctorID, req.PatientID, items, req.Notes)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Created(c, "Medication(s) prescribed", created)
}

// GetPrescriptions handles GET /api/doctor/prescriptions.
func (h *DoctorHandler) GetPrescriptions(c *gin.Context) {
	doctorID, _ := middleware.GetUserIDFromContext(c)

	meds, err := h.Prescriptions.PrescriptionsBy(doctorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Prescriptions fetched successfully", meds)
}

// UpdatePrescriptionRequest is a partial prescription edit.
type UpdatePrescriptionRequest struct {
	Name         *string                  `json:"name"`
	Dosage       *string                  `json:"dosage"`
	Frequency    *string                  `json:"frequency"`
	StartDate    *time.Time               `json:"startDate"`
	EndDate      *time.Time               `json:"endDate"`
	TimeOfIntake []string                 `json:"timeOfIntake"`
	Instructions *string                  `json:"instructions"`
	Status       *models.MedicationStatus `json:"status"`
}

func (r *UpdatePrescriptionRequest) toUpdate() services.MedicationUpdate {
	return services.MedicationUpdate{
		Name:         r.Name,
		Dosage:       r.Dosage,
		Frequency:    r.Frequency,
		StartDate:    r.StartDate,
		EndDate:      r.EndDate,
		TimeOfIntake: r.TimeOfIntake,
		Instructions: r.Instructions,
		Status:       r.Status,
	}
}

// UpdatePrescription handles PUT /api/doctor/prescriptions/:id.
func (h *DoctorHandler) UpdatePrescription(c *gin.Context) {
	doctorID, _ := middleware.GetUserIDFromContext(c)

	var req UpdatePrescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	med, err := h.Prescriptions.UpdatePrescription(doctorID, c.Param("id"), req.toUpdate())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Prescription updated", med)
}

// DeletePrescription handles DELETE /api/doctor/prescriptions/:id.
func (h *DoctorHandler) DeletePrescription(c *gin.Context) {
	doctorID, _ := middleware.GetUserIDFromContext(c)

	if err := h.Prescriptions.DeletePrescription(doctorID, c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Prescription deleted", gin.H{"id": c.Param("id")})
}

// GetRequests handles GET /api/doctor/requests.
func (h *DoctorHandler) GetRequests(c *gin.Context) {
	doctorID, _ := middleware.GetUserIDFromContext(c)

	requests, err := h.Connections.PendingRequestsFor(doctorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Requests fetched successfully", requests)
}

// RespondToRequestRequest represents the accept/reject decision body.
type RespondToRequestRequest struct {
	Status models.ConnectionRequestStatus `json:"status" binding:"required,oneof=accepted rejected"`
}

// RespondToRequest handles PUT /api/doctor/requests/:id.
func (h *DoctorHandler) RespondToRequest(c *gin.Context) {
	doctorID, _ := middleware.GetUserIDFromContext(c)

	var req RespondToRequestRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	request, err := h.Connections.RespondToRequest(doctorID, c.Param("id"), req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Request "+string(req.Status), request)
}

// UnlinkPatient handles DELETE /api/doctor/patients/:patientId — the full
// unlink cascade initiated from the doctor's side.
func (h *DoctorHandler) UnlinkPatient(c *gin.Context) {
	doctorID, _ := middleware.GetUserIDFromContext(c)

	if err := h.Connections.Unlink(doctorID, doctorID, c.Param("patientId")); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Connection removed", nil)
}
