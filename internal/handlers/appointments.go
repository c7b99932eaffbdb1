package handlers

import (
	"time"

	"healthsync-server/internal/middleware"
	"healthsync-server/internal/services"
	"healthsync-server/internal/utils"

	"github.com/gin-gonic/gin"
)

// AppointmentHandler handles the patient side of appointments.
type AppointmentHandler struct {
	Appointments *services.AppointmentService
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(appointments *services.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{Appointments: appointments}
}

// CreateAppointmentRequest represents the request body for booking an
// appointment. Supplying doctorId selects the doctor-confirmed flow;
// otherwise doctorName and location drive the legacy free-text flow.
type CreateAppointmentRequest struct {
	DoctorID   string    `json:"doctorId"`
	DoctorName string    `json:"doctorName"`
	Date       time.Time `json:"date" binding:"required"`
	Location   string    `json:"location"`
	Notes      string    `json:"notes"`
}

// CreateAppointment handles POST /api/appointments.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	patientID, _ := middleware.GetUserIDFromContext(c)

	var req CreateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appointment, err := h.Appointments.Create(patientID, services.AppointmentInput{
		DoctorID:   req.DoctorID,
		DoctorName: req.DoctorName,
		Date:       req.Date,
		Location:   req.Location,
		Notes:      req.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Created(c, "Appointment created successfully", appointment)
}

// GetAppointments handles GET /api/appointments.
func (h *AppointmentHandler) GetAppointments(c *gin.Context) {
	patientID, _ := middleware.GetUserIDFromContext(c)

	appointments, err := h.Appointments.ForPatient(patientID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Appointments fetched successfully", appointments)
}

// UpdateAppointmentRequest is a partial edit of a booking's details. Status
// is not accepted here: only the addressed doctor moves an appointment
// through its lifecycle.
type UpdateAppointmentRequest struct {
	DoctorName *string    `json:"doctorName"`
	Date       *time.Time `json:"date"`
	Location   *string    `json:"location"`
	Notes      *string    `json:"notes"`
}

// UpdateAppointment handles PUT /api/appointments/:id.
func (h *AppointmentHandler) UpdateAppointment(c *gin.Context) {
	patientID, _ := middleware.GetUserIDFromContext(c)

	var req UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	appointment, err := h.Appointments.Update(patientID, c.Param("id"), services.AppointmentUpdate{
		DoctorName: req.DoctorName,
		Date:       req.Date,
		Location:   req.Location,
		Notes:      req.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Appointment updated successfully", appointment)
}

// DeleteAppointment handles DELETE /api/appointments/:id.
func (h *AppointmentHandler) DeleteAppointment(c *gin.Context) {
	patientID, _ := middleware.GetUserIDFromContext(c)

	if err := h.Appointments.Delete(patientID, c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Appointment deleted successfully", gin.H{"id": c.Param("id")})
}
