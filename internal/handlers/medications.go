package handlers

import (
	"time"

	"healthsync-server/internal/middleware"
	"healthsync-server/internal/services"
	"healthsync-server/internal/utils"

	"github.com/gin-gonic/gin"
)

// MedicationHandler handles the patient side of medications. Doctor-owned
// medications are read-only here; the server refuses edits even though the
// UI also hides the controls.
type MedicationHandler struct {
	Prescriptions *services.PrescriptionService
}

// NewMedicationHandler creates a new MedicationHandler.
func NewMedicationHandler(prescriptions *services.PrescriptionService) *MedicationHandler {
	return &MedicationHandler{Prescriptions: prescriptions}
}

// GetMedications handles GET /api/medications.
func (h *MedicationHandler) GetMedications(c *gin.Context) {
	patientID, _ := middleware.GetUserIDFromContext(c)

	meds, err := h.Prescriptions.MedicationsFor(patientID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Medications fetched successfully", meds)
}

// CreateMedicationRequest represents a self-managed medication creation.
type CreateMedicationRequest struct {
	Name         string     `json:"name" binding:"required"`
	Dosage       string     `json:"dosage" binding:"required"`
	Frequency    string     `json:"frequency" binding:"required"`
	StartDate    time.Time  `json:"startDate" binding:"required"`
	EndDate      *time.Time `json:"endDate"`
	TimeOfIntake []string   `json:"timeOfIntake"`
}

// CreateMedication handles POST /api/medications.
func (h *MedicationHandler) CreateMedication(c *gin.Context) {
	patientID, _ := middleware.GetUserIDFromContext(c)

	var req CreateMedicationRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	med, err := h.Prescriptions.CreateMedication(patientID, services.MedicationInput{
		Name:         req.Name,
		Dosage:       req.Dosage,
		Frequency:    req.Frequency,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		TimeOfIntake: req.TimeOfIntake,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Created(c, "Medication created successfully", med)
}

// UpdateMedication handles PUT /api/medications/:id.
func (h *MedicationHandler) UpdateMedication(c *gin.Context) {
	patientID, _ := middleware.GetUserIDFromContext(c)

	var req UpdatePrescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	med, err := h.Prescriptions.UpdateMedication(patientID, c.Param("id"), req.toUpdate())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Medication updated successfully", med)
}

// DeleteMedication handles DELETE /api/medications/:id.
func (h *MedicationHandler) DeleteMedication(c *gin.Context) {
	patientID, _ := middleware.GetUserIDFromContext(c)

	if err := h.Prescriptions.DeleteMedication(patientID, c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Medication deleted successfully", gin.H{"id": c.Param("id")})
}
