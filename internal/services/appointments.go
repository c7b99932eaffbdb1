package services

import (
	"fmt"
	"time"

	"healthsync-server/internal/models"

	"gorm.io/gorm"
)

// AppointmentService owns the appointment state machine. Patients create
// appointments; only the addressed doctor (or the unlink cascade) moves them
// through the lifecycle.
type AppointmentService struct {
	DB *gorm.DB
}

// NewAppointmentService creates an AppointmentService.
func NewAppointmentService(db *gorm.DB) *AppointmentService {
	return &AppointmentService{DB: db}
}

// AppointmentInput is a patient booking. DoctorID selects the doctor-confirmed
// flow; when absent, DoctorName and Location drive the legacy free-text flow.
type AppointmentInput struct {
	DoctorID   string
	DoctorName string
	Date       time.Time
	Location   string
	Notes      string
}

// Create books an appointment for the patient. A doctor-targeted booking
// starts pending and waits for the doctor's decision; a legacy free-text
// booking starts upcoming since there is no doctor on record to confirm it.
func (s *AppointmentService) Create(patientID string, input AppointmentInput) (*models.Appointment, error) {
	if input.Date.IsZero() {
		return nil, fmt.Errorf("date is required: %w", ErrValidation)
	}

	appointment := models.Appointment{
		PatientID: patientID,
		Date:      input.Date,
		Location:  input.Location,
		Notes:     input.Notes,
	}

	if input.DoctorID != "" {
		var doctor models.User
		err := s.DB.Where("id = ? AND role = ? AND status = ?",
			input.DoctorID, models.RoleDoctor, models.DoctorApproved).First(&doctor).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, fmt.Errorf("doctor %s: %w", input.DoctorID, ErrNotFound)
			}
			return nil, err
		}
		doctorID := input.DoctorID
		appointment.DoctorID = &doctorID
		appointment.DoctorName = doctor.FullName()
		appointment.Status = models.StatusPending
	} else {
		if input.DoctorName == "" || input.Location == "" {
			return nil, fmt.Errorf("doctorName and location are required: %w", ErrValidation)
		}
		appointment.DoctorName = input.DoctorName
		appointment.Status = models.StatusUpcoming
	}

	if err := s.DB.Create(&appointment).Error; err != nil {
		return nil, err
	}
	return &appointment, nil
}

// ForPatient returns a patient's appointments ordered by date.
func (s *AppointmentService) ForPatient(patientID string) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := s.DB.Where("patient_id = ?", patientID).Order("date asc").Find(&appointments).Error
	return appointments, err
}

// ForDoctor returns the appointments addressed to a doctor ordered by date.
func (s *AppointmentService) ForDoctor(doctorID string) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := s.DB.Preload("Patient").
		Where("doctor_id = ?", doctorID).Order("date asc").Find(&appointments).Error
	return appointments, err
}

// UpdateStatus moves an appointment through the state machine on behalf of
// the addressed doctor and notifies the patient. Illegal transitions
// (terminal states, re-confirming) fail with ErrConflict.
func (s *AppointmentService) UpdateStatus(doctorID, appointmentID string, status models.AppointmentStatus) (*models.Appointment, error) {
	switch status {
	case models.StatusConfirmed, models.StatusCancelled, models.StatusCompleted:
	default:
		return nil, fmt.Errorf("status must be confirmed, cancelled or completed: %w", ErrValidation)
	}

	var appointment models.Appointment
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&appointment, "id = ?", appointmentID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("appointment %s: %w", appointmentID, ErrNotFound)
			}
			return err
		}
		if appointment.AddressedDoctorID() != doctorID {
			return fmt.Errorf("appointment is not addressed to you: %w", ErrForbidden)
		}
		if !appointment.Status.CanTransitionTo(status) {
			return fmt.Errorf("cannot move appointment from %s to %s: %w",
				appointment.Status, status, ErrConflict)
		}

		// Guarded update so two concurrent transitions cannot both land.
		res := tx.Model(&models.Appointment{}).
			Where("id = ? AND status = ?", appointmentID, appointment.Status).
			Update("status", status)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("appointment status changed concurrently: %w", ErrConflict)
		}
		appointment.Status = status

		var doctor models.User
		if err := tx.First(&doctor, "id = ?", doctorID).Error; err != nil {
			return err
		}
		return notify(tx, appointment.PatientID, models.NotifyAppointment,
			fmt.Sprintf("Dr. %s has %s your appointment for %s.",
				doctor.FullName(), status, appointment.Date.Format("Jan 2, 2006")),
			appointment.ID)
	})
	if err != nil {
		return nil, err
	}
	return &appointment, nil
}

// AppointmentUpdate carries a patient's edit of their own booking. Status is
// deliberately absent: patients never change status directly.
type AppointmentUpdate struct {
	DoctorName *string
	Date       *time.Time
	Location   *string
	Notes      *string
}

// Update lets the owning patient edit a booking's details.
func (s *AppointmentService) Update(patientID, appointmentID string, update AppointmentUpdate) (*models.Appointment, error) {
	appointment, err := s.ownedAppointment(patientID, appointmentID)
	if err != nil {
		return nil, err
	}
	if update.DoctorName != nil {
		appointment.DoctorName = *update.DoctorName
	}
	if update.Date != nil {
		appointment.Date = *update.Date
	}
	if update.Location != nil {
		appointment.Location = *update.Location
	}
	if update.Notes != nil {
		appointment.Notes = *update.Notes
	}
	if err := s.DB.Save(appointment).Error; err != nil {
		return nil, err
	}
	return appointment, nil
}

// Delete lets the owning patient remove a booking.
func (s *AppointmentService) Delete(patientID, appointmentID string) error {
	appointment, err := s.ownedAppointment(patientID, appointmentID)
	if err != nil {
		return err
	}
	return s.DB.Delete(appointment).Error
}

func (s *AppointmentService) ownedAppointment(patientID, appointmentID string) (*models.Appointment, error) {
	var appointment models.Appointment
	if err := s.DB.First(&appointment, "id = ?", appointmentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("appointment %s: %w", appointmentID, ErrNotFound)
		}
		return nil, err
	}
	if appointment.PatientID != patientID {
		return nil, fmt.Errorf("not your appointment: %w", ErrForbidden)
	}
	return &appointment, nil
}
