package services

import (
	"fmt"
	"time"

	"healthsync-server/internal/models"

	"gorm.io/gorm"
)

// PrescriptionService governs medication ownership: doctor-prescribed rows
// are writable only by the prescribing doctor, self-managed rows only by the
// owning patient.
type PrescriptionService struct {
	DB *gorm.DB
}

// NewPrescriptionService creates a PrescriptionService.
func NewPrescriptionService(db *gorm.DB) *PrescriptionService {
	return &PrescriptionService{DB: db}
}

// PrescriptionItem is one medication in a prescribe batch.
type PrescriptionItem struct {
	Name      string
	Dosage    string
	Frequency string
	StartDate time.Time
}

// Prescribe creates one active medication per item for the patient, owned by
// the doctor. The care link guard runs first; a doctor cannot prescribe to a
// patient they are not linked to. Exactly one notification is emitted,
// referencing the first created medication.
func (s *PrescriptionService) Prescribe(doctorID, patientID string, items []PrescriptionItem, notes string) ([]models.Medication, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("at least one medication is required: %w", ErrValidation)
	}
	for _, item := range items {
		if item.Name == "" || item.Dosage == "" || item.Frequency == "" {
			return nil, fmt.Errorf("name, dosage and frequency are required: %w", ErrValidation)
		}
	}

	var created []models.Medication
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := requireLink(tx, doctorID, patientID); err != nil {
			return err
		}

		var doctor models.User
		if err := tx.First(&doctor, "id = ?", doctorID).Error; err != nil {
			return err
		}

		for _, item := range items {
			startDate := item.StartDate
			if startDate.IsZero() {
				startDate = time.Now()
			}
			prescriber := doctorID
			med := models.Medication{
				UserID:         patientID,
				Name:           item.Name,
				Dosage:         item.Dosage,
				Frequency:      item.Frequency,
				StartDate:      startDate,
				Instructions:   notes,
				Status:         models.MedicationActive,
				PrescribedByID: &prescriber,
			}
			if err := tx.Create(&med).Error; err != nil {
				return err
			}
			created = append(created, med)
		}

		return notify(tx, patientID, models.NotifyPrescription,
			fmt.Sprintf("Dr. %s prescribed new medication(s).", doctor.FullName()), created[0].ID)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// PrescriptionsBy returns every medication the doctor has prescribed and
// still owns. Handed-over medications no longer appear here.
func (s *PrescriptionService) PrescriptionsBy(doctorID string) ([]models.Medication, error) {
	var meds []models.Medication
	err := s.DB.Preload("User").
		Where("prescribed_by_id = ?", doctorID).
		Order("created_at desc").
		Find(&meds).Error
	return meds, err
}

// MedicationUpdate carries a partial medication update; nil fields are left
// untouched.
type MedicationUpdate struct {
	Name         *string
	Dosage       *string
	Frequency    *string
	StartDate    *time.Time
	EndDate      *time.Time
	TimeOfIntake []string
	Instructions *string
	Status       *models.MedicationStatus
}

func applyMedicationUpdate(med *models.Medication, update MedicationUpdate) {
	if update.Name != nil {
		med.Name = *update.Name
	}
	if update.Dosage != nil {
		med.Dosage = *update.Dosage
	}
	if update.Frequency != nil {
		med.Frequency = *update.Frequency
	}
	if update.StartDate != nil {
		med.StartDate = *update.StartDate
	}
	if update.EndDate != nil {
		med.EndDate = update.EndDate
	}
	if update.TimeOfIntake != nil {
		med.TimeOfIntake = update.TimeOfIntake
	}
	if update.Instructions != nil {
		med.Instructions = *update.Instructions
	}
	if update.Status != nil {
		med.Status = *update.Status
	}
}

// UpdatePrescription lets the prescribing doctor edit a medication they own.
// Ownership is checked against prescribed_by, independent of the care link,
// so a handed-over medication is no longer editable by the former prescriber.
func (s *PrescriptionService) UpdatePrescription(doctorID, medicationID string, update MedicationUpdate) (*models.Medication, error) {
	med, err := s.ownedPrescription(doctorID, medicationID)
	if err != nil {
		return nil, err
	}
	applyMedicationUpdate(med, update)
	if err := s.DB.Save(med).Error; err != nil {
		return nil, err
	}
	return med, nil
}

// DeletePrescription lets the prescribing doctor delete a medication they own.
func (s *PrescriptionService) DeletePrescription(doctorID, medicationID string) error {
	med, err := s.ownedPrescription(doctorID, medicationID)
	if err != nil {
		return err
	}
	return s.DB.Delete(med).Error
}

func (s *PrescriptionService) ownedPrescription(doctorID, medicationID string) (*models.Medication, error) {
	var med models.Medication
	if err := s.DB.First(&med, "id = ?", medicationID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("medication %s: %w", medicationID, ErrNotFound)
		}
		return nil, err
	}
	if med.PrescriberID() != doctorID {
		return nil, fmt.Errorf("not the prescribing doctor: %w", ErrForbidden)
	}
	return &med, nil
}

// MedicationInput is a patient-created, self-managed medication.
type MedicationInput struct {
	Name         string
	Dosage       string
	Frequency    string
	StartDate    time.Time
	EndDate      *time.Time
	TimeOfIntake []string
}

// MedicationsFor returns all of a patient's medications.
func (s *PrescriptionService) MedicationsFor(patientID string) ([]models.Medication, error) {
	var meds []models.Medication
	err := s.DB.Preload("PrescribedBy").
		Where("user_id = ?", patientID).
		Order("created_at desc").
		Find(&meds).Error
	return meds, err
}

// CreateMedication creates a self-managed medication for the patient.
func (s *PrescriptionService) CreateMedication(patientID string, input MedicationInput) (*models.Medication, error) {
	if input.Name == "" || input.Dosage == "" || input.Frequency == "" || input.StartDate.IsZero() {
		return nil, fmt.Errorf("name, dosage, frequency and startDate are required: %w", ErrValidation)
	}
	med := models.Medication{
		UserID:       patientID,
		Name:         input.Name,
		Dosage:       input.Dosage,
		Frequency:    input.Frequency,
		StartDate:    input.StartDate,
		EndDate:      input.EndDate,
		TimeOfIntake: input.TimeOfIntake,
		Status:       models.MedicationActive,
	}
	if err := s.DB.Create(&med).Error; err != nil {
		return nil, err
	}
	return &med, nil
}

// UpdateMedication lets a patient edit a self-managed medication. Attempts on
// doctor-prescribed medications fail closed even though the UI hides the
// controls.
func (s *PrescriptionService) UpdateMedication(patientID, medicationID string, update MedicationUpdate) (*models.Medication, error) {
	med, err := s.selfManagedMedication(patientID, medicationID)
	if err != nil {
		return nil, err
	}
	applyMedicationUpdate(med, update)
	if err := s.DB.Save(med).Error; err != nil {
		return nil, err
	}
	return med, nil
}

// DeleteMedication lets a patient delete a self-managed medication.
func (s *PrescriptionService) DeleteMedication(patientID, medicationID string) error {
	med, err := s.selfManagedMedication(patientID, medicationID)
	if err != nil {
		return err
	}
	return s.DB.Delete(med).Error
}

func (s *PrescriptionService) selfManagedMedication(patientID, medicationID string) (*models.Medication, error) {
	var med models.Medication
	if err := s.DB.First(&med, "id = ?", medicationID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("medication %s: %w", medicationID, ErrNotFound)
		}
		return nil, err
	}
	if med.UserID != patientID {
		return nil, fmt.Errorf("not your medication: %w", ErrForbidden)
	}
	if med.Ownership() == models.DoctorPrescribed {
		return nil, fmt.Errorf("medication is managed by your doctor: %w", ErrForbidden)
	}
	return &med, nil
}
