package services

import (
	"healthsync-server/internal/models"

	"gorm.io/gorm"
)

// IsAuthorized is the care relationship guard: it reports whether doctorID is
// currently linked to patientID. Every doctor-facing read or write of
// patient-scoped data must call this first and fail closed on false.
func IsAuthorized(db *gorm.DB, doctorID, patientID string) (bool, error) {
	var count int64
	err := db.Model(&models.CareLink{}).
		Where("doctor_id = ? AND patient_id = ?", doctorID, patientID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// requireLink returns ErrForbidden when the pair is not linked.
func requireLink(db *gorm.DB, doctorID, patientID string) error {
	ok, err := IsAuthorized(db, doctorID, patientID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}
