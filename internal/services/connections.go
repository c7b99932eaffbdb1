package services

import (
	"crypto/rand"
	"fmt"
	"time"

	"healthsync-server/internal/models"

	"gorm.io/gorm"
)

// Characters used for connection codes. Ambiguous ones (0/O, 1/I/L) are left out.
const codeCharset = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const codeLength = 6

// ConnectionService owns the doctor-patient connection lifecycle: code-based
// linking, request-based linking, and the unlink cascade. It is the only
// writer of CareLink rows.
type ConnectionService struct {
	DB *gorm.DB
	// Now is swappable for tests; defaults to time.Now.
	Now func() time.Time
}

// NewConnectionService creates a ConnectionService.
func NewConnectionService(db *gorm.DB) *ConnectionService {
	return &ConnectionService{DB: db, Now: time.Now}
}

func (s *ConnectionService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// GenerateCode issues a fresh connection code for the doctor, overwriting and
// thereby invalidating any previous one.
func (s *ConnectionService) GenerateCode(doctorID string) (string, error) {
	var doctor models.User
	if err := s.DB.Where("id = ? AND role = ?", doctorID, models.RoleDoctor).First(&doctor).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", fmt.Errorf("doctor %s: %w", doctorID, ErrNotFound)
		}
		return "", err
	}

	// The unique index on connection_code makes collisions a hard failure,
	// so probe for one before saving.
	for attempt := 0; attempt < 5; attempt++ {
		code, err := randomCode()
		if err != nil {
			return "", err
		}
		var count int64
		if err := s.DB.Model(&models.User{}).Where("connection_code = ?", code).Count(&count).Error; err != nil {
			return "", err
		}
		if count > 0 {
			continue
		}
		doctor.ConnectionCode = &code
		if err := s.DB.Save(&doctor).Error; err != nil {
			return "", err
		}
		return code, nil
	}
	return "", fmt.Errorf("could not generate a unique connection code")
}

func randomCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = codeCharset[int(b)%len(codeCharset)]
	}
	return string(buf), nil
}

// ConnectWithCode links the patient to the approved doctor owning code.
// Returns ErrNotFound for an unknown or stale code and ErrConflict when the
// pair is already linked.
func (s *ConnectionService) ConnectWithCode(patientID, code string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var doctor models.User
		err := tx.Where("connection_code = ? AND role = ? AND status = ?",
			code, models.RoleDoctor, models.DoctorApproved).First(&doctor).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("connection code: %w", ErrNotFound)
			}
			return err
		}

		var patient models.User
		if err := tx.First(&patient, "id = ?", patientID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("patient %s: %w", patientID, ErrNotFound)
			}
			return err
		}

		if err := s.link(tx, doctor.ID, patientID); err != nil {
			return err
		}

		return notify(tx, doctor.ID, models.NotifyConnection,
			fmt.Sprintf("%s connected with your code.", patient.FullName()), patientID)
	})
}

// link creates the CareLink row, failing with ErrConflict when it exists.
func (s *ConnectionService) link(tx *gorm.DB, doctorID, patientID string) error {
	var count int64
	err := tx.Model(&models.CareLink{}).
		Where("doctor_id = ? AND patient_id = ?", doctorID, patientID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("already connected to this doctor: %w", ErrConflict)
	}
	return tx.Create(&models.CareLink{DoctorID: doctorID, PatientID: patientID}).Error
}

// RequestConnection creates a pending connection request from the patient to
// the doctor and notifies the doctor.
func (s *ConnectionService) RequestConnection(patientID, doctorID, message string) (*models.ConnectionRequest, error) {
	if doctorID == "" {
		return nil, fmt.Errorf("doctorId is required: %w", ErrValidation)
	}

	var request models.ConnectionRequest
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var doctor models.User
		err := tx.Where("id = ? AND role = ? AND status = ?",
			doctorID, models.RoleDoctor, models.DoctorApproved).First(&doctor).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("doctor %s: %w", doctorID, ErrNotFound)
			}
			return err
		}

		linked, err := IsAuthorized(tx, doctorID, patientID)
		if err != nil {
			return err
		}
		if linked {
			return fmt.Errorf("already connected to this doctor: %w", ErrConflict)
		}

		// At most one pending request per pair.
		var pending int64
		err = tx.Model(&models.ConnectionRequest{}).
			Where("doctor_id = ? AND patient_id = ? AND status = ?",
				doctorID, patientID, models.RequestPending).
			Count(&pending).Error
		if err != nil {
			return err
		}
		if pending > 0 {
			return fmt.Errorf("request already pending: %w", ErrConflict)
		}

		var patient models.User
		if err := tx.First(&patient, "id = ?", patientID).Error; err != nil {
			return err
		}

		request = models.ConnectionRequest{
			DoctorID:  doctorID,
			PatientID: patientID,
			Message:   message,
		}
		if err := tx.Create(&request).Error; err != nil {
			return err
		}

		return notify(tx, doctorID, models.NotifyConnection,
			fmt.Sprintf("New connection request from %s.", patient.FullName()), request.ID)
	})
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// PendingRequestsFor returns the pending requests addressed to a doctor.
func (s *ConnectionService) PendingRequestsFor(doctorID string) ([]models.ConnectionRequest, error) {
	var requests []models.ConnectionRequest
	err := s.DB.Preload("Patient").
		Where("doctor_id = ? AND status = ?", doctorID, models.RequestPending).
		Order("created_at desc").
		Find(&requests).Error
	return requests, err
}

// RequestsBy returns all requests a patient has sent, newest first.
func (s *ConnectionService) RequestsBy(patientID string) ([]models.ConnectionRequest, error) {
	var requests []models.ConnectionRequest
	err := s.DB.Preload("Doctor").
		Where("patient_id = ?", patientID).
		Order("created_at desc").
		Find(&requests).Error
	return requests, err
}

// RespondToRequest handles a doctor's accept/reject decision. The
// pending-to-handled flip is a guarded update so that of two concurrent
// accepts exactly one wins; the loser observes ErrConflict.
func (s *ConnectionService) RespondToRequest(doctorID, requestID string, status models.ConnectionRequestStatus) (*models.ConnectionRequest, error) {
	if status != models.RequestAccepted && status != models.RequestRejected {
		return nil, fmt.Errorf("status must be accepted or rejected: %w", ErrValidation)
	}

	var request models.ConnectionRequest
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&request, "id = ?", requestID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("request %s: %w", requestID, ErrNotFound)
			}
			return err
		}
		if request.DoctorID != doctorID {
			return fmt.Errorf("request is not addressed to you: %w", ErrForbidden)
		}

		res := tx.Model(&models.ConnectionRequest{}).
			Where("id = ? AND status = ?", requestID, models.RequestPending).
			Update("status", status)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("request already handled: %w", ErrConflict)
		}
		request.Status = status

		if status != models.RequestAccepted {
			return nil
		}

		if err := s.link(tx, doctorID, request.PatientID); err != nil {
			return err
		}

		var doctor models.User
		if err := tx.First(&doctor, "id = ?", doctorID).Error; err != nil {
			return err
		}
		return notify(tx, request.PatientID, models.NotifyConnection,
			fmt.Sprintf("Dr. %s accepted your connection request.", doctor.FullName()), doctorID)
	})
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// CancelRequest lets a patient withdraw a still-pending request (hard delete).
// The delete is guarded on the pending status so a concurrent accept cannot be
// wiped out; the loser observes ErrConflict.
func (s *ConnectionService) CancelRequest(patientID, requestID string) error {
	var request models.ConnectionRequest
	if err := s.DB.First(&request, "id = ?", requestID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("request %s: %w", requestID, ErrNotFound)
		}
		return err
	}
	if request.PatientID != patientID {
		return fmt.Errorf("not your request: %w", ErrForbidden)
	}

	res := s.DB.Where("id = ? AND status = ?", requestID, models.RequestPending).
		Delete(&models.ConnectionRequest{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cannot cancel a processed request: %w", ErrConflict)
	}
	return nil
}

// Unlink severs the doctor-patient relationship. The three sub-steps (cancel
// future appointments, hand prescribed medications over to the patient,
// remove the link) run in one transaction; none may land without the others.
// initiatorID decides which party gets notified.
func (s *ConnectionService) Unlink(initiatorID, doctorID, patientID string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var link models.CareLink
		err := tx.Where("doctor_id = ? AND patient_id = ?", doctorID, patientID).First(&link).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("no connection between doctor and patient: %w", ErrNotFound)
			}
			return err
		}

		err = tx.Model(&models.Appointment{}).
			Where("patient_id = ? AND doctor_id = ? AND date > ? AND status IN ?",
				patientID, doctorID, s.now(),
				[]models.AppointmentStatus{models.StatusPending, models.StatusConfirmed, models.StatusUpcoming}).
			Updates(map[string]interface{}{
				"status":        models.StatusCancelled,
				"cancel_reason": "Doctor-patient connection ended",
			}).Error
		if err != nil {
			return err
		}

		// Handover: prescribed medications become self-managed, not deleted.
		err = tx.Model(&models.Medication{}).
			Where("user_id = ? AND prescribed_by_id = ?", patientID, doctorID).
			Update("prescribed_by_id", nil).Error
		if err != nil {
			return err
		}

		if err := tx.Delete(&link).Error; err != nil {
			return err
		}

		var initiator models.User
		if err := tx.First(&initiator, "id = ?", initiatorID).Error; err != nil {
			return err
		}
		target := doctorID
		if initiatorID == doctorID {
			target = patientID
		}
		name := initiator.FullName()
		if initiator.Role == models.RoleDoctor {
			name = "Dr. " + name
		}
		return notify(tx, target, models.NotifyConnection,
			fmt.Sprintf("%s has ended your care connection.", name), initiatorID)
	})
}

// LinkedPatients returns the patients currently linked to a doctor.
func (s *ConnectionService) LinkedPatients(doctorID string) ([]models.User, error) {
	var patients []models.User
	err := s.DB.
		Joins("JOIN care_links ON care_links.patient_id = users.id").
		Where("care_links.doctor_id = ?", doctorID).
		Find(&patients).Error
	return patients, err
}

// LinkedDoctors returns the doctors currently linked to a patient.
func (s *ConnectionService) LinkedDoctors(patientID string) ([]models.User, error) {
	var doctors []models.User
	err := s.DB.
		Joins("JOIN care_links ON care_links.doctor_id = users.id").
		Where("care_links.patient_id = ?", patientID).
		Find(&doctors).Error
	return doctors, err
}
