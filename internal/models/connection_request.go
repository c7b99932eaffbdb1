package models

// ConnectionRequestStatus represents the status of a connection request
type ConnectionRequestStatus string

const (
	RequestPending  ConnectionRequestStatus = "pending"
	RequestAccepted ConnectionRequestStatus = "accepted"
	RequestRejected ConnectionRequestStatus = "rejected"
)

// ConnectionRequest is a patient-initiated ask to link with a doctor. At most
// one pending request may exist per (doctor, patient) pair; the lifecycle
// service checks this inside the creating transaction since MySQL has no
// partial unique indexes. Once non-pending the record is immutable.
type ConnectionRequest struct {
	BaseModel
	DoctorID  string                  `gorm:"size:36;index" json:"doctorId"`
	PatientID string                  `gorm:"size:36;index" json:"patientId"`
	Status    ConnectionRequestStatus `gorm:"size:20;default:'pending'" json:"status"`
	Message   string                  `gorm:"size:500" json:"message,omitempty"`

	// Relations
	Doctor  User `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
	Patient User `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
}
