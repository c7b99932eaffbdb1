package models

// CareLink is the bidirectional doctor-patient relationship. A single row
// represents both directions, so a doctor's patient list and a patient's
// doctor list can never disagree. Rows are created and deleted only by the
// connection lifecycle service, inside transactions.
type CareLink struct {
	BaseModel
	DoctorID  string `gorm:"size:36;uniqueIndex:idx_care_link_pair" json:"doctorId"`
	PatientID string `gorm:"size:36;uniqueIndex:idx_care_link_pair" json:"patientId"`

	// Relations
	Doctor  User `gorm:"foreignKey:DoctorID" json:"-"`
	Patient User `gorm:"foreignKey:PatientID" json:"-"`
}
