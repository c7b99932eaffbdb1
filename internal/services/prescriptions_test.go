package services

import (
	"testing"
	"time"

	"healthsync-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrescribeRequiresCareLink(t *testing.T) {
	db := newTestDB(t)
	svc := NewPrescriptionService(db)
	doctor := createDoctor(t, db, "doc@example.com")
	patient := createPatient(t, db, "pat@example.com")

	_, err := svc.Prescribe(doctor.ID, patient.ID, []PrescriptionItem{
		{Name: "Lisinopril", Dosage: "10mg", Frequency: "Daily"},
	}, "")
	assert.ErrorIs(t, err, ErrForbidden)

	var count int64
	require.NoError(t, db.Model(&models.Medication{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestPrescribeBatch(t *testing.T) {
	db := newTestDB(t)
	svc := NewPrescriptionService(db)
	doctor := createDoctor(t, db, "doc@example.com")
	patient := createPatient(t, db, "pat@example.com")
	linkPair(t, db, doctor.ID, patient.ID)

	created, err := svc.Prescribe(doctor.ID, patient.ID, []PrescriptionItem{
		{Name: "Lisinopril", Dosage: "10mg", Frequency: "Daily"},
		{Name: "Metformin", Dosage: "500mg", Frequency: "Twice Daily"},
	}, "take with food")
	require.NoError(t, err)
	require.Len(t, created, 2)
	for _, med := range created {
		assert.Equal(t, models.MedicationActive, med.Status)
		assert.Equal(t, models.DoctorPrescribed, med.Ownership())
		assert.Equal(t, doctor.ID, med.PrescriberID())
		assert.Equal(t, "take with food", med.Instructions)
	}

	// One notification for the whole batch, pointing at the first medication.
	assert.EqualValues(t, 1, countNotifications(t, db, patient.ID, models.NotifyPrescription))
	var notification models.Notification
	require.NoError(t, db.First(&notification, "user_id = ?", patient.ID).Error)
	assert.Equal(t, "Dr. Gregory House prescribed new medication(s).", notification.Message)
	assert.Equal(t, created[0].ID, notification.RelatedID)
}

func TestPrescribeValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewPrescriptionService(db)
	doctor := createDoctor(t, db, "doc@example.com")
	patient := createPatient(t, db, "pat@example.com")
	linkPair(t, db, doctor.ID, patient.ID)

	_, err := svc.Prescribe(doctor.ID, patient.ID, nil, "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Prescribe(doctor.ID, patient.ID, []PrescriptionItem{
		{Name: "Lisinopril", Dosage: "", Frequency: "Daily"},
	}, "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPatientCannotEditPrescribedMedication(t *testing.T) {
	db := newTestDB(t)
	svc := NewPrescriptionService(db)
	doctor := createDoctor(t, db, "doc@example.com")
	patient := createPatient(t, db, "pat@example.com")
	linkPair(t, db, doctor.ID, patient.ID)

	created, err := svc.Prescribe(doctor.ID, patient.ID, []PrescriptionItem{
		{Name: "Lisinopril", Dosage: "10mg", Frequency: "Daily"},
	}, "")
	require.NoError(t, err)

	name := "changed"
	_, err = svc.UpdateMedication(patient.ID, created[0].ID, MedicationUpdate{Name: &name})
	assert.ErrorIs(t, err, ErrForbidden)

	err = svc.DeleteMedication(patient.ID, created[0].ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestPrescriptionOwnershipSurvivesUnlinkCheck(t *testing.T) {
	db := newTestDB(t)
	svc := NewPrescriptionService(db)
	doctor := createDoctor(t, db, "doc@example.com")
	other := createDoctor(t, db, "other@example.com")
	patient := createPatient(t, db, "pat@example.com")
	linkPair(t, db, doctor.ID, patient.ID)

	created, err := svc.Prescribe(doctor.ID, patient.ID, []PrescriptionItem{
		{Name: "Lisinopril", Dosage: "10mg", Frequency: "Daily"},
	}, "")
	require.NoError(t, err)
	medID := created[0].ID

	// Another doctor never gets write access, linked or not.
	linkPair(t, db, other.ID, patient.ID)
	dosage := "20mg"
	_, err = svc.UpdatePrescription(other.ID, medID, MedicationUpdate{Dosage: &dosage})
	assert.ErrorIs(t, err, ErrForbidden)

	// The prescribing doctor edits fine while owning the row.
	updated, err := svc.UpdatePrescription(doctor.ID, medID, MedicationUpdate{Dosage: &dosage})
	require.NoError(t, err)
	assert.Equal(t, "20mg", updated.Dosage)

	// After handover the former prescriber loses write access too.
	require.NoError(t, db.Model(&models.Medication{}).
		Where("id = ?", medID).
		Update("prescribed_by_id", nil).Error)
	_, err = svc.UpdatePrescription(doctor.ID, medID, MedicationUpdate{Dosage: &dosage})
	assert.ErrorIs(t, err, ErrForbidden)

	// And the patient gains it.
	status := models.MedicationCompleted
	updated, err = svc.UpdateMedication(patient.ID, medID, MedicationUpdate{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, models.MedicationCompleted, updated.Status)
}

func TestSelfManagedMedicationCRUD(t *testing.T) {
	db := newTestDB(t)
	svc := NewPrescriptionService(db)
	patient := createPatient(t, db, "pat@example.com")
	stranger := createPatient(t, db, "stranger@example.com")
	start := fixedTime(t, "2025-06-01T08:00:00Z")

	_, err := svc.CreateMedication(patient.ID, MedicationInput{Name: "Vitamin D"})
	assert.ErrorIs(t, err, ErrValidation)

	med, err := svc.CreateMedication(patient.ID, MedicationInput{
		Name:         "Vitamin D",
		Dosage:       "1000IU",
		Frequency:    "Daily",
		StartDate:    start,
		TimeOfIntake: []string{"08:00"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.SelfManaged, med.Ownership())

	_, err = svc.UpdateMedication(stranger.ID, med.ID, MedicationUpdate{})
	assert.ErrorIs(t, err, ErrForbidden)

	times := []string{"08:00", "20:00"}
	updated, err := svc.UpdateMedication(patient.ID, med.ID, MedicationUpdate{TimeOfIntake: times})
	require.NoError(t, err)
	assert.Equal(t, times, updated.TimeOfIntake)

	require.NoError(t, svc.DeleteMedication(patient.ID, med.ID))
	err = svc.DeleteMedication(patient.ID, med.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPrescriptionsByExcludesHandedOver(t *testing.T) {
	db := newTestDB(t)
	svc := NewPrescriptionService(db)
	doctor := createDoctor(t, db, "doc@example.com")
	patient := createPatient(t, db, "pat@example.com")
	linkPair(t, db, doctor.ID, patient.ID)

	created, err := svc.Prescribe(doctor.ID, patient.ID, []PrescriptionItem{
		{Name: "Lisinopril", Dosage: "10mg", Frequency: "Daily", StartDate: time.Now()},
		{Name: "Metformin", Dosage: "500mg", Frequency: "Twice Daily", StartDate: time.Now()},
	}, "")
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.Medication{}).
		Where("id = ?", created[0].ID).
		Update("prescribed_by_id", nil).Error)

	remaining, err := svc.PrescriptionsBy(doctor.ID)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, created[1].ID, remaining[0].ID)

	// The patient still sees both.
	all, err := svc.MedicationsFor(patient.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
