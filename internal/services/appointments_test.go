package services

import (
	"testing"
	"time"

	"healthsync-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAppointmentDoctorFlow(t *testing.T) {
	db := newTestDB(t)
	svc := NewAppointmentService(db)
	doctor := createDoctor(t, db, "doc@example.com")
	patient := createPatient(t, db, "pat@example.com")
	date := fixedTime(t, "2025-07-01T10:00:00Z")

	appointment, err := svc.Create(patient.ID, AppointmentInput{
		DoctorID: doctor.ID,
		Date:     date,
		Notes:    "annual checkup",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, appointment.Status)
	assert.Equal(t, doctor.ID, appointment.AddressedDoctorID())
	assert.Equal(t, "Gregory House", appointment.DoctorName)

	_, err = svc.Create(patient.ID, AppointmentInput{DoctorID: "missing", Date: date})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Create(patient.ID, AppointmentInput{DoctorID: doctor.ID})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateAppointmentLegacyFlow(t *testing.T) {
	db := newTestDB(t)
	svc := NewAppointmentService(db)
	patient := createPatient(t, db, "pat@example.com")
	date := fixedTime(t, "2025-07-01T10:00:00Z")

	appointment, err := svc.Create(patient.ID, AppointmentInput{
		DoctorName: "Dr. Outside",
		Location:   "Main St Clinic",
		Date:       date,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusUpcoming, appointment.Status)
	assert.Nil(t, appointment.DoctorID)

	_, err = svc.Create(patient.ID, AppointmentInput{DoctorName: "Dr. Outside", Date: date})
	assert.ErrorIs(t, err, ErrValidation, "legacy flow needs a location")
}

func TestUpdateStatusTransitions(t *testing.T) {
	db := newTestDB(t)
	svc := NewAppointmentService(db)
	doctor := createDoctor(t, db, "doc@example.com")
	patient := createPatient(t, db, "pat@example.com")
	date := fixedTime(t, "2025-07-01T10:00:00Z")

	book := func(t *testing.T) *models.Appointment {
		t.Helper()
		appointment, err := svc.Create(patient.ID, AppointmentInput{DoctorID: doctor.ID, Date: date})
		require.NoError(t, err)
		return appointment
	}

	t.Run("pending to confirmed to completed", func(t *testing.T) {
		appointment := book(t)
		updated, err := svc.UpdateStatus(doctor.ID, appointment.ID, models.StatusConfirmed)
		require.NoError(t, err)
		assert.Equal(t, models.StatusConfirmed, updated.Status)

		updated, err = svc.UpdateStatus(doctor.ID, appointment.ID, models.StatusCompleted)
		require.NoError(t, err)
		assert.Equal(t, models.StatusCompleted, updated.Status)
	})

	t.Run("pending cannot complete", func(t *testing.T) {
		appointment := book(t)
		_, err := svc.UpdateStatus(doctor.ID, appointment.ID, models.StatusCompleted)
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("terminal states are final", func(t *testing.T) {
		appointment := book(t)
		_, err := svc.UpdateStatus(doctor.ID, appointment.ID, models.StatusCancelled)
		require.NoError(t, err)

		_, err = svc.UpdateStatus(doctor.ID, appointment.ID, models.StatusConfirmed)
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("only forward statuses accepted", func(t *testing.T) {
		appointment := book(t)
		_, err := svc.UpdateStatus(doctor.ID, appointment.ID, models.StatusPending)
		assert.ErrorIs(t, err, ErrValidation)
		_, err = svc.UpdateStatus(doctor.ID, appointment.ID, models.AppointmentStatus("rescheduled"))
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestUpdateStatusAddressedDoctorOnly(t *testing.T) {
	db := newTestDB(t)
	svc := NewAppointmentService(db)
	doctor := createDoctor(t, db, "doc@example.com")
	other := createDoctor(t, db, "other@example.com")
	patient := createPatient(t, db, "pat@example.com")

	appointment, err := svc.Create(patient.ID, AppointmentInput{
		DoctorID: doctor.ID,
		Date:     fixedTime(t, "2025-07-01T10:00:00Z"),
	})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(other.ID, appointment.ID, models.StatusConfirmed)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.UpdateStatus(doctor.ID, "missing-id", models.StatusConfirmed)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateStatusNotifiesPatient(t *testing.T) {
	db := newTestDB(t)
	svc := NewAppointmentService(db)
	doctor := createDoctor(t, db, "doc@example.com")
	patient := createPatient(t, db, "pat@example.com")
	date, err := time.Parse(time.RFC3339, "2025-07-04T10:00:00Z")
	require.NoError(t, err)

	appointment, err := svc.Create(patient.ID, AppointmentInput{DoctorID: doctor.ID, Date: date})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(doctor.ID, appointment.ID, models.StatusConfirmed)
	require.NoError(t, err)

	var notification models.Notification
	require.NoError(t, db.First(&notification, "user_id = ? AND type = ?",
		patient.ID, models.NotifyAppointment).Error)
	assert.Equal(t, "Dr. Gregory House has confirmed your appointment for Jul 4, 2025.", notification.Message)
	assert.Equal(t, appointment.ID, notification.RelatedID)
}

func TestPatientUpdateAndDelete(t *testing.T) {
	db := newTestDB(t)
	svc := NewAppointmentService(db)
	doctor := createDoctor(t, db, "doc@example.com")
	patient := createPatient(t, db, "pat@example.com")
	stranger := createPatient(t, db, "stranger@example.com")

	appointment, err := svc.Create(patient.ID, AppointmentInput{
		DoctorID: doctor.ID,
		Date:     fixedTime(t, "2025-07-01T10:00:00Z"),
	})
	require.NoError(t, err)

	notes := "bring previous results"
	_, err = svc.Update(stranger.ID, appointment.ID, AppointmentUpdate{Notes: &notes})
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := svc.Update(patient.ID, appointment.ID, AppointmentUpdate{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, notes, updated.Notes)
	assert.Equal(t, models.StatusPending, updated.Status, "patient edits never touch status")

	err = svc.Delete(stranger.ID, appointment.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	require.NoError(t, svc.Delete(patient.ID, appointment.ID))
}

func TestAppointmentListings(t *testing.T) {
	db := newTestDB(t)
	svc := NewAppointmentService(db)
	doctor := createDoctor(t, db, "doc@example.com")
	patient := createPatient(t, db, "pat@example.com")

	later, err := svc.Create(patient.ID, AppointmentInput{
		DoctorID: doctor.ID, Date: fixedTime(t, "2025-07-02T10:00:00Z"),
	})
	require.NoError(t, err)
	earlier, err := svc.Create(patient.ID, AppointmentInput{
		DoctorID: doctor.ID, Date: fixedTime(t, "2025-07-01T10:00:00Z"),
	})
	require.NoError(t, err)

	forPatient, err := svc.ForPatient(patient.ID)
	require.NoError(t, err)
	require.Len(t, forPatient, 2)
	assert.Equal(t, earlier.ID, forPatient[0].ID)
	assert.Equal(t, later.ID, forPatient[1].ID)

	forDoctor, err := svc.ForDoctor(doctor.ID)
	require.NoError(t, err)
	assert.Len(t, forDoctor, 2)
}
