package services

import (
	"context"
	"testing"
	"time"

	"hospital-app-server/internal/authz"
	"hospital-app-server/internal/models"
	"hospital-app-server/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	store        *repository.MemoryStore
	appointments *AppointmentService
	doctor       models.Doctor
	patient      models.Patient
	other        models.Patient
	admin        authz.Actor
	receptionist authz.Actor
	asDoctor     authz.Actor
	asPatient    authz.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repository.NewMemoryStore()
	f := &fixture{store: store}

	f.doctor = store.AddDoctor(models.Doctor{
		User:       models.User{FirstName: "Gregory", LastName: "House", Role: models.RoleDoctor},
		Department: models.DepartmentCardiologist,
	})
	f.patient = store.AddPatient(models.Patient{
		User:             models.User{FirstName: "John", LastName: "Doe", Role: models.RolePatient},
		Address:          "1 Main St",
		Mobile:           "+15551234567",
		Symptoms:         "fever",
		AssignedDoctorID: &f.doctor.ID,
		AdmitDate:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	f.other = store.AddPatient(models.Patient{
		User:      models.User{FirstName: "Jane", LastName: "Roe", Role: models.RolePatient},
		AdmitDate: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
	})

	f.admin = authz.Actor{UserID: "admin-1", Role: models.RoleAdmin}
	f.receptionist = authz.Actor{UserID: "recep-1", Role: models.RoleReceptionist, ReceptionistID: "r-1"}
	f.asDoctor = authz.Actor{UserID: f.doctor.UserID, Role: models.RoleDoctor, DoctorID: f.doctor.ID}
	f.asPatient = authz.Actor{UserID: f.patient.UserID, Role: models.RolePatient, PatientID: f.patient.ID}

	f.appointments = NewAppointmentService(store.Appointments(), store.Directory(), zap.NewNop())
	return f
}

func (f *fixture) book(t *testing.T) *models.Appointment {
	t.Helper()
	a, err := f.appointments.Create(context.Background(), f.asPatient, CreateAppointmentInput{Description: "chest pain"})
	require.NoError(t, err)
	return a
}

func (f *fixture) approve(t *testing.T, id string) *models.Appointment {
	t.Helper()
	date := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	decision, err := f.appointments.Approve(context.Background(), f.receptionist, id, ApproveInput{
		Confirm: true, AppointmentDate: &date, DoctorID: f.doctor.ID,
	})
	require.NoError(t, err)
	return decision.Appointment
}

func TestCreateAppointment_PatientBooksForSelf(t *testing.T) {
	f := newFixture(t)

	a := f.book(t)

	assert.Equal(t, f.patient.ID, a.PatientID)
	assert.Equal(t, models.StatusPending, a.Status)
	assert.Nil(t, a.AppointmentDate)
	assert.Nil(t, a.DoctorID)
	assert.False(t, a.BookedAt().IsZero())
}

func TestCreateAppointment_PatientCannotBookForOthers(t *testing.T) {
	f := newFixture(t)

	_, err := f.appointments.Create(context.Background(), f.asPatient, CreateAppointmentInput{
		PatientID: f.other.ID, Description: "x",
	})

	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCreateAppointment_StaffMustNamePatient(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.appointments.Create(ctx, f.receptionist, CreateAppointmentInput{Description: "x"})
	assert.ErrorIs(t, err, ErrMissingRequiredField)

	_, err = f.appointments.Create(ctx, f.receptionist, CreateAppointmentInput{PatientID: "nope", Description: "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	a, err := f.appointments.Create(ctx, f.receptionist, CreateAppointmentInput{PatientID: f.other.ID, Description: "x", Emergency: true})
	require.NoError(t, err)
	assert.True(t, a.Emergency)
}

func TestCreateAppointment_DoctorForbidden(t *testing.T) {
	f := newFixture(t)

	_, err := f.appointments.Create(context.Background(), f.asDoctor, CreateAppointmentInput{Description: "x"})

	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, "Forbidden", Code(err))
}

func TestApprove_PreviewNeverMutates(t *testing.T) {
	f := newFixture(t)
	a := f.book(t)
	date := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)

	decision, err := f.appointments.Approve(context.Background(), f.admin, a.ID, ApproveInput{
		AppointmentDate: &date, DoctorID: f.doctor.ID,
	})

	require.NoError(t, err)
	assert.False(t, decision.Confirmed)
	assert.NotEmpty(t, decision.Message)

	stored, err := f.appointments.Get(context.Background(), f.admin, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, stored.Status)
	assert.Nil(t, stored.AppointmentDate)
	assert.Nil(t, stored.DoctorID)
}

func TestApprove_SetsDateDoctorAndStatus(t *testing.T) {
	f := newFixture(t)
	a := f.book(t)

	approved := f.approve(t, a.ID)

	assert.Equal(t, models.StatusScheduled, approved.Status)
	require.NotNil(t, approved.DoctorID)
	assert.Equal(t, f.doctor.ID, *approved.DoctorID)
	require.NotNil(t, approved.AppointmentDate)
	assert.Equal(t, time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC), *approved.AppointmentDate)
}

func TestApprove_MissingFields(t *testing.T) {
	f := newFixture(t)
	a := f.book(t)
	date := time.Now()

	_, err := f.appointments.Approve(context.Background(), f.admin, a.ID, ApproveInput{Confirm: true, DoctorID: f.doctor.ID})
	assert.ErrorIs(t, err, ErrMissingRequiredField)

	_, err = f.appointments.Approve(context.Background(), f.admin, a.ID, ApproveInput{Confirm: true, AppointmentDate: &date})
	assert.ErrorIs(t, err, ErrMissingRequiredField)
	assert.Equal(t, "MissingRequiredField", Code(err))
}

func TestApprove_UnknownDoctorLeavesStatus(t *testing.T) {
	f := newFixture(t)
	a := f.book(t)
	date := time.Now()

	_, err := f.appointments.Approve(context.Background(), f.admin, a.ID, ApproveInput{
		Confirm: true, AppointmentDate: &date, DoctorID: "no-such-doctor",
	})

	assert.ErrorIs(t, err, ErrNotFound)
	stored, err := f.appointments.Get(context.Background(), f.admin, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, stored.Status)
}

func TestDecisions_SecondCallAlreadyProcessed(t *testing.T) {
	ctx := context.Background()

	t.Run("after approve", func(t *testing.T) {
		f := newFixture(t)
		a := f.book(t)
		approved := f.approve(t, a.ID)

		date := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
		_, err := f.appointments.Approve(ctx, f.admin, a.ID, ApproveInput{Confirm: true, AppointmentDate: &date, DoctorID: f.doctor.ID})
		assert.ErrorIs(t, err, ErrAlreadyProcessed)
		_, err = f.appointments.Reject(ctx, f.admin, a.ID, true)
		assert.ErrorIs(t, err, ErrAlreadyProcessed)
		_, err = f.appointments.Reject(ctx, f.admin, a.ID, false)
		assert.ErrorIs(t, err, ErrAlreadyProcessed)

		stored, err := f.appointments.Get(ctx, f.admin, a.ID)
		require.NoError(t, err)
		assert.Equal(t, approved, stored)
	})

	t.Run("after reject", func(t *testing.T) {
		f := newFixture(t)
		a := f.book(t)
		decision, err := f.appointments.Reject(ctx, f.admin, a.ID, true)
		require.NoError(t, err)
		assert.Equal(t, models.StatusRejected, decision.Appointment.Status)

		date := time.Now()
		_, err = f.appointments.Approve(ctx, f.admin, a.ID, ApproveInput{Confirm: true, AppointmentDate: &date, DoctorID: f.doctor.ID})
		assert.ErrorIs(t, err, ErrAlreadyProcessed)
		assert.Equal(t, "AlreadyProcessed", Code(err))

		stored, err := f.appointments.Get(ctx, f.admin, a.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusRejected, stored.Status)
		assert.Nil(t, stored.AppointmentDate)
	})
}

func TestReject_PreviewNeverMutates(t *testing.T) {
	f := newFixture(t)
	a := f.book(t)

	decision, err := f.appointments.Reject(context.Background(), f.admin, a.ID, false)

	require.NoError(t, err)
	assert.False(t, decision.Confirmed)
	stored, _ := f.appointments.Get(context.Background(), f.admin, a.ID)
	assert.Equal(t, models.StatusPending, stored.Status)
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects values outside the allow-list", func(t *testing.T) {
		f := newFixture(t)
		a := f.book(t)
		for _, raw := range []string{"Scheduled", "Canceled", "pending", "done", ""} {
			_, err := f.appointments.UpdateStatus(ctx, f.admin, a.ID, raw)
			assert.ErrorIs(t, err, ErrInvalidStatusValue, raw)
		}
		stored, _ := f.appointments.Get(ctx, f.admin, a.ID)
		assert.Equal(t, models.StatusPending, stored.Status)
	})

	t.Run("completes a scheduled appointment", func(t *testing.T) {
		f := newFixture(t)
		a := f.book(t)
		f.approve(t, a.ID)

		updated, err := f.appointments.UpdateStatus(ctx, f.receptionist, a.ID, "completed")
		require.NoError(t, err)
		assert.Equal(t, models.StatusCompleted, updated.Status)
	})

	t.Run("cancelled is stored as rejected", func(t *testing.T) {
		f := newFixture(t)
		a := f.book(t)

		updated, err := f.appointments.UpdateStatus(ctx, f.admin, a.ID, "cancelled")
		require.NoError(t, err)
		assert.Equal(t, models.StatusRejected, updated.Status)
	})

	t.Run("scheduled needs an approved date", func(t *testing.T) {
		f := newFixture(t)
		a := f.book(t)

		_, err := f.appointments.UpdateStatus(ctx, f.admin, a.ID, "scheduled")
		assert.ErrorIs(t, err, ErrMissingRequiredField)
	})

	t.Run("same status twice", func(t *testing.T) {
		f := newFixture(t)
		a := f.book(t)
		_, err := f.appointments.UpdateStatus(ctx, f.admin, a.ID, "completed")
		require.NoError(t, err)

		_, err = f.appointments.UpdateStatus(ctx, f.admin, a.ID, "completed")
		assert.ErrorIs(t, err, ErrAlreadyProcessed)
	})

	t.Run("patients may not change status", func(t *testing.T) {
		f := newFixture(t)
		a := f.book(t)

		_, err := f.appointments.UpdateStatus(ctx, f.asPatient, a.ID, "completed")
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestListAndGet_Scoped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	mine := f.book(t)
	theirs, err := f.appointments.Create(ctx, f.admin, CreateAppointmentInput{PatientID: f.other.ID, Description: "rash"})
	require.NoError(t, err)
	f.approve(t, mine.ID)

	all, err := f.appointments.List(ctx, f.admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	own, err := f.appointments.List(ctx, f.asPatient)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, mine.ID, own[0].ID)

	assigned, err := f.appointments.List(ctx, f.asDoctor)
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, mine.ID, assigned[0].ID)

	_, err = f.appointments.Get(ctx, f.asPatient, theirs.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	pending, err := f.appointments.Pending(ctx, f.receptionist)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, theirs.ID, pending[0].ID)

	_, err = f.appointments.Pending(ctx, f.asDoctor)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.book(t)

	desc := "follow-up"
	emergency := true
	updated, err := f.appointments.Update(ctx, f.receptionist, a.ID, UpdateAppointmentInput{Description: &desc, Emergency: &emergency})
	require.NoError(t, err)
	assert.Equal(t, "follow-up", updated.Description)
	assert.True(t, updated.Emergency)
	assert.Equal(t, models.StatusPending, updated.Status)

	_, err = f.appointments.Update(ctx, f.asPatient, a.ID, UpdateAppointmentInput{Description: &desc})
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, f.appointments.Delete(ctx, f.admin, a.ID))
	assert.ErrorIs(t, f.appointments.Delete(ctx, f.admin, a.ID), ErrNotFound)
}
