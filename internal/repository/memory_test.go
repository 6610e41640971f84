package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"hospital-app-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedAppointment(t *testing.T, repo AppointmentRepository, patientID string, status models.AppointmentStatus) *models.Appointment {
	t.Helper()
	a := &models.Appointment{PatientID: patientID, Description: "checkup", Status: status}
	require.NoError(t, repo.Create(context.Background(), a))
	return a
}

func TestMemoryApprove_OnlyOnce(t *testing.T) {
	repo := NewMemoryStore().Appointments()
	a := seedAppointment(t, repo, "patient-1", models.StatusPending)
	date := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	approved, err := repo.Approve(context.Background(), a.ID, "doctor-1", date)
	require.NoError(t, err)
	assert.Equal(t, models.StatusScheduled, approved.Status)

	again, err := repo.Reject(context.Background(), a.ID)
	assert.ErrorIs(t, err, ErrStateConflict)
	assert.Equal(t, models.StatusScheduled, again.Status)
	assert.Equal(t, date, *again.AppointmentDate)
}

func TestMemoryApprove_ConcurrentCallsSucceedOnce(t *testing.T) {
	repo := NewMemoryStore().Appointments()
	a := seedAppointment(t, repo, "patient-1", models.StatusPending)

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.Approve(context.Background(), a.ID, "doctor-1", time.Now()); err == nil {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins)
}

func TestMemorySetStatus_RequiresExpectedStatus(t *testing.T) {
	repo := NewMemoryStore().Appointments()
	a := seedAppointment(t, repo, "patient-1", models.StatusPending)

	_, err := repo.SetStatus(context.Background(), a.ID, models.StatusScheduled, models.StatusCompleted)
	assert.ErrorIs(t, err, ErrStateConflict)

	updated, err := repo.SetStatus(context.Background(), a.ID, models.StatusPending, models.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, updated.Status)

	_, err = repo.SetStatus(context.Background(), "missing", models.StatusPending, models.StatusCompleted)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryCreateWithPurge(t *testing.T) {
	store := NewMemoryStore()
	appointments := store.Appointments()
	discharges := store.Discharges()

	done1 := seedAppointment(t, appointments, "patient-1", models.StatusCompleted)
	done2 := seedAppointment(t, appointments, "patient-1", models.StatusCompleted)
	pending := seedAppointment(t, appointments, "patient-1", models.StatusPending)
	other := seedAppointment(t, appointments, "patient-2", models.StatusCompleted)

	purged, err := discharges.CreateWithPurge(context.Background(), &models.DischargeDetails{PatientID: "patient-1"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), purged)

	for _, id := range []string{done1.ID, done2.ID} {
		_, err := appointments.FindByID(context.Background(), id)
		assert.ErrorIs(t, err, ErrNotFound)
	}
	for _, id := range []string{pending.ID, other.ID} {
		_, err := appointments.FindByID(context.Background(), id)
		assert.NoError(t, err)
	}

	_, err = discharges.CreateWithPurge(context.Background(), &models.DischargeDetails{PatientID: "patient-1"})
	assert.ErrorIs(t, err, ErrNoCompletedAppointments)

	list, err := discharges.List(context.Background(), DischargeFilter{PatientID: "patient-1"})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestMemoryDirectory_ProfileID(t *testing.T) {
	store := NewMemoryStore()
	doctor := store.AddDoctor(models.Doctor{User: models.User{FirstName: "Ada", LastName: "Lovelace", Role: models.RoleDoctor}})
	patient := store.AddPatient(models.Patient{User: models.User{FirstName: "Bob", Role: models.RolePatient}})

	dir := store.Directory()

	id, err := dir.ProfileID(context.Background(), models.RoleDoctor, doctor.UserID)
	require.NoError(t, err)
	assert.Equal(t, doctor.ID, id)

	id, err = dir.ProfileID(context.Background(), models.RolePatient, patient.UserID)
	require.NoError(t, err)
	assert.Equal(t, patient.ID, id)

	_, err = dir.ProfileID(context.Background(), models.RoleAdmin, doctor.UserID)
	assert.ErrorIs(t, err, ErrNotFound)

	found, err := dir.FindDoctor(context.Background(), doctor.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", found.Name())
}

func TestMemoryLatestForPatient(t *testing.T) {
	store := NewMemoryStore()
	appointments := store.Appointments()
	discharges := store.Discharges()
	ctx := context.Background()

	seedAppointment(t, appointments, "patient-1", models.StatusCompleted)
	first := &models.DischargeDetails{PatientID: "patient-1", Total: 100}
	_, err := discharges.CreateWithPurge(ctx, first)
	require.NoError(t, err)

	seedAppointment(t, appointments, "patient-1", models.StatusCompleted)
	second := &models.DischargeDetails{PatientID: "patient-1", Total: 200}
	_, err = discharges.CreateWithPurge(ctx, second)
	require.NoError(t, err)

	latest, err := discharges.LatestForPatient(ctx, "patient-1")
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)

	_, err = discharges.LatestForPatient(ctx, "patient-2")
	assert.ErrorIs(t, err, ErrNotFound)
}
