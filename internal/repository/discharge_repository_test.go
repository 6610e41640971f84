package repository

import (
	"context"
	"testing"
	"time"

	"hospital-app-server/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDischarge(patientID string) *models.DischargeDetails {
	d := &models.DischargeDetails{
		PatientID: patientID,
		AdmitDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Charges:   models.Charges{RoomCharge: 100, DoctorFee: 50, MedicineCost: 20, OtherCharge: 10},
	}
	if err := d.ApplyBill(time.Date(2024, 1, 11, 9, 0, 0, 0, time.UTC)); err != nil {
		panic(err)
	}
	return d
}

func TestCreateWithPurge_NoCompletedAppointments(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewDischargeRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `appointments` WHERE (.+) FOR UPDATE").
		WithArgs("patient-1", models.StatusCompleted).
		WillReturnRows(sqlmock.NewRows(appointmentColumns))
	mock.ExpectRollback()

	purged, err := repo.CreateWithPurge(context.Background(), newDischarge("patient-1"))

	assert.ErrorIs(t, err, ErrNoCompletedAppointments)
	assert.Zero(t, purged)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithPurge_Success(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewDischargeRepository(db)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `appointments` WHERE (.+) FOR UPDATE").
		WithArgs("patient-1", models.StatusCompleted).
		WillReturnRows(sqlmock.NewRows(appointmentColumns).
			AddRow("appt-1", now, now, "patient-1", "doctor-1", "a", "completed", false, now).
			AddRow("appt-2", now, now, "patient-1", "doctor-1", "b", "completed", false, now))
	mock.ExpectExec("INSERT INTO `discharge_details`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM `appointments` WHERE id IN \\(\\?,\\?\\)").
		WithArgs("appt-1", "appt-2").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	d := newDischarge("patient-1")
	purged, err := repo.CreateWithPurge(context.Background(), d)

	require.NoError(t, err)
	assert.Equal(t, int64(2), purged)
	assert.NotEmpty(t, d.ID)
	assert.Equal(t, int64(1080), d.Total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithPurge_InsertFailsRollsBack(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewDischargeRepository(db)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `appointments` WHERE (.+) FOR UPDATE").
		WillReturnRows(sqlmock.NewRows(appointmentColumns).
			AddRow("appt-1", now, now, "patient-1", "doctor-1", "a", "completed", false, now))
	mock.ExpectExec("INSERT INTO `discharge_details`").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err := repo.CreateWithPurge(context.Background(), newDischarge("patient-1"))

	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestForPatient_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewDischargeRepository(db)

	mock.ExpectQuery("SELECT \\* FROM `discharge_details` WHERE patient_id = \\? ORDER BY created_at desc").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.LatestForPatient(context.Background(), "patient-1")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
