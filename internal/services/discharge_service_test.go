package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"hospital-app-server/internal/authz"
	"hospital-app-server/internal/models"
	"hospital-app-server/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var billingDay = time.Date(2024, 1, 11, 15, 30, 0, 0, time.UTC)

func newDischargeService(f *fixture) *DischargeService {
	return NewDischargeService(f.store.Discharges(), f.store.Directory(), zap.NewNop(), func() time.Time { return billingDay })
}

func (f *fixture) complete(t *testing.T, patientID string) *models.Appointment {
	t.Helper()
	a, err := f.appointments.Create(context.Background(), f.admin, CreateAppointmentInput{PatientID: patientID, Description: "visit"})
	require.NoError(t, err)
	a, err = f.appointments.UpdateStatus(context.Background(), f.admin, a.ID, "completed")
	require.NoError(t, err)
	return a
}

var exampleCharges = models.Charges{RoomCharge: 100, DoctorFee: 50, MedicineCost: 20, OtherCharge: 10}

func TestCreateDischarge_ComputesBillAndPurges(t *testing.T) {
	f := newFixture(t)
	svc := newDischargeService(f)
	ctx := context.Background()

	done := f.complete(t, f.patient.ID)
	waiting := f.book(t)
	otherDone := f.complete(t, f.other.ID)

	d, err := svc.Create(ctx, f.receptionist, CreateDischargeInput{PatientID: f.patient.ID, Charges: exampleCharges})
	require.NoError(t, err)

	assert.Equal(t, int64(10), d.DaySpent)
	assert.Equal(t, int64(1080), d.Total)
	assert.Equal(t, time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC), d.ReleaseDate)
	assert.Equal(t, "Gregory House", d.AssignedDoctorName)
	assert.Equal(t, "1 Main St", d.Address)
	assert.Equal(t, "fever", d.Symptoms)

	appointments := f.store.Appointments()
	_, err = appointments.FindByID(ctx, done.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = appointments.FindByID(ctx, waiting.ID)
	assert.NoError(t, err)
	_, err = appointments.FindByID(ctx, otherDone.ID)
	assert.NoError(t, err)
}

func TestCreateDischarge_NoCompletedAppointment(t *testing.T) {
	f := newFixture(t)
	svc := newDischargeService(f)
	ctx := context.Background()
	f.book(t)

	_, err := svc.Create(ctx, f.admin, CreateDischargeInput{PatientID: f.patient.ID, Charges: exampleCharges})

	assert.ErrorIs(t, err, ErrPreconditionFailed)
	assert.Equal(t, "PreconditionFailed", Code(err))
	list, err := svc.List(ctx, f.admin)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreateDischarge_Validation(t *testing.T) {
	f := newFixture(t)
	svc := newDischargeService(f)
	ctx := context.Background()
	f.complete(t, f.patient.ID)

	_, err := svc.Create(ctx, f.admin, CreateDischargeInput{Charges: exampleCharges})
	assert.ErrorIs(t, err, ErrMissingRequiredField)

	_, err = svc.Create(ctx, f.admin, CreateDischargeInput{PatientID: "ghost", Charges: exampleCharges})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Create(ctx, f.admin, CreateDischargeInput{PatientID: f.patient.ID, Charges: models.Charges{RoomCharge: -1}})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(ctx, f.admin, CreateDischargeInput{PatientID: f.patient.ID, Mobile: "12ab", Charges: exampleCharges})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(ctx, f.asPatient, CreateDischargeInput{PatientID: f.patient.ID, Charges: exampleCharges})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCreateDischarge_AdmitDateInFutureClampsDays(t *testing.T) {
	f := newFixture(t)
	svc := newDischargeService(f)
	f.complete(t, f.patient.ID)
	future := billingDay.AddDate(0, 0, 3)

	d, err := svc.Create(context.Background(), f.admin, CreateDischargeInput{
		PatientID: f.patient.ID, AdmitDate: &future, Charges: exampleCharges,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(0), d.DaySpent)
	assert.Equal(t, int64(80), d.Total)
}

func TestCreateDischarge_OversizedChargeRejected(t *testing.T) {
	f := newFixture(t)
	svc := newDischargeService(f)
	ctx := context.Background()
	done := f.complete(t, f.patient.ID)

	_, err := svc.Create(ctx, f.admin, CreateDischargeInput{
		PatientID: f.patient.ID, Charges: models.Charges{RoomCharge: 1 << 62},
	})

	assert.ErrorIs(t, err, ErrInvalidInput)
	list, err := svc.List(ctx, f.admin)
	require.NoError(t, err)
	assert.Empty(t, list)
	_, err = f.store.Appointments().FindByID(ctx, done.ID)
	assert.NoError(t, err, "a rejected discharge keeps the completed appointment")
}

func TestCreateDischarge_LongStayCountsCalendarDays(t *testing.T) {
	f := newFixture(t)
	svc := newDischargeService(f)
	f.complete(t, f.patient.ID)
	admit := time.Date(1700, 1, 1, 0, 0, 0, 0, time.UTC)
	charges := models.Charges{RoomCharge: models.MaxCharge, DoctorFee: 1}

	d, err := svc.Create(context.Background(), f.admin, CreateDischargeInput{
		PatientID: f.patient.ID, AdmitDate: &admit, Charges: charges,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(118348), d.DaySpent)
	assert.Equal(t, int64(models.MaxCharge)*118348+1, d.Total)
}

type failingDoctorLookup struct {
	repository.DirectoryRepository
	err error
}

func (d failingDoctorLookup) FindDoctor(context.Context, string) (*models.Doctor, error) {
	return nil, d.err
}

func TestCreateDischarge_DoctorLookupFailure(t *testing.T) {
	f := newFixture(t)
	f.complete(t, f.patient.ID)
	ctx := context.Background()
	dbErr := errors.New("connection reset")

	svc := NewDischargeService(f.store.Discharges(), failingDoctorLookup{f.store.Directory(), dbErr},
		zap.NewNop(), func() time.Time { return billingDay })
	_, err := svc.Create(ctx, f.admin, CreateDischargeInput{PatientID: f.patient.ID, Charges: exampleCharges})
	assert.ErrorIs(t, err, dbErr)
	assert.Empty(t, Code(err))

	svc = NewDischargeService(f.store.Discharges(), failingDoctorLookup{f.store.Directory(), repository.ErrNotFound},
		zap.NewNop(), func() time.Time { return billingDay })
	d, err := svc.Create(ctx, f.admin, CreateDischargeInput{PatientID: f.patient.ID, Charges: exampleCharges})
	require.NoError(t, err)
	assert.Empty(t, d.AssignedDoctorName)
}

func TestUpdateDischarge_RecomputesTotal(t *testing.T) {
	f := newFixture(t)
	svc := newDischargeService(f)
	ctx := context.Background()
	f.complete(t, f.patient.ID)
	d, err := svc.Create(ctx, f.admin, CreateDischargeInput{PatientID: f.patient.ID, Charges: exampleCharges})
	require.NoError(t, err)

	room := int64(200)
	updated, err := svc.Update(ctx, f.receptionist, d.ID, UpdateDischargeInput{RoomCharge: &room})
	require.NoError(t, err)
	assert.Equal(t, int64(10), updated.DaySpent)
	assert.Equal(t, int64(2080), updated.Total)

	negative := int64(-5)
	_, err = svc.Update(ctx, f.receptionist, d.ID, UpdateDischargeInput{DoctorFee: &negative})
	assert.ErrorIs(t, err, ErrInvalidInput)

	huge := int64(models.MaxCharge) + 1
	_, err = svc.Update(ctx, f.receptionist, d.ID, UpdateDischargeInput{RoomCharge: &huge})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Update(ctx, f.asDoctor, d.ID, UpdateDischargeInput{RoomCharge: &room})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestDischargeVisibility(t *testing.T) {
	f := newFixture(t)
	svc := newDischargeService(f)
	ctx := context.Background()
	f.complete(t, f.patient.ID)
	f.complete(t, f.other.ID)

	mine, err := svc.Create(ctx, f.admin, CreateDischargeInput{PatientID: f.patient.ID, Charges: exampleCharges})
	require.NoError(t, err)
	theirs, err := svc.Create(ctx, f.admin, CreateDischargeInput{PatientID: f.other.ID, Charges: exampleCharges})
	require.NoError(t, err)

	all, err := svc.List(ctx, f.receptionist)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	own, err := svc.List(ctx, f.asPatient)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, mine.ID, own[0].ID)

	assigned, err := svc.List(ctx, f.asDoctor)
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, mine.ID, assigned[0].ID)

	_, err = svc.Get(ctx, f.asPatient, theirs.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Get(ctx, f.asDoctor, theirs.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := svc.Get(ctx, f.asPatient, mine.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1080), got.Total)
}

func TestLatestBill(t *testing.T) {
	f := newFixture(t)
	svc := newDischargeService(f)
	ctx := context.Background()

	_, err := svc.LatestBill(ctx, f.asPatient, f.patient.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	f.complete(t, f.patient.ID)
	d, err := svc.Create(ctx, f.admin, CreateDischargeInput{PatientID: f.patient.ID, Charges: exampleCharges})
	require.NoError(t, err)

	bill, err := svc.LatestBill(ctx, f.asPatient, f.patient.ID)
	require.NoError(t, err)
	assert.Equal(t, d.ID, bill.Discharge.ID)
	assert.Equal(t, "John Doe", bill.PatientName)

	_, err = svc.LatestBill(ctx, f.asPatient, f.other.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.LatestBill(ctx, f.asDoctor, f.patient.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestDeleteDischarge(t *testing.T) {
	f := newFixture(t)
	svc := newDischargeService(f)
	ctx := context.Background()
	f.complete(t, f.patient.ID)
	d, err := svc.Create(ctx, f.admin, CreateDischargeInput{PatientID: f.patient.ID, Charges: exampleCharges})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, authz.Actor{Role: models.RoleDoctor, DoctorID: f.doctor.ID}, d.ID), ErrForbidden)
	require.NoError(t, svc.Delete(ctx, f.admin, d.ID))
	assert.ErrorIs(t, svc.Delete(ctx, f.admin, d.ID), ErrNotFound)
}
