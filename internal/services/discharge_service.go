package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hospital-app-server/internal/authz"
	"hospital-app-server/internal/models"
	"hospital-app-server/internal/repository"

	"go.uber.org/zap"
)

// DischargeService bills a patient's stay and closes the admission.
type DischargeService struct {
	discharges repository.DischargeRepository
	directory  repository.DirectoryRepository
	logger     *zap.Logger
	now        func() time.Time
}

// NewDischargeService creates a DischargeService. now supplies today's date and
// defaults to time.Now.
func NewDischargeService(discharges repository.DischargeRepository, directory repository.DirectoryRepository, logger *zap.Logger, now func() time.Time) *DischargeService {
	if now == nil {
		now = time.Now
	}
	return &DischargeService{
		discharges: discharges,
		directory:  directory,
		logger:     logger,
		now:        now,
	}
}

// CreateDischargeInput describes a discharge. Empty contact fields and a nil
// AdmitDate are copied from the patient profile; an empty AssignedDoctorName is
// taken from the patient's assigned doctor.
type CreateDischargeInput struct {
	PatientID          string
	AssignedDoctorName string
	Address            string
	Mobile             string
	Symptoms           string
	AdmitDate          *time.Time
	Charges            models.Charges
}

// UpdateDischargeInput holds the editable discharge fields; nil leaves a field as is.
// ReleaseDate, DaySpent and Total are derived and cannot be set.
type UpdateDischargeInput struct {
	AssignedDoctorName *string
	Address            *string
	Mobile             *string
	Symptoms           *string
	RoomCharge         *int64
	MedicineCost       *int64
	DoctorFee          *int64
	OtherCharge        *int64
}

// BillStatement is a discharge together with the billed patient's name.
type BillStatement struct {
	Discharge   *models.DischargeDetails `json:"discharge"`
	PatientName string                   `json:"patientName"`
}

// Create bills the patient and, in the same transaction, removes every completed
// appointment of theirs. Without a completed appointment nothing is written.
func (s *DischargeService) Create(ctx context.Context, actor authz.Actor, in CreateDischargeInput) (*models.DischargeDetails, error) {
	if err := authorize(actor, authz.ActionDischargeCreate); err != nil {
		return nil, err
	}
	if in.PatientID == "" {
		return nil, fmt.Errorf("%w: patientId", ErrMissingRequiredField)
	}
	if err := in.Charges.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}

	patient, err := s.directory.FindPatient(ctx, in.PatientID)
	if err != nil {
		return nil, notFound(err, "patient")
	}

	d := &models.DischargeDetails{
		PatientID:          patient.ID,
		AssignedDoctorName: in.AssignedDoctorName,
		Address:            firstNonEmpty(in.Address, patient.Address),
		Mobile:             firstNonEmpty(in.Mobile, patient.Mobile),
		Symptoms:           firstNonEmpty(in.Symptoms, patient.Symptoms),
		AdmitDate:          patient.AdmitDate,
		Charges:            in.Charges,
	}
	if in.AdmitDate != nil {
		d.AdmitDate = *in.AdmitDate
	}
	if d.AdmitDate.IsZero() {
		return nil, fmt.Errorf("%w: admitDate", ErrMissingRequiredField)
	}
	d.AdmitDate = models.Today(d.AdmitDate)
	if d.Mobile != "" && !models.ValidMobile(d.Mobile) {
		return nil, fmt.Errorf("%w: mobile must be 9 to 15 digits, optionally prefixed by +", ErrInvalidInput)
	}
	if d.AssignedDoctorName == "" && patient.AssignedDoctorID != nil {
		doctor, err := s.directory.FindDoctor(ctx, *patient.AssignedDoctorID)
		switch {
		case err == nil:
			d.AssignedDoctorName = doctor.Name()
		case !errors.Is(err, repository.ErrNotFound):
			return nil, fmt.Errorf("assigned doctor: %w", err)
		}
	}

	if err := d.ApplyBill(s.now()); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}

	purged, err := s.discharges.CreateWithPurge(ctx, d)
	if err != nil {
		if errors.Is(err, repository.ErrNoCompletedAppointments) {
			return nil, fmt.Errorf("%w: no completed appointment", ErrPreconditionFailed)
		}
		return nil, err
	}

	s.logger.Info("patient discharged",
		zap.String("discharge_id", d.ID),
		zap.String("patient_id", d.PatientID),
		zap.Int64("day_spent", d.DaySpent),
		zap.Int64("total", d.Total),
		zap.Int64("appointments_purged", purged),
		zap.String("actor", actor.UserID))
	return d, nil
}

// List returns the discharges visible to actor, newest first. Doctors see the
// discharges naming them as the assigned doctor.
func (s *DischargeService) List(ctx context.Context, actor authz.Actor) ([]models.DischargeDetails, error) {
	if err := authorize(actor, authz.ActionDischargeList); err != nil {
		return nil, err
	}
	filter, err := s.scope(ctx, actor)
	if err != nil {
		return nil, err
	}
	return s.discharges.List(ctx, filter)
}

func (s *DischargeService) Get(ctx context.Context, actor authz.Actor, id string) (*models.DischargeDetails, error) {
	if err := authorize(actor, authz.ActionDischargeView); err != nil {
		return nil, err
	}
	filter, err := s.scope(ctx, actor)
	if err != nil {
		return nil, err
	}
	d, err := s.discharges.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "discharge")
	}
	if (filter.PatientID != "" && d.PatientID != filter.PatientID) ||
		(filter.AssignedDoctorName != "" && d.AssignedDoctorName != filter.AssignedDoctorName) {
		return nil, fmt.Errorf("%w: discharge", ErrNotFound)
	}
	return d, nil
}

// Update edits a discharge. Changing a charge recomputes the total over the
// stored stay length.
func (s *DischargeService) Update(ctx context.Context, actor authz.Actor, id string, in UpdateDischargeInput) (*models.DischargeDetails, error) {
	if err := authorize(actor, authz.ActionDischargeUpdate); err != nil {
		return nil, err
	}
	d, err := s.discharges.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "discharge")
	}

	setString(&d.AssignedDoctorName, in.AssignedDoctorName)
	setString(&d.Address, in.Address)
	setString(&d.Symptoms, in.Symptoms)
	if in.Mobile != nil {
		if *in.Mobile != "" && !models.ValidMobile(*in.Mobile) {
			return nil, fmt.Errorf("%w: mobile must be 9 to 15 digits, optionally prefixed by +", ErrInvalidInput)
		}
		d.Mobile = *in.Mobile
	}
	setInt(&d.RoomCharge, in.RoomCharge)
	setInt(&d.MedicineCost, in.MedicineCost)
	setInt(&d.DoctorFee, in.DoctorFee)
	setInt(&d.OtherCharge, in.OtherCharge)
	if err := d.Charges.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}
	if err := d.Recalculate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}

	if err := s.discharges.Update(ctx, d); err != nil {
		return nil, notFound(err, "discharge")
	}
	return d, nil
}

func (s *DischargeService) Delete(ctx context.Context, actor authz.Actor, id string) error {
	if err := authorize(actor, authz.ActionDischargeDelete); err != nil {
		return err
	}
	if err := s.discharges.Delete(ctx, id); err != nil {
		return notFound(err, "discharge")
	}
	s.logger.Info("discharge deleted", zap.String("discharge_id", id), zap.String("actor", actor.UserID))
	return nil
}

// LatestBill returns the most recent discharge of a patient. Patients may only
// fetch their own bill.
func (s *DischargeService) LatestBill(ctx context.Context, actor authz.Actor, patientID string) (*BillStatement, error) {
	if err := authorize(actor, authz.ActionBillDownload); err != nil {
		return nil, err
	}
	if !actor.IsStaff() && patientID != actor.PatientID {
		return nil, fmt.Errorf("%w: bill belongs to another patient", ErrForbidden)
	}

	patient, err := s.directory.FindPatient(ctx, patientID)
	if err != nil {
		return nil, notFound(err, "patient")
	}
	d, err := s.discharges.LatestForPatient(ctx, patientID)
	if err != nil {
		return nil, notFound(err, "discharge")
	}
	return &BillStatement{Discharge: d, PatientName: patient.Name()}, nil
}

func (s *DischargeService) scope(ctx context.Context, actor authz.Actor) (repository.DischargeFilter, error) {
	switch {
	case actor.IsStaff():
		return repository.DischargeFilter{}, nil
	case actor.PatientID != "":
		return repository.DischargeFilter{PatientID: actor.PatientID}, nil
	case actor.DoctorID != "":
		doctor, err := s.directory.FindDoctor(ctx, actor.DoctorID)
		if err != nil {
			return repository.DischargeFilter{}, notFound(err, "doctor")
		}
		if doctor.Name() == "" {
			return repository.DischargeFilter{}, fmt.Errorf("%w: doctor profile has no name", ErrForbidden)
		}
		return repository.DischargeFilter{AssignedDoctorName: doctor.Name()}, nil
	}
	return repository.DischargeFilter{}, fmt.Errorf("%w: no profile attached to this account", ErrForbidden)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int64, v *int64) {
	if v != nil {
		*dst = *v
	}
}
