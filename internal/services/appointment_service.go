package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"hospital-app-server/internal/authz"
	"hospital-app-server/internal/models"
	"hospital-app-server/internal/repository"

	"go.uber.org/zap"
)

// AppointmentService runs the appointment lifecycle: booking, the two-phase
// approve and reject decisions, and direct status changes.
type AppointmentService struct {
	appointments repository.AppointmentRepository
	directory    repository.DirectoryRepository
	logger       *zap.Logger
}

// NewAppointmentService creates an AppointmentService.
func NewAppointmentService(appointments repository.AppointmentRepository, directory repository.DirectoryRepository, logger *zap.Logger) *AppointmentService {
	return &AppointmentService{
		appointments: appointments,
		directory:    directory,
		logger:       logger,
	}
}

// CreateAppointmentInput is a booking request. PatientID is required from staff
// and must be empty or the caller's own profile for patients.
type CreateAppointmentInput struct {
	PatientID   string
	Description string
	Emergency   bool
}

// ApproveInput carries the approval decision. Without Confirm the call only
// previews the appointment.
type ApproveInput struct {
	Confirm         bool
	AppointmentDate *time.Time
	DoctorID        string
}

// UpdateAppointmentInput holds the editable appointment fields; nil leaves a field as is.
type UpdateAppointmentInput struct {
	Description *string
	Emergency   *bool
}

// Decision is the result of approve or reject. Confirmed is false for previews.
type Decision struct {
	Appointment *models.Appointment `json:"appointment"`
	Confirmed   bool                `json:"confirmed"`
	Message     string              `json:"message"`
}

func (s *AppointmentService) Create(ctx context.Context, actor authz.Actor, in CreateAppointmentInput) (*models.Appointment, error) {
	if err := authorize(actor, authz.ActionAppointmentCreate); err != nil {
		return nil, err
	}

	patientID, err := s.bookingPatient(ctx, actor, in.PatientID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, fmt.Errorf("%w: description", ErrMissingRequiredField)
	}

	a := &models.Appointment{
		PatientID:   patientID,
		Description: in.Description,
		Emergency:   in.Emergency,
		Status:      models.StatusPending,
	}
	if err := s.appointments.Create(ctx, a); err != nil {
		return nil, err
	}

	s.logger.Info("appointment booked",
		zap.String("appointment_id", a.ID),
		zap.String("patient_id", patientID),
		zap.Bool("emergency", a.Emergency))
	return a, nil
}

func (s *AppointmentService) bookingPatient(ctx context.Context, actor authz.Actor, requested string) (string, error) {
	if !actor.IsStaff() {
		if actor.PatientID == "" || (requested != "" && requested != actor.PatientID) {
			return "", fmt.Errorf("%w: patients can only book for themselves", ErrForbidden)
		}
		return actor.PatientID, nil
	}

	if requested == "" {
		return "", fmt.Errorf("%w: patientId", ErrMissingRequiredField)
	}
	if _, err := s.directory.FindPatient(ctx, requested); err != nil {
		return "", notFound(err, "patient")
	}
	return requested, nil
}

// List returns the appointments visible to actor, oldest first.
func (s *AppointmentService) List(ctx context.Context, actor authz.Actor) ([]models.Appointment, error) {
	if err := authorize(actor, authz.ActionAppointmentList); err != nil {
		return nil, err
	}
	filter, err := appointmentScope(actor)
	if err != nil {
		return nil, err
	}
	return s.appointments.List(ctx, filter)
}

// Get returns one appointment. Appointments outside the actor's scope are
// reported as not found.
func (s *AppointmentService) Get(ctx context.Context, actor authz.Actor, id string) (*models.Appointment, error) {
	if err := authorize(actor, authz.ActionAppointmentView); err != nil {
		return nil, err
	}
	a, err := s.appointments.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "appointment")
	}
	if !visibleAppointment(actor, a) {
		return nil, fmt.Errorf("%w: appointment", ErrNotFound)
	}
	return a, nil
}

// Pending lists appointments still waiting for a decision.
func (s *AppointmentService) Pending(ctx context.Context, actor authz.Actor) ([]models.Appointment, error) {
	if err := authorize(actor, authz.ActionAppointmentPending); err != nil {
		return nil, err
	}
	return s.appointments.List(ctx, repository.AppointmentFilter{Status: models.StatusPending})
}

func (s *AppointmentService) Approve(ctx context.Context, actor authz.Actor, id string, in ApproveInput) (*Decision, error) {
	if err := authorize(actor, authz.ActionAppointmentApprove); err != nil {
		return nil, err
	}
	a, err := s.undecided(ctx, id)
	if err != nil {
		return nil, err
	}
	if !in.Confirm {
		return &Decision{Appointment: a, Message: "Confirm to approve this appointment."}, nil
	}

	if in.AppointmentDate == nil || in.AppointmentDate.IsZero() {
		return nil, fmt.Errorf("%w: appointmentDate", ErrMissingRequiredField)
	}
	if in.DoctorID == "" {
		return nil, fmt.Errorf("%w: doctorId", ErrMissingRequiredField)
	}
	if _, err := s.directory.FindDoctor(ctx, in.DoctorID); err != nil {
		return nil, notFound(err, "doctor")
	}

	updated, err := s.appointments.Approve(ctx, id, in.DoctorID, *in.AppointmentDate)
	if err != nil {
		return nil, s.transitionError(err, updated)
	}

	s.logger.Info("appointment approved",
		zap.String("appointment_id", id),
		zap.String("doctor_id", in.DoctorID),
		zap.Time("appointment_date", *in.AppointmentDate),
		zap.String("actor", actor.UserID))
	return &Decision{Appointment: updated, Confirmed: true, Message: "Appointment approved."}, nil
}

func (s *AppointmentService) Reject(ctx context.Context, actor authz.Actor, id string, confirm bool) (*Decision, error) {
	if err := authorize(actor, authz.ActionAppointmentReject); err != nil {
		return nil, err
	}
	a, err := s.undecided(ctx, id)
	if err != nil {
		return nil, err
	}
	if !confirm {
		return &Decision{Appointment: a, Message: "Confirm to reject this appointment."}, nil
	}

	updated, err := s.appointments.Reject(ctx, id)
	if err != nil {
		return nil, s.transitionError(err, updated)
	}

	s.logger.Info("appointment rejected",
		zap.String("appointment_id", id),
		zap.String("actor", actor.UserID))
	return &Decision{Appointment: updated, Confirmed: true, Message: "Appointment rejected."}, nil
}

// undecided loads an appointment that approve or reject may still act on.
func (s *AppointmentService) undecided(ctx context.Context, id string) (*models.Appointment, error) {
	a, err := s.appointments.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "appointment")
	}
	if a.Status.Processed() {
		return nil, fmt.Errorf("%w: status is %s", ErrAlreadyProcessed, a.Status)
	}
	return a, nil
}

// UpdateStatus overwrites the status with one of the allowed values, skipping the
// approval step. Moving to scheduled still needs a date and doctor on record.
func (s *AppointmentService) UpdateStatus(ctx context.Context, actor authz.Actor, id, raw string) (*models.Appointment, error) {
	if err := authorize(actor, authz.ActionAppointmentUpdateStatus); err != nil {
		return nil, err
	}
	status, err := models.ParseStatusUpdate(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %q, %s", ErrInvalidStatusValue, raw, err.Error())
	}

	a, err := s.appointments.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "appointment")
	}
	if a.Status == status {
		return nil, fmt.Errorf("%w: status is already %s", ErrAlreadyProcessed, status)
	}
	if status == models.StatusScheduled && (a.AppointmentDate == nil || a.DoctorID == nil) {
		return nil, fmt.Errorf("%w: appointment has no date or doctor, approve it instead", ErrMissingRequiredField)
	}

	updated, err := s.appointments.SetStatus(ctx, id, a.Status, status)
	if err != nil {
		return nil, s.transitionError(err, updated)
	}

	s.logger.Info("appointment status changed",
		zap.String("appointment_id", id),
		zap.String("from", string(a.Status)),
		zap.String("to", string(status)),
		zap.String("actor", actor.UserID))
	return updated, nil
}

func (s *AppointmentService) transitionError(err error, current *models.Appointment) error {
	switch {
	case errors.Is(err, repository.ErrStateConflict):
		s.logger.Warn("appointment changed concurrently", zap.String("appointment_id", current.ID), zap.String("status", string(current.Status)))
		return fmt.Errorf("%w: status is %s", ErrAlreadyProcessed, current.Status)
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: appointment", ErrNotFound)
	}
	return err
}

func (s *AppointmentService) Update(ctx context.Context, actor authz.Actor, id string, in UpdateAppointmentInput) (*models.Appointment, error) {
	if err := authorize(actor, authz.ActionAppointmentUpdate); err != nil {
		return nil, err
	}
	a, err := s.appointments.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "appointment")
	}

	if in.Description != nil {
		if strings.TrimSpace(*in.Description) == "" {
			return nil, fmt.Errorf("%w: description", ErrMissingRequiredField)
		}
		a.Description = *in.Description
	}
	if in.Emergency != nil {
		a.Emergency = *in.Emergency
	}

	if err := s.appointments.Update(ctx, a); err != nil {
		return nil, notFound(err, "appointment")
	}
	return a, nil
}

func (s *AppointmentService) Delete(ctx context.Context, actor authz.Actor, id string) error {
	if err := authorize(actor, authz.ActionAppointmentDelete); err != nil {
		return err
	}
	if err := s.appointments.Delete(ctx, id); err != nil {
		return notFound(err, "appointment")
	}
	s.logger.Info("appointment deleted", zap.String("appointment_id", id), zap.String("actor", actor.UserID))
	return nil
}

func appointmentScope(actor authz.Actor) (repository.AppointmentFilter, error) {
	switch {
	case actor.IsStaff():
		return repository.AppointmentFilter{}, nil
	case actor.PatientID != "":
		return repository.AppointmentFilter{PatientID: actor.PatientID}, nil
	case actor.DoctorID != "":
		return repository.AppointmentFilter{DoctorID: actor.DoctorID}, nil
	}
	return repository.AppointmentFilter{}, fmt.Errorf("%w: no profile attached to this account", ErrForbidden)
}

func visibleAppointment(actor authz.Actor, a *models.Appointment) bool {
	switch {
	case actor.IsStaff():
		return true
	case actor.PatientID != "":
		return a.PatientID == actor.PatientID
	case actor.DoctorID != "":
		return a.DoctorID != nil && *a.DoctorID == actor.DoctorID
	}
	return false
}
