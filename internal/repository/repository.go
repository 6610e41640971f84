package repository

import (
	"context"
	"errors"
	"time"

	"hospital-app-server/internal/models"
)

var (
	// ErrNotFound is returned when no row matches the lookup.
	ErrNotFound = errors.New("record not found")
	// ErrStateConflict is returned when a conditional update found the row in a
	// state that no longer satisfies its guard.
	ErrStateConflict = errors.New("record is no longer in the expected state")
	// ErrNoCompletedAppointments is returned by a discharge when the patient has
	// nothing to bill.
	ErrNoCompletedAppointments = errors.New("patient has no completed appointment")
)

// AppointmentFilter narrows List. Empty fields match everything.
type AppointmentFilter struct {
	PatientID string
	DoctorID  string
	Status    models.AppointmentStatus
}

// AppointmentRepository stores appointments. Approve, Reject and SetStatus are
// single conditional updates: the guard and the write cannot be interleaved with
// another request.
type AppointmentRepository interface {
	Create(ctx context.Context, a *models.Appointment) error
	FindByID(ctx context.Context, id string) (*models.Appointment, error)
	List(ctx context.Context, filter AppointmentFilter) ([]models.Appointment, error)
	// Update writes description and emergency only.
	Update(ctx context.Context, a *models.Appointment) error
	Delete(ctx context.Context, id string) error

	// Approve schedules the appointment unless it is already scheduled or rejected.
	Approve(ctx context.Context, id, doctorID string, date time.Time) (*models.Appointment, error)
	// Reject rejects the appointment unless it is already scheduled or rejected.
	Reject(ctx context.Context, id string) (*models.Appointment, error)
	// SetStatus moves the appointment from one status to another.
	SetStatus(ctx context.Context, id string, from, to models.AppointmentStatus) (*models.Appointment, error)
}

// DischargeFilter narrows List. Empty fields match everything.
type DischargeFilter struct {
	PatientID          string
	AssignedDoctorName string
}

// DischargeRepository stores discharge bills.
type DischargeRepository interface {
	// CreateWithPurge inserts d and deletes the patient's completed appointments in
	// one transaction. It fails with ErrNoCompletedAppointments, writing nothing,
	// when there are none. It returns the number of appointments removed.
	CreateWithPurge(ctx context.Context, d *models.DischargeDetails) (int64, error)
	FindByID(ctx context.Context, id string) (*models.DischargeDetails, error)
	List(ctx context.Context, filter DischargeFilter) ([]models.DischargeDetails, error)
	LatestForPatient(ctx context.Context, patientID string) (*models.DischargeDetails, error)
	Update(ctx context.Context, d *models.DischargeDetails) error
	Delete(ctx context.Context, id string) error
}

// DirectoryRepository resolves staff and patient profiles.
type DirectoryRepository interface {
	// FindDoctor loads a doctor with its user.
	FindDoctor(ctx context.Context, id string) (*models.Doctor, error)
	// FindPatient loads a patient with its user.
	FindPatient(ctx context.Context, id string) (*models.Patient, error)
	// ProfileID returns the id of the profile owned by userID for the given role,
	// or ErrNotFound. Admins own no profile.
	ProfileID(ctx context.Context, role models.Role, userID string) (string, error)
}
