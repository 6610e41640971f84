package models

import (
	"errors"
	"time"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusScheduled AppointmentStatus = "scheduled"
	StatusRejected  AppointmentStatus = "rejected"
	StatusCompleted AppointmentStatus = "completed"
)

// StatusCancelled is accepted by status updates as another name for StatusRejected.
// It is never stored.
const StatusCancelled = "cancelled"

// ErrInvalidStatus is returned by ParseStatusUpdate for values outside the allow-list.
var ErrInvalidStatus = errors.New("status must be one of: scheduled, cancelled, completed")

// Processed reports whether the approval step has already closed.
func (s AppointmentStatus) Processed() bool {
	return s == StatusScheduled || s == StatusRejected
}

// ProcessedStatuses are the statuses that block approve and reject.
func ProcessedStatuses() []AppointmentStatus {
	return []AppointmentStatus{StatusScheduled, StatusRejected}
}

// ParseStatusUpdate maps a requested status onto the stored enumeration.
// Only scheduled, cancelled (stored as rejected), rejected and completed are
// accepted; matching is exact, so "Scheduled" or "Canceled" fail.
func ParseStatusUpdate(raw string) (AppointmentStatus, error) {
	switch raw {
	case string(StatusScheduled):
		return StatusScheduled, nil
	case StatusCancelled, string(StatusRejected):
		return StatusRejected, nil
	case string(StatusCompleted):
		return StatusCompleted, nil
	}
	return "", ErrInvalidStatus
}

// Appointment is a patient's request to see a doctor. It starts pending with no
// doctor or date; approval fills both in.
type Appointment struct {
	BaseModel
	PatientID       string            `gorm:"size:36;index;not null" json:"patientId"`
	DoctorID        *string           `gorm:"size:36;index" json:"doctorId"`
	Description     string            `gorm:"type:text" json:"description"`
	Status          AppointmentStatus `gorm:"size:20;index;default:'pending'" json:"status"`
	Emergency       bool              `gorm:"default:false" json:"emergency"`
	AppointmentDate *time.Time        `json:"appointmentDate"`

	// Relations
	Patient Patient `gorm:"foreignKey:PatientID;constraint:OnDelete:CASCADE" json:"-"`
	Doctor  *Doctor `gorm:"foreignKey:DoctorID;constraint:OnDelete:CASCADE" json:"-"`
}

// BookedAt is when the appointment was requested.
func (a *Appointment) BookedAt() time.Time {
	return a.CreatedAt
}
