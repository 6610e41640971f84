package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hospital-app-server/internal/models"

	"gorm.io/gorm"
)

// AppointmentGormRepository is the SQL-backed AppointmentRepository.
type AppointmentGormRepository struct {
	db *gorm.DB
}

// NewAppointmentRepository creates an AppointmentGormRepository.
func NewAppointmentRepository(db *gorm.DB) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db}
}

func (r *AppointmentGormRepository) Create(ctx context.Context, a *models.Appointment) error {
	if err := r.db.WithContext(ctx).Omit("Patient", "Doctor").Create(a).Error; err != nil {
		return fmt.Errorf("create appointment: %w", err)
	}
	return nil
}

func (r *AppointmentGormRepository) FindByID(ctx context.Context, id string) (*models.Appointment, error) {
	var a models.Appointment
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find appointment: %w", err)
	}
	return &a, nil
}

func (r *AppointmentGormRepository) List(ctx context.Context, filter AppointmentFilter) ([]models.Appointment, error) {
	query := r.db.WithContext(ctx).Order("created_at asc")
	if filter.PatientID != "" {
		query = query.Where("patient_id = ?", filter.PatientID)
	}
	if filter.DoctorID != "" {
		query = query.Where("doctor_id = ?", filter.DoctorID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var appointments []models.Appointment
	if err := query.Find(&appointments).Error; err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return appointments, nil
}

func (r *AppointmentGormRepository) Update(ctx context.Context, a *models.Appointment) error {
	res := r.db.WithContext(ctx).Model(&models.Appointment{}).Where("id = ?", a.ID).
		Updates(map[string]interface{}{
			"description": a.Description,
			"emergency":   a.Emergency,
		})
	if res.Error != nil {
		return fmt.Errorf("update appointment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, a.ID); err != nil {
			return err
		}
	}
	return nil
}

func (r *AppointmentGormRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Appointment{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete appointment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *AppointmentGormRepository) Approve(ctx context.Context, id, doctorID string, date time.Time) (*models.Appointment, error) {
	return r.transition(ctx, id,
		r.db.WithContext(ctx).Where("id = ? AND status NOT IN ?", id, models.ProcessedStatuses()),
		map[string]interface{}{
			"status":           models.StatusScheduled,
			"doctor_id":        doctorID,
			"appointment_date": date,
		})
}

func (r *AppointmentGormRepository) Reject(ctx context.Context, id string) (*models.Appointment, error) {
	return r.transition(ctx, id,
		r.db.WithContext(ctx).Where("id = ? AND status NOT IN ?", id, models.ProcessedStatuses()),
		map[string]interface{}{"status": models.StatusRejected})
}

func (r *AppointmentGormRepository) SetStatus(ctx context.Context, id string, from, to models.AppointmentStatus) (*models.Appointment, error) {
	return r.transition(ctx, id,
		r.db.WithContext(ctx).Where("id = ? AND status = ?", id, from),
		map[string]interface{}{"status": to})
}

// transition applies changes to the rows matched by guarded. Zero affected rows
// means either the appointment is gone or its status moved under us.
func (r *AppointmentGormRepository) transition(ctx context.Context, id string, guarded *gorm.DB, changes map[string]interface{}) (*models.Appointment, error) {
	res := guarded.Model(&models.Appointment{}).Updates(changes)
	if res.Error != nil {
		return nil, fmt.Errorf("update appointment status: %w", res.Error)
	}

	current, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected == 0 {
		return current, ErrStateConflict
	}
	return current, nil
}
