package repository

import (
	"context"
	"errors"
	"fmt"

	"hospital-app-server/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DischargeGormRepository is the SQL-backed DischargeRepository.
type DischargeGormRepository struct {
	db *gorm.DB
}

// NewDischargeRepository creates a DischargeGormRepository.
func NewDischargeRepository(db *gorm.DB) *DischargeGormRepository {
	return &DischargeGormRepository{db: db}
}

func (r *DischargeGormRepository) CreateWithPurge(ctx context.Context, d *models.DischargeDetails) (int64, error) {
	var purged int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the completed appointments so a concurrent discharge or status
		// change cannot slip between the check and the delete.
		var completed []models.Appointment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("patient_id = ? AND status = ?", d.PatientID, models.StatusCompleted).
			Find(&completed).Error; err != nil {
			return fmt.Errorf("lock completed appointments: %w", err)
		}
		if len(completed) == 0 {
			return ErrNoCompletedAppointments
		}

		if err := tx.Create(d).Error; err != nil {
			return fmt.Errorf("create discharge: %w", err)
		}

		ids := make([]string, len(completed))
		for i, a := range completed {
			ids[i] = a.ID
		}
		res := tx.Where("id IN ?", ids).Delete(&models.Appointment{})
		if res.Error != nil {
			return fmt.Errorf("purge completed appointments: %w", res.Error)
		}
		purged = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return purged, nil
}

func (r *DischargeGormRepository) FindByID(ctx context.Context, id string) (*models.DischargeDetails, error) {
	var d models.DischargeDetails
	if err := r.db.WithContext(ctx).First(&d, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find discharge: %w", err)
	}
	return &d, nil
}

func (r *DischargeGormRepository) List(ctx context.Context, filter DischargeFilter) ([]models.DischargeDetails, error) {
	query := r.db.WithContext(ctx).Order("created_at desc")
	if filter.PatientID != "" {
		query = query.Where("patient_id = ?", filter.PatientID)
	}
	if filter.AssignedDoctorName != "" {
		query = query.Where("assigned_doctor_name = ?", filter.AssignedDoctorName)
	}

	var discharges []models.DischargeDetails
	if err := query.Find(&discharges).Error; err != nil {
		return nil, fmt.Errorf("list discharges: %w", err)
	}
	return discharges, nil
}

func (r *DischargeGormRepository) LatestForPatient(ctx context.Context, patientID string) (*models.DischargeDetails, error) {
	var d models.DischargeDetails
	err := r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("created_at desc").
		Take(&d).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("latest discharge: %w", err)
	}
	return &d, nil
}

func (r *DischargeGormRepository) Update(ctx context.Context, d *models.DischargeDetails) error {
	if err := r.db.WithContext(ctx).Save(d).Error; err != nil {
		return fmt.Errorf("update discharge: %w", err)
	}
	return nil
}

func (r *DischargeGormRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.DischargeDetails{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete discharge: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
