package repository

import (
	"context"
	"errors"
	"fmt"

	"hospital-app-server/internal/models"

	"gorm.io/gorm"
)

// DirectoryGormRepository is the SQL-backed DirectoryRepository.
type DirectoryGormRepository struct {
	db *gorm.DB
}

// NewDirectoryRepository creates a DirectoryGormRepository.
func NewDirectoryRepository(db *gorm.DB) *DirectoryGormRepository {
	return &DirectoryGormRepository{db: db}
}

func (r *DirectoryGormRepository) FindDoctor(ctx context.Context, id string) (*models.Doctor, error) {
	var d models.Doctor
	if err := r.db.WithContext(ctx).Preload("User").First(&d, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "find doctor")
	}
	return &d, nil
}

func (r *DirectoryGormRepository) FindPatient(ctx context.Context, id string) (*models.Patient, error) {
	var p models.Patient
	if err := r.db.WithContext(ctx).Preload("User").First(&p, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "find patient")
	}
	return &p, nil
}

func (r *DirectoryGormRepository) ProfileID(ctx context.Context, role models.Role, userID string) (string, error) {
	var model interface{}
	switch role {
	case models.RoleDoctor:
		model = &models.Doctor{}
	case models.RolePatient:
		model = &models.Patient{}
	case models.RoleReceptionist:
		model = &models.Receptionist{}
	default:
		return "", ErrNotFound
	}

	var ids []string
	if err := r.db.WithContext(ctx).Model(model).Where("user_id = ?", userID).Limit(1).Pluck("id", &ids).Error; err != nil {
		return "", fmt.Errorf("resolve %s profile: %w", role, err)
	}
	if len(ids) == 0 {
		return "", ErrNotFound
	}
	return ids[0], nil
}

func notFoundOr(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
