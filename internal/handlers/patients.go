package handlers

import (
	"fmt"

	"hospital-app-server/internal/models"
	"hospital-app-server/internal/services"
	"hospital-app-server/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PatientHandler manages patient profiles.
type PatientHandler struct {
	DB     *gorm.DB
	Logger *zap.Logger
}

// NewPatientHandler creates a new PatientHandler.
func NewPatientHandler(db *gorm.DB, logger *zap.Logger) *PatientHandler {
	return &PatientHandler{DB: db, Logger: logger}
}

// CreatePatientRequest admits a patient, creating an active and approved account.
// admitDate defaults to today.
type CreatePatientRequest struct {
	AccountRequest
	Address          string `json:"address" binding:"max=40"`
	Symptoms         string `json:"symptoms" binding:"required,max=100"`
	AssignedDoctorID string `json:"assignedDoctorId"`
	AdmitDate        string `json:"admitDate"`
}

// UpdatePatientRequest is a partial edit; omitted fields are kept. An empty
// assignedDoctorId clears the assignment.
type UpdatePatientRequest struct {
	FirstName        *string `json:"firstName" binding:"omitempty,max=100"`
	LastName         *string `json:"lastName" binding:"omitempty,max=100"`
	Address          *string `json:"address" binding:"omitempty,max=40"`
	Mobile           *string `json:"mobile" binding:"omitempty,mobile"`
	Symptoms         *string `json:"symptoms" binding:"omitempty,max=100"`
	AssignedDoctorID *string `json:"assignedDoctorId"`
	AdmitDate        *string `json:"admitDate"`
	Status           *bool   `json:"status"`
}

// GetPatients lists patients, optionally filtered by ?doctorId=.
func (h *PatientHandler) GetPatients(c *gin.Context) {
	query := h.DB.Preload("User").Order("created_at desc")
	if doctorID := c.Query("doctorId"); doctorID != "" {
		query = query.Where("assigned_doctor_id = ?", doctorID)
	}

	var patients []models.Patient
	if err := query.Find(&patients).Error; err != nil {
		dbError(c, h.Logger, err, "Patients")
		return
	}
	utils.Success(c, "Patients fetched successfully", patients)
}

func (h *PatientHandler) GetPatientByID(c *gin.Context) {
	var patient models.Patient
	if err := h.DB.Preload("User").First(&patient, "id = ?", c.Param("id")).Error; err != nil {
		dbError(c, h.Logger, err, "Patient")
		return
	}
	utils.Success(c, "Patient fetched successfully", patient)
}

func (h *PatientHandler) CreatePatient(c *gin.Context) {
	var req CreatePatientRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	admitDate, err := parseDate(req.AdmitDate)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}

	patient := &models.Patient{
		Address:  req.Address,
		Mobile:   req.Mobile,
		Symptoms: req.Symptoms,
		Status:   true,
	}
	if admitDate != nil {
		patient.AdmitDate = models.Today(*admitDate)
	}
	if req.AssignedDoctorID != "" {
		if !h.doctorExists(c, req.AssignedDoctorID) {
			return
		}
		patient.AssignedDoctorID = &req.AssignedDoctorID
	}

	user, err := req.user(models.RolePatient)
	if err != nil {
		h.Logger.Error("create patient", zap.Error(err))
		utils.InternalServerError(c, "Failed to create patient")
		return
	}
	user.IsActive, user.IsApproved = true, true

	if !createWithAccount(c, h.DB, h.Logger, user, patient, func(id string) { patient.UserID = id }) {
		return
	}
	patient.User = *user
	utils.Created(c, "Patient created successfully", patient)
}

func (h *PatientHandler) UpdatePatient(c *gin.Context) {
	var req UpdatePatientRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var patient models.Patient
	if err := h.DB.First(&patient, "id = ?", c.Param("id")).Error; err != nil {
		dbError(c, h.Logger, err, "Patient")
		return
	}

	if req.Address != nil {
		patient.Address = *req.Address
	}
	if req.Mobile != nil {
		patient.Mobile = *req.Mobile
	}
	if req.Symptoms != nil {
		patient.Symptoms = *req.Symptoms
	}
	if req.Status != nil {
		patient.Status = *req.Status
	}
	if req.AdmitDate != nil {
		admitDate, err := parseDate(*req.AdmitDate)
		if err != nil {
			respondError(c, h.Logger, err)
			return
		}
		if admitDate == nil {
			respondError(c, h.Logger, fmt.Errorf("%w: admitDate cannot be cleared", services.ErrInvalidInput))
			return
		}
		patient.AdmitDate = models.Today(*admitDate)
	}
	if req.AssignedDoctorID != nil {
		if *req.AssignedDoctorID == "" {
			patient.AssignedDoctorID = nil
		} else {
			if !h.doctorExists(c, *req.AssignedDoctorID) {
				return
			}
			patient.AssignedDoctorID = req.AssignedDoctorID
		}
	}

	err := h.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(&patient).Error; err != nil {
			return err
		}
		return updateUserNames(tx, patient.UserID, req.FirstName, req.LastName, req.Mobile)
	})
	if err != nil {
		dbError(c, h.Logger, err, "Patient")
		return
	}

	if err := h.DB.Preload("User").First(&patient, "id = ?", patient.ID).Error; err != nil {
		dbError(c, h.Logger, err, "Patient")
		return
	}
	utils.Success(c, "Patient updated successfully", patient)
}

// DeletePatient removes the patient, its account and, through the foreign keys,
// its appointments.
func (h *PatientHandler) DeletePatient(c *gin.Context) {
	var patient models.Patient
	if err := h.DB.First(&patient, "id = ?", c.Param("id")).Error; err != nil {
		dbError(c, h.Logger, err, "Patient")
		return
	}

	if err := deleteAccount(h.DB.WithContext(c.Request.Context()), &patient, patient.UserID); err != nil {
		dbError(c, h.Logger, err, "Patient")
		return
	}
	utils.Success(c, "Patient deleted successfully", nil)
}

func (h *PatientHandler) doctorExists(c *gin.Context, doctorID string) bool {
	if err := h.DB.Select("id").First(&models.Doctor{}, "id = ?", doctorID).Error; err != nil {
		dbError(c, h.Logger, err, "Assigned doctor")
		return false
	}
	return true
}
