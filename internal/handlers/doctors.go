package handlers

import (
	"hospital-app-server/internal/models"
	"hospital-app-server/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DoctorHandler manages doctor profiles.
type DoctorHandler struct {
	DB     *gorm.DB
	Logger *zap.Logger
}

// NewDoctorHandler creates a new DoctorHandler.
func NewDoctorHandler(db *gorm.DB, logger *zap.Logger) *DoctorHandler {
	return &DoctorHandler{DB: db, Logger: logger}
}

// CreateDoctorRequest creates a doctor account that is active and approved.
type CreateDoctorRequest struct {
	AccountRequest
	Address    string `json:"address" binding:"max=40"`
	Department string `json:"department" binding:"required,department"`
}

// UpdateDoctorRequest is a partial edit; omitted fields are kept.
type UpdateDoctorRequest struct {
	FirstName  *string `json:"firstName" binding:"omitempty,max=100"`
	LastName   *string `json:"lastName" binding:"omitempty,max=100"`
	Address    *string `json:"address" binding:"omitempty,max=40"`
	Mobile     *string `json:"mobile" binding:"omitempty,mobile"`
	Department *string `json:"department" binding:"omitempty,department"`
	Status     *bool   `json:"status"`
}

// GetDoctors lists doctors, optionally filtered by ?department=.
func (h *DoctorHandler) GetDoctors(c *gin.Context) {
	query := h.DB.Preload("User").Order("created_at desc")
	if department := c.Query("department"); department != "" {
		query = query.Where("department = ?", department)
	}

	var doctors []models.Doctor
	if err := query.Find(&doctors).Error; err != nil {
		dbError(c, h.Logger, err, "Doctors")
		return
	}
	utils.Success(c, "Doctors fetched successfully", doctors)
}

// GetDepartments lists the departments a doctor can belong to.
func (h *DoctorHandler) GetDepartments(c *gin.Context) {
	utils.Success(c, "Departments fetched successfully", models.Departments)
}

func (h *DoctorHandler) GetDoctorByID(c *gin.Context) {
	var doctor models.Doctor
	if err := h.DB.Preload("User").First(&doctor, "id = ?", c.Param("id")).Error; err != nil {
		dbError(c, h.Logger, err, "Doctor")
		return
	}
	utils.Success(c, "Doctor fetched successfully", doctor)
}

func (h *DoctorHandler) CreateDoctor(c *gin.Context) {
	var req CreateDoctorRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	user, err := req.user(models.RoleDoctor)
	if err != nil {
		h.Logger.Error("create doctor", zap.Error(err))
		utils.InternalServerError(c, "Failed to create doctor")
		return
	}
	user.IsActive, user.IsApproved = true, true

	doctor := &models.Doctor{
		Address:    req.Address,
		Mobile:     req.Mobile,
		Department: models.Department(req.Department),
		Status:     true,
	}
	if !createWithAccount(c, h.DB, h.Logger, user, doctor, func(id string) { doctor.UserID = id }) {
		return
	}
	doctor.User = *user
	utils.Created(c, "Doctor created successfully", doctor)
}

func (h *DoctorHandler) UpdateDoctor(c *gin.Context) {
	var req UpdateDoctorRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var doctor models.Doctor
	if err := h.DB.First(&doctor, "id = ?", c.Param("id")).Error; err != nil {
		dbError(c, h.Logger, err, "Doctor")
		return
	}

	if req.Address != nil {
		doctor.Address = *req.Address
	}
	if req.Mobile != nil {
		doctor.Mobile = *req.Mobile
	}
	if req.Department != nil {
		doctor.Department = models.Department(*req.Department)
	}
	if req.Status != nil {
		doctor.Status = *req.Status
	}

	err := h.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(&doctor).Error; err != nil {
			return err
		}
		return updateUserNames(tx, doctor.UserID, req.FirstName, req.LastName, req.Mobile)
	})
	if err != nil {
		dbError(c, h.Logger, err, "Doctor")
		return
	}

	if err := h.DB.Preload("User").First(&doctor, "id = ?", doctor.ID).Error; err != nil {
		dbError(c, h.Logger, err, "Doctor")
		return
	}
	utils.Success(c, "Doctor updated successfully", doctor)
}

// DeleteDoctor removes the doctor and its account. Patients assigned to the
// doctor lose the assignment.
func (h *DoctorHandler) DeleteDoctor(c *gin.Context) {
	var doctor models.Doctor
	if err := h.DB.First(&doctor, "id = ?", c.Param("id")).Error; err != nil {
		dbError(c, h.Logger, err, "Doctor")
		return
	}

	if err := deleteAccount(h.DB.WithContext(c.Request.Context()), &doctor, doctor.UserID); err != nil {
		dbError(c, h.Logger, err, "Doctor")
		return
	}
	utils.Success(c, "Doctor deleted successfully", nil)
}
