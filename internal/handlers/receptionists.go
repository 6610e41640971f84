package handlers

import (
	"hospital-app-server/internal/models"
	"hospital-app-server/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReceptionistHandler manages receptionist profiles.
type ReceptionistHandler struct {
	DB     *gorm.DB
	Logger *zap.Logger
}

// NewReceptionistHandler creates a new ReceptionistHandler.
func NewReceptionistHandler(db *gorm.DB, logger *zap.Logger) *ReceptionistHandler {
	return &ReceptionistHandler{DB: db, Logger: logger}
}

type CreateReceptionistRequest struct {
	AccountRequest
	Address string `json:"address" binding:"max=40"`
}

type UpdateReceptionistRequest struct {
	FirstName *string `json:"firstName" binding:"omitempty,max=100"`
	LastName  *string `json:"lastName" binding:"omitempty,max=100"`
	Address   *string `json:"address" binding:"omitempty,max=40"`
	Mobile    *string `json:"mobile" binding:"omitempty,mobile"`
	Status    *bool   `json:"status"`
}

func (h *ReceptionistHandler) GetReceptionists(c *gin.Context) {
	var receptionists []models.Receptionist
	if err := h.DB.Preload("User").Order("created_at desc").Find(&receptionists).Error; err != nil {
		dbError(c, h.Logger, err, "Receptionists")
		return
	}
	utils.Success(c, "Receptionists fetched successfully", receptionists)
}

func (h *ReceptionistHandler) GetReceptionistByID(c *gin.Context) {
	var receptionist models.Receptionist
	if err := h.DB.Preload("User").First(&receptionist, "id = ?", c.Param("id")).Error; err != nil {
		dbError(c, h.Logger, err, "Receptionist")
		return
	}
	utils.Success(c, "Receptionist fetched successfully", receptionist)
}

func (h *ReceptionistHandler) CreateReceptionist(c *gin.Context) {
	var req CreateReceptionistRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	user, err := req.user(models.RoleReceptionist)
	if err != nil {
		h.Logger.Error("create receptionist", zap.Error(err))
		utils.InternalServerError(c, "Failed to create receptionist")
		return
	}
	user.IsActive, user.IsApproved = true, true

	receptionist := &models.Receptionist{Address: req.Address, Mobile: req.Mobile, Status: true}
	if !createWithAccount(c, h.DB, h.Logger, user, receptionist, func(id string) { receptionist.UserID = id }) {
		return
	}
	receptionist.User = *user
	utils.Created(c, "Receptionist created successfully", receptionist)
}

func (h *ReceptionistHandler) UpdateReceptionist(c *gin.Context) {
	var req UpdateReceptionistRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var receptionist models.Receptionist
	if err := h.DB.First(&receptionist, "id = ?", c.Param("id")).Error; err != nil {
		dbError(c, h.Logger, err, "Receptionist")
		return
	}
	if req.Address != nil {
		receptionist.Address = *req.Address
	}
	if req.Mobile != nil {
		receptionist.Mobile = *req.Mobile
	}
	if req.Status != nil {
		receptionist.Status = *req.Status
	}

	err := h.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(&receptionist).Error; err != nil {
			return err
		}
		return updateUserNames(tx, receptionist.UserID, req.FirstName, req.LastName, req.Mobile)
	})
	if err != nil {
		dbError(c, h.Logger, err, "Receptionist")
		return
	}

	if err := h.DB.Preload("User").First(&receptionist, "id = ?", receptionist.ID).Error; err != nil {
		dbError(c, h.Logger, err, "Receptionist")
		return
	}
	utils.Success(c, "Receptionist updated successfully", receptionist)
}

func (h *ReceptionistHandler) DeleteReceptionist(c *gin.Context) {
	var receptionist models.Receptionist
	if err := h.DB.First(&receptionist, "id = ?", c.Param("id")).Error; err != nil {
		dbError(c, h.Logger, err, "Receptionist")
		return
	}
	if err := deleteAccount(h.DB.WithContext(c.Request.Context()), &receptionist, receptionist.UserID); err != nil {
		dbError(c, h.Logger, err, "Receptionist")
		return
	}
	utils.Success(c, "Receptionist deleted successfully", nil)
}
