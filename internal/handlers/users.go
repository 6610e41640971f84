package handlers

import (
	"hospital-app-server/internal/models"
	"hospital-app-server/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserHandler handles account approval by staff.
type UserHandler struct {
	DB     *gorm.DB
	Logger *zap.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(db *gorm.DB, logger *zap.Logger) *UserHandler {
	return &UserHandler{DB: db, Logger: logger}
}

// GetPendingUsers lists unapproved accounts whose role the caller may approve.
func (h *UserHandler) GetPendingUsers(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var users []models.User
	if err := h.DB.
		Where("is_approved = ? AND role IN ?", false, actor.ApprovableRoles()).
		Order("created_at asc").
		Find(&users).Error; err != nil {
		dbError(c, h.Logger, err, "Users")
		return
	}

	sanitized := make([]models.UserSanitized, len(users))
	for i, u := range users {
		sanitized[i] = u.Sanitize()
	}
	utils.Success(c, "Pending users fetched successfully", sanitized)
}

// ApproveUsersRequest selects the accounts to approve.
type ApproveUsersRequest struct {
	IDs []string `json:"ids" binding:"required,min=1,dive,required"`
}

// ApproveUsers approves accounts and marks their profiles active. Accounts the
// caller may not manage are skipped and reported back.
func (h *UserHandler) ApproveUsers(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req ApproveUsersRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var users []models.User
	if err := h.DB.Where("id IN ? AND is_approved = ?", req.IDs, false).Find(&users).Error; err != nil {
		dbError(c, h.Logger, err, "Users")
		return
	}

	approved := []string{}
	skipped := []string{}
	err := h.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		for _, u := range users {
			if !actor.CanManageAccount(u.Role) {
				skipped = append(skipped, u.ID)
				continue
			}
			if err := tx.Model(&models.User{}).Where("id = ?", u.ID).Update("is_approved", true).Error; err != nil {
				return err
			}
			if profile := emptyProfile(u.Role); profile != nil {
				if err := tx.Model(profile).Where("user_id = ?", u.ID).Update("status", true).Error; err != nil {
					return err
				}
			}
			approved = append(approved, u.ID)
		}
		return nil
	})
	if err != nil {
		dbError(c, h.Logger, err, "Users")
		return
	}

	h.Logger.Info("accounts approved",
		zap.Strings("approved", approved),
		zap.Strings("skipped", skipped),
		zap.String("actor", actor.UserID))
	utils.Success(c, "Users approved successfully", gin.H{"approved": approved, "skipped": skipped})
}

// RejectUser deletes an unapproved account together with its profile.
func (h *UserHandler) RejectUser(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var user models.User
	if err := h.DB.First(&user, "id = ? AND is_approved = ?", c.Param("id"), false).Error; err != nil {
		dbError(c, h.Logger, err, "Pending user")
		return
	}
	if !actor.CanManageAccount(user.Role) {
		utils.Forbidden(c, "You may not reject accounts with role "+string(user.Role))
		return
	}

	err := h.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if profile := emptyProfile(user.Role); profile != nil {
			if err := tx.Where("user_id = ?", user.ID).Delete(profile).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.User{}, "id = ?", user.ID).Error
	})
	if err != nil {
		dbError(c, h.Logger, err, "User")
		return
	}

	h.Logger.Info("account rejected", zap.String("user_id", user.ID), zap.String("actor", actor.UserID))
	utils.Success(c, "User rejected successfully", nil)
}

func emptyProfile(role models.Role) interface{} {
	switch role {
	case models.RoleDoctor:
		return &models.Doctor{}
	case models.RolePatient:
		return &models.Patient{}
	case models.RoleReceptionist:
		return &models.Receptionist{}
	}
	return nil
}
