package handlers

import (
	"errors"
	"fmt"
	"strings"

	"hospital-app-server/internal/models"
	"hospital-app-server/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var errAccountTaken = errors.New("email or username is already in use")

// AccountRequest holds the login fields shared by every account-creating body.
type AccountRequest struct {
	FirstName string `json:"firstName" binding:"required,max=100"`
	LastName  string `json:"lastName" binding:"required,max=100"`
	Username  string `json:"username" binding:"required,max=150"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	Mobile    string `json:"mobile" binding:"omitempty,mobile"`
}

func (r AccountRequest) user(role models.Role) (*models.User, error) {
	user := &models.User{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Username:  r.Username,
		Email:     strings.ToLower(r.Email),
		Mobile:    r.Mobile,
		Role:      role,
	}
	if err := user.SetPassword(r.Password); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return user, nil
}

// createAccount inserts user and its role profile in one transaction. setOwner
// receives the new user id before the profile is written.
func createAccount(db *gorm.DB, user *models.User, profile interface{}, setOwner func(userID string)) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&models.User{}).
			Where("email = ? OR username = ?", user.Email, user.Username).
			Count(&taken).Error; err != nil {
			return fmt.Errorf("check account: %w", err)
		}
		if taken > 0 {
			return errAccountTaken
		}

		if err := tx.Omit(clause.Associations).Create(user).Error; err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		if profile == nil {
			return nil
		}
		setOwner(user.ID)
		if err := tx.Omit(clause.Associations).Create(profile).Error; err != nil {
			return fmt.Errorf("create %s profile: %w", user.Role, err)
		}
		return nil
	})
}

// createWithAccount runs createAccount and writes the error response itself,
// returning false when it did.
func createWithAccount(c *gin.Context, db *gorm.DB, logger *zap.Logger, user *models.User, profile interface{}, setOwner func(string)) bool {
	err := createAccount(db.WithContext(c.Request.Context()), user, profile, setOwner)
	if err == nil {
		return true
	}
	if errors.Is(err, errAccountTaken) {
		utils.Conflict(c, err.Error())
		return false
	}
	logger.Error("create account", zap.String("role", string(user.Role)), zap.Error(err))
	utils.InternalServerError(c, "Failed to create account")
	return false
}

// deleteAccount removes a profile row and the user owning it.
func deleteAccount(db *gorm.DB, profile interface{}, userID string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(profile).Error; err != nil {
			return fmt.Errorf("delete profile: %w", err)
		}
		if err := tx.Delete(&models.User{}, "id = ?", userID).Error; err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return nil
	})
}

// updateUserNames applies optional name and mobile edits to the profile's user.
func updateUserNames(tx *gorm.DB, userID string, firstName, lastName, mobile *string) error {
	changes := map[string]interface{}{}
	if firstName != nil {
		changes["first_name"] = *firstName
	}
	if lastName != nil {
		changes["last_name"] = *lastName
	}
	if mobile != nil {
		changes["mobile"] = *mobile
	}
	if len(changes) == 0 {
		return nil
	}
	return tx.Model(&models.User{}).Where("id = ?", userID).Updates(changes).Error
}
