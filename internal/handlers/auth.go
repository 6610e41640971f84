package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"hospital-app-server/internal/config"
	"hospital-app-server/internal/middleware"
	"hospital-app-server/internal/models"
	"hospital-app-server/internal/otp"
	"hospital-app-server/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const refreshCookie = "refresh_token"

// AuthHandler handles registration, activation and token issuance.
type AuthHandler struct {
	DB     *gorm.DB
	Cfg    *config.Config
	OTP    *otp.Issuer
	Logger *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config, issuer *otp.Issuer, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{DB: db, Cfg: cfg, OTP: issuer, Logger: logger}
}

// RegisterRequest signs up a doctor, receptionist or patient. The account stays
// inactive until the emailed code is confirmed and unapproved until staff approve it.
type RegisterRequest struct {
	AccountRequest
	Role             string `json:"role" binding:"required,oneof=patient doctor receptionist"`
	Address          string `json:"address" binding:"max=40"`
	Department       string `json:"department" binding:"omitempty,department"`
	Symptoms         string `json:"symptoms" binding:"required_if=Role patient,max=100"`
	AssignedDoctorID string `json:"assignedDoctorId"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	role := models.Role(req.Role)
	user, err := req.user(role)
	if err != nil {
		h.Logger.Error("register", zap.Error(err))
		utils.InternalServerError(c, "Failed to create account")
		return
	}

	var profile interface{}
	var setOwner func(string)
	switch role {
	case models.RoleDoctor:
		department := models.Department(req.Department)
		if department == "" {
			department = models.DepartmentCardiologist
		}
		doctor := &models.Doctor{Address: req.Address, Mobile: req.Mobile, Department: department}
		profile, setOwner = doctor, func(id string) { doctor.UserID = id }
	case models.RoleReceptionist:
		receptionist := &models.Receptionist{Address: req.Address, Mobile: req.Mobile}
		profile, setOwner = receptionist, func(id string) { receptionist.UserID = id }
	case models.RolePatient:
		patient := &models.Patient{Address: req.Address, Mobile: req.Mobile, Symptoms: req.Symptoms}
		if req.AssignedDoctorID != "" {
			if err := h.DB.Select("id").First(&models.Doctor{}, "id = ?", req.AssignedDoctorID).Error; err != nil {
				dbError(c, h.Logger, err, "Assigned doctor")
				return
			}
			patient.AssignedDoctorID = &req.AssignedDoctorID
		}
		profile, setOwner = patient, func(id string) { patient.UserID = id }
	}

	if !createWithAccount(c, h.DB, h.Logger, user, profile, setOwner) {
		return
	}

	if err := h.OTP.Issue(c.Request.Context(), user.Email); err != nil {
		h.Logger.Error("issue activation code", zap.String("user_id", user.ID), zap.Error(err))
		utils.InternalServerError(c, "Account created but the activation code could not be sent; request a new one")
		return
	}

	h.Logger.Info("account registered", zap.String("user_id", user.ID), zap.String("role", string(role)))
	utils.Created(c, "Registration successful. Check your email for the activation code.", user.Sanitize())
}

// ActivateRequest confirms an emailed activation code.
type ActivateRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,len=5,numeric"`
}

func (h *AuthHandler) Activate(c *gin.Context) {
	var req ActivateRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	email := strings.ToLower(req.Email)

	var user models.User
	if err := h.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.BadRequest(c, otp.ErrInvalidCode.Error())
			return
		}
		dbError(c, h.Logger, err, "User")
		return
	}
	if user.IsActive {
		utils.Success(c, "Account is already active", user.Sanitize())
		return
	}

	if err := h.OTP.Verify(c.Request.Context(), email, req.OTP); err != nil {
		if errors.Is(err, otp.ErrInvalidCode) {
			utils.BadRequest(c, err.Error())
			return
		}
		h.Logger.Error("verify activation code", zap.String("user_id", user.ID), zap.Error(err))
		utils.InternalServerError(c, "Failed to verify activation code")
		return
	}

	if err := h.DB.Model(&user).Update("is_active", true).Error; err != nil {
		dbError(c, h.Logger, err, "User")
		return
	}
	user.IsActive = true

	message := "Account activated. You can log in once staff approve it."
	if user.IsApproved {
		message = "Account activated"
	}
	utils.Success(c, message, user.Sanitize())
}

// ResendOTPRequest asks for a fresh activation code.
type ResendOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResendOTP always answers the same way so it cannot be used to discover accounts.
func (h *AuthHandler) ResendOTP(c *gin.Context) {
	var req ResendOTPRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	email := strings.ToLower(req.Email)

	var user models.User
	err := h.DB.Where("email = ? AND is_active = ?", email, false).First(&user).Error
	switch {
	case err == nil:
		if err := h.OTP.Issue(c.Request.Context(), email); err != nil {
			h.Logger.Error("reissue activation code", zap.String("user_id", user.ID), zap.Error(err))
			utils.InternalServerError(c, "Failed to send activation code")
			return
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		dbError(c, h.Logger, err, "User")
		return
	}
	utils.Success(c, "If the account exists and is not active, a new code has been sent.", nil)
}

// LoginRequest represents the request body for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents the response body for successful login.
type LoginResponse struct {
	AccessToken  string               `json:"accessToken"`
	RefreshToken string               `json:"refreshToken"`
	User         models.UserSanitized `json:"user"`
}

// Login issues tokens to active, approved accounts.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var user models.User
	if err := h.DB.Where("email = ?", strings.ToLower(req.Email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Unauthorized(c, "Invalid email or password")
			return
		}
		dbError(c, h.Logger, err, "User")
		return
	}

	if !user.CheckPassword(req.Password) {
		utils.Unauthorized(c, "Invalid email or password")
		return
	}
	if !user.IsActive {
		utils.Unauthorized(c, "Account is not activated; confirm the emailed code first")
		return
	}
	if !user.IsApproved {
		utils.Forbidden(c, "Account is awaiting approval")
		return
	}

	accessToken, refreshToken, err := h.issueTokens(h.DB, &user)
	if err != nil {
		h.Logger.Error("issue tokens", zap.String("user_id", user.ID), zap.Error(err))
		utils.InternalServerError(c, "Failed to generate tokens")
		return
	}
	h.setRefreshCookie(c, refreshToken, h.Cfg.JWTRefreshExpirationHours*60*60)

	utils.Success(c, "Login successful", LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user.Sanitize(),
	})
}

// issueTokens signs a token pair and stores the refresh token.
func (h *AuthHandler) issueTokens(db *gorm.DB, user *models.User) (string, string, error) {
	accessToken, refreshToken, err := utils.GenerateTokens(user, h.Cfg)
	if err != nil {
		return "", "", err
	}
	stored := models.NewRefreshToken(user.ID, refreshToken, time.Now(),
		time.Duration(h.Cfg.JWTRefreshExpirationHours)*time.Hour)
	if err := db.Create(&stored).Error; err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(refreshCookie, value, maxAge, "/", "", h.Cfg.IsProduction(), true)
}

// RefreshTokenRequest represents the request body for token refresh.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// RefreshTokenResponse represents the response body for successful token refresh.
type RefreshTokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RefreshToken rotates a refresh token: the presented one is revoked and a new
// pair is issued. The token is read from the cookie first, then the body.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	presented, err := c.Cookie(refreshCookie)
	if err != nil || presented == "" {
		var req RefreshTokenRequest
		if !utils.BindAndValidate(c, &req) {
			return
		}
		presented = req.RefreshToken
	}

	claims, err := utils.ValidateToken(presented, h.Cfg.JWTRefreshSecret)
	if err != nil {
		utils.Unauthorized(c, "Invalid refresh token")
		return
	}

	var accessToken, refreshToken string
	err = h.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.RefreshToken{}).
			Where("token = ? AND user_id = ? AND is_revoked = ? AND expires_at > ?", presented, claims.UserID, false, time.Now()).
			Update("is_revoked", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		var user models.User
		if err := tx.First(&user, "id = ?", claims.UserID).Error; err != nil {
			return err
		}
		if !user.IsActive || !user.IsApproved {
			return gorm.ErrRecordNotFound
		}

		var err error
		accessToken, refreshToken, err = h.issueTokens(tx, &user)
		return err
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Unauthorized(c, "Refresh token not found, expired, or revoked")
			return
		}
		h.Logger.Error("rotate refresh token", zap.String("user_id", claims.UserID), zap.Error(err))
		utils.InternalServerError(c, "Failed to refresh token")
		return
	}

	h.setRefreshCookie(c, refreshToken, h.Cfg.JWTRefreshExpirationHours*60*60)
	utils.Success(c, "Access token refreshed successfully", RefreshTokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}

// LogoutRequest represents the request body for user logout.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// Logout revokes the refresh token. Unknown or already revoked tokens succeed.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req LogoutRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if err := h.DB.Model(&models.RefreshToken{}).
		Where("token = ? AND is_revoked = ?", req.RefreshToken, false).
		Updates(map[string]interface{}{"is_revoked": true, "expires_at": time.Now()}).Error; err != nil {
		dbError(c, h.Logger, err, "Refresh token")
		return
	}

	h.setRefreshCookie(c, "", -1)
	utils.Success(c, "Logout successful. Refresh token has been invalidated.", nil)
}

// ProfileResponse is the caller's account with its role profile, if any.
type ProfileResponse struct {
	User    models.UserSanitized `json:"user"`
	Profile interface{}          `json:"profile,omitempty"`
}

// GetProfile returns the caller's account and role profile.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		dbError(c, h.Logger, err, "User profile")
		return
	}

	profile, err := h.loadProfile(&user)
	if err != nil {
		dbError(c, h.Logger, err, "User profile")
		return
	}
	utils.Success(c, "Profile fetched successfully", ProfileResponse{User: user.Sanitize(), Profile: profile})
}

func (h *AuthHandler) loadProfile(user *models.User) (interface{}, error) {
	profile := emptyProfile(user.Role)
	if profile == nil {
		return nil, nil
	}
	err := h.DB.Where("user_id = ?", user.ID).Take(profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return profile, err
}

// UpdateProfileRequest edits the caller's own names, mobile and address.
type UpdateProfileRequest struct {
	FirstName *string `json:"firstName" binding:"omitempty,max=100"`
	LastName  *string `json:"lastName" binding:"omitempty,max=100"`
	Mobile    *string `json:"mobile" binding:"omitempty,mobile"`
	Address   *string `json:"address" binding:"omitempty,max=40"`
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	var req UpdateProfileRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		dbError(c, h.Logger, err, "User")
		return
	}

	err := h.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := updateUserNames(tx, user.ID, req.FirstName, req.LastName, req.Mobile); err != nil {
			return err
		}
		profileChanges := map[string]interface{}{}
		if req.Mobile != nil {
			profileChanges["mobile"] = *req.Mobile
		}
		if req.Address != nil {
			profileChanges["address"] = *req.Address
		}
		if len(profileChanges) == 0 {
			return nil
		}
		profile, err := h.loadProfile(&user)
		if err != nil || profile == nil {
			return err
		}
		return tx.Model(profile).Updates(profileChanges).Error
	})
	if err != nil {
		dbError(c, h.Logger, err, "User")
		return
	}

	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		dbError(c, h.Logger, err, "User")
		return
	}
	utils.Success(c, "Profile updated successfully", user.Sanitize())
}
