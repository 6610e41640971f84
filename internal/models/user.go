package models

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role enum
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleDoctor       Role = "doctor"
	RoleReceptionist Role = "receptionist"
	RolePatient      Role = "patient"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RoleReceptionist, RolePatient:
		return true
	}
	return false
}

// User represents an account in the system. New accounts are inactive until the
// emailed OTP is confirmed and cannot log in until staff approve them.
type User struct {
	BaseModel
	Email      string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Username   string `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Password   string `gorm:"size:255;not null" json:"-"` // Never send password in JSON
	FirstName  string `gorm:"size:100" json:"firstName"`
	LastName   string `gorm:"size:100" json:"lastName"`
	Mobile     string `gorm:"size:20" json:"mobile,omitempty"`
	Role       Role   `gorm:"size:20;default:'patient'" json:"role"`
	IsActive   bool   `gorm:"default:false" json:"isActive"`
	IsApproved bool   `gorm:"default:false" json:"isApproved"`

	RefreshTokens []RefreshToken `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// UserSanitized represents the user data that is safe to send in API responses.
type UserSanitized struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Username   string    `json:"username"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	Mobile     string    `json:"mobile,omitempty"`
	Role       Role      `json:"role"`
	IsActive   bool      `json:"isActive"`
	IsApproved bool      `json:"isApproved"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// SetPassword hashes a password and sets it on the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword compares a password with the user's hashed password
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// FullName joins first and last name, skipping empty parts.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Sanitize creates a UserSanitized struct from a User model, excluding sensitive data.
func (u *User) Sanitize() UserSanitized {
	return UserSanitized{
		ID:         u.ID,
		Email:      u.Email,
		Username:   u.Username,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Mobile:     u.Mobile,
		Role:       u.Role,
		IsActive:   u.IsActive,
		IsApproved: u.IsApproved,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}
