package models

import (
	"time"
)

// RefreshToken is an issued refresh JWT. Rotation revokes the presented token
// and stores its replacement.
type RefreshToken struct {
	BaseModel
	UserID    string    `gorm:"size:36;index" json:"userId"`
	Token     string    `gorm:"type:text;not null" json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
	IsRevoked bool      `gorm:"default:false" json:"isRevoked"`
}

// NewRefreshToken records token for userID, expiring ttl after now.
func NewRefreshToken(userID, token string, now time.Time, ttl time.Duration) RefreshToken {
	return RefreshToken{UserID: userID, Token: token, ExpiresAt: now.Add(ttl)}
}
