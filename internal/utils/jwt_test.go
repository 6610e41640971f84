package utils

import (
	"testing"

	"hospital-app-server/internal/config"
	"hospital-app-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:                 "access-secret",
		JWTRefreshSecret:          "refresh-secret",
		JWTExpirationMinutes:      15,
		JWTRefreshExpirationHours: 24,
	}
}

func TestGenerateTokens_RoundTrip(t *testing.T) {
	cfg := testConfig()
	user := &models.User{BaseModel: models.BaseModel{ID: "user-1"}, Role: models.RoleReceptionist}

	access, refresh, err := GenerateTokens(user, cfg)
	require.NoError(t, err)

	claims, err := ValidateToken(access, cfg.JWTSecret)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.RoleReceptionist, claims.Role)

	_, err = ValidateToken(refresh, cfg.JWTSecret)
	assert.Error(t, err, "refresh tokens are signed with their own secret")

	claims, err = ValidateToken(refresh, cfg.JWTRefreshSecret)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
}

func TestGenerateTokens_Unique(t *testing.T) {
	cfg := testConfig()
	user := &models.User{BaseModel: models.BaseModel{ID: "user-1"}, Role: models.RolePatient}

	_, first, err := GenerateTokens(user, cfg)
	require.NoError(t, err)
	_, second, err := GenerateTokens(user, cfg)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestValidateToken_Expired(t *testing.T) {
	cfg := testConfig()
	cfg.JWTExpirationMinutes = -1
	user := &models.User{BaseModel: models.BaseModel{ID: "user-1"}, Role: models.RolePatient}

	access, _, err := GenerateTokens(user, cfg)
	require.NoError(t, err)

	_, err = ValidateToken(access, cfg.JWTSecret)
	assert.Error(t, err)
}
