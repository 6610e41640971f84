package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "3306", cfg.Database.Port)
	assert.Equal(t, 10, cfg.OTPTTLMinutes)
	assert.Equal(t, 15, cfg.JWTExpirationMinutes)
	assert.Contains(t, cfg.Database.DSN, "@tcp(localhost:3306)/hospital")
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfig_Postgres(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_NAME", "ward")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, "host=db.internal port=5432 user=postgres password= dbname=ward sslmode=disable TimeZone=UTC", cfg.Database.DSN)
}

func TestLoadConfig_RejectsBadValues(t *testing.T) {
	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "oracle")
		_, err := LoadConfig()
		assert.ErrorContains(t, err, "unsupported DB_DRIVER")
	})

	t.Run("non numeric ttl", func(t *testing.T) {
		t.Setenv("OTP_TTL_MINUTES", "ten")
		_, err := LoadConfig()
		assert.ErrorContains(t, err, "invalid OTP_TTL_MINUTES")
	})
}
