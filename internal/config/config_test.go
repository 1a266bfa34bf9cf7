package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/payments")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("RAZORPAY_KEY_ID", "rzp_test_key")
	t.Setenv("RAZORPAY_KEY_SECRET", "rzp_test_secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "")
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("JWT_TTL_MINUTES", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	t.Setenv("RAZORPAY_BASE_URL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, ":8000", cfg.HTTPAddress())
	assert.Equal(t, StoragePostgres, cfg.StorageDriver)
	assert.Equal(t, 30*time.Minute, cfg.JWTTTL)
	assert.Equal(t, "payment-gateway", cfg.JWTIssuer)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, "https://api.razorpay.com/v1", cfg.Razorpay.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Razorpay.Timeout)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_TTL_MINUTES", "5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("RAZORPAY_BASE_URL", "http://localhost:1234/v1/")
	t.Setenv("BCRYPT_COST", "12")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddress())
	assert.Equal(t, 5*time.Minute, cfg.JWTTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, "http://localhost:1234/v1", cfg.Razorpay.BaseURL)
	assert.Equal(t, 12, cfg.BcryptCost)
}

func TestLoad_InvalidTTLFallsBack(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_TTL_MINUTES", "-3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, cfg.JWTTTL)
}

func TestLoad_MissingSecret(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_SECRET", "  ")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	setRequired(t)
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoad_MemoryDriverSkipsDatabaseURL(t *testing.T) {
	setRequired(t)
	t.Setenv("STORAGE_DRIVER", "Memory")
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorageMemory, cfg.StorageDriver)
}

func TestLoad_UnknownDriver(t *testing.T) {
	setRequired(t)
	t.Setenv("STORAGE_DRIVER", "mongo")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_MissingProcessorCredentials(t *testing.T) {
	setRequired(t)
	t.Setenv("RAZORPAY_KEY_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RAZORPAY")
}
