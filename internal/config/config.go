package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage drivers understood by the server.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port          string
	StorageDriver string
	DatabaseURL   string
	JWTSecret     string
	JWTIssuer     string
	JWTTTL        time.Duration
	BcryptCost    int
	CORSOrigins   []string
	LogLevel      string
	LogFormat     string
	Razorpay      Razorpay
}

// Razorpay holds the payment processor credentials and transport settings.
type Razorpay struct {
	KeyID     string
	KeySecret string
	BaseURL   string
	Timeout   time.Duration
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	cfg := Config{
		Port:          fallback(os.Getenv("PORT"), "8000"),
		StorageDriver: strings.ToLower(fallback(os.Getenv("STORAGE_DRIVER"), StoragePostgres)),
		DatabaseURL:   strings.TrimSpace(os.Getenv("DATABASE_URL")),
		JWTSecret:     strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTIssuer:     fallback(os.Getenv("JWT_ISSUER"), "payment-gateway"),
		JWTTTL:        positiveMinutes(os.Getenv("JWT_TTL_MINUTES"), 30),
		BcryptCost:    positiveInt(os.Getenv("BCRYPT_COST"), 0),
		CORSOrigins:   parseCSV(fallback(os.Getenv("CORS_ALLOWED_ORIGINS"), "*")),
		LogLevel:      fallback(os.Getenv("LOG_LEVEL"), "info"),
		LogFormat:     fallback(os.Getenv("LOG_FORMAT"), "json"),
		Razorpay: Razorpay{
			KeyID:     strings.TrimSpace(os.Getenv("RAZORPAY_KEY_ID")),
			KeySecret: strings.TrimSpace(os.Getenv("RAZORPAY_KEY_SECRET")),
			BaseURL:   strings.TrimRight(fallback(os.Getenv("RAZORPAY_BASE_URL"), "https://api.razorpay.com/v1"), "/"),
			Timeout:   time.Duration(positiveInt(os.Getenv("RAZORPAY_TIMEOUT_SECONDS"), 10)) * time.Second,
		},
	}

	switch cfg.StorageDriver {
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("DATABASE_URL is required")
		}
	case StorageMemory:
	default:
		return Config{}, fmt.Errorf("unsupported STORAGE_DRIVER %q", cfg.StorageDriver)
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}
	if cfg.Razorpay.KeyID == "" || cfg.Razorpay.KeySecret == "" {
		return Config{}, errors.New("RAZORPAY_KEY_ID and RAZORPAY_KEY_SECRET are required")
	}

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func positiveInt(value string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func positiveMinutes(value string, def int) time.Duration {
	return time.Duration(positiveInt(value, def)) * time.Minute
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
