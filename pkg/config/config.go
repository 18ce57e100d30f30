package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration
type Config struct {
	Environment        string
	ServerPort         int
	LogLevel           string
	MongoURI           string
	MasterDB           string
	RedisURL           string
	JWTSecret          string
	JWTIssuer          string
	JWTExpire          time.Duration
	BcryptCost         int
	LoginMaxAttempts   int
	LoginAttemptWindow time.Duration
	CORSAllowedOrigins []string
	OTLPEndpoint       string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	port, err := strconv.Atoi(getEnv("SERVER_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	jwtExpireMinutes, err := strconv.Atoi(getEnv("JWT_EXPIRE_MINUTES", "1440"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRE_MINUTES: %w", err)
	}

	bcryptCost, err := strconv.Atoi(getEnv("BCRYPT_COST", "12"))
	if err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %w", err)
	}

	loginMaxAttempts, err := strconv.Atoi(getEnv("LOGIN_MAX_ATTEMPTS", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOGIN_MAX_ATTEMPTS: %w", err)
	}

	loginWindowMinutes, err := strconv.Atoi(getEnv("LOGIN_ATTEMPT_WINDOW_MINUTES", "15"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOGIN_ATTEMPT_WINDOW_MINUTES: %w", err)
	}

	return &Config{
		Environment:        getEnv("ENVIRONMENT", "development"),
		ServerPort:         port,
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		MongoURI:           getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MasterDB:           getEnv("MASTER_DB", "master_db"),
		RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		JWTIssuer:          getEnv("JWT_ISSUER", "orgvault"),
		JWTExpire:          time.Duration(jwtExpireMinutes) * time.Minute,
		BcryptCost:         bcryptCost,
		LoginMaxAttempts:   loginMaxAttempts,
		LoginAttemptWindow: time.Duration(loginWindowMinutes) * time.Minute,
		CORSAllowedOrigins: parseCSVEnv("CORS_ALLOWED_ORIGINS", []string{
			"http://localhost:5173",
			"http://localhost:3000",
		}),
		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseCSVEnv(key string, fallback []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
