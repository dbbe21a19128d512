package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort string
	ServerHost string

	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis configuration. Empty RedisHost disables the rate limiter.
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// JWT configuration
	JWTSecret string

	// CORS
	CORSAllowedOrigins []string

	// S3 image storage. Empty bucket disables the upload path.
	S3Bucket  string
	AWSRegion string
}

// LoadConfig creates a new Config instance. Every value comes from an
// environment variable first, then a Docker secret of the lower-cased name,
// then the development default.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerPort:    lookup("SERVER_PORT", "8080"),
		ServerHost:    lookup("SERVER_HOST", "0.0.0.0"),
		DBHost:        lookup("DB_HOST", "localhost"),
		DBPort:        lookup("DB_PORT", "5432"),
		DBUser:        lookup("DB_USER", "postgres"),
		DBPassword:    lookup("DB_PASSWORD", ""),
		DBName:        lookup("DB_NAME", "plateful"),
		DBSSLMode:     lookup("DB_SSL_MODE", "disable"),
		RedisHost:     lookup("REDIS_HOST", ""),
		RedisPort:     lookup("REDIS_PORT", "6379"),
		RedisPassword: lookup("REDIS_PASSWORD", ""),
		RedisURL:      lookup("REDIS_URL", ""),
		JWTSecret:     lookup("JWT_SECRET", ""),
		S3Bucket:      lookup("S3_BUCKET_NAME", ""),
		AWSRegion:     lookup("AWS_REGION", ""),
	}

	origins := lookup("CORS_ALLOWED_ORIGINS", "http://localhost:5173")
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// DSN renders the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// lookup resolves a configuration value: env var, then Docker secret, then
// the provided default.
func lookup(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	if v := readSecret(strings.ToLower(name)); v != "" {
		return v
	}
	return fallback
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
