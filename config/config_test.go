package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateEnv points SECRETS_DIR at an empty directory and clears the
// variables these tests touch, so host configuration cannot leak in.
func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SECRETS_DIR", t.TempDir())
	for _, name := range []string{
		"SERVER_PORT", "DB_HOST", "DB_PASSWORD", "DB_SSL_MODE",
		"JWT_SECRET", "CORS_ALLOWED_ORIGINS", "ENV", "CI",
	} {
		t.Setenv(name, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	isolateEnv(t)
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, "plateful", cfg.DBName)
	assert.Equal(t, "disable", cfg.DBSSLMode)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSAllowedOrigins)
	assert.Empty(t, cfg.RedisHost)
	assert.Empty(t, cfg.S3Bucket)
}

func TestLoadConfigRequiresJWTSecret(t *testing.T) {
	isolateEnv(t)

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadConfigReadsDockerSecrets(t *testing.T) {
	isolateEnv(t)

	secretsDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(secretsDir, "jwt_secret"), []byte("from-secret\n"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(secretsDir, "db_password"), []byte("secret-pass"), 0600))
	t.Setenv("SECRETS_DIR", secretsDir)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-secret", cfg.JWTSecret)
	assert.Equal(t, "secret-pass", cfg.DBPassword)

	// An environment variable wins over the secret file.
	t.Setenv("JWT_SECRET", "from-env")
	cfg, err = LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.JWTSecret)
}

func TestLoadConfigCORSOrigins(t *testing.T) {
	isolateEnv(t)
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.example.com, http://b.example.com ,")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"http://a.example.com", "http://b.example.com"}, cfg.CORSAllowedOrigins)
}

func TestDSN(t *testing.T) {
	cfg := &Config{
		DBHost:     "db",
		DBPort:     "5433",
		DBUser:     "app",
		DBPassword: "pw",
		DBName:     "plateful",
		DBSSLMode:  "require",
	}
	assert.Equal(t, "host=db port=5433 user=app password=pw dbname=plateful sslmode=require", cfg.DSN())
}

func TestValidateConfigProduction(t *testing.T) {
	isolateEnv(t)
	t.Setenv("ENV", "production")

	err := ValidateConfig(&Config{JWTSecret: "s", DBSSLMode: "disable"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_PASSWORD")
	assert.Contains(t, err.Error(), "DB_SSL_MODE")

	err = ValidateConfig(&Config{JWTSecret: "s", DBPassword: "pw", DBSSLMode: "require"})
	assert.NoError(t, err)
}

func TestGetEnvironment(t *testing.T) {
	isolateEnv(t)

	assert.Equal(t, Development, GetEnvironment())

	t.Setenv("ENV", "test")
	assert.Equal(t, Test, GetEnvironment())
	assert.True(t, IsTest())

	t.Setenv("ENV", "production")
	assert.Equal(t, Production, GetEnvironment())
	assert.True(t, IsProduction())

	// CI wins regardless of ENV.
	t.Setenv("CI", "true")
	assert.Equal(t, CI, GetEnvironment())
}
