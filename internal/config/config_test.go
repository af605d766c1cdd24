package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "GIN_MODE", "ALLOWED_ORIGIN", "DATABASE_DRIVER", "DATABASE_URL",
		"JWT_SECRET", "PASSWORD_HASH", "REDIS_URL", "LOG_LEVEL", "BCRYPT_COST",
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_RequiresJWTSecret(t *testing.T) {
	clearEnv(t)
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "jwt_secret")
}

func TestLoadConfig_DefaultsWithoutFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "s3cr3t")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)
	require.Equal(t, "5500", cfg.Server.Port)
	require.Equal(t, "*", cfg.Server.AllowedOrigin)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.NotEmpty(t, cfg.Database.URL)
	require.Equal(t, "bcrypt", cfg.Auth.PasswordHash)
	require.Equal(t, MinBcryptCost, cfg.Auth.BcryptCost)
	require.Equal(t, time.Minute, cfg.CacheTTL())
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
server:
  port: "8080"
database:
  driver: postgres
  url: postgres://blog@localhost/blog?sslmode=disable
auth:
  jwt_secret: from-file
  password_hash: argon2id
cache:
  redis_url: redis://localhost:6379/0
  ttl_seconds: 30
`)
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("PORT", "9090")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "9090", cfg.Server.Port)
	require.Equal(t, "from-env", cfg.Auth.JWTSecret)
	require.Equal(t, "postgres", cfg.Database.Driver)
	require.Equal(t, "argon2id", cfg.Auth.PasswordHash)
	require.Equal(t, 30*time.Second, cfg.CacheTTL())
	require.NotContains(t, cfg.String(), "from-env")
}

func TestLoadConfig_RejectsWeakBcryptCost(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("BCRYPT_COST", "4")

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := &Config{}
	cfg.Auth.JWTSecret = "x"
	cfg.Database.Driver = "mongodb"
	cfg.Database.URL = "mongodb://localhost"
	cfg.Auth.PasswordHash = "bcrypt"
	cfg.Auth.BcryptCost = MinBcryptCost
	require.Error(t, cfg.Validate())

	cfg.Database.Driver = "postgres"
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_BadYAML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "server: [unterminated")
	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestLoadConfig_RejectsUnknownMode(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("GIN_MODE", "production")

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "mode")
}

func TestLoadConfig_RejectsMalformedBcryptCost(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("BCRYPT_COST", "twelve")

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "BCRYPT_COST")
}
