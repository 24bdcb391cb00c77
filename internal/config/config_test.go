package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_EXPIRY", "")
	t.Setenv("RATE_LIMIT_MAX", "")
	t.Setenv("STORE_DRIVER", "")

	cfg := Load()
	assert.Equal(t, 7*24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 100, cfg.RateLimitMax)
	assert.Equal(t, "postgres", cfg.StoreDriver)
	assert.Equal(t, "5000", cfg.Port)
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("JWT_EXPIRY", "soon")
	t.Setenv("RATE_LIMIT_MAX", "-4")

	cfg := Load()
	assert.Equal(t, 7*24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 100, cfg.RateLimitMax)
}

func TestDSNPrefersDatabaseURL(t *testing.T) {
	cfg := &Config{DatabaseURL: "postgres://u:p@db:5432/x", DBHost: "ignored"}
	assert.Equal(t, "postgres://u:p@db:5432/x", cfg.DSN())

	cfg = &Config{DBHost: "h", DBPort: "1", DBUser: "u", DBPassword: "p", DBName: "n", DBSSLMode: "disable"}
	assert.Contains(t, cfg.DSN(), "host=h")
	assert.Contains(t, cfg.DSN(), "dbname=n")
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("CONFESSION_TEST_KEY=from-file\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("CONFESSION_TEST_KEY") })

	LoadEnvFile(path)
	assert.Equal(t, "from-file", os.Getenv("CONFESSION_TEST_KEY"))

	// missing files are ignored
	LoadEnvFile(filepath.Join(t.TempDir(), "nope.env"))
}
