package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noDotenv(t *testing.T) string {
	return filepath.Join(t.TempDir(), "none.env")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/shop")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load(noDotenv(t))
	require.NoError(t, err)

	assert.Equal(t, "storefront", cfg.ServiceName)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 8760*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "auth_token", cfg.CookieName)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, int64(10<<20), cfg.UploadMaxBytes)
	assert.Equal(t, []string{"http://127.0.0.1:5500", "http://localhost:5500"}, cfg.CORSOrigins)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.False(t, cfg.AdminSeedEnabled())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", ":memory:")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("TOKEN_TTL", "24h")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("ADMIN_EMAIL", "root@shop.test")
	t.Setenv("ADMIN_PASSWORD", "rootroot")

	cfg, err := Load(noDotenv(t))
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.AdminSeedEnabled())
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")

	_, err := Load(noDotenv(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	base := Config{
		DBDriver: "postgres", DatabaseURL: "x", JWTSecret: "y",
		TokenTTL: time.Hour, UploadMaxBytes: 1, ServerPort: 8080,
	}
	require.NoError(t, base.Validate())

	bad := base
	bad.DBDriver = "mysql"
	require.Error(t, bad.Validate())

	bad = base
	bad.TokenTTL = 0
	require.Error(t, bad.Validate())

	bad = base
	bad.ServerPort = 70000
	require.Error(t, bad.Validate())
}
