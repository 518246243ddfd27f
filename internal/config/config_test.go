package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.API.Port)
	assert.Equal(t, ProviderCloudinary, cfg.Media.Provider)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.TokenTTL)
	assert.True(t, cfg.Auth.AutoProvision)
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.App.IsDevelopment())
	assert.Equal(t, 5, cfg.Worker.Concurrency)
	assert.Equal(t, 9091, cfg.Worker.MetricsPort)
	require.NoError(t, cfg.ValidateAPI())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "7001")
	t.Setenv("NODE_ENV", "development")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/vault?sslmode=disable")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("ADMIN_AUTO_PROVISION", "false")
	t.Setenv("CLOUDINARY_CLOUD_NAME", "demo")
	t.Setenv("CLOUDINARY_API_KEY", "key")
	t.Setenv("CLOUDINARY_API_SECRET", "shh")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7001, cfg.API.Port)
	assert.True(t, cfg.App.IsDevelopment())
	assert.Equal(t, "postgres://u:p@db:5432/vault?sslmode=disable", cfg.Database.DSN())
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, "cache:6379", cfg.Redis.Addr())
	assert.False(t, cfg.Auth.AutoProvision)
	assert.True(t, cfg.Media.Cloudinary.Configured())
}

func TestLoad_MinIORequiresCredentials(t *testing.T) {
	t.Setenv("MEDIA_PROVIDER", "minio")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "minio endpoint")
}

func TestLoad_UnknownProvider(t *testing.T) {
	t.Setenv("MEDIA_PROVIDER", "ftp")

	_, err := Load()
	require.Error(t, err)
}

func TestValidateAPI_RequiresSecret(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	cfg.Auth.JWTSecret = ""
	require.Error(t, cfg.ValidateAPI())
}
