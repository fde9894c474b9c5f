package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("MOVIE_API_USERNAME", "")
	t.Setenv("JWT_SECRET", " secret ")

	cfg := LoadConfig()

	assert.Equal(t, 12*time.Hour, cfg.Auth.TokenTTL)
	assert.True(t, cfg.Auth.ImplicitSignup)
	assert.Equal(t, "secret", cfg.Auth.JWTSecret)
	assert.Equal(t, "https://demo.credy.in/api/v1/maya/movies/", cfg.Catalog.URL)
	assert.Equal(t, 5, cfg.Catalog.MaxRetries)
	assert.Empty(t, cfg.Catalog.Username)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("AUTH_IMPLICIT_SIGNUP", "false")
	t.Setenv("AUTH_TOKEN_TTL", "30m")
	t.Setenv("MOVIE_API_TIMEOUT", "not-a-duration")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("STORAGE_BACKEND", "MinIO")
	t.Setenv("DB_PORT", "6543")

	cfg := LoadConfig()

	assert.False(t, cfg.Auth.ImplicitSignup)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, 10*time.Second, cfg.Catalog.Timeout)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, "minio", cfg.Storage.Backend)
	assert.Equal(t, 6543, cfg.Database.Port)
}
