package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg := Load()

	assert.Equal(t, "convsync", cfg.ServiceName)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, BackendMemory, cfg.StoreBackend)
	assert.Equal(t, 5*time.Second, cfg.OpTimeout)
	assert.Equal(t, 8, cfg.CASMaxAttempts)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.False(t, cfg.EventsEnabled)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("HTTP_ADDR", "9000")
	t.Setenv("STORE_BACKEND", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/convsync")
	t.Setenv("OP_TIMEOUT", "250ms")
	t.Setenv("CAS_MAX_ATTEMPTS", "3")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("EVENTS_ENABLED", "true")

	cfg := Load()

	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Equal(t, BackendPostgres, cfg.StoreBackend)
	assert.Equal(t, "postgres://localhost/convsync", cfg.DatabaseURL)
	assert.Equal(t, 250*time.Millisecond, cfg.OpTimeout)
	assert.Equal(t, 3, cfg.CASMaxAttempts)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.EventsEnabled)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing_jwt_secret", env: map[string]string{"JWT_SECRET": ""}},
		{name: "postgres_without_url", env: map[string]string{"STORE_BACKEND": "postgres", "DATABASE_URL": ""}},
		{name: "unknown_backend", env: map[string]string{"STORE_BACKEND": "sqlite"}},
		{name: "bad_duration", env: map[string]string{"OP_TIMEOUT": "soon"}},
		{name: "events_without_brokers", env: map[string]string{"EVENTS_ENABLED": "true", "KAFKA_BROKERS": ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "s3cret")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			require.Panics(t, func() { Load() })
		})
	}
}

func TestFixPort(t *testing.T) {
	assert.Equal(t, ":8080", fixPort("8080"))
	assert.Equal(t, ":8080", fixPort(":8080"))
	assert.Equal(t, "0.0.0.0:8080", fixPort("0.0.0.0:8080"))
	assert.Equal(t, "", fixPort(""))
}
