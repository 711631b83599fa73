package config

import (
	"testing"
	"time"

	"github.com/kapu/messenger-api-go/internal/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	for _, key := range []string{
		"MESSENGER_ENV", "API_BASE_URL", "API_TIMEOUT_SECONDS", "STREAM_URL",
		"REDIS_HOST", "POSTGRES_HOST", "SESSION_TTL_HOURS", "FEATURE_FLAG_DEFAULT",
		"NOTIFICATION_ACTIONS", "API_CIRCUIT_BREAKER",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, api.Release, cfg.API.Environment)
	assert.Equal(t, api.ReleaseBaseURL, cfg.APIBaseURL())
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.False(t, cfg.API.CircuitBreaker)
	assert.Equal(t, "wss://agile-harbor-47425.herokuapp.com/api/v1/stream", cfg.Stream.URL)
	assert.Equal(t, "localhost", cfg.Redis.Host)
	assert.False(t, cfg.Postgres.Enabled())
	assert.Equal(t, 720*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "reply,call,read", cfg.Notification.Actions)
}

func TestLoadOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("MESSENGER_ENV", "Debug")
	t.Setenv("API_BASE_URL", "http://localhost:3000/api/v1/")
	t.Setenv("API_TIMEOUT_SECONDS", "3")
	t.Setenv("STREAM_URL", "")
	t.Setenv("POSTGRES_HOST", "db")
	t.Setenv("FEATURE_FLAG_DEFAULT", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, api.Debug, cfg.API.Environment)
	assert.Equal(t, "http://localhost:3000/api/v1/", cfg.APIBaseURL())
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.Equal(t, "ws://192.168.1.127:3000/api/v1/stream", cfg.Stream.URL)
	assert.True(t, cfg.Postgres.Enabled())
	assert.True(t, cfg.FeatureFlags.GlobalDefault)
}

func TestLoadRejectsUnknownEnvironment(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("MESSENGER_ENV", "production")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			API:     APIConfig{Timeout: time.Second},
			Stream:  StreamConfig{URL: "ws://localhost/stream"},
			Redis:   RedisConfig{Host: "localhost"},
			Session: SessionConfig{TTL: time.Hour},
		}
	}
	require.NoError(t, valid().Validate())

	cfg := valid()
	cfg.API.Timeout = 0
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Session.TTL = -time.Hour
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Redis.Host = ""
	assert.Error(t, cfg.Validate())
}
